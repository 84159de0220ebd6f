package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venuepass/venuepass/internal/domain/entity"
	"github.com/venuepass/venuepass/pkg/response"
)

// RequireRole rejects requests whose session role ranks below min. Must run
// after Auth.
func RequireRole(min entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := entity.Role(c.GetString(CtxUserRoleKey))
		if !role.Valid() || !role.AtLeast(min) {
			resp := response.Error[any](c, http.StatusForbidden, "insufficient privileges", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		c.Next()
	}
}
