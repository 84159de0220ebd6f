package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venuepass/venuepass/internal/domain/apperr"
	"github.com/venuepass/venuepass/pkg/response"
)

func ok[T any](c *gin.Context, status int, data T, message string) {
	resp := response.Success(c, status, data, message)
	c.JSON(resp.Status, resp)
}

// fail maps typed business errors onto HTTP statuses; untyped errors answer
// as opaque 500s.
func fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	msg := "internal server error"
	var details any
	var e *apperr.Error
	if errors.As(err, &e) {
		msg = e.Message
		details = gin.H{"kind": e.Kind.String()}
	}
	resp := response.Error[any](c, status, msg, details)
	c.JSON(resp.Status, resp)
}

func badRequest(c *gin.Context, details any) {
	resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", details)
	c.JSON(resp.Status, resp)
}
