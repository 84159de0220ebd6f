package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/venuepass/venuepass/internal/container"
	"github.com/venuepass/venuepass/internal/domain/entity"
	handlers "github.com/venuepass/venuepass/internal/interface/http"
	"github.com/venuepass/venuepass/internal/interface/middleware"
	"github.com/venuepass/venuepass/pkg/helpers"
)

type LocationModule struct {
	Handler *handlers.LocationHandler
	JWT     *helpers.JWTManager
}

func NewLocationModule(h *handlers.LocationHandler, jwt *helpers.JWTManager) *LocationModule {
	return &LocationModule{Handler: h, JWT: jwt}
}

func (m *LocationModule) Register(rg *gin.RouterGroup) {
	// Geofence checks come from devices on a timer, keep them per-user limited
	verifyLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID(), middleware.AllowPrivateIP())

	auth := rg.Group("/locations")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	{
		auth.GET("", m.Handler.Venues)
		auth.POST("/assign", m.Handler.Assign)
		auth.GET("/assigned", m.Handler.Assigned)
		auth.POST("/verify", verifyLimiter, m.Handler.Verify)
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(container.GetRedis(), m.JWT))
	{
		admin.POST("/venues", middleware.RequireRole(entity.RoleAdmin), m.Handler.UpsertVenue)
	}
}
