package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/venuepass/venuepass/internal/container"
	"github.com/venuepass/venuepass/internal/domain/entity"
	handlers "github.com/venuepass/venuepass/internal/interface/http"
	"github.com/venuepass/venuepass/internal/interface/middleware"
	"github.com/venuepass/venuepass/pkg/helpers"
)

type EventModule struct {
	Handler *handlers.EventHandler
	JWT     *helpers.JWTManager
}

func NewEventModule(h *handlers.EventHandler, jwt *helpers.JWTManager) *EventModule {
	return &EventModule{Handler: h, JWT: jwt}
}

func (m *EventModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/events")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	{
		auth.GET("", m.Handler.List)
		auth.GET("/search", m.Handler.Search)
		auth.GET("/registered", m.Handler.Registered)
		auth.GET("/:id", m.Handler.Get)
		auth.POST("/:id/register", m.Handler.Register)
		auth.DELETE("/:id/register", m.Handler.Unregister)
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(container.GetRedis(), m.JWT))
	{
		admin.POST("/events", middleware.RequireRole(entity.RoleOrganiser), m.Handler.Upsert)
		admin.POST("/events/:id/register", middleware.RequireRole(entity.RoleAdmin), m.Handler.ForceRegister)
		admin.GET("/registrations/reconcile", middleware.RequireRole(entity.RoleAdmin), m.Handler.Reconcile)
	}
}
