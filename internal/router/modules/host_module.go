package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/venuepass/venuepass/internal/container"
	"github.com/venuepass/venuepass/internal/domain/entity"
	handlers "github.com/venuepass/venuepass/internal/interface/http"
	"github.com/venuepass/venuepass/internal/interface/middleware"
	"github.com/venuepass/venuepass/pkg/helpers"
)

type HostModule struct {
	Handler *handlers.HostHandler
	JWT     *helpers.JWTManager
}

func NewHostModule(h *handlers.HostHandler, jwt *helpers.JWTManager) *HostModule {
	return &HostModule{Handler: h, JWT: jwt}
}

func (m *HostModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(container.GetRedis(), m.JWT))
	{
		admin.POST("/hosts", middleware.RequireRole(entity.RoleAdmin), m.Handler.Upsert)

		members := admin.Group("/", middleware.RequireRole(entity.RoleSupervisor))
		{
			members.POST("/hosts/:id/members", m.Handler.AddMember)
			members.POST("/hosts/:id/members/force", m.Handler.ForceAddMember)
			members.DELETE("/hosts/:id/members/:userId", m.Handler.RemoveMember)
			members.PUT("/members/:userId", m.Handler.UpdateMember)
		}
	}
}
