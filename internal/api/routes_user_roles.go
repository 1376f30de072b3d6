package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pjecz/casiopea/internal/handlers"
	"github.com/pjecz/casiopea/internal/middleware"
	"github.com/pjecz/casiopea/internal/permissions"
)

func registerMembershipRoutes(api *gin.RouterGroup, handler *handlers.MembershipHandler, gate middleware.ModuleGate) {
	const module = permissions.ModuleUserRoles

	memberships := api.Group("/usuarios_roles", middleware.RequireModule(gate, module, permissions.LevelView))
	{
		memberships.GET("", handler.List)
		memberships.POST("", middleware.RequireModule(gate, module, permissions.LevelCreate), handler.Assign)
		memberships.DELETE("/:id", middleware.RequireModule(gate, module, permissions.LevelAdminister), handler.Delete)
		memberships.POST("/:id/recuperar", middleware.RequireModule(gate, module, permissions.LevelAdminister), handler.Recover)
	}
}
