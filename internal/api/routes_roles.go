package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pjecz/casiopea/internal/handlers"
	"github.com/pjecz/casiopea/internal/middleware"
	"github.com/pjecz/casiopea/internal/permissions"
)

func registerRoleRoutes(api *gin.RouterGroup, handler *handlers.RoleHandler, gate middleware.ModuleGate) {
	const module = permissions.ModuleRoles

	roles := api.Group("/roles", middleware.RequireModule(gate, module, permissions.LevelView))
	{
		roles.GET("", handler.List)
		roles.GET("/select", handler.Select)
		roles.GET("/inactivos", middleware.RequireModule(gate, module, permissions.LevelAdminister), handler.ListInactive)
		roles.GET("/:id", handler.Get)
		roles.POST("", middleware.RequireModule(gate, module, permissions.LevelCreate), handler.Create)
		roles.PATCH("/:id", middleware.RequireModule(gate, module, permissions.LevelModify), handler.Update)
		roles.DELETE("/:id", middleware.RequireModule(gate, module, permissions.LevelAdminister), handler.Delete)
		roles.POST("/:id/recuperar", middleware.RequireModule(gate, module, permissions.LevelAdminister), handler.Recover)
	}
}
