package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pjecz/casiopea/internal/handlers"
	"github.com/pjecz/casiopea/internal/middleware"
	"github.com/pjecz/casiopea/internal/permissions"
)

func registerPermissionRoutes(api *gin.RouterGroup, handler *handlers.PermissionHandler, gate middleware.ModuleGate) {
	const module = permissions.ModulePermissions

	perms := api.Group("/permisos", middleware.RequireModule(gate, module, permissions.LevelView))
	{
		perms.GET("", handler.List)
		perms.GET("/niveles", handler.Levels)
		perms.GET("/:id", handler.Get)
		perms.POST("", middleware.RequireModule(gate, module, permissions.LevelCreate), handler.Grant)
		perms.PATCH("/:id", middleware.RequireModule(gate, module, permissions.LevelModify), handler.SetLevel)
		perms.DELETE("/:id", middleware.RequireModule(gate, module, permissions.LevelAdminister), handler.Delete)
		perms.POST("/:id/recuperar", middleware.RequireModule(gate, module, permissions.LevelAdminister), handler.Recover)
	}
}
