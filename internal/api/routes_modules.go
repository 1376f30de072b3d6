package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pjecz/casiopea/internal/handlers"
	"github.com/pjecz/casiopea/internal/middleware"
	"github.com/pjecz/casiopea/internal/permissions"
)

func registerModuleRoutes(api *gin.RouterGroup, handler *handlers.ModuleHandler, gate middleware.ModuleGate) {
	const module = permissions.ModuleModules

	modules := api.Group("/modulos", middleware.RequireModule(gate, module, permissions.LevelView))
	{
		modules.GET("", handler.List)
		modules.GET("/select", handler.Select)
		modules.GET("/inactivos", middleware.RequireModule(gate, module, permissions.LevelAdminister), handler.ListInactive)
		modules.GET("/:id", handler.Get)
		modules.POST("", middleware.RequireModule(gate, module, permissions.LevelCreate), handler.Create)
		modules.PATCH("/:id", middleware.RequireModule(gate, module, permissions.LevelModify), handler.Update)
		modules.DELETE("/:id", middleware.RequireModule(gate, module, permissions.LevelAdminister), handler.Delete)
		modules.POST("/:id/recuperar", middleware.RequireModule(gate, module, permissions.LevelAdminister), handler.Recover)
	}
}
