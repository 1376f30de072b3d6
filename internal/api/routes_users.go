package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pjecz/casiopea/internal/handlers"
	"github.com/pjecz/casiopea/internal/middleware"
	"github.com/pjecz/casiopea/internal/permissions"
)

func registerUserRoutes(api *gin.RouterGroup, handler *handlers.UserHandler, gate middleware.ModuleGate) {
	const module = permissions.ModuleUsers

	users := api.Group("/usuarios", middleware.RequireModule(gate, module, permissions.LevelView))
	{
		users.GET("", handler.List)
		users.GET("/inactivos", middleware.RequireModule(gate, module, permissions.LevelAdminister), handler.ListInactive)
		users.GET("/:id", handler.Get)
		users.POST("", middleware.RequireModule(gate, module, permissions.LevelCreate), handler.Create)
		users.PUT("/:id/contrasena", middleware.RequireModule(gate, module, permissions.LevelModify), handler.SetPassword)
		users.DELETE("/:id", middleware.RequireModule(gate, module, permissions.LevelAdminister), handler.Delete)
		users.POST("/:id/recuperar", middleware.RequireModule(gate, module, permissions.LevelAdminister), handler.Recover)
	}
}
