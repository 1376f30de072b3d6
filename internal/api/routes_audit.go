package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pjecz/casiopea/internal/handlers"
	"github.com/pjecz/casiopea/internal/middleware"
	"github.com/pjecz/casiopea/internal/permissions"
)

func registerAuditRoutes(api *gin.RouterGroup, handler *handlers.AuditHandler, gate middleware.ModuleGate) {
	api.GET("/bitacoras", middleware.RequireModule(gate, permissions.ModuleAuditLogs, permissions.LevelView), handler.List)
}
