package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pjecz/casiopea/internal/handlers"
)

func registerPublicAuthRoutes(engine *gin.Engine, handler *handlers.AuthHandler, limiter gin.HandlerFunc) {
	auth := engine.Group("/api/auth")
	{
		auth.POST("/login", limiter, handler.Login)
		if handler.SupportsIDTokens() {
			auth.POST("/firebase", limiter, handler.FirebaseLogin)
		}
	}
}

func registerAuthRoutes(api *gin.RouterGroup, handler *handlers.AuthHandler) {
	api.GET("/auth/me", handler.Me)
	api.GET("/auth/permisos", handler.Permissions)
}
