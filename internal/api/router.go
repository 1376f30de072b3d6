package api

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/pjecz/casiopea/internal/app"
	iauth "github.com/pjecz/casiopea/internal/auth"
	"github.com/pjecz/casiopea/internal/handlers"
	"github.com/pjecz/casiopea/internal/middleware"
	"github.com/pjecz/casiopea/internal/permissions"
	"github.com/pjecz/casiopea/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers every route group.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	metricsEndpoint := cfg.Monitoring.Prometheus.Endpoint
	if metricsEndpoint == "" {
		metricsEndpoint = "/metrics"
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics(metricsEndpoint))
	r.Use(middleware.SecurityHeaders())

	registerHealthRoutes(r, db)

	checker, err := permissions.NewChecker(db)
	if err != nil {
		return nil, err
	}
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}

	var idTokens handlers.IDTokenVerifier
	if firebaseCfg, ok := cfg.Auth.FirebaseVerifierConfig(); ok {
		verifier, err := iauth.NewFirebaseVerifier(context.Background(), firebaseCfg)
		if err != nil {
			return nil, err
		}
		idTokens = verifier
	}

	authHandler, err := handlers.NewAuthHandler(db, jwt, checker, audit, idTokens)
	if err != nil {
		return nil, err
	}
	moduleHandler, err := handlers.NewModuleHandler(db, audit)
	if err != nil {
		return nil, err
	}
	roleHandler, err := handlers.NewRoleHandler(db, audit)
	if err != nil {
		return nil, err
	}
	permissionHandler, err := handlers.NewPermissionHandler(db, audit)
	if err != nil {
		return nil, err
	}
	userHandler, err := handlers.NewUserHandler(db, audit)
	if err != nil {
		return nil, err
	}
	membershipHandler, err := handlers.NewMembershipHandler(db, audit)
	if err != nil {
		return nil, err
	}

	attempts, window := cfg.Auth.LoginLimit()
	api := r.Group("/api")
	registerPublicAuthRoutes(r, authHandler, middleware.RateLimit(attempts, window))

	api.Use(middleware.Auth(jwt))

	registerAuthRoutes(api, authHandler)
	registerModuleRoutes(api, moduleHandler, checker)
	registerRoleRoutes(api, roleHandler, checker)
	registerPermissionRoutes(api, permissionHandler, checker)
	registerUserRoutes(api, userHandler, checker)
	registerMembershipRoutes(api, membershipHandler, checker)
	registerAuditRoutes(api, handlers.NewAuditHandler(audit), checker)

	if cfg.Monitoring.Prometheus.Enabled {
		r.GET(metricsEndpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
