package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pjecz/casiopea/internal/permissions"
	"github.com/pjecz/casiopea/pkg/errors"
	"github.com/pjecz/casiopea/pkg/logger"
	"github.com/pjecz/casiopea/pkg/metrics"
	"github.com/pjecz/casiopea/pkg/response"
)

// ModuleGate evaluates whether an identity reaches a level on a module.
type ModuleGate interface {
	Require(ctx context.Context, identity *permissions.Identity, moduleName string, min permissions.Level) (permissions.Decision, error)
}

// RequireModule ensures the authenticated caller holds at least level on module.
func RequireModule(gate ModuleGate, module string, level permissions.Level) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFromContext(c)
		if identity == nil {
			response.Abort(c, errors.ErrUnauthorized)
			return
		}

		decision, err := gate.Require(c.Request.Context(), identity, module, level)
		if err != nil {
			metrics.GateDecisions.WithLabelValues(module, level.String(), "error").Inc()
			logger.WithModule("gate").Error("permission lookup failed",
				zap.String("module", module),
				zap.String("user_id", identity.UserID),
				zap.Error(err),
			)
			response.Abort(c, errors.ErrInternalServer.WithInternal(err))
			return
		}

		metrics.GateDecisions.WithLabelValues(module, level.String(), decision.String()).Inc()
		if decision != permissions.DecisionAuthorized {
			logger.WithModule("gate").Debug("access denied",
				zap.String("module", module),
				zap.String("level", level.String()),
				zap.String("user_id", identity.UserID),
				zap.String("path", c.Request.URL.Path),
			)
			response.Abort(c, errors.ErrForbidden)
			return
		}

		c.Next()
	}
}
