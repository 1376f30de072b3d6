package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pjecz/casiopea/internal/middleware"
	"github.com/pjecz/casiopea/internal/services"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// actorID returns the authenticated user id as stored on audit lines.
func actorID(c *gin.Context) *string {
	id := strings.TrimSpace(c.GetString(middleware.CtxUserIDKey))
	if id == "" {
		return nil
	}
	return &id
}

// auditTrail appends bitácora lines after successful state changes.
type auditTrail struct {
	audit *services.AuditService
}

func (a auditTrail) record(c *gin.Context, moduleName, description, url string) {
	services.RecordAudit(a.audit, requestContext(c), services.AuditEntry{
		UserID:      actorID(c),
		ModuleName:  moduleName,
		Description: description,
		URL:         url,
		Metadata: map[string]any{
			"method":    c.Request.Method,
			"client_ip": c.ClientIP(),
		},
	})
}

func detailURL(collection, id string) string {
	return fmt.Sprintf("/api/%s/%s", collection, id)
}
