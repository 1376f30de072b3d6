package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pjecz/casiopea/pkg/errors"
	"github.com/pjecz/casiopea/pkg/logger"
	"github.com/pjecz/casiopea/pkg/response"
)

// Recovery converts panics into the 500 error envelope. The panic value,
// the route and the acting user are logged; none of it reaches the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			fields := []zap.Field{
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("route", c.FullPath()),
				zap.Any("panic", r),
				zap.Stack("stack"),
			}
			if userID := c.GetString(CtxUserIDKey); userID != "" {
				fields = append(fields, zap.String("user_id", userID))
			}
			logger.WithModule("http").Error("panic recovered", fields...)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.Abort(c, errors.ErrInternalServer)
		}()
		c.Next()
	}
}

// NotFoundHandler answers unknown routes with the 404 envelope.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, errors.ErrNotFound.WithMessage(fmt.Sprintf("Ruta %s no encontrada", c.Request.URL.Path)))
}
