package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pjecz/casiopea/pkg/errors"
	"github.com/pjecz/casiopea/pkg/response"
)

// Health reports whether the database answers a ping.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(requestContext(c))
		}
		if err != nil {
			response.Error(c, errors.New("UNAVAILABLE", "Base de datos no disponible", http.StatusServiceUnavailable).WithInternal(err))
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
