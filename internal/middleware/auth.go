package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/pjecz/casiopea/internal/auth"
	"github.com/pjecz/casiopea/internal/permissions"
	"github.com/pjecz/casiopea/pkg/errors"
	"github.com/pjecz/casiopea/pkg/response"
)

const (
	CtxClaimsKey = "authClaims"
	CtxUserIDKey = "userID"
	CtxEmailKey  = "userEmail"
)

// Auth enforces JWT authentication using the supplied JWT service.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, errors.ErrUnauthorized)
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, errors.ErrUnauthorized)
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxEmailKey, claims.Email)

		c.Next()
	}
}

// IdentityFromContext returns the caller established by Auth, or nil for anonymous requests.
func IdentityFromContext(c *gin.Context) *permissions.Identity {
	return permissions.NewIdentity(c.GetString(CtxUserIDKey), c.GetString(CtxEmailKey))
}
