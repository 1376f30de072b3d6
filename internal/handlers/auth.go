package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/pjecz/casiopea/internal/auth"
	"github.com/pjecz/casiopea/internal/middleware"
	"github.com/pjecz/casiopea/internal/models"
	"github.com/pjecz/casiopea/internal/permissions"
	"github.com/pjecz/casiopea/internal/services"
	"github.com/pjecz/casiopea/pkg/errors"
	"github.com/pjecz/casiopea/pkg/response"
)

// IDTokenVerifier validates an ID token issued by an external sign-in provider.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*iauth.ExternalIdentity, error)
}

// AuthHandler manages login and the caller's own session views.
type AuthHandler struct {
	users    *services.UserService
	jwt      *iauth.JWTService
	checker  *permissions.Checker
	idTokens IDTokenVerifier
	auditTrail
}

// NewAuthHandler builds the handler. A nil idTokens disables Firebase sign-in.
func NewAuthHandler(db *gorm.DB, jwt *iauth.JWTService, checker *permissions.Checker, audit *services.AuditService, idTokens IDTokenVerifier) (*AuthHandler, error) {
	users, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	return &AuthHandler{
		users:      users,
		jwt:        jwt,
		checker:    checker,
		idTokens:   idTokens,
		auditTrail: auditTrail{audit: audit},
	}, nil
}

// SupportsIDTokens reports whether Firebase sign-in is configured.
func (h *AuthHandler) SupportsIDTokens() bool {
	return h.idTokens != nil
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,notblank"`
	Password string `json:"contrasena" validate:"required"`
}

type idTokenLoginRequest struct {
	IDToken string `json:"id_token" validate:"required,notblank"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)
	user, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.startSession(c, user, "Inicio de sesión "+user.Email)
}

// POST /api/auth/firebase exchanges a verified Firebase ID token for a session token.
func (h *AuthHandler) FirebaseLogin(c *gin.Context) {
	if h.idTokens == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}

	var req idTokenLoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)
	identity, err := h.idTokens.Verify(ctx, req.IDToken)
	if err != nil {
		response.Error(c, errors.ErrInvalidCredentials.WithInternal(err))
		return
	}

	user, err := h.users.AuthenticateVerifiedEmail(ctx, identity.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.startSession(c, user, "Inicio de sesión con Firebase "+user.Email)
}

func (h *AuthHandler) startSession(c *gin.Context, user *models.User, description string) {
	token, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{UserID: user.ID, Email: user.Email})
	if err != nil {
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}

	levels, err := h.checker.EffectiveLevels(requestContext(c), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxUserIDKey, user.ID)
	h.record(c, permissions.ModuleUsers, description, detailURL("usuarios", user.ID))

	response.Success(c, http.StatusOK, gin.H{
		"token":    tokenResponse{AccessToken: token, TokenType: "bearer", ExpiresIn: int(h.jwt.TTL().Seconds())},
		"usuario":  user,
		"permisos": levels,
	})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	user, err := h.users.Get(requestContext(c), identity.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !user.IsActive() {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, user)
}

// GET /api/auth/permisos returns the caller's effective levels and menu.
func (h *AuthHandler) Permissions(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	ctx := requestContext(c)
	levels, err := h.checker.EffectiveLevels(ctx, identity.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	navigation, err := h.checker.NavigationModules(ctx, identity.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"permisos":   levels,
		"navegacion": navigation,
	})
}
