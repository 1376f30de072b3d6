package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pjecz/casiopea/internal/api"
	"github.com/pjecz/casiopea/internal/app"
	iauth "github.com/pjecz/casiopea/internal/auth"
	sharedtestutil "github.com/pjecz/casiopea/internal/database/testutil"
	"github.com/pjecz/casiopea/internal/models"
	"github.com/pjecz/casiopea/internal/permissions"
	"github.com/pjecz/casiopea/internal/services"
	"github.com/pjecz/casiopea/pkg/response"
)

// DefaultPassword satisfies the password strength rules.
const DefaultPassword = "Secreto123"

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	JWT    *iauth.JWTService

	Modules *services.ModuleService
	Roles   *services.RoleService
	Perms   *services.PermissionService
	Users   *services.UserService
}

// NewEnv provisions a fresh handler test environment with migrations and
// built-in modules applied. Options adjust the config before the router is built.
func NewEnv(t *testing.T, opts ...func(*app.Config)) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData())

	cfg := &app.Config{
		Auth: app.AuthConfig{
			JWT:   app.JWTSettings{Secret: "test-suite-super-secret-key-32-bytes!!", Issuer: "test-suite", TTL: time.Hour},
			Login: app.LoginSettings{MaxAttempts: -1},
		},
		Monitoring: app.MonitoringConfig{Prometheus: app.PrometheusConfig{Enabled: true}},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	require.NoError(t, err)

	router, err := api.NewRouter(db, jwtSvc, cfg)
	require.NoError(t, err)

	env := &Env{T: t, DB: db, Router: router, JWT: jwtSvc}
	env.Modules, err = services.NewModuleService(db)
	require.NoError(t, err)
	env.Roles, err = services.NewRoleService(db)
	require.NoError(t, err)
	env.Perms, err = services.NewPermissionService(db)
	require.NoError(t, err)
	env.Users, err = services.NewUserService(db)
	require.NoError(t, err)
	return env
}

// CreateUser inserts an active user with DefaultPassword.
func (e *Env) CreateUser(email string) *models.User {
	e.T.Helper()

	user, err := e.Users.Create(context.Background(), services.CreateUserInput{
		Email:        email,
		GivenNames:   "Prueba",
		FirstSurname: "Usuario",
		Password:     DefaultPassword,
	})
	require.NoError(e.T, err)
	return user
}

// CreateUserWithLevels creates a user holding a fresh role with the given
// level on each named module.
func (e *Env) CreateUserWithLevels(email string, levels map[string]permissions.Level) *models.User {
	e.T.Helper()
	ctx := context.Background()

	user := e.CreateUser(email)
	role, err := e.Roles.Register(ctx, "ROL "+uuid.NewString()[:8])
	require.NoError(e.T, err)

	for name, level := range levels {
		module, err := e.Modules.GetByName(ctx, name)
		require.NoError(e.T, err)
		_, err = e.Perms.Grant(ctx, services.GrantInput{RoleID: role.ID, ModuleID: module.ID, Level: int(level)})
		require.NoError(e.T, err)
	}

	_, err = e.Roles.Assign(ctx, user.ID, role.ID)
	require.NoError(e.T, err)
	return user
}

// CreateAdministrator assigns the seeded ADMINISTRADOR role to a new user.
func (e *Env) CreateAdministrator(email string) *models.User {
	e.T.Helper()
	ctx := context.Background()

	user := e.CreateUser(email)
	role, err := e.Roles.GetByName(ctx, permissions.AdministratorRole)
	require.NoError(e.T, err)
	_, err = e.Roles.Assign(ctx, user.ID, role.ID)
	require.NoError(e.T, err)
	return user
}

// TokenFor issues an access token without going through the login endpoint.
func (e *Env) TokenFor(user *models.User) string {
	e.T.Helper()
	token, err := e.JWT.GenerateAccessToken(iauth.AccessTokenInput{UserID: user.ID, Email: user.Email})
	require.NoError(e.T, err)
	return token
}

// LoginResult bundles the JSON response from POST /api/auth/login.
type LoginResult struct {
	Token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	} `json:"token"`
	User        models.User    `json:"usuario"`
	Permissions map[string]int `json:"permisos"`
}

// Login authenticates through the API and returns the decoded payload.
func (e *Env) Login(email, password string) LoginResult {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":      email,
		"contrasena": password,
	}, "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success, w.Body.String())

	var result LoginResult
	DecodeInto(e.T, resp.Data, &result)
	require.NotEmpty(e.T, result.Token.AccessToken)
	require.Greater(e.T, result.Token.ExpiresIn, 0)
	return result
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	buf := bytes.NewBuffer(nil)
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
