package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pjecz/casiopea/internal/models"
	"github.com/pjecz/casiopea/internal/permissions"
	"github.com/pjecz/casiopea/internal/services"
	"github.com/pjecz/casiopea/pkg/response"
)

// UserHandler serves /api/usuarios.
type UserHandler struct {
	service *services.UserService
	auditTrail
}

type createUserRequest struct {
	Email         string `json:"email" validate:"required,email"`
	GivenNames    string `json:"nombres" validate:"required,notblank,max=256"`
	FirstSurname  string `json:"apellido_paterno" validate:"required,notblank,max=256"`
	SecondSurname string `json:"apellido_materno" validate:"max=256"`
	JobTitle      string `json:"puesto" validate:"max=256"`
	Password      string `json:"contrasena" validate:"omitempty,min=8,max=48"`
}

type passwordRequest struct {
	Password string `json:"contrasena" validate:"required,min=8,max=48"`
}

func NewUserHandler(db *gorm.DB, audit *services.AuditService) (*UserHandler, error) {
	us, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	return &UserHandler{service: us, auditTrail: auditTrail{audit: audit}}, nil
}

// GET /api/usuarios?page=&per_page=&q=
func (h *UserHandler) List(c *gin.Context) {
	h.list(c, models.StatusActive)
}

// GET /api/usuarios/inactivos
func (h *UserHandler) ListInactive(c *gin.Context) {
	h.list(c, models.StatusDeleted)
}

func (h *UserHandler) list(c *gin.Context, status string) {
	page := parseIntQuery(c, "page", 1)
	per := parseIntQuery(c, "per_page", 50)

	users, total, err := h.service.List(requestContext(c), services.ListUsersOptions{
		Page:     page,
		PageSize: per,
		Filters:  services.UserFilters{Status: status, Query: c.Query("q")},
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, users, response.NewMeta(page, per, total))
}

// GET /api/usuarios/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// POST /api/usuarios
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.service.Create(requestContext(c), services.CreateUserInput{
		Email:         body.Email,
		GivenNames:    body.GivenNames,
		FirstSurname:  body.FirstSurname,
		SecondSurname: body.SecondSurname,
		JobTitle:      body.JobTitle,
		Password:      body.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModuleUsers, fmt.Sprintf("Nuevo Usuario %s", user.Email), detailURL("usuarios", user.ID))
	response.Created(c, user)
}

// PUT /api/usuarios/:id/contrasena
func (h *UserHandler) SetPassword(c *gin.Context) {
	var body passwordRequest
	if !bindAndValidate(c, &body) {
		return
	}

	id := c.Param("id")
	if err := h.service.SetPassword(requestContext(c), id, body.Password); err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModuleUsers, "Cambiada contraseña de Usuario", detailURL("usuarios", id))
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// DELETE /api/usuarios/:id
func (h *UserHandler) Delete(c *gin.Context) {
	user, err := h.service.Deactivate(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModuleUsers, fmt.Sprintf("Eliminado Usuario %s", user.Email), detailURL("usuarios", user.ID))
	response.Success(c, http.StatusOK, user)
}

// POST /api/usuarios/:id/recuperar
func (h *UserHandler) Recover(c *gin.Context) {
	user, err := h.service.Reactivate(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModuleUsers, fmt.Sprintf("Recuperado Usuario %s", user.Email), detailURL("usuarios", user.ID))
	response.Success(c, http.StatusOK, user)
}
