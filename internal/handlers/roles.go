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

// RoleHandler serves /api/roles.
type RoleHandler struct {
	svc *services.RoleService
	auditTrail
}

func NewRoleHandler(db *gorm.DB, audit *services.AuditService) (*RoleHandler, error) {
	svc, err := services.NewRoleService(db)
	if err != nil {
		return nil, err
	}
	return &RoleHandler{svc: svc, auditTrail: auditTrail{audit: audit}}, nil
}

type roleRequest struct {
	Name string `json:"nombre" validate:"required,notblank,max=256"`
}

// GET /api/roles
func (h *RoleHandler) List(c *gin.Context) {
	h.list(c, models.StatusActive)
}

// GET /api/roles/inactivos
func (h *RoleHandler) ListInactive(c *gin.Context) {
	h.list(c, models.StatusDeleted)
}

func (h *RoleHandler) list(c *gin.Context, status string) {
	roles, err := h.svc.List(requestContext(c), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, roles)
}

// GET /api/roles/select
func (h *RoleHandler) Select(c *gin.Context) {
	options, err := h.svc.SelectOptions(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, options)
}

// GET /api/roles/:id
func (h *RoleHandler) Get(c *gin.Context) {
	role, err := h.svc.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// POST /api/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var req roleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role, err := h.svc.Register(requestContext(c), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModuleRoles, fmt.Sprintf("Nuevo Rol %s", role.Name), detailURL("roles", role.ID))
	response.Created(c, role)
}

// PATCH /api/roles/:id renames the role and relabels its permissions and memberships.
func (h *RoleHandler) Update(c *gin.Context) {
	var req roleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role, err := h.svc.Rename(requestContext(c), c.Param("id"), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModuleRoles, fmt.Sprintf("Editado Rol %s", role.Name), detailURL("roles", role.ID))
	response.Success(c, http.StatusOK, role)
}

// DELETE /api/roles/:id
func (h *RoleHandler) Delete(c *gin.Context) {
	role, err := h.svc.Deactivate(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModuleRoles, fmt.Sprintf("Eliminado Rol %s", role.Name), detailURL("roles", role.ID))
	response.Success(c, http.StatusOK, role)
}

// POST /api/roles/:id/recuperar
func (h *RoleHandler) Recover(c *gin.Context) {
	role, err := h.svc.Reactivate(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModuleRoles, fmt.Sprintf("Recuperado Rol %s", role.Name), detailURL("roles", role.ID))
	response.Success(c, http.StatusOK, role)
}
