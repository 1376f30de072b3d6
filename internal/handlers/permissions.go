package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pjecz/casiopea/internal/permissions"
	"github.com/pjecz/casiopea/internal/services"
	"github.com/pjecz/casiopea/pkg/response"
)

// PermissionHandler serves /api/permisos, the role by module matrix.
type PermissionHandler struct {
	svc *services.PermissionService
	auditTrail
}

func NewPermissionHandler(db *gorm.DB, audit *services.AuditService) (*PermissionHandler, error) {
	svc, err := services.NewPermissionService(db)
	if err != nil {
		return nil, err
	}
	return &PermissionHandler{svc: svc, auditTrail: auditTrail{audit: audit}}, nil
}

type grantRequest struct {
	RoleID   string `json:"rol_id" validate:"required,notblank"`
	ModuleID string `json:"modulo_id" validate:"required,notblank"`
	Level    *int   `json:"nivel" validate:"required"`
}

type levelRequest struct {
	Level *int `json:"nivel" validate:"required"`
}

// GET /api/permisos?rol_id=&modulo_id=&estatus=
func (h *PermissionHandler) List(c *gin.Context) {
	perms, err := h.svc.List(requestContext(c), services.PermissionFilter{
		RoleID:   c.Query("rol_id"),
		ModuleID: c.Query("modulo_id"),
		Status:   c.Query("estatus"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, perms)
}

// GET /api/permisos/niveles lists the level scale for form selects.
func (h *PermissionHandler) Levels(c *gin.Context) {
	type levelOption struct {
		Level int    `json:"nivel"`
		Name  string `json:"nombre"`
		Verb  string `json:"verbo,omitempty"`
	}
	options := make([]levelOption, 0, int(permissions.LevelAdminister)+1)
	for l := permissions.LevelNone; l <= permissions.LevelAdminister; l++ {
		options = append(options, levelOption{Level: int(l), Name: l.String(), Verb: permissions.Verb(l)})
	}
	response.Success(c, http.StatusOK, options)
}

// GET /api/permisos/:id
func (h *PermissionHandler) Get(c *gin.Context) {
	perm, err := h.svc.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, perm)
}

// POST /api/permisos
func (h *PermissionHandler) Grant(c *gin.Context) {
	var req grantRequest
	if !bindAndValidate(c, &req) {
		return
	}

	perm, err := h.svc.Grant(requestContext(c), services.GrantInput{
		RoleID:   req.RoleID,
		ModuleID: req.ModuleID,
		Level:    *req.Level,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModulePermissions, "Nuevo Permiso "+perm.Name, detailURL("permisos", perm.ID))
	response.Created(c, perm)
}

// PATCH /api/permisos/:id
func (h *PermissionHandler) SetLevel(c *gin.Context) {
	var req levelRequest
	if !bindAndValidate(c, &req) {
		return
	}

	perm, err := h.svc.SetLevel(requestContext(c), c.Param("id"), *req.Level)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModulePermissions, "Editado Permiso "+perm.Name, detailURL("permisos", perm.ID))
	response.Success(c, http.StatusOK, perm)
}

// DELETE /api/permisos/:id
func (h *PermissionHandler) Delete(c *gin.Context) {
	perm, err := h.svc.Deactivate(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModulePermissions, "Eliminado Permiso "+perm.Name, detailURL("permisos", perm.ID))
	response.Success(c, http.StatusOK, perm)
}

// POST /api/permisos/:id/recuperar
func (h *PermissionHandler) Recover(c *gin.Context) {
	perm, err := h.svc.Reactivate(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModulePermissions, "Recuperado Permiso "+perm.Name, detailURL("permisos", perm.ID))
	response.Success(c, http.StatusOK, perm)
}
