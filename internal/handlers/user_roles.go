package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pjecz/casiopea/internal/permissions"
	"github.com/pjecz/casiopea/internal/services"
	"github.com/pjecz/casiopea/pkg/response"
)

// MembershipHandler serves /api/usuarios_roles.
type MembershipHandler struct {
	svc *services.RoleService
	auditTrail
}

func NewMembershipHandler(db *gorm.DB, audit *services.AuditService) (*MembershipHandler, error) {
	svc, err := services.NewRoleService(db)
	if err != nil {
		return nil, err
	}
	return &MembershipHandler{svc: svc, auditTrail: auditTrail{audit: audit}}, nil
}

type assignRequest struct {
	UserID string `json:"usuario_id" validate:"required,notblank"`
	RoleID string `json:"rol_id" validate:"required,notblank"`
}

// GET /api/usuarios_roles?usuario_id=&rol_id=&estatus=
func (h *MembershipHandler) List(c *gin.Context) {
	memberships, err := h.svc.ListMemberships(requestContext(c), services.MembershipFilter{
		UserID: c.Query("usuario_id"),
		RoleID: c.Query("rol_id"),
		Status: c.Query("estatus"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, memberships)
}

// POST /api/usuarios_roles
func (h *MembershipHandler) Assign(c *gin.Context) {
	var req assignRequest
	if !bindAndValidate(c, &req) {
		return
	}

	membership, err := h.svc.Assign(requestContext(c), req.UserID, req.RoleID)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModuleUserRoles, "Nuevo Usuario-Rol "+membership.Description, detailURL("usuarios_roles", membership.ID))
	response.Created(c, membership)
}

// DELETE /api/usuarios_roles/:id
func (h *MembershipHandler) Delete(c *gin.Context) {
	membership, err := h.svc.RevokeMembership(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModuleUserRoles, "Eliminado Usuario-Rol "+membership.Description, detailURL("usuarios_roles", membership.ID))
	response.Success(c, http.StatusOK, membership)
}

// POST /api/usuarios_roles/:id/recuperar
func (h *MembershipHandler) Recover(c *gin.Context) {
	membership, err := h.svc.RestoreMembership(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModuleUserRoles, "Recuperado Usuario-Rol "+membership.Description, detailURL("usuarios_roles", membership.ID))
	response.Success(c, http.StatusOK, membership)
}
