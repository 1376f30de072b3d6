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

// ModuleHandler serves /api/modulos.
type ModuleHandler struct {
	svc *services.ModuleService
	auditTrail
}

func NewModuleHandler(db *gorm.DB, audit *services.AuditService) (*ModuleHandler, error) {
	svc, err := services.NewModuleService(db)
	if err != nil {
		return nil, err
	}
	return &ModuleHandler{svc: svc, auditTrail: auditTrail{audit: audit}}, nil
}

type moduleRequest struct {
	Name              string `json:"nombre" validate:"required,notblank,max=256"`
	ShortName         string `json:"nombre_corto" validate:"required,notblank,max=64"`
	Icon              string `json:"icono" validate:"max=48"`
	Route             string `json:"ruta" validate:"max=64"`
	ShownInNavigation bool   `json:"en_navegacion"`
}

type moduleUpdateRequest struct {
	Name              *string `json:"nombre" validate:"omitempty,notblank,max=256"`
	ShortName         *string `json:"nombre_corto" validate:"omitempty,notblank,max=64"`
	Icon              *string `json:"icono" validate:"omitempty,max=48"`
	Route             *string `json:"ruta" validate:"omitempty,max=64"`
	ShownInNavigation *bool   `json:"en_navegacion"`
}

// GET /api/modulos
func (h *ModuleHandler) List(c *gin.Context) {
	h.list(c, models.StatusActive)
}

// GET /api/modulos/inactivos
func (h *ModuleHandler) ListInactive(c *gin.Context) {
	h.list(c, models.StatusDeleted)
}

func (h *ModuleHandler) list(c *gin.Context, status string) {
	modules, err := h.svc.List(requestContext(c), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, modules)
}

// GET /api/modulos/select
func (h *ModuleHandler) Select(c *gin.Context) {
	options, err := h.svc.SelectOptions(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, options)
}

// GET /api/modulos/:id
func (h *ModuleHandler) Get(c *gin.Context) {
	module, err := h.svc.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, module)
}

// POST /api/modulos
func (h *ModuleHandler) Create(c *gin.Context) {
	var req moduleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	module, err := h.svc.Register(requestContext(c), services.RegisterModuleInput{
		Name:              req.Name,
		ShortName:         req.ShortName,
		Icon:              req.Icon,
		Route:             req.Route,
		ShownInNavigation: req.ShownInNavigation,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModuleModules, fmt.Sprintf("Nuevo Modulo %s", module.Name), detailURL("modulos", module.ID))
	response.Created(c, module)
}

// PATCH /api/modulos/:id
func (h *ModuleHandler) Update(c *gin.Context) {
	var req moduleUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	module, err := h.svc.Update(requestContext(c), c.Param("id"), services.UpdateModuleInput{
		Name:              req.Name,
		ShortName:         req.ShortName,
		Icon:              req.Icon,
		Route:             req.Route,
		ShownInNavigation: req.ShownInNavigation,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModuleModules, fmt.Sprintf("Editado Modulo %s", module.Name), detailURL("modulos", module.ID))
	response.Success(c, http.StatusOK, module)
}

// DELETE /api/modulos/:id deactivates the module and its active permissions.
func (h *ModuleHandler) Delete(c *gin.Context) {
	module, err := h.svc.Deactivate(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModuleModules, fmt.Sprintf("Eliminado Modulo %s", module.Name), detailURL("modulos", module.ID))
	response.Success(c, http.StatusOK, module)
}

// POST /api/modulos/:id/recuperar
func (h *ModuleHandler) Recover(c *gin.Context) {
	module, err := h.svc.Reactivate(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, permissions.ModuleModules, fmt.Sprintf("Recuperado Modulo %s", module.Name), detailURL("modulos", module.ID))
	response.Success(c, http.StatusOK, module)
}
