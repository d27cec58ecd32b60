package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Igor-Vicente/English.Registration.API/internal/dto"
	"github.com/Igor-Vicente/English.Registration.API/pkg/response"
)

type moduleService interface {
	List(ctx context.Context) ([]dto.ModuleResponse, error)
	Create(ctx context.Context, req dto.AddModuleRequest) (*dto.ModuleResponse, error)
}

// ModuleHandler serves the course catalog.
type ModuleHandler struct {
	service moduleService
}

// NewModuleHandler constructs the handler.
func NewModuleHandler(svc moduleService) *ModuleHandler {
	return &ModuleHandler{service: svc}
}

// List godoc
// @Summary List modules with their lessons
// @Tags Modules
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ModuleResponse
// @Router /modules [get]
func (h *ModuleHandler) List(c *gin.Context) {
	res, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Create godoc
// @Summary Add a module
// @Description Requires the isAdmin claim
// @Tags Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AddModuleRequest true "Module with lessons"
// @Success 200 {object} dto.ModuleResponse
// @Failure 400 {object} response.Failure
// @Failure 403 {object} response.Failure
// @Router /modules [post]
func (h *ModuleHandler) Create(c *gin.Context) {
	var req dto.AddModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	res, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
