package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/palmto/trajgen-backend-go/internal/repository"
	"github.com/palmto/trajgen-backend-go/pkg/response"
)

// AdminHandler exposes the generation record store to authenticated admins
type AdminHandler struct {
	configs   *repository.ConfigRepository
	generated *repository.GeneratedRepository
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(configs *repository.ConfigRepository, generated *repository.GeneratedRepository) *AdminHandler {
	return &AdminHandler{configs: configs, generated: generated}
}

// ListConfigs retrieves generation configurations with pagination
// GET /api/v1/admin/configs
func (h *AdminHandler) ListConfigs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		offset = 0
	}

	configs, total, err := h.configs.List(limit, offset)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"configs": configs,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetConfig retrieves one generation configuration and its generated files
// GET /api/v1/admin/configs/:id
func (h *AdminHandler) GetConfig(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid config ID")
		return
	}

	config, err := h.configs.GetByID(id)
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	files, err := h.generated.ListByConfig(id)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"config":          config,
		"generated_files": files,
	})
}
