package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/palmto/trajgen-backend-go/internal/cache"
	"github.com/palmto/trajgen-backend-go/internal/models"
	"github.com/palmto/trajgen-backend-go/internal/service"
	"github.com/palmto/trajgen-backend-go/pkg/response"
)

// PipelineHandler handles HTTP requests for the two-phase generation pipeline
type PipelineHandler struct {
	service *service.PipelineService
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(service *service.PipelineService) *PipelineHandler {
	return &PipelineHandler{service: service}
}

// BuildNgrams accepts a trajectory upload and starts phase-1 model building
// POST /api/v1/trajectory/generate/ngrams
func (h *PipelineHandler) BuildNgrams(c *gin.Context) {
	cellSize, err := strconv.Atoi(c.PostForm("cell_size"))
	if err != nil {
		response.BadRequest(c, "cell_size must be an integer")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "No trajectory file provided")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	taskID, err := h.service.BuildModel(file, cellSize)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Accepted(c, gin.H{"task_id": taskID})
}

// Generate runs phase 2 against a cached model
// POST /api/v1/trajectory/generate
func (h *PipelineHandler) Generate(c *gin.Context) {
	params, ok := h.parseGenerationParams(c)
	if !ok {
		return
	}

	result, err := h.service.GenerateFromModel(params)
	if err != nil {
		switch {
		case errors.Is(err, cache.ErrNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, cache.ErrMalformed):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
		return
	}

	response.Created(c, result)
}

// StatsFromCacheRequest is the request body for reading cached model stats
type StatsFromCacheRequest struct {
	CacheFile string `json:"cache_file" binding:"required"`
}

// StatsFromCache returns the summary statistics of a cached model
// POST /api/v1/trajectory/stats-from-cache
func (h *PipelineHandler) StatsFromCache(c *gin.Context) {
	var req StatsFromCacheRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	stats, err := h.service.StatsFromCache(req.CacheFile)
	if err != nil {
		switch {
		case errors.Is(err, cache.ErrNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, cache.ErrMalformed):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
		return
	}

	response.Success(c, gin.H{"stats": stats})
}

func (h *PipelineHandler) parseGenerationParams(c *gin.Context) (models.GenerationParams, bool) {
	var params models.GenerationParams

	num, err := strconv.Atoi(c.PostForm("num_trajectories"))
	if err != nil || num <= 0 {
		response.BadRequest(c, "num_trajectories must be a positive integer")
		return params, false
	}
	params.NumTrajectories = num

	params.GenerationMethod = c.DefaultPostForm("generation_method", models.MethodPointToPoint)
	switch params.GenerationMethod {
	case models.MethodLengthConstrained:
		length, err := strconv.Atoi(c.PostForm("trajectory_len"))
		if err != nil || length < 2 {
			response.BadRequest(c, "trajectory_len must be an integer >= 2")
			return params, false
		}
		params.TrajectoryLen = length
	case models.MethodPointToPoint:
	default:
		response.BadRequest(c, "Unknown generation_method")
		return params, false
	}

	params.DeleteCacheAfter = c.PostForm("delete_cache_after") == "true"

	// The cache reference is either a freshly uploaded blob or a stored name
	if fileHeader, err := c.FormFile("cache_file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			response.InternalError(c, "Failed to read uploaded cache file")
			return params, false
		}
		defer file.Close()

		blob, err := io.ReadAll(file)
		if err != nil {
			response.InternalError(c, "Failed to read uploaded cache file")
			return params, false
		}
		params.CacheUpload = blob
	} else {
		params.CacheFile = c.PostForm("cache_file")
	}

	if params.CacheFile == "" && len(params.CacheUpload) == 0 {
		response.BadRequest(c, "No cache file provided")
		return params, false
	}

	return params, true
}
