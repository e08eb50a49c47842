package handler

import (
	"errors"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/palmto/trajgen-backend-go/internal/service"
	"github.com/palmto/trajgen-backend-go/pkg/response"
)

// MatchingHandler handles map-matching requests
type MatchingHandler struct {
	service *service.MatchingService
}

// NewMatchingHandler creates a new matching handler
func NewMatchingHandler(service *service.MatchingService) *MatchingHandler {
	return &MatchingHandler{service: service}
}

// MatchRequest is the request body for a map-matching run
type MatchRequest struct {
	Filename   string  `json:"filename" binding:"required"`
	Percentage float64 `json:"percentage"`
}

// Match snaps a sampled subset of a generated trajectory file onto the road
// network
// POST /api/v1/trajectory/match
func (h *MatchingHandler) Match(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "filename is required")
		return
	}
	if req.Percentage <= 0 {
		req.Percentage = 1.0
	}

	collection, outputFile, err := h.service.MatchBatch(c.Request.Context(), req.Filename, req.Percentage)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"map_data":    collection,
		"output_file": outputFile,
	})
}
