// Package handlers implements the HTTP endpoints.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/retrievo"
	"github.com/soundprediction/retrievo/pkg/retrieval"
	"github.com/soundprediction/retrievo/pkg/server/dto"
	"github.com/soundprediction/retrievo/pkg/types"
)

// RetrieveHandler handles retrieval requests
type RetrieveHandler struct {
	client retrievo.Retrievo
}

// NewRetrieveHandler creates a new retrieve handler
func NewRetrieveHandler(client retrievo.Retrievo) *RetrieveHandler {
	return &RetrieveHandler{
		client: client,
	}
}

// Retrieve handles POST /api/v1/retrieve
func (h *RetrieveHandler) Retrieve(c *gin.Context) {
	var req dto.RetrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "query field is required and cannot be empty",
		})
		return
	}

	opts := types.Options{
		Filters: req.Filters,
		TopK:    req.TopK,
	}
	for _, s := range req.SearchTypes {
		opts.SearchTypes = append(opts.SearchTypes, types.Source(s))
	}

	records, err := h.client.Retrieve(c.Request.Context(), req.Query, opts)
	if err != nil {
		status := http.StatusInternalServerError
		code := "retrieve_failed"
		if errors.Is(err, retrieval.ErrInvalidTopK) || errors.Is(err, retrieval.ErrUnknownSearchType) {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		c.JSON(status, dto.ErrorResponse{
			Error:   code,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.RetrieveResponse{
		Records: records,
		Total:   len(records),
	})
}
