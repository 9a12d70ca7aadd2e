package handler

import (
	"fmt"
	"net/http"

	"core/internal/model"
	"core/internal/repository"

	"github.com/gin-gonic/gin"
)

// EmbeddingHandler handles rule-embedding HTTP requests
type EmbeddingHandler struct {
	repo       *repository.PostgresRepository
	dimensions int
}

// NewEmbeddingHandler creates a new embedding handler
func NewEmbeddingHandler(repo *repository.PostgresRepository, dimensions int) *EmbeddingHandler {
	return &EmbeddingHandler{
		repo:       repo,
		dimensions: dimensions,
	}
}

// BatchUpdate handles POST /api/v1/embeddings/batch
func (h *EmbeddingHandler) BatchUpdate(c *gin.Context) {
	var req model.EmbeddingBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if len(req.Embeddings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No embeddings provided"})
		return
	}

	// Validate embedding dimensions
	for i, item := range req.Embeddings {
		if len(item.Embedding) != h.dimensions {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid embedding dimension at index %d, expected %d", i, h.dimensions),
			})
			return
		}
	}

	success, errors := h.repo.BatchUpdateRuleEmbeddings(c.Request.Context(), req.Embeddings)

	response := model.EmbeddingBatchResponse{
		Success: success,
		Failed:  len(req.Embeddings) - success,
		Errors:  errors,
	}

	if len(errors) > 0 {
		c.JSON(http.StatusPartialContent, response)
	} else {
		c.JSON(http.StatusOK, response)
	}
}
