package handler

import (
	"net/http"

	"core/internal/model"
	"core/internal/repository"

	"github.com/gin-gonic/gin"
)

// FeedbackHandler handles feedback-related HTTP requests
type FeedbackHandler struct {
	repo *repository.PostgresRepository
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(repo *repository.PostgresRepository) *FeedbackHandler {
	return &FeedbackHandler{repo: repo}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// Validate action
	validActions := map[string]bool{
		"helpful":    true,
		"unhelpful":  true,
		"irrelevant": true,
	}

	if !validActions[req.Action] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action. Must be one of: helpful, unhelpful, irrelevant"})
		return
	}

	err := h.repo.LogFeedback(c.Request.Context(), req.ChatID, req.Action)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log feedback: " + err.Error()})
		return
	}

	response := model.FeedbackResponse{
		Success: true,
		Message: "Feedback logged successfully",
	}

	c.JSON(http.StatusOK, response)
}
