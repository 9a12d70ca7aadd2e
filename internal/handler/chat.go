package handler

import (
	"net/http"

	"core/internal/model"
	"core/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles assistant question requests
type ChatHandler struct {
	assistant *service.Assistant
}

// NewChatHandler creates a new chat handler
func NewChatHandler(assistant *service.Assistant) *ChatHandler {
	return &ChatHandler{assistant: assistant}
}

// Ask handles POST /api/v1/chat
func (h *ChatHandler) Ask(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	resp := h.assistant.Ask(c.Request.Context(), &req)
	c.JSON(http.StatusOK, resp)
}
