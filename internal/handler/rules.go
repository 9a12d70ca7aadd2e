package handler

import (
	"net/http"

	"core/internal/model"
	"core/internal/rulestore"

	"github.com/gin-gonic/gin"
)

// RulesHandler exposes the rule snapshot for inspection and reload
type RulesHandler struct {
	store *rulestore.Store
}

// NewRulesHandler creates a new rules handler
func NewRulesHandler(store *rulestore.Store) *RulesHandler {
	return &RulesHandler{store: store}
}

// List handles GET /api/v1/rules
func (h *RulesHandler) List(c *gin.Context) {
	snap := h.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"version":   snap.Version,
		"loaded_at": snap.LoadedAt,
		"rules":     h.store.Summaries(),
	})
}

// Reload handles POST /api/v1/rules/reload
func (h *RulesHandler) Reload(c *gin.Context) {
	snap, err := h.store.Load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reload failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.ReloadResponse{
		Version:   snap.Version,
		RuleCount: len(snap.Rules),
	})
}
