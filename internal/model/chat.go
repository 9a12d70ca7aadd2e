package model

// ChatRequest represents an assistant question request
type ChatRequest struct {
	Question  string                 `json:"question" binding:"required"`
	SessionID string                 `json:"session_id,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"` // prior-session context, passed through opaquely
}

// ChatResponse represents the assistant answer
type ChatResponse struct {
	ChatID       string                   `json:"chat_id"`
	Matched      bool                     `json:"matched"`
	RuleName     string                   `json:"rule_name,omitempty"`
	Category     string                   `json:"category,omitempty"`
	Columns      []string                 `json:"columns,omitempty"`
	Rows         []map[string]interface{} `json:"rows,omitempty"`
	SummaryCards []SummaryCard            `json:"summary_cards"`
	Message      string                   `json:"message"`
	Took         int64                    `json:"took_ms"`
}

// SummaryCard is a small stat card rendered above the result table:
// either a plain count or a capped distinct-value breakdown of one column.
type SummaryCard struct {
	Label string     `json:"label"`
	Value string     `json:"value"`
	Items []CardItem `json:"items,omitempty"`
}

// CardItem is one distinct value with its occurrence count.
type CardItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// FeedbackRequest represents user feedback on an assistant answer
type FeedbackRequest struct {
	ChatID string `json:"chat_id" binding:"required"`
	Action string `json:"action" binding:"required"` // helpful, unhelpful, irrelevant
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// EmbeddingBatchRequest represents a batch rule-embedding update request
type EmbeddingBatchRequest struct {
	Embeddings []RuleEmbeddingItem `json:"embeddings" binding:"required"`
}

// EmbeddingBatchResponse represents the response for batch embedding update
type EmbeddingBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// ReloadResponse reports the rule snapshot state after a reload.
type ReloadResponse struct {
	Version   int64 `json:"version"`
	RuleCount int   `json:"rule_count"`
}
