package model

import (
	"database/sql"
	"time"
)

// Rule status values
const (
	RuleStatusActive   = "active"
	RuleStatusInactive = "inactive"
)

// Parameter type tags understood by the extractor. Parameters of a known
// type with no surface forms of their own inherit the built-in dictionary
// for that type at load time.
const (
	ParamTypeFactory  = "factory"
	ParamTypeSupplier = "supplier"
	ParamTypeMaterial = "material"
	ParamTypeStatus   = "status"
	ParamTypeResult   = "result"
	ParamTypeText     = "text"
)

// ParamSpec declares one extractable parameter of a rule: the surface forms
// it may be recognized from and the surface→canonical value mapping.
type ParamSpec struct {
	Name        string            `json:"name"`
	Type        string            `json:"type"`
	ExtractFrom []string          `json:"extract_from,omitempty"`
	Mapping     map[string]string `json:"mapping,omitempty"`
}

// Rule is a stored intent definition: trigger words and synonyms for
// matching, a parameter schema for extraction, and a query template with
// positional `?` placeholders in parameter declaration order.
type Rule struct {
	ID            int64
	IntentName    string
	TriggerWords  []string
	Synonyms      map[string][]string
	Parameters    []ParamSpec // declaration order drives placeholder order
	ActionTarget  string
	Category      string
	Priority      int // positive; lower value = more important
	Status        string
	MaxRows       int      // 0 = no rule-authored limit
	DisplayFields []string // optional declared column order for the response
}

// RuleRow is the raw database row behind a Rule. The JSON-ish fields are
// kept as stored text so the rule store can run its recovery parsing on
// them without the driver getting in the way.
type RuleRow struct {
	ID            int64          `db:"id"`
	IntentName    string         `db:"intent_name"`
	TriggerWords  sql.NullString `db:"trigger_words"`
	Synonyms      sql.NullString `db:"synonyms"`
	Parameters    sql.NullString `db:"parameters"`
	ActionTarget  sql.NullString `db:"action_target"`
	Category      sql.NullString `db:"category"`
	Priority      sql.NullInt64  `db:"priority"`
	Status        string         `db:"status"`
	MaxRows       sql.NullInt64  `db:"max_rows"`
	DisplayFields sql.NullString `db:"display_fields"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// RuleSummary is the per-rule shape exposed by the rules endpoint.
type RuleSummary struct {
	ID         int64  `json:"id"`
	IntentName string `json:"intent_name"`
	Category   string `json:"category,omitempty"`
	Priority   int    `json:"priority"`
	ParamCount int    `json:"param_count"`
}

// MatchResult is produced per question: the winning rule, its final score,
// and the trigger words / name fragments that matched (for diagnostics).
// Never persisted.
type MatchResult struct {
	Rule    *Rule    `json:"-"`
	Score   float64  `json:"score"`
	Matched []string `json:"matched"`
}

// BoundQuery is a rendered query template plus the ordered argument values
// that fill its placeholders. Never persisted.
type BoundQuery struct {
	SQL  string
	Args []interface{}
}

// RuleEmbeddingItem carries one precomputed rule embedding for the batch
// update endpoint.
type RuleEmbeddingItem struct {
	RuleID    int64     `json:"rule_id" binding:"required"`
	Embedding []float32 `json:"embedding" binding:"required"`
	Text      string    `json:"text,omitempty"`
}
