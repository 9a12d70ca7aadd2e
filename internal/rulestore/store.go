package rulestore

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"core/internal/model"
	"core/internal/utils"
)

// Source provides raw active rule rows. Implemented by the Postgres
// repository; tests substitute their own.
type Source interface {
	ActiveRuleRows(ctx context.Context) ([]model.RuleRow, error)
}

// Snapshot is one immutable generation of the rule catalog. Readers hold
// the whole snapshot; reload builds a fresh one and swaps the pointer, so
// a matcher sees either the old catalog or the new one, never a mix.
type Snapshot struct {
	Version  int64
	LoadedAt time.Time
	Rules    []model.Rule
}

// Store holds the current rule snapshot behind an atomic pointer and
// reloads it on a schedule or on demand.
type Store struct {
	source  Source
	current atomic.Pointer[Snapshot]
	version atomic.Int64
}

// New creates a store with an empty initial snapshot.
func New(source Source) *Store {
	s := &Store{source: source}
	s.current.Store(&Snapshot{LoadedAt: time.Now()})
	return s
}

// Snapshot returns the current rule catalog. Never nil.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Load fetches rule rows, normalizes them, and atomically installs the new
// snapshot. A single malformed row never aborts the load: recoverable
// fields are repaired, unrecoverable rules are skipped with a diagnostic.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	rows, err := s.source.ActiveRuleRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	rules := make([]model.Rule, 0, len(rows))
	for _, row := range rows {
		rule, ok := normalizeRule(row)
		if !ok {
			continue
		}
		rules = append(rules, rule)
	}

	snap := &Snapshot{
		Version:  s.version.Add(1),
		LoadedAt: time.Now(),
		Rules:    rules,
	}
	s.current.Store(snap)
	log.Printf("rule snapshot v%d loaded: %d active rules (%d rows)", snap.Version, len(rules), len(rows))
	return snap, nil
}

// Run reloads the snapshot on a fixed interval until the context ends.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Load(ctx); err != nil {
				log.Printf("scheduled rule reload failed: %v", err)
			}
		}
	}
}

// normalizeRule turns a raw row into the canonical Rule shape. Returns
// false only when the rule cannot participate in matching at all (bad
// priority, missing template).
func normalizeRule(row model.RuleRow) (model.Rule, bool) {
	rule := model.Rule{
		ID:         row.ID,
		IntentName: row.IntentName,
		Category:   row.Category.String,
		Status:     row.Status,
		Priority:   int(row.Priority.Int64),
		MaxRows:    int(row.MaxRows.Int64),
	}

	// Priority is a reciprocal weight (100/priority); zero or negative
	// would divide away the whole score, so such rules are excluded.
	if !row.Priority.Valid || rule.Priority <= 0 {
		log.Printf("rule %d (%s): invalid priority %v, excluded from matching", row.ID, row.IntentName, row.Priority.Int64)
		return model.Rule{}, false
	}

	rule.ActionTarget = row.ActionTarget.String
	if rule.ActionTarget == "" {
		log.Printf("rule %d (%s): empty query template, excluded from matching", row.ID, row.IntentName)
		return model.Rule{}, false
	}

	rule.TriggerWords = normalizeTriggerWords(row)
	rule.Synonyms = normalizeSynonyms(row)
	rule.Parameters = normalizeParameters(row)
	rule.DisplayFields = utils.ParseStringList(row.DisplayFields.String)
	return rule, true
}

// normalizeTriggerWords recovers the trigger word list from whatever shape
// it was stored in: JSON list, comma-separated string, or garbage. Garbage
// degrades to the rule's own intent name so the rule stays matchable.
func normalizeTriggerWords(row model.RuleRow) []string {
	if words := utils.ParseStringList(row.TriggerWords.String); len(words) > 0 {
		return words
	}
	log.Printf("rule %d (%s): unrecoverable trigger_words %q, falling back to intent name",
		row.ID, row.IntentName, row.TriggerWords.String)
	return []string{row.IntentName}
}

func normalizeSynonyms(row model.RuleRow) map[string][]string {
	synonyms, err := utils.ParseStringListMap(row.Synonyms.String)
	if err != nil {
		log.Printf("rule %d (%s): malformed synonyms, ignored: %v", row.ID, row.IntentName, err)
		return nil
	}
	return synonyms
}

func normalizeParameters(row model.RuleRow) []model.ParamSpec {
	params, err := parseParams(row.Parameters.String)
	if err != nil {
		log.Printf("rule %d (%s): malformed parameters, treated as parameterless: %v", row.ID, row.IntentName, err)
		return nil
	}
	for i := range params {
		params[i] = applyDictionary(params[i])
	}
	return params
}

// Summaries lists the current snapshot for the rules endpoint.
func (s *Store) Summaries() []model.RuleSummary {
	snap := s.Snapshot()
	out := make([]model.RuleSummary, 0, len(snap.Rules))
	for _, r := range snap.Rules {
		out = append(out, model.RuleSummary{
			ID:         r.ID,
			IntentName: r.IntentName,
			Category:   r.Category,
			Priority:   r.Priority,
			ParamCount: len(r.Parameters),
		})
	}
	return out
}
