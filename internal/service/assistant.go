package service

import (
	"context"
	"log"
	"time"

	"core/internal/engine"
	"core/internal/model"
	"core/internal/rulestore"

	"github.com/google/uuid"
)

// User-facing messages for the expected non-answer outcomes. The no-match
// and empty-result cases must stay distinguishable.
const (
	MsgNoMatch       = "抱歉，我还无法理解这个问题。请换一种与库存、检测或生产跟踪相关的问法。"
	MsgQueryFailed   = "查询执行失败，请稍后重试。"
	MsgFallbackNotes = "（该回答由智能助手生成，未命中预置查询规则）"
)

// ChatLogger persists one assistant turn. Implemented by the Postgres
// repository; logging is best-effort and never blocks the answer.
type ChatLogger interface {
	LogChat(ctx context.Context, chatID, sessionID, question string, ruleID *int64, matched bool, rowCount int, responseTimeMs int64) error
}

// Assistant runs the question → rule → query → answer pipeline. Each call
// is stateless: the only shared state is the read-only rule snapshot.
type Assistant struct {
	store    *rulestore.Store
	executor *engine.Executor
	ai       AIClient
	logger   ChatLogger
}

// NewAssistant creates the assistant service
func NewAssistant(store *rulestore.Store, executor *engine.Executor, ai AIClient, logger ChatLogger) *Assistant {
	return &Assistant{
		store:    store,
		executor: executor,
		ai:       ai,
		logger:   logger,
	}
}

// Ask answers a free-text question. It never returns an error for the
// expected outcomes (no rule matched, zero rows); those are communicated
// through the response's matched/rows/message fields. Query execution
// failures come back as a sanitized message, never the raw cause.
func (a *Assistant) Ask(ctx context.Context, req *model.ChatRequest) *model.ChatResponse {
	startTime := time.Now()
	chatID := uuid.NewString()

	snap := a.store.Snapshot()
	match := engine.Match(req.Question, snap.Rules)
	if match == nil {
		resp := a.fallback(ctx, chatID, req)
		resp.Took = time.Since(startTime).Milliseconds()
		a.logTurn(chatID, req, nil, false, 0, resp.Took)
		return resp
	}

	rule := match.Rule
	bound := engine.Extract(req.Question, rule.Parameters)

	resp := &model.ChatResponse{
		ChatID:       chatID,
		Matched:      true,
		RuleName:     rule.IntentName,
		Category:     rule.Category,
		SummaryCards: []model.SummaryCard{},
	}

	rows, err := a.runRule(ctx, rule, bound)
	if err != nil {
		// Only the rule id and cause go to the log; the caller gets a
		// generic failure so stored template text never leaks.
		log.Printf("chat %s: %v", chatID, err)
		resp.Message = MsgQueryFailed
		resp.Took = time.Since(startTime).Milliseconds()
		a.logTurn(chatID, req, &rule.ID, true, 0, resp.Took)
		return resp
	}

	answer := engine.FormatAnswer(rows, rule)
	resp.Columns = answer.Columns
	resp.Rows = answer.Rows
	resp.SummaryCards = answer.Cards
	resp.Message = answer.Message
	resp.Took = time.Since(startTime).Milliseconds()
	a.logTurn(chatID, req, &rule.ID, true, len(rows), resp.Took)
	return resp
}

// runRule renders and executes one matched rule. Render failures are
// template defects and surface as execution errors carrying the rule id.
func (a *Assistant) runRule(ctx context.Context, rule *model.Rule, bound map[string]string) ([]map[string]interface{}, error) {
	bq, err := engine.Render(rule, bound)
	if err != nil {
		return nil, &engine.ExecutionError{RuleID: rule.ID, Err: err}
	}
	return a.executor.Execute(ctx, rule, bq)
}

// fallback produces the no-match answer: the LLM collaborator when
// configured, a canned message otherwise. A fallback failure is not an
// error either; the canned message covers it.
func (a *Assistant) fallback(ctx context.Context, chatID string, req *model.ChatRequest) *model.ChatResponse {
	resp := &model.ChatResponse{
		ChatID:       chatID,
		Matched:      false,
		SummaryCards: []model.SummaryCard{},
		Message:      MsgNoMatch,
	}

	if a.ai == nil || !a.ai.IsEnabled() {
		return resp
	}

	answer, err := a.ai.Answer(ctx, req.Question, req.Context)
	if err != nil {
		log.Printf("chat %s: fallback answer failed: %v", chatID, err)
		return resp
	}
	resp.Message = answer + "\n" + MsgFallbackNotes
	return resp
}

func (a *Assistant) logTurn(chatID string, req *model.ChatRequest, ruleID *int64, matched bool, rowCount int, tookMs int64) {
	if a.logger == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.logger.LogChat(ctx, chatID, req.SessionID, req.Question, ruleID, matched, rowCount, tookMs); err != nil {
			log.Printf("failed to log chat %s: %v", chatID, err)
		}
	}()
}
