package engine

import (
	"context"
	"fmt"
	"time"

	"core/internal/model"
)

// QueryRunner executes a rendered query against the relational store. The
// engine assumes nothing about the storage engine beyond "accepts
// parameterized queries, returns rows".
type QueryRunner interface {
	RunQuery(ctx context.Context, query string, args []interface{}) ([]map[string]interface{}, error)
}

// ExecutionError reports a failed rendered query: a bad stored template, a
// schema mismatch, or a timeout. It carries the rule id so the failing rule
// can be identified in logs without taking the request path down.
type ExecutionError struct {
	RuleID int64
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("rule %d: query execution failed: %v", e.RuleID, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Executor runs bound queries with a timeout. The store call is the only
// blocking point in the pipeline, so a deadline here bounds the whole
// request.
type Executor struct {
	runner  QueryRunner
	timeout time.Duration
}

// NewExecutor creates an executor. timeout <= 0 falls back to 10s.
func NewExecutor(runner QueryRunner, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Executor{runner: runner, timeout: timeout}
}

// Execute runs the bound query and returns its rows. Any failure, including
// a deadline hit, comes back as *ExecutionError; it never panics and never
// hangs past the timeout.
func (e *Executor) Execute(ctx context.Context, rule *model.Rule, bq *model.BoundQuery) ([]map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	rows, err := e.runner.RunQuery(ctx, bq.SQL, bq.Args)
	if err != nil {
		return nil, &ExecutionError{RuleID: rule.ID, Err: err}
	}
	return rows, nil
}
