package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"core/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// ActiveRuleRows returns the raw rows of every active assistant rule in a
// stable order. The JSON-ish fields come back as stored text; recovery
// parsing is the rule store's job.
func (r *PostgresRepository) ActiveRuleRows(ctx context.Context) ([]model.RuleRow, error) {
	query := `
		SELECT
			id, intent_name, trigger_words, synonyms, parameters,
			action_target, category, priority, status, max_rows,
			display_fields, created_at, updated_at
		FROM assistant_rules
		WHERE status = $1
		ORDER BY id
	`
	var rows []model.RuleRow
	if err := r.db.SelectContext(ctx, &rows, query, model.RuleStatusActive); err != nil {
		return nil, fmt.Errorf("failed to fetch rules: %w", err)
	}
	return rows, nil
}

// RunQuery executes a rendered rule query and returns its rows as
// label → value maps, labels being whatever the template aliased the
// columns to. Templates use `?` placeholders; Rebind converts them to the
// driver's positional form.
func (r *PostgresRepository) RunQuery(ctx context.Context, query string, args []interface{}) ([]map[string]interface{}, error) {
	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		row := map[string]interface{}{}
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		// lib/pq hands text columns back as []byte; decode for JSON output
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return results, nil
}

// LogChat logs one assistant turn
func (r *PostgresRepository) LogChat(ctx context.Context, chatID, sessionID, question string, ruleID *int64, matched bool, rowCount int, responseTimeMs int64) error {
	query := `
		INSERT INTO chat_logs (chat_id, session_id, question, rule_id, matched, row_count, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query, chatID, sessionID, question, ruleID, matched, rowCount, responseTimeMs)
	if err != nil {
		return fmt.Errorf("failed to log chat: %w", err)
	}
	return nil
}

// LogFeedback records user feedback on a logged chat turn
func (r *PostgresRepository) LogFeedback(ctx context.Context, chatID, action string) error {
	query := `
		UPDATE chat_logs
		SET feedback = $2, feedback_at = NOW()
		WHERE chat_id = $1
	`
	_, err := r.db.ExecContext(ctx, query, chatID, action)
	if err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	return nil
}

// UpdateRuleEmbedding updates the embedding vector for a rule
func (r *PostgresRepository) UpdateRuleEmbedding(ctx context.Context, ruleID int64, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	query := `UPDATE assistant_rules SET embedding = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, vec, ruleID)
	if err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}
	return nil
}

// BatchUpdateRuleEmbeddings updates embeddings for multiple rules
func (r *PostgresRepository) BatchUpdateRuleEmbeddings(ctx context.Context, items []model.RuleEmbeddingItem) (int, []string) {
	success := 0
	var errors []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errors
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE assistant_rules SET embedding = $1, updated_at = NOW() WHERE id = $2`)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errors
	}
	defer stmt.Close()

	for _, item := range items {
		vec := pgvector.NewVector(item.Embedding)
		_, err := stmt.ExecContext(ctx, vec, item.RuleID)
		if err != nil {
			errors = append(errors, fmt.Sprintf("rule_id %d: %v", item.RuleID, err))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errors = append(errors, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errors
	}

	return success, errors
}
