package service

import "context"

// AIClient is the last-resort collaborator invoked when no rule matches a
// question. The engine depends only on "question in, prose out"; how the
// provider produces the text is opaque.
type AIClient interface {
	// Answer generates a free-text answer for an unmatched question. The
	// optional context map is prior-session material passed through
	// untouched by the engine.
	Answer(ctx context.Context, question string, context map[string]interface{}) (string, error)

	// IsEnabled returns whether the client is configured and ready
	IsEnabled() bool
}

// Ensure OpenAIClient implements AIClient
var _ AIClient = (*OpenAIClient)(nil)
