package engine

import (
	"fmt"
	"strings"

	"core/internal/model"
)

// wildcardArg matches every non-null value under LIKE.
const wildcardArg = "%"

// Render fills a rule's query template with the extracted parameter values
// in declaration order. Every value travels as a bound argument, never
// concatenated into the SQL text. Bound values are wrapped for LIKE
// matching (%value%); an unbound parameter degrades to the bare wildcard
// so the dimension goes unfiltered instead of matching nothing.
//
// Templates use positional `?` placeholders; the executor rebinds them to
// the driver's form. A zero-placeholder template passes through unchanged.
func Render(rule *model.Rule, bound map[string]string) (*model.BoundQuery, error) {
	placeholders := strings.Count(rule.ActionTarget, "?")
	if placeholders != len(rule.Parameters) {
		return nil, fmt.Errorf("template declares %d placeholders but schema has %d parameters",
			placeholders, len(rule.Parameters))
	}

	query := rule.ActionTarget
	// Rule-authored row cap, applied visibly. The engine itself never
	// injects a hidden limit.
	if rule.MaxRows > 0 && !strings.Contains(strings.ToUpper(query), " LIMIT ") {
		query = fmt.Sprintf("%s LIMIT %d", strings.TrimRight(query, "; \t\n"), rule.MaxRows)
	}

	if placeholders == 0 {
		return &model.BoundQuery{SQL: query, Args: []interface{}{}}, nil
	}

	args := make([]interface{}, 0, len(rule.Parameters))
	for _, spec := range rule.Parameters {
		if value, ok := bound[spec.Name]; ok && value != "" {
			args = append(args, wildcardArg+value+wildcardArg)
		} else {
			args = append(args, wildcardArg)
		}
	}
	return &model.BoundQuery{SQL: query, Args: args}, nil
}
