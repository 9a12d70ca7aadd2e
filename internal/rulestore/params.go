package rulestore

import (
	"encoding/json"
	"fmt"
	"strings"

	"core/internal/model"
	"core/internal/utils"
)

// parseParams parses a rule's stored parameter schema. Two shapes are
// tolerated:
//
//	[{"name": "factory", "type": "factory", ...}, ...]            (canonical)
//	{"factory": {"type": "factory", ...}, "supplier": {...}}      (legacy)
//
// Declaration order matters — it is the placeholder order for rendering —
// so the legacy object form is decoded token by token to preserve the
// order keys were written in.
func parseParams(raw string) ([]model.ParamSpec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	repaired, ok := utils.RepairJSON(raw)
	if !ok {
		return nil, fmt.Errorf("unparseable parameter schema")
	}

	if strings.HasPrefix(repaired, "[") {
		var params []model.ParamSpec
		if err := json.Unmarshal([]byte(repaired), &params); err != nil {
			return nil, err
		}
		for i, p := range params {
			if strings.TrimSpace(p.Name) == "" {
				return nil, fmt.Errorf("parameter %d has no name", i)
			}
		}
		return params, nil
	}

	return parseOrderedObject(repaired)
}

// parseOrderedObject decodes {"name": {spec}, ...} preserving key order.
func parseOrderedObject(repaired string) ([]model.ParamSpec, error) {
	dec := json.NewDecoder(strings.NewReader(repaired))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parameter schema is not an object")
	}

	var params []model.ParamSpec
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("parameter key is not a string")
		}

		var spec model.ParamSpec
		if err := dec.Decode(&spec); err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		spec.Name = name
		params = append(params, spec)
	}
	return params, nil
}
