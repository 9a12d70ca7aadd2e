package engine

import (
	"unicode/utf8"

	"core/internal/model"
)

// Extract scans the question for each declared parameter's surface forms
// and returns name → canonical value for every parameter that was found.
// Parameters with no surface form in the question are simply absent from
// the map; "no mention" means "no filter on this dimension", not an error.
//
// When several surface forms of one parameter match ("深圳" and "深圳工厂"
// both present), the longest matching form wins so a short alias never
// masks a fully-qualified mention.
func Extract(question string, params []model.ParamSpec) map[string]string {
	bound := make(map[string]string, len(params))
	for _, spec := range params {
		surface, ok := longestSurfaceMatch(question, spec.ExtractFrom)
		if !ok {
			continue
		}
		if canonical, mapped := spec.Mapping[surface]; mapped {
			bound[spec.Name] = canonical
		} else {
			bound[spec.Name] = surface
		}
	}
	return bound
}

// longestSurfaceMatch returns the longest surface form (by rune count)
// contained in the question.
func longestSurfaceMatch(question string, surfaces []string) (string, bool) {
	best := ""
	bestLen := -1
	for _, surface := range surfaces {
		if !Contains(question, surface) {
			continue
		}
		if n := utf8.RuneCountInString(surface); n > bestLen {
			best, bestLen = surface, n
		}
	}
	return best, bestLen >= 0
}
