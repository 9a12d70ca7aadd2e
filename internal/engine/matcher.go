package engine

import (
	"sort"

	"core/internal/model"
)

// Score weights. Priority contributes multiplicatively (100/priority), so a
// single priority-1 rule can outrank many weak partial matches on
// lower-priority rules while keyword density still breaks same-priority ties.
const (
	triggerPoints  = 2
	affinityPoints = 1
	priorityScale  = 100.0
)

// affinityKeywords are the domain keywords that earn a name-affinity bonus
// when present in both the question and the rule's intent name.
var affinityKeywords = []string{"库存", "跟踪", "测试", "检验", "生产", "供应商", "物料"}

// Match scores every rule against the question and returns the winner, or
// nil when no rule scores above zero. The result is deterministic for a
// fixed rule snapshot: ties break on lower priority, then on ascending id.
func Match(question string, rules []model.Rule) *model.MatchResult {
	ordered := make([]*model.Rule, 0, len(rules))
	for i := range rules {
		if rules[i].Status == model.RuleStatusActive {
			ordered = append(ordered, &rules[i])
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	var best *model.MatchResult
	for _, rule := range ordered {
		score, matched := scoreRule(question, rule)
		if score <= 0 {
			continue
		}
		if best == nil || score > best.Score ||
			(score == best.Score && rule.Priority < best.Rule.Priority) {
			best = &model.MatchResult{Rule: rule, Score: score, Matched: matched}
		}
	}
	return best
}

// scoreRule computes (trigger hits + name affinity) * (100 / priority).
func scoreRule(question string, rule *model.Rule) (float64, []string) {
	if rule.Priority <= 0 {
		return 0, nil
	}

	points := 0
	var matched []string

	for _, trigger := range rule.TriggerWords {
		if surface, ok := triggerHit(question, trigger, rule.Synonyms); ok {
			points += triggerPoints
			matched = append(matched, surface)
		}
	}

	for _, kw := range affinityKeywords {
		if Contains(question, kw) && Contains(rule.IntentName, kw) {
			points += affinityPoints
			matched = append(matched, kw)
		}
	}

	if points == 0 {
		return 0, nil
	}
	return float64(points) * priorityScale / float64(rule.Priority), matched
}

// triggerHit reports whether the trigger word, or any of its synonyms, is a
// substring of the question. A trigger word counts at most once however
// many of its surface forms appear.
func triggerHit(question, trigger string, synonyms map[string][]string) (string, bool) {
	if Contains(question, trigger) {
		return trigger, true
	}
	for _, alt := range synonyms[trigger] {
		if Contains(question, alt) {
			return alt, true
		}
	}
	return "", false
}
