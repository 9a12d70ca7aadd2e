package engine

import (
	"testing"

	"core/internal/model"
)

func rule(id int64, name string, priority int, triggers ...string) model.Rule {
	return model.Rule{
		ID:           id,
		IntentName:   name,
		TriggerWords: triggers,
		ActionTarget: "SELECT 1",
		Priority:     priority,
		Status:       model.RuleStatusActive,
	}
}

func TestMatch_PriorityInversion(t *testing.T) {
	// Same trigger overlap: 2 hits each. Priority 10 → 2*2*(100/10)=400,
	// priority 50 → 2*2*(100/50)=80. The numerically smaller priority wins.
	rules := []model.Rule{
		rule(1, "库存明细查询", 10, "库存", "查询"),
		rule(2, "库存汇总查询", 50, "库存", "查询"),
	}

	result := Match("查询深圳工厂的库存", rules)
	if result == nil {
		t.Fatal("expected a match")
	}
	if result.Rule.ID != 1 {
		t.Errorf("expected rule 1 (priority 10) to win, got rule %d", result.Rule.ID)
	}
	if result.Score != 500 { // 2 triggers *2 + 1 affinity ("库存" in name and question) = 5; 5*10
		t.Errorf("expected score 500, got %v", result.Score)
	}
}

func TestMatch_NoMatch(t *testing.T) {
	rules := []model.Rule{
		rule(1, "库存查询", 10, "库存"),
	}
	if result := Match("asdkjhasdkjh", rules); result != nil {
		t.Errorf("expected no match, got rule %d with score %v", result.Rule.ID, result.Score)
	}
}

func TestMatch_SynonymExpansion(t *testing.T) {
	r := rule(1, "检测结果查询", 10, "检测结果")
	r.Synonyms = map[string][]string{
		"检测结果": {"测试结果", "化验结果"},
	}

	result := Match("看一下化验结果", []model.Rule{r})
	if result == nil {
		t.Fatal("expected synonym to trigger a match")
	}
	if result.Score != 20 { // 1 trigger *2 * (100/10)
		t.Errorf("expected score 20, got %v", result.Score)
	}
	if len(result.Matched) != 1 || result.Matched[0] != "化验结果" {
		t.Errorf("expected matched surface 化验结果, got %v", result.Matched)
	}
}

func TestMatch_SynonymCountsOnce(t *testing.T) {
	// Trigger word and its synonym both present still count as one hit.
	r := rule(1, "结果查询", 10, "检测结果")
	r.Synonyms = map[string][]string{"检测结果": {"测试结果"}}

	result := Match("检测结果和测试结果", []model.Rule{r})
	if result == nil {
		t.Fatal("expected a match")
	}
	if result.Score != 20 {
		t.Errorf("expected score 20 (single hit), got %v", result.Score)
	}
}

func TestMatch_TieBreakOnPriorityThenID(t *testing.T) {
	tests := []struct {
		name     string
		question string
		rules    []model.Rule
		wantID   int64
	}{
		{
			name:     "lower priority wins on equal score",
			question: "查批次工单",
			rules: []model.Rule{
				// 1 hit * (100/10) = 2 hits * (100/20) = 20: scores tie,
				// the numerically smaller priority takes it even though it
				// sits later in the id order.
				rule(2, "工单批次", 20, "批次", "工单"),
				rule(5, "批次明细", 10, "批次"),
			},
			wantID: 5,
		},
		{
			name:     "equal score and priority falls back to ascending id",
			question: "查批次",
			rules: []model.Rule{
				rule(7, "生产跟踪A", 20, "批次"),
				rule(3, "生产跟踪B", 20, "批次"),
			},
			wantID: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Match(tt.question, tt.rules)
			if result == nil {
				t.Fatal("expected a match")
			}
			if result.Rule.ID != tt.wantID {
				t.Errorf("expected rule %d to win, got %d", tt.wantID, result.Rule.ID)
			}
		})
	}
}

func TestMatch_InactiveAndInvalidRulesExcluded(t *testing.T) {
	inactive := rule(1, "库存查询", 1, "库存")
	inactive.Status = model.RuleStatusInactive
	zeroPriority := rule(2, "库存盘点", 0, "库存")

	if result := Match("查库存", []model.Rule{inactive, zeroPriority}); result != nil {
		t.Errorf("expected no match from inactive/invalid rules, got rule %d", result.Rule.ID)
	}
}

func TestMatch_Deterministic(t *testing.T) {
	rules := []model.Rule{
		rule(1, "库存查询", 10, "库存", "查询"),
		rule(2, "检测报告", 10, "检测", "报告"),
		rule(3, "生产跟踪", 5, "跟踪", "生产"),
	}

	first := Match("查询生产跟踪情况", rules)
	if first == nil {
		t.Fatal("expected a match")
	}
	for i := 0; i < 50; i++ {
		again := Match("查询生产跟踪情况", rules)
		if again == nil || again.Rule.ID != first.Rule.ID || again.Score != first.Score {
			t.Fatalf("run %d: result changed: %+v vs %+v", i, again, first)
		}
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		haystack string
		needle   string
		want     bool
	}{
		{"查询深圳工厂的库存", "深圳工厂", true},
		{"查询深圳工厂的库存", "库存", true},
		{"Check INVENTORY now", "inventory", true},
		{"查询库存", "检测", false},
		{"查询库存", "", false},
	}

	for _, tt := range tests {
		if got := Contains(tt.haystack, tt.needle); got != tt.want {
			t.Errorf("Contains(%q, %q) = %v, want %v", tt.haystack, tt.needle, got, tt.want)
		}
	}
}
