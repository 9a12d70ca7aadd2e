package rulestore

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	"core/internal/model"
)

type fakeSource struct {
	rows []model.RuleRow
	err  error
}

func (f *fakeSource) ActiveRuleRows(ctx context.Context) ([]model.RuleRow, error) {
	return f.rows, f.err
}

func ruleRow(id int64, name, triggers string) model.RuleRow {
	return model.RuleRow{
		ID:           id,
		IntentName:   name,
		TriggerWords: sql.NullString{String: triggers, Valid: triggers != ""},
		ActionTarget: sql.NullString{String: "SELECT 1", Valid: true},
		Priority:     sql.NullInt64{Int64: 10, Valid: true},
		Status:       model.RuleStatusActive,
	}
}

func TestLoad_TriggerWordRecovery(t *testing.T) {
	tests := []struct {
		name     string
		triggers string
		want     []string
	}{
		{
			name:     "JSON list",
			triggers: `["库存", "查询"]`,
			want:     []string{"库存", "查询"},
		},
		{
			name:     "comma-separated string",
			triggers: "a, b, c",
			want:     []string{"a", "b", "c"},
		},
		{
			name:     "fullwidth separators",
			triggers: "库存，查询、明细",
			want:     []string{"库存", "查询", "明细"},
		},
		{
			name:     "unparseable garbage falls back to intent name",
			triggers: `[{{"%%garbage`,
			want:     []string{"库存查询"},
		},
		{
			name:     "empty falls back to intent name",
			triggers: "",
			want:     []string{"库存查询"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := New(&fakeSource{rows: []model.RuleRow{ruleRow(1, "库存查询", tt.triggers)}})
			snap, err := store.Load(context.Background())
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(snap.Rules) != 1 {
				t.Fatalf("expected 1 rule, got %d", len(snap.Rules))
			}
			if !reflect.DeepEqual(snap.Rules[0].TriggerWords, tt.want) {
				t.Errorf("trigger words = %v, want %v", snap.Rules[0].TriggerWords, tt.want)
			}
		})
	}
}

func TestLoad_MalformedRowDoesNotAbortLoad(t *testing.T) {
	good := ruleRow(1, "库存查询", `["库存"]`)
	bad := ruleRow(2, "坏规则", `["检测"]`)
	bad.Synonyms = sql.NullString{String: `{{{not json`, Valid: true}
	bad.Parameters = sql.NullString{String: `%%%garbage%%%`, Valid: true}

	store := New(&fakeSource{rows: []model.RuleRow{good, bad}})
	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Rules) != 2 {
		t.Fatalf("expected both rules to load, got %d", len(snap.Rules))
	}
	if snap.Rules[1].Synonyms != nil {
		t.Errorf("malformed synonyms should degrade to nil, got %v", snap.Rules[1].Synonyms)
	}
	if snap.Rules[1].Parameters != nil {
		t.Errorf("malformed parameters should degrade to nil, got %v", snap.Rules[1].Parameters)
	}
}

func TestLoad_InvalidRulesExcluded(t *testing.T) {
	zeroPriority := ruleRow(1, "优先级为零", `["a"]`)
	zeroPriority.Priority = sql.NullInt64{Int64: 0, Valid: true}

	nullPriority := ruleRow(2, "优先级为空", `["b"]`)
	nullPriority.Priority = sql.NullInt64{}

	noTemplate := ruleRow(3, "没有模板", `["c"]`)
	noTemplate.ActionTarget = sql.NullString{}

	keep := ruleRow(4, "正常规则", `["d"]`)

	store := New(&fakeSource{rows: []model.RuleRow{zeroPriority, nullPriority, noTemplate, keep}})
	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Rules) != 1 || snap.Rules[0].ID != 4 {
		t.Errorf("expected only rule 4 to survive, got %+v", snap.Rules)
	}
}

func TestLoad_AtomicSwap(t *testing.T) {
	source := &fakeSource{rows: []model.RuleRow{ruleRow(1, "库存查询", `["库存"]`)}}
	store := New(source)

	first, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// A failed reload must leave the previous snapshot visible.
	source.err = errors.New("connection refused")
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatal("expected reload failure")
	}
	if got := store.Snapshot(); got.Version != first.Version {
		t.Errorf("failed reload replaced snapshot: v%d → v%d", first.Version, got.Version)
	}

	// A successful reload installs a new full generation.
	source.err = nil
	source.rows = append(source.rows, ruleRow(2, "检测查询", `["检测"]`))
	second, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if second.Version <= first.Version {
		t.Errorf("expected version to advance, got %d after %d", second.Version, first.Version)
	}
	if len(store.Snapshot().Rules) != 2 {
		t.Errorf("expected 2 rules in new snapshot, got %d", len(store.Snapshot().Rules))
	}

	// The old snapshot a reader might still hold is untouched.
	if len(first.Rules) != 1 {
		t.Errorf("old snapshot mutated: %d rules", len(first.Rules))
	}
}

func TestParseParams_Shapes(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantNames []string
		wantErr   bool
	}{
		{
			name:      "canonical array form",
			raw:       `[{"name": "factory", "type": "factory"}, {"name": "supplier", "type": "supplier"}]`,
			wantNames: []string{"factory", "supplier"},
		},
		{
			name:      "legacy object form keeps declaration order",
			raw:       `{"supplier": {"type": "supplier"}, "factory": {"type": "factory"}}`,
			wantNames: []string{"supplier", "factory"},
		},
		{
			name: "empty",
			raw:  "",
		},
		{
			name:    "garbage",
			raw:     "%%%",
			wantErr: true,
		},
		{
			name:    "array entry without name",
			raw:     `[{"type": "factory"}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := parseParams(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseParams() error = %v, wantErr %v", err, tt.wantErr)
			}
			var names []string
			for _, p := range params {
				names = append(names, p.Name)
			}
			if !reflect.DeepEqual(names, tt.wantNames) && !(len(names) == 0 && len(tt.wantNames) == 0) {
				t.Errorf("param names = %v, want %v", names, tt.wantNames)
			}
		})
	}
}

func TestDictionaryMerge(t *testing.T) {
	row := ruleRow(1, "库存查询", `["库存"]`)
	row.Parameters = sql.NullString{
		String: `[{"name": "factory", "type": "factory"}, {"name": "custom", "type": "factory", "extract_from": ["自定义"]}]`,
		Valid:  true,
	}

	store := New(&fakeSource{rows: []model.RuleRow{row}})
	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	params := snap.Rules[0].Parameters
	if len(params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(params))
	}
	if len(params[0].ExtractFrom) == 0 {
		t.Error("typed param without surface forms should inherit the built-in dictionary")
	}
	if params[0].Mapping["深圳"] != "深圳工厂" {
		t.Errorf("expected dictionary mapping 深圳→深圳工厂, got %v", params[0].Mapping)
	}
	if !reflect.DeepEqual(params[1].ExtractFrom, []string{"自定义"}) {
		t.Errorf("declared surface forms must not be overridden, got %v", params[1].ExtractFrom)
	}
}
