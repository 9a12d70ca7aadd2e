package engine

import (
	"fmt"
	"reflect"
	"testing"

	"core/internal/model"
)

func TestFormatAnswer_EmptyResult(t *testing.T) {
	r := &model.Rule{ID: 1, IntentName: "库存查询"}

	answer := FormatAnswer(nil, r)
	if answer.Message != MsgNoRecords {
		t.Errorf("expected empty-result message, got %q", answer.Message)
	}
	if answer.Rows == nil || len(answer.Rows) != 0 {
		t.Errorf("expected empty (non-nil) rows, got %v", answer.Rows)
	}
}

func TestFormatAnswer_TotalCard(t *testing.T) {
	rows := []map[string]interface{}{
		{"物料名称": "玻璃盖板", "数量": 120},
		{"物料名称": "电池", "数量": 80},
	}
	answer := FormatAnswer(rows, &model.Rule{ID: 1})

	if len(answer.Cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(answer.Cards))
	}
	if answer.Cards[0].Value != "2" {
		t.Errorf("expected total 2, got %q", answer.Cards[0].Value)
	}
	if answer.Message != "共找到 2 条记录" {
		t.Errorf("unexpected message %q", answer.Message)
	}
}

func TestFormatAnswer_DistinctCardCapped(t *testing.T) {
	var rows []map[string]interface{}
	for i := 0; i < 8; i++ {
		rows = append(rows, map[string]interface{}{
			"物料名称": "玻璃盖板",
			"检验状态": fmt.Sprintf("状态%d", i),
		})
	}
	// one duplicated status so the top item is unambiguous
	rows = append(rows, map[string]interface{}{"物料名称": "电池", "检验状态": "状态0"})

	answer := FormatAnswer(rows, &model.Rule{ID: 1})

	var statusCard *model.SummaryCard
	for i := range answer.Cards {
		if answer.Cards[i].Label == "检验状态" {
			statusCard = &answer.Cards[i]
		}
	}
	if statusCard == nil {
		t.Fatal("expected a distinct-value card for 检验状态")
	}
	if statusCard.Value != "8" {
		t.Errorf("expected 8 distinct values, got %q", statusCard.Value)
	}
	if len(statusCard.Items) != maxDistinctItems {
		t.Errorf("expected items capped at %d, got %d", maxDistinctItems, len(statusCard.Items))
	}
	if statusCard.Items[0].Name != "状态0" || statusCard.Items[0].Count != 2 {
		t.Errorf("expected 状态0(2) first, got %+v", statusCard.Items[0])
	}
}

func TestFormatAnswer_ColumnOrder(t *testing.T) {
	rows := []map[string]interface{}{
		{"数量": 1, "物料名称": "电池", "供应商": "聚龙光电"},
	}

	declared := &model.Rule{ID: 1, DisplayFields: []string{"物料名称", "供应商", "数量"}}
	answer := FormatAnswer(rows, declared)
	if !reflect.DeepEqual(answer.Columns, declared.DisplayFields) {
		t.Errorf("declared order not honored: %v", answer.Columns)
	}

	undeclared := &model.Rule{ID: 2}
	answer = FormatAnswer(rows, undeclared)
	want := []string{"供应商", "数量", "物料名称"}
	if !reflect.DeepEqual(answer.Columns, want) {
		t.Errorf("expected sorted fallback order %v, got %v", want, answer.Columns)
	}
}

func TestFormatAnswer_LabelsNotRenamed(t *testing.T) {
	rows := []map[string]interface{}{
		{"库存数量": 5},
	}
	answer := FormatAnswer(rows, &model.Rule{ID: 1})
	if _, ok := answer.Rows[0]["库存数量"]; !ok {
		t.Error("template-assigned label must pass through untouched")
	}
}
