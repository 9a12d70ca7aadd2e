package engine

import (
	"fmt"
	"sort"

	"core/internal/model"
)

// maxDistinctItems caps how many distinct values a summary card lists.
const maxDistinctItems = 5

// categoricalHints mark display labels worth a distinct-value card:
// status-like, result-like, supplier-like columns.
var categoricalHints = []string{"状态", "结果", "供应商", "等级", "类别"}

// Messages for the two expected "nothing to show" outcomes. They must stay
// distinguishable: no matching rule vs. a matched rule with zero rows.
const (
	MsgNoRecords = "未找到符合条件的记录"
)

// Answer is the formatted result of a matched, executed rule.
type Answer struct {
	Columns []string
	Rows    []map[string]interface{}
	Cards   []model.SummaryCard
	Message string
}

// FormatAnswer turns executed rows into the response body. Column labels
// are whatever the query template aliased them to; no renaming happens
// here. Zero rows produce an explicit empty-result message rather than an
// empty table.
func FormatAnswer(rows []map[string]interface{}, rule *model.Rule) *Answer {
	if len(rows) == 0 {
		return &Answer{
			Rows:    []map[string]interface{}{},
			Cards:   []model.SummaryCard{},
			Message: MsgNoRecords,
		}
	}

	columns := columnOrder(rows[0], rule.DisplayFields)
	cards := []model.SummaryCard{{
		Label: "记录总数",
		Value: fmt.Sprintf("%d", len(rows)),
	}}
	for _, col := range columns {
		if !isCategorical(col) {
			continue
		}
		if card, ok := distinctCard(rows, col); ok {
			cards = append(cards, card)
		}
	}

	return &Answer{
		Columns: columns,
		Rows:    rows,
		Cards:   cards,
		Message: fmt.Sprintf("共找到 %d 条记录", len(rows)),
	}
}

// columnOrder prefers the rule's declared display fields; otherwise the
// first row's labels, sorted for a stable response shape.
func columnOrder(row map[string]interface{}, declared []string) []string {
	if len(declared) > 0 {
		return declared
	}
	columns := make([]string, 0, len(row))
	for label := range row {
		columns = append(columns, label)
	}
	sort.Strings(columns)
	return columns
}

func isCategorical(label string) bool {
	for _, hint := range categoricalHints {
		if Contains(label, hint) {
			return true
		}
	}
	return false
}

// distinctCard counts distinct values of one column, capped for display.
func distinctCard(rows []map[string]interface{}, label string) (model.SummaryCard, bool) {
	counts := make(map[string]int)
	for _, row := range rows {
		v, ok := row[label]
		if !ok || v == nil {
			continue
		}
		counts[fmt.Sprintf("%v", v)]++
	}
	if len(counts) == 0 {
		return model.SummaryCard{}, false
	}

	items := make([]model.CardItem, 0, len(counts))
	for name, count := range counts {
		items = append(items, model.CardItem{Name: name, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Name < items[j].Name
	})
	if len(items) > maxDistinctItems {
		items = items[:maxDistinctItems]
	}

	return model.SummaryCard{
		Label: label,
		Value: fmt.Sprintf("%d", len(counts)),
		Items: items,
	}, true
}
