package report

import (
	"leadreport/internal/analysis"
	"leadreport/internal/model"
)

// EventBreakdown セミナー別
//
// 只统计有セミナー日的记录；分类也只取这些记录。
func EventBreakdown(ds *analysis.Dataset, name string) model.Sheet {
	b := newSheetBuilder("セミナー別分析", 8)
	b.blank()

	attended := analysis.Filter(ds.Records, analysis.HasValue(analysis.EventLabel))
	byEvent, labels := analysis.GroupBy(attended, analysis.EventLabel)
	analysis.SortEventLabels(labels)
	events := groupsOf(byEvent, labels)

	rows := make([]analysis.Conversion, 0, len(events))
	for _, e := range events {
		rows = append(rows, analysis.Tally(e.label, e.records))
	}
	total := analysis.Tally("合計", attended)

	b.section("セミナー別サマリー")
	summaryTable{keyHeader: "セミナー日", countHeader: "申込数", rateHeader: "対申込成約率"}.write(b, rows, &total)
	b.blank()

	for _, attr := range available(ds, breakdownAttributes) {
		key := ds.Key(attr.field)
		categories := analysis.Categories(attended, key)

		b.section("セミナー別 × " + attr.label + "【構成比 %】")
		compositionMatrix{groupHeader: "セミナー日", categories: categories, withN: true, skipEmpty: true}.write(b, key, events)
		b.blank()

		b.section("セミナー別 × " + attr.label + "【成約率 %】")
		rateMatrix{
			groupHeader: "セミナー日",
			categories:  categories,
			withN:       true,
			skipEmpty:   true,
			attrOnly:    true,
		}.write(b, key, events)
		b.blank()
	}
	return b.sheet(name)
}
