package report

import (
	"fmt"

	"leadreport/internal/analysis"
	"leadreport/internal/model"
)

// StaffBreakdown 担当者別
//
// 汇总按成約率降序；属性细分只列出担当件数不少于 StaffMinSamples 的担当者，
// 末行为【全体平均】。
func StaffBreakdown(ds *analysis.Dataset, name string) model.Sheet {
	if !ds.Has(model.FieldStaff) {
		return notice(name, "担当者カラムが見つかりませんでした")
	}

	staffKey := ds.Key(model.FieldStaff)
	byStaff, _ := analysis.GroupBy(ds.Records, staffKey)
	rows := analysis.ConversionBy(ds.Records, staffKey, analysis.Converted, analysis.Executed)
	analysis.SortByRate(rows)

	allN := len(ds.Records)
	allConv := analysis.CountIf(ds.Records, analysis.Converted)
	allRate := analysis.RatePercent(allConv, allN)

	b := newSheetBuilder("担当者別分析", 9)
	b.blank()

	b.section("担当者別サマリー（成約率降順）")
	summaryTable{
		keyHeader:    "担当者",
		countHeader:  "担当数",
		rateHeader:   "対担当成約率",
		extraHeaders: []string{"全体成約率", "差分"},
		extra: func(c analysis.Conversion) []any {
			return []any{
				analysis.Pct(allConv, allN),
				analysis.PointDelta(analysis.RatePercent(c.Converted, c.Total), allRate),
			}
		},
	}.write(b, rows, nil)
	b.blank()

	minSamples := ds.Config.StaffMinSamples
	var main []group
	for _, r := range rows {
		if r.Total >= minSamples {
			main = append(main, group{label: r.Category, records: byStaff[r.Category]})
		}
	}

	for _, attr := range available(ds, breakdownAttributes) {
		key := ds.Key(attr.field)

		b.section(fmt.Sprintf("担当者別 × %s【成約率 %%】（担当%d件以上）", attr.label, minSamples))
		rateMatrix{
			groupHeader: "担当者",
			categories:  analysis.Categories(ds.Records, key),
			withN:       true,
			attrOnly:    true,
			footerLabel: "【全体平均】",
			footer:      ds.Records,
		}.write(b, key, main)
		b.blank()
	}
	return b.sheet(name)
}
