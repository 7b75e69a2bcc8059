package report

import (
	"leadreport/internal/analysis"
	"leadreport/internal/model"
)

// MonthlyTrend 月別推移
//
// 月按 "YYYY-MM" 升序；合计行覆盖全部记录（包括申込日无法解析的记录）。
func MonthlyTrend(ds *analysis.Dataset, name string) model.Sheet {
	b := newSheetBuilder("月別推移分析", 8)
	b.blank()

	byMonth, _ := analysis.GroupBy(ds.Records, analysis.AppMonth)
	months := groupsOf(byMonth, analysis.Categories(ds.Records, analysis.AppMonth))

	rows := make([]analysis.Conversion, 0, len(months))
	for _, m := range months {
		rows = append(rows, analysis.Tally(m.label, m.records))
	}
	total := analysis.Tally("合計", ds.Records)

	b.section("月別サマリー")
	summaryTable{keyHeader: "月", countHeader: "申込数", rateHeader: "対申込成約率"}.write(b, rows, &total)
	b.blank()

	for _, attr := range available(ds, breakdownAttributes) {
		key := ds.Key(attr.field)
		categories := analysis.Categories(ds.Records, key)

		b.section("月別 × " + attr.label + "【成約率 %】")
		rateMatrix{
			groupHeader: "月",
			categories:  categories,
			footerLabel: "合計",
			footer:      ds.Records,
		}.write(b, key, months)
		b.blank()

		b.section("月別 × " + attr.label + "【構成比 %】")
		compositionMatrix{groupHeader: "月", categories: categories}.write(b, key, months)
		b.blank()
	}
	return b.sheet(name)
}
