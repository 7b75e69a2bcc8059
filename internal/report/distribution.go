package report

import (
	"fmt"

	"leadreport/internal/analysis"
	"leadreport/internal/model"
)

// AttributeDistribution 属性分布：各属性按件数降序，占总数的比例
func AttributeDistribution(ds *analysis.Dataset, name string) model.Sheet {
	total := len(ds.Records)

	b := newSheetBuilder("個別申込者データ 属性分布", 4)
	b.add(fmt.Sprintf("総数: %d件", total), "", "", "")
	b.blank()

	for _, attr := range available(ds, distributionAttributes) {
		b.section(attr.label)
		b.header(attr.label, "件数", "割合")
		for _, c := range analysis.RankByCount(analysis.CountBy(ds.Records, ds.Key(attr.field))) {
			b.add(c.Category, c.Count, analysis.Pct(c.Count, total))
		}
		b.blank()
	}
	return b.sheet(name)
}
