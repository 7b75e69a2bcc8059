package report

import (
	"leadreport/internal/analysis"
	"leadreport/internal/model"
)

// 交叉分析的六组属性对
var crossPairs = [][2]model.Field{
	{model.FieldAge, model.FieldIncome},
	{model.FieldAge, model.FieldCredit},
	{model.FieldAge, model.FieldWillingness},
	{model.FieldIncome, model.FieldCredit},
	{model.FieldIncome, model.FieldWillingness},
	{model.FieldCredit, model.FieldWillingness},
}

// AttributeConversion 属性 × 成約率
//
// Part A：各属性按成約率降序并附合计；Part B：六组属性交叉的申込数与成約率。
func AttributeConversion(ds *analysis.Dataset, name string) model.Sheet {
	b := newSheetBuilder("属性 × 成約率 クロス分析", 8)
	b.blank()

	for _, attr := range available(ds, breakdownAttributes) {
		rows := analysis.ConversionBy(ds.Records, ds.Key(attr.field), analysis.Converted, analysis.Executed)
		analysis.SortByRate(rows)
		total := analysis.Sum("合計", rows)

		b.section(attr.label + " × 成約率")
		summaryTable{keyHeader: attr.label, countHeader: "申込数", rateHeader: "対申込成約率"}.write(b, rows, &total)
		b.blank()
	}

	labels := make(map[model.Field]string, len(breakdownAttributes))
	for _, a := range breakdownAttributes {
		labels[a.field] = a.label
	}
	for _, p := range crossPairs {
		if !ds.Has(p[0]) || !ds.Has(p[1]) {
			continue
		}
		crossPair(b, labels[p[0]]+" × "+labels[p[1]], ds.Records, ds.Key(p[0]), ds.Key(p[1]))
	}
	return b.sheet(name)
}
