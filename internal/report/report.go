// Package report 生成六张申込分析报表。
//
// 每张报表都是 model.Sheet：标题行、小节行、表头、数据行、合计行和空行。
// 属性列未定位时对应小节整体省略。
package report

import (
	"leadreport/internal/analysis"
	"leadreport/internal/model"
)

// 默认 sheet 名
const (
	DefaultAttributeSheet  = "1_属性分布"
	DefaultConversionSheet = "2_属性x成約率"
	DefaultMonthlySheet    = "3_月別推移"
	DefaultEventSheet      = "4_セミナー別"
	DefaultStaffSheet      = "5_担当者別"
	DefaultRouteSheet      = "6_流入経路別"
)

// DefaultSheetNames 返回默认 sheet 名
func DefaultSheetNames() model.SheetNames {
	return model.SheetNames{
		Attribute:  DefaultAttributeSheet,
		Conversion: DefaultConversionSheet,
		Monthly:    DefaultMonthlySheet,
		Event:      DefaultEventSheet,
		Staff:      DefaultStaffSheet,
		Route:      DefaultRouteSheet,
	}
}

// Builder 单张报表的生成器
type Builder struct {
	Name  string
	Build func(ds *analysis.Dataset) model.Sheet
}

// Builders 按输出顺序返回六个生成器
func Builders(ds *analysis.Dataset) []Builder {
	names := DefaultSheetNames()
	if ds != nil && ds.Config != nil {
		names = withDefaults(ds.Config.Sheets)
	}
	return []Builder{
		{Name: names.Attribute, Build: bind(AttributeDistribution, names.Attribute)},
		{Name: names.Conversion, Build: bind(AttributeConversion, names.Conversion)},
		{Name: names.Monthly, Build: bind(MonthlyTrend, names.Monthly)},
		{Name: names.Event, Build: bind(EventBreakdown, names.Event)},
		{Name: names.Staff, Build: bind(StaffBreakdown, names.Staff)},
		{Name: names.Route, Build: bind(RouteBreakdown, names.Route)},
	}
}

func bind(fn func(*analysis.Dataset, string) model.Sheet, name string) func(*analysis.Dataset) model.Sheet {
	return func(ds *analysis.Dataset) model.Sheet { return fn(ds, name) }
}

// Build 生成全部六张报表
func Build(ds *analysis.Dataset) []model.Sheet {
	builders := Builders(ds)
	out := make([]model.Sheet, 0, len(builders))
	for _, b := range builders {
		out = append(out, b.Build(ds))
	}
	return out
}

func withDefaults(n model.SheetNames) model.SheetNames {
	d := DefaultSheetNames()
	pick := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	return model.SheetNames{
		Attribute:  pick(n.Attribute, d.Attribute),
		Conversion: pick(n.Conversion, d.Conversion),
		Monthly:    pick(n.Monthly, d.Monthly),
		Event:      pick(n.Event, d.Event),
		Staff:      pick(n.Staff, d.Staff),
		Route:      pick(n.Route, d.Route),
	}
}

// attribute 参与交叉分析的属性
type attribute struct {
	field model.Field
	label string
}

// 属性分布表使用完整标签
var distributionAttributes = []attribute{
	{model.FieldAge, "年齢"},
	{model.FieldIncome, "年収"},
	{model.FieldJob, "職業"},
	{model.FieldCredit, "クレジットカード有無"},
	{model.FieldWillingness, "入会意欲"},
}

var breakdownAttributes = []attribute{
	{model.FieldAge, "年齢"},
	{model.FieldIncome, "年収"},
	{model.FieldJob, "職業"},
	{model.FieldCredit, "クレカ有無"},
	{model.FieldWillingness, "入会意欲"},
}

// available 过滤掉列未定位的属性
func available(ds *analysis.Dataset, attrs []attribute) []attribute {
	out := make([]attribute, 0, len(attrs))
	for _, a := range attrs {
		if ds.Has(a.field) {
			out = append(out, a)
		}
	}
	return out
}

// notice 列缺失时只写一行提示
func notice(name, msg string) model.Sheet {
	return model.Sheet{Name: name, Rows: []model.Row{{Cells: []any{msg}}}}
}
