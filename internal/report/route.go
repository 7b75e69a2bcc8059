package report

import (
	"fmt"

	"leadreport/internal/analysis"
	"leadreport/internal/classify"
	"leadreport/internal/model"
)

// channelKey 流入経路大分類 → チャネル大分類
var channelKey = analysis.Map(analysis.RouteCategory, classify.ChannelGroup)

// RouteBreakdown フロント流入経路別
func RouteBreakdown(ds *analysis.Dataset, name string) model.Sheet {
	if !ds.Has(model.FieldFrontRoute) {
		return notice(name, "フロント登録経路カラムが見つかりませんでした")
	}

	b := newSheetBuilder("フロント流入経路別分析", 8)
	b.blank()

	routes := analysis.ConversionBy(ds.Records, analysis.RouteCategory, analysis.Converted, analysis.Executed)
	analysis.SortByConverted(routes)
	total := analysis.Sum("合計", routes)

	b.section("流入経路（大分類）× 成約率")
	summaryTable{keyHeader: "流入経路", countHeader: "件数", rateHeader: "対申込成約率"}.write(b, routes, &total)
	b.blank()

	channels := analysis.ConversionBy(ds.Records, channelKey, analysis.Converted, analysis.Executed)
	analysis.SortByConverted(channels)

	b.section("チャネル大分類 × 成約率")
	summaryTable{keyHeader: "チャネル", countHeader: "件数", rateHeader: "対申込成約率"}.write(b, channels, nil)
	b.blank()

	minSamples := ds.Config.RouteMinSamples
	byRoute, _ := analysis.GroupBy(ds.Records, analysis.RouteCategory)
	var main []group
	for _, r := range routes {
		if r.Total >= minSamples {
			main = append(main, group{label: r.Category, records: byRoute[r.Category]})
		}
	}

	for _, attr := range available(ds, breakdownAttributes) {
		key := ds.Key(attr.field)
		categories := analysis.Categories(ds.Records, key)

		b.section(fmt.Sprintf("流入経路 × %s【構成比 %%】（n≧%d）", attr.label, minSamples))
		compositionMatrix{groupHeader: "流入経路", categories: categories, withN: true, skipEmpty: true}.write(b, key, main)
		b.blank()

		b.section(fmt.Sprintf("流入経路 × %s【成約率 %%】（n≧%d）", attr.label, minSamples))
		rateMatrix{
			groupHeader: "流入経路",
			categories:  categories,
			withN:       true,
			skipEmpty:   true,
			attrOnly:    true,
		}.write(b, key, main)
		b.blank()
	}
	return b.sheet(name)
}
