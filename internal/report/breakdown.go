package report

import (
	"leadreport/internal/analysis"
	"leadreport/internal/model"
)

// sheetBuilder 按顺序拼装报表行
type sheetBuilder struct {
	rows []model.Row
}

// newSheetBuilder 标题行按 width 补齐，决定整张表的最小宽度
func newSheetBuilder(title string, width int) *sheetBuilder {
	if width < 1 {
		width = 1
	}
	cells := make([]any, width)
	cells[0] = title
	for i := 1; i < width; i++ {
		cells[i] = ""
	}
	return &sheetBuilder{rows: []model.Row{{Cells: cells, Bold: true}}}
}

func (b *sheetBuilder) add(cells ...any) {
	b.rows = append(b.rows, model.Row{Cells: cells})
}

func (b *sheetBuilder) section(label string) {
	b.add("■ " + label)
}

func (b *sheetBuilder) header(cells ...string) {
	b.add(texts(cells...)...)
}

func (b *sheetBuilder) blank() {
	b.add()
}

func (b *sheetBuilder) sheet(name string) model.Sheet {
	return model.Sheet{Name: name, Rows: b.rows}
}

func texts(ss ...string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// group 一个分组（行标签 + 该组记录）
type group struct {
	label   string
	records []*model.Record
}

// groupsOf 按 labels 的顺序取出 GroupBy 结果
func groupsOf(byKey map[string][]*model.Record, labels []string) []group {
	out := make([]group, 0, len(labels))
	for _, l := range labels {
		out = append(out, group{label: l, records: byKey[l]})
	}
	return out
}

// summaryTable 成约汇总表：件数 / 実施数 / 実施率 / 成約数 / 两种成約率
type summaryTable struct {
	keyHeader   string
	countHeader string
	rateHeader  string
	// extraHeaders / extra 在基本列之后追加的列
	extraHeaders []string
	extra        func(c analysis.Conversion) []any
}

func (t summaryTable) write(b *sheetBuilder, rows []analysis.Conversion, total *analysis.Conversion) {
	b.header(append([]string{t.keyHeader, t.countHeader, "実施数", "実施率", "成約数", t.rateHeader, "対実施成約率"}, t.extraHeaders...)...)
	for _, c := range rows {
		cells := conversionCells(c)
		if t.extra != nil {
			cells = append(cells, t.extra(c)...)
		}
		b.add(cells...)
	}
	if total != nil {
		b.add(conversionCells(*total)...)
	}
}

func conversionCells(c analysis.Conversion) []any {
	return []any{
		c.Category,
		c.Total,
		c.Executed,
		analysis.Pct(c.Executed, c.Total),
		c.Converted,
		analysis.Pct(c.Converted, c.Total),
		analysis.Pct(c.Converted, c.Executed),
	}
}

// rateMatrix 分组 × 属性分类的成約率矩阵，末列为该组整体成約率
type rateMatrix struct {
	groupHeader string
	categories  []string
	// withN 在标签后输出样本数列
	withN bool
	// skipEmpty 跳过样本数为 0 的分组
	skipEmpty bool
	// attrOnly 分组人口只取属性非空的记录
	attrOnly bool
	// footerLabel 非空时追加一行，人口为 footer
	footerLabel string
	footer      []*model.Record
}

func (m rateMatrix) write(b *sheetBuilder, attr analysis.KeyFunc, groups []group) {
	head := []string{m.groupHeader}
	if m.withN {
		head = append(head, "n")
	}
	head = append(head, m.categories...)
	head = append(head, "全体")
	b.header(head...)

	for _, g := range groups {
		pop := m.population(attr, g.records)
		if m.skipEmpty && len(pop) == 0 {
			continue
		}
		b.add(m.row(g.label, attr, pop)...)
	}
	if m.footerLabel != "" {
		b.add(m.row(m.footerLabel, attr, m.population(attr, m.footer))...)
	}
}

func (m rateMatrix) population(attr analysis.KeyFunc, records []*model.Record) []*model.Record {
	if !m.attrOnly {
		return records
	}
	return analysis.Filter(records, analysis.HasValue(attr))
}

func (m rateMatrix) row(label string, attr analysis.KeyFunc, pop []*model.Record) []any {
	cells := []any{label}
	if m.withN {
		cells = append(cells, len(pop))
	}
	byCat, _ := analysis.GroupBy(pop, attr)
	for _, cat := range m.categories {
		sub := byCat[cat]
		cells = append(cells, analysis.Pct(analysis.CountIf(sub, analysis.Converted), len(sub)))
	}
	cells = append(cells, analysis.Pct(analysis.CountIf(pop, analysis.Converted), len(pop)))
	return cells
}

// compositionMatrix 分组 × 属性分类的构成比矩阵（分母为组内属性非空的记录数）
type compositionMatrix struct {
	groupHeader string
	categories  []string
	withN       bool
	skipEmpty   bool
}

func (m compositionMatrix) write(b *sheetBuilder, attr analysis.KeyFunc, groups []group) {
	head := []string{m.groupHeader}
	if m.withN {
		head = append(head, "n")
	}
	b.header(append(head, m.categories...)...)

	for _, g := range groups {
		counts := analysis.CountBy(g.records, attr)
		n := 0
		for _, c := range counts {
			n += c
		}
		if m.skipEmpty && n == 0 {
			continue
		}
		cells := []any{g.label}
		if m.withN {
			cells = append(cells, n)
		}
		for _, cat := range m.categories {
			cells = append(cells, analysis.Pct(counts[cat], n))
		}
		b.add(cells...)
	}
}

// crossPair 两属性交叉：申込数表 + 成約率表
func crossPair(b *sheetBuilder, label string, records []*model.Record, rowKey, colKey analysis.KeyFunc) {
	cr := analysis.CrossConvRate(records, rowKey, colKey, analysis.Converted)

	b.section(label + "【申込数】")
	b.header(append(append([]string{""}, cr.Cols...), "合計")...)
	for _, rc := range cr.Rows {
		cells := []any{rc}
		sum := 0
		for _, cc := range cr.Cols {
			n := cr.Total(rc, cc)
			cells = append(cells, n)
			sum += n
		}
		b.add(append(cells, sum)...)
	}
	b.blank()

	b.section(label + "【成約率 %】")
	b.header(append(append([]string{""}, cr.Cols...), "合計")...)
	for _, rc := range cr.Rows {
		cells := []any{rc}
		rowN, rowConv := 0, 0
		for _, cc := range cr.Cols {
			cells = append(cells, cr.Rate(rc, cc))
			rowN += cr.Total(rc, cc)
			rowConv += cr.Conv(rc, cc)
		}
		b.add(append(cells, analysis.Pct(rowConv, rowN))...)
	}
	b.blank()
}
