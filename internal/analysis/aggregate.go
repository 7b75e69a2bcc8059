package analysis

import (
	"sort"

	"leadreport/internal/model"
)

// CategoryCount 分类计数
type CategoryCount struct {
	Category string
	Count    int
}

// Conversion 单个分类的成约汇总
type Conversion struct {
	Category  string
	Total     int
	Executed  int
	Converted int
}

// Rate 成約数 / 総数，总数为 0 时为 0
func (c Conversion) Rate() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Converted) / float64(c.Total)
}

// CountBy 按分类计数，空值不计
func CountBy(records []*model.Record, key KeyFunc) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		v := key(r)
		if v == "" {
			continue
		}
		counts[v]++
	}
	return counts
}

// RankByCount 按件数降序排列；件数相同按分类名升序
func RankByCount(counts map[string]int) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for cat, n := range counts {
		out = append(out, CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// ConversionBy 按分类汇总 総数 / 実施数 / 成約数
//
// 结果按分类首次出现的顺序返回，排序由调用方决定。
func ConversionBy(records []*model.Record, key KeyFunc, converted, executed FlagFunc) []Conversion {
	index := make(map[string]int)
	var out []Conversion
	for _, r := range records {
		cat := key(r)
		if cat == "" {
			continue
		}
		i, ok := index[cat]
		if !ok {
			i = len(out)
			index[cat] = i
			out = append(out, Conversion{Category: cat})
		}
		out[i].Total++
		if executed(r) {
			out[i].Executed++
		}
		if converted(r) {
			out[i].Converted++
		}
	}
	return out
}

// Tally 将一组记录汇总为一行
func Tally(label string, records []*model.Record) Conversion {
	c := Conversion{Category: label, Total: len(records)}
	for _, r := range records {
		if r.Executed {
			c.Executed++
		}
		if r.Converted {
			c.Converted++
		}
	}
	return c
}

// Sum 合计多行汇总
func Sum(label string, rows []Conversion) Conversion {
	out := Conversion{Category: label}
	for _, r := range rows {
		out.Total += r.Total
		out.Executed += r.Executed
		out.Converted += r.Converted
	}
	return out
}

// SortByRate 按成約率降序（稳定排序，并列保持原顺序）
func SortByRate(rows []Conversion) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Rate() > rows[j].Rate()
	})
}

// SortByConverted 按成約数降序（稳定排序）
func SortByConverted(rows []Conversion) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Converted > rows[j].Converted
	})
}

// CrossTable 二维计数表
type CrossTable struct {
	Rows   []string
	Cols   []string
	Counts map[string]map[string]int
}

// Count 取单元格计数，缺省为 0
func (t *CrossTable) Count(row, col string) int {
	return t.Counts[row][col]
}

// CrossTab 二维分组计数；任一键为空的记录跳过
func CrossTab(records []*model.Record, rowKey, colKey KeyFunc) *CrossTable {
	t := &CrossTable{Counts: make(map[string]map[string]int)}
	rowSet := make(map[string]struct{})
	colSet := make(map[string]struct{})

	for _, r := range records {
		rv, cv := rowKey(r), colKey(r)
		if rv == "" || cv == "" {
			continue
		}
		rowSet[rv] = struct{}{}
		colSet[cv] = struct{}{}
		if t.Counts[rv] == nil {
			t.Counts[rv] = make(map[string]int)
		}
		t.Counts[rv][cv]++
	}

	t.Rows = sortedKeys(rowSet)
	t.Cols = sortedKeys(colSet)
	return t
}

// CrossRate 二维计数 + 成約数
type CrossRate struct {
	Rows      []string
	Cols      []string
	Totals    map[string]map[string]int
	Converted map[string]map[string]int
}

// Total 单元格件数
func (t *CrossRate) Total(row, col string) int {
	return t.Totals[row][col]
}

// Conv 单元格成約数
func (t *CrossRate) Conv(row, col string) int {
	return t.Converted[row][col]
}

// Rate 单元格成約率；件数为 0 时返回占位符
func (t *CrossRate) Rate(row, col string) string {
	return Pct(t.Conv(row, col), t.Total(row, col))
}

// CrossConvRate 二维分组，同时累计件数与成約数
func CrossConvRate(records []*model.Record, rowKey, colKey KeyFunc, converted FlagFunc) *CrossRate {
	t := &CrossRate{
		Totals:    make(map[string]map[string]int),
		Converted: make(map[string]map[string]int),
	}
	rowSet := make(map[string]struct{})
	colSet := make(map[string]struct{})

	for _, r := range records {
		rv, cv := rowKey(r), colKey(r)
		if rv == "" || cv == "" {
			continue
		}
		rowSet[rv] = struct{}{}
		colSet[cv] = struct{}{}
		if t.Totals[rv] == nil {
			t.Totals[rv] = make(map[string]int)
			t.Converted[rv] = make(map[string]int)
		}
		t.Totals[rv][cv]++
		if converted(r) {
			t.Converted[rv][cv]++
		}
	}

	t.Rows = sortedKeys(rowSet)
	t.Cols = sortedKeys(colSet)
	return t
}

// Categories 返回去重排序后的非空分类
func Categories(records []*model.Record, key KeyFunc) []string {
	set := make(map[string]struct{})
	for _, r := range records {
		if v := key(r); v != "" {
			set[v] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// GroupBy 按键分组；keys 为首次出现顺序
func GroupBy(records []*model.Record, key KeyFunc) (groups map[string][]*model.Record, keys []string) {
	groups = make(map[string][]*model.Record)
	for _, r := range records {
		v := key(r)
		if v == "" {
			continue
		}
		if _, ok := groups[v]; !ok {
			keys = append(keys, v)
		}
		groups[v] = append(groups[v], r)
	}
	return groups, keys
}

// Filter 返回满足条件的记录
func Filter(records []*model.Record, keep func(*model.Record) bool) []*model.Record {
	out := make([]*model.Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// HasValue 键非空
func HasValue(key KeyFunc) func(*model.Record) bool {
	return func(r *model.Record) bool { return key(r) != "" }
}

// CountIf 统计满足标志的记录数
func CountIf(records []*model.Record, flag FlagFunc) int {
	n := 0
	for _, r := range records {
		if flag(r) {
			n++
		}
	}
	return n
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
