// Package analysis 申込数据的派生字段计算与聚合原语。
//
// 聚合原语与字段无关：分组键与标志都以函数传入，新增报表不需要改动这里。
package analysis

import (
	"leadreport/internal/model"
	"leadreport/internal/parser"
)

// KeyFunc 从记录中取分组键；返回 "" 表示该记录不参与分组
type KeyFunc func(r *model.Record) string

// FlagFunc 记录级标志
type FlagFunc func(r *model.Record) bool

// Column 按列索引取规范化后的单元格值；idx 为 -1 时恒为空
func Column(idx int) KeyFunc {
	return func(r *model.Record) string {
		if idx == model.NotFound {
			return ""
		}
		return parser.CellString(r.Cell(idx))
	}
}

// AppMonth 申込月
func AppMonth(r *model.Record) string { return r.AppMonth }

// RouteCategory 流入経路大分類
func RouteCategory(r *model.Record) string { return r.RouteCategory }

// Willingness 入会意欲（短縮）
func Willingness(r *model.Record) string { return r.WillingnessShort }

// EventLabel セミナー日ラベル
func EventLabel(r *model.Record) string { return r.EventLabel }

// Converted 成約
func Converted(r *model.Record) bool { return r.Converted }

// Executed 実施
func Executed(r *model.Record) bool { return r.Executed }

// Map 在键上叠加一层映射（空值仍为空）
func Map(key KeyFunc, fn func(string) string) KeyFunc {
	return func(r *model.Record) string {
		v := key(r)
		if v == "" {
			return ""
		}
		return fn(v)
	}
}
