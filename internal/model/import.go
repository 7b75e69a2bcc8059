package model

// Table 源数据表：表头 + 数据行
//
// 单元格可能是 string / 数值 / time.Time / nil，按位置与表头对齐；读入后不再修改。
type Table struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"-"`
}

// RowCount 数据行数（不含表头）
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Record 一条申込记录：原始单元格 + 派生字段
type Record struct {
	Cells []any

	Converted        bool   // 成約フラグ
	Executed         bool   // 実施フラグ
	AppMonth         string // 申込月 YYYY-MM
	RouteCategory    string // 流入経路大分類
	WillingnessShort string // 入会意欲（短縮）
	EventLabel       string // セミナー日ラベル
}

// Cell 返回指定列的原始值；越界或未定位时返回 nil
func (r *Record) Cell(idx int) any {
	if r == nil || idx < 0 || idx >= len(r.Cells) {
		return nil
	}
	return r.Cells[idx]
}
