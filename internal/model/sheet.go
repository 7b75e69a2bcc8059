package model

// Row 报表输出行
//
// 行宽可以参差不齐，写出前由导出器补齐到同一块的最大宽度。
type Row struct {
	Cells []any `json:"cells"`
	Bold  bool  `json:"bold,omitempty"` // 标题/表头行需要加粗
}

// Sheet 一张报表（对应输出工作簿中的一个 sheet）
type Sheet struct {
	Name string `json:"name"`
	Rows []Row  `json:"rows"`
}

// Width 返回最宽行的列数
func (s *Sheet) Width() int {
	w := 0
	for _, r := range s.Rows {
		if len(r.Cells) > w {
			w = len(r.Cells)
		}
	}
	return w
}

// Padded 返回补齐到同一宽度的二维数组
func (s *Sheet) Padded() [][]any {
	w := s.Width()
	out := make([][]any, len(s.Rows))
	for i, r := range s.Rows {
		row := make([]any, w)
		copy(row, r.Cells)
		for j := len(r.Cells); j < w; j++ {
			row[j] = ""
		}
		out[i] = row
	}
	return out
}
