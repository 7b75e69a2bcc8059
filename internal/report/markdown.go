package report

import (
	"fmt"
	"strings"

	"leadreport/internal/model"
)

// Markdown 将报表渲染为 Markdown（供浏览器预览）
//
// 标题行和单格行输出为段落，"■ " 行输出为小标题，其余连续行输出为表格，首行作表头。
func Markdown(sheets []model.Sheet) string {
	var sb strings.Builder
	for _, s := range sheets {
		fmt.Fprintf(&sb, "## %s\n\n", s.Name)
		var table [][]string
		for _, r := range s.Rows {
			cells := cellTexts(r.Cells)
			switch {
			case len(cells) == 0:
				flushTable(&sb, table)
				table = nil
			case len(cells) == 1 || r.Bold:
				flushTable(&sb, table)
				table = nil
				if label, ok := strings.CutPrefix(cells[0], "■ "); ok {
					fmt.Fprintf(&sb, "### %s\n\n", label)
				} else if r.Bold {
					fmt.Fprintf(&sb, "**%s**\n\n", cells[0])
				} else {
					fmt.Fprintf(&sb, "%s\n\n", cells[0])
				}
			default:
				table = append(table, cells)
			}
		}
		flushTable(&sb, table)
	}
	return sb.String()
}

// cellTexts 去掉行尾空格子；整行为空时返回 nil
func cellTexts(cells []any) []string {
	out := make([]string, len(cells))
	last := -1
	for i, c := range cells {
		if c == nil {
			continue
		}
		out[i] = strings.ReplaceAll(fmt.Sprint(c), "|", `\|`)
		if out[i] != "" {
			last = i
		}
	}
	return out[:last+1]
}

func flushTable(sb *strings.Builder, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	line := func(cells []string) {
		padded := make([]string, width)
		copy(padded, cells)
		sb.WriteString("| " + strings.Join(padded, " | ") + " |\n")
	}
	line(rows[0])
	sep := make([]string, width)
	for i := range sep {
		sep[i] = "---"
	}
	line(sep)
	for _, r := range rows[1:] {
		line(r)
	}
	sb.WriteString("\n")
}
