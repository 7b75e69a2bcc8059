package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NormalizeHeader 规范化表头：只去掉内嵌换行，大小写与空格保持原样
func NormalizeHeader(name string) string {
	name = strings.ReplaceAll(name, "\n", "")
	name = strings.ReplaceAll(name, "\r", "")
	return name
}

// ContainsAll 检查字符串是否包含全部关键词
func ContainsAll(text string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(text, kw) {
			return false
		}
	}
	return true
}

// ContainsAny 检查字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// CellString 单元格值转显示字符串并去除首尾空白
//
// nil / 空串统一为 ""。所有比较、计数都必须经过这里。
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case []byte:
		return strings.TrimSpace(string(x))
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return strings.TrimSpace(x.String())
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// GetCell 取一行中的单元格字符串；索引越界或为 -1 时返回 ""
func GetCell(row []any, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return CellString(row[idx])
}
