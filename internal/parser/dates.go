package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Excel 序列值的有效范围（1900-01-01 ~ 9999-12-31）
const (
	minExcelSerial = 1
	maxExcelSerial = 2958466
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/1/2",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2",
	"2006年1月2日 15:04:05",
	"2006年1月2日 15:04",
	"2006年1月2日",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"2006-01",
	"2006/1",
	"2006年1月",
	"2006",
}

var weekdayLabels = [7]string{"日", "月", "火", "水", "木", "金", "土"}

// ParseDate 将单元格解析为日期
//
// 支持 time.Time、Excel 序列值（数值或数字字符串）以及常见日期字符串。
// 不带时区的字符串保持原始时刻，不做时区换算。
func ParseDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return x, !x.IsZero()
	case float64:
		return fromSerial(x)
	case float32:
		return fromSerial(float64(x))
	case int:
		return fromSerial(float64(x))
	case int64:
		return fromSerial(float64(x))
	}

	s := CellString(v)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromSerial(f)
	}
	return time.Time{}, false
}

func fromSerial(f float64) (time.Time, bool) {
	if f < minExcelSerial || f >= maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, false
	}
	// 序列值带浮点误差，按分钟取整
	return t.Round(time.Minute), true
}

// YearMonth 返回 "YYYY-MM"；无法解析时返回 ""
func YearMonth(v any) string {
	t, ok := ParseDate(v)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// EventLabel 返回 "MM/DD(曜) HH:MM"；无法解析时返回 ""
func EventLabel(v any) string {
	t, ok := ParseDate(v)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%02d/%02d(%s) %02d:%02d",
		int(t.Month()), t.Day(), weekdayLabels[t.Weekday()], t.Hour(), t.Minute())
}

// LabelMonth 取 "MM/DD..." 标签的月份；无法解析返回 0
func LabelMonth(label string) int {
	if len(label) < 2 {
		return 0
	}
	m, err := strconv.Atoi(strings.TrimSpace(label[:2]))
	if err != nil {
		return 0
	}
	return m
}
