package analysis

import (
	"sort"
	"strings"

	"leadreport/internal/parser"
)

// seasonBoundaryMonth 月份 ≥ 此值的セミナー日视为跨年季的前一年
//
// 只适用于 10 月开始、次年结束的季度；其他跨年区间的数据需要调整。
const seasonBoundaryMonth = 10

// CompareEventLabels 比较两个 "MM/DD(曜) HH:MM" 标签
func CompareEventLabels(a, b string) int {
	ya, yb := seasonYear(a), seasonYear(b)
	if ya != yb {
		return ya - yb
	}
	return strings.Compare(a, b)
}

// SortEventLabels 按跨年季顺序排序
func SortEventLabels(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		return CompareEventLabels(labels[i], labels[j]) < 0
	})
}

func seasonYear(label string) int {
	if parser.LabelMonth(label) >= seasonBoundaryMonth {
		return 0
	}
	return 1
}
