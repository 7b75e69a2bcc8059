package analysis

import (
	"strconv"

	"github.com/montanaflynn/stats"
)

// Placeholder 分母为 0 时的占位符
const Placeholder = "-"

// Pct 百分比字符串（一位小数 + "%"）；分母为 0 返回占位符
func Pct(num, denom int) string {
	if denom == 0 {
		return Placeholder
	}
	return formatOneDecimal(float64(num)/float64(denom)*100) + "%"
}

// RatePercent 成約率（百分数）；分母为 0 时为 0
func RatePercent(num, denom int) float64 {
	if denom == 0 {
		return 0
	}
	return float64(num) / float64(denom) * 100
}

// PointDelta 两个百分数之差，非负时带 "+"，单位 pt
func PointDelta(rate, base float64) string {
	diff := rate - base
	s := formatOneDecimal(diff)
	if diff >= 0 {
		s = "+" + s
	}
	return s + "pt"
}

func formatOneDecimal(v float64) string {
	rounded, err := stats.Round(v, 1)
	if err != nil {
		return Placeholder
	}
	return strconv.FormatFloat(rounded, 'f', 1, 64)
}
