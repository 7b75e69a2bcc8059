package parser

import (
	"leadreport/internal/model"
)

// SheetRecognizer 申込数据 Sheet 识别器
type SheetRecognizer struct {
	rules []model.ColumnRule
}

// NewSheetRecognizer 创建识别器
func NewSheetRecognizer(rules []model.ColumnRule) *SheetRecognizer {
	return &SheetRecognizer{rules: rules}
}

// Recognize 按表头能命中的列规则数打分
func (r *SheetRecognizer) Recognize(sheetName string, columnNames []string) SheetRecognitionResult {
	result := SheetRecognitionResult{
		SheetName:     sheetName,
		MissingFields: []string{},
	}
	if len(r.rules) == 0 {
		return result
	}

	for _, rule := range r.rules {
		if FindColumnByRule(columnNames, rule) != model.NotFound {
			result.MatchedFields++
			continue
		}
		result.MissingFields = append(result.MissingFields, string(rule.Field))
	}
	result.Confidence = float64(result.MatchedFields) / float64(len(r.rules))
	return result
}

// Best 从多个 sheet 中选出置信度最高者（并列取靠前的）
//
// 没有 sheet 达到 MinConfidence 时退而取命中列最多的 sheet；都未命中时取第一个。
// 仅在 results 为空时返回 false。
func (r *SheetRecognizer) Best(results []SheetRecognitionResult) (SheetRecognitionResult, bool) {
	if len(results) == 0 {
		return SheetRecognitionResult{}, false
	}
	best := 0
	for i, res := range results[1:] {
		if res.MatchedFields > results[best].MatchedFields {
			best = i + 1
		}
	}
	return results[best], true
}
