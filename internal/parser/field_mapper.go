package parser

import (
	"leadreport/internal/model"
)

// FindColumn 返回第一个（按原顺序）规范化后包含 keyword 的表头索引；找不到返回 -1
func FindColumn(headers []string, keyword string) int {
	return FindColumnByRule(headers, model.ColumnRule{Include: []string{keyword}})
}

// FindColumnByRule 按组合规则定位列
func FindColumnByRule(headers []string, rule model.ColumnRule) int {
	if len(rule.Include) == 0 {
		return model.NotFound
	}
	for i, h := range headers {
		col := NormalizeHeader(h)
		if !ContainsAll(col, rule.Include) {
			continue
		}
		if ContainsAny(col, rule.Exclude) {
			continue
		}
		return i
	}
	return model.NotFound
}

// FieldMapper 字段映射器
type FieldMapper struct {
	rules []model.ColumnRule
}

// NewFieldMapper 创建字段映射器
func NewFieldMapper(rules []model.ColumnRule) *FieldMapper {
	return &FieldMapper{rules: rules}
}

// Map 为每条规则定位列，返回映射与未找到的字段
//
// 每个配置过的字段恰好一条记录（可能为 -1）。
func (m *FieldMapper) Map(headers []string) (model.FieldMap, []model.Field) {
	fields := make(model.FieldMap, len(m.rules))
	var missing []model.Field
	for _, rule := range m.rules {
		idx := FindColumnByRule(headers, rule)
		fields[rule.Field] = idx
		if idx == model.NotFound {
			missing = append(missing, rule.Field)
		}
	}
	return fields, missing
}

// ResolveColumns 按规则定位全部逻辑字段
func ResolveColumns(headers []string, rules []model.ColumnRule) (model.FieldMap, []model.Field) {
	return NewFieldMapper(rules).Map(headers)
}

// DefaultColumnRules 默认列定位规则
func DefaultColumnRules() []model.ColumnRule {
	return []model.ColumnRule{
		{Field: model.FieldAge, Include: []string{"年齢"}},
		{Field: model.FieldIncome, Include: []string{"現在の年収"}},
		{Field: model.FieldJob, Include: []string{"職業を教えて"}},
		{Field: model.FieldCredit, Include: []string{"クレジットカード"}},
		{Field: model.FieldWillingness, Include: []string{"受講してみたい"}},
		{Field: model.FieldResult, Include: []string{"結果"}},
		{Field: model.FieldExecution, Include: []string{"実施可否"}},
		{Field: model.FieldAppDate, Include: []string{"申込日時"}},
		// 担当者：须同时含「個別相談」「担当者」
		{Field: model.FieldStaff, Include: []string{"個別相談", "担当者"}},
		// 联合汇总表里有同名列，须排除「集計シート」
		{Field: model.FieldFrontRoute, Include: []string{"フロント", "登録経路"}, Exclude: []string{"集計シート"}},
		{Field: model.FieldEventDate, Include: []string{"セミナー参加日"}},
	}
}
