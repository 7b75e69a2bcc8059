package analysis

import (
	"fmt"
	"log"

	"leadreport/internal/model"
	"leadreport/internal/parser"
)

// Dataset 一次运行的全部输入：列映射 + 派生后的记录
type Dataset struct {
	Headers  []string
	Fields   model.FieldMap
	Records  []*model.Record
	Config   *model.AnalysisConfig
	Warnings []string
}

// Prepare 定位列、记录缺失告警并派生每行字段
func Prepare(table *model.Table, cfg *model.AnalysisConfig) (*Dataset, error) {
	if table == nil {
		return nil, fmt.Errorf("source table is nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("analysis config is nil")
	}

	fields, missing := parser.ResolveColumns(table.Headers, cfg.Columns)
	warnings := make([]string, 0, len(missing))
	for _, f := range missing {
		msg := fmt.Sprintf("カラム「%s」が見つかりませんでした", f)
		log.Printf("[analysis] WARNING: %s", msg)
		warnings = append(warnings, msg)
	}

	return &Dataset{
		Headers:  table.Headers,
		Fields:   fields,
		Records:  Enrich(table, fields, cfg),
		Config:   cfg,
		Warnings: warnings,
	}, nil
}

// Key 返回字段对应的分组键；willingness 使用短标签
func (d *Dataset) Key(f model.Field) KeyFunc {
	if f == model.FieldWillingness {
		return Willingness
	}
	return Column(d.Fields.Index(f))
}

// Has 字段是否已定位
func (d *Dataset) Has(f model.Field) bool {
	return d.Fields.Found(f)
}
