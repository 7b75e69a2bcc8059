package analysis

import (
	"leadreport/internal/classify"
	"leadreport/internal/model"
	"leadreport/internal/parser"
)

// Enrich 按行顺序计算派生字段
func Enrich(table *model.Table, fields model.FieldMap, cfg *model.AnalysisConfig) []*model.Record {
	conversion := toSet(cfg.ConversionValues)
	execution := toSet(cfg.ExecutionValues)

	resultIdx := fields.Index(model.FieldResult)
	execIdx := fields.Index(model.FieldExecution)
	appDateIdx := fields.Index(model.FieldAppDate)
	routeIdx := fields.Index(model.FieldFrontRoute)
	willIdx := fields.Index(model.FieldWillingness)
	eventIdx := fields.Index(model.FieldEventDate)

	records := make([]*model.Record, 0, len(table.Rows))
	for _, row := range table.Rows {
		r := &model.Record{Cells: row}

		_, r.Converted = conversion[parser.GetCell(row, resultIdx)]
		_, r.Executed = execution[parser.GetCell(row, execIdx)]
		r.AppMonth = parser.YearMonth(r.Cell(appDateIdx))

		if routeIdx != model.NotFound {
			r.RouteCategory = classify.CategorizeRoute(r.Cell(routeIdx))
		}
		if willIdx != model.NotFound {
			r.WillingnessShort = classify.ShortenWillingness(r.Cell(willIdx))
		}
		if eventIdx != model.NotFound {
			r.EventLabel = parser.EventLabel(r.Cell(eventIdx))
		}

		records = append(records, r)
	}
	return records
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}
