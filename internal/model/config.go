package model

// SheetNames 六张报表的输出 sheet 名
type SheetNames struct {
	Attribute  string `json:"attribute"`
	Conversion string `json:"conversion"`
	Monthly    string `json:"monthly"`
	Event      string `json:"event"`
	Staff      string `json:"staff"`
	Route      string `json:"route"`
}

// AnalysisConfig 一次运行的分析配置
//
// 运行开始时构造一次，之后只读，按指针传给各组件。
type AnalysisConfig struct {
	Columns          []ColumnRule `json:"columns"`
	ConversionValues []string     `json:"conversionValues"`
	ExecutionValues  []string     `json:"executionValues"`
	StaffMinSamples  int          `json:"staffMinSamples"`
	RouteMinSamples  int          `json:"routeMinSamples"`
	Sheets           SheetNames   `json:"sheets"`
}

// Rule 返回字段对应的列规则
func (c *AnalysisConfig) Rule(f Field) (ColumnRule, bool) {
	for _, r := range c.Columns {
		if r.Field == f {
			return r, true
		}
	}
	return ColumnRule{}, false
}
