package model

// Field 逻辑字段名（列定位的目标）
type Field string

const (
	FieldAge         Field = "age"         // 年齢
	FieldIncome      Field = "income"      // 現在の年収
	FieldJob         Field = "job"         // 職業
	FieldCredit      Field = "credit"      // クレジットカード
	FieldWillingness Field = "willingness" // 入会意欲
	FieldResult      Field = "result"      // 結果
	FieldExecution   Field = "execution"   // 実施可否
	FieldAppDate     Field = "app_date"    // 申込日時
	FieldStaff       Field = "staff"       // 個別相談 担当者
	FieldFrontRoute  Field = "front_route" // フロント登録経路
	FieldEventDate   Field = "event_date"  // セミナー参加日
)

// NotFound 列未找到时的索引
const NotFound = -1

// AllFields 全部逻辑字段（固定顺序，日志与诊断输出按此顺序）
var AllFields = []Field{
	FieldAge,
	FieldIncome,
	FieldJob,
	FieldCredit,
	FieldWillingness,
	FieldResult,
	FieldExecution,
	FieldAppDate,
	FieldStaff,
	FieldFrontRoute,
	FieldEventDate,
}

// IsKnownField 判断是否为已定义的逻辑字段
func IsKnownField(f Field) bool {
	for _, known := range AllFields {
		if known == f {
			return true
		}
	}
	return false
}

// ColumnRule 列定位规则
//
// 规范化后的表头须包含全部 Include 标记且不含任一 Exclude 标记。
type ColumnRule struct {
	Field   Field    `json:"field"`
	Include []string `json:"include"`
	Exclude []string `json:"exclude,omitempty"`
}

// FieldMap 逻辑字段 → 列索引（未找到为 NotFound）
type FieldMap map[Field]int

// Index 返回字段的列索引
func (m FieldMap) Index(f Field) int {
	idx, ok := m[f]
	if !ok {
		return NotFound
	}
	return idx
}

// Found 字段是否已定位
func (m FieldMap) Found(f Field) bool {
	return m.Index(f) != NotFound
}

// Missing 返回未定位的字段（按 AllFields 顺序）
func (m FieldMap) Missing() []Field {
	var out []Field
	for _, f := range AllFields {
		if idx, ok := m[f]; ok && idx == NotFound {
			out = append(out, f)
		}
	}
	return out
}
