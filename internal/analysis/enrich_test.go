package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadreport/internal/model"
	"leadreport/internal/parser"
)

func testConfig() *model.AnalysisConfig {
	return &model.AnalysisConfig{
		Columns:          parser.DefaultColumnRules(),
		ConversionValues: []string{"成約", "GH成約（クロスセル/99万）"},
		ExecutionValues:  []string{"実施済み", "実施", "再アポ実施済み"},
		StaffMinSamples:  10,
		RouteMinSamples:  8,
	}
}

func TestPrepare_DerivesFields(t *testing.T) {
	t.Parallel()

	table := &model.Table{
		Headers: []string{"申込日時", "結果", "実施可否", "フロント\n登録経路", "受講してみたいですか？", "セミナー参加日"},
		Rows: [][]any{
			{"2025/10/03 14:22", " 成約 ", "実施済み", "さきAI_YTQR_01", "入会をほぼ決めている", time.Date(2025, 12, 20, 19, 30, 0, 0, time.UTC)},
			{"壊れた日付", "GH成約（クロスセル/99万）", "キャンセル", "", "その他の回答", "未定"},
			{nil, "見送り", "再アポ実施済み"},
		},
	}

	ds, err := Prepare(table, testConfig())
	require.NoError(t, err)
	require.Len(t, ds.Records, 3)

	r0 := ds.Records[0]
	assert.True(t, r0.Converted)
	assert.True(t, r0.Executed)
	assert.Equal(t, "2025-10", r0.AppMonth)
	assert.Equal(t, "さきAI_YT(QR)", r0.RouteCategory)
	assert.Equal(t, "ほぼ決めている", r0.WillingnessShort)
	assert.Equal(t, "12/20(土) 19:30", r0.EventLabel)

	r1 := ds.Records[1]
	assert.True(t, r1.Converted)
	assert.False(t, r1.Executed)
	assert.Equal(t, "", r1.AppMonth)
	assert.Equal(t, "不明", r1.RouteCategory)
	assert.Equal(t, "その他の回答", r1.WillingnessShort)
	assert.Equal(t, "", r1.EventLabel)

	// 短行：缺失的单元格视为空
	r2 := ds.Records[2]
	assert.False(t, r2.Converted)
	assert.True(t, r2.Executed)
	assert.Equal(t, "不明", r2.RouteCategory)
	assert.Equal(t, "", r2.WillingnessShort)
}

func TestPrepare_MissingColumnsWarnAndStayEmpty(t *testing.T) {
	t.Parallel()

	table := &model.Table{
		Headers: []string{"年齢", "結果"},
		Rows:    [][]any{{"30代", "成約"}},
	}
	ds, err := Prepare(table, testConfig())
	require.NoError(t, err)

	assert.Len(t, ds.Warnings, len(model.AllFields)-2)
	assert.False(t, ds.Has(model.FieldFrontRoute))
	assert.True(t, ds.Has(model.FieldAge))

	r := ds.Records[0]
	assert.Equal(t, "", r.RouteCategory)
	assert.Equal(t, "", r.WillingnessShort)
	assert.Equal(t, "", r.EventLabel)
	assert.False(t, r.Executed)
	assert.True(t, r.Converted)
	assert.Equal(t, "30代", ds.Key(model.FieldAge)(r))
	assert.Equal(t, "", ds.Key(model.FieldCredit)(r))
}

func TestPrepare_NilInputs(t *testing.T) {
	t.Parallel()

	_, err := Prepare(nil, testConfig())
	assert.Error(t, err)
	_, err = Prepare(&model.Table{}, nil)
	assert.Error(t, err)
}
