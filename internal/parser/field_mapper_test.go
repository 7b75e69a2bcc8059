package parser

import (
	"testing"

	"leadreport/internal/model"
)

func TestFindColumn_FirstMatchInOriginalOrder(t *testing.T) {
	t.Parallel()

	headers := []string{"氏名", "年齢（自己申告）", "年齢"}
	if got := FindColumn(headers, "年齢"); got != 1 {
		t.Fatalf("want 1, got %d", got)
	}
	if got := FindColumn(headers, "住所"); got != model.NotFound {
		t.Fatalf("want not found, got %d", got)
	}
}

func TestFindColumnByRule_FrontRouteSkipsSummaryColumn(t *testing.T) {
	t.Parallel()

	headers := []string{
		"フロント登録経路（集計シート用）",
		"フロント\n登録経路",
	}
	rule := model.ColumnRule{
		Field:   model.FieldFrontRoute,
		Include: []string{"フロント", "登録経路"},
		Exclude: []string{"集計シート"},
	}
	if got := FindColumnByRule(headers, rule); got != 1 {
		t.Fatalf("want 1, got %d", got)
	}
}

func TestFindColumnByRule_StaffNeedsBothMarkers(t *testing.T) {
	t.Parallel()

	headers := []string{"担当者", "セミナー担当者", "個別相談\n担当者"}
	rule := model.ColumnRule{Field: model.FieldStaff, Include: []string{"個別相談", "担当者"}}
	if got := FindColumnByRule(headers, rule); got != 2 {
		t.Fatalf("want 2, got %d", got)
	}
}

func TestResolveColumns_MissingFieldsReported(t *testing.T) {
	t.Parallel()

	headers := leadHeaders()
	// 去掉信用卡列
	filtered := make([]string, 0, len(headers))
	for _, h := range headers {
		if h == "クレジットカードはお持ちですか？" {
			continue
		}
		filtered = append(filtered, h)
	}

	fields, missing := ResolveColumns(filtered, DefaultColumnRules())
	if len(fields) != len(model.AllFields) {
		t.Fatalf("every configured field needs one entry, got %d", len(fields))
	}
	if len(missing) != 1 || missing[0] != model.FieldCredit {
		t.Fatalf("unexpected missing: %v", missing)
	}
	if fields.Index(model.FieldCredit) != model.NotFound {
		t.Fatalf("credit should be not found")
	}
	if fields.Index(model.FieldWillingness) != 5 {
		t.Fatalf("willingness index want 5, got %d", fields.Index(model.FieldWillingness))
	}
	if got := fields.Missing(); len(got) != 1 || got[0] != model.FieldCredit {
		t.Fatalf("FieldMap.Missing unexpected: %v", got)
	}
}
