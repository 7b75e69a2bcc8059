package importer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"leadreport/internal/parser"
)

var leadHeaders = []any{"年齢", "現在の年収", "結果", "実施可否", "申込日時", "フロント\n登録経路"}

func writeWorkbook(t *testing.T, sheets map[string][][]any, order ...string) string {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()

	for _, name := range order {
		if _, err := wb.NewSheet(name); err != nil {
			t.Fatalf("NewSheet %s: %v", name, err)
		}
		for i, row := range sheets[name] {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			r := row
			if err := wb.SetSheetRow(name, cell, &r); err != nil {
				t.Fatalf("SetSheetRow %s failed: %v", name, err)
			}
		}
	}
	if err := wb.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("DeleteSheet: %v", err)
	}

	path := filepath.Join(t.TempDir(), "leads.xlsx")
	if err := wb.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestLoad_DetectsLeadSheet(t *testing.T) {
	t.Parallel()

	applied := time.Date(2025, 11, 2, 9, 0, 0, 0, time.UTC)
	path := writeWorkbook(t, map[string][][]any{
		"メモ": {{"備考"}, {"なし"}},
		"申込一覧": {
			leadHeaders,
			{"30代", "400万", "成約", "実施済み", applied, "さきAI_YT_01"},
			{"40代", "600万", "見送り", "", applied, ""},
		},
	}, "メモ", "申込一覧")

	table, err := NewLoader(parser.DefaultColumnRules()).Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Name != "申込一覧" {
		t.Fatalf("sheet=%q, want 申込一覧", table.Name)
	}
	if got := table.RowCount(); got != 2 {
		t.Fatalf("rows=%d, want 2", got)
	}
	if got := table.Headers[5]; got != "フロント\n登録経路" {
		t.Fatalf("header[5]=%q", got)
	}
	// 日期单元格以序列值读出
	if got := parser.YearMonth(table.Rows[0][4]); got != "2025-11" {
		t.Fatalf("YearMonth=%q, want 2025-11", got)
	}
}

func TestLoad_DetectsSheetWithFewKnownColumns(t *testing.T) {
	t.Parallel()

	// 11 条规则只命中 5 条，低于识别阈值也要读取
	few := []any{"年齢", "現在の年収", "結果", "実施可否", "申込日時"}
	path := writeWorkbook(t, map[string][][]any{
		"メモ": {{"備考"}, {"なし"}},
		"申込": {few, {"30代", "400万", "成約", "実施済み", "2025/11/02"}},
	}, "メモ", "申込")

	table, err := NewLoader(parser.DefaultColumnRules()).Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Name != "申込" || table.RowCount() != 1 {
		t.Fatalf("unexpected table %s rows=%d", table.Name, table.RowCount())
	}

	unrelated := writeWorkbook(t, map[string][][]any{"メモ": {{"備考"}, {"なし"}}}, "メモ")
	table, err = NewLoader(parser.DefaultColumnRules()).Load(unrelated, "")
	if err != nil {
		t.Fatalf("Load unrelated: %v", err)
	}
	if table.Name != "メモ" {
		t.Fatalf("sheet=%q, want メモ", table.Name)
	}
}

func TestLoad_NamedSheet(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, map[string][][]any{
		"A": {{"x"}, {"1"}},
		"B": {leadHeaders, {"30代"}},
	}, "A", "B")

	l := NewLoader(parser.DefaultColumnRules())
	table, err := l.Load(path, "A")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Name != "A" || table.RowCount() != 1 {
		t.Fatalf("unexpected table %s rows=%d", table.Name, table.RowCount())
	}

	if _, err := l.Load(path, "C"); !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("err=%v, want ErrSheetNotFound", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	l := NewLoader(parser.DefaultColumnRules())

	if _, err := l.Load(filepath.Join(t.TempDir(), "missing.xlsx"), ""); !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("err=%v, want ErrSourceNotFound", err)
	}

	headerOnly := writeWorkbook(t, map[string][][]any{"申込": {leadHeaders}}, "申込")
	if _, err := l.Load(headerOnly, "申込"); !errors.Is(err, ErrNoData) {
		t.Fatalf("err=%v, want ErrNoData", err)
	}

	empty := writeWorkbook(t, map[string][][]any{"空": nil}, "空")
	if _, err := l.Load(empty, ""); !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("err=%v, want ErrSheetNotFound", err)
	}

	txt := filepath.Join(t.TempDir(), "leads.txt")
	if err := os.WriteFile(txt, []byte("a"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := l.Load(txt, ""); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err=%v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	src := "\xef\xbb\xbf年齢,結果,実施可否\n30代,成約,実施済み\n40代,見送り\n"
	table, err := LoadCSV(strings.NewReader(src), "leads")
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if table.Headers[0] != "年齢" {
		t.Fatalf("BOM not stripped: %q", table.Headers[0])
	}
	if table.RowCount() != 2 || len(table.Rows[1]) != 2 {
		t.Fatalf("unexpected rows %+v", table.Rows)
	}

	if _, err := LoadCSV(strings.NewReader("年齢,結果\n"), "empty"); !errors.Is(err, ErrNoData) {
		t.Fatalf("err=%v, want ErrNoData", err)
	}
}
