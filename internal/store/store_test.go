package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "data", "leadreport.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestRunLifecycle(t *testing.T) {
	st := newTestStore(t)

	run := &AnalysisRun{ID: "run-1", Trigger: TriggerCLI, SourcePath: "leads.xlsx", OutputPath: "out.xlsx"}
	if err := st.CreateRun(run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	got, err := st.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != RunStatusRunning || got.CompletedAt != nil {
		t.Fatalf("unexpected new run: %+v", got)
	}

	err = st.FinishRun("run-1", RunResult{
		Status:      RunStatusSuccess,
		SourceSheet: "申込一覧",
		RecordCount: 5,
		Warnings:    []string{"カラム「credit」が見つかりませんでした"},
		Elapsed:     1500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err = st.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != RunStatusSuccess || got.RecordCount != 5 || got.ElapsedMs != 1500 {
		t.Fatalf("unexpected finished run: %+v", got)
	}
	if got.SourceSheet != "申込一覧" || got.CompletedAt == nil {
		t.Fatalf("unexpected finished run: %+v", got)
	}
	if w := got.Warnings(); len(w) != 1 {
		t.Fatalf("warnings=%v", w)
	}
}

func TestFinishRun_Unknown(t *testing.T) {
	st := newTestStore(t)
	err := st.FinishRun("nope", RunResult{Status: RunStatusFailed})
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("err=%v, want ErrRunNotFound", err)
	}
	if _, err := st.GetRun("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("err=%v, want ErrRunNotFound", err)
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	st := newTestStore(t)

	if last, err := st.LastRun(); err != nil || last != nil {
		t.Fatalf("LastRun on empty store = %v, %v", last, err)
	}

	base := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		run := &AnalysisRun{ID: id, Trigger: TriggerSchedule, StartedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := st.CreateRun(run); err != nil {
			t.Fatalf("CreateRun %s: %v", id, err)
		}
	}

	runs, err := st.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("unexpected order: %v %v", runs[0].ID, runs[1].ID)
	}

	last, err := st.LastRun()
	if err != nil || last == nil || last.ID != "c" {
		t.Fatalf("LastRun = %v, %v", last, err)
	}
}

func TestRunSheets(t *testing.T) {
	st := newTestStore(t)

	for i, name := range []string{"1_属性分布", "2_属性x成約率"} {
		if err := st.InsertRunSheet(RunSheet{RunID: "r", Position: i + 1, SheetName: name, RowCount: 10 * (i + 1)}); err != nil {
			t.Fatalf("InsertRunSheet: %v", err)
		}
	}
	sheets, err := st.ListRunSheets("r")
	if err != nil {
		t.Fatalf("ListRunSheets: %v", err)
	}
	if len(sheets) != 2 || sheets[1].SheetName != "2_属性x成約率" || sheets[1].RowCount != 20 {
		t.Fatalf("unexpected sheets: %+v", sheets)
	}
}

func TestConfigKV(t *testing.T) {
	st := newTestStore(t)

	if _, err := st.GetConfig("last_scheduled_date"); !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("err=%v, want ErrConfigNotFound", err)
	}
	if err := st.SetConfig("last_scheduled_date", "2026-01-05"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if err := st.SetConfig("last_scheduled_date", "2026-01-06"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	v, err := st.GetConfig("last_scheduled_date")
	if err != nil || v != "2026-01-06" {
		t.Fatalf("GetConfig = %q, %v", v, err)
	}
}
