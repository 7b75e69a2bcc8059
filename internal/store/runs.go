package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// 运行状态
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// 触发方式
const (
	TriggerCLI      = "cli"
	TriggerAPI      = "api"
	TriggerUpload   = "upload"
	TriggerSchedule = "schedule"
)

// ErrRunNotFound 运行记录不存在
var ErrRunNotFound = errors.New("run not found")

// AnalysisRun 一次分析运行
type AnalysisRun struct {
	ID           string     `db:"id" json:"id"`
	Trigger      string     `db:"trigger_type" json:"trigger"`
	SourcePath   string     `db:"source_path" json:"sourcePath"`
	SourceSheet  string     `db:"source_sheet" json:"sourceSheet"`
	OutputPath   string     `db:"output_path" json:"outputPath"`
	Status       string     `db:"status" json:"status"`
	RecordCount  int        `db:"record_count" json:"recordCount"`
	WarningsJSON string     `db:"warnings_json" json:"-"`
	ErrorMessage string     `db:"error_message" json:"errorMessage,omitempty"`
	ElapsedMs    int64      `db:"elapsed_ms" json:"elapsedMs"`
	StartedAt    time.Time  `db:"started_at" json:"startedAt"`
	CompletedAt  *time.Time `db:"completed_at" json:"completedAt,omitempty"`
}

// Warnings 解析告警列表
func (r *AnalysisRun) Warnings() []string {
	var out []string
	if r.WarningsJSON == "" {
		return out
	}
	_ = json.Unmarshal([]byte(r.WarningsJSON), &out)
	return out
}

// RunResult 运行结束时写回的字段
type RunResult struct {
	Status       string
	SourceSheet  string
	RecordCount  int
	Warnings     []string
	ErrorMessage string
	Elapsed      time.Duration
}

// RunSheet 一次运行写出的 sheet
type RunSheet struct {
	RunID     string `db:"run_id" json:"-"`
	Position  int    `db:"position" json:"position"`
	SheetName string `db:"sheet_name" json:"sheetName"`
	RowCount  int    `db:"row_count" json:"rowCount"`
}

// CreateRun 创建运行记录（状态 running）
func (s *Store) CreateRun(run *AnalysisRun) error {
	if run.Status == "" {
		run.Status = RunStatusRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.WarningsJSON == "" {
		run.WarningsJSON = "[]"
	}
	_, err := s.db.NamedExec(`
		INSERT INTO analysis_runs (
			id, trigger_type, source_path, source_sheet, output_path,
			status, record_count, warnings_json, error_message, elapsed_ms, started_at
		) VALUES (
			:id, :trigger_type, :source_path, :source_sheet, :output_path,
			:status, :record_count, :warnings_json, :error_message, :elapsed_ms, :started_at
		)
	`, run)
	if err != nil {
		return fmt.Errorf("failed to create analysis run: %w", err)
	}
	return nil
}

// FinishRun 写入运行结果
func (s *Store) FinishRun(id string, res RunResult) error {
	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	b, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}

	result, err := s.db.Exec(`
		UPDATE analysis_runs SET
			status = ?,
			source_sheet = CASE WHEN ? = '' THEN source_sheet ELSE ? END,
			record_count = ?,
			warnings_json = ?,
			error_message = ?,
			elapsed_ms = ?,
			completed_at = ?
		WHERE id = ?
	`, res.Status, res.SourceSheet, res.SourceSheet, res.RecordCount, string(b), res.ErrorMessage,
		res.Elapsed.Milliseconds(), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to finish analysis run: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// GetRun 按 id 查询
func (s *Store) GetRun(id string) (*AnalysisRun, error) {
	var run AnalysisRun
	err := s.db.Get(&run, "SELECT * FROM analysis_runs WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, err
	}
	return &run, nil
}

// ListRuns 最近的运行记录（按开始时间倒序）
func (s *Store) ListRuns(limit int) ([]*AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}
	runs := []*AnalysisRun{}
	if err := s.db.Select(&runs, "SELECT * FROM analysis_runs ORDER BY started_at DESC, rowid DESC LIMIT ?", limit); err != nil {
		return nil, fmt.Errorf("failed to list analysis runs: %w", err)
	}
	return runs, nil
}

// LastRun 最近一次运行；没有记录时返回 nil
func (s *Store) LastRun() (*AnalysisRun, error) {
	runs, err := s.ListRuns(1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

// InsertRunSheet 记录写出的 sheet
func (s *Store) InsertRunSheet(sheet RunSheet) error {
	_, err := s.db.NamedExec(`
		INSERT INTO run_sheets (run_id, position, sheet_name, row_count)
		VALUES (:run_id, :position, :sheet_name, :row_count)
	`, sheet)
	if err != nil {
		return fmt.Errorf("failed to insert run sheet: %w", err)
	}
	return nil
}

// ListRunSheets 查询一次运行写出的 sheet
func (s *Store) ListRunSheets(runID string) ([]RunSheet, error) {
	sheets := []RunSheet{}
	err := s.db.Select(&sheets, `
		SELECT run_id, position, sheet_name, row_count
		FROM run_sheets WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list run sheets: %w", err)
	}
	return sheets, nil
}
