// Package runner 编排一次完整的分析运行：读取 → 派生 → 六张报表 → 写出。
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"leadreport/internal/analysis"
	"leadreport/internal/exporter"
	"leadreport/internal/importer"
	"leadreport/internal/model"
	"leadreport/internal/report"
	memstore "leadreport/internal/service/store"
	"leadreport/internal/store"
)

// ErrRunInProgress 已有运行在进行
var ErrRunInProgress = errors.New("analysis run already in progress")

// Request 运行请求
type Request struct {
	Trigger     string
	SourcePath  string
	SourceSheet string
	// OutputPath 为空时：xlsx 源写回源文件，其他写到导出目录
	OutputPath string
}

// SheetSummary 写出的单张报表
type SheetSummary struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// Result 运行结果
type Result struct {
	RunID       string         `json:"runId"`
	SourcePath  string         `json:"sourcePath"`
	SourceSheet string         `json:"sourceSheet"`
	OutputPath  string         `json:"outputPath"`
	RecordCount int            `json:"recordCount"`
	Sheets      []SheetSummary `json:"sheets"`
	Warnings    []string       `json:"warnings"`
	Elapsed     time.Duration  `json:"elapsed"`
}

// Options 协调器选项
type Options struct {
	// ExportDir 非 xlsx 源的默认输出目录
	ExportDir string
	// Store 运行记录；为 nil 时不落库
	Store *store.Store
	// Cache 最近结果缓存；为 nil 时不缓存
	Cache *memstore.MemoryStore
}

// Coordinator 分析运行协调器
//
// 同一时刻只允许一次运行。
type Coordinator struct {
	settings *model.AnalysisConfig
	loader   *importer.Loader
	opts     Options
	running  sync.Mutex
}

// NewCoordinator 创建协调器
func NewCoordinator(settings *model.AnalysisConfig, opts Options) *Coordinator {
	return &Coordinator{
		settings: settings,
		loader:   importer.NewLoader(settings.Columns),
		opts:     opts,
	}
}

// Settings 当前分析配置
func (c *Coordinator) Settings() *model.AnalysisConfig {
	return c.settings
}

// Start 异步执行，返回进度通道；通道在运行结束后关闭
func (c *Coordinator) Start(ctx context.Context, req Request) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		res, err := c.Run(ctx, req, func(ev ProgressEvent) { sendProgress(progressChan, ev) })
		if err != nil {
			sendProgress(progressChan, ProgressEvent{
				Type:      EventError,
				Message:   err.Error(),
				Timestamp: time.Now(),
			})
			return
		}
		sendProgress(progressChan, ProgressEvent{
			Type:      EventDone,
			Message:   fmt.Sprintf("分析完了（%.1f秒）", res.Elapsed.Seconds()),
			Percent:   100,
			Data:      res,
			Timestamp: time.Now(),
		})
	}()

	return progressChan
}

// Run 同步执行一次分析
//
// 读取失败时不写出任何报表；写出中途失败时保留已写入的 sheet 并返回错误。
func (c *Coordinator) Run(ctx context.Context, req Request, progress func(ProgressEvent)) (*Result, error) {
	if !c.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer c.running.Unlock()

	startTime := time.Now()
	res := &Result{
		RunID:       uuid.NewString(),
		SourcePath:  req.SourcePath,
		SourceSheet: req.SourceSheet,
	}
	output, err := c.resolveOutput(req)
	if err != nil {
		return nil, err
	}
	res.OutputPath = output

	c.createRun(res, req.Trigger)
	log.Printf("[runner] 分析開始: run=%s source=%s trigger=%s", res.RunID, req.SourcePath, req.Trigger)
	emit(progress, EventStart, 0, "分析開始", map[string]string{"runId": res.RunID, "source": filepath.Base(req.SourcePath)})

	err = c.execute(ctx, req, res, progress)
	res.Elapsed = time.Since(startTime)
	c.finishRun(res, err)
	if err != nil {
		log.Printf("[runner] 分析失敗: run=%s err=%v", res.RunID, err)
		return res, err
	}

	log.Printf("[runner] 全分析完了: %.1f秒", res.Elapsed.Seconds())
	return res, nil
}

func (c *Coordinator) execute(ctx context.Context, req Request, res *Result, progress func(ProgressEvent)) error {
	if strings.TrimSpace(req.SourcePath) == "" {
		return fmt.Errorf("%w: source path is empty", importer.ErrSourceNotFound)
	}

	table, err := c.loader.Load(req.SourcePath, req.SourceSheet)
	if err != nil {
		return err
	}
	res.SourceSheet = table.Name

	ds, err := analysis.Prepare(table, c.settings)
	if err != nil {
		return err
	}
	res.RecordCount = len(ds.Records)
	res.Warnings = ds.Warnings
	log.Printf("[runner] データ読み込み完了: %d行", res.RecordCount)
	emit(progress, EventLoaded, 10, fmt.Sprintf("データ読み込み完了: %d行", res.RecordCount), map[string]any{
		"records":  res.RecordCount,
		"warnings": res.Warnings,
	})

	if err := ctx.Err(); err != nil {
		return err
	}

	exp, err := c.openExporter(res.OutputPath)
	if err != nil {
		return err
	}
	defer exp.Close()

	builders := report.Builders(ds)
	sheets := make([]model.Sheet, 0, len(builders))
	var writeErr error
	for i, b := range builders {
		if err := ctx.Err(); err != nil {
			writeErr = err
			break
		}
		sheet := b.Build(ds)
		if err := exp.WriteSheet(sheet); err != nil {
			writeErr = fmt.Errorf("write %s: %w", b.Name, err)
			break
		}
		sheets = append(sheets, sheet)
		res.Sheets = append(res.Sheets, SheetSummary{Name: sheet.Name, Rows: len(sheet.Rows)})
		c.recordSheet(res.RunID, i+1, sheet)
		log.Printf("[runner] %s 完了", sheet.Name)
		emit(progress, EventSheetDone, 10+(i+1)*80/len(builders), sheet.Name+" 完了", map[string]any{
			"sheet": sheet.Name,
			"rows":  len(sheet.Rows),
		})
	}

	// 已写入的 sheet 总是保存
	if len(sheets) > 0 {
		if err := exp.SaveAs(res.OutputPath); err != nil {
			return errors.Join(writeErr, err)
		}
	}
	if writeErr != nil {
		return writeErr
	}

	if c.opts.Cache != nil {
		c.opts.Cache.Put(&memstore.RunReport{RunID: res.RunID, Sheets: sheets, Warnings: res.Warnings})
	}
	emit(progress, EventSaved, 95, "保存完了", map[string]string{"output": res.OutputPath})
	return nil
}

// resolveOutput 输出路径：显式指定 > xlsx 源写回 > 导出目录
func (c *Coordinator) resolveOutput(req Request) (string, error) {
	if p := strings.TrimSpace(req.OutputPath); p != "" {
		if !importer.IsWorkbook(p) {
			return "", fmt.Errorf("%w: output must be .xlsx: %s", importer.ErrUnsupportedFormat, p)
		}
		return p, nil
	}
	if importer.IsWorkbook(req.SourcePath) {
		return req.SourcePath, nil
	}
	dir := c.opts.ExportDir
	if dir == "" {
		dir = filepath.Dir(req.SourcePath)
	}
	base := strings.TrimSuffix(filepath.Base(req.SourcePath), filepath.Ext(req.SourcePath))
	return filepath.Join(dir, base+"_analysis.xlsx"), nil
}

// openExporter 输出文件已存在时在原工作簿上改写报表 sheet
func (c *Coordinator) openExporter(output string) (*exporter.Exporter, error) {
	if _, err := os.Stat(output); err == nil {
		return exporter.OpenExporter(output)
	}
	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	return exporter.NewExporter()
}

func (c *Coordinator) createRun(res *Result, trigger string) {
	if c.opts.Store == nil {
		return
	}
	if trigger == "" {
		trigger = store.TriggerCLI
	}
	err := c.opts.Store.CreateRun(&store.AnalysisRun{
		ID:          res.RunID,
		Trigger:     trigger,
		SourcePath:  res.SourcePath,
		SourceSheet: res.SourceSheet,
		OutputPath:  res.OutputPath,
	})
	if err != nil {
		log.Printf("[runner] WARNING: 记录运行失败: %v", err)
	}
}

func (c *Coordinator) finishRun(res *Result, runErr error) {
	if c.opts.Store == nil {
		return
	}
	result := store.RunResult{
		Status:      store.RunStatusSuccess,
		SourceSheet: res.SourceSheet,
		RecordCount: res.RecordCount,
		Warnings:    res.Warnings,
		Elapsed:     res.Elapsed,
	}
	if runErr != nil {
		result.Status = store.RunStatusFailed
		result.ErrorMessage = runErr.Error()
	}
	if err := c.opts.Store.FinishRun(res.RunID, result); err != nil {
		log.Printf("[runner] WARNING: 更新运行记录失败: %v", err)
	}
}

func (c *Coordinator) recordSheet(runID string, position int, sheet model.Sheet) {
	if c.opts.Store == nil {
		return
	}
	err := c.opts.Store.InsertRunSheet(store.RunSheet{
		RunID:     runID,
		Position:  position,
		SheetName: sheet.Name,
		RowCount:  len(sheet.Rows),
	})
	if err != nil {
		log.Printf("[runner] WARNING: 记录 sheet 失败: %v", err)
	}
}
