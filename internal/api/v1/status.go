package v1

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"leadreport/internal/classify"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	SourceConfigured bool   `json:"sourceConfigured"` // 是否配置了数据源
	SourcePath       string `json:"sourcePath"`
	ScheduleEnabled  bool   `json:"scheduleEnabled"`
	ScheduleHour     int    `json:"scheduleHour"`
	CachedResults    int    `json:"cachedResults"`
	LastRunID        string `json:"lastRunId,omitempty"`
	LastRunStatus    string `json:"lastRunStatus,omitempty"`
	LastRunTime      string `json:"lastRunTime,omitempty"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		SourceConfigured: h.cfg.Source.Path != "",
		SourcePath:       h.cfg.Source.Path,
		ScheduleEnabled:  h.cfg.Schedule.Enabled,
		ScheduleHour:     h.cfg.Schedule.Hour,
		CachedResults:    h.cache.Count(),
	}

	last, err := h.store.LastRun()
	if err != nil {
		log.Printf("[api] WARNING: 读取最近运行失败: %v", err)
	}
	if last != nil {
		resp.LastRunID = last.ID
		resp.LastRunStatus = last.Status
		resp.LastRunTime = last.StartedAt.Format("2006-01-02 15:04:05")
	}

	c.JSON(http.StatusOK, resp)
}

// ConfigResponse 分析配置响应
type ConfigResponse struct {
	ConversionValues []string             `json:"conversionValues"`
	ExecutionValues  []string             `json:"executionValues"`
	StaffMinSamples  int                  `json:"staffMinSamples"`
	RouteMinSamples  int                  `json:"routeMinSamples"`
	Columns          map[string]string    `json:"columns"` // field -> include 关键词
	Sheets           []string             `json:"sheets"`
	Routes           []classify.RouteRule `json:"routes"`
}

// GetConfig 获取当前分析配置
// GET /api/config
func (h *Handler) GetConfig(c *gin.Context) {
	settings := h.runner.Settings()
	columns := make(map[string]string, len(settings.Columns))
	for _, rule := range settings.Columns {
		columns[string(rule.Field)] = strings.Join(rule.Include, " + ")
	}
	n := settings.Sheets

	c.JSON(http.StatusOK, ConfigResponse{
		ConversionValues: settings.ConversionValues,
		ExecutionValues:  settings.ExecutionValues,
		StaffMinSamples:  settings.StaffMinSamples,
		RouteMinSamples:  settings.RouteMinSamples,
		Columns:          columns,
		Sheets:           []string{n.Attribute, n.Conversion, n.Monthly, n.Event, n.Staff, n.Route},
		Routes:           classify.Routes(),
	})
}

// ListRuns 运行历史
// GET /api/runs?limit=20
func (h *Handler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit が不正です"})
		return
	}

	runs, err := h.store.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "実行履歴の取得に失敗しました"})
		return
	}

	items := make([]gin.H, 0, len(runs))
	for _, r := range runs {
		items = append(items, gin.H{"run": r, "warnings": r.Warnings()})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// GetRun 单次运行详情（含内存中的报表内容）
// GET /api/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	id := c.Param("id")
	run, err := h.store.GetRun(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "実行履歴が見つかりません"})
		return
	}
	sheets, err := h.store.ListRunSheets(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "シート一覧の取得に失敗しました"})
		return
	}

	resp := gin.H{
		"run":      run,
		"warnings": run.Warnings(),
		"sheets":   sheets,
	}
	if rep, err := h.cache.Get(id); err == nil {
		resp["reports"] = rep.Sheets
	}
	c.JSON(http.StatusOK, resp)
}
