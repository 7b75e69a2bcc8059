// Package v1 HTTP API：上传分析、按配置运行、运行历史与下载。
package v1

import (
	"github.com/gin-gonic/gin"

	"leadreport/internal/config"
	"leadreport/internal/service/runner"
	memstore "leadreport/internal/service/store"
	"leadreport/internal/store"
)

// Handler V1 API 处理器
type Handler struct {
	cfg       *config.AppConfig
	store     *store.Store
	runner    *runner.Coordinator
	cache     *memstore.MemoryStore
	uploadDir string
	downloads *downloadStore
}

// NewHandler 创建 V1 API 处理器
func NewHandler(cfg *config.AppConfig, st *store.Store, coordinator *runner.Coordinator, cache *memstore.MemoryStore, uploadDir string) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     st,
		runner:    coordinator,
		cache:     cache,
		uploadDir: uploadDir,
		downloads: newDownloadStore(),
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)
	// 分析配置
	router.GET("/config", h.GetConfig)

	// 运行历史
	router.GET("/runs", h.ListRuns)
	router.GET("/runs/:id", h.GetRun)
	router.GET("/runs/:id/preview", h.Preview)

	// 分析
	router.POST("/analyze", h.Analyze)
	router.POST("/run", h.RunConfigured)

	// 下载
	router.GET("/download/:token", h.Download)
}
