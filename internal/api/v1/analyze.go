package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"leadreport/internal/importer"
	"leadreport/internal/service/runner"
	"leadreport/internal/store"
)

// Analyze 上传申込数据并分析 (SSE 流式响应)
// POST /api/analyze  form: file, sheet(可选)
func (h *Handler) Analyze(c *gin.Context) {
	uploaded, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "アップロードファイルが見つかりません"})
		return
	}

	name := filepath.Base(uploaded.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".xlsx" && ext != ".xlsm" && ext != ".csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "対応していないファイル形式です: " + ext})
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存先の作成に失敗しました"})
		return
	}
	sourcePath := filepath.Join(h.uploadDir, fmt.Sprintf("%d_%s", time.Now().UnixNano(), name))
	if err := c.SaveUploadedFile(uploaded, sourcePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ファイルの保存に失敗しました"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		_ = os.Remove(sourcePath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ストリーミングに対応していません"})
		return
	}

	progressChan := h.runner.Start(c.Request.Context(), runner.Request{
		Trigger:     store.TriggerUpload,
		SourcePath:  sourcePath,
		SourceSheet: c.PostForm("sheet"),
	})

	succeeded := false
	for event := range progressChan {
		if event.Type == runner.EventDone {
			if res, ok := event.Data.(*runner.Result); ok {
				succeeded = true
				event.Data = gin.H{
					"result":      res,
					"downloadUrl": h.registerDownload(c, res.OutputPath, downloadName(name), true),
				}
			}
		}

		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}
		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}

	// 写回上传副本时输出就是源文件；csv 源的副本用完即删
	if !succeeded || !importer.IsWorkbook(sourcePath) {
		_ = os.Remove(sourcePath)
	}
}

// RunConfigured 按配置的数据源运行
// POST /api/run
func (h *Handler) RunConfigured(c *gin.Context) {
	if strings.TrimSpace(h.cfg.Source.Path) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source.path が設定されていません"})
		return
	}

	res, err := h.runner.Run(c.Request.Context(), runner.Request{
		Trigger:     store.TriggerAPI,
		SourcePath:  h.cfg.Source.Path,
		SourceSheet: h.cfg.Source.Sheet,
		OutputPath:  h.cfg.Output.Path,
	}, nil)
	if err != nil {
		c.JSON(runErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":      res,
		"downloadUrl": h.registerDownload(c, res.OutputPath, filepath.Base(res.OutputPath), false),
	})
}

func runErrorStatus(err error) int {
	switch {
	case errors.Is(err, runner.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, importer.ErrSourceNotFound),
		errors.Is(err, importer.ErrSheetNotFound),
		errors.Is(err, importer.ErrNoData),
		errors.Is(err, importer.ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) registerDownload(c *gin.Context, path, fileName string, removeAfter bool) string {
	token := h.downloads.put(download{
		filePath:    path,
		fileName:    fileName,
		removeAfter: removeAfter,
	}, downloadTTL)
	prefix := "/api"
	if strings.HasPrefix(c.Request.URL.Path, "/api/v1/") {
		prefix = "/api/v1"
	}
	return fmt.Sprintf("%s/download/%s", prefix, token)
}

// downloadName 上传文件对应的下载文件名
func downloadName(uploaded string) string {
	base := strings.TrimSuffix(uploaded, filepath.Ext(uploaded))
	return base + "_analysis.xlsx"
}

// Download 下载分析结果（一次性）
// GET /api/download/:token
func (h *Handler) Download(c *gin.Context) {
	item, ok := h.downloads.take(c.Param("token"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "ダウンロードリンクの有効期限が切れています"})
		return
	}

	if _, err := os.Stat(item.filePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ファイルが存在しません"})
		return
	}

	c.FileAttachment(item.filePath, item.fileName)

	if item.removeAfter {
		if err := os.Remove(item.filePath); err != nil {
			log.Printf("[api] WARNING: 删除下载文件失败: %v", err)
		}
	}
}
