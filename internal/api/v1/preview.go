package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	mdparser "github.com/gomarkdown/markdown/parser"

	"leadreport/internal/model"
	"leadreport/internal/report"
)

// Preview 以 HTML 预览内存中的报表
// GET /api/runs/:id/preview
func (h *Handler) Preview(c *gin.Context) {
	id := c.Param("id")
	rep, err := h.cache.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "レポートはメモリに残っていません"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", renderPreview("分析レポート "+id, rep.Sheets))
}

// renderPreview 单元格内容来自上传文件，原始 HTML 一律丢弃，链接只允许安全协议
func renderPreview(title string, sheets []model.Sheet) []byte {
	p := mdparser.NewWithExtensions(mdparser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage | html.SkipHTML | html.Safelink,
		Title: title,
	})
	return markdown.ToHTML([]byte(report.Markdown(sheets)), p, renderer)
}
