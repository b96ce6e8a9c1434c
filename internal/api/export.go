package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justinnewbold/86d-game-sub000/internal/exporter"
	"github.com/justinnewbold/86d-game-sub000/internal/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type exportProgressEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// buildExportContentDisposition 非 ASCII 文件名走 filename*，filename 保留 ASCII 兜底
func buildExportContentDisposition(fileName string) string {
	fallback := strings.Map(func(r rune) rune {
		if r > 0x7e || r < 0x20 || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, fileName)
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", fallback, url.PathEscape(fileName))
}

// Export 直接下载门店工作簿，并保留一份到当前存档
// GET /api/locations/:id/export
func (h *Handler) Export(c *gin.Context) {
	loc, err := h.locations.GetLocation(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	file, err := h.exporter.Export(loc, nil)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		h.respondError(c, fmt.Errorf("write workbook: %w", err))
		return
	}
	if err := h.saves.SaveLatestXlsx(buf.Bytes()); err != nil {
		logger.FromGin(c, h.logger).Warn("keep latest export failed", zap.Error(err))
	}

	c.Header("Content-Disposition", buildExportContentDisposition(exporter.FileName(h.cfg.Excel.FilePrefix, loc)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportStream 导出工作簿（SSE 进度 + 完成后提供下载地址）
// POST /api/locations/:id/export/stream
func (h *Handler) ExportStream(c *gin.Context) {
	loc, err := h.locations.GetLocation(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	log := logger.FromGin(c, h.logger)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	send := func(event exportProgressEvent) {
		b, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}
	fail := func(msg string, err error) {
		log.Error(msg, zap.String("locationId", loc.ID), zap.Error(err))
		send(exportProgressEvent{
			Type:      "error",
			Message:   msg + ": " + err.Error(),
			Data:      map[string]any{},
			Timestamp: time.Now(),
		})
	}

	send(exportProgressEvent{
		Type:    "start",
		Message: "export started",
		Data: map[string]any{
			"locationId": loc.ID,
			"week":       loc.CurrentWeek - 1,
		},
		Timestamp: time.Now(),
	})

	lastPercent := -1
	progressFn := func(p exporter.ProgressEvent) {
		if p.Percent == lastPercent {
			return
		}
		lastPercent = p.Percent
		send(exportProgressEvent{
			Type:      "progress",
			Message:   p.Stage,
			Data:      map[string]any{"percent": p.Percent},
			Timestamp: time.Now(),
		})
	}

	file, err := h.exporter.Export(loc, progressFn)
	if err != nil {
		fail("export failed", err)
		return
	}
	defer file.Close()

	if err := os.MkdirAll(h.exportDir, 0755); err != nil {
		fail("create export dir failed", err)
		return
	}
	tempPath := filepath.Join(h.exportDir, fmt.Sprintf("export_%s_%d.xlsx", loc.ID, time.Now().UnixNano()))
	if err := file.SaveAs(tempPath); err != nil {
		_ = os.Remove(tempPath)
		fail("write export file failed", err)
		return
	}

	token, expired := h.downloads.put(tempPath, exporter.FileName(h.cfg.Excel.FilePrefix, loc), exportDownloadTTL)
	for _, p := range expired {
		_ = os.Remove(p)
	}

	prefix := strings.TrimSuffix(c.Request.URL.Path, "/locations/"+loc.ID+"/export/stream")
	send(exportProgressEvent{
		Type:    "done",
		Message: "export finished",
		Data: map[string]any{
			"percent":     100,
			"downloadUrl": fmt.Sprintf("%s/export/download/%s", prefix, token),
		},
		Timestamp: time.Now(),
	})
}

// DownloadExport 下载流式导出的工作簿（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}

	item, ok := h.downloads.take(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download link expired"})
		return
	}
	defer os.Remove(item.filePath)

	if _, err := os.Stat(item.filePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "export file missing"})
		return
	}

	c.Header("Content-Disposition", buildExportContentDisposition(item.fileName))
	c.Header("Content-Type", xlsxContentType)
	c.File(item.filePath)
}
