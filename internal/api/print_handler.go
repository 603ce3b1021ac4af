package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"resumaker/internal/api/middleware"
	"resumaker/internal/database"
	"resumaker/internal/layout"
	"resumaker/internal/storage"
	"resumaker/internal/store"
	"resumaker/internal/tasks"
)

const downloadLinkTTL = 5 * time.Minute

// TaskEnqueuer 是 asynq.Client 的最小子集。
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// PrintHandler 负责服务端打印任务的提交与下载。
type PrintHandler struct {
	store   *store.Service
	queue   TaskEnqueuer
	objects storage.ObjectStore
	enabled bool
	timeout time.Duration
}

func NewPrintHandler(svc *store.Service, queue TaskEnqueuer, objects storage.ObjectStore, enabled bool, timeout time.Duration) *PrintHandler {
	return &PrintHandler{store: svc, queue: queue, objects: objects, enabled: enabled, timeout: timeout}
}

// RequestPrint 将 PDF 生成任务入队并立即返回 202。
func (h *PrintHandler) RequestPrint(c *gin.Context) {
	if !h.enabled || h.queue == nil {
		Error(c, http.StatusServiceUnavailable, "server side printing is disabled")
		return
	}
	id := c.Param("id")
	ctx := c.Request.Context()
	if _, err := h.store.Snapshot(ctx, id); err != nil {
		DomainError(c, err)
		return
	}

	scale := layout.DefaultScale
	if raw := c.Query("scale"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			BadRequest(c, "invalid scale")
			return
		}
		scale = layout.ClampScale(v)
	}

	task, err := tasks.NewPrintResumeTask(tasks.PrintResumePayload{
		ResumeID:      id,
		CorrelationID: middleware.GetCorrelationID(c),
		Scale:         scale,
	})
	if err != nil {
		Internal(c, "failed to create task")
		return
	}
	if err := h.store.SetPrintState(ctx, id, database.StatusPending, ""); err != nil {
		DomainError(c, err)
		return
	}

	info, err := h.queue.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(h.timeout))
	if err != nil {
		middleware.LoggerFromContext(c).Error("enqueue print task failed", "error", err)
		_ = h.store.SetPrintState(ctx, id, database.StatusFailed, "")
		Internal(c, "failed to enqueue pdf generation")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "PDF generation request accepted",
		"task_id": info.ID,
	})
}

// GetPrintStatus 返回最近一次打印任务的状态。
func (h *PrintHandler) GetPrintStatus(c *gin.Context) {
	rec, err := h.store.Record(c.Request.Context(), c.Param("id"))
	if err != nil {
		DomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": rec.Status, "ready": rec.PdfKey != ""})
}

// GetDownloadLink 生成简历 PDF 的预签名下载链接。
func (h *PrintHandler) GetDownloadLink(c *gin.Context) {
	rec, err := h.store.Record(c.Request.Context(), c.Param("id"))
	if err != nil {
		DomainError(c, err)
		return
	}
	if rec.PdfKey == "" || rec.Status != database.StatusCompleted {
		Conflict(c, "pdf not ready")
		return
	}
	if h.objects == nil {
		Error(c, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	url, err := h.objects.GeneratePresignedURL(c.Request.Context(), rec.PdfKey, downloadLinkTTL, downloadName(rec.Resume.Title))
	if err != nil {
		middleware.LoggerFromContext(c).Error("presign pdf failed", "error", err)
		Internal(c, "failed to generate download link")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func downloadName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', ':', '*', '?', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "resume"
	}
	return name + ".pdf"
}
