package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"resumaker/internal/database"
	"resumaker/internal/errcode"
	"resumaker/internal/render"
	"resumaker/internal/resume"
	"resumaker/internal/storage"
	"resumaker/internal/store"
	"resumaker/internal/tasks"
)

// ResumeSource 是打印任务读取与回写简历的能力，由 store.Service 实现。
type ResumeSource interface {
	Snapshot(ctx context.Context, resumeID string) (resume.Resume, error)
	SetPrintState(ctx context.Context, resumeID, status, pdfKey string) error
}

// PDFRenderer 将完整 HTML 打印为 PDF。
type PDFRenderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

const avatarURLTTL = 10 * time.Minute

// PrintTaskHandler 消费 print:resume 任务：渲染、打印、上传并通知。
type PrintTaskHandler struct {
	source    ResumeSource
	storage   storage.ObjectStore
	publisher Publisher
	printer   PDFRenderer
	logger    *slog.Logger
	attempts  func(context.Context) (retry, limit int, ok bool)
}

func NewPrintTaskHandler(source ResumeSource, objects storage.ObjectStore, publisher Publisher, printer PDFRenderer, logger *slog.Logger) *PrintTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PrintTaskHandler{
		source:    source,
		storage:   objects,
		publisher: publisher,
		printer:   printer,
		logger:    logger,
		attempts:  taskAttempts,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *PrintTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	payload, err := tasks.ParsePrintResumePayload(t)
	if err != nil {
		h.logger.Error("invalid print payload", slog.Any("error", err))
		return errors.Join(err, asynq.SkipRetry)
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("resume_id", payload.ResumeID),
	)
	log.Info("print task started")

	doc, err := h.source.Snapshot(ctx, payload.ResumeID)
	if errors.Is(err, store.ErrResumeNotFound) {
		log.Warn("resume not found, skipping task")
		return nil
	}
	if err != nil {
		return err
	}

	defer func() {
		if retErr == nil || !h.finalFailure(ctx, retErr) {
			return
		}
		if err := h.source.SetPrintState(ctx, payload.ResumeID, database.StatusFailed, ""); err != nil {
			log.Error("mark print failed", slog.Any("error", err))
		}
		notify := PrintNotifyMessage{
			Status:        NotifyError,
			ResumeID:      payload.ResumeID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.Of(retErr),
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := publish(ctx, h.publisher, notify); err != nil {
			log.Error("publish print error notification failed", slog.Any("error", err))
		}
	}()

	opts := render.Options{Scale: payload.Scale}
	var missing []string
	if basic, ok := doc.BasicSection(); ok {
		if info, _ := basic.Data.(*resume.BasicInfo); info != nil && info.Avatar != "" && !strings.HasPrefix(info.Avatar, "http") {
			url, err := h.storage.GeneratePresignedURL(ctx, info.Avatar, avatarURLTTL, "")
			if err != nil {
				log.Warn("avatar unavailable, printing without it", slog.Any("error", err))
				missing = append(missing, info.Avatar)
			} else {
				opts.AvatarURL = url
			}
		}
	}

	var buf bytes.Buffer
	if err := render.HTML(&buf, doc, opts); err != nil {
		return errors.Join(errcode.Wrap(errcode.RenderFailed, err), asynq.SkipRetry)
	}

	data, err := h.printer.Render(ctx, buf.String())
	if err != nil {
		log.Error("print pdf failed", slog.Any("error", err))
		return errcode.Wrap(errcode.PrintFailed, err)
	}

	key := storage.PDFKey(payload.ResumeID)
	if err := h.storage.UploadFile(ctx, key, bytes.NewReader(data), int64(len(data)), "application/pdf"); err != nil {
		log.Error("upload pdf failed", slog.Any("error", err))
		return errcode.Wrap(errcode.UploadFailed, err)
	}
	if err := h.source.SetPrintState(ctx, payload.ResumeID, database.StatusCompleted, key); err != nil {
		return err
	}

	notify := PrintNotifyMessage{
		Status:        NotifyCompleted,
		ResumeID:      payload.ResumeID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	}
	if len(missing) > 0 {
		notify.ErrorCode = errcode.ResourceMissing
		notify.ErrorMessage = "头像资源缺失，已跳过"
		notify.MissingKeys = missing
	}
	if err := publish(ctx, h.publisher, notify); err != nil {
		log.Error("publish print notification failed", slog.Any("error", err))
		return err
	}

	log.Info("print task completed", slog.Int("bytes", len(data)))
	return nil
}

// finalFailure 报告失败是否不会再重试：SkipRetry 或已用完重试次数。
func (h *PrintTaskHandler) finalFailure(ctx context.Context, err error) bool {
	if errors.Is(err, asynq.SkipRetry) {
		return true
	}
	retryCount, maxRetry, ok := h.attempts(ctx)
	if !ok {
		return true
	}
	return retryCount >= maxRetry
}

func taskAttempts(ctx context.Context) (int, int, bool) {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	return retryCount, maxRetry, ok1 && ok2
}
