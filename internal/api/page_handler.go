package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resumaker/internal/resume"
	"resumaker/internal/store"
	"resumaker/internal/tasks"
)

// PageHandler 处理多页设置与页面分配。
type PageHandler struct {
	store     *store.Service
	publisher notifyPublisher
	logger    *slog.Logger
}

type notifyPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// assignmentsAppliedMessage 在暂存分配自动应用后推送给 /v1/ws 客户端。
type assignmentsAppliedMessage struct {
	Status     string `json:"status"`
	ResumeID   string `json:"resume_id"`
	TotalPages int    `json:"total_pages,omitempty"`
	Error      string `json:"error_message,omitempty"`
}

// NewPageHandler 构造页面处理器；publisher 为 nil 时不推送自动应用结果。
func NewPageHandler(svc *store.Service, publisher notifyPublisher, logger *slog.Logger) *PageHandler {
	return &PageHandler{store: svc, publisher: publisher, logger: logger}
}

func (h *PageHandler) announce(resumeID string) func(resume.Resume, error) {
	return func(doc resume.Resume, err error) {
		if h.publisher == nil {
			return
		}
		msg := assignmentsAppliedMessage{Status: "page_assignments_applied", ResumeID: resumeID}
		if err != nil {
			msg.Status = "page_assignments_failed"
			msg.Error = err.Error()
		} else {
			msg.TotalPages = doc.TotalPages()
		}
		data, _ := json.Marshal(msg)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.publisher.Publish(ctx, tasks.NotifyChannel(resumeID), data).Err(); err != nil {
			h.logger.Warn("publish page assignment result failed", "resume_id", resumeID, "error", err)
		}
	}
}

type multiPageRequest struct {
	Enabled bool `json:"enabled"`
}

type stageAssignmentRequest struct {
	SectionID  string `json:"sectionId" binding:"required"`
	PageNumber int    `json:"pageNumber" binding:"required,gte=1"`
}

func (h *PageHandler) respond(c *gin.Context, doc resume.Resume, err error) {
	if err != nil {
		DomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *PageHandler) AddPage(c *gin.Context) {
	doc, err := h.store.Dispatch(c.Request.Context(), c.Param("id"), resume.AddPage{})
	h.respond(c, doc, err)
}

// RemovePage 删除指定页；policy 为空时使用服务配置的默认策略。
func (h *PageHandler) RemovePage(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		BadRequest(c, "invalid page number")
		return
	}
	var policy resume.OrphanPolicy
	if raw := c.Query("policy"); raw != "" {
		if policy, err = resume.ParseOrphanPolicy(raw); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}
	doc, err := h.store.Dispatch(c.Request.Context(), c.Param("id"), resume.RemovePage{PageNumber: page, Policy: policy})
	h.respond(c, doc, err)
}

func (h *PageHandler) SetMultiPage(c *gin.Context) {
	var req multiPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	doc, err := h.store.Dispatch(c.Request.Context(), c.Param("id"), resume.SetMultiPage{Enabled: req.Enabled})
	h.respond(c, doc, err)
}

// GetAssignments 返回每页模块数与尚未应用的暂存分配。
func (h *PageHandler) GetAssignments(c *gin.Context) {
	id := c.Param("id")
	doc, err := h.store.Snapshot(c.Request.Context(), id)
	if err != nil {
		DomainError(c, err)
		return
	}
	sess := h.store.PageAssignments(id)
	c.JSON(http.StatusOK, gin.H{
		"totalPages":    doc.TotalPages(),
		"sectionCounts": resume.PageSectionCounts(doc),
		"staged":        sess.Staged(),
		"pending":       sess.Pending(),
	})
}

// StageAssignment 暂存一次页面分配，静默一段时间后自动应用。
func (h *PageHandler) StageAssignment(c *gin.Context) {
	var req stageAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	id := c.Param("id")
	doc, err := h.store.Snapshot(c.Request.Context(), id)
	if err != nil {
		DomainError(c, err)
		return
	}
	// 提前校验，避免在自动应用时才失败
	if _, err := resume.Apply(doc, resume.ReassignPage{SectionID: req.SectionID, PageNumber: req.PageNumber}); err != nil {
		DomainError(c, err)
		return
	}

	sess := h.store.PageAssignments(id)
	sess.OnApply(h.announce(id))
	sess.Stage(req.SectionID, req.PageNumber)
	c.JSON(http.StatusAccepted, gin.H{"staged": sess.Staged()})
}

// ApplyAssignments 立即应用暂存的分配。
func (h *PageHandler) ApplyAssignments(c *gin.Context) {
	doc, err := h.store.PageAssignments(c.Param("id")).Flush(c.Request.Context())
	h.respond(c, doc, err)
}

// AutoAssign 丢弃暂存内容后按数量平均分配到两页。
func (h *PageHandler) AutoAssign(c *gin.Context) {
	id := c.Param("id")
	h.store.PageAssignments(id).Stop()
	doc, err := h.store.Dispatch(c.Request.Context(), id, resume.AutoAssignPages{})
	h.respond(c, doc, err)
}

// ResetAssignments 丢弃暂存内容并将全部模块放回第 1 页。
func (h *PageHandler) ResetAssignments(c *gin.Context) {
	id := c.Param("id")
	h.store.PageAssignments(id).Stop()
	doc, err := h.store.Dispatch(c.Request.Context(), id, resume.ResetPageAssignments{})
	h.respond(c, doc, err)
}
