package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumaker/internal/api/middleware"
	"resumaker/internal/resume"
	"resumaker/internal/storage"
	"resumaker/internal/store"
)

// ResumeHandler 负责简历集合的增删改查与当前简历切换。
type ResumeHandler struct {
	store   *store.Service
	objects storage.ObjectStore
}

func NewResumeHandler(svc *store.Service, objects storage.ObjectStore) *ResumeHandler {
	return &ResumeHandler{store: svc, objects: objects}
}

type createResumeRequest struct {
	Title string `json:"title"`
}

type updateResumeRequest struct {
	Title    *string            `json:"title"`
	Template *string            `json:"template"`
	Layout   *resume.LayoutMode `json:"layout"`
}

type setCurrentRequest struct {
	ID string `json:"id" binding:"required"`
}

// ListResumes 列出全部简历元数据，最近更新在前。
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	items, err := h.store.List(c.Request.Context())
	if err != nil {
		DomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// CreateResume 新建默认简历并设为当前。
func (h *ResumeHandler) CreateResume(c *gin.Context) {
	var req createResumeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}
	doc, err := h.store.Create(c.Request.Context(), req.Title)
	if err != nil {
		DomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// ImportResume 导入完整文档，缺失字段按默认值补齐。
func (h *ResumeHandler) ImportResume(c *gin.Context) {
	var doc resume.Resume
	if err := c.ShouldBindJSON(&doc); err != nil {
		BadRequest(c, err.Error())
		return
	}
	saved, err := h.store.Import(c.Request.Context(), doc)
	if err != nil {
		DomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// GetCollection 返回持久化集合的整体视图。
func (h *ResumeHandler) GetCollection(c *gin.Context) {
	col, err := h.store.Collection(c.Request.Context())
	if err != nil {
		DomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, col)
}

func (h *ResumeHandler) GetCurrent(c *gin.Context) {
	doc, err := h.store.Current(c.Request.Context())
	if err != nil {
		DomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *ResumeHandler) SetCurrent(c *gin.Context) {
	var req setCurrentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := h.store.SetCurrent(c.Request.Context(), req.ID); err != nil {
		DomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ResumeHandler) GetResume(c *gin.Context) {
	doc, err := h.store.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		DomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// UpdateResume 修改标题、模板或布局。
func (h *ResumeHandler) UpdateResume(c *gin.Context) {
	var req updateResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	doc, err := h.store.Dispatch(c.Request.Context(), c.Param("id"), resume.UpdateResumeMeta{
		Title:    req.Title,
		Template: req.Template,
		Layout:   req.Layout,
	})
	if err != nil {
		DomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DeleteResume 删除简历及其对象存储中的 PDF 与头像。
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()
	if err := h.store.Delete(ctx, id); err != nil {
		DomainError(c, err)
		return
	}

	if h.objects != nil {
		log := middleware.LoggerFromContext(c)
		for _, prefix := range []string{storage.AvatarPrefix(id), storage.ResumePrefix(id)} {
			if err := h.objects.DeletePrefix(ctx, prefix); err != nil {
				log.Warn("cleanup objects failed", slog.String("prefix", prefix), slog.Any("error", err))
			}
		}
	}
	c.Status(http.StatusNoContent)
}

// GetProjection 返回按页分组的渲染投影。
func (h *ResumeHandler) GetProjection(c *gin.Context) {
	doc, err := h.store.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		DomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"multiPage":  doc.MultiPage(),
		"totalPages": doc.TotalPages(),
		"pages":      resume.Paginate(doc),
	})
}
