package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumaker/internal/api/middleware"
	"resumaker/internal/editor"
	"resumaker/internal/resume"
	"resumaker/internal/store"
)

// SectionHandler 处理模块级别的增删改、内容保存与拖拽。
type SectionHandler struct {
	store *store.Service
}

func NewSectionHandler(svc *store.Service) *SectionHandler {
	return &SectionHandler{store: svc}
}

type addSectionRequest struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	IconName   string             `json:"iconName"`
	Type       resume.SectionType `json:"type" binding:"omitempty,oneof=basic timeline list text custom"`
	PageNumber int                `json:"pageNumber" binding:"gte=0"`
}

type patchSectionRequest struct {
	Title      *string            `json:"title"`
	IconName   *string            `json:"iconName"`
	EditorType *resume.EditorType `json:"editorType"`
	Visible    *bool              `json:"visible"`
}

type contentRequest struct {
	Data json.RawMessage `json:"data"`
}

type dateFormatRequest struct {
	DateFormat string `json:"dateFormat" binding:"required"`
}

type basicInfoRequest struct {
	Fields map[string]string       `json:"fields"`
	Layout *resume.BasicInfoLayout `json:"layout"`
}

type textRequest struct {
	Content  string  `json:"content"`
	IconName *string `json:"iconName"`
}

type dragRequest struct {
	ActiveID string `json:"activeId" binding:"required"`
	OverID   string `json:"overId"`
}

// dispatch 将一组命令合并为一次写入，任一失败则全部不生效；成功时输出最终快照。
func (h *SectionHandler) dispatch(c *gin.Context, cmds ...resume.Command) {
	ctx, id := c.Request.Context(), c.Param("id")
	var (
		doc resume.Resume
		err error
	)
	switch len(cmds) {
	case 0:
		doc, err = h.store.Snapshot(ctx, id)
	case 1:
		doc, err = h.store.Dispatch(ctx, id, cmds[0])
	default:
		doc, err = h.store.Dispatch(ctx, id, resume.Batch(cmds))
	}
	if err != nil {
		DomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// AddSection 追加模块，返回新快照。
func (h *SectionHandler) AddSection(c *gin.Context) {
	var req addSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	doc, err := h.store.Dispatch(c.Request.Context(), c.Param("id"), resume.AddSection{
		ID:         req.ID,
		Title:      req.Title,
		IconName:   req.IconName,
		Type:       req.Type,
		PageNumber: req.PageNumber,
	})
	if err != nil {
		DomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// PatchSection 修改标题、图标、编辑器类型或可见性。
func (h *SectionHandler) PatchSection(c *gin.Context) {
	var req patchSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	sectionID := c.Param("sectionId")

	var cmds []resume.Command
	if req.Title != nil {
		cmds = append(cmds, resume.RenameSection{SectionID: sectionID, Title: *req.Title})
	}
	if req.IconName != nil {
		cmds = append(cmds, resume.SetSectionIcon{SectionID: sectionID, IconName: *req.IconName})
	}
	if req.EditorType != nil {
		cmds = append(cmds, resume.SetEditorType{SectionID: sectionID, EditorType: *req.EditorType})
	}
	if req.Visible != nil {
		cmds = append(cmds, resume.SetSectionVisible{SectionID: sectionID, Visible: *req.Visible})
	}
	if len(cmds) == 0 {
		BadRequest(c, "no changes")
		return
	}
	h.dispatch(c, cmds...)
}

func (h *SectionHandler) RemoveSection(c *gin.Context) {
	h.dispatch(c, resume.RemoveSection{SectionID: c.Param("sectionId")})
}

// PutContent 整体替换模块内容，数据形态由模块的编辑器类型决定。
func (h *SectionHandler) PutContent(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	_, section, ok := h.section(c)
	if !ok {
		return
	}
	data, err := resume.DecodeContent(section.ContentKind(), req.Data)
	if err != nil {
		DomainError(c, err)
		return
	}
	h.dispatch(c, resume.UpdateSectionContent{SectionID: section.ID, Data: data})
}

// PutDateFormat 切换时间线模块的日期展示格式。
func (h *SectionHandler) PutDateFormat(c *gin.Context) {
	var req dateFormatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	h.withEditor(c, func(ed any) error {
		tl, ok := ed.(*editor.TimelineEditor)
		if !ok {
			return editor.ErrWrongKind
		}
		return tl.SetDateFormat(c.Request.Context(), req.DateFormat)
	})
}

// PatchBasicInfo 修改基本信息字段与布局。
func (h *SectionHandler) PatchBasicInfo(c *gin.Context) {
	var req basicInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if avatar, ok := req.Fields["avatar"]; ok && !isAcceptableAvatar(c.Param("id"), avatar) {
		BadRequest(c, "invalid avatar")
		return
	}
	h.withEditor(c, func(ed any) error {
		be, ok := ed.(*editor.BasicInfoEditor)
		if !ok {
			return editor.ErrWrongKind
		}
		ctx := c.Request.Context()
		for field, value := range req.Fields {
			if err := be.SetField(ctx, field, value); err != nil {
				return err
			}
		}
		if req.Layout != nil {
			return be.SetLayout(ctx, *req.Layout)
		}
		return nil
	})
}

// PutText 保存富文本模块内容。
func (h *SectionHandler) PutText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	h.withEditor(c, func(ed any) error {
		te, ok := ed.(*editor.TextEditor)
		if !ok {
			return editor.ErrWrongKind
		}
		ctx := c.Request.Context()
		if req.IconName != nil {
			if err := te.SetIcon(ctx, *req.IconName); err != nil {
				return err
			}
		}
		return te.SetContent(ctx, req.Content)
	})
}

// DragSection 处理模块列表的拖拽结束事件；overId 为 page-N 时表示移入该页。
func (h *SectionHandler) DragSection(c *gin.Context) {
	var req dragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	event := resume.DragEnd{ActiveID: req.ActiveID, OverID: req.OverID}
	if event.Resolve() == nil {
		h.dispatch(c)
		return
	}
	h.dispatch(c, event)
}

func (h *SectionHandler) section(c *gin.Context) (resume.Resume, resume.Section, bool) {
	doc, err := h.store.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		DomainError(c, err)
		return resume.Resume{}, resume.Section{}, false
	}
	section, ok := doc.Section(c.Param("sectionId"))
	if !ok {
		DomainError(c, resume.ErrSectionNotFound)
		return resume.Resume{}, resume.Section{}, false
	}
	return doc, section, true
}

func (h *SectionHandler) withEditor(c *gin.Context, fn func(ed any) error) {
	h.withEditorResult(c, http.StatusOK, func(ed any) (string, error) {
		return "", fn(ed)
	})
}

// withEditorResult 为模块构建编辑器并执行 fn。编辑器的每次保存先在工作副本上校验，
// fn 成功后合并为一次写入；任一步失败都不会留下部分修改。
// fn 返回的非空 ID 在写入成功后通过 X-Item-ID 响应头返回。
func (h *SectionHandler) withEditorResult(c *gin.Context, status int, fn func(ed any) (string, error)) {
	working, section, ok := h.section(c)
	if !ok {
		return
	}
	var staged resume.Batch
	save := func(_ context.Context, cmd resume.UpdateSectionContent) error {
		next, err := resume.Apply(working, cmd)
		if err != nil {
			return err
		}
		working = next
		staged = append(staged, cmd)
		return nil
	}

	var itemID string
	ed, err := editor.New(section, save)
	if err == nil {
		itemID, err = fn(ed)
	}
	if err != nil {
		middleware.LoggerFromContext(c).Debug("editor change rejected", "section_id", section.ID, "error", err)
		DomainError(c, err)
		return
	}
	if len(staged) == 0 {
		h.dispatch(c)
		return
	}

	doc, err := h.store.Dispatch(c.Request.Context(), c.Param("id"), staged)
	if err != nil {
		DomainError(c, err)
		return
	}
	if itemID != "" {
		c.Header(itemIDHeader, itemID)
	}
	c.JSON(status, doc)
}
