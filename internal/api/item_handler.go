package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumaker/internal/dateutil"
	"resumaker/internal/editor"
	"resumaker/internal/resume"
)

const itemIDHeader = "X-Item-ID"

type datePartsRequest struct {
	Year  string `json:"year"`
	Month string `json:"month"`
	Day   string `json:"day"`
}

// itemRequest 同时覆盖时间线、列表与基本信息自定义字段三种条目。
type itemRequest struct {
	Fields   map[string]string           `json:"fields"`
	Dates    map[string]datePartsRequest `json:"dates"`
	Content  *string                     `json:"content"`
	Label    *string                     `json:"label"`
	Value    *string                     `json:"value"`
	IconName *string                     `json:"iconName"`
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// AddItem 向模块追加一个条目，新条目 ID 通过 X-Item-ID 响应头返回。
func (h *SectionHandler) AddItem(c *gin.Context) {
	var req itemRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}

	h.withEditorResult(c, http.StatusCreated, func(ed any) (string, error) {
		ctx := c.Request.Context()
		switch e := ed.(type) {
		case *editor.TimelineEditor:
			item, err := e.AddItem(ctx)
			if err != nil {
				return "", err
			}
			return item.ID, applyTimelineChanges(c, e, item.ID, req)
		case *editor.ListEditor:
			item, err := e.AddItem(ctx, deref(req.Content))
			return item.ID, err
		case *editor.BasicInfoEditor:
			f, err := e.AddCustomField(ctx, deref(req.Label), deref(req.Value), deref(req.IconName))
			return f.ID, err
		default:
			return "", editor.ErrWrongKind
		}
	})
}

// UpdateItem 修改条目字段。
func (h *SectionHandler) UpdateItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	itemID := c.Param("itemId")
	h.withEditor(c, func(ed any) error {
		ctx := c.Request.Context()
		switch e := ed.(type) {
		case *editor.TimelineEditor:
			return applyTimelineChanges(c, e, itemID, req)
		case *editor.ListEditor:
			return e.SetContent(ctx, itemID, deref(req.Content))
		case *editor.BasicInfoEditor:
			return e.UpdateCustomField(ctx, itemID, func(f *resume.CustomField) {
				if req.Label != nil {
					f.Label = *req.Label
				}
				if req.Value != nil {
					f.Value = *req.Value
				}
				if req.IconName != nil {
					f.IconName = *req.IconName
				}
			})
		default:
			return editor.ErrWrongKind
		}
	})
}

func (h *SectionHandler) RemoveItem(c *gin.Context) {
	itemID := c.Param("itemId")
	h.withEditor(c, func(ed any) error {
		ctx := c.Request.Context()
		switch e := ed.(type) {
		case *editor.TimelineEditor:
			return e.Remove(ctx, itemID)
		case *editor.ListEditor:
			return e.Remove(ctx, itemID)
		case *editor.BasicInfoEditor:
			return e.RemoveCustomField(ctx, itemID)
		default:
			return editor.ErrWrongKind
		}
	})
}

// DragItem 处理模块内条目的拖拽排序。
func (h *SectionHandler) DragItem(c *gin.Context) {
	var req dragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	h.withEditor(c, func(ed any) error {
		ctx := c.Request.Context()
		switch e := ed.(type) {
		case *editor.TimelineEditor:
			return e.DragEnd(ctx, req.ActiveID, req.OverID)
		case *editor.ListEditor:
			return e.DragEnd(ctx, req.ActiveID, req.OverID)
		case *editor.BasicInfoEditor:
			return e.MoveCustomField(ctx, req.ActiveID, req.OverID)
		default:
			return editor.ErrWrongKind
		}
	})
}

func applyTimelineChanges(c *gin.Context, e *editor.TimelineEditor, itemID string, req itemRequest) error {
	ctx := c.Request.Context()
	for field, value := range req.Fields {
		if err := e.SetField(ctx, itemID, editor.TimelineField(field), value); err != nil {
			return err
		}
	}
	for field, parts := range req.Dates {
		p := dateutil.Parts{Year: parts.Year, Month: parts.Month, Day: parts.Day}
		if err := e.SetDate(ctx, itemID, editor.TimelineField(field), p); err != nil {
			return err
		}
	}
	return nil
}
