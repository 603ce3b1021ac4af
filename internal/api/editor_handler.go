package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resumaker/internal/api/middleware"
	"resumaker/internal/dateutil"
	"resumaker/internal/layout"
	"resumaker/internal/render"
	"resumaker/internal/resume"
	"resumaker/internal/storage"
	"resumaker/internal/store"
)

// EditorHandler 提供编辑器根视图、单模块编辑入口与全屏预览。
type EditorHandler struct {
	store   *store.Service
	objects storage.ObjectStore
}

func NewEditorHandler(svc *store.Service, objects storage.ObjectStore) *EditorHandler {
	return &EditorHandler{store: svc, objects: objects}
}

type pageOverview struct {
	Number       int      `json:"number"`
	SectionCount int      `json:"sectionCount"`
	SectionIDs   []string `json:"sectionIds"`
}

func viewport(c *gin.Context) layout.Breakpoints {
	w, _ := strconv.Atoi(c.Query("width"))
	h, _ := strconv.Atoi(c.Query("height"))
	return layout.Detect(w, h)
}

// effectiveLayout 在移动端强制上下排布。
func effectiveLayout(doc resume.Resume, bp layout.Breakpoints) resume.LayoutMode {
	if bp.IsMobile {
		return resume.LayoutTopBottom
	}
	if doc.Layout == "" {
		return resume.LayoutSideBySide
	}
	return doc.Layout
}

// Root 返回当前简历的编辑器总览：按页分组的模块与视口信息。
func (h *EditorHandler) Root(c *gin.Context) {
	doc, err := h.store.Current(c.Request.Context())
	if err != nil {
		DomainError(c, err)
		return
	}
	bp := viewport(c)

	counts := resume.PageSectionCounts(doc)
	pages := make([]pageOverview, 0, len(counts))
	for _, p := range resume.Paginate(doc) {
		ov := pageOverview{Number: p.Number, SectionIDs: []string{}}
		if p.Number <= len(counts) {
			ov.SectionCount = counts[p.Number-1]
		}
		for _, s := range p.Sections {
			ov.SectionIDs = append(ov.SectionIDs, s.ID)
		}
		pages = append(pages, ov)
	}

	c.JSON(http.StatusOK, gin.H{
		"resume":         doc,
		"layout":         effectiveLayout(doc, bp),
		"breakpoints":    bp,
		"containerClass": bp.ContainerClass(),
		"multiPage":      doc.MultiPage(),
		"pages":          pages,
	})
}

// editorRouteName 返回 /editor/:type 中使用的名称，基本信息的编辑器路由为 basic-info。
func editorRouteName(kind resume.ContentKind) string {
	if kind == resume.KindBasic {
		return "basic-info"
	}
	return string(kind)
}

// Section 返回单个模块的编辑器数据；模块不存在或类型不符时回到根视图。
func (h *EditorHandler) Section(c *gin.Context) {
	doc, err := h.store.Current(c.Request.Context())
	if err != nil {
		DomainError(c, err)
		return
	}
	section, ok := doc.Section(c.Param("sectionId"))
	if !ok || editorRouteName(section.ContentKind()) != c.Param("type") {
		middleware.LoggerFromContext(c).Debug("editor route unresolved, redirecting",
			"section_id", c.Param("sectionId"), "type", c.Param("type"))
		c.Redirect(http.StatusFound, "/")
		return
	}

	payload := gin.H{
		"resumeId":   doc.ID,
		"section":    section,
		"editorType": section.ResolvedEditorType(),
		"kind":       section.ContentKind(),
	}
	if section.ContentKind() == resume.KindTimeline {
		format := section.DateFormat
		if format == "" {
			format = dateutil.DefaultFormat
		}
		payload["dateFormat"] = format
		payload["dateFormats"] = dateutil.Formats()
		if items, ok := section.Data.(resume.TimelineItems); ok {
			display := make(map[string][2]string, len(items))
			for _, it := range items {
				display[it.ID] = [2]string{dateutil.Format(it.StartDate, format), dateutil.Format(it.EndDate, format)}
			}
			payload["displayDates"] = display
		}
	}
	c.JSON(http.StatusOK, payload)
}

// Preview 渲染全屏预览；print=1 时页面加载后调起浏览器打印。
func (h *EditorHandler) Preview(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		doc resume.Resume
		err error
	)
	if id := c.Query("id"); id != "" {
		doc, err = h.store.Snapshot(ctx, id)
	} else {
		doc, err = h.store.Current(ctx)
	}
	if err != nil {
		DomainError(c, err)
		return
	}

	scale, _ := strconv.Atoi(c.Query("scale"))
	opts := render.Options{
		Scale:    scale,
		Viewport: viewport(c),
		Print:    c.Query("print") == "1",
	}
	if basic, ok := doc.BasicSection(); ok && h.objects != nil {
		if info, _ := basic.Data.(*resume.BasicInfo); info != nil && isValidAvatarKey(doc.ID, info.Avatar) {
			url, err := h.objects.GeneratePresignedURL(ctx, info.Avatar, avatarURLTTL, "")
			if err != nil {
				middleware.LoggerFromContext(c).Warn("presign avatar failed", "error", err)
			}
			opts.AvatarURL = url
		}
	}

	var buf bytes.Buffer
	if err := render.HTML(&buf, doc, opts); err != nil {
		middleware.LoggerFromContext(c).Error("render preview failed", "error", err)
		Internal(c, "failed to render preview")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
