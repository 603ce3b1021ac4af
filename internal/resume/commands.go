package resume

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"resumaker/internal/dateutil"
)

// Command 是对文档的一次同步修改。所有写入都经由 Apply 执行。
type Command interface {
	Name() string
	apply(r *Resume) error
}

// NewID 生成模块与条目 ID，测试中可替换。
var NewID = defaultNewID

func defaultNewID() string { return uuid.NewString() }

// Batch 在同一份副本上依次执行多条命令，任一失败则整体不生效。
type Batch []Command

func (Batch) Name() string { return "batch" }

func (b Batch) apply(r *Resume) error {
	for _, cmd := range b {
		if err := cmd.apply(r); err != nil {
			return fmt.Errorf("%s: %w", cmd.Name(), err)
		}
	}
	return nil
}

// Apply 在副本上执行命令；失败时返回原文档与错误。
func Apply(r Resume, cmd Command) (Resume, error) {
	next := r.Clone()
	if err := cmd.apply(&next); err != nil {
		return r, fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return next, nil
}

const (
	defaultSectionTitle = "新模块"
	defaultSectionIcon  = "star"
)

// AddSection 追加一个模块，默认类型为 list，多页模式下默认放在最后一页。
type AddSection struct {
	ID         string
	Title      string
	IconName   string
	Type       SectionType
	PageNumber int
}

func (AddSection) Name() string { return "add_section" }

func (c AddSection) apply(r *Resume) error {
	s := Section{
		ID:         c.ID,
		Title:      strings.TrimSpace(c.Title),
		IconName:   c.IconName,
		Type:       c.Type,
		Visible:    true,
		Order:      r.maxOrder() + 1,
		PageNumber: c.PageNumber,
	}
	if s.ID == "" {
		s.ID = NewID()
	}
	if s.Title == "" {
		s.Title = defaultSectionTitle
	}
	if s.IconName == "" {
		s.IconName = defaultSectionIcon
	}
	if s.Type == "" {
		s.Type = SectionList
	}
	if s.PageNumber == 0 {
		// 多页模式下新模块放在最后一页
		s.PageNumber = 1
		if r.MultiPage() {
			s.PageNumber = r.TotalPages()
		}
	}
	if r.indexOf(s.ID) >= 0 {
		return ErrDuplicateSectionID
	}
	if s.IsBasic() {
		if _, ok := r.BasicSection(); ok {
			return ErrDuplicateBasicInfo
		}
		s.PageNumber = 1
	}
	if s.PageNumber < 1 || s.PageNumber > r.TotalPages() {
		return ErrPageOutOfRange
	}
	if s.ContentKind() == KindTimeline {
		s.DateFormat = dateutil.DefaultFormat
	}
	s.Data = EmptyContent(s.ContentKind())
	r.Sections = append(r.Sections, s)
	return nil
}

// RemoveSection 删除模块；基本信息不可删除。
type RemoveSection struct {
	SectionID string
}

func (RemoveSection) Name() string { return "remove_section" }

func (c RemoveSection) apply(r *Resume) error {
	i := r.indexOf(c.SectionID)
	if i < 0 {
		return ErrSectionNotFound
	}
	if r.Sections[i].IsBasic() {
		return ErrBasicInfoLocked
	}
	r.Sections = append(r.Sections[:i], r.Sections[i+1:]...)
	return nil
}

// RenameSection 修改模块标题。
type RenameSection struct {
	SectionID string
	Title     string
}

func (RenameSection) Name() string { return "rename_section" }

func (c RenameSection) apply(r *Resume) error {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return ErrInvalidTitle
	}
	return r.mutate(c.SectionID, func(s *Section) error {
		s.Title = title
		return nil
	})
}

// SetSectionIcon 修改模块图标。
type SetSectionIcon struct {
	SectionID string
	IconName  string
}

func (SetSectionIcon) Name() string { return "set_section_icon" }

func (c SetSectionIcon) apply(r *Resume) error {
	return r.mutate(c.SectionID, func(s *Section) error {
		s.IconName = c.IconName
		return nil
	})
}

// SetEditorType 切换模块编辑器，已有文字尽量迁移到新形态。
type SetEditorType struct {
	SectionID  string
	EditorType EditorType
}

func (SetEditorType) Name() string { return "set_editor_type" }

func (c SetEditorType) apply(r *Resume) error {
	switch c.EditorType {
	case EditorTimeline, EditorList, EditorText:
	default:
		return ErrInvalidEditorType
	}
	return r.mutate(c.SectionID, func(s *Section) error {
		if s.IsBasic() {
			return ErrInvalidEditorType
		}
		s.EditorType = c.EditorType
		s.Data = convertContent(s.Data, s.ContentKind(), NewID)
		if s.ContentKind() == KindTimeline && s.DateFormat == "" {
			s.DateFormat = dateutil.DefaultFormat
		}
		return nil
	})
}

// SetSectionVisible 显示或隐藏模块。
type SetSectionVisible struct {
	SectionID string
	Visible   bool
}

func (SetSectionVisible) Name() string { return "set_section_visible" }

func (c SetSectionVisible) apply(r *Resume) error {
	return r.mutate(c.SectionID, func(s *Section) error {
		s.Visible = c.Visible
		return nil
	})
}

// UpdateSectionContent 是编辑器自动保存的入口。
type UpdateSectionContent struct {
	SectionID  string
	Data       Content
	IconName   *string
	DateFormat *dateutil.DateFormat
}

func (UpdateSectionContent) Name() string { return "update_section_content" }

func (c UpdateSectionContent) apply(r *Resume) error {
	return r.mutate(c.SectionID, func(s *Section) error {
		if c.Data == nil || c.Data.Kind() != s.ContentKind() {
			return ErrInvalidContent
		}
		if c.DateFormat != nil {
			if _, ok := dateutil.ParseFormat(string(*c.DateFormat)); !ok {
				return ErrInvalidDateFormat
			}
			s.DateFormat = *c.DateFormat
		}
		if c.IconName != nil {
			s.IconName = *c.IconName
		}
		data := c.Data.clone()
		if items, ok := data.(TimelineItems); ok {
			migrateTimelineDates(items)
		}
		s.Data = data
		return nil
	})
}

// UpdateResumeMeta 修改简历标题、模板与布局。
type UpdateResumeMeta struct {
	Title    *string
	Template *string
	Layout   *LayoutMode
}

func (UpdateResumeMeta) Name() string { return "update_resume_meta" }

func (c UpdateResumeMeta) apply(r *Resume) error {
	if c.Title != nil {
		r.Title = strings.TrimSpace(*c.Title)
	}
	if c.Template != nil {
		r.Template = *c.Template
	}
	if c.Layout != nil {
		switch *c.Layout {
		case LayoutSideBySide, LayoutTopBottom:
			r.Layout = *c.Layout
		default:
			return fmt.Errorf("%w: %q", ErrInvalidLayout, *c.Layout)
		}
	}
	return nil
}

func (r *Resume) mutate(sectionID string, fn func(s *Section) error) error {
	i := r.indexOf(sectionID)
	if i < 0 {
		return ErrSectionNotFound
	}
	return fn(&r.Sections[i])
}

func migrateTimelineDates(items TimelineItems) {
	for i := range items {
		items[i].StartDate = dateutil.Migrate(items[i].StartDate)
		items[i].EndDate = dateutil.Migrate(items[i].EndDate)
	}
}
