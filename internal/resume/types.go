package resume

import (
	"sort"
	"time"

	"resumaker/internal/dateutil"
)

// SectionType 是模块的内容类型标签。
type SectionType string

const (
	SectionBasic    SectionType = "basic"
	SectionTimeline SectionType = "timeline"
	SectionList     SectionType = "list"
	SectionText     SectionType = "text"
	SectionCustom   SectionType = "custom"
)

// EditorType 是模块绑定的编辑器，可覆盖 SectionType 的默认选择。
type EditorType string

const (
	EditorTimeline EditorType = "timeline"
	EditorList     EditorType = "list"
	EditorText     EditorType = "text"
)

// LayoutMode 描述编辑器与预览的排布方式。
type LayoutMode string

const (
	LayoutSideBySide LayoutMode = "side-by-side"
	LayoutTopBottom  LayoutMode = "top-bottom"
)

// Resume 是一次编辑的完整简历文档。
type Resume struct {
	ID           string        `json:"id" validate:"required"`
	Title        string        `json:"title"`
	Sections     []Section     `json:"sections" validate:"dive"`
	Template     string        `json:"template"`
	Layout       LayoutMode    `json:"layout" validate:"omitempty,oneof=side-by-side top-bottom"`
	PageSettings *PageSettings `json:"pageSettings,omitempty"`
}

// PageSettings 控制多页排版。
type PageSettings struct {
	EnableMultiPage bool `json:"enableMultiPage"`
	TotalPages      int  `json:"totalPages" validate:"gte=1"`
}

// Section 是简历中的一个模块。Data 的具体类型由 ContentKind 决定。
type Section struct {
	ID         string              `json:"id" validate:"required"`
	Title      string              `json:"title"`
	IconName   string              `json:"iconName"`
	Type       SectionType         `json:"type" validate:"oneof=basic timeline list text custom"`
	EditorType EditorType          `json:"editorType,omitempty" validate:"omitempty,oneof=timeline list text"`
	Visible    bool                `json:"visible"`
	Order      int                 `json:"order"`
	PageNumber int                 `json:"pageNumber,omitempty" validate:"gte=0"`
	DateFormat dateutil.DateFormat `json:"dateFormat,omitempty" validate:"omitempty,oneof=zh-full zh-month dash-full dash-month dot-full dot-month"`
	Data       Content             `json:"-" validate:"-"`
}

// Metadata 是简历集合中的列表信息。
type Metadata struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Description string    `json:"description,omitempty"`
}

// Collection 是持久化状态的整体布局。
type Collection struct {
	CurrentResumeID string              `json:"currentResumeId"`
	Resumes         map[string]Resume   `json:"resumes"`
	Metadata        map[string]Metadata `json:"metadata"`
}

// Page 返回模块所在页，未设置时为第 1 页。
func (s Section) Page() int {
	if s.PageNumber < 1 {
		return 1
	}
	return s.PageNumber
}

// IsBasic 报告模块是否为基本信息。
func (s Section) IsBasic() bool {
	return s.Type == SectionBasic
}

// ResolvedEditorType 返回模块实际使用的编辑器：覆盖值优先，其次是内容类型，默认 timeline。
func (s Section) ResolvedEditorType() EditorType {
	if s.EditorType != "" {
		return s.EditorType
	}
	switch s.Type {
	case SectionList:
		return EditorList
	case SectionText:
		return EditorText
	default:
		return EditorTimeline
	}
}

// ContentKind 返回 Data 应有的具体形态。
func (s Section) ContentKind() ContentKind {
	switch {
	case s.Type == SectionBasic:
		return KindBasic
	case s.EditorType != "":
		return ContentKind(s.EditorType)
	case s.Type == SectionTimeline, s.Type == SectionList, s.Type == SectionText:
		return ContentKind(s.Type)
	default:
		return KindCustom
	}
}

// Clone 深拷贝模块。
func (s Section) Clone() Section {
	out := s
	if s.Data != nil {
		out.Data = s.Data.clone()
	}
	return out
}

// TotalPages 返回总页数，至少为 1。
func (r Resume) TotalPages() int {
	if r.PageSettings == nil || r.PageSettings.TotalPages < 1 {
		return 1
	}
	return r.PageSettings.TotalPages
}

// MultiPage 报告是否按多页渲染。
func (r Resume) MultiPage() bool {
	return r.PageSettings != nil && r.PageSettings.EnableMultiPage && r.PageSettings.TotalPages > 1
}

// Clone 深拷贝文档，命令总是在副本上执行。
func (r Resume) Clone() Resume {
	out := r
	out.Sections = make([]Section, len(r.Sections))
	for i, s := range r.Sections {
		out.Sections[i] = s.Clone()
	}
	if r.PageSettings != nil {
		ps := *r.PageSettings
		out.PageSettings = &ps
	}
	return out
}

// Section 按 ID 查找模块。
func (r Resume) Section(id string) (Section, bool) {
	if i := r.indexOf(id); i >= 0 {
		return r.Sections[i], true
	}
	return Section{}, false
}

// BasicSection 返回基本信息模块。
func (r Resume) BasicSection() (Section, bool) {
	for _, s := range r.Sections {
		if s.IsBasic() {
			return s, true
		}
	}
	return Section{}, false
}

// OrderedSections 返回按 order 排序的模块副本。
func (r Resume) OrderedSections() []Section {
	out := make([]Section, len(r.Sections))
	copy(out, r.Sections)
	sortByOrder(out)
	return out
}

// ContentSections 返回除基本信息外按 order 排序的模块。
func (r Resume) ContentSections() []Section {
	out := make([]Section, 0, len(r.Sections))
	for _, s := range r.OrderedSections() {
		if !s.IsBasic() {
			out = append(out, s)
		}
	}
	return out
}

func (r Resume) indexOf(id string) int {
	for i := range r.Sections {
		if r.Sections[i].ID == id {
			return i
		}
	}
	return -1
}

func (r Resume) maxOrder() int {
	max := -1
	for _, s := range r.Sections {
		if s.Order > max {
			max = s.Order
		}
	}
	return max
}

func sortByOrder(sections []Section) {
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})
}
