package resume

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ContentKind 是 Data 的形态标签。
type ContentKind string

const (
	KindBasic    ContentKind = "basic"
	KindTimeline ContentKind = "timeline"
	KindList     ContentKind = "list"
	KindText     ContentKind = "text"
	KindCustom   ContentKind = "custom"
)

// Content 是模块内容的标签联合：*BasicInfo | TimelineItems | ListItems | *TextContent | CustomContent。
type Content interface {
	Kind() ContentKind
	clone() Content
}

// BasicInfoLayout 是基本信息区的排版变体。
type BasicInfoLayout string

const (
	BasicLayoutCenter  BasicInfoLayout = "center"
	BasicLayoutLeft    BasicInfoLayout = "left"
	BasicLayoutRight   BasicInfoLayout = "right"
	BasicLayoutClassic BasicInfoLayout = "classic"
)

// CustomField 是基本信息中的自定义键值。
type CustomField struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Icon     string `json:"icon,omitempty"`
	IconName string `json:"iconName"`
}

// BasicInfo 是每份简历唯一的基本信息。
type BasicInfo struct {
	Avatar       string          `json:"avatar,omitempty"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Gender       string          `json:"gender,omitempty"`
	Age          string          `json:"age,omitempty"`
	Location     string          `json:"location,omitempty"`
	Website      string          `json:"website,omitempty"`
	CustomFields []CustomField   `json:"customFields,omitempty"`
	Layout       BasicInfoLayout `json:"layout,omitempty"`
}

// TimelineItem 是经历类条目，日期以规范格式存储。
type TimelineItem struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Subtitle          string `json:"subtitle,omitempty"`
	SecondarySubtitle string `json:"secondarySubtitle,omitempty"`
	StartDate         string `json:"startDate,omitempty"`
	EndDate           string `json:"endDate,omitempty"`
	Description       string `json:"description"`
}

// ListItem 是列表条目。
type ListItem struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type (
	TimelineItems []TimelineItem
	ListItems     []ListItem
	CustomContent map[string]any
)

// TextContent 保存富文本 HTML。
type TextContent struct {
	Content string `json:"content"`
}

func (b *BasicInfo) Kind() ContentKind   { return KindBasic }
func (TimelineItems) Kind() ContentKind  { return KindTimeline }
func (ListItems) Kind() ContentKind      { return KindList }
func (t *TextContent) Kind() ContentKind { return KindText }
func (CustomContent) Kind() ContentKind  { return KindCustom }

func (b *BasicInfo) clone() Content {
	out := *b
	out.CustomFields = append([]CustomField(nil), b.CustomFields...)
	return &out
}

func (t TimelineItems) clone() Content { return append(TimelineItems{}, t...) }
func (l ListItems) clone() Content     { return append(ListItems{}, l...) }

func (t *TextContent) clone() Content {
	out := *t
	return &out
}

func (c CustomContent) clone() Content {
	out := make(CustomContent, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// EmptyContent 返回指定形态的空内容。
func EmptyContent(kind ContentKind) Content {
	switch kind {
	case KindBasic:
		return &BasicInfo{}
	case KindTimeline:
		return TimelineItems{}
	case KindList:
		return ListItems{}
	case KindText:
		return &TextContent{}
	default:
		return CustomContent{}
	}
}

// DecodeContent 按形态解析 JSON；null、空串与空对象视为空内容。
func DecodeContent(kind ContentKind, raw json.RawMessage) (Content, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return EmptyContent(kind), nil
	}
	if bytes.Equal(trimmed, []byte("{}")) && (kind == KindTimeline || kind == KindList) {
		return EmptyContent(kind), nil
	}

	var (
		out Content
		err error
	)
	switch kind {
	case KindBasic:
		var v BasicInfo
		err = json.Unmarshal(trimmed, &v)
		out = &v
	case KindTimeline:
		var v TimelineItems
		err = json.Unmarshal(trimmed, &v)
		out = v
	case KindList:
		var v ListItems
		err = json.Unmarshal(trimmed, &v)
		out = v
	case KindText:
		var v TextContent
		err = json.Unmarshal(trimmed, &v)
		out = &v
	default:
		var v CustomContent
		err = json.Unmarshal(trimmed, &v)
		out = v
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidContent, kind, err)
	}
	if out.Kind() == KindTimeline && out.(TimelineItems) == nil {
		out = TimelineItems{}
	}
	if out.Kind() == KindList && out.(ListItems) == nil {
		out = ListItems{}
	}
	return out, nil
}

type sectionJSON struct {
	sectionFields
	Data json.RawMessage `json:"data"`
}

type sectionFields Section

// MarshalJSON 将 Data 以 "data" 字段输出。
func (s Section) MarshalJSON() ([]byte, error) {
	data := s.Data
	if data == nil {
		data = EmptyContent(s.ContentKind())
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal section %s data: %w", s.ID, err)
	}
	return json.Marshal(sectionJSON{sectionFields: sectionFields(s), Data: raw})
}

// UnmarshalJSON 根据 type/editorType 选择 Data 的具体类型。
func (s *Section) UnmarshalJSON(b []byte) error {
	var aux sectionJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*s = Section(aux.sectionFields)
	data, err := DecodeContent(s.ContentKind(), aux.Data)
	if err != nil {
		return fmt.Errorf("section %s: %w", s.ID, err)
	}
	s.Data = data
	return nil
}

// convertContent 在切换编辑器时尽量保留已有文字。
func convertContent(c Content, to ContentKind, newID func() string) Content {
	if c != nil && c.Kind() == to {
		return c
	}
	lines := contentLines(c)
	switch to {
	case KindList:
		items := make(ListItems, 0, len(lines))
		for _, line := range lines {
			items = append(items, ListItem{ID: newID(), Content: line})
		}
		return items
	case KindTimeline:
		items := make(TimelineItems, 0, len(lines))
		for _, line := range lines {
			items = append(items, TimelineItem{ID: newID(), Title: line})
		}
		return items
	case KindText:
		var sb strings.Builder
		for _, line := range lines {
			sb.WriteString("<p>")
			sb.WriteString(line)
			sb.WriteString("</p>")
		}
		return &TextContent{Content: sb.String()}
	default:
		return EmptyContent(to)
	}
}

func contentLines(c Content) []string {
	var lines []string
	switch v := c.(type) {
	case ListItems:
		for _, it := range v {
			if strings.TrimSpace(it.Content) != "" {
				lines = append(lines, it.Content)
			}
		}
	case TimelineItems:
		for _, it := range v {
			if strings.TrimSpace(it.Title) != "" {
				lines = append(lines, it.Title)
			}
		}
	case *TextContent:
		for _, line := range strings.Split(stripTags(v.Content), "\n") {
			if strings.TrimSpace(line) != "" {
				lines = append(lines, strings.TrimSpace(line))
			}
		}
	case *BasicInfo, CustomContent, nil:
	}
	return lines
}

func stripTags(html string) string {
	replacer := strings.NewReplacer("</p>", "\n", "<br>", "\n", "<br/>", "\n", "</li>", "\n")
	html = replacer.Replace(html)
	var sb strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
