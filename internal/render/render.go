// Package render 将简历投影渲染为可打印的 HTML。
package render

import (
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"resumaker/internal/dateutil"
	"resumaker/internal/layout"
	"resumaker/internal/resume"
)

// Options 控制预览渲染。
type Options struct {
	Scale     int
	Viewport  layout.Breakpoints
	Print     bool
	AvatarURL string
}

var (
	policy = bluemonday.UGCPolicy()
	page   = template.Must(template.New("resume").Parse(pageTemplate))
)

const presentLabel = "至今"

type document struct {
	Title          string
	Scale          string
	ContainerClass string
	SpacingClass   string
	Print          bool
	Pages          []pageView
}

type pageView struct {
	Number   int
	Basic    *basicView
	Sections []sectionView
	Last     bool
}

type basicView struct {
	Layout string
	Avatar string
	Name   string
	Fields []fieldView
}

type fieldView struct {
	Label string
	Value string
	Icon  string
}

type sectionView struct {
	ID       string
	Title    string
	Icon     string
	Kind     string
	Timeline []timelineView
	List     []template.HTML
	Text     template.HTML
	Custom   []fieldView
}

type timelineView struct {
	Title       string
	Subtitle    string
	Secondary   string
	Period      string
	Description template.HTML
}

// HTML 渲染完整的预览文档，每个投影页对应一个 section.page。
func HTML(w io.Writer, r resume.Resume, opts Options) error {
	if err := page.Execute(w, build(r, opts)); err != nil {
		return fmt.Errorf("render resume %s: %w", r.ID, err)
	}
	return nil
}

// Sanitize 按 UGC 策略清洗富文本。
func Sanitize(html string) template.HTML {
	return template.HTML(policy.Sanitize(html))
}

func build(r resume.Resume, opts Options) document {
	scale := layout.ClampScale(opts.Scale)
	doc := document{
		Title:          r.Title,
		Scale:          fmt.Sprintf("%.2f", float64(scale)/100),
		ContainerClass: opts.Viewport.ContainerClass(),
		SpacingClass:   opts.Viewport.SpacingClass(layout.SpacingMedium),
		Print:          opts.Print,
	}
	pages := resume.Paginate(r)
	for i, p := range pages {
		pv := pageView{Number: p.Number, Last: i == len(pages)-1}
		if p.BasicInfo != nil {
			pv.Basic = buildBasic(*p.BasicInfo, opts.AvatarURL)
		}
		for _, s := range p.Sections {
			pv.Sections = append(pv.Sections, buildSection(s))
		}
		doc.Pages = append(doc.Pages, pv)
	}
	return doc
}

func buildBasic(s resume.Section, avatarURL string) *basicView {
	info, _ := s.Data.(*resume.BasicInfo)
	if info == nil {
		info = &resume.BasicInfo{}
	}
	v := &basicView{
		Layout: string(info.Layout),
		Name:   info.Name,
		Avatar: avatarURL,
	}
	if v.Layout == "" {
		v.Layout = string(resume.BasicLayoutClassic)
	}
	if v.Avatar == "" && (strings.HasPrefix(info.Avatar, "https://") || strings.HasPrefix(info.Avatar, "http://")) {
		v.Avatar = info.Avatar
	}
	fixed := []fieldView{
		{Label: "邮箱", Value: info.Email, Icon: "mail"},
		{Label: "电话", Value: info.Phone, Icon: "phone"},
		{Label: "性别", Value: info.Gender, Icon: "user"},
		{Label: "年龄", Value: info.Age, Icon: "calendar"},
		{Label: "所在地", Value: info.Location, Icon: "map-pin"},
		{Label: "网站", Value: info.Website, Icon: "globe"},
	}
	for _, f := range fixed {
		if strings.TrimSpace(f.Value) != "" {
			v.Fields = append(v.Fields, f)
		}
	}
	for _, f := range info.CustomFields {
		if strings.TrimSpace(f.Value) != "" {
			v.Fields = append(v.Fields, fieldView{Label: f.Label, Value: f.Value, Icon: f.IconName})
		}
	}
	return v
}

func buildSection(s resume.Section) sectionView {
	v := sectionView{ID: s.ID, Title: s.Title, Icon: s.IconName, Kind: string(s.ContentKind())}
	switch data := s.Data.(type) {
	case resume.TimelineItems:
		format := s.DateFormat
		if format == "" {
			format = dateutil.DefaultFormat
		}
		for _, it := range data {
			v.Timeline = append(v.Timeline, timelineView{
				Title:       it.Title,
				Subtitle:    it.Subtitle,
				Secondary:   it.SecondarySubtitle,
				Period:      period(it.StartDate, it.EndDate, format),
				Description: Sanitize(it.Description),
			})
		}
	case resume.ListItems:
		for _, it := range data {
			v.List = append(v.List, Sanitize(it.Content))
		}
	case *resume.TextContent:
		if data != nil {
			v.Text = Sanitize(data.Content)
		}
	case resume.CustomContent:
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v.Custom = append(v.Custom, fieldView{Label: k, Value: fmt.Sprint(data[k])})
		}
	}
	return v
}

// period 渲染起止日期；只有起始日期时结束显示为"至今"。
func period(start, end string, f dateutil.DateFormat) string {
	from := dateutil.Format(start, f)
	to := dateutil.Format(end, f)
	switch {
	case from == "" && to == "":
		return ""
	case to == "":
		return from + " - " + presentLabel
	case from == "":
		return to
	default:
		return from + " - " + to
	}
}
