package resume

import "resumaker/internal/dateutil"

const (
	DefaultTitle    = "我的简历"
	DefaultTemplate = "classic"
)

// NewDefault 返回新建简历时使用的初始文档。
func NewDefault(id, title string) Resume {
	if title == "" {
		title = DefaultTitle
	}
	return Resume{
		ID:           id,
		Title:        title,
		Template:     DefaultTemplate,
		Layout:       LayoutSideBySide,
		PageSettings: &PageSettings{EnableMultiPage: false, TotalPages: 1},
		Sections: []Section{
			{
				ID: "basic", Title: "基本信息", IconName: "user", Type: SectionBasic,
				Visible: true, Order: 0, PageNumber: 1,
				Data: &BasicInfo{
					Name:   "你的名字",
					Email:  "hello@example.com",
					Phone:  "123-456-7890",
					Layout: BasicLayoutClassic,
				},
			},
			{
				ID: "education", Title: "教育经历", IconName: "graduation-cap", Type: SectionTimeline,
				Visible: true, Order: 1, PageNumber: 1, DateFormat: dateutil.FormatZhMonth,
				Data: TimelineItems{{
					ID: "education-1", Title: "某某大学", Subtitle: "计算机科学与技术", SecondarySubtitle: "本科",
					StartDate: "2018-09-01", EndDate: "2022-06-01", Description: "主修课程：数据结构、操作系统、计算机网络",
				}},
			},
			{
				ID: "work", Title: "工作经历", IconName: "briefcase", Type: SectionTimeline,
				Visible: true, Order: 2, PageNumber: 1, DateFormat: dateutil.FormatZhMonth,
				Data: TimelineItems{{
					ID: "work-1", Title: "某某科技有限公司", Subtitle: "后端工程师",
					StartDate: "2022-07-01", Description: "负责核心服务的设计与开发",
				}},
			},
			{
				ID: "skills", Title: "专业技能", IconName: "wrench", Type: SectionList,
				Visible: true, Order: 3, PageNumber: 1,
				Data: ListItems{{ID: "skills-1", Content: "熟悉 Go 及其生态"}},
			},
			{
				ID: "summary", Title: "自我评价", IconName: "star", Type: SectionText,
				Visible: true, Order: 4, PageNumber: 1,
				Data: &TextContent{Content: "<p>在这里介绍你自己。</p>"},
			},
		},
	}
}
