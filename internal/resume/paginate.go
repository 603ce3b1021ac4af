package resume

// Page 是一页的渲染内容。
type Page struct {
	Number    int       `json:"number"`
	BasicInfo *Section  `json:"basicInfo,omitempty"`
	Sections  []Section `json:"sections"`
}

// Paginate 将简历投影为按页分组的模块序列。
// 基本信息始终出现在第 1 页，不受 visible 影响；多页模式下没有模块的页面仍然保留。
func Paginate(r Resume) []Page {
	var basic *Section
	if s, ok := r.BasicSection(); ok {
		basic = &s
	}

	visible := make([]Section, 0, len(r.Sections))
	for _, s := range r.ContentSections() {
		if s.Visible {
			visible = append(visible, s)
		}
	}

	if !r.MultiPage() {
		return []Page{{Number: 1, BasicInfo: basic, Sections: visible}}
	}

	pages := make([]Page, r.TotalPages())
	for i := range pages {
		pages[i] = Page{Number: i + 1, Sections: []Section{}}
	}
	pages[0].BasicInfo = basic
	for _, s := range visible {
		p := s.Page()
		if p > len(pages) {
			continue
		}
		pages[p-1].Sections = append(pages[p-1].Sections, s)
	}
	return pages
}
