package resume

import (
	"fmt"
	"sort"
)

// OrphanPolicy 决定删除页面后该页模块的去向。
type OrphanPolicy string

const (
	// OrphanToFirstPage 将被删页面的模块移回第 1 页。
	OrphanToFirstPage OrphanPolicy = "reassign-first"
	// OrphanToPreviousPage 将被删页面的模块并入前一页。
	OrphanToPreviousPage OrphanPolicy = "merge-previous"
)

// ParseOrphanPolicy 校验策略名，空串返回默认策略。
func ParseOrphanPolicy(raw string) (OrphanPolicy, error) {
	switch OrphanPolicy(raw) {
	case "", OrphanToFirstPage:
		return OrphanToFirstPage, nil
	case OrphanToPreviousPage:
		return OrphanToPreviousPage, nil
	default:
		return "", fmt.Errorf("unknown page removal policy %q", raw)
	}
}

func (r *Resume) settings() *PageSettings {
	if r.PageSettings == nil {
		r.PageSettings = &PageSettings{TotalPages: 1}
	}
	if r.PageSettings.TotalPages < 1 {
		r.PageSettings.TotalPages = 1
	}
	return r.PageSettings
}

// AddPage 在末尾追加一页并开启多页模式。
type AddPage struct{}

func (AddPage) Name() string { return "add_page" }

func (AddPage) apply(r *Resume) error {
	ps := r.settings()
	ps.TotalPages++
	ps.EnableMultiPage = true
	return nil
}

// RemovePage 删除第 PageNumber 页（第 1 页不可删），之后的页号依次减一。
type RemovePage struct {
	PageNumber int
	Policy     OrphanPolicy
}

func (RemovePage) Name() string { return "remove_page" }

func (c RemovePage) apply(r *Resume) error {
	ps := r.settings()
	k := c.PageNumber
	if k <= 1 {
		return ErrPageNotRemovable
	}
	if k > ps.TotalPages {
		return ErrPageOutOfRange
	}

	target := 1
	if c.Policy == OrphanToPreviousPage {
		target = k - 1
	}
	for i := range r.Sections {
		s := &r.Sections[i]
		switch p := s.Page(); {
		case p == k:
			s.PageNumber = target
		case p > k:
			s.PageNumber = p - 1
		}
	}
	ps.TotalPages--
	ps.EnableMultiPage = ps.TotalPages > 1
	return nil
}

// SetMultiPage 开关多页模式，页面分配保持不变。
type SetMultiPage struct {
	Enabled bool
}

func (SetMultiPage) Name() string { return "set_multi_page" }

func (c SetMultiPage) apply(r *Resume) error {
	r.settings().EnableMultiPage = c.Enabled
	return nil
}

// AssignPages 批量设置模块页号，全部校验通过后才生效。
type AssignPages struct {
	Assignments map[string]int
}

func (AssignPages) Name() string { return "assign_pages" }

func (c AssignPages) apply(r *Resume) error {
	ids := make([]string, 0, len(c.Assignments))
	for id := range c.Assignments {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := (ReassignPage{SectionID: id, PageNumber: c.Assignments[id]}).apply(r); err != nil {
			return fmt.Errorf("section %s: %w", id, err)
		}
	}
	return nil
}

// AutoAssignPages 将前一半内容模块放在第 1 页，其余放在第 2 页。
type AutoAssignPages struct{}

func (AutoAssignPages) Name() string { return "auto_assign_pages" }

func (AutoAssignPages) apply(r *Resume) error {
	sections := r.ContentSections()
	if len(sections) == 0 {
		return nil
	}
	ps := r.settings()
	if ps.TotalPages < 2 {
		ps.TotalPages = 2
	}
	ps.EnableMultiPage = true

	half := (len(sections) + 1) / 2
	assignments := make(map[string]int, len(sections))
	for i, s := range sections {
		page := 1
		if i >= half {
			page = 2
		}
		assignments[s.ID] = page
	}
	return AssignPages{Assignments: assignments}.apply(r)
}

// ResetPageAssignments 将全部模块放回第 1 页。
type ResetPageAssignments struct{}

func (ResetPageAssignments) Name() string { return "reset_page_assignments" }

func (ResetPageAssignments) apply(r *Resume) error {
	for i := range r.Sections {
		r.Sections[i].PageNumber = 1
	}
	return nil
}

// PageSectionCounts 返回每页的内容模块数量，下标 0 对应第 1 页。
func PageSectionCounts(r Resume) []int {
	counts := make([]int, r.TotalPages())
	for _, s := range r.ContentSections() {
		if p := s.Page(); p <= len(counts) {
			counts[p-1]++
		}
	}
	return counts
}
