package resume

import (
	"strconv"
	"strings"
)

// PageTargetPrefix 是页面容器放置目标的 ID 前缀，例如 "page-2"。
const PageTargetPrefix = "page-"

// PageTargetID 返回页面容器的放置目标 ID。
func PageTargetID(page int) string {
	return PageTargetPrefix + strconv.Itoa(page)
}

// ParsePageTarget 解析页面容器 ID。
func ParsePageTarget(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, PageTargetPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// DragEnd 是一次拖拽结束事件。OverID 为空表示拖拽被取消。
type DragEnd struct {
	ActiveID string
	OverID   string
}

func (DragEnd) Name() string { return "drag_end" }

// Resolve 将事件解析为 ReassignPage、Reorder 或 nil（无操作）。
func (c DragEnd) Resolve() Command {
	if c.ActiveID == "" || c.OverID == "" || c.ActiveID == c.OverID {
		return nil
	}
	if page, ok := ParsePageTarget(c.OverID); ok {
		return ReassignPage{SectionID: c.ActiveID, PageNumber: page}
	}
	return Reorder{ActiveID: c.ActiveID, OverID: c.OverID}
}

func (c DragEnd) apply(r *Resume) error {
	cmd := c.Resolve()
	if cmd == nil {
		return nil
	}
	return cmd.apply(r)
}

// Reorder 将 ActiveID 移动到 OverID 所在位置，其余模块依次顺延，order 重新连续编号。
type Reorder struct {
	ActiveID string
	OverID   string
}

func (Reorder) Name() string { return "reorder" }

func (c Reorder) apply(r *Resume) error {
	ordered := r.OrderedSections()
	from, to := -1, -1
	for i, s := range ordered {
		switch s.ID {
		case c.ActiveID:
			from = i
		case c.OverID:
			to = i
		}
	}
	if from < 0 {
		return ErrSectionNotFound
	}
	if to < 0 || from == to {
		return nil
	}
	ordered = MoveItem(ordered, from, to)
	for i := range ordered {
		ordered[i].Order = i
	}
	r.Sections = ordered
	return nil
}

// ReassignPage 将模块放入指定页，order 不变。
type ReassignPage struct {
	SectionID  string
	PageNumber int
}

func (ReassignPage) Name() string { return "reassign_page" }

func (c ReassignPage) apply(r *Resume) error {
	if c.PageNumber < 1 || c.PageNumber > r.TotalPages() {
		return ErrPageOutOfRange
	}
	return r.mutate(c.SectionID, func(s *Section) error {
		if s.IsBasic() {
			if c.PageNumber != 1 {
				return ErrBasicInfoLocked
			}
			return nil
		}
		s.PageNumber = c.PageNumber
		return nil
	})
}

// MoveItem 返回把 from 处元素移到 to 处后的新切片。
func MoveItem[T any](items []T, from, to int) []T {
	out := make([]T, 0, len(items))
	out = append(out, items...)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	item := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]T{item}, out[to:]...)...)
	return out
}
