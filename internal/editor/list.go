package editor

import (
	"context"

	"resumaker/internal/resume"
)

// ListEditor 编辑列表模块。
type ListEditor struct {
	*ItemEditor[resume.ListItem]
	sectionID string
	save      SaveFunc
}

func NewListEditor(section resume.Section, save SaveFunc) (*ListEditor, error) {
	if err := checkKind(section, resume.KindList); err != nil {
		return nil, err
	}
	items, _ := section.Data.(resume.ListItems)
	e := &ListEditor{sectionID: section.ID, save: save}
	e.ItemEditor = newItemEditor(items, func(it resume.ListItem) string { return it.ID }, e.commit)
	return e, nil
}

// AddItem 追加一条内容。
func (e *ListEditor) AddItem(ctx context.Context, content string) (resume.ListItem, error) {
	item := resume.ListItem{ID: resume.NewID(), Content: content}
	return item, e.Add(ctx, item)
}

func (e *ListEditor) SetContent(ctx context.Context, itemID, content string) error {
	return e.Update(ctx, itemID, func(it *resume.ListItem) error {
		it.Content = content
		return nil
	})
}

func (e *ListEditor) commit(ctx context.Context, items []resume.ListItem) error {
	return e.save(ctx, resume.UpdateSectionContent{
		SectionID: e.sectionID,
		Data:      resume.ListItems(items),
	})
}
