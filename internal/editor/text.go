package editor

import (
	"context"

	"resumaker/internal/resume"
)

// TextEditor 编辑富文本模块。
type TextEditor struct {
	sectionID string
	content   string
	iconName  string
	save      SaveFunc
}

func NewTextEditor(section resume.Section, save SaveFunc) (*TextEditor, error) {
	if err := checkKind(section, resume.KindText); err != nil {
		return nil, err
	}
	e := &TextEditor{sectionID: section.ID, iconName: section.IconName, save: save}
	if tc, ok := section.Data.(*resume.TextContent); ok && tc != nil {
		e.content = tc.Content
	}
	return e, nil
}

func (e *TextEditor) Content() string { return e.content }

func (e *TextEditor) SetContent(ctx context.Context, html string) error {
	if err := e.commit(ctx, html, e.iconName); err != nil {
		return err
	}
	e.content = html
	return nil
}

func (e *TextEditor) SetIcon(ctx context.Context, icon string) error {
	if err := e.commit(ctx, e.content, icon); err != nil {
		return err
	}
	e.iconName = icon
	return nil
}

func (e *TextEditor) commit(ctx context.Context, html, icon string) error {
	return e.save(ctx, resume.UpdateSectionContent{
		SectionID: e.sectionID,
		Data:      &resume.TextContent{Content: html},
		IconName:  &icon,
	})
}
