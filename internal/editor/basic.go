package editor

import (
	"context"
	"fmt"

	"resumaker/internal/resume"
)

// BasicInfoEditor 编辑基本信息：固定字段、排版与自定义字段。
type BasicInfoEditor struct {
	sectionID string
	info      resume.BasicInfo
	fields    *ItemEditor[resume.CustomField]
	save      SaveFunc
}

func NewBasicInfoEditor(section resume.Section, save SaveFunc) (*BasicInfoEditor, error) {
	if err := checkKind(section, resume.KindBasic); err != nil {
		return nil, err
	}
	e := &BasicInfoEditor{sectionID: section.ID, save: save}
	if info, ok := section.Data.(*resume.BasicInfo); ok && info != nil {
		e.info = *info
	}
	e.fields = newItemEditor(e.info.CustomFields, func(f resume.CustomField) string { return f.ID }, e.commitFields)
	return e, nil
}

// Info 返回当前基本信息副本。
func (e *BasicInfoEditor) Info() resume.BasicInfo {
	out := e.info
	out.CustomFields = e.fields.Items()
	return out
}

// SetField 修改固定字段，字段名与 JSON 键一致。
func (e *BasicInfoEditor) SetField(ctx context.Context, field, value string) error {
	next := e.Info()
	switch field {
	case "avatar":
		next.Avatar = value
	case "name":
		next.Name = value
	case "email":
		next.Email = value
	case "phone":
		next.Phone = value
	case "gender":
		next.Gender = value
	case "age":
		next.Age = value
	case "location":
		next.Location = value
	case "website":
		next.Website = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return e.commit(ctx, next)
}

func (e *BasicInfoEditor) SetLayout(ctx context.Context, layout resume.BasicInfoLayout) error {
	switch layout {
	case resume.BasicLayoutCenter, resume.BasicLayoutLeft, resume.BasicLayoutRight, resume.BasicLayoutClassic:
	default:
		return fmt.Errorf("%w: layout %q", ErrUnknownField, layout)
	}
	next := e.Info()
	next.Layout = layout
	return e.commit(ctx, next)
}

// AddCustomField 追加自定义字段。
func (e *BasicInfoEditor) AddCustomField(ctx context.Context, label, value, iconName string) (resume.CustomField, error) {
	f := resume.CustomField{ID: resume.NewID(), Label: label, Value: value, IconName: iconName}
	return f, e.fields.Add(ctx, f)
}

func (e *BasicInfoEditor) UpdateCustomField(ctx context.Context, id string, fn func(*resume.CustomField)) error {
	return e.fields.Update(ctx, id, func(f *resume.CustomField) error {
		fn(f)
		return nil
	})
}

func (e *BasicInfoEditor) RemoveCustomField(ctx context.Context, id string) error {
	return e.fields.Remove(ctx, id)
}

func (e *BasicInfoEditor) MoveCustomField(ctx context.Context, activeID, overID string) error {
	return e.fields.DragEnd(ctx, activeID, overID)
}

func (e *BasicInfoEditor) commitFields(ctx context.Context, fields []resume.CustomField) error {
	next := e.info
	next.CustomFields = fields
	return e.send(ctx, next)
}

func (e *BasicInfoEditor) commit(ctx context.Context, next resume.BasicInfo) error {
	if err := e.send(ctx, next); err != nil {
		return err
	}
	e.info = next
	return nil
}

func (e *BasicInfoEditor) send(ctx context.Context, info resume.BasicInfo) error {
	return e.save(ctx, resume.UpdateSectionContent{SectionID: e.sectionID, Data: &info})
}
