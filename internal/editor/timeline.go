package editor

import (
	"context"
	"fmt"

	"resumaker/internal/dateutil"
	"resumaker/internal/resume"
)

// TimelineField 是时间线条目的可编辑字段。
type TimelineField string

const (
	FieldTitle             TimelineField = "title"
	FieldSubtitle          TimelineField = "subtitle"
	FieldSecondarySubtitle TimelineField = "secondarySubtitle"
	FieldStartDate         TimelineField = "startDate"
	FieldEndDate           TimelineField = "endDate"
	FieldDescription       TimelineField = "description"
)

// TimelineEditor 编辑经历类模块。
type TimelineEditor struct {
	*ItemEditor[resume.TimelineItem]
	sectionID  string
	iconName   string
	dateFormat dateutil.DateFormat
	save       SaveFunc
}

func NewTimelineEditor(section resume.Section, save SaveFunc) (*TimelineEditor, error) {
	if err := checkKind(section, resume.KindTimeline); err != nil {
		return nil, err
	}
	items, _ := section.Data.(resume.TimelineItems)
	e := &TimelineEditor{
		sectionID:  section.ID,
		iconName:   section.IconName,
		dateFormat: section.DateFormat,
		save:       save,
	}
	if e.dateFormat == "" {
		e.dateFormat = dateutil.DefaultFormat
	}
	e.ItemEditor = newItemEditor(items, func(it resume.TimelineItem) string { return it.ID }, e.commit)
	return e, nil
}

func (e *TimelineEditor) DateFormat() dateutil.DateFormat { return e.dateFormat }

// DisplayDate 按当前格式渲染条目日期。
func (e *TimelineEditor) DisplayDate(canonical string) string {
	return dateutil.Format(canonical, e.dateFormat)
}

// AddItem 追加一个空条目并返回它。
func (e *TimelineEditor) AddItem(ctx context.Context) (resume.TimelineItem, error) {
	item := resume.TimelineItem{ID: resume.NewID()}
	return item, e.Add(ctx, item)
}

// SetField 修改条目字段；日期字段会先规范化。
func (e *TimelineEditor) SetField(ctx context.Context, itemID string, field TimelineField, value string) error {
	return e.Update(ctx, itemID, func(it *resume.TimelineItem) error {
		switch field {
		case FieldTitle:
			it.Title = value
		case FieldSubtitle:
			it.Subtitle = value
		case FieldSecondarySubtitle:
			it.SecondarySubtitle = value
		case FieldStartDate:
			it.StartDate = dateutil.Migrate(value)
		case FieldEndDate:
			it.EndDate = dateutil.Migrate(value)
		case FieldDescription:
			it.Description = value
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		return nil
	})
}

// SetDate 由年/月/日输入组合日期，按当前格式决定是否保留日。
func (e *TimelineEditor) SetDate(ctx context.Context, itemID string, field TimelineField, parts dateutil.Parts) error {
	if field != FieldStartDate && field != FieldEndDate {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if !dateutil.ValidYear(parts.Year) || !dateutil.ValidMonth(parts.Month) || !dateutil.ValidDay(parts.Day) {
		return ErrInvalidDate
	}
	value := dateutil.CombineParts(parts.Year, parts.Month, parts.Day, e.dateFormat.HasDay())
	return e.SetField(ctx, itemID, field, value)
}

// SetDateFormat 切换显示格式，存储值不变。
func (e *TimelineEditor) SetDateFormat(ctx context.Context, raw string) error {
	f, ok := dateutil.ParseFormat(raw)
	if !ok {
		return fmt.Errorf("%w: %q", resume.ErrInvalidDateFormat, raw)
	}
	prev := e.dateFormat
	e.dateFormat = f
	if err := e.commit(ctx, e.items); err != nil {
		e.dateFormat = prev
		return err
	}
	return nil
}

func (e *TimelineEditor) SetIcon(ctx context.Context, icon string) error {
	prev := e.iconName
	e.iconName = icon
	if err := e.commit(ctx, e.items); err != nil {
		e.iconName = prev
		return err
	}
	return nil
}

func (e *TimelineEditor) commit(ctx context.Context, items []resume.TimelineItem) error {
	icon, format := e.iconName, e.dateFormat
	return e.save(ctx, resume.UpdateSectionContent{
		SectionID:  e.sectionID,
		Data:       resume.TimelineItems(items),
		IconName:   &icon,
		DateFormat: &format,
	})
}
