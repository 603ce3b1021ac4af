package resume

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"resumaker/internal/dateutil"
)

var (
	validateOnce sync.Once
	structValid  *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		structValid = validator.New(validator.WithRequiredStructEnabled())
	})
	return structValid
}

// Validate 检查文档不变量：字段合法、ID 唯一、基本信息唯一、order 唯一、多页时页号在范围内、内容形态匹配。
func Validate(r Resume) error {
	if err := structValidator().Struct(r); err != nil {
		return fmt.Errorf("invalid resume: %w", err)
	}

	var errs []error
	ids := make(map[string]struct{}, len(r.Sections))
	orders := make(map[int]string, len(r.Sections))
	basics := 0
	for _, s := range r.Sections {
		if _, dup := ids[s.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateSectionID, s.ID))
		}
		ids[s.ID] = struct{}{}

		if other, dup := orders[s.Order]; dup {
			errs = append(errs, fmt.Errorf("%w: sections %s and %s share order %d", ErrDuplicateOrder, other, s.ID, s.Order))
		}
		orders[s.Order] = s.ID

		if s.IsBasic() {
			basics++
		}
		if r.PageSettings != nil && r.PageSettings.EnableMultiPage {
			if s.Page() > r.TotalPages() {
				errs = append(errs, fmt.Errorf("%w: section %s on page %d of %d", ErrPageOutOfRange, s.ID, s.Page(), r.TotalPages()))
			}
		}
		if s.Data != nil && s.Data.Kind() != s.ContentKind() {
			errs = append(errs, fmt.Errorf("%w: section %s", ErrInvalidContent, s.ID))
		}
	}
	if basics > 1 {
		errs = append(errs, ErrDuplicateBasicInfo)
	}
	return errors.Join(errs...)
}

// Normalize 补齐默认值：缺失内容、页号、时间线日期格式，并迁移旧日期；order 重复时按现有顺序重新编号。
func Normalize(r Resume) Resume {
	out := r.Clone()
	seen := make(map[int]struct{}, len(out.Sections))
	renumber := false
	for i := range out.Sections {
		s := &out.Sections[i]
		if s.Data == nil {
			s.Data = EmptyContent(s.ContentKind())
		}
		if s.PageNumber < 1 || s.IsBasic() {
			s.PageNumber = 1
		}
		if s.PageNumber > out.TotalPages() {
			s.PageNumber = out.TotalPages()
		}
		if items, ok := s.Data.(TimelineItems); ok {
			migrateTimelineDates(items)
			if s.DateFormat == "" {
				s.DateFormat = dateutil.DefaultFormat
			}
		}
		if _, dup := seen[s.Order]; dup {
			renumber = true
		}
		seen[s.Order] = struct{}{}
	}
	if renumber {
		ordered := out.OrderedSections()
		for i := range ordered {
			ordered[i].Order = i
		}
		out.Sections = ordered
	}
	return out
}
