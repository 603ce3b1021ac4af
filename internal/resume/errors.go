package resume

import "errors"

var (
	ErrSectionNotFound    = errors.New("section not found")
	ErrDuplicateSectionID = errors.New("duplicate section id")
	ErrDuplicateBasicInfo = errors.New("resume already has a basic info section")
	ErrBasicInfoLocked    = errors.New("basic info section is pinned to page 1")
	ErrPageOutOfRange     = errors.New("page number out of range")
	ErrPageNotRemovable   = errors.New("page 1 cannot be removed")
	ErrInvalidContent     = errors.New("content does not match section type")
	ErrInvalidTitle       = errors.New("section title must not be empty")
	ErrInvalidEditorType  = errors.New("invalid editor type")
	ErrInvalidDateFormat  = errors.New("invalid date format")
	ErrDuplicateOrder     = errors.New("duplicate section order")
	ErrInvalidLayout      = errors.New("invalid layout mode")
)
