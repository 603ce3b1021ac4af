// Package editor 实现各类模块编辑器。编辑器从模块快照构建，每次修改都把完整内容交给 SaveFunc 自动保存。
package editor

import (
	"context"
	"errors"
	"fmt"

	"resumaker/internal/resume"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidDate  = errors.New("invalid date input")
	ErrWrongKind    = errors.New("section content does not match editor")
)

// SaveFunc 持久化一次内容更新，通常转发给 store.Service.Dispatch。
type SaveFunc func(ctx context.Context, cmd resume.UpdateSectionContent) error

// ItemEditor 管理有序条目集合；Add/Update/Remove/DragEnd 成功后调用 commit。
type ItemEditor[T any] struct {
	items  []T
	idOf   func(T) string
	commit func(ctx context.Context, items []T) error
}

func newItemEditor[T any](items []T, idOf func(T) string, commit func(context.Context, []T) error) *ItemEditor[T] {
	return &ItemEditor[T]{
		items:  append([]T{}, items...),
		idOf:   idOf,
		commit: commit,
	}
}

// Items 返回当前条目的副本。
func (e *ItemEditor[T]) Items() []T {
	return append([]T{}, e.items...)
}

func (e *ItemEditor[T]) indexOf(id string) int {
	for i, it := range e.items {
		if e.idOf(it) == id {
			return i
		}
	}
	return -1
}

// Add 追加条目。
func (e *ItemEditor[T]) Add(ctx context.Context, item T) error {
	next := append(e.Items(), item)
	return e.replace(ctx, next)
}

// Update 修改指定条目。
func (e *ItemEditor[T]) Update(ctx context.Context, id string, fn func(*T) error) error {
	i := e.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	next := e.Items()
	if err := fn(&next[i]); err != nil {
		return err
	}
	return e.replace(ctx, next)
}

// Remove 删除指定条目。
func (e *ItemEditor[T]) Remove(ctx context.Context, id string) error {
	i := e.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	next := e.Items()
	next = append(next[:i], next[i+1:]...)
	return e.replace(ctx, next)
}

// DragEnd 将 activeID 移到 overID 的位置；目标为空或不存在时不做任何修改。
func (e *ItemEditor[T]) DragEnd(ctx context.Context, activeID, overID string) error {
	if overID == "" || activeID == overID {
		return nil
	}
	from, to := e.indexOf(activeID), e.indexOf(overID)
	if from < 0 || to < 0 {
		return nil
	}
	return e.replace(ctx, resume.MoveItem(e.items, from, to))
}

func (e *ItemEditor[T]) replace(ctx context.Context, next []T) error {
	if err := e.commit(ctx, next); err != nil {
		return err
	}
	e.items = next
	return nil
}

func checkKind(section resume.Section, want resume.ContentKind) error {
	if section.ContentKind() != want {
		return fmt.Errorf("%w: section %s is %s, want %s", ErrWrongKind, section.ID, section.ContentKind(), want)
	}
	return nil
}

// New 根据模块解析出的编辑器类型构建对应编辑器。
func New(section resume.Section, save SaveFunc) (any, error) {
	switch section.ContentKind() {
	case resume.KindBasic:
		return NewBasicInfoEditor(section, save)
	case resume.KindTimeline:
		return NewTimelineEditor(section, save)
	case resume.KindList:
		return NewListEditor(section, save)
	case resume.KindText:
		return NewTextEditor(section, save)
	default:
		return nil, fmt.Errorf("%w: no editor for %s", ErrWrongKind, section.ContentKind())
	}
}
