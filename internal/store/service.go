// Package store 是简历文档的唯一写入入口：命令在互斥锁内串行执行并持久化。
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"resumaker/internal/metrics"
	"resumaker/internal/resume"
)

// ErrResumeLimit 表示简历数量达到上限。
var ErrResumeLimit = errors.New("resume limit reached")

// Options 配置 Service。
type Options struct {
	OrphanPolicy   resume.OrphanPolicy
	AutoApplyDelay time.Duration
	MaxResumes     int
	Logger         *slog.Logger
}

// Service 串行化所有文档修改。
type Service struct {
	repo   Repository
	opts   Options
	logger *slog.Logger

	mu sync.Mutex

	sessionsMu sync.Mutex
	sessions   map[string]*PageAssignmentSession
}

const defaultAutoApplyDelay = 500 * time.Millisecond

func NewService(repo Repository, opts Options) *Service {
	if opts.OrphanPolicy == "" {
		opts.OrphanPolicy = resume.OrphanToFirstPage
	}
	if opts.AutoApplyDelay <= 0 {
		opts.AutoApplyDelay = defaultAutoApplyDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		opts:     opts,
		logger:   logger,
		sessions: make(map[string]*PageAssignmentSession),
	}
}

// Dispatch 对指定简历执行命令，校验后持久化并返回新快照。
func (s *Service) Dispatch(ctx context.Context, resumeID string, cmd resume.Command) (resume.Resume, error) {
	return s.dispatch(ctx, resumeID, cmd, true)
}

// dispatch 执行命令；resync 为 true 时同步页面分配会话，会话自身提交时为 false。
func (s *Service) dispatch(ctx context.Context, resumeID string, cmd resume.Command, resync bool) (resume.Resume, error) {
	s.mu.Lock()
	before, next, err := s.dispatchLocked(ctx, resumeID, cmd)
	s.mu.Unlock()

	metrics.ObserveCommand(cmd.Name(), err)
	if err != nil {
		s.logger.Debug("command rejected", "resume_id", resumeID, "command", cmd.Name(), "error", err)
		return resume.Resume{}, err
	}
	if resync {
		s.resyncSession(resumeID, cmd, before, next)
	}
	return next, nil
}

func (s *Service) dispatchLocked(ctx context.Context, resumeID string, cmd resume.Command) (before, next resume.Resume, err error) {
	rec, err := s.repo.Get(ctx, resumeID)
	if err != nil {
		return before, next, err
	}
	if rp, ok := cmd.(resume.RemovePage); ok && rp.Policy == "" {
		rp.Policy = s.opts.OrphanPolicy
		cmd = rp
	}

	next, err = resume.Apply(rec.Resume, cmd)
	if err != nil {
		return before, next, err
	}
	if err := resume.Validate(next); err != nil {
		return before, resume.Resume{}, fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	saved, err := s.repo.Put(ctx, next)
	if err != nil {
		return before, resume.Resume{}, err
	}
	return rec.Resume, saved.Resume, nil
}

// Snapshot 返回简历的当前文档。
func (s *Service) Snapshot(ctx context.Context, resumeID string) (resume.Resume, error) {
	rec, err := s.repo.Get(ctx, resumeID)
	if err != nil {
		return resume.Resume{}, err
	}
	return rec.Resume, nil
}

// Record 返回简历及其打印状态。
func (s *Service) Record(ctx context.Context, resumeID string) (Record, error) {
	return s.repo.Get(ctx, resumeID)
}

func (s *Service) List(ctx context.Context) ([]resume.Metadata, error) {
	return s.repo.List(ctx)
}

// Create 新建一份默认简历并设为当前简历。
func (s *Service) Create(ctx context.Context, title string) (resume.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLimit(ctx); err != nil {
		return resume.Resume{}, err
	}
	doc := resume.NewDefault(uuid.NewString(), title)
	rec, err := s.repo.Put(ctx, doc)
	if err != nil {
		return resume.Resume{}, err
	}
	if err := s.repo.SetCurrentID(ctx, doc.ID); err != nil {
		return resume.Resume{}, err
	}
	s.logger.Info("resume created", "resume_id", doc.ID)
	return rec.Resume, nil
}

// Import 规范化并写入外部文档，已存在时覆盖。
func (s *Service) Import(ctx context.Context, doc resume.Resume) (resume.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc = resume.Normalize(doc)
	if err := resume.Validate(doc); err != nil {
		return resume.Resume{}, err
	}
	if _, err := s.repo.Get(ctx, doc.ID); errors.Is(err, ErrResumeNotFound) {
		if err := s.checkLimit(ctx); err != nil {
			return resume.Resume{}, err
		}
	} else if err != nil {
		return resume.Resume{}, err
	}
	rec, err := s.repo.Put(ctx, doc)
	if err != nil {
		return resume.Resume{}, err
	}
	return rec.Resume, nil
}

func (s *Service) checkLimit(ctx context.Context) error {
	if s.opts.MaxResumes <= 0 {
		return nil
	}
	n, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if n >= int64(s.opts.MaxResumes) {
		return ErrResumeLimit
	}
	return nil
}

// Delete 删除简历；若删除的是当前简历，则回落到最近更新的一份。
func (s *Service) Delete(ctx context.Context, resumeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dropSession(resumeID)
	if err := s.repo.Delete(ctx, resumeID); err != nil {
		return err
	}
	current, err := s.repo.CurrentID(ctx)
	if err != nil {
		return err
	}
	if current != resumeID {
		return nil
	}
	next := ""
	list, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	if len(list) > 0 {
		next = list[0].ID
	}
	return s.repo.SetCurrentID(ctx, next)
}

// Current 返回当前简历；未设置或已失效时回落到最近一份，没有任何简历时创建默认简历。
func (s *Service) Current(ctx context.Context) (resume.Resume, error) {
	id, err := s.repo.CurrentID(ctx)
	if err != nil {
		return resume.Resume{}, err
	}
	if id != "" {
		doc, err := s.Snapshot(ctx, id)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, ErrResumeNotFound) {
			return resume.Resume{}, err
		}
	}

	list, err := s.repo.List(ctx)
	if err != nil {
		return resume.Resume{}, err
	}
	if len(list) == 0 {
		return s.Create(ctx, "")
	}
	if err := s.SetCurrent(ctx, list[0].ID); err != nil {
		return resume.Resume{}, err
	}
	return s.Snapshot(ctx, list[0].ID)
}

// SetCurrent 切换当前简历。
func (s *Service) SetCurrent(ctx context.Context, resumeID string) error {
	if _, err := s.repo.Get(ctx, resumeID); err != nil {
		return err
	}
	return s.repo.SetCurrentID(ctx, resumeID)
}

// Collection 返回全部简历与元数据。
func (s *Service) Collection(ctx context.Context) (resume.Collection, error) {
	current, err := s.repo.CurrentID(ctx)
	if err != nil {
		return resume.Collection{}, err
	}
	list, err := s.repo.List(ctx)
	if err != nil {
		return resume.Collection{}, err
	}
	out := resume.Collection{
		CurrentResumeID: current,
		Resumes:         make(map[string]resume.Resume, len(list)),
		Metadata:        make(map[string]resume.Metadata, len(list)),
	}
	for _, meta := range list {
		doc, err := s.Snapshot(ctx, meta.ID)
		if err != nil {
			return resume.Collection{}, err
		}
		out.Resumes[meta.ID] = doc
		out.Metadata[meta.ID] = meta
	}
	return out, nil
}

// MigrateDates 对所有简历执行 Normalize，返回被改写的数量。
func (s *Service) MigrateDates(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, meta := range list {
		rec, err := s.repo.Get(ctx, meta.ID)
		if err != nil {
			return changed, err
		}
		before, err := json.Marshal(rec.Resume)
		if err != nil {
			return changed, err
		}
		normalized := resume.Normalize(rec.Resume)
		after, err := json.Marshal(normalized)
		if err != nil {
			return changed, err
		}
		if bytes.Equal(before, after) {
			continue
		}
		if _, err := s.repo.Put(ctx, normalized); err != nil {
			return changed, err
		}
		changed++
		s.logger.Info("resume dates migrated", "resume_id", meta.ID)
	}
	return changed, nil
}

// SetPrintState 记录打印任务状态，供 worker 使用。
func (s *Service) SetPrintState(ctx context.Context, resumeID, status, pdfKey string) error {
	return s.repo.SetPrintState(ctx, resumeID, status, pdfKey)
}
