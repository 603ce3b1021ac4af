package store

import (
	"context"
	"maps"
	"sync"

	"resumaker/internal/metrics"
	"resumaker/internal/resume"
)

// PageAssignmentSession 暂存页面分配的修改，静默一段时间后一次性应用。
type PageAssignmentSession struct {
	svc      *Service
	resumeID string
	debounce *Debouncer

	mu      sync.Mutex
	staged  map[string]int
	onApply func(resume.Resume, error)
}

// PageAssignments 返回简历的分配会话，不存在时创建。
func (s *Service) PageAssignments(resumeID string) *PageAssignmentSession {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	if sess, ok := s.sessions[resumeID]; ok {
		return sess
	}
	sess := &PageAssignmentSession{
		svc:      s,
		resumeID: resumeID,
		debounce: NewDebouncer(s.opts.AutoApplyDelay),
		staged:   make(map[string]int),
	}
	s.sessions[resumeID] = sess
	return sess
}

func (s *Service) dropSession(resumeID string) {
	s.sessionsMu.Lock()
	sess, ok := s.sessions[resumeID]
	delete(s.sessions, resumeID)
	s.sessionsMu.Unlock()
	if ok {
		sess.Stop()
	}
}

// OnApply 设置每次自动应用后的回调。
func (p *PageAssignmentSession) OnApply(fn func(resume.Resume, error)) {
	p.mu.Lock()
	p.onApply = fn
	p.mu.Unlock()
}

// Stage 暂存一个模块的目标页并重新计时。
func (p *PageAssignmentSession) Stage(sectionID string, page int) {
	p.mu.Lock()
	p.staged[sectionID] = page
	p.mu.Unlock()
	p.debounce.Trigger(p.apply)
}

// Staged 返回尚未应用的分配。
func (p *PageAssignmentSession) Staged() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return maps.Clone(p.staged)
}

// Pending 报告是否有等待应用的修改。
func (p *PageAssignmentSession) Pending() bool {
	return p.debounce.Pending()
}

// Flush 立即应用暂存的修改。
func (p *PageAssignmentSession) Flush(ctx context.Context) (resume.Resume, error) {
	p.debounce.Stop()
	return p.commit(ctx)
}

// Stop 取消待应用的修改并丢弃暂存内容。
func (p *PageAssignmentSession) Stop() {
	p.debounce.Stop()
	p.mu.Lock()
	clear(p.staged)
	p.mu.Unlock()
}

// apply 由计时器调用。单页模式下不自动应用，暂存内容留待 Flush。
func (p *PageAssignmentSession) apply() {
	ctx := context.Background()
	if cur, err := p.svc.Snapshot(ctx, p.resumeID); err == nil && !cur.MultiPage() {
		p.svc.logger.Debug("page assignments kept staged in single page mode", "resume_id", p.resumeID)
		return
	}
	doc, err := p.commit(ctx)
	metrics.ObservePageAssignmentFlush()
	if err != nil {
		p.svc.logger.Warn("page assignment auto apply failed", "resume_id", p.resumeID, "error", err)
	}
	p.mu.Lock()
	fn := p.onApply
	p.mu.Unlock()
	if fn != nil {
		fn(doc, err)
	}
}

func (p *PageAssignmentSession) commit(ctx context.Context) (resume.Resume, error) {
	p.mu.Lock()
	staged := p.staged
	p.staged = make(map[string]int)
	p.mu.Unlock()

	if len(staged) == 0 {
		return p.svc.Snapshot(ctx, p.resumeID)
	}
	return p.svc.dispatch(ctx, p.resumeID, resume.AssignPages{Assignments: staged}, false)
}

// forget 丢弃指定模块的暂存分配；全部丢弃后取消计时。
func (p *PageAssignmentSession) forget(sectionIDs []string) {
	if len(sectionIDs) == 0 {
		return
	}
	p.mu.Lock()
	for _, id := range sectionIDs {
		delete(p.staged, id)
	}
	empty := len(p.staged) == 0
	p.mu.Unlock()
	if empty {
		p.debounce.Stop()
	}
}

// pageTargets 返回命令显式指定了页号的模块，即使页号没有变化。
func pageTargets(cmd resume.Command) []string {
	switch c := cmd.(type) {
	case resume.ReassignPage:
		return []string{c.SectionID}
	case resume.DragEnd:
		return pageTargets(c.Resolve())
	case resume.AssignPages:
		ids := make([]string, 0, len(c.Assignments))
		for id := range c.Assignments {
			ids = append(ids, id)
		}
		return ids
	case resume.Batch:
		var ids []string
		for _, sub := range c {
			ids = append(ids, pageTargets(sub)...)
		}
		return ids
	}
	return nil
}

// resyncSession 在其他命令指定或改动模块页号后丢弃这些模块过期的暂存分配；
// 文档退出多页模式时整个会话作废。
func (s *Service) resyncSession(resumeID string, cmd resume.Command, before, after resume.Resume) {
	s.sessionsMu.Lock()
	sess := s.sessions[resumeID]
	s.sessionsMu.Unlock()
	if sess == nil {
		return
	}
	if !after.MultiPage() {
		sess.Stop()
		return
	}
	moved := pageTargets(cmd)
	for _, old := range before.Sections {
		cur, ok := after.Section(old.ID)
		if !ok || cur.Page() != old.Page() {
			moved = append(moved, old.ID)
		}
	}
	sess.forget(moved)
}
