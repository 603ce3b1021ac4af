package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumaker/internal/database"
	"resumaker/internal/errcode"
	"resumaker/internal/resume"
	"resumaker/internal/storage"
	"resumaker/internal/store"
	"resumaker/internal/tasks"
)

type fakeSource struct {
	docs   map[string]resume.Resume
	states map[string][2]string
}

func (s *fakeSource) Snapshot(_ context.Context, id string) (resume.Resume, error) {
	doc, ok := s.docs[id]
	if !ok {
		return resume.Resume{}, store.ErrResumeNotFound
	}
	return doc, nil
}

func (s *fakeSource) SetPrintState(_ context.Context, id, status, key string) error {
	s.states[id] = [2]string{status, key}
	return nil
}

type fakeObjects struct {
	uploaded   map[string][]byte
	presignErr error
}

func (o *fakeObjects) UploadFile(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	b, _ := io.ReadAll(r)
	o.uploaded[name] = b
	return nil
}

func (o *fakeObjects) GeneratePresignedURL(_ context.Context, key string, _ time.Duration, _ string) (string, error) {
	if o.presignErr != nil {
		return "", o.presignErr
	}
	return "https://cdn.invalid/" + key, nil
}

func (o *fakeObjects) DeletePrefix(context.Context, string) error { return nil }

type fakePublisher struct {
	messages map[string][]string
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	p.messages[channel] = append(p.messages[channel], string(message.([]byte)))
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(1)
	return cmd
}

type fakePrinter struct {
	html string
	err  error
}

func (p *fakePrinter) Render(_ context.Context, html string) ([]byte, error) {
	p.html = html
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-1.7"), nil
}

type fixture struct {
	source    *fakeSource
	objects   *fakeObjects
	publisher *fakePublisher
	printer   *fakePrinter
	handler   *PrintTaskHandler
}

func newFixture() *fixture {
	doc := resume.NewDefault("r1", "")
	doc.Sections[0].Data.(*resume.BasicInfo).Avatar = "avatars/r1/a.png"
	f := &fixture{
		source:    &fakeSource{docs: map[string]resume.Resume{"r1": doc}, states: map[string][2]string{}},
		objects:   &fakeObjects{uploaded: map[string][]byte{}},
		publisher: &fakePublisher{messages: map[string][]string{}},
		printer:   &fakePrinter{},
	}
	f.handler = NewPrintTaskHandler(f.source, f.objects, f.publisher, f.printer, nil)
	return f
}

func printTask(t *testing.T, id string) *asynq.Task {
	t.Helper()
	task, err := tasks.NewPrintResumeTask(tasks.PrintResumePayload{ResumeID: id, CorrelationID: "corr"})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	return task
}

func lastNotify(t *testing.T, p *fakePublisher, id string) PrintNotifyMessage {
	t.Helper()
	msgs := p.messages[tasks.NotifyChannel(id)]
	if len(msgs) == 0 {
		t.Fatalf("no notification published for %s", id)
	}
	var msg PrintNotifyMessage
	if err := json.Unmarshal([]byte(msgs[len(msgs)-1]), &msg); err != nil {
		t.Fatalf("decode notification: %v", err)
	}
	return msg
}

func TestPrintTaskUploadsAndNotifies(t *testing.T) {
	f := newFixture()
	if err := f.handler.ProcessTask(context.Background(), printTask(t, "r1")); err != nil {
		t.Fatalf("process: %v", err)
	}

	key := storage.PDFKey("r1")
	if string(f.objects.uploaded[key]) != "%PDF-1.7" {
		t.Fatalf("pdf not uploaded under %s", key)
	}
	if got := f.source.states["r1"]; got != [2]string{database.StatusCompleted, key} {
		t.Fatalf("print state = %v", got)
	}
	if !strings.Contains(f.printer.html, "https://cdn.invalid/avatars/r1/a.png") {
		t.Fatalf("avatar url not rendered")
	}
	msg := lastNotify(t, f.publisher, "r1")
	if msg.Status != NotifyCompleted || msg.ErrorCode != errcode.OK || msg.CorrelationID != "corr" {
		t.Fatalf("unexpected notification %+v", msg)
	}
}

func TestPrintTaskReportsMissingAvatar(t *testing.T) {
	f := newFixture()
	f.objects.presignErr = errors.New("NoSuchKey")
	if err := f.handler.ProcessTask(context.Background(), printTask(t, "r1")); err != nil {
		t.Fatalf("process: %v", err)
	}
	msg := lastNotify(t, f.publisher, "r1")
	if msg.ErrorCode != errcode.ResourceMissing || len(msg.MissingKeys) != 1 {
		t.Fatalf("expected resource missing warning, got %+v", msg)
	}
}

func TestPrintTaskFailureNotifies(t *testing.T) {
	f := newFixture()
	f.printer.err = errors.New("chromium crashed")
	if err := f.handler.ProcessTask(context.Background(), printTask(t, "r1")); err == nil {
		t.Fatalf("expected error")
	}
	if got := f.source.states["r1"][0]; got != database.StatusFailed {
		t.Fatalf("print state = %q", got)
	}
	msg := lastNotify(t, f.publisher, "r1")
	if msg.Status != NotifyError || msg.ErrorCode != errcode.PrintFailed {
		t.Fatalf("unexpected notification %+v", msg)
	}
}

func TestPrintTaskSkipsMissingResume(t *testing.T) {
	f := newFixture()
	if err := f.handler.ProcessTask(context.Background(), printTask(t, "gone")); err != nil {
		t.Fatalf("missing resume should be skipped, got %v", err)
	}
	if len(f.publisher.messages) != 0 {
		t.Fatalf("no notification expected")
	}
}

func withAttempts(h *PrintTaskHandler, retry, limit int) {
	h.attempts = func(context.Context) (int, int, bool) { return retry, limit, true }
}

func TestPrintTaskSkipRetryFailsOnFirstAttempt(t *testing.T) {
	f := newFixture()
	withAttempts(f.handler, 0, 3)
	f.printer.err = errors.Join(errors.New("page too large"), asynq.SkipRetry)

	err := f.handler.ProcessTask(context.Background(), printTask(t, "r1"))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
	if got := f.source.states["r1"][0]; got != database.StatusFailed {
		t.Fatalf("print state = %q", got)
	}
	msg := lastNotify(t, f.publisher, "r1")
	if msg.Status != NotifyError || msg.ErrorCode != errcode.PrintFailed {
		t.Fatalf("unexpected notification %+v", msg)
	}
}

func TestPrintTaskRetryableFailureWaitsForLastAttempt(t *testing.T) {
	f := newFixture()
	withAttempts(f.handler, 1, 3)
	f.printer.err = errors.New("chromium crashed")

	if err := f.handler.ProcessTask(context.Background(), printTask(t, "r1")); err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := f.source.states["r1"]; ok {
		t.Fatalf("state must not change while retries remain")
	}
	if len(f.publisher.messages) != 0 {
		t.Fatalf("no notification expected before the last attempt")
	}

	withAttempts(f.handler, 3, 3)
	if err := f.handler.ProcessTask(context.Background(), printTask(t, "r1")); err == nil {
		t.Fatalf("expected error")
	}
	if got := f.source.states["r1"][0]; got != database.StatusFailed {
		t.Fatalf("print state = %q", got)
	}
}
