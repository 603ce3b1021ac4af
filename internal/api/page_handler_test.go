package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumaker/internal/resume"
)

func TestPageLifecycle(t *testing.T) {
	env := newTestEnv(t, testConfig())
	doc := env.create(t)
	base := "/v1/resumes/" + doc.ID

	w := env.do(t, http.MethodPost, base+"/pages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeResume(t, w)
	assert.Equal(t, 2, got.TotalPages())
	assert.True(t, got.MultiPage())

	w = env.do(t, http.MethodPost, base+"/drag", map[string]string{"activeId": "skills", "overId": "page-2"})
	require.Equal(t, http.StatusOK, w.Code)

	for path, status := range map[string]int{
		"/pages/1":                   http.StatusBadRequest,
		"/pages/3":                   http.StatusBadRequest,
		"/pages/abc":                 http.StatusBadRequest,
		"/pages/2?policy=throw-away": http.StatusBadRequest,
	} {
		w = env.do(t, http.MethodDelete, base+path, nil)
		assert.Equal(t, status, w.Code, path)
	}

	w = env.do(t, http.MethodDelete, base+"/pages/2?policy=merge-previous", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got = decodeResume(t, w)
	assert.Equal(t, 1, got.TotalPages())
	assert.False(t, got.MultiPage())
	assert.Equal(t, 1, sectionOf(t, got, "skills").PageNumber)

	w = env.do(t, http.MethodPut, base+"/pages/multi", map[string]bool{"enabled": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResume(t, w).MultiPage())
}

func TestPageAssignments(t *testing.T) {
	env := newTestEnv(t, testConfig())
	doc := env.create(t)
	base := "/v1/resumes/" + doc.ID
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, base+"/pages", nil).Code)

	w := env.do(t, http.MethodPost, base+"/page-assignments", map[string]any{"sectionId": "work", "pageNumber": 2})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, base+"/page-assignments", map[string]any{"sectionId": "work", "pageNumber": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodPost, base+"/page-assignments", map[string]any{"sectionId": "basic", "pageNumber": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodPost, base+"/page-assignments", map[string]any{"sectionId": "nope", "pageNumber": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, base+"/page-assignments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state struct {
		TotalPages    int            `json:"totalPages"`
		SectionCounts []int          `json:"sectionCounts"`
		Staged        map[string]int `json:"staged"`
		Pending       bool           `json:"pending"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, map[string]int{"work": 2}, state.Staged)
	assert.True(t, state.Pending)
	assert.Equal(t, []int{4, 0}, state.SectionCounts)

	// 暂存内容在应用前不影响文档
	current, err := env.store.Snapshot(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sectionOf(t, current, "work").PageNumber)

	w = env.do(t, http.MethodPost, base+"/page-assignments/apply", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, sectionOf(t, decodeResume(t, w), "work").PageNumber)
	assert.False(t, env.store.PageAssignments(doc.ID).Pending())

	w = env.do(t, http.MethodPost, base+"/page-assignments/auto", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeResume(t, w)
	assert.Equal(t, []int{2, 2}, resume.PageSectionCounts(got))

	env.do(t, http.MethodPost, base+"/page-assignments", map[string]any{"sectionId": "summary", "pageNumber": 1})
	w = env.do(t, http.MethodPost, base+"/page-assignments/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got = decodeResume(t, w)
	assert.Equal(t, []int{4, 0}, resume.PageSectionCounts(got))
	assert.Empty(t, env.store.PageAssignments(doc.ID).Staged())
}

type fakePublisher struct {
	channels []string
	payloads []string
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	p.channels = append(p.channels, channel)
	if b, ok := message.([]byte); ok {
		p.payloads = append(p.payloads, string(b))
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(1)
	return cmd
}

func TestAnnounceAppliedAssignments(t *testing.T) {
	pub := &fakePublisher{}
	h := NewPageHandler(nil, pub, nil)

	h.announce("r1")(resume.NewDefault("r1", ""), nil)
	require.Len(t, pub.channels, 1)
	assert.Equal(t, "resume_notify:r1", pub.channels[0])
	assert.Contains(t, pub.payloads[0], `"status":"page_assignments_applied"`)
	assert.Contains(t, pub.payloads[0], `"total_pages":1`)

	h.announce("r1")(resume.Resume{}, resume.ErrPageOutOfRange)
	assert.Contains(t, pub.payloads[1], `"status":"page_assignments_failed"`)

	NewPageHandler(nil, nil, nil).announce("r1")(resume.Resume{}, nil)
}
