package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumaker/internal/dateutil"
	"resumaker/internal/resume"
)

func sectionOf(t *testing.T, doc resume.Resume, id string) resume.Section {
	t.Helper()
	s, ok := doc.Section(id)
	require.True(t, ok, "section %s missing", id)
	return s
}

func TestSectionCRUD(t *testing.T) {
	env := newTestEnv(t, testConfig())
	doc := env.create(t)
	base := "/v1/resumes/" + doc.ID

	w := env.do(t, http.MethodPost, base+"/sections", map[string]any{"id": "projects", "title": "项目", "type": "timeline"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	projects := sectionOf(t, decodeResume(t, w), "projects")
	assert.Equal(t, dateutil.FormatZhMonth, projects.DateFormat)
	assert.Equal(t, 1, projects.PageNumber)

	w = env.do(t, http.MethodPost, base+"/sections", map[string]any{"id": "projects"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPatch, base+"/sections/projects", map[string]any{"title": "项目经历", "visible": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	projects = sectionOf(t, decodeResume(t, w), "projects")
	assert.Equal(t, "项目经历", projects.Title)
	assert.False(t, projects.Visible)

	w = env.do(t, http.MethodPatch, base+"/sections/projects", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPatch, base+"/sections/projects", map[string]any{"title": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPatch, base+"/sections/skills", map[string]any{"editorType": "text"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	skills := sectionOf(t, decodeResume(t, w), "skills")
	assert.Equal(t, resume.KindText, skills.ContentKind())
	assert.Contains(t, skills.Data.(*resume.TextContent).Content, "熟悉 Go 及其生态")

	w = env.do(t, http.MethodDelete, base+"/sections/basic", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, base+"/sections/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, ok := decodeResume(t, w).Section("projects")
	assert.False(t, ok)

	w = env.do(t, http.MethodDelete, base+"/sections/projects", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDragSection(t *testing.T) {
	env := newTestEnv(t, testConfig())
	doc := env.create(t)
	base := "/v1/resumes/" + doc.ID

	w := env.do(t, http.MethodPost, base+"/drag", map[string]string{"activeId": "summary", "overId": "education"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decodeResume(t, w)
	assert.Equal(t, 1, sectionOf(t, got, "summary").Order)
	assert.Equal(t, 2, sectionOf(t, got, "education").Order)

	// 取消的拖拽不做任何修改
	w = env.do(t, http.MethodPost, base+"/drag", map[string]string{"activeId": "work"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, got, decodeResume(t, w))

	w = env.do(t, http.MethodPost, base+"/drag", map[string]string{"activeId": "work", "overId": "page-2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, base+"/pages", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, base+"/drag", map[string]string{"activeId": "work", "overId": "page-2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	moved := decodeResume(t, w)
	work := sectionOf(t, moved, "work")
	assert.Equal(t, 2, work.PageNumber)
	assert.Equal(t, sectionOf(t, got, "work").Order, work.Order)

	w = env.do(t, http.MethodPost, base+"/drag", map[string]string{"activeId": "basic", "overId": "page-2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, base+"/drag", map[string]string{"overId": "page-2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPutContent(t *testing.T) {
	env := newTestEnv(t, testConfig())
	doc := env.create(t)
	base := "/v1/resumes/" + doc.ID + "/sections"

	w := env.do(t, http.MethodPut, base+"/skills/content", map[string]any{
		"data": []map[string]string{{"id": "a", "content": "Go"}, {"id": "b", "content": "SQL"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	items := sectionOf(t, decodeResume(t, w), "skills").Data.(resume.ListItems)
	require.Len(t, items, 2)
	assert.Equal(t, "SQL", items[1].Content)

	w = env.do(t, http.MethodPut, base+"/skills/content", map[string]any{"data": map[string]string{"content": "x"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, base+"/work/content", map[string]any{
		"data": []map[string]string{{"id": "w1", "title": "公司", "startDate": "2021.05"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	timeline := sectionOf(t, decodeResume(t, w), "work").Data.(resume.TimelineItems)
	assert.Equal(t, "2021-05-01", timeline[0].StartDate)

	w = env.do(t, http.MethodPut, base+"/missing/content", map[string]any{"data": nil})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDateFormatBasicInfoAndText(t *testing.T) {
	env := newTestEnv(t, testConfig())
	doc := env.create(t)
	base := "/v1/resumes/" + doc.ID + "/sections"

	w := env.do(t, http.MethodPut, base+"/education/date-format", map[string]string{"dateFormat": "dot-full"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	edu := sectionOf(t, decodeResume(t, w), "education")
	assert.Equal(t, dateutil.FormatDotFull, edu.DateFormat)
	assert.Equal(t, "2018-09-01", edu.Data.(resume.TimelineItems)[0].StartDate)

	w = env.do(t, http.MethodPut, base+"/education/date-format", map[string]string{"dateFormat": "iso"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodPut, base+"/skills/date-format", map[string]string{"dateFormat": "dot-full"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPatch, base+"/basic/basic-info", map[string]any{
		"fields": map[string]string{"name": "李四", "location": "上海"},
		"layout": "center",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	info := sectionOf(t, decodeResume(t, w), "basic").Data.(*resume.BasicInfo)
	assert.Equal(t, "李四", info.Name)
	assert.Equal(t, "上海", info.Location)
	assert.Equal(t, resume.BasicLayoutCenter, info.Layout)

	w = env.do(t, http.MethodPatch, base+"/basic/basic-info", map[string]any{"fields": map[string]string{"avatar": "avatars/other/a.png"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodPatch, base+"/basic/basic-info", map[string]any{"fields": map[string]string{"nickname": "x"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, base+"/summary/text", map[string]any{"content": "<p>你好</p>", "iconName": "smile"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := sectionOf(t, decodeResume(t, w), "summary")
	assert.Equal(t, "<p>你好</p>", summary.Data.(*resume.TextContent).Content)
	assert.Equal(t, "smile", summary.IconName)

	w = env.do(t, http.MethodPut, base+"/skills/text", map[string]any{"content": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestItemOperations(t *testing.T) {
	env := newTestEnv(t, testConfig())
	doc := env.create(t)
	base := "/v1/resumes/" + doc.ID + "/sections"

	w := env.do(t, http.MethodPost, base+"/education/items", map[string]any{
		"fields": map[string]string{"title": "研究生院"},
		"dates":  map[string]any{"startDate": map[string]string{"year": "2022", "month": "9"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	newID := w.Header().Get("X-Item-ID")
	require.NotEmpty(t, newID)
	items := sectionOf(t, decodeResume(t, w), "education").Data.(resume.TimelineItems)
	require.Len(t, items, 2)
	assert.Equal(t, "研究生院", items[1].Title)
	assert.Equal(t, "2022-09", items[1].StartDate)

	w = env.do(t, http.MethodPatch, base+"/education/items/"+newID, map[string]any{"fields": map[string]string{"subtitle": "硕士"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "硕士", sectionOf(t, decodeResume(t, w), "education").Data.(resume.TimelineItems)[1].Subtitle)

	w = env.do(t, http.MethodPatch, base+"/education/items/"+newID, map[string]any{"fields": map[string]string{"salary": "1"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodPatch, base+"/education/items/"+newID, map[string]any{
		"dates": map[string]any{"endDate": map[string]string{"year": "2024", "month": "13"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, base+"/education/items/drag", map[string]string{"activeId": newID, "overId": "education-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	items = sectionOf(t, decodeResume(t, w), "education").Data.(resume.TimelineItems)
	assert.Equal(t, newID, items[0].ID)

	w = env.do(t, http.MethodDelete, base+"/education/items/education-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, sectionOf(t, decodeResume(t, w), "education").Data.(resume.TimelineItems), 1)

	w = env.do(t, http.MethodDelete, base+"/education/items/education-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, base+"/skills/items", map[string]string{"content": "Docker"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	skills := sectionOf(t, decodeResume(t, w), "skills").Data.(resume.ListItems)
	require.Len(t, skills, 2)
	assert.Equal(t, "Docker", skills[1].Content)

	w = env.do(t, http.MethodPost, base+"/basic/items", map[string]string{"label": "GitHub", "value": "octocat", "iconName": "github"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	fieldID := w.Header().Get("X-Item-ID")
	info := sectionOf(t, decodeResume(t, w), "basic").Data.(*resume.BasicInfo)
	require.Len(t, info.CustomFields, 1)
	assert.Equal(t, "GitHub", info.CustomFields[0].Label)

	w = env.do(t, http.MethodPatch, base+"/basic/items/"+fieldID, map[string]string{"value": "gopher"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	info = sectionOf(t, decodeResume(t, w), "basic").Data.(*resume.BasicInfo)
	assert.Equal(t, "gopher", info.CustomFields[0].Value)
	assert.Equal(t, "GitHub", info.CustomFields[0].Label)

	w = env.do(t, http.MethodPost, base+"/summary/items", map[string]string{"content": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatchSectionIsAllOrNothing(t *testing.T) {
	env := newTestEnv(t, testConfig())
	doc := env.create(t)
	base := "/v1/resumes/" + doc.ID

	// 标题合法但编辑器类型对基本信息非法，整个请求都不生效
	w := env.do(t, http.MethodPatch, base+"/sections/basic", map[string]any{"title": "X", "editorType": "list"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "基本信息", sectionOf(t, decodeResume(t, w), "basic").Title)
}

func TestAddItemFailureLeavesNoTrace(t *testing.T) {
	env := newTestEnv(t, testConfig())
	doc := env.create(t)
	base := "/v1/resumes/" + doc.ID

	w := env.do(t, http.MethodPost, base+"/sections/education/items", map[string]any{
		"dates": map[string]any{"startDate": map[string]string{"year": "2022", "month": "13"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Empty(t, w.Header().Get("X-Item-ID"))

	w = env.do(t, http.MethodPost, base+"/sections/summary/items", map[string]string{"content": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Header().Get("X-Item-ID"))

	w = env.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, sectionOf(t, decodeResume(t, w), "education").Data.(resume.TimelineItems), 1)
}
