package resume

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumaker/internal/dateutil"
)

func sampleResume() Resume {
	return Resume{
		ID:           "r1",
		Title:        "sample",
		PageSettings: &PageSettings{EnableMultiPage: true, TotalPages: 2},
		Sections: []Section{
			{ID: "A", Type: SectionBasic, Visible: true, Order: 0, Data: &BasicInfo{Name: "Ada"}},
			{ID: "B", Type: SectionList, Visible: true, Order: 1, PageNumber: 1, Data: ListItems{}},
			{ID: "C", Type: SectionTimeline, Visible: true, Order: 2, PageNumber: 2, Data: TimelineItems{}},
		},
	}
}

func sectionIDs(sections []Section) []string {
	ids := make([]string, 0, len(sections))
	for _, s := range sections {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestPaginateMultiPage(t *testing.T) {
	pages := Paginate(sampleResume())
	require.Len(t, pages, 2)

	require.NotNil(t, pages[0].BasicInfo)
	assert.Equal(t, "A", pages[0].BasicInfo.ID)
	assert.Equal(t, []string{"B"}, sectionIDs(pages[0].Sections))

	assert.Nil(t, pages[1].BasicInfo)
	assert.Equal(t, []string{"C"}, sectionIDs(pages[1].Sections))
}

func TestPaginateKeepsEmptyPages(t *testing.T) {
	r := sampleResume()
	r.PageSettings.TotalPages = 3
	pages := Paginate(r)
	require.Len(t, pages, 3)
	assert.Empty(t, pages[2].Sections)
	assert.Nil(t, pages[2].BasicInfo)
}

func TestPaginateSinglePage(t *testing.T) {
	r := sampleResume()
	r.PageSettings.EnableMultiPage = false
	r.Sections = append(r.Sections,
		Section{ID: "D", Type: SectionText, Visible: false, Order: 3, Data: &TextContent{}},
		Section{ID: "E", Type: SectionText, Visible: true, Order: -1, PageNumber: 2, Data: &TextContent{}},
	)
	pages := Paginate(r)
	require.Len(t, pages, 1)
	assert.Equal(t, "A", pages[0].BasicInfo.ID)
	assert.Equal(t, []string{"E", "B", "C"}, sectionIDs(pages[0].Sections))
}

func TestPaginateTotalPagesOneIsSinglePage(t *testing.T) {
	r := sampleResume()
	r.PageSettings.TotalPages = 1
	pages := Paginate(r)
	require.Len(t, pages, 1)
	assert.Equal(t, []string{"B", "C"}, sectionIDs(pages[0].Sections))
}

func TestPaginateKeepsHiddenBasicInfo(t *testing.T) {
	r, err := Apply(sampleResume(), SetSectionVisible{SectionID: "A", Visible: false})
	require.NoError(t, err)

	pages := Paginate(r)
	require.NotNil(t, pages[0].BasicInfo)
	assert.Equal(t, "A", pages[0].BasicInfo.ID)

	r.PageSettings.EnableMultiPage = false
	pages = Paginate(r)
	require.NotNil(t, pages[0].BasicInfo)
}

func TestDragOntoPageContainer(t *testing.T) {
	r := sampleResume()
	next, err := Apply(r, DragEnd{ActiveID: "B", OverID: "page-2"})
	require.NoError(t, err)

	b, _ := next.Section("B")
	assert.Equal(t, 2, b.PageNumber)
	assert.Equal(t, 1, b.Order)

	orig, _ := r.Section("B")
	assert.Equal(t, 1, orig.PageNumber, "source document must not be mutated")
}

func TestDragCancelledIsNoop(t *testing.T) {
	r := sampleResume()
	for _, ev := range []DragEnd{{ActiveID: "B"}, {ActiveID: "B", OverID: "B"}, {ActiveID: "B", OverID: "ghost"}} {
		next, err := Apply(r, ev)
		require.NoError(t, err)
		assert.Equal(t, r.OrderedSections(), next.OrderedSections())
	}
	assert.Nil(t, DragEnd{ActiveID: "B"}.Resolve())
}

func TestDragReorder(t *testing.T) {
	r := sampleResume()
	next, err := Apply(r, DragEnd{ActiveID: "C", OverID: "B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, sectionIDs(next.OrderedSections()))

	c, _ := next.Section("C")
	assert.Equal(t, 2, c.PageNumber, "reorder keeps page numbers")

	next, err = Apply(next, DragEnd{ActiveID: "A", OverID: "B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, sectionIDs(next.OrderedSections()))
}

func TestDragUnknownActive(t *testing.T) {
	_, err := Apply(sampleResume(), DragEnd{ActiveID: "ghost", OverID: "B"})
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestReassignPageOutOfRange(t *testing.T) {
	_, err := Apply(sampleResume(), DragEnd{ActiveID: "B", OverID: "page-3"})
	assert.ErrorIs(t, err, ErrPageOutOfRange)

	_, err = Apply(sampleResume(), ReassignPage{SectionID: "A", PageNumber: 2})
	assert.ErrorIs(t, err, ErrBasicInfoLocked)
}

func TestParsePageTarget(t *testing.T) {
	n, ok := ParsePageTarget("page-12")
	assert.True(t, ok)
	assert.Equal(t, 12, n)
	for _, bad := range []string{"page-", "page-0", "page-x", "pages-1", "B"} {
		_, ok := ParsePageTarget(bad)
		assert.False(t, ok, bad)
	}
	assert.Equal(t, "page-3", PageTargetID(3))
}

func TestRemovePageReassignsToFirst(t *testing.T) {
	r := sampleResume()
	r.PageSettings.TotalPages = 4
	r.Sections = append(r.Sections,
		Section{ID: "D", Type: SectionList, Visible: true, Order: 3, PageNumber: 3, Data: ListItems{}},
		Section{ID: "E", Type: SectionList, Visible: true, Order: 4, PageNumber: 4, Data: ListItems{}},
	)

	next, err := Apply(r, RemovePage{PageNumber: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, next.TotalPages())

	pages := map[string]int{}
	for _, s := range next.Sections {
		pages[s.ID] = s.Page()
	}
	assert.Equal(t, map[string]int{"A": 1, "B": 1, "C": 2, "D": 1, "E": 3}, pages)
	assert.NoError(t, Validate(next))
}

func TestRemovePageMergePrevious(t *testing.T) {
	r := sampleResume()
	r.PageSettings.TotalPages = 3
	r.Sections = append(r.Sections, Section{ID: "D", Type: SectionList, Visible: true, Order: 3, PageNumber: 3, Data: ListItems{}})

	next, err := Apply(r, RemovePage{PageNumber: 3, Policy: OrphanToPreviousPage})
	require.NoError(t, err)
	d, _ := next.Section("D")
	assert.Equal(t, 2, d.PageNumber)
}

func TestRemovePageProperty(t *testing.T) {
	for n := 2; n <= 5; n++ {
		for k := 2; k <= n; k++ {
			r := Resume{ID: "r", PageSettings: &PageSettings{EnableMultiPage: true, TotalPages: n}}
			for p := 1; p <= n; p++ {
				r.Sections = append(r.Sections, Section{ID: PageTargetID(p) + "-s", Type: SectionList, Visible: true, Order: p, PageNumber: p, Data: ListItems{}})
			}
			next, err := Apply(r, RemovePage{PageNumber: k})
			require.NoError(t, err)
			assert.Equal(t, n-1, next.TotalPages())
			for i, s := range next.Sections {
				orig := r.Sections[i].PageNumber
				switch {
				case orig == k:
					assert.Equal(t, 1, s.PageNumber)
				case orig > k:
					assert.Equal(t, orig-1, s.PageNumber)
				default:
					assert.Equal(t, orig, s.PageNumber)
				}
				assert.LessOrEqual(t, s.PageNumber, n-1)
			}
		}
	}
}

func TestRemovePageErrors(t *testing.T) {
	_, err := Apply(sampleResume(), RemovePage{PageNumber: 1})
	assert.ErrorIs(t, err, ErrPageNotRemovable)
	_, err = Apply(sampleResume(), RemovePage{PageNumber: 3})
	assert.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestAddAndRemovePageToggleMultiPage(t *testing.T) {
	r := NewDefault("r", "")
	next, err := Apply(r, AddPage{})
	require.NoError(t, err)
	assert.True(t, next.MultiPage())
	assert.Equal(t, 2, next.TotalPages())

	next, err = Apply(next, RemovePage{PageNumber: 2})
	require.NoError(t, err)
	assert.False(t, next.MultiPage())
	assert.Equal(t, 1, next.TotalPages())
}

func TestAddSectionDefaults(t *testing.T) {
	NewID = func() string { return "new-id" }
	t.Cleanup(func() { NewID = defaultNewID })

	next, err := Apply(sampleResume(), AddSection{})
	require.NoError(t, err)
	s, ok := next.Section("new-id")
	require.True(t, ok)
	assert.Equal(t, SectionList, s.Type)
	assert.Equal(t, 3, s.Order)
	assert.Equal(t, 2, s.PageNumber, "multi-page adds to the last page")
	assert.True(t, s.Visible)
	assert.Equal(t, ListItems{}, s.Data)

	single := sampleResume()
	single.PageSettings.EnableMultiPage = false
	single, err = Apply(single, AddSection{ID: "single"})
	require.NoError(t, err)
	s, _ = single.Section("single")
	assert.Equal(t, 1, s.PageNumber)

	_, err = Apply(next, AddSection{ID: "new-id"})
	assert.ErrorIs(t, err, ErrDuplicateSectionID)
	_, err = Apply(next, AddSection{ID: "b2", Type: SectionBasic})
	assert.ErrorIs(t, err, ErrDuplicateBasicInfo)
	_, err = Apply(next, AddSection{ID: "p5", PageNumber: 5})
	assert.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestBatchIsAtomic(t *testing.T) {
	r := sampleResume()
	_, err := Apply(r, Batch{
		RenameSection{SectionID: "A", Title: "X"},
		SetEditorType{SectionID: "A", EditorType: EditorList},
	})
	require.ErrorIs(t, err, ErrInvalidEditorType)
	assert.Equal(t, "", r.Sections[0].Title)

	next, err := Apply(r, Batch{
		RenameSection{SectionID: "B", Title: "技能"},
		SetSectionVisible{SectionID: "B", Visible: false},
	})
	require.NoError(t, err)
	b, _ := next.Section("B")
	assert.Equal(t, "技能", b.Title)
	assert.False(t, b.Visible)
}

func TestRemoveAndRenameSection(t *testing.T) {
	next, err := Apply(sampleResume(), RemoveSection{SectionID: "B"})
	require.NoError(t, err)
	_, ok := next.Section("B")
	assert.False(t, ok)

	_, err = Apply(sampleResume(), RemoveSection{SectionID: "A"})
	assert.ErrorIs(t, err, ErrBasicInfoLocked)

	_, err = Apply(sampleResume(), RenameSection{SectionID: "B", Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidTitle)

	next, err = Apply(sampleResume(), RenameSection{SectionID: "B", Title: " 技能 "})
	require.NoError(t, err)
	b, _ := next.Section("B")
	assert.Equal(t, "技能", b.Title)
}

func TestSetEditorTypeConvertsContent(t *testing.T) {
	r := sampleResume()
	r.Sections[1].Data = ListItems{{ID: "1", Content: "Go"}, {ID: "2", Content: "SQL"}}

	next, err := Apply(r, SetEditorType{SectionID: "B", EditorType: EditorText})
	require.NoError(t, err)
	b, _ := next.Section("B")
	assert.Equal(t, KindText, b.ContentKind())
	assert.Equal(t, &TextContent{Content: "<p>Go</p><p>SQL</p>"}, b.Data)

	next, err = Apply(next, SetEditorType{SectionID: "B", EditorType: EditorList})
	require.NoError(t, err)
	b, _ = next.Section("B")
	items := b.Data.(ListItems)
	require.Len(t, items, 2)
	assert.Equal(t, "SQL", items[1].Content)

	_, err = Apply(r, SetEditorType{SectionID: "A", EditorType: EditorText})
	assert.ErrorIs(t, err, ErrInvalidEditorType)
}

func TestUpdateSectionContentMigratesDates(t *testing.T) {
	format := dateutil.FormatDotFull
	icon := "book"
	next, err := Apply(sampleResume(), UpdateSectionContent{
		SectionID:  "C",
		Data:       TimelineItems{{ID: "t1", Title: "Uni", StartDate: "2019年09月01日", EndDate: "2023.06"}},
		IconName:   &icon,
		DateFormat: &format,
	})
	require.NoError(t, err)
	c, _ := next.Section("C")
	items := c.Data.(TimelineItems)
	assert.Equal(t, "2019-09-01", items[0].StartDate)
	assert.Equal(t, "2023-06-01", items[0].EndDate)
	assert.Equal(t, "book", c.IconName)
	assert.Equal(t, dateutil.FormatDotFull, c.DateFormat)

	_, err = Apply(sampleResume(), UpdateSectionContent{SectionID: "C", Data: ListItems{}})
	assert.ErrorIs(t, err, ErrInvalidContent)
}

func TestAutoAssignAndReset(t *testing.T) {
	r := NewDefault("r", "")
	next, err := Apply(r, AutoAssignPages{})
	require.NoError(t, err)
	assert.True(t, next.MultiPage())
	assert.Equal(t, []int{2, 2}, PageSectionCounts(next))

	next, err = Apply(next, ResetPageAssignments{})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 0}, PageSectionCounts(next))
}

func TestAssignPagesIsAtomic(t *testing.T) {
	r := sampleResume()
	_, err := Apply(r, AssignPages{Assignments: map[string]int{"B": 2, "C": 9}})
	assert.ErrorIs(t, err, ErrPageOutOfRange)
	b, _ := r.Section("B")
	assert.Equal(t, 1, b.PageNumber)
}

func TestSectionJSONDispatchesOnType(t *testing.T) {
	raw := `{"id":"r","title":"t","template":"classic","layout":"top-bottom","sections":[
		{"id":"a","title":"基本信息","iconName":"user","type":"basic","visible":true,"order":0,"data":{"name":"Ada","email":"a@b.c","phone":"1"}},
		{"id":"b","title":"技能","iconName":"star","type":"custom","editorType":"list","visible":true,"order":1,"data":[{"id":"x","content":"Go"}]},
		{"id":"c","title":"经历","iconName":"briefcase","type":"timeline","visible":true,"order":2,"pageNumber":2,"dateFormat":"dot-month","data":{}},
		{"id":"d","title":"自述","iconName":"star","type":"text","visible":true,"order":3,"data":{"content":"<p>hi</p>"}}
	],"pageSettings":{"enableMultiPage":true,"totalPages":2}}`

	var r Resume
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	require.NoError(t, Validate(r))

	assert.Equal(t, "Ada", r.Sections[0].Data.(*BasicInfo).Name)
	assert.Equal(t, ListItems{{ID: "x", Content: "Go"}}, r.Sections[1].Data)
	assert.Equal(t, TimelineItems{}, r.Sections[2].Data)
	assert.Equal(t, "<p>hi</p>", r.Sections[3].Data.(*TextContent).Content)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	var again Resume
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, r, again)
}

func TestSectionJSONRejectsMismatchedData(t *testing.T) {
	var s Section
	err := json.Unmarshal([]byte(`{"id":"a","type":"list","visible":true,"order":0,"data":{"content":"x"}}`), &s)
	assert.ErrorIs(t, err, ErrInvalidContent)
}

func TestValidate(t *testing.T) {
	r := sampleResume()
	r.Sections = append(r.Sections, Section{ID: "B", Type: SectionList, Order: 1, PageNumber: 3, Data: ListItems{}})
	err := Validate(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateSectionID)
	assert.ErrorIs(t, err, ErrPageOutOfRange)

	bad := sampleResume()
	bad.Sections[1].Type = "poster"
	assert.Error(t, Validate(bad))
}

func TestNormalize(t *testing.T) {
	r := Resume{ID: "r", Sections: []Section{
		{ID: "a", Type: SectionTimeline, Order: 1, Data: TimelineItems{{ID: "1", StartDate: "2020年01月"}}},
		{ID: "b", Type: SectionList, Order: 1, PageNumber: 4},
	}}
	n := Normalize(r)
	require.NoError(t, Validate(n))

	a, _ := n.Section("a")
	assert.Equal(t, "2020-01-01", a.Data.(TimelineItems)[0].StartDate)
	assert.Equal(t, dateutil.DefaultFormat, a.DateFormat)

	b, _ := n.Section("b")
	assert.Equal(t, 1, b.PageNumber)
	assert.Equal(t, ListItems{}, b.Data)
	assert.Equal(t, []string{"a", "b"}, sectionIDs(n.OrderedSections()))
}

func TestResolvedEditorType(t *testing.T) {
	assert.Equal(t, EditorTimeline, Section{Type: SectionCustom}.ResolvedEditorType())
	assert.Equal(t, EditorText, Section{Type: SectionCustom, EditorType: EditorText}.ResolvedEditorType())
	assert.Equal(t, EditorList, Section{Type: SectionList}.ResolvedEditorType())
	assert.Equal(t, KindCustom, Section{Type: SectionCustom}.ContentKind())
}

func TestMoveItem(t *testing.T) {
	assert.Equal(t, []int{2, 3, 1}, MoveItem([]int{1, 2, 3}, 0, 2))
	assert.Equal(t, []int{3, 1, 2}, MoveItem([]int{1, 2, 3}, 2, 0))
	assert.Equal(t, []int{1, 2, 3}, MoveItem([]int{1, 2, 3}, 0, 5))
}
