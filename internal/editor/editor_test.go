package editor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleTree() hierarchy.Hierarchy {
	return hierarchy.Hierarchy{
		{ID: "g1", Title: "Intro", Order: 0, Levels: []hierarchy.Level{
			{ID: "l1", Title: "Basics", IconKey: hierarchy.StringPtr("star"), XPReward: 10, Order: 0, Components: []hierarchy.Component{
				{ID: "c1", Type: "text", DisplayName: "Welcome", Content: hierarchy.String("hi"), Order: 0},
				{ID: "c2", Type: "quiz", DisplayName: "Check", Content: hierarchy.Int(3), Order: 1},
			}},
			{ID: "l2", Title: "More", Order: 1, Components: []hierarchy.Component{}},
		}},
		{ID: "g2", Title: "Advanced", Order: 1, Levels: []hierarchy.Level{
			{ID: "l3", Title: "Deep", XPReward: 50, Order: 0, Components: []hierarchy.Component{
				{ID: "c3", Type: "video", DisplayName: "Clip", Order: 0},
			}},
		}},
	}
}

func newTestEditor(t *testing.T, opts ...Option) *Editor {
	t.Helper()
	base := []Option{WithHierarchy(sampleTree()), WithClock(func() time.Time { return fixedNow })}
	return New(append(base, opts...)...)
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}

func groupIDs(h hierarchy.Hierarchy) []string {
	return ids(h, func(g hierarchy.LevelGroup) string { return g.ID })
}

func levelIDs(levels []hierarchy.Level) []string {
	return ids(levels, func(l hierarchy.Level) string { return l.ID })
}

func componentIDs(components []hierarchy.Component) []string {
	return ids(components, func(c hierarchy.Component) string { return c.ID })
}

func TestNewEditorStartsEmpty(t *testing.T) {
	e := New()
	assert.Equal(t, hierarchy.Hierarchy{}, e.Hierarchy())
	assert.False(t, e.CanUndo())
	assert.False(t, e.CanRedo())
	assert.True(t, e.ValidateHierarchy())
}

func TestAddLevelGroupAppendsByDefault(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.AddLevelGroup(hierarchy.LevelGroup{ID: "g3", Title: "Extra", Order: 99}))

	h := e.Hierarchy()
	assert.Equal(t, []string{"g1", "g2", "g3"}, groupIDs(h))
	assert.Equal(t, 2, h[2].Order)
	assert.True(t, hierarchy.IsDense(h))
	assert.True(t, e.CanUndo())
}

func TestAddLevelGroupAtOrder(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.AddLevelGroup(hierarchy.LevelGroup{ID: "g0", Title: "First"}, AtOrder(0)))

	h := e.Hierarchy()
	assert.Equal(t, []string{"g0", "g1", "g2"}, groupIDs(h))
	assert.True(t, hierarchy.IsDense(h))
}

func TestAddRenumbersIncomingSubtree(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.AddLevel("g2", hierarchy.Level{ID: "l9", Title: "New", Order: 7, Components: []hierarchy.Component{
		{ID: "c9", Type: "text", Order: 5},
		{ID: "c10", Type: "text", Order: 9},
	}}))

	l, ok := e.LevelByID("l9")
	require.True(t, ok)
	assert.Equal(t, 1, l.Order)
	assert.Equal(t, 0, l.Components[0].Order)
	assert.Equal(t, 1, l.Components[1].Order)
}

func TestAddRejectsDuplicateIDs(t *testing.T) {
	e := newTestEditor(t)
	before := e.Hierarchy()

	err := e.AddLevel("g2", hierarchy.Level{ID: "l1", Title: "Clash"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, hierarchy.ErrInvalid))

	err = e.AddComponent("l2", hierarchy.Component{ID: "c3", Type: "text"})
	assert.True(t, errors.Is(err, hierarchy.ErrInvalid))

	assert.Equal(t, before, e.Hierarchy())
	assert.False(t, e.CanUndo())
}

func TestUpdateAppliesOnlySetFields(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.UpdateLevel("l1", LevelPatch{
		Title:      Set("Fundamentals"),
		IconFamily: Set(hierarchy.StringPtr("material")),
	}))

	l, ok := e.LevelByID("l1")
	require.True(t, ok)
	assert.Equal(t, "Fundamentals", l.Title)
	assert.Equal(t, "star", *l.IconKey)
	assert.Equal(t, "material", *l.IconFamily)
	assert.Equal(t, 10, l.XPReward)
}

func TestUpdateCanClearNullableField(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.UpdateLevel("l1", LevelPatch{IconKey: Set[*string](nil)}))

	l, _ := e.LevelByID("l1")
	assert.Nil(t, l.IconKey)
}

func TestUpdateWithOrderRepositions(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.UpdateComponent("c1", ComponentPatch{Order: Set(1), DisplayName: Set("Hello")}))

	l, _ := e.LevelByID("l1")
	assert.Equal(t, []string{"c2", "c1"}, componentIDs(l.Components))
	assert.Equal(t, "Hello", l.Components[1].DisplayName)
	assert.Len(t, e.History(), 1)
}

func TestNoOpUpdatesRecordNothing(t *testing.T) {
	e := newTestEditor(t)
	calls := 0
	e.Subscribe(func(hierarchy.Hierarchy) { calls++ })

	require.NoError(t, e.UpdateLevelGroup("g1", GroupPatch{}))
	require.NoError(t, e.UpdateLevelGroup("g1", GroupPatch{Title: Set("Intro")}))
	require.NoError(t, e.UpdateComponent("c1", ComponentPatch{Content: Set(hierarchy.String("hi"))}))
	require.NoError(t, e.MoveLevelGroup("g2", 1))
	require.NoError(t, e.MoveLevelGroup("g2", 40))

	assert.False(t, e.CanUndo())
	assert.Equal(t, 0, calls)
}

func TestUpdateRejectsInvalidValues(t *testing.T) {
	e := newTestEditor(t)
	err := e.UpdateLevelGroup("g1", GroupPatch{Title: Set("")})
	assert.True(t, errors.Is(err, hierarchy.ErrInvalid))

	err = e.UpdateLevel("l1", LevelPatch{XPReward: Set(-1)})
	var verr *hierarchy.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, hierarchy.CodeOutOfRange, verr.Issues[0].Code)
	assert.Equal(t, sampleTree(), e.Hierarchy())
}

func TestMoveLevelAcrossGroups(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.MoveLevel("l1", 0, "g2"))

	h := e.Hierarchy()
	assert.Equal(t, []string{"l2"}, levelIDs(h[0].Levels))
	assert.Equal(t, []string{"l1", "l3"}, levelIDs(h[1].Levels))
	assert.True(t, hierarchy.IsDense(h))
	assert.Len(t, h[1].Levels[0].Components, 2)
}

func TestMoveClampsOutOfRangePositions(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.MoveComponent("c3", 100, "l1"))
	l, _ := e.LevelByID("l1")
	assert.Equal(t, []string{"c1", "c2", "c3"}, componentIDs(l.Components))

	require.NoError(t, e.MoveLevelGroup("g2", -5))
	assert.Equal(t, []string{"g2", "g1"}, groupIDs(e.Hierarchy()))
	assert.True(t, hierarchy.IsDense(e.Hierarchy()))
}

func TestMoveComponentIntoEmptyLevel(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.MoveComponent("c2", 0, "l2"))

	l1, _ := e.LevelByID("l1")
	l2, _ := e.LevelByID("l2")
	assert.Equal(t, []string{"c1"}, componentIDs(l1.Components))
	assert.Equal(t, []string{"c2"}, componentIDs(l2.Components))
}

func TestDeleteLevelGroupCascades(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.DeleteLevelGroup("g1"))

	h := e.Hierarchy()
	assert.Equal(t, []string{"g2"}, groupIDs(h))
	assert.Equal(t, 0, h[0].Order)
	_, ok := e.LevelByID("l1")
	assert.False(t, ok)
	_, ok = e.ComponentByID("c1")
	assert.False(t, ok)
}

func TestDeleteRenumbersSiblings(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.DeleteComponent("c1"))

	c2, ok := e.ComponentByID("c2")
	require.True(t, ok)
	assert.Equal(t, 0, c2.Order)
}

func TestMissingIDsReturnNotFound(t *testing.T) {
	cases := map[string]func(e *Editor) error{
		"update group":        func(e *Editor) error { return e.UpdateLevelGroup("nope", GroupPatch{Title: Set("x")}) },
		"move group":          func(e *Editor) error { return e.MoveLevelGroup("nope", 0) },
		"delete group":        func(e *Editor) error { return e.DeleteLevelGroup("nope") },
		"add level":           func(e *Editor) error { return e.AddLevel("nope", hierarchy.Level{ID: "lx", Title: "x"}) },
		"update level":        func(e *Editor) error { return e.UpdateLevel("nope", LevelPatch{Title: Set("x")}) },
		"move level":          func(e *Editor) error { return e.MoveLevel("nope", 0, "") },
		"move level target":   func(e *Editor) error { return e.MoveLevel("l1", 0, "nope") },
		"delete level":        func(e *Editor) error { return e.DeleteLevel("nope") },
		"add component":       func(e *Editor) error { return e.AddComponent("nope", hierarchy.Component{ID: "cx", Type: "t"}) },
		"update component":    func(e *Editor) error { return e.UpdateComponent("nope", ComponentPatch{Type: Set("x")}) },
		"move component":      func(e *Editor) error { return e.MoveComponent("nope", 0, "") },
		"move component dest": func(e *Editor) error { return e.MoveComponent("c1", 0, "nope") },
		"delete component":    func(e *Editor) error { return e.DeleteComponent("nope") },
	}
	for name, op := range cases {
		t.Run(name, func(t *testing.T) {
			e := newTestEditor(t)
			notified := false
			e.Subscribe(func(hierarchy.Hierarchy) { notified = true })

			err := op(e)
			require.Error(t, err)
			assert.True(t, errors.Is(err, hierarchy.ErrNotFound))
			assert.Equal(t, sampleTree(), e.Hierarchy())
			assert.False(t, e.CanUndo())
			assert.False(t, notified)
		})
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	e := newTestEditor(t)

	h := e.Hierarchy()
	h[0].Title = "Mutated"
	h[0].Levels[0].Components[0].Type = "mutated"

	g, _ := e.LevelGroupByID("g1")
	g.Levels[0].Title = "Mutated"

	l, _ := e.LevelByID("l1")
	*l.IconKey = "mutated"

	assert.Equal(t, sampleTree(), e.Hierarchy())
}

func TestListenersGetCopiesInOrder(t *testing.T) {
	e := newTestEditor(t)
	var order []string
	e.Subscribe(func(h hierarchy.Hierarchy) {
		order = append(order, "first")
		h[0].Title = "scribbled"
	})
	unsubscribe := e.Subscribe(func(h hierarchy.Hierarchy) {
		order = append(order, "second")
		assert.Equal(t, "Renamed", h[0].Title)
	})

	require.NoError(t, e.UpdateLevelGroup("g1", GroupPatch{Title: Set("Renamed")}))
	assert.Equal(t, []string{"first", "second"}, order)

	g, _ := e.LevelGroupByID("g1")
	assert.Equal(t, "Renamed", g.Title)

	unsubscribe()
	require.NoError(t, e.DeleteLevelGroup("g2"))
	assert.Equal(t, []string{"first", "second", "first"}, order)
	assert.Equal(t, 1, e.Stats().Listeners)
}

func TestStats(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.DeleteComponent("c3"))

	stats := e.Stats()
	assert.Equal(t, 2, stats.Groups)
	assert.Equal(t, 3, stats.Levels)
	assert.Equal(t, 2, stats.Components)
	assert.Equal(t, 1, stats.UndoDepth)
	assert.Equal(t, 1, stats.Commands)
	assert.Equal(t, 0, stats.RedoDepth)
}

func TestValidateHierarchyDetailed(t *testing.T) {
	broken := sampleTree()
	broken[1].Levels[0].ID = "l1"
	broken[0].Title = ""
	e := New(WithHierarchy(broken))

	assert.False(t, e.ValidateHierarchy())
	var verr *hierarchy.ValidationError
	require.ErrorAs(t, e.ValidateHierarchyDetailed(), &verr)
	assert.Len(t, verr.Issues, 2)
}

func TestRepairHierarchy(t *testing.T) {
	messy := hierarchy.Hierarchy{
		{ID: "g1", Title: "A", Order: 4, Levels: []hierarchy.Level{
			{ID: "l1", Title: "x", Order: 3},
		}},
		{ID: "g2", Title: "B", Order: 4},
	}
	e := New(WithHierarchy(messy))

	require.NoError(t, e.RepairHierarchy())
	h := e.Hierarchy()
	assert.True(t, hierarchy.IsDense(h))
	assert.NotNil(t, h[1].Levels)
	assert.NotNil(t, h[0].Levels[0].Components)
	assert.Len(t, e.History(), 1)
	assert.Equal(t, CmdRepair, e.History()[0].Type)

	require.NoError(t, e.RepairHierarchy())
	assert.Len(t, e.History(), 1)

	require.True(t, e.Undo())
	assert.Equal(t, messy, e.Hierarchy())
}
