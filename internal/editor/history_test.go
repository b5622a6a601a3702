package editor

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
)

func TestUndoRestoresPreviousTree(t *testing.T) {
	e := newTestEditor(t)
	steps := []func() error{
		func() error { return e.AddLevelGroup(hierarchy.LevelGroup{ID: "g3", Title: "Extra"}) },
		func() error { return e.MoveLevel("l1", 0, "g3") },
		func() error { return e.UpdateComponent("c1", ComponentPatch{Content: Set(hierarchy.Bool(true))}) },
		func() error { return e.DeleteLevelGroup("g2") },
	}

	var snapshots []hierarchy.Hierarchy
	for _, step := range steps {
		snapshots = append(snapshots, e.Hierarchy())
		require.NoError(t, step())
	}

	for i := len(snapshots) - 1; i >= 0; i-- {
		require.True(t, e.Undo())
		assert.Equal(t, snapshots[i], e.Hierarchy(), "undo to step %d", i)
	}
	assert.False(t, e.Undo())
	assert.Equal(t, sampleTree(), e.Hierarchy())
}

func TestRedoReappliesUndoneEdits(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.UpdateLevelGroup("g1", GroupPatch{Title: Set("One")}))
	require.NoError(t, e.UpdateLevelGroup("g1", GroupPatch{Title: Set("Two")}))
	after := e.Hierarchy()

	assert.Equal(t, 2, e.UndoSteps(2))
	assert.Equal(t, 2, e.RedoSteps(5))
	assert.Equal(t, after, e.Hierarchy())

	history := e.History()
	require.Len(t, history, 2)
	assert.JSONEq(t, `{"id":"g1","changes":{"title":"One"}}`, string(history[0].Payload))
	assert.JSONEq(t, `{"id":"g1","changes":{"title":"Two"}}`, string(history[1].Payload))
}

func TestRedoHistoryOrder(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.DeleteComponent("c1"))
	require.NoError(t, e.DeleteComponent("c2"))
	require.NoError(t, e.DeleteComponent("c3"))
	require.Equal(t, 3, e.UndoSteps(3))

	redo := e.RedoHistory()
	require.Len(t, redo, 3)
	assert.JSONEq(t, `{"id":"c1"}`, string(redo[0].Payload))
	assert.JSONEq(t, `{"id":"c3"}`, string(redo[2].Payload))

	require.True(t, e.Redo())
	_, ok := e.ComponentByID("c1")
	assert.False(t, ok)
	_, ok = e.ComponentByID("c2")
	assert.True(t, ok)
}

func TestNewEditClearsRedo(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.DeleteLevel("l2"))
	require.True(t, e.Undo())
	require.True(t, e.CanRedo())

	require.NoError(t, e.UpdateLevel("l2", LevelPatch{XPReward: Set(5)}))
	assert.False(t, e.CanRedo())
	assert.False(t, e.Redo())
	assert.Empty(t, e.RedoHistory())
}

func TestFailedEditKeepsRedo(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.DeleteLevel("l2"))
	require.True(t, e.Undo())

	require.Error(t, e.DeleteLevel("missing"))
	assert.True(t, e.CanRedo())
}

func TestHistoryLimitEvictsOldest(t *testing.T) {
	e := newTestEditor(t, WithHistoryLimit(3))
	var states []hierarchy.Hierarchy
	for i := 0; i < 5; i++ {
		states = append(states, e.Hierarchy())
		require.NoError(t, e.UpdateLevelGroup("g1", GroupPatch{Title: Set(fmt.Sprintf("t%d", i))}))
	}

	assert.Len(t, e.History(), 3)
	assert.Equal(t, 3, e.UndoSteps(10))
	assert.Equal(t, states[2], e.Hierarchy())
	assert.False(t, e.CanUndo())
	assert.Len(t, e.RedoHistory(), 3)
}

func TestUndoStepsNotifiesOnce(t *testing.T) {
	e := newTestEditor(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, e.UpdateLevel("l3", LevelPatch{XPReward: Set(i + 100)}))
	}
	calls := 0
	e.Subscribe(func(hierarchy.Hierarchy) { calls++ })

	assert.Equal(t, 3, e.UndoSteps(5))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, e.UndoSteps(1))
	assert.Equal(t, 1, calls)
}

func TestClearHistory(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.DeleteLevel("l1"))
	require.NoError(t, e.DeleteLevel("l2"))
	require.True(t, e.Undo())

	e.ClearRedoHistory()
	assert.False(t, e.CanRedo())
	assert.True(t, e.CanUndo())

	e.ClearUndoHistory()
	assert.False(t, e.CanUndo())
	assert.Empty(t, e.History())
}

func TestTransactionIsOneUndoStep(t *testing.T) {
	e := newTestEditor(t)
	calls := 0
	e.Subscribe(func(hierarchy.Hierarchy) { calls++ })

	e.BeginTransaction("restructure")
	require.True(t, e.InTransaction())
	require.NoError(t, e.AddLevelGroup(hierarchy.LevelGroup{ID: "g3", Title: "Extra"}))
	require.NoError(t, e.MoveLevel("l3", 0, "g3"))
	require.NoError(t, e.DeleteLevelGroup("g2"))
	assert.Equal(t, 0, calls)
	assert.False(t, e.CanUndo())
	assert.False(t, e.Undo())

	e.EndTransaction()
	assert.False(t, e.InTransaction())
	assert.Equal(t, 1, calls)

	history := e.History()
	require.Len(t, history, 1)
	assert.Equal(t, CmdTransaction, history[0].Type)

	var payload struct {
		Label    string    `json:"label"`
		Commands []Command `json:"commands"`
	}
	require.NoError(t, json.Unmarshal(history[0].Payload, &payload))
	assert.Equal(t, "restructure", payload.Label)
	assert.Len(t, payload.Commands, 3)

	require.True(t, e.Undo())
	assert.Equal(t, sampleTree(), e.Hierarchy())
}

func TestTransactionFailureDoesNotAbortEarlierEdits(t *testing.T) {
	e := newTestEditor(t)
	e.BeginTransaction("partial")
	require.NoError(t, e.DeleteComponent("c1"))
	require.Error(t, e.DeleteComponent("missing"))
	e.EndTransaction()

	_, ok := e.ComponentByID("c1")
	assert.False(t, ok)
	assert.Len(t, e.History(), 1)
}

func TestRollbackTransaction(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.UpdateLevelGroup("g1", GroupPatch{Title: Set("Before")}))
	before := e.Hierarchy()

	e.BeginTransaction("abandoned")
	require.NoError(t, e.DeleteLevelGroup("g1"))
	require.NoError(t, e.DeleteLevelGroup("g2"))
	e.RollbackTransaction()

	assert.Equal(t, before, e.Hierarchy())
	assert.Len(t, e.History(), 1)
	assert.False(t, e.InTransaction())
}

func TestEmptyTransactionRecordsNothing(t *testing.T) {
	e := newTestEditor(t)
	e.BeginTransaction("noop")
	require.NoError(t, e.MoveLevelGroup("g1", 0))
	e.EndTransaction()

	assert.False(t, e.CanUndo())
}

func TestNestedBeginIsIgnored(t *testing.T) {
	e := newTestEditor(t)
	e.BeginTransaction("outer")
	require.NoError(t, e.DeleteComponent("c1"))
	e.BeginTransaction("inner")
	require.NoError(t, e.DeleteComponent("c2"))
	e.EndTransaction()

	assert.False(t, e.InTransaction())
	require.Len(t, e.History(), 1)
	assert.Contains(t, string(e.History()[0].Payload), `"label":"outer"`)
}

func TestCommandsCarryTimestamps(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.DeleteLevel("l2"))
	assert.True(t, e.History()[0].Timestamp.Equal(fixedNow))
	assert.Equal(t, CmdDeleteLevel, e.History()[0].Type)
}
