package hierarchy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() Hierarchy {
	return Hierarchy{
		{ID: "g1", Title: "Intro", Order: 0, Levels: []Level{
			{ID: "l1", Title: "Basics", IconKey: StringPtr("star"), XPReward: 10, Order: 0, Components: []Component{
				{ID: "c1", Type: "text", DisplayName: "Welcome", Content: String("hi"), Order: 0},
				{ID: "c2", Type: "quiz", DisplayName: "Check", Order: 1},
			}},
			{ID: "l2", Title: "More", Order: 1, Components: []Component{}},
		}},
		{ID: "g2", Title: "Advanced", Order: 1, Levels: []Level{}},
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := sampleTree()
	clone := original.Clone()
	require.Equal(t, original, clone)

	clone[0].Title = "Changed"
	clone[0].Levels[0].Components[0].DisplayName = "Changed"
	*clone[0].Levels[0].IconKey = "moon"

	assert.Equal(t, "Intro", original[0].Title)
	assert.Equal(t, "Welcome", original[0].Levels[0].Components[0].DisplayName)
	assert.Equal(t, "star", *original[0].Levels[0].IconKey)
}

func TestClonePreservesNilAndEmptyCollections(t *testing.T) {
	tree := Hierarchy{{ID: "g1", Title: "A"}, {ID: "g2", Title: "B", Levels: []Level{}}}
	clone := tree.Clone()
	assert.Nil(t, clone[0].Levels)
	assert.NotNil(t, clone[1].Levels)
	assert.Nil(t, Hierarchy(nil).Clone())
}

func TestFindHelpers(t *testing.T) {
	tree := sampleTree()

	gi, ok := tree.FindGroup("g2")
	require.True(t, ok)
	assert.Equal(t, 1, gi)

	gi, li, ok := tree.FindLevel("l2")
	require.True(t, ok)
	assert.Equal(t, [2]int{0, 1}, [2]int{gi, li})

	gi, li, ci, ok := tree.FindComponent("c2")
	require.True(t, ok)
	assert.Equal(t, [3]int{0, 0, 1}, [3]int{gi, li, ci})

	_, _, _, ok = tree.FindComponent("missing")
	assert.False(t, ok)

	groups, levels, components := tree.Counts()
	assert.Equal(t, [3]int{2, 2, 2}, [3]int{groups, levels, components})
}

func TestValidateAcceptsWellFormedTree(t *testing.T) {
	assert.NoError(t, Validate(sampleTree()))
	assert.NoError(t, Validate(Hierarchy{}))
}

func TestValidateReportsEveryIssue(t *testing.T) {
	tree := sampleTree()
	tree[1].ID = "g1"
	tree[0].Levels[1].ID = "l1"
	tree[0].Levels[1].Title = ""
	tree[0].Levels[0].XPReward = -5
	tree[0].Levels[0].Components[1].ID = "c1"
	tree[0].Levels[0].Components[1].Type = ""

	err := Validate(tree)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	codes := map[string]string{}
	for _, issue := range verr.Issues {
		codes[issue.Path] = issue.Code
	}
	assert.Equal(t, CodeDuplicateID, codes["[1].id"])
	assert.Equal(t, CodeDuplicateID, codes["[0].levels[1].id"])
	assert.Equal(t, CodeRequired, codes["[0].levels[1].title"])
	assert.Equal(t, CodeOutOfRange, codes["[0].levels[0].xp_reward"])
	assert.Equal(t, CodeDuplicateID, codes["[0].levels[0].components[1].id"])
	assert.Equal(t, CodeRequired, codes["[0].levels[0].components[1].type"])
	assert.Len(t, verr.Issues, 6)
}

func TestLevelIDsAreUniqueAcrossGroups(t *testing.T) {
	tree := sampleTree()
	tree[1].Levels = []Level{{ID: "l2", Title: "Copy"}}

	var verr *ValidationError
	require.ErrorAs(t, Validate(tree), &verr)
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, "[1].levels[0].id", verr.Issues[0].Path)
}

func TestValidateSubtreeAgainstExistingTree(t *testing.T) {
	tree := sampleTree()

	err := ValidateLevel(tree, Level{ID: "l1", Title: "Dup"})
	assert.ErrorIs(t, err, ErrInvalid)

	err = ValidateGroup(tree, LevelGroup{ID: "g3", Title: "New", Levels: []Level{
		{ID: "l3", Title: "ok", Components: []Component{{ID: "c1", Type: "text"}}},
	}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "group.levels[0].components[0].id", verr.Issues[0].Path)

	assert.NoError(t, ValidateComponent(tree, Component{ID: "c9", Type: "text"}))
}

func TestRepairRenumbersAndCoercesCollections(t *testing.T) {
	tree := Hierarchy{
		{ID: "g1", Title: "A", Order: 4},
		{ID: "g2", Title: "B", Order: 4, Levels: []Level{
			{ID: "l1", Title: "x", Order: 7, Components: []Component{{ID: "c1", Type: "t", Order: 3}}},
		}},
	}

	repaired, changed := Repair(tree)
	require.True(t, changed)
	assert.True(t, IsDense(repaired))
	assert.NotNil(t, repaired[0].Levels)
	assert.NotNil(t, repaired[1].Levels[0].Components)
	assert.Equal(t, 4, tree[0].Order, "input must not be modified")

	again, changed := Repair(repaired)
	assert.False(t, changed)
	assert.Equal(t, repaired, again)
}

func TestNotFoundErrorMessage(t *testing.T) {
	err := NewNotFound(KindLevel, "l9")
	assert.EqualError(t, err, `level "l9" not found`)
	assert.ErrorIs(t, err, ErrNotFound)
}
