package editor

import (
	"github.com/Kutay07/ContentLab-sub000/internal/diff"
	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
)

// SetBaseline records snapshot as the last published state. A nil snapshot
// takes the current live tree.
func (e *Editor) SetBaseline(snapshot *hierarchy.Hierarchy) {
	if snapshot == nil {
		// Live trees are never written in place, so sharing is safe.
		e.baseline = e.tree
		if e.baseline == nil {
			e.baseline = hierarchy.Hierarchy{}
		}
		return
	}
	e.baseline = snapshot.Clone()
	if e.baseline == nil {
		e.baseline = hierarchy.Hierarchy{}
	}
}

// MarkSynced declares the live tree published.
func (e *Editor) MarkSynced() {
	e.SetBaseline(nil)
}

// Baseline returns a copy of the baseline, or nil if none was ever set.
func (e *Editor) Baseline() hierarchy.Hierarchy {
	return e.baseline.Clone()
}

// DiffWithBaseline returns the ids added or updated since the baseline. With
// no baseline every live node counts as added.
func (e *Editor) DiffWithBaseline() diff.IDSets {
	return diff.IDs(e.baseline, e.tree)
}

func (e *Editor) DiffWithBaselineDetailed() diff.Detailed {
	return diff.Compute(e.baseline, e.tree)
}

func (e *Editor) HasUnpublishedChanges() bool {
	return !e.DiffWithBaselineDetailed().IsEmpty()
}
