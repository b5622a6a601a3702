package editor

import "github.com/Kutay07/ContentLab-sub000/internal/hierarchy"

// Hierarchy returns a deep copy of the live tree.
func (e *Editor) Hierarchy() hierarchy.Hierarchy {
	return e.tree.Clone()
}

func (e *Editor) LevelGroupByID(id string) (hierarchy.LevelGroup, bool) {
	gi, ok := e.tree.FindGroup(id)
	if !ok {
		return hierarchy.LevelGroup{}, false
	}
	return e.tree[gi].Clone(), true
}

func (e *Editor) LevelByID(id string) (hierarchy.Level, bool) {
	gi, li, ok := e.tree.FindLevel(id)
	if !ok {
		return hierarchy.Level{}, false
	}
	return e.tree[gi].Levels[li].Clone(), true
}

func (e *Editor) ComponentByID(id string) (hierarchy.Component, bool) {
	gi, li, ci, ok := e.tree.FindComponent(id)
	if !ok {
		return hierarchy.Component{}, false
	}
	return e.tree[gi].Levels[li].Components[ci], true
}

// Stats summarizes the tree and the history state.
type Stats struct {
	Groups        int  `json:"groups"`
	Levels        int  `json:"levels"`
	Components    int  `json:"components"`
	UndoDepth     int  `json:"undo_depth"`
	RedoDepth     int  `json:"redo_depth"`
	Commands      int  `json:"commands"`
	Listeners     int  `json:"listeners"`
	InTransaction bool `json:"in_transaction"`
}

func (e *Editor) Stats() Stats {
	groups, levels, components := e.tree.Counts()
	return Stats{
		Groups:        groups,
		Levels:        levels,
		Components:    components,
		UndoDepth:     len(e.undo),
		RedoDepth:     len(e.redo),
		Commands:      len(e.commands),
		Listeners:     len(e.listeners),
		InTransaction: e.tx != nil,
	}
}

func (e *Editor) ValidateHierarchy() bool {
	return e.ValidateHierarchyDetailed() == nil
}

// ValidateHierarchyDetailed returns nil or a *hierarchy.ValidationError
// listing every problem in the live tree.
func (e *Editor) ValidateHierarchyDetailed() error {
	return hierarchy.Validate(e.tree)
}

// RepairHierarchy renumbers every collection densely and replaces missing
// child collections with empty ones. It records a single undoable step, or
// nothing when the tree is already in repaired form.
func (e *Editor) RepairHierarchy() error {
	return e.apply(CmdRepair, nil, func(h tree) (tree, error) {
		repaired, changed := hierarchy.Repair(h)
		if !changed {
			return nil, errUnchanged
		}
		return repaired, nil
	})
}
