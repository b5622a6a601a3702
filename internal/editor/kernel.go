package editor

import (
	"errors"
	"slices"

	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
)

// The kernel is a set of pure functions from one tree to the next. Input
// trees are never written to: every collection on the path to a change is
// copied first, untouched subtrees are shared with the input. This is what
// lets the history keep old trees as undo snapshots without cloning them.

// errUnchanged is returned by kernel functions that would produce an
// identical tree. apply treats it as success without recording anything.
var errUnchanged = errors.New("editor: operation changed nothing")

type tree = hierarchy.Hierarchy

func groupOrder(g *hierarchy.LevelGroup) *int   { return &g.Order }
func levelOrder(l *hierarchy.Level) *int        { return &l.Order }
func componentOrder(c *hierarchy.Component) *int { return &c.Order }

// renumber writes dense order values in place. Callers must own items.
func renumber[T any](items []T, order func(*T) *int) {
	for i := range items {
		*order(&items[i]) = i
	}
}

// insertOrdered inserts item before the first sibling whose order is >= target,
// or appends when target is nil or no such sibling exists.
func insertOrdered[T any](items []T, item T, target *int, order func(*T) *int) []T {
	out := slices.Clone(items)
	idx := len(out)
	if target != nil {
		for i := range out {
			if *order(&out[i]) >= *target {
				idx = i
				break
			}
		}
	}
	out = slices.Insert(out, idx, item)
	renumber(out, order)
	return out
}

// insertAt inserts item at the clamped position idx.
func insertAt[T any](items []T, item T, idx int, order func(*T) *int) []T {
	out := slices.Clone(items)
	out = slices.Insert(out, clamp(idx, 0, len(out)), item)
	renumber(out, order)
	return out
}

func removeAt[T any](items []T, idx int, order func(*T) *int) []T {
	out := slices.Clone(items)
	out = slices.Delete(out, idx, idx+1)
	renumber(out, order)
	return out
}

func moveWithin[T any](items []T, from, to int, order func(*T) *int) []T {
	out := slices.Clone(items)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	out = slices.Insert(out, clamp(to, 0, len(out)), item)
	renumber(out, order)
	return out
}

func replaceAt[T any](items []T, idx int, item T) []T {
	out := slices.Clone(items)
	out[idx] = item
	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func withLevels(h tree, gi int, fn func([]hierarchy.Level) []hierarchy.Level) tree {
	out := slices.Clone(h)
	out[gi].Levels = fn(out[gi].Levels)
	return out
}

func withComponents(h tree, gi, li int, fn func([]hierarchy.Component) []hierarchy.Component) tree {
	return withLevels(h, gi, func(levels []hierarchy.Level) []hierarchy.Level {
		levels = slices.Clone(levels)
		levels[li].Components = fn(levels[li].Components)
		return levels
	})
}

// normalizeGroup renumbers the collections inside a subtree that is about to
// be added. g must already be a private copy.
func normalizeGroup(g hierarchy.LevelGroup) hierarchy.LevelGroup {
	renumber(g.Levels, levelOrder)
	for i := range g.Levels {
		renumber(g.Levels[i].Components, componentOrder)
	}
	return g
}

func fieldInvalid(kind, field, code, message string) error {
	return &hierarchy.ValidationError{Issues: []hierarchy.Issue{{
		Path:    kind + "." + field,
		Code:    code,
		Message: message,
	}}}
}

// Level groups

func addGroup(h tree, g hierarchy.LevelGroup, at *int) (tree, error) {
	if err := hierarchy.ValidateGroup(h, g); err != nil {
		return nil, err
	}
	return insertOrdered(h, normalizeGroup(g), at, groupOrder), nil
}

func updateGroup(h tree, id string, patch GroupPatch) (tree, error) {
	gi, ok := h.FindGroup(id)
	if !ok {
		return nil, hierarchy.NewNotFound(hierarchy.KindGroup, id)
	}
	g := h[gi]
	changed := false
	if title, ok := patch.Title.Get(); ok && title != g.Title {
		if title == "" {
			return nil, fieldInvalid("group", "title", hierarchy.CodeRequired, "title is required")
		}
		g.Title = title
		changed = true
	}
	out := h
	if changed {
		out = replaceAt(h, gi, g)
	}
	if order, ok := patch.Order.Get(); ok && clamp(order, 0, len(h)-1) != gi {
		out = moveWithin(out, gi, order, groupOrder)
		changed = true
	}
	if !changed {
		return nil, errUnchanged
	}
	return out, nil
}

func moveGroup(h tree, id string, newOrder int) (tree, error) {
	gi, ok := h.FindGroup(id)
	if !ok {
		return nil, hierarchy.NewNotFound(hierarchy.KindGroup, id)
	}
	if clamp(newOrder, 0, len(h)-1) == gi {
		return nil, errUnchanged
	}
	return moveWithin(h, gi, newOrder, groupOrder), nil
}

func deleteGroup(h tree, id string) (tree, error) {
	gi, ok := h.FindGroup(id)
	if !ok {
		return nil, hierarchy.NewNotFound(hierarchy.KindGroup, id)
	}
	return removeAt(h, gi, groupOrder), nil
}

// Levels

func addLevel(h tree, groupID string, l hierarchy.Level, at *int) (tree, error) {
	gi, ok := h.FindGroup(groupID)
	if !ok {
		return nil, hierarchy.NewNotFound(hierarchy.KindGroup, groupID)
	}
	if err := hierarchy.ValidateLevel(h, l); err != nil {
		return nil, err
	}
	renumber(l.Components, componentOrder)
	return withLevels(h, gi, func(levels []hierarchy.Level) []hierarchy.Level {
		return insertOrdered(levels, l, at, levelOrder)
	}), nil
}

func updateLevel(h tree, id string, patch LevelPatch) (tree, error) {
	gi, li, ok := h.FindLevel(id)
	if !ok {
		return nil, hierarchy.NewNotFound(hierarchy.KindLevel, id)
	}
	l := h[gi].Levels[li]
	changed := false
	if title, ok := patch.Title.Get(); ok && title != l.Title {
		if title == "" {
			return nil, fieldInvalid("level", "title", hierarchy.CodeRequired, "title is required")
		}
		l.Title = title
		changed = true
	}
	if key, ok := patch.IconKey.Get(); ok && !hierarchy.EqualOptional(key, l.IconKey) {
		l.IconKey = copyString(key)
		changed = true
	}
	if family, ok := patch.IconFamily.Get(); ok && !hierarchy.EqualOptional(family, l.IconFamily) {
		l.IconFamily = copyString(family)
		changed = true
	}
	if xp, ok := patch.XPReward.Get(); ok && xp != l.XPReward {
		if xp < 0 {
			return nil, fieldInvalid("level", "xp_reward", hierarchy.CodeOutOfRange, "xp_reward must be at least 0")
		}
		l.XPReward = xp
		changed = true
	}
	out := h
	if changed {
		out = withLevels(h, gi, func(levels []hierarchy.Level) []hierarchy.Level {
			return replaceAt(levels, li, l)
		})
	}
	if order, ok := patch.Order.Get(); ok && clamp(order, 0, len(h[gi].Levels)-1) != li {
		out = withLevels(out, gi, func(levels []hierarchy.Level) []hierarchy.Level {
			return moveWithin(levels, li, order, levelOrder)
		})
		changed = true
	}
	if !changed {
		return nil, errUnchanged
	}
	return out, nil
}

// moveLevel moves a level to newOrder within newGroupID, or within its
// current group when newGroupID is empty.
func moveLevel(h tree, id string, newOrder int, newGroupID string) (tree, error) {
	gi, li, ok := h.FindLevel(id)
	if !ok {
		return nil, hierarchy.NewNotFound(hierarchy.KindLevel, id)
	}
	target := gi
	if newGroupID != "" {
		if target, ok = h.FindGroup(newGroupID); !ok {
			return nil, hierarchy.NewNotFound(hierarchy.KindGroup, newGroupID)
		}
	}
	if target == gi {
		if clamp(newOrder, 0, len(h[gi].Levels)-1) == li {
			return nil, errUnchanged
		}
		return withLevels(h, gi, func(levels []hierarchy.Level) []hierarchy.Level {
			return moveWithin(levels, li, newOrder, levelOrder)
		}), nil
	}
	moving := h[gi].Levels[li]
	out := withLevels(h, gi, func(levels []hierarchy.Level) []hierarchy.Level {
		return removeAt(levels, li, levelOrder)
	})
	return withLevels(out, target, func(levels []hierarchy.Level) []hierarchy.Level {
		return insertAt(levels, moving, newOrder, levelOrder)
	}), nil
}

func deleteLevel(h tree, id string) (tree, error) {
	gi, li, ok := h.FindLevel(id)
	if !ok {
		return nil, hierarchy.NewNotFound(hierarchy.KindLevel, id)
	}
	return withLevels(h, gi, func(levels []hierarchy.Level) []hierarchy.Level {
		return removeAt(levels, li, levelOrder)
	}), nil
}

// Components

func addComponent(h tree, levelID string, c hierarchy.Component, at *int) (tree, error) {
	gi, li, ok := h.FindLevel(levelID)
	if !ok {
		return nil, hierarchy.NewNotFound(hierarchy.KindLevel, levelID)
	}
	if err := hierarchy.ValidateComponent(h, c); err != nil {
		return nil, err
	}
	return withComponents(h, gi, li, func(components []hierarchy.Component) []hierarchy.Component {
		return insertOrdered(components, c, at, componentOrder)
	}), nil
}

func updateComponent(h tree, id string, patch ComponentPatch) (tree, error) {
	gi, li, ci, ok := h.FindComponent(id)
	if !ok {
		return nil, hierarchy.NewNotFound(hierarchy.KindComponent, id)
	}
	siblings := h[gi].Levels[li].Components
	c := siblings[ci]
	changed := false
	if typ, ok := patch.Type.Get(); ok && typ != c.Type {
		if typ == "" {
			return nil, fieldInvalid("component", "type", hierarchy.CodeRequired, "type is required")
		}
		c.Type = typ
		changed = true
	}
	if name, ok := patch.DisplayName.Get(); ok && name != c.DisplayName {
		c.DisplayName = name
		changed = true
	}
	if content, ok := patch.Content.Get(); ok && !content.Equal(c.Content) {
		c.Content = content
		changed = true
	}
	out := h
	if changed {
		out = withComponents(h, gi, li, func(components []hierarchy.Component) []hierarchy.Component {
			return replaceAt(components, ci, c)
		})
	}
	if order, ok := patch.Order.Get(); ok && clamp(order, 0, len(siblings)-1) != ci {
		out = withComponents(out, gi, li, func(components []hierarchy.Component) []hierarchy.Component {
			return moveWithin(components, ci, order, componentOrder)
		})
		changed = true
	}
	if !changed {
		return nil, errUnchanged
	}
	return out, nil
}

// moveComponent moves a component to newOrder within newLevelID, or within
// its current level when newLevelID is empty.
func moveComponent(h tree, id string, newOrder int, newLevelID string) (tree, error) {
	gi, li, ci, ok := h.FindComponent(id)
	if !ok {
		return nil, hierarchy.NewNotFound(hierarchy.KindComponent, id)
	}
	tgi, tli := gi, li
	if newLevelID != "" {
		if tgi, tli, ok = h.FindLevel(newLevelID); !ok {
			return nil, hierarchy.NewNotFound(hierarchy.KindLevel, newLevelID)
		}
	}
	if tgi == gi && tli == li {
		if clamp(newOrder, 0, len(h[gi].Levels[li].Components)-1) == ci {
			return nil, errUnchanged
		}
		return withComponents(h, gi, li, func(components []hierarchy.Component) []hierarchy.Component {
			return moveWithin(components, ci, newOrder, componentOrder)
		}), nil
	}
	moving := h[gi].Levels[li].Components[ci]
	out := withComponents(h, gi, li, func(components []hierarchy.Component) []hierarchy.Component {
		return removeAt(components, ci, componentOrder)
	})
	return withComponents(out, tgi, tli, func(components []hierarchy.Component) []hierarchy.Component {
		return insertAt(components, moving, newOrder, componentOrder)
	}), nil
}

func deleteComponent(h tree, id string) (tree, error) {
	gi, li, ci, ok := h.FindComponent(id)
	if !ok {
		return nil, hierarchy.NewNotFound(hierarchy.KindComponent, id)
	}
	return withComponents(h, gi, li, func(components []hierarchy.Component) []hierarchy.Component {
		return removeAt(components, ci, componentOrder)
	}), nil
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
