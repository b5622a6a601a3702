// Package diff compares a live hierarchy against a baseline snapshot.
//
// Two granularities are offered. IDs is cheap and returns membership sets
// for highlighting. Compute returns before/after records and the changed
// field names that statement generation needs.
package diff

import (
	"sort"

	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
)

// IDSet is a set of node ids.
type IDSet map[string]struct{}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) add(id string) {
	s[id] = struct{}{}
}

// Sorted returns the ids in lexical order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IDSets holds the ids added to or updated in the live tree, across all
// three levels.
type IDSets struct {
	Added   IDSet
	Updated IDSet
}

// Change records one updated node. Before and After are shallow copies:
// child collections are stripped.
type Change[T any] struct {
	ID     string   `json:"id"`
	Before T        `json:"before"`
	After  T        `json:"after"`
	Fields []string `json:"fields"`
}

// Nodes lists shallow copies of added or deleted nodes per level.
type Nodes struct {
	Groups     []hierarchy.LevelGroup `json:"groups"`
	Levels     []hierarchy.Level      `json:"levels"`
	Components []hierarchy.Component  `json:"components"`
}

func (n Nodes) Len() int {
	return len(n.Groups) + len(n.Levels) + len(n.Components)
}

type Changes struct {
	Groups     []Change[hierarchy.LevelGroup] `json:"groups"`
	Levels     []Change[hierarchy.Level]      `json:"levels"`
	Components []Change[hierarchy.Component]  `json:"components"`
}

func (c Changes) Len() int {
	return len(c.Groups) + len(c.Levels) + len(c.Components)
}

// Reparent records a level or component that sits under a different parent
// in the live tree than in the baseline. From and To are parent ids.
type Reparent struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
}

type Reparents struct {
	Levels     []Reparent `json:"levels"`
	Components []Reparent `json:"components"`
}

func (r Reparents) Len() int {
	return len(r.Levels) + len(r.Components)
}

// Detailed is the publish-time diff. Added, Updated and Reparented follow
// live tree order, Deleted follows baseline order.
//
// Reparented is orthogonal to the other classes: a moved node may also be
// listed in Updated when its own fields changed.
type Detailed struct {
	Added      Nodes     `json:"added"`
	Updated    Changes   `json:"updated"`
	Deleted    Nodes     `json:"deleted"`
	Reparented Reparents `json:"reparented"`
}

func (d Detailed) Count() int {
	return d.Added.Len() + d.Updated.Len() + d.Deleted.Len() + d.Reparented.Len()
}

func (d Detailed) IsEmpty() bool {
	return d.Count() == 0
}

type index struct {
	groups     map[string]hierarchy.LevelGroup
	levels     map[string]hierarchy.Level
	components map[string]hierarchy.Component
	parents    map[string]string
}

func indexTree(h hierarchy.Hierarchy) index {
	idx := index{
		groups:     make(map[string]hierarchy.LevelGroup),
		levels:     make(map[string]hierarchy.Level),
		components: make(map[string]hierarchy.Component),
		parents:    make(map[string]string),
	}
	for _, g := range h {
		idx.groups[g.ID] = g
		for _, l := range g.Levels {
			idx.levels[l.ID] = l
			idx.parents[l.ID] = g.ID
			for _, c := range l.Components {
				idx.components[c.ID] = c
				idx.parents[c.ID] = l.ID
			}
		}
	}
	return idx
}

// IDs classifies every live node as added, updated or unchanged relative to
// baseline.
func IDs(baseline, live hierarchy.Hierarchy) IDSets {
	base := indexTree(baseline)
	out := IDSets{Added: IDSet{}, Updated: IDSet{}}
	for _, g := range live {
		if before, ok := base.groups[g.ID]; !ok {
			out.Added.add(g.ID)
		} else if len(GroupFields(before, g)) > 0 {
			out.Updated.add(g.ID)
		}
		for _, l := range g.Levels {
			if before, ok := base.levels[l.ID]; !ok {
				out.Added.add(l.ID)
			} else if len(LevelFields(before, l)) > 0 {
				out.Updated.add(l.ID)
			}
			for _, c := range l.Components {
				if before, ok := base.components[c.ID]; !ok {
					out.Added.add(c.ID)
				} else if len(ComponentFields(before, c)) > 0 {
					out.Updated.add(c.ID)
				}
			}
		}
	}
	return out
}

// Compute builds the detailed diff between baseline and live.
func Compute(baseline, live hierarchy.Hierarchy) Detailed {
	base := indexTree(baseline)
	cur := indexTree(live)

	var d Detailed
	for _, g := range live {
		if before, ok := base.groups[g.ID]; !ok {
			d.Added.Groups = append(d.Added.Groups, g.Shallow())
		} else if fields := GroupFields(before, g); len(fields) > 0 {
			d.Updated.Groups = append(d.Updated.Groups, Change[hierarchy.LevelGroup]{
				ID: g.ID, Before: before.Shallow(), After: g.Shallow(), Fields: fields,
			})
		}
		for _, l := range g.Levels {
			if before, ok := base.levels[l.ID]; !ok {
				d.Added.Levels = append(d.Added.Levels, l.Shallow().Clone())
			} else if fields := LevelFields(before, l); len(fields) > 0 {
				d.Updated.Levels = append(d.Updated.Levels, Change[hierarchy.Level]{
					ID: l.ID, Before: before.Shallow().Clone(), After: l.Shallow().Clone(), Fields: fields,
				})
			}
			if from, ok := base.parents[l.ID]; ok && from != g.ID {
				d.Reparented.Levels = append(d.Reparented.Levels, Reparent{ID: l.ID, From: from, To: g.ID})
			}
			for _, c := range l.Components {
				if before, ok := base.components[c.ID]; !ok {
					d.Added.Components = append(d.Added.Components, c)
				} else if fields := ComponentFields(before, c); len(fields) > 0 {
					d.Updated.Components = append(d.Updated.Components, Change[hierarchy.Component]{
						ID: c.ID, Before: before, After: c, Fields: fields,
					})
				}
				if from, ok := base.parents[c.ID]; ok && from != l.ID {
					d.Reparented.Components = append(d.Reparented.Components, Reparent{ID: c.ID, From: from, To: l.ID})
				}
			}
		}
	}

	for _, g := range baseline {
		for _, l := range g.Levels {
			for _, c := range l.Components {
				if _, ok := cur.components[c.ID]; !ok {
					d.Deleted.Components = append(d.Deleted.Components, c)
				}
			}
			if _, ok := cur.levels[l.ID]; !ok {
				d.Deleted.Levels = append(d.Deleted.Levels, l.Shallow().Clone())
			}
		}
		if _, ok := cur.groups[g.ID]; !ok {
			d.Deleted.Groups = append(d.Deleted.Groups, g.Shallow())
		}
	}
	return d
}
