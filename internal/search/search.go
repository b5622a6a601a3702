// Package search indexes published hierarchy nodes and answers full-text
// queries over them, preferring Meilisearch and falling back to Postgres.
package search

import (
	"context"

	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
)

// ResultType identifies the kind of node in a search result.
type ResultType string

const (
	ResultGroup     ResultType = "group"
	ResultLevel     ResultType = "level"
	ResultComponent ResultType = "component"
)

// ParseResultType maps user input to a ResultType. ok is false for unknown
// kinds; the empty string means all kinds.
func ParseResultType(s string) (ResultType, bool) {
	switch ResultType(s) {
	case "", ResultGroup, ResultLevel, ResultComponent:
		return ResultType(s), true
	}
	return "", false
}

// Result is a single search hit.
type Result struct {
	Type    ResultType `json:"type"`
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Snippet string     `json:"snippet"`
	GroupID string     `json:"groupId"`
	LevelID string     `json:"levelId,omitempty"`
}

type Query struct {
	Text          string
	FilterType    ResultType // empty = all types
	FilterGroupID string
	Limit         int
	Offset        int
}

type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Result, int, error)
	Healthy() bool
}

// GroupRecord is the data we index for a level group.
type GroupRecord struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	GroupID string `json:"groupId"`
	Order   int    `json:"order"`
}

// LevelRecord is the data we index for a level.
type LevelRecord struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	GroupID    string `json:"groupId"`
	GroupTitle string `json:"groupTitle"`
	XPReward   int    `json:"xpReward"`
}

// ComponentRecord is the data we index for a component. Text holds the
// string leaves of its content.
type ComponentRecord struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	DisplayName string `json:"displayName"`
	Text        string `json:"text"`
	LevelID     string `json:"levelId"`
	LevelTitle  string `json:"levelTitle"`
	GroupID     string `json:"groupId"`
}

// Records holds the index records of a hierarchy.
type Records struct {
	Groups     []GroupRecord
	Levels     []LevelRecord
	Components []ComponentRecord
}

func (r Records) Len() int {
	return len(r.Groups) + len(r.Levels) + len(r.Components)
}

// Index is implemented by backends that can store records.
type Index interface {
	Upsert(ctx context.Context, records Records) error
	Delete(ctx context.Context, groups, levels, components []string) error
}

// BuildRecords flattens h into index records. A non-nil only set limits the
// output to those ids.
func BuildRecords(h hierarchy.Hierarchy, only map[string]bool) Records {
	keep := func(id string) bool { return only == nil || only[id] }

	var out Records
	for _, g := range h {
		if keep(g.ID) {
			out.Groups = append(out.Groups, GroupRecord{ID: g.ID, Title: g.Title, GroupID: g.ID, Order: g.Order})
		}
		for _, l := range g.Levels {
			if keep(l.ID) {
				out.Levels = append(out.Levels, LevelRecord{
					ID: l.ID, Title: l.Title, GroupID: g.ID, GroupTitle: g.Title, XPReward: l.XPReward,
				})
			}
			for _, c := range l.Components {
				if !keep(c.ID) {
					continue
				}
				out.Components = append(out.Components, ComponentRecord{
					ID:          c.ID,
					Type:        c.Type,
					DisplayName: c.DisplayName,
					Text:        ContentText(c.Content),
					LevelID:     l.ID,
					LevelTitle:  l.Title,
					GroupID:     g.ID,
				})
			}
		}
	}
	return out
}
