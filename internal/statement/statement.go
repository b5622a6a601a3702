// Package statement turns a detailed diff into the ordered SQL batch that
// brings the published store in line with the live tree.
//
// Parent relocations run first, then deletes children first, inserts parents
// first and updates last, so a batch never violates the store's foreign keys
// at any intermediate step.
package statement

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Kutay07/ContentLab-sub000/internal/diff"
	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
)

type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Statement is one mutation in a publish batch. Entity is one of the
// hierarchy.Kind constants, or "progress" for progress side-table cleanup.
type Statement struct {
	Op     Op     `json:"op"`
	Entity string `json:"entity"`
	ID     string `json:"id"`
	SQL    string `json:"sql"`
}

// EntityProgress marks the cleanup of per-user progress rows of a level.
const EntityProgress = "progress"

// Schema names the tables and foreign key columns of the published store.
// ProgressTable may be empty when the store keeps no progress rows.
type Schema struct {
	GroupTable     string
	LevelTable     string
	ComponentTable string
	ProgressTable  string

	LevelGroupColumn     string
	ComponentLevelColumn string
	ProgressLevelColumn  string
	OrderColumn          string
}

// DefaultSchema matches db/migrations.
var DefaultSchema = Schema{
	GroupTable:           "level_groups",
	LevelTable:           "levels",
	ComponentTable:       "level_components",
	ProgressTable:        "user_level_progress",
	LevelGroupColumn:     "group_id",
	ComponentLevelColumn: "level_id",
	ProgressLevelColumn:  "level_id",
	OrderColumn:          "order_index",
}

// SQL extracts the statement text in batch order.
func SQL(stmts []Statement) []string {
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = s.SQL
	}
	return out
}

// Generate emits the batch for d. current is the live tree and is used to
// resolve the parent of every added level and component; additions whose
// parent cannot be found are skipped.
//
// Levels and components that changed parent are relocated before the
// deletions, so deleting their old parent never trips a foreign key. A new
// parent that is itself an addition is inserted ahead of the relocation.
func Generate(d diff.Detailed, current hierarchy.Hierarchy, schema Schema) []Statement {
	g := generator{
		schema:      schema,
		parents:     indexParents(current),
		addedGroups: make(map[string]hierarchy.LevelGroup, len(d.Added.Groups)),
		addedLevels: make(map[string]hierarchy.Level, len(d.Added.Levels)),
		inserted:    make(map[string]bool),
	}
	for _, grp := range d.Added.Groups {
		g.addedGroups[grp.ID] = grp
	}
	for _, l := range d.Added.Levels {
		g.addedLevels[l.ID] = l
	}

	for _, r := range d.Reparented.Levels {
		g.ensureGroup(r.To)
		g.relocate(hierarchy.KindLevel, schema.LevelTable, schema.LevelGroupColumn, r)
	}
	for _, r := range d.Reparented.Components {
		g.ensureLevel(r.To)
		g.relocate(hierarchy.KindComponent, schema.ComponentTable, schema.ComponentLevelColumn, r)
	}

	for _, c := range d.Deleted.Components {
		g.delete(hierarchy.KindComponent, schema.ComponentTable, c.ID)
	}
	for _, l := range d.Deleted.Levels {
		if schema.ProgressTable != "" {
			g.add(OpDelete, EntityProgress, l.ID, fmt.Sprintf("DELETE FROM %s WHERE %s = %s;",
				ident(schema.ProgressTable), ident(schema.ProgressLevelColumn), literal(l.ID)))
		}
		g.delete(hierarchy.KindLevel, schema.LevelTable, l.ID)
	}
	for _, grp := range d.Deleted.Groups {
		g.delete(hierarchy.KindGroup, schema.GroupTable, grp.ID)
	}

	for _, grp := range d.Added.Groups {
		g.insertGroup(grp)
	}
	for _, l := range d.Added.Levels {
		g.insertLevel(l)
	}
	for _, c := range d.Added.Components {
		levelID, ok := g.parents[c.ID]
		if !ok {
			continue
		}
		g.insert(hierarchy.KindComponent, schema.ComponentTable, c.ID, []column{
			{"id", literal(c.ID)},
			{schema.ComponentLevelColumn, literal(levelID)},
			{"type", literal(c.Type)},
			{"display_name", literal(c.DisplayName)},
			{"content", jsonb(c.Content)},
			{schema.OrderColumn, integer(c.Order)},
		})
	}

	for _, ch := range d.Updated.Groups {
		g.update(hierarchy.KindGroup, schema.GroupTable, ch.ID, ch.Fields, func(field string) string {
			return groupValue(ch.After, field)
		})
	}
	for _, ch := range d.Updated.Levels {
		g.update(hierarchy.KindLevel, schema.LevelTable, ch.ID, ch.Fields, func(field string) string {
			return levelValue(ch.After, field)
		})
	}
	for _, ch := range d.Updated.Components {
		g.update(hierarchy.KindComponent, schema.ComponentTable, ch.ID, ch.Fields, func(field string) string {
			return componentValue(ch.After, field)
		})
	}
	return g.out
}

type column struct {
	name  string
	value string
}

type generator struct {
	schema      Schema
	parents     map[string]string
	addedGroups map[string]hierarchy.LevelGroup
	addedLevels map[string]hierarchy.Level
	inserted    map[string]bool
	out         []Statement
}

func (g *generator) insertGroup(grp hierarchy.LevelGroup) {
	if g.inserted[grp.ID] {
		return
	}
	g.inserted[grp.ID] = true
	g.insert(hierarchy.KindGroup, g.schema.GroupTable, grp.ID, []column{
		{"id", literal(grp.ID)},
		{"title", literal(grp.Title)},
		{g.schema.OrderColumn, integer(grp.Order)},
	})
}

func (g *generator) insertLevel(l hierarchy.Level) {
	if g.inserted[l.ID] {
		return
	}
	groupID, ok := g.parents[l.ID]
	if !ok {
		return
	}
	g.ensureGroup(groupID)
	g.inserted[l.ID] = true
	g.insert(hierarchy.KindLevel, g.schema.LevelTable, l.ID, []column{
		{"id", literal(l.ID)},
		{g.schema.LevelGroupColumn, literal(groupID)},
		{"title", literal(l.Title)},
		{"icon_key", optional(l.IconKey)},
		{"icon_family", optional(l.IconFamily)},
		{"xp_reward", integer(l.XPReward)},
		{g.schema.OrderColumn, integer(l.Order)},
	})
}

// ensureGroup inserts id now if it is an added group. Groups already in the
// store need nothing.
func (g *generator) ensureGroup(id string) {
	if grp, ok := g.addedGroups[id]; ok {
		g.insertGroup(grp)
	}
}

func (g *generator) ensureLevel(id string) {
	if l, ok := g.addedLevels[id]; ok {
		g.insertLevel(l)
	}
}

func (g *generator) relocate(entity, table, column string, r diff.Reparent) {
	g.add(OpUpdate, entity, r.ID, fmt.Sprintf("UPDATE %s SET %s = %s WHERE id = %s;",
		ident(table), ident(column), literal(r.To), literal(r.ID)))
}

func (g *generator) add(op Op, entity, id, sql string) {
	g.out = append(g.out, Statement{Op: op, Entity: entity, ID: id, SQL: sql})
}

func (g *generator) delete(entity, table, id string) {
	g.add(OpDelete, entity, id, fmt.Sprintf("DELETE FROM %s WHERE id = %s;", ident(table), literal(id)))
}

func (g *generator) insert(entity, table, id string, cols []column) {
	names := make([]string, len(cols))
	values := make([]string, len(cols))
	for i, c := range cols {
		names[i] = ident(c.name)
		values[i] = c.value
	}
	g.add(OpInsert, entity, id, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
		ident(table), strings.Join(names, ", "), strings.Join(values, ", ")))
}

func (g *generator) update(entity, table, id string, fields []string, value func(string) string) {
	if len(fields) == 0 {
		return
	}
	sets := make([]string, len(fields))
	for i, field := range fields {
		sets[i] = fmt.Sprintf("%s = %s", ident(g.columnFor(field)), value(field))
	}
	g.add(OpUpdate, entity, id, fmt.Sprintf("UPDATE %s SET %s WHERE id = %s;",
		ident(table), strings.Join(sets, ", "), literal(id)))
}

func (g *generator) columnFor(field string) string {
	if field == diff.FieldOrder {
		return g.schema.OrderColumn
	}
	return field
}

// indexParents maps level ids to their group id and component ids to their
// level id.
func indexParents(h hierarchy.Hierarchy) map[string]string {
	parents := make(map[string]string)
	for _, grp := range h {
		for _, l := range grp.Levels {
			parents[l.ID] = grp.ID
			for _, c := range l.Components {
				parents[c.ID] = l.ID
			}
		}
	}
	return parents
}

func groupValue(g hierarchy.LevelGroup, field string) string {
	switch field {
	case diff.FieldTitle:
		return literal(g.Title)
	case diff.FieldOrder:
		return integer(g.Order)
	}
	return "NULL"
}

func levelValue(l hierarchy.Level, field string) string {
	switch field {
	case diff.FieldTitle:
		return literal(l.Title)
	case diff.FieldIconKey:
		return optional(l.IconKey)
	case diff.FieldIconFamily:
		return optional(l.IconFamily)
	case diff.FieldXPReward:
		return integer(l.XPReward)
	case diff.FieldOrder:
		return integer(l.Order)
	}
	return "NULL"
}

func componentValue(c hierarchy.Component, field string) string {
	switch field {
	case diff.FieldType:
		return literal(c.Type)
	case diff.FieldDisplayName:
		return literal(c.DisplayName)
	case diff.FieldContent:
		return jsonb(c.Content)
	case diff.FieldOrder:
		return integer(c.Order)
	}
	return "NULL"
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func optional(s *string) string {
	if s == nil {
		return "NULL"
	}
	return literal(*s)
}

func integer(v int) string {
	return strconv.Itoa(v)
}

func jsonb(c hierarchy.Content) string {
	return literal(c.String()) + "::jsonb"
}
