// Package editor owns the live content hierarchy of one editing session.
//
// All mutations go through Editor methods. Each one is a pure kernel
// transformation wrapped by apply, which snapshots the previous tree for undo,
// records a Command and notifies subscribers. An Editor is not safe for
// concurrent use: it is meant to be owned by a single session.
package editor

import (
	"encoding/json"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
)

// DefaultHistoryLimit bounds the undo and redo stacks.
const DefaultHistoryLimit = 50

// Command types recorded in the history log.
const (
	CmdAddLevelGroup    = "addLevelGroup"
	CmdUpdateLevelGroup = "updateLevelGroup"
	CmdMoveLevelGroup   = "moveLevelGroup"
	CmdDeleteLevelGroup = "deleteLevelGroup"
	CmdAddLevel         = "addLevel"
	CmdUpdateLevel      = "updateLevel"
	CmdMoveLevel        = "moveLevel"
	CmdDeleteLevel      = "deleteLevel"
	CmdAddComponent     = "addComponent"
	CmdUpdateComponent  = "updateComponent"
	CmdMoveComponent    = "moveComponent"
	CmdDeleteComponent  = "deleteComponent"
	CmdDeserialize      = "deserialize"
	CmdRepair           = "repairHierarchy"
	CmdTransaction      = "transaction"
)

// Command is one recorded edit. Payload holds the JSON-encoded arguments.
type Command struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func (c Command) clone() Command {
	c.Payload = slices.Clone(c.Payload)
	return c
}

// Listener receives a private copy of the tree after every notified change.
type Listener func(hierarchy.Hierarchy)

type listenerEntry struct {
	id int
	fn Listener
}

type Editor struct {
	tree     hierarchy.Hierarchy
	baseline hierarchy.Hierarchy

	undo         []hierarchy.Hierarchy
	redo         []hierarchy.Hierarchy
	commands     []Command
	redoCommands []Command
	carried      []Command
	limit        int

	tx *transaction

	listeners      []listenerEntry
	nextListenerID int

	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Editor)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHistoryLimit overrides DefaultHistoryLimit. Values below 1 are ignored.
func WithHistoryLimit(limit int) Option {
	return func(e *Editor) {
		if limit > 0 {
			e.limit = limit
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithHierarchy seeds the live tree without recording history.
func WithHierarchy(h hierarchy.Hierarchy) Option {
	return func(e *Editor) {
		if h != nil {
			e.tree = h.Clone()
		}
	}
}

func New(opts ...Option) *Editor {
	e := &Editor{
		tree:   hierarchy.Hierarchy{},
		limit:  DefaultHistoryLimit,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers fn and returns a function that removes it. Listeners
// are called in subscription order.
func (e *Editor) Subscribe(fn Listener) (unsubscribe func()) {
	id := e.nextListenerID
	e.nextListenerID++
	e.listeners = append(e.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		e.listeners = slices.DeleteFunc(e.listeners, func(entry listenerEntry) bool {
			return entry.id == id
		})
	}
}

func (e *Editor) notify() {
	listeners := slices.Clone(e.listeners)
	for _, entry := range listeners {
		entry.fn(e.tree.Clone())
	}
}

func (e *Editor) newCommand(cmdType string, payload any) Command {
	cmd := Command{Type: cmdType, Timestamp: e.now()}
	if payload == nil {
		return cmd
	}
	data, err := json.Marshal(payload)
	if err != nil {
		e.logger.Warn("encode command payload", zap.String("command", cmdType), zap.Error(err))
		return cmd
	}
	cmd.Payload = data
	return cmd
}

// Level groups

func (e *Editor) AddLevelGroup(group hierarchy.LevelGroup, opts ...InsertOption) error {
	at := insertionOrder(opts)
	group = group.Clone()
	payload := map[string]any{"group": group, "order": at}
	return e.apply(CmdAddLevelGroup, payload, func(h tree) (tree, error) {
		return addGroup(h, group, at)
	})
}

func (e *Editor) UpdateLevelGroup(id string, patch GroupPatch) error {
	payload := map[string]any{"id": id, "changes": patch.changes()}
	return e.apply(CmdUpdateLevelGroup, payload, func(h tree) (tree, error) {
		return updateGroup(h, id, patch)
	})
}

func (e *Editor) MoveLevelGroup(id string, newOrder int) error {
	payload := map[string]any{"id": id, "order": newOrder}
	return e.apply(CmdMoveLevelGroup, payload, func(h tree) (tree, error) {
		return moveGroup(h, id, newOrder)
	})
}

// DeleteLevelGroup removes the group together with its levels and components.
func (e *Editor) DeleteLevelGroup(id string) error {
	return e.apply(CmdDeleteLevelGroup, map[string]any{"id": id}, func(h tree) (tree, error) {
		return deleteGroup(h, id)
	})
}

// Levels

func (e *Editor) AddLevel(groupID string, level hierarchy.Level, opts ...InsertOption) error {
	at := insertionOrder(opts)
	level = level.Clone()
	payload := map[string]any{"group_id": groupID, "level": level, "order": at}
	return e.apply(CmdAddLevel, payload, func(h tree) (tree, error) {
		return addLevel(h, groupID, level, at)
	})
}

func (e *Editor) UpdateLevel(id string, patch LevelPatch) error {
	payload := map[string]any{"id": id, "changes": patch.changes()}
	return e.apply(CmdUpdateLevel, payload, func(h tree) (tree, error) {
		return updateLevel(h, id, patch)
	})
}

// MoveLevel moves a level to position newOrder. An empty newGroupID keeps the
// level in its current group. Out of range positions are clamped.
func (e *Editor) MoveLevel(id string, newOrder int, newGroupID string) error {
	payload := map[string]any{"id": id, "order": newOrder, "group_id": newGroupID}
	return e.apply(CmdMoveLevel, payload, func(h tree) (tree, error) {
		return moveLevel(h, id, newOrder, newGroupID)
	})
}

func (e *Editor) DeleteLevel(id string) error {
	return e.apply(CmdDeleteLevel, map[string]any{"id": id}, func(h tree) (tree, error) {
		return deleteLevel(h, id)
	})
}

// Components

func (e *Editor) AddComponent(levelID string, component hierarchy.Component, opts ...InsertOption) error {
	at := insertionOrder(opts)
	payload := map[string]any{"level_id": levelID, "component": component, "order": at}
	return e.apply(CmdAddComponent, payload, func(h tree) (tree, error) {
		return addComponent(h, levelID, component, at)
	})
}

func (e *Editor) UpdateComponent(id string, patch ComponentPatch) error {
	payload := map[string]any{"id": id, "changes": patch.changes()}
	return e.apply(CmdUpdateComponent, payload, func(h tree) (tree, error) {
		return updateComponent(h, id, patch)
	})
}

// MoveComponent moves a component to position newOrder. An empty newLevelID
// keeps the component in its current level.
func (e *Editor) MoveComponent(id string, newOrder int, newLevelID string) error {
	payload := map[string]any{"id": id, "order": newOrder, "level_id": newLevelID}
	return e.apply(CmdMoveComponent, payload, func(h tree) (tree, error) {
		return moveComponent(h, id, newOrder, newLevelID)
	})
}

func (e *Editor) DeleteComponent(id string) error {
	return e.apply(CmdDeleteComponent, map[string]any{"id": id}, func(h tree) (tree, error) {
		return deleteComponent(h, id)
	})
}
