package editor

import (
	"errors"
	"slices"

	"go.uber.org/zap"
)

type transaction struct {
	label    string
	entry    tree
	commands []Command
}

// apply is the single entry point for every mutation. It runs op against the
// live tree and, only if op succeeds, snapshots the old tree, records the
// command, invalidates redo and notifies listeners. A failing op leaves every
// piece of editor state untouched.
func (e *Editor) apply(cmdType string, payload any, op func(tree) (tree, error)) error {
	next, err := op(e.tree)
	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		e.logger.Debug("mutation rejected", zap.String("command", cmdType), zap.Error(err))
		return err
	}

	cmd := e.newCommand(cmdType, payload)
	if e.tx != nil {
		e.tx.commands = append(e.tx.commands, cmd)
		e.tree = next
		return nil
	}

	e.pushUndo(e.tree, cmd)
	e.ClearRedoHistory()
	e.tree = next
	e.logger.Debug("hierarchy mutated", zap.String("command", cmdType), zap.Int("undo_depth", len(e.undo)))
	e.notify()
	return nil
}

func (e *Editor) pushUndo(snapshot tree, cmd Command) {
	e.undo = append(e.undo, snapshot)
	e.commands = append(e.commands, cmd)
	if len(e.undo) > e.limit {
		e.undo = slices.Delete(e.undo, 0, 1)
	}
	if len(e.commands) > e.limit {
		e.commands = slices.Delete(e.commands, 0, 1)
	}
}

// pushRedo keeps the most recently undone command at the front of
// redoCommands and its snapshot at the top of redo. Eviction drops the
// furthest future on both sides.
func (e *Editor) pushRedo(snapshot tree, cmd Command) {
	e.redo = append(e.redo, snapshot)
	e.redoCommands = slices.Insert(e.redoCommands, 0, cmd)
	if len(e.redo) > e.limit {
		e.redo = slices.Delete(e.redo, 0, 1)
	}
	if len(e.redoCommands) > e.limit {
		e.redoCommands = e.redoCommands[:e.limit]
	}
}

// Undo restores the tree before the most recent edit. It reports false and
// does nothing when there is nothing to undo or a transaction is open.
func (e *Editor) Undo() bool {
	if !e.undoOne() {
		return false
	}
	e.notify()
	return true
}

// Redo re-applies the most recently undone edit.
func (e *Editor) Redo() bool {
	if !e.redoOne() {
		return false
	}
	e.notify()
	return true
}

// UndoSteps undoes up to n edits and notifies listeners once. It returns the
// number of steps taken.
func (e *Editor) UndoSteps(n int) int {
	steps := 0
	for steps < n && e.undoOne() {
		steps++
	}
	if steps > 0 {
		e.notify()
	}
	return steps
}

func (e *Editor) RedoSteps(n int) int {
	steps := 0
	for steps < n && e.redoOne() {
		steps++
	}
	if steps > 0 {
		e.notify()
	}
	return steps
}

func (e *Editor) undoOne() bool {
	if e.tx != nil || len(e.undo) == 0 || len(e.commands) == 0 {
		return false
	}
	prev := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	cmd := e.commands[len(e.commands)-1]
	e.commands = e.commands[:len(e.commands)-1]

	e.pushRedo(e.tree, cmd)
	e.tree = prev
	return true
}

func (e *Editor) redoOne() bool {
	if e.tx != nil || len(e.redo) == 0 || len(e.redoCommands) == 0 {
		return false
	}
	next := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	cmd := e.redoCommands[0]
	e.redoCommands = e.redoCommands[1:]

	e.pushUndo(e.tree, cmd)
	e.tree = next
	return true
}

func (e *Editor) ClearUndoHistory() {
	e.undo = nil
	e.commands = nil
}

func (e *Editor) ClearRedoHistory() {
	e.redo = nil
	e.redoCommands = nil
}

func (e *Editor) CanUndo() bool {
	return e.tx == nil && len(e.undo) > 0 && len(e.commands) > 0
}

func (e *Editor) CanRedo() bool {
	return e.tx == nil && len(e.redo) > 0 && len(e.redoCommands) > 0
}

// History returns the undoable commands, oldest first.
func (e *Editor) History() []Command {
	return cloneCommands(e.commands)
}

// RedoHistory returns the redoable commands, next redo first.
func (e *Editor) RedoHistory() []Command {
	return cloneCommands(e.redoCommands)
}

func cloneCommands(cmds []Command) []Command {
	out := make([]Command, len(cmds))
	for i, cmd := range cmds {
		out[i] = cmd.clone()
	}
	return out
}

// BeginTransaction groups the following edits into one undo step. Calling it
// while a transaction is open does nothing.
func (e *Editor) BeginTransaction(label string) {
	if e.tx != nil {
		return
	}
	e.tx = &transaction{label: label, entry: e.tree}
}

func (e *Editor) InTransaction() bool {
	return e.tx != nil
}

// EndTransaction records the open transaction as a single undo step holding
// the tree from before it began, then notifies listeners once. A transaction
// without edits records nothing.
func (e *Editor) EndTransaction() {
	tx := e.tx
	if tx == nil {
		return
	}
	e.tx = nil
	if len(tx.commands) == 0 {
		return
	}
	cmd := e.newCommand(CmdTransaction, map[string]any{
		"label":    tx.label,
		"commands": tx.commands,
	})
	e.pushUndo(tx.entry, cmd)
	e.ClearRedoHistory()
	e.logger.Debug("transaction committed",
		zap.String("label", tx.label),
		zap.Int("commands", len(tx.commands)),
	)
	e.notify()
}

// RollbackTransaction discards every edit made since BeginTransaction.
// Listeners never saw those edits, so none are notified.
func (e *Editor) RollbackTransaction() {
	tx := e.tx
	if tx == nil {
		return
	}
	e.tx = nil
	e.tree = tx.entry
}
