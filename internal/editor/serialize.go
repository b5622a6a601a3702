package editor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
)

// ErrMalformedDraft matches every SerializationError.
var ErrMalformedDraft = errors.New("malformed draft")

// SerializationError reports a draft that could not be decoded.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("deserialize draft: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

func (e *SerializationError) Is(target error) bool {
	return target == ErrMalformedDraft
}

// Envelope is the serialized form of an editing session. Commands is a
// diagnostic log: the commands carried over from the draft that was loaded,
// followed by those of the current session, capped at the history limit.
// It is never replayed.
type Envelope struct {
	Hierarchy hierarchy.Hierarchy `json:"hierarchy"`
	Commands  []Command           `json:"commands"`
	Timestamp time.Time           `json:"timestamp"`
}

// Serialize encodes the live tree and the command log.
func (e *Editor) Serialize() (string, error) {
	env := Envelope{
		Hierarchy: e.tree,
		Commands:  e.CommandLog(),
		Timestamp: e.now().UTC(),
	}
	if env.Hierarchy == nil {
		env.Hierarchy = hierarchy.Hierarchy{}
	}
	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("serialize draft: %w", err)
	}
	return string(data), nil
}

// CommandLog returns the carried-over commands followed by the undoable
// commands of this session, keeping the most recent history-limit entries.
func (e *Editor) CommandLog() []Command {
	log := make([]Command, 0, len(e.carried)+len(e.commands))
	log = append(log, e.carried...)
	log = append(log, e.commands...)
	if len(log) > e.limit {
		log = log[len(log)-e.limit:]
	}
	return cloneCommands(log)
}

// Deserialize replaces the live tree with the one encoded in data. Both the
// envelope produced by Serialize and a bare list of groups are accepted.
// When recordHistory is set the replacement is a single undoable step;
// otherwise the history stacks are left alone and the envelope's commands
// become the carried-over part of CommandLog. A decode failure leaves the
// editor untouched.
func (e *Editor) Deserialize(data string, recordHistory bool) error {
	next, carried, err := decodeDraft([]byte(data))
	if err != nil {
		return err
	}
	if recordHistory {
		return e.apply(CmdDeserialize, map[string]any{"groups": len(next)}, func(tree) (tree, error) {
			return next, nil
		})
	}
	e.tree = next
	e.carried = carried
	e.logger.Debug("draft loaded", zap.Int("groups", len(next)), zap.Int("commands", len(carried)))
	e.notify()
	return nil
}

func decodeDraft(data []byte) (hierarchy.Hierarchy, []Command, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil, &SerializationError{Err: errors.New("empty input")}
	}

	var (
		root     json.RawMessage
		commands []Command
	)
	switch trimmed[0] {
	case '[':
		root = trimmed
	case '{':
		var env struct {
			Hierarchy json.RawMessage `json:"hierarchy"`
			Commands  []Command       `json:"commands"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, nil, &SerializationError{Err: err}
		}
		root = bytes.TrimSpace(env.Hierarchy)
		if len(root) == 0 || root[0] != '[' {
			return nil, nil, &SerializationError{Err: errors.New(`field "hierarchy" must be a list`)}
		}
		commands = env.Commands
	default:
		return nil, nil, &SerializationError{Err: errors.New("root must be an object or a list")}
	}

	var h hierarchy.Hierarchy
	if err := json.Unmarshal(root, &h); err != nil {
		return nil, nil, &SerializationError{Err: err}
	}
	if h == nil {
		h = hierarchy.Hierarchy{}
	}
	return h, commands, nil
}
