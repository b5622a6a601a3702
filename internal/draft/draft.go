// Package draft persists serialized editing sessions under a name so an
// author can pick up where they left off.
package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kutay07/ContentLab-sub000/internal/editor"
)

var (
	ErrNotFound    = errors.New("draft not found")
	ErrInvalidName = errors.New("invalid draft name")
)

// Info describes a stored draft.
type Info struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	Size      int64     `json:"size"`
}

// Store keeps drafts keyed by name. Implementations are safe for concurrent
// use.
type Store interface {
	Save(ctx context.Context, name, data string) error
	Load(ctx context.Context, name string) (string, error)
	List(ctx context.Context) ([]Info, error)
	Delete(ctx context.Context, name string) error
}

// ValidateName accepts 1-128 characters of letters, digits, '-', '_' and '.'.
func ValidateName(name string) error {
	if name == "" || len(name) > 128 {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	if strings.Trim(name, ".") == "" {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// SaveEditor serializes ed and stores it as name.
func SaveEditor(ctx context.Context, s Store, name string, ed *editor.Editor) error {
	data, err := ed.Serialize()
	if err != nil {
		return err
	}
	return s.Save(ctx, name, data)
}

// LoadEditor replaces the tree of ed with the draft stored as name. With
// recordHistory the load can be undone.
func LoadEditor(ctx context.Context, s Store, name string, ed *editor.Editor, recordHistory bool) error {
	data, err := s.Load(ctx, name)
	if err != nil {
		return err
	}
	if err := ed.Deserialize(data, recordHistory); err != nil {
		return fmt.Errorf("load draft %s: %w", name, err)
	}
	return nil
}
