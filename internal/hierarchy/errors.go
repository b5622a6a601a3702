package hierarchy

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrInvalid matches every *ValidationError.
	ErrInvalid = errors.New("invalid hierarchy")
)

// Entity kinds used in errors and diff records.
const (
	KindGroup     = "level group"
	KindLevel     = "level"
	KindComponent = "component"
)

// NotFoundError names a group, level or component id that is not in the tree.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// NewNotFound is used by packages that resolve ids on their own.
func NewNotFound(kind, id string) error {
	return notFound(kind, id)
}

// Issue codes reported by Validate.
const (
	CodeDuplicateID = "duplicate_id"
	CodeRequired    = "required"
	CodeOutOfRange  = "out_of_range"
	CodeInvalid     = "invalid"
)

// Issue is one structural violation. Path locates the offending field, e.g.
// "[0].levels[2].title".
type Issue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError carries every violation found, not just the first.
type ValidationError struct {
	Issues []Issue `json:"issues"`
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "invalid hierarchy"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Path, issue.Message))
	}
	return fmt.Sprintf("invalid hierarchy: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Messages returns the issue messages prefixed with their paths.
func (e *ValidationError) Messages() []string {
	out := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		out = append(out, issue.Path+": "+issue.Message)
	}
	return out
}
