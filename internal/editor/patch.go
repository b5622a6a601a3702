package editor

import "github.com/Kutay07/ContentLab-sub000/internal/hierarchy"

// Field is an optional patch value. The zero Field is "not set".
type Field[T any] struct {
	value T
	set   bool
}

// Set marks a patch field as present.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

func (f Field[T]) Get() (T, bool) {
	return f.value, f.set
}

func (f Field[T]) IsSet() bool {
	return f.set
}

type GroupPatch struct {
	Title Field[string]
	Order Field[int]
}

type LevelPatch struct {
	Title      Field[string]
	IconKey    Field[*string]
	IconFamily Field[*string]
	XPReward   Field[int]
	Order      Field[int]
}

type ComponentPatch struct {
	Type        Field[string]
	DisplayName Field[string]
	Content     Field[hierarchy.Content]
	Order       Field[int]
}

// changes lists the set fields for the command log.
func (p GroupPatch) changes() map[string]any {
	out := map[string]any{}
	putField(out, "title", p.Title)
	putField(out, "order", p.Order)
	return out
}

func (p LevelPatch) changes() map[string]any {
	out := map[string]any{}
	putField(out, "title", p.Title)
	putField(out, "icon_key", p.IconKey)
	putField(out, "icon_family", p.IconFamily)
	putField(out, "xp_reward", p.XPReward)
	putField(out, "order", p.Order)
	return out
}

func (p ComponentPatch) changes() map[string]any {
	out := map[string]any{}
	putField(out, "type", p.Type)
	putField(out, "display_name", p.DisplayName)
	putField(out, "content", p.Content)
	putField(out, "order", p.Order)
	return out
}

func putField[T any](out map[string]any, name string, f Field[T]) {
	if v, ok := f.Get(); ok {
		out[name] = v
	}
}

type insertion struct {
	order *int
}

// InsertOption configures where an added node lands.
type InsertOption func(*insertion)

// AtOrder inserts before the first sibling whose order is >= order. Without
// it, added nodes are appended.
func AtOrder(order int) InsertOption {
	return func(in *insertion) {
		in.order = &order
	}
}

func insertionOrder(opts []InsertOption) *int {
	var in insertion
	for _, opt := range opts {
		opt(&in)
	}
	return in.order
}
