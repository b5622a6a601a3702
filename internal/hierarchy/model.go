// Package hierarchy defines the three-level content tree edited by ContentLab:
// level groups own levels, levels own components.
package hierarchy

// Component is a single piece of level content. Type is a key into the
// external component catalog; Content is passed through untouched.
type Component struct {
	ID          string  `json:"id" validate:"required"`
	Type        string  `json:"type" validate:"required"`
	DisplayName string  `json:"display_name"`
	Content     Content `json:"content"`
	Order       int     `json:"order" validate:"min=0"`
}

type Level struct {
	ID         string      `json:"id" validate:"required"`
	Title      string      `json:"title" validate:"required"`
	IconKey    *string     `json:"icon_key"`
	IconFamily *string     `json:"icon_family"`
	XPReward   int         `json:"xp_reward" validate:"min=0"`
	Order      int         `json:"order" validate:"min=0"`
	Components []Component `json:"components"`
}

type LevelGroup struct {
	ID     string  `json:"id" validate:"required"`
	Title  string  `json:"title" validate:"required"`
	Order  int     `json:"order" validate:"min=0"`
	Levels []Level `json:"levels"`
}

// Hierarchy is the root collection. Its JSON form is a plain list.
type Hierarchy []LevelGroup

// Counts returns the number of groups, levels and components in h.
func (h Hierarchy) Counts() (groups, levels, components int) {
	groups = len(h)
	for _, g := range h {
		levels += len(g.Levels)
		for _, l := range g.Levels {
			components += len(l.Components)
		}
	}
	return groups, levels, components
}

// FindGroup returns the index of the group with the given id.
func (h Hierarchy) FindGroup(id string) (int, bool) {
	for i := range h {
		if h[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// FindLevel scans the whole tree, level ids being globally unique.
func (h Hierarchy) FindLevel(id string) (gi, li int, ok bool) {
	for gi := range h {
		for li := range h[gi].Levels {
			if h[gi].Levels[li].ID == id {
				return gi, li, true
			}
		}
	}
	return -1, -1, false
}

func (h Hierarchy) FindComponent(id string) (gi, li, ci int, ok bool) {
	for gi := range h {
		for li := range h[gi].Levels {
			components := h[gi].Levels[li].Components
			for ci := range components {
				if components[ci].ID == id {
					return gi, li, ci, true
				}
			}
		}
	}
	return -1, -1, -1, false
}

// Shallow returns a copy of g without its levels.
func (g LevelGroup) Shallow() LevelGroup {
	g.Levels = nil
	return g
}

// Shallow returns a copy of l without its components.
func (l Level) Shallow() Level {
	l.Components = nil
	return l
}

// StringPtr is a convenience for the nullable icon fields.
func StringPtr(s string) *string {
	return &s
}

// EqualOptional compares two nullable strings by value.
func EqualOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
