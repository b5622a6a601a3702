package hierarchy

import "slices"

// Clone returns a deep copy of h. Nil child collections stay nil and empty
// ones stay empty, so a clone is always reflect.DeepEqual to its source.
// Content values are immutable and therefore shared.
func (h Hierarchy) Clone() Hierarchy {
	if h == nil {
		return nil
	}
	out := make(Hierarchy, len(h))
	for i, g := range h {
		out[i] = g.Clone()
	}
	return out
}

func (g LevelGroup) Clone() LevelGroup {
	levels := slices.Clone(g.Levels)
	for i := range levels {
		levels[i] = levels[i].Clone()
	}
	g.Levels = levels
	return g
}

func (l Level) Clone() Level {
	l.IconKey = cloneString(l.IconKey)
	l.IconFamily = cloneString(l.IconFamily)
	l.Components = slices.Clone(l.Components)
	return l
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
