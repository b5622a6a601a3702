package hierarchy

// Repair returns a copy of h with dense order values at every level and nil
// child collections replaced by empty ones. changed is false when h was
// already in repaired form, which makes Repair idempotent.
func Repair(h Hierarchy) (repaired Hierarchy, changed bool) {
	out := h.Clone()
	if out == nil {
		return Hierarchy{}, true
	}
	for gi := range out {
		g := &out[gi]
		if g.Order != gi {
			g.Order = gi
			changed = true
		}
		if g.Levels == nil {
			g.Levels = []Level{}
			changed = true
		}
		for li := range g.Levels {
			l := &g.Levels[li]
			if l.Order != li {
				l.Order = li
				changed = true
			}
			if l.Components == nil {
				l.Components = []Component{}
				changed = true
			}
			for ci := range l.Components {
				if l.Components[ci].Order != ci {
					l.Components[ci].Order = ci
					changed = true
				}
			}
		}
	}
	return out, changed
}

// IsDense reports whether every sibling collection in h is numbered 0..n-1
// in physical order.
func IsDense(h Hierarchy) bool {
	for gi, g := range h {
		if g.Order != gi {
			return false
		}
		for li, l := range g.Levels {
			if l.Order != li {
				return false
			}
			for ci, c := range l.Components {
				if c.Order != ci {
					return false
				}
			}
		}
	}
	return true
}
