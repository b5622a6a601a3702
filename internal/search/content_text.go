package search

import (
	"strings"

	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
)

// ContentText joins the string leaves of c in document order, object keys
// sorted.
func ContentText(c hierarchy.Content) string {
	var parts []string
	collectText(c, &parts)
	return strings.Join(parts, " ")
}

func collectText(c hierarchy.Content, parts *[]string) {
	switch c.Kind() {
	case hierarchy.KindString:
		if s, _ := c.AsString(); strings.TrimSpace(s) != "" {
			*parts = append(*parts, strings.TrimSpace(s))
		}
	case hierarchy.KindArray:
		for i := 0; i < c.Len(); i++ {
			item, _ := c.Index(i)
			collectText(item, parts)
		}
	case hierarchy.KindObject:
		for _, key := range c.Keys() {
			field, _ := c.Field(key)
			collectText(field, parts)
		}
	}
}
