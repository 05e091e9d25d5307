package app

import (
	"strings"

	"estates_console/internal/domain"
)

// Query narrows a listing collection the way the inventory view does.
type Query struct {
	Search   string
	Category string // "" or "all" matches everything
}

// Filter keeps listings whose title, location, or id contains Search
// (case-insensitive) and whose category matches. Order is preserved.
func Filter(ls []domain.Listing, q Query) []domain.Listing {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	cat := strings.ToLower(strings.TrimSpace(q.Category))
	out := make([]domain.Listing, 0, len(ls))
	for _, l := range ls {
		if cat != "" && cat != "all" && string(l.Category) != cat {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(l.Title), needle) &&
			!strings.Contains(strings.ToLower(l.Location), needle) &&
			!strings.Contains(strings.ToLower(l.ID), needle) {
			continue
		}
		out = append(out, l)
	}
	return out
}
