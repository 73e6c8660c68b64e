// Package filter narrows the catalog to the records a view shows.
package filter

import (
	"strings"

	"github.com/dpshade/prompt-catalog/internal/models"
	"github.com/dpshade/prompt-catalog/internal/slug"
)

// Inputs are the user-controlled narrowing parameters. An empty
// ActiveCategory means no category is selected.
type Inputs struct {
	ActiveCategory string `json:"activeCategory,omitempty"`
	Search         string `json:"search"`
	FavoritesOnly  bool   `json:"favoritesOnly"`
}

// Query returns the normalized search text: trimmed and lower-cased.
func (in Inputs) Query() string {
	return strings.ToLower(strings.TrimSpace(in.Search))
}

// HasCategory reports whether a category is selected.
func (in Inputs) HasCategory() bool {
	return in.ActiveCategory != ""
}

// Membership answers favorites lookups.
type Membership interface {
	Has(id string) bool
}

// Mode is the layout a view uses.
type Mode int

const (
	// ModeHomeGrid lists categories rather than records.
	ModeHomeGrid Mode = iota
	// ModeList lists the filtered records.
	ModeList
)

func (m Mode) String() string {
	if m == ModeList {
		return "list"
	}
	return "home"
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ModeFor derives the layout from the inputs: a selected category, any search
// text or favorites-only shows the list, otherwise the home grid. Search text
// is checked untrimmed, so whitespace alone lists every record.
func ModeFor(in Inputs) Mode {
	if in.HasCategory() || in.Search != "" || in.FavoritesOnly {
		return ModeList
	}
	return ModeHomeGrid
}

// Apply narrows records in three fixed stages: favorites, then category, then
// search text. Each stage filters the previous stage's result and record
// order is preserved. categories supplies each category's slug; a category
// missing from it is slugified on the fly.
func Apply(records []*models.Record, categories []models.Category, in Inputs, favorites Membership) []*models.Record {
	out := make([]*models.Record, 0, len(records))
	out = append(out, records...)

	if in.FavoritesOnly {
		out = keep(out, func(r *models.Record) bool {
			return favorites != nil && favorites.Has(r.ID)
		})
	}

	if in.HasCategory() {
		slugs := make(map[string]string, len(categories))
		for _, c := range categories {
			slugs[c.Key] = c.Slug
		}
		out = keep(out, func(r *models.Record) bool {
			s, ok := slugs[r.Category]
			if !ok {
				s = slug.Make(r.Category)
			}
			return s == in.ActiveCategory
		})
	}

	if q := in.Query(); q != "" {
		out = keep(out, func(r *models.Record) bool {
			return Matches(r, q)
		})
	}

	return out
}

// Matches reports whether the lower-cased query occurs in the record's title,
// description, category name or any tag.
func Matches(r *models.Record, query string) bool {
	return strings.Contains(strings.ToLower(r.Title), query) ||
		strings.Contains(strings.ToLower(r.Description), query) ||
		strings.Contains(strings.ToLower(r.Category), query) ||
		r.HasTag(query)
}

func keep(records []*models.Record, pred func(*models.Record) bool) []*models.Record {
	out := records[:0]
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}
