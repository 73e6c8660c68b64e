package models

import (
	"fmt"
	"strings"
)

// Record is a single catalog prompt. Records are immutable once loaded.
type Record struct {
	ID           string     `json:"id" validate:"required"`
	Title        string     `json:"title" validate:"required"`
	Description  string     `json:"description"`
	Category     string     `json:"category" validate:"required"`
	CategoryDesc string     `json:"categoryDesc,omitempty"`
	Tags         []string   `json:"tags"`
	Prompt       string     `json:"prompt"`
	Variables    []Variable `json:"variables" validate:"dive"`
	Instructions []string   `json:"instructions"`
}

// Variable is a named placeholder referenced from the prompt text as {{name}}.
type Variable struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Example     string `json:"example,omitempty"`
}

// Category is derived from the records that reference it.
type Category struct {
	Key         string `json:"key"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Count       int    `json:"count"`
}

// List presentation helpers. The ui package wraps records in a list.Item
// because Title and Description are already fields here.

// FilterValue returns the value used for filtering in lists
func (r *Record) FilterValue() string {
	return cleanString(r.Title)
}

// ItemTitle returns the single-line title shown in lists
func (r *Record) ItemTitle() string {
	if r.Title != "" {
		return cleanString(r.Title)
	}
	return cleanString(r.ID)
}

// ItemDescription returns the one-line summary shown under the title in lists
func (r *Record) ItemDescription() string {
	var parts []string

	if r.Description != "" {
		summary := truncate(cleanString(r.Description), 60)
		if summary != "" {
			parts = append(parts, summary)
		}
	}

	if tags := joinTags(r.Tags); tags != "" {
		parts = append(parts, "Tags: "+tags)
	}

	return truncate(strings.Join(parts, " • "), 100)
}

// HasTag reports whether any tag contains the lower-cased needle.
func (r *Record) HasTag(needle string) bool {
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// FilterValue satisfies list.Item for categories
func (c Category) FilterValue() string {
	return cleanString(c.Name)
}

// CountLabel renders the record count shown on home grid cards
func (c Category) CountLabel() string {
	if c.Count == 1 {
		return "1 prompt"
	}
	return fmt.Sprintf("%d prompts", c.Count)
}

// cleanString removes problematic characters that might cause rendering issues
func cleanString(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(' ')
		} else if r >= 32 && r != 127 {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// truncate shortens s to at most max runes, marking the cut with "..."
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
