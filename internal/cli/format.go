package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dpshade/prompt-catalog/internal/errors"
	"github.com/dpshade/prompt-catalog/internal/filter"
	"github.com/dpshade/prompt-catalog/internal/models"
	"github.com/dpshade/prompt-catalog/internal/renderer"
	"github.com/dpshade/prompt-catalog/internal/ui"
	"github.com/dpshade/prompt-catalog/internal/viewstate"
)

func (c *CLI) writeJSON(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.InternalError("Failed to encode JSON").WithDetails(err.Error())
	}
	return nil
}

func unknownFormat(format string) error {
	return errors.InvalidInputError(fmt.Sprintf("Unknown format %q", format))
}

func marker(favorite bool) string {
	if favorite {
		return "★"
	}
	return "☆"
}

// formatRecords formats records for output
func (c *CLI) formatRecords(records []*models.Record, favorites []string, format string) error {
	fav := make(map[string]bool, len(favorites))
	for _, id := range favorites {
		fav[id] = true
	}

	switch format {
	case "json":
		return c.writeJSON(records)
	case "ids":
		for _, r := range records {
			fmt.Fprintln(c.out, r.ID)
		}
	case "table":
		fmt.Fprintf(c.out, "%-2s %-12s %-32s %s\n", "", "ID", "Title", "Category")
		fmt.Fprintln(c.out, strings.Repeat("-", 72))
		for _, r := range records {
			fmt.Fprintf(c.out, "%-2s %-12s %-32s %s\n", marker(fav[r.ID]), r.ID, truncate(r.Title, 32), r.Category)
		}
	case "text", "":
		if len(records) == 0 {
			fmt.Fprintln(c.out, "No records match.")
			return nil
		}
		for _, r := range records {
			fmt.Fprintf(c.out, "%s %s - %s\n", marker(fav[r.ID]), r.ID, r.Title)
			if r.Description != "" {
				fmt.Fprintf(c.out, "  %s\n", r.Description)
			}
			fmt.Fprintf(c.out, "  Category: %s\n", r.Category)
			if len(r.Tags) > 0 {
				fmt.Fprintf(c.out, "  Tags: %s\n", strings.Join(r.Tags, ", "))
			}
			fmt.Fprintln(c.out)
		}
	default:
		return unknownFormat(format)
	}
	return nil
}

// formatCategories formats categories for output
func (c *CLI) formatCategories(categories []models.Category, format string) error {
	switch format {
	case "json":
		return c.writeJSON(categories)
	case "text", "":
		for _, cat := range categories {
			fmt.Fprintf(c.out, "%-24s %-20s %s\n", cat.Slug, cat.Name, cat.CountLabel())
		}
	default:
		return unknownFormat(format)
	}
	return nil
}

// formatRecord formats a single record for output
func (c *CLI) formatRecord(rec *models.Record, favorite bool, format string) error {
	r := renderer.NewRenderer(rec)
	switch format {
	case "json":
		return c.writeJSON(rec)
	case "markdown":
		rendered, err := ui.RenderMarkdown(r.RenderMarkdown(), 80)
		if err != nil {
			return errors.InternalError("Failed to render markdown").WithDetails(err.Error())
		}
		fmt.Fprint(c.out, rendered)
	case "raw":
		fmt.Fprint(c.out, r.RenderMarkdown())
	case "text", "":
		fmt.Fprintf(c.out, "ID: %s %s\n", rec.ID, marker(favorite))
		fmt.Fprintf(c.out, "Title: %s\n", rec.Title)
		fmt.Fprintf(c.out, "Category: %s\n", rec.Category)
		if rec.Description != "" {
			fmt.Fprintf(c.out, "Description: %s\n", rec.Description)
		}
		if len(rec.Tags) > 0 {
			fmt.Fprintf(c.out, "Tags: %s\n", strings.Join(rec.Tags, ", "))
		}
		fmt.Fprintf(c.out, "\nPrompt:\n%s\n", rec.Prompt)
		fmt.Fprintf(c.out, "\nVariables:\n%s\n", r.VariablesTemplate())
	default:
		return unknownFormat(format)
	}
	return nil
}

// formatView prints a derived view
func (c *CLI) formatView(v viewstate.View, format string) error {
	switch format {
	case "json":
		return c.writeJSON(v)
	case "text", "":
	default:
		return unknownFormat(format)
	}

	routeString := v.RouteString
	if routeString == "" {
		routeString = `""`
	}
	fmt.Fprintf(c.out, "Route: %s\n", routeString)
	fmt.Fprintf(c.out, "Mode: %s\n", v.Mode)
	if v.Detail != nil {
		fmt.Fprintf(c.out, "Detail: %s - %s\n", v.Detail.ID, v.Detail.Title)
	}
	if v.Mode == filter.ModeHomeGrid {
		fmt.Fprintf(c.out, "Categories: %d\n", len(v.Categories))
		for _, cat := range v.Categories {
			fmt.Fprintf(c.out, "  %s (%s)\n", cat.Name, cat.CountLabel())
		}
		return nil
	}
	fmt.Fprintf(c.out, "Heading: %s (%d)\n", v.Heading, len(v.Records))
	for _, r := range v.Records {
		fmt.Fprintf(c.out, "  %s %s - %s\n", marker(v.IsFavorite(r.ID)), r.ID, r.Title)
	}
	return nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
