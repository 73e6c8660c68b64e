package ui

import (
	"github.com/dpshade/prompt-catalog/internal/models"
)

const (
	markerFavorite    = "★"
	markerNotFavorite = "☆"

	defaultCategoryDesc = "Prompt templates for everyday tasks"
)

// recordItem adapts a record to list.DefaultItem with its favorite marker
type recordItem struct {
	record   *models.Record
	favorite bool
}

func (i recordItem) Title() string {
	marker := markerNotFavorite
	if i.favorite {
		marker = StyleFavorite.Render(markerFavorite)
	}
	return marker + " " + i.record.ItemTitle()
}

func (i recordItem) Description() string { return i.record.ItemDescription() }

func (i recordItem) FilterValue() string { return i.record.FilterValue() }

// categoryItem is one card of the home grid
type categoryItem struct {
	category models.Category
}

func (i categoryItem) Title() string { return i.category.Name }

func (i categoryItem) Description() string {
	desc := i.category.Description
	if desc == "" {
		desc = defaultCategoryDesc
	}
	return desc + " • " + i.category.CountLabel()
}

func (i categoryItem) FilterValue() string { return i.category.FilterValue() }
