// Package catalog loads the prompt catalog and derives its categories.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dpshade/prompt-catalog/internal/errors"
	"github.com/dpshade/prompt-catalog/internal/models"
	"github.com/dpshade/prompt-catalog/internal/slug"
	"github.com/dpshade/prompt-catalog/internal/validation"
)

// fallbackSlug names categories whose display name has no slug characters
const fallbackSlug = "category"

// Catalog is the immutable, validated set of records plus derived categories.
type Catalog struct {
	records    []*models.Record
	byID       map[string]*models.Record
	categories []models.Category
	slugByKey  map[string]string
	bySlug     map[string]int
}

// Load reads the catalog from a file path or an http(s) URL.
func Load(ctx context.Context, source string) (*Catalog, error) {
	data, err := fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	var records []*models.Record
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&records); err != nil {
		return nil, errors.CatalogInvalidError("malformed JSON", err).WithContext("source", source)
	}

	cat, err := New(records)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			appErr.WithContext("source", source)
		}
		return nil, err
	}
	return cat, nil
}

func fetch(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, errors.CatalogUnavailableError(source, err)
		}
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
		req.Header.Set("Accept", "application/json")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, errors.CatalogUnavailableError(source, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, errors.CatalogUnavailableError(source, fmt.Errorf("unexpected status %s", resp.Status))
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.CatalogUnavailableError(source, err)
		}
		return data, nil
	}

	path := strings.TrimPrefix(source, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.CatalogUnavailableError(source, err)
	}
	return data, nil
}

// New validates records and derives the category list. Record order is kept.
func New(records []*models.Record) (*Catalog, error) {
	v := validation.NewValidator()

	c := &Catalog{
		records:   make([]*models.Record, 0, len(records)),
		byID:      make(map[string]*models.Record, len(records)),
		slugByKey: make(map[string]string),
		bySlug:    make(map[string]int),
	}

	for i, rec := range records {
		if rec == nil {
			return nil, errors.CatalogInvalidError(fmt.Sprintf("record %d is null", i), nil)
		}
		if result := v.Struct(rec); !result.Valid {
			return nil, errors.CatalogInvalidError(
				fmt.Sprintf("record %d (%q): %s", i, rec.ID, result.Summary()), nil).
				WithContext("validation_errors", result.Errors)
		}
		if _, dup := c.byID[rec.ID]; dup {
			return nil, errors.CatalogInvalidError(fmt.Sprintf("duplicate id %q", rec.ID), nil)
		}
		c.byID[rec.ID] = rec
		c.records = append(c.records, rec)
	}

	c.deriveCategories()
	return c, nil
}

func (c *Catalog) deriveCategories() {
	index := map[string]int{}
	for _, rec := range c.records {
		i, ok := index[rec.Category]
		if !ok {
			i = len(c.categories)
			index[rec.Category] = i
			c.categories = append(c.categories, models.Category{Key: rec.Category, Name: rec.Category})
		}
		c.categories[i].Count++
		if c.categories[i].Description == "" && rec.CategoryDesc != "" {
			c.categories[i].Description = rec.CategoryDesc
		}
	}

	col := collate.New(language.Russian)
	sort.SliceStable(c.categories, func(i, j int) bool {
		return col.CompareString(c.categories[i].Name, c.categories[j].Name) < 0
	})

	used := map[string]bool{}
	for i := range c.categories {
		base := slug.Make(c.categories[i].Name)
		if base == "" {
			base = fallbackSlug
		}
		s := base
		for n := 2; used[s]; n++ {
			s = fmt.Sprintf("%s-%d", base, n)
		}
		used[s] = true

		c.categories[i].Slug = s
		c.slugByKey[c.categories[i].Key] = s
		c.bySlug[s] = i
	}
}

// Records returns the records in catalog order.
func (c *Catalog) Records() []*models.Record {
	out := make([]*models.Record, len(c.records))
	copy(out, c.records)
	return out
}

// Categories returns the derived categories in collation order.
func (c *Catalog) Categories() []models.Category {
	out := make([]models.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Record looks up a record by id.
func (c *Catalog) Record(id string) (*models.Record, bool) {
	rec, ok := c.byID[id]
	return rec, ok
}

// CategoryBySlug looks up a category by its slug.
func (c *Catalog) CategoryBySlug(s string) (models.Category, bool) {
	i, ok := c.bySlug[s]
	if !ok {
		return models.Category{}, false
	}
	return c.categories[i], true
}

// SlugFor returns the slug assigned to a raw category name.
func (c *Catalog) SlugFor(key string) (string, bool) {
	s, ok := c.slugByKey[key]
	return s, ok
}

// Suggest returns up to n record ids fuzzily matching query by id or title.
func (c *Catalog) Suggest(query string, n int) []string {
	query = strings.TrimSpace(query)
	if query == "" || n <= 0 {
		return nil
	}

	searchStrings := make([]string, len(c.records))
	for i, rec := range c.records {
		searchStrings[i] = rec.ID + " " + rec.Title
	}

	var ids []string
	for _, match := range fuzzy.Find(query, searchStrings) {
		ids = append(ids, c.records[match.Index].ID)
		if len(ids) == n {
			break
		}
	}
	return ids
}

// NotFound builds the NOT_FOUND error for id, listing close matches.
func (c *Catalog) NotFound(id string) *errors.AppError {
	appErr := errors.NotFoundError(fmt.Sprintf("Record %q", id))
	if suggestions := c.Suggest(id, 3); len(suggestions) > 0 {
		appErr.WithDetails("did you mean: " + strings.Join(suggestions, ", "))
		appErr.WithContext("suggestions", suggestions)
	}
	return appErr
}
