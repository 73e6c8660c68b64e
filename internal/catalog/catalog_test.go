package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/prompt-catalog/internal/errors"
	"github.com/dpshade/prompt-catalog/internal/models"
)

func fixture() []*models.Record {
	return []*models.Record{
		{ID: "r1", Title: "Welcome email", Category: "Маркетинг", CategoryDesc: ""},
		{ID: "r7", Title: "Code review", Category: "Код", CategoryDesc: "Для разработчиков"},
		{ID: "r2", Title: "Content plan", Category: "Маркетинг", CategoryDesc: "Продвижение"},
	}
}

const fixtureJSON = `[
  {"id":"r1","title":"Welcome email","category":"Маркетинг"},
  {"id":"r7","title":"Code review","category":"Код"},
  {"id":"r2","title":"Content plan","category":"Маркетинг"}
]`

func TestNewDerivesCategories(t *testing.T) {
	cat, err := New(fixture())
	require.NoError(t, err)

	want := []models.Category{
		{Key: "Код", Slug: "kod", Name: "Код", Description: "Для разработчиков", Count: 1},
		{Key: "Маркетинг", Slug: "marketing", Name: "Маркетинг", Description: "Продвижение", Count: 2},
	}
	if diff := cmp.Diff(want, cat.Categories()); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}

	ids := []string{}
	for _, r := range cat.Records() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"r1", "r7", "r2"}, ids, "record order is preserved")

	s, ok := cat.SlugFor("Маркетинг")
	assert.True(t, ok)
	assert.Equal(t, "marketing", s)

	c, ok := cat.CategoryBySlug("kod")
	require.True(t, ok)
	assert.Equal(t, "Код", c.Name)

	_, ok = cat.CategoryBySlug("nope")
	assert.False(t, ok)

	rec, ok := cat.Record("r7")
	require.True(t, ok)
	assert.Equal(t, "Code review", rec.Title)
}

func TestNewSlugCollisions(t *testing.T) {
	cat, err := New([]*models.Record{
		{ID: "a", Title: "A", Category: "Data Science"},
		{ID: "b", Title: "B", Category: "data-science"},
		{ID: "c", Title: "C", Category: "!!!"},
	})
	require.NoError(t, err)

	slugs := map[string]string{}
	for _, c := range cat.Categories() {
		slugs[c.Key] = c.Slug
	}
	assert.Equal(t, "category", slugs["!!!"])
	assert.ElementsMatch(t, []string{"data-science", "data-science-2"},
		[]string{slugs["Data Science"], slugs["data-science"]})
}

func TestNewRejectsInvalidRecords(t *testing.T) {
	_, err := New([]*models.Record{{ID: "r1", Title: "x"}})
	assert.True(t, errors.HasCode(err, errors.ErrCodeCatalogInvalid))

	_, err = New([]*models.Record{
		{ID: "r1", Title: "x", Category: "a"},
		{ID: "r1", Title: "y", Category: "b"},
	})
	assert.True(t, errors.HasCode(err, errors.ErrCodeCatalogInvalid))
	assert.Contains(t, err.Error(), "duplicate id")

	_, err = New([]*models.Record{nil})
	assert.True(t, errors.HasCode(err, errors.ErrCodeCatalogInvalid))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	require.NoError(t, os.WriteFile(path, []byte(fixtureJSON), 0644))

	cat, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, cat.Len())

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeCatalogUnavailable))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"id":`), 0644))
	_, err = Load(context.Background(), bad)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCatalogInvalid))
}

func TestLoadHTTP(t *testing.T) {
	var gotCache, gotPragma string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		gotCache = r.Header.Get("Cache-Control")
		gotPragma = r.Header.Get("Pragma")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fixtureJSON))
	}))
	defer ts.Close()

	cat, err := Load(context.Background(), ts.URL+"/data/prompts.json")
	require.NoError(t, err)
	assert.Equal(t, 3, cat.Len())
	assert.Equal(t, "no-cache", gotCache)
	assert.Equal(t, "no-cache", gotPragma)

	_, err = Load(context.Background(), ts.URL+"/missing")
	assert.True(t, errors.HasCode(err, errors.ErrCodeCatalogUnavailable))
}

func TestSampleCatalogLoads(t *testing.T) {
	cat, err := Load(context.Background(), filepath.Join("..", "..", "data", "prompts.json"))
	require.NoError(t, err)

	_, ok := cat.CategoryBySlug("marketing")
	assert.True(t, ok)
	_, ok = cat.CategoryBySlug("kod")
	assert.True(t, ok)
	_, ok = cat.Record("r7")
	assert.True(t, ok)
}

func TestSuggestAndNotFound(t *testing.T) {
	cat, err := New(fixture())
	require.NoError(t, err)

	assert.Equal(t, []string{"r7"}, cat.Suggest("codrev", 3))
	assert.Nil(t, cat.Suggest("", 3))

	nf := cat.NotFound("welcom")
	assert.Equal(t, errors.ErrCodeNotFound, nf.Code)
	assert.Contains(t, nf.Details, "r1")
}
