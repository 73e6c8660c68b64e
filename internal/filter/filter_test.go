package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/dpshade/prompt-catalog/internal/models"
)

type set map[string]bool

func (s set) Has(id string) bool { return s[id] }

func fixture() ([]*models.Record, []models.Category) {
	records := []*models.Record{
		{ID: "r1", Title: "Welcome letter", Description: "Onboarding email", Category: "Маркетинг", Tags: []string{"Email-рассылка", "onboarding"}},
		{ID: "r2", Title: "Ad copy", Description: "Short banner text", Category: "Маркетинг", Tags: []string{"ads"}},
		{ID: "r7", Title: "Code review", Description: "Review a pull request", Category: "Код", Tags: []string{"review"}},
	}
	categories := []models.Category{
		{Key: "Код", Slug: "kod", Name: "Код", Count: 1},
		{Key: "Маркетинг", Slug: "marketing", Name: "Маркетинг", Count: 2},
	}
	return records, categories
}

func ids(records []*models.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestApplyCategory(t *testing.T) {
	records, categories := fixture()
	got := Apply(records, categories, Inputs{ActiveCategory: "marketing"}, set{})
	if diff := cmp.Diff([]string{"r1", "r2"}, ids(got)); diff != "" {
		t.Errorf("category filter mismatch (-want +got):\n%s", diff)
	}
}

func TestApplySearchMatchesTag(t *testing.T) {
	records, categories := fixture()
	got := Apply(records, categories, Inputs{Search: "email"}, set{})
	assert.Equal(t, []string{"r1"}, ids(got))

	got = Apply(records, categories, Inputs{Search: "  РАССЫЛКА "}, set{})
	assert.Equal(t, []string{"r1"}, ids(got))
}

func TestApplySearchFields(t *testing.T) {
	records, categories := fixture()
	tests := []struct {
		query string
		want  []string
	}{
		{"review", []string{"r7"}},
		{"banner", []string{"r2"}},
		{"код", []string{"r7"}},
		{"маркетинг", []string{"r1", "r2"}},
		{"nothing matches this", []string{}},
	}
	for _, tt := range tests {
		got := Apply(records, categories, Inputs{Search: tt.query}, set{})
		assert.Equal(t, tt.want, ids(got), "query %q", tt.query)
	}
}

func TestApplyFavoritesOnly(t *testing.T) {
	records, categories := fixture()

	got := Apply(records, categories, Inputs{FavoritesOnly: true}, set{})
	assert.Empty(t, got)

	got = Apply(records, categories, Inputs{FavoritesOnly: true}, set{"r7": true, "gone": true})
	assert.Equal(t, []string{"r7"}, ids(got))

	got = Apply(records, categories, Inputs{FavoritesOnly: true}, nil)
	assert.Empty(t, got)
}

func TestApplyIsConjunctive(t *testing.T) {
	records, categories := fixture()
	favs := set{"r1": true, "r7": true}

	for _, cat := range []string{"", "marketing", "kod"} {
		base := Apply(records, categories, Inputs{ActiveCategory: cat}, favs)
		for _, q := range []string{"", "e", "email", "review", "zzz"} {
			narrowed := Apply(records, categories, Inputs{ActiveCategory: cat, Search: q}, favs)
			assert.Subset(t, ids(base), ids(narrowed), "category %q search %q", cat, q)

			fav := Apply(records, categories, Inputs{ActiveCategory: cat, Search: q, FavoritesOnly: true}, favs)
			assert.Subset(t, ids(narrowed), ids(fav), "favorites-only for category %q search %q", cat, q)
		}
	}
}

func TestApplyPreservesOrderAndInput(t *testing.T) {
	records, categories := fixture()
	got := Apply(records, categories, Inputs{Search: "e"}, set{})
	assert.Equal(t, []string{"r1", "r2", "r7"}, ids(got))
	assert.Equal(t, []string{"r1", "r2", "r7"}, ids(records), "input slice must not be reordered")
}

func TestApplyUnknownCategoryFallsBackToSlugify(t *testing.T) {
	records, _ := fixture()
	got := Apply(records, nil, Inputs{ActiveCategory: "kod"}, set{})
	assert.Equal(t, []string{"r7"}, ids(got))
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, ModeHomeGrid, ModeFor(Inputs{}))
	assert.Equal(t, ModeList, ModeFor(Inputs{Search: "   "}))
	assert.Equal(t, ModeList, ModeFor(Inputs{Search: "x"}))
	assert.Equal(t, ModeList, ModeFor(Inputs{ActiveCategory: "kod"}))
	assert.Equal(t, ModeList, ModeFor(Inputs{FavoritesOnly: true}))
}
