package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dpshade/prompt-catalog/internal/catalog"
	"github.com/dpshade/prompt-catalog/internal/favorites"
	"github.com/dpshade/prompt-catalog/internal/models"
	"github.com/dpshade/prompt-catalog/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details string          `json:"details"`
}

type viewBody struct {
	RouteString string `json:"routeString"`
	Mode        string `json:"mode"`
	Heading     string `json:"heading"`
	Inputs      struct {
		ActiveCategory string `json:"activeCategory"`
		Search         string `json:"search"`
		FavoritesOnly  bool   `json:"favoritesOnly"`
	} `json:"inputs"`
	Records []struct {
		ID string `json:"id"`
	} `json:"records"`
	Detail *struct {
		ID string `json:"id"`
	} `json:"detail"`
	Favorites []string `json:"favorites"`
}

func (v viewBody) ids() []string {
	out := []string{}
	for _, r := range v.Records {
		out = append(out, r.ID)
	}
	return out
}

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	cat, err := catalog.New([]*models.Record{
		{ID: "r1", Title: "Welcome email", Description: "Onboarding", Category: "Маркетинг", Prompt: "Hi {{name}}"},
		{ID: "r2", Title: "Content plan", Description: "Monthly posts", Category: "Маркетинг", Prompt: "Plan"},
		{ID: "r7", Title: "Code review", Description: "Find bugs", Category: "Код", Prompt: "Review"},
	})
	require.NoError(t, err)

	store := favorites.NewStore(storage.NewMemoryKV(), "", nil)
	store.Load(context.Background())

	srv, err := NewServer(Config{Catalog: cat, Favorites: store, Version: "test"})
	require.NoError(t, err)
	return srv, srv.Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decodeView(t *testing.T, env envelope) viewBody {
	t.Helper()
	var v viewBody
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t)
	rec, env := do(t, h, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"records": 3`)
}

func TestCategories(t *testing.T) {
	_, h := newTestServer(t)
	rec, env := do(t, h, http.MethodGet, "/api/v1/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cats []struct {
		Name  string `json:"name"`
		Slug  string `json:"slug"`
		Count int    `json:"count"`
		Route string `json:"route"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cats))
	require.Len(t, cats, 2)
	assert.Equal(t, "Код", cats[0].Name)
	assert.Equal(t, "#/category/kod", cats[0].Route)
	assert.Equal(t, "marketing", cats[1].Slug)
}

func TestRecordLookup(t *testing.T) {
	_, h := newTestServer(t)

	rec, env := do(t, h, http.MethodGet, "/api/v1/records/r7", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"Code review"`)

	rec, env = do(t, h, http.MethodGet, "/api/v1/records/r", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.Contains(t, env.Details, "did you mean")
}

func TestResolveIsStateless(t *testing.T) {
	srv, h := newTestServer(t)

	rec, env := do(t, h, http.MethodGet, "/api/v1/resolve?route=%23%2Fcategory%2Fmarketing&q=plan", "")
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, env)
	assert.Equal(t, "#/category/marketing", v.RouteString)
	assert.Equal(t, []string{"r2"}, v.ids())

	assert.Equal(t, "", srv.Controller().View().RouteString)

	rec, env = do(t, h, http.MethodGet, "/api/v1/resolve?favorites=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", env.Code)
}

func TestStateTransitions(t *testing.T) {
	_, h := newTestServer(t)

	_, env := do(t, h, http.MethodPost, "/api/v1/state/category", `{"slug":"marketing"}`)
	v := decodeView(t, env)
	assert.Equal(t, "#/category/marketing", v.RouteString)
	assert.Equal(t, "list", v.Mode)
	assert.Equal(t, []string{"r1", "r2"}, v.ids())

	_, env = do(t, h, http.MethodPost, "/api/v1/state/open", `{"id":"r2"}`)
	v = decodeView(t, env)
	require.NotNil(t, v.Detail)
	assert.Equal(t, "r2", v.Detail.ID)
	assert.Equal(t, "#/prompt/r2", v.RouteString)

	_, env = do(t, h, http.MethodPost, "/api/v1/state/dismiss", "")
	v = decodeView(t, env)
	assert.Nil(t, v.Detail)
	assert.Equal(t, "#/category/marketing", v.RouteString)

	_, env = do(t, h, http.MethodPost, "/api/v1/state/clear-category", "")
	v = decodeView(t, env)
	assert.Equal(t, "", v.RouteString)
	assert.Equal(t, "home", v.Mode)

	_, env = do(t, h, http.MethodPost, "/api/v1/state/navigate", `{"route":"#/prompt/r7"}`)
	v = decodeView(t, env)
	require.NotNil(t, v.Detail)
	assert.Equal(t, "r7", v.Detail.ID)

	_, env = do(t, h, http.MethodGet, "/api/v1/state", "")
	assert.Equal(t, "#/prompt/r7", decodeView(t, env).RouteString)
}

func TestSearchAndFavorites(t *testing.T) {
	_, h := newTestServer(t)

	_, env := do(t, h, http.MethodPost, "/api/v1/state/search", `{"query":"  REVIEW "}`)
	v := decodeView(t, env)
	assert.Equal(t, []string{"r7"}, v.ids())

	_, env = do(t, h, http.MethodPost, "/api/v1/state/favorite", `{"id":"r1"}`)
	assert.Equal(t, "Added to favorites", env.Message)
	assert.Equal(t, []string{"r1"}, decodeView(t, env).Favorites)

	do(t, h, http.MethodPost, "/api/v1/state/search", `{"query":""}`)
	_, env = do(t, h, http.MethodPost, "/api/v1/state/favorites-only", "")
	v = decodeView(t, env)
	assert.True(t, v.Inputs.FavoritesOnly)
	assert.Equal(t, "Favorites", v.Heading)
	assert.Equal(t, []string{"r1"}, v.ids())

	_, env = do(t, h, http.MethodPost, "/api/v1/state/favorite", `{"id":"r1"}`)
	assert.Equal(t, "Removed from favorites", env.Message)
	assert.Empty(t, decodeView(t, env).ids())
}

func TestWhitespaceSearchKeepsListMode(t *testing.T) {
	_, h := newTestServer(t)

	_, env := do(t, h, http.MethodPost, "/api/v1/state/search", `{"query":"   "}`)
	v := decodeView(t, env)
	assert.Equal(t, "list", v.Mode)
	assert.Equal(t, "   ", v.Inputs.Search)
	assert.Len(t, v.ids(), 3)

	rec, env := do(t, h, http.MethodGet, "/api/v1/resolve?q=%20%20", "")
	require.Equal(t, http.StatusOK, rec.Code)
	v = decodeView(t, env)
	assert.Equal(t, "list", v.Mode)
	assert.Len(t, v.ids(), 3)
}

func TestValidationErrors(t *testing.T) {
	_, h := newTestServer(t)

	rec, env := do(t, h, http.MethodPost, "/api/v1/state/open", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", env.Code)

	rec, env = do(t, h, http.MethodPost, "/api/v1/state/category", `{"slug":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", env.Code)

	rec, env = do(t, h, http.MethodPost, "/api/v1/state/favorite", `{"id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestMetricsCountTransitions(t *testing.T) {
	_, h := newTestServer(t)
	do(t, h, http.MethodPost, "/api/v1/state/favorites-only", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `prompt_catalog_view_transitions_total{action="favorites_only",applied="true"} 1`)
	assert.Contains(t, body, `prompt_catalog_catalog_records 3`)
	assert.Contains(t, body, `prompt_catalog_http_requests_total{method="POST",route="/api/v1/state/favorites-only",status="200"} 1`)
}

func TestOpenAPISpec(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var spec map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	paths := spec["paths"].(map[string]interface{})
	assert.Contains(t, paths, "/api/v1/state/favorite")
}

func TestUnknownEndpoint(t *testing.T) {
	_, h := newTestServer(t)
	rec, env := do(t, h, http.MethodGet, "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestStartStopsOnCancel(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.port = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
