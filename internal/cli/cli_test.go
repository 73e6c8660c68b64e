package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/dpshade/prompt-catalog/internal/errors"
)

const testCatalog = `[
  {"id": "r1", "title": "Welcome email", "description": "Onboarding", "category": "Маркетинг",
   "tags": ["Email-рассылка"], "prompt": "Hi {{name}}", "variables": [{"name": "name"}]},
  {"id": "r2", "title": "Content plan", "category": "Маркетинг", "prompt": "Plan"},
  {"id": "r7", "title": "Code review", "category": "Код", "prompt": "Review {{code}}"}
]`

type fakeClipboard struct {
	got []string
	err error
}

func (f *fakeClipboard) Name() string { return "fake" }

func (f *fakeClipboard) Write(text string) error {
	f.got = append(f.got, text)
	return f.err
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "prompts.json")
	if err := os.WriteFile(source, []byte(testCatalog), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := fmt.Sprintf(`dir: %s
catalog:
  source: %s
favorites:
  backend: file
  path: %s
logging:
  level: error
`, dir, source, filepath.Join(dir, "favorites.json"))
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, configPath string, clip *fakeClipboard, args ...string) (string, string, int) {
	t.Helper()
	var out, errOut bytes.Buffer
	c := NewCLI("1.2.3", &out, &errOut)
	if clip != nil {
		c.clipboard = clip
	}
	code := c.Execute(context.Background(), append([]string{"--config", configPath}, args...))
	return out.String(), errOut.String(), code
}

func TestVersion(t *testing.T) {
	out, _, code := run(t, "does-not-matter.yaml", nil, "version")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "1.2.3") {
		t.Errorf("expected version in output, got %q", out)
	}
}

func TestListFilters(t *testing.T) {
	cfg := writeConfig(t)

	out, _, code := run(t, cfg, nil, "list", "--format", "ids")
	if code != 0 || out != "r1\nr2\nr7\n" {
		t.Errorf("list ids: code=%d out=%q", code, out)
	}

	out, _, _ = run(t, cfg, nil, "list", "--category", "marketing", "--search", "plan", "--format", "ids")
	if out != "r2\n" {
		t.Errorf("filtered list: got %q", out)
	}

	out, _, _ = run(t, cfg, nil, "list", "--search", "рассылка", "--format", "ids")
	if out != "r1\n" {
		t.Errorf("tag search: got %q", out)
	}
}

func TestCategories(t *testing.T) {
	out, _, code := run(t, writeConfig(t), nil, "categories")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 categories, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "kod") || !strings.Contains(lines[1], "2 prompts") {
		t.Errorf("unexpected categories output: %q", out)
	}
}

func TestShowUnknownSuggests(t *testing.T) {
	_, errOut, code := run(t, writeConfig(t), nil, "show", "review")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut, "did you mean: r7") {
		t.Errorf("expected suggestion, got %q", errOut)
	}
}

func TestRouteCommand(t *testing.T) {
	cfg := writeConfig(t)

	out, _, _ := run(t, cfg, nil, "route", "#/category/marketing")
	if !strings.Contains(out, "Heading: Маркетинг (2)") {
		t.Errorf("unexpected category view: %q", out)
	}

	out, _, _ = run(t, cfg, nil, "route", "#/prompt/r7")
	if !strings.Contains(out, "Detail: r7 - Code review") {
		t.Errorf("unexpected detail view: %q", out)
	}

	out, _, _ = run(t, cfg, nil, "route", "garbage")
	if !strings.Contains(out, "Mode: home") || !strings.Contains(out, "Categories: 2") {
		t.Errorf("unknown route should fall back home: %q", out)
	}
}

func TestFavoritesRoundTrip(t *testing.T) {
	cfg := writeConfig(t)

	out, _, code := run(t, cfg, nil, "fav", "toggle", "r7")
	if code != 0 || !strings.Contains(out, "added") {
		t.Fatalf("toggle: code=%d out=%q", code, out)
	}

	out, _, _ = run(t, cfg, nil, "fav", "list", "--format", "ids")
	if out != "r7\n" {
		t.Errorf("favorites should persist across runs, got %q", out)
	}

	_, errOut, code := run(t, cfg, nil, "fav", "toggle", "ghost")
	if code != 1 || !strings.Contains(errOut, "not found") {
		t.Errorf("unknown id: code=%d err=%q", code, errOut)
	}
}

func TestCopy(t *testing.T) {
	cfg := writeConfig(t)
	clip := &fakeClipboard{}

	out, _, code := run(t, cfg, clip, "copy", "r1")
	if code != 0 || strings.TrimSpace(out) != "Prompt copied" {
		t.Fatalf("copy: code=%d out=%q", code, out)
	}
	out, _, _ = run(t, cfg, clip, "copy", "r1", "--variables")
	if strings.TrimSpace(out) != "Variables copied" {
		t.Errorf("copy variables: %q", out)
	}
	run(t, cfg, clip, "copy", "r1", "--json")

	if len(clip.got) != 3 {
		t.Fatalf("expected 3 writes, got %d", len(clip.got))
	}
	if clip.got[0] != "Hi {{name}}" || clip.got[1] != "name=" {
		t.Errorf("unexpected payloads: %q", clip.got[:2])
	}
	if !strings.Contains(clip.got[2], `"role": "user"`) && !strings.Contains(clip.got[2], `"role":"user"`) {
		t.Errorf("json payload missing role: %q", clip.got[2])
	}

	_, _, code = run(t, cfg, clip, "copy", "r1", "--json", "--variables")
	if code != 1 {
		t.Error("conflicting flags should fail")
	}
}

func TestCopyFailure(t *testing.T) {
	clip := &fakeClipboard{err: errors.New("no display")}
	_, errOut, code := run(t, writeConfig(t), clip, "copy", "r7")
	if code != 1 || errOut == "" {
		t.Errorf("expected clipboard failure, code=%d err=%q", code, errOut)
	}
}

func TestCopyFailureIsNotWrappedTwice(t *testing.T) {
	clip := &fakeClipboard{err: apperrors.ClipboardError(errors.New("no display"))}
	_, errOut, code := run(t, writeConfig(t), clip, "--verbose", "copy", "r7")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if n := strings.Count(errOut, "Clipboard is unavailable"); n != 1 {
		t.Errorf("expected the clipboard message once, got %d in %q", n, errOut)
	}
	if !strings.Contains(errOut, "no display") {
		t.Errorf("expected the cause in verbose output, got %q", errOut)
	}
}

func TestStartRoute(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"", ""},
		{"#/category/kod", "#/category/kod"},
		{"#/prompt/r7", "#/prompt/r7"},
		{"#/prompt/missing", ""},
	}
	for _, tt := range tests {
		c := NewCLI("test", &bytes.Buffer{}, &bytes.Buffer{})
		c.configPath = writeConfig(t)
		c.startRoute = tt.route
		if err := c.setup(context.Background(), false); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if got := c.tuiController().View().RouteString; got != tt.want {
			t.Errorf("route %q: expected %q, got %q", tt.route, tt.want, got)
		}
		c.teardown()
	}
}

func TestUnknownCommand(t *testing.T) {
	_, errOut, code := run(t, writeConfig(t), nil, "frobnicate")
	if code != 1 || !strings.Contains(errOut, "unknown command") {
		t.Errorf("code=%d err=%q", code, errOut)
	}
}

func TestShowFormats(t *testing.T) {
	cfg := writeConfig(t)

	out, _, code := run(t, cfg, nil, "show", "r1")
	if code != 0 || !strings.Contains(out, "Title: Welcome email") || !strings.Contains(out, "name=") {
		t.Errorf("text show: code=%d out=%q", code, out)
	}

	out, _, _ = run(t, cfg, nil, "show", "r1", "--format", "raw")
	if !strings.HasPrefix(out, "# Welcome email") {
		t.Errorf("raw markdown should start with the title heading: %q", out)
	}

	out, _, code = run(t, cfg, nil, "show", "r1", "--format", "markdown")
	if code != 0 || !strings.Contains(out, "Welcome email") {
		t.Errorf("rendered markdown: code=%d out=%q", code, out)
	}

	_, _, code = run(t, cfg, nil, "show", "r1", "--format", "yaml")
	if code != 1 {
		t.Error("unknown format should fail")
	}
}
