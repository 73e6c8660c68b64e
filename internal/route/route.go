// Package route converts between location fragments and structured routes.
//
// Grammar:
//
//	""                          Home
//	"#/category/" slug          Category
//	"#/prompt/" escaped-id      Prompt
//
// A segment runs to the end of the string or the next '#', '?' or newline and
// must be non-empty. Anything else resolves to Home.
package route

import (
	"net/url"
	"strings"
)

// Kind tags which variant a Route holds.
type Kind int

const (
	KindHome Kind = iota
	KindCategory
	KindPrompt
)

func (k Kind) String() string {
	switch k {
	case KindCategory:
		return "category"
	case KindPrompt:
		return "prompt"
	default:
		return "home"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name; unknown names decode as home.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "category":
		*k = KindCategory
	case "prompt":
		*k = KindPrompt
	default:
		*k = KindHome
	}
	return nil
}

// Route is a navigable location. Exactly one of Slug/ID is meaningful,
// depending on Kind. The zero value is Home.
type Route struct {
	Kind Kind   `json:"kind"`
	Slug string `json:"slug,omitempty"`
	ID   string `json:"id,omitempty"`
}

// Home returns the home route.
func Home() Route {
	return Route{Kind: KindHome}
}

// Category returns the route for a category slug. An empty slug is Home.
func Category(slug string) Route {
	if slug == "" {
		return Home()
	}
	return Route{Kind: KindCategory, Slug: slug}
}

// Prompt returns the detail route for a record id. An empty id is Home.
func Prompt(id string) Route {
	if id == "" {
		return Home()
	}
	return Route{Kind: KindPrompt, ID: id}
}

// IsHome reports whether r is the home route.
func (r Route) IsHome() bool { return r.Kind == KindHome }

// IsDetail reports whether r overlays a record detail.
func (r Route) IsDetail() bool { return r.Kind == KindPrompt }

// String serializes r; it is the same as Serialize(r).
func (r Route) String() string { return Serialize(r) }

const (
	promptPrefix   = "#/prompt/"
	categoryPrefix = "#/category/"
)

// matcher recognizes one route form. Matchers are tried in order and the
// first hit wins, so prompt routes take precedence over category routes.
type matcher struct {
	prefix string
	build  func(segment string) Route
}

var matchers = []matcher{
	{prefix: promptPrefix, build: Prompt},
	{prefix: categoryPrefix, build: Category},
}

// Parse resolves a route string. It never fails: unrecognized input is Home.
func Parse(s string) Route {
	for _, m := range matchers {
		segment, ok := match(s, m.prefix)
		if !ok {
			continue
		}
		return m.build(decode(segment))
	}
	return Home()
}

// Serialize renders r as a route string. Parse(Serialize(r)) == r for every
// route built with Home, Category or Prompt.
func Serialize(r Route) string {
	switch r.Kind {
	case KindCategory:
		if r.Slug == "" {
			return ""
		}
		return categoryPrefix + url.PathEscape(r.Slug)
	case KindPrompt:
		if r.ID == "" {
			return ""
		}
		return promptPrefix + url.PathEscape(r.ID)
	default:
		return ""
	}
}

// match returns the delimited segment following prefix.
func match(s, prefix string) (string, bool) {
	if !strings.HasPrefix(s, prefix) {
		return "", false
	}
	rest := s[len(prefix):]
	if i := strings.IndexAny(rest, "#?\n"); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}

// decode unescapes a segment, keeping it verbatim when it is not valid
// percent-encoding.
func decode(segment string) string {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return segment
	}
	return decoded
}
