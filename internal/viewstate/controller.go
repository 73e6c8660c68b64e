// Package viewstate owns the navigable state of the catalog browser: the
// current route, the filter inputs and the route to return to when a detail
// overlay is dismissed. Every UI action maps to exactly one Controller
// method, and each method returns the freshly derived View.
package viewstate

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/dpshade/prompt-catalog/internal/catalog"
	"github.com/dpshade/prompt-catalog/internal/favorites"
	"github.com/dpshade/prompt-catalog/internal/filter"
	"github.com/dpshade/prompt-catalog/internal/models"
	"github.com/dpshade/prompt-catalog/internal/route"
)

// List headings
const (
	HeadingFavorites = "Favorites"
	HeadingAll       = "All prompts"
)

// Action names reported to renderers and transition hooks.
const (
	ActionNavigate      = "navigate"
	ActionSearch        = "search"
	ActionCategory      = "category"
	ActionClearCategory = "clear_category"
	ActionFavoritesOnly = "favorites_only"
	ActionOpen          = "open"
	ActionFavorite      = "favorite"
	ActionDismiss       = "dismiss"
	ActionCatalog       = "catalog"
)

// View is everything a renderer needs to draw one frame.
type View struct {
	Route          route.Route       `json:"route"`
	RouteString    string            `json:"routeString"`
	Inputs         filter.Inputs     `json:"inputs"`
	Mode           filter.Mode       `json:"mode"`
	Heading        string            `json:"heading"`
	Records        []*models.Record  `json:"records"`
	Categories     []models.Category `json:"categories"`
	ActiveCategory *models.Category  `json:"activeCategory,omitempty"`
	Detail         *models.Record    `json:"detail,omitempty"`
	Favorites      []string          `json:"favorites"`
	Loaded         bool              `json:"loaded"`
}

// IsFavorite reports whether id is in the view's favorites.
func (v View) IsFavorite(id string) bool {
	for _, f := range v.Favorites {
		if f == id {
			return true
		}
	}
	return false
}

// Renderer is notified with the new View after every applied transition.
type Renderer interface {
	Render(action string, v View)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(action string, v View)

func (f RendererFunc) Render(action string, v View) { f(action, v) }

// TransitionHook observes every action, applied or not.
type TransitionHook func(action string, applied bool)

// Option configures a Controller.
type Option func(*Controller)

// WithRenderer registers a renderer.
func WithRenderer(r Renderer) Option {
	return func(c *Controller) { c.renderers = append(c.renderers, r) }
}

// WithTransitionHook registers a hook, typically a metrics counter.
func WithTransitionHook(h TransitionHook) Option {
	return func(c *Controller) { c.hooks = append(c.hooks, h) }
}

// Controller serializes all transitions behind one mutex.
type Controller struct {
	store  *favorites.Store
	logger *zap.Logger

	renderers []Renderer
	hooks     []TransitionHook

	mu        sync.Mutex
	cat       *catalog.Catalog
	current   route.Route
	back      route.Route
	inputs    filter.Inputs
	lastRoute string
}

// New creates a controller at Home with no catalog installed.
func New(store *favorites.Store, logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		store:   store,
		logger:  logger.Named("viewstate"),
		current: route.Home(),
		back:    route.Home(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetCatalog installs the catalog and re-resolves the last navigated route,
// so a detail route requested before loading finished opens now.
func (c *Controller) SetCatalog(cat *catalog.Catalog) View {
	return c.apply(ActionCatalog, func() bool {
		c.cat = cat
		if c.lastRoute != "" && !c.navigate(route.Parse(c.lastRoute)) {
			c.logger.Info("route left unresolved after catalog load",
				zap.String("route", c.lastRoute))
		}
		return true
	})
}

// Navigate handles an incoming route string.
func (c *Controller) Navigate(routeString string) View {
	return c.apply(ActionNavigate, func() bool {
		c.lastRoute = routeString
		return c.navigate(route.Parse(routeString))
	})
}

// SetSearch replaces the search text. The route is not touched.
func (c *Controller) SetSearch(text string) View {
	return c.apply(ActionSearch, func() bool {
		if c.inputs.Search == text {
			return false
		}
		c.inputs.Search = text
		return true
	})
}

// ClickCategory selects slug, or deselects it when it is already active.
// Search text and favorites-only are left as they are.
func (c *Controller) ClickCategory(slug string) View {
	return c.apply(ActionCategory, func() bool {
		if slug == "" {
			return false
		}
		if c.inputs.ActiveCategory == slug {
			c.setBase(route.Home())
		} else {
			c.setBase(route.Category(slug))
		}
		c.lastRoute = route.Serialize(c.current)
		return true
	})
}

// ClearCategory is the "All" chip: it always deselects.
func (c *Controller) ClearCategory() View {
	return c.apply(ActionClearCategory, func() bool {
		if !c.inputs.HasCategory() && c.current.IsHome() {
			return false
		}
		c.setBase(route.Home())
		c.lastRoute = ""
		return true
	})
}

// ToggleFavoritesOnly flips the favorites-only filter.
func (c *Controller) ToggleFavoritesOnly() View {
	return c.apply(ActionFavoritesOnly, func() bool {
		c.inputs.FavoritesOnly = !c.inputs.FavoritesOnly
		return true
	})
}

// OpenRecord overlays the detail of id. Unknown ids are ignored.
func (c *Controller) OpenRecord(id string) View {
	return c.apply(ActionOpen, func() bool {
		if !c.open(id) {
			return false
		}
		c.lastRoute = route.Serialize(c.current)
		return true
	})
}

// ToggleFavorite flips id in the favorites set. Ids that are neither in the
// catalog nor already favorited are ignored, so only valid ids are added.
func (c *Controller) ToggleFavorite(ctx context.Context, id string) View {
	return c.apply(ActionFavorite, func() bool {
		if c.store == nil || id == "" {
			return false
		}
		if !c.store.Contains(id) && !c.known(id) {
			return false
		}
		c.store.Toggle(ctx, id)
		return true
	})
}

// Dismiss closes the detail overlay and restores the route that was active
// before it opened.
func (c *Controller) Dismiss() View {
	return c.apply(ActionDismiss, func() bool {
		if !c.current.IsDetail() {
			return false
		}
		c.current = c.back
		c.lastRoute = route.Serialize(c.current)
		return true
	})
}

// View derives the current view without changing state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.derive()
}

func (c *Controller) apply(action string, fn func() bool) View {
	c.mu.Lock()
	applied := fn()
	v := c.derive()
	c.mu.Unlock()

	for _, h := range c.hooks {
		h(action, applied)
	}

	if !applied {
		c.logger.Debug("transition ignored", zap.String("action", action))
		return v
	}

	c.logger.Debug("transition",
		zap.String("action", action),
		zap.String("route", v.RouteString),
		zap.String("mode", v.Mode.String()),
		zap.Int("records", len(v.Records)))

	for _, r := range c.renderers {
		r.Render(action, v)
	}
	return v
}

// navigate applies a parsed route. It reports whether state changed.
func (c *Controller) navigate(r route.Route) bool {
	switch r.Kind {
	case route.KindPrompt:
		return c.open(r.ID)
	default:
		c.setBase(r)
		return true
	}
}

// setBase moves to a non-detail route and keeps the category input in step.
func (c *Controller) setBase(r route.Route) {
	c.current = r
	c.back = r
	c.inputs.ActiveCategory = r.Slug
}

func (c *Controller) open(id string) bool {
	if !c.known(id) {
		return false
	}
	if !c.current.IsDetail() {
		c.back = c.current
	}
	c.current = route.Prompt(id)
	return true
}

func (c *Controller) known(id string) bool {
	if c.cat == nil {
		return false
	}
	_, ok := c.cat.Record(id)
	return ok
}

func (c *Controller) derive() View {
	v := View{
		Route:       c.current,
		RouteString: route.Serialize(c.current),
		Inputs:      c.inputs,
		Mode:        filter.ModeFor(c.inputs),
		Heading:     HeadingAll,
		Records:     []*models.Record{},
		Categories:  []models.Category{},
		Favorites:   []string{},
		Loaded:      c.cat != nil,
	}

	var favs favorites.Set
	if c.store != nil {
		favs = c.store.Set()
	}

	if c.cat == nil {
		return v
	}

	v.Categories = c.cat.Categories()
	v.Records = filter.Apply(c.cat.Records(), v.Categories, c.inputs, favs)

	if c.inputs.HasCategory() {
		if cat, ok := c.cat.CategoryBySlug(c.inputs.ActiveCategory); ok {
			v.ActiveCategory = &cat
		}
	}

	switch {
	case c.inputs.FavoritesOnly:
		v.Heading = HeadingFavorites
	case v.ActiveCategory != nil:
		v.Heading = v.ActiveCategory.Name
	}

	for _, id := range favs.IDs() {
		if c.known(id) {
			v.Favorites = append(v.Favorites, id)
		}
	}

	if c.current.IsDetail() {
		if rec, ok := c.cat.Record(c.current.ID); ok {
			v.Detail = rec
		}
	}
	return v
}
