// Package service wires configuration, favorites storage and the catalog
// into the objects the CLI, TUI and HTTP server share.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/dpshade/prompt-catalog/internal/catalog"
	"github.com/dpshade/prompt-catalog/internal/config"
	"github.com/dpshade/prompt-catalog/internal/errors"
	"github.com/dpshade/prompt-catalog/internal/favorites"
	"github.com/dpshade/prompt-catalog/internal/models"
	"github.com/dpshade/prompt-catalog/internal/storage"
	"github.com/dpshade/prompt-catalog/internal/viewstate"
)

// Service holds the loaded catalog and the favorites store
type Service struct {
	cfg       *config.Config
	logger    *zap.Logger
	kv        storage.KV
	favorites *favorites.Store
	catalog   *catalog.Catalog
}

// New opens the favorites backend, loads favorites and then the catalog.
// A backend that cannot be opened degrades to in-memory favorites. A catalog
// that cannot be fetched or parsed is returned as an error; the caller
// decides whether that is fatal.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("service")

	kv, err := storage.Open(ctx, storage.Options{
		Backend:    cfg.Favorites.Backend,
		FilePath:   cfg.Favorites.Path,
		SQLitePath: cfg.Favorites.SQLitePath,
		RedisAddr:  cfg.Favorites.RedisAddr,
		Logger:     logger.Named("storage"),
	})
	if err != nil {
		logger.Warn("favorites backend unavailable, keeping favorites in memory",
			zap.String("backend", cfg.Favorites.Backend),
			zap.Error(err))
		kv = storage.NewMemoryKV()
	}

	store := favorites.NewStore(kv, cfg.Favorites.Key, logger)
	store.Load(ctx)

	loadCtx, cancel := context.WithTimeout(ctx, cfg.CatalogTimeout())
	defer cancel()

	cat, err := catalog.Load(loadCtx, cfg.Catalog.Source)
	if err != nil {
		kv.Close()
		return nil, err
	}

	logger.Info("catalog loaded",
		zap.String("source", cfg.Catalog.Source),
		zap.Int("records", cat.Len()),
		zap.Int("categories", len(cat.Categories())),
		zap.String("favorites_backend", cfg.Favorites.Backend))

	return &Service{
		cfg:       cfg,
		logger:    logger,
		kv:        kv,
		favorites: store,
		catalog:   cat,
	}, nil
}

// Config returns the configuration the service was built from
func (s *Service) Config() *config.Config { return s.cfg }

// Catalog returns the loaded catalog
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Favorites returns the favorites store
func (s *Service) Favorites() *favorites.Store { return s.favorites }

// NewController returns a controller with the catalog already applied
func (s *Service) NewController(opts ...viewstate.Option) *viewstate.Controller {
	ctrl := viewstate.New(s.favorites, s.logger, opts...)
	ctrl.SetCatalog(s.catalog)
	return ctrl
}

// Record returns the record with id or a NOT_FOUND error with suggestions
func (s *Service) Record(id string) (*models.Record, error) {
	rec, ok := s.catalog.Record(id)
	if !ok {
		return nil, s.catalog.NotFound(id)
	}
	return rec, nil
}

// Resolve derives the view for a route string with optional search and
// favorites-only filters, without keeping any state.
func (s *Service) Resolve(routeString, query string, favoritesOnly bool) viewstate.View {
	ctrl := s.NewController()
	v := ctrl.Navigate(routeString)
	if query != "" {
		v = ctrl.SetSearch(query)
	}
	if favoritesOnly {
		v = ctrl.ToggleFavoritesOnly()
	}
	return v
}

// ToggleFavorite flips id and reports whether it is now a favorite. Ids
// outside the catalog may only be removed.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	if _, ok := s.catalog.Record(id); !ok && !s.favorites.Has(id) {
		return false, s.catalog.NotFound(id)
	}
	set := s.favorites.Toggle(ctx, id)
	return set.Has(id), nil
}

// Close releases the favorites backend
func (s *Service) Close() error {
	if err := s.kv.Close(); err != nil {
		return errors.StorageError("close favorites backend", err)
	}
	return nil
}
