// Package api serves the catalog and a process-wide view controller over
// HTTP. Every response uses the same JSON envelope; errors go through the
// HTTP error handler so codes map to statuses in one place.
package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/dpshade/prompt-catalog/internal/catalog"
	"github.com/dpshade/prompt-catalog/internal/errors"
	"github.com/dpshade/prompt-catalog/internal/favorites"
	"github.com/dpshade/prompt-catalog/internal/models"
	"github.com/dpshade/prompt-catalog/internal/route"
	"github.com/dpshade/prompt-catalog/internal/validation"
	"github.com/dpshade/prompt-catalog/internal/viewstate"
)

const metricsNamespace = "prompt_catalog"

// Config carries the dependencies of a Server
type Config struct {
	Catalog   *catalog.Catalog
	Favorites *favorites.Store
	Logger    *zap.Logger
	Port      int
	Version   string

	// IncludeDetails adds error details to every error body
	IncludeDetails bool
}

// Server is the HTTP surface of the catalog
type Server struct {
	catalog      *catalog.Catalog
	store        *favorites.Store
	ctrl         *viewstate.Controller
	metrics      *Collector
	errorHandler *errors.HTTPErrorHandler
	validator    *validation.RequestValidator
	logger       *zap.Logger
	version      string
	port         int
	server       *http.Server
}

// NewServer builds a server and its own controller over cfg.Catalog
func NewServer(cfg Config) (*Server, error) {
	if cfg.Catalog == nil {
		return nil, errors.InternalError("api server requires a loaded catalog")
	}
	if cfg.Favorites == nil {
		return nil, errors.InternalError("api server requires a favorites store")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("api")

	metrics := NewCollector(metricsNamespace)
	metrics.CatalogRecords.Set(float64(cfg.Catalog.Len()))

	ctrl := viewstate.New(cfg.Favorites, logger, viewstate.WithTransitionHook(metrics.ObserveTransition))
	ctrl.SetCatalog(cfg.Catalog)

	return &Server{
		catalog:      cfg.Catalog,
		store:        cfg.Favorites,
		ctrl:         ctrl,
		metrics:      metrics,
		errorHandler: errors.NewHTTPErrorHandler(cfg.IncludeDetails, logger),
		validator:    validation.NewRequestValidator(),
		logger:       logger,
		version:      cfg.Version,
		port:         cfg.Port,
	}, nil
}

// Controller returns the process-wide controller driven by /api/v1/state
func (s *Server) Controller() *viewstate.Controller {
	return s.ctrl
}

// Router configures all routes and middleware
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(s.recoverer)
	router.Use(s.requestLogger)
	router.Use(s.metrics.Middleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         86400,
	}))

	router.Get("/health", s.handleHealth)
	router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	router.Get("/api/docs", s.handleOpenAPI)
	router.Get("/api/openapi.json", s.handleOpenAPISpec)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/categories", s.handleCategories)
		r.Get("/records", s.handleRecords)
		r.Get("/records/{id}", s.handleRecord)
		r.Get("/resolve", s.handleResolve)

		r.Get("/state", s.handleState)
		r.Post("/state/navigate", s.handleNavigate)
		r.Post("/state/search", s.handleSearch)
		r.Post("/state/category", s.handleCategory)
		r.Post("/state/clear-category", s.handleClearCategory)
		r.Post("/state/favorites-only", s.handleFavoritesOnly)
		r.Post("/state/open", s.handleOpen)
		r.Post("/state/dismiss", s.handleDismiss)
		r.Post("/state/favorite", s.handleFavorite)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, errors.NotFoundError("Endpoint "+r.URL.Path))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, errors.InvalidInputError("Method not allowed").WithDetails(r.Method+" "+r.URL.Path))
	})

	return router
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("API server starting",
		zap.String("addr", fmt.Sprintf("http://localhost:%d", s.port)),
		zap.String("docs", fmt.Sprintf("http://localhost:%d/api/docs", s.port)))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		<-errCh
		s.logger.Info("API server stopped")
		return nil
	}
}

// requestLogger logs every request with its status and timing
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("HTTP Request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestID", chimiddleware.GetReqID(r.Context())),
		)
	})
}

// recoverer turns handler panics into INTERNAL_ERROR responses
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("panic in handler", zap.Any("panic", rec), zap.String("path", r.URL.Path))
				s.writeError(w, errors.InternalError("Internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// APIResponse represents a standardized API response
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// writeResponse writes a standardized JSON response
func (s *Server) writeResponse(w http.ResponseWriter, data interface{}, message string, statusCode int) {
	response := APIResponse{
		Success:   statusCode < 400,
		Data:      data,
		Message:   message,
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		return
	}
	w.Write(jsonData)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.errorHandler.WriteHTTPError(w, err)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":     "healthy",
		"version":    s.version,
		"records":    s.catalog.Len(),
		"categories": len(s.catalog.Categories()),
		"favorites":  s.store.Set().Len(),
	}
	s.writeResponse(w, health, "Service is healthy", http.StatusOK)
}

// categoryResponse is a category with its route string
type categoryResponse struct {
	models.Category
	Route string `json:"route"`
}

// handleCategories handles GET /api/v1/categories
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats := s.catalog.Categories()
	out := make([]categoryResponse, len(cats))
	for i, c := range cats {
		out[i] = categoryResponse{Category: c, Route: route.Serialize(route.Category(c.Slug))}
	}
	s.writeResponse(w, out, fmt.Sprintf("Found %d categories", len(out)), http.StatusOK)
}

// handleRecords handles GET /api/v1/records
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	records := s.catalog.Records()
	s.writeResponse(w, records, fmt.Sprintf("Found %d records", len(records)), http.StatusOK)
}

// handleRecord handles GET /api/v1/records/{id}
func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, ok := s.catalog.Record(id)
	if !ok {
		s.writeError(w, s.catalog.NotFound(id))
		return
	}
	s.writeResponse(w, rec, "", http.StatusOK)
}

// handleResolve handles GET /api/v1/resolve. It derives a view on a scratch
// controller, leaving the process-wide state untouched.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	favoritesOnly := false
	if raw := query.Get("favorites"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, errors.InvalidInputError("Parameter 'favorites' must be a boolean").WithDetails(raw))
			return
		}
		favoritesOnly = parsed
	}

	scratch := viewstate.New(s.store, s.logger)
	scratch.SetCatalog(s.catalog)
	v := scratch.Navigate(query.Get("route"))
	if q := validation.StripControl(query.Get("q")); q != "" {
		v = scratch.SetSearch(q)
	}
	if favoritesOnly {
		v = scratch.ToggleFavoritesOnly()
	}
	s.writeResponse(w, v, "", http.StatusOK)
}

// handleState handles GET /api/v1/state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, s.ctrl.View(), "", http.StatusOK)
}

type navigateRequest struct {
	Route string `json:"route" validate:"max=512"`
}

type searchRequest struct {
	Query string `json:"query" validate:"max=200"`
}

type categoryRequest struct {
	Slug string `json:"slug" validate:"required,max=128"`
}

type recordRequest struct {
	ID string `json:"id" validate:"required,max=256"`
}

// handleNavigate handles POST /api/v1/state/navigate
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := s.validator.DecodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, s.ctrl.Navigate(req.Route), "", http.StatusOK)
}

// handleSearch handles POST /api/v1/state/search
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := s.validator.DecodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, s.ctrl.SetSearch(validation.StripControl(req.Query)), "", http.StatusOK)
}

// handleCategory handles POST /api/v1/state/category
func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := s.validator.DecodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, s.ctrl.ClickCategory(req.Slug), "", http.StatusOK)
}

// handleClearCategory handles POST /api/v1/state/clear-category
func (s *Server) handleClearCategory(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, s.ctrl.ClearCategory(), "", http.StatusOK)
}

// handleFavoritesOnly handles POST /api/v1/state/favorites-only
func (s *Server) handleFavoritesOnly(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, s.ctrl.ToggleFavoritesOnly(), "", http.StatusOK)
}

// handleOpen handles POST /api/v1/state/open
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := s.validator.DecodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if _, ok := s.catalog.Record(req.ID); !ok {
		s.writeError(w, s.catalog.NotFound(req.ID))
		return
	}
	s.writeResponse(w, s.ctrl.OpenRecord(req.ID), "", http.StatusOK)
}

// handleDismiss handles POST /api/v1/state/dismiss
func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, s.ctrl.Dismiss(), "", http.StatusOK)
}

// handleFavorite handles POST /api/v1/state/favorite. Ids that are already
// favorited may be removed even after they left the catalog.
func (s *Server) handleFavorite(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := s.validator.DecodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if _, ok := s.catalog.Record(req.ID); !ok && !s.store.Has(req.ID) {
		s.writeError(w, s.catalog.NotFound(req.ID))
		return
	}

	v := s.ctrl.ToggleFavorite(r.Context(), req.ID)
	message := "Removed from favorites"
	if v.IsFavorite(req.ID) {
		message = "Added to favorites"
	}
	s.writeResponse(w, v, message, http.StatusOK)
}
