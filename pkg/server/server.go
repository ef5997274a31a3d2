package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/denoland-id/denoid/pkg/httputil"
	"github.com/denoland-id/denoid/pkg/observability"
	"github.com/denoland-id/denoid/pkg/provider"
	"github.com/denoland-id/denoid/pkg/ratelimit"
	"github.com/denoland-id/denoid/pkg/search"
	"github.com/denoland-id/denoid/pkg/snapshot"
	"github.com/denoland-id/denoid/pkg/web"
)

// Snapshots provides the snapshot served to requests
type Snapshots interface {
	Current() *snapshot.Snapshot
}

// Server serves the module listing site and its JSON API
type Server struct {
	snapshots Snapshots
	renderer  *web.Renderer
	cache     *search.Cache
	logger    *observability.Logger
	metrics   *observability.Metrics
	cors      []string
	limiter   ratelimit.Limiter
	ips       *ratelimit.IPResolver
	tracing   bool

	router  *mux.Router
	handler http.Handler
}

// Option configures a Server
type Option func(*Server)

// WithSearchCache memoizes filtered views
func WithSearchCache(cache *search.Cache) Option {
	return func(s *Server) { s.cache = cache }
}

// WithMetrics instruments routes and the search cache
func WithMetrics(metrics *observability.Metrics) Option {
	return func(s *Server) { s.metrics = metrics }
}

// WithCORSOrigins allows browsers on origins to read the JSON API
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.cors = origins }
}

// WithRateLimiter limits JSON API requests per client IP. ips decides which
// proxies may report the client address; nil trusts none.
func WithRateLimiter(limiter ratelimit.Limiter, ips *ratelimit.IPResolver) Option {
	return func(s *Server) {
		s.limiter = limiter
		s.ips = ips
	}
}

// WithTracing wraps the handler with OpenTelemetry HTTP instrumentation
func WithTracing(enabled bool) Option {
	return func(s *Server) { s.tracing = enabled }
}

// New creates a server reading from snapshots and rendering with renderer
func New(snapshots Snapshots, renderer *web.Renderer, logger *observability.Logger, opts ...Option) *Server {
	s := &Server{
		snapshots: snapshots,
		renderer:  renderer,
		logger:    logger,
		router:    mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache != nil && s.metrics != nil {
		s.cache.OnLookup(s.metrics.ObserveCacheLookup)
	}

	s.setupRoutes()
	s.handler = s.buildHandler()
	return s
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	if s.metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.metrics))
	}
	if s.tracing {
		s.router.Use(observability.SpanRouteMiddleware)
	}

	s.router.HandleFunc("/", s.redirectToList).Methods(http.MethodGet, http.MethodHead)
	s.router.HandleFunc("/x", s.listPage).Methods(http.MethodGet, http.MethodHead)
	s.router.HandleFunc("/x/", s.redirectToList).Methods(http.MethodGet, http.MethodHead)
	s.router.HandleFunc("/x/{name}", s.modulePage).Methods(http.MethodGet, http.MethodHead)
	s.router.HandleFunc("/x/{name}/{rest:.*}", s.renderer.ServeNotFound).Methods(http.MethodGet, http.MethodHead)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(httputil.CORSMiddleware(s.cors))
	if s.limiter != nil {
		api.Use(ratelimit.Middleware(s.limiter, s.ips, s.metrics))
	}
	api.HandleFunc("/modules", s.listModules).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/modules/{name}", s.getModule).Methods(http.MethodGet, http.MethodOptions)

	var notFound http.Handler = http.HandlerFunc(s.renderer.ServeNotFound)
	var notAllowed http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.renderer.ServeError(w, r, http.StatusMethodNotAllowed)
	})
	if s.metrics != nil {
		notFound = observability.HTTPMetricsMiddleware(s.metrics)(notFound)
		notAllowed = observability.HTTPMetricsMiddleware(s.metrics)(notAllowed)
	}
	s.router.NotFoundHandler = notFound
	s.router.MethodNotAllowedHandler = notAllowed
}

// buildHandler wraps the router with the request middleware chain. The
// chain sits outside the router so unmatched routes are logged and
// recovered too.
func (s *Server) buildHandler() http.Handler {
	handler := httputil.Chain(
		httputil.RequestIDMiddleware(s.logger),
		httputil.LoggingMiddleware,
		httputil.RecoveryMiddleware(s.renderPanic),
	)(s.router)

	if s.tracing {
		handler = otelhttp.NewHandler(handler, "denoid",
			// Matched routes are renamed with their template by
			// SpanRouteMiddleware; unmatched requests keep the method only.
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method
			}),
		)
	}
	return handler
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) renderPanic(w http.ResponseWriter, r *http.Request, err error) {
	s.renderer.ServeError(w, r, http.StatusInternalServerError)
}

func (s *Server) filter(snap *snapshot.Snapshot, query string) []provider.Module {
	if s.cache != nil {
		return s.cache.Filter(snap.Generation, snap.Modules, query)
	}
	return search.Filter(snap.Modules, query)
}

func (s *Server) filterer() web.Filterer {
	if s.cache != nil {
		return s.cache
	}
	return nil
}

// redirectToList handles GET / and GET /x/
func (s *Server) redirectToList(w http.ResponseWriter, r *http.Request) {
	target := "/x"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// listPage handles GET /x?q=
func (s *Server) listPage(w http.ResponseWriter, r *http.Request) {
	query := httputil.SearchQuery(r)
	page := web.NewListPage(s.snapshots.Current(), query, s.filterer())

	body, err := s.renderer.RenderList(page)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to render module list")
		s.renderer.ServeError(w, r, http.StatusInternalServerError)
		return
	}
	httputil.WriteHTML(w, http.StatusOK, body)
}

// modulePage handles GET /x/{name}
func (s *Server) modulePage(w http.ResponseWriter, r *http.Request) {
	name, err := httputil.ModuleName(r)
	if err != nil {
		s.renderer.ServeNotFound(w, r)
		return
	}
	module, ok := s.snapshots.Current().Lookup(name)
	if !ok {
		s.renderer.ServeNotFound(w, r)
		return
	}

	body, err := s.renderer.RenderDetail(web.NewDetailPage(s.renderer.Site(), module))
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to render module page")
		s.renderer.ServeError(w, r, http.StatusInternalServerError)
		return
	}
	httputil.WriteHTML(w, http.StatusOK, body)
}

// ModulesResponse is the JSON body of GET /api/modules
type ModulesResponse struct {
	Generation uint64            `json:"generation"`
	BuiltAt    time.Time         `json:"built_at"`
	Query      string            `json:"query,omitempty"`
	Count      int               `json:"count"`
	Modules    []provider.Module `json:"modules"`
}

// listModules handles GET /api/modules?q=
func (s *Server) listModules(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshots.Current()
	query := httputil.SearchQuery(r)
	modules := s.filter(snap, query)

	httputil.WriteJSON(w, http.StatusOK, ModulesResponse{
		Generation: snap.Generation,
		BuiltAt:    snap.BuiltAt,
		Query:      query,
		Count:      len(modules),
		Modules:    modules,
	})
}

// getModule handles GET /api/modules/{name}
func (s *Server) getModule(w http.ResponseWriter, r *http.Request) {
	name, err := httputil.ModuleName(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err)
		return
	}
	module, ok := s.snapshots.Current().Lookup(name)
	if !ok {
		httputil.WriteErrorMessage(w, http.StatusNotFound, "module not found: "+name)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, module)
}
