package http

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/edgegate/edgegate"
)

// CORSConfig mirrors the go-chi/cors options.
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// MetricsConfig controls the /-/metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
}

type HandlerConfig struct {
	CORS    CORSConfig
	Metrics MetricsConfig
	// MaxInFlight caps concurrently served requests. Zero means no cap.
	MaxInFlight int
}

// Handler serves static files guarded by the authorization engine.
type Handler struct {
	config HandlerConfig
	engine *edgegate.Engine
	root   *os.Root
}

// NewHandler creates a Handler serving files from root. The root provides
// sandboxed file operations preventing path traversal.
func NewHandler(config *HandlerConfig, engine *edgegate.Engine, root *os.Root) *Handler {
	return &Handler{
		config: *config,
		engine: engine,
		root:   root,
	}
}

// Router returns the gateway's http.Handler. Only GET and HEAD reach the
// file handlers; chi answers everything else with 405.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logging)
	r.Use(Instrument)

	if h.config.MaxInFlight > 0 {
		r.Use(middleware.Throttle(h.config.MaxInFlight))
	}

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	if h.config.Metrics.Enabled {
		r.Method(http.MethodGet, "/-/metrics", MetricsHandler(h.config.Metrics.Token))
	}

	r.Group(func(r chi.Router) {
		r.Use(Authorize(h.engine))
		r.Get("/", h.handleGet)
		r.Head("/", h.handleGet)
		r.Get("/*", h.handleGet)
		r.Head("/*", h.handleGet)
	})

	return r
}

// handleGet serves the file or directory listing for an authorized
// request. The authorization decision is read from the request context.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	decision := DecisionFrom(r.Context())

	rel := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if rel == "" {
		rel = "."
	}

	info, err := h.root.Stat(rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			WriteError(w, http.StatusNotFound, "not_found", "File not found")
			return
		}
		HandleError(w, err)
		return
	}

	if info.IsDir() {
		if !decision.Policy.Autoindex {
			WriteError(w, http.StatusNotFound, "not_found", "File not found")
			return
		}
		h.serveIndex(w, r, rel, decision.Policy)
		return
	}

	f, err := h.root.Open(rel)
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() { _ = f.Close() }()

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
