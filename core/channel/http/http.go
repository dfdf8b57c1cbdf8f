// Package http serves the hypermedia API over HTTP. It dispatches resource
// paths to the action router, negotiates the output format and writes
// documents, forms, binary payloads and errors through the writer.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/artpar/hyperapi/adapters/metrics"
	"github.com/artpar/hyperapi/core/action"
	"github.com/artpar/hyperapi/core/openapi"
	"github.com/artpar/hyperapi/core/registry"
	"github.com/artpar/hyperapi/core/writer"
)

// Fixed endpoints outside the resource namespace.
const (
	OpenAPIPath        = "/_openapi.json"
	HealthPath         = "/health"
	DefaultMetricsPath = "/metrics"
)

// Settings are the values that may change on config reload.
type Settings struct {
	DefaultFormat   string
	MaxEmbedDepth   int
	DefaultPageSize int
	MaxPageSize     int
}

// Options configure a Channel. Registry, Router, Writer and Formats are
// required.
type Options struct {
	// Addr is the listen address; Start is a no-op when empty.
	Addr string

	// BaseURL is the absolute server URL used in documents. When empty it
	// is derived from each request.
	BaseURL string

	Registry      *registry.Registry
	Router        *action.Router
	Writer        *writer.Writer
	Fetcher       writer.ModelFetcher
	Formats       *Formats
	Languages     *Languages
	Users         *Users
	Metrics       *metrics.Collector
	MetricsPath   string
	OpenAPI       *openapi.Service
	Documentation writer.Documentation

	// Settings is consulted per request; nil uses fixed defaults.
	Settings func() Settings

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Logger zerolog.Logger
}

// Channel is the HTTP transport.
type Channel struct {
	router    chi.Router
	registry  *registry.Registry
	actions   *action.Router
	writer    *writer.Writer
	fetcher   writer.ModelFetcher
	formats   *Formats
	languages *Languages
	users     *Users
	metrics   *metrics.Collector
	openapi   *openapi.Service
	docs      writer.Documentation
	settings  func() Settings
	baseURL   string
	addr      string
	server    *http.Server
	logger    zerolog.Logger

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// New creates the channel and mounts its routes.
func New(opts Options) (*Channel, error) {
	if opts.Registry == nil || opts.Router == nil || opts.Writer == nil || opts.Formats == nil {
		return nil, errors.New("http channel: registry, router, writer and formats are required")
	}

	c := &Channel{
		router:       chi.NewRouter(),
		registry:     opts.Registry,
		actions:      opts.Router,
		writer:       opts.Writer,
		fetcher:      opts.Fetcher,
		formats:      opts.Formats,
		languages:    opts.Languages,
		users:        opts.Users,
		metrics:      opts.Metrics,
		openapi:      opts.OpenAPI,
		docs:         opts.Documentation,
		settings:     opts.Settings,
		baseURL:      strings.TrimSuffix(opts.BaseURL, "/"),
		addr:         opts.Addr,
		logger:       opts.Logger,
		readTimeout:  opts.ReadTimeout,
		writeTimeout: opts.WriteTimeout,
	}
	if c.languages == nil {
		c.languages = NewLanguages()
	}
	if c.users == nil {
		c.users = NewUsers()
	}
	if c.settings == nil {
		c.settings = func() Settings { return Settings{} }
	}
	if _, ok := c.formats.Named(c.currentSettings().DefaultFormat); !ok {
		return nil, fmt.Errorf("http channel: default format %q is not registered", c.currentSettings().DefaultFormat)
	}

	metricsPath := opts.MetricsPath
	if metricsPath == "" {
		metricsPath = DefaultMetricsPath
	}
	c.routes(metricsPath)

	return c, nil
}

func (c *Channel) routes(metricsPath string) {
	r := c.router

	r.Use(assignRequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newLoggingMiddleware(c.logger, metricsPath))
	r.Use(middleware.Recoverer)
	if c.metrics != nil {
		r.Use(newMetricsMiddleware(c.metrics, metricsPath))
	}

	r.Get(HealthPath, c.handleHealth)
	if c.metrics != nil {
		r.Handle(metricsPath, c.metrics.Handler())
	}
	if c.openapi != nil {
		r.Get(OpenAPIPath, c.handleOpenAPI)
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL(OpenAPIPath),
			httpSwagger.InstanceName(openapi.InstanceName),
		))
	}

	r.Group(func(r chi.Router) {
		r.Use(c.authMiddleware)

		r.Get(writer.DocumentationPath, c.handleDocumentation)
		r.Get(writer.FormPrefix+"*", c.handleForm)
		r.Get(writer.BinaryPrefix+"*", c.handleBinary)
		r.HandleFunc(writer.ResourcePrefix+"*", c.handleResource)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		c.writeProblem(w, r, http.StatusNotFound, "Not Found", "no such endpoint", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		c.writeProblem(w, r, http.StatusMethodNotAllowed, "Method Not Allowed", "method not allowed", nil)
	})
}

// Name returns the channel name.
func (c *Channel) Name() string {
	return "http"
}

// Handler returns the HTTP handler.
func (c *Channel) Handler() http.Handler {
	return c.router
}

// Start starts the HTTP server in the background.
func (c *Channel) Start(_ context.Context) error {
	if c.addr == "" {
		return nil
	}

	c.server = &http.Server{
		Addr:         c.addr,
		Handler:      c.router,
		ReadTimeout:  c.readTimeout,
		WriteTimeout: c.writeTimeout,
	}

	go func() {
		c.logger.Info().Str("addr", c.addr).Msg("http server listening")
		if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error().Err(err).Msg("http server error")
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (c *Channel) Stop(ctx context.Context) error {
	if c.server != nil {
		return c.server.Shutdown(ctx)
	}
	return nil
}

func (c *Channel) currentSettings() Settings {
	s := c.settings()
	if s.DefaultFormat == "" {
		s.DefaultFormat = "hydra"
	}
	return s
}

// serverURL returns the configured base URL or one derived from r.
func (c *Channel) serverURL(r *http.Request) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func (c *Channel) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}

func (c *Channel) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	data, err := c.openapi.JSON()
	if err != nil {
		c.logger.Error().Err(err).Msg("openapi generation failed")
		c.writeProblem(w, r, http.StatusInternalServerError, "Internal Server Error", "openapi document unavailable", nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(data)
}

// assignRequestID gives requests without an X-Request-Id a UUID and echoes
// the id in the response.
func assignRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(middleware.RequestIDHeader, id)
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

// newLoggingMiddleware logs each request at debug level.
func newLoggingMiddleware(logger zerolog.Logger, metricsPath string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if r.URL.Path == HealthPath || r.URL.Path == metricsPath {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", requestID(r)).
				Msg("http request")
		})
	}
}

type operationKey struct{}

// setOperation names the operation served by the current request for the
// metrics middleware.
func setOperation(r *http.Request, name string) {
	if op, ok := r.Context().Value(operationKey{}).(*string); ok {
		*op = name
	}
}

// newMetricsMiddleware records request counts and latencies per operation.
func newMetricsMiddleware(m *metrics.Collector, metricsPath string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == HealthPath || r.URL.Path == metricsPath || strings.HasPrefix(r.URL.Path, "/swagger") {
				next.ServeHTTP(w, r)
				return
			}

			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := time.Now()
			op := endpointName(r.URL.Path)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), operationKey{}, &op)))

			m.ObserveRequest(r.Method, op, ww.Status(), time.Since(start))
		})
	}
}

// endpointName is the metrics operation label used until a handler names
// a more specific one.
func endpointName(path string) string {
	switch {
	case strings.HasPrefix(path, writer.ResourcePrefix):
		return "resource"
	case strings.HasPrefix(path, writer.FormPrefix):
		return "form"
	case strings.HasPrefix(path, writer.BinaryPrefix):
		return "binary"
	case path == writer.DocumentationPath:
		return "documentation"
	case path == OpenAPIPath:
		return "openapi"
	default:
		return "other"
	}
}
