// Package bootstrap wires all dependencies and starts the application.
// Configuration comes from a YAML file when one exists and from HYPERAPI_*
// environment variables otherwise.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/artpar/hyperapi/adapters/metrics"
	"github.com/artpar/hyperapi/adapters/sqlite"
	"github.com/artpar/hyperapi/config"
	"github.com/artpar/hyperapi/core/action"
	"github.com/artpar/hyperapi/core/affordance"
	apihttp "github.com/artpar/hyperapi/core/channel/http"
	"github.com/artpar/hyperapi/core/openapi"
	"github.com/artpar/hyperapi/core/registry"
	"github.com/artpar/hyperapi/core/writer"
	"github.com/artpar/hyperapi/pkg/hal"
	"github.com/artpar/hyperapi/pkg/hydra"
	"github.com/artpar/hyperapi/pkg/jsonapi"
	"github.com/artpar/hyperapi/sample/blog"
)

// Version is set at build time.
var Version = "dev"

// Options control application initialization.
type Options struct {
	// ConfigPath is the YAML file to load and watch. A missing file falls
	// back to the environment.
	ConfigPath string

	// Seed fills an empty database with sample content.
	Seed bool

	// Output receives log lines; nil means stdout.
	Output io.Writer

	// Registerer receives the Prometheus collectors; nil means the default
	// registerer.
	Registerer prometheus.Registerer
}

// App represents the running application.
type App struct {
	Logger   zerolog.Logger
	Config   *config.Holder
	DB       *sqlite.DB
	Store    *blog.Store
	Registry *registry.Registry
	Router   *action.Router
	Writer   *writer.Writer
	Metrics  *metrics.Collector
	OpenAPI  *openapi.Service
	Users    *apihttp.Users
	HTTP     *apihttp.Channel
}

// New creates and initializes the application.
func New(opts Options) (*App, error) {
	cfg, err := config.LoadWithFallback(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	logger := setupLogger(cfg.Logging, out)
	logger.Info().Str("version", Version).Msg("initializing hyperapi")

	a := &App{Logger: logger}

	if a.Config, err = newHolder(opts.ConfigPath, cfg, logger); err != nil {
		return nil, err
	}

	if err := a.initDatabase(cfg.Database, opts.Seed); err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	if err := a.initSchema(); err != nil {
		a.DB.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	if cfg.Metrics.Enabled {
		reg := opts.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		a.Metrics = metrics.NewWithRegistry(reg)
		logger.Info().Str("path", cfg.Metrics.Path).Msg("prometheus metrics enabled")
	}

	if err := a.initHTTP(cfg); err != nil {
		a.DB.Close()
		return nil, fmt.Errorf("init http: %w", err)
	}

	a.watchConfig()
	return a, nil
}

// newHolder watches the config file when there is one.
func newHolder(path string, cfg *config.Config, logger zerolog.Logger) (*config.Holder, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return config.NewHolder(path, logger)
		}
	}
	return config.NewStaticHolder(cfg, logger), nil
}

func (a *App) initDatabase(cfg config.DatabaseConfig, seed bool) error {
	db, err := sqlite.Open(cfg.DSN)
	if err != nil {
		return err
	}

	a.Store = blog.NewStore(db)
	if err := a.Store.Migrate(); err != nil {
		db.Close()
		return fmt.Errorf("migrate: %w", err)
	}

	if seed {
		if err := a.Store.Seed(context.Background()); err != nil {
			db.Close()
			return err
		}
		a.Logger.Info().Msg("sample content seeded")
	}

	a.DB = db
	a.Logger.Info().Str("dsn", cfg.DSN).Msg("database initialized")
	return nil
}

// Schema composes the registry and the action router over store. Both are
// immutable afterwards. A nil store is enough for introspection; its
// handlers must not be invoked.
func Schema(store *blog.Store) (*registry.Registry, *action.Router, error) {
	reg, err := blog.Registry()
	if err != nil {
		return nil, nil, err
	}

	router := action.NewRouter()
	if err := blog.Register(router, store); err != nil {
		return nil, nil, err
	}
	router.Freeze()
	return reg, router, nil
}

func (a *App) initSchema() error {
	reg, router, err := Schema(a.Store)
	if err != nil {
		return err
	}

	a.Registry = reg
	a.Router = router
	a.Logger.Info().
		Int("resources", len(reg.Names())).
		Int("actions", len(router.Actions())).
		Msg("schema composed")
	return nil
}

func (a *App) initHTTP(cfg *config.Config) error {
	opts := []writer.Option{
		writer.WithFetcher(a.Store),
		writer.WithAffordances(affordance.NewResolver(a.Router, a.Logger)),
	}
	if a.Metrics != nil {
		opts = append(opts, writer.WithObserver(a.Metrics))
	}
	a.Writer = writer.New(a.Registry, a.Logger, opts...)

	formats := apihttp.NewFormats()
	if err := errors.Join(
		formats.Register("hydra", hydra.Format{}),
		formats.Register("hal", hal.Format{}),
		formats.Register("jsonapi", jsonapi.Format{}),
	); err != nil {
		return err
	}

	if cfg.OpenAPI.Enabled {
		gen := openapi.NewGenerator(a.Router, a.Registry, formats.MediaTypes()...)
		if cfg.Server.BaseURL != "" {
			gen.AddServer(cfg.Server.BaseURL, "Configured server")
		}
		a.OpenAPI = openapi.NewService(gen, a.Logger)
		a.OpenAPI.Register()
	}

	a.Users = apihttp.NewUsers(accounts(cfg.Auth.Users)...)

	channel, err := apihttp.New(apihttp.Options{
		Addr:          cfg.Server.Addr(),
		BaseURL:       cfg.Server.BaseURL,
		Registry:      a.Registry,
		Router:        a.Router,
		Writer:        a.Writer,
		Fetcher:       a.Store,
		Formats:       formats,
		Languages:     apihttp.NewLanguages(language.English, language.Spanish),
		Users:         a.Users,
		Metrics:       a.Metrics,
		MetricsPath:   cfg.Metrics.Path,
		OpenAPI:       a.OpenAPI,
		Documentation: writer.Documentation{Title: "Blog API", Description: "Blog postings, their authors and comments"},
		Settings:      a.settings,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		Logger:        a.Logger,
	})
	if err != nil {
		return err
	}
	a.HTTP = channel
	return nil
}

// settings reads the hot-reloadable hypermedia settings.
func (a *App) settings() apihttp.Settings {
	h := a.Config.Get().Hypermedia
	return apihttp.Settings{
		DefaultFormat:   h.DefaultFormat,
		MaxEmbedDepth:   h.MaxEmbedDepth,
		DefaultPageSize: h.DefaultPageSize,
		MaxPageSize:     h.MaxPageSize,
	}
}

// watchConfig applies reloaded values that take effect without a restart.
func (a *App) watchConfig() {
	a.Config.OnChange(func(cfg *config.Config) {
		if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			zerolog.SetGlobalLevel(level)
		}
		a.Users.Set(accounts(cfg.Auth.Users))
		if a.Metrics != nil {
			a.Metrics.ConfigReloaded(nil)
		}
	})
	a.Config.OnError(func(err error) {
		if a.Metrics != nil {
			a.Metrics.ConfigReloaded(err)
		}
	})
}

func accounts(users []config.UserConfig) []apihttp.Account {
	out := make([]apihttp.Account, len(users))
	for i, u := range users {
		out[i] = apihttp.Account{Name: u.Name, PasswordHash: u.PasswordHash, Roles: u.Roles}
	}
	return out
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx := context.Background()

	if a.Config.Path() != "" {
		if err := a.Config.WatchFile(); err != nil {
			a.Logger.Warn().Err(err).Msg("config file watching disabled")
		}
	}
	a.Config.WatchSignals()

	if err := a.HTTP.Start(ctx); err != nil {
		return fmt.Errorf("start http: %w", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var errs []error
	if a.HTTP != nil {
		if err := a.HTTP.Stop(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
			errs = append(errs, err)
		}
	}

	if a.Config != nil {
		a.Config.Stop()
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
			errs = append(errs, err)
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return errors.Join(errs...)
}

// setupLogger builds the root logger from the logging config and sets the
// global level.
func setupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}
