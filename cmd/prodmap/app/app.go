// Package app provides the application context and dependency wiring for the
// prodmap CLI: configuration, logging, and construction of the extraction
// pipeline from configured collaborators.
package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/prodmap/prodmap/internal/imagery"
	"github.com/prodmap/prodmap/internal/vision"
	"github.com/prodmap/prodmap/internal/websearch"
	"github.com/prodmap/prodmap/pkg/catalog"
	"github.com/prodmap/prodmap/pkg/errors"
	"github.com/prodmap/prodmap/pkg/pipeline"
)

// App represents the prodmap application with all its dependencies.
type App struct {
	version string
	commit  string
	date    string

	config *Config
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
func New(version, commit, date string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version string.
func (a *App) Version() string { return a.version }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// Catalog loads the attribute catalog: the configured file when set,
// otherwise the embedded camera catalog.
func (a *App) Catalog() (*catalog.Catalog, error) {
	if a.config.CatalogPath != "" {
		return catalog.Load(a.config.CatalogPath)
	}
	return catalog.Default(), nil
}

// Sequencer wires the full two-stage pipeline from the configured
// collaborators. The web search stage degrades to an inert searcher when
// search credentials are missing; the vision backend is mandatory.
func (a *App) Sequencer(ctx context.Context) (*pipeline.Sequencer, *catalog.Catalog, error) {
	cat, err := a.Catalog()
	if err != nil {
		return nil, nil, err
	}

	var defaults catalog.Defaults
	if a.config.DefaultsPath != "" {
		defaults, err = catalog.LoadDefaults(a.config.DefaultsPath, cat)
		if err != nil {
			return nil, nil, err
		}
	}

	analyzer, err := vision.NewClient(ctx, vision.Config{
		APIKey:  a.config.GeminiAPIKey,
		Model:   a.config.Model,
		Timeout: a.config.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}

	var searcher pipeline.Searcher
	if a.config.SearchAPIKey != "" && a.config.SearchCX != "" {
		searcher, err = websearch.NewClient(websearch.Config{
			APIKey: a.config.SearchAPIKey,
			CX:     a.config.SearchCX,
		})
		if err != nil {
			return nil, nil, err
		}
	} else {
		a.logger.Warn().Msg("search credentials not configured, enrichment runs without web evidence")
		searcher = noSearch{}
	}

	prompts := pipeline.DefaultPrompts()
	if a.config.PromptsPath != "" {
		prompts, err = pipeline.LoadPrompts(a.config.PromptsPath)
		if err != nil {
			return nil, nil, err
		}
	}

	seq := pipeline.NewDefault(analyzer, searcher, imagery.New(), cat, defaults, prompts)
	return seq, cat, nil
}

// noSearch satisfies pipeline.Searcher when no search backend is configured.
type noSearch struct{}

func (noSearch) Search(_ context.Context, _ string, _ int) ([]pipeline.SearchResult, error) {
	return nil, nil
}

// ContextWithSignals returns a context cancelled on SIGINT or SIGTERM.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// ExitOnError prints an error and exits with status 1. Meant for main.go
// top-level error handling only.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return &errors.ValidationError{Field: "config", Message: "must not be nil"}
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
