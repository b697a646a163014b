// Package app wires configuration, logging, telemetry and the network
// dispatcher into a ready-to-use application with graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/gaborage/go-netmanager/config"
	"github.com/gaborage/go-netmanager/logger"
	"github.com/gaborage/go-netmanager/network"
	"github.com/gaborage/go-netmanager/observability"
)

// Job is the work Run performs with the dispatcher. Its context is canceled
// when a shutdown signal arrives.
type Job func(ctx context.Context, d *network.Dispatcher) error

// App owns the dispatcher and the telemetry it reports to.
type App struct {
	cfg        *config.Config
	logger     logger.Logger
	provider   observability.Provider
	dispatcher *network.Dispatcher
	opts       *Options
}

// New loads configuration and creates an application.
func New() (*App, error) {
	return NewWithOptions(nil)
}

// NewWithOptions is New with injectable dependencies.
func NewWithOptions(opts *Options) (*App, error) {
	opts = resolveOptions(opts)
	cfg, err := opts.ConfigLoader()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(cfg, opts)
}

// NewWithConfig creates an application from an already loaded configuration.
func NewWithConfig(cfg *config.Config, opts *Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is nil")
	}
	opts = resolveOptions(opts)
	b := newAppBootstrap(cfg, opts)

	b.log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Env).
		Str("version", cfg.App.Version).
		Msg("Starting application")

	provider, observers, err := b.telemetry()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	return &App{
		cfg:        cfg,
		logger:     b.log,
		provider:   provider,
		dispatcher: b.dispatcher(provider, observers),
		opts:       opts,
	}, nil
}

func (a *App) Config() *config.Config {
	return a.cfg
}

func (a *App) Logger() logger.Logger {
	return a.logger
}

func (a *App) Dispatcher() *network.Dispatcher {
	return a.dispatcher
}

func (a *App) Observability() observability.Provider {
	return a.provider
}

// Run executes job and shuts the application down when it returns or when
// SIGINT or SIGTERM arrives, whichever comes first. On a signal the job's
// context is canceled, which cancels its in-flight calls, and Run waits for
// the job to return before shutting down.
func (a *App) Run(job Job) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	a.opts.SignalHandler.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer a.opts.SignalHandler.Stop(quit)

	jobErr := make(chan error, 1)
	go func() {
		jobErr <- job(ctx, a.dispatcher)
	}()

	var runErr error
	select {
	case runErr = <-jobErr:
	case sig := <-quit:
		a.logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
		runErr = <-jobErr
		if errors.Is(runErr, context.Canceled) {
			runErr = nil
		}
	}

	shutdownCtx, shutdownCancel := a.opts.TimeoutProvider.WithTimeout(context.Background(), a.opts.ShutdownTimeout)
	defer shutdownCancel()

	return errors.Join(runErr, a.Shutdown(shutdownCtx))
}

// Shutdown flushes telemetry. Calls still in flight are left to their contexts.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().
		Int64("calls", a.dispatcher.CallCount()).
		Msg("Shutting down application")

	if err := a.provider.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to shutdown observability")
		return fmt.Errorf("observability: %w", err)
	}

	a.logger.Info().Msg("Application shutdown complete")
	return nil
}
