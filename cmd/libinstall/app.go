package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"libinstall/internal/config"
	"libinstall/internal/constants"
	"libinstall/internal/fetch"
	"libinstall/internal/installer"
	"libinstall/internal/logger"
	"libinstall/internal/manifest"
	"libinstall/pkg/bootstrap"
	"libinstall/pkg/metrics"
	"libinstall/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	registry       *prometheus.Registry
	tracerProvider *tracing.TracerProvider
	service        *installer.Service
	installed      bool
}

func NewApp(cfg *config.Config, log logger.Logger, command string) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetCommand(command)
	}
	return &App{
		Base:     bootstrap.NewBase(cfg, log),
		registry: prometheus.NewRegistry(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	tp, err := tracing.Init(a.Config.Tracing, "")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	if err := metrics.RegisterInstallMetrics(a.registry); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	a.service = installer.NewService(manifest.NewReader(), a.newFetcher(), a.Config, a.Logger)

	a.Logger.DebugwCtx(ctx, "Application initialized",
		"manifest", a.Config.Manifest.Path,
		"field", a.Config.Manifest.Field,
	)
	return nil
}

func (a *App) newFetcher() *fetch.Fetcher {
	opts := []fetch.Option{
		fetch.WithArchivePattern(a.Config.Install.ArchivePattern),
		fetch.WithUserAgent(a.Config.Fetch.UserAgent),
		fetch.WithTimeout(a.Config.Fetch.Timeout),
		fetch.WithRateLimit(a.Config.Fetch.RateLimitBytes),
		fetch.WithLogger(a.Logger),
	}
	if a.Config.Tracing.Enabled {
		opts = append(opts, fetch.WithTransport(tracing.HTTPTransport(nil)))
	}
	return fetch.New(opts...)
}

func (a *App) Install(ctx context.Context) (*installer.Outcome, error) {
	a.installed = true
	return a.service.Install(ctx)
}

func (a *App) ResolveURL(ctx context.Context) (string, error) {
	return a.service.ResolveURL(ctx)
}

func (a *App) Shutdown(ctx context.Context) error {
	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.installed && a.Config.Metrics.Enabled() {
			pushCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
			defer cancel()
			pusher := metrics.NewPusher(a.Config.Metrics.PushgatewayURL, a.Config.Metrics.Job, a.registry).
				Grouping("run_id", a.RunID)
			if err := pusher.Push(pushCtx); err != nil {
				errs = append(errs, err)
			} else {
				a.Logger.DebugwCtx(ctx, "Metrics pushed", "job", a.Config.Metrics.Job)
			}
		}

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
