package bootstrap

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"libinstall/internal/config"
	"libinstall/internal/logger"
	"libinstall/pkg/logging"
)

// Base carries what every command needs: configuration, a logger and the
// id that ties one run's log lines and metrics together.
type Base struct {
	Config *config.Config
	Logger logger.Logger
	RunID  string
}

func NewBase(cfg *config.Config, log logger.Logger) *Base {
	return &Base{
		Config: cfg,
		Logger: log,
		RunID:  uuid.NewString(),
	}
}

func (b *Base) Context(ctx context.Context) context.Context {
	return logging.WithRunID(ctx, b.RunID)
}

func (b *Base) Shutdown(ctx context.Context, additionalShutdown func(ctx context.Context) []error) error {
	b.Logger.DebugwCtx(ctx, "Shutting down")

	var errs []error

	if additionalShutdown != nil {
		errs = append(errs, additionalShutdown(ctx)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	return nil
}
