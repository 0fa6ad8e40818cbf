package installer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"libinstall/internal/config"
	"libinstall/internal/constants"
	"libinstall/internal/fetch"
	"libinstall/internal/logger"
	apperrors "libinstall/pkg/errors"
	"libinstall/pkg/logging"
	"libinstall/pkg/metrics"
	"libinstall/pkg/tracing"
)

type ManifestReader interface {
	ReadString(path, field string) (string, bool, error)
}

type ArchiveFetcher interface {
	Fetch(ctx context.Context, url, destination string) (*fetch.Result, error)
}

type Outcome struct {
	URL         string
	Destination string
	Result      *fetch.Result
}

type Service struct {
	reader   ManifestReader
	fetcher  ArchiveFetcher
	manifest config.ManifestConfig
	install  config.InstallConfig
	logger   logger.Logger
	now      func() time.Time
}

func NewService(reader ManifestReader, fetcher ArchiveFetcher, cfg *config.Config, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger()
	}
	return &Service{
		reader:   reader,
		fetcher:  fetcher,
		manifest: cfg.Manifest,
		install:  cfg.Install,
		logger:   log,
		now:      time.Now,
	}
}

// ResolveURL reads the archive URL from the manifest. An absent URL is
// reported as URL_NOT_FOUND.
func (s *Service) ResolveURL(ctx context.Context) (string, error) {
	url, found, err := s.reader.ReadString(s.manifest.Path, s.manifest.Field)
	if err != nil {
		return "", fmt.Errorf("failed to read manifest: %w", err)
	}

	if !found {
		s.logger.WarnwCtx(ctx, "Archive URL not found in manifest",
			"manifest", s.manifest.Path,
			"field", s.manifest.Field,
		)
		return "", apperrors.ErrURLNotFound.
			WithDetail(apperrors.DetailPath, s.manifest.Path).
			WithDetail(apperrors.DetailField, s.manifest.Field)
	}

	return url, nil
}

// Install resolves the URL and, only when it is present, downloads and
// expands the archive into the configured destination.
func (s *Service) Install(ctx context.Context) (*Outcome, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "install")
	defer span.End()

	outcome, err := s.run(ctx)

	status := runStatus(err)
	metrics.IncRun(status)
	span.SetAttributes(attribute.String("libinstall.status", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
	}

	return outcome, err
}

func (s *Service) run(ctx context.Context) (*Outcome, error) {
	url, err := s.ResolveURL(ctx)
	if err != nil {
		return nil, err
	}

	destination := s.install.Destination
	ctx = logging.WithURL(ctx, url)
	ctx = logging.WithDestination(ctx, destination)

	s.logger.InfowCtx(ctx, "Installing libraries")

	result, err := s.fetcher.Fetch(ctx, url, destination)
	if err != nil {
		if apperrors.IsDownloadFailed(err) {
			metrics.IncDownloadFailure(failureLabel(err))
		}
		s.logger.ErrorwCtx(ctx, "Install failed", "error", err, "code", apperrors.Code(err))
		return nil, err
	}

	metrics.ObserveDownload(result.Bytes, result.DownloadDuration)
	metrics.ObserveExtract(len(result.Entries), result.ExtractDuration)
	metrics.SetLastSuccess(s.now())

	s.logger.InfowCtx(ctx, "Install complete",
		"entries", len(result.Entries),
		"bytes", result.Bytes,
	)

	return &Outcome{
		URL:         url,
		Destination: destination,
		Result:      result,
	}, nil
}

func runStatus(err error) string {
	switch {
	case err == nil:
		return constants.RunStatusSuccess
	case errors.Is(err, apperrors.ErrURLNotFound):
		return constants.RunStatusNotFound
	case errors.Is(err, apperrors.ErrDownloadFailed):
		return constants.RunStatusDownloadFailed
	default:
		return constants.RunStatusError
	}
}

func failureLabel(err error) string {
	if status, ok := apperrors.StatusCode(err); ok {
		return strconv.Itoa(status)
	}
	return constants.FailureLabelTransport
}
