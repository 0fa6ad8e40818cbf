// Package fetch downloads a zip archive over HTTP into a destination
// directory, expands it there and removes the downloaded archive.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/time/rate"

	"libinstall/internal/archive"
	"libinstall/internal/constants"
	"libinstall/internal/logger"
	apperrors "libinstall/pkg/errors"
)

type Result struct {
	ArchivePath      string
	Bytes            int64
	Entries          []string
	DownloadDuration time.Duration
	ExtractDuration  time.Duration
}

type Fetcher struct {
	client         *http.Client
	transport      http.RoundTripper
	timeout        time.Duration
	archivePattern string
	userAgent      string
	limiter        *rate.Limiter
	log            logger.Logger
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		archivePattern: constants.DefaultArchivePattern,
		userAgent:      constants.DefaultUserAgent,
		log:            logger.NopLogger(),
	}

	for _, opt := range opts {
		opt(f)
	}

	client := &http.Client{}
	if f.client != nil {
		c := *f.client
		client = &c
	}
	if f.transport != nil {
		client.Transport = f.transport
	}
	if f.timeout > 0 {
		client.Timeout = f.timeout
	}
	f.client = client

	return f
}

// Fetch downloads rawURL into a temporary archive inside destination, extracts
// every entry into destination and removes the archive. A non-2xx response
// leaves destination untouched, without creating it, and returns
// DOWNLOAD_FAILED with the status.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, destination string) (*Result, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	if destination == "" {
		destination = constants.DefaultDestination
	}

	started := time.Now()

	resp, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
		f.log.WarnwCtx(ctx, "Download rejected", "status_code", resp.StatusCode)
		return nil, apperrors.ErrDownloadFailed.WithDetail(apperrors.DetailStatusCode, resp.StatusCode)
	}

	if err := os.MkdirAll(destination, constants.DirPerm); err != nil {
		return nil, apperrors.ErrFilesystem.
			WithCause(err).
			WithDetail(apperrors.DetailPath, destination)
	}

	tmp, err := os.CreateTemp(destination, f.archivePattern)
	if err != nil {
		return nil, apperrors.ErrFilesystem.
			WithCause(fmt.Errorf("failed to create temporary archive: %w", err)).
			WithDetail(apperrors.DetailPath, destination)
	}
	archivePath := tmp.Name()
	defer f.removeArchive(ctx, archivePath)

	n, err := f.save(ctx, tmp, resp.Body)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ArchivePath:      archivePath,
		Bytes:            n,
		DownloadDuration: time.Since(started),
	}
	f.log.InfowCtx(ctx, "Archive downloaded", "bytes", n, "path", archivePath)

	extractStarted := time.Now()
	entries, err := archive.Extract(archivePath, destination)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", archivePath, err)
	}
	result.Entries = entries
	result.ExtractDuration = time.Since(extractStarted)

	if err := os.Remove(archivePath); err != nil {
		return nil, apperrors.ErrFilesystem.
			WithCause(fmt.Errorf("failed to remove temporary archive: %w", err)).
			WithDetail(apperrors.DetailPath, archivePath)
	}

	f.log.InfowCtx(ctx, "Archive extracted", "entries", len(entries))
	return result, nil
}

func (f *Fetcher) get(ctx context.Context, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, apperrors.ErrValidation.
			WithCause(err).
			WithDetail(apperrors.DetailMessage, "failed to create request")
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	f.log.DebugwCtx(ctx, "Requesting archive", "host", u.Host)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.ErrDownloadFailed.WithCause(err)
	}
	return resp, nil
}

// save copies body into tmp and closes tmp. Read failures are download
// failures; write failures are filesystem failures.
func (f *Fetcher) save(ctx context.Context, tmp *os.File, body io.Reader) (int64, error) {
	if f.limiter != nil {
		body = &throttledReader{ctx: ctx, r: body, limiter: f.limiter}
	}
	src := &bodyReader{r: body}

	n, err := io.Copy(tmp, src)
	if err != nil {
		tmp.Close()
		if src.err != nil {
			return n, apperrors.ErrDownloadFailed.WithCause(fmt.Errorf("failed to read response body: %w", src.err))
		}
		return n, apperrors.ErrFilesystem.
			WithCause(err).
			WithDetail(apperrors.DetailPath, tmp.Name())
	}

	if err := tmp.Close(); err != nil {
		return n, apperrors.ErrFilesystem.
			WithCause(err).
			WithDetail(apperrors.DetailPath, tmp.Name())
	}

	return n, nil
}

func (f *Fetcher) removeArchive(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		f.log.WarnwCtx(ctx, "Failed to remove temporary archive", "path", path, "error", err)
	}
}

// ParseURL accepts absolute http and https URLs only.
func ParseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperrors.ErrValidation.
			WithCause(err).
			WithDetail(apperrors.DetailMessage, "malformed url")
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, apperrors.ErrValidation.
			WithDetail(apperrors.DetailMessage, fmt.Sprintf("unsupported url scheme %q", u.Scheme))
	}

	if u.Host == "" {
		return nil, apperrors.ErrValidation.
			WithDetail(apperrors.DetailMessage, "url has no host")
	}

	return u, nil
}
