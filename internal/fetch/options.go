package fetch

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"libinstall/internal/logger"
)

type Option func(*Fetcher)

// WithHTTPClient replaces the default client. The client is copied, never mutated.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithTransport sets the round tripper used for the download request.
func WithTransport(transport http.RoundTripper) Option {
	return func(f *Fetcher) {
		f.transport = transport
	}
}

// WithTimeout bounds the whole request including the body read. Zero keeps
// the transport defaults.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = timeout
	}
}

// WithArchivePattern sets the os.CreateTemp pattern for the temporary archive.
func WithArchivePattern(pattern string) Option {
	return func(f *Fetcher) {
		if pattern != "" {
			f.archivePattern = pattern
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(f *Fetcher) {
		f.userAgent = userAgent
	}
}

// WithRateLimit throttles the body download to bytesPerSecond. Zero disables it.
func WithRateLimit(bytesPerSecond int) Option {
	return func(f *Fetcher) {
		if bytesPerSecond <= 0 {
			f.limiter = nil
			return
		}
		f.limiter = rate.NewLimiter(rate.Limit(bytesPerSecond), bytesPerSecond)
	}
}

func WithLogger(log logger.Logger) Option {
	return func(f *Fetcher) {
		if log != nil {
			f.log = log
		}
	}
}
