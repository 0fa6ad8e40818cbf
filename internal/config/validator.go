package config

import (
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateManifest(cfg.Manifest); err != nil {
		errors = append(errors, err)
	}

	if err := validateInstall(cfg.Install); err != nil {
		errors = append(errors, err)
	}

	if err := validateFetch(cfg.Fetch); err != nil {
		errors = append(errors, err)
	}

	if err := validateLogging(cfg.Logging); err != nil {
		errors = append(errors, err)
	}

	if err := validateMetrics(cfg.Metrics); err != nil {
		errors = append(errors, err)
	}

	if err := validateTracing(cfg.Tracing); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateManifest(cfg ManifestConfig) error {
	if cfg.Path == "" {
		return &ValidationError{
			Field:   "manifest.path",
			Message: "manifest path is required",
		}
	}

	if cfg.Field == "" {
		return &ValidationError{
			Field:   "manifest.field",
			Message: "manifest field is required",
		}
	}

	for _, segment := range strings.Split(cfg.Field, ".") {
		if segment == "" {
			return &ValidationError{
				Field:   "manifest.field",
				Message: fmt.Sprintf("field path %q contains an empty segment", cfg.Field),
			}
		}
	}

	return nil
}

func validateInstall(cfg InstallConfig) error {
	if cfg.ArchivePattern == "" {
		return &ValidationError{
			Field:   "install.archive_pattern",
			Message: "archive pattern is required",
		}
	}

	if strings.ContainsAny(cfg.ArchivePattern, `/\`) {
		return &ValidationError{
			Field:   "install.archive_pattern",
			Message: "archive pattern must be a file name, not a path",
		}
	}

	return nil
}

func validateFetch(cfg FetchConfig) error {
	if cfg.Timeout < 0 {
		return &ValidationError{
			Field:   "fetch.timeout",
			Message: "timeout must be non-negative",
		}
	}

	if cfg.RateLimitBytes < 0 {
		return &ValidationError{
			Field:   "fetch.rate_limit_bytes",
			Message: "rate limit must be non-negative",
		}
	}

	return nil
}

func validateLogging(cfg LoggingConfig) error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[cfg.Level] {
		return &ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level: %s (valid: debug, info, warn, error)", cfg.Level),
		}
	}

	if cfg.Format != "json" && cfg.Format != "console" {
		return &ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid format: %s (valid: json, console)", cfg.Format),
		}
	}

	return nil
}

func validateMetrics(cfg MetricsConfig) error {
	if !cfg.Enabled() {
		return nil
	}

	u, err := url.Parse(cfg.PushgatewayURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{
			Field:   "metrics.pushgateway_url",
			Message: fmt.Sprintf("pushgateway url must be an absolute http(s) url, got %q", cfg.PushgatewayURL),
		}
	}

	if cfg.Job == "" {
		return &ValidationError{
			Field:   "metrics.job",
			Message: "job name is required when pushing metrics",
		}
	}

	return nil
}

func validateTracing(cfg TracingConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.OTLP.Endpoint == "" {
		return &ValidationError{
			Field:   "tracing.otlp.endpoint",
			Message: "OTLP endpoint is required when tracing is enabled",
		}
	}

	validSamplers := map[string]bool{
		"always_on": true, "always_off": true, "traceidratio": true,
		"parentbased_always_on": true, "parentbased_traceidratio": true,
	}
	if cfg.Sampler.Type != "" && !validSamplers[cfg.Sampler.Type] {
		return &ValidationError{
			Field:   "tracing.sampler.type",
			Message: fmt.Sprintf("invalid sampler type: %s", cfg.Sampler.Type),
		}
	}

	if cfg.Sampler.Param < 0 || cfg.Sampler.Param > 1 {
		return &ValidationError{
			Field:   "tracing.sampler.param",
			Message: "sampler param must be between 0 and 1",
		}
	}

	return nil
}
