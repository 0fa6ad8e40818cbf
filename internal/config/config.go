package config

import (
	"time"
)

type Config struct {
	Manifest ManifestConfig `mapstructure:"manifest"`
	Install  InstallConfig  `mapstructure:"install"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// ManifestConfig locates the archive URL. The manifest schema is owned by
// another tool, so only the dotted field path is interpreted.
type ManifestConfig struct {
	Path  string `mapstructure:"path"`
	Field string `mapstructure:"field"`
}

type InstallConfig struct {
	Destination    string `mapstructure:"destination"`
	ArchivePattern string `mapstructure:"archive_pattern"`
}

type FetchConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"` // 0 keeps the transport defaults
	UserAgent      string        `mapstructure:"user_agent"`
	RateLimitBytes int           `mapstructure:"rate_limit_bytes"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

func (c MetricsConfig) Enabled() bool {
	return c.PushgatewayURL != ""
}

type TracingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	OTLP        OTLPConfig    `mapstructure:"otlp"`
	Sampler     SamplerConfig `mapstructure:"sampler"`
}

type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type SamplerConfig struct {
	Type  string  `mapstructure:"type"`
	Param float64 `mapstructure:"param"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile, nil)
}
