package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"libinstall/internal/constants"
)

// Flag names bound onto config keys by LoadConfig.
const (
	FlagManifest = "manifest"
	FlagField    = "field"
	FlagDest     = "dest"
	FlagLogLevel = "log-level"
)

var flagKeys = map[string]string{
	FlagManifest: "manifest.path",
	FlagField:    "manifest.field",
	FlagDest:     "install.destination",
	FlagLogLevel: "logging.level",
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// LIBINSTALL_* environment variables and changed command-line flags, in
// increasing order of precedence.
func LoadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(constants.AppName)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvVariables()

	if err := bindFlags(flags); err != nil {
		return nil, err
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalize(&cfg)

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("manifest.path", constants.DefaultManifestPath)
	viper.SetDefault("manifest.field", constants.DefaultManifestField)

	viper.SetDefault("install.destination", constants.DefaultDestination)
	viper.SetDefault("install.archive_pattern", constants.DefaultArchivePattern)

	viper.SetDefault("fetch.timeout", "0s")
	viper.SetDefault("fetch.user_agent", constants.DefaultUserAgent)
	viper.SetDefault("fetch.rate_limit_bytes", 0)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("metrics.pushgateway_url", "")
	viper.SetDefault("metrics.job", constants.DefaultMetricsJob)

	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.service_name", constants.AppName)
	viper.SetDefault("tracing.otlp.endpoint", "")
	viper.SetDefault("tracing.otlp.insecure", false)
	viper.SetDefault("tracing.sampler.type", "always_on")
	viper.SetDefault("tracing.sampler.param", 1.0)
}

func bindEnvVariables() {
	viper.BindEnv("manifest.path", "LIBINSTALL_MANIFEST_PATH")
	viper.BindEnv("manifest.field", "LIBINSTALL_MANIFEST_FIELD")

	viper.BindEnv("install.destination", "LIBINSTALL_INSTALL_DESTINATION")
	viper.BindEnv("install.archive_pattern", "LIBINSTALL_INSTALL_ARCHIVE_PATTERN")

	viper.BindEnv("fetch.timeout", "LIBINSTALL_FETCH_TIMEOUT")
	viper.BindEnv("fetch.user_agent", "LIBINSTALL_FETCH_USER_AGENT")
	viper.BindEnv("fetch.rate_limit_bytes", "LIBINSTALL_FETCH_RATE_LIMIT_BYTES")

	viper.BindEnv("logging.level", "LIBINSTALL_LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LIBINSTALL_LOGGING_FORMAT")

	viper.BindEnv("metrics.pushgateway_url", "LIBINSTALL_METRICS_PUSHGATEWAY_URL")
	viper.BindEnv("metrics.job", "LIBINSTALL_METRICS_JOB")

	viper.BindEnv("tracing.enabled", "LIBINSTALL_TRACING_ENABLED")
	viper.BindEnv("tracing.service_name", "LIBINSTALL_TRACING_SERVICE_NAME")
	viper.BindEnv("tracing.otlp.endpoint", "LIBINSTALL_TRACING_OTLP_ENDPOINT")
	viper.BindEnv("tracing.otlp.insecure", "LIBINSTALL_TRACING_OTLP_INSECURE")
}

func bindFlags(flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}

	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}

	return nil
}

func normalize(cfg *Config) {
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	cfg.Manifest.Field = strings.TrimSpace(cfg.Manifest.Field)

	// An empty destination means the working directory.
	if strings.TrimSpace(cfg.Install.Destination) == "" {
		cfg.Install.Destination = constants.DefaultDestination
	}
}
