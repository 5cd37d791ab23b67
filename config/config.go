package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/kosarica/booking-calculator/internal/middleware"
	"github.com/kosarica/booking-calculator/internal/pricing"
	"github.com/kosarica/booking-calculator/internal/rules"
	"github.com/kosarica/booking-calculator/internal/telemetry"
	"github.com/kosarica/booking-calculator/internal/validation"
)

// EnvPrefix prefixes every environment override, e.g.
// BOOKING_CALCULATOR_PRICING_CACHE_SIZE.
const EnvPrefix = "BOOKING_CALCULATOR"

// Config holds the application configuration
type Config struct {
	Server     ServerConfig      `mapstructure:"server"`
	Logging    LoggingConfig     `mapstructure:"logging"`
	RateLimit  RateLimitConfig   `mapstructure:"rate_limit"`
	Telemetry  telemetry.Config  `mapstructure:"telemetry"`
	Catalog    CatalogConfig     `mapstructure:"catalog"`
	Pricing    *pricing.Config   `mapstructure:"pricing"`
	Rules      rules.Config      `mapstructure:"rules"`
	Validation validation.Config `mapstructure:"validation"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
}

// Limiter converts the section into middleware settings.
func (c RateLimitConfig) Limiter() middleware.RateLimiterConfig {
	return middleware.RateLimiterConfig{
		RequestsPerSecond: c.RequestsPerSecond,
		BurstSize:         c.Burst,
		IdleTimeout:       c.IdleTimeout,
	}
}

// CatalogConfig locates the service catalog
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

var globalConfig *Config

// Load loads the configuration from defaults, an optional YAML file, .env
// and environment variables, in increasing precedence.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := loadEnvFile(); err != nil {
		// .env is optional
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := Config{
		Pricing:    pricing.Defaults(),
		Rules:      rules.Defaults(),
		Validation: validation.Config{},
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Validate checks the engine sections.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit needs positive requests_per_second and burst")
	}
	if err := c.Pricing.Validate(); err != nil {
		return fmt.Errorf("pricing: %w", err)
	}
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	return nil
}

// loadEnvFile loads the first .env file found by parsing KEY=VALUE lines and
// setting them as environment variables. Existing variables win.
func loadEnvFile() error {
	for _, dir := range []string{".", "./config"} {
		envFile := dir + "/.env"
		if _, err := os.Stat(envFile); err == nil {
			return loadDotEnvFile(envFile)
		}
	}
	return fmt.Errorf("no .env file found")
}

// loadDotEnvFile reads a .env file and sets environment variables
func loadDotEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		if _, set := os.LookupEnv(key); set {
			continue
		}
		os.Setenv(key, strings.Trim(strings.TrimSpace(value), "\"'"))
	}
	return scanner.Err()
}

// bindEnvVars binds the unprefixed environment variables
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("catalog.path", "CATALOG_PATH")
}

// setDefaults sets default configuration values. Pricing maps and lists
// default through pricing.Defaults; only scalars are registered here so
// environment overrides can find them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)
	v.SetDefault("rate_limit.idle_timeout", 10*time.Minute)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", telemetry.DefaultEndpoint)
	v.SetDefault("telemetry.service_name", telemetry.DefaultServiceName)

	v.SetDefault("catalog.path", "./config/catalog.yaml")

	p := pricing.Defaults()
	v.SetDefault("pricing.rut_percentage", p.RutPercentage)
	v.SetDefault("pricing.window_minimum_charge", p.WindowMinimumCharge)
	v.SetDefault("pricing.min_area", p.MinArea)
	v.SetDefault("pricing.max_area", p.MaxArea)
	v.SetDefault("pricing.vat_rate", p.VatRate)
	v.SetDefault("pricing.cache_size", p.CacheSize)
	v.SetDefault("pricing.cache_ttl", p.CacheTTL)
	v.SetDefault("pricing.debug", false)

	v.SetDefault("rules.continue_on_error", false)
	v.SetDefault("rules.history_size", rules.DefaultHistorySize)
	v.SetDefault("rules.debug", false)

	v.SetDefault("validation.debug", false)
}

// Get returns the configuration from the last successful Load
func Get() *Config {
	return globalConfig
}
