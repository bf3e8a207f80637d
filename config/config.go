package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the whole application configuration (§6).
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Outbox   OutboxConfig   `mapstructure:"outbox"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Log      LogConfig      `mapstructure:"log"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

// AppConfig carries process identity and the in-memory/Postgres toggle.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Env         string `mapstructure:"env"` // development, staging, production, test
	UseInMemory bool   `mapstructure:"use_inmemory"`
}

// ServerConfig bounds the HTTP listener.
type ServerConfig struct {
	Port            string          `mapstructure:"port"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig bounds the per-IP token bucket.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Rate    float64 `mapstructure:"rate"`
	Burst   int     `mapstructure:"burst"`
}

// DatabaseConfig points at the Postgres instance backing the outbox and
// order persistence, unless App.UseInMemory selects the in-memory doubles.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleTime     time.Duration `mapstructure:"max_idle_time"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// OutboxConfig bounds the dispatcher's polling behavior (§4.6).
type OutboxConfig struct {
	BatchSize      int `mapstructure:"batch_size"`
	PollIntervalMs int `mapstructure:"poll_interval_ms"`
}

// PricingConfig points at the external price catalog, when one is used.
type PricingConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// LogConfig configures pkg/logger.
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// CORSConfig configures middleware.CORSMiddleware.
type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// IsDevelopment reports whether App.Env is "development".
func (c *Config) IsDevelopment() bool { return c.App.Env == "development" }

// IsProduction reports whether App.Env is "production".
func (c *Config) IsProduction() bool { return c.App.Env == "production" }

// Load reads configuration from (in ascending priority) defaults, an
// optional YAML file, and environment variables — both the family's
// DDD_-prefixed form and the literal names spec.md enumerates (DATABASE_URL,
// USE_INMEMORY, OUTBOX_BATCH_SIZE, OUTBOX_POLL_INTERVAL_MS,
// PRICING_BASE_URL, PORT, LOG_LEVEL, NODE_ENV).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("DDD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLiteralEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// bindLiteralEnvVars honors spec.md's literal (unprefixed) environment
// variable names alongside the teacher's DDD_-prefixed convention.
func bindLiteralEnvVars(v *viper.Viper) {
	_ = v.BindEnv("app.env", "NODE_ENV")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("app.use_inmemory", "USE_INMEMORY")
	_ = v.BindEnv("log.level", "LOG_LEVEL")
	_ = v.BindEnv("outbox.batch_size", "OUTBOX_BATCH_SIZE")
	_ = v.BindEnv("outbox.poll_interval_ms", "OUTBOX_POLL_INTERVAL_MS")
	_ = v.BindEnv("pricing.base_url", "PRICING_BASE_URL")
}

// validate aborts startup with every offending field named at once, rather
// than failing on the first one found (§6).
func validate(cfg *Config) error {
	var problems []string

	if !cfg.App.UseInMemory && cfg.Database.URL == "" {
		problems = append(problems, "database.url (DATABASE_URL) is required unless app.use_inmemory is true")
	}
	if cfg.Outbox.BatchSize <= 0 {
		problems = append(problems, "outbox.batch_size (OUTBOX_BATCH_SIZE) must be positive")
	}
	if cfg.Outbox.PollIntervalMs <= 0 {
		problems = append(problems, "outbox.poll_interval_ms (OUTBOX_POLL_INTERVAL_MS) must be positive")
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

// setDefaults installs every default the spec and the teacher's own
// config.go carry.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "clean-orders")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.use_inmemory", false)

	v.SetDefault("server.port", "3000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.rate", 100)
	v.SetDefault("server.rate_limit.burst", 200)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_time", "30s")
	v.SetDefault("database.connect_timeout", "5s")
	v.SetDefault("database.migrations_dir", "migrations")

	v.SetDefault("outbox.batch_size", 10)
	v.SetDefault("outbox.poll_interval_ms", 5000)

	v.SetDefault("pricing.base_url", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "logs/app.log")

	v.SetDefault("cors.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allow_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allow_headers", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 86400)
}
