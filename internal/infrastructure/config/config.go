package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration. Keys mirror config.toml sections,
// e.g. [receiving] idempotency_ttl, and every key can be overridden by an
// HMS_ environment variable such as HMS_RECEIVING_IDEMPOTENCY_TTL.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Costing   CostingConfig   `mapstructure:"costing"`
	Receiving ReceivingConfig `mapstructure:"receiving"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Port    string `mapstructure:"port"`
	Version string `mapstructure:"version"`
}

// DatabaseConfig describes the PostgreSQL connection. Lifetimes are in minutes.
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr is host:port for the redis client.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LogConfig selects the zap level (debug|info|warn|error), encoding
// (json|console) and sink (stdout, stderr or a file path).
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// HTTPConfig tunes the server. No CORS origins means cross-origin requests are refused.
type HTTPConfig struct {
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes   int           `mapstructure:"max_header_bytes"`
	MaxBodySize      int64         `mapstructure:"max_body_size"`
	CORSAllowOrigins []string      `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string      `mapstructure:"trusted_proxies"`
}

// CostingConfig governs department service cost calculation.
// MaxPercentage bounds fee, discount and doctor percentages; 0 means unbounded.
type CostingConfig struct {
	RejectNegativeFinalCost bool    `mapstructure:"reject_negative_final_cost"`
	MaxPercentage           float64 `mapstructure:"max_percentage"`
}

// ReceivingConfig governs duplicate detection for purchase order receipts.
// IdempotencyStore is "memory" or "redis".
type ReceivingConfig struct {
	IdempotencyEnabled bool          `mapstructure:"idempotency_enabled"`
	IdempotencyTTL     time.Duration `mapstructure:"idempotency_ttl"`
	IdempotencyStore   string        `mapstructure:"idempotency_store"`
}

// TelemetryConfig drives OpenTelemetry export. Enabled covers traces, MetricsEnabled
// metrics. DBLogFullSQL puts bound query values on spans and is refused in production.
type TelemetryConfig struct {
	Enabled               bool          `mapstructure:"enabled"`
	MetricsEnabled        bool          `mapstructure:"metrics_enabled"`
	CollectorEndpoint     string        `mapstructure:"collector_endpoint"`
	SamplingRatio         float64       `mapstructure:"sampling_ratio"`
	ServiceName           string        `mapstructure:"service_name"`
	Insecure              bool          `mapstructure:"insecure"`
	ExportInterval        time.Duration `mapstructure:"export_interval"`
	StatusCollectInterval time.Duration `mapstructure:"status_collect_interval"`
	DBTraceEnabled        bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL          bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh     time.Duration `mapstructure:"db_slow_query_threshold"`
}

// defaults lists every key. Registering a key is also what lets AutomaticEnv
// reach it during Unmarshal, so keys without a meaningful default appear with
// their zero value.
var defaults = map[string]any{
	"app.name":    "hms-backend",
	"app.env":     "development",
	"app.port":    "8080",
	"app.version": "",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "hms",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":       15 * time.Second,
	"http.write_timeout":      15 * time.Second,
	"http.idle_timeout":       time.Minute,
	"http.max_header_bytes":   1 << 20,
	"http.max_body_size":      int64(10 << 20),
	"http.cors_allow_origins": []string{},
	"http.cors_allow_methods": []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	"http.cors_allow_headers": []string{"Content-Type", "Authorization", "X-Request-ID", "Idempotency-Key"},
	"http.trusted_proxies":    []string{},

	"costing.reject_negative_final_cost": false,
	"costing.max_percentage":             0.0,

	"receiving.idempotency_enabled": true,
	"receiving.idempotency_ttl":     24 * time.Hour,
	"receiving.idempotency_store":   "memory",

	"telemetry.enabled":                 false,
	"telemetry.metrics_enabled":         false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "",
	"telemetry.insecure":                false,
	"telemetry.export_interval":         time.Minute,
	"telemetry.status_collect_interval": 5 * time.Minute,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,
}

// Load reads config.toml from ., ./config or /app if present, then applies
// HMS_ environment overrides on top of the built-in defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("HMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Costing.MaxPercentage < 0 {
		return fmt.Errorf("costing.max_percentage cannot be negative")
	}

	switch c.Receiving.IdempotencyStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("receiving.idempotency_store must be 'memory' or 'redis', got %q", c.Receiving.IdempotencyStore)
	}
	if c.Receiving.IdempotencyTTL < 0 {
		return fmt.Errorf("receiving.idempotency_ttl cannot be negative")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		// Query variables carry patient and supplier data
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
		// Multiple instances need a shared store to detect duplicate receipts
		if c.Receiving.IdempotencyEnabled && c.Receiving.IdempotencyStore == "memory" {
			return fmt.Errorf("receiving.idempotency_store must be 'redis' in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction reports whether app.env is "production".
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN renders a postgres:// URL with user and password escaped.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
