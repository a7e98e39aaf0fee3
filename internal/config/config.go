// Package config provides application configuration loaded from the
// environment (optionally a .env file and a payfisc.yaml file).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultAPIBaseURL is the development backend used when nothing is configured.
const DefaultAPIBaseURL = "http://localhost/payfisc/api"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	API       APIConfig       `mapstructure:"api"`
	Database  DatabaseConfig  `mapstructure:"db"`
	App       AppConfig       `mapstructure:"app"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Logging   LoggingConfig   `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// APIConfig describes the PayFisc PHP backend.
type APIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Credentials string        `mapstructure:"credentials"` // "include" replays backend cookies, "omit" does not
	RateLimit   float64       `mapstructure:"rate_limit"`  // requests per second, 0 disables throttling
	RateBurst   int           `mapstructure:"rate_burst"`
	UserAgent   string        `mapstructure:"user_agent"`
}

// DatabaseConfig holds the local console store settings (operators, journal).
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // "sqlite" or "postgres"
	URL      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev             bool          `mapstructure:"dev"`
	Migrations      bool          `mapstructure:"migrations"`
	SessionSecret   string        `mapstructure:"session_secret"`
	AlertTimeout    time.Duration `mapstructure:"alert_timeout"`
	AuditRetention  time.Duration `mapstructure:"audit_retention"`
	AuditPurgeSpec  string        `mapstructure:"audit_purge_spec"`
	ProfileCacheTTL time.Duration `mapstructure:"profile_cache_ttl"`
	AdminEmail      string        `mapstructure:"admin_email"`
	AdminPassword   string        `mapstructure:"admin_password"`
}

// AnalyticsConfig configures the fire-and-forget analytics beacon.
type AnalyticsConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// DSN returns the driver-specific connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "postgres" {
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
		)
	}
	return "payfisc-admin.db"
}

// IncludeCredentials reports whether backend cookies are replayed.
func (a APIConfig) IncludeCredentials() bool {
	return !strings.EqualFold(a.Credentials, "omit")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("api.base_url", DefaultAPIBaseURL)
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.credentials", "include")
	v.SetDefault("api.rate_limit", 0)
	v.SetDefault("api.rate_burst", 10)
	v.SetDefault("api.user_agent", "payfisc-admin/1.0")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "payfisc")
	v.SetDefault("db.password", "payfisc")
	v.SetDefault("db.name", "payfisc_admin")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("app.dev", true)
	v.SetDefault("app.migrations", true)
	v.SetDefault("app.session_secret", "")
	v.SetDefault("app.alert_timeout", "5s")
	v.SetDefault("app.audit_retention", "2160h")
	v.SetDefault("app.audit_purge_spec", "@daily")
	v.SetDefault("app.profile_cache_ttl", "5m")
	v.SetDefault("app.admin_email", "admin@payfisc.local")
	v.SetDefault("app.admin_password", "")

	v.SetDefault("analytics.url", "")
	v.SetDefault("analytics.token", "")
	v.SetDefault("analytics.timeout", "3s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads .env (if any), payfisc.yaml (if any) and the environment.
// Environment keys are the upper-cased paths: API_BASE_URL, DB_DRIVER, ...
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("payfisc")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Names inherited from the former front-end deployment.
	_ = v.BindEnv("api.base_url", "API_BASE_URL", "NEXT_PUBLIC_API_URL")
	_ = v.BindEnv("analytics.token", "ANALYTICS_TOKEN", "NEXT_PUBLIC_ANALYTICS_TOKEN")
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("app.dev", "APP_DEV", "DEV")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read payfisc.yaml: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the console cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: API_BASE_URL invalide: %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return errors.New("config: API_TIMEOUT doit être positif")
	}
	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("config: DB_DRIVER inconnu: %q", c.Database.Driver)
	}
	if !c.App.Dev && c.App.SessionSecret == "" {
		return errors.New("config: APP_SESSION_SECRET est requis hors mode dev")
	}
	return nil
}
