package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig
	DB           DBConfig
	S3           S3Config
	Log          LogConfig
	Extractor    ExtractorConfig
	Queue        QueueConfig
	Raster       RasterConfig
	Materializer MaterializerConfig
	Alert        AlertConfig
}

// AlertConfig holds operator alert delivery settings.
type AlertConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	ToAddress   string `mapstructure:"to_address"`
}

// QueueConfig holds processing queue settings.
type QueueConfig struct {
	Workers         int `mapstructure:"workers"`
	MaxRetries      int `mapstructure:"max_retries"`
	RetryDelaySecs  int `mapstructure:"retry_delay_secs"`
	FollowUpWorkers int `mapstructure:"follow_up_workers"`
}

// RetryDelay returns the fixed delay between processing attempts.
func (q *QueueConfig) RetryDelay() time.Duration {
	return time.Duration(q.RetryDelaySecs) * time.Second
}

// RasterConfig holds page rendering settings.
type RasterConfig struct {
	PdftoppmPath        string `mapstructure:"pdftoppm_path"`
	DPI                 int    `mapstructure:"dpi"`
	MaxPages            int    `mapstructure:"max_pages"`
	PageTextTimeoutSecs int    `mapstructure:"page_text_timeout_secs"`
	UploadPages         bool   `mapstructure:"upload_pages"`
}

// PageTextTimeout bounds text extraction for a single PDF page.
func (r *RasterConfig) PageTextTimeout() time.Duration {
	return time.Duration(r.PageTextTimeoutSecs) * time.Second
}

// MaterializerConfig holds claim materialization settings.
type MaterializerConfig struct {
	SiblingWindowMins int `mapstructure:"sibling_window_mins"`
}

// SiblingWindow returns the window around an FNOL upload in which sibling documents are linked.
func (m *MaterializerConfig) SiblingWindow() time.Duration {
	return time.Duration(m.SiblingWindowMins) * time.Minute
}

// ProviderConfig holds settings for a single extraction provider.
type ProviderConfig struct {
	Provider          string `mapstructure:"provider"`
	APIKey            string `mapstructure:"api_key"`
	DefaultModel      string `mapstructure:"default_model"`
	TimeoutSecs       int    `mapstructure:"timeout_secs"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
	BaseURL           string `mapstructure:"base_url"`
}

// ExtractorConfig holds extraction service settings with multi-provider support.
type ExtractorConfig struct {
	Primary   ProviderConfig `mapstructure:"primary"`
	Secondary ProviderConfig `mapstructure:"secondary"`
	Tertiary  ProviderConfig `mapstructure:"tertiary"`
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (e *ExtractorConfig) SecondaryConfig() *ProviderConfig {
	if e.Secondary.Provider != "" {
		return &e.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (e *ExtractorConfig) TertiaryConfig() *ProviderConfig {
	if e.Tertiary.Provider != "" {
		return &e.Tertiary
	}
	return nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`

	// AllowedOrigins lists the browser origins accepted by the CORS middleware.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`

	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	// MigrationsPath is the directory holding the golang-migrate SQL files.
	MigrationsPath string `mapstructure:"migrations_path"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// MigrationsSource returns the golang-migrate source URL for MigrationsPath.
func (d *DBConfig) MigrationsSource() string {
	return "file://" + filepath.ToSlash(d.MigrationsPath)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the CLAIMDESK_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLAIMDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "claimdesk")
	v.SetDefault("db.password", "claimdesk_secret")
	v.SetDefault("db.name", "claimdesk_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.connect_timeout", "5s")
	v.SetDefault("db.migrations_path", "db/migrations")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "claimdesk-documents")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Queue defaults
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.retry_delay_secs", 5)
	v.SetDefault("queue.follow_up_workers", 2)

	// Raster defaults
	v.SetDefault("raster.pdftoppm_path", "pdftoppm")
	v.SetDefault("raster.dpi", 200)
	v.SetDefault("raster.max_pages", 100)
	v.SetDefault("raster.page_text_timeout_secs", 10)
	v.SetDefault("raster.upload_pages", false)

	// Materializer defaults
	v.SetDefault("materializer.sibling_window_mins", 10)

	// Alert defaults
	v.SetDefault("alert.provider", "noop")
	v.SetDefault("alert.region", "us-east-1")
	v.SetDefault("alert.from_address", "noreply@claimdesk.local")
	v.SetDefault("alert.from_name", "Claimdesk")
	v.SetDefault("alert.to_address", "")

	// Extractor defaults
	v.SetDefault("extractor.primary.provider", "claude")
	v.SetDefault("extractor.primary.api_key", "")
	v.SetDefault("extractor.primary.default_model", "")
	v.SetDefault("extractor.primary.timeout_secs", 120)
	v.SetDefault("extractor.primary.requests_per_minute", 50)
	v.SetDefault("extractor.primary.base_url", "")
	v.SetDefault("extractor.secondary.provider", "")
	v.SetDefault("extractor.secondary.api_key", "")
	v.SetDefault("extractor.secondary.default_model", "")
	v.SetDefault("extractor.secondary.timeout_secs", 120)
	v.SetDefault("extractor.secondary.requests_per_minute", 50)
	v.SetDefault("extractor.secondary.base_url", "")
	v.SetDefault("extractor.tertiary.provider", "")
	v.SetDefault("extractor.tertiary.api_key", "")
	v.SetDefault("extractor.tertiary.default_model", "")
	v.SetDefault("extractor.tertiary.timeout_secs", 120)
	v.SetDefault("extractor.tertiary.requests_per_minute", 50)
	v.SetDefault("extractor.tertiary.base_url", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                             "CLAIMDESK_SERVER_PORT",
		"server.read_timeout":                     "CLAIMDESK_SERVER_READ_TIMEOUT",
		"server.write_timeout":                    "CLAIMDESK_SERVER_WRITE_TIMEOUT",
		"server.environment":                      "CLAIMDESK_SERVER_ENVIRONMENT",
		"server.allowed_origins":                  "CLAIMDESK_SERVER_ALLOWED_ORIGINS",
		"db.host":                                 "CLAIMDESK_DB_HOST",
		"db.port":                                 "CLAIMDESK_DB_PORT",
		"db.user":                                 "CLAIMDESK_DB_USER",
		"db.password":                             "CLAIMDESK_DB_PASSWORD",
		"db.name":                                 "CLAIMDESK_DB_NAME",
		"db.sslmode":                              "CLAIMDESK_DB_SSLMODE",
		"db.max_open":                             "CLAIMDESK_DB_MAX_OPEN",
		"db.max_idle":                             "CLAIMDESK_DB_MAX_IDLE",
		"s3.region":                               "CLAIMDESK_S3_REGION",
		"s3.bucket":                               "CLAIMDESK_S3_BUCKET",
		"s3.endpoint":                             "CLAIMDESK_S3_ENDPOINT",
		"s3.access_key":                           "CLAIMDESK_S3_ACCESS_KEY",
		"s3.secret_key":                           "CLAIMDESK_S3_SECRET_KEY",
		"log.level":                               "CLAIMDESK_LOG_LEVEL",
		"log.format":                              "CLAIMDESK_LOG_FORMAT",
		"queue.workers":                           "CLAIMDESK_QUEUE_WORKERS",
		"queue.max_retries":                       "CLAIMDESK_QUEUE_MAX_RETRIES",
		"queue.retry_delay_secs":                  "CLAIMDESK_QUEUE_RETRY_DELAY_SECS",
		"queue.follow_up_workers":                 "CLAIMDESK_QUEUE_FOLLOW_UP_WORKERS",
		"raster.pdftoppm_path":                    "CLAIMDESK_RASTER_PDFTOPPM_PATH",
		"raster.dpi":                              "CLAIMDESK_RASTER_DPI",
		"raster.max_pages":                        "CLAIMDESK_RASTER_MAX_PAGES",
		"raster.page_text_timeout_secs":           "CLAIMDESK_RASTER_PAGE_TEXT_TIMEOUT_SECS",
		"raster.upload_pages":                     "CLAIMDESK_RASTER_UPLOAD_PAGES",
		"materializer.sibling_window_mins":        "CLAIMDESK_MATERIALIZER_SIBLING_WINDOW_MINS",
		"alert.provider":                          "CLAIMDESK_ALERT_PROVIDER",
		"alert.region":                            "CLAIMDESK_ALERT_REGION",
		"alert.from_address":                      "CLAIMDESK_ALERT_FROM_ADDRESS",
		"alert.from_name":                         "CLAIMDESK_ALERT_FROM_NAME",
		"alert.to_address":                        "CLAIMDESK_ALERT_TO_ADDRESS",
		"extractor.primary.provider":              "CLAIMDESK_EXTRACTOR_PRIMARY_PROVIDER",
		"extractor.primary.api_key":               "CLAIMDESK_EXTRACTOR_PRIMARY_API_KEY",
		"extractor.primary.default_model":         "CLAIMDESK_EXTRACTOR_PRIMARY_DEFAULT_MODEL",
		"extractor.primary.timeout_secs":          "CLAIMDESK_EXTRACTOR_PRIMARY_TIMEOUT_SECS",
		"extractor.primary.requests_per_minute":   "CLAIMDESK_EXTRACTOR_PRIMARY_REQUESTS_PER_MINUTE",
		"extractor.primary.base_url":              "CLAIMDESK_EXTRACTOR_PRIMARY_BASE_URL",
		"extractor.secondary.provider":            "CLAIMDESK_EXTRACTOR_SECONDARY_PROVIDER",
		"extractor.secondary.api_key":             "CLAIMDESK_EXTRACTOR_SECONDARY_API_KEY",
		"extractor.secondary.default_model":       "CLAIMDESK_EXTRACTOR_SECONDARY_DEFAULT_MODEL",
		"extractor.secondary.timeout_secs":        "CLAIMDESK_EXTRACTOR_SECONDARY_TIMEOUT_SECS",
		"extractor.secondary.requests_per_minute": "CLAIMDESK_EXTRACTOR_SECONDARY_REQUESTS_PER_MINUTE",
		"extractor.secondary.base_url":            "CLAIMDESK_EXTRACTOR_SECONDARY_BASE_URL",
		"extractor.tertiary.provider":             "CLAIMDESK_EXTRACTOR_TERTIARY_PROVIDER",
		"extractor.tertiary.api_key":              "CLAIMDESK_EXTRACTOR_TERTIARY_API_KEY",
		"extractor.tertiary.default_model":        "CLAIMDESK_EXTRACTOR_TERTIARY_DEFAULT_MODEL",
		"extractor.tertiary.timeout_secs":         "CLAIMDESK_EXTRACTOR_TERTIARY_TIMEOUT_SECS",
		"extractor.tertiary.requests_per_minute":  "CLAIMDESK_EXTRACTOR_TERTIARY_REQUESTS_PER_MINUTE",
		"extractor.tertiary.base_url":             "CLAIMDESK_EXTRACTOR_TERTIARY_BASE_URL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Container platforms set a PORT env var. Use it if CLAIMDESK_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CLAIMDESK_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:           serverPort,
		ReadTimeout:    v.GetDuration("server.read_timeout"),
		WriteTimeout:   v.GetDuration("server.write_timeout"),
		Environment:    v.GetString("server.environment"),
		AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Queue = QueueConfig{
		Workers:         v.GetInt("queue.workers"),
		MaxRetries:      v.GetInt("queue.max_retries"),
		RetryDelaySecs:  v.GetInt("queue.retry_delay_secs"),
		FollowUpWorkers: v.GetInt("queue.follow_up_workers"),
	}
	cfg.Raster = RasterConfig{
		PdftoppmPath:        v.GetString("raster.pdftoppm_path"),
		DPI:                 v.GetInt("raster.dpi"),
		MaxPages:            v.GetInt("raster.max_pages"),
		PageTextTimeoutSecs: v.GetInt("raster.page_text_timeout_secs"),
		UploadPages:         v.GetBool("raster.upload_pages"),
	}
	cfg.Materializer = MaterializerConfig{
		SiblingWindowMins: v.GetInt("materializer.sibling_window_mins"),
	}
	cfg.Alert = AlertConfig{
		Provider:    v.GetString("alert.provider"),
		Region:      v.GetString("alert.region"),
		FromAddress: v.GetString("alert.from_address"),
		FromName:    v.GetString("alert.from_name"),
		ToAddress:   v.GetString("alert.to_address"),
	}
	cfg.Extractor = ExtractorConfig{
		Primary:   loadProvider(v, "extractor.primary"),
		Secondary: loadProvider(v, "extractor.secondary"),
		Tertiary:  loadProvider(v, "extractor.tertiary"),
	}

	return cfg, nil
}

func loadProvider(v *viper.Viper, prefix string) ProviderConfig {
	return ProviderConfig{
		Provider:          v.GetString(prefix + ".provider"),
		APIKey:            v.GetString(prefix + ".api_key"),
		DefaultModel:      v.GetString(prefix + ".default_model"),
		TimeoutSecs:       v.GetInt(prefix + ".timeout_secs"),
		RequestsPerMinute: v.GetInt(prefix + ".requests_per_minute"),
		BaseURL:           v.GetString(prefix + ".base_url"),
	}
}
