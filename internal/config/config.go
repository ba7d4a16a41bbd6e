package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	JWT      JWTConfig
	S3       S3Config
	Log      LogConfig
	Analyzer AnalyzerConfig
	CORS     CORSConfig
	Guest    GuestConfig
	Email    EmailConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// GuestConfig holds the unauthenticated usage cap.
type GuestConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AnalyzerConfig holds settings for the chat-completion provider.
type AnalyzerConfig struct {
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	BaseURL     string `mapstructure:"base_url"`
	MaxTokens   int    `mapstructure:"max_tokens"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// Configured reports whether a credential is available for the provider.
func (a *AnalyzerConfig) Configured() bool {
	return strings.TrimSpace(a.APIKey) != ""
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
	GuestCookie  string        `mapstructure:"guest_cookie"`
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
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds settings for the bucket that keeps uploaded bills.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
	Enabled       bool   `mapstructure:"enabled"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the MEDIGUARD_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MEDIGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_upload_mb", 20)
	v.SetDefault("server.guest_cookie", "mediguard_guest")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "mediguard")
	v.SetDefault("db.password", "mediguard_secret")
	v.SetDefault("db.name", "mediguard_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "1h")
	v.SetDefault("jwt.refresh_expiry", "720h")
	v.SetDefault("jwt.issuer", "mediguard")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "mediguard-bills")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 900)
	v.SetDefault("s3.enabled", false)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Analyzer defaults
	v.SetDefault("analyzer.provider", "openai")
	v.SetDefault("analyzer.api_key", "")
	v.SetDefault("analyzer.model", "gpt-4o-mini")
	v.SetDefault("analyzer.base_url", "")
	v.SetDefault("analyzer.max_tokens", 4096)
	v.SetDefault("analyzer.timeout_secs", 120)

	// Guest defaults
	v.SetDefault("guest.limit", 3)
	v.SetDefault("guest.window", "24h")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@mediguard.ai")
	v.SetDefault("email.from_name", "MediGuard AI")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":           "MEDIGUARD_SERVER_PORT",
		"server.read_timeout":   "MEDIGUARD_SERVER_READ_TIMEOUT",
		"server.write_timeout":  "MEDIGUARD_SERVER_WRITE_TIMEOUT",
		"server.environment":    "MEDIGUARD_SERVER_ENVIRONMENT",
		"server.max_upload_mb":  "MEDIGUARD_SERVER_MAX_UPLOAD_MB",
		"server.guest_cookie":   "MEDIGUARD_SERVER_GUEST_COOKIE",
		"db.host":               "MEDIGUARD_DB_HOST",
		"db.port":               "MEDIGUARD_DB_PORT",
		"db.user":               "MEDIGUARD_DB_USER",
		"db.password":           "MEDIGUARD_DB_PASSWORD",
		"db.name":               "MEDIGUARD_DB_NAME",
		"db.sslmode":            "MEDIGUARD_DB_SSLMODE",
		"db.max_open":           "MEDIGUARD_DB_MAX_OPEN",
		"db.max_idle":           "MEDIGUARD_DB_MAX_IDLE",
		"jwt.secret":            "MEDIGUARD_JWT_SECRET",
		"jwt.access_expiry":     "MEDIGUARD_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":    "MEDIGUARD_JWT_REFRESH_EXPIRY",
		"jwt.issuer":            "MEDIGUARD_JWT_ISSUER",
		"s3.region":             "MEDIGUARD_S3_REGION",
		"s3.bucket":             "MEDIGUARD_S3_BUCKET",
		"s3.endpoint":           "MEDIGUARD_S3_ENDPOINT",
		"s3.access_key":         "MEDIGUARD_S3_ACCESS_KEY",
		"s3.secret_key":         "MEDIGUARD_S3_SECRET_KEY",
		"s3.presign_expiry":     "MEDIGUARD_S3_PRESIGN_EXPIRY",
		"s3.enabled":            "MEDIGUARD_S3_ENABLED",
		"log.level":             "MEDIGUARD_LOG_LEVEL",
		"log.format":            "MEDIGUARD_LOG_FORMAT",
		"cors.allowed_origins":  "MEDIGUARD_CORS_ALLOWED_ORIGINS",
		"analyzer.provider":     "MEDIGUARD_ANALYZER_PROVIDER",
		"analyzer.api_key":      "MEDIGUARD_ANALYZER_API_KEY",
		"analyzer.model":        "MEDIGUARD_ANALYZER_MODEL",
		"analyzer.base_url":     "MEDIGUARD_ANALYZER_BASE_URL",
		"analyzer.max_tokens":   "MEDIGUARD_ANALYZER_MAX_TOKENS",
		"analyzer.timeout_secs": "MEDIGUARD_ANALYZER_TIMEOUT_SECS",
		"guest.limit":           "MEDIGUARD_GUEST_LIMIT",
		"guest.window":          "MEDIGUARD_GUEST_WINDOW",
		"email.provider":        "MEDIGUARD_EMAIL_PROVIDER",
		"email.region":          "MEDIGUARD_EMAIL_REGION",
		"email.from_address":    "MEDIGUARD_EMAIL_FROM_ADDRESS",
		"email.from_name":       "MEDIGUARD_EMAIL_FROM_NAME",
		"email.frontend_url":    "MEDIGUARD_EMAIL_FRONTEND_URL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if MEDIGUARD_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("MEDIGUARD_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		MaxUploadMB:  v.GetInt64("server.max_upload_mb"),
		GuestCookie:  v.GetString("server.guest_cookie"),
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
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
		Enabled:       v.GetBool("s3.enabled"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	// The bare OPENAI_API_KEY is accepted so existing deployments keep working.
	apiKey := v.GetString("analyzer.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.Analyzer = AnalyzerConfig{
		Provider:    v.GetString("analyzer.provider"),
		APIKey:      apiKey,
		Model:       v.GetString("analyzer.model"),
		BaseURL:     v.GetString("analyzer.base_url"),
		MaxTokens:   v.GetInt("analyzer.max_tokens"),
		TimeoutSecs: v.GetInt("analyzer.timeout_secs"),
	}

	cfg.Guest = GuestConfig{
		Limit:  v.GetInt("guest.limit"),
		Window: v.GetDuration("guest.window"),
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}

	return cfg, nil
}
