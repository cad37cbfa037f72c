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
	Pipeline PipelineConfig
	CORS     CORSConfig
	Queue    QueueConfig
	Email    EmailConfig
}

// EmailConfig holds reviewer notification settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// QueueConfig holds parse queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// PipelineConfig holds the extraction and validation thresholds. The
// defaults were tuned against a representative document corpus; deployments
// override them per corpus, not per document.
type PipelineConfig struct {
	// RateTolerance is the maximum distance between an observed tax/base
	// ratio and a valid regime rate for calculated-tier detection.
	RateTolerance float64 `mapstructure:"rate_tolerance"`
	// StatutoryRate is the fallback PPN rate when neither the amounts nor
	// the transaction code determine one.
	StatutoryRate float64 `mapstructure:"statutory_rate"`
	// MinAmount is the extraction floor in rupiah.
	MinAmount float64 `mapstructure:"min_amount"`
	// MatchTolerancePct is the same-figure tolerance for the inclusive-VAT
	// detector, in percent.
	MatchTolerancePct float64 `mapstructure:"match_tolerance_pct"`
	// ArithmeticPct is the allowed base × rate vs tax deviation, in percent.
	ArithmeticPct float64 `mapstructure:"arithmetic_pct"`
	// ReconcileAbsFloor and ReconcilePct bound cross-total reconciliation.
	ReconcileAbsFloor float64 `mapstructure:"reconcile_abs_floor"`
	ReconcilePct      float64 `mapstructure:"reconcile_pct"`
	// MagnitudeFloor and MagnitudeCeiling bound plausible row amounts.
	MagnitudeFloor   float64 `mapstructure:"magnitude_floor"`
	MagnitudeCeiling float64 `mapstructure:"magnitude_ceiling"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
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

// S3Config holds the raw-payload archive bucket settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the PAJAKOS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAJAKOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "pajakos")
	v.SetDefault("db.password", "pajakos_secret")
	v.SetDefault("db.name", "pajakos_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "pajakos")

	// S3 defaults
	v.SetDefault("s3.region", "ap-southeast-1")
	v.SetDefault("s3.bucket", "pajakos-payloads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_retries", 5)
	v.SetDefault("queue.concurrency", 5)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-southeast-1")
	v.SetDefault("email.from_address", "noreply@pajakos.id")
	v.SetDefault("email.from_name", "PAJAKOS")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Pipeline defaults
	v.SetDefault("pipeline.rate_tolerance", 0.02)
	v.SetDefault("pipeline.statutory_rate", 0.11)
	v.SetDefault("pipeline.min_amount", 100)
	v.SetDefault("pipeline.match_tolerance_pct", 0.5)
	v.SetDefault("pipeline.arithmetic_pct", 0.5)
	v.SetDefault("pipeline.reconcile_abs_floor", 1000)
	v.SetDefault("pipeline.reconcile_pct", 0.5)
	v.SetDefault("pipeline.magnitude_floor", 1000)
	v.SetDefault("pipeline.magnitude_ceiling", 100_000_000_000)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                  "PAJAKOS_SERVER_PORT",
		"server.read_timeout":          "PAJAKOS_SERVER_READ_TIMEOUT",
		"server.write_timeout":         "PAJAKOS_SERVER_WRITE_TIMEOUT",
		"server.environment":           "PAJAKOS_SERVER_ENVIRONMENT",
		"db.host":                      "PAJAKOS_DB_HOST",
		"db.port":                      "PAJAKOS_DB_PORT",
		"db.user":                      "PAJAKOS_DB_USER",
		"db.password":                  "PAJAKOS_DB_PASSWORD",
		"db.name":                      "PAJAKOS_DB_NAME",
		"db.sslmode":                   "PAJAKOS_DB_SSLMODE",
		"db.max_open":                  "PAJAKOS_DB_MAX_OPEN",
		"db.max_idle":                  "PAJAKOS_DB_MAX_IDLE",
		"jwt.secret":                   "PAJAKOS_JWT_SECRET",
		"jwt.access_expiry":            "PAJAKOS_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":           "PAJAKOS_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                   "PAJAKOS_JWT_ISSUER",
		"s3.region":                    "PAJAKOS_S3_REGION",
		"s3.bucket":                    "PAJAKOS_S3_BUCKET",
		"s3.endpoint":                  "PAJAKOS_S3_ENDPOINT",
		"s3.access_key":                "PAJAKOS_S3_ACCESS_KEY",
		"s3.secret_key":                "PAJAKOS_S3_SECRET_KEY",
		"s3.presign_expiry":            "PAJAKOS_S3_PRESIGN_EXPIRY",
		"log.level":                    "PAJAKOS_LOG_LEVEL",
		"log.format":                   "PAJAKOS_LOG_FORMAT",
		"cors.allowed_origins":         "PAJAKOS_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs":     "PAJAKOS_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":            "PAJAKOS_QUEUE_MAX_RETRIES",
		"queue.concurrency":            "PAJAKOS_QUEUE_CONCURRENCY",
		"pipeline.rate_tolerance":      "PAJAKOS_PIPELINE_RATE_TOLERANCE",
		"pipeline.statutory_rate":      "PAJAKOS_PIPELINE_STATUTORY_RATE",
		"pipeline.min_amount":          "PAJAKOS_PIPELINE_MIN_AMOUNT",
		"pipeline.match_tolerance_pct": "PAJAKOS_PIPELINE_MATCH_TOLERANCE_PCT",
		"pipeline.arithmetic_pct":      "PAJAKOS_PIPELINE_ARITHMETIC_PCT",
		"pipeline.reconcile_abs_floor": "PAJAKOS_PIPELINE_RECONCILE_ABS_FLOOR",
		"pipeline.reconcile_pct":       "PAJAKOS_PIPELINE_RECONCILE_PCT",
		"pipeline.magnitude_floor":     "PAJAKOS_PIPELINE_MAGNITUDE_FLOOR",
		"pipeline.magnitude_ceiling":   "PAJAKOS_PIPELINE_MAGNITUDE_CEILING",
		"email.provider":               "PAJAKOS_EMAIL_PROVIDER",
		"email.region":                 "PAJAKOS_EMAIL_REGION",
		"email.from_address":           "PAJAKOS_EMAIL_FROM_ADDRESS",
		"email.from_name":              "PAJAKOS_EMAIL_FROM_NAME",
		"email.frontend_url":           "PAJAKOS_EMAIL_FRONTEND_URL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if PAJAKOS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("PAJAKOS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
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

	cfg.Pipeline = PipelineConfig{
		RateTolerance:     v.GetFloat64("pipeline.rate_tolerance"),
		StatutoryRate:     v.GetFloat64("pipeline.statutory_rate"),
		MinAmount:         v.GetFloat64("pipeline.min_amount"),
		MatchTolerancePct: v.GetFloat64("pipeline.match_tolerance_pct"),
		ArithmeticPct:     v.GetFloat64("pipeline.arithmetic_pct"),
		ReconcileAbsFloor: v.GetFloat64("pipeline.reconcile_abs_floor"),
		ReconcilePct:      v.GetFloat64("pipeline.reconcile_pct"),
		MagnitudeFloor:    v.GetFloat64("pipeline.magnitude_floor"),
		MagnitudeCeiling:  v.GetFloat64("pipeline.magnitude_ceiling"),
	}

	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
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
