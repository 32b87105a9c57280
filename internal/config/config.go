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
	Server    ServerConfig
	DB        DBConfig
	S3        S3Config
	Log       LogConfig
	Extractor ExtractorConfig
	Analysis  AnalysisConfig
	Session   SessionConfig
	CORS      CORSConfig
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

// S3Config holds document archive settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ExtractorProviderConfig holds settings for a single LLM extractor provider.
type ExtractorProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ExtractorConfig holds LLM document extractor settings with fallback
// provider support.
type ExtractorConfig struct {
	Primary   ExtractorProviderConfig `mapstructure:"primary"`
	Secondary ExtractorProviderConfig `mapstructure:"secondary"`
	Tertiary  ExtractorProviderConfig `mapstructure:"tertiary"`
}

// Providers returns the configured providers in fallback order.
func (e *ExtractorConfig) Providers() []ExtractorProviderConfig {
	var out []ExtractorProviderConfig
	for _, p := range []ExtractorProviderConfig{e.Primary, e.Secondary, e.Tertiary} {
		if p.Provider != "" {
			out = append(out, p)
		}
	}
	return out
}

// AnalysisConfig holds the default reconciliation tuning. Percentages are in
// [0,100], match scores in [0,1].
type AnalysisConfig struct {
	QuantityTolerancePct     float64 `mapstructure:"quantity_tolerance_pct"`
	HighSeverityThresholdPct float64 `mapstructure:"high_severity_threshold_pct"`
	PlanTolerancePct         float64 `mapstructure:"plan_tolerance_pct"`
	CandidateFloor           float64 `mapstructure:"candidate_floor"`
	MatchThreshold           float64 `mapstructure:"match_threshold"`
	HistoryLimit             int     `mapstructure:"history_limit"`
}

// SessionConfig holds session store settings.
type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	CookieName    string        `mapstructure:"cookie_name"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the BIDRECON_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BIDRECON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "bidrecon")
	v.SetDefault("db.password", "bidrecon_secret")
	v.SetDefault("db.name", "bidrecon_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "bidrecon-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Extractor defaults
	v.SetDefault("extractor.primary.provider", "openai")
	v.SetDefault("extractor.primary.api_key", "")
	v.SetDefault("extractor.primary.default_model", "gpt-4o")
	v.SetDefault("extractor.primary.max_retries", 2)
	v.SetDefault("extractor.primary.timeout_secs", 120)
	v.SetDefault("extractor.secondary.provider", "")
	v.SetDefault("extractor.secondary.api_key", "")
	v.SetDefault("extractor.secondary.default_model", "")
	v.SetDefault("extractor.secondary.max_retries", 2)
	v.SetDefault("extractor.secondary.timeout_secs", 120)
	v.SetDefault("extractor.tertiary.provider", "")
	v.SetDefault("extractor.tertiary.api_key", "")
	v.SetDefault("extractor.tertiary.default_model", "")
	v.SetDefault("extractor.tertiary.max_retries", 2)
	v.SetDefault("extractor.tertiary.timeout_secs", 120)

	// Analysis defaults
	v.SetDefault("analysis.quantity_tolerance_pct", 5.0)
	v.SetDefault("analysis.high_severity_threshold_pct", 15.0)
	v.SetDefault("analysis.plan_tolerance_pct", 10.0)
	v.SetDefault("analysis.candidate_floor", 0.35)
	v.SetDefault("analysis.match_threshold", 0.55)
	v.SetDefault("analysis.history_limit", 20)

	// Session defaults
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.cookie_name", "bidrecon_session")
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("session.sweep_interval", "10m")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                          "BIDRECON_SERVER_PORT",
		"server.read_timeout":                  "BIDRECON_SERVER_READ_TIMEOUT",
		"server.write_timeout":                 "BIDRECON_SERVER_WRITE_TIMEOUT",
		"server.environment":                   "BIDRECON_SERVER_ENVIRONMENT",
		"db.host":                              "BIDRECON_DB_HOST",
		"db.port":                              "BIDRECON_DB_PORT",
		"db.user":                              "BIDRECON_DB_USER",
		"db.password":                          "BIDRECON_DB_PASSWORD",
		"db.name":                              "BIDRECON_DB_NAME",
		"db.sslmode":                           "BIDRECON_DB_SSLMODE",
		"db.max_open":                          "BIDRECON_DB_MAX_OPEN",
		"db.max_idle":                          "BIDRECON_DB_MAX_IDLE",
		"s3.region":                            "BIDRECON_S3_REGION",
		"s3.bucket":                            "BIDRECON_S3_BUCKET",
		"s3.endpoint":                          "BIDRECON_S3_ENDPOINT",
		"s3.access_key":                        "BIDRECON_S3_ACCESS_KEY",
		"s3.secret_key":                        "BIDRECON_S3_SECRET_KEY",
		"s3.max_file_size_mb":                  "BIDRECON_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":                    "BIDRECON_S3_PRESIGN_EXPIRY",
		"log.level":                            "BIDRECON_LOG_LEVEL",
		"log.format":                           "BIDRECON_LOG_FORMAT",
		"extractor.primary.provider":           "BIDRECON_EXTRACTOR_PRIMARY_PROVIDER",
		"extractor.primary.api_key":            "BIDRECON_EXTRACTOR_PRIMARY_API_KEY",
		"extractor.primary.default_model":      "BIDRECON_EXTRACTOR_PRIMARY_DEFAULT_MODEL",
		"extractor.primary.max_retries":        "BIDRECON_EXTRACTOR_PRIMARY_MAX_RETRIES",
		"extractor.primary.timeout_secs":       "BIDRECON_EXTRACTOR_PRIMARY_TIMEOUT_SECS",
		"extractor.secondary.provider":         "BIDRECON_EXTRACTOR_SECONDARY_PROVIDER",
		"extractor.secondary.api_key":          "BIDRECON_EXTRACTOR_SECONDARY_API_KEY",
		"extractor.secondary.default_model":    "BIDRECON_EXTRACTOR_SECONDARY_DEFAULT_MODEL",
		"extractor.secondary.max_retries":      "BIDRECON_EXTRACTOR_SECONDARY_MAX_RETRIES",
		"extractor.secondary.timeout_secs":     "BIDRECON_EXTRACTOR_SECONDARY_TIMEOUT_SECS",
		"extractor.tertiary.provider":          "BIDRECON_EXTRACTOR_TERTIARY_PROVIDER",
		"extractor.tertiary.api_key":           "BIDRECON_EXTRACTOR_TERTIARY_API_KEY",
		"extractor.tertiary.default_model":     "BIDRECON_EXTRACTOR_TERTIARY_DEFAULT_MODEL",
		"extractor.tertiary.max_retries":       "BIDRECON_EXTRACTOR_TERTIARY_MAX_RETRIES",
		"extractor.tertiary.timeout_secs":      "BIDRECON_EXTRACTOR_TERTIARY_TIMEOUT_SECS",
		"analysis.quantity_tolerance_pct":      "BIDRECON_ANALYSIS_QUANTITY_TOLERANCE_PCT",
		"analysis.high_severity_threshold_pct": "BIDRECON_ANALYSIS_HIGH_SEVERITY_THRESHOLD_PCT",
		"analysis.plan_tolerance_pct":          "BIDRECON_ANALYSIS_PLAN_TOLERANCE_PCT",
		"analysis.candidate_floor":             "BIDRECON_ANALYSIS_CANDIDATE_FLOOR",
		"analysis.match_threshold":             "BIDRECON_ANALYSIS_MATCH_THRESHOLD",
		"analysis.history_limit":               "BIDRECON_ANALYSIS_HISTORY_LIMIT",
		"session.ttl":                          "BIDRECON_SESSION_TTL",
		"session.cookie_name":                  "BIDRECON_SESSION_COOKIE_NAME",
		"session.cookie_secure":                "BIDRECON_SESSION_COOKIE_SECURE",
		"session.sweep_interval":               "BIDRECON_SESSION_SWEEP_INTERVAL",
		"cors.allowed_origins":                 "BIDRECON_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BIDRECON_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BIDRECON_SERVER_PORT") == "" {
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
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Extractor = ExtractorConfig{
		Primary: ExtractorProviderConfig{
			Provider:     v.GetString("extractor.primary.provider"),
			APIKey:       v.GetString("extractor.primary.api_key"),
			DefaultModel: v.GetString("extractor.primary.default_model"),
			MaxRetries:   v.GetInt("extractor.primary.max_retries"),
			TimeoutSecs:  v.GetInt("extractor.primary.timeout_secs"),
		},
		Secondary: ExtractorProviderConfig{
			Provider:     v.GetString("extractor.secondary.provider"),
			APIKey:       v.GetString("extractor.secondary.api_key"),
			DefaultModel: v.GetString("extractor.secondary.default_model"),
			MaxRetries:   v.GetInt("extractor.secondary.max_retries"),
			TimeoutSecs:  v.GetInt("extractor.secondary.timeout_secs"),
		},
		Tertiary: ExtractorProviderConfig{
			Provider:     v.GetString("extractor.tertiary.provider"),
			APIKey:       v.GetString("extractor.tertiary.api_key"),
			DefaultModel: v.GetString("extractor.tertiary.default_model"),
			MaxRetries:   v.GetInt("extractor.tertiary.max_retries"),
			TimeoutSecs:  v.GetInt("extractor.tertiary.timeout_secs"),
		},
	}
	cfg.Analysis = AnalysisConfig{
		QuantityTolerancePct:     v.GetFloat64("analysis.quantity_tolerance_pct"),
		HighSeverityThresholdPct: v.GetFloat64("analysis.high_severity_threshold_pct"),
		PlanTolerancePct:         v.GetFloat64("analysis.plan_tolerance_pct"),
		CandidateFloor:           v.GetFloat64("analysis.candidate_floor"),
		MatchThreshold:           v.GetFloat64("analysis.match_threshold"),
		HistoryLimit:             v.GetInt("analysis.history_limit"),
	}
	cfg.Session = SessionConfig{
		TTL:           v.GetDuration("session.ttl"),
		CookieName:    v.GetString("session.cookie_name"),
		CookieSecure:  v.GetBool("session.cookie_secure"),
		SweepInterval: v.GetDuration("session.sweep_interval"),
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

	return cfg, nil
}
