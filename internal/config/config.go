package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Admin policy names accepted by ADMIN_POLICY.
const (
	AdminPolicyAllowList = "allowlist"
	AdminPolicyFlag      = "flag"
	AdminPolicyAny       = "any"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Admin        AdminConfig
	Provider     ProviderConfig
	Notification NotificationConfig
	RateLimit    RateLimitConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// AdminConfig selects how admin privilege is resolved.
type AdminConfig struct {
	Policy string
	Emails []string
}

// ProviderConfig holds identity-verification provider settings.
type ProviderConfig struct {
	BaseURL            string
	APIKey             string
	ClientID           string
	WebhookSecret      string
	AppURL             string
	ReplayTTLSeconds   int
	HTTPTimeoutSeconds int
}

// NotificationConfig holds stub notification endpoints. With Async unset,
// notifications are delivered inline by the publisher.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
	Async      bool
	QueueSize  int
}

// RateLimitConfig bounds verification submissions per user.
type RateLimitConfig struct {
	SubmitPerMinute int
	SubmitBurst     int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "travel-community"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             os.Getenv("AUTH_JWT_SECRET"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Admin: AdminConfig{
			Policy: strings.ToLower(getEnv("ADMIN_POLICY", AdminPolicyAny)),
			Emails: getEnvAsList("ADMIN_EMAILS"),
		},
		Provider: ProviderConfig{
			BaseURL:            strings.TrimRight(getEnv("PROVIDER_BASE_URL", "https://verification.didit.me"), "/"),
			APIKey:             os.Getenv("PROVIDER_API_KEY"),
			ClientID:           os.Getenv("PROVIDER_CLIENT_ID"),
			WebhookSecret:      os.Getenv("PROVIDER_WEBHOOK_SECRET"),
			AppURL:             strings.TrimRight(getEnv("APP_PUBLIC_URL", "http://localhost:8080"), "/"),
			ReplayTTLSeconds:   getEnvAsInt("PROVIDER_REPLAY_TTL_SECONDS", 86400),
			HTTPTimeoutSeconds: getEnvAsInt("PROVIDER_HTTP_TIMEOUT_SECONDS", 10),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
			Async:      getEnvAsBool("NOTIFY_ASYNC", true),
			QueueSize:  getEnvAsInt("NOTIFY_QUEUE_SIZE", 256),
		},
		RateLimit: RateLimitConfig{
			SubmitPerMinute: getEnvAsInt("RATE_LIMIT_SUBMIT_PER_MINUTE", 5),
			SubmitBurst:     getEnvAsInt("RATE_LIMIT_SUBMIT_BURST", 3),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		if !c.App.IsDevelopment() {
			return errors.New("AUTH_JWT_SECRET is required outside development")
		}
		c.Auth.JWTSecret = "dev-secret"
	}
	switch c.Admin.Policy {
	case AdminPolicyAllowList, AdminPolicyFlag, AdminPolicyAny:
	default:
		return fmt.Errorf("invalid ADMIN_POLICY %q", c.Admin.Policy)
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (a AppConfig) IsDevelopment() bool {
	return strings.EqualFold(a.Env, "development")
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ReplayTTL is how long a delivered webhook id is remembered.
func (p ProviderConfig) ReplayTTL() time.Duration {
	if p.ReplayTTLSeconds <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(p.ReplayTTLSeconds) * time.Second
}

// HTTPTimeout bounds outbound provider calls.
func (p ProviderConfig) HTTPTimeout() time.Duration {
	if p.HTTPTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(p.HTTPTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
