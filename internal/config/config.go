package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Catalog      CatalogConfig
	Scan         ScanConfig
	Wallet       WalletConfig
	Challenge    ChallengeConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	SeedDemoData          bool
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr keeps session
// state and redemption locks in process memory.
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

// NotificationConfig holds stub push endpoints.
type NotificationConfig struct {
	PushProvider string
	WebhookURL   string
}

// CatalogConfig points at an optional YAML file overriding the built-in catalog.
type CatalogConfig struct {
	File string
}

// ScanConfig holds the simulated QR decoding timings.
type ScanConfig struct {
	ProcessingDelayMS int
	ResultDelayMS     int
}

// WalletConfig holds conversion and redemption parameters.
type WalletConfig struct {
	PointValueIDR        string
	MilestonePoints      int
	ConvertDelayMS       int
	RedeemDelayMS        int
	RedemptionLockTTLSec int
}

// ChallengeConfig configures the weekly recycling challenge.
type ChallengeConfig struct {
	WeeklyTarget int
	BonusPoints  int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "owaste-rewards-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			SeedDemoData:          getEnvAsBool("SEED_DEMO_DATA", true),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			PushProvider: getEnv("NOTIFY_PUSH_PROVIDER", "log"),
			WebhookURL:   getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		Catalog: CatalogConfig{
			File: os.Getenv("CATALOG_FILE"),
		},
		Scan: ScanConfig{
			ProcessingDelayMS: getEnvAsInt("SCAN_PROCESSING_DELAY_MS", 2000),
			ResultDelayMS:     getEnvAsInt("SCAN_RESULT_DELAY_MS", 2000),
		},
		Wallet: WalletConfig{
			PointValueIDR:        getEnv("WALLET_POINT_VALUE_IDR", "150"),
			MilestonePoints:      getEnvAsInt("WALLET_MILESTONE_POINTS", 500),
			ConvertDelayMS:       getEnvAsInt("WALLET_CONVERT_DELAY_MS", 2000),
			RedeemDelayMS:        getEnvAsInt("WALLET_REDEEM_DELAY_MS", 1500),
			RedemptionLockTTLSec: getEnvAsInt("WALLET_REDEMPTION_LOCK_TTL_SECONDS", 30),
		},
		Challenge: ChallengeConfig{
			WeeklyTarget: getEnvAsInt("CHALLENGE_WEEKLY_TARGET", 10),
			BonusPoints:  getEnvAsInt("CHALLENGE_BONUS_POINTS", 100),
		},
	}

	return cfg, nil
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

// ProcessingDelay is how long a capture stays in processing.
func (s ScanConfig) ProcessingDelay() time.Duration {
	return millis(s.ProcessingDelayMS)
}

// ResultDelay is how long a result is shown before returning home.
func (s ScanConfig) ResultDelay() time.Duration {
	return millis(s.ResultDelayMS)
}

// ConvertDelay is the simulated payout latency.
func (w WalletConfig) ConvertDelay() time.Duration {
	return millis(w.ConvertDelayMS)
}

// RedeemDelay is the simulated fulfillment latency.
func (w WalletConfig) RedeemDelay() time.Duration {
	return millis(w.RedeemDelayMS)
}

// RedemptionLockTTL bounds how long an abandoned redemption blocks the next one.
func (w WalletConfig) RedemptionLockTTL() time.Duration {
	if w.RedemptionLockTTLSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(w.RedemptionLockTTLSec) * time.Second
}

func millis(ms int) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
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
