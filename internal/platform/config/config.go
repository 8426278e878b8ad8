package config

import (
	"log"
	"strings"
	"time"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	JWTSecret      string
	MigrationsPath string
	AdminUserIDs   []string // callers allowed on KYC, reconciliation and audit routes

	// Scheduler
	SchedulerEnabled  bool
	SchedulerInterval time.Duration
	SweepTimeout      time.Duration

	// Limits
	ReconciliationWindow time.Duration
	OfflineTransferCap   decimal.Decimal
	KYCThreshold         decimal.Decimal
	DailyLimitCap        decimal.Decimal
	DailyLimitThreshold  decimal.Decimal
	DailyLimitScope      domain.DailyLimitScope
	HighValueThreshold   decimal.Decimal
	OpeningSyncBalance   decimal.Decimal

	// Infrastructure
	AMQPURL            string
	AMQPExchange       string
	RedisURL           string
	RateLimit          string
	CORSAllowedOrigins []string
}

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("SCHEDULER_INTERVAL", "60s")
	v.SetDefault("SWEEP_TIMEOUT", "50s")
	v.SetDefault("RECONCILIATION_WINDOW", "72h")
	v.SetDefault("OFFLINE_TRANSFER_CAP", "500")
	v.SetDefault("KYC_THRESHOLD", "500")
	v.SetDefault("DAILY_LIMIT_CAP", "1000")
	v.SetDefault("DAILY_LIMIT_THRESHOLD", "10000")
	v.SetDefault("DAILY_LIMIT_SCOPE", string(domain.DailyLimitTopUps))
	v.SetDefault("HIGH_VALUE_THRESHOLD", "10000")
	v.SetDefault("OPENING_SYNC_BALANCE", "0")
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "transaction_events")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("ADMIN_USER_IDS", "")

	// Environment variables override the defaults above.
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:    v.GetString("PGSQL_URL"),
		Port:           v.GetString("PORT"),
		IsProduction:   v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:  v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),

		SchedulerEnabled:  v.GetBool("SCHEDULER_ENABLED"),
		SchedulerInterval: durationOr(v, "SCHEDULER_INTERVAL", 60*time.Second),
		SweepTimeout:      durationOr(v, "SWEEP_TIMEOUT", 50*time.Second),

		ReconciliationWindow: durationOr(v, "RECONCILIATION_WINDOW", 72*time.Hour),
		OfflineTransferCap:   decimalOr(v, "OFFLINE_TRANSFER_CAP", 500),
		KYCThreshold:         decimalOr(v, "KYC_THRESHOLD", 500),
		DailyLimitCap:        decimalOr(v, "DAILY_LIMIT_CAP", 1000),
		DailyLimitThreshold:  decimalOr(v, "DAILY_LIMIT_THRESHOLD", 10000),
		HighValueThreshold:   decimalOr(v, "HIGH_VALUE_THRESHOLD", 10000),
		OpeningSyncBalance:   decimalOr(v, "OPENING_SYNC_BALANCE", 0),

		AMQPURL:      v.GetString("AMQP_URL"),
		AMQPExchange: v.GetString("AMQP_EXCHANGE"),
		RedisURL:     v.GetString("REDIS_URL"),
		RateLimit:    v.GetString("RATE_LIMIT"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	if cfg.OpeningSyncBalance.IsNegative() {
		log.Printf("Warning: OPENING_SYNC_BALANCE ('%s') is negative. Defaulting to 0.\n", cfg.OpeningSyncBalance)
		cfg.OpeningSyncBalance = decimal.Zero
	}

	switch scope := domain.DailyLimitScope(strings.ToLower(v.GetString("DAILY_LIMIT_SCOPE"))); scope {
	case domain.DailyLimitTopUps, domain.DailyLimitAll:
		cfg.DailyLimitScope = scope
	default:
		log.Printf("Warning: Invalid value for DAILY_LIMIT_SCOPE ('%s'). Defaulting to %s.\n", scope, domain.DailyLimitTopUps)
		cfg.DailyLimitScope = domain.DailyLimitTopUps
	}

	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.AdminUserIDs = splitList(v.GetString("ADMIN_USER_IDS"))
	if len(cfg.AdminUserIDs) == 0 {
		log.Println("Warning: ADMIN_USER_IDS is empty; KYC, reconciliation and audit routes will refuse every caller.")
	}

	return cfg, nil
}

// LimitPolicy builds the thresholds enforced by the payment engines.
func (c *Config) LimitPolicy() domain.LimitPolicy {
	return domain.LimitPolicy{
		OfflineTransferCap:   c.OfflineTransferCap,
		KYCThreshold:         c.KYCThreshold,
		DailyLimitCap:        c.DailyLimitCap,
		DailyLimitThreshold:  c.DailyLimitThreshold,
		DailyLimitScope:      c.DailyLimitScope,
		HighValueThreshold:   c.HighValueThreshold,
		ReconciliationWindow: c.ReconciliationWindow,
	}
}

func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		return fallback
	}
	return d
}

func decimalOr(v *viper.Viper, key string, fallback int64) decimal.Decimal {
	raw := v.GetString(key)
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %d.\n", key, raw, fallback)
		return decimal.NewFromInt(fallback)
	}
	return d
}

// splitList splits a comma separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
