package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	AdminJWTSecret     string
	CORSAllowedOrigins []string

	// Slot generation
	HorizonWeeks     int
	SlotWorkerEvery  time.Duration
	ExpirySweepEvery time.Duration

	// Booking lifecycle
	PaymentTimeout            time.Duration
	DefaultCancellationWindow time.Duration

	// Payments
	AllowFakePayments bool
	PayPalBaseURL     string
	CoinbaseBaseURL   string
	DefaultCurrency   string

	// SendGrid email notifications
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	OpsNotifyEmail    string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),

		HorizonWeeks:     getEnvAsInt("AVAILABILITY_HORIZON_WEEKS", 4),
		SlotWorkerEvery:  getEnvAsDuration("SLOT_WORKER_INTERVAL", 1*time.Hour),
		ExpirySweepEvery: getEnvAsDuration("EXPIRY_SWEEP_INTERVAL", 1*time.Minute),

		PaymentTimeout:            getEnvAsDuration("PAYMENT_TIMEOUT", 15*time.Minute),
		DefaultCancellationWindow: getEnvAsDuration("DEFAULT_CANCELLATION_WINDOW", 24*time.Hour),

		AllowFakePayments: getEnvAsBool("ALLOW_FAKE_PAYMENTS", false),
		PayPalBaseURL:     getEnv("PAYPAL_BASE_URL", "https://www.sandbox.paypal.com"),
		CoinbaseBaseURL:   getEnv("COINBASE_BASE_URL", "https://commerce.coinbase.com"),
		DefaultCurrency:   getEnv("DEFAULT_CURRENCY", "USD"),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "MiyZapis"),
		OpsNotifyEmail:    getEnv("OPS_NOTIFY_EMAIL", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
