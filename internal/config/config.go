// Package config loads environment configuration and exposes the typed
// settings consumed across the application, so callers never assemble
// connection strings or parse durations themselves.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

// ServerPort is the HTTP listen port.
func ServerPort() string { return GetEnv("PORT", "3000") }

// CORSAllowOrigins is the comma-separated origin allowlist.
func CORSAllowOrigins() string { return GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173") }

// JWTSecret is the token signing secret; empty means unconfigured.
func JWTSecret() string { return os.Getenv("JWT_SECRET") }

// AccessTokenTTL is the lifetime of issued access tokens.
func AccessTokenTTL() time.Duration { return GetDurationEnv("ACCESS_TOKEN_TTL", 15*time.Minute) }

// RefreshTokenTTL is the lifetime of issued refresh tokens.
func RefreshTokenTTL() time.Duration { return GetDurationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour) }

// DatabaseDSN assembles the postgres connection string from DB_* variables.
func DatabaseDSN() string {
	return strings.Join([]string{
		"host=" + GetEnv("DB_HOST", "localhost"),
		"user=" + GetEnv("DB_USER", "postgres"),
		"password=" + GetEnv("DB_PASSWORD", "postgres"),
		"dbname=" + GetEnv("DB_NAME", "payvault"),
		"port=" + GetEnv("DB_PORT", "5432"),
		"sslmode=" + GetEnv("DB_SSLMODE", "disable"),
	}, " ")
}

// PoolSettings tunes the database connection pool.
type PoolSettings struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DBPool reads the pool settings from the environment.
func DBPool() PoolSettings {
	return PoolSettings{
		MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
		MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
		ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
	}
}

// RedisSettings locate the cache instance.
type RedisSettings struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Redis reads the cache settings from the environment.
func Redis() RedisSettings {
	return RedisSettings{
		Host:     GetEnv("REDIS_HOST", "localhost"),
		Port:     GetEnv("REDIS_PORT", "6379"),
		Password: GetEnv("REDIS_PASSWORD", ""),
		DB:       GetIntEnv("REDIS_DB", 0),
	}
}

// DecisionMaxRetries bounds how often a decision is retried after a
// wallet version conflict.
func DecisionMaxRetries() int { return GetIntEnv("DECISION_MAX_RETRIES", 3) }

// PayoutSettings configure the external payout provider. An empty
// StripeKey disables real payouts.
type PayoutSettings struct {
	StripeKey string
	Currency  string
}

// Payout reads the payout provider settings from the environment.
func Payout() PayoutSettings {
	return PayoutSettings{
		StripeKey: GetEnv("STRIPE_SECRET_KEY", ""),
		Currency:  GetEnv("PAYOUT_CURRENCY", "usd"),
	}
}
