package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Earnings EarningsConfig
	Jobs     JobsConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

// EarningsConfig carries every business constant the earnings ledger and the
// withdrawal state machine depend on. Services receive it at construction;
// nothing reads these values from anywhere else.
type EarningsConfig struct {
	// ReferralShare is the fraction of a referred user's per-view earnings
	// paid to their direct referrer (0.05 = 5%).
	ReferralShare decimal.Decimal
	// MinWithdrawal is the platform minimum request amount in rupees.
	MinWithdrawal decimal.Decimal
	// WithdrawalWindowDays is the number of trailing IST calendar days of
	// each month during which withdrawal requests may be created.
	WithdrawalWindowDays int
	OTPTTL               time.Duration
	ViewRetryAttempts    int
	ViewRetryBackoff     time.Duration
}

type JobsConfig struct {
	// ReconcileSpec is a standard 5-field cron spec for the ledger auditor.
	ReconcileSpec string
}

type AdminConfig struct {
	Email string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8086"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_DSN", "linkmint:linkmint@tcp(localhost:3306)/linkmint?charset=utf8mb4&parseTime=True&loc=UTC"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			AccessExpiry: 15 * time.Minute,
			Issuer:       "linkmint",
		},
		Earnings: EarningsConfig{
			ReferralShare:        getDecimal("REFERRAL_SHARE", "0.05"),
			MinWithdrawal:        getDecimal("MIN_WITHDRAWAL", "400"),
			WithdrawalWindowDays: getInt("WITHDRAWAL_WINDOW_DAYS", 3),
			OTPTTL:               getDuration("OTP_TTL", 10*time.Minute),
			ViewRetryAttempts:    3,
			ViewRetryBackoff:     50 * time.Millisecond,
		},
		Jobs: JobsConfig{
			ReconcileSpec: getEnv("RECONCILE_CRON", "15 */6 * * *"),
		},
		Admin: AdminConfig{
			Email: getEnv("ADMIN_EMAIL", "admin@linkmint.local"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getDecimal(key, fallback string) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return decimal.RequireFromString(fallback)
}
