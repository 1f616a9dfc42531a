package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Ledger   LedgerConfig
	Security SecurityConfig
	Events   EventsConfig
}

type ServerConfig struct {
	Port             string
	Host             string
	Environment      string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	CORSAllowOrigins []string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LedgerConfig carries the business parameters of the ledger engine:
// per-type annual interest rates, per-type daily withdrawal ceilings,
// the reversal window and the scheduler trigger cadence.
type LedgerConfig struct {
	SavingsInterestRate  decimal.Decimal
	CheckingInterestRate decimal.Decimal
	FixedInterestRate    decimal.Decimal
	BusinessInterestRate decimal.Decimal

	BusinessDailyLimit decimal.Decimal
	DefaultDailyLimit  decimal.Decimal

	ReversalWindow    time.Duration
	SchedulerInterval time.Duration
}

type SecurityConfig struct {
	BCryptCost         int
	RateLimitPerSecond int
	MaxFailedAttempts  int
	PinLength          int
}

type EventsConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

func Load() *Config {
	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			Environment:  getEnv("APP_ENV", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "ledger_user"),
			Password:        getEnv("DB_PASSWORD", "ledger_password"),
			Name:            getEnv("DB_NAME", "ledger_db"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:  getIntEnv("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Ledger: LedgerConfig{
			SavingsInterestRate:  getDecimalEnv("INTEREST_RATE_SAVINGS", decimal.NewFromFloat(4.0)),
			CheckingInterestRate: getDecimalEnv("INTEREST_RATE_CHECKING", decimal.NewFromFloat(1.0)),
			FixedInterestRate:    getDecimalEnv("INTEREST_RATE_FIXED", decimal.NewFromFloat(6.5)),
			BusinessInterestRate: getDecimalEnv("INTEREST_RATE_BUSINESS", decimal.NewFromFloat(2.5)),
			BusinessDailyLimit:   getDecimalEnv("DAILY_LIMIT_BUSINESS", decimal.NewFromInt(50000)),
			DefaultDailyLimit:    getDecimalEnv("DAILY_LIMIT_DEFAULT", decimal.NewFromInt(20000)),
			ReversalWindow:       getDurationEnv("REVERSAL_WINDOW", 24*time.Hour),
			SchedulerInterval:    getDurationEnv("SCHEDULER_INTERVAL", time.Hour),
		},
		Security: SecurityConfig{
			BCryptCost:         getIntEnv("BCRYPT_COST", 12),
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 5),
			MaxFailedAttempts:  getIntEnv("MAX_FAILED_ATTEMPTS", 3),
			PinLength:          getIntEnv("PIN_LENGTH", 4),
		},
		Events: EventsConfig{
			Enabled: getBoolEnv("EVENTS_ENABLED", false),
			Brokers: getSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC", "ledger-events"),
		},
	}

	config.Server.CORSAllowOrigins = config.loadCORSAllowOrigins()

	return config
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// AnnualInterestRate returns the configured annual rate in percent for the
// given account type, zero for unknown types.
func (c *LedgerConfig) AnnualInterestRate(accountType string) decimal.Decimal {
	switch accountType {
	case "savings":
		return c.SavingsInterestRate
	case "checking":
		return c.CheckingInterestRate
	case "fixed":
		return c.FixedInterestRate
	case "business":
		return c.BusinessInterestRate
	default:
		return decimal.Zero
	}
}

// DailyLimitFor returns the default daily withdrawal ceiling for the given
// account type.
func (c *LedgerConfig) DailyLimitFor(accountType string) decimal.Decimal {
	if accountType == "business" {
		return c.BusinessDailyLimit
	}
	return c.DefaultDailyLimit
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsTesting() bool {
	return c.Server.Environment == "testing"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getDecimalEnv(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if dec, err := decimal.NewFromString(value); err == nil {
			return dec
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

// loadCORSAllowOrigins retrieves CORS allowed origins from environment or returns default
func (c *Config) loadCORSAllowOrigins() []string {
	corsOrigins := os.Getenv("CORS_ALLOW_ORIGINS")

	if corsOrigins == "" {
		if c.IsProduction() {
			log.Println("WARNING: CORS_ALLOW_ORIGINS not set in production environment, defaulting to '*' (all origins). Consider setting specific origins for security.")
		} else {
			log.Println("INFO: CORS_ALLOW_ORIGINS not set, defaulting to '*' (all origins)")
		}
		return []string{"*"}
	}

	// Split by comma and trim whitespace
	origins := strings.Split(corsOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	log.Printf("CORS allowed origins configured: %v", origins)
	return origins
}
