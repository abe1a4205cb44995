// -----------------------------------------------------------------------------
// Config Package
// -----------------------------------------------------------------------------
// Central configuration read from the environment. An optional .env file is
// loaded first; missing variables fall back to defaults with a warning.
// -----------------------------------------------------------------------------

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const defaultJWTSecret = "doujindesk-dev-secret-change-this-in-production"

// Config groups the application settings.
type Config struct {
	App struct {
		Name       string
		Env        string
		URL        string
		EventID    string
		EventStart time.Time // first convention day, 00:00
		EventEnd   time.Time // last moment a ticket is valid
	}

	Server struct {
		Port            string
		ShutdownTimeout time.Duration
		CORSOrigins     []string
	}

	// Circles table. An empty DSN keeps circle applications in memory.
	DB struct {
		DSN             string
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
	}

	JWT struct {
		Secret     string
		Expiration time.Duration
	}

	Redis struct {
		Host     string
		Port     int
		Password string
		DB       int
	}

	// Snapshot persistence of the in-memory stores.
	Store struct {
		Driver string // memory, file, redis
		Prefix string
		Dir    string
	}

	// Uploaded files (circle samples).
	Storage struct {
		Dir     string
		BaseURL string
	}

	RateLimit struct {
		Enabled           bool
		RequestsPerSecond float64
		Burst             int
	}

	Scheduler struct {
		SalesInterval        time.Duration
		ExchangeRateInterval time.Duration
	}

	Exchange struct {
		USDToIDR decimal.Decimal
	}

	// Attendee mail. Driver "log" only writes mails to the log.
	Mail struct {
		Driver   string // log, smtp
		Host     string
		Port     int
		Username string
		Password string
		From     string
		FromName string
	}

	Queue struct {
		Driver     string // memory, redis
		RetryDelay time.Duration
	}

	// First administrator, created when the roster is empty.
	Admin struct {
		Name     string
		Email    string
		Passcode string
	}
}

// Load reads the configuration.
//
//	cfg := config.Load()
//	log.Printf("Environment: %s", cfg.App.Env)
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using the process environment")
	}

	cfg := &Config{}

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		log.Printf("⚠️  %s is not set, using default (%s)", key, defaultValue)
		return defaultValue
	}

	getEnvAsInt := func(key string, defaultValue int) int {
		valueStr := os.Getenv(key)
		if valueStr == "" {
			return defaultValue
		}
		value, err := strconv.Atoi(valueStr)
		if err != nil {
			log.Printf("⚠️  Invalid value for %s: %s, using default (%d)", key, valueStr, defaultValue)
			return defaultValue
		}
		return value
	}

	getEnvAsFloat := func(key string, defaultValue float64) float64 {
		valueStr := os.Getenv(key)
		if valueStr == "" {
			return defaultValue
		}
		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			log.Printf("⚠️  Invalid value for %s: %s, using default (%g)", key, valueStr, defaultValue)
			return defaultValue
		}
		return value
	}

	getEnvAsBool := func(key string, defaultValue bool) bool {
		valueStr := os.Getenv(key)
		if valueStr == "" {
			return defaultValue
		}
		value, err := strconv.ParseBool(valueStr)
		if err != nil {
			log.Printf("⚠️  Invalid boolean for %s: %s, using default (%t)", key, valueStr, defaultValue)
			return defaultValue
		}
		return value
	}

	// seconds
	getEnvAsDuration := func(key string, defaultSeconds int) time.Duration {
		return time.Duration(getEnvAsInt(key, defaultSeconds)) * time.Second
	}

	getEnvAsDate := func(key, defaultValue string) time.Time {
		value := getEnv(key, defaultValue)
		t, err := time.ParseInLocation("2006-01-02", value, time.UTC)
		if err != nil {
			log.Printf("⚠️  Invalid date for %s: %s, using default (%s)", key, value, defaultValue)
			t, _ = time.ParseInLocation("2006-01-02", defaultValue, time.UTC)
		}
		return t
	}

	// Application
	cfg.App.Name = getEnv("APP_NAME", "DoujinDesk")
	cfg.App.Env = getEnv("APP_ENV", "development")
	cfg.App.URL = getEnv("APP_URL", "http://localhost:8000")
	cfg.App.EventID = getEnv("EVENT_ID", "doujindesk-2026")
	cfg.App.EventStart = getEnvAsDate("EVENT_START", "2026-11-07")
	// tickets stay valid until the end of the last day
	cfg.App.EventEnd = getEnvAsDate("EVENT_END", "2026-11-08").AddDate(0, 0, 1).Add(-time.Second)

	// Server
	cfg.Server.Port = getEnv("PORT", "8000")
	cfg.Server.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", 15)
	cfg.Server.CORSOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))

	// Database
	cfg.DB.DSN = os.Getenv("DB_DSN")
	cfg.DB.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", 25)
	cfg.DB.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", 25)
	cfg.DB.ConnMaxLifetime = getEnvAsDuration("DB_CONN_MAX_LIFETIME", 300)

	// JWT
	cfg.JWT.Secret = getEnv("JWT_SECRET", defaultJWTSecret)
	cfg.JWT.Expiration = getEnvAsDuration("JWT_EXPIRATION", 12*3600) // one convention shift

	// Redis
	cfg.Redis.Host = getEnv("REDIS_HOST", "127.0.0.1")
	cfg.Redis.Port = getEnvAsInt("REDIS_PORT", 6379)
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)

	// Store
	cfg.Store.Driver = getEnv("STORE_DRIVER", "file")
	cfg.Store.Prefix = getEnv("STORE_PREFIX", "doujindesk:")
	cfg.Store.Dir = getEnv("STORE_DIR", "./storage/data")

	// File storage
	cfg.Storage.Dir = getEnv("STORAGE_DIR", "./storage/files")
	cfg.Storage.BaseURL = getEnv("STORAGE_BASE_URL", "/files")

	// Rate limiting
	cfg.RateLimit.Enabled = getEnvAsBool("RATE_LIMIT_ENABLED", true)
	cfg.RateLimit.RequestsPerSecond = getEnvAsFloat("RATE_LIMIT_RPS", 10)
	cfg.RateLimit.Burst = getEnvAsInt("RATE_LIMIT_BURST", 20)

	// Scheduler
	cfg.Scheduler.SalesInterval = getEnvAsDuration("SALES_RECOMPUTE_INTERVAL", 60)
	cfg.Scheduler.ExchangeRateInterval = getEnvAsDuration("EXCHANGE_RATE_INTERVAL", 3600)

	// Exchange rate
	rate, err := decimal.NewFromString(getEnv("USD_IDR_RATE", "15500"))
	if err != nil {
		log.Printf("⚠️  Invalid USD_IDR_RATE, using default (15500)")
		rate = decimal.NewFromInt(15500)
	}
	cfg.Exchange.USDToIDR = rate

	// Mail
	cfg.Mail.Driver = getEnv("MAIL_DRIVER", "log")
	cfg.Mail.Host = getEnv("MAIL_HOST", "localhost")
	cfg.Mail.Port = getEnvAsInt("MAIL_PORT", 1025)
	cfg.Mail.Username = os.Getenv("MAIL_USERNAME")
	cfg.Mail.Password = os.Getenv("MAIL_PASSWORD")
	cfg.Mail.From = getEnv("MAIL_FROM", "tickets@doujindesk.id")
	cfg.Mail.FromName = getEnv("MAIL_FROM_NAME", cfg.App.Name)

	// Queue
	cfg.Queue.Driver = getEnv("QUEUE_DRIVER", "memory")
	cfg.Queue.RetryDelay = getEnvAsDuration("QUEUE_RETRY_DELAY", 90)

	// Bootstrap admin
	cfg.Admin.Name = getEnv("ADMIN_NAME", "Administrator")
	cfg.Admin.Email = os.Getenv("ADMIN_EMAIL")
	cfg.Admin.Passcode = os.Getenv("ADMIN_PASSCODE")

	return cfg
}

// Validate checks the settings that would break the server at runtime.
func (c *Config) Validate() error {
	if c.IsProduction() {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be changed in production")
		}
	}

	switch c.Store.Driver {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("invalid STORE_DRIVER: %s (must be memory, file or redis)", c.Store.Driver)
	}

	if !c.App.EventEnd.After(c.App.EventStart) {
		return fmt.Errorf("EVENT_END must not be before EVENT_START")
	}
	if !c.Exchange.USDToIDR.IsPositive() {
		return fmt.Errorf("USD_IDR_RATE must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1) {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.Scheduler.SalesInterval <= 0 || c.Scheduler.ExchangeRateInterval <= 0 {
		return fmt.Errorf("scheduler intervals must be positive")
	}

	switch c.Mail.Driver {
	case "log", "smtp":
	default:
		return fmt.Errorf("invalid MAIL_DRIVER: %s (must be log or smtp)", c.Mail.Driver)
	}
	switch c.Queue.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid QUEUE_DRIVER: %s (must be memory or redis)", c.Queue.Driver)
	}
	if (c.Admin.Email == "") != (c.Admin.Passcode == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSCODE must be set together")
	}

	if c.IsProduction() && c.Store.Driver == "memory" {
		log.Println("⚠️  Memory store loses every purchase on restart!")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func splitList(value string) []string {
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
