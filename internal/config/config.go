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

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"

	minSecretLen = 32
)

var (
	ErrUnknownDriver  = errors.New("unknown STORAGE_DRIVER")
	ErrWeakSecret     = errors.New("SESSION_SECRET must be at least 32 chars")
	ErrMissingSetting = errors.New("missing setting")
)

type Config struct {
	Port     string
	LogLevel string

	InventoryURL     string
	InventoryTimeout time.Duration

	StorageDriver string
	StorageDir    string
	RedisAddr     string
	DatabaseURL   string

	SessionSecret     string
	SessionTTL        time.Duration
	SessionIdle       time.Duration
	SessionRatePerMin int

	MetricsToken string
	OTLPEndpoint string
}

// Load reads an optional .env file and then the environment. Values already
// present in the environment win over .env.
func Load(defaultPort string) Config {
	_ = godotenv.Load()

	return Config{
		Port:     getenv("PORT", defaultPort),
		LogLevel: getenv("LOG_LEVEL", "info"),

		InventoryURL:     getenv("INVENTORY_URL", "http://localhost:3333"),
		InventoryTimeout: getenvDuration("INVENTORY_TIMEOUT", 3*time.Second),

		StorageDriver: strings.ToLower(getenv("STORAGE_DRIVER", DriverMemory)),
		StorageDir:    getenv("STORAGE_DIR", "./data"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		SessionSecret:     os.Getenv("SESSION_SECRET"),
		SessionTTL:        getenvDuration("SESSION_TTL", 30*24*time.Hour),
		SessionIdle:       getenvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		SessionRatePerMin: getenvInt("SESSION_RATE_PER_MIN", 10),

		MetricsToken: os.Getenv("METRICS_TOKEN"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}

// ValidateStorefront checks the settings the storefront cannot run without.
func (c Config) ValidateStorefront() error {
	if len(c.SessionSecret) < minSecretLen {
		return ErrWeakSecret
	}
	return c.validateStorage()
}

func (c Config) validateStorage() error {
	switch c.StorageDriver {
	case DriverMemory, DriverFile:
		return nil
	case DriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: REDIS_ADDR", ErrMissingSetting)
		}
		return nil
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL", ErrMissingSetting)
		}
		return nil
	default:
		return ErrUnknownDriver
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
