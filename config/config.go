package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Session    SessionConfig
	Storage    StorageConfig
	Storefront StorefrontAPIConfig
	Checkout   CheckoutConfig
	Catalog    CatalogConfig
	Receipts   ReceiptConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type SessionConfig struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

type LogConfig struct {
	Level  string
	Format string // json, console
}

// StorageConfig selects where cart and wishlist snapshots are kept.
type StorageConfig struct {
	Driver      string // redis, postgres
	TTL         time.Duration
	IdleTimeout time.Duration // 메모리에서 내리는 유휴 시간
	SweepSpec   string
}

type StorefrontAPIConfig struct {
	BaseURL         string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

type CheckoutConfig struct {
	OrderTimeout          time.Duration
	FreeShippingThreshold string
	FlatShippingFee       string
	TaxRate               string
}

type CatalogConfig struct {
	RefreshSpec string
	CacheTTL    time.Duration
}

// ReceiptConfig enables the S3 receipt archive when Bucket is set.
type ReceiptConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	BaseURL         string
	URLExpiry       time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "manajir"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE_NAME", "storefront_sid"),
			MaxAge:     parseDuration(getEnv("SESSION_MAX_AGE", "720h"), 720*time.Hour),
			Secure:     getEnv("SESSION_COOKIE_SECURE", "false") == "true",
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(getEnv("STORAGE_DRIVER", "redis")),
			TTL:         parseDuration(getEnv("STORAGE_TTL", "720h"), 720*time.Hour),
			IdleTimeout: parseDuration(getEnv("STORAGE_IDLE_TIMEOUT", "30m"), 30*time.Minute),
			SweepSpec:   getEnv("STORAGE_SWEEP_SPEC", "@every 5m"),
		},
		Storefront: StorefrontAPIConfig{
			BaseURL:         strings.TrimRight(getEnv("STOREFRONT_API_BASE_URL", "http://localhost:4000/api"), "/"),
			Timeout:         parseDuration(getEnv("STOREFRONT_API_TIMEOUT", "30s"), 30*time.Second),
			BreakerFailures: uint32(parseInt(getEnv("STOREFRONT_API_BREAKER_FAILURES", "5"), 5)),
			BreakerCooldown: parseDuration(getEnv("STOREFRONT_API_BREAKER_COOLDOWN", "30s"), 30*time.Second),
		},
		Checkout: CheckoutConfig{
			OrderTimeout:          parseDuration(getEnv("CHECKOUT_ORDER_TIMEOUT", "20s"), 20*time.Second),
			FreeShippingThreshold: getEnv("PRICING_FREE_SHIPPING_THRESHOLD", "150"),
			FlatShippingFee:       getEnv("PRICING_FLAT_SHIPPING_FEE", "15"),
			TaxRate:               getEnv("PRICING_TAX_RATE", "0.08"),
		},
		Catalog: CatalogConfig{
			RefreshSpec: getEnv("CATALOG_REFRESH_SPEC", "@every 30s"),
			CacheTTL:    parseDuration(getEnv("CATALOG_CACHE_TTL", "2m"), 2*time.Minute),
		},
		Receipts: ReceiptConfig{
			Bucket:          getEnv("RECEIPTS_S3_BUCKET", ""),
			Region:          getEnv("AWS_REGION", "ap-northeast-2"),
			Endpoint:        getEnv("RECEIPTS_S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Prefix:          getEnv("RECEIPTS_S3_PREFIX", "receipts"),
			BaseURL:         getEnv("RECEIPTS_BASE_URL", ""),
			URLExpiry:       parseDuration(getEnv("RECEIPTS_URL_EXPIRY", "24h"), 24*time.Hour),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if config.Storage.Driver != "redis" && config.Storage.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", config.Storage.Driver)
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
