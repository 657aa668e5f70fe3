package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

const (
	defaultServerPort     = 8080
	defaultRegistryTTL    = 5 * time.Minute
	defaultOpenMatchQueue = "match.open"
	defaultLocale         = "es"
	defaultDedupCapacity  = 1024
	defaultWritesPerMin   = 30
)

type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// Redis is optional; an empty address disables the registry cache.
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RegistryCacheTTL time.Duration

	// RabbitMQ is optional; an empty URL disables the open match publisher.
	RabbitMQURL    string
	OpenMatchQueue string

	CollationLocale    language.Tag
	DedupCapacity      int
	CORSAllowedOrigins []string
	AutoMigrate        bool

	// WritesPerMinute caps match writes per player; 0 disables the limit.
	WritesPerMinute int
}

// Load reads the configuration from the environment, after loading a .env
// file when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", defaultServerPort)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	ttl := defaultRegistryTTL
	if raw := os.Getenv("REGISTRY_CACHE_TTL"); raw != "" {
		ttl, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REGISTRY_CACHE_TTL environment variable: %w", err)
		}
		if ttl <= 0 {
			return nil, fmt.Errorf("REGISTRY_CACHE_TTL must be positive, got %s", ttl)
		}
	}

	locale, err := language.Parse(stringEnv("COLLATION_LOCALE", defaultLocale))
	if err != nil {
		return nil, fmt.Errorf("invalid COLLATION_LOCALE environment variable: %w", err)
	}

	capacity, err := intEnv("DEDUP_CAPACITY", defaultDedupCapacity)
	if err != nil {
		return nil, err
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("DEDUP_CAPACITY must be positive, got %d", capacity)
	}

	writesPerMinute, err := intEnv("WRITES_PER_MINUTE", defaultWritesPerMin)
	if err != nil {
		return nil, err
	}
	if writesPerMinute < 0 {
		return nil, fmt.Errorf("WRITES_PER_MINUTE must not be negative, got %d", writesPerMinute)
	}

	autoMigrate := false
	if raw := os.Getenv("AUTO_MIGRATE"); raw != "" {
		autoMigrate, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTO_MIGRATE environment variable: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            redisDB,
		RegistryCacheTTL:   ttl,
		RabbitMQURL:        os.Getenv("RABBITMQ_URL"),
		OpenMatchQueue:     stringEnv("OPEN_MATCH_QUEUE", defaultOpenMatchQueue),
		CollationLocale:    locale,
		DedupCapacity:      capacity,
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		AutoMigrate:        autoMigrate,
		WritesPerMinute:    writesPerMinute,
	}

	return cfg, nil
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
