package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	AdminEmail    string
	AdminPassword string
	AdminName     string
	AdminRole     string

	CORSOrigins []string

	RateLimit      int
	RateWindow     time.Duration
	MaxBodyBytes   int64
	FeedCacheTTL   time.Duration
	OTLPEndpoint   string
	TracingEnabled bool
}

func Load() Config {
	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)
	dbURL := buildDBURL()

	return Config{
		Env:   env,
		Port:  port,
		DBURL: dbURL,

		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
		AccessTTL:  getEnvDuration("ACCESS_TTL", 15*time.Minute),
		RefreshTTL: getEnvDuration("REFRESH_TTL", 7*24*time.Hour),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Calendar Manager"),
		AdminRole:     getEnv("ADMIN_ROLE", "manager"),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "")),

		RateLimit:      getEnvInt("RATE_LIMIT", 60),
		RateWindow:     getEnvDuration("RATE_WINDOW", time.Minute),
		MaxBodyBytes:   int64(getEnvInt("MAX_BODY_BYTES", 64<<10)),
		FeedCacheTTL:   getEnvDuration("FEED_CACHE_TTL", 15*time.Second),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", ""),
		TracingEnabled: getEnv("TRACING_ENABLED", "") == "true",
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "classcal")
	pass := getEnv("DB_PASSWORD", "classcal")
	name := getEnv("DB_NAME", "classcal")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return d
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
