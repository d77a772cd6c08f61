package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centralizes configuration loaded from the environment.
type Config struct {
	Port            int
	DBDSN           string
	RedisURL        string
	JWTSecret       string
	JWTAccessTTL    time.Duration
	AdminSignupCode string
	AllowOrigins    []string
	RateLimitAuth   RateLimitConfig
	RateLimitAdmin  RateLimitConfig
	Storage         StorageConfig
}

// RateLimitConfig represents simple throttling limits.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// StorageConfig describes the optional backup archival backend.
type StorageConfig struct {
	Provider    string
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

// Load reads environment variables and applies safe defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("invalid PORT")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is required")
	}

	// Redis is optional: without it the token revocation list is disabled
	// and logout is purely client-side.
	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET must be at least 32 characters")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL = accessTTL

	cfg.AdminSignupCode = strings.TrimSpace(getEnv("ADMIN_SIGNUP_CODE", ""))
	if cfg.AdminSignupCode == "" {
		return nil, errors.New("ADMIN_SIGNUP_CODE is required")
	}

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 5, Burst: 10}
	cfg.RateLimitAdmin = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}

	cfg.Storage = StorageConfig{
		Provider:    strings.TrimSpace(getEnv("STORAGE_PROVIDER", "")),
		S3Endpoint:  strings.TrimSpace(getEnv("STORAGE_S3_ENDPOINT", "")),
		S3Region:    strings.TrimSpace(getEnv("STORAGE_S3_REGION", "auto")),
		S3Bucket:    strings.TrimSpace(getEnv("STORAGE_S3_BUCKET", "")),
		S3AccessKey: strings.TrimSpace(getEnv("STORAGE_S3_ACCESS_KEY", "")),
		S3SecretKey: strings.TrimSpace(getEnv("STORAGE_S3_SECRET_KEY", "")),
		S3PublicURL: strings.TrimSpace(getEnv("STORAGE_S3_PUBLIC_URL", "")),
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return dur, nil
}
