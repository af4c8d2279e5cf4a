package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only acceptable outside production
const DefaultJWTSecret = "change-me-in-production"

// Config holds process settings read from the environment
type Config struct {
	Port                    string
	Env                     string
	LogLevel                string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	MongoURI                string
	MongoDatabase           string
	RedisURL                string
	MetricsPort             string

	JWTSecret     string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration

	RateLimitWrites int
	RateLimitWindow time.Duration

	PostsPerPage   int
	UsersPerPage   int
	MaxUploadBytes int64
	AllowedOrigins []string
}

// Load reads the environment after applying an optional .env file.
// The second return value reports whether a .env file was found.
func Load() (*Config, bool) {
	dotenv := godotenv.Load() == nil

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "aray"),
		RedisURL:                getEnv("REDIS_URL", ""),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),

		JWTSecret:     getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTAccessTTL:  getDuration("JWT_ACCESS_TTL", 24*time.Hour),
		JWTRefreshTTL: getDuration("JWT_REFRESH_TTL", 30*24*time.Hour),

		RateLimitWrites: getInt("RATE_LIMIT_WRITES", 60),
		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", time.Minute),

		PostsPerPage:   getInt("POSTS_PER_PAGE", 20),
		UsersPerPage:   getInt("USERS_PER_PAGE", 10),
		MaxUploadBytes: int64(getInt("MAX_UPLOAD_BYTES", 16<<20)),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
	}, dotenv
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate checks required settings
func (c *Config) Validate() error {
	if c.PostgresConnStr == "" {
		return fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
	}
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret) {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.JWTAccessTTL <= 0 || c.JWTRefreshTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if c.RateLimitWrites < 1 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WRITES and RATE_LIMIT_WINDOW must be positive")
	}
	if c.PostsPerPage < 1 || c.UsersPerPage < 1 {
		return fmt.Errorf("page sizes must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
