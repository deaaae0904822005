package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		Driver     string // mysql | sqlite
		DSN        string
		Host       string
		Port       string
		User       string
		Password   string
		Name       string
		SQLitePath string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	GRPC struct {
		Host string
		Port string
	}

	Discovery struct {
		DefaultLimit int
		MaxLimit     int
	}

	Cache struct {
		LikeCountTTL time.Duration
	}
}

// New builds the config from the environment. A .env file in the working
// directory is loaded first when present; real env vars win over it.
func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "production")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "roommatch")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", "mysql"))
	cfg.DB.SQLitePath = getEnvDefault("SQLITE_PATH", "roommatch.db")
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "roommatch")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// Discovery paging
	cfg.Discovery.DefaultLimit = getEnvInt("DISCOVER_DEFAULT_LIMIT", 20)
	cfg.Discovery.MaxLimit = getEnvInt("DISCOVER_MAX_LIMIT", 100)

	// Cache
	cfg.Cache.LikeCountTTL = getEnvDuration("LIKE_COUNT_TTL", time.Hour)

	return cfg
}

// IsDevelopment reports whether demo data may be seeded on start.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.App.ENV, "development")
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if n, err := strconv.Atoi(getEnvDefault(k, "")); err == nil {
		return n
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnvDefault(k, "")); err == nil && d > 0 {
		return d
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
