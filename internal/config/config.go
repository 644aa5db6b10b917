package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverMemory = "memory"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string

	StorageDriver string
	MySQLDSN      string
	SQLitePath    string
	ResetDB       bool
	SeedDemo      bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret         string
	AllowRegistration bool
	LoginRateLimit    float64

	CORSAllowedOrigins []string
	LogLevel           slog.Level
	TraceExporter      string
	SwaggerHost        string
}

// Load builds Config from the environment, reading a .env file first when
// one exists.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", DriverMemory)),
		MySQLDSN:           getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/quietseed?charset=utf8mb4&parseTime=True&loc=UTC"),
		SQLitePath:         getEnv("SQLITE_PATH", "quietseed.db"),
		ResetDB:            getEnvBool("RESET_DB", false),
		SeedDemo:           getEnvBool("SEED_DEMO", false),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		RedisPass:          os.Getenv("REDIS_PASSWORD"),
		JWTSecret:          getEnv("JWT_SECRET", "change-me"),
		AllowRegistration:  getEnvBool("ALLOW_REGISTRATION", false),
		LoginRateLimit:     getEnvFloat("LOGIN_RATE_LIMIT", 5),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           parseLevel(getEnv("LOG_LEVEL", "info")),
		TraceExporter:      strings.ToLower(getEnv("TRACE_EXPORTER", "none")),
		SwaggerHost:        os.Getenv("SWAGGER_HOST"),
	}
	// the volatile store starts empty on every boot
	if cfg.StorageDriver == DriverMemory {
		cfg.SeedDemo = true
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
