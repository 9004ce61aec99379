// Package config loads process settings from the environment and run
// settings from YAML.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds process-level configuration values.
type Config struct {
	// SurrealDB connection, used only by publish and runs
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Run configuration file (optional)
	RunConfigPath string

	// Scorer goroutines; 0 or 1 scores sequentially
	Workers int
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "rastreador"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "reports"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LogFile:  getEnv("RASTREADOR_LOG_FILE", "/tmp/rastreador.log"),
		LogLevel: parseLogLevel(getEnv("RASTREADOR_LOG_LEVEL", "INFO")),

		RunConfigPath: getEnv("RASTREADOR_CONFIG", ""),
		Workers:       parseInt(getEnv("RASTREADOR_WORKERS", "0")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
