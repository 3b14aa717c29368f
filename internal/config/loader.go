package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the training
// console.
type Config struct {
	SQLiteDSN     string
	LogLevel      string
	DBBusyTimeout time.Duration
	DBMaxOpenConn int
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// provided values and reporting localized error messages for bad entries.
func Load() (Config, error) {
	cfg := Config{
		SQLiteDSN:     "console.db",
		LogLevel:      "info",
		DBBusyTimeout: 30 * time.Second,
		DBMaxOpenConn: 25,
	}

	invalid := make([]string, 0, 2)

	if dsn := strings.TrimSpace(os.Getenv("CONSOLE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if level := strings.TrimSpace(os.Getenv("CONSOLE_LOG_LEVEL")); level != "" {
		switch strings.ToLower(level) {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = strings.ToLower(level)
		default:
			invalid = append(invalid, "CONSOLE_LOG_LEVEL")
		}
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("CONSOLE_DB_BUSY_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "CONSOLE_DB_BUSY_TIMEOUT")
		} else {
			cfg.DBBusyTimeout = timeout
		}
	}

	if connsValue := strings.TrimSpace(os.Getenv("CONSOLE_DB_MAX_OPEN_CONNS")); connsValue != "" {
		conns, err := strconv.Atoi(connsValue)
		if err != nil || conns <= 0 {
			invalid = append(invalid, "CONSOLE_DB_MAX_OPEN_CONNS")
		} else {
			cfg.DBMaxOpenConn = conns
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("valeurs d'environnement invalides: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
