package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort           int
	SQLiteDSN          string
	LogLevel           string
	ResetTokenLifetime time.Duration
	RateLimitPerSecond float64
	RateLimitBurst     int
	CORSOrigins        []string
	ShutdownTimeout    time.Duration
}

// Load parses configuration values from the current process environment.
// Optional fields fall back to defaults; malformed values are accumulated and
// reported together.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:           8080,
		SQLiteDSN:          "file:booking.db",
		LogLevel:           "info",
		ResetTokenLifetime: time.Hour,
		RateLimitPerSecond: 10,
		RateLimitBurst:     20,
		ShutdownTimeout:    10 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("BOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if level := strings.TrimSpace(os.Getenv("BOOKING_LOG_LEVEL")); level != "" {
		switch level {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = level
		default:
			invalid = append(invalid, "BOOKING_LOG_LEVEL")
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("BOOKING_RESET_TOKEN_LIFETIME")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BOOKING_RESET_TOKEN_LIFETIME")
		} else {
			cfg.ResetTokenLifetime = ttl
		}
	}

	if rateValue := strings.TrimSpace(os.Getenv("BOOKING_RATE_LIMIT_PER_SECOND")); rateValue != "" {
		perSecond, err := strconv.ParseFloat(rateValue, 64)
		if err != nil || perSecond <= 0 {
			invalid = append(invalid, "BOOKING_RATE_LIMIT_PER_SECOND")
		} else {
			cfg.RateLimitPerSecond = perSecond
		}
	}

	if burstValue := strings.TrimSpace(os.Getenv("BOOKING_RATE_LIMIT_BURST")); burstValue != "" {
		burst, err := strconv.Atoi(burstValue)
		if err != nil || burst <= 0 {
			invalid = append(invalid, "BOOKING_RATE_LIMIT_BURST")
		} else {
			cfg.RateLimitBurst = burst
		}
	}

	if origins := strings.TrimSpace(os.Getenv("BOOKING_CORS_ORIGINS")); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, trimmed)
			}
		}
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("BOOKING_SHUTDOWN_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "BOOKING_SHUTDOWN_TIMEOUT")
		} else {
			cfg.ShutdownTimeout = timeout
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
