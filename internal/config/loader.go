package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	CalendarsPath string
	// RefreshInterval is the pause between the end of one rebuild cycle
	// and the start of the next.
	RefreshInterval time.Duration
	// ClockOffset shifts the wall clock when resolving "today" requests to
	// the feed's civil time.
	ClockOffset time.Duration
	// BasicAuthUser/BasicAuthHash enable HTTP basic authentication when
	// both are set. The hash is a bcrypt digest of the password.
	BasicAuthUser string
	BasicAuthHash string
}

// Load parses configuration values from the current process environment,
// applying defaults for optional fields and reporting every missing or
// invalid entry at once.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:hyperapi.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		CalendarsPath:   "config/calendars.yaml",
		RefreshInterval: time.Hour,
		ClockOffset:     time.Hour,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("HYPERAPI_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "HYPERAPI_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("HYPERAPI_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if path := strings.TrimSpace(os.Getenv("HYPERAPI_CALENDARS_PATH")); path != "" {
		cfg.CalendarsPath = path
	}

	if value := strings.TrimSpace(os.Getenv("HYPERAPI_REFRESH_INTERVAL")); value != "" {
		interval, err := time.ParseDuration(value)
		if err != nil || interval <= 0 {
			invalid = append(invalid, "HYPERAPI_REFRESH_INTERVAL")
		} else {
			cfg.RefreshInterval = interval
		}
	}

	if value := strings.TrimSpace(os.Getenv("HYPERAPI_CLOCK_OFFSET")); value != "" {
		offset, err := time.ParseDuration(value)
		if err != nil {
			invalid = append(invalid, "HYPERAPI_CLOCK_OFFSET")
		} else {
			cfg.ClockOffset = offset
		}
	}

	cfg.BasicAuthUser = strings.TrimSpace(os.Getenv("HYPERAPI_BASIC_AUTH_USER"))
	cfg.BasicAuthHash = strings.TrimSpace(os.Getenv("HYPERAPI_BASIC_AUTH_HASH"))
	if (cfg.BasicAuthUser == "") != (cfg.BasicAuthHash == "") {
		invalid = append(invalid, "HYPERAPI_BASIC_AUTH_USER/HYPERAPI_BASIC_AUTH_HASH")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// BasicAuthEnabled reports whether the API requires authentication.
func (c Config) BasicAuthEnabled() bool {
	return c.BasicAuthUser != "" && c.BasicAuthHash != ""
}
