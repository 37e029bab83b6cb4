package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// DriverCGO is the mattn/go-sqlite3 driver name
	DriverCGO = "sqlite3"
	// DriverPure is the modernc.org/sqlite driver name
	DriverPure = "sqlite"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port int
	Host string
	Env  string // "development" or "production"

	// Data directory
	DataDir string

	// Database
	DatabasePath string
	DBDriver     string

	// Session settings
	SessionCookieName    string
	SessionMaxAge        time.Duration
	SessionSweepInterval time.Duration
	// SessionSecure marks the cookie Secure. Only enable it behind TLS,
	// browsers drop Secure cookies on plain HTTP.
	SessionSecure bool

	// Logging
	LogLevel string

	// Debug settings
	DBLogQueries bool

	// ConfigFile is the TOML file the values were read from, if any
	ConfigFile string
}

// fileConfig mirrors Config for the optional TOML file.
// Zero values mean "not set".
type fileConfig struct {
	Port         int    `toml:"port"`
	Host         string `toml:"host"`
	Env          string `toml:"env"`
	DataDir      string `toml:"data_dir"`
	DBDriver     string `toml:"db_driver"`
	LogLevel     string `toml:"log_level"`
	DBLogQueries bool   `toml:"db_log_queries"`

	Session struct {
		CookieName    string        `toml:"cookie_name"`
		MaxAge        time.Duration `toml:"max_age"`
		SweepInterval time.Duration `toml:"sweep_interval"`
		Secure        bool          `toml:"secure"`
	} `toml:"session"`
}

var (
	cfg  *Config
	once sync.Once
)

// Get returns the global configuration (singleton)
func Get() *Config {
	once.Do(func() {
		var err error
		cfg, err = Load()
		if err != nil {
			// The logger depends on config, so report straight to stderr
			fmt.Fprintf(os.Stderr, "config: %v (continuing without config file)\n", err)
		}
	})
	return cfg
}

// Load builds a configuration from defaults, the optional TOML file named by
// TODOS_CONFIG, and environment variables, in increasing precedence.
// On a file error the returned config still carries defaults and env values.
func Load() (*Config, error) {
	c := defaults()

	var fileErr error
	if path := os.Getenv("TODOS_CONFIG"); path != "" {
		if err := applyFile(c, path); err != nil {
			fileErr = fmt.Errorf("read %s: %w", path, err)
		} else {
			c.ConfigFile = path
		}
	}

	applyEnv(c)
	c.DatabasePath = filepath.Join(c.DataDir, "sessions.sqlite")

	return c, fileErr
}

func defaults() *Config {
	return &Config{
		Port:                 3002,
		Host:                 "localhost",
		Env:                  "development",
		DataDir:              "./data",
		DBDriver:             DriverCGO,
		SessionCookieName:    "todos-session-id",
		SessionMaxAge:        31 * 24 * time.Hour,
		SessionSweepInterval: time.Hour,
		LogLevel:             "info",
	}
}

func applyFile(c *Config, path string) error {
	var f fileConfig
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return err
	}

	if f.Port != 0 {
		c.Port = f.Port
	}
	if f.Host != "" {
		c.Host = f.Host
	}
	if f.Env != "" {
		c.Env = f.Env
	}
	if f.DataDir != "" {
		c.DataDir = f.DataDir
	}
	if f.DBDriver != "" {
		c.DBDriver = f.DBDriver
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.DBLogQueries {
		c.DBLogQueries = true
	}
	if f.Session.CookieName != "" {
		c.SessionCookieName = f.Session.CookieName
	}
	if f.Session.MaxAge > 0 {
		c.SessionMaxAge = f.Session.MaxAge
	}
	if f.Session.SweepInterval > 0 {
		c.SessionSweepInterval = f.Session.SweepInterval
	}
	if f.Session.Secure {
		c.SessionSecure = true
	}
	return nil
}

func applyEnv(c *Config) {
	c.Port = getEnvInt("PORT", c.Port)
	c.Host = getEnv("HOST", c.Host)
	c.Env = getEnv("ENV", c.Env)
	c.DataDir = getEnv("TODOS_DATA_DIR", c.DataDir)
	c.DBDriver = getEnv("TODOS_DB_DRIVER", c.DBDriver)
	c.SessionCookieName = getEnv("TODOS_SESSION_COOKIE", c.SessionCookieName)
	c.SessionMaxAge = getEnvDuration("TODOS_SESSION_MAX_AGE", c.SessionMaxAge)
	c.SessionSweepInterval = getEnvDuration("TODOS_SESSION_SWEEP", c.SessionSweepInterval)
	c.SessionSecure = getEnvBool("TODOS_SESSION_SECURE", c.SessionSecure)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	if v := os.Getenv("DB_LOG_QUERIES"); v != "" {
		c.DBLogQueries = v == "1"
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// Addr returns the host:port the HTTP server listens on
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
