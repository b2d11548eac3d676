package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the main configuration structure
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Http     HttpConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
}

// Load loads the configuration following proper precedence: defaults → config file → environment variables
func Load() (*Config, error) {
	configFile := os.Getenv("USERS_CONFIG_FILE")
	if configFile == "" {
		configFile = "users.yaml"
	}

	log.Printf("Attempting to load config file: %s", configFile)

	cfg, err := LoadFromFile(configFile)
	if err != nil {
		log.Printf("Failed to load config file: %v, using defaults", err)
		cfg = Default()
	} else {
		log.Printf("Successfully loaded config from file: %s", configFile)
	}

	ApplyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a copy of the built-in defaults.
func Default() *Config {
	cfg := defaultConfig
	return &cfg
}

// LoadFromFile loads configuration from a YAML file, merged over the defaults
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// ApplyEnvOverrides overrides cfg with environment variables if present
func ApplyEnvOverrides(cfg *Config) {
	if driver := os.Getenv("USERS_DB_DRIVER"); driver != "" {
		cfg.Database.Driver = driver
	}
	if dbHost := os.Getenv("USERS_DB_HOST"); dbHost != "" {
		cfg.Database.Postgres.Host = dbHost
	}
	if dbPort := os.Getenv("USERS_DB_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			cfg.Database.Postgres.Port = port
		}
	}
	if dbUser := os.Getenv("USERS_DB_USER"); dbUser != "" {
		cfg.Database.Postgres.User = dbUser
	}
	if dbPassword := os.Getenv("USERS_DB_PASSWORD"); dbPassword != "" {
		cfg.Database.Postgres.Password = dbPassword
	}
	if dbName := os.Getenv("USERS_DB_NAME"); dbName != "" {
		cfg.Database.Postgres.Database = dbName
	}
	if sqlitePath := os.Getenv("USERS_SQLITE_PATH"); sqlitePath != "" {
		cfg.Database.SQLite.Path = sqlitePath
	}

	if httpHost := os.Getenv("USERS_HTTP_HOST"); httpHost != "" {
		cfg.Http.Host = httpHost
	}
	if httpPort := os.Getenv("USERS_HTTP_PORT"); httpPort != "" {
		if port, err := strconv.Atoi(httpPort); err == nil {
			cfg.Http.Port = port
		}
	}

	if level := os.Getenv("USERS_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("USERS_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
}

// Validate checks the values that cannot be defaulted at use site.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if c.Database.Postgres.Port <= 0 || c.Database.Postgres.Port > 65535 {
			return fmt.Errorf("invalid database.postgres.port: %d", c.Database.Postgres.Port)
		}
	case DriverSQLite:
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("database.sqlite.path is required")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("invalid http.port: %d", c.Http.Port)
	}
	return nil
}

// set sane defaults for all of the config options. when loading the config from
// the file, any options that are not set will be set to these defaults.
var defaultConfig = Config{
	Log: LogConfig{
		Level:  "info",
		Format: "json",
	},
	Http: HttpConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		MaxRequestSize:  1048576,
		ShutdownTimeout: 30,
	},
	Database: DatabaseConfig{
		Driver: DriverPostgres,
		Postgres: PostgresConfig{
			User:               "postgres",
			Password:           "postgres",
			Host:               "localhost",
			Port:               5432,
			Database:           "users",
			ReadTimeout:        30,
			WriteTimeout:       30,
			MaxOpenConnections: 10,
		},
		SQLite: SQLiteConfig{
			Path: "users.db",
		},
		SlowQueryThresholdMs: 200,
	},
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type HttpConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	MaxRequestSize  int64  `yaml:"max_request_size"`
	ShutdownTimeout int    `yaml:"shutdown_timeout"` // seconds
}

func (c HttpConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	Driver               string         `yaml:"driver"` // "postgres" or "sqlite"
	Postgres             PostgresConfig `yaml:"postgres"`
	SQLite               SQLiteConfig   `yaml:"sqlite"`
	SlowQueryThresholdMs int            `yaml:"slow_query_threshold_ms"`
}

func (c DatabaseConfig) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryThresholdMs) * time.Millisecond
}

type PostgresConfig struct {
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Database           string `yaml:"database"`
	ReadTimeout        int    `yaml:"read_timeout"`  // seconds
	WriteTimeout       int    `yaml:"write_timeout"` // seconds
	MaxOpenConnections int    `yaml:"max_open_connections"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		url.QueryEscape(c.Database),
	)
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}
