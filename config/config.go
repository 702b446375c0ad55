package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultConfigPath = "./etc/config.yaml"
)

type Config struct {
	Server struct {
		Addr           string   `yaml:"addr"`
		Mode           string   `yaml:"mode"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`
	Database struct {
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			Host     string `yaml:"host"`
			Port     string `yaml:"port"`
			DBName   string `yaml:"dbname"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			SSLMode  string `yaml:"sslmode"`
			TimeZone string `yaml:"TimeZone"`
		} `yaml:"postgres"`
		SQLitePath   string `yaml:"sqlitePath"`
		MaxIdleConns int    `yaml:"maxIdleConns"`
		MaxOpenConns int    `yaml:"maxOpenConns"`
	} `yaml:"database"`
	Auth struct {
		AccessTokenSecret     string `yaml:"accessTokenSecret"`
		AccessTokenExpiryHour int    `yaml:"accessTokenExpiryHour"`
		BcryptCost            int    `yaml:"bcryptCost"`
	} `yaml:"auth"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

var (
	once   sync.Once
	config *Config
)

// GetConfig returns the process-wide configuration. The file is read from
// CONFIG_PATH (default ./etc/config.yaml) on first use; a missing file falls
// back to defaults, any other read or parse failure panics.
func GetConfig() *Config {
	once.Do(func() {
		path := os.Getenv("CONFIG_PATH")
		if path == "" {
			path = defaultConfigPath
		}
		var err error
		config, err = Load(path)
		if err != nil {
			panic(err)
		}
	})
	return config
}

// Load reads the YAML file at filePath on top of the defaults and then applies
// environment overrides.
func Load(filePath string) (*Config, error) {
	cfg := Default()

	err := readConfig(filePath, cfg)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config %s: %w", filePath, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Default() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":7320"
	cfg.Server.Mode = "release"
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	cfg.Database.Driver = DriverPostgres
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Postgres.Port = "5432"
	cfg.Database.Postgres.DBName = "taskflow"
	cfg.Database.Postgres.User = "postgres"
	cfg.Database.Postgres.SSLMode = "disable"
	cfg.Database.Postgres.TimeZone = "UTC"
	cfg.Database.SQLitePath = "taskflow.db"
	cfg.Database.MaxIdleConns = 5
	cfg.Database.MaxOpenConns = 10
	cfg.Auth.AccessTokenExpiryHour = 168
	cfg.Auth.BcryptCost = 12
	cfg.Log.Level = "info"
	return cfg
}

func readConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, config)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.Database.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.AccessTokenSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	// replaces the configured list rather than extending it
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		origins := []string{}
		for _, origin := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Auth.AccessTokenSecret == "" {
		return errors.New("auth.accessTokenSecret (or JWT_SECRET) is required")
	}
	if c.Auth.AccessTokenExpiryHour <= 0 {
		return errors.New("auth.accessTokenExpiryHour must be positive")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("auth.bcryptCost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

// PostgresDSN builds the connection string from the postgres block unless an
// explicit dsn was configured.
func (c *Config) PostgresDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	pg := c.Database.Postgres
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		pg.Host, pg.User, pg.Password, pg.DBName, pg.Port, pg.SSLMode, pg.TimeZone)
}
