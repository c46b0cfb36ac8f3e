// Package config junta la configuración de los binarios: .env, un YAML opcional
// (CONFIG_FILE) y por último las variables de entorno, que siempre ganan.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pet-medical-log/internal/domain/events"
	"pet-medical-log/internal/platform/logger"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultTimezone = "America/Argentina/Buenos_Aires"
)

type Config struct {
	Server   ServerConfig `yaml:"server"`
	Store    StoreConfig  `yaml:"store"`
	Log      LogConfig    `yaml:"log"`
	Auth     AuthConfig   `yaml:"auth"`
	PetID    string       `yaml:"petId"`
	Timezone string       `yaml:"legacyTimezone"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type StoreConfig struct {
	Driver     string `yaml:"driver"` // memory | postgres | sqlite
	DSN        string `yaml:"dsn"`
	SQLitePath string `yaml:"sqlitePath"`
}

// AuthConfig apunta al servicio de identidad. Vacío => modo dev (X-Debug-User-ID).
type AuthConfig struct {
	URL          string `yaml:"url"`
	APIKey       string `yaml:"apiKey"`
	APIKeyHeader string `yaml:"apiKeyHeader"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	AppName string `yaml:"appName"`
}

func defaults() Config {
	return Config{
		Server:   ServerConfig{Port: "8080"},
		Store:    StoreConfig{Driver: DriverMemory, SQLitePath: "./data/petlog.db"},
		Log:      LogConfig{Level: "info", Format: "json", AppName: "pet-medical-log"},
		PetID:    events.DefaultPetID,
		Timezone: DefaultTimezone,
	}
}

// Load lee .env si existe (sin pisar variables ya definidas), después CONFIG_FILE
// y al final el entorno.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("failed to parse YAML %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Store.Driver = strings.ToLower(getEnv("STORE_DRIVER", c.Store.Driver))
	c.Store.DSN = getEnv("DB_DSN", c.Store.DSN)
	c.Store.SQLitePath = getEnv("SQLITE_PATH", c.Store.SQLitePath)
	c.PetID = getEnv("PET_ID", c.PetID)
	c.Timezone = getEnv("LEGACY_TIMEZONE", c.Timezone)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Log.AppName = getEnv("APP_NAME", c.Log.AppName)
	c.Auth.URL = getEnv("AUTH_URL", c.Auth.URL)
	c.Auth.APIKey = getEnv("AUTH_API_KEY", c.Auth.APIKey)
	c.Auth.APIKeyHeader = getEnv("AUTH_API_KEY_HEADER", c.Auth.APIKeyHeader)

	// compat: DB_DSN sin driver explícito implica postgres
	if _, set := os.LookupEnv("STORE_DRIVER"); !set && c.Store.DSN != "" && c.Store.Driver == DriverMemory {
		c.Store.Driver = DriverPostgres
	}
}

var ErrInvalidConfig = errors.New("invalid config")

func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: DB_DSN is required for the postgres driver", ErrInvalidConfig)
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("%w: SQLITE_PATH is required for the sqlite driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown STORE_DRIVER %q", ErrInvalidConfig, c.Store.Driver)
	}
	if (c.Auth.URL == "") != (c.Auth.APIKey == "") {
		return fmt.Errorf("%w: AUTH_URL and AUTH_API_KEY go together", ErrInvalidConfig)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("%w: PORT is empty", ErrInvalidConfig)
	}
	return nil
}

// Addr es la dirección de escucha del API (":8080").
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Server.Port, ":")
}

// Location resuelve LEGACY_TIMEZONE; si la zona no existe en el sistema cae a UTC.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoggerOptions traduce la sección log a logger.Options.
func (c Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level:  logger.ParseLevel(c.Log.Level),
		Format: logger.ParseFormat(c.Log.Format),
		App:    c.Log.AppName,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
