// Package config loads CLI configuration from defaults, an optional YAML
// file, an optional .env file and RULEKEEPER_* environment variables, in
// that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/naveenspark/rulekeeper/internal/settings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RULEKEEPER_"

// Config is the full CLI configuration.
type Config struct {
	// APIURL overrides the base URL saved in settings when set.
	APIURL string      `yaml:"api_url"`
	Store  StoreConfig `yaml:"store"`
	Log    LogConfig   `yaml:"log"`
	HTTP   HTTPConfig  `yaml:"http"`
}

// StoreConfig selects the settings backend.
type StoreConfig struct {
	Driver    string      `yaml:"driver"`
	Path      string      `yaml:"path"`
	SQLiteDSN string      `yaml:"sqlite_dsn"`
	Redis     RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis settings backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Bodies bool   `yaml:"bodies"`
	// File receives log output instead of stderr when set.
	File string `yaml:"file"`
}

// HTTPConfig tunes the API client.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Store: StoreConfig{Driver: settings.DriverFile},
		Log:   LogConfig{Level: "warn"},
		HTTP:  HTTPConfig{Timeout: 30 * time.Second},
	}
}

// Settings converts the store section for settings.NewBackend.
func (c Config) Settings() settings.Config {
	return settings.Config{
		Driver:    c.Store.Driver,
		Path:      c.Store.Path,
		SQLiteDSN: c.Store.SQLiteDSN,
		Redis: settings.RedisConfig{
			Addr:     c.Store.Redis.Addr,
			Username: c.Store.Redis.Username,
			Password: c.Store.Redis.Password,
			DB:       c.Store.Redis.DB,
			Key:      c.Store.Redis.Key,
		},
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case settings.DriverMemory, settings.DriverFile, settings.DriverSQLite:
	case settings.DriverRedis:
		if c.Store.Redis.Addr == "" {
			return errors.New("config: store.redis.addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.APIURL != "" {
		if err := ValidateBaseURL(c.APIURL); err != nil {
			return fmt.Errorf("config: api_url: %w", err)
		}
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	if c.HTTP.Timeout < 0 {
		return errors.New("config: http.timeout must not be negative")
	}
	return nil
}

// ValidateBaseURL checks that raw is an absolute http(s) URL.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q is not an http or https URL", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}

// Loader reads configuration. The zero value is not usable; call NewLoader.
type Loader struct {
	path      string
	useDotEnv bool
	dotEnv    string
	lookupEnv func(string) (string, bool)
}

// NewLoader creates a loader reading ~/.rulekeeper/config.yaml and ./.env.
func NewLoader() *Loader {
	return &Loader{useDotEnv: true, dotEnv: ".env", lookupEnv: os.LookupEnv}
}

// WithPath reads the YAML file at path instead of the default location.
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// WithDotEnv toggles loading variables from a .env file first.
func (l *Loader) WithDotEnv(enabled bool, path string) *Loader {
	l.useDotEnv = enabled
	if path != "" {
		l.dotEnv = path
	}
	return l
}

// Load builds and validates the configuration.
func (l *Loader) Load() (Config, error) {
	cfg := Default()

	path := l.path
	explicit := path != ""
	if !explicit {
		dir, err := settings.Dir()
		if err == nil {
			path = filepath.Join(dir, "config.yaml")
		}
	}
	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			if !explicit && errors.Is(err, os.ErrNotExist) {
				err = nil
			}
			if err != nil {
				return Config{}, err
			}
		}
	}

	if l.useDotEnv {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(l.dotEnv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: %s: %w", l.dotEnv, err)
		}
	}
	if err := applyEnv(&cfg, l.lookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	str("API_URL", &cfg.APIURL)
	str("STORE", &cfg.Store.Driver)
	str("STORE_PATH", &cfg.Store.Path)
	str("REDIS_ADDR", &cfg.Store.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Store.Redis.Password)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FILE", &cfg.Log.File)

	if v, ok := lookup(EnvPrefix + "LOG_BODIES"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %sLOG_BODIES: %w", EnvPrefix, err)
		}
		cfg.Log.Bodies = b
	}
	if v, ok := lookup(EnvPrefix + "HTTP_TIMEOUT"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %sHTTP_TIMEOUT: %w", EnvPrefix, err)
		}
		cfg.HTTP.Timeout = d
	}
	return nil
}
