package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Driver identifiers accepted by NewBackend.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Backend is the durable key-value layer beneath a Store.
type Backend interface {
	// Load returns the value for key and whether it is present.
	Load(ctx context.Context, key string) (string, bool, error)
	// Apply writes every Set and Delete in b, or none of them.
	Apply(ctx context.Context, b Batch) error
	Close() error
}

// Batch is one atomic group of writes.
type Batch struct {
	Set    map[string]string
	Delete []string
}

func (b Batch) keys() []string {
	keys := make([]string, 0, len(b.Set)+len(b.Delete))
	for k := range b.Set {
		keys = append(keys, k)
	}
	return append(keys, b.Delete...)
}

// Config selects and configures a backend.
type Config struct {
	Driver string
	// Path is the YAML file for the file driver or the database file for sqlite.
	Path      string
	SQLiteDSN string
	Redis     RedisConfig
}

// RedisConfig captures connection options for the redis driver.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	// Key is the hash holding all settings. Defaults to "rulekeeper:settings".
	Key string
}

// NewBackend creates a backend based on the provided configuration.
func NewBackend(cfg Config) (Backend, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFile
	}

	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		path := cfg.Path
		if path == "" {
			p, err := defaultPath("settings.yaml")
			if err != nil {
				return nil, err
			}
			path = p
		}
		return NewFile(path)
	case DriverSQLite:
		dsn := cfg.SQLiteDSN
		if dsn == "" {
			dsn = cfg.Path
		}
		if dsn == "" {
			p, err := defaultPath("settings.db")
			if err != nil {
				return nil, err
			}
			dsn = p
		}
		return OpenSQLite(dsn)
	case DriverRedis:
		return NewRedis(cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported settings driver: %s", driver)
	}
}

// Dir returns ~/.rulekeeper, where settings and config live by default.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("settings: home dir: %w", err)
	}
	return filepath.Join(home, ".rulekeeper"), nil
}

func defaultPath(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
