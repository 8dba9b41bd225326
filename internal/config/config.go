// Package config loads the statemap settings.
//
// Sources are layered, lowest priority first: built-in defaults, an optional
// YAML file (statemap.yaml in the working directory unless a path is given),
// then STATEMAP_* environment variables. The result is validated before use.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no explicit path is given and it exists.
const DefaultFile = "statemap.yaml"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Config is the full set of settings.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Store  StoreConfig  `yaml:"store"`
	Server ServerConfig `yaml:"server"`
	MCP    MCPConfig    `yaml:"mcp"`

	// LoadedFrom lists the sources applied, in order.
	LoadedFrom []string `yaml:"-"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// StoreConfig selects where diagrams are persisted.
type StoreConfig struct {
	Driver string `yaml:"driver" validate:"required,oneof=memory file redis sqlite"`
	// Path is the directory of the file store or the database file of the
	// sqlite store.
	Path          string        `yaml:"path" validate:"required_if=Driver file,required_if=Driver sqlite"`
	RedisAddr     string        `yaml:"redis_addr" validate:"required_if=Driver redis"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db" validate:"gte=0"`
	Prefix        string        `yaml:"prefix"`
	TTL           time.Duration `yaml:"ttl" validate:"gte=0"`
	// Lock enables the distributed lock; only the redis driver provides one.
	Lock    bool          `yaml:"lock"`
	LockTTL time.Duration `yaml:"lock_ttl" validate:"gte=0"`
	// EncryptionKey is a base64 AES-256 key; when set, diagrams are stored
	// encrypted. FallbackKeys are tried on read during key rotation.
	EncryptionKey string   `yaml:"encryption_key" validate:"omitempty,base64"`
	FallbackKeys  []string `yaml:"fallback_keys" validate:"dive,base64"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr" validate:"required"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ShutdownGrace  time.Duration `yaml:"shutdown_grace" validate:"gte=0"`
}

type MCPConfig struct {
	Transport string `yaml:"transport" validate:"oneof=stdio sse"`
	Port      int    `yaml:"port" validate:"gte=0,lte=65535"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Store: StoreConfig{
			Driver:  DriverFile,
			Path:    ".statemap/diagrams",
			Prefix:  "statemap:",
			LockTTL: 30 * time.Second,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			ShutdownGrace:  5 * time.Second,
		},
		MCP: MCPConfig{Transport: "stdio", Port: 8081},
	}
}

// Load builds the configuration. An empty path reads DefaultFile when present;
// an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	cfg.LoadedFrom = []string{"defaults"}

	file := path
	if file == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			file = DefaultFile
		}
	}
	if file != "" {
		if err := cfg.loadFile(file); err != nil {
			return Config{}, err
		}
		cfg.LoadedFrom = append(cfg.LoadedFrom, file)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.LoadedFrom = append(cfg.LoadedFrom, "environment")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("STATEMAP_LOG_LEVEL", &c.Log.Level)
	str("STATEMAP_LOG_FORMAT", &c.Log.Format)
	str("STATEMAP_STORE_DRIVER", &c.Store.Driver)
	str("STATEMAP_STORE_PATH", &c.Store.Path)
	str("STATEMAP_REDIS_ADDR", &c.Store.RedisAddr)
	str("STATEMAP_REDIS_PASSWORD", &c.Store.RedisPassword)
	str("STATEMAP_STORE_PREFIX", &c.Store.Prefix)
	str("STATEMAP_STORE_KEY", &c.Store.EncryptionKey)
	str("STATEMAP_HTTP_ADDR", &c.Server.Addr)
	str("STATEMAP_MCP_TRANSPORT", &c.MCP.Transport)

	var errs []error
	if v, ok := lookup("STATEMAP_REDIS_DB"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("STATEMAP_REDIS_DB: %w", err))
		} else {
			c.Store.RedisDB = n
		}
	}
	if v, ok := lookup("STATEMAP_STORE_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("STATEMAP_STORE_TTL: %w", err))
		} else {
			c.Store.TTL = d
		}
	}
	if v, ok := lookup("STATEMAP_STORE_LOCK"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("STATEMAP_STORE_LOCK: %w", err))
		} else {
			c.Store.Lock = b
		}
	}
	if v, ok := lookup("STATEMAP_MCP_PORT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("STATEMAP_MCP_PORT: %w", err))
		} else {
			c.MCP.Port = n
		}
	}
	if v, ok := lookup("STATEMAP_ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}
	return errors.Join(errs...)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the settings and reports every failing field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
