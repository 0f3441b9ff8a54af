package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vcell/internal/errors"
)

const (
	// DefaultName is the application name used when none is configured.
	DefaultName = "vcell"

	// DefaultListen is the default HTTP listen address.
	DefaultListen = ":8080"

	// DefaultMetricsPath is where Prometheus metrics are served.
	DefaultMetricsPath = "/metrics"

	// DefaultRedisAddr is the default Redis address.
	DefaultRedisAddr = "localhost:6379"
)

// Store backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendS3     = "s3"
)

// Config is the complete server configuration.
type Config struct {
	// Name identifies the application in logs and traces.
	Name string `json:"name,omitempty" yaml:"name" toml:"name"`

	// Listen is the HTTP listen address.
	Listen string `json:"listen,omitempty" yaml:"listen" toml:"listen"`

	Log     LogConfig     `json:"log" yaml:"log" toml:"log"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" toml:"metrics"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing" toml:"tracing"`
	Store   StoreConfig   `json:"store" yaml:"store" toml:"store"`

	// Cells are the named cells served over HTTP and WebSocket.
	Cells []CellConfig `json:"cells,omitempty" yaml:"cells" toml:"cells"`

	// path stores the file the config was loaded from.
	path string
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level" toml:"level"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format" toml:"format"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	Path      string `json:"path,omitempty" yaml:"path" toml:"path"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace" toml:"namespace"`
}

// TracingConfig configures OpenTelemetry spans.
type TracingConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName" toml:"tracerName"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	// Backend is none, memory, redis or s3.
	Backend string      `json:"backend,omitempty" yaml:"backend" toml:"backend"`
	Redis   RedisConfig `json:"redis" yaml:"redis" toml:"redis"`
	S3      S3Config    `json:"s3" yaml:"s3" toml:"s3"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string `json:"addr,omitempty" yaml:"addr" toml:"addr"`
	Password string `json:"password,omitempty" yaml:"password" toml:"password"`
	DB       int    `json:"db,omitempty" yaml:"db" toml:"db"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix" toml:"prefix"`

	// TTL is a Go duration string; empty means no expiry.
	TTL string `json:"ttl,omitempty" yaml:"ttl" toml:"ttl"`
}

// S3Config configures the S3 backend.
type S3Config struct {
	Bucket    string `json:"bucket,omitempty" yaml:"bucket" toml:"bucket"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix" toml:"prefix"`
	Region    string `json:"region,omitempty" yaml:"region" toml:"region"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint" toml:"endpoint"`
	PathStyle bool   `json:"pathStyle,omitempty" yaml:"pathStyle" toml:"pathStyle"`
}

// CellConfig declares one served cell.
type CellConfig struct {
	Name string `json:"name" yaml:"name" toml:"name"`

	// Initial is the starting value. A missing value leaves the cell
	// uninitialized until a client or the store sets it.
	Initial any `json:"initial,omitempty" yaml:"initial" toml:"initial"`

	// ReadOnly rejects writes from clients.
	ReadOnly bool `json:"readOnly,omitempty" yaml:"readOnly" toml:"readOnly"`

	// Persist mirrors the cell into the configured store.
	Persist bool `json:"persist,omitempty" yaml:"persist" toml:"persist"`
}

// Default returns a configuration with default values.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeInvalidConfig).
				WithDetail("No config file at " + path).
				WithSuggestion("Pass --config with the path to a .yaml, .toml or .json file")
		}
		return nil, errors.New(errors.CodeInvalidConfig).Wrap(err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes data in the format named by ext, applies defaults and
// validates the result.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := &Config{}

	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetail(fmt.Sprintf("Unsupported config format %q", ext)).
			WithSuggestion("Use .yaml, .yml, .toml or .json")
	}
	if err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetail("Parse " + strings.TrimPrefix(ext, ".") + ": " + err.Error()).
			Wrap(err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = c.Name
	}
	if c.Store.Backend == "" {
		c.Store.Backend = BackendNone
	}
	if c.Store.Backend == BackendRedis && c.Store.Redis.Addr == "" {
		c.Store.Redis.Addr = DefaultRedisAddr
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(detail string) error {
		return errors.New(errors.CodeInvalidConfig).WithDetail(detail)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid(fmt.Sprintf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return invalid(fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path must start with /")
	}

	switch c.Store.Backend {
	case BackendNone, BackendMemory:
	case BackendRedis:
		if _, err := c.RedisTTL(); err != nil {
			return invalid(fmt.Sprintf("store.redis.ttl %q is not a duration", c.Store.Redis.TTL))
		}
	case BackendS3:
		if c.Store.S3.Bucket == "" {
			return invalid("store.s3.bucket is required for the s3 backend")
		}
	default:
		return invalid(fmt.Sprintf("store.backend %q must be none, memory, redis or s3", c.Store.Backend))
	}

	seen := make(map[string]bool, len(c.Cells))
	for i, cell := range c.Cells {
		if cell.Name == "" {
			return invalid(fmt.Sprintf("cells[%d] has no name", i))
		}
		if strings.ContainsAny(cell.Name, "/ ") {
			return invalid(fmt.Sprintf("cell name %q must not contain spaces or slashes", cell.Name))
		}
		if seen[cell.Name] {
			return invalid(fmt.Sprintf("cell %q is declared twice", cell.Name))
		}
		seen[cell.Name] = true
		if cell.Persist && c.Store.Backend == BackendNone {
			return invalid(fmt.Sprintf("cell %q sets persist but store.backend is none", cell.Name))
		}
	}
	return nil
}

// RedisTTL parses the Redis TTL. An empty TTL is zero.
func (c *Config) RedisTTL() (time.Duration, error) {
	if c.Store.Redis.TTL == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Store.Redis.TTL)
}

// Cell returns the cell declared under name.
func (c *Config) Cell(name string) (CellConfig, bool) {
	for _, cell := range c.Cells {
		if cell.Name == name {
			return cell, true
		}
	}
	return CellConfig{}, false
}

// Equal reports whether two configurations hold the same settings.
func Equal(a, b *Config) bool {
	if a == nil || b == nil {
		return a == b
	}
	x, y := *a, *b
	x.path, y.path = "", ""
	return reflect.DeepEqual(x, y)
}
