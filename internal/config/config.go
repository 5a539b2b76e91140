package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kubev2v/taskengine/pkg/scheduler"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TASKENGINE"

type Configuration struct {
	Server    Server         `mapstructure:"server"`
	Pool      Pool           `mapstructure:"pool"`
	Store     Store          `mapstructure:"store"`
	Auth      Authentication `mapstructure:"auth"`
	LogFormat string         `mapstructure:"log-format" default:"console"`
	LogLevel  string         `mapstructure:"log-level" default:"info"`
}

type Server struct {
	ServerMode      string        `mapstructure:"mode" default:"dev"`
	HTTPPort        int           `mapstructure:"http-port" default:"8000"`
	LoadRate        float64       `mapstructure:"load-rate" default:"5"`
	LoadBurst       int           `mapstructure:"load-burst" default:"10"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout" default:"10s"`
}

type Pool struct {
	Workers int    `mapstructure:"workers" default:"4"`
	Order   string `mapstructure:"order" default:"lifo"`
}

type Store struct {
	Path          string `mapstructure:"path" default:":memory:"`
	JournalBuffer int    `mapstructure:"journal-buffer" default:"256"`
}

type Authentication struct {
	Enabled bool   `mapstructure:"enabled" default:"false"`
	Secret  string `mapstructure:"secret"`
}

// NewConfigurationWithDefaults returns a configuration holding only default values.
func NewConfigurationWithDefaults() *Configuration {
	cfg := &Configuration{}
	if err := defaults.Set(cfg); err != nil {
		panic(fmt.Sprintf("config: invalid default tags: %v", err))
	}
	return cfg
}

type flagBinding struct {
	key  string
	flag string
}

var bindings = []flagBinding{
	{"server.mode", "server-mode"},
	{"server.http-port", "http-port"},
	{"server.load-rate", "load-rate"},
	{"server.load-burst", "load-burst"},
	{"server.shutdown-timeout", "shutdown-timeout"},
	{"pool.workers", "workers"},
	{"pool.order", "order"},
	{"store.path", "db-path"},
	{"store.journal-buffer", "journal-buffer"},
	{"auth.enabled", "auth-enabled"},
	{"auth.secret", "auth-secret"},
	{"log-format", "log-format"},
	{"log-level", "log-level"},
}

// RegisterFlags adds one flag per configuration key to fs, defaulting to the values of cfg.
func RegisterFlags(fs *pflag.FlagSet, cfg *Configuration) {
	fs.String("server-mode", cfg.Server.ServerMode, "server mode: prod or dev")
	fs.Int("http-port", cfg.Server.HTTPPort, "HTTP server listen port")
	fs.Float64("load-rate", cfg.Server.LoadRate, "loads accepted per second by the API")
	fs.Int("load-burst", cfg.Server.LoadBurst, "burst of loads accepted by the API")
	fs.Duration("shutdown-timeout", cfg.Server.ShutdownTimeout, "grace period of the HTTP server on shutdown")
	fs.Int("workers", cfg.Pool.Workers, "number of pool workers")
	fs.String("order", cfg.Pool.Order, "queue order: lifo or fifo")
	fs.String("db-path", cfg.Store.Path, "path of the DuckDB history database, :memory: for none")
	fs.Int("journal-buffer", cfg.Store.JournalBuffer, "events buffered by the journal, further events are dropped")
	fs.Bool("auth-enabled", cfg.Auth.Enabled, "require a bearer token on the API")
	fs.String("auth-secret", cfg.Auth.Secret, "HS256 secret used to verify tokens")
	fs.String("log-format", cfg.LogFormat, "log format: console or json")
	fs.String("log-level", cfg.LogLevel, "log level: debug, info, warn or error")
}

// Load layers the configuration file at path (if any), TASKENGINE_ environment variables and
// the flags of fs over the defaults. Flags not registered in fs are skipped.
func Load(path string, fs *pflag.FlagSet) (*Configuration, error) {
	cfg := NewConfigurationWithDefaults()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
		}
	}

	if fs != nil {
		for _, b := range bindings {
			f := fs.Lookup(b.flag)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(b.key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", b.flag, err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	return cfg, nil
}

func (c *Configuration) Validate() error {
	var errs []error

	if c.Server.ServerMode != "prod" && c.Server.ServerMode != "dev" {
		errs = append(errs, fmt.Errorf("server mode must be prod or dev, got %q", c.Server.ServerMode))
	}
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("http port out of range: %d", c.Server.HTTPPort))
	}
	if c.Server.LoadRate <= 0 {
		errs = append(errs, fmt.Errorf("load rate must be positive, got %v", c.Server.LoadRate))
	}
	if c.Server.LoadBurst < 1 {
		errs = append(errs, fmt.Errorf("load burst must be at least 1, got %d", c.Server.LoadBurst))
	}
	if c.Pool.Workers < 0 {
		errs = append(errs, fmt.Errorf("worker count must not be negative, got %d", c.Pool.Workers))
	}
	if _, err := scheduler.ParseOrder(c.Pool.Order); err != nil {
		errs = append(errs, err)
	}
	if c.Store.JournalBuffer < 0 {
		errs = append(errs, fmt.Errorf("journal buffer must not be negative, got %d", c.Store.JournalBuffer))
	}
	if c.Auth.Enabled && c.Auth.Secret == "" {
		errs = append(errs, errors.New("auth is enabled but no secret is set"))
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log format must be console or json, got %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

// DebugMap returns the configuration as a map safe to log. The auth secret is hidden.
func (c *Configuration) DebugMap() map[string]any {
	secret := ""
	if c.Auth.Secret != "" {
		secret = "(hidden)"
	}

	return map[string]any{
		"server": map[string]any{
			"mode":             c.Server.ServerMode,
			"http-port":        c.Server.HTTPPort,
			"load-rate":        c.Server.LoadRate,
			"load-burst":       c.Server.LoadBurst,
			"shutdown-timeout": c.Server.ShutdownTimeout.String(),
		},
		"pool": map[string]any{
			"workers": c.Pool.Workers,
			"order":   c.Pool.Order,
		},
		"store": map[string]any{
			"path":           c.Store.Path,
			"journal-buffer": c.Store.JournalBuffer,
		},
		"auth": map[string]any{
			"enabled": c.Auth.Enabled,
			"secret":  secret,
		},
		"log-format": c.LogFormat,
		"log-level":  c.LogLevel,
	}
}
