// Package config loads forum settings with Viper: built-in defaults, an
// optional YAML file, FORUM_* environment variables and bound CLI flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "FORUM"

type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Store     StoreConfig     `mapstructure:"store" yaml:"store"`
	Templates TemplatesConfig `mapstructure:"templates" yaml:"templates"`
	Static    StaticConfig    `mapstructure:"static" yaml:"static"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// StoreConfig selects the post backend. URI is a Mongo URI, a Postgres DSN,
// or an SQLite file path depending on Driver.
type StoreConfig struct {
	Driver     string `mapstructure:"driver" yaml:"driver"`
	URI        string `mapstructure:"uri" yaml:"uri"`
	Database   string `mapstructure:"database" yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
	// ConnectTimeout bounds the first connection attempt.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
}

type TemplatesConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
	Ext string `mapstructure:"ext" yaml:"ext"`
}

type StaticConfig struct {
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
	Root   string `mapstructure:"root" yaml:"root"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults registers every key so env overrides work without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("store.driver", "mongo")
	v.SetDefault("store.uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("store.database", "forum")
	v.SetDefault("store.collection", "posts")
	v.SetDefault("store.connect_timeout", 10*time.Second)
	v.SetDefault("templates.dir", "./templates")
	v.SetDefault("templates.ext", ".maru")
	v.SetDefault("static.prefix", "/public/")
	v.SetDefault("static.root", ".")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// BindEnv enables FORUM_SECTION_KEY overrides.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "mongo", "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown store driver %q (want mongo, postgres, sqlite or memory)", c.Store.Driver)
	}
	if c.Store.Driver != "memory" && c.Store.URI == "" {
		return fmt.Errorf("store.uri is required for driver %q", c.Store.Driver)
	}
	if c.Store.ConnectTimeout <= 0 {
		return fmt.Errorf("store.connect_timeout must be positive")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if !strings.HasPrefix(c.Static.Prefix, "/") || !strings.HasSuffix(c.Static.Prefix, "/") {
		return fmt.Errorf("static.prefix %q must start and end with /", c.Static.Prefix)
	}
	if c.Templates.Dir == "" {
		return fmt.Errorf("templates.dir must not be empty")
	}
	return nil
}
