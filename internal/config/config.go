// Package config loads the flowcanvas configuration file.
//
// Configuration is TOML, read from an explicit --config path or from
// $XDG_CONFIG_HOME/flowcanvas/config.toml. Every field has a default, so
// running without a file works.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/pschleger/workflow-canvas/pkg/errors"
)

// Config is the full flowcanvas configuration.
type Config struct {
	Server  Server  `toml:"server"`
	Store   Store   `toml:"store"`
	History History `toml:"history"`
	Layout  Layout  `toml:"layout"`
}

// Server configures the HTTP API.
type Server struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout duration `toml:"shutdown_timeout"`
}

// Store selects and configures the persistence backend.
type Store struct {
	// Backend is one of "memory", "file", "mongo", "redis".
	Backend string `toml:"backend"`

	File  FileStore  `toml:"file"`
	Mongo MongoStore `toml:"mongo"`
	Redis RedisStore `toml:"redis"`
}

// FileStore configures the file backend.
type FileStore struct {
	// Dir is the storage directory. Defaults to
	// $XDG_DATA_HOME/flowcanvas/workflows.
	Dir string `toml:"dir"`
}

// MongoStore configures the MongoDB backend.
type MongoStore struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// RedisStore configures the Redis backend.
type RedisStore struct {
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	TTL      duration `toml:"ttl"`
}

// History configures undo/redo depth.
type History struct {
	// Limit bounds each workflow's undo stack.
	Limit int `toml:"limit"`
}

// Layout holds default auto-layout geometry.
type Layout struct {
	NodeWidth      float64 `toml:"node_width"`
	NodeHeight     float64 `toml:"node_height"`
	NodeSeparation float64 `toml:"node_separation"`
	RankSeparation float64 `toml:"rank_separation"`
	Direction      string  `toml:"direction"`
}

// duration wraps time.Duration so TOML accepts strings like "5s".
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Duration converts to the standard type.
func (d duration) Duration() time.Duration { return time.Duration(d) }

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            "127.0.0.1:8420",
			ShutdownTimeout: duration(10 * time.Second),
		},
		Store: Store{
			Backend: "memory",
		},
		History: History{
			Limit: 50,
		},
	}
}

// Load reads the configuration from path. An empty path falls back to the
// default location; a missing file at the default location yields
// Default(), while a missing explicit path is an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultPath()
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "loading config %q", path)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case "memory", "file", "mongo", "redis":
	default:
		return errors.New(errors.ErrCodeInvalidConfiguration, "unknown store backend %q", c.Store.Backend)
	}
	switch c.Layout.Direction {
	case "", "TB", "LR":
	default:
		return errors.New(errors.ErrCodeInvalidConfiguration, "unknown layout direction %q", c.Layout.Direction)
	}
	return nil
}

// defaultPath returns the standard config file location.
func defaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "flowcanvas", "config.toml")
}

// DataDir returns the directory for file-backend storage when none is
// configured.
func DataDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "flowcanvas-data"
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "flowcanvas", "workflows")
}
