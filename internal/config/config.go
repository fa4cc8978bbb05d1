package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

const (
	DefaultSocket = "/tmp/mpvsocket"
	DefaultFormat = "[%artist% - ]%title%"
)

type Config struct {
	Socket string `toml:"socket"`
	Format string `toml:"format"`
	Debug  bool   `toml:"debug"`
}

// Dir returns the config directory.
// Resolution order: $MPVC_CONFIG_DIR > $XDG_CONFIG_HOME/mpvc > ~/.config/mpvc
func Dir() string {
	if dir := os.Getenv("MPVC_CONFIG_DIR"); dir != "" {
		return dir
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "mpvc")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "mpvc-config")
	}
	return filepath.Join(home, ".config", "mpvc")
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the TOML file at path, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Config{
		Socket: DefaultSocket,
		Format: DefaultFormat,
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.Socket = envVar("MPVC_SOCKET", cfg.Socket)
	cfg.Format = envVar("MPVC_FORMAT", cfg.Format)
	cfg.Debug = envVar("MPVC_DEBUG", cfg.Debug)

	cfg.validate()

	return cfg, nil
}

func envVar[T ~string | ~bool | ~int](key string, def T) T {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	switch any(def).(type) {
	case string:
		return any(v).(T)
	case bool:
		if b, err := strconv.ParseBool(v); err == nil {
			return any(b).(T)
		}
	case int:
		if i, err := strconv.Atoi(v); err == nil {
			return any(i).(T)
		}
	}
	return def
}

// validate restores defaults for values that cannot be used
func (c *Config) validate() {
	if c.Socket == "" {
		c.Socket = DefaultSocket
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
}
