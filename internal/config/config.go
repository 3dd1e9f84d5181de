// Package config provides configuration for go-bbanim commands.
//
// Values come from defaults, then an optional YAML file named by
// BBANIM_CONFIG, then individual environment variables. Command-line flags
// are applied on top by each command.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultPort      = 8080
	DefaultFPS       = 30
	DefaultLogLevel  = "info"
	DefaultServerURL = "http://localhost:8080"
)

// Environment variable names.
const (
	EnvConfig     = "BBANIM_CONFIG"
	EnvPort       = "BBANIM_PORT"
	EnvFPS        = "BBANIM_FPS"
	EnvAnimations = "BBANIM_ANIMATIONS"
	EnvBones      = "BBANIM_BONES"
	EnvLogLevel   = "BBANIM_LOG_LEVEL"
	EnvWorkers    = "BBANIM_WORKERS"
	EnvServer     = "BBANIM_SERVER"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config is the server configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port int `yaml:"port"`

	// FPS is the rate at which sessions are ticked.
	FPS int `yaml:"fps"`

	// Animations is an animation file or a directory of them.
	// Empty means the bundled samples.
	Animations string `yaml:"animations"`

	// Bones is an optional YAML file with bone name overrides.
	Bones string `yaml:"bones"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Workers is the size of the tick worker pool.
	Workers int `yaml:"workers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:     DefaultPort,
		FPS:      DefaultFPS,
		LogLevel: DefaultLogLevel,
		Workers:  max(runtime.NumCPU()-1, 1),
	}
}

// Load builds the configuration from defaults, the optional config file and
// the environment.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(EnvConfig); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.mergeEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadFile reads a YAML config file over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() error {
	// PORT is honoured for container platforms.
	for _, key := range []string{"PORT", EnvPort} {
		if v := os.Getenv(key); v != "" {
			port, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
			}
			c.Port = port
		}
	}
	if v := os.Getenv(EnvFPS); v != "" {
		fps, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, EnvFPS, v)
		}
		c.FPS = fps
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, EnvWorkers, v)
		}
		c.Workers = n
	}
	if v := os.Getenv(EnvAnimations); v != "" {
		c.Animations = v
	}
	if v := os.Getenv(EnvBones); v != "" {
		c.Bones = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalid, c.Port)
	}
	if c.FPS <= 0 || c.FPS > 1000 {
		return fmt.Errorf("%w: fps %d", ErrInvalid, c.FPS)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Workers)
	}
	return nil
}

// FrameInterval returns the tick period for the configured FPS.
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ServerURL returns the server base URL from BBANIM_SERVER.
// Falls back to the provided default if not set.
func ServerURL(defaultURL string) string {
	if u := os.Getenv(EnvServer); u != "" {
		return u
	}
	return defaultURL
}
