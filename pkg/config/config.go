// Package config loads the scribe configuration from an optional TOML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/scribe/pkg/llm"
)

// ErrConfigurationMissing is returned when the API credential is absent.
// No generation may start without it.
var ErrConfigurationMissing = errors.New("OLLAMA_API_KEY is not set")

const (
	EnvAPIKey = "OLLAMA_API_KEY"
	EnvHost   = "OLLAMA_HOST"
	EnvListen = "SCRIBE_LISTEN"

	DefaultHost    = "https://ollama.com"
	DefaultListen  = ":8080"
	DefaultTimeout = 5 * time.Minute
)

// Config is the scribe configuration. It is built once per process and
// passed explicitly to the components that need it.
type Config struct {
	// Host is the base URL of the Ollama endpoint.
	Host string `toml:"host"`

	// APIKey is sent as a bearer token. Only read from the environment.
	APIKey string `toml:"-"`

	// Timeout bounds a whole generation, stream included. Zero disables it.
	Timeout Duration `toml:"timeout"`

	// Listen is the address of the HTTP server.
	Listen string `toml:"listen"`

	Models  Models       `toml:"models"`
	Image   Image        `toml:"image"`
	Options *llm.Options `toml:"options"`
}

// Image holds the size hints of image generation. Zero fields are left to
// the model.
type Image struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
	Steps  int `toml:"steps"`
}

// Models lists the models offered per generator. The first entry of each
// list is the default.
type Models struct {
	Article []string `toml:"article"`
	Coding  []string `toml:"coding"`
	Image   []string `toml:"image"`
}

// Duration is a time.Duration that decodes from TOML strings like "90s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Host:    DefaultHost,
		Timeout: Duration{DefaultTimeout},
		Listen:  DefaultListen,
		Models: Models{
			Article: []string{"gpt-oss:120b", "gpt-oss:20b"},
			Coding:  []string{"qwen3-coder:480b", "gpt-oss:120b", "deepseek-v3.1:671b"},
			Image:   []string{"x/z-image-turbo", "x/flux2-klein"},
		},
	}
}

// Load reads path (if non-empty) over the defaults and applies environment
// overrides. It does not check the credential; call Validate for that.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("could not read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/scribe/config.toml, or "" when that
// file does not exist.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "scribe", "config.toml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func (c *Config) applyEnv() {
	c.APIKey = os.Getenv(EnvAPIKey)
	if host := os.Getenv(EnvHost); host != "" {
		c.Host = host
	}
	if listen := os.Getenv(EnvListen); listen != "" {
		c.Listen = listen
	}
}

// Validate checks the preconditions of every generation.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrConfigurationMissing
	}
	if c.Host == "" {
		return errors.New("host must not be empty")
	}
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.Image.Width < 0 || c.Image.Height < 0 || c.Image.Steps < 0 {
		return errors.New("image width, height and steps must not be negative")
	}
	return nil
}

// ResolveModel returns name when it is offered in choices, or the first
// choice when name is empty.
func ResolveModel(choices []string, name string) (string, error) {
	if name == "" {
		if len(choices) == 0 {
			return "", errors.New("no models configured")
		}
		return choices[0], nil
	}
	if !slices.Contains(choices, name) {
		return "", fmt.Errorf("model %q is not offered (choices: %v)", name, choices)
	}
	return name, nil
}
