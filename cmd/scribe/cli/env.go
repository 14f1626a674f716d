// Package cli holds what the scribe subcommands share: global flags, the
// process environment built from them and the presentation of a running
// generation.
package cli

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/scribe/pkg/config"
	"github.com/papercomputeco/scribe/pkg/logger"
	"github.com/papercomputeco/scribe/pkg/metrics"
	"github.com/papercomputeco/scribe/pkg/ollama"
	"github.com/papercomputeco/scribe/pkg/studio"
)

// Flags are the persistent flags of the root command.
type Flags struct {
	ConfigPath string
	Debug      bool
	Version    string
}

// Register adds the flags to cmd and its children.
func (f *Flags) Register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&f.ConfigPath, "config", "c", "", "Path to config file (default: $XDG_CONFIG_HOME/scribe/config.toml)")
	cmd.PersistentFlags().BoolVar(&f.Debug, "debug", false, "Enable debug logging")
}

// Env is everything a subcommand needs to run generations.
type Env struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Studio   *studio.Studio
}

// Load reads and validates the configuration once and builds the Env.
// Logs are written to logOut.
func (f *Flags) Load(logOut io.Writer) (*Env, error) {
	path := f.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(logOut, f.Debug)

	client, err := ollama.New(ollama.Config{
		Host:    cfg.Host,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout.Duration,
		Options: cfg.Options,
		Image: ollama.ImageSize{
			Width:  cfg.Image.Width,
			Height: cfg.Image.Height,
			Steps:  cfg.Image.Steps,
		},
	}, log)
	if err != nil {
		return nil, fmt.Errorf("could not create ollama client: %w", err)
	}

	reg := prometheus.NewRegistry()

	log.Debug("configuration loaded",
		zap.String("path", path),
		zap.String("host", cfg.Host),
		zap.Duration("timeout", cfg.Timeout.Duration),
	)

	return &Env{
		Config:   cfg,
		Logger:   log,
		Registry: reg,
		Studio:   studio.New(client, cfg.Models, log, studio.WithMetrics(metrics.New(reg))),
	}, nil
}
