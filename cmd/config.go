package cmd

import (
	"fmt"
	"os"

	"github.com/achilleasa/lumen/config"
	"github.com/urfave/cli"
)

// Flags shared by all commands that load a session configuration.
var ConfigFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "load settings from a YAML file or http(s) URL",
	},
	cli.IntFlag{
		Name:  "width",
		Usage: "window width",
	},
	cli.IntFlag{
		Name:  "height",
		Usage: "window height",
	},
	cli.StringFlag{
		Name:  "mode, m",
		Usage: "post-process mode (default, bright_pass, blurred_bright_pass, bloom)",
	},
	cli.Float64Flag{
		Name:  "threshold",
		Usage: "bright pass luminance threshold",
	},
	cli.IntFlag{
		Name:  "blur-passes",
		Usage: "number of ping-pong blur passes",
	},
	cli.BoolFlag{
		Name:  "debug",
		Usage: "panic on render context misuse",
	},
}

// Build the session configuration from the defaults, the optional config
// file and any command-line overrides.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Defaults()
	if path := ctx.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
		logger.Infof("loaded config from %q", path)
	}

	if ctx.IsSet("width") {
		cfg.Window.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		cfg.Window.Height = ctx.Int("height")
	}
	if ctx.IsSet("mode") {
		cfg.Mode = ctx.String("mode")
	}
	if ctx.IsSet("threshold") {
		cfg.Bloom.Threshold = float32(ctx.Float64("threshold"))
	}
	if ctx.IsSet("blur-passes") {
		cfg.Bloom.BlurPasses = ctx.Int("blur-passes")
	}
	if ctx.Bool("debug") {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Print the effective configuration as YAML.
func ShowConfig(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(os.Stdout, string(data))
	return err
}
