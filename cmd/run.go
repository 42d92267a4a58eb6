package cmd

import (
	"github.com/achilleasa/lumen/renderer"
	"github.com/achilleasa/lumen/renderer/window"
	"github.com/urfave/cli"
)

// Open a window and render the demo scene interactively.
func Run(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	opts := renderer.Options{
		Config: cfg,
	}
	if ctx.Bool("watch") {
		opts.ConfigPath = ctx.String("config")
	}

	r, err := window.NewInteractive(opts)
	if err != nil {
		return err
	}
	defer r.Close()

	if err = r.Render(); err != nil {
		return err
	}

	displayFrameStats(r.Stats())
	return nil
}
