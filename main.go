package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/lumen/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "lumen"
	app.Usage = "render a scene graph with bloom post-processing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "log level, optionally per module (e.g. info,postprocess=debug)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "render the demo scene in an interactive window",
			Description: `
Open a window and render the demo scene. Keys 1-4 select the post-process
mode (default, bright pass, blurred bright pass, bloom), W/A/S/D/Q/E move the
camera, dragging with the left mouse button rotates it, P pauses the light,
+/- adjust the bloom threshold and [/] adjust the number of blur passes.`,
			Flags: append([]cli.Flag{
				cli.BoolFlag{
					Name:  "watch, w",
					Usage: "reload tuning values when the config file changes",
				},
			}, cmd.ConfigFlags...),
			Action: cmd.Run,
		},
		{
			Name:  "bench",
			Usage: "render frames without a window and print pass statistics",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "frames, n",
					Value: 100,
					Usage: "number of frames to render",
				},
				cli.Float64Flag{
					Name:  "delta",
					Value: 1.0 / 60.0,
					Usage: "simulated frame time in seconds",
				},
			}, cmd.ConfigFlags...),
			Action: cmd.Bench,
		},
		{
			Name:   "config",
			Usage:  "print the effective configuration as YAML",
			Flags:  cmd.ConfigFlags,
			Action: cmd.ShowConfig,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
