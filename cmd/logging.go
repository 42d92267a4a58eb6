package cmd

import (
	"strings"

	"github.com/achilleasa/lumen/log"
	"github.com/urfave/cli"
)

var logger = log.New("lumen")

// Apply the global verbosity flags. --log-level accepts either a single
// level or comma separated module=level pairs, e.g. "info,postprocess=debug".
func setupLogging(ctx *cli.Context) error {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}

	levels := ctx.GlobalString("log-level")
	if levels == "" {
		return nil
	}

	for _, part := range strings.Split(levels, ",") {
		module, name, scoped := strings.Cut(part, "=")
		if !scoped {
			name = module
		}
		lvl, err := log.ParseLevel(name)
		if err != nil {
			return err
		}
		if scoped {
			log.SetModuleLevel(strings.TrimSpace(module), lvl)
		} else {
			log.SetLevel(lvl)
		}
	}
	return nil
}
