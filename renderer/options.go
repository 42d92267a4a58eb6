package renderer

import "github.com/achilleasa/lumen/config"

type Options struct {
	// Session configuration.
	Config *config.Config

	// If set, the interactive renderer watches this file and applies tuning
	// changes while running.
	ConfigPath string

	// Number of frames rendered by the headless renderer.
	Frames uint32

	// Fixed frame delta (seconds) used by the headless renderer.
	FrameDelta float32
}
