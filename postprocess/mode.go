package postprocess

import (
	"strings"

	"github.com/pkg/errors"
)

// Mode selects the sequence of passes executed by the pipeline.
type Mode uint8

const (
	// Display the scene target as-is.
	Default Mode = iota

	// Display the thresholded scene.
	BrightPass

	// Display the thresholded and blurred scene.
	BlurredBrightPass

	// Composite the blurred bright pass over the scene.
	Bloom

	numModes
)

var modeNames = [numModes]string{
	"default",
	"bright_pass",
	"blurred_bright_pass",
	"bloom",
}

func (m Mode) String() string {
	if m >= numModes {
		return "unknown"
	}
	return modeNames[m]
}

// Get the list of supported modes.
func Modes() []Mode {
	return []Mode{Default, BrightPass, BlurredBrightPass, Bloom}
}

// Parse a mode name. Names are matched case-insensitively and dashes may be
// used in place of underscores.
func ParseMode(name string) (Mode, error) {
	name = strings.Replace(strings.ToLower(strings.TrimSpace(name)), "-", "_", -1)
	for m, modeName := range modeNames {
		if name == modeName {
			return Mode(m), nil
		}
	}
	return Default, errors.Errorf("postprocess: unknown mode %q", name)
}
