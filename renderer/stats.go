package renderer

import (
	"time"

	"github.com/achilleasa/lumen/postprocess"
)

type FrameStats struct {
	// Number of rendered frames.
	Frames uint64

	// Active post-process mode.
	Mode postprocess.Mode

	// Post-processing pass stats.
	PostProcess postprocess.Stats

	// Draw calls and render context violations for the last frame.
	DrawCalls  int
	Violations int

	// Time spent updating and drawing the scene graph.
	SceneTime time.Duration

	// Total render time.
	RenderTime time.Duration
}

// Get the average time per frame.
func (s FrameStats) FrameTime() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.RenderTime / time.Duration(s.Frames)
}
