package postprocess

import "time"

type Options struct {
	// Dimensions of the full resolution targets.
	Width  float32
	Height float32

	// Luminance threshold for the bright pass.
	Threshold float32

	// Bloom contribution scale used by the composite pass.
	Intensity float32

	// Number of ping-pong blur passes.
	BlurPasses int

	// The blur targets are allocated at Width/Downsample x Height/Downsample.
	Downsample float32
}

type PassStat struct {
	// The pass name.
	Name string

	// Number of times the pass ran since the last reset.
	Invocations int

	// Total time spent submitting the pass.
	Time time.Duration
}

type Stats struct {
	// Individual pass stats in execution order.
	Passes []PassStat

	// Number of draw calls issued by the pipeline.
	DrawCalls int

	// Total time spent in Render.
	RenderTime time.Duration
}

// Get the stats for a named pass.
func (s Stats) Pass(name string) (PassStat, bool) {
	for _, ps := range s.Passes {
		if ps.Name == name {
			return ps, true
		}
	}
	return PassStat{Name: name}, false
}
