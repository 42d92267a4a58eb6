package renderer

import (
	"github.com/achilleasa/lumen/gfx"
	"github.com/pkg/errors"
)

// A renderer that drives the demo scene against a recording device. It
// exercises the full frame sequence without a window or a GPU and is used
// for benchmarking the pass sequencing.
type headlessRenderer struct {
	driver   *Driver
	recorder *gfx.Recorder
	opts     Options
}

// Create a headless renderer for opts.Frames frames.
func NewHeadless(opts Options) (Renderer, error) {
	if opts.Frames == 0 {
		return nil, ErrNoFrames
	}
	if opts.FrameDelta <= 0 {
		opts.FrameDelta = 1.0 / 60.0
	}

	rec := gfx.NewRecorder()
	driver, err := NewDriver(rec, opts.Config)
	if err != nil {
		return nil, err
	}

	return &headlessRenderer{
		driver:   driver,
		recorder: rec,
		opts:     opts,
	}, nil
}

func (r *headlessRenderer) Render() error {
	r.driver.ResetStats()
	for frame := uint32(0); frame < r.opts.Frames; frame++ {
		// Only the last frame's calls are kept for inspection.
		r.recorder.Reset()
		if err := r.driver.Frame(r.opts.FrameDelta); err != nil {
			return errors.Wrapf(err, "renderer: frame %d", frame)
		}
	}
	return nil
}

func (r *headlessRenderer) Close() {
	r.driver.Close()
}

func (r *headlessRenderer) Stats() FrameStats {
	return r.driver.Stats()
}
