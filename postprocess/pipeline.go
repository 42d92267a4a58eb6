// Package postprocess implements the offscreen passes that turn the rendered
// scene into the final frame: bright-pass extraction, ping-pong blurring and
// bloom compositing.
package postprocess

import (
	"time"

	"github.com/achilleasa/lumen/asset"
	"github.com/achilleasa/lumen/gfx"
	"github.com/achilleasa/lumen/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

var clearColour = mgl32.Vec4{0, 0, 0, 1}

// Names of the render targets owned by the pipeline.
const (
	SceneTargetName  = "scene"
	BrightTargetName = "bright"
	BlurTargetName0  = "blur0"
	BlurTargetName1  = "blur1"
)

// Pipeline owns the intermediate render targets and runs the passes for the
// selected mode.
type Pipeline struct {
	logger log.Logger
	ctx    *gfx.Context
	opts   Options

	// The scene target (full res, with depth), the bright pass target
	// (full res) and the downsampled blur ping-pong targets.
	scene  *gfx.Framebuffer
	bright *gfx.Framebuffer
	blur   [2]*gfx.Framebuffer

	quad     gfx.MeshID
	unlit    *gfx.Material
	brightM  *gfx.Material
	blurM    *gfx.Material
	bloomM   *gfx.Material
	stages   [numModes][]Stage
	stats    []PassStat
	statsIdx map[string]int

	drawCalls  int
	renderTime time.Duration
}

// Create a new pipeline. The pipeline materials and the quad mesh are looked
// up from the registry (see RegisterAssets) and the render targets are
// allocated for the dimensions in opts.
func New(ctx *gfx.Context, reg *asset.Registry, opts Options) (*Pipeline, error) {
	p := &Pipeline{
		logger:   log.New("postprocess"),
		ctx:      ctx,
		scene:    gfx.NewFramebuffer(SceneTargetName),
		bright:   gfx.NewFramebuffer(BrightTargetName),
		blur:     [2]*gfx.Framebuffer{gfx.NewFramebuffer(BlurTargetName0), gfx.NewFramebuffer(BlurTargetName1)},
		statsIdx: make(map[string]int),
	}

	var err error
	if p.quad, err = reg.Mesh(QuadMesh); err != nil {
		return nil, err
	}
	for _, lookup := range []struct {
		name string
		dst  **gfx.Material
	}{
		{UnlitMaterial, &p.unlit},
		{BrightMaterial, &p.brightM},
		{BlurMaterial, &p.blurM},
		{BloomMaterial, &p.bloomM},
	} {
		if *lookup.dst, err = reg.Material(lookup.name); err != nil {
			return nil, err
		}
	}

	p.stages = [numModes][]Stage{
		Default:           {Display()},
		BrightPass:        {BrightPassStage(), Display()},
		BlurredBrightPass: {BrightPassStage(), BlurStage(), Display()},
		Bloom:             {BrightPassStage(), BlurStage(), Composite()},
	}

	if err = p.Configure(opts); err != nil {
		return nil, err
	}
	return p, nil
}

// Apply a new set of options. Render targets are re-created only when the
// dimensions or the downsample factor change.
func (p *Pipeline) Configure(opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 || opts.Downsample < 1 || opts.BlurPasses < 0 {
		return errors.Wrapf(ErrInvalidOptions, "%+v", opts)
	}

	resize := !p.targetsReady() ||
		opts.Width != p.opts.Width ||
		opts.Height != p.opts.Height ||
		opts.Downsample != p.opts.Downsample

	p.opts = opts
	p.SetThreshold(opts.Threshold)
	p.SetIntensity(opts.Intensity)

	if !resize {
		return nil
	}
	return p.allocTargets()
}

// Allocate all four targets. If any of them fails, every target is released
// so that the next Configure or Resize call retries from scratch.
func (p *Pipeline) allocTargets() error {
	w, h := p.opts.Width, p.opts.Height
	bw, bh := w/p.opts.Downsample, h/p.opts.Downsample

	err := p.scene.Create(p.ctx, w, h, 1, true)
	if err == nil {
		err = p.bright.Create(p.ctx, w, h, 1, false)
	}
	for i := 0; err == nil && i < len(p.blur); i++ {
		err = p.blur[i].Create(p.ctx, bw, bh, 1, false)
	}
	if err != nil {
		p.Close()
		return err
	}

	p.logger.Infof("allocated render targets: scene/bright %gx%g, blur %gx%g", w, h, bw, bh)
	return nil
}

// Re-create the render targets for new screen dimensions.
func (p *Pipeline) Resize(width, height float32) error {
	opts := p.opts
	opts.Width, opts.Height = width, height
	return p.Configure(opts)
}

// Get the active options.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Set the bright pass luminance threshold. Values are clamped to [0, 1].
func (p *Pipeline) SetThreshold(threshold float32) {
	p.opts.Threshold = mgl32.Clamp(threshold, 0, 1)
	p.brightM.SetFloat(gfx.UniformBloomThreshold, p.opts.Threshold)
}

// Set the scale applied to the blurred bright pass when compositing.
func (p *Pipeline) SetIntensity(intensity float32) {
	if intensity < 0 {
		intensity = 0
	}
	p.opts.Intensity = intensity
	p.bloomM.SetFloat(gfx.UniformBloomIntensity, intensity)
}

// Set the number of ping-pong blur passes. Negative values are treated as 0.
func (p *Pipeline) SetBlurPasses(passes int) {
	if passes < 0 {
		passes = 0
	}
	p.opts.BlurPasses = passes
}

// Get the target that the scene should be rendered into before calling Render.
func (p *Pipeline) SceneTarget() *gfx.Framebuffer {
	return p.scene
}

// Get the bright pass target.
func (p *Pipeline) BrightTarget() *gfx.Framebuffer {
	return p.bright
}

// Get the two blur ping-pong targets.
func (p *Pipeline) BlurTargets() [2]*gfx.Framebuffer {
	return p.blur
}

// Run the passes for a mode and present the result on the default
// framebuffer. The scene target must already contain the rendered scene.
// When Render returns, the default framebuffer is the active draw target.
func (p *Pipeline) Render(mode Mode) error {
	if mode >= numModes {
		return errors.Errorf("postprocess: unknown mode %d", mode)
	}
	if !p.targetsReady() {
		return ErrTargetsNotReady
	}

	start := time.Now()
	var err error
	src := p.scene
	for _, stage := range p.stages[mode] {
		if src, err = stage(p, src); err != nil {
			return err
		}
	}
	p.renderTime += time.Since(start)
	return nil
}

// Get the pass statistics accumulated since the last call to ResetStats.
func (p *Pipeline) Stats() Stats {
	passes := make([]PassStat, len(p.stats))
	copy(passes, p.stats)
	return Stats{
		Passes:     passes,
		DrawCalls:  p.drawCalls,
		RenderTime: p.renderTime,
	}
}

// Reset the accumulated statistics.
func (p *Pipeline) ResetStats() {
	p.stats = p.stats[:0]
	p.statsIdx = make(map[string]int)
	p.drawCalls = 0
	p.renderTime = 0
}

// Release the render targets. Materials and meshes are owned by the registry.
// Returns true if every render target is allocated.
func (p *Pipeline) Ready() bool {
	return p.targetsReady()
}

func (p *Pipeline) targetsReady() bool {
	return p.scene.IsValid() && p.bright.IsValid() && p.blur[0].IsValid() && p.blur[1].IsValid()
}

func (p *Pipeline) Close() {
	p.scene.Destroy(p.ctx)
	p.bright.Destroy(p.ctx)
	for _, fb := range p.blur {
		fb.Destroy(p.ctx)
	}
}

func (p *Pipeline) recordPass(name string, d time.Duration) {
	idx, exists := p.statsIdx[name]
	if !exists {
		idx = len(p.stats)
		p.statsIdx[name] = idx
		p.stats = append(p.stats, PassStat{Name: name})
	}
	p.stats[idx].Invocations++
	p.stats[idx].Time += d
}
