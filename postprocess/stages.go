package postprocess

import (
	"time"

	"github.com/achilleasa/lumen/gfx"
)

// Stage is a step of the post-processing pipeline. It receives the output of
// the previous stage and returns the framebuffer holding its own output, or
// nil if the stage presented to the screen.
type Stage func(p *Pipeline, src *gfx.Framebuffer) (*gfx.Framebuffer, error)

// Names of the recorded passes.
const (
	BrightPassName = "brightPass"
	BlurPassName   = "blurBrightPass"
	CompositeName  = "composite"
	DisplayName    = "display"
)

// A single full-screen quad draw.
type pass struct {
	// The draw target; nil renders to the screen.
	target *gfx.Framebuffer

	// Sampled framebuffers; sources[i] is bound to texture unit i.
	sources []*gfx.Framebuffer

	material *gfx.Material

	// Optional hook for setting per-pass uniforms.
	setup func(m *gfx.Material)
}

// Execute a pass: bind the target, bind the sources, set uniforms, bind the
// material, upload uniforms, draw the quad, then release the sources and the
// target in reverse order.
func (p *Pipeline) runPass(ps pass) {
	var targetGuard *gfx.TargetGuard
	if ps.target != nil {
		if targetGuard = ps.target.BindForDrawing(p.ctx); targetGuard == nil {
			return
		}
		ps.target.Clear(p.ctx, clearColour)
	} else {
		if !p.ctx.BindScreen() {
			return
		}
		p.ctx.Clear(clearColour)
	}

	guards := make([]*gfx.TextureGuard, 0, len(ps.sources))
	for unit, src := range ps.sources {
		guards = append(guards, src.BindTextureForSampling(p.ctx, 0, uint32(unit)))
	}

	if ps.setup != nil {
		ps.setup(ps.material)
	}
	ps.material.Bind()
	ps.material.SendUniforms()
	p.ctx.Draw(p.quad)
	p.drawCalls++

	gfx.ReleaseTextures(guards)
	targetGuard.Release()
}

// Threshold the source into the bright target.
func BrightPassStage() Stage {
	return func(p *Pipeline, src *gfx.Framebuffer) (*gfx.Framebuffer, error) {
		start := time.Now()
		p.brightPass(src)
		p.recordPass(BrightPassName, time.Since(start))
		return p.bright, nil
	}
}

// Downsample and blur the source using the blur ping-pong targets.
func BlurStage() Stage {
	return func(p *Pipeline, src *gfx.Framebuffer) (*gfx.Framebuffer, error) {
		start := time.Now()
		out := p.blurBrightPass(src)
		p.recordPass(BlurPassName, time.Since(start))
		return out, nil
	}
}

// Present the source to the screen unmodified.
func Display() Stage {
	return func(p *Pipeline, src *gfx.Framebuffer) (*gfx.Framebuffer, error) {
		start := time.Now()
		p.runPass(pass{
			sources:  []*gfx.Framebuffer{src},
			material: p.unlit,
		})
		p.recordPass(DisplayName, time.Since(start))
		return nil, nil
	}
}

// Blend the source (the blurred bright pass) over the scene target and
// present the result to the screen.
func Composite() Stage {
	return func(p *Pipeline, src *gfx.Framebuffer) (*gfx.Framebuffer, error) {
		start := time.Now()
		p.runPass(pass{
			sources:  []*gfx.Framebuffer{src, p.scene},
			material: p.bloomM,
		})
		p.recordPass(CompositeName, time.Since(start))
		return nil, nil
	}
}

func (p *Pipeline) brightPass(src *gfx.Framebuffer) {
	p.runPass(pass{
		target:   p.bright,
		sources:  []*gfx.Framebuffer{src},
		material: p.brightM,
	})
}

// Blur src into the ping-pong targets and return the one holding the
// result. The first pass downsamples src into blur[0]; each of the
// following BlurPasses passes reads the previous output and writes the other
// target. With zero passes the result is in blur[0].
func (p *Pipeline) blurBrightPass(src *gfx.Framebuffer) *gfx.Framebuffer {
	setTexel := func(m *gfx.Material) {
		m.SetVec4(gfx.UniformTexelSize, p.blur[0].TexelSize())
	}

	p.runPass(pass{
		target:   p.blur[0],
		sources:  []*gfx.Framebuffer{src},
		material: p.blurM,
		setup:    setTexel,
	})

	out := 0
	for i := 0; i < p.opts.BlurPasses; i++ {
		next := 1 - out
		p.runPass(pass{
			target:   p.blur[next],
			sources:  []*gfx.Framebuffer{p.blur[out]},
			material: p.blurM,
			setup:    setTexel,
		})
		out = next
	}
	return p.blur[out]
}
