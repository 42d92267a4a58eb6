package gfx

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Framebuffer is an offscreen render target with one or more sampleable
// color attachments and an optional depth attachment.
//
// The logical size may be fractional (e.g. 1080/16); the device allocation
// is rounded up to whole pixels while the texel size reported to shaders is
// derived from the logical size.
type Framebuffer struct {
	Name string

	id     FramebufferID
	width  float32
	height float32
	pixelW int32
	pixelH int32
	colors []Texture
	depth  bool
}

// Create a new, unallocated framebuffer.
func NewFramebuffer(name string) *Framebuffer {
	return &Framebuffer{Name: name}
}

// Allocate device storage for this framebuffer. Any previous allocation is
// released first. On failure the framebuffer is left empty and the error is
// both logged and returned; the caller may continue running without it.
func (fb *Framebuffer) Create(ctx *Context, width, height float32, colorAttachments int, depth bool) error {
	fb.Destroy(ctx)

	if width <= 0 || height <= 0 || colorAttachments < 1 {
		err := errors.Wrapf(ErrInvalidDimensions, "framebuffer %q: %gx%g with %d attachments", fb.Name, width, height, colorAttachments)
		logger.Error(err.Error())
		return err
	}

	pixelW := int32(math32.Ceil(width))
	pixelH := int32(math32.Ceil(height))
	id, textures, err := ctx.Device.CreateFramebuffer(pixelW, pixelH, colorAttachments, depth)
	if err != nil {
		err = errors.Wrapf(err, "framebuffer %q", fb.Name)
		logger.Error(err.Error())
		return err
	}

	fb.id = id
	fb.width, fb.height = width, height
	fb.pixelW, fb.pixelH = pixelW, pixelH
	fb.depth = depth
	fb.colors = make([]Texture, len(textures))
	for i, tex := range textures {
		fb.colors[i] = Texture{ID: tex, Width: pixelW, Height: pixelH}
	}

	logger.Debugf("created framebuffer %q (%dx%d, %d attachments, depth: %t)", fb.Name, pixelW, pixelH, len(textures), depth)
	return nil
}

// Release device storage. Destroying an empty framebuffer is a no-op.
func (fb *Framebuffer) Destroy(ctx *Context) {
	if fb.id == 0 {
		return
	}
	if !ctx.assert(ctx.target != fb, "destroy of framebuffer %q while bound for drawing", fb.Name) {
		return
	}
	textures := make([]TextureID, len(fb.colors))
	for i, tex := range fb.colors {
		textures[i] = tex.ID
	}
	ctx.Device.DeleteFramebuffer(fb.id, textures)

	*fb = Framebuffer{Name: fb.Name}
}

// Returns true if the framebuffer has been successfully allocated.
func (fb *Framebuffer) IsValid() bool {
	return fb.id != 0
}

// Get the device handle.
func (fb *Framebuffer) ID() FramebufferID {
	return fb.id
}

// Get the logical framebuffer size.
func (fb *Framebuffer) Size() (float32, float32) {
	return fb.width, fb.height
}

// Get the allocated size in pixels.
func (fb *Framebuffer) PixelSize() (int32, int32) {
	return fb.pixelW, fb.pixelH
}

// Returns true if the framebuffer has a depth attachment.
func (fb *Framebuffer) HasDepth() bool {
	return fb.depth
}

// Get a color attachment.
func (fb *Framebuffer) Texture(attachment int) (Texture, bool) {
	if attachment < 0 || attachment >= len(fb.colors) {
		return Texture{}, false
	}
	return fb.colors[attachment], true
}

// Get the size of a single texel in UV space packed as (1/w, 1/h, 0, 0).
func (fb *Framebuffer) TexelSize() mgl32.Vec4 {
	if fb.width <= 0 || fb.height <= 0 {
		return mgl32.Vec4{}
	}
	return mgl32.Vec4{1.0 / fb.width, 1.0 / fb.height, 0, 0}
}

// Bind this framebuffer as the draw target. The returned guard must be
// released before any other framebuffer is bound. A nil guard is returned
// if the framebuffer cannot be bound; releasing it is a no-op.
func (fb *Framebuffer) BindForDrawing(ctx *Context) *TargetGuard {
	if !ctx.assert(fb.id != 0, "bind of unallocated framebuffer %q", fb.Name) {
		return nil
	}
	if !ctx.bindTarget(fb) {
		return nil
	}
	return &TargetGuard{ctx: ctx, fb: fb}
}

// Clear this framebuffer. It must be the active draw target.
func (fb *Framebuffer) Clear(ctx *Context, colour mgl32.Vec4) {
	if !ctx.assert(ctx.target == fb, "clear of %q while %q is bound", fb.Name, ctx.targetName()) {
		return
	}
	ctx.Clear(colour)
}

// Bind a color attachment to a texture unit for sampling. Sampling the
// framebuffer that is currently bound for drawing is rejected.
func (fb *Framebuffer) BindTextureForSampling(ctx *Context, attachment int, unit uint32) *TextureGuard {
	tex, ok := fb.Texture(attachment)
	if !ctx.assert(ok, "framebuffer %q has no color attachment %d", fb.Name, attachment) {
		return nil
	}
	if !ctx.assert(ctx.target != fb, "framebuffer %q sampled while bound for drawing", fb.Name) {
		return nil
	}
	if !ctx.bindTexture(unit, tex.ID, fb.Name) {
		return nil
	}
	return &TextureGuard{ctx: ctx, unit: unit, tex: tex.ID}
}
