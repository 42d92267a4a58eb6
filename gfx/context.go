package gfx

import (
	"fmt"

	"github.com/achilleasa/lumen/log"
	"github.com/go-gl/mathgl/mgl32"
)

var logger = log.New("gfx")

// Context tracks the device state that is shared by all passes: the active
// draw target, the active material and the texture bound to each unit.
//
// When Debug is set, misuse of the context panics with an *AssertionError.
// Otherwise the violation is logged and the offending operation is skipped.
type Context struct {
	Device Device
	Debug  bool

	screenW int32
	screenH int32

	target   *Framebuffer
	material *Material
	units    [MaxTextureUnits]TextureID

	drawCalls  int
	violations int
}

// Create a new render context for a device whose default framebuffer has
// the given dimensions.
func NewContext(dev Device, screenW, screenH int32) *Context {
	return &Context{
		Device:  dev,
		screenW: screenW,
		screenH: screenH,
	}
}

// Update the dimensions of the default framebuffer.
func (c *Context) SetScreenSize(w, h int32) {
	c.screenW, c.screenH = w, h
}

// Get the dimensions of the default framebuffer.
func (c *Context) ScreenSize() (int32, int32) {
	return c.screenW, c.screenH
}

// Get the framebuffer currently bound for drawing. A nil value indicates
// that the default framebuffer is bound.
func (c *Context) DrawTarget() *Framebuffer {
	return c.target
}

// Get the active material.
func (c *Context) ActiveMaterial() *Material {
	return c.material
}

// Get the texture bound to a texture unit.
func (c *Context) BoundTexture(unit uint32) TextureID {
	if unit >= MaxTextureUnits {
		return 0
	}
	return c.units[unit]
}

// Get the number of draw calls issued since the last call to ResetCounters.
func (c *Context) DrawCalls() int {
	return c.drawCalls
}

// Get the number of assertion violations since the last call to ResetCounters.
func (c *Context) Violations() int {
	return c.violations
}

func (c *Context) ResetCounters() {
	c.drawCalls = 0
	c.violations = 0
}

// Make the default framebuffer the draw target and reset the viewport to the
// screen dimensions. No render target may be bound.
func (c *Context) BindScreen() bool {
	if !c.assert(c.target == nil, "screen bound while %q is still bound", c.targetName()) {
		return false
	}
	c.Device.BindFramebuffer(Screen, c.screenW, c.screenH)
	return true
}

// Clear the color and depth buffers of the bound target.
func (c *Context) Clear(colour mgl32.Vec4) {
	c.Device.Clear(colour)
}

// Draw a mesh with the active material. Materials must be bound and their
// uniforms sent before calling Draw.
func (c *Context) Draw(m MeshID) {
	if !c.assert(c.material != nil, "draw of mesh %d without an active material", m) {
		return
	}
	if m == 0 {
		return
	}
	c.drawCalls++
	c.Device.DrawMesh(m)
}

func (c *Context) bindTarget(fb *Framebuffer) bool {
	if !c.assert(c.target == nil, "framebuffer %q bound while %q is still bound", fb.Name, c.targetName()) {
		return false
	}
	c.target = fb
	c.Device.BindFramebuffer(fb.id, fb.pixelW, fb.pixelH)
	return true
}

func (c *Context) unbindTarget(fb *Framebuffer, w, h int32) {
	if !c.assert(c.target == fb, "unbind of %q while %q is bound", fb.Name, c.targetName()) {
		return
	}
	c.target = nil
	c.Device.BindFramebuffer(Screen, w, h)
}

func (c *Context) bindTexture(unit uint32, tex TextureID, owner string) bool {
	if !c.assert(unit < MaxTextureUnits, "texture unit %d out of range", unit) {
		return false
	}
	if !c.assert(c.units[unit] == 0, "texture unit %d already in use when binding %q", unit, owner) {
		return false
	}
	c.units[unit] = tex
	c.Device.BindTexture(unit, tex)
	return true
}

func (c *Context) unbindTexture(unit uint32, tex TextureID) {
	if !c.assert(c.units[unit] == tex, "texture unit %d holds texture %d; expected %d", unit, c.units[unit], tex) {
		return
	}
	c.units[unit] = 0
	c.Device.BindTexture(unit, 0)
}

func (c *Context) useMaterial(m *Material) {
	c.material = m
	c.Device.UseProgram(m.program)
}

// Forget a material that is about to be destroyed.
func (c *Context) dropMaterial(m *Material) {
	if c.material == m {
		c.material = nil
		c.Device.UseProgram(0)
	}
}

func (c *Context) targetName() string {
	if c.target == nil {
		return "screen"
	}
	return c.target.Name
}

func (c *Context) assert(cond bool, format string, args ...interface{}) bool {
	if cond {
		return true
	}
	c.violations++
	err := &AssertionError{Msg: fmt.Sprintf(format, args...)}
	if c.Debug {
		panic(err)
	}
	logger.Warning(err.Error())
	return false
}

// TargetGuard represents the acquisition of a framebuffer as the active draw
// target. Every guard must be released before another target is bound.
type TargetGuard struct {
	ctx      *Context
	fb       *Framebuffer
	released bool
}

// Restore the default framebuffer using the context's screen dimensions.
func (g *TargetGuard) Release() {
	if g == nil {
		return
	}
	g.Unbind(g.ctx.screenW, g.ctx.screenH)
}

// Restore the default framebuffer with the viewport set to the given
// dimensions.
func (g *TargetGuard) Unbind(w, h int32) {
	if g == nil {
		return
	}
	if !g.ctx.assert(!g.released, "framebuffer %q released twice", g.fb.Name) {
		return
	}
	g.released = true
	g.ctx.unbindTarget(g.fb, w, h)
}

// TextureGuard represents a framebuffer attachment bound to a texture unit.
type TextureGuard struct {
	ctx      *Context
	unit     uint32
	tex      TextureID
	released bool
}

// Unbind the texture unit.
func (g *TextureGuard) Release() {
	if g == nil || g.released {
		return
	}
	g.released = true
	g.ctx.unbindTexture(g.unit, g.tex)
}

// Release a list of texture guards.
func ReleaseTextures(guards []*TextureGuard) {
	for _, g := range guards {
		g.Release()
	}
}
