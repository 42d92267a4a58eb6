// Package gfx wraps the immediate-mode graphics device behind an explicit
// render context. Every bind, uniform upload and draw call issued by the
// scene graph and the post-processing pipeline flows through a Context so
// that the single active draw target, the single active program and the
// fixed set of texture units are tracked and validated in one place.
package gfx

import (
	"github.com/achilleasa/lumen/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// Device object handles. The zero value of each handle refers to "no object".
type (
	ProgramID     uint32
	TextureID     uint32
	FramebufferID uint32
	MeshID        uint32
)

// The default (window) framebuffer.
const Screen FramebufferID = 0

// The number of texture units tracked by the render context.
const MaxTextureUnits = 8

// Device is implemented by graphics backends. Implementations are not
// expected to be safe for concurrent use; all calls are issued from the
// rendering thread.
type Device interface {
	// Compile and link a vertex/fragment program.
	CompileProgram(name, vertexSrc, fragmentSrc string) (ProgramID, error)

	// Lookup the location of a named uniform; returns -1 if the program
	// does not declare it.
	UniformLocation(program ProgramID, name string) int32

	UseProgram(program ProgramID)
	DeleteProgram(program ProgramID)

	// Uniform uploads target the program set by UseProgram.
	Uniform1f(location int32, v float32)
	Uniform1i(location int32, v int32)
	Uniform4f(location int32, v mgl32.Vec4)
	UniformMatrix4f(location int32, m mgl32.Mat4)

	// Allocate a framebuffer with the requested number of RGBA color
	// attachments and an optional depth attachment.
	CreateFramebuffer(width, height int32, colorAttachments int, depth bool) (FramebufferID, []TextureID, error)
	DeleteFramebuffer(fb FramebufferID, attachments []TextureID)

	// Bind a framebuffer for drawing and set the viewport to the given
	// dimensions. Passing Screen binds the default framebuffer.
	BindFramebuffer(fb FramebufferID, width, height int32)

	// Clear color and depth of the bound framebuffer.
	Clear(colour mgl32.Vec4)

	// Bind a texture to a texture unit. Passing a zero texture unbinds the unit.
	BindTexture(unit uint32, tex TextureID)

	UploadMesh(data *mesh.Data) (MeshID, error)
	DrawMesh(m MeshID)
	DeleteMesh(m MeshID)
}

// Texture describes a sampleable device texture.
type Texture struct {
	ID     TextureID
	Width  int32
	Height int32
}
