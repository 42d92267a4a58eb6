// Package opengl implements gfx.Device on top of an OpenGL 4.1 core context.
// All methods must be invoked from the thread that owns the context.
package opengl

import (
	"fmt"

	"github.com/achilleasa/lumen/gfx"
	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/mesh"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

const floatSize = 4

type framebuffer struct {
	textures []gfx.TextureID
	depthRBO uint32
}

type meshBuffers struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

// Device issues gfx.Device calls to the current OpenGL context.
type Device struct {
	logger log.Logger

	programs     map[gfx.ProgramID]*program
	framebuffers map[gfx.FramebufferID]framebuffer
	meshes       map[gfx.MeshID]meshBuffers
}

// Initialize the OpenGL bindings for the current context and create a new
// device. A context must be current on the calling thread.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, errors.Wrap(err, "opengl: could not init bindings")
	}

	d := &Device{
		logger:       log.New("opengl"),
		programs:     make(map[gfx.ProgramID]*program),
		framebuffers: make(map[gfx.FramebufferID]framebuffer),
		meshes:       make(map[gfx.MeshID]meshBuffers),
	}
	d.logger.Noticef("OpenGL %s (%s)", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))

	gl.Enable(gl.DEPTH_TEST)
	return d, nil
}

func (d *Device) CompileProgram(name, vertexSrc, fragmentSrc string) (gfx.ProgramID, error) {
	p, err := linkProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return 0, errors.Wrapf(err, "opengl: program %q", name)
	}
	id := gfx.ProgramID(p.id)
	d.programs[id] = p
	return id, nil
}

func (d *Device) UniformLocation(prog gfx.ProgramID, name string) int32 {
	p, ok := d.programs[prog]
	if !ok {
		return -1
	}
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.locations[name] = loc
	return loc
}

func (d *Device) UseProgram(prog gfx.ProgramID) {
	gl.UseProgram(uint32(prog))
}

func (d *Device) DeleteProgram(prog gfx.ProgramID) {
	if p, ok := d.programs[prog]; ok {
		p.delete()
		delete(d.programs, prog)
	}
}

func (d *Device) Uniform1f(loc int32, v float32) {
	gl.Uniform1f(loc, v)
}

func (d *Device) Uniform1i(loc int32, v int32) {
	gl.Uniform1i(loc, v)
}

func (d *Device) Uniform4f(loc int32, v mgl32.Vec4) {
	gl.Uniform4fv(loc, 1, &v[0])
}

func (d *Device) UniformMatrix4f(loc int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}

// CreateFramebuffer allocates RGBA16F color attachments so that the bright
// pass can extract values above 1.0 from the scene target.
func (d *Device) CreateFramebuffer(width, height int32, colorAttachments int, depth bool) (gfx.FramebufferID, []gfx.TextureID, error) {
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	textures := make([]gfx.TextureID, colorAttachments)
	drawBuffers := make([]uint32, colorAttachments)
	for i := range textures {
		var tex uint32
		gl.GenTextures(1, &tex)
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, width, height, 0, gl.RGBA, gl.FLOAT, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0+uint32(i), gl.TEXTURE_2D, tex, 0)

		textures[i] = gfx.TextureID(tex)
		drawBuffers[i] = gl.COLOR_ATTACHMENT0 + uint32(i)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.DrawBuffers(int32(len(drawBuffers)), &drawBuffers[0])

	state := framebuffer{textures: textures}
	if depth {
		gl.GenRenderbuffers(1, &state.depthRBO)
		gl.BindRenderbuffer(gl.RENDERBUFFER, state.depthRBO)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, width, height)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, state.depthRBO)
	}

	id := gfx.FramebufferID(fbo)
	d.framebuffers[id] = state

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		d.DeleteFramebuffer(id, textures)
		return 0, nil, errors.Wrapf(gfx.ErrFramebufferIncomplete, "status 0x%x", status)
	}
	return id, textures, nil
}

func (d *Device) DeleteFramebuffer(fb gfx.FramebufferID, attachments []gfx.TextureID) {
	if state, ok := d.framebuffers[fb]; ok && state.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &state.depthRBO)
	}
	delete(d.framebuffers, fb)

	for _, tex := range attachments {
		id := uint32(tex)
		gl.DeleteTextures(1, &id)
	}
	id := uint32(fb)
	gl.DeleteFramebuffers(1, &id)
}

func (d *Device) BindFramebuffer(fb gfx.FramebufferID, width, height int32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
	gl.Viewport(0, 0, width, height)
}

func (d *Device) Clear(colour mgl32.Vec4) {
	gl.ClearColor(colour[0], colour[1], colour[2], colour[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) BindTexture(unit uint32, tex gfx.TextureID) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

// UploadMesh stores interleaved position/normal/uv vertices at attribute
// locations 0, 1 and 2.
func (d *Device) UploadMesh(data *mesh.Data) (gfx.MeshID, error) {
	if len(data.Vertices) == 0 || len(data.Indices) == 0 {
		return 0, errors.Errorf("opengl: mesh %q is empty", data.Name)
	}

	var buf meshBuffers
	vertices := data.Interleave()

	gl.GenVertexArrays(1, &buf.vao)
	gl.BindVertexArray(buf.vao)

	gl.GenBuffers(1, &buf.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*floatSize, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &buf.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, gl.Ptr(data.Indices), gl.STATIC_DRAW)

	stride := int32(mesh.VertexStride * floatSize)
	for index, attr := range []struct{ size, offset int }{{3, 0}, {3, 3}, {2, 6}} {
		gl.VertexAttribPointer(uint32(index), int32(attr.size), gl.FLOAT, false, stride, gl.PtrOffset(attr.offset*floatSize))
		gl.EnableVertexAttribArray(uint32(index))
	}

	gl.BindVertexArray(0)
	buf.indexCount = int32(len(data.Indices))

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		d.deleteBuffers(buf)
		return 0, errors.Errorf("opengl: upload of mesh %q failed: %s", data.Name, glError(errCode))
	}

	id := gfx.MeshID(buf.vao)
	d.meshes[id] = buf
	return id, nil
}

func (d *Device) DrawMesh(m gfx.MeshID) {
	buf, ok := d.meshes[m]
	if !ok {
		return
	}
	gl.BindVertexArray(buf.vao)
	gl.DrawElements(gl.TRIANGLES, buf.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func (d *Device) DeleteMesh(m gfx.MeshID) {
	if buf, ok := d.meshes[m]; ok {
		d.deleteBuffers(buf)
		delete(d.meshes, m)
	}
}

func (d *Device) deleteBuffers(buf meshBuffers) {
	gl.DeleteBuffers(1, &buf.vbo)
	gl.DeleteBuffers(1, &buf.ebo)
	gl.DeleteVertexArrays(1, &buf.vao)
}

// Release all objects that are still owned by the device.
func (d *Device) Close() {
	for id := range d.meshes {
		d.DeleteMesh(id)
	}
	for id := range d.programs {
		d.DeleteProgram(id)
	}
	for id, state := range d.framebuffers {
		d.DeleteFramebuffer(id, state.textures)
	}
}

func glError(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "invalid enum"
	case gl.INVALID_VALUE:
		return "invalid value"
	case gl.INVALID_OPERATION:
		return "invalid operation"
	case gl.OUT_OF_MEMORY:
		return "out of memory"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "invalid framebuffer operation"
	}
	return fmt.Sprintf("0x%x", code)
}

var _ gfx.Device = (*Device)(nil)
