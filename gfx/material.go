package gfx

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

type uniformValue struct {
	set bool
	f   float32
	i   int32
	v   mgl32.Vec4
	m   mgl32.Mat4
}

// Material pairs a shader program with a table of uniform values. Values are
// buffered by the Set* methods and only reach the device when SendUniforms is
// invoked while the material is bound. Each material owns its own table.
type Material struct {
	Name string

	ctx       *Context
	program   ProgramID
	locations [numUniforms]int32
	values    [numUniforms]uniformValue
}

// Compile a program and wrap it in a material. See NewMaterial.
func CompileMaterial(ctx *Context, name, vertexSrc, fragmentSrc string, required ...Uniform) (*Material, error) {
	program, err := ctx.Device.CompileProgram(name, vertexSrc, fragmentSrc)
	if err != nil {
		err = errors.Wrapf(err, "material %q", name)
		logger.Error(err.Error())
		return nil, err
	}

	m, err := NewMaterial(ctx, name, program, required...)
	if err != nil {
		ctx.Device.DeleteProgram(program)
		return nil, err
	}
	return m, nil
}

// Create a material for a linked program. The locations of all known
// uniform slots are resolved once; an error is returned if any of the
// required slots is not declared by the program. Sampler slots default to
// texture units 0 and 1.
func NewMaterial(ctx *Context, name string, program ProgramID, required ...Uniform) (*Material, error) {
	m := &Material{
		Name:    name,
		ctx:     ctx,
		program: program,
	}

	for u := Uniform(0); u < numUniforms; u++ {
		m.locations[u] = ctx.Device.UniformLocation(program, u.String())
	}

	for _, u := range required {
		if u >= numUniforms || m.locations[u] < 0 {
			err := errors.Wrapf(ErrMissingUniform, "material %q: %s", name, u)
			logger.Error(err.Error())
			return nil, err
		}
	}

	m.SetSampler(UniformTex0, 0)
	m.SetSampler(UniformTex1, 1)
	return m, nil
}

// Get the program handle.
func (m *Material) Program() ProgramID {
	return m.program
}

// Returns true if the program declares the uniform.
func (m *Material) Has(u Uniform) bool {
	return u < numUniforms && m.locations[u] >= 0
}

func (m *Material) slot(u Uniform, kind UniformKind) *uniformValue {
	if !m.ctx.assert(u < numUniforms, "material %q: unknown uniform slot %d", m.Name, u) {
		return nil
	}
	if !m.ctx.assert(u.Kind() == kind, "material %q: %s is a %s; got %s", m.Name, u, u.Kind(), kind) {
		return nil
	}
	return &m.values[u]
}

func (m *Material) SetFloat(u Uniform, v float32) {
	if s := m.slot(u, KindFloat); s != nil {
		s.set, s.f = true, v
	}
}

func (m *Material) SetSampler(u Uniform, unit int32) {
	if s := m.slot(u, KindInt); s != nil {
		s.set, s.i = true, unit
	}
}

func (m *Material) SetVec4(u Uniform, v mgl32.Vec4) {
	if s := m.slot(u, KindVec4); s != nil {
		s.set, s.v = true, v
	}
}

func (m *Material) SetMat4(u Uniform, v mgl32.Mat4) {
	if s := m.slot(u, KindMat4); s != nil {
		s.set, s.m = true, v
	}
}

// Get the buffered value of a float uniform.
func (m *Material) Float(u Uniform) (float32, bool) {
	if u >= numUniforms || u.Kind() != KindFloat {
		return 0, false
	}
	return m.values[u].f, m.values[u].set
}

// Get the buffered value of a vec4 uniform.
func (m *Material) Vec4(u Uniform) (mgl32.Vec4, bool) {
	if u >= numUniforms || u.Kind() != KindVec4 {
		return mgl32.Vec4{}, false
	}
	return m.values[u].v, m.values[u].set
}

// Get the buffered value of a mat4 uniform.
func (m *Material) Mat4(u Uniform) (mgl32.Mat4, bool) {
	if u >= numUniforms || u.Kind() != KindMat4 {
		return mgl32.Mat4{}, false
	}
	return m.values[u].m, m.values[u].set
}

// Activate the material's program for subsequent draw calls.
func (m *Material) Bind() {
	m.ctx.useMaterial(m)
}

// Upload all buffered values to the device. The material must be bound;
// otherwise nothing is uploaded.
func (m *Material) SendUniforms() {
	if !m.ctx.assert(m.ctx.material == m, "material %q: uniforms sent while not bound", m.Name) {
		return
	}

	dev := m.ctx.Device
	for u := Uniform(0); u < numUniforms; u++ {
		loc, val := m.locations[u], &m.values[u]
		if loc < 0 || !val.set {
			continue
		}
		switch u.Kind() {
		case KindFloat:
			dev.Uniform1f(loc, val.f)
		case KindInt:
			dev.Uniform1i(loc, val.i)
		case KindVec4:
			dev.Uniform4f(loc, val.v)
		case KindMat4:
			dev.UniformMatrix4f(loc, val.m)
		}
	}
}

// Release the program.
func (m *Material) Destroy() {
	if m.program == 0 {
		return
	}
	m.ctx.dropMaterial(m)
	m.ctx.Device.DeleteProgram(m.program)
	m.program = 0
}
