package gfx

import (
	"strings"

	"github.com/achilleasa/lumen/mesh"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Op identifies a recorded device call.
type Op uint8

const (
	OpCompileProgram Op = iota
	OpUseProgram
	OpDeleteProgram
	OpUniform
	OpCreateFramebuffer
	OpDeleteFramebuffer
	OpBindFramebuffer
	OpClear
	OpBindTexture
	OpUploadMesh
	OpDrawMesh
	OpDeleteMesh
)

var opNames = [...]string{
	"compile-program", "use-program", "delete-program", "uniform",
	"create-framebuffer", "delete-framebuffer", "bind-framebuffer", "clear",
	"bind-texture", "upload-mesh", "draw-mesh", "delete-mesh",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "unknown"
}

// Call is a single recorded device call. Only the fields relevant to the
// call's Op are populated.
type Call struct {
	Op          Op
	Program     ProgramID
	Framebuffer FramebufferID
	Texture     TextureID
	Mesh        MeshID
	Unit        uint32
	Location    int32
	Width       int32
	Height      int32
	Value       interface{}
}

type recordedProgram struct {
	name      string
	locations map[string]int32
	values    map[int32]interface{}
}

// Recorder is a Device that performs no rendering. It records every call and
// mirrors the device state so that pass sequencing can be inspected. It backs
// the headless renderer and the package tests.
type Recorder struct {
	Calls []Call

	// Simulate allocation failures. FailFramebufferAt fails only the n-th
	// CreateFramebuffer call (1-based) counted from the last Reset.
	FailFramebuffers  bool
	FailFramebufferAt int
	FailPrograms      bool

	// Mirrored device state.
	BoundFramebuffer FramebufferID
	ActiveProgram    ProgramID
	Viewport         [2]int32
	Units            [MaxTextureUnits]TextureID

	nextID       uint32
	fbCreates    int
	programs     map[ProgramID]*recordedProgram
	framebuffers map[FramebufferID][]TextureID
	meshes       map[MeshID]int
}

// Create a new recording device.
func NewRecorder() *Recorder {
	return &Recorder{
		programs:     make(map[ProgramID]*recordedProgram),
		framebuffers: make(map[FramebufferID][]TextureID),
		meshes:       make(map[MeshID]int),
	}
}

func (r *Recorder) id() uint32 {
	r.nextID++
	return r.nextID
}

func (r *Recorder) record(c Call) {
	r.Calls = append(r.Calls, c)
}

// Discard recorded calls; mirrored state is preserved.
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
	r.fbCreates = 0
}

// Count the recorded calls for an op.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Get the recorded calls for an op in issue order.
func (r *Recorder) Filter(op Op) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Get the set of framebuffers bound for drawing since the last Reset,
// including the default framebuffer.
func (r *Recorder) BoundFramebuffers() map[FramebufferID]int {
	out := make(map[FramebufferID]int)
	for _, c := range r.Filter(OpBindFramebuffer) {
		out[c.Framebuffer]++
	}
	return out
}

// Get the last value uploaded to a named uniform of a program.
func (r *Recorder) UniformValue(program ProgramID, name string) (interface{}, bool) {
	p, ok := r.programs[program]
	if !ok {
		return nil, false
	}
	loc, ok := p.locations[name]
	if !ok {
		return nil, false
	}
	v, ok := p.values[loc]
	return v, ok
}

// Get the number of live framebuffers.
func (r *Recorder) LiveFramebuffers() int {
	return len(r.framebuffers)
}

// Get the number of live programs.
func (r *Recorder) LivePrograms() int {
	return len(r.programs)
}

// CompileProgram assigns a location to every uniform declared by the
// sources in declaration order.
func (r *Recorder) CompileProgram(name, vertexSrc, fragmentSrc string) (ProgramID, error) {
	if r.FailPrograms {
		return 0, errors.Wrapf(ErrProgramLink, "program %q", name)
	}

	p := &recordedProgram{
		name:      name,
		locations: make(map[string]int32),
		values:    make(map[int32]interface{}),
	}
	for _, src := range []string{vertexSrc, fragmentSrc} {
		for _, line := range strings.Split(src, "\n") {
			fields := strings.Fields(strings.TrimSuffix(strings.TrimSpace(line), ";"))
			if len(fields) < 3 || fields[0] != "uniform" {
				continue
			}
			uname := fields[len(fields)-1]
			if idx := strings.IndexByte(uname, '['); idx >= 0 {
				uname = uname[:idx]
			}
			if _, exists := p.locations[uname]; !exists {
				p.locations[uname] = int32(len(p.locations))
			}
		}
	}

	id := ProgramID(r.id())
	r.programs[id] = p
	r.record(Call{Op: OpCompileProgram, Program: id, Value: name})
	return id, nil
}

func (r *Recorder) UniformLocation(program ProgramID, name string) int32 {
	if p, ok := r.programs[program]; ok {
		if loc, ok := p.locations[name]; ok {
			return loc
		}
	}
	return -1
}

func (r *Recorder) UseProgram(program ProgramID) {
	r.ActiveProgram = program
	r.record(Call{Op: OpUseProgram, Program: program})
}

func (r *Recorder) DeleteProgram(program ProgramID) {
	delete(r.programs, program)
	if r.ActiveProgram == program {
		r.ActiveProgram = 0
	}
	r.record(Call{Op: OpDeleteProgram, Program: program})
}

func (r *Recorder) uniform(loc int32, v interface{}) {
	if p, ok := r.programs[r.ActiveProgram]; ok {
		p.values[loc] = v
	}
	r.record(Call{Op: OpUniform, Program: r.ActiveProgram, Location: loc, Value: v})
}

func (r *Recorder) Uniform1f(loc int32, v float32)          { r.uniform(loc, v) }
func (r *Recorder) Uniform1i(loc int32, v int32)            { r.uniform(loc, v) }
func (r *Recorder) Uniform4f(loc int32, v mgl32.Vec4)       { r.uniform(loc, v) }
func (r *Recorder) UniformMatrix4f(loc int32, m mgl32.Mat4) { r.uniform(loc, m) }

func (r *Recorder) CreateFramebuffer(width, height int32, colorAttachments int, depth bool) (FramebufferID, []TextureID, error) {
	r.fbCreates++
	if r.FailFramebuffers || r.fbCreates == r.FailFramebufferAt {
		return 0, nil, ErrFramebufferIncomplete
	}

	id := FramebufferID(r.id())
	textures := make([]TextureID, colorAttachments)
	for i := range textures {
		textures[i] = TextureID(r.id())
	}
	r.framebuffers[id] = textures
	r.record(Call{Op: OpCreateFramebuffer, Framebuffer: id, Width: width, Height: height, Value: depth})
	return id, textures, nil
}

func (r *Recorder) DeleteFramebuffer(fb FramebufferID, attachments []TextureID) {
	delete(r.framebuffers, fb)
	r.record(Call{Op: OpDeleteFramebuffer, Framebuffer: fb})
}

func (r *Recorder) BindFramebuffer(fb FramebufferID, width, height int32) {
	r.BoundFramebuffer = fb
	r.Viewport = [2]int32{width, height}
	r.record(Call{Op: OpBindFramebuffer, Framebuffer: fb, Width: width, Height: height})
}

func (r *Recorder) Clear(colour mgl32.Vec4) {
	r.record(Call{Op: OpClear, Framebuffer: r.BoundFramebuffer, Value: colour})
}

func (r *Recorder) BindTexture(unit uint32, tex TextureID) {
	if unit < MaxTextureUnits {
		r.Units[unit] = tex
	}
	r.record(Call{Op: OpBindTexture, Unit: unit, Texture: tex})
}

func (r *Recorder) UploadMesh(data *mesh.Data) (MeshID, error) {
	id := MeshID(r.id())
	r.meshes[id] = data.Triangles()
	r.record(Call{Op: OpUploadMesh, Mesh: id, Value: data.Name})
	return id, nil
}

// DrawMesh records the draw together with the bound framebuffer and program.
func (r *Recorder) DrawMesh(m MeshID) {
	r.record(Call{Op: OpDrawMesh, Mesh: m, Framebuffer: r.BoundFramebuffer, Program: r.ActiveProgram})
}

func (r *Recorder) DeleteMesh(m MeshID) {
	delete(r.meshes, m)
	r.record(Call{Op: OpDeleteMesh, Mesh: m})
}
