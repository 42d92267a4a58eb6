package asset

import (
	"sort"

	"github.com/achilleasa/lumen/gfx"
	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/mesh"
	"github.com/pkg/errors"
)

var (
	ErrNotFound  = errors.New("asset: not found")
	ErrDuplicate = errors.New("asset: duplicate name")
)

// Registry owns the named meshes and materials shared by the scene and the
// post-processing pipeline. It is created once per render context and
// passed explicitly to the components that need it.
type Registry struct {
	logger log.Logger
	ctx    *gfx.Context

	meshes    map[string]gfx.MeshID
	materials map[string]*gfx.Material
}

// Create an empty registry bound to a render context.
func NewRegistry(ctx *gfx.Context) *Registry {
	return &Registry{
		logger:    log.New("asset"),
		ctx:       ctx,
		meshes:    make(map[string]gfx.MeshID),
		materials: make(map[string]*gfx.Material),
	}
}

// Upload mesh data to the device and register it under its name.
func (r *Registry) AddMesh(data *mesh.Data) (gfx.MeshID, error) {
	if _, exists := r.meshes[data.Name]; exists {
		return 0, errors.Wrapf(ErrDuplicate, "mesh %q", data.Name)
	}

	id, err := r.ctx.Device.UploadMesh(data)
	if err != nil {
		return 0, errors.Wrapf(err, "asset: upload of mesh %q failed", data.Name)
	}
	r.meshes[data.Name] = id
	r.logger.Debugf("registered mesh %q (%d vertices, %d triangles)", data.Name, len(data.Vertices), data.Triangles())
	return id, nil
}

// Lookup a mesh by name.
func (r *Registry) Mesh(name string) (gfx.MeshID, error) {
	id, exists := r.meshes[name]
	if !exists {
		return 0, errors.Wrapf(ErrNotFound, "mesh %q", name)
	}
	return id, nil
}

// Compile a material and register it under the given name.
func (r *Registry) CompileMaterial(name, vertexSrc, fragmentSrc string, required ...gfx.Uniform) (*gfx.Material, error) {
	if _, exists := r.materials[name]; exists {
		return nil, errors.Wrapf(ErrDuplicate, "material %q", name)
	}

	m, err := gfx.CompileMaterial(r.ctx, name, vertexSrc, fragmentSrc, required...)
	if err != nil {
		return nil, err
	}
	r.materials[name] = m
	r.logger.Debugf("registered material %q", name)
	return m, nil
}

// Register an existing material.
func (r *Registry) AddMaterial(m *gfx.Material) error {
	if _, exists := r.materials[m.Name]; exists {
		return errors.Wrapf(ErrDuplicate, "material %q", m.Name)
	}
	r.materials[m.Name] = m
	return nil
}

// Lookup a material by name.
func (r *Registry) Material(name string) (*gfx.Material, error) {
	m, exists := r.materials[name]
	if !exists {
		return nil, errors.Wrapf(ErrNotFound, "material %q", name)
	}
	return m, nil
}

// Get the sorted list of registered material names.
func (r *Registry) MaterialNames() []string {
	names := make([]string, 0, len(r.materials))
	for name := range r.materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Release all device resources owned by the registry.
func (r *Registry) Close() {
	for name, id := range r.meshes {
		r.ctx.Device.DeleteMesh(id)
		delete(r.meshes, name)
	}
	for name, m := range r.materials {
		m.Destroy()
		delete(r.materials, name)
	}
}
