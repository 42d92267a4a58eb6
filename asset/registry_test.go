package asset

import (
	"testing"

	"github.com/achilleasa/lumen/gfx"
	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/mesh"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testVS = `uniform mat4 u_mvp;
void main() {}`
	testFS = `uniform vec4 u_colour;
void main() {}`
)

func init() {
	log.Quiet()
}

func newTestRegistry() (*Registry, *gfx.Recorder) {
	rec := gfx.NewRecorder()
	ctx := gfx.NewContext(rec, 640, 480)
	return NewRegistry(ctx), rec
}

func TestRegistryMeshes(t *testing.T) {
	reg, rec := newTestRegistry()

	id, err := reg.AddMesh(mesh.Quad())
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, 1, rec.Count(gfx.OpUploadMesh))

	got, err := reg.Mesh("quad")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = reg.AddMesh(mesh.Quad())
	assert.Equal(t, ErrDuplicate, errors.Cause(err))
	assert.Equal(t, 1, rec.Count(gfx.OpUploadMesh))

	_, err = reg.Mesh("teapot")
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func TestRegistryMaterials(t *testing.T) {
	reg, rec := newTestRegistry()

	m, err := reg.CompileMaterial("default", testVS, testFS, gfx.UniformMVP, gfx.UniformColour)
	require.NoError(t, err)

	got, err := reg.Material("default")
	require.NoError(t, err)
	assert.True(t, m == got)

	_, err = reg.CompileMaterial("default", testVS, testFS)
	assert.Equal(t, ErrDuplicate, errors.Cause(err))
	assert.Equal(t, ErrDuplicate, errors.Cause(reg.AddMaterial(m)))

	_, err = reg.CompileMaterial("broken", testVS, testFS, gfx.UniformBloomThreshold)
	assert.Equal(t, gfx.ErrMissingUniform, errors.Cause(err))
	_, err = reg.Material("broken")
	assert.Equal(t, ErrNotFound, errors.Cause(err))

	assert.Equal(t, []string{"default"}, reg.MaterialNames())
	assert.Equal(t, 1, rec.LivePrograms())
}

func TestRegistryClose(t *testing.T) {
	reg, rec := newTestRegistry()

	_, err := reg.AddMesh(mesh.Quad())
	require.NoError(t, err)
	_, err = reg.AddMesh(mesh.Cube(1))
	require.NoError(t, err)
	_, err = reg.CompileMaterial("default", testVS, testFS)
	require.NoError(t, err)

	reg.Close()

	assert.Equal(t, 2, rec.Count(gfx.OpDeleteMesh))
	assert.Equal(t, 0, rec.LivePrograms())
	assert.Empty(t, reg.MaterialNames())
	_, err = reg.Mesh("quad")
	assert.Error(t, err)
}
