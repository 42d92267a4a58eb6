package renderer

import (
	_ "embed"

	"github.com/achilleasa/lumen/asset"
	"github.com/achilleasa/lumen/gfx"
	"github.com/achilleasa/lumen/mesh"
)

// Names of the registry assets used by the demo scene.
const (
	DefaultMaterial  = "default"
	EmissiveMaterial = "emissive"

	FloorMesh  = "floor"
	SphereMesh = "sphere"
	TorusMesh  = "torus"
)

var (
	//go:embed shaders/default.vert.glsl
	defaultVertexShader string

	//go:embed shaders/default.frag.glsl
	defaultFragmentShader string

	//go:embed shaders/emissive.frag.glsl
	emissiveFragmentShader string
)

// Compile the scene materials and upload the demo meshes into a registry.
func RegisterSceneAssets(reg *asset.Registry) error {
	meshes := []*mesh.Data{
		mesh.Plane(40),
		mesh.Sphere(0.5, 16, 24),
		mesh.Torus(1, 0.3, 32, 16),
	}
	for _, data := range meshes {
		if _, err := reg.AddMesh(data); err != nil {
			return err
		}
	}

	if _, err := reg.CompileMaterial(
		DefaultMaterial, defaultVertexShader, defaultFragmentShader,
		gfx.UniformMVP, gfx.UniformModel, gfx.UniformView, gfx.UniformLightPos, gfx.UniformColour,
	); err != nil {
		return err
	}
	if _, err := reg.CompileMaterial(
		EmissiveMaterial, defaultVertexShader, emissiveFragmentShader,
		gfx.UniformMVP, gfx.UniformColour,
	); err != nil {
		return err
	}
	return nil
}
