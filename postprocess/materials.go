package postprocess

import (
	_ "embed"

	"github.com/achilleasa/lumen/asset"
	"github.com/achilleasa/lumen/gfx"
	"github.com/achilleasa/lumen/mesh"
)

// Names of the registry assets used by the pipeline.
const (
	UnlitMaterial  = "unlitTexture"
	BrightMaterial = "bright"
	BlurMaterial   = "blur"
	BloomMaterial  = "bloom"
	QuadMesh       = "quad"
)

var (
	//go:embed shaders/quad.vert.glsl
	QuadVertexShader string

	//go:embed shaders/unlit.frag.glsl
	UnlitFragmentShader string

	//go:embed shaders/bright.frag.glsl
	BrightFragmentShader string

	//go:embed shaders/blur.frag.glsl
	BlurFragmentShader string

	//go:embed shaders/bloom.frag.glsl
	BloomFragmentShader string
)

// Compile the pipeline materials and upload the full-screen quad into a
// registry.
func RegisterAssets(reg *asset.Registry) error {
	if _, err := reg.AddMesh(mesh.Quad()); err != nil {
		return err
	}

	materials := []struct {
		name     string
		fragment string
		required []gfx.Uniform
	}{
		{UnlitMaterial, UnlitFragmentShader, []gfx.Uniform{gfx.UniformTex0}},
		{BrightMaterial, BrightFragmentShader, []gfx.Uniform{gfx.UniformTex0, gfx.UniformBloomThreshold}},
		{BlurMaterial, BlurFragmentShader, []gfx.Uniform{gfx.UniformTex0, gfx.UniformTexelSize}},
		{BloomMaterial, BloomFragmentShader, []gfx.Uniform{gfx.UniformTex0, gfx.UniformTex1, gfx.UniformBloomIntensity}},
	}
	for _, m := range materials {
		if _, err := reg.CompileMaterial(m.name, QuadVertexShader, m.fragment, m.required...); err != nil {
			return err
		}
	}
	return nil
}
