package gfx

// Uniform enumerates the uniform slots understood by the renderer's shaders.
type Uniform uint8

const (
	UniformMVP Uniform = iota
	UniformModel
	UniformView
	UniformViewProj
	UniformLightPos
	UniformColour
	UniformBloomThreshold
	UniformBloomIntensity
	UniformTexelSize
	UniformTex0
	UniformTex1
	numUniforms
)

// UniformKind is the value type stored in a uniform slot.
type UniformKind uint8

const (
	KindFloat UniformKind = iota
	KindInt
	KindVec4
	KindMat4
)

var uniformInfo = [numUniforms]struct {
	name string
	kind UniformKind
}{
	UniformMVP:            {"u_mvp", KindMat4},
	UniformModel:          {"u_model", KindMat4},
	UniformView:           {"u_view", KindMat4},
	UniformViewProj:       {"u_viewProj", KindMat4},
	UniformLightPos:       {"u_lightPos", KindVec4},
	UniformColour:         {"u_colour", KindVec4},
	UniformBloomThreshold: {"u_bloomThreshold", KindFloat},
	UniformBloomIntensity: {"u_bloomIntensity", KindFloat},
	UniformTexelSize:      {"u_texelSize", KindVec4},
	UniformTex0:           {"u_tex0", KindInt},
	UniformTex1:           {"u_tex1", KindInt},
}

// Get the GLSL name of the uniform.
func (u Uniform) String() string {
	if u >= numUniforms {
		return "u_invalid"
	}
	return uniformInfo[u].name
}

// Get the value type of the uniform.
func (u Uniform) Kind() UniformKind {
	return uniformInfo[u].kind
}

func (k UniformKind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindVec4:
		return "vec4"
	case KindMat4:
		return "mat4"
	}
	return "unknown"
}
