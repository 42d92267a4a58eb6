package opengl

import (
	"strings"

	"github.com/achilleasa/lumen/gfx"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"
)

type program struct {
	id             uint32
	vertexShader   uint32
	fragmentShader uint32
	locations      map[string]int32
}

func (p *program) delete() {
	gl.DetachShader(p.id, p.vertexShader)
	gl.DetachShader(p.id, p.fragmentShader)
	gl.DeleteProgram(p.id)
	gl.DeleteShader(p.vertexShader)
	gl.DeleteShader(p.fragmentShader)
}

func linkProgram(vertexSrc, fragmentSrc string) (*program, error) {
	vs, err := compileShader(gl.VERTEX_SHADER, vertexSrc)
	if err != nil {
		return nil, errors.Wrap(err, "vertex shader")
	}
	fs, err := compileShader(gl.FRAGMENT_SHADER, fragmentSrc)
	if err != nil {
		gl.DeleteShader(vs)
		return nil, errors.Wrap(err, "fragment shader")
	}

	p := &program{
		id:             gl.CreateProgram(),
		vertexShader:   vs,
		fragmentShader: fs,
		locations:      make(map[string]int32),
	}
	gl.AttachShader(p.id, vs)
	gl.AttachShader(p.id, fs)
	gl.LinkProgram(p.id)

	var isLinked int32
	gl.GetProgramiv(p.id, gl.LINK_STATUS, &isLinked)
	if isLinked == gl.FALSE {
		var logSize int32
		gl.GetProgramiv(p.id, gl.INFO_LOG_LENGTH, &logSize)
		buf := make([]uint8, logSize+1)
		gl.GetProgramInfoLog(p.id, int32(len(buf)), &logSize, &buf[0])

		p.delete()
		return nil, errors.Wrapf(gfx.ErrProgramLink, "%s", strings.TrimSpace(string(buf[:logSize])))
	}
	return p, nil
}

func compileShader(xtype uint32, text string) (uint32, error) {
	shader := gl.CreateShader(xtype)
	csource, free := gl.Strs(text + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var success int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &success)
	if success == gl.FALSE {
		var logSize int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logSize)
		buf := make([]uint8, logSize+1)
		gl.GetShaderInfoLog(shader, int32(len(buf)), &logSize, &buf[0])

		gl.DeleteShader(shader)
		return 0, errors.Errorf("failed to compile shader: %q", strings.TrimSpace(string(buf[:logSize])))
	}
	return shader, nil
}
