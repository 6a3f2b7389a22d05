package shaders

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.3-core/gl"
)

// ShaderError carries the driver log for a failed compile or link
type ShaderError struct {
	Program string
	Stage   Stage // zero when the failure happened at link time
	Log     string
}

func (e *ShaderError) Error() string {
	if e.Stage == 0 {
		return fmt.Sprintf("%s program link failed: %s", e.Program, strings.TrimSpace(e.Log))
	}
	return fmt.Sprintf("%s %s shader compilation failed: %s", e.Program, e.Stage, strings.TrimSpace(e.Log))
}

// compileShader compiles a single shader
func compileShader(program string, stage Stage, source string) (uint32, error) {
	shader := gl.CreateShader(stage.glType())

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetShaderInfoLog(shader, logLength, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, &ShaderError{Program: program, Stage: stage, Log: gl.GoStr(&log[0])}
	}

	return shader, nil
}

// linkProgram links compiled stages into a program
func linkProgram(program string, stages []uint32) (uint32, error) {
	id := gl.CreateProgram()
	for _, s := range stages {
		gl.AttachShader(id, s)
	}
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetProgramInfoLog(id, logLength, nil, &log[0])
		gl.DeleteProgram(id)
		return 0, &ShaderError{Program: program, Log: gl.GoStr(&log[0])}
	}

	for _, s := range stages {
		gl.DetachShader(id, s)
	}
	return id, nil
}

// BuildProgram fetches every stage of the named program from the provider,
// compiles them and links the result. Any failure is returned as a
// *ShaderError naming the program and stage.
func BuildProgram(p Provider, program string, stages ...Stage) (uint32, error) {
	compiled := make([]uint32, 0, len(stages))
	defer func() {
		for _, s := range compiled {
			gl.DeleteShader(s)
		}
	}()

	for _, stage := range stages {
		src, err := p.Source(program, stage)
		if err != nil {
			return 0, &ShaderError{Program: program, Stage: stage, Log: err.Error()}
		}
		id, err := compileShader(program, stage, src)
		if err != nil {
			return 0, err
		}
		compiled = append(compiled, id)
	}

	return linkProgram(program, compiled)
}

// UniformLocations looks up every named uniform of a program once
func UniformLocations(program uint32, names ...string) map[string]int32 {
	locs := make(map[string]int32, len(names))
	for _, name := range names {
		locs[name] = gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	}
	return locs
}
