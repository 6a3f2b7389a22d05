package opengl

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"grassrenderer/core"
	"grassrenderer/gpu"
	"grassrenderer/rendering/opengl/shaders"
)

// Smallest GL_MAX_TESS_GEN_LEVEL a 4.3 implementation may report
const maxTessLevel = 64

// ErrInvalidTessellation is returned for a tessellation config the pipeline cannot run
var ErrInvalidTessellation = errors.New("opengl: invalid tessellation config")

// TessellationConfig is the fixed-function tessellation state of the grass
// pipeline. It is applied before every draw, never left as ambient context state.
type TessellationConfig struct {
	PatchVertices uint32  // control points per patch, one blade each
	MinLevel      float32 // cross-sections at LODDistance and beyond
	MaxLevel      float32 // cross-sections next to the camera, or always when not adaptive
	LODDistance   float32
	Adaptive      bool
}

// DefaultTessellationConfig returns constant 8 level tessellation
func DefaultTessellationConfig() TessellationConfig {
	return TessellationConfig{
		PatchVertices: 1,
		MinLevel:      2,
		MaxLevel:      8,
		LODDistance:   20,
		Adaptive:      false,
	}
}

// Validate checks the config against what the shaders expect
func (c TessellationConfig) Validate() error {
	if c.PatchVertices != 1 {
		return fmt.Errorf("%w: patch vertices must be 1, got %d", ErrInvalidTessellation, c.PatchVertices)
	}
	if c.MinLevel < 1 || c.MaxLevel < c.MinLevel || c.MaxLevel > maxTessLevel {
		return fmt.Errorf("%w: levels must satisfy 1 <= min <= max <= %d, got %g..%g",
			ErrInvalidTessellation, maxTessLevel, c.MinLevel, c.MaxLevel)
	}
	if c.Adaptive && !(c.LODDistance > 0) {
		return fmt.Errorf("%w: adaptive tessellation needs a positive LOD distance", ErrInvalidTessellation)
	}
	return nil
}

// Level returns the tessellation level used for a blade at distance dist
// from the camera. It mirrors the tessellation control shader.
func (c TessellationConfig) Level(dist float32) float32 {
	if !c.Adaptive {
		return c.MaxLevel
	}
	t := mgl32.Clamp(dist/c.LODDistance, 0, 1)
	return c.MaxLevel + (c.MinLevel-c.MaxLevel)*t
}

// GrassStage draws the blade buffers as tessellated patches through the
// indirect command.
type GrassStage struct {
	program  uint32
	uniforms map[string]int32
	vaos     [2]uint32
	buffers  *gpu.BladeBuffers
	cfg      TessellationConfig
}

// NewGrassStage builds the render program and one vertex array per blade buffer
func NewGrassStage(provider shaders.Provider, buffers *gpu.BladeBuffers, cfg TessellationConfig, lightDirection mgl32.Vec3) (*GrassStage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	program, err := shaders.BuildProgram(provider, shaders.GrassProgram,
		shaders.StageVertex, shaders.StageTessControl, shaders.StageTessEval, shaders.StageFragment)
	if err != nil {
		return nil, fmt.Errorf("failed to build grass render program: %w", err)
	}

	gs := &GrassStage{
		program: program,
		uniforms: shaders.UniformLocations(program,
			"view", "projection", "camera_position", "min_level", "max_level",
			"lod_distance", "adaptive", "light_direction"),
		buffers: buffers,
		cfg:     cfg,
	}

	gl.GenVertexArrays(2, &gs.vaos[0])
	for i := range gs.vaos {
		gl.BindVertexArray(gs.vaos[i])
		gl.BindBuffer(gl.ARRAY_BUFFER, buffers.Blades(i))
		for attr := uint32(0); attr < 4; attr++ {
			gl.VertexAttribPointer(attr, 4, gl.FLOAT, false, core.BladeRecordSize, gl.PtrOffset(int(attr)*16))
			gl.EnableVertexAttribArray(attr)
		}
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.UseProgram(program)
	gl.Uniform1f(gs.uniforms["min_level"], cfg.MinLevel)
	gl.Uniform1f(gs.uniforms["max_level"], cfg.MaxLevel)
	gl.Uniform1f(gs.uniforms["lod_distance"], cfg.LODDistance)
	adaptive := int32(0)
	if cfg.Adaptive {
		adaptive = 1
	}
	gl.Uniform1i(gs.uniforms["adaptive"], adaptive)
	light := lightDirection.Normalize()
	gl.Uniform3f(gs.uniforms["light_direction"], light[0], light[1], light[2])

	return gs, nil
}

// SetCamera uploads the view state
func (gs *GrassStage) SetCamera(camera core.CameraState) {
	gl.UseProgram(gs.program)
	gl.UniformMatrix4fv(gs.uniforms["view"], 1, false, &camera.View[0])
	gl.UniformMatrix4fv(gs.uniforms["projection"], 1, false, &camera.Projection[0])
	gl.Uniform3f(gs.uniforms["camera_position"], camera.Position[0], camera.Position[1], camera.Position[2])
}

// Draw issues the indirect draw reading blade buffer i
func (gs *GrassStage) Draw(i int) {
	gl.UseProgram(gs.program)
	gl.BindVertexArray(gs.vaos[i])
	gl.PatchParameteri(gl.PATCH_VERTICES, int32(gs.cfg.PatchVertices))
	gl.BindBuffer(gl.DRAW_INDIRECT_BUFFER, gs.buffers.Indirect())
	gl.DrawArraysIndirect(gl.PATCHES, gl.PtrOffset(0))
	gl.BindBuffer(gl.DRAW_INDIRECT_BUFFER, 0)
	gl.BindVertexArray(0)
}

// Release deletes the program and vertex arrays
func (gs *GrassStage) Release() {
	gl.DeleteVertexArrays(2, &gs.vaos[0])
	gl.DeleteProgram(gs.program)
}
