package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"grassrenderer/core"
	"grassrenderer/rendering/opengl/shaders"
)

// Unit quad in the XZ plane, two triangles
var groundVertices = []float32{
	-1, 0, -1,
	1, 0, -1,
	1, 0, 1,
	1, 0, 1,
	-1, 0, 1,
	-1, 0, -1,
}

// Ground is the flat quad under the field
type Ground struct {
	program  uint32
	uniforms map[string]int32
	vao      uint32
	vbo      uint32
	model    mgl32.Mat4
}

// GroundModel scales the unit quad to cover extent around center
func GroundModel(center mgl32.Vec3, halfExtent float32) mgl32.Mat4 {
	return mgl32.Translate3D(center[0], center[1], center[2]).
		Mul4(mgl32.Scale3D(halfExtent, 1, halfExtent))
}

// NewGround uploads the quad
func NewGround(provider shaders.Provider, center mgl32.Vec3, halfExtent float32, color mgl32.Vec3) (*Ground, error) {
	program, err := shaders.BuildProgram(provider, shaders.GroundProgram, shaders.StageVertex, shaders.StageFragment)
	if err != nil {
		return nil, fmt.Errorf("failed to build ground program: %w", err)
	}

	g := &Ground{
		program:  program,
		uniforms: shaders.UniformLocations(program, "model", "view", "projection", "ground_color"),
		model:    GroundModel(center, halfExtent),
	}

	gl.GenVertexArrays(1, &g.vao)
	gl.GenBuffers(1, &g.vbo)
	gl.BindVertexArray(g.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(groundVertices)*4, gl.Ptr(groundVertices), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)

	gl.UseProgram(program)
	gl.UniformMatrix4fv(g.uniforms["model"], 1, false, &g.model[0])
	gl.Uniform3f(g.uniforms["ground_color"], color[0], color[1], color[2])

	return g, nil
}

// SetCamera uploads the view state
func (g *Ground) SetCamera(camera core.CameraState) {
	gl.UseProgram(g.program)
	gl.UniformMatrix4fv(g.uniforms["view"], 1, false, &camera.View[0])
	gl.UniformMatrix4fv(g.uniforms["projection"], 1, false, &camera.Projection[0])
}

// Draw renders the quad
func (g *Ground) Draw() {
	gl.UseProgram(g.program)
	gl.BindVertexArray(g.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(groundVertices)/3))
	gl.BindVertexArray(0)
}

// Release deletes GL objects
func (g *Ground) Release() {
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteVertexArrays(1, &g.vao)
	gl.DeleteProgram(g.program)
}
