package overlay

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"grassrenderer/rendering/opengl/shaders"
)

// Each vertex has 6 floats: 2 for position, 4 for color
const floatsPerVertex = 6

// Bar layout in pixels, top left corner
const (
	panelX      = 10
	panelY      = 10
	panelWidth  = 260
	barHeight   = 14
	barSpacing  = 8
	panelMargin = 8
)

var (
	panelColor      = mgl32.Vec4{0.0, 0.0, 0.0, 0.45}
	windColor       = mgl32.Vec4{0.35, 0.75, 1.0, 0.9}
	frameTimeColor  = mgl32.Vec4{0.3, 1.0, 0.3, 0.9}
	overBudgetColor = mgl32.Vec4{1.0, 0.3, 0.2, 0.9}
	textColor       = mgl32.Vec4{0.95, 0.95, 0.95, 1.0}
)

// Stats is what the HUD shows for one frame
type Stats struct {
	WindMagnitude    float32
	MaxWindMagnitude float32
	FrameTime        float32 // seconds
	FrameBudget      float32 // seconds, e.g. 1/60
	FPS              float32
}

// Fill returns a bar fill fraction in [0, 1]
func Fill(value, full float32) float32 {
	if full <= 0 || math32.IsNaN(value) {
		return 0
	}
	f := value / full
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// appendQuad appends two triangles covering the rectangle
func appendQuad(dst []float32, x, y, w, h float32, c mgl32.Vec4) []float32 {
	return append(dst,
		x, y, c[0], c[1], c[2], c[3],
		x+w, y, c[0], c[1], c[2], c[3],
		x, y+h, c[0], c[1], c[2], c[3],
		x+w, y, c[0], c[1], c[2], c[3],
		x+w, y+h, c[0], c[1], c[2], c[3],
		x, y+h, c[0], c[1], c[2], c[3],
	)
}

// Vertices builds the panel, both bars and the FPS readout
func Vertices(s Stats) []float32 {
	inner := float32(panelWidth - 2*panelMargin)
	panelHeight := float32(2*panelMargin + 3*barHeight + 2*barSpacing)

	v := make([]float32, 0, 24*6*floatsPerVertex)
	v = appendQuad(v, panelX, panelY, panelWidth, panelHeight, panelColor)

	x := float32(panelX + panelMargin)
	y := float32(panelY + panelMargin)
	v = appendQuad(v, x, y, inner*Fill(s.WindMagnitude, s.MaxWindMagnitude), barHeight, windColor)

	color := frameTimeColor
	if s.FrameBudget > 0 && s.FrameTime > s.FrameBudget {
		color = overBudgetColor
	}
	// a full bar is two frame budgets
	v = appendQuad(v, x, y+barHeight+barSpacing, inner*Fill(s.FrameTime, 2*s.FrameBudget), barHeight, color)

	fps := 0
	if s.FPS > 0 && s.FPS < 1e6 {
		fps = int(math32.Round(s.FPS))
	}
	return appendNumber(v, x, y+2*(barHeight+barSpacing), fps, textColor)
}

// StatsOverlay renders the wind and frame time bars with an FPS counter
type StatsOverlay struct {
	program    uint32
	projection int32
	vao        uint32
	vbo        uint32

	width  float32
	height float32

	stats Stats
}

// NewStatsOverlay creates a stats overlay renderer
func NewStatsOverlay(provider shaders.Provider, width, height int) (*StatsOverlay, error) {
	program, err := shaders.BuildProgram(provider, shaders.HUDProgram, shaders.StageVertex, shaders.StageFragment)
	if err != nil {
		return nil, fmt.Errorf("failed to build stats overlay program: %w", err)
	}

	so := &StatsOverlay{
		program:    program,
		projection: shaders.UniformLocations(program, "projection")["projection"],
		width:      float32(width),
		height:     float32(height),
	}

	gl.GenVertexArrays(1, &so.vao)
	gl.GenBuffers(1, &so.vbo)

	gl.BindVertexArray(so.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, so.vbo)

	stride := int32(floatsPerVertex * 4)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, stride, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)

	return so, nil
}

// UpdateStats updates the stats to display
func (so *StatsOverlay) UpdateStats(s Stats) {
	so.stats = s
}

// Render draws the overlay on top of the frame
func (so *StatsOverlay) Render() {
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	gl.UseProgram(so.program)
	projection := mgl32.Ortho2D(0, so.width, so.height, 0)
	gl.UniformMatrix4fv(so.projection, 1, false, &projection[0])

	vertices := Vertices(so.stats)
	gl.BindVertexArray(so.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, so.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.DYNAMIC_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(vertices)/floatsPerVertex))

	gl.Enable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)
	gl.BindVertexArray(0)
}

// UpdateSize updates viewport size
func (so *StatsOverlay) UpdateSize(width, height int) {
	so.width = float32(width)
	so.height = float32(height)
}

// Release cleans up resources
func (so *StatsOverlay) Release() {
	if so.program != 0 {
		gl.DeleteProgram(so.program)
	}
	if so.vao != 0 {
		gl.DeleteVertexArrays(1, &so.vao)
	}
	if so.vbo != 0 {
		gl.DeleteBuffers(1, &so.vbo)
	}
}
