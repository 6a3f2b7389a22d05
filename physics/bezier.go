package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"grassrenderer/core"
)

// BladeVertex is one vertex the tessellation evaluation stage emits
type BladeVertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	V        float32 // parameter along the blade, 0 at the root and 1 at the tip
}

// CurvePoint evaluates the blade centerline at t using De Casteljau on
// (v0, v2, v1). It returns the point and the unnormalized tangent.
func CurvePoint(b core.BladeRecord, t float32) (mgl32.Vec3, mgl32.Vec3) {
	p0, guide, tip := b.Position(), b.V2.Vec3(), b.V1.Vec3()
	a := p0.Add(guide.Sub(p0).Mul(t))
	c := guide.Add(tip.Sub(guide).Mul(t))
	return a.Add(c.Sub(a).Mul(t)), c.Sub(a)
}

// CurveLength is the length estimate the simulation keeps equal to the height
func CurveLength(b core.BladeRecord) float32 {
	return estimateLength(b.Position(), b.V2.Vec3(), b.V1.Vec3())
}

// Bitangent is the direction the blade's width spans
func Bitangent(b core.BladeRecord) mgl32.Vec3 {
	return mgl32.Vec3{math32.Cos(b.Orientation()), 0, math32.Sin(b.Orientation())}
}

// EvaluateBlade mirrors the tessellation evaluation stage for the quad domain
// coordinate (u, v): u spans the width, v runs from root to tip. The width
// tapers linearly to zero at the tip.
func EvaluateBlade(b core.BladeRecord, u, v float32) BladeVertex {
	center, tangent := CurvePoint(b, v)
	bitangent := Bitangent(b)
	half := b.Width() * (1 - v) * 0.5

	left := center.Sub(bitangent.Mul(half))
	right := center.Add(bitangent.Mul(half))
	pos := left.Add(right.Sub(left).Mul(u))

	normal := tangent.Cross(bitangent)
	if l := normal.Len(); l > 1e-8 {
		normal = normal.Mul(1 / l)
	} else {
		normal = mgl32.Vec3{0, 0, 1}
	}
	return BladeVertex{Position: pos, Normal: normal, V: v}
}

// CrossSections returns the left and right edge vertices for levels+1 evenly
// spaced cross sections, the same strip the GPU emits for a tessellation level.
func CrossSections(b core.BladeRecord, levels int) [][2]BladeVertex {
	if levels < 1 {
		levels = 1
	}
	out := make([][2]BladeVertex, levels+1)
	for i := 0; i <= levels; i++ {
		v := float32(i) / float32(levels)
		out[i] = [2]BladeVertex{EvaluateBlade(b, 0, v), EvaluateBlade(b, 1, v)}
	}
	return out
}
