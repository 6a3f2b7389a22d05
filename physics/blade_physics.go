package physics

import (
	"runtime"
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"grassrenderer/core"
)

// Params are the tunables of the bending model shared with the compute shader
type Params struct {
	// RecoveryRate scales how fast a blade springs back toward its rest pose.
	// The effective rate is RecoveryRate * (MinRecovery + stiffness) per second.
	RecoveryRate float32
	// MinRecovery lets blades with zero stiffness still return to rest
	MinRecovery float32
}

// DefaultParams matches the constants baked into the compute shader
func DefaultParams() Params {
	return Params{RecoveryRate: 4, MinRecovery: 0.25}
}

// minBladesPerWorker keeps tiny fields on a single goroutine
const minBladesPerWorker = 1024

// Step advances every blade in src by one tick and writes the result to dst.
// src and dst must have the same length and must not alias; this is the CPU
// counterpart of the grass compute shader.
func Step(dst, src []core.BladeRecord, wind core.WindState, params Params) {
	if len(dst) != len(src) {
		panic("physics: Step needs equally sized front and back buffers")
	}
	wind = wind.Sanitize()

	workers := runtime.NumCPU()
	if limit := len(src) / minBladesPerWorker; limit < workers {
		workers = limit
	}
	if workers <= 1 {
		for i := range src {
			dst[i] = StepBlade(src[i], wind, params)
		}
		return
	}

	var wg sync.WaitGroup
	chunk := (len(src) + workers - 1) / workers
	for start := 0; start < len(src); start += chunk {
		end := min(start+chunk, len(src))
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				dst[i] = StepBlade(src[i], wind, params)
			}
		}(start, end)
	}
	wg.Wait()
}

// WindForce is the traveling-wave wind acting on a blade at its current bend
func WindForce(b core.BladeRecord, wind core.WindState) mgl32.Vec3 {
	p0 := b.Position()
	up := b.UpVector()
	h := b.Height()

	dir := mgl32.Vec3{wind.Direction[0], 0, wind.Direction[1]}
	phase := 2 * math32.Pi * (wind.Time/wind.WavePeriod + (p0.X()*wind.Direction[0]+p0.Z()*wind.Direction[1])/wind.WaveLength)
	amount := wind.Magnitude * math32.Sin(phase)

	// blades facing into the wind catch more of it
	facing := mgl32.Vec3{math32.Cos(b.Orientation()), 0, math32.Sin(b.Orientation())}
	align := 1 - math32.Abs(dir.Dot(facing))*0.5

	heightRatio := clampf(b.V1.Vec3().Sub(p0).Dot(up)/h, 0, 1)
	return dir.Mul(amount * align * heightRatio)
}

// StepBlade advances a single blade with an already sanitized wind. v0 and
// up never change; only the tip (v1) and guide (v2) control points move.
func StepBlade(b core.BladeRecord, wind core.WindState, params Params) core.BladeRecord {
	p0 := b.Position()
	up := b.UpVector()
	h := b.Height()
	s := b.Stiffness()
	dt := wind.DeltaTime

	rest := p0.Add(up.Mul(h))
	d := b.V1.Vec3().Sub(rest)

	force := WindForce(b, wind)
	decay := math32.Exp(-params.RecoveryRate * (math32.Max(params.MinRecovery, 0) + s) * dt)
	d = d.Mul(decay).Add(force.Mul(dt * (1 - 0.75*s)))

	tip := rest.Add(d)
	// keep the tip above the ground plane of the blade
	tip = tip.Sub(up.Mul(math32.Min(up.Dot(tip.Sub(p0)), 0)))

	guide := GuidePoint(p0, tip, up, h)
	guide, tip = PreserveLength(p0, guide, tip, h)

	return core.BladeRecord{
		V0: b.V0,
		V1: tip.Vec4(h),
		V2: guide.Vec4(b.Width()),
		Up: b.Up,
	}
}

// GuidePoint places the interior control point above the root so the curve
// bends smoothly toward the tip.
func GuidePoint(p0, tip, up mgl32.Vec3, h float32) mgl32.Vec3 {
	rel := tip.Sub(p0)
	lproj := rel.Sub(up.Mul(rel.Dot(up))).Len()
	ratio := lproj / h
	return p0.Add(up.Mul(h * math32.Max(1-ratio, 0.05*math32.Max(ratio, 1))))
}

// PreserveLength rescales the control polygon so the curve length stays close
// to the blade height.
func PreserveLength(p0, guide, tip mgl32.Vec3, h float32) (mgl32.Vec3, mgl32.Vec3) {
	l := estimateLength(p0, guide, tip)
	if l <= 0 {
		return guide, tip
	}
	r := h / l
	newGuide := p0.Add(guide.Sub(p0).Mul(r))
	newTip := newGuide.Add(tip.Sub(guide).Mul(r))
	return newGuide, newTip
}

// estimateLength approximates the arc length of a quadratic curve from its
// chord and control polygon lengths
func estimateLength(p0, guide, tip mgl32.Vec3) float32 {
	l0 := tip.Sub(p0).Len()
	l1 := guide.Sub(p0).Len() + tip.Sub(guide).Len()
	return (2*l0 + l1) / 3
}

func clampf(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
