package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MinWindScale is the smallest wavelength or period the simulation accepts
const MinWindScale = 1e-4

// WindState is the per-frame input of the simulation stage. It is passed by
// value and overwritten wholesale every frame.
type WindState struct {
	Time       float32    // simulation clock, seconds
	DeltaTime  float32    // seconds since the previous tick
	Magnitude  float32    // wind strength
	WaveLength float32    // spatial wavelength of the traveling wave
	WavePeriod float32    // temporal period of the traveling wave, seconds
	Direction  mgl32.Vec2 // planar (x, z) direction the wave travels
}

// DefaultWind matches the parameters the renderer starts with
func DefaultWind() WindState {
	return WindState{
		Magnitude:  1,
		WaveLength: 1,
		WavePeriod: 1,
		Direction:  mgl32.Vec2{1, 0},
	}
}

// Sanitize returns a copy that is safe to feed to the simulation. Non-finite
// values are zeroed, wavelength and period are clamped away from zero and the
// direction is normalized (falling back to +X).
func (w WindState) Sanitize() WindState {
	w.Time = finiteOr(w.Time, 0)
	w.DeltaTime = finiteOr(w.DeltaTime, 0)
	if w.DeltaTime < 0 {
		w.DeltaTime = 0
	}
	w.Magnitude = finiteOr(w.Magnitude, 0)
	w.WaveLength = clampScale(w.WaveLength)
	w.WavePeriod = clampScale(w.WavePeriod)

	dx, dz := finiteOr(w.Direction[0], 0), finiteOr(w.Direction[1], 0)
	if l := math32.Hypot(dx, dz); l > 1e-6 {
		w.Direction = mgl32.Vec2{dx / l, dz / l}
	} else {
		w.Direction = mgl32.Vec2{1, 0}
	}
	return w
}

func clampScale(v float32) float32 {
	v = finiteOr(v, MinWindScale)
	if math32.Abs(v) < MinWindScale {
		if v < 0 {
			return -MinWindScale
		}
		return MinWindScale
	}
	return v
}

func finiteOr(v, fallback float32) float32 {
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		return fallback
	}
	return v
}
