package simulation

import "github.com/chewxy/math32"

// DefaultMaxDelta caps a single tick at 100ms
const DefaultMaxDelta = 0.1

// TimeStep turns wall clock gaps into simulation deltas. Long stalls (window
// drags, breakpoints) are clamped so the spring model never takes a huge step.
type TimeStep struct {
	MaxDelta float32 // seconds
	Speed    float32 // simulation seconds per wall second

	CurrentStep float32 // delta returned by the last Next
	Clamped     uint64 // ticks whose delta was cut to MaxDelta
}

// NewTimeStep creates a time stepper running at normal speed
func NewTimeStep(maxDelta float32) *TimeStep {
	if !(maxDelta > 0) {
		maxDelta = DefaultMaxDelta
	}
	return &TimeStep{
		MaxDelta: maxDelta,
		Speed:    1,
	}
}

// Next converts elapsed wall seconds into the next simulation delta in
// [0, MaxDelta]. Negative and non-finite gaps become 0.
func (ts *TimeStep) Next(elapsed float64) float32 {
	dt := float32(elapsed)
	if math32.IsNaN(dt) || math32.IsInf(dt, 0) || dt < 0 {
		dt = 0
	}
	speed := ts.Speed
	if math32.IsNaN(speed) || speed < 0 {
		speed = 0
	}
	dt *= speed
	if dt > ts.MaxDelta {
		dt = ts.MaxDelta
		ts.Clamped++
	}
	ts.CurrentStep = dt
	return dt
}
