package simulation

import (
	"grassrenderer/core"
)

// Driver produces the WindState for each frame from the wall clock, the
// shared wind parameters and the gust noise.
type Driver struct {
	control *WindControl
	step    *TimeStep
	gusts   *Gusts

	started bool
	last    float64 // wall seconds of the previous frame
	clock   float32 // simulation seconds
	Paused  bool
}

// NewDriver wires a driver to the shared wind control
func NewDriver(control *WindControl, step *TimeStep, gusts *Gusts) *Driver {
	return &Driver{control: control, step: step, gusts: gusts}
}

// Next returns the wind for a frame presented at wall time now (seconds).
// The first call yields a zero delta. While paused the clock holds and the
// delta is 0, which leaves every blade where it is.
func (d *Driver) Next(now float64) core.WindState {
	var dt float32
	if d.started {
		dt = d.step.Next(now - d.last)
	}
	d.started = true
	d.last = now
	if d.Paused {
		dt = 0
	}
	d.clock += dt

	params, _ := d.control.Snapshot()
	magnitude := params.Magnitude
	direction := params.Direction()
	if d.gusts != nil {
		magnitude *= d.gusts.Factor(params.Gusts, d.clock)
		direction = d.gusts.Heading(params.Gusts, direction, d.clock)
	}

	wind := core.WindState{
		Time:       d.clock,
		DeltaTime:  dt,
		Magnitude:  magnitude,
		WaveLength: params.WaveLength,
		WavePeriod: params.WavePeriod,
		Direction:  direction,
	}
	return wind.Sanitize()
}

// Clock is the simulation time in seconds
func (d *Driver) Clock() float32 { return d.clock }
