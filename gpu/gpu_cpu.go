package gpu

import (
	"grassrenderer/core"
	"grassrenderer/physics"
)

// CPUSimulator implements SimulationBackend on the CPU. It runs the same
// bending model as the compute shader and is used headless and in tests.
type CPUSimulator struct {
	buffers [2][]core.BladeRecord
	wind    core.WindState
	params  physics.Params
}

// NewCPUSimulator takes ownership of blades as the initial front buffer
func NewCPUSimulator(blades []core.BladeRecord, params physics.Params) *CPUSimulator {
	back := make([]core.BladeRecord, len(blades))
	copy(back, blades)
	return &CPUSimulator{
		buffers: [2][]core.BladeRecord{blades, back},
		params:  params,
	}
}

// SetWind records the wind for the next dispatch
func (c *CPUSimulator) SetWind(wind core.WindState) {
	c.wind = wind
}

// DispatchSimulation steps every blade from buffer src into buffer dst
func (c *CPUSimulator) DispatchSimulation(src, dst int) {
	physics.Step(c.buffers[dst], c.buffers[src], c.wind, c.params)
}

// BladeCount is the number of blades in each buffer
func (c *CPUSimulator) BladeCount() int {
	return len(c.buffers[0])
}

// Buffer exposes one half of the pair for inspection
func (c *CPUSimulator) Buffer(i int) []core.BladeRecord {
	return c.buffers[i]
}

// Release drops both buffers
func (c *CPUSimulator) Release() {
	c.buffers = [2][]core.BladeRecord{}
}
