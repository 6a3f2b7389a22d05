package gpu

import "grassrenderer/core"

// SimulationBackend runs the blade physics over a pair of buffers. Buffer
// indices are 0 or 1 and name the two halves of the ping-pong pair.
type SimulationBackend interface {
	// SetWind uploads the per-frame wind uniforms
	SetWind(wind core.WindState)
	// DispatchSimulation reads buffer src and writes buffer dst
	DispatchSimulation(src, dst int)
	BladeCount() int
	Release()
}

// RenderBackend draws the blades a simulation just wrote
type RenderBackend interface {
	// SetCamera uploads the per-frame camera uniforms
	SetCamera(camera core.CameraState)
	// MemoryBarrier makes earlier shader writes visible to the stages named by bits
	MemoryBarrier(bits uint32)
	// DrawIndirect draws every blade of buffer using the indirect command
	DrawIndirect(buffer int)
}
