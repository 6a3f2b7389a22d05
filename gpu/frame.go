package gpu

import (
	"github.com/go-gl/gl/v4.3-core/gl"

	"grassrenderer/core"
)

// FrameBarrier covers every way the render stage consumes what the compute
// stage wrote: blade records as vertex attributes and as storage, and the
// indirect draw command.
const FrameBarrier uint32 = gl.VERTEX_ATTRIB_ARRAY_BARRIER_BIT |
	gl.SHADER_STORAGE_BARRIER_BIT |
	gl.COMMAND_BARRIER_BIT

// FrameInfo describes one executed frame
type FrameInfo struct {
	Frame   uint64
	Read    int // buffer the simulation read
	Written int // buffer the simulation wrote and the draw read
}

// FrameScheduler owns the per-frame ordering between simulation and
// rendering: uniforms, dispatch, barrier, indirect draw, swap. Every frame
// runs the full sequence; a skipped frame simply does not call RunFrame.
type FrameScheduler struct {
	sim     SimulationBackend
	render  RenderBackend
	buffers PingPong
	frames  uint64
}

// NewFrameScheduler ties a simulation backend to a render backend
func NewFrameScheduler(sim SimulationBackend, render RenderBackend) *FrameScheduler {
	return &FrameScheduler{sim: sim, render: render}
}

// RunFrame executes one frame
func (s *FrameScheduler) RunFrame(wind core.WindState, camera core.CameraState) FrameInfo {
	wind = wind.Sanitize()

	s.sim.SetWind(wind)
	s.render.SetCamera(camera)

	src, dst := s.buffers.Front(), s.buffers.Back()
	s.sim.DispatchSimulation(src, dst)
	s.render.MemoryBarrier(FrameBarrier)
	s.render.DrawIndirect(dst)

	s.buffers.Swap()
	s.frames++
	return FrameInfo{Frame: s.frames, Read: src, Written: dst}
}

// Front is the buffer holding the most recent blade state
func (s *FrameScheduler) Front() int { return s.buffers.Front() }

// Frames is the number of frames executed
func (s *FrameScheduler) Frames() uint64 { return s.frames }
