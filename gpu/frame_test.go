package gpu

import (
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grassrenderer/core"
	"grassrenderer/physics"
)

// recorder logs every backend call in order
type recorder struct {
	calls  []string
	winds  []core.WindState
	blades int
}

func (r *recorder) SetWind(w core.WindState) {
	r.winds = append(r.winds, w)
	r.calls = append(r.calls, "wind")
}

func (r *recorder) DispatchSimulation(src, dst int) {
	r.calls = append(r.calls, fmt.Sprintf("dispatch %d->%d", src, dst))
}

func (r *recorder) BladeCount() int { return r.blades }
func (r *recorder) Release()        {}

func (r *recorder) SetCamera(core.CameraState) {
	r.calls = append(r.calls, "camera")
}

func (r *recorder) MemoryBarrier(bits uint32) {
	r.calls = append(r.calls, fmt.Sprintf("barrier %#x", bits))
}

func (r *recorder) DrawIndirect(buffer int) {
	r.calls = append(r.calls, fmt.Sprintf("draw %d", buffer))
}

func TestFrameSchedulerOrder(t *testing.T) {
	rec := &recorder{blades: 4}
	s := NewFrameScheduler(rec, rec)

	barrier := fmt.Sprintf("barrier %#x", FrameBarrier)
	for frame := 0; frame < 3; frame++ {
		rec.calls = nil
		info := s.RunFrame(core.DefaultWind(), core.CameraState{})

		src, dst := frame%2, 1-frame%2
		assert.Equal(t, []string{
			"wind",
			"camera",
			fmt.Sprintf("dispatch %d->%d", src, dst),
			barrier,
			fmt.Sprintf("draw %d", dst),
		}, rec.calls, "frame %d", frame)

		assert.Equal(t, uint64(frame+1), info.Frame)
		assert.Equal(t, src, info.Read)
		assert.Equal(t, dst, info.Written)
		assert.Equal(t, dst, s.Front(), "the written buffer becomes the front")
	}
	assert.Equal(t, uint64(3), s.Frames())
}

func TestFrameBarrierCoversDrawInputs(t *testing.T) {
	assert.NotZero(t, FrameBarrier&0x00000001, "vertex attribute arrays")
	assert.NotZero(t, FrameBarrier&0x00000040, "indirect commands")
	assert.NotZero(t, FrameBarrier&0x00002000, "shader storage")
}

func TestFrameSchedulerSanitizesWind(t *testing.T) {
	rec := &recorder{}
	s := NewFrameScheduler(rec, rec)
	s.RunFrame(core.WindState{WaveLength: 0, WavePeriod: 0, DeltaTime: -1}, core.CameraState{})

	require.Len(t, rec.winds, 1)
	w := rec.winds[0]
	assert.Equal(t, float32(core.MinWindScale), w.WaveLength)
	assert.Equal(t, float32(core.MinWindScale), w.WavePeriod)
	assert.Zero(t, w.DeltaTime)
}

func TestPingPong(t *testing.T) {
	var p PingPong
	assert.Equal(t, 0, p.Front())
	assert.Equal(t, 1, p.Back())
	p.Swap()
	assert.Equal(t, 1, p.Front())
	assert.Equal(t, 0, p.Back())
	p.Swap()
	assert.Equal(t, 0, p.Front())
}

func TestDispatchSize(t *testing.T) {
	tests := []struct {
		blades int
		max    uint32
		want   [3]uint32
	}{
		{0, 65535, [3]uint32{0, 1, 1}},
		{-3, 65535, [3]uint32{0, 1, 1}},
		{1, 65535, [3]uint32{1, 1, 1}},
		{65535, 65535, [3]uint32{65535, 1, 1}},
		{160000, 65535, [3]uint32{65535, 3, 1}},
		{160000, 0, [3]uint32{65535, 3, 1}},
		{160000, 1 << 31, [3]uint32{160000, 1, 1}},
		{10, 4, [3]uint32{4, 3, 1}},
	}
	for _, tt := range tests {
		got := DispatchSize(tt.blades, tt.max)
		assert.Equal(t, tt.want, got, "blades=%d max=%d", tt.blades, tt.max)
		if tt.blades > 0 {
			// every blade gets a group
			assert.GreaterOrEqual(t, uint64(got[0])*uint64(got[1]), uint64(tt.blades))
		}
	}
}

func TestCPUSimulatorThroughScheduler(t *testing.T) {
	cfg := core.DefaultFieldConfig()
	cfg.Columns, cfg.Rows, cfg.Seed = 10, 10, 8
	blades, err := core.GenerateField(cfg)
	require.NoError(t, err)
	initial := append([]core.BladeRecord(nil), blades...)

	sim := NewCPUSimulator(blades, physics.DefaultParams())
	defer sim.Release()
	rec := &recorder{}
	s := NewFrameScheduler(sim, rec)
	assert.Equal(t, len(initial), sim.BladeCount())

	calm := core.DefaultWind()
	calm.Magnitude = 0
	calm.DeltaTime = 0.016
	for i := 0; i < 10; i++ {
		s.RunFrame(calm, core.CameraState{})
	}
	front := sim.Buffer(s.Front())
	for i := range initial {
		assert.InDelta(t, 0, front[i].V1.Vec3().Sub(initial[i].V1.Vec3()).Len(), 1e-5)
	}

	windy := core.DefaultWind()
	windy.Magnitude = 4
	windy.DeltaTime = 0.016
	windy.Direction = mgl32.Vec2{0, 1}
	for i := 0; i < 10; i++ {
		windy.Time += 0.016
		s.RunFrame(windy, core.CameraState{})
	}
	front = sim.Buffer(s.Front())
	moved := 0
	for i := range initial {
		if front[i].V1.Vec3().Sub(initial[i].V1.Vec3()).Len() > 1e-4 {
			moved++
		}
		assert.Equal(t, initial[i].V0, front[i].V0)
	}
	assert.Positive(t, moved)
}
