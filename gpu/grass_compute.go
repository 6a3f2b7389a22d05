package gpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"

	"grassrenderer/core"
	"grassrenderer/physics"
	"grassrenderer/rendering/opengl/shaders"
)

// ComputeConfig is fixed at construction
type ComputeConfig struct {
	Params          physics.Params
	PatchVertices   uint32
	WriteDescriptor bool // the shader rewrites the indirect command every tick
}

// GrassCompute runs the blade physics compute shader. One work group per blade.
type GrassCompute struct {
	program    uint32
	uniforms   map[string]int32
	buffers    *BladeBuffers
	cfg        ComputeConfig
	maxGroupsX uint32
}

// NewGrassCompute builds the compute program from the provider
func NewGrassCompute(provider shaders.Provider, buffers *BladeBuffers, cfg ComputeConfig) (*GrassCompute, error) {
	program, err := shaders.BuildProgram(provider, shaders.GrassProgram, shaders.StageCompute)
	if err != nil {
		return nil, fmt.Errorf("failed to build grass compute program: %w", err)
	}

	var maxX int32
	gl.GetIntegeri_v(gl.MAX_COMPUTE_WORK_GROUP_COUNT, 0, &maxX)

	gc := &GrassCompute{
		program: program,
		uniforms: shaders.UniformLocations(program,
			"current_time", "delta_time", "wind_magnitude", "wind_wave_length",
			"wind_wave_period", "wind_direction", "recovery_rate", "min_recovery", "blade_count",
			"patch_vertices", "write_command"),
		buffers:    buffers,
		cfg:        cfg,
		maxGroupsX: uint32(maxX),
	}

	gl.UseProgram(program)
	gl.Uniform1f(gc.uniforms["recovery_rate"], cfg.Params.RecoveryRate)
	gl.Uniform1f(gc.uniforms["min_recovery"], cfg.Params.MinRecovery)
	gl.Uniform1ui(gc.uniforms["blade_count"], uint32(buffers.Count()))
	gl.Uniform1ui(gc.uniforms["patch_vertices"], cfg.PatchVertices)
	writeCommand := int32(0)
	if cfg.WriteDescriptor {
		writeCommand = 1
	}
	gl.Uniform1i(gc.uniforms["write_command"], writeCommand)

	return gc, nil
}

// SetWind uploads the wind uniforms for this frame
func (gc *GrassCompute) SetWind(wind core.WindState) {
	gl.UseProgram(gc.program)
	gl.Uniform1f(gc.uniforms["current_time"], wind.Time)
	gl.Uniform1f(gc.uniforms["delta_time"], wind.DeltaTime)
	gl.Uniform1f(gc.uniforms["wind_magnitude"], wind.Magnitude)
	gl.Uniform1f(gc.uniforms["wind_wave_length"], wind.WaveLength)
	gl.Uniform1f(gc.uniforms["wind_wave_period"], wind.WavePeriod)
	gl.Uniform2f(gc.uniforms["wind_direction"], wind.Direction[0], wind.Direction[1])
}

// DispatchSimulation binds src as the front buffer and dst as the back buffer
// and dispatches one group per blade
func (gc *GrassCompute) DispatchSimulation(src, dst int) {
	gl.UseProgram(gc.program)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, shaders.FrontBladesBinding, gc.buffers.Blades(src))
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, shaders.BackBladesBinding, gc.buffers.Blades(dst))
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, shaders.DrawCommandBinding, gc.buffers.Indirect())

	groups := DispatchSize(gc.buffers.Count(), gc.maxGroupsX)
	gl.DispatchCompute(groups[0], groups[1], groups[2])
}

// BladeCount is the number of blades simulated per dispatch
func (gc *GrassCompute) BladeCount() int {
	return gc.buffers.Count()
}

// Release deletes the compute program; the buffers belong to the caller
func (gc *GrassCompute) Release() {
	gl.DeleteProgram(gc.program)
}
