package gpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"

	"grassrenderer/core"
)

// BladeBuffers owns the two blade SSBOs and the indirect draw buffer. Once
// uploaded the blade data lives only on the GPU.
type BladeBuffers struct {
	blades   [2]uint32
	indirect uint32
	count    int
	command  core.DrawArraysIndirectCommand
}

// NewBladeBuffers uploads blades into both halves of the pair and writes the
// indirect command for patchVertices control points per blade.
func NewBladeBuffers(blades []core.BladeRecord, patchVertices uint32) (*BladeBuffers, error) {
	if len(blades) == 0 {
		return nil, fmt.Errorf("gpu: no blades to upload")
	}

	command := core.NewDrawCommand(len(blades), patchVertices)
	if err := command.Validate(len(blades), patchVertices); err != nil {
		return nil, fmt.Errorf("gpu: indirect command: %w", err)
	}

	data := core.EncodeBlades(nil, blades)
	size := len(data)

	b := &BladeBuffers{count: len(blades), command: command}

	gl.GenBuffers(2, &b.blades[0])
	// front gets the initial field, back the same bytes so a skipped first
	// dispatch never exposes garbage
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.blades[0])
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, gl.Ptr(data), gl.DYNAMIC_COPY)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.blades[1])
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, gl.Ptr(data), gl.DYNAMIC_COPY)

	cmd, _ := command.MarshalBinary()
	gl.GenBuffers(1, &b.indirect)
	gl.BindBuffer(gl.DRAW_INDIRECT_BUFFER, b.indirect)
	gl.BufferData(gl.DRAW_INDIRECT_BUFFER, len(cmd), gl.Ptr(cmd), gl.DYNAMIC_DRAW)

	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
	gl.BindBuffer(gl.DRAW_INDIRECT_BUFFER, 0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		b.Release()
		return nil, fmt.Errorf("gpu: blade buffer upload failed: 0x%x", errCode)
	}
	return b, nil
}

// Blades returns the GL name of buffer i
func (b *BladeBuffers) Blades(i int) uint32 { return b.blades[i] }

// Indirect returns the GL name of the indirect draw buffer
func (b *BladeBuffers) Indirect() uint32 { return b.indirect }

// Count is the number of blade records in each buffer
func (b *BladeBuffers) Count() int { return b.count }

// Command is the indirect command written at creation
func (b *BladeBuffers) Command() core.DrawArraysIndirectCommand { return b.command }

// Release deletes every buffer
func (b *BladeBuffers) Release() {
	gl.DeleteBuffers(2, &b.blades[0])
	gl.DeleteBuffers(1, &b.indirect)
	b.blades = [2]uint32{}
	b.indirect = 0
}
