package core

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// DrawCommandSize is the size of DrawArraysIndirectCommand in bytes
const DrawCommandSize = 16

// ErrDescriptorOverflow is returned when a draw command addresses more blades than its buffer holds
var ErrDescriptorOverflow = errors.New("core: indirect draw exceeds blade buffer capacity")

// DrawArraysIndirectCommand is the indirect draw descriptor read by
// glDrawArraysIndirect. Each blade is submitted as one patch of
// patchVertices control points, so VertexCount is blades*patchVertices.
type DrawArraysIndirectCommand struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	BaseInstance  uint32
}

// NewDrawCommand builds the descriptor for a blade buffer. Instance count
// stays at 1: every blade is its own patch, never an instance.
func NewDrawCommand(blades int, patchVertices uint32) DrawArraysIndirectCommand {
	return DrawArraysIndirectCommand{
		VertexCount:   uint32(blades) * patchVertices,
		InstanceCount: 1,
	}
}

// PrimitiveCount is the number of patches (blades) the command draws
func (c DrawArraysIndirectCommand) PrimitiveCount(patchVertices uint32) uint32 {
	if patchVertices == 0 {
		return 0
	}
	return c.VertexCount / patchVertices * c.InstanceCount
}

// Validate checks the command against the capacity of the blade buffer it draws from
func (c DrawArraysIndirectCommand) Validate(capacity int, patchVertices uint32) error {
	if patchVertices == 0 {
		return fmt.Errorf("%w: zero vertices per patch", ErrDescriptorOverflow)
	}
	if c.VertexCount%patchVertices != 0 {
		return fmt.Errorf("%w: vertex count %d is not a multiple of %d", ErrDescriptorOverflow, c.VertexCount, patchVertices)
	}
	last := uint64(c.FirstVertex)/uint64(patchVertices) + uint64(c.PrimitiveCount(patchVertices))
	if last > uint64(capacity) {
		return fmt.Errorf("%w: %d blades requested, %d available", ErrDescriptorOverflow, last, capacity)
	}
	return nil
}

// MarshalBinary encodes the command in the layout the GPU reads
func (c DrawArraysIndirectCommand) MarshalBinary() ([]byte, error) {
	buf := make([]byte, DrawCommandSize)
	binary.LittleEndian.PutUint32(buf[0:], c.VertexCount)
	binary.LittleEndian.PutUint32(buf[4:], c.InstanceCount)
	binary.LittleEndian.PutUint32(buf[8:], c.FirstVertex)
	binary.LittleEndian.PutUint32(buf[12:], c.BaseInstance)
	return buf, nil
}

// UnmarshalBinary decodes the command from its GPU layout
func (c *DrawArraysIndirectCommand) UnmarshalBinary(data []byte) error {
	if len(data) != DrawCommandSize {
		return fmt.Errorf("core: draw command needs %d bytes, got %d", DrawCommandSize, len(data))
	}
	c.VertexCount = binary.LittleEndian.Uint32(data[0:])
	c.InstanceCount = binary.LittleEndian.Uint32(data[4:])
	c.FirstVertex = binary.LittleEndian.Uint32(data[8:])
	c.BaseInstance = binary.LittleEndian.Uint32(data[12:])
	return nil
}
