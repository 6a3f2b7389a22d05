package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDrawCommand(t *testing.T) {
	cmd := NewDrawCommand(160000, 1)
	assert.Equal(t, uint32(160000), cmd.VertexCount)
	assert.Equal(t, uint32(1), cmd.InstanceCount)
	assert.Zero(t, cmd.FirstVertex)
	assert.Zero(t, cmd.BaseInstance)
	assert.Equal(t, uint32(160000), cmd.PrimitiveCount(1))
	require.NoError(t, cmd.Validate(160000, 1))
}

func TestDrawCommandValidate(t *testing.T) {
	tests := []struct {
		name          string
		cmd           DrawArraysIndirectCommand
		capacity      int
		patchVertices uint32
		wantErr       bool
	}{
		{"exact", NewDrawCommand(10, 1), 10, 1, false},
		{"fewer than capacity", NewDrawCommand(4, 1), 10, 1, false},
		{"overflow", NewDrawCommand(11, 1), 10, 1, true},
		{"offset overflow", DrawArraysIndirectCommand{VertexCount: 8, InstanceCount: 1, FirstVertex: 4}, 10, 1, true},
		{"zero patch vertices", NewDrawCommand(4, 1), 10, 0, true},
		{"partial patch", DrawArraysIndirectCommand{VertexCount: 5, InstanceCount: 1}, 10, 2, true},
		{"multi vertex patches", NewDrawCommand(5, 2), 5, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate(tt.capacity, tt.patchVertices)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDescriptorOverflow)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDrawCommandLayout(t *testing.T) {
	cmd := DrawArraysIndirectCommand{VertexCount: 5, InstanceCount: 1, FirstVertex: 2, BaseInstance: 3}
	data, err := cmd.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0}, data)

	var back DrawArraysIndirectCommand
	require.NoError(t, back.UnmarshalBinary(data))
	assert.Equal(t, cmd, back)
	assert.Error(t, back.UnmarshalBinary(data[:8]))
}
