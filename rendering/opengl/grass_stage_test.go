package opengl

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestTessellationConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*TessellationConfig)
		wantErr bool
	}{
		{"default", func(*TessellationConfig) {}, false},
		{"adaptive", func(c *TessellationConfig) { c.Adaptive = true }, false},
		{"single level", func(c *TessellationConfig) { c.MinLevel, c.MaxLevel = 1, 1 }, false},
		{"max level", func(c *TessellationConfig) { c.MaxLevel = 64 }, false},
		{"zero patch vertices", func(c *TessellationConfig) { c.PatchVertices = 0 }, true},
		{"multi vertex patches", func(c *TessellationConfig) { c.PatchVertices = 4 }, true},
		{"level below one", func(c *TessellationConfig) { c.MinLevel = 0.5 }, true},
		{"inverted levels", func(c *TessellationConfig) { c.MinLevel, c.MaxLevel = 8, 2 }, true},
		{"above hardware limit", func(c *TessellationConfig) { c.MaxLevel = 65 }, true},
		{"adaptive without distance", func(c *TessellationConfig) { c.Adaptive, c.LODDistance = true, 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultTessellationConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTessellation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTessellationLevel(t *testing.T) {
	cfg := DefaultTessellationConfig()
	assert.Equal(t, cfg.MaxLevel, cfg.Level(0))
	assert.Equal(t, cfg.MaxLevel, cfg.Level(1000))

	cfg.Adaptive = true
	assert.Equal(t, cfg.MaxLevel, cfg.Level(0))
	assert.Equal(t, cfg.MinLevel, cfg.Level(cfg.LODDistance))
	assert.Equal(t, cfg.MinLevel, cfg.Level(cfg.LODDistance*3))
	assert.InDelta(t, (cfg.MinLevel+cfg.MaxLevel)/2, cfg.Level(cfg.LODDistance/2), 1e-5)
}

func TestGroundModel(t *testing.T) {
	m := GroundModel(mgl32.Vec3{1, 0, -2}, 5)
	corner := m.Mul4x1(mgl32.Vec4{1, 0, 1, 1})
	assert.InDelta(t, 6, corner.X(), 1e-6)
	assert.InDelta(t, 0, corner.Y(), 1e-6)
	assert.InDelta(t, 3, corner.Z(), 1e-6)
}
