package core

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFieldCount(t *testing.T) {
	tests := []struct {
		name          string
		columns, rows int
	}{
		{"single", 1, 1},
		{"row", 7, 1},
		{"square", 2, 2},
		{"rect", 13, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultFieldConfig()
			cfg.Columns, cfg.Rows = tt.columns, tt.rows
			cfg.Seed = 42
			blades, err := GenerateField(cfg)
			require.NoError(t, err)
			assert.Len(t, blades, tt.columns*tt.rows)
			assert.Equal(t, cfg.Count(), len(blades))
		})
	}
}

func TestGenerateFieldBounds(t *testing.T) {
	cfg := DefaultFieldConfig()
	cfg.Columns, cfg.Rows = 40, 30
	cfg.Seed = 7
	blades, err := GenerateField(cfg)
	require.NoError(t, err)

	for i, b := range blades {
		require.NoError(t, b.Validate(), "blade %d", i)
		assert.GreaterOrEqual(t, b.Height(), cfg.HeightMin)
		assert.LessOrEqual(t, b.Height(), cfg.HeightMax)
		assert.GreaterOrEqual(t, b.Stiffness(), float32(0))
		assert.LessOrEqual(t, b.Stiffness(), float32(1))
		assert.GreaterOrEqual(t, b.Orientation(), float32(0))
		assert.Less(t, b.Orientation(), math32.Pi)
		assert.Equal(t, cfg.Width, b.Width())

		// resting pose: tip and guide both at p0 + up*h
		assert.Equal(t, b.RestTip(), b.V1.Vec3())
		assert.Equal(t, b.RestTip(), b.V2.Vec3())
		assert.Equal(t, WorldUp, b.Up.Vec3())
	}
}

// Row-major order, column i at Origin.X + (i - Columns/2)*Spacing.
func TestGenerateFieldTwoByTwo(t *testing.T) {
	cfg := FieldConfig{
		Columns:         2,
		Rows:            2,
		Spacing:         1,
		Jitter:          0,
		HeightMin:       1,
		HeightMax:       1,
		Width:           0.1,
		StiffnessBase:   0.5,
		StiffnessSpread: 0,
		Seed:            1,
	}
	blades, err := GenerateField(cfg)
	require.NoError(t, err)
	require.Len(t, blades, 4)

	want := []mgl32.Vec3{{-1, 0, -1}, {0, 0, -1}, {-1, 0, 0}, {0, 0, 0}}
	for i, b := range blades {
		assert.Equal(t, want[i], b.Position(), "blade %d", i)
		assert.Equal(t, float32(1), b.Height())
		assert.Equal(t, float32(0.5), b.Stiffness())
		assert.Equal(t, want[i].Add(mgl32.Vec3{0, 1, 0}), b.V1.Vec3())
	}
}

func TestGenerateFieldJitterStaysNearCell(t *testing.T) {
	cfg := DefaultFieldConfig()
	cfg.Columns, cfg.Rows = 10, 10
	cfg.Seed = 99
	blades, err := GenerateField(cfg)
	require.NoError(t, err)

	for j := 0; j < cfg.Rows; j++ {
		for i := 0; i < cfg.Columns; i++ {
			b := blades[j*cfg.Columns+i]
			cx := float32(i-cfg.Columns/2) * cfg.Spacing
			cz := float32(j-cfg.Rows/2) * cfg.Spacing
			assert.LessOrEqual(t, math32.Abs(b.Position().X()-cx), cfg.Jitter+1e-6)
			assert.LessOrEqual(t, math32.Abs(b.Position().Z()-cz), cfg.Jitter+1e-6)
		}
	}
}

func TestGenerateFieldSeedIsDeterministic(t *testing.T) {
	cfg := DefaultFieldConfig()
	cfg.Columns, cfg.Rows = 16, 16
	cfg.Seed = 1234

	a, err := GenerateField(cfg)
	require.NoError(t, err)
	b, err := GenerateField(cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	cfg.Seed = 4321
	c, err := GenerateField(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestFieldConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*FieldConfig)
	}{
		{"zero columns", func(c *FieldConfig) { c.Columns = 0 }},
		{"negative rows", func(c *FieldConfig) { c.Rows = -1 }},
		{"zero spacing", func(c *FieldConfig) { c.Spacing = 0 }},
		{"nan spacing", func(c *FieldConfig) { c.Spacing = math32.NaN() }},
		{"negative jitter", func(c *FieldConfig) { c.Jitter = -0.1 }},
		{"jitter wider than cell", func(c *FieldConfig) { c.Jitter = c.Spacing * 2 }},
		{"zero height", func(c *FieldConfig) { c.HeightMin = 0 }},
		{"inverted heights", func(c *FieldConfig) { c.HeightMax = c.HeightMin / 2 }},
		{"zero width", func(c *FieldConfig) { c.Width = 0 }},
		{"stiffness above one", func(c *FieldConfig) { c.StiffnessBase = 0.9 }},
		{"negative spread", func(c *FieldConfig) { c.StiffnessSpread = -0.1 }},
	}
	require.NoError(t, DefaultFieldConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultFieldConfig()
			tt.modify(&cfg)
			_, err := GenerateField(cfg)
			assert.ErrorIs(t, err, ErrInvalidField)
		})
	}
}
