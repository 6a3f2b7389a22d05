package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"grassrenderer/config"
	"grassrenderer/core"
)

func TestGroundExtentCoversField(t *testing.T) {
	cfg := core.DefaultFieldConfig()
	cfg.Columns, cfg.Rows, cfg.Seed = 30, 12, 3
	center, half := groundExtent(cfg)

	blades, err := core.GenerateField(cfg)
	require.NoError(t, err)
	for _, b := range blades {
		p := b.Position()
		assert.LessOrEqual(t, mgl32.Abs(p.X()-center.X()), half)
		assert.LessOrEqual(t, mgl32.Abs(p.Z()-center.Z()), half)
	}
}

func TestGroundExtentFollowsOrigin(t *testing.T) {
	cfg := core.DefaultFieldConfig()
	cfg.Columns, cfg.Rows = 2, 2
	cfg.Origin = mgl32.Vec3{10, 1, -4}
	center, _ := groundExtent(cfg)
	assert.InDelta(t, 10-0.05, center.X(), 1e-5)
	assert.InDelta(t, 1, center.Y(), 1e-5)
	assert.InDelta(t, -4-0.05, center.Z(), 1e-5)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, FieldSummary{}, summarize(nil))

	rest := core.NewRestingBlade(mgl32.Vec3{}, 0, 1, 0.1, 0.5, core.WorldUp)
	bent := rest
	bent.V1 = mgl32.Vec4{0.6, 0.8, 0, 1}

	s := summarize([]core.BladeRecord{rest, bent})
	assert.Equal(t, 2, s.Blades)
	want := mgl32.Vec3{0.6, -0.2, 0}.Len()
	assert.InDelta(t, want, s.MaxTipOffset, 1e-6)
	assert.InDelta(t, want/2, s.MeanTipOffset, 1e-6)
	assert.InDelta(t, 0.8, s.MinTipHeight, 1e-6)
}

func TestSimulateWritesBlades(t *testing.T) {
	settings := config.Default()
	settings.Field.Columns, settings.Field.Rows, settings.Field.Seed = 6, 5, 2
	out := filepath.Join(t.TempDir(), "blades.bin")

	err := simulate(settings, &simulateOptions{frames: 30, dt: 1.0 / 60, out: out}, zap.NewNop())
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	blades, err := core.DecodeBlades(data)
	require.NoError(t, err)
	require.Len(t, blades, 30)
	for _, b := range blades {
		assert.NoError(t, b.Validate())
	}
}

func TestSimulateRejectsBadOptions(t *testing.T) {
	settings := config.Default()
	settings.Field.Columns, settings.Field.Rows = 2, 2
	assert.Error(t, simulate(settings, &simulateOptions{frames: 0, dt: 0.1}, zap.NewNop()))
	assert.Error(t, simulate(settings, &simulateOptions{frames: 1, dt: -1}, zap.NewNop()))
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["simulate"])
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
}
