package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"grassrenderer/physics"
	"grassrenderer/simulation"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, 160000, s.FieldConfig().Count())
	assert.Equal(t, float32(0.1), s.MaxDelta())
	assert.Equal(t, float32(4), s.PhysicsParams().RecoveryRate)
	assert.Equal(t, physics.DefaultParams().MinRecovery, s.PhysicsParams().MinRecovery)
	assert.Equal(t, uint32(1), s.Tessellation.PatchVertices)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"zero window", func(s *Settings) { s.Window.Width = 0 }},
		{"empty field", func(s *Settings) { s.Field.Columns = 0 }},
		{"jitter wider than spacing", func(s *Settings) { s.Field.Jitter = 1 }},
		{"bad wind", func(s *Settings) { s.Wind.WavePeriod = 0 }},
		{"zero recovery", func(s *Settings) { s.Simulation.RecoveryRate = 0 }},
		{"zero max delta", func(s *Settings) { s.Simulation.MaxDeltaMs = 0 }},
		{"port out of range", func(s *Settings) { s.Server.Port = 70000 }},
		{"zero broadcast interval", func(s *Settings) { s.Server.UpdateIntervalMs = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.modify(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeSettings(t, `{
		"field": {"columns": 20, "rows": 10, "seed": 9},
		"wind": {"magnitude": 2.5, "gusts": {"strength": 0.3}},
		"server": {"port": 0},
		"log": {"level": "debug"}
	}`)
	s, err := Load(path, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 200, s.FieldConfig().Count())
	assert.Equal(t, uint64(9), s.FieldConfig().Seed)
	assert.Equal(t, Default().Field.Spacing, s.Field.Spacing)
	assert.Equal(t, float32(2.5), s.Wind.Magnitude)
	assert.Equal(t, float32(1), s.Wind.WaveLength)
	assert.Equal(t, float32(0.3), s.Wind.Gusts.Strength)
	assert.Equal(t, float32(0.2), s.Wind.Gusts.Frequency)
	assert.Equal(t, 0, s.Server.Port)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, Default().Window, s.Window)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	_, err := Load(writeSettings(t, `{"window": `), zap.NewNop())
	assert.Error(t, err)

	_, err = Load(writeSettings(t, `{"wind": {"waveLength": -2}}`), zap.NewNop())
	assert.ErrorIs(t, err, simulation.ErrInvalidWind)
}

func TestLoadWind(t *testing.T) {
	p, err := LoadWind(writeSettings(t, `{"window": {"width": 10}, "wind": {"heading": 45, "wavePeriod": 3}}`))
	require.NoError(t, err)
	want := simulation.DefaultWindParams()
	want.Heading = 45
	want.WavePeriod = 3
	assert.Equal(t, want, p)

	_, err = LoadWind(writeSettings(t, `{"window": {}}`))
	assert.Error(t, err)

	_, err = LoadWind(writeSettings(t, `{"wind": {"magnitude": -1}}`))
	assert.ErrorIs(t, err, simulation.ErrInvalidWind)

	_, err = LoadWind(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
