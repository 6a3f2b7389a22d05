package config

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"grassrenderer/simulation"
)

func startWatcher(t *testing.T, path string, control *simulation.WindControl) (*Watcher, *atomic.Int32, *atomic.Int32) {
	t.Helper()
	obs, logs := observer.New(zapcore.DebugLevel)
	w, err := NewWatcher(zap.New(obs), path, control)
	require.NoError(t, err)
	w.debounce = 20 * time.Millisecond

	var ok, rejected atomic.Int32
	w.OnReload(func(good bool) {
		if good {
			ok.Add(1)
		} else {
			rejected.Add(1)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	require.Eventually(t, func() bool {
		return logs.FilterMessage("Watching settings for wind changes").Len() > 0
	}, 2*time.Second, 5*time.Millisecond)
	return w, &ok, &rejected
}

func TestWatcherAppliesWindChanges(t *testing.T) {
	path := writeSettings(t, `{"wind": {"magnitude": 1}}`)
	control := simulation.NewWindControl(simulation.DefaultWindParams())
	_, ok, _ := startWatcher(t, path, control)

	require.NoError(t, os.WriteFile(path, []byte(`{"wind": {"magnitude": 4, "heading": 90}}`), 0o644))
	require.Eventually(t, func() bool {
		p, _ := control.Snapshot()
		return p.Magnitude == 4
	}, 3*time.Second, 10*time.Millisecond)

	p, _ := control.Snapshot()
	assert.Equal(t, float32(90), p.Heading)
	assert.GreaterOrEqual(t, ok.Load(), int32(1))
}

func TestWatcherKeepsWindOnBadFile(t *testing.T) {
	path := writeSettings(t, `{"wind": {"magnitude": 1}}`)
	start := simulation.DefaultWindParams()
	start.Magnitude = 2
	control := simulation.NewWindControl(start)
	_, _, rejected := startWatcher(t, path, control)

	require.NoError(t, os.WriteFile(path, []byte(`{"wind": {"waveLength": 0}}`), 0o644))
	require.Eventually(t, func() bool { return rejected.Load() > 0 }, 3*time.Second, 10*time.Millisecond)

	p, v := control.Snapshot()
	assert.Equal(t, start, p)
	assert.Zero(t, v)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	path := writeSettings(t, `{"wind": {"magnitude": 1}}`)
	w, err := NewWatcher(zap.NewNop(), path, simulation.NewWindControl(simulation.DefaultWindParams()))
	require.NoError(t, err)
	defer w.watcher.Close()

	assert.False(t, w.shouldProcessEvent(fsnotify.Event{Name: w.path + ".swp", Op: fsnotify.Write}))
	assert.True(t, w.shouldProcessEvent(fsnotify.Event{Name: w.path, Op: fsnotify.Write}))
	assert.True(t, w.shouldProcessEvent(fsnotify.Event{Name: w.path, Op: fsnotify.Create}))
	assert.False(t, w.shouldProcessEvent(fsnotify.Event{Name: w.path, Op: fsnotify.Chmod}))
}
