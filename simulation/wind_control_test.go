package simulation

import (
	"errors"
	"sync"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*WindParams)
		wantErr bool
	}{
		{"default", func(*WindParams) {}, false},
		{"calm", func(p *WindParams) { p.Magnitude = 0 }, false},
		{"negative heading", func(p *WindParams) { p.Heading = -45 }, false},
		{"gusty", func(p *WindParams) { p.Gusts = GustParams{Strength: 0.5, Frequency: 1, DirectionJitter: 20} }, false},
		{"negative magnitude", func(p *WindParams) { p.Magnitude = -1 }, true},
		{"zero wavelength", func(p *WindParams) { p.WaveLength = 0 }, true},
		{"zero period", func(p *WindParams) { p.WavePeriod = 0 }, true},
		{"nan magnitude", func(p *WindParams) { p.Magnitude = math32.NaN() }, true},
		{"inf heading", func(p *WindParams) { p.Heading = math32.Inf(1) }, true},
		{"negative gust strength", func(p *WindParams) { p.Gusts.Strength = -0.1 }, true},
		{"nan jitter", func(p *WindParams) { p.Gusts.DirectionJitter = math32.NaN() }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultWindParams()
			tt.modify(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidWind)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWindParamsDirection(t *testing.T) {
	p := DefaultWindParams()
	d := p.Direction()
	assert.InDelta(t, 1, d[0], 1e-6)
	assert.InDelta(t, 0, d[1], 1e-6)

	p.Heading = 90
	d = p.Direction()
	assert.InDelta(t, 0, d[0], 1e-6)
	assert.InDelta(t, 1, d[1], 1e-6)
}

func TestWindControlSet(t *testing.T) {
	wc := NewWindControl(DefaultWindParams())
	_, v0 := wc.Snapshot()

	next := DefaultWindParams()
	next.Magnitude = 3
	require.NoError(t, wc.Set(next))
	got, v1 := wc.Snapshot()
	assert.Equal(t, next, got)
	assert.Equal(t, v0+1, v1)

	bad := next
	bad.WaveLength = -1
	assert.ErrorIs(t, wc.Set(bad), ErrInvalidWind)
	got, v2 := wc.Snapshot()
	assert.Equal(t, next, got, "rejected update leaves parameters alone")
	assert.Equal(t, v1, v2)
}

func TestWindControlUpdate(t *testing.T) {
	wc := NewWindControl(DefaultWindParams())

	p, err := wc.Update(func(p *WindParams) error {
		p.Heading = 30
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, float32(30), p.Heading)

	p, err = wc.Update(func(p *WindParams) error {
		p.Heading = 60
		p.WavePeriod = 0
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalidWind)
	assert.Equal(t, float32(30), p.Heading)

	decodeErr := errors.New("decode")
	_, err = wc.Update(func(p *WindParams) error {
		p.Heading = 90
		return decodeErr
	})
	assert.ErrorIs(t, err, decodeErr)

	current, version := wc.Snapshot()
	assert.Equal(t, float32(30), current.Heading)
	assert.Equal(t, float32(1), current.WavePeriod)
	assert.Equal(t, uint64(1), version)
}

func TestWindControlConcurrentAccess(t *testing.T) {
	wc := NewWindControl(DefaultWindParams())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				wc.Update(func(p *WindParams) error {
					p.Magnitude++
					return nil
				})
				wc.Snapshot()
			}
		}(i)
	}
	wg.Wait()
	p, v := wc.Snapshot()
	assert.Equal(t, float32(801), p.Magnitude)
	assert.Equal(t, uint64(800), v)
}
