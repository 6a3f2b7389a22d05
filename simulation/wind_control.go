package simulation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidWind is returned for wind parameters that cannot be applied
var ErrInvalidWind = errors.New("simulation: invalid wind parameters")

// WindParams are the user facing wind settings. Heading is in degrees from
// +X towards +Z in the ground plane.
type WindParams struct {
	Magnitude  float32    `json:"magnitude"`
	WaveLength float32    `json:"waveLength"`
	WavePeriod float32    `json:"wavePeriod"`
	Heading    float32    `json:"heading"`
	Gusts      GustParams `json:"gusts"`
}

// DefaultWindParams matches core.DefaultWind with gusts off
func DefaultWindParams() WindParams {
	return WindParams{
		Magnitude:  1,
		WaveLength: 1,
		WavePeriod: 1,
		Gusts: GustParams{
			Frequency: 0.2,
		},
	}
}

// Validate rejects values the simulation would otherwise have to clamp
func (p WindParams) Validate() error {
	for name, v := range map[string]float32{
		"magnitude":             p.Magnitude,
		"waveLength":            p.WaveLength,
		"wavePeriod":            p.WavePeriod,
		"heading":               p.Heading,
		"gusts.strength":        p.Gusts.Strength,
		"gusts.frequency":       p.Gusts.Frequency,
		"gusts.directionJitter": p.Gusts.DirectionJitter,
	} {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidWind, name)
		}
	}
	if p.Magnitude < 0 {
		return fmt.Errorf("%w: magnitude must be >= 0, got %g", ErrInvalidWind, p.Magnitude)
	}
	if p.WaveLength <= 0 || p.WavePeriod <= 0 {
		return fmt.Errorf("%w: wave length and period must be > 0", ErrInvalidWind)
	}
	if p.Gusts.Strength < 0 || p.Gusts.Frequency < 0 || p.Gusts.DirectionJitter < 0 {
		return fmt.Errorf("%w: gust parameters must be >= 0", ErrInvalidWind)
	}
	return nil
}

// Direction is the unit planar vector for Heading
func (p WindParams) Direction() mgl32.Vec2 {
	s, c := math32.Sincos(mgl32.DegToRad(p.Heading))
	return mgl32.Vec2{c, s}
}

// WindControl holds the wind parameters shared between the frame loop and
// the background services. The frame loop snapshots it once per frame.
type WindControl struct {
	mu      sync.RWMutex
	params  WindParams
	version uint64
}

// NewWindControl starts from params
func NewWindControl(params WindParams) *WindControl {
	return &WindControl{params: params}
}

// Snapshot returns the current parameters and their version
func (wc *WindControl) Snapshot() (WindParams, uint64) {
	wc.mu.RLock()
	defer wc.mu.RUnlock()
	return wc.params, wc.version
}

// Set replaces the parameters after validating them
func (wc *WindControl) Set(params WindParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	wc.mu.Lock()
	wc.params = params
	wc.version++
	wc.mu.Unlock()
	return nil
}

// Update applies fn to a copy of the parameters and stores the result if fn
// succeeds and the result is valid
func (wc *WindControl) Update(fn func(*WindParams) error) (WindParams, error) {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	next := wc.params
	if err := fn(&next); err != nil {
		return wc.params, err
	}
	if err := next.Validate(); err != nil {
		return wc.params, err
	}
	wc.params = next
	wc.version++
	return next, nil
}
