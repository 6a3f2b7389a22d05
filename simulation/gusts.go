package simulation

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/ojrac/opensimplex-go"
)

// GustParams shape the slow noise layered over the traveling wave
type GustParams struct {
	Strength        float32 `json:"strength"`        // relative magnitude swing, 0 disables
	Frequency       float32 `json:"frequency"`       // noise samples per second
	DirectionJitter float32 `json:"directionJitter"` // max heading swing, degrees
}

// Gusts modulates wind magnitude and heading with 2D simplex noise sampled
// along the simulation clock.
type Gusts struct {
	noise opensimplex.Noise32
}

// NewGusts seeds the noise
func NewGusts(seed int64) *Gusts {
	return &Gusts{noise: opensimplex.NewNormalized32(seed)}
}

// signed samples the noise in [-1, 1]
func (g *Gusts) signed(x, y float32) float32 {
	return 2*g.noise.Eval2(x, y) - 1
}

// Factor is the magnitude multiplier at time t, never negative
func (g *Gusts) Factor(p GustParams, t float32) float32 {
	if p.Strength <= 0 {
		return 1
	}
	f := 1 + p.Strength*g.signed(t*p.Frequency, 0)
	return math32.Max(f, 0)
}

// Heading rotates direction by the gust heading offset at time t
func (g *Gusts) Heading(p GustParams, direction mgl32.Vec2, t float32) mgl32.Vec2 {
	if p.DirectionJitter <= 0 {
		return direction
	}
	angle := mgl32.DegToRad(p.DirectionJitter * g.signed(t*p.Frequency, 17.3))
	s, c := math32.Sincos(angle)
	return mgl32.Vec2{
		direction[0]*c - direction[1]*s,
		direction[0]*s + direction[1]*c,
	}
}
