package core

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidField is returned for field parameters the generator cannot honor
var ErrInvalidField = errors.New("core: invalid blade field parameters")

// FieldConfig describes the grid of blades planted over the terrain.
//
// Column i maps to x = Origin.X + (i - Columns/2) * Spacing and row j to
// z = Origin.Z + (j - Rows/2) * Spacing, so a 400x400 grid at 0.1 spacing
// covers [-20, 20) on both axes.
type FieldConfig struct {
	Columns         int
	Rows            int
	Spacing         float32
	Jitter          float32
	Origin          mgl32.Vec3
	HeightMin       float32
	HeightMax       float32
	Width           float32
	StiffnessBase   float32
	StiffnessSpread float32
	Seed            uint64 // 0 picks a seed from the clock
}

// DefaultFieldConfig is the dense 400x400 field
func DefaultFieldConfig() FieldConfig {
	return FieldConfig{
		Columns:         400,
		Rows:            400,
		Spacing:         0.1,
		Jitter:          0.1,
		HeightMin:       0.6,
		HeightMax:       1.2,
		Width:           0.1,
		StiffnessBase:   0.7,
		StiffnessSpread: 0.3,
	}
}

// Count is the number of blades the field produces
func (c FieldConfig) Count() int {
	return c.Columns * c.Rows
}

// Validate checks the parameters against the generator's preconditions
func (c FieldConfig) Validate() error {
	switch {
	case c.Columns <= 0 || c.Rows <= 0:
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidField, c.Columns, c.Rows)
	case !(c.Spacing > 0):
		return fmt.Errorf("%w: spacing %v", ErrInvalidField, c.Spacing)
	case c.Jitter < 0 || (c.Count() > 1 && c.Jitter > c.Spacing):
		return fmt.Errorf("%w: jitter %v for spacing %v", ErrInvalidField, c.Jitter, c.Spacing)
	case !(c.HeightMin > 0) || c.HeightMax < c.HeightMin:
		return fmt.Errorf("%w: height range [%v, %v]", ErrInvalidField, c.HeightMin, c.HeightMax)
	case !(c.Width > 0):
		return fmt.Errorf("%w: width %v", ErrInvalidField, c.Width)
	case c.StiffnessSpread < 0 || c.StiffnessBase-c.StiffnessSpread < 0 || c.StiffnessBase+c.StiffnessSpread > 1:
		return fmt.Errorf("%w: stiffness %v +- %v", ErrInvalidField, c.StiffnessBase, c.StiffnessSpread)
	}
	return nil
}

// GenerateField plants one resting blade per grid cell, row-major
func GenerateField(cfg FieldConfig) ([]BladeRecord, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	// uniform in [-1, 1]
	signed := func() float32 { return rng.Float32()*2 - 1 }

	halfCols, halfRows := cfg.Columns/2, cfg.Rows/2
	blades := make([]BladeRecord, 0, cfg.Count())
	for j := 0; j < cfg.Rows; j++ {
		for i := 0; i < cfg.Columns; i++ {
			x := cfg.Origin.X() + float32(i-halfCols)*cfg.Spacing + signed()*cfg.Jitter
			z := cfg.Origin.Z() + float32(j-halfRows)*cfg.Spacing + signed()*cfg.Jitter

			orientation := rng.Float32() * math32.Pi
			if orientation >= math32.Pi {
				orientation = 0
			}
			height := cfg.HeightMin + rng.Float32()*(cfg.HeightMax-cfg.HeightMin)
			stiffness := clamp01(cfg.StiffnessBase + signed()*cfg.StiffnessSpread)

			blades = append(blades, NewRestingBlade(
				mgl32.Vec3{x, cfg.Origin.Y(), z},
				orientation, height, cfg.Width, stiffness, WorldUp))
		}
	}
	return blades, nil
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}
