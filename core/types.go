package core

import (
	"fmt"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// BladeRecordSize is the size in bytes of one blade in a GPU buffer (std430, 4 x vec4)
const BladeRecordSize = 64

// WorldUp is the up axis used for freshly generated blades
var WorldUp = mgl32.Vec3{0, 1, 0}

// BladeRecord is the simulated state of one grass blade. The layout matches
// the std430 Blade struct in the compute and render shaders.
//
//	V0: xyz position, w orientation around the up axis (radians, [0, pi))
//	V1: xyz tip of the blade curve, w height
//	V2: xyz guide control point of the curve, w width
//	Up: xyz up vector, w stiffness coefficient ([0, 1])
type BladeRecord struct {
	V0 mgl32.Vec4
	V1 mgl32.Vec4
	V2 mgl32.Vec4
	Up mgl32.Vec4
}

var _ [BladeRecordSize - unsafe.Sizeof(BladeRecord{})]struct{}
var _ [unsafe.Sizeof(BladeRecord{}) - BladeRecordSize]struct{}

// Position returns the root of the blade
func (b BladeRecord) Position() mgl32.Vec3 { return b.V0.Vec3() }

// Orientation returns the facing angle around the up axis
func (b BladeRecord) Orientation() float32 { return b.V0.W() }

// Height returns the rest height of the blade
func (b BladeRecord) Height() float32 { return b.V1.W() }

// Width returns the base width of the blade
func (b BladeRecord) Width() float32 { return b.V2.W() }

// Stiffness returns the stiffness coefficient
func (b BladeRecord) Stiffness() float32 { return b.Up.W() }

// UpVector returns the normalized local up vector
func (b BladeRecord) UpVector() mgl32.Vec3 {
	up := b.Up.Vec3()
	if up.Len() == 0 {
		return WorldUp
	}
	return up.Normalize()
}

// RestTip returns where the tip sits when the blade is not bent
func (b BladeRecord) RestTip() mgl32.Vec3 {
	return b.Position().Add(b.UpVector().Mul(b.Height()))
}

// NewRestingBlade builds a blade standing straight along up. Tip and guide
// both sit at position + up*height, which is the fixed point of the simulation
// when there is no wind.
func NewRestingBlade(position mgl32.Vec3, orientation, height, width, stiffness float32, up mgl32.Vec3) BladeRecord {
	tip := position.Add(up.Normalize().Mul(height))
	return BladeRecord{
		V0: position.Vec4(orientation),
		V1: tip.Vec4(height),
		V2: tip.Vec4(width),
		Up: up.Vec4(stiffness),
	}
}

// Validate checks the per-blade invariants
func (b BladeRecord) Validate() error {
	switch {
	case !(b.Height() > 0):
		return fmt.Errorf("blade height %v must be > 0", b.Height())
	case !(b.Width() > 0):
		return fmt.Errorf("blade width %v must be > 0", b.Width())
	case !(b.Stiffness() >= 0 && b.Stiffness() <= 1):
		return fmt.Errorf("blade stiffness %v outside [0, 1]", b.Stiffness())
	case !(b.Orientation() >= 0 && b.Orientation() < math32.Pi):
		return fmt.Errorf("blade orientation %v outside [0, pi)", b.Orientation())
	}
	return nil
}
