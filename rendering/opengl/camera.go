package opengl

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"grassrenderer/core"
)

// Camera defaults
const (
	DefaultYaw         = -90.0
	DefaultPitch       = 0.0
	DefaultSpeed       = 2.5
	DefaultSensitivity = 0.1
	DefaultZoom        = 45.0

	MaxPitch = 89.0
	MinZoom  = 1.0
	MaxZoom  = 45.0

	nearPlane = 0.1
	farPlane  = 100.0
)

// Movement is a keyboard driven camera direction
type Movement int

const (
	MoveForward Movement = iota
	MoveBackward
	MoveLeft
	MoveRight
)

// Camera is a fly camera driven by yaw and pitch in degrees
type Camera struct {
	position mgl32.Vec3
	front    mgl32.Vec3
	up       mgl32.Vec3
	right    mgl32.Vec3
	worldUp  mgl32.Vec3

	yaw   float32
	pitch float32

	Speed       float32
	Sensitivity float32
	zoom        float32
}

// NewCamera places a camera at position looking down -Z
func NewCamera(position mgl32.Vec3) *Camera {
	c := &Camera{
		position:    position,
		worldUp:     mgl32.Vec3{0, 1, 0},
		yaw:         DefaultYaw,
		pitch:       DefaultPitch,
		Speed:       DefaultSpeed,
		Sensitivity: DefaultSensitivity,
		zoom:        DefaultZoom,
	}
	c.updateVectors()
	return c
}

// Move translates the camera along its local axes
func (c *Camera) Move(direction Movement, dt float32) {
	d := c.Speed * dt
	switch direction {
	case MoveForward:
		c.position = c.position.Add(c.front.Mul(d))
	case MoveBackward:
		c.position = c.position.Sub(c.front.Mul(d))
	case MoveLeft:
		c.position = c.position.Sub(c.right.Mul(d))
	case MoveRight:
		c.position = c.position.Add(c.right.Mul(d))
	}
}

// Look applies a mouse offset. Positive dy looks up.
func (c *Camera) Look(dx, dy float32) {
	c.yaw += dx * c.Sensitivity
	c.pitch += dy * c.Sensitivity
	c.pitch = mgl32.Clamp(c.pitch, -MaxPitch, MaxPitch)
	c.updateVectors()
}

// Scroll narrows or widens the field of view
func (c *Camera) Scroll(dy float32) {
	c.zoom = mgl32.Clamp(c.zoom-dy, MinZoom, MaxZoom)
}

func (c *Camera) updateVectors() {
	yaw := mgl32.DegToRad(c.yaw)
	pitch := mgl32.DegToRad(c.pitch)
	c.front = mgl32.Vec3{
		math32.Cos(yaw) * math32.Cos(pitch),
		math32.Sin(pitch),
		math32.Sin(yaw) * math32.Cos(pitch),
	}.Normalize()
	c.right = c.front.Cross(c.worldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}

// View returns the look-at matrix
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.position, c.position.Add(c.front), c.up)
}

// Projection returns the perspective matrix for the current zoom
func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 || math32.IsNaN(aspect) {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.zoom), aspect, nearPlane, farPlane)
}

// State snapshots the matrices for one frame
func (c *Camera) State(aspect float32) core.CameraState {
	return core.CameraState{
		View:       c.View(),
		Projection: c.Projection(aspect),
		Position:   c.position,
	}
}

func (c *Camera) Position() mgl32.Vec3 { return c.position }
func (c *Camera) Front() mgl32.Vec3    { return c.front }
func (c *Camera) Pitch() float32       { return c.pitch }
func (c *Camera) Yaw() float32         { return c.yaw }
func (c *Camera) Zoom() float32        { return c.zoom }
