package core

import "github.com/go-gl/mathgl/mgl32"

// CameraState is what the render stage needs from the camera each frame
type CameraState struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Position   mgl32.Vec3
}
