package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Directions for moving the camera.
type CameraDirection uint8

const (
	Forward CameraDirection = iota
	Backward
	Left
	Right
	Up
	Down
)

// The camera type controls the scene camera.
type Camera struct {
	Position mgl32.Vec3
	LookAt   mgl32.Vec3
	Up       mgl32.Vec3

	// Pending rotation (radians) applied and reset by the next Update call.
	Pitch float32
	Yaw   float32

	ViewMat mgl32.Mat4
	ProjMat mgl32.Mat4

	// Vertical field of view in degrees.
	FOV float32

	// Clip planes.
	Near float32
	Far  float32
}

func NewCamera(fov float32) *Camera {
	return &Camera{
		ViewMat:  mgl32.Ident4(),
		ProjMat:  mgl32.Ident4(),
		Position: mgl32.Vec3{0, 0, 0},
		LookAt:   mgl32.Vec3{0, 0, -1},
		Up:       mgl32.Vec3{0, 1, 0},
		FOV:      fov,
		Near:     0.1,
		Far:      1000,
	}
}

func (c *Camera) String() string {
	return fmt.Sprintf(
		"Camera(pos: (%3.3f, %3.3f, %3.3f), lookAt: (%3.3f, %3.3f, %3.3f), fov: %3.1f)",
		c.Position[0], c.Position[1], c.Position[2],
		c.LookAt[0], c.LookAt[1], c.LookAt[2],
		c.FOV,
	)
}

// Setup camera projection matrix.
func (c *Camera) SetupProjection(aspect float32) {
	c.ProjMat = mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
	c.Update()
}

// Apply any pending pitch/yaw and rebuild the view matrix.
func (c *Camera) Update() {
	dir := c.direction()
	if c.Pitch != 0 || c.Yaw != 0 {
		pitchAxis := dir.Cross(c.Up).Normalize()
		pitchQuat := mgl32.QuatRotate(c.Pitch, pitchAxis)
		yawQuat := mgl32.QuatRotate(c.Yaw, c.Up)

		orientQuat := pitchQuat.Mul(yawQuat).Normalize()
		dir = orientQuat.Rotate(dir)

		// Refuse to look straight up or down; the view basis degenerates.
		if dir.Cross(c.Up).Len() > 1e-3 {
			c.LookAt = c.Position.Add(dir)
		}
		c.Pitch, c.Yaw = 0, 0
	}

	c.ViewMat = mgl32.LookAtV(c.Position, c.LookAt, c.Up)
}

// Move the camera eye and look-at point along a direction.
func (c *Camera) Move(dir CameraDirection, amount float32) {
	forward := c.direction()
	right := forward.Cross(c.Up).Normalize()

	var delta mgl32.Vec3
	switch dir {
	case Forward:
		delta = forward.Mul(amount)
	case Backward:
		delta = forward.Mul(-amount)
	case Right:
		delta = right.Mul(amount)
	case Left:
		delta = right.Mul(-amount)
	case Up:
		delta = c.Up.Mul(amount)
	case Down:
		delta = c.Up.Mul(-amount)
	}

	c.Position = c.Position.Add(delta)
	c.LookAt = c.LookAt.Add(delta)
	c.Update()
}

// Get the combined projection * view matrix.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.ProjMat.Mul4(c.ViewMat)
}

func (c *Camera) direction() mgl32.Vec3 {
	dir := c.LookAt.Sub(c.Position)
	if dir.Len() < 1e-6 {
		return mgl32.Vec3{0, 0, -1}
	}
	return dir.Normalize()
}
