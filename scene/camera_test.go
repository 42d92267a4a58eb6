package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCameraMove(t *testing.T) {
	type spec struct {
		dir    CameraDirection
		expPos mgl32.Vec3
	}
	specs := []spec{
		{Forward, mgl32.Vec3{0, 0, -2}},
		{Backward, mgl32.Vec3{0, 0, 2}},
		{Right, mgl32.Vec3{2, 0, 0}},
		{Left, mgl32.Vec3{-2, 0, 0}},
		{Up, mgl32.Vec3{0, 2, 0}},
		{Down, mgl32.Vec3{0, -2, 0}},
	}

	for index, s := range specs {
		c := NewCamera(45)
		c.Move(s.dir, 2)
		if !c.Position.ApproxEqualThreshold(s.expPos, 1e-5) {
			t.Fatalf("[spec %d] expected camera position to be %v; got %v", index, s.expPos, c.Position)
		}
		// The view direction is preserved
		dir := c.LookAt.Sub(c.Position)
		if !dir.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5) {
			t.Fatalf("[spec %d] expected view dir to be unchanged; got %v", index, dir)
		}
	}
}

func TestCameraYaw(t *testing.T) {
	c := NewCamera(45)
	c.Yaw = mgl32.DegToRad(90)
	c.Update()

	dir := c.LookAt.Sub(c.Position).Normalize()
	assert.InDelta(t, -1, dir[0], 1e-5)
	assert.InDelta(t, 0, dir[2], 1e-5)
	assert.Zero(t, c.Yaw, "pending rotation should be consumed")

	// A second update must not rotate again.
	c.Update()
	dir2 := c.LookAt.Sub(c.Position).Normalize()
	assert.True(t, dir.ApproxEqualThreshold(dir2, 1e-6))
}

func TestCameraViewProjection(t *testing.T) {
	c := NewCamera(60)
	c.Position = mgl32.Vec3{0, 5, 20}
	c.LookAt = mgl32.Vec3{0, 0, 0}
	c.SetupProjection(16.0 / 9.0)

	exp := mgl32.Perspective(mgl32.DegToRad(60), 16.0/9.0, c.Near, c.Far).
		Mul4(mgl32.LookAtV(c.Position, c.LookAt, c.Up))
	assert.True(t, exp.ApproxEqualThreshold(c.ViewProjection(), 1e-5))

	// The look-at target projects to the center of the screen.
	clip := c.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, clip[0]/clip[3], 1e-5)
	assert.InDelta(t, 0, clip[1]/clip[3], 1e-5)
}
