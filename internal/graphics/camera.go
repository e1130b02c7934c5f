package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-flying first person camera. Angles are in degrees.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32

	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32

	Sensitivity float32
	firstMouse  bool
	lastX       float64
	lastY       float64
}

func NewCamera(width, height int) *Camera {
	c := &Camera{
		FOV:         60.0,
		NearPlane:   0.1,
		FarPlane:    1000.0,
		Yaw:         -90,
		Sensitivity: 0.1,
		firstMouse:  true,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio. Zero sizes (minimised windows) are ignored.
func (c *Camera) SetViewport(width, height int) {
	if width > 0 && height > 0 {
		c.AspectRatio = float32(width) / float32(height)
	}
}

// HandleMouseMovement turns the camera by the cursor delta since the previous call.
func (c *Camera) HandleMouseMovement(xpos, ypos float64) {
	if c.firstMouse {
		c.lastX, c.lastY = xpos, ypos
		c.firstMouse = false
		return
	}
	xoffset := float32(xpos-c.lastX) * c.Sensitivity
	yoffset := float32(c.lastY-ypos) * c.Sensitivity
	c.lastX, c.lastY = xpos, ypos

	c.Yaw += xoffset
	c.Pitch = mgl32.Clamp(c.Pitch+yoffset, -89, 89)
}

// ResetMouse makes the next HandleMouseMovement call only record the cursor, e.g. after
// the cursor was released and captured again.
func (c *Camera) ResetMouse() { c.firstMouse = true }

// Front returns the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	y := float64(mgl32.DegToRad(c.Yaw))
	p := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Cos(y) * math.Cos(p)),
		float32(math.Sin(p)),
		float32(math.Sin(y) * math.Cos(p)),
	}.Normalize()
}

// Move translates the camera along its horizontal forward and right axes and world up.
func (c *Camera) Move(forward, right, up float32) {
	y := float64(mgl32.DegToRad(c.Yaw))
	f := mgl32.Vec3{float32(math.Cos(y)), 0, float32(math.Sin(y))}
	r := mgl32.Vec3{-f.Z(), 0, f.X()}
	c.Position = c.Position.Add(f.Mul(forward)).Add(r.Mul(right)).Add(mgl32.Vec3{0, up, 0})
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}
