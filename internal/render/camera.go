package render

import (
	"math"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	mouseSensitivity = 0.3
	flySpeed         = 18.0
	sprintMultiplier = 2.5
)

// Camera is a free-flying observer: mouse look plus WASD/space/ctrl
// movement. It is the position source the chunk manager follows.
type Camera struct {
	Position mgl32.Vec3

	front mgl32.Vec3
	right mgl32.Vec3
	up    mgl32.Vec3

	yaw   float64
	pitch float64

	lastX      float64
	lastY      float64
	firstMouse bool
}

func NewCamera(position mgl32.Vec3) *Camera {
	c := &Camera{
		Position:   position,
		yaw:        -90,
		firstMouse: true,
	}
	c.updateVectors()
	return c
}

// HandleMouse is wired as the GLFW cursor-position callback.
func (c *Camera) HandleMouse(_ *glfw.Window, xPos, yPos float64) {
	if c.firstMouse {
		c.lastX = xPos
		c.lastY = yPos
		c.firstMouse = false
	}

	// Reversed Y since screen coordinates grow downward.
	xOffset := (xPos - c.lastX) * mouseSensitivity
	yOffset := (c.lastY - yPos) * mouseSensitivity
	c.lastX = xPos
	c.lastY = yPos

	c.yaw += xOffset
	c.pitch += yOffset
	if c.pitch > 89 {
		c.pitch = 89
	}
	if c.pitch < -89 {
		c.pitch = -89
	}
	c.updateVectors()
}

func (c *Camera) updateVectors() {
	yaw := float64(mgl32.DegToRad(float32(c.yaw)))
	pitch := float64(mgl32.DegToRad(float32(c.pitch)))
	front := mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}
	c.front = front.Normalize()
	c.right = c.front.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}

// Move applies held-key movement for one frame.
func (c *Camera) Move(window *glfw.Window, dt float32) {
	speed := float32(flySpeed)
	if window.GetKey(glfw.KeyLeftShift) == glfw.Press {
		speed *= sprintMultiplier
	}

	var direction mgl32.Vec3
	if window.GetKey(glfw.KeyW) == glfw.Press {
		direction = direction.Add(c.front)
	}
	if window.GetKey(glfw.KeyS) == glfw.Press {
		direction = direction.Sub(c.front)
	}
	if window.GetKey(glfw.KeyA) == glfw.Press {
		direction = direction.Sub(c.right)
	}
	if window.GetKey(glfw.KeyD) == glfw.Press {
		direction = direction.Add(c.right)
	}
	if window.GetKey(glfw.KeySpace) == glfw.Press {
		direction = direction.Add(mgl32.Vec3{0, 1, 0})
	}
	if window.GetKey(glfw.KeyLeftControl) == glfw.Press {
		direction = direction.Sub(mgl32.Vec3{0, 1, 0})
	}
	if direction.Len() > 0 {
		direction = direction.Normalize()
	}
	c.Position = c.Position.Add(direction.Mul(speed * dt))
}

// Front returns the viewing direction, used by the voxel pick raycast.
func (c *Camera) Front() mgl32.Vec3 {
	return c.front
}

// View returns the look-at matrix for the current frame.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.front), c.up)
}
