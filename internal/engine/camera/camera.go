// Package camera provides the orbit camera used by the viewer.
package camera

import (
	gomath "math"

	"github.com/Faultbox/prism/pkg/math"
)

// pixelToRad converts mouse deltas (pixels) to radians before sensitivity.
const pixelToRad = 0.01

// Zoom limits and speed.
const (
	MinRadius = 0.2
	MaxRadius = 700.0
	zoomSpeed = 0.32
)

var maxPitch = math.Radians(89)

// OrbitCamera orbits around a target point on a sphere of the given radius.
type OrbitCamera struct {
	Target math.Vec3

	// Spherical coordinates
	Radius float32
	Theta  float32 // Yaw around Y (radians)
	Phi    float32 // Pitch from the XZ plane (radians)

	// Projection
	FOV  float32 // Vertical field of view (degrees)
	Near float32
	Far  float32

	Sensitivity float32

	// Derived by Update
	position math.Vec3
	front    math.Vec3
	right    math.Vec3
	up       math.Vec3

	width, height int

	// Values restored by Reset
	homeRadius, homeTheta, homePhi float32
}

// NewOrbitCamera creates a camera looking at the origin. theta and phi are in degrees.
func NewOrbitCamera(radius, theta, phi float32) *OrbitCamera {
	c := &OrbitCamera{
		Radius:      radius,
		Theta:       math.Radians(theta),
		Phi:         clampPitch(math.Radians(phi)),
		FOV:         36,
		Near:        0.1,
		Far:         100,
		Sensitivity: 0.18,
		width:       1,
		height:      1,
	}
	c.homeRadius, c.homeTheta, c.homePhi = c.Radius, c.Theta, c.Phi
	c.Update()
	return c
}

// Update recomputes the position and basis from the spherical coordinates.
// It has no other side effects, so calling it twice is the same as once.
func (c *OrbitCamera) Update() {
	st, ct := gomath.Sincos(float64(c.Theta))
	sp, cp := gomath.Sincos(float64(c.Phi))

	offset := math.Vec3{
		X: c.Radius * float32(cp*ct),
		Y: c.Radius * float32(sp),
		Z: c.Radius * float32(cp*st),
	}
	c.position = c.Target.Add(offset)

	worldUp := math.Vec3{Y: 1}
	c.front = offset.Negate().Normalize()
	c.right = c.front.Cross(worldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}

// SetViewport records the framebuffer size used for the aspect ratio.
func (c *OrbitCamera) SetViewport(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c.width, c.height = width, height
}

// Viewport returns the size last passed to SetViewport.
func (c *OrbitCamera) Viewport() (width, height int) {
	return c.width, c.height
}

// Rotate orbits by a mouse delta in pixels. Pitch is clamped to ±89°.
func (c *OrbitCamera) Rotate(dx, dy float32) {
	c.Theta += dx * c.Sensitivity * pixelToRad
	c.Phi = clampPitch(c.Phi + dy*c.Sensitivity*pixelToRad)
	c.Update()
}

// Zoom moves toward the target by a scroll offset.
func (c *OrbitCamera) Zoom(offset float32) {
	r := c.Radius - offset*zoomSpeed
	if r < MinRadius {
		r = MinRadius
	}
	if r > MaxRadius {
		r = MaxRadius
	}
	c.Radius = r
	c.Update()
}

// Reset restores the radius and angles the camera was created with.
func (c *OrbitCamera) Reset() {
	c.Radius, c.Theta, c.Phi = c.homeRadius, c.homeTheta, c.homePhi
	c.Update()
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	return c.position
}

// Front returns the normalized viewing direction.
func (c *OrbitCamera) Front() math.Vec3 {
	return c.front
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.position, c.Target, c.up)
}

// ProjectionMatrix returns the perspective projection for the current viewport.
func (c *OrbitCamera) ProjectionMatrix() math.Mat4 {
	aspect := float32(c.width) / float32(c.height)
	return math.Perspective(math.Radians(c.FOV), aspect, c.Near, c.Far)
}

func clampPitch(phi float32) float32 {
	if phi > maxPitch {
		return maxPitch
	}
	if phi < -maxPitch {
		return -maxPitch
	}
	return phi
}
