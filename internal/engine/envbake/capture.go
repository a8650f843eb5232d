package envbake

import (
	"github.com/Faultbox/prism/internal/engine/gfx"
	"github.com/Faultbox/prism/pkg/math"
)

// captureProjection is the 90 degree square frustum that covers one cube face.
func captureProjection() math.Mat4 {
	return math.Perspective(math.Radians(90), 1, 0.1, 10)
}

// captureViews look from the origin through each face in GL order
// (+X, -X, +Y, -Y, +Z, -Z).
func captureViews() [6]math.Mat4 {
	origin := math.Vec3{}
	return [6]math.Mat4{
		math.LookAt(origin, math.Vec3{X: 1}, math.Vec3{Y: -1}),
		math.LookAt(origin, math.Vec3{X: -1}, math.Vec3{Y: -1}),
		math.LookAt(origin, math.Vec3{Y: 1}, math.Vec3{Z: 1}),
		math.LookAt(origin, math.Vec3{Y: -1}, math.Vec3{Z: -1}),
		math.LookAt(origin, math.Vec3{Z: 1}, math.Vec3{Y: -1}),
		math.LookAt(origin, math.Vec3{Z: -1}, math.Vec3{Y: -1}),
	}
}

// renderFaces draws the unit cube into all six faces of one mip of cube.
// The current program must already have its samplers and projection set.
func renderFaces(dev gfx.Device, cube gfx.Texture, size, mip int) error {
	views := captureViews()
	for face := 0; face < 6; face++ {
		restore, err := dev.BindTarget(gfx.RenderTarget{
			Texture: cube,
			Face:    face,
			Mip:     mip,
			Width:   size,
			Height:  size,
		})
		if err != nil {
			return err
		}
		dev.Clear(true, true)
		dev.SetMat4(gfx.UniformView, views[face])
		dev.DrawCube()
		restore()
	}
	return nil
}

// mipCount returns the full chain length for a square texture of size.
func mipCount(size int) int {
	n := 1
	for size > 1 {
		size >>= 1
		n++
	}
	return n
}
