package shadow

import (
	"github.com/Faultbox/prism/pkg/math"
)

// Box is the fixed orthographic volume a directional light renders.
// Geometry outside it is clipped from the shadow map.
type Box struct {
	Center     math.Vec3
	HalfExtent float32
	Near       float32
	Far        float32
	// Distance places the light eye at Center - direction*Distance.
	Distance float32
}

// DefaultBox covers a 20x20 area around the origin.
func DefaultBox() Box {
	return Box{
		HalfExtent: 10,
		Near:       0.1,
		Far:        50,
		Distance:   20,
	}
}

// LightSpaceMatrix returns projection·view for a light travelling along dir.
func LightSpaceMatrix(dir math.Vec3, box Box) math.Mat4 {
	dir = dir.Normalize()
	eye := box.Center.Sub(dir.Scale(box.Distance))

	// Avoid an up vector parallel to the light direction.
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	if abs32(dir.Y) > 0.99 {
		up = math.Vec3{X: 0, Y: 0, Z: 1}
	}

	view := math.LookAt(eye, box.Center, up)
	h := box.HalfExtent
	proj := math.Ortho(-h, h, -h, h, box.Near, box.Far)

	return proj.Mul(view)
}

// abs32 returns the absolute value of a float32.
func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
