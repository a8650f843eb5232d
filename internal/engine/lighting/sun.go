// Package lighting provides light upload helpers for the PBR shader.
package lighting

import (
	gomath "math"

	"github.com/Faultbox/prism/pkg/math"
)

// SunDirection converts azimuth/elevation angles (degrees) to a unit vector
// pointing towards the sun. Azimuth rotates around Y starting at +Z,
// elevation is measured up from the horizon.
func SunDirection(azimuth, elevation float32) math.Vec3 {
	az := float64(azimuth) * gomath.Pi / 180.0
	el := float64(elevation) * gomath.Pi / 180.0

	return math.Vec3{
		X: float32(gomath.Cos(el) * gomath.Sin(az)),
		Y: float32(gomath.Sin(el)),
		Z: float32(gomath.Cos(el) * gomath.Cos(az)),
	}
}

// LightDirection is the direction sunlight travels for the given angles,
// which is what a directional light stores.
func LightDirection(azimuth, elevation float32) math.Vec3 {
	return SunDirection(azimuth, elevation).Negate()
}
