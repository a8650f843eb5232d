package scene

import (
	gomath "math"

	"github.com/Faultbox/prism/pkg/math"
)

// Light is either *DirectionalLight or *PointLight.
type Light interface {
	isLight()
}

// DirectionalLight shines along a direction and casts shadows.
type DirectionalLight struct {
	Color     math.Vec3
	Intensity float32

	// SpinDegPerSec rotates the direction around the Y axis in Update.
	SpinDegPerSec float32

	direction math.Vec3

	// Light-space matrix and the direction it was computed for.
	lightSpace    math.Mat4
	lightSpaceDir math.Vec3
	lightSpaceSet bool
}

// NewDirectionalLight creates a light travelling along dir (normalized).
// A zero dir points straight down.
func NewDirectionalLight(dir, color math.Vec3) *DirectionalLight {
	l := &DirectionalLight{Color: color, Intensity: 1}
	l.direction = math.Vec3{Y: -1}
	l.SetDirection(dir)
	return l
}

func (*DirectionalLight) isLight() {}

// Direction returns the normalized travel direction.
func (l *DirectionalLight) Direction() math.Vec3 {
	return l.direction
}

// SetDirection normalizes and stores dir. A zero vector is ignored.
func (l *DirectionalLight) SetDirection(dir math.Vec3) {
	if dir.Length() == 0 {
		return
	}
	l.direction = dir.Normalize()
}

// LightSpaceStale reports whether the stored light-space matrix was computed
// for a different direction, or never computed.
func (l *DirectionalLight) LightSpaceStale() bool {
	return !l.lightSpaceSet || l.lightSpaceDir != l.direction
}

// SetLightSpaceMatrix stores m as valid for the current direction.
func (l *DirectionalLight) SetLightSpaceMatrix(m math.Mat4) {
	l.lightSpace = m
	l.lightSpaceDir = l.direction
	l.lightSpaceSet = true
}

// LightSpaceMatrix returns the last matrix stored by SetLightSpaceMatrix.
func (l *DirectionalLight) LightSpaceMatrix() math.Mat4 {
	return l.lightSpace
}

// Radiance returns color scaled by intensity.
func (l *DirectionalLight) Radiance() [3]float32 {
	return l.Color.Scale(l.Intensity).Array()
}

func (l *DirectionalLight) spin(dt float32) {
	if l.SpinDegPerSec == 0 || dt == 0 {
		return
	}
	s, c := gomath.Sincos(float64(math.Radians(l.SpinDegPerSec * dt)))
	d := l.direction
	l.SetDirection(math.Vec3{
		X: d.X*float32(c) + d.Z*float32(s),
		Y: d.Y,
		Z: -d.X*float32(s) + d.Z*float32(c),
	})
}

// PointLight emits from a position with a finite radius.
type PointLight struct {
	Position  math.Vec3
	Color     math.Vec3
	Intensity float32
	Radius    float32
}

// NewPointLight creates a point light with unit intensity.
func NewPointLight(pos, color math.Vec3, radius float32) *PointLight {
	return &PointLight{Position: pos, Color: color, Intensity: 1, Radius: radius}
}

func (*PointLight) isLight() {}

// Radiance returns color scaled by intensity.
func (l *PointLight) Radiance() [3]float32 {
	return l.Color.Scale(l.Intensity).Array()
}
