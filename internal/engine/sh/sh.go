// Package sh projects cube-map radiance onto order-2 real spherical harmonics
// (9 coefficients per color channel) and evaluates the result.
package sh

import (
	"fmt"
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"
)

// NumCoefficients is the number of basis functions for bands 0..2.
const NumCoefficients = 9

// Y00 is the constant band-0 basis value, 1/(2·sqrt(pi)).
const Y00 = 0.282095

// Coefficients holds 9 RGB coefficients in basis order, as uploaded to
// shCoefficients. Each entry is the raw projection ∫L·Y_k dΩ, so index 0 of
// a uniform environment of radiance L is 4π·Y00·L ≈ 3.545·L, not L. Use DC
// for the reconstructed band-0 radiance.
type Coefficients [NumCoefficients][3]float32

// Basis evaluates the 9 real SH basis functions for a unit direction.
func Basis(dir mgl64.Vec3) [NumCoefficients]float64 {
	x, y, z := dir[0], dir[1], dir[2]
	return [NumCoefficients]float64{
		Y00,
		0.488603 * y,
		0.488603 * z,
		0.488603 * x,
		1.092548 * x * y,
		1.092548 * y * z,
		0.315392 * (3*z*z - 1),
		1.092548 * x * z,
		0.546274 * (x*x - y*y),
	}
}

// FaceDirection returns the unit direction through face-local coordinates
// u, v in [-1, 1] of cube face 0..5 (+X, -X, +Y, -Y, +Z, -Z).
func FaceDirection(face int, u, v float64) mgl64.Vec3 {
	var d mgl64.Vec3
	switch face {
	case 0:
		d = mgl64.Vec3{1, -v, -u}
	case 1:
		d = mgl64.Vec3{-1, -v, u}
	case 2:
		d = mgl64.Vec3{u, 1, v}
	case 3:
		d = mgl64.Vec3{u, -1, -v}
	case 4:
		d = mgl64.Vec3{u, -v, 1}
	default:
		d = mgl64.Vec3{-u, -v, -1}
	}
	return d.Normalize()
}

// SolidAngleWeight is the differential solid angle of a cube texel at u, v,
// up to a constant factor removed by normalization.
func SolidAngleWeight(u, v float64) float64 {
	diff := 1 + u*u + v*v
	return 4 / (gomath.Sqrt(diff) * diff)
}

// Projector accumulates weighted radiance face by face.
type Projector struct {
	sums   [NumCoefficients]mgl64.Vec3
	weight float64
	clamp  float64
}

// NewProjector creates a projector. A positive clamp bounds each radiance
// channel before accumulation; zero or less accumulates radiance as is.
func NewProjector(clamp float64) *Projector {
	return &Projector{clamp: clamp}
}

// AddFace accumulates one face of size*size RGB texels.
func (p *Projector) AddFace(face, size int, rgb []float32) error {
	if face < 0 || face > 5 {
		return fmt.Errorf("sh: face %d out of range", face)
	}
	if size <= 0 || len(rgb) != size*size*3 {
		return fmt.Errorf("sh: face %d has %d floats, want %d", face, len(rgb), size*size*3)
	}

	inv := 2 / float64(size)
	for y := 0; y < size; y++ {
		v := (float64(y)+0.5)*inv - 1
		for x := 0; x < size; x++ {
			u := (float64(x)+0.5)*inv - 1

			i := (y*size + x) * 3
			texel := mgl64.Vec3{
				p.clampChannel(rgb[i]),
				p.clampChannel(rgb[i+1]),
				p.clampChannel(rgb[i+2]),
			}

			w := SolidAngleWeight(u, v)
			basis := Basis(FaceDirection(face, u, v))
			for k := range basis {
				p.sums[k] = p.sums[k].Add(texel.Mul(basis[k] * w))
			}
			p.weight += w
		}
	}
	return nil
}

func (p *Projector) clampChannel(c float32) float64 {
	f := float64(c)
	if gomath.IsNaN(f) || f < 0 {
		return 0
	}
	if p.clamp > 0 && f > p.clamp {
		return p.clamp
	}
	return f
}

// Result normalizes the sums by 4π/Σweight.
func (p *Projector) Result() Coefficients {
	var out Coefficients
	if p.weight == 0 {
		return out
	}
	norm := 4 * gomath.Pi / p.weight
	for k, s := range p.sums {
		out[k] = [3]float32{float32(s[0] * norm), float32(s[1] * norm), float32(s[2] * norm)}
	}
	return out
}

// Project runs a full projection over six faces.
func Project(faces [6][]float32, size int, clamp float64) (Coefficients, error) {
	p := NewProjector(clamp)
	for face, data := range faces {
		if err := p.AddFace(face, size, data); err != nil {
			return Coefficients{}, err
		}
	}
	return p.Result(), nil
}

// Evaluate reconstructs radiance in direction dir.
func (c Coefficients) Evaluate(dir [3]float32) [3]float32 {
	d := mgl64.Vec3{float64(dir[0]), float64(dir[1]), float64(dir[2])}.Normalize()
	basis := Basis(d)

	var out [3]float32
	for k, b := range basis {
		for ch := 0; ch < 3; ch++ {
			out[ch] += c[k][ch] * float32(b)
		}
	}
	return out
}

// DC returns the band-0 contribution c[0]·Y00, the mean radiance of the
// environment.
func (c Coefficients) DC() [3]float32 {
	return [3]float32{c[0][0] * Y00, c[0][1] * Y00, c[0][2] * Y00}
}
