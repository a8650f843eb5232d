package scene

import "github.com/Faultbox/prism/pkg/math"

// Transform places an object in the world. Rotation is Euler degrees.
type Transform struct {
	Position math.Vec3
	Rotation math.Vec3
	Scale    math.Vec3
}

// NewTransform returns the identity transform.
func NewTransform() Transform {
	return Transform{Scale: math.Vec3{X: 1, Y: 1, Z: 1}}
}

// ModelMatrix returns T·Rx·Ry·Rz·S. It is computed on every call.
func (t Transform) ModelMatrix() math.Mat4 {
	return math.Translate(t.Position.X, t.Position.Y, t.Position.Z).
		Mul(math.RotateX(math.Radians(t.Rotation.X))).
		Mul(math.RotateY(math.Radians(t.Rotation.Y))).
		Mul(math.RotateZ(math.Radians(t.Rotation.Z))).
		Mul(math.Scale(t.Scale.X, t.Scale.Y, t.Scale.Z))
}

// Translate moves the transform by d.
func (t *Transform) Translate(d math.Vec3) {
	t.Position = t.Position.Add(d)
}

// Rotate adds Euler angles in degrees.
func (t *Transform) Rotate(deg math.Vec3) {
	t.Rotation = t.Rotation.Add(deg)
}

// Rescale multiplies the scale component-wise.
func (t *Transform) Rescale(f math.Vec3) {
	t.Scale = t.Scale.Mul(f)
}
