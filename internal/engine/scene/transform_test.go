package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/prism/pkg/math"
)

func TestModelMatrixIdentity(t *testing.T) {
	assert.Equal(t, math.Identity(), NewTransform().ModelMatrix())
}

func TestModelMatrixIsPure(t *testing.T) {
	tr := Transform{
		Position: math.Vec3{X: 1, Y: 2, Z: 3},
		Rotation: math.Vec3{X: 10, Y: 20, Z: 30},
		Scale:    math.Vec3{X: 2, Y: 2, Z: 2},
	}
	assert.Equal(t, tr.ModelMatrix(), tr.ModelMatrix())
}

func TestModelMatrixOrder(t *testing.T) {
	tr := NewTransform()
	tr.Translate(math.Vec3{X: 1, Y: 2, Z: 3})
	tr.Rotate(math.Vec3{X: 15, Y: 30, Z: 45})
	tr.Rescale(math.Vec3{X: 2, Y: 3, Z: 4})

	want := math.Translate(1, 2, 3).
		Mul(math.RotateX(math.Radians(15))).
		Mul(math.RotateY(math.Radians(30))).
		Mul(math.RotateZ(math.Radians(45))).
		Mul(math.Scale(2, 3, 4))
	assert.Equal(t, want, tr.ModelMatrix())

	// Mutators are reflected on the next read.
	tr.Translate(math.Vec3{X: 1})
	m := tr.ModelMatrix()
	assert.InDelta(t, 2, m[12], 1e-6)
}

func TestModelMatrixRotatesY(t *testing.T) {
	tr := NewTransform()
	tr.Rotate(math.Vec3{Y: 90})
	p := tr.ModelMatrix().TransformPoint([3]float32{1, 0, 0})
	assert.InDelta(t, 0, p[0], 1e-6)
	assert.InDelta(t, -1, p[2], 1e-6)
}
