package scene

import (
	"github.com/google/uuid"

	"github.com/Faultbox/prism/internal/engine/gfx"
)

// Object is a drawable: a transform, meshes it owns, and a material handle.
type Object struct {
	ID        uuid.UUID
	Name      string
	Transform Transform
	Meshes    []*Mesh
	Material  MaterialHandle
}

// NewObject creates an object with an identity transform.
func NewObject(name string, material MaterialHandle, meshes ...*Mesh) *Object {
	return &Object{
		ID:        uuid.New(),
		Name:      name,
		Transform: NewTransform(),
		Meshes:    meshes,
		Material:  material,
	}
}

// Destroy frees the object's meshes.
func (o *Object) Destroy(dev gfx.Device) {
	for _, m := range o.Meshes {
		m.Destroy(dev)
	}
	o.Meshes = nil
}
