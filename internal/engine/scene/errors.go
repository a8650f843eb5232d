package scene

import (
	"errors"
	"fmt"
)

// ErrTextureSlotRange marks a mesh that names a texture slot its material
// does not have. It is a contract violation caught when the object is added.
var ErrTextureSlotRange = errors.New("texture slot out of range")

// ErrInvalidHandle is returned for a material or shader handle the pool never issued.
var ErrInvalidHandle = errors.New("invalid handle")

// BoundsError describes an out-of-range texture slot.
type BoundsError struct {
	Object string
	Mesh   int
	Slot   int
	Len    int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("object %q mesh %d: texture slot %d, material has %d textures: %v",
		e.Object, e.Mesh, e.Slot, e.Len, ErrTextureSlotRange)
}

func (e *BoundsError) Unwrap() error { return ErrTextureSlotRange }
