package scene

import (
	"fmt"

	"github.com/Faultbox/prism/internal/engine/gfx"
)

// Mesh is an uploaded vertex/index buffer and the material texture slots it samples.
type Mesh struct {
	Handle       gfx.Mesh
	TextureSlots []int
	VertexCount  int
	IndexCount   int
}

// NewMesh uploads the buffers. The GPU resource lives until Destroy.
func NewMesh(dev gfx.Device, vertices []gfx.Vertex, indices []uint32, slots []int) (*Mesh, error) {
	for _, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("mesh: index %d out of %d vertices", idx, len(vertices))
		}
	}

	h, err := dev.CreateMesh(vertices, indices)
	if err != nil {
		return nil, fmt.Errorf("mesh: %w", err)
	}

	return &Mesh{
		Handle:       h,
		TextureSlots: append([]int(nil), slots...),
		VertexCount:  len(vertices),
		IndexCount:   len(indices),
	}, nil
}

// Destroy frees the GPU buffers. Safe to call twice.
func (m *Mesh) Destroy(dev gfx.Device) {
	if m.Handle != 0 {
		dev.DeleteMesh(m.Handle)
		m.Handle = 0
	}
}
