package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/prism/internal/engine/gfx"
)

// meshBuffers is a VAO with its vertex and optional index buffer.
type meshBuffers struct {
	vao, vbo, ebo uint32
	count         int32
	mode          uint32
}

func (m *meshBuffers) draw() {
	gl.BindVertexArray(m.vao)
	if m.ebo != 0 {
		gl.DrawElements(m.mode, m.count, gl.UNSIGNED_INT, gl.PtrOffset(0))
	} else {
		gl.DrawArrays(m.mode, 0, m.count)
	}
	gl.BindVertexArray(0)
}

func (m *meshBuffers) destroy() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
		m.ebo = 0
	}
}

func (d *Device) CreateMesh(vertices []gfx.Vertex, indices []uint32) (gfx.Mesh, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return 0, fmt.Errorf("empty mesh: %d vertices, %d indices", len(vertices), len(indices))
	}

	m := &meshBuffers{count: int32(len(indices)), mode: gl.TRIANGLES}
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	stride := int32(unsafe.Sizeof(gfx.Vertex{}))
	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(stride), gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	// Attribute locations match the PBR and depth vertex shaders.
	var v gfx.Vertex
	attrib(0, 3, stride, unsafe.Offsetof(v.Position))
	attrib(1, 3, stride, unsafe.Offsetof(v.Normal))
	attrib(2, 3, stride, unsafe.Offsetof(v.Tangent))
	attrib(3, 3, stride, unsafe.Offsetof(v.Bitangent))
	attrib(4, 2, stride, unsafe.Offsetof(v.UV))

	gl.BindVertexArray(0)

	h := gfx.Mesh(m.vao)
	d.meshes[h] = m
	return h, nil
}

func attrib(loc uint32, size int32, stride int32, offset uintptr) {
	gl.EnableVertexAttribArray(loc)
	gl.VertexAttribPointer(loc, size, gl.FLOAT, false, stride, gl.PtrOffset(int(offset)))
}

func (d *Device) DeleteMesh(h gfx.Mesh) {
	m, ok := d.meshes[h]
	if !ok {
		return
	}
	m.destroy()
	delete(d.meshes, h)
}

func (d *Device) DrawMesh(h gfx.Mesh) {
	if m, ok := d.meshes[h]; ok {
		m.draw()
	}
}

func (d *Device) DrawCube() { d.cube.draw() }

func (d *Device) DrawQuad() { d.quad.draw() }

// newPositionBuffers uploads a position-only VAO drawn without indices.
func newPositionBuffers(positions []float32, mode uint32) *meshBuffers {
	m := &meshBuffers{count: int32(len(positions) / 3), mode: mode}
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(positions)*4, gl.Ptr(positions), gl.STATIC_DRAW)
	attrib(0, 3, 3*4, 0)
	gl.BindVertexArray(0)
	return m
}

// cubePositions is the unit cube as 12 outward-facing CCW triangles.
var cubePositions = []float32{
	// -Z
	-1, -1, -1, 1, 1, -1, 1, -1, -1,
	1, 1, -1, -1, -1, -1, -1, 1, -1,
	// +Z
	-1, -1, 1, 1, -1, 1, 1, 1, 1,
	1, 1, 1, -1, 1, 1, -1, -1, 1,
	// -X
	-1, 1, 1, -1, 1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, 1, -1, 1, 1,
	// +X
	1, 1, 1, 1, -1, -1, 1, 1, -1,
	1, -1, -1, 1, 1, 1, 1, -1, 1,
	// -Y
	-1, -1, -1, 1, -1, -1, 1, -1, 1,
	1, -1, 1, -1, -1, 1, -1, -1, -1,
	// +Y
	-1, 1, -1, 1, 1, 1, 1, 1, -1,
	1, 1, 1, -1, 1, -1, -1, 1, 1,
}

// quadPositions is a clip-space quad as a triangle strip.
var quadPositions = []float32{
	-1, 1, 0,
	-1, -1, 0,
	1, 1, 0,
	1, -1, 0,
}
