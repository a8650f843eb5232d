package lighting

import (
	"github.com/Faultbox/prism/internal/engine/gfx"
)

// Shader array sizes. Lights beyond these are not uploaded.
const (
	MaxPointLights = 32
	MaxDirLights   = 4
)

// PointLight is a point light prepared for GPU upload.
type PointLight struct {
	Position [3]float32
	Color    [3]float32 // linear RGB, intensity premultiplied
	Radius   float32
}

// DirLight is a directional light prepared for GPU upload.
type DirLight struct {
	Direction [3]float32
	Color     [3]float32
}

// Buffer collects the lights of one frame.
type Buffer struct {
	Points []PointLight
	Dirs   []DirLight
}

// NewBuffer creates an empty light buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		Points: make([]PointLight, 0, MaxPointLights),
		Dirs:   make([]DirLight, 0, MaxDirLights),
	}
}

// Clear removes all lights from the buffer.
func (b *Buffer) Clear() {
	b.Points = b.Points[:0]
	b.Dirs = b.Dirs[:0]
}

// AddPoint adds a point light. Returns false if the buffer is full.
func (b *Buffer) AddPoint(light PointLight) bool {
	if len(b.Points) >= MaxPointLights {
		return false
	}
	if light.Radius <= 0 {
		light.Radius = 10
	}
	b.Points = append(b.Points, light)
	return true
}

// AddDir adds a directional light. Returns false if the buffer is full.
func (b *Buffer) AddDir(light DirLight) bool {
	if len(b.Dirs) >= MaxDirLights {
		return false
	}
	b.Dirs = append(b.Dirs, light)
	return true
}

// Upload sets the light arrays and counts on the current program.
func (b *Buffer) Upload(dev gfx.Device) {
	dev.SetInt(gfx.UniformNumDirLights, int32(len(b.Dirs)))
	for i, l := range b.Dirs {
		dev.SetVec3(gfx.DirLight(i, "direction"), l.Direction)
		dev.SetVec3(gfx.DirLight(i, "color"), l.Color)
	}

	dev.SetInt(gfx.UniformNumPointLights, int32(len(b.Points)))
	for i, l := range b.Points {
		dev.SetVec3(gfx.PointLight(i, "position"), l.Position)
		dev.SetVec3(gfx.PointLight(i, "color"), l.Color)
		dev.SetFloat(gfx.PointLight(i, "radius"), l.Radius)
	}
}
