// Package shadow renders depth maps for directional lights.
package shadow

import (
	"fmt"

	"github.com/Faultbox/prism/internal/engine/gfx"
)

// DefaultResolution is the default shadow map resolution.
const DefaultResolution = 2048

// Map is one depth-only shadow texture.
type Map struct {
	Texture    gfx.Texture
	Resolution int
}

// NewMap allocates a square depth texture. Samples outside the map read as
// depth 1 so geometry beyond the light box is lit.
func NewMap(dev gfx.Device, resolution int) (*Map, error) {
	if resolution <= 0 {
		resolution = DefaultResolution
	}

	tex, err := dev.CreateTexture(gfx.TextureDesc{
		Kind:   gfx.Texture2D,
		Format: gfx.FormatDepth24,
		Width:  resolution,
		Height: resolution,
		Wrap:   gfx.WrapClampBorderWhite,
	})
	if err != nil {
		return nil, fmt.Errorf("shadow map %d: %w", resolution, err)
	}
	return &Map{Texture: tex, Resolution: resolution}, nil
}

// Bind redirects draws into the map and clears depth. Call the returned
// func to restore the previous target and viewport.
func (sm *Map) Bind(dev gfx.Device) (func(), error) {
	restore, err := dev.BindTarget(gfx.RenderTarget{
		Texture: sm.Texture,
		Width:   sm.Resolution,
		Height:  sm.Resolution,
	})
	if err != nil {
		return nil, err
	}
	dev.Clear(false, true)
	return restore, nil
}

// Destroy releases the depth texture.
func (sm *Map) Destroy(dev gfx.Device) {
	if sm.Texture != 0 {
		dev.DeleteTexture(sm.Texture)
		sm.Texture = 0
	}
}

// IsValid returns true if the shadow map holds a texture.
func (sm *Map) IsValid() bool {
	return sm != nil && sm.Texture != 0
}
