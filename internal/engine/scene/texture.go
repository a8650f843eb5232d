package scene

import (
	"fmt"

	"github.com/Faultbox/prism/internal/engine/gfx"
)

// TextureType is the role a texture plays in the material.
type TextureType int

const (
	TextureAlbedo TextureType = iota
	TextureNormal
	TextureMetallicRoughness
	TextureOcclusion
	TextureEmission
)

func (t TextureType) String() string {
	switch t {
	case TextureAlbedo:
		return "albedo"
	case TextureNormal:
		return "normal"
	case TextureMetallicRoughness:
		return "metallic_roughness"
	case TextureOcclusion:
		return "occlusion"
	case TextureEmission:
		return "emission"
	}
	return fmt.Sprintf("texture_type(%d)", int(t))
}

// Texture is an uploaded image with its role. Path is the dedup key.
type Texture struct {
	Path     string
	Type     TextureType
	Handle   gfx.Texture
	Width    int
	Height   int
	Channels int
}

// NewTexture uploads decoded 8-bit pixels as a mipmapped, repeating 2D texture.
func NewTexture(dev gfx.Device, path string, typ TextureType, width, height, channels int, pixels []byte) (*Texture, error) {
	format, ok := gfx.FormatForChannels(channels)
	if !ok {
		return nil, fmt.Errorf("texture %s: unsupported channel count %d", path, channels)
	}
	if want := width * height * channels; len(pixels) != want {
		return nil, fmt.Errorf("texture %s: %d bytes, want %d", path, len(pixels), want)
	}

	h, err := dev.CreateTexture(gfx.TextureDesc{
		Kind:      gfx.Texture2D,
		Format:    format,
		Width:     width,
		Height:    height,
		Pixels:    pixels,
		Mipmapped: true,
		Wrap:      gfx.WrapRepeat,
	})
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", path, err)
	}

	return &Texture{
		Path:     path,
		Type:     typ,
		Handle:   h,
		Width:    width,
		Height:   height,
		Channels: channels,
	}, nil
}

// WithType returns a copy sharing the GPU handle under another role, used when
// one image packs several channels (occlusion/roughness/metalness).
func (t *Texture) WithType(typ TextureType) *Texture {
	c := *t
	c.Type = typ
	return &c
}
