package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/prism/internal/engine/gfx"
)

// glFormat is the internal format, pixel format and component type of a gfx.Format.
type glFormat struct {
	internal int32
	format   uint32
	xtype    uint32
	channels int
}

var formats = map[gfx.Format]glFormat{
	gfx.FormatR8:      {gl.R8, gl.RED, gl.UNSIGNED_BYTE, 1},
	gfx.FormatRG8:     {gl.RG8, gl.RG, gl.UNSIGNED_BYTE, 2},
	gfx.FormatRGB8:    {gl.RGB8, gl.RGB, gl.UNSIGNED_BYTE, 3},
	gfx.FormatRGBA8:   {gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE, 4},
	gfx.FormatRGB16F:  {gl.RGB16F, gl.RGB, gl.FLOAT, 3},
	gfx.FormatRG16F:   {gl.RG16F, gl.RG, gl.FLOAT, 2},
	gfx.FormatDepth24: {gl.DEPTH_COMPONENT24, gl.DEPTH_COMPONENT, gl.FLOAT, 1},
}

func (d *Device) CreateTexture(desc gfx.TextureDesc) (gfx.Texture, error) {
	f, ok := formats[desc.Format]
	if !ok {
		return 0, fmt.Errorf("texture: unknown format %d", desc.Format)
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("texture: invalid size %dx%d", desc.Width, desc.Height)
	}
	data, err := pixelPtr(desc, f)
	if err != nil {
		return 0, err
	}

	var id uint32
	gl.GenTextures(1, &id)

	levels := desc.Levels()
	switch desc.Kind {
	case gfx.TextureCube:
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
		for level := 0; level < levels; level++ {
			w, h := mipSize(desc.Width, level), mipSize(desc.Height, level)
			for face := uint32(0); face < 6; face++ {
				gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+face, int32(level), f.internal,
					int32(w), int32(h), 0, f.format, f.xtype, nil)
			}
		}
		setSampling(gl.TEXTURE_CUBE_MAP, desc, levels)

	default:
		gl.BindTexture(gl.TEXTURE_2D, id)
		gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
		gl.TexImage2D(gl.TEXTURE_2D, 0, f.internal, int32(desc.Width), int32(desc.Height), 0,
			f.format, f.xtype, data)
		gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
		if desc.Mipmapped {
			gl.GenerateMipmap(gl.TEXTURE_2D)
			levels = 2 // any value > 1 selects trilinear filtering
		} else {
			for level := 1; level < levels; level++ {
				gl.TexImage2D(gl.TEXTURE_2D, int32(level), f.internal,
					int32(mipSize(desc.Width, level)), int32(mipSize(desc.Height, level)), 0,
					f.format, f.xtype, nil)
			}
		}
		setSampling(gl.TEXTURE_2D, desc, levels)
	}

	if desc.Kind == gfx.TextureCube {
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	} else {
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}

	t := gfx.Texture(id)
	desc.Pixels, desc.Floats = nil, nil
	d.textures[t] = desc
	return t, nil
}

func pixelPtr(desc gfx.TextureDesc, f glFormat) (unsafe.Pointer, error) {
	want := desc.Width * desc.Height * f.channels
	switch {
	case len(desc.Pixels) > 0:
		if f.xtype != gl.UNSIGNED_BYTE || len(desc.Pixels) != want {
			return nil, fmt.Errorf("texture: %d bytes for %dx%d format %d", len(desc.Pixels), desc.Width, desc.Height, desc.Format)
		}
		return gl.Ptr(desc.Pixels), nil
	case len(desc.Floats) > 0:
		if f.xtype != gl.FLOAT || len(desc.Floats) != want {
			return nil, fmt.Errorf("texture: %d floats for %dx%d format %d", len(desc.Floats), desc.Width, desc.Height, desc.Format)
		}
		return gl.Ptr(desc.Floats), nil
	}
	return nil, nil
}

func setSampling(target uint32, desc gfx.TextureDesc, levels int) {
	switch {
	case desc.Format == gfx.FormatDepth24:
		gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	case levels > 1:
		gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	default:
		gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	}
	if !desc.Mipmapped {
		gl.TexParameteri(target, gl.TEXTURE_MAX_LEVEL, int32(desc.Levels()-1))
	}

	wrap := int32(gl.REPEAT)
	switch desc.Wrap {
	case gfx.WrapClampEdge:
		wrap = gl.CLAMP_TO_EDGE
	case gfx.WrapClampBorderWhite:
		wrap = gl.CLAMP_TO_BORDER
		border := [4]float32{1, 1, 1, 1}
		gl.TexParameterfv(target, gl.TEXTURE_BORDER_COLOR, &border[0])
	}
	gl.TexParameteri(target, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(target, gl.TEXTURE_WRAP_T, wrap)
	if target == gl.TEXTURE_CUBE_MAP {
		gl.TexParameteri(target, gl.TEXTURE_WRAP_R, wrap)
	}
}

func mipSize(size, level int) int {
	s := size >> level
	if s < 1 {
		return 1
	}
	return s
}

func (d *Device) DeleteTexture(t gfx.Texture) {
	if _, ok := d.textures[t]; !ok {
		return
	}
	id := uint32(t)
	gl.DeleteTextures(1, &id)
	delete(d.textures, t)
}

func (d *Device) BindTexture(unit int, kind gfx.TextureKind, t gfx.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(glTarget(kind), uint32(t))
}

func (d *Device) GenerateMipmaps(kind gfx.TextureKind, t gfx.Texture) {
	target := glTarget(kind)
	gl.BindTexture(target, uint32(t))
	gl.GenerateMipmap(target)
	gl.BindTexture(target, 0)
}

func (d *Device) ReadCubeFace(t gfx.Texture, face, size int) ([]float32, error) {
	desc, ok := d.textures[t]
	if !ok || desc.Kind != gfx.TextureCube {
		return nil, fmt.Errorf("read cube face: %d is not a cube texture", t)
	}
	if face < 0 || face > 5 || size != desc.Width {
		return nil, fmt.Errorf("read cube face: face %d size %d of %d", face, size, desc.Width)
	}

	out := make([]float32, size*size*3)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, uint32(t))
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.GetTexImage(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), 0, gl.RGB, gl.FLOAT, gl.Ptr(out))
	gl.PixelStorei(gl.PACK_ALIGNMENT, 4)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return out, nil
}

func glTarget(kind gfx.TextureKind) uint32 {
	if kind == gfx.TextureCube {
		return gl.TEXTURE_CUBE_MAP
	}
	return gl.TEXTURE_2D
}
