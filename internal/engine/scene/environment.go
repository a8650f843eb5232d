package scene

import (
	"github.com/Faultbox/prism/internal/engine/gfx"
	"github.com/Faultbox/prism/internal/engine/sh"
)

// Environment is the baked image-based lighting for one skybox. It owns the
// cubemaps; the BRDF lookup texture is shared process-wide and not owned.
type Environment struct {
	Source string

	Cubemap  gfx.Texture
	CubeSize int

	SH sh.Coefficients

	Prefilter     gfx.Texture
	PrefilterSize int
	PrefilterMips int

	BRDF gfx.Texture
}

// Destroy frees the owned cubemaps.
func (e *Environment) Destroy(dev gfx.Device) {
	if e.Cubemap != 0 {
		dev.DeleteTexture(e.Cubemap)
		e.Cubemap = 0
	}
	if e.Prefilter != 0 {
		dev.DeleteTexture(e.Prefilter)
		e.Prefilter = 0
	}
}
