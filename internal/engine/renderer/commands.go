package renderer

import (
	"cmp"
	"slices"

	"github.com/Faultbox/prism/internal/engine/gfx"
	"github.com/Faultbox/prism/internal/engine/scene"
	"github.com/Faultbox/prism/pkg/math"
)

// DrawCommand is one (object, mesh) pair ready for submission.
type DrawCommand struct {
	Object   *scene.Object
	Mesh     *scene.Mesh
	Material *scene.Material
	Program  gfx.Program
	Model    math.Mat4

	// Distance from the camera to the object's origin.
	Distance    float32
	Transparent bool
	// Texture is the lowest texture handle the mesh binds, 0 if none.
	Texture gfx.Texture
}

// BuildCommands flattens the scene into one command per (object, mesh).
// Objects whose material or program is unusable produce no commands and are
// returned in skipped.
func BuildCommands(s *scene.Scene, eye math.Vec3) (cmds []DrawCommand, skipped []*scene.Object) {
	for _, obj := range s.Objects() {
		mat, ok := s.Materials.Get(obj.Material)
		if !ok {
			skipped = append(skipped, obj)
			continue
		}
		prog, ok := s.Shaders.Program(mat.Shader)
		if !ok {
			skipped = append(skipped, obj)
			continue
		}

		model := obj.Transform.ModelMatrix()
		dist := eye.Distance(obj.Transform.Position)
		transparent := mat.Transparent()

		for _, m := range obj.Meshes {
			cmds = append(cmds, DrawCommand{
				Object:      obj,
				Mesh:        m,
				Material:    mat,
				Program:     prog,
				Model:       model,
				Distance:    dist,
				Transparent: transparent,
				Texture:     lowestTexture(mat, m),
			})
		}
	}
	return cmds, skipped
}

func lowestTexture(mat *scene.Material, m *scene.Mesh) gfx.Texture {
	var lowest gfx.Texture
	for _, slot := range m.TextureSlots {
		if slot < 0 || slot >= len(mat.Textures) {
			continue
		}
		h := mat.Textures[slot].Handle
		if h != 0 && (lowest == 0 || h < lowest) {
			lowest = h
		}
	}
	return lowest
}

// SortCommands orders cmds in place: opaque before transparent; opaque by
// program then texture to minimize state changes; transparent farthest
// first. The sort is stable, so ties keep scene order.
func SortCommands(cmds []DrawCommand) {
	slices.SortStableFunc(cmds, compareCommands)
}

func compareCommands(a, b DrawCommand) int {
	if a.Transparent != b.Transparent {
		if a.Transparent {
			return 1
		}
		return -1
	}
	if a.Transparent {
		// farthest first
		if c := cmp.Compare(b.Distance, a.Distance); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(a.Program, b.Program); c != 0 {
		return c
	}
	return cmp.Compare(a.Texture, b.Texture)
}
