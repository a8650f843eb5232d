// Package renderer submits a scene to the graphics device: skybox, then
// sorted opaque draws, then blended transparent draws.
package renderer

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/engine/gfx"
	"github.com/Faultbox/prism/internal/engine/lighting"
	"github.com/Faultbox/prism/internal/engine/scene"
	"github.com/Faultbox/prism/internal/engine/shaders"
	"github.com/Faultbox/prism/internal/engine/shadow"
)

// Stats describes one rendered frame.
type Stats struct {
	Draws           int
	ProgramSwitches int
	TextureBinds    int
	Skipped         int
	SkyboxDrawn     bool
}

// Renderer draws scenes through a Device.
type Renderer struct {
	dev    gfx.Device
	log    *zap.Logger
	skybox gfx.Program
	lights *lighting.Buffer

	// Objects already reported as undrawable, so the log is not flooded.
	reported map[uuid.UUID]bool
}

// New creates a renderer and compiles the skybox program.
// IMPORTANT: the device's context must be current.
func New(dev gfx.Device, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}

	sky, err := dev.CompileProgram("skybox", shaders.SkyboxVertex, shaders.SkyboxFragment)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}

	return &Renderer{
		dev:      dev,
		log:      log.Named("renderer"),
		skybox:   sky,
		lights:   lighting.NewBuffer(),
		reported: map[uuid.UUID]bool{},
	}, nil
}

// Close frees the skybox program.
func (r *Renderer) Close() {
	if r.skybox != 0 {
		r.dev.DeleteProgram(r.skybox)
		r.skybox = 0
	}
}

// Render draws one frame of s into the current target. shadows is the
// output of this frame's shadow pass.
func (r *Renderer) Render(s *scene.Scene, shadows shadow.Output) Stats {
	var stats Stats

	r.dev.Clear(true, true)
	stats.SkyboxDrawn = r.drawSkybox(s)

	cmds, skipped := BuildCommands(s, s.Camera.Position())
	stats.Skipped = len(skipped)
	for _, obj := range skipped {
		if r.reported[obj.ID] {
			continue
		}
		r.reported[obj.ID] = true
		r.log.Warn("object has no usable shader program, skipping",
			zap.String("object", obj.Name),
			zap.Stringer("id", obj.ID))
	}
	if len(cmds) == 0 {
		return stats
	}

	SortCommands(cmds)

	var current gfx.Program
	blending := false
	for i := range cmds {
		cmd := &cmds[i]

		if cmd.Program != current {
			r.dev.UseProgram(cmd.Program)
			r.uploadFrame(s, shadows)
			current = cmd.Program
			stats.ProgramSwitches++
		}

		if cmd.Transparent && !blending {
			r.dev.SetBlend(true)
			r.dev.SetDepthWrite(false)
			blending = true
		}

		stats.TextureBinds += r.uploadDraw(cmd)
		r.dev.DrawMesh(cmd.Mesh.Handle)
		stats.Draws++
	}

	if blending {
		r.dev.SetBlend(false)
		r.dev.SetDepthWrite(true)
	}
	return stats
}

// drawSkybox draws the environment cube behind everything. The view's
// translation is dropped so the sky stays at infinity.
func (r *Renderer) drawSkybox(s *scene.Scene) bool {
	env := s.Environment()
	if env == nil || env.Cubemap == 0 || r.skybox == 0 {
		return false
	}

	r.dev.UseProgram(r.skybox)
	r.dev.SetMat4(gfx.UniformView, s.Camera.ViewMatrix().WithoutTranslation())
	r.dev.SetMat4(gfx.UniformProjection, s.Camera.ProjectionMatrix())
	r.dev.SetInt(gfx.UniformSkybox, 0)
	r.dev.BindTexture(0, gfx.TextureCube, env.Cubemap)

	r.dev.SetDepthFunc(gfx.DepthLEqual)
	r.dev.SetDepthWrite(false)
	r.dev.SetCullFace(gfx.CullNone)
	r.dev.DrawCube()
	r.dev.SetCullFace(gfx.CullBack)
	r.dev.SetDepthWrite(true)
	r.dev.SetDepthFunc(gfx.DepthLess)
	return true
}

// uploadFrame sets the per-frame uniforms on a freshly bound program.
func (r *Renderer) uploadFrame(s *scene.Scene, shadows shadow.Output) {
	cam := s.Camera
	r.dev.SetMat4(gfx.UniformView, cam.ViewMatrix())
	r.dev.SetMat4(gfx.UniformProjection, cam.ProjectionMatrix())
	r.dev.SetVec3(gfx.UniformViewPos, cam.Position().Array())

	// Every sampler gets its own unit; a 2D and a cube sampler left on
	// the same default unit is a draw-time error.
	r.dev.SetInt(gfx.UniformAlbedoMap, gfx.UnitAlbedo)
	r.dev.SetInt(gfx.UniformNormalMap, gfx.UnitNormal)
	r.dev.SetInt(gfx.UniformMetRoughMap, gfx.UnitMetRough)
	r.dev.SetInt(gfx.UniformAOMap, gfx.UnitAO)
	r.dev.SetInt(gfx.UniformEmissionMap, gfx.UnitEmission)
	r.dev.SetInt(gfx.UniformPrefilterMap, gfx.UnitPrefilter)
	r.dev.SetInt(gfx.UniformBRDFLUT, gfx.UnitBRDF)
	for i := 0; i < gfx.MaxShadowMaps; i++ {
		r.dev.SetInt(gfx.ShadowMap(i), int32(gfx.UnitShadowBase+i))
	}

	r.uploadLights(s)

	n := shadows.Len()
	if n > gfx.MaxShadowMaps {
		n = gfx.MaxShadowMaps
	}
	r.dev.SetInt(gfx.UniformNumShadowMaps, int32(n))
	for i := 0; i < n; i++ {
		r.dev.SetMat4(gfx.LightSpaceMatrix(i), shadows.LightSpace[i])
		r.dev.BindTexture(gfx.UnitShadowBase+i, gfx.Texture2D, shadows.Maps[i])
	}

	env := s.Environment()
	if env == nil || env.Prefilter == 0 || env.BRDF == 0 {
		r.dev.SetBool(gfx.UniformUseEnvironment, false)
		return
	}
	r.dev.SetBool(gfx.UniformUseEnvironment, true)
	for i, c := range env.SH {
		r.dev.SetVec3(gfx.SHCoefficient(i), c)
	}
	r.dev.SetFloat(gfx.UniformPrefilterLOD, float32(env.PrefilterMips-1))
	r.dev.BindTexture(gfx.UnitPrefilter, gfx.TextureCube, env.Prefilter)
	r.dev.BindTexture(gfx.UnitBRDF, gfx.Texture2D, env.BRDF)
}

func (r *Renderer) uploadLights(s *scene.Scene) {
	r.lights.Clear()
	for _, l := range s.Lights() {
		switch l := l.(type) {
		case *scene.DirectionalLight:
			r.lights.AddDir(lighting.DirLight{
				Direction: l.Direction().Array(),
				Color:     l.Radiance(),
			})
		case *scene.PointLight:
			r.lights.AddPoint(lighting.PointLight{
				Position: l.Position.Array(),
				Color:    l.Radiance(),
				Radius:   l.Radius,
			})
		}
	}
	r.lights.Upload(r.dev)
}

// uploadDraw sets the model matrix and material, binding only the textures
// the mesh names. It returns the number of textures bound.
func (r *Renderer) uploadDraw(cmd *DrawCommand) int {
	mat := cmd.Material
	r.dev.SetMat4(gfx.UniformModel, cmd.Model)
	r.dev.SetVec4(gfx.UniformAlbedo, mat.BaseColor)
	r.dev.SetFloat(gfx.UniformMetalness, mat.Metalness)
	r.dev.SetFloat(gfx.UniformRoughness, mat.Roughness)
	r.dev.SetVec3(gfx.UniformEmissive, mat.Emissive)

	var use [len(textureBindings)]bool
	binds := 0
	for _, slot := range cmd.Mesh.TextureSlots {
		if slot < 0 || slot >= len(mat.Textures) {
			continue
		}
		tex := mat.Textures[slot]
		if int(tex.Type) < 0 || int(tex.Type) >= len(textureBindings) {
			continue
		}
		r.dev.BindTexture(textureBindings[tex.Type].unit, gfx.Texture2D, tex.Handle)
		use[tex.Type] = true
		binds++
	}
	for i, b := range textureBindings {
		r.dev.SetBool(b.flag, use[i])
	}
	return binds
}

// textureBindings maps scene.TextureType to its unit and use-flag uniform.
var textureBindings = [...]struct {
	unit int
	flag string
}{
	scene.TextureAlbedo:            {gfx.UnitAlbedo, gfx.UniformUseAlbedoMap},
	scene.TextureNormal:            {gfx.UnitNormal, gfx.UniformUseNormalMap},
	scene.TextureMetallicRoughness: {gfx.UnitMetRough, gfx.UniformUseMetRoughMap},
	scene.TextureOcclusion:         {gfx.UnitAO, gfx.UniformUseAOMap},
	scene.TextureEmission:          {gfx.UnitEmission, gfx.UniformUseEmissionMap},
}
