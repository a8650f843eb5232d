package shadow

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/engine/gfx"
	"github.com/Faultbox/prism/internal/engine/scene"
	"github.com/Faultbox/prism/internal/engine/shaders"
	"github.com/Faultbox/prism/pkg/math"
)

// DefaultMaxLights bounds how many directional lights cast shadows.
const DefaultMaxLights = 4

// Config controls the shadow pass.
type Config struct {
	Resolution int
	// MaxLights caps shadow-casting lights; extra directional lights are
	// still lit but cast no shadow.
	MaxLights int
	Box       Box
}

// DefaultConfig returns the standard shadow settings.
func DefaultConfig() Config {
	return Config{
		Resolution: DefaultResolution,
		MaxLights:  DefaultMaxLights,
		Box:        DefaultBox(),
	}
}

// Output is what the main pass samples: index i pairs a light-space matrix
// with its depth map, in directional-light order.
type Output struct {
	LightSpace []math.Mat4
	Maps       []gfx.Texture
}

// Len returns the number of shadowed lights.
func (o Output) Len() int { return len(o.Maps) }

// Pass renders one depth map per directional light.
type Pass struct {
	dev     gfx.Device
	cfg     Config
	program gfx.Program
	maps    []*Map
	log     *zap.Logger

	warnedCap bool
}

// NewPass compiles the depth program. Maps are allocated on first use.
func NewPass(dev gfx.Device, cfg Config, log *zap.Logger) (*Pass, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxLights < 0 {
		cfg.MaxLights = 0
	}

	prog, err := dev.CompileProgram("depth", shaders.DepthVertex, shaders.DepthFragment)
	if err != nil {
		return nil, fmt.Errorf("shadow pass: %w", err)
	}

	return &Pass{
		dev:     dev,
		cfg:     cfg,
		program: prog,
		log:     log.Named("shadow"),
	}, nil
}

// Render draws every object's depth from each shadow-casting light. A light's
// matrix is recomputed only when its direction changed. With no directional
// lights it does no GPU work.
func (p *Pass) Render(s *scene.Scene) Output {
	lights := s.DirectionalLights()
	if len(lights) == 0 || p.cfg.MaxLights == 0 {
		return Output{}
	}

	if len(lights) > p.cfg.MaxLights {
		if !p.warnedCap {
			p.log.Warn("directional lights exceed shadow cap, extra lights cast no shadow",
				zap.Int("lights", len(lights)),
				zap.Int("max", p.cfg.MaxLights))
			p.warnedCap = true
		}
		lights = lights[:p.cfg.MaxLights]
	}

	out := Output{
		LightSpace: make([]math.Mat4, 0, len(lights)),
		Maps:       make([]gfx.Texture, 0, len(lights)),
	}

	p.dev.UseProgram(p.program)
	p.dev.SetCullFace(gfx.CullFront)
	defer p.dev.SetCullFace(gfx.CullBack)

	for i, l := range lights {
		sm, err := p.mapAt(i)
		if err != nil {
			p.log.Error("shadow map allocation failed", zap.Int("light", i), zap.Error(err))
			break
		}

		if l.LightSpaceStale() {
			l.SetLightSpaceMatrix(LightSpaceMatrix(l.Direction(), p.cfg.Box))
		}
		lightSpace := l.LightSpaceMatrix()

		restore, err := sm.Bind(p.dev)
		if err != nil {
			p.log.Error("shadow map bind failed", zap.Int("light", i), zap.Error(err))
			break
		}

		p.dev.SetMat4(gfx.UniformLightSpace, lightSpace)
		for _, obj := range s.Objects() {
			p.dev.SetMat4(gfx.UniformModel, obj.Transform.ModelMatrix())
			for _, m := range obj.Meshes {
				p.dev.DrawMesh(m.Handle)
			}
		}
		restore()

		out.LightSpace = append(out.LightSpace, lightSpace)
		out.Maps = append(out.Maps, sm.Texture)
	}

	return out
}

func (p *Pass) mapAt(i int) (*Map, error) {
	for len(p.maps) <= i {
		sm, err := NewMap(p.dev, p.cfg.Resolution)
		if err != nil {
			return nil, err
		}
		p.maps = append(p.maps, sm)
	}
	return p.maps[i], nil
}

// Maps returns the number of allocated depth maps.
func (p *Pass) Maps() int { return len(p.maps) }

// Destroy frees the depth maps and the program.
func (p *Pass) Destroy() {
	for _, sm := range p.maps {
		sm.Destroy(p.dev)
	}
	p.maps = nil
	if p.program != 0 {
		p.dev.DeleteProgram(p.program)
		p.program = 0
	}
}
