// Package scene holds the renderable data model: objects, their meshes and
// materials, lights, the baked environment and the camera.
//
// The renderer reads a Scene and never mutates it, apart from the
// directional lights' cached light-space matrices.
package scene

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/engine/camera"
	"github.com/Faultbox/prism/internal/engine/gfx"
)

// Scene aggregates everything one frame draws.
type Scene struct {
	Camera    *camera.OrbitCamera
	Shaders   *ShaderPool
	Materials *MaterialPool

	objects []*Object
	lights  []Light
	env     *Environment

	dev gfx.Device
	log *zap.Logger
}

// New creates an empty scene. Resources freed by the scene go through dev.
func New(dev gfx.Device, cam *camera.OrbitCamera, log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scene{
		Camera:    cam,
		Shaders:   NewShaderPool(),
		Materials: NewMaterialPool(),
		dev:       dev,
		log:       log.Named("scene"),
	}
}

// AddObject validates obj against its material and adds it. A mesh that
// names a texture slot outside the material's texture list is rejected.
func (s *Scene) AddObject(obj *Object) error {
	mat, ok := s.Materials.Get(obj.Material)
	if !ok {
		return fmt.Errorf("object %q material %d: %w", obj.Name, obj.Material, ErrInvalidHandle)
	}

	for i, m := range obj.Meshes {
		for _, slot := range m.TextureSlots {
			if slot < 0 || slot >= len(mat.Textures) {
				return &BoundsError{Object: obj.Name, Mesh: i, Slot: slot, Len: len(mat.Textures)}
			}
		}
	}

	s.objects = append(s.objects, obj)
	s.log.Debug("object added",
		zap.String("name", obj.Name),
		zap.Stringer("id", obj.ID),
		zap.Int("meshes", len(obj.Meshes)))
	return nil
}

// RemoveObject removes and destroys the object with id.
func (s *Scene) RemoveObject(id uuid.UUID) bool {
	for i, o := range s.objects {
		if o.ID != id {
			continue
		}
		o.Destroy(s.dev)
		s.objects = append(s.objects[:i], s.objects[i+1:]...)
		s.log.Debug("object removed", zap.String("name", o.Name))
		return true
	}
	return false
}

// Object returns the object with id.
func (s *Scene) Object(id uuid.UUID) (*Object, bool) {
	for _, o := range s.objects {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}

// Objects returns the scene's objects in insertion order.
func (s *Scene) Objects() []*Object {
	return s.objects
}

// AddLight adds a light.
func (s *Scene) AddLight(l Light) {
	s.lights = append(s.lights, l)
}

// Lights returns all lights in insertion order.
func (s *Scene) Lights() []Light {
	return s.lights
}

// DirectionalLights returns the directional lights in insertion order.
func (s *Scene) DirectionalLights() []*DirectionalLight {
	var out []*DirectionalLight
	for _, l := range s.lights {
		if d, ok := l.(*DirectionalLight); ok {
			out = append(out, d)
		}
	}
	return out
}

// SetEnvironment swaps in env and frees the previous environment's cubemaps.
func (s *Scene) SetEnvironment(env *Environment) {
	if s.env == env {
		return
	}
	if s.env != nil {
		s.env.Destroy(s.dev)
	}
	s.env = env
	if env != nil {
		s.log.Info("environment bound", zap.String("source", env.Source))
	}
}

// Environment returns the bound environment, or nil.
func (s *Scene) Environment() *Environment {
	return s.env
}

// Update advances time-based state. Update(0) changes nothing observable.
func (s *Scene) Update(dt float32) {
	if s.Camera != nil {
		s.Camera.Update()
	}
	for _, l := range s.lights {
		switch l := l.(type) {
		case *DirectionalLight:
			l.spin(dt)
		case *PointLight:
		}
	}
}

// Destroy frees objects, then materials, then shaders, then the environment.
func (s *Scene) Destroy() {
	for _, o := range s.objects {
		o.Destroy(s.dev)
	}
	s.objects = nil
	s.Materials.Destroy(s.dev)
	s.Shaders.Destroy(s.dev)
	if s.env != nil {
		s.env.Destroy(s.dev)
		s.env = nil
	}
}
