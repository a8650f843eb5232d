package scene

import (
	"github.com/Faultbox/prism/internal/engine/gfx"
)

// ShaderHandle identifies an entry in a ShaderPool. Zero is never issued.
type ShaderHandle uint32

// MaterialHandle identifies an entry in a MaterialPool. Zero is never issued.
type MaterialHandle uint32

// Material holds shading parameters and owns its textures. The scalar
// parameters are used when no texture of the matching type is bound.
type Material struct {
	Name      string
	BaseColor [4]float32
	Metalness float32
	Roughness float32
	Emissive  [3]float32

	// AlphaBlend marks materials authored for blending even at full alpha.
	AlphaBlend bool

	Textures []*Texture
	Shader   ShaderHandle
}

// NewMaterial returns a white dielectric material using shader.
func NewMaterial(name string, shader ShaderHandle) *Material {
	return &Material{
		Name:      name,
		BaseColor: [4]float32{1, 1, 1, 1},
		Metalness: 0,
		Roughness: 0.5,
		Shader:    shader,
	}
}

// Transparent reports whether objects using this material are drawn in the blended pass.
func (m *Material) Transparent() bool {
	return m.AlphaBlend || m.BaseColor[3] < 1
}

// AddTexture appends t and returns its slot index.
func (m *Material) AddTexture(t *Texture) int {
	m.Textures = append(m.Textures, t)
	return len(m.Textures) - 1
}

// TextureByPath returns a texture already loaded from path, if any.
func (m *Material) TextureByPath(path string) (*Texture, bool) {
	for _, t := range m.Textures {
		if t.Path == path {
			return t, true
		}
	}
	return nil, false
}

// Destroy frees every distinct texture handle once.
func (m *Material) Destroy(dev gfx.Device) {
	freed := make(map[gfx.Texture]bool, len(m.Textures))
	for _, t := range m.Textures {
		if t.Handle == 0 || freed[t.Handle] {
			continue
		}
		dev.DeleteTexture(t.Handle)
		freed[t.Handle] = true
	}
	m.Textures = nil
}

// MaterialPool owns materials shared by handle.
type MaterialPool struct {
	items []*Material
}

// NewMaterialPool creates an empty pool.
func NewMaterialPool() *MaterialPool {
	return &MaterialPool{}
}

// Add registers m and returns its handle.
func (p *MaterialPool) Add(m *Material) MaterialHandle {
	p.items = append(p.items, m)
	return MaterialHandle(len(p.items))
}

// Get returns the material for h.
func (p *MaterialPool) Get(h MaterialHandle) (*Material, bool) {
	if h == 0 || int(h) > len(p.items) || p.items[h-1] == nil {
		return nil, false
	}
	return p.items[h-1], true
}

// Len returns the number of live materials.
func (p *MaterialPool) Len() int {
	n := 0
	for _, m := range p.items {
		if m != nil {
			n++
		}
	}
	return n
}

// Destroy frees all materials and their textures.
func (p *MaterialPool) Destroy(dev gfx.Device) {
	for i, m := range p.items {
		if m != nil {
			m.Destroy(dev)
			p.items[i] = nil
		}
	}
}

type shaderEntry struct {
	name    string
	program gfx.Program
	err     error
}

// ShaderPool owns compiled programs by name. A failed compile still gets a
// handle so materials can reference it; the renderer skips them.
type ShaderPool struct {
	entries []shaderEntry
	byName  map[string]ShaderHandle
}

// NewShaderPool creates an empty pool.
func NewShaderPool() *ShaderPool {
	return &ShaderPool{byName: map[string]ShaderHandle{}}
}

// Compile compiles and registers a program under name. Compiling a name
// twice returns the existing handle without touching the device.
func (p *ShaderPool) Compile(dev gfx.Device, name, vertexSrc, fragmentSrc string) (ShaderHandle, error) {
	if h, ok := p.byName[name]; ok {
		return h, p.entries[h-1].err
	}

	prog, err := dev.CompileProgram(name, vertexSrc, fragmentSrc)
	p.entries = append(p.entries, shaderEntry{name: name, program: prog, err: err})
	h := ShaderHandle(len(p.entries))
	p.byName[name] = h
	return h, err
}

// Program returns the compiled program for h, or false when h is unknown
// or its compile failed.
func (p *ShaderPool) Program(h ShaderHandle) (gfx.Program, bool) {
	if h == 0 || int(h) > len(p.entries) {
		return 0, false
	}
	e := p.entries[h-1]
	if e.err != nil || e.program == 0 {
		return 0, false
	}
	return e.program, true
}

// Lookup returns the handle registered under name.
func (p *ShaderPool) Lookup(name string) (ShaderHandle, bool) {
	h, ok := p.byName[name]
	return h, ok
}

// Name returns the name registered for h.
func (p *ShaderPool) Name(h ShaderHandle) string {
	if h == 0 || int(h) > len(p.entries) {
		return ""
	}
	return p.entries[h-1].name
}

// Destroy deletes every compiled program.
func (p *ShaderPool) Destroy(dev gfx.Device) {
	for i, e := range p.entries {
		if e.program != 0 {
			dev.DeleteProgram(e.program)
			p.entries[i].program = 0
		}
	}
}
