// Package gfxtest provides a recording gfx.Device for GPU-free tests.
package gfxtest

import (
	"fmt"

	"github.com/Faultbox/prism/internal/engine/gfx"
	"github.com/Faultbox/prism/pkg/math"
)

// Call is one recorded Device call.
type Call struct {
	Op      string
	Name    string // program or uniform name
	Program gfx.Program
	Texture gfx.Texture
	Mesh    gfx.Mesh
	Unit    int
	Target  gfx.RenderTarget
	Value   any
}

// Device records every call and hands out increasing handles.
type Device struct {
	Calls []Call

	// FailCompile makes CompileProgram fail for the named programs.
	FailCompile map[string]bool
	// FailTextures makes CreateTexture fail after this many successes (0 = never).
	FailTextures int
	// FaceData supplies ReadCubeFace results; nil returns all ones.
	FaceData func(t gfx.Texture, face, size int) []float32

	next        uint32
	current     gfx.Program
	created     int
	programs    map[gfx.Program]string
	textures    map[gfx.Texture]gfx.TextureDesc
	meshes      map[gfx.Mesh]int
	uniforms    map[gfx.Program]map[string]any
	targetDepth int
}

// New returns an empty recording device.
func New() *Device {
	return &Device{
		FailCompile: map[string]bool{},
		programs:    map[gfx.Program]string{},
		textures:    map[gfx.Texture]gfx.TextureDesc{},
		meshes:      map[gfx.Mesh]int{},
		uniforms:    map[gfx.Program]map[string]any{},
	}
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

func (d *Device) record(c Call) {
	d.Calls = append(d.Calls, c)
}

func (d *Device) CompileProgram(name, vertexSrc, fragmentSrc string) (gfx.Program, error) {
	if d.FailCompile[name] {
		d.record(Call{Op: "CompileProgram", Name: name, Value: false})
		return 0, fmt.Errorf("%s: %w", name, gfx.ErrCompile)
	}
	p := gfx.Program(d.handle())
	d.programs[p] = name
	d.uniforms[p] = map[string]any{}
	d.record(Call{Op: "CompileProgram", Name: name, Program: p, Value: true})
	return p, nil
}

func (d *Device) DeleteProgram(p gfx.Program) {
	delete(d.programs, p)
	d.record(Call{Op: "DeleteProgram", Program: p})
}

func (d *Device) UseProgram(p gfx.Program) {
	d.current = p
	d.record(Call{Op: "UseProgram", Program: p, Name: d.programs[p]})
}

func (d *Device) set(op, name string, v any) {
	if u, ok := d.uniforms[d.current]; ok {
		u[name] = v
	}
	d.record(Call{Op: op, Name: name, Program: d.current, Value: v})
}

func (d *Device) SetInt(name string, v int32) { d.set("SetInt", name, v) }
func (d *Device) SetBool(name string, v bool) { d.set("SetBool", name, v) }
func (d *Device) SetFloat(name string, v float32) { d.set("SetFloat", name, v) }
func (d *Device) SetVec3(name string, v [3]float32) { d.set("SetVec3", name, v) }
func (d *Device) SetVec4(name string, v [4]float32) { d.set("SetVec4", name, v) }
func (d *Device) SetMat4(name string, m math.Mat4) { d.set("SetMat4", name, m) }

func (d *Device) CreateTexture(desc gfx.TextureDesc) (gfx.Texture, error) {
	if d.FailTextures > 0 && d.created >= d.FailTextures {
		d.record(Call{Op: "CreateTexture", Value: desc})
		return 0, fmt.Errorf("texture %dx%d: out of memory", desc.Width, desc.Height)
	}
	d.created++
	t := gfx.Texture(d.handle())
	d.textures[t] = desc
	d.record(Call{Op: "CreateTexture", Texture: t, Value: desc})
	return t, nil
}

func (d *Device) DeleteTexture(t gfx.Texture) {
	delete(d.textures, t)
	d.record(Call{Op: "DeleteTexture", Texture: t})
}

func (d *Device) BindTexture(unit int, kind gfx.TextureKind, t gfx.Texture) {
	d.record(Call{Op: "BindTexture", Unit: unit, Texture: t, Value: kind})
}

func (d *Device) GenerateMipmaps(kind gfx.TextureKind, t gfx.Texture) {
	d.record(Call{Op: "GenerateMipmaps", Texture: t, Value: kind})
}

func (d *Device) CreateMesh(vertices []gfx.Vertex, indices []uint32) (gfx.Mesh, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return 0, fmt.Errorf("empty mesh: %d vertices, %d indices", len(vertices), len(indices))
	}
	m := gfx.Mesh(d.handle())
	d.meshes[m] = len(indices)
	d.record(Call{Op: "CreateMesh", Mesh: m, Value: len(indices)})
	return m, nil
}

func (d *Device) DeleteMesh(m gfx.Mesh) {
	delete(d.meshes, m)
	d.record(Call{Op: "DeleteMesh", Mesh: m})
}

func (d *Device) DrawMesh(m gfx.Mesh) {
	d.record(Call{Op: "DrawMesh", Mesh: m, Program: d.current})
}

func (d *Device) DrawCube() { d.record(Call{Op: "DrawCube", Program: d.current}) }
func (d *Device) DrawQuad() { d.record(Call{Op: "DrawQuad", Program: d.current}) }

func (d *Device) BindTarget(rt gfx.RenderTarget) (func(), error) {
	if _, ok := d.textures[rt.Texture]; !ok {
		return nil, fmt.Errorf("bind target: unknown texture %d", rt.Texture)
	}
	d.targetDepth++
	d.record(Call{Op: "BindTarget", Texture: rt.Texture, Target: rt})
	return func() {
		d.targetDepth--
		d.record(Call{Op: "RestoreTarget", Texture: rt.Texture})
	}, nil
}

func (d *Device) Clear(color, depth bool) {
	d.record(Call{Op: "Clear", Value: [2]bool{color, depth}})
}

func (d *Device) SetDepthWrite(enabled bool) { d.record(Call{Op: "SetDepthWrite", Value: enabled}) }
func (d *Device) SetDepthFunc(f gfx.DepthFunc) { d.record(Call{Op: "SetDepthFunc", Value: f}) }
func (d *Device) SetBlend(enabled bool) { d.record(Call{Op: "SetBlend", Value: enabled}) }
func (d *Device) SetCullFace(c gfx.CullFace) { d.record(Call{Op: "SetCullFace", Value: c}) }

func (d *Device) ReadCubeFace(t gfx.Texture, face, size int) ([]float32, error) {
	desc, ok := d.textures[t]
	if !ok || desc.Kind != gfx.TextureCube {
		return nil, fmt.Errorf("read cube face: %d is not a cube texture", t)
	}
	d.record(Call{Op: "ReadCubeFace", Texture: t, Value: face})
	if d.FaceData != nil {
		return d.FaceData(t, face, size), nil
	}
	out := make([]float32, size*size*3)
	for i := range out {
		out[i] = 1
	}
	return out, nil
}

// Count returns how many calls used op.
func (d *Device) Count(op string) int {
	n := 0
	for _, c := range d.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Filter returns the calls that used op, in order.
func (d *Device) Filter(op string) []Call {
	var out []Call
	for _, c := range d.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls but keeps live resources.
func (d *Device) Reset() {
	d.Calls = nil
}

// LiveTextures returns the number of textures not yet deleted.
func (d *Device) LiveTextures() int { return len(d.textures) }

// LiveMeshes returns the number of meshes not yet deleted.
func (d *Device) LiveMeshes() int { return len(d.meshes) }

// LivePrograms returns the number of programs not yet deleted.
func (d *Device) LivePrograms() int { return len(d.programs) }

// TextureDesc returns the descriptor a live texture was created with.
func (d *Device) TextureDesc(t gfx.Texture) (gfx.TextureDesc, bool) {
	desc, ok := d.textures[t]
	return desc, ok
}

// Uniform returns the last value set for name while p was current.
func (d *Device) Uniform(p gfx.Program, name string) (any, bool) {
	v, ok := d.uniforms[p][name]
	return v, ok
}

// BoundTargets returns how many BindTarget calls have not been restored.
func (d *Device) BoundTargets() int { return d.targetDepth }

var _ gfx.Device = (*Device)(nil)
