// Package gfx defines the boundary between the renderer and the graphics API.
//
// Everything above this package talks to a Device through small integer
// handles. The OpenGL implementation lives in internal/engine/opengl; tests
// use the recording fake in gfx/gfxtest.
package gfx

import (
	"errors"

	"github.com/Faultbox/prism/pkg/math"
)

// ErrCompile is returned when a shader program fails to compile or link.
var ErrCompile = errors.New("shader compile failed")

// Program is a compiled and linked shader program. Zero is never valid.
type Program uint32

// Texture is a 2D or cube texture. Zero is never valid.
type Texture uint32

// Mesh is an uploaded vertex/index buffer pair. Zero is never valid.
type Mesh uint32

// TextureKind selects the texture target.
type TextureKind int

const (
	Texture2D TextureKind = iota
	TextureCube
)

// Format is the internal storage format of a texture.
type Format int

const (
	FormatR8 Format = iota
	FormatRG8
	FormatRGB8
	FormatRGBA8
	FormatRGB16F
	FormatRG16F
	FormatDepth24
)

// FormatForChannels maps a decoded channel count (1..4) to an 8-bit format.
func FormatForChannels(channels int) (Format, bool) {
	switch channels {
	case 1:
		return FormatR8, true
	case 2:
		return FormatRG8, true
	case 3:
		return FormatRGB8, true
	case 4:
		return FormatRGBA8, true
	}
	return 0, false
}

// Wrap is the texture addressing mode.
type Wrap int

const (
	WrapRepeat Wrap = iota
	WrapClampEdge
	// WrapClampBorderWhite samples 1.0 outside the texture, so shadow
	// lookups beyond the light box read as lit.
	WrapClampBorderWhite
)

// TextureDesc describes a texture to allocate and optionally fill.
type TextureDesc struct {
	Kind   TextureKind
	Format Format
	Width  int
	Height int

	// MipLevels is the number of levels to allocate. Zero means one.
	MipLevels int
	// Mipmapped generates the full chain from level 0 after upload.
	Mipmapped bool

	// Level 0 contents for 2D textures; nil leaves storage uninitialized.
	Pixels []byte
	Floats []float32

	Wrap Wrap
}

// Levels returns the number of allocated mip levels.
func (d TextureDesc) Levels() int {
	if d.MipLevels < 1 {
		return 1
	}
	return d.MipLevels
}

// Vertex is the interleaved vertex layout shared by every mesh.
type Vertex struct {
	Position  [3]float32
	Normal    [3]float32
	Tangent   [3]float32
	Bitangent [3]float32
	UV        [2]float32
}

// RenderTarget selects an off-screen destination for draws.
// Depth textures are attached as the depth buffer with no color output;
// color textures get a temporary depth attachment of the same size.
type RenderTarget struct {
	Texture Texture
	Face    int // cube face 0..5 (+X, -X, +Y, -Y, +Z, -Z); ignored for 2D
	Mip     int
	Width   int
	Height  int
}

// DepthFunc is the depth comparison used by draws.
type DepthFunc int

const (
	DepthLess DepthFunc = iota
	DepthLEqual
)

// CullFace selects which faces are discarded.
type CullFace int

const (
	CullBack CullFace = iota
	CullFront
	CullNone
)

// Device is the set of graphics operations the engine needs.
//
// Uniform setters apply to the program most recently passed to UseProgram.
// Unknown uniform names are ignored, the way the driver ignores location -1.
type Device interface {
	CompileProgram(name, vertexSrc, fragmentSrc string) (Program, error)
	DeleteProgram(p Program)
	UseProgram(p Program)

	SetInt(name string, v int32)
	SetBool(name string, v bool)
	SetFloat(name string, v float32)
	SetVec3(name string, v [3]float32)
	SetVec4(name string, v [4]float32)
	SetMat4(name string, m math.Mat4)

	CreateTexture(desc TextureDesc) (Texture, error)
	DeleteTexture(t Texture)
	BindTexture(unit int, kind TextureKind, t Texture)
	GenerateMipmaps(kind TextureKind, t Texture)

	CreateMesh(vertices []Vertex, indices []uint32) (Mesh, error)
	DeleteMesh(m Mesh)
	DrawMesh(m Mesh)
	// DrawCube draws the unit cube used for skybox and cube captures.
	DrawCube()
	// DrawQuad draws a full-screen quad in clip space.
	DrawQuad()

	// BindTarget redirects draws to rt and sets the viewport to its size.
	// The returned func restores the previous framebuffer and viewport.
	BindTarget(rt RenderTarget) (restore func(), err error)
	Clear(color, depth bool)

	SetDepthWrite(enabled bool)
	SetDepthFunc(f DepthFunc)
	SetBlend(enabled bool)
	SetCullFace(c CullFace)

	// ReadCubeFace returns mip 0 of one cube face as size*size RGB floats,
	// rows ordered as stored by the API.
	ReadCubeFace(t Texture, face, size int) ([]float32, error)
}
