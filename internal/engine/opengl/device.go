// Package opengl implements gfx.Device on an OpenGL 4.1 core context.
package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/engine/framebuffer"
	"github.com/Faultbox/prism/internal/engine/gfx"
	"github.com/Faultbox/prism/internal/engine/shader"
	"github.com/Faultbox/prism/pkg/math"
)

// Device drives the current OpenGL context. All methods must be called on
// the thread that owns the context.
type Device struct {
	log *zap.Logger

	programs map[gfx.Program]*shader.Uniforms
	current  *shader.Uniforms
	textures map[gfx.Texture]gfx.TextureDesc
	meshes   map[gfx.Mesh]*meshBuffers

	capture *framebuffer.Capture
	cube    *meshBuffers
	quad    *meshBuffers
}

// New initializes OpenGL on the current context.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New(clearColor [4]float32, log *zap.Logger) (*Device, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// Initialize OpenGL
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	// Log OpenGL info
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)

	// Setup default OpenGL state
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(clearColor[0], clearColor[1], clearColor[2], clearColor[3])

	d := &Device{
		log:      log.Named("gl"),
		programs: map[gfx.Program]*shader.Uniforms{},
		textures: map[gfx.Texture]gfx.TextureDesc{},
		meshes:   map[gfx.Mesh]*meshBuffers{},
		capture:  framebuffer.New(),
		cube:     newPositionBuffers(cubePositions, gl.TRIANGLES),
		quad:     newPositionBuffers(quadPositions, gl.TRIANGLE_STRIP),
	}
	return d, nil
}

// Close frees device-owned objects and reports leaked resources.
func (d *Device) Close() {
	if n := len(d.textures) + len(d.meshes) + len(d.programs); n > 0 {
		d.log.Warn("device closed with live resources",
			zap.Int("textures", len(d.textures)),
			zap.Int("meshes", len(d.meshes)),
			zap.Int("programs", len(d.programs)))
	}
	d.capture.Destroy()
	d.cube.destroy()
	d.quad.destroy()
}

// SetViewport sets the default framebuffer viewport after a resize.
func (d *Device) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	d.log.Debug("viewport resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

func (d *Device) CompileProgram(name, vertexSrc, fragmentSrc string) (gfx.Program, error) {
	id, err := shader.CompileProgram(name, vertexSrc, fragmentSrc)
	if err != nil {
		d.log.Error("shader compile failed", zap.String("program", name), zap.Error(err))
		return 0, err
	}
	p := gfx.Program(id)
	d.programs[p] = shader.NewUniforms(id)
	d.log.Debug("program compiled", zap.String("program", name), zap.Uint32("id", id))
	return p, nil
}

func (d *Device) DeleteProgram(p gfx.Program) {
	u, ok := d.programs[p]
	if !ok {
		return
	}
	if d.current == u {
		gl.UseProgram(0)
		d.current = nil
	}
	gl.DeleteProgram(uint32(p))
	delete(d.programs, p)
}

func (d *Device) UseProgram(p gfx.Program) {
	u, ok := d.programs[p]
	if !ok {
		d.current = nil
		gl.UseProgram(0)
		return
	}
	d.current = u
	gl.UseProgram(uint32(p))
}

// location resolves name on the current program, -1 if none is bound.
func (d *Device) location(name string) int32 {
	if d.current == nil {
		return -1
	}
	return d.current.Location(name)
}

func (d *Device) SetInt(name string, v int32) {
	if loc := d.location(name); loc >= 0 {
		gl.Uniform1i(loc, v)
	}
}

func (d *Device) SetBool(name string, v bool) {
	var i int32
	if v {
		i = 1
	}
	d.SetInt(name, i)
}

func (d *Device) SetFloat(name string, v float32) {
	if loc := d.location(name); loc >= 0 {
		gl.Uniform1f(loc, v)
	}
}

func (d *Device) SetVec3(name string, v [3]float32) {
	if loc := d.location(name); loc >= 0 {
		gl.Uniform3f(loc, v[0], v[1], v[2])
	}
}

func (d *Device) SetVec4(name string, v [4]float32) {
	if loc := d.location(name); loc >= 0 {
		gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	}
}

func (d *Device) SetMat4(name string, m math.Mat4) {
	if loc := d.location(name); loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, m.Ptr())
	}
}

func (d *Device) BindTarget(rt gfx.RenderTarget) (func(), error) {
	desc, ok := d.textures[rt.Texture]
	if !ok {
		return nil, fmt.Errorf("bind target: unknown texture %d", rt.Texture)
	}

	target := uint32(gl.TEXTURE_2D)
	if desc.Kind == gfx.TextureCube {
		if rt.Face < 0 || rt.Face > 5 {
			return nil, fmt.Errorf("bind target: cube face %d out of range", rt.Face)
		}
		target = gl.TEXTURE_CUBE_MAP_POSITIVE_X + uint32(rt.Face)
	}

	return d.capture.Bind(framebuffer.Attachment{
		Texture: uint32(rt.Texture),
		Target:  target,
		Mip:     int32(rt.Mip),
		Depth:   desc.Format == gfx.FormatDepth24,
		Width:   int32(rt.Width),
		Height:  int32(rt.Height),
	})
}

func (d *Device) Clear(color, depth bool) {
	var mask uint32
	if color {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

func (d *Device) SetDepthWrite(enabled bool) {
	gl.DepthMask(enabled)
}

func (d *Device) SetDepthFunc(f gfx.DepthFunc) {
	switch f {
	case gfx.DepthLEqual:
		gl.DepthFunc(gl.LEQUAL)
	default:
		gl.DepthFunc(gl.LESS)
	}
}

func (d *Device) SetBlend(enabled bool) {
	if enabled {
		gl.Enable(gl.BLEND)
	} else {
		gl.Disable(gl.BLEND)
	}
}

func (d *Device) SetCullFace(c gfx.CullFace) {
	switch c {
	case gfx.CullNone:
		gl.Disable(gl.CULL_FACE)
	case gfx.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	default:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}
}

var _ gfx.Device = (*Device)(nil)
