// Package envbake precomputes image-based lighting for a skybox: the
// radiance cubemap, its spherical-harmonic irradiance, the roughness
// prefiltered mip chain and the shared BRDF lookup table.
package envbake

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/engine/gfx"
	"github.com/Faultbox/prism/internal/engine/scene"
	"github.com/Faultbox/prism/internal/engine/sh"
	"github.com/Faultbox/prism/internal/engine/shaders"
	"github.com/Faultbox/prism/internal/engine/texture"
)

// ErrBake marks a failed environment bake. Nothing from a failed bake is
// published; the caller keeps its previous environment.
var ErrBake = errors.New("environment bake failed")

// Config holds the bake resolutions.
type Config struct {
	CubeSize      int
	PrefilterSize int
	PrefilterMips int
	BRDFSize      int
	SHClamp       float64
}

// DefaultConfig returns the standard bake sizes.
func DefaultConfig() Config {
	return Config{
		CubeSize:      1024,
		PrefilterSize: 512,
		PrefilterMips: 9,
		BRDFSize:      512,
		SHClamp:       0,
	}
}

// HDRSource loads an equirectangular HDR capture, rows bottom-up.
type HDRSource interface {
	LoadHDR(path string) (*texture.FloatImage, error)
}

// Baker turns HDR captures into scene environments.
//
// The BRDF LUT is owned by the Baker, not the process: it is baked on first
// use, shared by every environment this Baker returns, and freed by Close.
// Create one Baker per device so there is exactly one LUT.
type Baker struct {
	dev gfx.Device
	cfg Config
	src HDRSource
	log *zap.Logger

	equirect  gfx.Program
	prefilter gfx.Program
	brdfProg  gfx.Program

	brdfMu sync.Mutex
	brdf   gfx.Texture
}

// New compiles the bake programs.
func New(dev gfx.Device, cfg Config, src HDRSource, log *zap.Logger) (*Baker, error) {
	if log == nil {
		log = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.CubeSize <= 0 {
		cfg.CubeSize = def.CubeSize
	}
	if cfg.PrefilterSize <= 0 {
		cfg.PrefilterSize = def.PrefilterSize
	}
	if cfg.PrefilterMips <= 0 {
		cfg.PrefilterMips = def.PrefilterMips
	}
	if limit := mipCount(cfg.PrefilterSize); cfg.PrefilterMips > limit {
		cfg.PrefilterMips = limit
	}
	if cfg.BRDFSize <= 0 {
		cfg.BRDFSize = def.BRDFSize
	}

	b := &Baker{dev: dev, cfg: cfg, src: src, log: log.Named("envbake")}

	var err error
	if b.equirect, err = dev.CompileProgram("equirect", shaders.CubeVertex, shaders.EquirectFragment); err != nil {
		return nil, fmt.Errorf("envbake: %w", err)
	}
	if b.prefilter, err = dev.CompileProgram("prefilter", shaders.CubeVertex, shaders.PrefilterFragment); err != nil {
		b.Close()
		return nil, fmt.Errorf("envbake: %w", err)
	}
	if b.brdfProg, err = dev.CompileProgram("brdf", shaders.QuadVertex, shaders.BRDFFragment); err != nil {
		b.Close()
		return nil, fmt.Errorf("envbake: %w", err)
	}
	return b, nil
}

// Config returns the effective bake configuration.
func (b *Baker) Config() Config { return b.cfg }

// Bake loads the HDR capture at path and builds a complete environment.
// On failure every intermediate texture is freed and the error wraps ErrBake.
func (b *Baker) Bake(path string) (*scene.Environment, error) {
	start := time.Now()

	img, err := b.src.LoadHDR(path)
	if err != nil {
		return nil, b.fail(path, "decode", err)
	}

	source, err := b.dev.CreateTexture(gfx.TextureDesc{
		Kind:   gfx.Texture2D,
		Format: gfx.FormatRGB16F,
		Width:  img.Width,
		Height: img.Height,
		Floats: img.Pix,
		Wrap:   gfx.WrapClampEdge,
	})
	if err != nil {
		return nil, b.fail(path, "upload source", err)
	}
	defer b.dev.DeleteTexture(source)

	env := &scene.Environment{
		Source:        path,
		CubeSize:      b.cfg.CubeSize,
		PrefilterSize: b.cfg.PrefilterSize,
		PrefilterMips: b.cfg.PrefilterMips,
	}
	ok := false
	defer func() {
		if !ok {
			env.Destroy(b.dev)
		}
	}()

	b.dev.SetCullFace(gfx.CullNone)
	defer b.dev.SetCullFace(gfx.CullBack)

	if env.Cubemap, err = b.captureCube(source); err != nil {
		return nil, b.fail(path, "cubemap", err)
	}

	if env.SH, err = b.projectSH(env.Cubemap); err != nil {
		return nil, b.fail(path, "irradiance", err)
	}

	if env.Prefilter, err = b.prefilterCube(env.Cubemap); err != nil {
		return nil, b.fail(path, "prefilter", err)
	}

	if env.BRDF, err = b.BRDF(); err != nil {
		return nil, b.fail(path, "brdf", err)
	}

	ok = true
	b.log.Info("environment baked",
		zap.String("path", path),
		zap.Int("cube", b.cfg.CubeSize),
		zap.Int("prefilter_mips", b.cfg.PrefilterMips),
		zap.Duration("took", time.Since(start)))
	return env, nil
}

func (b *Baker) fail(path, step string, err error) error {
	b.log.Error("environment bake failed",
		zap.String("path", path),
		zap.String("step", step),
		zap.Error(err))
	return fmt.Errorf("%w: %s: %s: %w", ErrBake, path, step, err)
}

// captureCube projects the equirectangular source onto a mipmapped cube.
func (b *Baker) captureCube(source gfx.Texture) (gfx.Texture, error) {
	size := b.cfg.CubeSize
	cube, err := b.dev.CreateTexture(gfx.TextureDesc{
		Kind:      gfx.TextureCube,
		Format:    gfx.FormatRGB16F,
		Width:     size,
		Height:    size,
		MipLevels: mipCount(size),
		Wrap:      gfx.WrapClampEdge,
	})
	if err != nil {
		return 0, err
	}

	b.dev.UseProgram(b.equirect)
	b.dev.SetInt(gfx.UniformEquirect, 0)
	b.dev.SetMat4(gfx.UniformProjection, captureProjection())
	b.dev.BindTexture(0, gfx.Texture2D, source)

	if err := renderFaces(b.dev, cube, size, 0); err != nil {
		b.dev.DeleteTexture(cube)
		return 0, err
	}

	// The prefilter pass samples lower mips to suppress aliasing.
	b.dev.GenerateMipmaps(gfx.TextureCube, cube)
	return cube, nil
}

// projectSH reads back mip 0 of every face and reduces it on the CPU.
func (b *Baker) projectSH(cube gfx.Texture) (sh.Coefficients, error) {
	size := b.cfg.CubeSize
	var faces [6][]float32
	for face := range faces {
		data, err := b.dev.ReadCubeFace(cube, face, size)
		if err != nil {
			return sh.Coefficients{}, err
		}
		faces[face] = data
	}
	return sh.Project(faces, size, b.cfg.SHClamp)
}

// prefilterCube convolves cube once per mip, roughness rising linearly
// from 0 at mip 0 to 1 at the last mip.
func (b *Baker) prefilterCube(cube gfx.Texture) (gfx.Texture, error) {
	mips := b.cfg.PrefilterMips
	out, err := b.dev.CreateTexture(gfx.TextureDesc{
		Kind:      gfx.TextureCube,
		Format:    gfx.FormatRGB16F,
		Width:     b.cfg.PrefilterSize,
		Height:    b.cfg.PrefilterSize,
		MipLevels: mips,
		Wrap:      gfx.WrapClampEdge,
	})
	if err != nil {
		return 0, err
	}

	b.dev.UseProgram(b.prefilter)
	b.dev.SetInt(gfx.UniformEnvironmentMap, 0)
	b.dev.SetFloat(gfx.UniformBakeResolution, float32(b.cfg.CubeSize))
	b.dev.SetMat4(gfx.UniformProjection, captureProjection())
	b.dev.BindTexture(0, gfx.TextureCube, cube)

	for mip := 0; mip < mips; mip++ {
		size := b.cfg.PrefilterSize >> mip
		if size < 1 {
			size = 1
		}
		b.dev.SetFloat(gfx.UniformBakeRoughness, Roughness(mip, mips))
		if err := renderFaces(b.dev, out, size, mip); err != nil {
			b.dev.DeleteTexture(out)
			return 0, err
		}
	}
	return out, nil
}

// Roughness returns the roughness baked into mip of a chain of mips levels.
func Roughness(mip, mips int) float32 {
	if mips <= 1 {
		return 0
	}
	return float32(mip) / float32(mips-1)
}

// BRDF returns the shared split-sum lookup table, baking it on first use.
// Once baked it is never recomputed; Close frees it.
func (b *Baker) BRDF() (gfx.Texture, error) {
	b.brdfMu.Lock()
	defer b.brdfMu.Unlock()

	if b.brdf != 0 {
		return b.brdf, nil
	}

	size := b.cfg.BRDFSize
	lut, err := b.dev.CreateTexture(gfx.TextureDesc{
		Kind:   gfx.Texture2D,
		Format: gfx.FormatRG16F,
		Width:  size,
		Height: size,
		Wrap:   gfx.WrapClampEdge,
	})
	if err != nil {
		return 0, err
	}

	restore, err := b.dev.BindTarget(gfx.RenderTarget{Texture: lut, Width: size, Height: size})
	if err != nil {
		b.dev.DeleteTexture(lut)
		return 0, err
	}
	b.dev.UseProgram(b.brdfProg)
	b.dev.Clear(true, true)
	b.dev.DrawQuad()
	restore()

	b.brdf = lut
	b.log.Debug("brdf lookup table baked", zap.Int("size", size))
	return lut, nil
}

// Close frees the BRDF table and the bake programs. Environments returned by
// Bake must not be drawn afterwards.
func (b *Baker) Close() {
	b.brdfMu.Lock()
	if b.brdf != 0 {
		b.dev.DeleteTexture(b.brdf)
		b.brdf = 0
	}
	b.brdfMu.Unlock()

	for _, p := range []*gfx.Program{&b.equirect, &b.prefilter, &b.brdfProg} {
		if *p != 0 {
			b.dev.DeleteProgram(*p)
			*p = 0
		}
	}
}
