package viewer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/prism/internal/config"
	"github.com/Faultbox/prism/internal/engine/events"
	"github.com/Faultbox/prism/internal/engine/gfx/gfxtest"
	"github.com/Faultbox/prism/pkg/math"
)

type fakeInput struct {
	queue   []events.Event
	current []events.Event
}

func (f *fakeInput) Update() bool {
	f.current, f.queue = f.queue, nil
	for _, e := range f.current {
		if e.Kind == events.Quit {
			return true
		}
	}
	return false
}

func (f *fakeInput) Events() []events.Event { return f.current }

func (f *fakeInput) push(evs ...events.Event) { f.queue = append(f.queue, evs...) }

type fakeSurface struct {
	width, height int
	swaps         int
	title         string
}

func (f *fakeSurface) SwapBuffers()             { f.swaps++ }
func (f *fakeSurface) DrawableSize() (int, int) { return f.width, f.height }
func (f *fakeSurface) SetTitle(title string)    { f.title = title }

// writeAssets puts a one-triangle model and a tiny HDR sky in a temp root.
func writeAssets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{Name: "tri", Primitives: []*gltf.Primitive{{
		Attributes: map[string]int{"POSITION": pos},
		Indices:    gltf.Index(idx),
	}}}}
	doc.Nodes = []*gltf.Node{{Name: "tri", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}
	require.NoError(t, gltf.SaveBinary(doc, filepath.Join(dir, "tri.glb")))

	sky := []byte("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y 2 +X 4\n")
	for i := 0; i < 8; i++ {
		sky = append(sky, 128, 128, 128, 129)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sky.hdr"), sky, 0o644))
	return dir
}

func testConfig(dir string) *config.Config {
	cfg := config.Default()
	cfg.Render.ShadowResolution = 16
	cfg.Render.EnvCubeSize = 8
	cfg.Render.PrefilterSize = 8
	cfg.Render.PrefilterMips = 4
	cfg.Render.BRDFSize = 4
	cfg.Scene.AssetRoots = []string{dir}
	cfg.Scene.Models = []config.ModelConfig{{Path: "tri.glb", Scale: [3]float32{1, 1, 1}}}
	cfg.Scene.Skybox = "sky.hdr"
	return cfg
}

type harness struct {
	v       *Viewer
	dev     *gfxtest.Device
	input   *fakeInput
	surface *fakeSurface
	logs    *observer.ObservedLogs
}

func newHarness(t *testing.T, cfg *config.Config, dev *gfxtest.Device) *harness {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	h := &harness{
		dev:     dev,
		input:   &fakeInput{},
		surface: &fakeSurface{width: 640, height: 480},
		logs:    logs,
	}
	v, err := New(cfg, dev, h.surface, h.input, zap.New(core))
	require.NoError(t, err)
	h.v = v
	return h
}

func TestNewBuildsScene(t *testing.T) {
	h := newHarness(t, testConfig(writeAssets(t)), gfxtest.New())
	defer h.v.Close()

	s := h.v.Scene()
	assert.Len(t, s.Objects(), 1)
	assert.Len(t, s.DirectionalLights(), 1)
	require.NotNil(t, s.Environment())
	assert.Equal(t, "sky.hdr", s.Environment().Source)

	w, hh := s.Camera.Viewport()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, hh)
}

func TestFrameDrawsAndPresents(t *testing.T) {
	h := newHarness(t, testConfig(writeAssets(t)), gfxtest.New())
	defer h.v.Close()

	assert.True(t, h.v.Frame(1.0/60))
	assert.Equal(t, 1, h.surface.swaps)
	assert.True(t, h.v.lastStats.SkyboxDrawn)
	assert.Equal(t, 1, h.v.lastStats.Draws)
	assert.Zero(t, h.dev.BoundTargets())
}

func TestQuitStopsBeforeDrawing(t *testing.T) {
	h := newHarness(t, testConfig(writeAssets(t)), gfxtest.New())
	defer h.v.Close()

	h.input.push(events.Event{Kind: events.Quit})
	assert.False(t, h.v.Frame(1.0/60))
	assert.Zero(t, h.surface.swaps)
}

func TestModelPlacement(t *testing.T) {
	cfg := testConfig(writeAssets(t))
	cfg.Scene.Models[0].Position = [3]float32{0, 0, -5}
	cfg.Scene.Models[0].Scale = [3]float32{2, 2, 2}
	h := newHarness(t, cfg, gfxtest.New())
	defer h.v.Close()

	obj := h.v.Scene().Objects()[0]
	// File-space center (1,1,0) scaled by 2 then moved.
	assert.InDelta(t, 2, obj.Transform.Position.X, 1e-5)
	assert.InDelta(t, 2, obj.Transform.Position.Y, 1e-5)
	assert.InDelta(t, -5, obj.Transform.Position.Z, 1e-5)
	assert.Equal(t, math.Vec3{X: 2, Y: 2, Z: 2}, obj.Transform.Scale)
}

func TestModelScaleDefaultsToOne(t *testing.T) {
	s := modelScale(config.ModelConfig{})
	assert.Equal(t, math.Vec3{X: 1, Y: 1, Z: 1}, s)
}

func TestMissingModelIsNotFatal(t *testing.T) {
	cfg := testConfig(writeAssets(t))
	cfg.Scene.Models = append(cfg.Scene.Models, config.ModelConfig{Path: "missing.glb"})
	h := newHarness(t, cfg, gfxtest.New())
	defer h.v.Close()

	assert.Len(t, h.v.Scene().Objects(), 1)
	assert.Equal(t, 1, h.logs.FilterMessage("model not loaded").Len())
}

func TestCameraEvents(t *testing.T) {
	h := newHarness(t, testConfig(writeAssets(t)), gfxtest.New())
	defer h.v.Close()
	cam := h.v.Scene().Camera
	radius := cam.Radius

	h.input.push(events.Event{Kind: events.CameraZoom, Zoom: 1}, events.Event{Kind: events.CameraRotate, DX: 40})
	h.v.Frame(0)
	assert.Less(t, cam.Radius, radius)

	h.input.push(events.Event{Kind: events.CameraReset})
	h.v.Frame(0)
	assert.Equal(t, radius, cam.Radius)
}

func TestResizeUsesDrawableSize(t *testing.T) {
	h := newHarness(t, testConfig(writeAssets(t)), gfxtest.New())
	defer h.v.Close()

	h.surface.width, h.surface.height = 1600, 900
	h.input.push(events.Event{Kind: events.Resize, Width: 800, Height: 450})
	h.v.Frame(0)

	w, hh := h.v.Scene().Camera.Viewport()
	assert.Equal(t, 1600, w)
	assert.Equal(t, 900, hh)
}

func TestReloadSkybox(t *testing.T) {
	h := newHarness(t, testConfig(writeAssets(t)), gfxtest.New())
	defer h.v.Close()
	before := h.v.Scene().Environment().Cubemap

	h.input.push(events.Event{Kind: events.ReloadSkybox})
	h.v.Frame(0)

	env := h.v.Scene().Environment()
	assert.Equal(t, "sky.hdr", env.Source)
	assert.NotEqual(t, before, env.Cubemap)
	_, live := h.dev.TextureDesc(before)
	assert.False(t, live)
}

func TestReloadSkyboxFailureKeepsEnvironment(t *testing.T) {
	h := newHarness(t, testConfig(writeAssets(t)), gfxtest.New())
	defer h.v.Close()
	before := h.v.Scene().Environment()

	h.input.push(events.Event{Kind: events.ReloadSkybox, Path: "missing.hdr"})
	assert.True(t, h.v.Frame(0))

	assert.Same(t, before, h.v.Scene().Environment())
	assert.Equal(t, 1, h.logs.FilterMessage("skybox reload failed, keeping current environment").Len())
	assert.True(t, h.v.lastStats.SkyboxDrawn)
}

func TestToggleDebug(t *testing.T) {
	cfg := testConfig(writeAssets(t))
	h := newHarness(t, cfg, gfxtest.New())
	defer h.v.Close()

	h.input.push(events.Event{Kind: events.ToggleDebug})
	h.v.Frame(0)
	assert.Contains(t, h.surface.title, "1 objects")
	assert.NotZero(t, h.logs.FilterMessage("Skybox: sky.hdr").Len())

	h.input.push(events.Event{Kind: events.ToggleDebug})
	h.v.Frame(0)
	assert.Equal(t, cfg.Window.Title, h.surface.title)
}

func TestBrokenPBRShaderSkipsObjects(t *testing.T) {
	dev := gfxtest.New()
	dev.FailCompile[PBRShader] = true
	h := newHarness(t, testConfig(writeAssets(t)), dev)
	defer h.v.Close()

	assert.True(t, h.v.Frame(0))
	assert.Zero(t, h.v.lastStats.Draws)
	assert.Equal(t, 1, h.v.lastStats.Skipped)
	assert.True(t, h.v.lastStats.SkyboxDrawn)
}

func TestCloseReleasesEverything(t *testing.T) {
	dev := gfxtest.New()
	h := newHarness(t, testConfig(writeAssets(t)), dev)
	h.v.Frame(1.0 / 60)
	h.v.Close()

	assert.Zero(t, dev.LiveTextures())
	assert.Zero(t, dev.LiveMeshes())
	assert.Zero(t, dev.LivePrograms())
}
