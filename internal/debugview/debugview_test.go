package debugview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/prism/internal/engine/camera"
	"github.com/Faultbox/prism/internal/engine/gfx"
	"github.com/Faultbox/prism/internal/engine/gfx/gfxtest"
	"github.com/Faultbox/prism/internal/engine/renderer"
	"github.com/Faultbox/prism/internal/engine/scene"
	"github.com/Faultbox/prism/pkg/math"
)

func populated(t *testing.T) *scene.Scene {
	t.Helper()
	dev := gfxtest.New()
	s := scene.New(dev, camera.NewOrbitCamera(5, 0, 0), nil)

	glass := scene.NewMaterial("glass", 1)
	glass.BaseColor[3] = 0.4
	h := s.Materials.Add(glass)

	mesh, err := scene.NewMesh(dev, []gfx.Vertex{{}, {}, {}}, []uint32{0, 1, 2}, nil)
	require.NoError(t, err)
	obj := scene.NewObject("pane", h, mesh)
	obj.Transform.Position = math.Vec3{X: 1, Y: 2, Z: 3}
	require.NoError(t, s.AddObject(obj))

	s.AddLight(scene.NewDirectionalLight(math.Vec3{Y: -1}, math.Vec3{X: 1, Y: 1, Z: 1}))
	s.AddLight(scene.NewPointLight(math.Vec3{}, math.Vec3{X: 1}, 4))
	s.AddLight(scene.NewPointLight(math.Vec3{}, math.Vec3{Y: 1}, 4))
	return s
}

func TestCapture(t *testing.T) {
	s := populated(t)
	snap := Capture(s, renderer.Stats{Draws: 1, ProgramSwitches: 1})

	require.Len(t, snap.Objects, 1)
	o := snap.Objects[0]
	assert.Equal(t, "pane", o.Name)
	assert.Equal(t, "glass", o.Material)
	assert.True(t, o.Transparent)
	assert.Equal(t, 1, o.Meshes)
	assert.Equal(t, math.Vec3{X: 1, Y: 2, Z: 3}, o.Position)
	assert.Equal(t, s.Objects()[0].ID, o.ID)

	assert.Equal(t, 1, snap.DirectionalLights)
	assert.Equal(t, 2, snap.PointLights)
	assert.Equal(t, 1, snap.Materials)
	assert.Equal(t, 1, snap.Stats.Draws)
	assert.InDelta(t, 5, snap.CameraRadius, 1e-6)
	assert.Empty(t, snap.Skybox)
}

func TestCaptureDoesNotAliasScene(t *testing.T) {
	s := populated(t)
	snap := Capture(s, renderer.Stats{})

	snap.Objects[0].Name = "changed"
	assert.Equal(t, "pane", s.Objects()[0].Name)
}

func TestCaptureEnvironment(t *testing.T) {
	s := populated(t)
	env := &scene.Environment{Source: "sky.hdr"}
	env.SH[0] = [3]float32{1, 2, 3}
	s.SetEnvironment(env)

	snap := Capture(s, renderer.Stats{})
	assert.Equal(t, "sky.hdr", snap.Skybox)
	assert.Equal(t, [3]float32{1, 2, 3}, snap.SH[0])

	text := strings.Join(snap.Lines(), "\n")
	assert.Contains(t, text, "Skybox: sky.hdr")
	assert.Contains(t, text, "SH[0]: 1.000 2.000 3.000")
	assert.Contains(t, text, "pane [glass]")
}

func TestTitle(t *testing.T) {
	snap := Snapshot{FPS: 59.6, Stats: renderer.Stats{Draws: 12, ProgramSwitches: 3}, Objects: make([]ObjectInfo, 4)}
	assert.Equal(t, "60 fps | 12 draws | 3 switches | 4 objects", snap.Title())
}

func TestFrameTimer(t *testing.T) {
	reads := 0
	ft := NewFrameTimer()
	ft.readMemory = func() uint64 { reads++; return 1 << 20 }

	for i := 0; i < 31; i++ {
		ft.Tick(1000.0 / 60)
	}

	var snap Snapshot
	ft.Fill(&snap)
	assert.InDelta(t, 60, snap.FPS, 0.5)
	assert.InDelta(t, 16.67, snap.FrameTime, 0.01)
	assert.Equal(t, uint64(1<<20), snap.HeapAlloc)
	assert.Equal(t, 1, reads)
}
