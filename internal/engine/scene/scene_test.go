package scene

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/prism/internal/engine/camera"
	"github.com/Faultbox/prism/internal/engine/gfx"
	"github.com/Faultbox/prism/internal/engine/gfx/gfxtest"
	"github.com/Faultbox/prism/pkg/math"
)

func triangle() ([]gfx.Vertex, []uint32) {
	return []gfx.Vertex{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, 1, 0}},
	}, []uint32{0, 1, 2}
}

func newTestScene(t *testing.T) (*Scene, *gfxtest.Device) {
	t.Helper()
	dev := gfxtest.New()
	return New(dev, camera.NewOrbitCamera(5, 0, 0), nil), dev
}

func addTexture(t *testing.T, dev gfx.Device, m *Material, path string, typ TextureType) int {
	t.Helper()
	tex, err := NewTexture(dev, path, typ, 1, 1, 4, []byte{255, 255, 255, 255})
	require.NoError(t, err)
	return m.AddTexture(tex)
}

func TestAddObjectRejectsOutOfRangeSlot(t *testing.T) {
	s, dev := newTestScene(t)

	mat := NewMaterial("two", 0)
	addTexture(t, dev, mat, "a.png", TextureAlbedo)
	addTexture(t, dev, mat, "n.png", TextureNormal)
	h := s.Materials.Add(mat)

	verts, idx := triangle()
	mesh, err := NewMesh(dev, verts, idx, []int{0, 5})
	require.NoError(t, err)

	err = s.AddObject(NewObject("bad", h, mesh))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTextureSlotRange))

	var be *BoundsError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, 5, be.Slot)
	assert.Equal(t, 2, be.Len)
	assert.Empty(t, s.Objects())
}

func TestAddObjectRejectsUnknownMaterial(t *testing.T) {
	s, _ := newTestScene(t)
	err := s.AddObject(NewObject("orphan", 42))
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestRemoveObjectFreesMeshes(t *testing.T) {
	s, dev := newTestScene(t)
	h := s.Materials.Add(NewMaterial("plain", 0))

	verts, idx := triangle()
	mesh, err := NewMesh(dev, verts, idx, nil)
	require.NoError(t, err)
	obj := NewObject("tri", h, mesh)
	require.NoError(t, s.AddObject(obj))
	require.Equal(t, 1, dev.LiveMeshes())

	got, ok := s.Object(obj.ID)
	require.True(t, ok)
	assert.Same(t, obj, got)

	assert.True(t, s.RemoveObject(obj.ID))
	assert.False(t, s.RemoveObject(obj.ID))
	assert.Equal(t, 0, dev.LiveMeshes())
	assert.Empty(t, s.Objects())
}

func TestNewMeshRejectsBadIndex(t *testing.T) {
	dev := gfxtest.New()
	verts, _ := triangle()
	_, err := NewMesh(dev, verts, []uint32{0, 1, 3}, nil)
	assert.Error(t, err)
}

func TestMaterialDestroyFreesSharedHandleOnce(t *testing.T) {
	dev := gfxtest.New()
	mat := NewMaterial("orm", 0)
	tex, err := NewTexture(dev, "orm.png", TextureMetallicRoughness, 1, 1, 3, []byte{1, 2, 3})
	require.NoError(t, err)
	mat.AddTexture(tex)
	mat.AddTexture(tex.WithType(TextureOcclusion))

	found, ok := mat.TextureByPath("orm.png")
	require.True(t, ok)
	assert.Equal(t, tex.Handle, found.Handle)

	mat.Destroy(dev)
	assert.Equal(t, 1, dev.Count("DeleteTexture"))
	assert.Equal(t, 0, dev.LiveTextures())
}

func TestMaterialTransparent(t *testing.T) {
	m := NewMaterial("m", 0)
	assert.False(t, m.Transparent())
	m.BaseColor[3] = 0.5
	assert.True(t, m.Transparent())
	m.BaseColor[3] = 1
	m.AlphaBlend = true
	assert.True(t, m.Transparent())
}

func TestNewTextureValidates(t *testing.T) {
	dev := gfxtest.New()
	_, err := NewTexture(dev, "x.png", TextureAlbedo, 2, 2, 5, make([]byte, 20))
	assert.Error(t, err)
	_, err = NewTexture(dev, "x.png", TextureAlbedo, 2, 2, 3, make([]byte, 11))
	assert.Error(t, err)

	tex, err := NewTexture(dev, "x.png", TextureAlbedo, 2, 2, 1, make([]byte, 4))
	require.NoError(t, err)
	desc, ok := dev.TextureDesc(tex.Handle)
	require.True(t, ok)
	assert.Equal(t, gfx.FormatR8, desc.Format)
	assert.True(t, desc.Mipmapped)
	assert.Equal(t, gfx.WrapRepeat, desc.Wrap)
}

func TestShaderPool(t *testing.T) {
	dev := gfxtest.New()
	dev.FailCompile["broken"] = true
	pool := NewShaderPool()

	ok1, err := pool.Compile(dev, "pbr", "vs", "fs")
	require.NoError(t, err)
	again, err := pool.Compile(dev, "pbr", "vs", "fs")
	require.NoError(t, err)
	assert.Equal(t, ok1, again)
	assert.Equal(t, 1, dev.Count("CompileProgram"))

	bad, err := pool.Compile(dev, "broken", "vs", "fs")
	require.Error(t, err)
	assert.ErrorIs(t, err, gfx.ErrCompile)
	assert.NotZero(t, bad)

	_, valid := pool.Program(ok1)
	assert.True(t, valid)
	_, valid = pool.Program(bad)
	assert.False(t, valid)
	_, valid = pool.Program(0)
	assert.False(t, valid)

	h, found := pool.Lookup("broken")
	assert.True(t, found)
	assert.Equal(t, bad, h)
	assert.Equal(t, "pbr", pool.Name(ok1))

	pool.Destroy(dev)
	assert.Equal(t, 0, dev.LivePrograms())
}

func TestMaterialPoolHandles(t *testing.T) {
	pool := NewMaterialPool()
	_, ok := pool.Get(0)
	assert.False(t, ok)

	h := pool.Add(NewMaterial("a", 0))
	assert.Equal(t, MaterialHandle(1), h)
	m, ok := pool.Get(h)
	require.True(t, ok)
	assert.Equal(t, "a", m.Name)
	assert.Equal(t, 1, pool.Len())

	pool.Destroy(gfxtest.New())
	_, ok = pool.Get(h)
	assert.False(t, ok)
}

func TestSceneDestroyOrder(t *testing.T) {
	s, dev := newTestScene(t)
	sh, err := s.Shaders.Compile(dev, "pbr", "", "")
	require.NoError(t, err)

	mat := NewMaterial("m", sh)
	addTexture(t, dev, mat, "a.png", TextureAlbedo)
	h := s.Materials.Add(mat)

	verts, idx := triangle()
	mesh, err := NewMesh(dev, verts, idx, []int{0})
	require.NoError(t, err)
	require.NoError(t, s.AddObject(NewObject("o", h, mesh)))

	dev.Reset()
	s.Destroy()

	var ops []string
	for _, c := range dev.Calls {
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []string{"DeleteMesh", "DeleteTexture", "DeleteProgram"}, ops)
	assert.Equal(t, 0, dev.LiveMeshes()+dev.LiveTextures()+dev.LivePrograms())
}

func TestSetEnvironmentReleasesPrevious(t *testing.T) {
	s, dev := newTestScene(t)

	mk := func() *Environment {
		cube, err := dev.CreateTexture(gfx.TextureDesc{Kind: gfx.TextureCube, Width: 4, Height: 4})
		require.NoError(t, err)
		pre, err := dev.CreateTexture(gfx.TextureDesc{Kind: gfx.TextureCube, Width: 4, Height: 4})
		require.NoError(t, err)
		return &Environment{Source: "sky.hdr", Cubemap: cube, Prefilter: pre, BRDF: 999}
	}

	first := mk()
	s.SetEnvironment(first)
	s.SetEnvironment(first)
	assert.Equal(t, 2, dev.LiveTextures())

	second := mk()
	s.SetEnvironment(second)
	assert.Equal(t, 2, dev.LiveTextures())
	assert.Same(t, second, s.Environment())
	for _, c := range dev.Filter("DeleteTexture") {
		assert.NotEqual(t, gfx.Texture(999), c.Texture, "shared BRDF must not be freed")
	}
}

func TestDirectionalLightStaleness(t *testing.T) {
	l := NewDirectionalLight(math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1})
	assert.InDelta(t, 1, l.Direction().Length(), 1e-6)
	assert.True(t, l.LightSpaceStale())

	l.SetLightSpaceMatrix(math.Identity())
	assert.False(t, l.LightSpaceStale())

	l.SetDirection(math.Vec3{X: -2, Y: -2, Z: -2})
	assert.False(t, l.LightSpaceStale(), "same normalized direction")

	l.SetDirection(math.Vec3{Y: -1})
	assert.True(t, l.LightSpaceStale())

	l.SetDirection(math.Vec3{})
	assert.Equal(t, math.Vec3{Y: -1}, l.Direction())
}

func TestUpdateSpinsLightsAndIsIdempotentAtZero(t *testing.T) {
	s, _ := newTestScene(t)
	l := NewDirectionalLight(math.Vec3{X: 1}, math.Vec3{X: 1, Y: 1, Z: 1})
	l.SpinDegPerSec = 90
	s.AddLight(l)
	s.AddLight(NewPointLight(math.Vec3{}, math.Vec3{X: 1}, 5))

	view := s.Camera.ViewMatrix()
	s.Update(0)
	s.Update(0)
	assert.Equal(t, math.Vec3{X: 1}, l.Direction())
	assert.Equal(t, view, s.Camera.ViewMatrix())

	s.Update(1)
	d := l.Direction()
	assert.InDelta(t, 0, d.X, 1e-6)
	assert.InDelta(t, -1, d.Z, 1e-6)

	assert.Len(t, s.Lights(), 2)
	assert.Len(t, s.DirectionalLights(), 1)
}
