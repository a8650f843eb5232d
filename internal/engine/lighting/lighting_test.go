package lighting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/prism/internal/engine/gfx/gfxtest"
)

func TestSunDirection(t *testing.T) {
	tests := []struct {
		name    string
		az, el  float32
		x, y, z float32
	}{
		{"horizon south", 0, 0, 0, 0, 1},
		{"zenith", 0, 90, 0, 1, 0},
		{"east", 90, 0, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := SunDirection(tt.az, tt.el)
			assert.InDelta(t, tt.x, d.X, 1e-6)
			assert.InDelta(t, tt.y, d.Y, 1e-6)
			assert.InDelta(t, tt.z, d.Z, 1e-6)
			assert.InDelta(t, 1, d.Length(), 1e-6)
		})
	}

	assert.InDelta(t, -1, LightDirection(0, 90).Y, 1e-6)
}

func TestBufferCaps(t *testing.T) {
	b := NewBuffer()
	for i := 0; i < MaxPointLights; i++ {
		require.True(t, b.AddPoint(PointLight{Radius: 1}))
	}
	assert.False(t, b.AddPoint(PointLight{}))

	for i := 0; i < MaxDirLights; i++ {
		require.True(t, b.AddDir(DirLight{}))
	}
	assert.False(t, b.AddDir(DirLight{}))

	b.Clear()
	assert.Empty(t, b.Points)
	assert.Empty(t, b.Dirs)
}

func TestBufferDefaultsRadius(t *testing.T) {
	b := NewBuffer()
	b.AddPoint(PointLight{})
	assert.Equal(t, float32(10), b.Points[0].Radius)
}

func TestUpload(t *testing.T) {
	dev := gfxtest.New()
	p, err := dev.CompileProgram("pbr", "", "")
	require.NoError(t, err)
	dev.UseProgram(p)

	b := NewBuffer()
	b.AddDir(DirLight{Direction: [3]float32{0, -1, 0}, Color: [3]float32{1, 1, 1}})
	b.AddPoint(PointLight{Position: [3]float32{1, 2, 3}, Color: [3]float32{1, 0, 0}, Radius: 4})
	b.Upload(dev)

	v, ok := dev.Uniform(p, "numDirLights")
	require.True(t, ok)
	assert.Equal(t, int32(1), v)

	v, ok = dev.Uniform(p, "pointLights[0].position")
	require.True(t, ok)
	assert.Equal(t, [3]float32{1, 2, 3}, v)

	v, ok = dev.Uniform(p, "pointLights[0].radius")
	require.True(t, ok)
	assert.Equal(t, float32(4), v)
}
