package importer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func quad() primitiveData {
	return primitiveData{
		positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		uvs:       [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}

func assertVec(t *testing.T, want, got [3]float32) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d of %v", i, got)
	}
}

func TestBuildVerticesGeneratesBasis(t *testing.T) {
	verts := buildVertices(quad(), mgl32.Ident4())

	for _, v := range verts {
		assertVec(t, [3]float32{0, 0, 1}, v.Normal)
		assertVec(t, [3]float32{1, 0, 0}, v.Tangent)
		assertVec(t, [3]float32{0, 1, 0}, v.Bitangent)
	}
}

func TestBuildVerticesAppliesWorld(t *testing.T) {
	world := mgl32.Translate3D(0, 0, 5).Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(-90)))
	verts := buildVertices(quad(), world)

	assertVec(t, [3]float32{0, 0, 5}, verts[0].Position)
	assertVec(t, [3]float32{0, 0, 4}, verts[3].Position)
	assertVec(t, [3]float32{0, 1, 0}, verts[0].Normal)
	assert.Equal(t, [2]float32{1, 1}, verts[2].UV)
}

func TestBuildVerticesKeepsNormalsUnderNonUniformScale(t *testing.T) {
	p := quad()
	p.normals = [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	verts := buildVertices(p, mgl32.Scale3D(4, 1, 0.5))

	for _, v := range verts {
		assertVec(t, [3]float32{0, 0, 1}, v.Normal)
	}
}

func TestBuildVerticesWithoutUVs(t *testing.T) {
	p := quad()
	p.uvs = nil
	verts := buildVertices(p, mgl32.Ident4())

	for _, v := range verts {
		n, tan, b := mgl32.Vec3(v.Normal), mgl32.Vec3(v.Tangent), mgl32.Vec3(v.Bitangent)
		assert.InDelta(t, 0, n.Dot(tan), 1e-5)
		assert.InDelta(t, 0, n.Dot(b), 1e-5)
		assert.InDelta(t, 1, tan.Len(), 1e-5)
	}
}

func TestBuildVerticesUsesSuppliedTangents(t *testing.T) {
	p := quad()
	p.tangents = [][4]float32{{0, 1, 0, -1}, {0, 1, 0, -1}, {0, 1, 0, -1}, {0, 1, 0, -1}}
	verts := buildVertices(p, mgl32.Ident4())

	assertVec(t, [3]float32{0, 1, 0}, verts[0].Tangent)
	// n × t · w = (0,0,1)×(0,1,0)·-1
	assertVec(t, [3]float32{1, 0, 0}, verts[0].Bitangent)
}

func TestBounds(t *testing.T) {
	lo, hi := bounds(buildVertices(quad(), mgl32.Translate3D(-1, 2, 3)))
	assertVec(t, [3]float32{-1, 2, 3}, lo)
	assertVec(t, [3]float32{0, 3, 3}, hi)
}
