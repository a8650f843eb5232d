package importer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/prism/internal/engine/gfx"
)

// primitiveData is one triangle list read from a glTF primitive.
type primitiveData struct {
	positions [][3]float32
	normals   [][3]float32
	tangents  [][4]float32
	uvs       [][2]float32
	indices   []uint32
}

// buildVertices bakes world into the vertices and fills in missing normals
// and tangents.
func buildVertices(p primitiveData, world mgl32.Mat4) []gfx.Vertex {
	n := len(p.positions)
	verts := make([]gfx.Vertex, n)

	normalMat := world.Mat3().Inv().Transpose()
	linear := world.Mat3()

	for i, pos := range p.positions {
		wp := world.Mul4x1(mgl32.Vec4{pos[0], pos[1], pos[2], 1})
		verts[i].Position = [3]float32{wp[0], wp[1], wp[2]}
		if i < len(p.uvs) {
			verts[i].UV = p.uvs[i]
		}
	}

	normals := p.normals
	if len(normals) != n {
		normals = faceNormals(p.positions, p.indices)
	}
	for i := range verts {
		nrm := normalMat.Mul3x1(mgl32.Vec3(normals[i]))
		verts[i].Normal = safeNormalize(nrm, mgl32.Vec3{0, 1, 0})
	}

	if len(p.tangents) == n {
		for i := range verts {
			t := p.tangents[i]
			tan := linear.Mul3x1(mgl32.Vec3{t[0], t[1], t[2]})
			setBasis(&verts[i], tan, t[3])
		}
		return verts
	}

	generateTangents(verts, p.indices, len(p.uvs) == n)
	return verts
}

// faceNormals computes area-weighted vertex normals from the triangles.
func faceNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	acc := make([]mgl32.Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		pa, pb, pc := mgl32.Vec3(positions[a]), mgl32.Vec3(positions[b]), mgl32.Vec3(positions[c])
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}
	out := make([][3]float32, len(positions))
	for i, n := range acc {
		out[i] = safeNormalize(n, mgl32.Vec3{0, 1, 0})
	}
	return out
}

// generateTangents derives per-vertex tangents from UV gradients, or an
// arbitrary perpendicular basis when the mesh has no UVs.
func generateTangents(verts []gfx.Vertex, indices []uint32, hasUV bool) {
	tan := make([]mgl32.Vec3, len(verts))
	bit := make([]mgl32.Vec3, len(verts))

	if hasUV {
		for i := 0; i+2 < len(indices); i += 3 {
			tri := [3]uint32{indices[i], indices[i+1], indices[i+2]}
			p0 := mgl32.Vec3(verts[tri[0]].Position)
			p1 := mgl32.Vec3(verts[tri[1]].Position)
			p2 := mgl32.Vec3(verts[tri[2]].Position)
			uv0 := mgl32.Vec2(verts[tri[0]].UV)
			uv1 := mgl32.Vec2(verts[tri[1]].UV)
			uv2 := mgl32.Vec2(verts[tri[2]].UV)

			e1, e2 := p1.Sub(p0), p2.Sub(p0)
			d1, d2 := uv1.Sub(uv0), uv2.Sub(uv0)
			det := d1[0]*d2[1] - d2[0]*d1[1]
			if det == 0 {
				continue
			}
			r := 1 / det
			t := e1.Mul(d2[1]).Sub(e2.Mul(d1[1])).Mul(r)
			b := e2.Mul(d1[0]).Sub(e1.Mul(d2[0])).Mul(r)
			for _, v := range tri {
				tan[v] = tan[v].Add(t)
				bit[v] = bit[v].Add(b)
			}
		}
	}

	for i := range verts {
		n := mgl32.Vec3(verts[i].Normal)
		w := float32(1)
		if n.Cross(tan[i]).Dot(bit[i]) < 0 {
			w = -1
		}
		setBasis(&verts[i], tan[i], w)
	}
}

// setBasis orthogonalizes t against the vertex normal and derives the
// bitangent. w is the glTF handedness sign.
func setBasis(v *gfx.Vertex, t mgl32.Vec3, w float32) {
	n := mgl32.Vec3(v.Normal)
	t = t.Sub(n.Mul(n.Dot(t)))
	if t.Len() < 1e-6 {
		t = perpendicular(n)
	}
	t = t.Normalize()
	v.Tangent = t
	v.Bitangent = n.Cross(t).Mul(w)
}

// perpendicular returns a unit vector orthogonal to n.
func perpendicular(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if abs(n[0]) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return axis.Sub(n.Mul(n.Dot(axis))).Normalize()
}

func safeNormalize(v, fallback mgl32.Vec3) [3]float32 {
	if v.Len() < 1e-12 {
		return fallback
	}
	return v.Normalize()
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// bounds returns the axis-aligned box around the vertices.
func bounds(verts []gfx.Vertex) (lo, hi mgl32.Vec3) {
	if len(verts) == 0 {
		return lo, hi
	}
	lo, hi = verts[0].Position, verts[0].Position
	for _, v := range verts[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], v.Position[k])
			hi[k] = max(hi[k], v.Position[k])
		}
	}
	return lo, hi
}
