// Package importer loads glTF 2.0 scenes into scene objects.
package importer

import (
	"errors"
	"fmt"
	"mime"
	"net/url"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/engine/gfx"
	"github.com/Faultbox/prism/internal/engine/scene"
	"github.com/Faultbox/prism/internal/engine/texture"
	"github.com/Faultbox/prism/pkg/math"
)

// ErrImport marks a scene file that could not be read.
var ErrImport = errors.New("scene import failed")

// Resolver finds asset files on disk.
type Resolver interface {
	Resolve(path string) (string, error)
}

// ImageLoader decodes 8-bit images by path.
type ImageLoader interface {
	LoadImage(path string) (*texture.Image, error)
}

// Importer turns glTF files into objects that share the target scene's
// material pool.
type Importer struct {
	dev    gfx.Device
	scn    *scene.Scene
	files  Resolver
	images ImageLoader
	shader scene.ShaderHandle
	log    *zap.Logger
}

// New creates an importer. Imported materials use shader.
func New(dev gfx.Device, s *scene.Scene, files Resolver, images ImageLoader, shader scene.ShaderHandle, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{
		dev:    dev,
		scn:    s,
		files:  files,
		images: images,
		shader: shader,
		log:    log.Named("importer"),
	}
}

// importState tracks the resources of one ImportScene call so a failed
// import can release them.
type importState struct {
	doc  *gltf.Document
	path string
	dir  string

	materials map[int]*scene.Material
	fallback  *scene.Material
	objects   []*scene.Object

	// decoded caches image decodes by key; each material still uploads
	// and owns its own GPU texture.
	decoded map[string]decodedImage
}

type decodedImage struct {
	img *texture.Image
	err error
}

// ImportScene loads every mesh of the file's default scene. Each glTF mesh
// becomes one object per material it uses, with node transforms baked into
// the vertices and the object positioned at the center of its bounds.
// Texture failures degrade to scalar material values and are only logged.
func (im *Importer) ImportScene(path string) ([]*scene.Object, error) {
	resolved, err := im.files.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImport, path, err)
	}

	doc, err := gltf.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImport, path, err)
	}

	st := &importState{
		doc:       doc,
		path:      resolved,
		dir:       filepath.Dir(resolved),
		materials: map[int]*scene.Material{},
		decoded:   map[string]decodedImage{},
	}

	if err := im.walkScene(st); err != nil {
		im.release(st)
		return nil, fmt.Errorf("%w: %s: %w", ErrImport, path, err)
	}

	// Publish materials only once every mesh uploaded.
	handles := map[*scene.Material]scene.MaterialHandle{}
	for _, obj := range st.objects {
		mat := im.pending(st, obj)
		h, ok := handles[mat]
		if !ok {
			h = im.scn.Materials.Add(mat)
			handles[mat] = h
		}
		obj.Material = h
	}

	im.log.Info("scene imported",
		zap.String("path", resolved),
		zap.Int("objects", len(st.objects)),
		zap.Int("materials", len(handles)))
	return st.objects, nil
}

// pending maps an object back to its unpublished material through the
// temporary handle stored during the walk.
func (im *Importer) pending(st *importState, obj *scene.Object) *scene.Material {
	idx := int(obj.Material) - 1
	if idx < 0 {
		return st.fallback
	}
	return st.materials[idx]
}

func (im *Importer) release(st *importState) {
	for _, obj := range st.objects {
		obj.Destroy(im.dev)
	}
	for _, m := range st.materials {
		m.Destroy(im.dev)
	}
	if st.fallback != nil {
		st.fallback.Destroy(im.dev)
	}
}

func (im *Importer) walkScene(st *importState) error {
	doc := st.doc
	var roots []int
	switch {
	case doc.Scene != nil && *doc.Scene < len(doc.Scenes):
		roots = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		roots = doc.Scenes[0].Nodes
	default:
		// No scene: treat every node as a root.
		for i := range doc.Nodes {
			roots = append(roots, i)
		}
	}

	for _, n := range roots {
		if err := im.walkNode(st, n, mgl32.Ident4(), 0); err != nil {
			return err
		}
	}
	if len(st.objects) == 0 {
		return errors.New("no triangle meshes")
	}
	return nil
}

const maxNodeDepth = 64

func (im *Importer) walkNode(st *importState, idx int, parent mgl32.Mat4, depth int) error {
	if idx < 0 || idx >= len(st.doc.Nodes) {
		return fmt.Errorf("node %d out of range", idx)
	}
	if depth > maxNodeDepth {
		return fmt.Errorf("node %d: hierarchy deeper than %d", idx, maxNodeDepth)
	}
	node := st.doc.Nodes[idx]
	world := parent.Mul4(localMatrix(node))

	if node.Mesh != nil {
		if err := im.importMesh(st, node, *node.Mesh, world); err != nil {
			return err
		}
	}
	for _, child := range node.Children {
		if err := im.walkNode(st, child, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// localMatrix is the node's matrix, or T·R·S from its decomposed form.
func localMatrix(node *gltf.Node) mgl32.Mat4 {
	if mat := node.MatrixOrDefault(); mat != gltf.DefaultMatrix {
		var m mgl32.Mat4
		for i, v := range mat {
			m[i] = float32(v)
		}
		return m
	}

	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()
	q := math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])}.Normalize()

	return mgl32.Mat4(math.Translate(float32(t[0]), float32(t[1]), float32(t[2]))).
		Mul4(mgl32.Mat4(q.ToMat4())).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

func (im *Importer) importMesh(st *importState, node *gltf.Node, meshIdx int, world mgl32.Mat4) error {
	doc := st.doc
	if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
		return fmt.Errorf("mesh %d out of range", meshIdx)
	}
	gm := doc.Meshes[meshIdx]

	name := node.Name
	if name == "" {
		name = gm.Name
	}
	if name == "" {
		name = fmt.Sprintf("mesh%d", meshIdx)
	}

	// One object per material, in first-use order.
	type group struct {
		matIdx int
		verts  [][]gfx.Vertex
		idx    [][]uint32
	}
	var groups []*group
	byMat := map[int]*group{}

	for pi, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			im.log.Warn("skipping non-triangle primitive",
				zap.String("mesh", name), zap.Int("primitive", pi), zap.Int("mode", int(prim.Mode)))
			continue
		}
		data, err := im.readPrimitive(doc, name, pi, prim)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", name, pi, err)
		}

		matIdx := -1
		if prim.Material != nil {
			matIdx = *prim.Material
		}
		g, ok := byMat[matIdx]
		if !ok {
			g = &group{matIdx: matIdx}
			byMat[matIdx] = g
			groups = append(groups, g)
		}
		g.verts = append(g.verts, buildVertices(data, world))
		g.idx = append(g.idx, data.indices)
	}

	for gi, g := range groups {
		mat, tmp := im.material(st, g.matIdx)

		objName := name
		if len(groups) > 1 {
			objName = fmt.Sprintf("%s#%d", name, gi)
		}
		obj := scene.NewObject(objName, tmp)
		center := centerOf(g.verts)
		obj.Transform.Position = math.Vec3{X: center[0], Y: center[1], Z: center[2]}
		st.objects = append(st.objects, obj)

		slots := allSlots(mat)
		for i, verts := range g.verts {
			for k := range verts {
				verts[k].Position[0] -= center[0]
				verts[k].Position[1] -= center[1]
				verts[k].Position[2] -= center[2]
			}
			m, err := scene.NewMesh(im.dev, verts, g.idx[i], slots)
			if err != nil {
				return fmt.Errorf("mesh %q: %w", objName, err)
			}
			obj.Meshes = append(obj.Meshes, m)
		}
	}
	return nil
}

func centerOf(parts [][]gfx.Vertex) mgl32.Vec3 {
	var all []gfx.Vertex
	for _, p := range parts {
		all = append(all, p...)
	}
	lo, hi := bounds(all)
	return lo.Add(hi).Mul(0.5)
}

func allSlots(mat *scene.Material) []int {
	slots := make([]int, len(mat.Textures))
	for i := range slots {
		slots[i] = i
	}
	return slots
}

// readPrimitive reads one triangle primitive. POSITION is required; a bad
// NORMAL, TANGENT or TEXCOORD_0 accessor is logged and the data generated
// or zeroed instead.
func (im *Importer) readPrimitive(doc *gltf.Document, mesh string, pi int, prim *gltf.Primitive) (primitiveData, error) {
	var out primitiveData

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return out, errors.New("no POSITION attribute")
	}
	acc, err := accessor(doc, posIdx)
	if err != nil {
		return out, err
	}
	if out.positions, err = modeler.ReadPosition(doc, acc, nil); err != nil {
		return out, fmt.Errorf("positions: %w", err)
	}

	warn := func(attr string, err error) {
		im.log.Warn("ignoring unreadable vertex attribute",
			zap.String("mesh", mesh), zap.Int("primitive", pi), zap.String("attribute", attr), zap.Error(err))
	}
	if i, ok := prim.Attributes["NORMAL"]; ok {
		acc, err := accessor(doc, i)
		if err == nil {
			out.normals, err = modeler.ReadNormal(doc, acc, nil)
		}
		if err != nil {
			out.normals = nil
			warn("NORMAL", err)
		}
	}
	if i, ok := prim.Attributes["TANGENT"]; ok {
		acc, err := accessor(doc, i)
		if err == nil {
			out.tangents, err = modeler.ReadTangent(doc, acc, nil)
		}
		if err != nil {
			out.tangents = nil
			warn("TANGENT", err)
		}
	}
	if i, ok := prim.Attributes["TEXCOORD_0"]; ok {
		acc, err := accessor(doc, i)
		if err == nil {
			out.uvs, err = modeler.ReadTextureCoord(doc, acc, nil)
		}
		if err != nil {
			out.uvs = nil
			warn("TEXCOORD_0", err)
		}
	}

	if prim.Indices != nil {
		acc, err := accessor(doc, *prim.Indices)
		if err != nil {
			return out, err
		}
		if out.indices, err = modeler.ReadIndices(doc, acc, nil); err != nil {
			return out, fmt.Errorf("indices: %w", err)
		}
	} else {
		out.indices = make([]uint32, len(out.positions))
		for i := range out.indices {
			out.indices[i] = uint32(i)
		}
	}

	for _, idx := range out.indices {
		if int(idx) >= len(out.positions) {
			return out, fmt.Errorf("index %d out of %d vertices", idx, len(out.positions))
		}
	}
	if len(out.indices)%3 != 0 {
		return out, fmt.Errorf("%d indices is not a triangle list", len(out.indices))
	}
	return out, nil
}

func accessor(doc *gltf.Document, i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", i)
	}
	return doc.Accessors[i], nil
}

// material returns the material for a glTF material index (-1 = default)
// and the temporary handle objects carry until ImportScene publishes it.
func (im *Importer) material(st *importState, idx int) (*scene.Material, scene.MaterialHandle) {
	if idx < 0 || idx >= len(st.doc.Materials) {
		if st.fallback == nil {
			st.fallback = scene.NewMaterial("default", im.shader)
		}
		return st.fallback, 0
	}
	if m, ok := st.materials[idx]; ok {
		return m, scene.MaterialHandle(idx + 1)
	}

	gm := st.doc.Materials[idx]
	m := scene.NewMaterial(gm.Name, im.shader)
	m.AlphaBlend = gm.AlphaMode == gltf.AlphaBlend
	m.Emissive = [3]float32{float32(gm.EmissiveFactor[0]), float32(gm.EmissiveFactor[1]), float32(gm.EmissiveFactor[2])}

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		c := pbr.BaseColorFactorOrDefault()
		m.BaseColor = [4]float32{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}
		m.Metalness = float32(pbr.MetallicFactorOrDefault())
		m.Roughness = float32(pbr.RoughnessFactorOrDefault())
		if pbr.BaseColorTexture != nil {
			im.addTexture(st, m, pbr.BaseColorTexture.Index, scene.TextureAlbedo)
		}
		if pbr.MetallicRoughnessTexture != nil {
			im.addTexture(st, m, pbr.MetallicRoughnessTexture.Index, scene.TextureMetallicRoughness)
		}
	} else {
		// glTF defaults for an absent block
		m.Metalness, m.Roughness = 1, 1
	}
	if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
		im.addTexture(st, m, *gm.NormalTexture.Index, scene.TextureNormal)
	}
	if gm.OcclusionTexture != nil && gm.OcclusionTexture.Index != nil {
		im.addTexture(st, m, *gm.OcclusionTexture.Index, scene.TextureOcclusion)
	}
	if gm.EmissiveTexture != nil {
		im.addTexture(st, m, gm.EmissiveTexture.Index, scene.TextureEmission)
	}

	st.materials[idx] = m
	return m, scene.MaterialHandle(idx + 1)
}

// addTexture loads glTF texture texIdx into m. An image already loaded into
// m under another role (packed occlusion/roughness/metalness) shares its
// GPU handle. Failures are logged and leave the scalar fallback in place.
func (im *Importer) addTexture(st *importState, m *scene.Material, texIdx int, typ scene.TextureType) {
	key, data, ext, err := im.imageSource(st, texIdx)
	if err != nil {
		im.log.Warn("texture unavailable, using material scalars",
			zap.String("material", m.Name), zap.Stringer("type", typ), zap.Error(err))
		return
	}

	if existing, ok := m.TextureByPath(key); ok {
		if existing.Type != typ {
			m.AddTexture(existing.WithType(typ))
		}
		return
	}

	img, err := im.decode(st, key, data, ext)
	if err != nil {
		im.log.Warn("texture decode failed, using material scalars",
			zap.String("material", m.Name), zap.String("path", key), zap.Error(err))
		return
	}

	tex, err := scene.NewTexture(im.dev, key, typ, img.Width, img.Height, img.Channels, img.Pix)
	if err != nil {
		im.log.Warn("texture upload failed, using material scalars",
			zap.String("material", m.Name), zap.String("path", key), zap.Error(err))
		return
	}
	m.AddTexture(tex)
}

// decode reads and decodes an image once per import.
func (im *Importer) decode(st *importState, key string, data []byte, ext string) (*texture.Image, error) {
	if d, ok := st.decoded[key]; ok {
		return d.img, d.err
	}
	var d decodedImage
	if data != nil {
		d.img, d.err = texture.DecodeImage(data, ext)
	} else {
		d.img, d.err = im.images.LoadImage(key)
	}
	st.decoded[key] = d
	return d.img, d.err
}

// imageSource returns the dedup key for a texture's image and, for images
// embedded in the file, its bytes and extension.
func (im *Importer) imageSource(st *importState, texIdx int) (key string, data []byte, ext string, err error) {
	doc := st.doc
	if texIdx < 0 || texIdx >= len(doc.Textures) || doc.Textures[texIdx].Source == nil {
		return "", nil, "", fmt.Errorf("texture %d has no image", texIdx)
	}
	imgIdx := *doc.Textures[texIdx].Source
	if imgIdx < 0 || imgIdx >= len(doc.Images) {
		return "", nil, "", fmt.Errorf("image %d out of range", imgIdx)
	}
	img := doc.Images[imgIdx]

	if img.BufferView != nil {
		if *img.BufferView < 0 || *img.BufferView >= len(doc.BufferViews) {
			return "", nil, "", fmt.Errorf("image %d buffer view out of range", imgIdx)
		}
		data, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		if err != nil {
			return "", nil, "", fmt.Errorf("image %d: %w", imgIdx, err)
		}
		return fmt.Sprintf("%s#image%d", st.path, imgIdx), data, extFromMime(img.MimeType), nil
	}

	if img.IsEmbeddedResource() {
		data, err := img.MarshalData()
		if err != nil {
			return "", nil, "", fmt.Errorf("image %d: %w", imgIdx, err)
		}
		return fmt.Sprintf("%s#image%d", st.path, imgIdx), data, "", nil
	}

	uri, err := url.PathUnescape(img.URI)
	if err != nil {
		uri = img.URI
	}
	return filepath.Join(st.dir, filepath.FromSlash(uri)), nil, "", nil
}

func extFromMime(m string) string {
	if exts, err := mime.ExtensionsByType(m); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
