// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// PBRVertex is the vertex shader for lit objects.
//
//go:embed pbr.vert
var PBRVertex string

// PBRFragment is the metallic-roughness fragment shader with shadows and
// image-based lighting.
//
//go:embed pbr.frag
var PBRFragment string

// DepthVertex is the vertex shader for the shadow depth pass.
//
//go:embed depth.vert
var DepthVertex string

// DepthFragment is the empty fragment shader for the shadow depth pass.
//
//go:embed depth.frag
var DepthFragment string

// SkyboxVertex draws the environment cube at the far plane.
//
//go:embed skybox.vert
var SkyboxVertex string

// SkyboxFragment samples the environment cube.
//
//go:embed skybox.frag
var SkyboxFragment string

// CubeVertex is shared by the cube-face capture passes.
//
//go:embed cube.vert
var CubeVertex string

// EquirectFragment converts an equirectangular map to one cube face.
//
//go:embed equirect.frag
var EquirectFragment string

// PrefilterFragment convolves the environment for one roughness level.
//
//go:embed prefilter.frag
var PrefilterFragment string

// QuadVertex is the full-screen quad vertex shader.
//
//go:embed quad.vert
var QuadVertex string

// BRDFFragment integrates the split-sum BRDF table.
//
//go:embed brdf.frag
var BRDFFragment string
