package gfx

import "fmt"

// Uniform names shared by the Go side and the GLSL sources.
const (
	UniformModel      = "model"
	UniformView       = "view"
	UniformProjection = "projection"
	UniformViewPos    = "viewPos"

	UniformAlbedo    = "p_albedo"
	UniformMetalness = "p_metalness"
	UniformRoughness = "p_roughness"
	UniformEmissive  = "p_emissive"

	UniformUseAlbedoMap   = "useAlbedoMap"
	UniformUseNormalMap   = "useNormalMap"
	UniformUseMetRoughMap = "useMetRoughMap"
	UniformUseAOMap       = "useAOMap"
	UniformUseEmissionMap = "useEmissionMap"

	UniformAlbedoMap   = "albedoMap"
	UniformNormalMap   = "normalMap"
	UniformMetRoughMap = "metRoughMap"
	UniformAOMap       = "aoMap"
	UniformEmissionMap = "emissionMap"

	UniformNumDirLights   = "numDirLights"
	UniformNumPointLights = "numPointLights"
	UniformNumShadowMaps  = "numShadowMaps"

	UniformUseEnvironment = "useEnvironment"
	UniformPrefilterMap   = "prefilterMap"
	UniformPrefilterLOD   = "prefilterMaxLod"
	UniformBRDFLUT        = "brdfLUT"

	UniformLightSpace = "lightSpaceMatrix"

	UniformSkybox         = "skybox"
	UniformEquirect       = "equirectangularMap"
	UniformEnvironmentMap = "environmentMap"
	UniformBakeRoughness  = "roughness"
	UniformBakeResolution = "resolution"
)

// MaxShadowMaps is the size of the shadow sampler array in the PBR shader.
const MaxShadowMaps = 4

// Texture units. Shadow maps occupy UnitShadowBase+i.
const (
	UnitAlbedo = iota
	UnitNormal
	UnitMetRough
	UnitAO
	UnitEmission
	UnitPrefilter
	UnitBRDF
	UnitShadowBase
)

// LightSpaceMatrix returns "lightSpaceMatrices[i]".
func LightSpaceMatrix(i int) string { return fmt.Sprintf("lightSpaceMatrices[%d]", i) }

// ShadowMap returns "shadowMaps[i]".
func ShadowMap(i int) string { return fmt.Sprintf("shadowMaps[%d]", i) }

// SHCoefficient returns "shCoefficients[i]".
func SHCoefficient(i int) string { return fmt.Sprintf("shCoefficients[%d]", i) }

// DirLight returns "dirLights[i].field".
func DirLight(i int, field string) string { return fmt.Sprintf("dirLights[%d].%s", i, field) }

// PointLight returns "pointLights[i].field".
func PointLight(i int, field string) string { return fmt.Sprintf("pointLights[%d].%s", i, field) }
