// Package shadergen implements generic hardware shader generation from an
// [mxgraph.Graph]: the generator owned graph copy, shader stages and variable
// blocks, node implementation registry, options and the base emission steps
// shared by target specific generators.
package shadergen

import (
	"github.com/soypat/ogsfrag/glbuild"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("shadergen")

// Stage names.
const (
	StagePixel = "pixel"
)

// Variable block names.
const (
	ConstantsBlock  = "Constants"
	PrivateUniforms = "PrivateUniforms"
	PublicUniforms  = "PublicUniforms"
	VertexData      = "VertexData"
)

// Hardware tokens. Node implementations and library fragments refer to
// shader inputs through these tokens which are substituted by the
// target's identifiers once a stage is complete.
const (
	TokenPositionWorld      = "$positionWorld"
	TokenPositionObject     = "$positionObject"
	TokenNormalWorld        = "$normalWorld"
	TokenNormalObject       = "$normalObject"
	TokenTangentWorld       = "$tangentWorld"
	TokenTangentObject      = "$tangentObject"
	TokenBitangentWorld     = "$bitangentWorld"
	TokenBitangentObject    = "$bitangentObject"
	TokenTexcoord           = "$texcoord"
	TokenVertexDataInstance = "$vd"
	TokenViewPosition       = "$viewPosition"
	TokenLightData          = "$lightData"
	TokenNumActiveLights    = "$numActiveLightSources"
	TokenEnvMatrix          = "$envMatrix"
	TokenEnvRadiance        = "$envRadiance"
	TokenEnvRadianceMips    = "$envRadianceMips"
	TokenEnvRadianceSamples = "$envRadianceSamples"
	TokenEnvIrradiance      = "$envIrradiance"
	TokenAlbedoTable        = "$albedoTable"
	TokenFileTransformUV    = "$fileTransformUv"
	TokenFrame              = "$frame"
	TokenTime               = "$time"
)

// DefaultTokens returns the token substitutions of a generic GLSL target.
// Target generators start from this table and override entries.
func DefaultTokens() glbuild.TokenSubstitutions {
	return glbuild.TokenSubstitutions{
		TokenPositionWorld:      "positionWorld",
		TokenPositionObject:     "positionObject",
		TokenNormalWorld:        "normalWorld",
		TokenNormalObject:       "normalObject",
		TokenTangentWorld:       "tangentWorld",
		TokenTangentObject:      "tangentObject",
		TokenBitangentWorld:     "bitangentWorld",
		TokenBitangentObject:    "bitangentObject",
		TokenTexcoord:           "texcoord",
		TokenVertexDataInstance: "vd",
		TokenViewPosition:       "u_viewPosition",
		TokenLightData:          "u_lightData",
		TokenNumActiveLights:    "u_numActiveLightSources",
		TokenEnvMatrix:          "u_envMatrix",
		TokenEnvRadiance:        "u_envRadiance",
		TokenEnvRadianceMips:    "u_envRadianceMips",
		TokenEnvRadianceSamples: "u_envRadianceSamples",
		TokenEnvIrradiance:      "u_envIrradiance",
		TokenAlbedoTable:        "u_albedoTable",
		TokenFrame:              "u_frame",
		TokenTime:               "u_time",
	}
}
