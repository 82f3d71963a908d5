// Package ogsfrag generates GLSL shader fragments for the OGS viewport
// renderer from shading graphs.
//
// A fragment is a root function taking the graph's public uniforms and vertex
// data as arguments and returning the shaded color, along with the node
// functions and library code it calls. A second "uniforms" stage holds only
// the uniform declarations of the fragment for cross-compilation to other
// shading languages.
package ogsfrag

import (
	"errors"
	"strconv"
	"strings"

	"github.com/soypat/ogsfrag/glbuild"
	"github.com/soypat/ogsfrag/mxgraph"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("ogsfrag")

const (
	// StageUniforms is the name of the stage holding uniform declarations.
	StageUniforms = "uniforms"
	// VPTransparencyName is the name of the root function argument flagging
	// the fragment as transparent to the host. It is never read by generated code.
	VPTransparencyName = "vp2Transparent"
	// Matrix3ToMatrix4Suffix is appended to matrix33 arguments passed as mat4.
	Matrix3ToMatrix4Suffix = "4"

	samplerPrefix = "_"
	samplerSuffix = "_sampler"
)

// LightAPI is the version of the host light API fragments are generated for.
type LightAPI int

const (
	// LightAPILegacy passes lights and environment samples through global
	// variables filled in by the host light rig.
	LightAPILegacy LightAPI = 1
	// LightAPIV2 queries lights through host provided functions.
	LightAPIV2 LightAPI = 2
	// LightAPIV3 is handled as LightAPIV2 by the generator.
	LightAPIV3 LightAPI = 3
)

// IsLegacy reports whether api predates host provided light functions.
func (api LightAPI) IsLegacy() bool { return api < LightAPIV2 }

func (api LightAPI) String() string {
	switch api {
	case LightAPILegacy:
		return "legacy"
	case LightAPIV2:
		return "v2"
	case LightAPIV3:
		return "v3"
	}
	return "LightAPI(" + strconv.Itoa(int(api)) + ")"
}

// ErrInvalidConfig is the error returned, wrapped in a [*ConfigError], when
// generation options hold a value the generator does not know.
var ErrInvalidConfig = errors.New("invalid generation configuration")

// ConfigError reports an invalid generation option and its offending value.
type ConfigError struct {
	Option string
	Value  int
}

func (e *ConfigError) Error() string {
	return "Invalid " + e.Option + " specified: '" + strconv.Itoa(e.Value) + "'"
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// IsSamplerName reports whether name follows the sampler naming convention
// "_<texture>_sampler".
func IsSamplerName(name string) bool {
	return len(name) > len(samplerPrefix)+len(samplerSuffix) &&
		strings.HasPrefix(name, samplerPrefix) && strings.HasSuffix(name, samplerSuffix)
}

// TextureToSamplerName returns the sampler name of a texture.
func TextureToSamplerName(textureName string) string {
	return samplerPrefix + textureName + samplerSuffix
}

// SamplerToTextureName returns the texture name of a sampler, or the empty
// string if samplerName does not follow the sampler naming convention.
func SamplerToTextureName(samplerName string) string {
	if !IsSamplerName(samplerName) {
		return ""
	}
	return samplerName[len(samplerPrefix) : len(samplerName)-len(samplerSuffix)]
}

// FragmentSyntax is the GLSL syntax of fragments. Texture variables are
// named following the sampler naming convention.
type FragmentSyntax struct {
	*glbuild.Syntax
}

// NewFragmentSyntax returns a FragmentSyntax with its own float format state.
func NewFragmentSyntax() FragmentSyntax {
	return FragmentSyntax{Syntax: glbuild.NewSyntax()}
}

// VariableName returns a unique variable name for a port. Texture ports are
// named as samplers and the sampler name is recorded in ids. Matrix33 ports
// also take the name of their mat4 argument, see [Matrix3ToMatrix4Suffix].
func (s FragmentSyntax) VariableName(name string, t mxgraph.Type, ids glbuild.IdentifierMap) string {
	variable := s.Syntax.VariableName(name, t, ids)
	switch {
	case t == mxgraph.TypeFilename && !IsSamplerName(variable):
		variable = TextureToSamplerName(variable)
		ids.Reserve(variable)
	case t == mxgraph.TypeMatrix33:
		for ids.Contains(variable + Matrix3ToMatrix4Suffix) {
			variable = s.Syntax.VariableName(name, t, ids)
		}
		ids.Reserve(variable + Matrix3ToMatrix4Suffix)
	}
	return variable
}

// ToVec3 returns expr of type t converted to a vec3 expression. Types with
// no vec3 conversion yield black.
func ToVec3(t mxgraph.Type, expr string) string {
	switch {
	case t.IsFloat3():
		return expr
	case t.IsFloat2():
		return "vec3(" + expr + ", 0.0)"
	case t.IsFloat4():
		return expr + ".xyz"
	case t == mxgraph.TypeFloat || t == mxgraph.TypeInteger:
		return "vec3(" + expr + ", " + expr + ", " + expr + ")"
	case t == mxgraph.TypeBSDF || t == mxgraph.TypeEDF:
		return "vec3(" + expr + ")"
	}
	log.Debugf("no vec3 conversion for type %s, using black", t)
	return "vec3(0.0, 0.0, 0.0)"
}

// ToVec4 returns expr of type t converted to a vec4 expression with an
// opaque alpha. Types with no vec4 conversion yield opaque black.
func ToVec4(t mxgraph.Type, expr string) string {
	switch {
	case t.IsFloat4():
		return expr
	case t.IsFloat3():
		return "vec4(" + expr + ", 1.0)"
	case t.IsFloat2():
		return "vec4(" + expr + ", 0.0, 1.0)"
	case t == mxgraph.TypeFloat || t == mxgraph.TypeInteger:
		return "vec4(" + expr + ", " + expr + ", " + expr + ", 1.0)"
	case t == mxgraph.TypeBSDF || t == mxgraph.TypeEDF:
		return "vec4(" + expr + ", 1.0)"
	}
	log.Debugf("no vec4 conversion for type %s, using black", t)
	return "vec4(0.0, 0.0, 0.0, 1.0)"
}
