package shadergen

import (
	"github.com/soypat/ogsfrag/glbuild"
	"github.com/soypat/ogsfrag/glbuild/glsllib"
	"github.com/soypat/ogsfrag/mxgraph"
)

// Syntax maps graph types and names to target language syntax.
// [*glbuild.Syntax] implements Syntax for GLSL.
type Syntax interface {
	TypeName(t mxgraph.Type) string
	Value(v mxgraph.Value) string
	DefaultValue(t mxgraph.Type) string
	VariableName(name string, t mxgraph.Type, ids glbuild.IdentifierMap) string
	MakeIdentifier(name string, ids glbuild.IdentifierMap) string
	SwizzledVariable(src string, srcType mxgraph.Type, channels string, dstType mxgraph.Type) string
	UniformQualifier() string
	ConstantQualifier() string
	SetFloatFormat(ff glbuild.FloatFormat) (prev glbuild.FloatFormat)
}

// Emitter emits declarations and includes. Target generators implement
// Emitter to customize declarations; node implementations emit through the
// context's Emitter so those customizations apply everywhere.
type Emitter interface {
	EmitVariableDeclaration(p *Port, qualifier string, ctx *Context, stage *Stage, assignValue bool)
	EmitInclude(path string, ctx *Context, stage *Stage) error
}

// UserDataSpecularEnvironmentSamples is the user data key of [SpecularEnvironmentSamples].
const UserDataSpecularEnvironmentSamples = "HwSpecularEnvironmentSamples"

// SpecularEnvironmentSamples is optional user data setting the number of
// samples used for filtered importance sampling.
type SpecularEnvironmentSamples struct {
	Samples int
}

// Context holds the state of a single code generation call: options, syntax
// with its float format, token substitution table and user data. A Context
// must not be shared between concurrent calls.
type Context struct {
	Options  Options
	Syntax   Syntax
	Emitter  Emitter
	Includer glsllib.Includer
	Tokens   glbuild.TokenSubstitutions
	// Reserved identifiers are taken before any port is named. Target
	// generators reserve the names they emit outside of variable blocks.
	Reserved []string
	userData map[string]any
}

// SetUserData stores v under key, replacing any previous value.
func (c *Context) SetUserData(key string, v any) {
	if c.userData == nil {
		c.userData = make(map[string]any)
	}
	c.userData[key] = v
}

// UserData returns the value stored under key.
func (c *Context) UserData(key string) (any, bool) {
	v, ok := c.userData[key]
	return v, ok
}

// RemoveUserData deletes the value stored under key.
func (c *Context) RemoveUserData(key string) {
	delete(c.userData, key)
}

// SpecularEnvironmentSamples returns the sample count user data if set.
func (c *Context) SpecularEnvironmentSamples() (int, bool) {
	v, ok := c.userData[UserDataSpecularEnvironmentSamples]
	if !ok {
		return 0, false
	}
	switch s := v.(type) {
	case *SpecularEnvironmentSamples:
		if s == nil {
			return 0, false
		}
		return s.Samples, true
	case SpecularEnvironmentSamples:
		return s.Samples, true
	}
	return 0, false
}
