// Package glbuild implements the GLSL text layer of the fragment generator:
// type names, literal formatting, identifiers, swizzles and token substitution.
package glbuild

import (
	"errors"
	"fmt"
	"strings"

	"github.com/soypat/ogsfrag/mxgraph"
)

const (
	uniformQualifier  = "uniform"
	constantQualifier = "const"
)

var typeNames = [...]string{
	mxgraph.TypeNone:          "void",
	mxgraph.TypeBoolean:       "bool",
	mxgraph.TypeInteger:       "int",
	mxgraph.TypeFloat:         "float",
	mxgraph.TypeVector2:       "vec2",
	mxgraph.TypeVector3:       "vec3",
	mxgraph.TypeVector4:       "vec4",
	mxgraph.TypeColor3:        "vec3",
	mxgraph.TypeColor4:        "vec4",
	mxgraph.TypeMatrix33:      "mat3",
	mxgraph.TypeMatrix44:      "mat4",
	mxgraph.TypeString:        "int", // Strings have no GLSL representation.
	mxgraph.TypeFilename:      "sampler2D",
	mxgraph.TypeBSDF:          "BSDF",
	mxgraph.TypeEDF:           "EDF",
	mxgraph.TypeSurfaceShader: "surfaceshader",
	mxgraph.TypeMaterial:      "material",
}

var defaultValues = [...]string{
	mxgraph.TypeNone:          "",
	mxgraph.TypeBoolean:       "false",
	mxgraph.TypeInteger:       "0",
	mxgraph.TypeFloat:         "0.0",
	mxgraph.TypeVector2:       "vec2(0.0)",
	mxgraph.TypeVector3:       "vec3(0.0)",
	mxgraph.TypeVector4:       "vec4(0.0)",
	mxgraph.TypeColor3:        "vec3(0.0)",
	mxgraph.TypeColor4:        "vec4(0.0)",
	mxgraph.TypeMatrix33:      "mat3(1.0)",
	mxgraph.TypeMatrix44:      "mat4(1.0)",
	mxgraph.TypeString:        "0",
	mxgraph.TypeFilename:      "",
	mxgraph.TypeBSDF:          "BSDF(vec3(0.0), vec3(1.0))",
	mxgraph.TypeEDF:           "EDF(0.0)",
	mxgraph.TypeSurfaceShader: "surfaceshader(vec3(0.0), vec3(0.0))",
	mxgraph.TypeMaterial:      "material(vec3(0.0), vec3(0.0))",
}

// Syntax implements GLSL naming and literal rules. A Syntax carries the float
// format used when writing literals and must not be shared between concurrent
// code generation calls.
type Syntax struct {
	floatFormat FloatFormat
	scratch     []byte
}

// NewSyntax returns a GLSL Syntax writing floats with [FloatFormatDefault].
func NewSyntax() *Syntax {
	return &Syntax{scratch: make([]byte, 0, 64)}
}

// FloatFormat returns the current float literal format.
func (s *Syntax) FloatFormat() FloatFormat { return s.floatFormat }

// SetFloatFormat sets the float literal format and returns the previous one so
// callers can restore it:
//
//	defer syntax.SetFloatFormat(syntax.SetFloatFormat(glbuild.FloatFormatFixed))
func (s *Syntax) SetFloatFormat(ff FloatFormat) (prev FloatFormat) {
	prev = s.floatFormat
	s.floatFormat = ff
	return prev
}

func (s *Syntax) UniformQualifier() string  { return uniformQualifier }
func (s *Syntax) ConstantQualifier() string { return constantQualifier }

// TypeName returns the GLSL type name of t.
func (s *Syntax) TypeName(t mxgraph.Type) string {
	if int(t) >= len(typeNames) {
		return typeNames[mxgraph.TypeNone]
	}
	return typeNames[t]
}

// DefaultValue returns the GLSL literal for the zero value of t.
func (s *Syntax) DefaultValue(t mxgraph.Type) string {
	if int(t) >= len(defaultValues) {
		return ""
	}
	return defaultValues[t]
}

// Value returns the GLSL literal of v. Types with no literal representation
// return their default value.
func (s *Syntax) Value(v mxgraph.Value) string {
	s.scratch = s.AppendValue(s.scratch[:0], v)
	return string(s.scratch)
}

// AppendValue appends the GLSL literal of v to b.
func (s *Syntax) AppendValue(b []byte, v mxgraph.Value) []byte {
	t := v.Type()
	ff := s.floatFormat
	switch t {
	case mxgraph.TypeBoolean:
		if v.AsBool() {
			return append(b, "true"...)
		}
		return append(b, "false"...)
	case mxgraph.TypeInteger:
		return fmt.Appendf(b, "%d", v.AsInt())
	case mxgraph.TypeFloat:
		return AppendFloatFormat(b, ff, v.AsFloat())
	case mxgraph.TypeVector2, mxgraph.TypeVector3, mxgraph.TypeVector4, mxgraph.TypeColor3, mxgraph.TypeColor4:
		b = append(b, s.TypeName(t)...)
		b = append(b, '(')
		b = AppendFloats(b, ", ", ff, v.Components()...)
		return append(b, ')')
	case mxgraph.TypeMatrix33:
		return appendMatValue(b, "mat3", 3, 3, v.Components(), ff)
	case mxgraph.TypeMatrix44:
		return appendMatValue(b, "mat4", 4, 4, v.Components(), ff)
	}
	return append(b, s.DefaultValue(t)...)
}

// MakeIdentifier converts name into a valid GLSL identifier that is unique
// within ids and records it in ids.
func (s *Syntax) MakeIdentifier(name string, ids IdentifierMap) string {
	return ids.MakeUnique(ValidIdentifier(name))
}

// VariableName returns a unique GLSL variable name for a port named name of type t.
func (s *Syntax) VariableName(name string, t mxgraph.Type, ids IdentifierMap) string {
	return s.MakeIdentifier(name, ids)
}

var (
	vectorChannels = [4]byte{'x', 'y', 'z', 'w'}
	colorChannels  = [4]byte{'r', 'g', 'b', 'a'}
)

func channelIndex(c byte) int {
	for i := range vectorChannels {
		if vectorChannels[i] == c || colorChannels[i] == c {
			return i
		}
	}
	return -1
}

// ValidateSwizzle checks channels is a valid swizzle of a srcType value that
// results in a dstType value.
func ValidateSwizzle(srcType mxgraph.Type, channels string, dstType mxgraph.Type) error {
	n := srcType.Size()
	if n == 0 || srcType == mxgraph.TypeMatrix33 || srcType == mxgraph.TypeMatrix44 {
		return fmt.Errorf("type %s can not be swizzled", srcType)
	} else if len(channels) == 0 {
		return errors.New("empty swizzle")
	} else if len(channels) != dstType.Size() {
		return fmt.Errorf("swizzle %q of %d channels can not produce %s", channels, len(channels), dstType)
	}
	for i := 0; i < len(channels); i++ {
		idx := channelIndex(channels[i])
		if idx < 0 || idx >= n {
			return fmt.Errorf("invalid channel %q in swizzle %q of %s", channels[i], channels, srcType)
		}
	}
	return nil
}

// SwizzledVariable returns the expression selecting channels of the srcType
// variable src as a dstType value. Channels that fall outside the source type
// read as zero. See [ValidateSwizzle].
func (s *Syntax) SwizzledVariable(src string, srcType mxgraph.Type, channels string, dstType mxgraph.Type) string {
	n := srcType.Size()
	members := make([]string, len(channels))
	for i := 0; i < len(channels); i++ {
		idx := channelIndex(channels[i])
		switch {
		case idx < 0 || idx >= n:
			members[i] = "0.0"
		case n == 1:
			members[i] = src
		default:
			members[i] = src + "." + string(vectorChannels[idx])
		}
	}
	if len(members) == 1 {
		return members[0]
	}
	return s.TypeName(dstType) + "(" + strings.Join(members, ", ") + ")"
}
