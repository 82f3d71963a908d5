package glbuild

import (
	"strconv"
	"strings"
)

// IdentifierMap tracks identifiers used in a single generated shader so that
// generated variable and function names never collide. The value stored for
// a name is the next suffix to try when the name is requested again.
type IdentifierMap map[string]int

// NewIdentifierMap returns an IdentifierMap with all GLSL reserved words taken.
func NewIdentifierMap() IdentifierMap {
	ids := make(IdentifierMap, len(reservedWords)+64)
	for _, word := range reservedWords {
		ids[word] = 1
	}
	return ids
}

// Contains reports whether name is already taken.
func (ids IdentifierMap) Contains(name string) bool {
	_, ok := ids[name]
	return ok
}

// Reserve marks name as taken. Does nothing if name is already taken.
func (ids IdentifierMap) Reserve(name string) {
	if _, ok := ids[name]; !ok {
		ids[name] = 1
	}
}

// MakeUnique returns name if it is not taken, otherwise name with the
// smallest numeric suffix that is not taken. The result is marked as taken.
func (ids IdentifierMap) MakeUnique(name string) string {
	next, ok := ids[name]
	if !ok {
		ids[name] = 1
		return name
	}
	for {
		candidate := name + strconv.Itoa(next)
		next++
		if _, taken := ids[candidate]; !taken {
			ids[name] = next
			ids[candidate] = 1
			return candidate
		}
	}
}

// ValidIdentifier replaces characters not allowed in GLSL identifiers with
// underscores. Names starting with a digit or a reserved prefix are prefixed
// with an underscore.
func ValidIdentifier(name string) string {
	if name == "" {
		return "_"
	}
	var sb strings.Builder
	sb.Grow(len(name) + 1)
	if isDigit(name[0]) || strings.HasPrefix(name, "gl_") {
		sb.WriteByte('_')
	}
	prevUnderscore := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !isDigit(c) && !isLetter(c) {
			c = '_'
		}
		if c == '_' && prevUnderscore {
			continue // Double underscores are reserved in GLSL.
		}
		prevUnderscore = c == '_'
		sb.WriteByte(c)
	}
	return sb.String()
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

// reservedWords are GLSL 4.x keywords, reserved words and built-in
// function names generated code must not shadow.
var reservedWords = []string{
	"attribute", "const", "uniform", "varying", "buffer", "shared", "coherent", "volatile",
	"restrict", "readonly", "writeonly", "atomic_uint", "layout", "centroid", "flat", "smooth",
	"noperspective", "patch", "sample", "break", "continue", "do", "for", "while", "switch",
	"case", "default", "if", "else", "subroutine", "in", "out", "inout", "float", "double",
	"int", "void", "bool", "true", "false", "invariant", "precise", "discard", "return",
	"mat2", "mat3", "mat4", "dmat2", "dmat3", "dmat4", "mat2x2", "mat2x3", "mat2x4", "mat3x2",
	"mat3x3", "mat3x4", "mat4x2", "mat4x3", "mat4x4", "vec2", "vec3", "vec4", "ivec2",
	"ivec3", "ivec4", "bvec2", "bvec3", "bvec4", "dvec2", "dvec3", "dvec4", "uint", "uvec2",
	"uvec3", "uvec4", "lowp", "mediump", "highp", "precision", "sampler1D", "sampler2D",
	"sampler3D", "samplerCube", "sampler2DShadow", "sampler2DArray", "struct", "common",
	"partition", "active", "asm", "class", "union", "enum", "typedef", "template", "this",
	"resource", "goto", "inline", "noinline", "public", "static", "extern", "external",
	"interface", "long", "short", "half", "fixed", "unsigned", "superp", "input", "output",
	"hvec2", "hvec3", "hvec4", "fvec2", "fvec3", "fvec4", "sampler3DRect", "filter",
	"image1D", "image2D", "image3D", "imageCube", "sizeof", "cast", "namespace", "using",
	// Built-in functions.
	"radians", "degrees", "sin", "cos", "tan", "asin", "acos", "atan", "pow", "exp", "log",
	"exp2", "log2", "sqrt", "inversesqrt", "abs", "sign", "floor", "ceil", "fract", "mod",
	"min", "max", "clamp", "mix", "step", "smoothstep", "length", "distance", "dot", "cross",
	"normalize", "reflect", "refract", "texture", "transpose", "inverse", "determinant",
	// Shading language types declared by the generator.
	"BSDF", "EDF", "VDF", "surfaceshader", "volumeshader", "displacementshader",
	"lightshader", "material", "LightData",
}
