package mxgraph

import (
	"errors"
	"strconv"
	"strings"
)

// Type is the semantic type of a value or port in a shading graph.
type Type uint8

const (
	TypeNone Type = iota
	TypeBoolean
	TypeInteger
	TypeFloat
	TypeVector2
	TypeVector3
	TypeVector4
	TypeColor3
	TypeColor4
	TypeMatrix33
	TypeMatrix44
	TypeString
	// TypeFilename is a texture file input. Generated code binds it to a sampler.
	TypeFilename
	TypeBSDF
	TypeEDF
	TypeSurfaceShader
	TypeMaterial
	typeEnd
)

var typeNames = [typeEnd]string{
	TypeNone:          "none",
	TypeBoolean:       "boolean",
	TypeInteger:       "integer",
	TypeFloat:         "float",
	TypeVector2:       "vector2",
	TypeVector3:       "vector3",
	TypeVector4:       "vector4",
	TypeColor3:        "color3",
	TypeColor4:        "color4",
	TypeMatrix33:      "matrix33",
	TypeMatrix44:      "matrix44",
	TypeString:        "string",
	TypeFilename:      "filename",
	TypeBSDF:          "BSDF",
	TypeEDF:           "EDF",
	TypeSurfaceShader: "surfaceshader",
	TypeMaterial:      "material",
}

var errUnknownType = errors.New("unknown type name")

func (t Type) String() string {
	if t >= typeEnd {
		return "Type(" + strconv.Itoa(int(t)) + ")"
	}
	return typeNames[t]
}

// ParseType returns the Type with the given name. Name comparison is case insensitive.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if strings.EqualFold(n, name) {
			return Type(i), nil
		}
	}
	return TypeNone, errUnknownType
}

// MarshalText implements [encoding.TextMarshaler].
func (t Type) MarshalText() ([]byte, error) {
	if t >= typeEnd {
		return nil, errUnknownType
	}
	return []byte(typeNames[t]), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (t *Type) UnmarshalText(b []byte) (err error) {
	*t, err = ParseType(string(b))
	return err
}

// Size returns the number of scalar components of the type. Non-numeric types return 0.
func (t Type) Size() int {
	switch t {
	case TypeBoolean, TypeInteger, TypeFloat:
		return 1
	case TypeVector2:
		return 2
	case TypeVector3, TypeColor3:
		return 3
	case TypeVector4, TypeColor4:
		return 4
	case TypeMatrix33:
		return 9
	case TypeMatrix44:
		return 16
	}
	return 0
}

// IsFloat2 reports whether t is a 2 component float vector.
func (t Type) IsFloat2() bool { return t == TypeVector2 }

// IsFloat3 reports whether t is a 3 component float vector or color.
func (t Type) IsFloat3() bool { return t == TypeVector3 || t == TypeColor3 }

// IsFloat4 reports whether t is a 4 component float vector or color.
func (t Type) IsFloat4() bool { return t == TypeVector4 || t == TypeColor4 }

// IsScalar reports whether t is a single component numeric type.
func (t Type) IsScalar() bool { return t == TypeFloat || t == TypeInteger || t == TypeBoolean }

// IsColor reports whether t is a color type. Colors use rgba channel names in swizzles.
func (t Type) IsColor() bool { return t == TypeColor3 || t == TypeColor4 }

// IsClosure reports whether t is an unevaluated shading distribution.
func (t Type) IsClosure() bool { return t == TypeBSDF || t == TypeEDF }

// Classification is a set of flags describing what a node or graph computes.
type Classification uint16

const (
	ClassTexture Classification = 1 << iota
	ClassClosure
	ClassShader
	ClassSurface
	ClassBSDF
	ClassEDF
	ClassUnlit
)

// Has reports whether all flags of c2 are set in c.
func (c Classification) Has(c2 Classification) bool { return c&c2 == c2 }

func (c Classification) String() string {
	if c == 0 {
		return "none"
	}
	names := [...]string{"texture", "closure", "shader", "surface", "bsdf", "edf", "unlit"}
	var sb strings.Builder
	for i, name := range names {
		if c&(1<<i) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(name)
	}
	return sb.String()
}

// Classify returns the classification of a node that outputs type t.
func Classify(t Type) Classification {
	switch t {
	case TypeSurfaceShader, TypeMaterial:
		return ClassShader | ClassSurface | ClassClosure
	case TypeBSDF:
		return ClassClosure | ClassBSDF
	case TypeEDF:
		return ClassClosure | ClassEDF
	}
	return ClassTexture
}
