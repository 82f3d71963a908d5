package mxgraph

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// Value is an immutable typed literal. The zero Value has type [TypeNone].
type Value struct {
	typ Type
	// f stores numeric components. Matrices are stored in row major order.
	f [16]float32
	s string
	b bool
}

func FloatValue(v float32) Value { return Value{typ: TypeFloat, f: [16]float32{v}} }

func IntValue(v int) Value { return Value{typ: TypeInteger, f: [16]float32{float32(v)}} }

func BoolValue(v bool) Value { return Value{typ: TypeBoolean, b: v} }

func Vec2Value(v ms2.Vec) Value { return Value{typ: TypeVector2, f: [16]float32{v.X, v.Y}} }

func Vec3Value(v ms3.Vec) Value { return Value{typ: TypeVector3, f: [16]float32{v.X, v.Y, v.Z}} }

func Vec4Value(x, y, z, w float32) Value {
	return Value{typ: TypeVector4, f: [16]float32{x, y, z, w}}
}

// Color3Value returns a color3 value with R,G,B stored in X,Y,Z.
func Color3Value(rgb ms3.Vec) Value {
	return Value{typ: TypeColor3, f: [16]float32{rgb.X, rgb.Y, rgb.Z}}
}

func Color4Value(r, g, b, a float32) Value {
	return Value{typ: TypeColor4, f: [16]float32{r, g, b, a}}
}

func Mat3Value(m ms3.Mat3) Value {
	v := Value{typ: TypeMatrix33}
	arr := m.Array()
	copy(v.f[:], arr[:])
	return v
}

func Mat4Value(m ms3.Mat4) Value {
	v := Value{typ: TypeMatrix44}
	arr := m.Array()
	copy(v.f[:], arr[:])
	return v
}

func StringValue(s string) Value { return Value{typ: TypeString, s: s} }

// FilenameValue returns a filename value referencing a texture file.
func FilenameValue(path string) Value { return Value{typ: TypeFilename, s: path} }

// ZeroValue returns the zero value of type t. Closure and shader types have no
// literal representation and return a Value of that type with no data.
func ZeroValue(t Type) Value { return Value{typ: t} }

// Type returns the type of the value.
func (v Value) Type() Type { return v.typ }

// Components returns the numeric components of the value. Matrices are returned in row major order.
func (v Value) Components() []float32 {
	n := v.typ.Size()
	if v.typ == TypeBoolean {
		if v.b {
			return []float32{1}
		}
		return []float32{0}
	}
	return append([]float32(nil), v.f[:n]...)
}

// AsFloat returns the first component of a numeric value.
func (v Value) AsFloat() float32 { return v.f[0] }

// AsInt returns the first component of a numeric value truncated to an integer.
func (v Value) AsInt() int { return int(v.f[0]) }

// AsBool returns the boolean stored in the value.
func (v Value) AsBool() bool { return v.b }

// AsString returns the string stored in a string or filename value.
func (v Value) AsString() string { return v.s }

func (v Value) String() string {
	switch v.typ {
	case TypeString, TypeFilename:
		return v.s
	case TypeBoolean:
		return fmt.Sprint(v.b)
	case TypeInteger:
		return fmt.Sprint(v.AsInt())
	}
	if n := v.typ.Size(); n > 0 {
		return fmt.Sprint(v.f[:n])
	}
	return v.typ.String()
}

// valueRepr is the interchange representation of a [Value].
type valueRepr struct {
	Type   Type      `cbor:"type"`
	Floats []float32 `cbor:"f,omitempty"`
	Str    string    `cbor:"s,omitempty"`
	Bool   bool      `cbor:"b,omitempty"`
}

// MarshalCBOR implements [cbor.Marshaler].
func (v Value) MarshalCBOR() ([]byte, error) {
	repr := valueRepr{Type: v.typ, Str: v.s, Bool: v.b}
	if n := v.typ.Size(); n > 0 && v.typ != TypeBoolean {
		repr.Floats = v.f[:n]
	}
	return encMode.Marshal(repr)
}

// UnmarshalCBOR implements [cbor.Unmarshaler].
func (v *Value) UnmarshalCBOR(data []byte) error {
	var repr valueRepr
	err := cbor.Unmarshal(data, &repr)
	if err != nil {
		return err
	}
	if repr.Type >= typeEnd {
		return fmt.Errorf("invalid value type %d", repr.Type)
	}
	n := repr.Type.Size()
	if repr.Type != TypeBoolean && len(repr.Floats) != n {
		return fmt.Errorf("%s value wants %d components, got %d", repr.Type, n, len(repr.Floats))
	}
	*v = Value{typ: repr.Type, s: repr.Str, b: repr.Bool}
	copy(v.f[:], repr.Floats)
	return nil
}
