package glbuild

import (
	"bytes"
	"strconv"

	"github.com/chewxy/math32"
)

// FloatFormat controls how float literals are written to GLSL source.
type FloatFormat uint8

const (
	// FloatFormatDefault writes the shortest representation of a float which
	// may be an integer literal ("1") or use scientific notation ("1e-07").
	FloatFormatDefault FloatFormat = iota
	// FloatFormatFixed always writes fixed point decimal notation with at least
	// one digit after the decimal point ("1.0", "0.0000001").
	FloatFormatFixed
	// FloatFormatScientific always writes scientific notation ("1e+00").
	FloatFormatScientific
)

func (ff FloatFormat) String() string {
	switch ff {
	case FloatFormatDefault:
		return "default"
	case FloatFormatFixed:
		return "fixed"
	case FloatFormatScientific:
		return "scientific"
	}
	return "FloatFormat(" + strconv.Itoa(int(ff)) + ")"
}

// decimalDigits of -1 yields the minimum digits needed to represent the float32 exactly.
const decimalDigits = -1

// AppendFloat appends v in fixed point notation to b with the neg byte as
// the negative sign and decimal byte as the decimal separator.
// Trailing zeros are trimmed leaving at least one digit after the decimal separator.
// NaN and infinities have no GLSL literal and are written as zero.
func AppendFloat(b []byte, neg, decimal byte, v float32) []byte {
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		v = 0
	}
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', decimalDigits, 32)
	idx := bytes.IndexByte(b[start:], '.')
	if idx < 0 {
		// Integer valued, force decimal point so GLSL reads a float.
		idx = len(b) - start
		b = append(b, '.', '0')
	}
	if decimal != '.' {
		b[start+idx] = decimal
	}
	if b[start] == '-' {
		b[start] = neg
	}
	// Finally trim zeroes.
	end := len(b)
	for i := len(b) - 1; i > idx+start+1 && b[i] == '0'; i-- {
		end--
	}
	return b[:end]
}

// AppendFloats appends the floats in s separated by sep.
func AppendFloats(b []byte, sep string, ff FloatFormat, s ...float32) []byte {
	for i, v := range s {
		b = AppendFloatFormat(b, ff, v)
		if i != len(s)-1 {
			b = append(b, sep...)
		}
	}
	return b
}

// AppendFloatFormat appends v to b using the given float format.
func AppendFloatFormat(b []byte, ff FloatFormat, v float32) []byte {
	switch ff {
	case FloatFormatFixed:
		return AppendFloat(b, '-', '.', v)
	case FloatFormatScientific:
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			v = 0
		}
		return strconv.AppendFloat(b, float64(v), 'e', -1, 32)
	}
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		v = 0
	}
	return strconv.AppendFloat(b, float64(v), 'g', -1, 32)
}

// AppendDefineDecl appends a preprocessor macro definition:
//
//	#define <aliasToDefine> <aliasReplace>
func AppendDefineDecl(b []byte, aliasToDefine, aliasReplace string) []byte {
	b = append(b, "#define "...)
	b = append(b, aliasToDefine...)
	b = append(b, ' ')
	b = append(b, aliasReplace...)
	b = append(b, '\n')
	return b
}

// AppendIntDefineDecl appends a preprocessor macro definition with an integer value.
func AppendIntDefineDecl(b []byte, aliasToDefine string, v int) []byte {
	return AppendDefineDecl(b, aliasToDefine, strconv.Itoa(v))
}

// AppendVarDecl appends a variable declaration with no terminating semicolon:
//
//	[<qualifier> ]<typename> <name>[ = <value>]
func AppendVarDecl(b []byte, qualifier, typename, name, value string) []byte {
	if qualifier != "" {
		b = append(b, qualifier...)
		b = append(b, ' ')
	}
	b = append(b, typename...)
	b = append(b, ' ')
	b = append(b, name...)
	if value != "" {
		b = append(b, " = "...)
		b = append(b, value...)
	}
	return b
}

func appendMatValue(b []byte, typename string, row, col int, arr []float32, ff FloatFormat) []byte {
	b = append(b, typename...)
	b = append(b, '(')
	for i := 0; i < row; i++ {
		for j := 0; j < col; j++ {
			v := arr[j*row+i] // Column major access, as per OpenGL standard.
			b = AppendFloatFormat(b, ff, v)
			last := i == row-1 && j == col-1
			if !last {
				b = append(b, ", "...)
			}
		}
	}
	b = append(b, ')')
	return b
}
