package shadergen

import (
	"bytes"

	"github.com/soypat/ogsfrag/glbuild"
)

// Punctuation is the delimiter pair of a scope.
type Punctuation uint8

const (
	Braces Punctuation = iota
	Parentheses
	SquareBrackets
)

func (p Punctuation) open() byte  { return "{(["[p] }
func (p Punctuation) close() byte { return "})]"[p] }

const indentation = "    "

// Stage is one named output buffer of a shader, i.e: "pixel", along with the
// variable blocks declared for it.
type Stage struct {
	name         string
	code         []byte
	indent       int
	scopes       []Punctuation
	functionName string
	constants    *VariableBlock
	uniforms     []*VariableBlock
	inputs       []*VariableBlock
	includes     map[string]struct{}
	replaced     bool
}

// NewStage returns an empty stage named name.
func NewStage(name string) *Stage {
	return &Stage{
		name:      name,
		code:      make([]byte, 0, 4096),
		constants: NewVariableBlock(ConstantsBlock, ""),
		includes:  make(map[string]struct{}),
	}
}

func (s *Stage) Name() string { return s.name }

// Code returns the source code emitted into the stage so far.
func (s *Stage) Code() string { return string(s.code) }

// FunctionName returns the name of the stage's root function.
func (s *Stage) FunctionName() string      { return s.functionName }
func (s *Stage) SetFunctionName(fn string) { s.functionName = fn }

// ConstantBlock returns the block of constants of the stage.
func (s *Stage) ConstantBlock() *VariableBlock { return s.constants }

// CreateUniformBlock returns the uniform block named name, creating it if it does not exist.
func (s *Stage) CreateUniformBlock(name, instance string) *VariableBlock {
	if vb := s.UniformBlock(name); vb != nil {
		return vb
	}
	vb := NewVariableBlock(name, instance)
	s.uniforms = append(s.uniforms, vb)
	return vb
}

// UniformBlock returns the uniform block named name or nil if not found.
func (s *Stage) UniformBlock(name string) *VariableBlock {
	return findBlock(s.uniforms, name)
}

// UniformBlocks returns uniform blocks in creation order.
func (s *Stage) UniformBlocks() []*VariableBlock { return s.uniforms }

// CreateInputBlock returns the input block named name, creating it if it does not exist.
func (s *Stage) CreateInputBlock(name, instance string) *VariableBlock {
	if vb := s.InputBlock(name); vb != nil {
		return vb
	}
	vb := NewVariableBlock(name, instance)
	s.inputs = append(s.inputs, vb)
	return vb
}

// InputBlock returns the input block named name or nil if not found.
func (s *Stage) InputBlock(name string) *VariableBlock {
	return findBlock(s.inputs, name)
}

func findBlock(blocks []*VariableBlock, name string) *VariableBlock {
	for _, vb := range blocks {
		if vb.Name == name {
			return vb
		}
	}
	return nil
}

// BeginLine writes the current indentation.
func (s *Stage) BeginLine() {
	for i := 0; i < s.indent; i++ {
		s.code = append(s.code, indentation...)
	}
}

// EndLine terminates the current line, with a semicolon if requested.
func (s *Stage) EndLine(semicolon bool) {
	if semicolon {
		s.code = append(s.code, ';')
	}
	s.code = append(s.code, '\n')
}

// Line writes str as a complete indented line.
func (s *Stage) Line(str string, semicolon bool) {
	s.BeginLine()
	s.code = append(s.code, str...)
	s.EndLine(semicolon)
}

// String writes str with no indentation or line termination.
func (s *Stage) String(str string) {
	s.code = append(s.code, str...)
}

// Append writes b with no indentation or line termination.
func (s *Stage) Append(b []byte) {
	s.code = append(s.code, b...)
}

// Newline writes an empty line break.
func (s *Stage) Newline() {
	s.code = append(s.code, '\n')
}

// BeginScope opens a scope on its own line and increments indentation.
func (s *Stage) BeginScope(punc Punctuation) {
	s.BeginLine()
	s.code = append(s.code, punc.open(), '\n')
	s.indent++
	s.scopes = append(s.scopes, punc)
}

// EndScope decrements indentation and closes the innermost scope.
func (s *Stage) EndScope(semicolon, newline bool) {
	if len(s.scopes) == 0 {
		panic("shadergen: EndScope without matching BeginScope")
	}
	punc := s.scopes[len(s.scopes)-1]
	s.scopes = s.scopes[:len(s.scopes)-1]
	s.indent--
	s.BeginLine()
	s.code = append(s.code, punc.close())
	if semicolon {
		s.code = append(s.code, ';')
	}
	if newline {
		s.code = append(s.code, '\n')
	}
}

// HasInclude reports whether the include path was already emitted into the stage.
func (s *Stage) HasInclude(path string) bool {
	_, ok := s.includes[path]
	return ok
}

// AddInclude records path as included and reports whether it was not already included.
func (s *Stage) AddInclude(path string) bool {
	if s.HasInclude(path) {
		return false
	}
	s.includes[path] = struct{}{}
	return true
}

// ReplaceTokens rewrites every token of ts in the stage's code. It must be
// called once after all code has been emitted.
func (s *Stage) ReplaceTokens(ts glbuild.TokenSubstitutions) {
	if s.replaced {
		panic("shadergen: tokens already replaced in stage " + s.name)
	}
	s.replaced = true
	if len(ts) == 0 || bytes.IndexByte(s.code, '$') < 0 {
		return
	}
	s.code = []byte(ts.Replace(string(s.code)))
}
