package ogsfrag

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/soypat/ogsfrag/mxgraph"
	"github.com/soypat/ogsfrag/shadergen"
)

// Fragment is a snapshot of a generated fragment: its sources and the
// parameters the host binds. Fragments are stored and transferred as CBOR.
type Fragment struct {
	Name         string      `cbor:"1,keyasint"`
	FunctionName string      `cbor:"2,keyasint"`
	Pixel        string      `cbor:"3,keyasint"`
	Uniforms     string      `cbor:"4,keyasint"`
	Parameters   []Parameter `cbor:"5,keyasint,omitempty"`
	Transparent  bool        `cbor:"6,keyasint,omitempty"`
	LightAPI     LightAPI    `cbor:"7,keyasint"`
}

// Parameter is a uniform of a fragment.
type Parameter struct {
	// Name is the port name in the graph.
	Name string `cbor:"1,keyasint"`
	// Variable is the identifier of the uniform in the fragment source.
	Variable string         `cbor:"2,keyasint"`
	Type     mxgraph.Type   `cbor:"3,keyasint"`
	Value    *mxgraph.Value `cbor:"4,keyasint,omitempty"`
	// Private parameters are bound by the host renderer, not by the user.
	Private bool `cbor:"5,keyasint,omitempty"`
}

var fragEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ogsfrag: failed to create CBOR enc mode: %v", err))
	}
	fragEncMode = em
}

// NewFragment returns the fragment of a shader returned by [Generator.Generate].
// Parameter variables have tokens substituted with ctx's tokens.
func (g *Generator) NewFragment(shader *shadergen.Shader, ctx *shadergen.Context) (*Fragment, error) {
	ps := shader.Stage(shadergen.StagePixel)
	us := shader.Stage(StageUniforms)
	if ps == nil || us == nil {
		return nil, errors.New("ogsfrag: shader missing pixel or uniforms stage")
	} else if ps.FunctionName() == "" {
		return nil, errors.New("ogsfrag: shader code not generated")
	}
	frag := &Fragment{
		Name:         shader.Name(),
		FunctionName: ps.FunctionName(),
		Pixel:        ps.Code(),
		Uniforms:     us.Code(),
		Transparent:  ctx.Options.HwTransparency,
		LightAPI:     g.api,
	}
	add := func(blockName string, private bool) {
		block := ps.UniformBlock(blockName)
		if block == nil {
			return
		}
		for _, p := range block.Ports() {
			variable := ctx.Tokens.Replace(p.Variable)
			if p.Type == mxgraph.TypeMatrix33 {
				variable += Matrix3ToMatrix4Suffix
			}
			frag.Parameters = append(frag.Parameters, Parameter{
				Name:     p.Name,
				Variable: variable,
				Type:     p.Type,
				Value:    p.Value,
				Private:  private,
			})
		}
	}
	add(shadergen.PrivateUniforms, true)
	add(shadergen.PublicUniforms, false)
	return frag, nil
}

// Parameter returns the parameter named name or nil if not found.
func (f *Fragment) Parameter(name string) *Parameter {
	for i := range f.Parameters {
		if f.Parameters[i].Name == name {
			return &f.Parameters[i]
		}
	}
	return nil
}

// MarshalFragment serializes a Fragment to canonical CBOR bytes.
func MarshalFragment(f *Fragment) ([]byte, error) {
	return fragEncMode.Marshal(f)
}

// UnmarshalFragment deserializes a Fragment from CBOR bytes.
func UnmarshalFragment(data []byte) (*Fragment, error) {
	var f Fragment
	if err := cbor.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ogsfrag: unmarshal fragment: %w", err)
	}
	return &f, nil
}
