// Package stdnodes implements code generation for the standard shading nodes:
// constants, math, geometric inputs, textures, transforms, closures and
// surface shaders.
package stdnodes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/soypat/ogsfrag/glbuild/glsllib"
	"github.com/soypat/ogsfrag/mxgraph"
	"github.com/soypat/ogsfrag/shadergen"
)

var (
	valueTypes = []mxgraph.Type{
		mxgraph.TypeBoolean, mxgraph.TypeInteger, mxgraph.TypeFloat,
		mxgraph.TypeVector2, mxgraph.TypeVector3, mxgraph.TypeVector4,
		mxgraph.TypeColor3, mxgraph.TypeColor4,
		mxgraph.TypeMatrix33, mxgraph.TypeMatrix44,
	}
	arithmeticTypes = []mxgraph.Type{
		mxgraph.TypeFloat,
		mxgraph.TypeVector2, mxgraph.TypeVector3, mxgraph.TypeVector4,
		mxgraph.TypeColor3, mxgraph.TypeColor4,
	}
	imageTypes = arithmeticTypes
)

// Register adds the standard node implementations to reg.
func Register(reg *shadergen.Registry) {
	for _, t := range valueTypes {
		t := t
		reg.Register("ND_constant_"+t.String(), func() shadergen.Implementation { return newConstant(t) })
	}
	for _, t := range arithmeticTypes {
		t := t
		reg.Register("ND_add_"+t.String(), func() shadergen.Implementation { return newBinaryOp("add", "+", t) })
		reg.Register("ND_subtract_"+t.String(), func() shadergen.Implementation { return newBinaryOp("subtract", "-", t) })
		reg.Register("ND_multiply_"+t.String(), func() shadergen.Implementation { return newBinaryOp("multiply", "*", t) })
		reg.Register("ND_mix_"+t.String(), func() shadergen.Implementation { return newMix(t) })
	}
	for _, t := range imageTypes {
		t := t
		reg.Register("ND_image_"+t.String(), func() shadergen.Implementation { return newImage(t) })
	}
	reg.Register("ND_texcoord_vector2", newTexcoord)
	reg.Register("ND_position_vector3", func() shadergen.Implementation {
		return newGeometric("position", shadergen.TokenPositionWorld, shadergen.TokenPositionObject, false)
	})
	reg.Register("ND_normal_vector3", func() shadergen.Implementation {
		return newGeometric("normal", shadergen.TokenNormalWorld, shadergen.TokenNormalObject, true)
	})
	reg.Register("ND_tangent_vector3", func() shadergen.Implementation {
		return newGeometric("tangent", shadergen.TokenTangentWorld, shadergen.TokenTangentObject, true)
	})
	reg.Register("ND_bitangent_vector3", func() shadergen.Implementation {
		return newGeometric("bitangent", shadergen.TokenBitangentWorld, shadergen.TokenBitangentObject, true)
	})
	reg.Register("ND_time_float", func() shadergen.Implementation {
		return newUniformInput("time", shadergen.TokenTime, mxgraph.TypeFloat)
	})
	reg.Register("ND_frame_float", func() shadergen.Implementation {
		return newUniformInput("frame", shadergen.TokenFrame, mxgraph.TypeFloat)
	})
	reg.Register("ND_transformmatrix_vector3M3", newTransformMatrix)
	reg.Register("ND_diffuse_bsdf", newDiffuseBSDF)
	reg.Register("ND_uniform_edf", newUniformEDF)
	reg.Register("ND_surface", newSurface)
	reg.Register("ND_surface_unlit", newSurfaceUnlit)
}

// NewRegistry returns a registry with the standard node implementations.
func NewRegistry() *shadergen.Registry {
	reg := shadergen.NewRegistry()
	Register(reg)
	return reg
}

// input describes a function argument read from a node input.
type input struct {
	name string
	typ  mxgraph.Type
	// fallback is the expression used when the input is absent or unset.
	// Empty uses the type's default value.
	fallback string
}

// sourceNode is an implementation whose function is defined in a library
// fragment and called with the node inputs followed by its output.
type sourceNode struct {
	name   string
	path   string
	inputs []input
	class  mxgraph.Classification
	// create adds node variables. May be nil.
	create func(node *shadergen.Node, ctx *shadergen.Context, shader *shadergen.Shader) error
}

func (s *sourceNode) Name() string                           { return s.name }
func (s *sourceNode) Classification() mxgraph.Classification { return s.class }

func (s *sourceNode) CreateVariables(node *shadergen.Node, ctx *shadergen.Context, shader *shadergen.Shader) error {
	if s.create == nil {
		return nil
	}
	return s.create(node, ctx, shader)
}

func (s *sourceNode) EmitFunctionDefinition(node *shadergen.Node, ctx *shadergen.Context, stage *shadergen.Stage) error {
	err := ctx.Emitter.EmitInclude(s.path, ctx, stage)
	if err != nil {
		return err
	}
	stage.Newline()
	return nil
}

func (s *sourceNode) EmitFunctionCall(node *shadergen.Node, ctx *shadergen.Context, stage *shadergen.Stage) error {
	fn, err := s.functionName(ctx)
	if err != nil {
		return err
	}
	out := node.Outputs[0]
	shadergen.EmitOutput(out, ctx, stage)
	args := make([]string, 0, len(s.inputs)+1)
	for _, in := range s.inputs {
		fallback := in.fallback
		if fallback == "" {
			fallback = ctx.Syntax.DefaultValue(in.typ)
		}
		args = append(args, shadergen.InputExpr(node, in.name, ctx, fallback))
	}
	args = append(args, out.Variable)
	stage.Line(fn+"("+strings.Join(args, ", ")+")", true)
	return nil
}

func (s *sourceNode) functionName(ctx *shadergen.Context) (string, error) {
	if ctx.Includer == nil {
		return "", errors.New("no includer")
	}
	src, err := ctx.Includer.ReadInclude(ctx.Tokens.Replace(s.path))
	if err != nil {
		return "", err
	}
	fn, err := glsllib.FunctionName(src)
	if err != nil {
		return "", fmt.Errorf("%s: %w", s.path, err)
	}
	return fn, nil
}

// inlineNode is an implementation computing its output with a single
// expression and no function definition.
type inlineNode struct {
	name   string
	create func(node *shadergen.Node, ctx *shadergen.Context, shader *shadergen.Shader) error
	expr   func(node *shadergen.Node, ctx *shadergen.Context, stage *shadergen.Stage) string
}

func (n *inlineNode) Name() string { return n.name }

func (n *inlineNode) CreateVariables(node *shadergen.Node, ctx *shadergen.Context, shader *shadergen.Shader) error {
	if n.create == nil {
		return nil
	}
	return n.create(node, ctx, shader)
}

func (n *inlineNode) EmitFunctionDefinition(*shadergen.Node, *shadergen.Context, *shadergen.Stage) error {
	return nil
}

func (n *inlineNode) EmitFunctionCall(node *shadergen.Node, ctx *shadergen.Context, stage *shadergen.Stage) error {
	out := node.Outputs[0]
	stage.Line(ctx.Syntax.TypeName(out.Type)+" "+out.Variable+" = "+n.expr(node, ctx, stage), true)
	return nil
}

func pixelStage(shader *shadergen.Shader) (*shadergen.Stage, error) {
	ps := shader.Stage(shadergen.StagePixel)
	if ps == nil {
		return nil, errors.New("shader has no pixel stage")
	}
	return ps, nil
}

func addVertexData(shader *shadergen.Shader, token string, t mxgraph.Type) error {
	ps, err := pixelStage(shader)
	if err != nil {
		return err
	}
	vd := ps.InputBlock(shadergen.VertexData)
	if vd == nil {
		return errors.New("pixel stage has no vertex data block")
	}
	vd.Add(token, t, nil)
	return nil
}

func addPrivateUniform(shader *shadergen.Shader, token string, t mxgraph.Type) error {
	ps, err := pixelStage(shader)
	if err != nil {
		return err
	}
	private := ps.UniformBlock(shadergen.PrivateUniforms)
	if private == nil {
		return errors.New("pixel stage has no private uniform block")
	}
	private.Add(token, t, nil)
	return nil
}

// publishTexture adds a texture input named name to node bound to a new
// public uniform. Used for texture inputs omitted from the graph.
func publishTexture(node *shadergen.Node, name string, ctx *shadergen.Context, shader *shadergen.Shader) error {
	ps, err := pixelStage(shader)
	if err != nil {
		return err
	}
	public := ps.UniformBlock(shadergen.PublicUniforms)
	if public == nil {
		return errors.New("pixel stage has no public uniform block")
	}
	portName := node.Name + "_" + name
	p := public.AddPort(&shadergen.Port{
		Name:     portName,
		Type:     mxgraph.TypeFilename,
		Variable: ctx.Syntax.VariableName(portName, mxgraph.TypeFilename, shader.Graph().Identifiers),
	})
	node.Inputs = append(node.Inputs, &shadergen.Input{
		Port:       shadergen.Port{Name: name, Type: mxgraph.TypeFilename},
		Connection: p,
	})
	return nil
}

// vertexDataRef returns the expression reading vertex data field through the block instance.
func vertexDataRef(stage *shadergen.Stage, field string) string {
	vd := stage.InputBlock(shadergen.VertexData)
	if vd == nil || vd.Instance == "" {
		return field
	}
	return vd.Instance + "." + field
}

// splat returns a value of type t with all components set to the scalar literal s.
func splat(ctx *shadergen.Context, t mxgraph.Type, s string) string {
	if t.Size() <= 1 {
		return s
	}
	return ctx.Syntax.TypeName(t) + "(" + s + ")"
}
