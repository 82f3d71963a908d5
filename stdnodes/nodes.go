package stdnodes

import (
	"strconv"

	"github.com/soypat/ogsfrag/mxgraph"
	"github.com/soypat/ogsfrag/shadergen"
)

func newConstant(t mxgraph.Type) shadergen.Implementation {
	// Each node publishes its value as a constant so the literal is written once.
	constants := make(map[*shadergen.Node]*shadergen.Port)
	return &inlineNode{
		name: "IM_constant_" + t.String(),
		create: func(node *shadergen.Node, ctx *shadergen.Context, shader *shadergen.Shader) error {
			in := node.Input("value")
			if in != nil && in.Connected() {
				return nil
			}
			ps, err := pixelStage(shader)
			if err != nil {
				return err
			}
			p := &shadergen.Port{
				Name:     node.Name + "_value",
				Type:     t,
				Variable: ctx.Syntax.VariableName(node.Name+"_value", t, shader.Graph().Identifiers),
			}
			if in != nil {
				p.Value = in.Value
			}
			constants[node] = ps.ConstantBlock().AddPort(p)
			return nil
		},
		expr: func(node *shadergen.Node, ctx *shadergen.Context, stage *shadergen.Stage) string {
			if p, ok := constants[node]; ok {
				return p.Variable
			}
			return shadergen.InputExpr(node, "value", ctx, ctx.Syntax.DefaultValue(t))
		},
	}
}

func newBinaryOp(op, operator string, t mxgraph.Type) shadergen.Implementation {
	identity := "0.0"
	if operator == "*" {
		identity = "1.0"
	}
	return &inlineNode{
		name: "IM_" + op + "_" + t.String(),
		expr: func(node *shadergen.Node, ctx *shadergen.Context, stage *shadergen.Stage) string {
			in1 := shadergen.InputExpr(node, "in1", ctx, splat(ctx, t, "0.0"))
			in2 := shadergen.InputExpr(node, "in2", ctx, splat(ctx, t, identity))
			return in1 + " " + operator + " " + in2
		},
	}
}

func newMix(t mxgraph.Type) shadergen.Implementation {
	return &inlineNode{
		name: "IM_mix_" + t.String(),
		expr: func(node *shadergen.Node, ctx *shadergen.Context, stage *shadergen.Stage) string {
			fg := shadergen.InputExpr(node, "fg", ctx, splat(ctx, t, "0.0"))
			bg := shadergen.InputExpr(node, "bg", ctx, splat(ctx, t, "0.0"))
			amount := shadergen.InputExpr(node, "mix", ctx, "0.0")
			return "mix(" + bg + ", " + fg + ", " + amount + ")"
		},
	}
}

// newGeometric returns a node reading a world or object space vertex data
// field selected by its "space" input.
func newGeometric(name, worldToken, objectToken string, normalize bool) shadergen.Implementation {
	token := func(node *shadergen.Node) string {
		if in := node.Input("space"); in != nil && in.Value != nil && in.Value.AsString() == "object" {
			return objectToken
		}
		return worldToken
	}
	return &inlineNode{
		name: "IM_" + name + "_vector3",
		create: func(node *shadergen.Node, ctx *shadergen.Context, shader *shadergen.Shader) error {
			return addVertexData(shader, token(node), mxgraph.TypeVector3)
		},
		expr: func(node *shadergen.Node, ctx *shadergen.Context, stage *shadergen.Stage) string {
			ref := vertexDataRef(stage, token(node))
			if normalize {
				return "normalize(" + ref + ")"
			}
			return ref
		},
	}
}

func texcoordToken(node *shadergen.Node) string {
	index := 0
	if in := node.Input("index"); in != nil && in.Value != nil {
		index = in.Value.AsInt()
	}
	return shadergen.TokenTexcoord + "_" + strconv.Itoa(index)
}

func newTexcoord() shadergen.Implementation {
	return &inlineNode{
		name: "IM_texcoord_vector2",
		create: func(node *shadergen.Node, ctx *shadergen.Context, shader *shadergen.Shader) error {
			return addVertexData(shader, texcoordToken(node), mxgraph.TypeVector2)
		},
		expr: func(node *shadergen.Node, ctx *shadergen.Context, stage *shadergen.Stage) string {
			return vertexDataRef(stage, texcoordToken(node))
		},
	}
}

func newUniformInput(name, token string, t mxgraph.Type) shadergen.Implementation {
	return &inlineNode{
		name: "IM_" + name + "_" + t.String(),
		create: func(node *shadergen.Node, ctx *shadergen.Context, shader *shadergen.Shader) error {
			return addPrivateUniform(shader, token, t)
		},
		expr: func(node *shadergen.Node, ctx *shadergen.Context, stage *shadergen.Stage) string {
			return token
		},
	}
}

func newTransformMatrix() shadergen.Implementation {
	return &inlineNode{
		name: "IM_transformmatrix_vector3M3",
		expr: func(node *shadergen.Node, ctx *shadergen.Context, stage *shadergen.Stage) string {
			in := shadergen.InputExpr(node, "in", ctx, "vec3(0.0)")
			mat := shadergen.InputExpr(node, "mat", ctx, "mat3(1.0)")
			return mat + " * " + in
		},
	}
}

// newImage returns a texture lookup node. Texture coordinates default to the
// first UV set when the texcoord input is not connected.
func newImage(t mxgraph.Type) shadergen.Implementation {
	texcoord := vertexDataField(shadergen.TokenTexcoord + "_0")
	return &sourceNode{
		name: "IM_image_" + t.String(),
		path: "stdlib/genglsl/mx_image_" + t.String() + ".glsl",
		inputs: []input{
			{name: "file", typ: mxgraph.TypeFilename},
			{name: "default", typ: t},
			{name: "texcoord", typ: mxgraph.TypeVector2, fallback: texcoord},
		},
		create: func(node *shadergen.Node, ctx *shadergen.Context, shader *shadergen.Shader) error {
			if node.Input("file") == nil {
				err := publishTexture(node, "file", ctx, shader)
				if err != nil {
					return err
				}
			}
			if in := node.Input("texcoord"); in != nil && in.Connected() {
				return nil
			}
			return addVertexData(shader, shadergen.TokenTexcoord+"_0", mxgraph.TypeVector2)
		},
	}
}

// vertexDataField returns the expression of a vertex data field read through
// the vertex data instance token.
func vertexDataField(field string) string {
	return shadergen.TokenVertexDataInstance + "." + field
}

func newDiffuseBSDF() shadergen.Implementation {
	return &sourceNode{
		name: "IM_diffuse_bsdf",
		path: "pbrlib/genglsl/mx_diffuse_bsdf.glsl",
		inputs: []input{
			{name: "weight", typ: mxgraph.TypeFloat, fallback: "1.0"},
			{name: "color", typ: mxgraph.TypeColor3, fallback: "vec3(0.18)"},
		},
	}
}

func newUniformEDF() shadergen.Implementation {
	return &inlineNode{
		name: "IM_uniform_edf",
		expr: func(node *shadergen.Node, ctx *shadergen.Context, stage *shadergen.Stage) string {
			return shadergen.InputExpr(node, "color", ctx, "vec3(1.0)")
		},
	}
}

var surfaceInputs = []input{
	{name: "bsdf", typ: mxgraph.TypeBSDF},
	{name: "edf", typ: mxgraph.TypeEDF},
	{name: "opacity", typ: mxgraph.TypeFloat, fallback: "1.0"},
}

func createSurfaceVariables(node *shadergen.Node, ctx *shadergen.Context, shader *shadergen.Shader) error {
	err := addVertexData(shader, shadergen.TokenPositionWorld, mxgraph.TypeVector3)
	if err != nil {
		return err
	}
	err = addVertexData(shader, shadergen.TokenNormalWorld, mxgraph.TypeVector3)
	if err != nil {
		return err
	}
	return addPrivateUniform(shader, shadergen.TokenViewPosition, mxgraph.TypeVector3)
}

// newSurface returns the surface shader lighting with the light data
// aggregate filled in by the host light rig.
func newSurface() shadergen.Implementation {
	return &sourceNode{
		name:   "IM_surface",
		path:   "pbrlib/genglsl/mx_surface.glsl",
		inputs: surfaceInputs,
		create: createSurfaceVariables,
	}
}

// NewSurfaceMaya returns the surface shader implementation querying lights
// through the host's light API functions. It replaces the "ND_surface"
// implementation for light API version 2 and above.
func NewSurfaceMaya() shadergen.Implementation {
	return &sourceNode{
		name:   "IM_surface_maya",
		path:   "pbrlib/genglsl/ogsxml/mx_surface_maya.glsl",
		inputs: surfaceInputs,
		create: createSurfaceVariables,
	}
}

func newSurfaceUnlit() shadergen.Implementation {
	return &sourceNode{
		name:  "IM_surface_unlit",
		path:  "pbrlib/genglsl/mx_surface_unlit.glsl",
		class: mxgraph.ClassUnlit,
		inputs: []input{
			{name: "emission", typ: mxgraph.TypeFloat, fallback: "1.0"},
			{name: "emission_color", typ: mxgraph.TypeColor3, fallback: "vec3(1.0)"},
			{name: "opacity", typ: mxgraph.TypeFloat, fallback: "1.0"},
		},
	}
}
