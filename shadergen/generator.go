package shadergen

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/soypat/ogsfrag/glbuild"
	"github.com/soypat/ogsfrag/glbuild/glsllib"
	"github.com/soypat/ogsfrag/mxgraph"
)

// Generator implements the generic steps of hardware shader generation.
// Target generators embed a Generator and add their own emission on top.
// A Generator is not modified by code generation and may be shared between
// goroutines as long as each call uses its own [Context].
type Generator struct {
	registry *Registry
	tokens   glbuild.TokenSubstitutions
}

// NewGenerator returns a Generator resolving node implementations from reg
// with the given default token substitutions.
func NewGenerator(reg *Registry, tokens glbuild.TokenSubstitutions) *Generator {
	if reg == nil {
		reg = NewRegistry()
	}
	if tokens == nil {
		tokens = DefaultTokens()
	}
	return &Generator{registry: reg, tokens: tokens}
}

// Registry returns the node implementation registry of the generator.
func (g *Generator) Registry() *Registry { return g.registry }

// Tokens returns a copy of the generator's token substitutions.
func (g *Generator) Tokens() glbuild.TokenSubstitutions { return g.tokens.Clone() }

// NewContext returns a Context for a single generation call with a copy of
// the generator's tokens, the embedded library includer and the given emitter.
func (g *Generator) NewContext(opts Options, syntax Syntax, emitter Emitter) *Context {
	if emitter == nil {
		emitter = g
	}
	return &Context{
		Options:  opts,
		Syntax:   syntax,
		Emitter:  emitter,
		Includer: glsllib.Default(),
		Tokens:   g.Tokens(),
	}
}

// CreateShader validates mg and creates a shader with a "pixel" stage
// holding the variable blocks of the graph: interface inputs and unbound
// texture inputs as public uniforms, node variables and lighting uniforms
// if the graph requires lighting. No code is emitted.
func (g *Generator) CreateShader(name string, mg *mxgraph.Graph, ctx *Context) (*Shader, error) {
	if ctx == nil || ctx.Syntax == nil || ctx.Emitter == nil {
		return nil, errors.New("shadergen: context missing syntax or emitter")
	}
	if err := mg.Validate(); err != nil {
		return nil, fmt.Errorf("shadergen: %w", err)
	}
	ids := glbuild.NewIdentifierMap()
	for _, name := range ctx.Reserved {
		ids.Reserve(name)
	}
	graph := &Graph{Name: mg.Name, Identifiers: ids}
	shader := NewShader(name, graph)
	ps := shader.CreateStage(StagePixel)
	private := ps.CreateUniformBlock(PrivateUniforms, "u_prv")
	public := ps.CreateUniformBlock(PublicUniforms, "u_pub")
	ps.CreateInputBlock(VertexData, TokenVertexDataInstance)

	syntax := ctx.Syntax
	ifaces := make(map[string]*Port, len(mg.Inputs))
	for _, in := range mg.Inputs {
		p := &Port{
			Name:     in.Name,
			Type:     in.Type,
			Variable: syntax.VariableName(in.Name, in.Type, ids),
			Value:    in.Value,
		}
		graph.Inputs = append(graph.Inputs, p)
		ifaces[in.Name] = public.AddPort(p)
	}

	for i := range mg.Nodes {
		mn := &mg.Nodes[i]
		impl, ok := g.registry.Lookup(mn.Def)
		if !ok {
			return nil, fmt.Errorf("shadergen: node %q: no implementation for %q", mn.Name, mn.Def)
		}
		node := &Node{Name: mn.Name, Def: mn.Def, Impl: impl}
		for _, out := range mn.NodeOutputs() {
			node.Outputs = append(node.Outputs, &Port{
				Name:     out.Name,
				Type:     out.Type,
				Variable: syntax.VariableName(mn.Name+"_"+out.Name, out.Type, ids),
			})
		}
		node.Class = mxgraph.Classify(node.Outputs[0].Type)
		if c, ok := impl.(Classifier); ok {
			node.Class |= c.Classification()
		}
		for _, in := range mn.Inputs {
			input := &Input{Port: Port{Name: in.Name, Type: in.Type, Value: in.Value}}
			switch {
			case in.Interface != "":
				input.Connection = ifaces[in.Interface]
			case in.Node != "":
				up := graph.Node(in.Node)
				input.Connection = up.Outputs[0]
				if in.Output != "" {
					input.Connection = up.Output(in.Output)
				}
			case in.Type == mxgraph.TypeFilename:
				// Unbound textures are published so the host can bind them.
				input.Connection = public.AddPort(&Port{
					Name:     mn.Name + "_" + in.Name,
					Type:     in.Type,
					Variable: syntax.VariableName(mn.Name+"_"+in.Name, in.Type, ids),
					Value:    in.Value,
				})
			}
			node.Inputs = append(node.Inputs, input)
		}
		graph.Nodes = append(graph.Nodes, node)
	}

	out := mg.Output
	socketName := out.Name
	if socketName == "" {
		socketName = mxgraph.DefaultOutput
	}
	graph.Socket = &OutputSocket{
		Port: Port{
			Name:     socketName,
			Type:     out.Type,
			Variable: syntax.VariableName(socketName, out.Type, ids),
			Value:    out.Value,
		},
		Channels: out.Channels,
	}
	graph.Class = mxgraph.ClassTexture
	if out.Connected() {
		up := graph.Node(out.Node)
		conn := up.Outputs[0]
		if out.NodeOutput != "" {
			conn = up.Output(out.NodeOutput)
		}
		if out.Channels != "" {
			err := glbuild.ValidateSwizzle(conn.Type, out.Channels, out.Type)
			if err != nil {
				return nil, fmt.Errorf("shadergen: output %q: %w", socketName, err)
			}
		} else if conn.Type != out.Type {
			return nil, fmt.Errorf("shadergen: output %q of type %s connected to %s", socketName, out.Type, conn.Type)
		}
		graph.Socket.Connection = conn
		graph.Class = up.Class
	}

	for _, node := range graph.Nodes {
		err := node.Impl.CreateVariables(node, ctx, shader)
		if err != nil {
			return nil, fmt.Errorf("shadergen: node %q: %w", node.Name, err)
		}
	}

	if RequiresLighting(graph) {
		private.Add(TokenEnvMatrix, mxgraph.TypeMatrix44, nil)
		private.Add(TokenEnvRadiance, mxgraph.TypeFilename, nil)
		mips := mxgraph.IntValue(1)
		private.Add(TokenEnvRadianceMips, mxgraph.TypeInteger, &mips)
		samples := mxgraph.IntValue(16)
		private.Add(TokenEnvRadianceSamples, mxgraph.TypeInteger, &samples)
		private.Add(TokenEnvIrradiance, mxgraph.TypeFilename, nil)
		if ctx.Options.HwSpecularEnvironmentMethod == SpecularEnvironmentFIS &&
			ctx.Options.HwDirectionalAlbedoMethod == DirectionalAlbedoTable {
			private.Add(TokenAlbedoTable, mxgraph.TypeFilename, nil)
		}
	}
	log.Debugf("created shader %q from graph %q: %d nodes, class %s", name, mg.Name, len(graph.Nodes), graph.Class)
	return shader, nil
}

// RequiresLighting reports whether the graph's output is a BSDF or a lit surface shader.
func RequiresLighting(g *Graph) bool {
	isBSDF := g.HasClassification(mxgraph.ClassBSDF)
	isLitSurface := g.HasClassification(mxgraph.ClassShader|mxgraph.ClassSurface) &&
		!g.HasClassification(mxgraph.ClassUnlit)
	return isBSDF || isLitSurface
}

// EmitVariableDeclaration emits the declaration of p with an optional
// qualifier and no terminating semicolon:
//
//	[<qualifier> ]<type> <variable>[ = <value>]
//
// Textures are never assigned a value.
func (g *Generator) EmitVariableDeclaration(p *Port, qualifier string, ctx *Context, stage *Stage, assignValue bool) {
	var value string
	if assignValue && p.Type != mxgraph.TypeFilename {
		if p.Value != nil {
			value = ctx.Syntax.Value(*p.Value)
		} else {
			value = ctx.Syntax.DefaultValue(p.Type)
		}
	}
	stage.code = glbuild.AppendVarDecl(stage.code, qualifier, ctx.Syntax.TypeName(p.Type), p.Variable, value)
}

// EmitVariableDeclarations emits one line per port of block, each terminated by separator.
// Declarations are emitted through the context's Emitter.
func (g *Generator) EmitVariableDeclarations(block *VariableBlock, qualifier, separator string, ctx *Context, stage *Stage, assignValue bool) {
	for _, p := range block.Ports() {
		stage.BeginLine()
		ctx.Emitter.EmitVariableDeclaration(p, qualifier, ctx, stage, assignValue)
		stage.String(separator)
		stage.EndLine(false)
	}
}

// EmitInclude resolves tokens in path and emits the library source it names
// into stage. Each path is emitted at most once per stage. Include
// directives within the source are emitted recursively in place.
func (g *Generator) EmitInclude(path string, ctx *Context, stage *Stage) error {
	resolved := path
	if ctx.Tokens != nil {
		resolved = ctx.Tokens.Replace(path)
	}
	if !stage.AddInclude(resolved) {
		return nil
	}
	if ctx.Includer == nil {
		return fmt.Errorf("shadergen: no includer for %q", resolved)
	}
	src, err := ctx.Includer.ReadInclude(resolved)
	if err != nil {
		return fmt.Errorf("shadergen: %w", err)
	}
	src = bytes.TrimRight(src, "\n")
	for _, line := range bytes.Split(src, []byte("\n")) {
		if nested, ok := glsllib.IncludeDirective(line); ok {
			if err := ctx.Emitter.EmitInclude(nested, ctx, stage); err != nil {
				return fmt.Errorf("%s: %w", resolved, err)
			}
			continue
		}
		stage.Append(line)
		stage.Newline()
	}
	return nil
}

const typeDefinitions = `struct BSDF { vec3 response; vec3 throughput; };
#define EDF vec3
struct surfaceshader { vec3 color; vec3 transparency; };
struct volumeshader { vec3 color; vec3 transparency; };
struct displacementshader { vec3 offset; float scale; };
struct lightshader { vec3 intensity; vec3 direction; };
#define material surfaceshader
`

// EmitTypeDefinitions emits the closure and shader type definitions followed by an empty line.
func (g *Generator) EmitTypeDefinitions(ctx *Context, stage *Stage) {
	stage.String(typeDefinitions)
	stage.Newline()
}

// EmitFunctionDefinitions emits the function definitions of all nodes of
// the graph. Nodes sharing an implementation emit it once.
func (g *Generator) EmitFunctionDefinitions(graph *Graph, ctx *Context, stage *Stage) error {
	emitted := make(map[string]struct{}, len(graph.Nodes))
	for _, node := range graph.Nodes {
		name := node.Impl.Name()
		if _, ok := emitted[name]; ok {
			continue
		}
		emitted[name] = struct{}{}
		err := node.Impl.EmitFunctionDefinition(node, ctx, stage)
		if err != nil {
			return fmt.Errorf("shadergen: node %q definition: %w", node.Name, err)
		}
	}
	return nil
}

// EmitFunctionCalls emits the calls of all nodes in evaluation order.
func (g *Generator) EmitFunctionCalls(graph *Graph, ctx *Context, stage *Stage) error {
	for _, node := range graph.Nodes {
		err := node.Impl.EmitFunctionCall(node, ctx, stage)
		if err != nil {
			return fmt.Errorf("shadergen: node %q call: %w", node.Name, err)
		}
	}
	return nil
}

// EmitOutput emits a declaration of a node output initialized to its
// default value as a full line:
//
//	<type> <variable> = <default>;
func EmitOutput(out *Port, ctx *Context, stage *Stage) {
	stage.BeginLine()
	stage.code = glbuild.AppendVarDecl(stage.code, "", ctx.Syntax.TypeName(out.Type), out.Variable, ctx.Syntax.DefaultValue(out.Type))
	stage.EndLine(true)
}

// InputExpr returns the expression of the node input named name: the
// variable of the connected port, the input's value literal or the default
// value of its type. If the node has no such input, or it is unconnected
// with no value and fallback is not empty, fallback is returned.
func InputExpr(node *Node, name string, ctx *Context, fallback string) string {
	in := node.Input(name)
	switch {
	case in == nil:
		return fallback
	case in.Connection != nil:
		return in.Connection.Variable
	case in.Value != nil:
		return ctx.Syntax.Value(*in.Value)
	case fallback != "":
		return fallback
	}
	return ctx.Syntax.DefaultValue(in.Type)
}
