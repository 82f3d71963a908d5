package ogsfrag

import (
	"strconv"

	"github.com/soypat/ogsfrag/glbuild"
	"github.com/soypat/ogsfrag/mxgraph"
	"github.com/soypat/ogsfrag/shadergen"
	"github.com/soypat/ogsfrag/stdnodes"
)

// Library fragment include paths.
const (
	includeMath          = "stdlib/genglsl/lib/mx_math.glsl"
	includeTransformUV   = "stdlib/genglsl/lib/mx_transform_uv.glsl"
	includeTransformUVVF = "stdlib/genglsl/lib/mx_transform_uv_vflip.glsl"
	includeLightingFIS   = "pbrlib/genglsl/ogsxml/mx_lighting_maya_v3.glsl"
	includeLightingV1    = "pbrlib/genglsl/ogsxml/mx_lighting_maya_v1.glsl"
	includeLightingV2    = "pbrlib/genglsl/ogsxml/mx_lighting_maya_v2.glsl"
	includeLightingNone  = "pbrlib/genglsl/ogsxml/mx_lighting_maya_none.glsl"
)

// Light rig uniforms of the legacy light API.
const (
	lightLoopResult         = "lightLoopResult"
	envIrradianceSample     = "diffuseI"
	envRadianceSample       = "specularI"
	envRoughness            = "roughness"
	lightRigGlobalPrefix    = "g_"
	vertexDataInstanceIdent = "g_mxVertexData"
)

// DefaultFISSamples is the number of filtered importance samples used when
// the context carries no [shadergen.SpecularEnvironmentSamples].
const DefaultFISSamples = 64

// Generator generates OGS GLSL fragments. A Generator is not modified by
// code generation and may be used by concurrent goroutines, each with its
// own [shadergen.Context].
type Generator struct {
	*shadergen.Generator
	api LightAPI
}

// NewDefaultGenerator returns a Generator for [LightAPIV2] with the standard node implementations.
func NewDefaultGenerator() *Generator {
	return NewGenerator(LightAPIV2)
}

// NewGenerator returns a Generator targeting the given light API with the
// standard node implementations.
func NewGenerator(api LightAPI) *Generator {
	reg := stdnodes.NewRegistry()
	tokens := shadergen.DefaultTokens()
	tokens[shadergen.TokenPositionWorld] = "Pw"
	tokens[shadergen.TokenPositionObject] = "Pm"
	tokens[shadergen.TokenNormalWorld] = "Nw"
	tokens[shadergen.TokenNormalObject] = "Nm"
	tokens[shadergen.TokenTangentWorld] = "Tw"
	tokens[shadergen.TokenTangentObject] = "Tm"
	tokens[shadergen.TokenBitangentWorld] = "Bw"
	tokens[shadergen.TokenBitangentObject] = "Bm"
	tokens[shadergen.TokenVertexDataInstance] = vertexDataInstanceIdent
	if api.IsLegacy() {
		// Lights are stored by the host in global non-const variables.
		tokens[shadergen.TokenLightData] = "g_lightData"
		tokens[shadergen.TokenNumActiveLights] = "g_numActiveLightSources"
	} else {
		reg.Register("ND_surface", stdnodes.NewSurfaceMaya)
	}
	return &Generator{
		Generator: shadergen.NewGenerator(reg, tokens),
		api:       api,
	}
}

// LightAPI returns the light API the generator targets.
func (g *Generator) LightAPI() LightAPI { return g.api }

// NewContext returns a context for a single generation call with opts.
func (g *Generator) NewContext(opts shadergen.Options) *shadergen.Context {
	ctx := g.Generator.NewContext(opts, NewFragmentSyntax(), g)
	ctx.Reserved = []string{VPTransparencyName}
	return ctx
}

// CreateShader creates the shader of a fragment without emitting code. When
// the graph requires lighting under the legacy light API the light rig
// uniforms are published. The returned shader has a "pixel" and a "uniforms" stage.
func (g *Generator) CreateShader(name string, graph *mxgraph.Graph, ctx *shadergen.Context) (*shadergen.Shader, error) {
	shader, err := g.Generator.CreateShader(name, graph, ctx)
	if err != nil {
		return nil, err
	}
	ps := shader.Stage(shadergen.StagePixel)
	if shadergen.RequiresLighting(shader.Graph()) && g.api.IsLegacy() {
		public := ps.UniformBlock(shadergen.PublicUniforms)
		black := mxgraph.ZeroValue(mxgraph.TypeColor3)
		zero := mxgraph.FloatValue(0)
		public.Add(lightLoopResult, mxgraph.TypeColor3, &black)
		public.Add(envIrradianceSample, mxgraph.TypeColor3, &black)
		public.Add(envRadianceSample, mxgraph.TypeColor3, &black)
		public.Add(envRoughness, mxgraph.TypeFloat, &zero)
	}
	shader.CreateStage(StageUniforms)
	return shader, nil
}

// Generate generates the fragment named name for graph. On success the
// returned shader's "pixel" stage holds the fragment source and its
// "uniforms" stage the fragment's uniform declarations. If the options
// select an unknown specular environment method a [*ConfigError] is returned.
func (g *Generator) Generate(name string, graph *mxgraph.Graph, ctx *shadergen.Context) (*shadergen.Shader, error) {
	shader, err := g.CreateShader(name, graph, ctx)
	if err != nil {
		return nil, err
	}
	defer ctx.Syntax.SetFloatFormat(ctx.Syntax.SetFloatFormat(glbuild.FloatFormatFixed))
	if ctx.Tokens == nil {
		ctx.Tokens = g.Tokens()
	}

	opts := ctx.Options
	ps := shader.Stage(shadergen.StagePixel)
	sg := shader.Graph()
	vertexData := ps.InputBlock(shadergen.VertexData)
	if !vertexData.Empty() {
		// Node functions read vertex data through a global aggregate filled
		// in by the root function from its arguments.
		ps.Line("struct", false)
		ps.BeginScope(shadergen.Braces)
		g.EmitVariableDeclarations(vertexData, "", ";", ctx, ps, false)
		ps.EndScope(false, false)
		ps.String(" " + shadergen.TokenVertexDataInstance)
		ps.EndLine(true)
		ps.Newline()
	}

	ps.Line("#define MAX_LIGHT_SOURCES "+strconv.Itoa(int(opts.MaxActiveLightSources())), false)
	ps.Newline()
	g.EmitTypeDefinitions(ctx, ps)

	constants := ps.ConstantBlock()
	if !constants.Empty() {
		g.EmitVariableDeclarations(constants, ctx.Syntax.ConstantQualifier(), ";", ctx, ps, true)
		ps.Newline()
	}

	lighting := shadergen.RequiresLighting(sg)

	if err := g.EmitInclude(includeMath, ctx, ps); err != nil {
		return nil, err
	}
	ps.Newline()

	switch opts.HwSpecularEnvironmentMethod {
	case shadergen.SpecularEnvironmentFIS:
		ps.Line("#define DIRECTIONAL_ALBEDO_METHOD "+strconv.Itoa(int(opts.HwDirectionalAlbedoMethod)), false)
		ps.Newline()
		samples, ok := ctx.SpecularEnvironmentSamples()
		if !ok {
			samples = DefaultFISSamples
		}
		ps.Line("#define MX_NUM_FIS_SAMPLES "+strconv.Itoa(samples), false)
		ps.Newline()
		err = g.EmitInclude(includeLightingFIS, ctx, ps)
	case shadergen.SpecularEnvironmentPrefilter:
		if g.api.IsLegacy() {
			err = g.EmitInclude(includeLightingV1, ctx, ps)
		} else {
			err = g.EmitInclude(includeLightingV2, ctx, ps)
		}
	case shadergen.SpecularEnvironmentNone:
		err = g.EmitInclude(includeLightingNone, ctx, ps)
	default:
		log.Errorf("fragment %q: invalid specular environment method %d", name, int(opts.HwSpecularEnvironmentMethod))
		return nil, &ConfigError{
			Option: "hardware specular environment method",
			Value:  int(opts.HwSpecularEnvironmentMethod),
		}
	}
	if err != nil {
		return nil, err
	}
	ps.Newline()

	if opts.FileTextureVerticalFlip {
		ctx.Tokens[shadergen.TokenFileTransformUV] = includeTransformUVVF
	} else {
		ctx.Tokens[shadergen.TokenFileTransformUV] = includeTransformUV
	}

	if err := g.EmitFunctionDefinitions(sg, ctx, ps); err != nil {
		return nil, err
	}

	// Matrix33 arguments are passed as mat4 and converted back in the body.
	var convertMatrices []string
	functionName := ctx.Syntax.MakeIdentifier(shader.Name(), sg.Identifiers)
	ps.SetFunctionName(functionName)
	returnType := "vec3 "
	if opts.HwTransparency {
		returnType = "vec4 "
	}
	ps.Line(returnType+functionName, false)

	ps.BeginScope(shadergen.Parentheses)
	var args []*shadergen.Port
	public := ps.UniformBlock(shadergen.PublicUniforms)
	for _, p := range public.Ports() {
		if p.Type == mxgraph.TypeMatrix33 {
			convertMatrices = append(convertMatrices, p.Variable)
		}
		args = append(args, p)
	}
	args = append(args, vertexData.Ports()...)
	for i, p := range args {
		ps.BeginLine()
		g.EmitVariableDeclaration(p, "", ctx, ps, false)
		if i < len(args)-1 || opts.HwTransparency {
			ps.String(",")
		}
		ps.EndLine(false)
	}
	if opts.HwTransparency {
		ps.Line("float "+VPTransparencyName, false)
	}
	ps.EndScope(false, true)

	ps.BeginScope(shadergen.Braces)
	if sg.HasClassification(mxgraph.ClassClosure) && !sg.HasClassification(mxgraph.ClassShader) {
		// Closures can't be rendered without a surface shader.
		ps.Line("return vec3(0.0)", true)
	} else {
		for _, p := range vertexData.Ports() {
			ps.Line(shadergen.TokenVertexDataInstance+"."+p.Variable+" = "+p.Variable, true)
		}
		if lighting && g.api.IsLegacy() {
			ps.Line(lightRigGlobalPrefix+envIrradianceSample+" = "+envIrradianceSample, true)
			ps.Line(lightRigGlobalPrefix+envRadianceSample+" = "+envRadianceSample, true)
		}
		for _, m := range convertMatrices {
			ps.Line("mat3 "+m+" = mat3("+m+Matrix3ToMatrix4Suffix+")", true)
		}
		if err := g.EmitFunctionCalls(sg, ctx, ps); err != nil {
			return nil, err
		}
		g.emitReturn(sg, ctx, ps)
	}
	ps.EndScope(false, true)

	ps.ReplaceTokens(ctx.Tokens)

	us := shader.Stage(StageUniforms)
	g.emitUniformBlock(ps.UniformBlock(shadergen.PrivateUniforms), ctx, us)
	g.emitUniformBlock(public, ctx, us)
	us.ReplaceTokens(ctx.Tokens)

	log.Debugf("generated fragment %q: %d bytes pixel, %d bytes uniforms", functionName, len(ps.Code()), len(us.Code()))
	return shader, nil
}

// emitReturn emits the root function's return statement from the graph's output socket.
func (g *Generator) emitReturn(sg *shadergen.Graph, ctx *shadergen.Context, ps *shadergen.Stage) {
	transparency := ctx.Options.HwTransparency
	socket := sg.Socket
	if conn := socket.Connection; conn != nil {
		result := conn.Variable
		if socket.Channels != "" {
			result = ctx.Syntax.SwizzledVariable(result, conn.Type, socket.Channels, socket.Type)
		}
		switch {
		case sg.HasClassification(mxgraph.ClassSurface) && transparency:
			ps.Line("return vec4("+result+".color, clamp(1.0 - dot("+result+".transparency, vec3(0.3333)), 0.0, 1.0))", true)
		case sg.HasClassification(mxgraph.ClassSurface):
			ps.Line("return "+result+".color", true)
		case transparency:
			ps.Line("return "+ToVec4(socket.Type, result), true)
		default:
			ps.Line("return "+ToVec3(socket.Type, result), true)
		}
		return
	}

	value := ctx.Syntax.DefaultValue(socket.Type)
	if socket.Value != nil {
		value = ctx.Syntax.Value(*socket.Value)
	}
	needsCoercion := (!transparency && !socket.Type.IsFloat3()) || (transparency && !socket.Type.IsFloat4())
	if !needsCoercion {
		ps.Line("return "+value, true)
		return
	}
	tmp := socket.Variable + "_tmp"
	ps.Line(ctx.Syntax.TypeName(socket.Type)+" "+tmp+" = "+value, true)
	if transparency {
		ps.Line("return "+ToVec4(socket.Type, tmp), true)
	} else {
		ps.Line("return "+ToVec3(socket.Type, tmp), true)
	}
}

// emitUniformBlock emits uniform declarations of block into the uniforms
// stage. Samplers are aliased to their texture name with a macro since
// cross-compilers name separate textures after the original sampler.
func (g *Generator) emitUniformBlock(block *shadergen.VariableBlock, ctx *shadergen.Context, us *shadergen.Stage) {
	for _, p := range block.Ports() {
		if texture := SamplerToTextureName(p.Variable); texture != "" {
			us.BeginLine()
			us.Append(glbuild.AppendDefineDecl(nil, p.Variable, texture))
		}
		us.BeginLine()
		g.EmitVariableDeclaration(p, ctx.Syntax.UniformQualifier(), ctx, us, true)
		us.EndLine(true)
	}
	if !block.Empty() {
		us.Newline()
	}
}

// EmitVariableDeclaration emits a declaration of p. Matrix33 ports are
// declared as mat4 with the [Matrix3ToMatrix4Suffix] since the host only binds
// mat4 uniforms. Constants are always declared with their own type.
func (g *Generator) EmitVariableDeclaration(p *shadergen.Port, qualifier string, ctx *shadergen.Context, stage *shadergen.Stage, assignValue bool) {
	if p.Type != mxgraph.TypeMatrix33 || qualifier == ctx.Syntax.ConstantQualifier() {
		g.Generator.EmitVariableDeclaration(p, qualifier, ctx, stage, assignValue)
		return
	}
	stage.Append(glbuild.AppendVarDecl(nil, qualifier, "mat4", p.Variable+Matrix3ToMatrix4Suffix, ""))
}
