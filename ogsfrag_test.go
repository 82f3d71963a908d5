package ogsfrag_test

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/ogsfrag"
	"github.com/soypat/ogsfrag/glbuild"
	"github.com/soypat/ogsfrag/mxgraph"
	"github.com/soypat/ogsfrag/shadergen"
)

func ptr(v mxgraph.Value) *mxgraph.Value { return &v }

func generate(t *testing.T, gen *ogsfrag.Generator, graph *mxgraph.Graph, opts shadergen.Options) (pixel, uniforms string) {
	t.Helper()
	ctx := gen.NewContext(opts)
	shader, err := gen.Generate(graph.Name, graph, ctx)
	if err != nil {
		t.Fatal(err)
	}
	return shader.SourceCode(shadergen.StagePixel), shader.SourceCode(ogsfrag.StageUniforms)
}

func constantGraph() *mxgraph.Graph {
	return &mxgraph.Graph{
		Name:   "Constant",
		Output: mxgraph.Output{Name: "out", Type: mxgraph.TypeFloat, Value: ptr(mxgraph.FloatValue(1))},
	}
}

func closureGraph() *mxgraph.Graph {
	return &mxgraph.Graph{
		Name:   "Closure",
		Nodes:  []mxgraph.Node{{Name: "diffuse", Def: "ND_diffuse_bsdf", Type: mxgraph.TypeBSDF}},
		Output: mxgraph.Output{Name: "out", Type: mxgraph.TypeBSDF, Node: "diffuse"},
	}
}

func matrixGraph() *mxgraph.Graph {
	return &mxgraph.Graph{
		Name: "Transform",
		Inputs: []mxgraph.InterfaceInput{
			{Name: "M", Type: mxgraph.TypeMatrix33, Value: ptr(mxgraph.Mat3Value(ms3.IdentityMat3()))},
		},
		Nodes: []mxgraph.Node{
			{Name: "xf", Def: "ND_transformmatrix_vector3M3", Type: mxgraph.TypeVector3, Inputs: []mxgraph.NodeInput{
				{Name: "mat", Type: mxgraph.TypeMatrix33, Interface: "M"},
				{Name: "in", Type: mxgraph.TypeVector3, Value: ptr(mxgraph.Vec3Value(ms3.Vec{X: 1}))},
			}},
		},
		Output: mxgraph.Output{Name: "out", Type: mxgraph.TypeVector3, Node: "xf"},
	}
}

func positionGraph() *mxgraph.Graph {
	return &mxgraph.Graph{
		Name:   "Position",
		Nodes:  []mxgraph.Node{{Name: "p", Def: "ND_position_vector3", Type: mxgraph.TypeVector3}},
		Output: mxgraph.Output{Name: "out", Type: mxgraph.TypeVector3, Node: "p"},
	}
}

func surfaceGraph() *mxgraph.Graph {
	return &mxgraph.Graph{
		Name: "Surface",
		Inputs: []mxgraph.InterfaceInput{
			{Name: "base_color", Type: mxgraph.TypeColor3, Value: ptr(mxgraph.Color3Value(ms3.Vec{X: 0.8, Y: 0.5, Z: 0.2}))},
		},
		Nodes: []mxgraph.Node{
			{Name: "diffuse", Def: "ND_diffuse_bsdf", Type: mxgraph.TypeBSDF, Inputs: []mxgraph.NodeInput{
				{Name: "color", Type: mxgraph.TypeColor3, Interface: "base_color"},
			}},
			{Name: "surface", Def: "ND_surface", Type: mxgraph.TypeSurfaceShader, Inputs: []mxgraph.NodeInput{
				{Name: "bsdf", Type: mxgraph.TypeBSDF, Node: "diffuse"},
			}},
		},
		Output: mxgraph.Output{Name: "out", Type: mxgraph.TypeSurfaceShader, Node: "surface"},
	}
}

func imageGraph() *mxgraph.Graph {
	return &mxgraph.Graph{
		Name:   "Image",
		Nodes:  []mxgraph.Node{{Name: "img", Def: "ND_image_color4", Type: mxgraph.TypeColor4}},
		Output: mxgraph.Output{Name: "out", Type: mxgraph.TypeColor4, Node: "img"},
	}
}

func TestConstantOutput(t *testing.T) {
	gen := ogsfrag.NewGenerator(ogsfrag.LightAPILegacy)
	opts := shadergen.DefaultOptions()
	opts.HwSpecularEnvironmentMethod = shadergen.SpecularEnvironmentNone
	pixel, uniforms := generate(t, gen, constantGraph(), opts)
	wantBody := "vec3 Constant\n(\n)\n{\n    float out1_tmp = 1.0;\n    return vec3(out1_tmp, out1_tmp, out1_tmp);\n}\n"
	if !strings.HasSuffix(pixel, wantBody) {
		t.Errorf("want suffix\n%s\ngot\n%s", wantBody, pixel)
	}
	if !strings.HasPrefix(pixel, "#define MAX_LIGHT_SOURCES 3\n\n") {
		t.Errorf("unexpected prefix:\n%s", pixel)
	}
	if !strings.Contains(pixel, "vec3 mx_environment_irradiance(vec3 N)\n{\n    return vec3(0.0);\n}\n") {
		t.Error("none lighting fragment not included")
	}
	if uniforms != "" {
		t.Errorf("want no uniforms, got\n%s", uniforms)
	}

	opts.HwTransparency = true
	pixel, _ = generate(t, gen, constantGraph(), opts)
	wantBody = "vec4 Constant\n(\n    float vp2Transparent\n)\n{\n    float out1_tmp = 1.0;\n    return vec4(out1_tmp, out1_tmp, out1_tmp, 1.0);\n}\n"
	if !strings.HasSuffix(pixel, wantBody) {
		t.Errorf("want suffix\n%s\ngot\n%s", wantBody, pixel)
	}
}

func TestClosureWithoutShader(t *testing.T) {
	for _, api := range []ogsfrag.LightAPI{ogsfrag.LightAPILegacy, ogsfrag.LightAPIV2} {
		for _, transparency := range []bool{false, true} {
			opts := shadergen.DefaultOptions()
			opts.HwTransparency = transparency
			pixel, _ := generate(t, ogsfrag.NewGenerator(api), closureGraph(), opts)
			if !strings.HasSuffix(pixel, ")\n{\n    return vec3(0.0);\n}\n") {
				t.Errorf("%s transparency=%v: want black closure body, got\n%s", api, transparency, pixel)
			}
		}
	}
}

func TestInvalidSpecularMethod(t *testing.T) {
	gen := ogsfrag.NewDefaultGenerator()
	opts := shadergen.DefaultOptions()
	opts.HwSpecularEnvironmentMethod = 42
	ctx := gen.NewContext(opts)
	shader, err := gen.Generate("Bad", surfaceGraph(), ctx)
	if shader != nil {
		t.Error("want nil shader on invalid configuration")
	}
	if !errors.Is(err, ogsfrag.ErrInvalidConfig) {
		t.Fatalf("want invalid configuration error, got %v", err)
	}
	var cfgErr *ogsfrag.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Value != 42 {
		t.Errorf("want ConfigError with value 42, got %#v", err)
	}
	const wantMsg = "Invalid hardware specular environment method specified: '42'"
	if err.Error() != wantMsg {
		t.Errorf("want %q, got %q", wantMsg, err.Error())
	}
}

func TestMatrix33Arguments(t *testing.T) {
	gen := ogsfrag.NewDefaultGenerator()
	ctx := gen.NewContext(shadergen.DefaultOptions())
	shader, err := gen.Generate("Transform", matrixGraph(), ctx)
	if err != nil {
		t.Fatal(err)
	}
	pixel := shader.SourceCode(shadergen.StagePixel)
	if !strings.Contains(pixel, "(\n    mat4 M4\n)\n") {
		t.Errorf("want mat4 M4 argument in\n%s", pixel)
	}
	conv := strings.Index(pixel, "    mat3 M = mat3(M4);\n")
	use := strings.Index(pixel, "M * ")
	if conv < 0 || use < 0 || conv > use {
		t.Errorf("conversion must precede first use of M:\n%s", pixel)
	}
	uniforms := shader.SourceCode(ogsfrag.StageUniforms)
	if uniforms != "uniform mat4 M4;\n\n" {
		t.Errorf("got uniforms\n%q", uniforms)
	}
	frag, err := gen.NewFragment(shader, ctx)
	if err != nil {
		t.Fatal(err)
	}
	p := frag.Parameter("M")
	if p == nil || p.Variable != "M4" || p.Type != mxgraph.TypeMatrix33 || p.Private {
		t.Errorf("unexpected matrix parameter %+v", p)
	}
}

func TestGeneratedArgumentNamesUnique(t *testing.T) {
	graph := &mxgraph.Graph{
		Name: "Clash",
		Inputs: []mxgraph.InterfaceInput{
			{Name: "M", Type: mxgraph.TypeMatrix33},
			{Name: "M4", Type: mxgraph.TypeMatrix33},
			{Name: ogsfrag.VPTransparencyName, Type: mxgraph.TypeFloat},
		},
		Output: mxgraph.Output{Name: "out", Type: mxgraph.TypeFloat, Value: ptr(mxgraph.FloatValue(1))},
	}
	gen := ogsfrag.NewDefaultGenerator()
	opts := shadergen.DefaultOptions()
	opts.HwTransparency = true
	ctx := gen.NewContext(opts)
	shader, err := gen.Generate(graph.Name, graph, ctx)
	if err != nil {
		t.Fatal(err)
	}
	pixel := shader.SourceCode(shadergen.StagePixel)
	const wantArgs = "(\n    mat4 M4,\n    mat4 M414,\n    float vp2Transparent1,\n    float vp2Transparent\n)\n"
	if !strings.Contains(pixel, wantArgs) {
		t.Errorf("want arguments\n%s\ngot\n%s", wantArgs, pixel)
	}
	const wantConv = "    mat3 M = mat3(M4);\n    mat3 M41 = mat3(M414);\n"
	if !strings.Contains(pixel, wantConv) {
		t.Errorf("want conversions\n%s\ngot\n%s", wantConv, pixel)
	}
	frag, err := gen.NewFragment(shader, ctx)
	if err != nil {
		t.Fatal(err)
	}
	for name, want := range map[string]string{"M": "M4", "M4": "M414", ogsfrag.VPTransparencyName: "vp2Transparent1"} {
		p := frag.Parameter(name)
		if p == nil || p.Variable != want {
			t.Errorf("parameter %s: want variable %s, got %+v", name, want, p)
		}
	}
}

func TestGenerateRestoresFloatFormat(t *testing.T) {
	gen := ogsfrag.NewDefaultGenerator()
	bad := shadergen.DefaultOptions()
	bad.HwSpecularEnvironmentMethod = 42
	for _, opts := range []shadergen.Options{shadergen.DefaultOptions(), bad} {
		for _, initial := range []glbuild.FloatFormat{glbuild.FloatFormatDefault, glbuild.FloatFormatScientific} {
			ctx := gen.NewContext(opts)
			ctx.Syntax.SetFloatFormat(initial)
			_, err := gen.Generate("Surface", surfaceGraph(), ctx)
			if (err != nil) != (opts == bad) {
				t.Fatalf("method %v: unexpected error result %v", opts.HwSpecularEnvironmentMethod, err)
			}
			got := ctx.Syntax.SetFloatFormat(glbuild.FloatFormatFixed)
			if got != initial {
				t.Errorf("method %v: want float format %s restored, got %s", opts.HwSpecularEnvironmentMethod, initial, got)
			}
		}
	}
}

func TestVertexDataAggregate(t *testing.T) {
	gen := ogsfrag.NewDefaultGenerator()
	pixel, _ := generate(t, gen, positionGraph(), shadergen.DefaultOptions())
	const wantPrefix = "struct\n{\n    vec3 Pw;\n} g_mxVertexData;\n\n#define MAX_LIGHT_SOURCES 3\n"
	if !strings.HasPrefix(pixel, wantPrefix) {
		t.Errorf("want prefix\n%s\ngot\n%s", wantPrefix, pixel)
	}
	const wantFunc = "vec3 Position\n(\n    vec3 Pw\n)\n{\n    g_mxVertexData.Pw = Pw;\n    vec3 p_out = g_mxVertexData.Pw;\n    return p_out;\n}\n"
	if !strings.HasSuffix(pixel, wantFunc) {
		t.Errorf("want suffix\n%s\ngot\n%s", wantFunc, pixel)
	}
}

func TestNoTokensLeft(t *testing.T) {
	graphs := []*mxgraph.Graph{constantGraph(), closureGraph(), matrixGraph(), positionGraph(), surfaceGraph(), imageGraph()}
	methods := []shadergen.SpecularEnvironmentMethod{
		shadergen.SpecularEnvironmentNone, shadergen.SpecularEnvironmentFIS, shadergen.SpecularEnvironmentPrefilter,
	}
	for _, api := range []ogsfrag.LightAPI{ogsfrag.LightAPILegacy, ogsfrag.LightAPIV2, ogsfrag.LightAPIV3} {
		gen := ogsfrag.NewGenerator(api)
		for _, method := range methods {
			for _, graph := range graphs {
				opts := shadergen.DefaultOptions()
				opts.HwSpecularEnvironmentMethod = method
				opts.HwDirectionalAlbedoMethod = shadergen.DirectionalAlbedoTable
				pixel, uniforms := generate(t, gen, graph, opts)
				if strings.Contains(pixel, "$") || strings.Contains(uniforms, "$") {
					t.Errorf("%s %s %s: unsubstituted token:\n%s\n%s", api, method, graph.Name, pixel, uniforms)
				}
				if strings.Contains(pixel, "#include") {
					t.Errorf("%s %s %s: include directive left in source", api, method, graph.Name)
				}
			}
		}
	}
}

func TestTransparency(t *testing.T) {
	gen := ogsfrag.NewDefaultGenerator()
	for _, transparent := range []bool{false, true} {
		opts := shadergen.DefaultOptions()
		opts.HwTransparency = transparent
		pixel, _ := generate(t, gen, surfaceGraph(), opts)
		hasArg := strings.Contains(pixel, "    float "+ogsfrag.VPTransparencyName+"\n)")
		if hasArg != transparent {
			t.Errorf("transparency=%v: vp2Transparent argument present=%v", transparent, hasArg)
		}
		if transparent {
			want := "return vec4(surface_out.color, clamp(1.0 - dot(surface_out.transparency, vec3(0.3333)), 0.0, 1.0));"
			if !strings.Contains(pixel, want) || !strings.Contains(pixel, "vec4 Surface\n") {
				t.Errorf("transparent surface return missing:\n%s", pixel)
			}
		} else if !strings.Contains(pixel, "    return surface_out.color;\n") {
			t.Errorf("opaque surface return missing:\n%s", pixel)
		}
	}
}

func TestColor4Output(t *testing.T) {
	gen := ogsfrag.NewDefaultGenerator()
	pixel, _ := generate(t, gen, imageGraph(), shadergen.DefaultOptions())
	if !strings.Contains(pixel, "    return img_out.xyz;\n") {
		t.Errorf("color4 output must be truncated to vec3:\n%s", pixel)
	}
	opts := shadergen.DefaultOptions()
	opts.HwTransparency = true
	pixel, _ = generate(t, gen, imageGraph(), opts)
	if !strings.Contains(pixel, "    return img_out;\n") {
		t.Errorf("color4 output must pass through with transparency:\n%s", pixel)
	}
}

func TestSamplers(t *testing.T) {
	gen := ogsfrag.NewDefaultGenerator()
	ctx := gen.NewContext(shadergen.DefaultOptions())
	shader, err := gen.Generate("Image", imageGraph(), ctx)
	if err != nil {
		t.Fatal(err)
	}
	pixel := shader.SourceCode(shadergen.StagePixel)
	if !strings.Contains(pixel, "    sampler2D _img_file_sampler,\n") {
		t.Errorf("texture argument must use sampler naming:\n%s", pixel)
	}
	if !strings.Contains(pixel, "mx_image_color4(_img_file_sampler, vec4(0.0), g_mxVertexData.texcoord_0, img_out);") {
		t.Errorf("unexpected image call:\n%s", pixel)
	}
	const wantUniforms = "#define _img_file_sampler img_file\nuniform sampler2D _img_file_sampler;\n\n"
	if got := shader.SourceCode(ogsfrag.StageUniforms); got != wantUniforms {
		t.Errorf("want uniforms\n%q\ngot\n%q", wantUniforms, got)
	}
}

func TestSamplerNames(t *testing.T) {
	if got := ogsfrag.TextureToSamplerName("tex"); got != "_tex_sampler" {
		t.Errorf("got %q", got)
	}
	if got := ogsfrag.SamplerToTextureName("_tex_sampler"); got != "tex" {
		t.Errorf("got %q", got)
	}
	for _, name := range []string{"tex", "_sampler", "__sampler", "_tex", "tex_sampler"} {
		if ogsfrag.IsSamplerName(name) || ogsfrag.SamplerToTextureName(name) != "" {
			t.Errorf("%q is not a sampler name", name)
		}
	}
}

func TestFileTextureVerticalFlip(t *testing.T) {
	gen := ogsfrag.NewDefaultGenerator()
	opts := shadergen.DefaultOptions()
	pixel, _ := generate(t, gen, imageGraph(), opts)
	if strings.Contains(pixel, "1.0 - uv.y") {
		t.Error("unexpected vertical flip")
	}
	opts.FileTextureVerticalFlip = true
	pixel, _ = generate(t, gen, imageGraph(), opts)
	if !strings.Contains(pixel, "return vec2(uv.x, 1.0 - uv.y);") {
		t.Errorf("missing vertical flip:\n%s", pixel)
	}
}

func TestLegacyLightRig(t *testing.T) {
	gen := ogsfrag.NewGenerator(ogsfrag.LightAPILegacy)
	opts := shadergen.DefaultOptions()
	opts.HwSpecularEnvironmentMethod = shadergen.SpecularEnvironmentPrefilter
	ctx := gen.NewContext(opts)
	shader, err := gen.Generate("Legacy", surfaceGraph(), ctx)
	if err != nil {
		t.Fatal(err)
	}
	pixel := shader.SourceCode(shadergen.StagePixel)
	for _, want := range []string{
		"LightData g_lightData[MAX_LIGHT_SOURCES];\n",
		"int g_numActiveLightSources = 0;\n",
		"    vec3 diffuseI,\n",
		"    g_diffuseI = diffuseI;\n    g_specularI = specularI;\n",
		"    return g_specularI;\n",
	} {
		if !strings.Contains(pixel, want) {
			t.Errorf("missing %q in\n%s", want, pixel)
		}
	}
	if n := strings.Count(pixel, "struct LightData"); n != 1 {
		t.Errorf("want light rig included once, got %d", n)
	}
	uniforms := shader.SourceCode(ogsfrag.StageUniforms)
	for _, want := range []string{
		"uniform vec3 lightLoopResult = vec3(0.0, 0.0, 0.0);\n",
		"uniform vec3 diffuseI = vec3(0.0, 0.0, 0.0);\n",
		"uniform vec3 specularI = vec3(0.0, 0.0, 0.0);\n",
		"uniform float roughness = 0.0;\n",
		"uniform vec3 base_color = vec3(0.8, 0.5, 0.2);\n",
	} {
		if !strings.Contains(uniforms, want) {
			t.Errorf("missing %q in uniforms\n%s", want, uniforms)
		}
	}

	// Host light functions replace the light rig.
	pixel, _ = generate(t, ogsfrag.NewDefaultGenerator(), surfaceGraph(), opts)
	if strings.Contains(pixel, "LightData") || !strings.Contains(pixel, "mayaGetLightIrradiance") {
		t.Errorf("light API v2 must query host lights:\n%s", pixel)
	}
	if strings.Contains(pixel, "diffuseI") {
		t.Error("light API v2 must not declare light rig uniforms")
	}
}

func TestSpecularMethods(t *testing.T) {
	gen := ogsfrag.NewDefaultGenerator()
	opts := shadergen.DefaultOptions()
	ctx := gen.NewContext(opts)
	ctx.SetUserData(shadergen.UserDataSpecularEnvironmentSamples, shadergen.SpecularEnvironmentSamples{Samples: 16})
	shader, err := gen.Generate("FIS", surfaceGraph(), ctx)
	if err != nil {
		t.Fatal(err)
	}
	pixel := shader.SourceCode(shadergen.StagePixel)
	for _, want := range []string{
		"#define DIRECTIONAL_ALBEDO_METHOD 0\n",
		"#define MX_NUM_FIS_SAMPLES 16\n",
		"textureLod(u_envRadiance, uv, lod)",
	} {
		if !strings.Contains(pixel, want) {
			t.Errorf("missing %q in\n%s", want, pixel)
		}
	}
	uniforms := shader.SourceCode(ogsfrag.StageUniforms)
	env := strings.Index(uniforms, "uniform mat4 u_envMatrix = mat4(")
	base := strings.Index(uniforms, "uniform vec3 base_color = ")
	if env < 0 || base < 0 || env > base {
		t.Errorf("private uniforms must be declared first:\n%s", uniforms)
	}
	if strings.Contains(uniforms, "u_albedoTable") {
		t.Error("albedo table declared for analytic albedo")
	}

	pixel, _ = generate(t, gen, surfaceGraph(), opts)
	if !strings.Contains(pixel, "#define MX_NUM_FIS_SAMPLES 64\n") {
		t.Error("want default FIS sample count")
	}

	opts.HwSpecularEnvironmentMethod = shadergen.SpecularEnvironmentPrefilter
	pixel, _ = generate(t, gen, surfaceGraph(), opts)
	if !strings.Contains(pixel, "mayaGetSpecularEnvironment") || strings.Contains(pixel, "MX_NUM_FIS_SAMPLES") {
		t.Errorf("prefilter method must use host environment:\n%s", pixel)
	}
}

func TestMaxLightSources(t *testing.T) {
	gen := ogsfrag.NewDefaultGenerator()
	opts := shadergen.DefaultOptions()
	opts.HwMaxActiveLightSources = 0
	pixel, _ := generate(t, gen, constantGraph(), opts)
	if !strings.Contains(pixel, "#define MAX_LIGHT_SOURCES 1\n") {
		t.Error("light sources must clamp to 1")
	}
}

func TestDeterministic(t *testing.T) {
	gen := ogsfrag.NewDefaultGenerator()
	graphs := []*mxgraph.Graph{surfaceGraph(), imageGraph(), matrixGraph()}
	want := make([]string, len(graphs))
	for i, g := range graphs {
		pixel, uniforms := generate(t, gen, g, shadergen.DefaultOptions())
		want[i] = pixel + uniforms
	}
	var wg sync.WaitGroup
	for n := 0; n < 4; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, g := range graphs {
				ctx := gen.NewContext(shadergen.DefaultOptions())
				shader, err := gen.Generate(g.Name, g, ctx)
				if err != nil {
					t.Error(err)
					return
				}
				got := shader.SourceCode(shadergen.StagePixel) + shader.SourceCode(ogsfrag.StageUniforms)
				if got != want[i] {
					t.Errorf("%s: output differs between runs", g.Name)
				}
			}
		}()
	}
	wg.Wait()
}

func TestGraphRoundTrip(t *testing.T) {
	gen := ogsfrag.NewDefaultGenerator()
	for _, g := range []*mxgraph.Graph{surfaceGraph(), imageGraph(), matrixGraph(), constantGraph()} {
		data, err := mxgraph.MarshalGraph(g)
		if err != nil {
			t.Fatal(err)
		}
		decoded, err := mxgraph.UnmarshalGraph(data)
		if err != nil {
			t.Fatal(err)
		}
		wantPixel, wantUniforms := generate(t, gen, g, shadergen.DefaultOptions())
		pixel, uniforms := generate(t, gen, decoded, shadergen.DefaultOptions())
		if pixel != wantPixel || uniforms != wantUniforms {
			t.Errorf("%s: decoded graph generates different source", g.Name)
		}
	}
}

func TestToVec(t *testing.T) {
	var tests = []struct {
		typ        mxgraph.Type
		vec3, vec4 string
	}{
		{typ: mxgraph.TypeFloat, vec3: "vec3(x, x, x)", vec4: "vec4(x, x, x, 1.0)"},
		{typ: mxgraph.TypeInteger, vec3: "vec3(x, x, x)", vec4: "vec4(x, x, x, 1.0)"},
		{typ: mxgraph.TypeVector2, vec3: "vec3(x, 0.0)", vec4: "vec4(x, 0.0, 1.0)"},
		{typ: mxgraph.TypeVector3, vec3: "x", vec4: "vec4(x, 1.0)"},
		{typ: mxgraph.TypeColor3, vec3: "x", vec4: "vec4(x, 1.0)"},
		{typ: mxgraph.TypeVector4, vec3: "x.xyz", vec4: "x"},
		{typ: mxgraph.TypeColor4, vec3: "x.xyz", vec4: "x"},
		{typ: mxgraph.TypeBSDF, vec3: "vec3(x)", vec4: "vec4(x, 1.0)"},
		{typ: mxgraph.TypeEDF, vec3: "vec3(x)", vec4: "vec4(x, 1.0)"},
		{typ: mxgraph.TypeMatrix44, vec3: "vec3(0.0, 0.0, 0.0)", vec4: "vec4(0.0, 0.0, 0.0, 1.0)"},
		{typ: mxgraph.TypeString, vec3: "vec3(0.0, 0.0, 0.0)", vec4: "vec4(0.0, 0.0, 0.0, 1.0)"},
		{typ: mxgraph.TypeNone, vec3: "vec3(0.0, 0.0, 0.0)", vec4: "vec4(0.0, 0.0, 0.0, 1.0)"},
	}
	for _, test := range tests {
		if got := ogsfrag.ToVec3(test.typ, "x"); got != test.vec3 {
			t.Errorf("ToVec3(%s): want %q, got %q", test.typ, test.vec3, got)
		}
		if got := ogsfrag.ToVec4(test.typ, "x"); got != test.vec4 {
			t.Errorf("ToVec4(%s): want %q, got %q", test.typ, test.vec4, got)
		}
	}
}

func TestFragment(t *testing.T) {
	gen := ogsfrag.NewDefaultGenerator()
	opts := shadergen.DefaultOptions()
	opts.HwTransparency = true
	ctx := gen.NewContext(opts)
	graph := surfaceGraph()

	created, err := gen.CreateShader("Surface", graph, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := gen.NewFragment(created, ctx); err == nil {
		t.Error("expected error for shader without code")
	}

	shader, err := gen.Generate("Surface", graph, gen.NewContext(opts))
	if err != nil {
		t.Fatal(err)
	}
	frag, err := gen.NewFragment(shader, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if frag.FunctionName != "Surface" || !frag.Transparent || frag.LightAPI != ogsfrag.LightAPIV2 {
		t.Errorf("unexpected fragment header %+v", frag)
	}
	if frag.Pixel != shader.SourceCode(shadergen.StagePixel) || frag.Uniforms != shader.SourceCode(ogsfrag.StageUniforms) {
		t.Error("fragment sources differ from shader")
	}
	p := frag.Parameter("base_color")
	if p == nil || p.Private || p.Variable != "base_color" || p.Value == nil {
		t.Errorf("unexpected public parameter %+v", p)
	}
	env := frag.Parameter("$envMatrix")
	if env == nil || !env.Private || env.Variable != "u_envMatrix" {
		t.Errorf("unexpected private parameter %+v", env)
	}
	if !frag.Parameters[0].Private || frag.Parameters[len(frag.Parameters)-1].Private {
		t.Error("private parameters must precede public parameters")
	}

	data, err := ogsfrag.MarshalFragment(frag)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ogsfrag.UnmarshalFragment(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(frag, got) {
		t.Errorf("fragment round trip mismatch:\nwant %+v\ngot  %+v", frag, got)
	}
	if _, err := ogsfrag.UnmarshalFragment([]byte{0xff}); err == nil {
		t.Error("garbage decoded without error")
	}
}

func TestLightAPI(t *testing.T) {
	if !ogsfrag.LightAPILegacy.IsLegacy() || ogsfrag.LightAPIV2.IsLegacy() || ogsfrag.LightAPIV3.IsLegacy() {
		t.Error("legacy classification")
	}
	if ogsfrag.NewDefaultGenerator().LightAPI() != ogsfrag.LightAPIV2 {
		t.Error("default generator must target light API v2")
	}
	if got := ogsfrag.LightAPI(9).String(); got != "LightAPI(9)" {
		t.Errorf("got %q", got)
	}
}
