package glsllib_test

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/soypat/ogsfrag/glbuild/glsllib"
)

func TestDefaultLibraryReadable(t *testing.T) {
	lib := glsllib.Default()
	paths, err := lib.Paths()
	if err != nil {
		t.Fatal(err)
	} else if len(paths) == 0 {
		t.Fatal("no embedded fragments")
	}
	for _, p := range paths {
		src, err := lib.ReadInclude(p)
		if err != nil {
			t.Error(err)
			continue
		}
		for _, line := range bytes.Split(src, []byte("\n")) {
			nested, ok := glsllib.IncludeDirective(line)
			if !ok || bytes.Contains([]byte(nested), []byte("$")) {
				continue // Token includes are resolved by the generator.
			}
			if _, err := lib.ReadInclude(nested); err != nil {
				t.Errorf("%s: %v", p, err)
			}
		}
	}
}

func TestReadIncludeErrors(t *testing.T) {
	lib := glsllib.Default()
	for _, p := range []string{"", "$fileTransformUv", "../secret.glsl", "stdlib/genglsl/missing.glsl"} {
		_, err := lib.ReadInclude(p)
		if err == nil {
			t.Errorf("ReadInclude(%q): expected error", p)
		}
	}
	_, err := lib.ReadInclude("/stdlib/genglsl/lib/mx_math.glsl")
	if err != nil {
		t.Errorf("leading slash: %v", err)
	}
}

func TestChain(t *testing.T) {
	override := glsllib.New(fstest.MapFS{
		"stdlib/genglsl/lib/mx_math.glsl": {Data: []byte("// overridden\n")},
	})
	chain := glsllib.Chain{override, glsllib.Default()}
	src, err := chain.ReadInclude("stdlib/genglsl/lib/mx_math.glsl")
	if err != nil {
		t.Fatal(err)
	} else if string(src) != "// overridden\n" {
		t.Errorf("want overriding fragment, got %q", src)
	}
	_, err = chain.ReadInclude("pbrlib/genglsl/mx_diffuse_bsdf.glsl")
	if err != nil {
		t.Errorf("fallback to default library: %v", err)
	}
	_, err = chain.ReadInclude("nope.glsl")
	if err == nil {
		t.Error("expected error for missing include")
	}
	var empty glsllib.Chain
	_, err = empty.ReadInclude("stdlib/genglsl/lib/mx_math.glsl")
	if err == nil {
		t.Error("expected error for empty chain")
	}
}

func TestIncludeDirective(t *testing.T) {
	var tests = []struct {
		line string
		path string
		ok   bool
	}{
		{line: `#include "a/b.glsl"`, path: "a/b.glsl", ok: true},
		{line: `   #include   "$fileTransformUv"  `, path: "$fileTransformUv", ok: true},
		{line: `#include <a.glsl>`},
		{line: `#define X 1`},
		{line: `// #include "a.glsl"`},
		{line: `#include "`},
	}
	for _, test := range tests {
		path, ok := glsllib.IncludeDirective([]byte(test.line))
		if ok != test.ok || path != test.path {
			t.Errorf("%q: want (%q, %v), got (%q, %v)", test.line, test.path, test.ok, path, ok)
		}
	}
}

func TestFunctionName(t *testing.T) {
	var tests = []struct {
		src  string
		want string
	}{
		{src: "void mx_image_float(sampler2D s, out float result)\n{\n}", want: "mx_image_float"},
		{src: "#include \"x.glsl\"\n\n// comment (with parens)\nvec3 fn(vec3 a)", want: "fn"},
	}
	for _, test := range tests {
		got, err := glsllib.FunctionName([]byte(test.src))
		if err != nil {
			t.Errorf("%q: %v", test.src, err)
		} else if got != test.want {
			t.Errorf("want %q, got %q", test.want, got)
		}
	}
	_, err := glsllib.FunctionName([]byte("#define A 1\n"))
	if err == nil {
		t.Error("expected error for source without functions")
	}
}

func TestEmbeddedFunctionNames(t *testing.T) {
	lib := glsllib.Default()
	want := map[string]string{
		"stdlib/genglsl/mx_image_color3.glsl":        "mx_image_color3",
		"pbrlib/genglsl/mx_diffuse_bsdf.glsl":        "mx_diffuse_bsdf",
		"pbrlib/genglsl/mx_surface.glsl":             "mx_surface",
		"pbrlib/genglsl/ogsxml/mx_surface_maya.glsl": "mx_surface",
		"pbrlib/genglsl/mx_surface_unlit.glsl":       "mx_surface_unlit",
	}
	for p, fn := range want {
		src, err := lib.ReadInclude(p)
		if err != nil {
			t.Fatal(err)
		}
		got, err := glsllib.FunctionName(src)
		if err != nil {
			t.Errorf("%s: %v", p, err)
		} else if got != fn {
			t.Errorf("%s: want %q, got %q", p, fn, got)
		}
	}
}
