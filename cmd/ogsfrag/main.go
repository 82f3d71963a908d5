// Command ogsfrag generates an OGS GLSL fragment from a CBOR encoded shading
// graph. It writes the fragment source to <name>.glsl and its uniform
// declarations to <name>_uniforms.glsl.
//
//	ogsfrag -graph shader.cbor -options options.toml -name MyShader -out build/
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/soypat/ogsfrag"
	"github.com/soypat/ogsfrag/fragcache"
	"github.com/soypat/ogsfrag/mxgraph"
	"github.com/soypat/ogsfrag/shadergen"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("ogsfrag.cmd")

type flags struct {
	graph        string
	options      string
	name         string
	out          string
	cache        string
	legacyLights bool
	fisSamples   int
	verbosity    int
}

func main() {
	var f flags
	flag.StringVar(&f.graph, "graph", "", "CBOR encoded shading graph file (required)")
	flag.StringVar(&f.options, "options", "", "TOML generation options file")
	flag.StringVar(&f.name, "name", "", "fragment name. Defaults to the graph file name")
	flag.StringVar(&f.out, "out", ".", "output directory")
	flag.StringVar(&f.cache, "cache", "", "SQLite fragment cache database. Empty disables caching")
	flag.BoolVar(&f.legacyLights, "legacy-lights", false, "generate for the legacy host light API")
	flag.IntVar(&f.fisSamples, "fis-samples", 0, "specular environment samples of the FIS method. 0 uses the default")
	flag.IntVar(&f.verbosity, "v", 0, "log verbosity: -4 silences logging, 2 logs debug messages")
	flag.Parse()
	commonlog.Configure(f.verbosity, nil)
	if err := run(f); err != nil {
		fmt.Fprintln(os.Stderr, "ogsfrag:", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	if f.graph == "" {
		return errors.New("missing -graph flag")
	}
	graphData, err := os.ReadFile(f.graph)
	if err != nil {
		return err
	}
	graph, err := mxgraph.UnmarshalGraph(graphData)
	if err != nil {
		return err
	}
	opts := shadergen.DefaultOptions()
	if f.options != "" {
		opts, err = shadergen.LoadOptionsFile(f.options)
		if err != nil {
			return err
		}
	}
	name := f.name
	if name == "" {
		base := filepath.Base(f.graph)
		name = base[:len(base)-len(filepath.Ext(base))]
	}
	api := ogsfrag.LightAPIV2
	if f.legacyLights {
		api = ogsfrag.LightAPILegacy
	}

	var (
		cache *fragcache.Cache
		key   string
	)
	if f.cache != "" {
		cache, err = fragcache.Open(f.cache)
		if err != nil {
			return err
		}
		defer cache.Close()
		key, err = fragcache.Key(name, graphData, opts, api, f.fisSamples)
		if err != nil {
			return err
		}
		frag, err := cache.Get(key)
		switch {
		case err == nil:
			return writeFragment(f.out, frag)
		case !errors.Is(err, fragcache.ErrNotFound):
			log.Errorf("reading cache: %v", err)
		}
	}

	gen := ogsfrag.NewGenerator(api)
	ctx := gen.NewContext(opts)
	if f.fisSamples > 0 {
		ctx.SetUserData(shadergen.UserDataSpecularEnvironmentSamples, shadergen.SpecularEnvironmentSamples{Samples: f.fisSamples})
	}
	shader, err := gen.Generate(name, graph, ctx)
	if err != nil {
		return err
	}
	frag, err := gen.NewFragment(shader, ctx)
	if err != nil {
		return err
	}
	if cache != nil {
		err = cache.Put(key, frag)
		if err != nil {
			log.Errorf("writing cache: %v", err)
		}
	}
	return writeFragment(f.out, frag)
}

func writeFragment(dir string, frag *ogsfrag.Fragment) error {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return err
	}
	pixelPath := filepath.Join(dir, frag.Name+".glsl")
	err = os.WriteFile(pixelPath, []byte(frag.Pixel), 0o644)
	if err != nil {
		return err
	}
	uniformsPath := filepath.Join(dir, frag.Name+"_uniforms.glsl")
	err = os.WriteFile(uniformsPath, []byte(frag.Uniforms), 0o644)
	if err != nil {
		return err
	}
	log.Infof("wrote %s (%s) and %s: %d parameters", pixelPath, frag.FunctionName, uniformsPath, len(frag.Parameters))
	return nil
}
