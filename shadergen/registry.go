package shadergen

import (
	"sort"

	"github.com/soypat/ogsfrag/mxgraph"
)

// Implementation generates code for nodes of one node definition.
type Implementation interface {
	// Name identifies the implementation. Function definitions are emitted
	// once per implementation name.
	Name() string
	// CreateVariables adds the uniforms, vertex data and constants the node
	// needs to the shader's stages.
	CreateVariables(node *Node, ctx *Context, shader *Shader) error
	// EmitFunctionDefinition emits the function the node calls, if any.
	EmitFunctionDefinition(node *Node, ctx *Context, stage *Stage) error
	// EmitFunctionCall emits the code computing the node's outputs.
	EmitFunctionCall(node *Node, ctx *Context, stage *Stage) error
}

// Classifier is implemented by implementations that add classification
// flags to the ones derived from the node's output type, i.e: Unlit.
type Classifier interface {
	Classification() mxgraph.Classification
}

// Factory returns a new Implementation.
type Factory func() Implementation

// Registry maps node definition identifiers to implementation factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds def to factory, replacing any previous binding.
func (r *Registry) Register(def string, factory Factory) {
	if _, ok := r.factories[def]; ok {
		log.Debugf("replacing implementation of %s", def)
	}
	r.factories[def] = factory
}

// Lookup returns a new implementation for def.
func (r *Registry) Lookup(def string) (Implementation, bool) {
	f, ok := r.factories[def]
	if !ok {
		return nil, false
	}
	return f(), true
}

// Definitions returns the registered node definitions sorted.
func (r *Registry) Definitions() []string {
	defs := make([]string, 0, len(r.factories))
	for k := range r.factories {
		defs = append(defs, k)
	}
	sort.Strings(defs)
	return defs
}
