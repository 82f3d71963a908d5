package shadergen

import (
	"github.com/soypat/ogsfrag/glbuild"
	"github.com/soypat/ogsfrag/mxgraph"
)

// Node is the generator's copy of a graph node bound to its implementation.
type Node struct {
	Name string
	// Def is the node definition identifier, i.e: "ND_image_color3".
	Def     string
	Inputs  []*Input
	Outputs []*Port
	Class   mxgraph.Classification
	Impl    Implementation
}

// Input returns the input named name or nil if the node has no such input.
func (n *Node) Input(name string) *Input {
	for _, in := range n.Inputs {
		if in.Name == name {
			return in
		}
	}
	return nil
}

// Output returns the output named name or nil if not found.
func (n *Node) Output(name string) *Port {
	for _, out := range n.Outputs {
		if out.Name == name {
			return out
		}
	}
	return nil
}

// HasClassification reports whether the node has all flags of c.
func (n *Node) HasClassification(c mxgraph.Classification) bool { return n.Class.Has(c) }

// Graph is the generator owned copy of an [mxgraph.Graph] carrying
// generated variable names. Nodes are in evaluation order.
type Graph struct {
	Name        string
	Inputs      []*Port
	Nodes       []*Node
	Socket      *OutputSocket
	Class       mxgraph.Classification
	Identifiers glbuild.IdentifierMap
}

// HasClassification reports whether the graph has all flags of c.
func (g *Graph) HasClassification(c mxgraph.Classification) bool { return g.Class.Has(c) }

// Node returns the node named name or nil if not found.
func (g *Graph) Node(name string) *Node {
	for _, n := range g.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// Shader is the result of code generation: a graph and its named stages.
type Shader struct {
	name   string
	graph  *Graph
	stages []*Stage
}

// NewShader returns a shader with no stages.
func NewShader(name string, g *Graph) *Shader {
	return &Shader{name: name, graph: g}
}

func (s *Shader) Name() string     { return s.name }
func (s *Shader) Graph() *Graph    { return s.graph }
func (s *Shader) Stages() []*Stage { return s.stages }

// Stage returns the stage named name or nil if not found.
func (s *Shader) Stage(name string) *Stage {
	for _, st := range s.stages {
		if st.name == name {
			return st
		}
	}
	return nil
}

// CreateStage adds a stage named name and returns it. If the stage exists it is returned.
func (s *Shader) CreateStage(name string) *Stage {
	if st := s.Stage(name); st != nil {
		return st
	}
	st := NewStage(name)
	s.stages = append(s.stages, st)
	return st
}

// SourceCode returns the code of the stage named name, or the empty string if not found.
func (s *Shader) SourceCode(stage string) string {
	st := s.Stage(stage)
	if st == nil {
		return ""
	}
	return st.Code()
}
