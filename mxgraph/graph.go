// Package mxgraph defines the shading graph consumed by the fragment generator.
//
// A [Graph] is produced upstream of code generation and is never modified by
// the generator: it is a description of nodes, their typed inputs and the
// connections between them. Nodes are listed in evaluation order, so a node
// may only connect to outputs of nodes listed before it.
package mxgraph

import (
	"errors"
	"fmt"
)

// DefaultOutput is the output name used by nodes that do not declare outputs.
const DefaultOutput = "out"

// Graph is a shading network with a single output socket.
type Graph struct {
	// Name is the element name of the graph, used for diagnostics.
	Name string `cbor:"name"`
	// Inputs are the published interface inputs of the graph. Node inputs may
	// bind to them by name through [NodeInput.Interface].
	Inputs []InterfaceInput `cbor:"inputs,omitempty"`
	// Nodes lists the graph nodes in evaluation order.
	Nodes []Node `cbor:"nodes,omitempty"`
	// Output is the graph's single output socket.
	Output Output `cbor:"output"`
}

// InterfaceInput is a published graph input. It becomes a host bound uniform.
type InterfaceInput struct {
	Name  string `cbor:"name"`
	Type  Type   `cbor:"type"`
	Value *Value `cbor:"value,omitempty"`
}

// Node is an instance of a node definition.
type Node struct {
	Name string `cbor:"name"`
	// Def is the node definition identifier, i.e: "ND_add_float".
	Def string `cbor:"def"`
	// Type is the type of the node's default output.
	Type    Type         `cbor:"type"`
	Inputs  []NodeInput  `cbor:"inputs,omitempty"`
	Outputs []NodeOutput `cbor:"outputs,omitempty"`
}

// NodeInput is a node input. At most one of Node or Interface may be set. If
// neither is set the input takes its Value, or the zero value of its type.
type NodeInput struct {
	Name  string `cbor:"name"`
	Type  Type   `cbor:"type"`
	Value *Value `cbor:"value,omitempty"`
	// Node and Output name an upstream node output connected to this input.
	// An empty Output refers to the upstream node's default output.
	Node   string `cbor:"node,omitempty"`
	Output string `cbor:"output,omitempty"`
	// Interface binds the input to a graph interface input of the same name.
	Interface string `cbor:"interface,omitempty"`
}

// NodeOutput is a named node output.
type NodeOutput struct {
	Name string `cbor:"name"`
	Type Type   `cbor:"type"`
}

// Output is the graph output socket.
type Output struct {
	Name string `cbor:"name"`
	Type Type   `cbor:"type"`
	// Node and NodeOutput reference the node output connected to the socket.
	// If Node is empty the socket is unconnected and Value is used.
	Node       string `cbor:"node,omitempty"`
	NodeOutput string `cbor:"nodeoutput,omitempty"`
	// Channels is an optional swizzle applied to the connected output, i.e: "rgb" or "xxx".
	Channels string `cbor:"channels,omitempty"`
	Value    *Value `cbor:"value,omitempty"`
}

// Connected reports whether the output socket is connected to a node output.
func (o Output) Connected() bool { return o.Node != "" }

// Connected reports whether the input is connected to a node output or interface input.
func (in NodeInput) Connected() bool { return in.Node != "" || in.Interface != "" }

// NodeOutputs returns the outputs of the node. Nodes that declare no outputs
// have a single output named [DefaultOutput] of the node's type.
func (n *Node) NodeOutputs() []NodeOutput {
	if len(n.Outputs) == 0 {
		return []NodeOutput{{Name: DefaultOutput, Type: n.Type}}
	}
	return n.Outputs
}

// FindNode returns the node with the given name or nil if not found.
func (g *Graph) FindNode(name string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].Name == name {
			return &g.Nodes[i]
		}
	}
	return nil
}

// FindInterface returns the interface input with the given name or nil if not found.
func (g *Graph) FindInterface(name string) *InterfaceInput {
	for i := range g.Inputs {
		if g.Inputs[i].Name == name {
			return &g.Inputs[i]
		}
	}
	return nil
}

// Validate checks the graph for dangling connections, duplicate names and
// connections to nodes not yet evaluated.
func (g *Graph) Validate() error {
	if g == nil {
		return errors.New("nil graph")
	}
	seen := make(map[string]int, len(g.Nodes))
	for i := range g.Inputs {
		in := &g.Inputs[i]
		if in.Name == "" {
			return fmt.Errorf("graph %q: interface input %d has no name", g.Name, i)
		} else if in.Value != nil && in.Value.Type() != in.Type {
			return fmt.Errorf("graph %q: interface input %q of type %s has %s value", g.Name, in.Name, in.Type, in.Value.Type())
		}
	}
	for i := range g.Nodes {
		node := &g.Nodes[i]
		if node.Name == "" {
			return fmt.Errorf("graph %q: node %d has no name", g.Name, i)
		} else if _, dup := seen[node.Name]; dup {
			return fmt.Errorf("graph %q: duplicate node name %q", g.Name, node.Name)
		}
		for _, in := range node.Inputs {
			err := g.validateInput(seen, node, in)
			if err != nil {
				return err
			}
		}
		seen[node.Name] = i
	}
	if g.Output.Type == TypeNone {
		return fmt.Errorf("graph %q: output %q has no type", g.Name, g.Output.Name)
	}
	if !g.Output.Connected() {
		if g.Output.Value != nil && g.Output.Value.Type() != g.Output.Type {
			return fmt.Errorf("graph %q: output %q of type %s has %s value", g.Name, g.Output.Name, g.Output.Type, g.Output.Value.Type())
		}
		return nil
	}
	idx, ok := seen[g.Output.Node]
	if !ok {
		return fmt.Errorf("graph %q: output connected to unknown node %q", g.Name, g.Output.Node)
	}
	_, err := findOutput(&g.Nodes[idx], g.Output.NodeOutput)
	return err
}

func (g *Graph) validateInput(seen map[string]int, node *Node, in NodeInput) error {
	switch {
	case in.Node != "" && in.Interface != "":
		return fmt.Errorf("node %q input %q: connected to both node and interface", node.Name, in.Name)
	case in.Interface != "":
		iface := g.FindInterface(in.Interface)
		if iface == nil {
			return fmt.Errorf("node %q input %q: unknown interface input %q", node.Name, in.Name, in.Interface)
		} else if iface.Type != in.Type {
			return fmt.Errorf("node %q input %q: type %s does not match interface %s", node.Name, in.Name, in.Type, iface.Type)
		}
	case in.Node != "":
		idx, ok := seen[in.Node]
		if !ok {
			return fmt.Errorf("node %q input %q: upstream node %q not found or not evaluated before", node.Name, in.Name, in.Node)
		}
		out, err := findOutput(&g.Nodes[idx], in.Output)
		if err != nil {
			return fmt.Errorf("node %q input %q: %w", node.Name, in.Name, err)
		} else if out.Type != in.Type {
			return fmt.Errorf("node %q input %q: type %s does not match upstream %s", node.Name, in.Name, in.Type, out.Type)
		}
	case in.Value != nil && in.Value.Type() != in.Type:
		return fmt.Errorf("node %q input %q of type %s has %s value", node.Name, in.Name, in.Type, in.Value.Type())
	}
	return nil
}

// Output returns the node output with the given name. An empty name returns the default output.
func (n *Node) Output(name string) (NodeOutput, error) {
	return findOutput(n, name)
}

func findOutput(n *Node, name string) (NodeOutput, error) {
	outs := n.NodeOutputs()
	if name == "" {
		return outs[0], nil
	}
	for _, out := range outs {
		if out.Name == name {
			return out, nil
		}
	}
	return NodeOutput{}, fmt.Errorf("node %q has no output %q", n.Name, name)
}
