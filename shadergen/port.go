package shadergen

import "github.com/soypat/ogsfrag/mxgraph"

// Port is a named, typed value slot of a shader: a node input or output, a
// uniform, a vertex data field or the graph output socket.
type Port struct {
	Name string
	Type mxgraph.Type
	// Variable is the identifier of the port in generated code. It may be an
	// abstract token such as "$positionWorld" resolved during token substitution.
	Variable string
	// Value is the optional literal default value of the port.
	Value *mxgraph.Value
}

// Input is a node input port which may be connected upstream to a node
// output or a graph interface port.
type Input struct {
	Port
	Connection *Port
}

// Connected reports whether the input reads from another port.
func (in *Input) Connected() bool { return in.Connection != nil }

// OutputSocket is the single output of a shader graph.
type OutputSocket struct {
	Port
	Connection *Port
	// Channels is an optional swizzle applied to the connected value.
	Channels string
}

// VariableBlock is an ordered, named group of ports declared together, such
// as the public uniforms or the vertex data of a stage. Order determines
// declaration and function argument order.
type VariableBlock struct {
	Name string
	// Instance is the name used to access block members in generated code,
	// if the block is declared as an aggregate.
	Instance string
	ports    []*Port
	index    map[string]int
}

// NewVariableBlock returns an empty block.
func NewVariableBlock(name, instance string) *VariableBlock {
	return &VariableBlock{
		Name:     name,
		Instance: instance,
		index:    make(map[string]int),
	}
}

// Add appends a port with the given name, type and value whose variable is
// its name. If a port with the same name exists it is returned unchanged.
func (vb *VariableBlock) Add(name string, t mxgraph.Type, value *mxgraph.Value) *Port {
	return vb.AddPort(&Port{Name: name, Type: t, Variable: name, Value: value})
}

// AddPort appends p to the block. If a port with the same name exists it is
// returned and p is not added.
func (vb *VariableBlock) AddPort(p *Port) *Port {
	if i, ok := vb.index[p.Name]; ok {
		return vb.ports[i]
	}
	vb.index[p.Name] = len(vb.ports)
	vb.ports = append(vb.ports, p)
	return p
}

// Find returns the port named name or nil if not found.
func (vb *VariableBlock) Find(name string) *Port {
	i, ok := vb.index[name]
	if !ok {
		return nil
	}
	return vb.ports[i]
}

func (vb *VariableBlock) Len() int       { return len(vb.ports) }
func (vb *VariableBlock) Empty() bool    { return len(vb.ports) == 0 }
func (vb *VariableBlock) At(i int) *Port { return vb.ports[i] }

// Ports returns the ports of the block in order. The slice must not be modified.
func (vb *VariableBlock) Ports() []*Port { return vb.ports }

// Contains reports whether the block has a port named name.
func (vb *VariableBlock) Contains(name string) bool {
	_, ok := vb.index[name]
	return ok
}
