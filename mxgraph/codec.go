package mxgraph

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// encMode uses canonical encoding so that equal graphs encode to equal bytes.
var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("mxgraph: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// MarshalGraph serializes a Graph to canonical CBOR bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	return encMode.Marshal(g)
}

// UnmarshalGraph deserializes and validates a Graph from CBOR bytes.
func UnmarshalGraph(data []byte) (*Graph, error) {
	var g Graph
	if err := cbor.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("mxgraph: unmarshal graph: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("mxgraph: %w", err)
	}
	return &g, nil
}
