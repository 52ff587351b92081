package model

import (
	"encoding/json"
	"slices"
	"strings"
)

// Snapshot is the canonical serialization format for a graph.
// Used for API responses, snapshot storage, and cross-tool compatibility.
//
// The format is designed for round-trip fidelity: export → re-import
// produces an equivalent graph. Nodes and edges are sorted by ID for
// deterministic output.
type Snapshot struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Export converts a live graph to its serialization format. The element
// structs are copied while the graph's read lock is held, so an export
// taken during a resolution wave observes each element's fields whole.
func Export(g *Graph) Snapshot {
	var s Snapshot
	g.mu.RLock()
	for _, el := range g.children {
		switch v := el.(type) {
		case *Node:
			s.Nodes = append(s.Nodes, *v)
		case *Edge:
			s.Edges = append(s.Edges, *v)
		}
	}
	g.mu.RUnlock()
	slices.SortFunc(s.Nodes, func(a, b Node) int { return strings.Compare(a.ID, b.ID) })
	slices.SortFunc(s.Edges, func(a, b Edge) int { return strings.Compare(a.ID, b.ID) })
	return s
}

// Import rebuilds a live graph from a snapshot. Nodes are inserted before
// edges so edge endpoints always resolve. Duplicate IDs in the snapshot are
// dropped silently, keeping the first occurrence.
func Import(s Snapshot) *Graph {
	g := NewGraph()
	for i := range s.Nodes {
		n := s.Nodes[i]
		g.Add(&n)
	}
	for i := range s.Edges {
		e := s.Edges[i]
		g.Add(&e)
	}
	return g
}

// MarshalSnapshot converts a graph to indented JSON bytes.
func MarshalSnapshot(g *Graph) ([]byte, error) {
	return json.MarshalIndent(Export(g), "", "  ")
}

// UnmarshalSnapshot decodes JSON bytes to a live graph.
func UnmarshalSnapshot(data []byte) (*Graph, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return Import(s), nil
}
