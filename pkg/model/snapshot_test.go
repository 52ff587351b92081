package model

import "testing"

func buildGraph() *Graph {
	g := NewGraph()
	root := NewNode("app", "1.0.0")
	root.Resolved = true
	g.Add(root)
	dep := NewNode("left-pad", "1.3.0")
	dep.Error = "fetch failed"
	g.Add(dep)
	g.Add(NewEdge(root.ID, dep.ID))
	return g
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := buildGraph()

	data, err := MarshalSnapshot(g)
	if err != nil {
		t.Fatalf("MarshalSnapshot() error: %v", err)
	}
	back, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot() error: %v", err)
	}

	if back.Len() != g.Len() {
		t.Fatalf("Len() = %d, want %d", back.Len(), g.Len())
	}
	n, ok := back.Node("app@1.0.0")
	if !ok {
		t.Fatal("root node missing after round trip")
	}
	if !n.Resolved {
		t.Error("Resolved flag lost in round trip")
	}
	dep, _ := back.Node("left-pad@1.3.0")
	if dep == nil || dep.Error != "fetch failed" {
		t.Error("Error field lost in round trip")
	}
	if _, ok := back.Get("app@1.0.0->left-pad@1.3.0"); !ok {
		t.Error("edge missing after round trip")
	}
}

func TestExportDeterministic(t *testing.T) {
	s := Export(buildGraph())
	if len(s.Nodes) != 2 || len(s.Edges) != 1 {
		t.Fatalf("Export() = %d nodes %d edges, want 2/1", len(s.Nodes), len(s.Edges))
	}
	if s.Nodes[0].ID > s.Nodes[1].ID {
		t.Errorf("nodes not sorted: %q before %q", s.Nodes[0].ID, s.Nodes[1].ID)
	}
}

func TestImportDropsDuplicates(t *testing.T) {
	s := Snapshot{
		Nodes: []Node{
			{ID: "a", Name: "a"},
			{ID: "a", Name: "a"},
		},
	}
	g := Import(s)
	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1", g.Len())
	}
}
