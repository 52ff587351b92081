package filter

import (
	"testing"

	"github.com/depscope/depscope/pkg/model"
)

func buildGraph() *model.Graph {
	g := model.NewGraph()
	g.Add(model.NewNode("express", "4.18.2"))
	g.Add(model.NewNode("chalk", "5.0.0"))
	g.Add(model.NewNode("left-pad", "1.3.0"))
	g.Add(model.NewEdge("express@4.18.2", "chalk@5.0.0"))
	g.Add(model.NewEdge("chalk@5.0.0", "left-pad@1.3.0"))
	return g
}

func hidden(t *testing.T, g *model.Graph, id string) bool {
	t.Helper()
	el, ok := g.Get(id)
	if !ok {
		t.Fatalf("element %s not found", id)
	}
	return el.IsHidden()
}

func TestEmptyFilterShowsEverything(t *testing.T) {
	g := buildGraph()
	f := New()
	f.Refresh(g)

	for _, el := range g.Elements() {
		if el.IsHidden() {
			t.Errorf("element %s hidden under empty filter", el.ElementID())
		}
	}
}

func TestSubstringMatch(t *testing.T) {
	g := buildGraph()
	f := New()
	f.SetFilter("chal")
	f.Refresh(g)

	if hidden(t, g, "chalk@5.0.0") {
		t.Error("matching node hidden")
	}
	if !hidden(t, g, "express@4.18.2") {
		t.Error("non-matching node visible")
	}
	if !hidden(t, g, "left-pad@1.3.0") {
		t.Error("non-matching node visible")
	}
}

func TestMatchIsCaseInsensitive(t *testing.T) {
	g := buildGraph()
	f := New()
	f.SetFilter("  EXPRESS ")
	f.Refresh(g)

	if hidden(t, g, "express@4.18.2") {
		t.Error("case-insensitive match failed")
	}
}

func TestVersionIsMatchable(t *testing.T) {
	g := buildGraph()
	f := New()
	f.SetFilter("@5.0.0")
	f.Refresh(g)

	if hidden(t, g, "chalk@5.0.0") {
		t.Error("version substring did not match")
	}
	if !hidden(t, g, "express@4.18.2") {
		t.Error("non-matching node visible")
	}
}

func TestEdgesFollowEndpoints(t *testing.T) {
	g := buildGraph()
	f := New()

	// Only one endpoint visible: edge hidden.
	f.SetFilter("chalk")
	f.Refresh(g)
	if !hidden(t, g, "express@4.18.2->chalk@5.0.0") {
		t.Error("edge visible with hidden endpoint")
	}

	// Both endpoints visible again: edge shown.
	f.SetFilter("")
	f.Refresh(g)
	if hidden(t, g, "express@4.18.2->chalk@5.0.0") {
		t.Error("edge hidden with both endpoints visible")
	}
}

func TestRefreshIsDeterministic(t *testing.T) {
	g := buildGraph()
	f := New()
	f.SetFilter("pad")

	f.Refresh(g)
	first := make(map[string]bool)
	for _, el := range g.Elements() {
		first[el.ElementID()] = el.IsHidden()
	}

	f.Refresh(g)
	for _, el := range g.Elements() {
		if first[el.ElementID()] != el.IsHidden() {
			t.Errorf("element %s changed visibility on identical refresh", el.ElementID())
		}
	}
}
