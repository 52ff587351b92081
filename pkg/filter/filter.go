// Package filter recomputes element visibility from a text predicate.
//
// The filter is deterministic and synchronous: given the same filter text
// and graph topology, [TextFilter.Refresh] always produces the same hidden
// flags. It owns no state beyond the current filter text.
package filter

import (
	"strings"
	"sync"

	"github.com/depscope/depscope/pkg/model"
)

// TextFilter hides graph elements that do not match a substring predicate.
//
// Matching is case-insensitive against the node's name@version label. An
// empty filter shows everything. An edge is visible only while both of its
// endpoints are visible, so filtered subgraphs never contain dangling edges.
type TextFilter struct {
	mu   sync.Mutex
	text string
}

// New creates a TextFilter with an empty predicate.
func New() *TextFilter {
	return &TextFilter{}
}

// SetFilter replaces the current filter text.
func (f *TextFilter) SetFilter(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = strings.ToLower(strings.TrimSpace(text))
}

// Text returns the current filter text.
func (f *TextFilter) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

// Refresh recomputes the hidden flag of every element in the graph from the
// current filter text. Newly fetched elements start unclassified, so the
// controller calls Refresh after every resolution wave.
//
// Matching runs over an exported copy of the graph and the result is
// applied through [model.Graph.SetVisibility], so a concurrent resolution
// wave never observes a half-classified graph.
func (f *TextFilter) Refresh(g *model.Graph) {
	f.mu.Lock()
	text := f.text
	f.mu.Unlock()

	s := model.Export(g)
	hidden := make(map[string]bool, len(s.Nodes)+len(s.Edges))
	visible := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		match := text == "" || strings.Contains(strings.ToLower(n.Label()), text)
		hidden[n.ID] = !match
		visible[n.ID] = match
	}
	for _, e := range s.Edges {
		hidden[e.ID] = !visible[e.Source] || !visible[e.Target]
	}
	g.SetVisibility(hidden)
}
