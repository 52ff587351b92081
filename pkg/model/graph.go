package model

import "sync"

// Graph is the live model of the exploration session: the ordered sequence
// of currently-known elements plus an id-indexed lookup over the same set.
//
// Children and the index move in lockstep: every element present in one has
// exactly one entry in the other. The embedded lock is the single-writer
// guard shared by the generator (which populates the graph during
// resolution) and the controller (which empties it on clear), and it also
// guards the mutable fields of the elements themselves. Resolution waves
// and the HTTP surface run on real threads, so a node's Resolved, Error,
// Version, Hidden, and geometry fields must only change through the
// mutators below; [Export] copies element state under the same lock.
// Read accessors return snapshot slices, never the internal state.
type Graph struct {
	mu       sync.RWMutex
	children []Element
	index    map[string]Element
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[string]Element)}
}

// Add inserts an element unless its ID is already present.
// Returns false on an ID collision; the existing element is left untouched.
func (g *Graph) Add(el Element) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.index[el.ElementID()]; ok {
		return false
	}
	g.index[el.ElementID()] = el
	g.children = append(g.children, el)
	return true
}

// Remove deletes the element with the given ID. Removing an absent ID is a
// no-op, not an error: a concurrent clear may already have taken it.
func (g *Graph) Remove(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.index[id]; !ok {
		return
	}
	delete(g.index, id)
	for i, el := range g.children {
		if el.ElementID() == id {
			g.children = append(g.children[:i], g.children[i+1:]...)
			break
		}
	}
}

// Get looks up an element by ID.
func (g *Graph) Get(id string) (Element, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	el, ok := g.index[id]
	return el, ok
}

// Node looks up a node by ID. Returns false for absent IDs and for IDs that
// resolve to an edge.
func (g *Graph) Node(id string) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.index[id].(*Node)
	return n, ok
}

// Elements returns a snapshot of all elements in insertion order.
func (g *Graph) Elements() []Element {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Element, len(g.children))
	copy(out, g.children)
	return out
}

// Nodes returns a snapshot of all node elements in insertion order.
func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []*Node
	for _, el := range g.children {
		if n, ok := el.(*Node); ok {
			out = append(out, n)
		}
	}
	return out
}

// Len returns the number of elements in the graph.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.children)
}

// Clear removes every element. Children and index are emptied under one
// lock acquisition, so no reader observes a half-cleared graph.
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.children = nil
	g.index = make(map[string]Element)
}

// MarkResolved records a successful resolution on the node with the given
// ID: the resolved flag is set, any error from a previous attempt is
// cleared, and an empty version is filled in from the fetched metadata.
// An absent ID is a no-op; the node may have been removed by a clear while
// its fetch was in flight.
func (g *Graph) MarkResolved(id, version string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.index[id].(*Node)
	if !ok {
		return
	}
	n.Resolved = true
	n.Error = ""
	if n.Version == "" {
		n.Version = version
	}
}

// SetNodeError records a resolution failure on the node with the given ID.
// An absent ID is a no-op.
func (g *Graph) SetNodeError(id, msg string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.index[id].(*Node); ok {
		n.Error = msg
	}
}

// NodeResolved reports whether the ID resolves to an already-resolved node.
func (g *Graph) NodeResolved(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.index[id].(*Node)
	return ok && n.Resolved
}

// NodeVisible reports whether the ID resolves to a node that is not hidden.
func (g *Graph) NodeVisible(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.index[id].(*Node)
	return ok && !n.Hidden
}

// UnresolvedNodes returns a snapshot of all nodes with Resolved unset, in
// insertion order.
func (g *Graph) UnresolvedNodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []*Node
	for _, el := range g.children {
		if n, ok := el.(*Node); ok && !n.Resolved {
			out = append(out, n)
		}
	}
	return out
}

// VisibleNodeIDs returns the IDs of all nodes not hidden by the current
// filter, in insertion order.
func (g *Graph) VisibleNodeIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []string
	for _, el := range g.children {
		if n, ok := el.(*Node); ok && !n.Hidden {
			out = append(out, n.ID)
		}
	}
	return out
}

// SetVisibility applies a full visibility classification in one lock
// acquisition: every element's hidden flag is set from the map, with
// absent IDs treated as visible. Only the graph filter should call this.
func (g *Graph) SetVisibility(hidden map[string]bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, el := range g.children {
		el.SetHidden(hidden[el.ElementID()])
	}
}

// SetNodeBounds stores layout geometry on the node with the given ID.
// An absent ID is a no-op.
func (g *Graph) SetNodeBounds(id string, b Bounds) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.index[id].(*Node); ok {
		n.Bounds = b
	}
}

// SetNodeAlign stores a text alignment offset on the node with the given
// ID. An absent ID is a no-op.
func (g *Graph) SetNodeAlign(id string, p Point) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.index[id].(*Node); ok {
		n.Align = p
	}
}
