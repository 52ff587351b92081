package model

import "fmt"

// Kind discriminates the closed set of element variants.
type Kind string

// Element kinds.
const (
	KindNode Kind = "node"
	KindEdge Kind = "edge"
)

// Element is a member of the dependency graph. The set of implementations
// is closed: [Node] and [Edge].
type Element interface {
	// ElementID returns the globally unique identifier.
	ElementID() string

	// ElementKind returns the variant discriminator.
	ElementKind() Kind

	// IsHidden reports whether the element is currently filtered out.
	IsHidden() bool

	// SetHidden marks the element visible or hidden. Visibility of live
	// elements changes through [Graph.SetVisibility], which calls this
	// under the graph's lock; callers holding no lock may only use it on
	// elements not yet added to a graph.
	SetHidden(hidden bool)
}

// Bounds is the on-screen geometry of a node, assigned by the layout engine.
type Bounds struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Point is a text alignment offset within a node's bounds.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Node represents one package in the dependency graph.
//
// A node's identity is derived from its name and version via [NodeID], so
// the same package can never appear twice in a graph. Resolution state is
// monotonic: once Resolved is true it is never reset.
type Node struct {
	ID       string `json:"id" bson:"id"`
	Name     string `json:"name" bson:"name"`
	Version  string `json:"version,omitempty" bson:"version,omitempty"`
	Resolved bool   `json:"resolved" bson:"resolved"`
	Error    string `json:"error,omitempty" bson:"error,omitempty"`
	Hidden   bool   `json:"hidden,omitempty" bson:"hidden,omitempty"`
	Bounds   Bounds `json:"bounds,omitempty" bson:"bounds,omitempty"`
	Align    Point  `json:"align,omitempty" bson:"align,omitempty"`
}

// NewNode creates an unresolved node for the given package.
func NewNode(name, version string) *Node {
	return &Node{ID: NodeID(name, version), Name: name, Version: version}
}

// NodeID derives the canonical element ID for a package name and version.
func NodeID(name, version string) string {
	if version == "" {
		return name
	}
	return name + "@" + version
}

// Label returns the human-readable name@version form of the node.
func (n *Node) Label() string {
	return NodeID(n.Name, n.Version)
}

func (n *Node) ElementID() string     { return n.ID }
func (n *Node) ElementKind() Kind     { return KindNode }
func (n *Node) IsHidden() bool        { return n.Hidden }
func (n *Node) SetHidden(hidden bool) { n.Hidden = hidden }

// Edge represents a dependency relation between two nodes. Edges carry no
// resolution state of their own.
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
	Hidden bool   `json:"hidden,omitempty" bson:"hidden,omitempty"`
}

// NewEdge creates an edge from source to target node ID.
func NewEdge(source, target string) *Edge {
	return &Edge{ID: EdgeID(source, target), Source: source, Target: target}
}

// EdgeID derives the canonical element ID for a dependency relation.
func EdgeID(source, target string) string {
	return fmt.Sprintf("%s->%s", source, target)
}

func (e *Edge) ElementID() string     { return e.ID }
func (e *Edge) ElementKind() Kind     { return KindEdge }
func (e *Edge) IsHidden() bool        { return e.Hidden }
func (e *Edge) SetHidden(hidden bool) { e.Hidden = hidden }
