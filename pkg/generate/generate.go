// Package generate materializes dependency graph elements from package
// registries.
//
// The [Generator] owns the live [model.Graph] of an exploration session and
// is the only component that grows it: [Generator.GenerateNode] creates a
// node for a named package, and [Generator.ResolveNode] fetches a node's
// direct dependencies and merges them into the graph. Resolution is
// idempotent; resolving an already-resolved node is a no-op.
//
// The actual registry access is abstracted behind [Source]; adapters for the
// clients in pkg/integrations are created with [NewNPMSource],
// [NewPyPISource], and [NewCratesSource].
package generate

import (
	"context"
	"time"

	"github.com/depscope/depscope/pkg/cache"
	"github.com/depscope/depscope/pkg/errors"
	"github.com/depscope/depscope/pkg/integrations/crates"
	"github.com/depscope/depscope/pkg/integrations/npm"
	"github.com/depscope/depscope/pkg/integrations/pypi"
	"github.com/depscope/depscope/pkg/model"
	"github.com/depscope/depscope/pkg/observability"
)

// Package is the normalized registry metadata a Source returns.
type Package struct {
	Name         string
	Version      string
	Dependencies []string
	Repository   string
	Description  string
	License      string
}

// Source retrieves package metadata from a registry.
//
// Implementations wrap the HTTP clients in pkg/integrations and are
// responsible for caching, rate limiting, and error handling. Fetch must be
// safe for concurrent use by multiple goroutines.
type Source interface {
	// Fetch retrieves package information by name. If refresh is true,
	// cached responses are bypassed.
	Fetch(ctx context.Context, name string, refresh bool) (*Package, error)

	// Name returns the registry identifier (e.g., "npm", "pypi", "crates").
	Name() string
}

// Generator owns the live graph of an exploration session and grows it by
// fetching package metadata from a Source.
//
// All methods are safe for concurrent use; graph mutations go through the
// graph's own lock.
type Generator struct {
	graph   *model.Graph
	source  Source
	refresh bool
}

// New creates a Generator over an empty graph.
func New(source Source) *Generator {
	return &Generator{graph: model.NewGraph(), source: source}
}

// NewWithGraph creates a Generator over an existing graph, e.g. one restored
// from a snapshot.
func NewWithGraph(source Source, g *model.Graph) *Generator {
	return &Generator{graph: g, source: source}
}

// SetRefresh controls whether fetches bypass the registry response cache.
func (g *Generator) SetRefresh(refresh bool) { g.refresh = refresh }

// Graph returns the live graph. The controller and the rendering surface
// share this instance; it is never replaced, only mutated.
func (g *Generator) Graph() *model.Graph { return g.graph }

// GenerateNode materializes a node record for the given package.
//
// The node is added to the graph unless an element with the derived ID
// already exists, in which case the existing node is returned unchanged.
// Node identity is name+version, so re-creating a package never duplicates it.
func (g *Generator) GenerateNode(name, version string) *model.Node {
	n := model.NewNode(name, version)
	if !g.graph.Add(n) {
		if existing, ok := g.graph.Node(n.ID); ok {
			return existing
		}
	}
	return n
}

// ResolveNode fetches the node's direct dependencies and merges them into
// the graph as child nodes and edges. It returns the newly discovered child
// nodes; dependencies already present in the graph are linked with an edge
// but not returned, so callers can use the result as the next breadth-first
// frontier.
//
// Resolving an already-resolved node is a no-op and returns no children.
// On a fetch failure the node is left unresolved and the error is returned;
// the graph is not modified.
func (g *Generator) ResolveNode(ctx context.Context, n *model.Node) ([]*model.Node, error) {
	if g.graph.NodeResolved(n.ID) {
		return nil, nil
	}

	pkg, err := g.source.Fetch(ctx, n.Name, g.refresh)
	if err != nil {
		observability.Resolution().OnNodeResolved(ctx, n.ID, 0, err)
		return nil, errors.Wrap(errors.ErrCodePackageNotFound, err, "resolve %s", n.Name)
	}

	// A successful resolution clears any error from a previous attempt.
	// The field writes go through the graph lock; the controller's wave
	// goroutines and the HTTP export path touch the same node.
	g.graph.MarkResolved(n.ID, pkg.Version)

	var discovered []*model.Node
	for _, dep := range pkg.Dependencies {
		child := model.NewNode(dep, "")
		if g.graph.Add(child) {
			discovered = append(discovered, child)
		}
		g.graph.Add(model.NewEdge(n.ID, model.NodeID(dep, "")))
	}

	observability.Resolution().OnNodeResolved(ctx, n.ID, len(discovered), nil)
	return discovered, nil
}

// =============================================================================
// Registry Source Adapters
// =============================================================================

// Registries lists the supported registry names.
var Registries = []string{"npm", "pypi", "crates"}

// NewSource creates a Source for the named registry backed by the given
// cache. Returns ErrCodeInvalidRegistry for unknown names.
func NewSource(registry string, backend cache.Cache, ttl time.Duration) (Source, error) {
	switch registry {
	case "npm":
		return NewNPMSource(backend, ttl), nil
	case "pypi":
		return NewPyPISource(backend, ttl), nil
	case "crates":
		return NewCratesSource(backend, ttl), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidRegistry, "unknown registry %q", registry)
	}
}

type npmSource struct{ client *npm.Client }

// NewNPMSource creates a Source backed by the npm registry.
func NewNPMSource(backend cache.Cache, ttl time.Duration) Source {
	return &npmSource{client: npm.NewClient(backend, ttl)}
}

func (s *npmSource) Name() string { return "npm" }

func (s *npmSource) Fetch(ctx context.Context, name string, refresh bool) (*Package, error) {
	info, err := s.client.FetchPackage(ctx, name, refresh)
	if err != nil {
		return nil, err
	}
	return &Package{
		Name:         info.Name,
		Version:      info.Version,
		Dependencies: info.Dependencies,
		Repository:   info.Repository,
		Description:  info.Description,
		License:      info.License,
	}, nil
}

type pypiSource struct{ client *pypi.Client }

// NewPyPISource creates a Source backed by the Python Package Index.
func NewPyPISource(backend cache.Cache, ttl time.Duration) Source {
	return &pypiSource{client: pypi.NewClient(backend, ttl)}
}

func (s *pypiSource) Name() string { return "pypi" }

func (s *pypiSource) Fetch(ctx context.Context, name string, refresh bool) (*Package, error) {
	info, err := s.client.FetchPackage(ctx, name, refresh)
	if err != nil {
		return nil, err
	}
	return &Package{
		Name:         info.Name,
		Version:      info.Version,
		Dependencies: info.Dependencies,
		Description:  info.Summary,
		License:      info.License,
	}, nil
}

type cratesSource struct{ client *crates.Client }

// NewCratesSource creates a Source backed by crates.io.
func NewCratesSource(backend cache.Cache, ttl time.Duration) Source {
	return &cratesSource{client: crates.NewClient(backend, ttl)}
}

func (s *cratesSource) Name() string { return "crates" }

func (s *cratesSource) Fetch(ctx context.Context, name string, refresh bool) (*Package, error) {
	info, err := s.client.FetchCrate(ctx, name, refresh)
	if err != nil {
		return nil, err
	}
	return &Package{
		Name:         info.Name,
		Version:      info.Version,
		Dependencies: info.Dependencies,
		Repository:   info.Repository,
		Description:  info.Description,
		License:      info.License,
	}, nil
}
