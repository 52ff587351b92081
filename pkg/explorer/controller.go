package explorer

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/depscope/depscope/pkg/errors"
	"github.com/depscope/depscope/pkg/model"
	"github.com/depscope/depscope/pkg/observability"
)

// Generator materializes graph elements from a package registry.
//
// The pkg/generate implementation is the standard one; tests substitute
// their own. ResolveNode must be idempotent for already-resolved nodes and
// safe for concurrent use: the controller fans out one call per node in a
// resolution wave.
type Generator interface {
	// Graph returns the live graph shared by generator, controller, and view.
	Graph() *model.Graph

	// GenerateNode creates (or returns the existing) node for a package.
	GenerateNode(name, version string) *model.Node

	// ResolveNode fetches a node's direct dependencies, merges them into the
	// graph, and returns the newly discovered child nodes.
	ResolveNode(ctx context.Context, n *model.Node) ([]*model.Node, error)
}

// Filter recomputes element visibility from the session's filter text.
// Refresh is synchronous and deterministic.
type Filter interface {
	SetFilter(text string)
	Text() string
	Refresh(g *model.Graph)
}

// LayoutEngine computes and applies geometry for the graph's visible
// elements. It mutates node bounds in place and may fail without
// invalidating previously applied geometry.
type LayoutEngine interface {
	Layout(ctx context.Context, g *model.Graph) error
}

// Options configures optional controller collaborators.
type Options struct {
	// Layout is invoked during ApplyLayout. When nil, layout passes are
	// skipped and only explicitly supplied bounds are applied.
	Layout LayoutEngine

	// LoadIndicator is invoked with true at the start and false at the end
	// of every resolution batch. Optional.
	LoadIndicator func(active bool)

	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Controller orchestrates user actions over the live graph: it decides
// which nodes to fetch, merges results, re-runs filtering, commits the
// model to the view, and keeps selection and centering consistent while
// fetches are in flight.
//
// Failures are contained at the smallest unit that can continue: a single
// node's fetch failure is recorded on that node's Error field and never
// aborts its siblings, and a layout failure still commits the last-known
// geometry. Nothing in this type aborts the session.
//
// All exported methods are safe for concurrent use. The controller's own
// bookkeeping serializes on one mutex; fetch fan-out runs outside it, so a
// slow registry never blocks selection or filtering of the current graph.
type Controller struct {
	mu     sync.Mutex
	gen    Generator
	filter Filter
	view   View
	layout LayoutEngine
	loadFn func(bool)
	logger *log.Logger
}

// New creates a Controller over the given collaborators.
func New(gen Generator, filter Filter, view View, opts Options) *Controller {
	if view == nil {
		view = NopView{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		gen:    gen,
		filter: filter,
		view:   view,
		layout: opts.Layout,
		loadFn: opts.LoadIndicator,
		logger: logger,
	}
}

// Start commits the generator's current graph to the view.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Commit(c.gen.Graph())
}

// Clear removes every element from the graph, resets the filter text, and
// commits the now-empty model. The graph is emptied under one lock
// acquisition, so no other operation observes a half-cleared state.
//
// In-flight resolutions are not aborted; their late mutations target
// elements no longer in the index, which the graph treats as no-ops.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := c.gen.Graph()
	g.Clear()
	c.filter.SetFilter("")
	c.view.Commit(g)
}

// CreateNode materializes a node for the given package and selects it.
//
// When a node with the derived ID already exists the operation is a no-op:
// no commit, no selection. Node identity is name+version, so re-creating an
// existing package must not duplicate it.
func (c *Controller) CreateNode(name, version string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := c.gen.Graph()
	_, existed := g.Get(model.NodeID(name, version))
	n := c.gen.GenerateNode(name, version)
	if existed {
		return
	}
	c.view.Commit(g)
	c.view.Select([]string{n.ID})
}

// Select projects the requested IDs down to visible nodes and issues a
// single selection action for the surviving set. Hidden nodes, edges, and
// unknown IDs are dropped; an empty result dispatches nothing.
func (c *Controller) Select(ids []string) {
	targets := c.visibleNodes(ids)
	if len(targets) == 0 {
		return
	}
	c.view.Select(targets)
}

// Center projects the requested IDs like Select and fits the viewport
// around the surviving set. Centering on an empty set is a no-op.
func (c *Controller) Center(ids []string) {
	targets := c.visibleNodes(ids)
	if len(targets) == 0 {
		return
	}
	c.view.Center(targets, DefaultCenterOpts)
}

// SetFilter sets the session filter text, recomputes visibility over the
// whole graph, deselects everything, and commits. The viewport is then
// centered on the nodes visible under the new filter; the center target
// set is captured before the commit so it reflects exactly the filter
// result being displayed.
func (c *Controller) SetFilter(text string) {
	c.mu.Lock()
	g := c.gen.Graph()
	c.filter.SetFilter(text)
	c.filter.Refresh(g)
	c.view.SelectAll(false)
	visible := g.VisibleNodeIDs()
	c.view.Commit(g)
	c.mu.Unlock()

	if len(visible) > 0 {
		c.view.Center(visible, DefaultCenterOpts)
	}
}

// ResolveNodes expands the given nodes by fetching their direct
// dependencies concurrently.
//
// Hidden nodes are skipped entirely, neither fetched nor centered.
// Unknown IDs are ignored. If every surviving target is already resolved
// the call only centers on them: re-expanding resolved nodes is cheap and
// side-effect-free, with no generator calls and no load-indicator toggling.
//
// Otherwise the controller signals the load indicator, resolves all targets
// as one concurrent wave (per-node failures are recorded on the node's
// Error field and never abort siblings), re-runs the filter over the grown
// graph, commits, signals the indicator off, and centers on the original
// targets.
func (c *Controller) ResolveNodes(ctx context.Context, ids []string) {
	g := c.gen.Graph()

	c.mu.Lock()
	var targets []*model.Node
	targetIDs := make([]string, 0, len(ids))
	pending := false
	for _, id := range ids {
		n, ok := g.Node(id)
		if !ok || !g.NodeVisible(id) {
			continue
		}
		targets = append(targets, n)
		targetIDs = append(targetIDs, id)
		if !g.NodeResolved(id) {
			pending = true
		}
	}
	c.mu.Unlock()

	if !pending {
		c.Center(targetIDs)
		return
	}

	c.indicate(true)
	observability.Resolution().OnBatchStart(ctx, len(targets))
	start := time.Now()

	_, failed := c.resolveWave(ctx, targets)

	c.mu.Lock()
	c.filter.Refresh(g)
	c.view.Commit(g)
	c.mu.Unlock()

	c.indicate(false)
	observability.Resolution().OnBatchComplete(ctx, len(targets), failed, time.Since(start))
	c.Center(targetIDs)
}

// ResolveGraph expands the entire graph breadth-first: it resolves every
// currently-unresolved node as one wave, then repeats on the newly
// discovered frontier until no unresolved nodes remain.
//
// Waves are strictly sequential: wave N+1 does not start until every fetch
// of wave N has settled. A node whose fetch fails is recorded and excluded
// from later frontiers, so one broken package never stalls the expansion.
// After the final wave the whole graph is filtered, committed, and the
// viewport centered on all visible nodes.
func (c *Controller) ResolveGraph(ctx context.Context) {
	g := c.gen.Graph()

	c.indicate(true)
	observability.Resolution().OnBatchStart(ctx, g.Len())
	start := time.Now()

	frontier := g.UnresolvedNodes()

	total, failed, wave := 0, 0, 0
	for len(frontier) > 0 {
		wave++
		observability.Resolution().OnWave(ctx, wave, len(frontier))
		total += len(frontier)

		discovered, waveFailed := c.resolveWave(ctx, frontier)
		failed += waveFailed
		frontier = discovered
	}

	c.mu.Lock()
	c.filter.Refresh(g)
	visible := g.VisibleNodeIDs()
	c.view.Commit(g)
	c.mu.Unlock()

	c.indicate(false)
	observability.Resolution().OnBatchComplete(ctx, total, failed, time.Since(start))
	c.logger.Info("graph resolved", "nodes", total, "failed", failed, "waves", wave)

	if len(visible) > 0 {
		c.view.Center(visible, DefaultCenterOpts)
	}
}

// ElementBounds assigns computed geometry to one element.
type ElementBounds struct {
	ID     string       `json:"id"`
	Bounds model.Bounds `json:"bounds"`
}

// ElementAlignment assigns a computed text alignment to one element.
type ElementAlignment struct {
	ID    string      `json:"id"`
	Align model.Point `json:"align"`
}

// ApplyLayout applies externally computed bounds and alignments, runs a
// relayout pass over the graph, and commits.
//
// IDs that no longer resolve in the index are skipped silently; the
// elements may have been removed by a concurrent Clear. The commit happens
// on both layout success and failure (failure is logged, not retried), so
// the view always reflects the best currently available geometry.
func (c *Controller) ApplyLayout(ctx context.Context, bounds []ElementBounds, aligns []ElementAlignment) {
	g := c.gen.Graph()

	c.mu.Lock()
	for _, b := range bounds {
		g.SetNodeBounds(b.ID, b.Bounds)
	}
	for _, a := range aligns {
		g.SetNodeAlign(a.ID, a.Align)
	}
	c.mu.Unlock()

	if c.layout != nil {
		if err := c.layout.Layout(ctx, g); err != nil {
			c.logger.Error("layout failed", "err", err)
		}
	}

	c.mu.Lock()
	c.view.Commit(g)
	c.mu.Unlock()
}

// resolveWave fans out one ResolveNode call per node and waits for all of
// them to settle. Every failure is contained to its node: the error string
// lands on the node's Error field and the sibling results are still merged.
// Returns the union of newly discovered children and the failure count.
func (c *Controller) resolveWave(ctx context.Context, nodes []*model.Node) (discovered []*model.Node, failed int) {
	type outcome struct {
		children []*model.Node
		err      error
	}
	results := make([]outcome, len(nodes))

	var wg sync.WaitGroup
	for i, n := range nodes {
		wg.Add(1)
		go func(i int, n *model.Node) {
			defer wg.Done()
			children, err := c.gen.ResolveNode(ctx, n)
			results[i] = outcome{children: children, err: err}
		}(i, n)
	}
	wg.Wait()

	g := c.gen.Graph()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range nodes {
		if err := results[i].err; err != nil {
			g.SetNodeError(n.ID, errors.UserMessage(err))
			failed++
			c.logger.Warn("resolve failed", "node", n.ID, "err", err)
			continue
		}
		discovered = append(discovered, results[i].children...)
	}
	return discovered, failed
}

// visibleNodes filters IDs down to those resolving to a non-hidden node.
func (c *Controller) visibleNodes(ids []string) []string {
	g := c.gen.Graph()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if g.NodeVisible(id) {
			out = append(out, id)
		}
	}
	return out
}

func (c *Controller) indicate(active bool) {
	if c.loadFn != nil {
		c.loadFn(active)
	}
}
