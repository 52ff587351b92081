package explorer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/depscope/depscope/pkg/filter"
	"github.com/depscope/depscope/pkg/model"
	"github.com/depscope/depscope/pkg/observability"
)

// stubGen is a Generator over an in-memory graph with scripted dependency
// data. Fetches are counted and can be forced to fail per node ID.
type stubGen struct {
	graph *model.Graph

	mu      sync.Mutex
	fetches int
	deps    map[string][]string
	fail    map[string]error
	delay   time.Duration
}

func newStubGen() *stubGen {
	return &stubGen{
		graph: model.NewGraph(),
		deps:  make(map[string][]string),
		fail:  make(map[string]error),
	}
}

func (s *stubGen) Graph() *model.Graph { return s.graph }

func (s *stubGen) GenerateNode(name, version string) *model.Node {
	n := model.NewNode(name, version)
	if !s.graph.Add(n) {
		existing, _ := s.graph.Node(n.ID)
		return existing
	}
	return n
}

func (s *stubGen) ResolveNode(_ context.Context, n *model.Node) ([]*model.Node, error) {
	if s.graph.NodeResolved(n.ID) {
		return nil, nil
	}
	s.mu.Lock()
	s.fetches++
	delay := s.delay
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if err := s.fail[n.ID]; err != nil {
		return nil, err
	}

	var discovered []*model.Node
	for _, name := range s.deps[n.ID] {
		child := model.NewNode(name, "")
		if s.graph.Add(child) {
			discovered = append(discovered, child)
		}
		s.graph.Add(model.NewEdge(n.ID, child.ID))
	}
	s.graph.MarkResolved(n.ID, "")
	return discovered, nil
}

func (s *stubGen) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

// stubView records every dispatch the controller issues.
type stubView struct {
	mu         sync.Mutex
	commits    int
	selections [][]string
	deselects  int
	centers    [][]string
	centerOpts []CenterOpts
}

func (v *stubView) Commit(*model.Graph) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.commits++
}

func (v *stubView) Select(ids []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selections = append(v.selections, append([]string(nil), ids...))
}

func (v *stubView) SelectAll(selected bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !selected {
		v.deselects++
	}
}

func (v *stubView) Center(ids []string, opts CenterOpts) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.centers = append(v.centers, append([]string(nil), ids...))
	v.centerOpts = append(v.centerOpts, opts)
}

func newTestController(gen *stubGen, view *stubView, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return New(gen, filter.New(), view, opts)
}

func TestSelectProjectsToVisibleNodes(t *testing.T) {
	gen := newStubGen()
	view := &stubView{}
	c := newTestController(gen, view, Options{})

	visible := gen.GenerateNode("left", "")
	hidden := gen.GenerateNode("right", "")
	gen.graph.SetVisibility(map[string]bool{hidden.ID: true})
	gen.graph.Add(model.NewEdge(visible.ID, hidden.ID))

	c.Select([]string{visible.ID, hidden.ID, "left->right", "missing"})

	if len(view.selections) != 1 {
		t.Fatalf("selections = %d, want 1", len(view.selections))
	}
	got := view.selections[0]
	if len(got) != 1 || got[0] != visible.ID {
		t.Errorf("selected = %v, want [%s]", got, visible.ID)
	}
}

func TestSelectEmptyResultDispatchesNothing(t *testing.T) {
	gen := newStubGen()
	view := &stubView{}
	c := newTestController(gen, view, Options{})

	hidden := gen.GenerateNode("ghost", "")
	gen.graph.SetVisibility(map[string]bool{hidden.ID: true})

	c.Select([]string{hidden.ID, "missing"})
	c.Center([]string{hidden.ID})

	if len(view.selections) != 0 {
		t.Errorf("selections = %d, want 0", len(view.selections))
	}
	if len(view.centers) != 0 {
		t.Errorf("centers = %d, want 0", len(view.centers))
	}
}

func TestCenterUsesDefaultOpts(t *testing.T) {
	gen := newStubGen()
	view := &stubView{}
	c := newTestController(gen, view, Options{})

	n := gen.GenerateNode("react", "18.2.0")
	c.Center([]string{n.ID})

	if len(view.centers) != 1 {
		t.Fatalf("centers = %d, want 1", len(view.centers))
	}
	if view.centerOpts[0] != DefaultCenterOpts {
		t.Errorf("center opts = %+v, want %+v", view.centerOpts[0], DefaultCenterOpts)
	}
}

func TestCreateNodeIdentity(t *testing.T) {
	gen := newStubGen()
	view := &stubView{}
	c := newTestController(gen, view, Options{})

	c.CreateNode("lodash", "4.17.21")
	c.CreateNode("lodash", "4.17.21")

	if got := gen.graph.Len(); got != 1 {
		t.Errorf("graph len = %d, want 1", got)
	}
	if view.commits != 1 {
		t.Errorf("commits = %d, want 1", view.commits)
	}
	if len(view.selections) != 1 {
		t.Fatalf("selections = %d, want 1", len(view.selections))
	}
	want := model.NodeID("lodash", "4.17.21")
	if got := view.selections[0]; len(got) != 1 || got[0] != want {
		t.Errorf("selected = %v, want [%s]", got, want)
	}
}

func TestClearEmptiesGraphAndFilter(t *testing.T) {
	gen := newStubGen()
	view := &stubView{}
	c := newTestController(gen, view, Options{})

	gen.GenerateNode("react", "")
	gen.GenerateNode("vue", "")
	c.SetFilter("react")

	c.Clear()

	if got := gen.graph.Len(); got != 0 {
		t.Errorf("graph len after clear = %d, want 0", got)
	}
	if got := c.filter.Text(); got != "" {
		t.Errorf("filter text after clear = %q, want empty", got)
	}
	if view.commits == 0 {
		t.Error("clear did not commit")
	}
}

func TestSetFilterDeselectsAndCentersVisible(t *testing.T) {
	gen := newStubGen()
	view := &stubView{}
	c := newTestController(gen, view, Options{})

	express := gen.GenerateNode("express", "")
	vue := gen.GenerateNode("vue", "")

	c.SetFilter("express")

	if express.IsHidden() {
		t.Error("express hidden, want visible")
	}
	if !vue.IsHidden() {
		t.Error("vue visible, want hidden")
	}
	if view.deselects != 1 {
		t.Errorf("deselects = %d, want 1", view.deselects)
	}
	if len(view.centers) != 1 {
		t.Fatalf("centers = %d, want 1", len(view.centers))
	}
	if got := view.centers[0]; len(got) != 1 || got[0] != express.ID {
		t.Errorf("centered = %v, want [%s]", got, express.ID)
	}
}

func TestSetFilterNoVisibleNodesSkipsCenter(t *testing.T) {
	gen := newStubGen()
	view := &stubView{}
	c := newTestController(gen, view, Options{})

	gen.GenerateNode("express", "")
	c.SetFilter("nosuchpackage")

	if len(view.centers) != 0 {
		t.Errorf("centers = %d, want 0", len(view.centers))
	}
	if view.commits != 1 {
		t.Errorf("commits = %d, want 1", view.commits)
	}
}

func TestResolveNodesAllResolvedOnlyCenters(t *testing.T) {
	gen := newStubGen()
	view := &stubView{}
	var indicator []bool
	c := newTestController(gen, view, Options{
		LoadIndicator: func(active bool) { indicator = append(indicator, active) },
	})

	n := gen.GenerateNode("react", "")
	gen.graph.MarkResolved(n.ID, "")

	c.ResolveNodes(context.Background(), []string{n.ID})

	if got := gen.fetchCount(); got != 0 {
		t.Errorf("fetches = %d, want 0", got)
	}
	if len(indicator) != 0 {
		t.Errorf("indicator toggles = %v, want none", indicator)
	}
	if len(view.centers) != 1 {
		t.Fatalf("centers = %d, want 1", len(view.centers))
	}
	if got := view.centers[0]; len(got) != 1 || got[0] != n.ID {
		t.Errorf("centered = %v, want [%s]", got, n.ID)
	}
}

func TestResolveNodesFailureIsolation(t *testing.T) {
	gen := newStubGen()
	view := &stubView{}
	var mu sync.Mutex
	var indicator []bool
	c := newTestController(gen, view, Options{
		LoadIndicator: func(active bool) {
			mu.Lock()
			indicator = append(indicator, active)
			mu.Unlock()
		},
	})

	good := gen.GenerateNode("express", "")
	bad := gen.GenerateNode("leftpad", "")
	also := gen.GenerateNode("chalk", "")
	gen.deps[good.ID] = []string{"body-parser"}
	gen.deps[also.ID] = []string{"ansi-styles"}
	gen.fail[bad.ID] = fmt.Errorf("registry returned 500")

	c.ResolveNodes(context.Background(), []string{good.ID, bad.ID, also.ID})

	if !good.Resolved || !also.Resolved {
		t.Error("sibling nodes not resolved after one failure")
	}
	if bad.Resolved {
		t.Error("failed node marked resolved")
	}
	if bad.Error == "" {
		t.Error("failed node has no error recorded")
	}
	if _, ok := gen.graph.Get("body-parser"); !ok {
		t.Error("discovered child body-parser missing from graph")
	}
	if _, ok := gen.graph.Get("ansi-styles"); !ok {
		t.Error("discovered child ansi-styles missing from graph")
	}
	want := []bool{true, false}
	if len(indicator) != 2 || indicator[0] != want[0] || indicator[1] != want[1] {
		t.Errorf("indicator toggles = %v, want %v", indicator, want)
	}
	if view.commits == 0 {
		t.Error("batch did not commit")
	}
	if len(view.centers) != 1 || len(view.centers[0]) != 3 {
		t.Errorf("centers = %v, want one dispatch over all three targets", view.centers)
	}
}

func TestResolveNodesSkipsHiddenAndUnknown(t *testing.T) {
	gen := newStubGen()
	view := &stubView{}
	c := newTestController(gen, view, Options{})

	hidden := gen.GenerateNode("ghost", "")
	gen.graph.SetVisibility(map[string]bool{hidden.ID: true})

	c.ResolveNodes(context.Background(), []string{hidden.ID, "missing"})

	if got := gen.fetchCount(); got != 0 {
		t.Errorf("fetches = %d, want 0", got)
	}
	if len(view.centers) != 0 {
		t.Errorf("centers = %d, want 0", len(view.centers))
	}
}

// waveRecorder captures the breadth-first wave sequence of a full-graph run.
type waveRecorder struct {
	observability.NoopResolutionHooks
	mu        sync.Mutex
	frontiers []int
}

func (r *waveRecorder) OnWave(_ context.Context, _, frontierSize int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frontiers = append(r.frontiers, frontierSize)
}

func TestResolveGraphWavesMatchDepth(t *testing.T) {
	rec := &waveRecorder{}
	observability.SetResolutionHooks(rec)
	defer observability.Reset()

	gen := newStubGen()
	view := &stubView{}
	c := newTestController(gen, view, Options{})

	root := gen.GenerateNode("a", "")
	gen.deps[root.ID] = []string{"b"}
	gen.deps["b"] = []string{"c"}

	c.ResolveGraph(context.Background())

	if got := gen.fetchCount(); got != 3 {
		t.Errorf("fetches = %d, want 3", got)
	}
	// A leaf still costs a wave: c is discovered unresolved in wave 2 and
	// needs wave 3's fetch to confirm it has no dependencies.
	want := []int{1, 1, 1}
	if len(rec.frontiers) != len(want) {
		t.Fatalf("waves = %v, want %v", rec.frontiers, want)
	}
	for i := range want {
		if rec.frontiers[i] != want[i] {
			t.Errorf("wave %d frontier = %d, want %d", i+1, rec.frontiers[i], want[i])
		}
	}
	for _, id := range []string{"a", "b", "c"} {
		n, ok := gen.graph.Node(id)
		if !ok || !n.Resolved {
			t.Errorf("node %s not resolved after full run", id)
		}
	}
	if len(view.centers) != 1 {
		t.Errorf("centers = %d, want 1", len(view.centers))
	}
}

func TestResolveGraphFailedNodeExcludedFromFrontier(t *testing.T) {
	gen := newStubGen()
	view := &stubView{}
	c := newTestController(gen, view, Options{})

	root := gen.GenerateNode("broken", "")
	gen.deps[root.ID] = []string{"unreachable"}
	gen.fail[root.ID] = fmt.Errorf("package not found")

	c.ResolveGraph(context.Background())

	if got := gen.fetchCount(); got != 1 {
		t.Errorf("fetches = %d, want 1", got)
	}
	if root.Error == "" {
		t.Error("failed root has no error recorded")
	}
	if _, ok := gen.graph.Get("unreachable"); ok {
		t.Error("children of a failed node appeared in the graph")
	}
}

func TestResolveGraphEmptyGraphIsNoOp(t *testing.T) {
	gen := newStubGen()
	view := &stubView{}
	c := newTestController(gen, view, Options{})

	c.ResolveGraph(context.Background())

	if got := gen.fetchCount(); got != 0 {
		t.Errorf("fetches = %d, want 0", got)
	}
	if view.commits != 1 {
		t.Errorf("commits = %d, want 1", view.commits)
	}
}

// failLayout always errors; ApplyLayout must still commit.
type failLayout struct{ calls int }

func (f *failLayout) Layout(context.Context, *model.Graph) error {
	f.calls++
	return fmt.Errorf("dot render failed")
}

func TestApplyLayoutSkipsMissingAndCommitsOnFailure(t *testing.T) {
	gen := newStubGen()
	view := &stubView{}
	engine := &failLayout{}
	c := newTestController(gen, view, Options{Layout: engine})

	n := gen.GenerateNode("react", "")
	bounds := []ElementBounds{
		{ID: n.ID, Bounds: model.Bounds{X: 10, Y: 20, Width: 120, Height: 40}},
		{ID: "missing", Bounds: model.Bounds{X: 1, Y: 1, Width: 1, Height: 1}},
	}
	aligns := []ElementAlignment{
		{ID: n.ID, Align: model.Point{X: 0.5, Y: 0.5}},
	}

	c.ApplyLayout(context.Background(), bounds, aligns)

	if n.Bounds.Width != 120 {
		t.Errorf("bounds not applied: %+v", n.Bounds)
	}
	if n.Align.X != 0.5 {
		t.Errorf("align not applied: %+v", n.Align)
	}
	if engine.calls != 1 {
		t.Errorf("layout calls = %d, want 1", engine.calls)
	}
	if view.commits != 1 {
		t.Errorf("commits = %d, want 1", view.commits)
	}
}

func TestExportDuringResolveWave(t *testing.T) {
	gen := newStubGen()
	gen.delay = 5 * time.Millisecond
	view := &stubView{}
	c := newTestController(gen, view, Options{})

	var ids []string
	for i := 0; i < 4; i++ {
		n := gen.GenerateNode(fmt.Sprintf("pkg-%d", i), "")
		gen.deps[n.ID] = []string{fmt.Sprintf("dep-%d", i)}
		ids = append(ids, n.ID)
	}

	// Exports run concurrently with the wave's node mutations, the same
	// interleaving the HTTP surface produces when GET /graph races a
	// POST /actions resolve. Element copies must come out whole.
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.ResolveNodes(context.Background(), ids)
	}()
	for {
		select {
		case <-done:
			s := model.Export(gen.graph)
			if len(s.Nodes) != 8 {
				t.Errorf("final export has %d nodes, want 8", len(s.Nodes))
			}
			for _, n := range s.Nodes {
				if !n.Resolved && gen.deps[n.ID] != nil {
					t.Errorf("target %s not resolved after wave", n.ID)
				}
			}
			return
		default:
			model.Export(gen.graph)
		}
	}
}

func TestResolveNodesConcurrentWave(t *testing.T) {
	gen := newStubGen()
	gen.delay = 20 * time.Millisecond
	view := &stubView{}
	c := newTestController(gen, view, Options{})

	var ids []string
	for i := 0; i < 8; i++ {
		n := gen.GenerateNode(fmt.Sprintf("pkg-%d", i), "")
		ids = append(ids, n.ID)
	}

	start := time.Now()
	c.ResolveNodes(context.Background(), ids)
	elapsed := time.Since(start)

	// Sequential would take 8*20ms; the fan-out should finish well under that.
	if elapsed > 100*time.Millisecond {
		t.Errorf("wave took %v, expected concurrent fan-out", elapsed)
	}
	if got := gen.fetchCount(); got != 8 {
		t.Errorf("fetches = %d, want 8", got)
	}
}
