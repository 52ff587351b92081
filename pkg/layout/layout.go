// Package layout computes on-screen geometry for the visible subgraph.
//
// The graph is serialized to Graphviz DOT, rendered through the in-process
// Graphviz engine, and node positions are read back from the SVG output.
// Only visible elements participate: hidden nodes take no space and edges
// with a hidden endpoint do not constrain the placement of the rest.
package layout

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/depscope/depscope/pkg/errors"
	"github.com/depscope/depscope/pkg/model"
)

// Options configures the layout pass.
type Options struct {
	// Engine selects the Graphviz layout algorithm (dot, neato, fdp, ...).
	// Defaults to dot, which ranks dependencies top to bottom.
	Engine string
}

// Engine renders the visible subgraph through Graphviz and writes the
// resulting geometry back onto the graph's nodes.
type Engine struct {
	opts Options
}

// New creates a layout engine.
func New(opts Options) *Engine {
	if opts.Engine == "" {
		opts.Engine = "dot"
	}
	return &Engine{opts: opts}
}

// Layout computes positions for every visible node and stores them in the
// node's Bounds. Hidden nodes keep their previous geometry. A graph with no
// visible nodes is a no-op.
func (e *Engine) Layout(ctx context.Context, g *model.Graph) error {
	dot := BuildDOT(g, e.opts.Engine)
	if dot == "" {
		return nil
	}

	svg, err := renderSVG(ctx, dot)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "render %s layout", e.opts.Engine)
	}

	positions := ParseSVGPositions(svg)
	for id, b := range positions {
		g.SetNodeBounds(id, b)
	}
	return nil
}

// BuildDOT serializes the visible subgraph to Graphviz DOT. An edge is
// emitted only when both endpoints are visible. Returns the empty string
// when no node is visible.
//
// Serialization runs over an exported copy of the graph, so a resolution
// wave growing the graph mid-layout cannot tear the DOT output.
func BuildDOT(g *model.Graph, engine string) string {
	s := model.Export(g)

	var nodes []model.Node
	visible := make(map[string]bool)
	for _, n := range s.Nodes {
		if n.Hidden {
			continue
		}
		nodes = append(nodes, n)
		visible[n.ID] = true
	}
	if len(nodes) == 0 {
		return ""
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", engine)
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.ID, n.Label())
	}

	buf.WriteString("\n")
	for _, e := range s.Edges {
		if e.Hidden || !visible[e.Source] || !visible[e.Target] {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func renderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	nodeGroupRe = regexp.MustCompile(`(?s)<g [^>]*class="node"[^>]*>(.*?)</g>`)
	titleRe     = regexp.MustCompile(`<title>([^<]*)</title>`)
	pointsRe    = regexp.MustCompile(`points="([^"]+)"`)

	titleUnescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#45;", "-", "&amp;", "&")
)

// ParseSVGPositions extracts per-node bounding boxes from Graphviz SVG
// output. Each node group carries a <title> with the node ID and a polygon
// whose points span the node's box.
func ParseSVGPositions(svg []byte) map[string]model.Bounds {
	out := make(map[string]model.Bounds)
	for _, group := range nodeGroupRe.FindAllSubmatch(svg, -1) {
		title := titleRe.FindSubmatch(group[1])
		points := pointsRe.FindSubmatch(group[1])
		if title == nil || points == nil {
			continue
		}
		id := titleUnescaper.Replace(string(title[1]))
		b, ok := boundsFromPoints(string(points[1]))
		if !ok {
			continue
		}
		out[id] = b
	}
	return out
}

func boundsFromPoints(points string) (model.Bounds, bool) {
	var minX, minY, maxX, maxY float64
	first := true
	for _, pair := range strings.Fields(points) {
		xy := strings.SplitN(pair, ",", 2)
		if len(xy) != 2 {
			continue
		}
		x, errX := strconv.ParseFloat(xy[0], 64)
		y, errY := strconv.ParseFloat(xy[1], 64)
		if errX != nil || errY != nil {
			continue
		}
		if first {
			minX, maxX, minY, maxY = x, x, y, y
			first = false
			continue
		}
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	if first {
		return model.Bounds{}, false
	}
	return model.Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}
