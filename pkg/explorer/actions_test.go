package explorer

import (
	"context"
	"testing"

	"github.com/depscope/depscope/pkg/errors"
	"github.com/depscope/depscope/pkg/model"
)

func TestDispatchUnknownKind(t *testing.T) {
	gen := newStubGen()
	c := newTestController(gen, &stubView{}, Options{})

	err := c.Dispatch(context.Background(), Action{Kind: "explode"})
	if err == nil {
		t.Fatal("expected error for unknown action kind")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeInvalidAction {
		t.Errorf("error code = %s, want %s", got, errors.ErrCodeInvalidAction)
	}
}

func TestDispatchCreate(t *testing.T) {
	gen := newStubGen()
	view := &stubView{}
	c := newTestController(gen, view, Options{})

	err := c.Dispatch(context.Background(), Action{Kind: ActionCreate, Name: "react", Version: "18.2.0"})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if _, ok := gen.graph.Get(model.NodeID("react", "18.2.0")); !ok {
		t.Error("create action did not add the node")
	}
	if len(view.selections) != 1 {
		t.Errorf("selections = %d, want 1", len(view.selections))
	}
}

func TestDispatchFilterAndClear(t *testing.T) {
	gen := newStubGen()
	c := newTestController(gen, &stubView{}, Options{})
	gen.GenerateNode("express", "")

	if err := c.Dispatch(context.Background(), Action{Kind: ActionFilter, Text: "Express"}); err != nil {
		t.Fatalf("filter dispatch failed: %v", err)
	}
	if got := c.filter.Text(); got != "express" {
		t.Errorf("filter text = %q, want %q", got, "express")
	}

	if err := c.Dispatch(context.Background(), Action{Kind: ActionClear}); err != nil {
		t.Fatalf("clear dispatch failed: %v", err)
	}
	if got := gen.graph.Len(); got != 0 {
		t.Errorf("graph len = %d, want 0", got)
	}
}

func TestDispatchResolve(t *testing.T) {
	gen := newStubGen()
	c := newTestController(gen, &stubView{}, Options{})

	root := gen.GenerateNode("chalk", "")
	gen.deps[root.ID] = []string{"ansi-styles"}

	if err := c.Dispatch(context.Background(), Action{Kind: ActionResolve, IDs: []string{root.ID}}); err != nil {
		t.Fatalf("resolve dispatch failed: %v", err)
	}
	if !root.Resolved {
		t.Error("resolve action did not resolve the target")
	}
	if _, ok := gen.graph.Get("ansi-styles"); !ok {
		t.Error("resolve action did not merge discovered children")
	}
}
