package explorer

import (
	"context"

	"github.com/depscope/depscope/pkg/errors"
)

// ActionKind names one controller operation reachable over the wire.
type ActionKind string

const (
	ActionSelect     ActionKind = "select"
	ActionCenter     ActionKind = "center"
	ActionFilter     ActionKind = "filter"
	ActionCreate     ActionKind = "create"
	ActionResolve    ActionKind = "resolve"
	ActionResolveAll ActionKind = "resolveAll"
	ActionClear      ActionKind = "clear"
)

// Action is a single user request against the controller. Which fields are
// meaningful depends on the kind: select/center/resolve use IDs, filter
// uses Text, create uses Name and Version, resolveAll and clear take no
// arguments.
type Action struct {
	Kind    ActionKind `json:"kind"`
	IDs     []string   `json:"ids,omitempty"`
	Text    string     `json:"text,omitempty"`
	Name    string     `json:"name,omitempty"`
	Version string     `json:"version,omitempty"`
}

// handlers is the closed set of dispatchable actions. Adding an operation
// means adding an entry here; nothing is dispatched by reflection or name
// lookup beyond this table.
var handlers = map[ActionKind]func(ctx context.Context, c *Controller, a Action){
	ActionSelect: func(_ context.Context, c *Controller, a Action) {
		c.Select(a.IDs)
	},
	ActionCenter: func(_ context.Context, c *Controller, a Action) {
		c.Center(a.IDs)
	},
	ActionFilter: func(_ context.Context, c *Controller, a Action) {
		c.SetFilter(a.Text)
	},
	ActionCreate: func(_ context.Context, c *Controller, a Action) {
		c.CreateNode(a.Name, a.Version)
	},
	ActionResolve: func(ctx context.Context, c *Controller, a Action) {
		c.ResolveNodes(ctx, a.IDs)
	},
	ActionResolveAll: func(ctx context.Context, c *Controller, _ Action) {
		c.ResolveGraph(ctx)
	},
	ActionClear: func(_ context.Context, c *Controller, _ Action) {
		c.Clear()
	},
}

// Dispatch routes an action to its controller operation. Unknown kinds are
// rejected rather than silently ignored.
func (c *Controller) Dispatch(ctx context.Context, a Action) error {
	h, ok := handlers[a.Kind]
	if !ok {
		return errors.New(errors.ErrCodeInvalidAction, "unknown action kind: %s", a.Kind)
	}
	h(ctx, c, a)
	return nil
}
