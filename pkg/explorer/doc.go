// Package explorer is the session controller for interactive dependency
// exploration. It sits between the user-facing surface (TUI or HTTP API)
// and the generator: user actions come in through a closed dispatch table,
// the controller decides which nodes to fetch and when, and every state
// change goes back out to the view as a full-graph commit.
//
// The controller owns the interaction invariants: node identity is
// name+version and never duplicated, hidden nodes are neither selectable
// nor fetchable, a single package's failure never aborts the rest of its
// wave, and clearing the session is atomic from any observer's point of
// view.
package explorer
