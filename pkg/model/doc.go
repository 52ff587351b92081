// Package model defines the live graph model for exploration sessions.
//
// The central type is [Graph]: the ordered sequence of currently-known
// elements plus an id-indexed lookup over the same set, guarded by a single
// lock. The generator populates it as packages resolve, the controller
// empties it on clear, and both invariantly keep the element list and the
// index in lockstep.
//
// # Core Types
//
//   - [Graph]: the live, lock-guarded model/index pair
//   - [Node]: one package, with resolution and error state
//   - [Edge]: a dependency relation between two nodes
//   - [Snapshot]: the serialization format (JSON and BSON)
//
// # Identity
//
// Element IDs are derived, not assigned: [NodeID] maps name+version to
// "name@version" and [EdgeID] maps a relation to "source->target". Deriving
// IDs makes insertion idempotent: re-creating an existing package is
// detected as an ID collision and leaves the graph unchanged.
//
// # Serialization
//
// Snapshots use a simple node-link format:
//
//	{
//	  "nodes": [{"id": "left-pad@1.3.0", "name": "left-pad", "version": "1.3.0", "resolved": true}],
//	  "edges": [{"id": "app->left-pad@1.3.0", "source": "app", "target": "left-pad@1.3.0"}]
//	}
//
// Use [Export]/[Import] for live-graph conversion and [MarshalSnapshot]/
// [UnmarshalSnapshot] for bytes.
package model
