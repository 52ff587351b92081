// Package store persists named graph snapshots so an exploration session
// can be saved and restored later. Two backends are provided: an in-memory
// store for tests and single-process use, and a MongoDB store for the
// server.
package store

import (
	"context"
	"time"

	"github.com/depscope/depscope/pkg/model"
)

// Record is one saved snapshot with its identity and bookkeeping fields.
type Record struct {
	ID        string         `json:"id" bson:"_id"`
	Name      string         `json:"name" bson:"name"`
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt"`
	Snapshot  model.Snapshot `json:"snapshot" bson:"snapshot"`
}

// Store persists snapshot records. Load and Delete return an error with
// code SNAPSHOT_NOT_FOUND for unknown IDs.
type Store interface {
	Save(ctx context.Context, name string, snap model.Snapshot) (Record, error)
	Load(ctx context.Context, id string) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, id string) error
	Close(ctx context.Context) error
}
