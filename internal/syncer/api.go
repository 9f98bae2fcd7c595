package syncer

import (
	"context"
	"encoding/json"

	"github.com/virtualxperience/n8nsync/internal/record"
)

// API is the remote surface the sync engines depend on. The n8n client
// implements it; tests substitute fakes.
type API interface {
	// Health issues a lightweight readiness probe.
	Health(ctx context.Context) error

	// List returns the metadata-only catalog of remote records of one kind.
	List(ctx context.Context, kind record.Kind) ([]record.Summary, error)

	// Get fetches one remote record with its full payload.
	Get(ctx context.Context, kind record.Kind, id string) (record.Record, error)

	// Create posts a new record; the remote assigns its id.
	Create(ctx context.Context, kind record.Kind, payload json.RawMessage) (record.Record, error)

	// Update replaces the remote record's payload.
	Update(ctx context.Context, kind record.Kind, id string, payload json.RawMessage) error
}
