// Package store defines access to version history record sources.
//
// A record source holds archived version events (node observations plus the
// links between them) for many stable identifiers. Implementations load the
// connected history of one identifier into a tree:
//   - mongostore: MongoDB-backed source for production archives
//
// The pipeline consumes stores through its Loader interface, so sources
// stay decoupled from pipeline execution.
package store

import (
	"context"
	"errors"

	"github.com/lineagelab/idhist/pkg/lineage"
)

// ErrNotFound is returned when a stable identifier has no recorded history.
var ErrNotFound = errors.New("stable identifier not found")

// Store is the interface for version history record sources.
type Store interface {
	// History loads the full history tree connected to a stable identifier.
	// The result includes every identifier reachable through transfer links,
	// so merged and split lineages appear complete.
	History(ctx context.Context, stableID string) (*lineage.Tree, error)

	// StableIDs lists identifiers known to the source, optionally filtered
	// by prefix. A limit of 0 means no limit.
	StableIDs(ctx context.Context, prefix string, limit int64) ([]string, error)

	// Close releases source resources.
	Close(ctx context.Context) error
}
