// Package store provides persistence backends for workflow state and
// checkpoints.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested run ID or checkpoint ID does
// not exist.
var ErrNotFound = errors.New("not found")

// Store persists workflow state during execution and named checkpoints
// for later resumption.
//
// Implementations include an in-memory store (testing, short-lived runs),
// a SQLite store (single-file local persistence), and a Redis store
// (shared cache-backed persistence). All implementations must be safe for
// concurrent use; the engine treats them as a black box satisfying that
// contract.
//
// Type parameter S is the state type to persist; it must be
// JSON-serializable for the database-backed implementations.
type Store[S any] interface {
	// SaveStep persists the state after a node execution step.
	// Steps are identified by runID + sequential step number (1-based).
	SaveStep(ctx context.Context, runID string, step int, nodeID string, state S) error

	// LoadLatest retrieves the most recent state for a run.
	// Returns ErrNotFound if the run has no persisted steps.
	LoadLatest(ctx context.Context, runID string) (state S, step int, err error)

	// SaveCheckpoint creates a named snapshot of workflow state.
	// An existing checkpoint with the same ID is overwritten.
	SaveCheckpoint(ctx context.Context, cpID string, state S, step int) error

	// LoadCheckpoint retrieves a named checkpoint.
	// Returns ErrNotFound if the checkpoint does not exist.
	LoadCheckpoint(ctx context.Context, cpID string) (state S, step int, err error)
}

// StepRecord is one persisted execution step.
type StepRecord[S any] struct {
	Step   int
	NodeID string
	State  S
}

// Checkpoint is a named snapshot of workflow state.
type Checkpoint[S any] struct {
	ID    string
	State S
	Step  int
}
