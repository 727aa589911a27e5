package store

import (
	"context"
	"sync"
)

// MemStore is an in-memory implementation of Store[S].
//
// Designed for testing, development, and short-lived workflows where
// persistence isn't required. Data is lost when the process terminates.
// MemStore is safe for concurrent use.
//
// Type parameter S is the state type to persist.
type MemStore[S any] struct {
	mu          sync.RWMutex
	steps       map[string][]StepRecord[S]
	checkpoints map[string]Checkpoint[S]
}

// NewMemStore creates a new in-memory store.
func NewMemStore[S any]() *MemStore[S] {
	return &MemStore[S]{
		steps:       make(map[string][]StepRecord[S]),
		checkpoints: make(map[string]Checkpoint[S]),
	}
}

// SaveStep appends a step record to the run's history.
func (m *MemStore[S]) SaveStep(_ context.Context, runID string, step int, nodeID string, state S) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.steps[runID] = append(m.steps[runID], StepRecord[S]{Step: step, NodeID: nodeID, State: state})
	return nil
}

// LoadLatest returns the record with the highest step number, which
// handles out-of-order saves correctly.
func (m *MemStore[S]) LoadLatest(_ context.Context, runID string) (S, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.steps[runID]
	if len(records) == 0 {
		var zero S
		return zero, 0, ErrNotFound
	}

	latest := records[0]
	for _, record := range records[1:] {
		if record.Step > latest.Step {
			latest = record
		}
	}
	return latest.State, latest.Step, nil
}

// SaveCheckpoint stores a named snapshot, overwriting any existing
// checkpoint with the same ID.
func (m *MemStore[S]) SaveCheckpoint(_ context.Context, cpID string, state S, step int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checkpoints[cpID] = Checkpoint[S]{ID: cpID, State: state, Step: step}
	return nil
}

// LoadCheckpoint retrieves a named checkpoint.
func (m *MemStore[S]) LoadCheckpoint(_ context.Context, cpID string) (S, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cp, exists := m.checkpoints[cpID]
	if !exists {
		var zero S
		return zero, 0, ErrNotFound
	}
	return cp.State, cp.Step, nil
}

// History returns a copy of all persisted steps for a run, in save order.
// Useful for tests and debugging.
func (m *MemStore[S]) History(runID string) []StepRecord[S] {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.steps[runID]
	out := make([]StepRecord[S], len(records))
	copy(out, records)
	return out
}
