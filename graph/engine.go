package graph

import (
	"context"
	"sync"
	"time"

	"github.com/dshills/blogsmith/graph/emit"
	"github.com/dshills/blogsmith/graph/store"
)

// Reducer merges a partial state update (delta) into the previous state
// and returns the next state. Reducers define the merge semantics per
// field: typically last-write-wins for scalars and append for logs.
// A reducer must be deterministic and must not retain references to its
// inputs.
type Reducer[S any] func(prev, delta S) S

// Options configures Engine execution behavior.
//
// Zero values are valid; the engine applies no step bound and no retries
// unless configured.
type Options struct {
	// MaxSteps limits a run to prevent infinite loops caused by routing
	// bugs. If 0, no limit is enforced.
	MaxSteps int

	// Retries is how many times a node is re-run when it returns an
	// error implementing Retryable. 0 disables retries.
	Retries int

	// RetryDelay is the pause between retry attempts. Defaults to one
	// second when Retries > 0 and RetryDelay is zero.
	RetryDelay time.Duration
}

// Engine orchestrates stateful workflow execution.
//
// The engine owns the graph topology (nodes and edges), executes nodes
// strictly sequentially, merges each node's delta into the running state
// via the reducer, persists state after every step, and emits
// observability events. Multiple runs may execute concurrently; each run
// owns its state instance exclusively.
//
// Type parameter S is the state type shared across the workflow.
type Engine[S any] struct {
	mu        sync.RWMutex
	reducer   Reducer[S]
	nodes     map[string]Node[S]
	edges     []Edge[S]
	startNode string
	store     store.Store[S]
	emitter   emit.Emitter
	metrics   *Metrics
	opts      Options
}

// New creates an Engine with the given reducer, store, emitter and options.
// The emitter may be nil (events are skipped). Configuration is validated
// when Run is called, not here, to allow flexible construction order.
func New[S any](reducer Reducer[S], st store.Store[S], emitter emit.Emitter, opts Options) *Engine[S] {
	return &Engine[S]{
		reducer: reducer,
		nodes:   make(map[string]Node[S]),
		edges:   make([]Edge[S], 0),
		store:   st,
		emitter: emitter,
		opts:    opts,
	}
}

// WithMetrics attaches Prometheus metrics collection to the engine.
// Returns the engine for chaining.
func (e *Engine[S]) WithMetrics(m *Metrics) *Engine[S] {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics = m
	return e
}

// Add registers a node under a unique ID. Nodes must be registered before
// StartAt or Run.
func (e *Engine[S]) Add(nodeID string, node Node[S]) error {
	if nodeID == "" {
		return &EngineError{Message: "node ID cannot be empty"}
	}
	if node == nil {
		return &EngineError{Message: "node cannot be nil"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.nodes[nodeID]; exists {
		return &EngineError{Message: "duplicate node ID: " + nodeID, Code: "DUPLICATE_NODE"}
	}
	e.nodes[nodeID] = node
	return nil
}

// StartAt sets the entry point for workflow execution. The node must
// already be registered.
func (e *Engine[S]) StartAt(nodeID string) error {
	if nodeID == "" {
		return &EngineError{Message: "start node ID cannot be empty"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.nodes[nodeID]; !exists {
		return &EngineError{Message: "start node does not exist: " + nodeID, Code: "NODE_NOT_FOUND"}
	}
	e.startNode = nodeID
	return nil
}

// Connect adds an edge between two nodes. A nil predicate makes the edge
// unconditional. Edges are evaluated in registration order; the first
// match wins. Node existence is validated lazily at run time so graphs
// can be built in any order.
func (e *Engine[S]) Connect(from, to string, predicate Predicate[S]) error {
	if from == "" {
		return &EngineError{Message: "from node ID cannot be empty"}
	}
	if to == "" {
		return &EngineError{Message: "to node ID cannot be empty"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.edges = append(e.edges, Edge[S]{From: from, To: to, When: predicate})
	return nil
}

// Run executes the workflow from the configured start node until a node
// returns a terminal route, an error occurs, or a limit is hit.
//
// After every node the engine merges the delta via the reducer, persists
// the state to the store, and emits a step event. The context is checked
// between steps; a long-running node call receives the same context and
// may honor cancellation itself, but the engine does not force-abort it.
func (e *Engine[S]) Run(ctx context.Context, runID string, initial S) (S, error) {
	var zero S

	if err := e.validate(); err != nil {
		return zero, err
	}

	e.mu.RLock()
	start := e.startNode
	e.mu.RUnlock()

	final, err := e.loop(ctx, runID, initial, start, 0)
	if e.metrics != nil {
		if err != nil {
			e.metrics.RunCompleted("error")
		} else {
			e.metrics.RunCompleted("ok")
		}
	}
	if err != nil {
		return zero, err
	}
	return final, nil
}

// SaveCheckpoint names the most recent persisted state of a run so the
// run can later be resumed or branched from that point.
func (e *Engine[S]) SaveCheckpoint(ctx context.Context, runID, cpID string) error {
	state, step, err := e.store.LoadLatest(ctx, runID)
	if err != nil {
		return &EngineError{Message: "cannot create checkpoint: " + err.Error(), Code: "RUN_NOT_FOUND"}
	}
	if err := e.store.SaveCheckpoint(ctx, cpID, state, step); err != nil {
		return &EngineError{Message: "failed to save checkpoint: " + err.Error(), Code: "CHECKPOINT_SAVE_FAILED"}
	}
	e.emit(emit.Event{RunID: runID, Step: step, Msg: "checkpoint saved", Meta: map[string]interface{}{"checkpoint_id": cpID}})
	return nil
}

// ResumeFromCheckpoint starts a new run from a previously saved
// checkpoint, beginning execution at startNode.
func (e *Engine[S]) ResumeFromCheckpoint(ctx context.Context, cpID, newRunID, startNode string) (S, error) {
	var zero S

	if err := e.validate(); err != nil {
		return zero, err
	}
	if startNode == "" {
		return zero, &EngineError{Message: "start node not specified for resume", Code: "NO_START_NODE"}
	}

	e.mu.RLock()
	_, exists := e.nodes[startNode]
	e.mu.RUnlock()
	if !exists {
		return zero, &EngineError{Message: "resume start node does not exist: " + startNode, Code: "NODE_NOT_FOUND"}
	}

	state, step, err := e.store.LoadCheckpoint(ctx, cpID)
	if err != nil {
		return zero, &EngineError{Message: "cannot resume: checkpoint not found: " + err.Error(), Code: "CHECKPOINT_NOT_FOUND"}
	}

	e.emit(emit.Event{
		RunID:  newRunID,
		NodeID: startNode,
		Msg:    "resuming from checkpoint",
		Meta:   map[string]interface{}{"checkpoint_id": cpID, "checkpoint_step": step},
	})

	return e.loop(ctx, newRunID, state, startNode, 0)
}

// loop is the shared execution loop behind Run and ResumeFromCheckpoint.
func (e *Engine[S]) loop(ctx context.Context, runID string, state S, nodeID string, step int) (S, error) {
	var zero S

	current := state
	currentNode := nodeID

	for {
		step++

		if e.opts.MaxSteps > 0 && step > e.opts.MaxSteps {
			return zero, &EngineError{Message: ErrMaxStepsExceeded.Error(), Code: "MAX_STEPS_EXCEEDED"}
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		e.mu.RLock()
		node, exists := e.nodes[currentNode]
		e.mu.RUnlock()
		if !exists {
			return zero, &EngineError{Message: "node not found during execution: " + currentNode, Code: "NODE_NOT_FOUND"}
		}

		result, elapsed := e.execute(ctx, runID, currentNode, node, current)
		if result.Err != nil {
			e.emit(emit.Event{
				RunID: runID, Step: step, NodeID: currentNode,
				Msg:  "node failed",
				Meta: map[string]interface{}{"error": result.Err.Error(), "duration_ms": elapsed.Milliseconds()},
			})
			if e.metrics != nil {
				e.metrics.StepCompleted(currentNode, "error", elapsed)
			}
			return zero, result.Err
		}

		current = e.reducer(current, result.Delta)

		if err := e.store.SaveStep(ctx, runID, step, currentNode, current); err != nil {
			return zero, &EngineError{Message: "failed to save step: " + err.Error(), Code: "STORE_ERROR"}
		}

		e.emit(emit.Event{
			RunID: runID, Step: step, NodeID: currentNode,
			Msg:  "node completed",
			Meta: map[string]interface{}{"duration_ms": elapsed.Milliseconds()},
		})
		if e.metrics != nil {
			e.metrics.StepCompleted(currentNode, "ok", elapsed)
		}

		switch {
		case result.Route.Terminal:
			return current, nil
		case result.Route.To != "":
			currentNode = result.Route.To
		default:
			next := e.evaluateEdges(currentNode, current)
			if next == "" {
				return zero, &EngineError{Message: "no valid route from node: " + currentNode, Code: "NO_ROUTE"}
			}
			currentNode = next
		}
	}
}

// execute runs a single node, retrying transient failures per Options.
func (e *Engine[S]) execute(ctx context.Context, runID, nodeID string, node Node[S], state S) (NodeResult[S], time.Duration) {
	started := time.Now()
	result := node.Run(ctx, state)

	for attempt := 1; result.Err != nil && attempt <= e.opts.Retries; attempt++ {
		r, ok := result.Err.(Retryable)
		if !ok || !r.Retryable() {
			break
		}

		if e.metrics != nil {
			e.metrics.RetryRecorded(nodeID)
		}
		e.emit(emit.Event{
			RunID: runID, NodeID: nodeID,
			Msg:  "retrying node",
			Meta: map[string]interface{}{"attempt": attempt, "error": result.Err.Error()},
		})

		delay := e.opts.RetryDelay
		if delay == 0 {
			delay = time.Second
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return NodeResult[S]{Err: ctx.Err()}, time.Since(started)
		}

		result = node.Run(ctx, state)
	}

	return result, time.Since(started)
}

// evaluateEdges finds the first matching outgoing edge for the node.
// Unconditional edges always match; conditional edges match when their
// predicate returns true for the current state. Returns "" if nothing
// matches.
func (e *Engine[S]) evaluateEdges(fromNode string, state S) string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, edge := range e.edges {
		if edge.From != fromNode {
			continue
		}
		if edge.When == nil || edge.When(state) {
			return edge.To
		}
	}
	return ""
}

func (e *Engine[S]) validate() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.reducer == nil {
		return &EngineError{Message: "reducer is required", Code: "MISSING_REDUCER"}
	}
	if e.store == nil {
		return &EngineError{Message: "store is required", Code: "MISSING_STORE"}
	}
	if e.startNode == "" {
		return &EngineError{Message: "start node not set (call StartAt before Run)", Code: "NO_START_NODE"}
	}
	if _, exists := e.nodes[e.startNode]; !exists {
		return &EngineError{Message: "start node does not exist: " + e.startNode, Code: "NODE_NOT_FOUND"}
	}
	return nil
}

func (e *Engine[S]) emit(ev emit.Event) {
	if e.emitter != nil {
		e.emitter.Emit(ev)
	}
}
