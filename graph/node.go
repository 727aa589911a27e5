package graph

import "context"

// Node is a processing unit in the workflow graph.
// It receives the current state of type S (read-only by convention),
// performs its work, and returns a NodeResult describing a partial state
// update and a routing decision.
//
// Nodes should never let a failure escape Run as a panic. Fatal failures
// are reported via NodeResult.Err; recoverable failures should instead be
// folded into the Delta so the workflow can degrade gracefully.
//
// Type parameter S is the state type shared across the workflow.
type Node[S any] interface {
	// Run executes the node's logic with the given context and state.
	Run(ctx context.Context, state S) NodeResult[S]
}

// NodeResult is the output of one node execution.
type NodeResult[S any] struct {
	// Delta is the partial state update produced by this node.
	// The engine merges it into the running state via the reducer;
	// the node must not mutate the state it was given.
	Delta S

	// Route is the tagged routing decision: Stop() to terminate,
	// Goto(id) to continue at a specific node, or the zero value to
	// fall back to edge-based routing.
	Route Next

	// Err is a node-level error. A non-nil Err halts the workflow run
	// (after retries, if the error is Retryable).
	Err error
}

// Next is the tagged-variant routing decision returned by a node.
// Exactly one of To or Terminal should be set; the zero value means
// "consult the graph's edges".
type Next struct {
	// To names the next node to execute.
	To string

	// Terminal indicates the workflow run is complete.
	Terminal bool
}

// Stop returns a Next that terminates workflow execution.
func Stop() Next {
	return Next{Terminal: true}
}

// Goto returns a Next that routes to the specified node.
func Goto(nodeID string) Next {
	return Next{To: nodeID}
}

// NodeFunc adapts a plain function to the Node interface.
//
// Example:
//
//	n := NodeFunc[MyState](func(ctx context.Context, s MyState) NodeResult[MyState] {
//	    return NodeResult[MyState]{Delta: MyState{Result: "done"}, Route: Stop()}
//	})
type NodeFunc[S any] func(ctx context.Context, state S) NodeResult[S]

// Run implements the Node interface for NodeFunc.
func (f NodeFunc[S]) Run(ctx context.Context, state S) NodeResult[S] {
	return f(ctx, state)
}

// Retryable is implemented by errors that may succeed on a retry
// (rate limits, transient network failures). The engine re-runs a node
// whose error reports Retryable() == true, up to Options.Retries times.
type Retryable interface {
	Retryable() bool
}

// NodeError is a structured error produced during node execution.
type NodeError struct {
	// Message is the human-readable error description.
	Message string

	// Code is a machine-readable error code.
	Code string

	// NodeID identifies which node produced this error.
	NodeID string

	// Transient marks the error as safe to retry.
	Transient bool

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	if e.NodeID != "" {
		return "node " + e.NodeID + ": " + e.Message
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *NodeError) Unwrap() error {
	return e.Cause
}

// Retryable implements the Retryable interface.
func (e *NodeError) Retryable() bool {
	return e.Transient
}
