// Package graph provides the workflow execution engine: a directed graph
// of nodes with reducer-based state merging, conditional edges, and
// bounded execution.
package graph

// Edge is a possible transition between two nodes in the workflow graph.
//
// Edges may be unconditional (When == nil, always traversed) or
// conditional (traversed only when the predicate returns true). Explicit
// routing via NodeResult.Route takes precedence over edges; edges are the
// fallback when a node returns the zero Next.
//
// Type parameter S is the state type used for predicate evaluation.
type Edge[S any] struct {
	// From is the source node ID.
	From string

	// To is the destination node ID.
	To string

	// When is an optional traversal condition. Nil means unconditional.
	When Predicate[S]
}

// Predicate evaluates state to decide whether an edge should be traversed.
// Predicates must be pure: deterministic and side-effect free.
type Predicate[S any] func(state S) bool
