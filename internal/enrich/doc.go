// Package enrich implements the incremental fetch-and-reconcile engine.
//
// An Engine walks a candidate list one title at a time, looks each one up
// through a Fetcher bounded by a per-request timeout, and files the outcome
// into a RunState as found or not found. When a lookup times out or fails at
// the transport level the current pass is abandoned and a new pass starts
// from the top; Remaining recomputes what is still unclassified so earlier
// results are never fetched or reported twice.
//
// The restart policy is deliberately unbounded: a title that keeps failing
// keeps restarting the remaining batch until it resolves or the caller
// cancels the context.
package enrich
