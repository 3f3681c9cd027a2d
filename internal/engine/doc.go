// Package engine answers "what is the current state of X" by fetching,
// validating and projecting events.
//
// Every query follows the same steps:
//  1. derive the narrowest event.Filter the query can justify
//  2. fetch from the configured source, bounded by the fetch timeout
//  3. validate and deduplicate, logging and counting exclusions
//  4. reduce with the pure functions of package project
//  5. enrich author names, best effort
//
// Only step 2 can fail the query, and only when the source could not answer
// at all (*source.Error). Invalid events, malformed records, unauthorized
// status updates and name lookup failures all degrade silently.
//
// The engine holds no mutable state of its own and is safe for concurrent
// use.
package engine
