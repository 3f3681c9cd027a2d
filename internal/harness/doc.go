// Package harness runs scenario tests against the projection engine.
//
// A scenario names a few identities, publishes a sequence of signed events
// to one or more in-memory relays, projects everything back through
// engine.Engine and checks assertions against the result. Events are
// referred to by label, never by ID, so scenario files and golden snapshots
// stay readable and stable.
//
// # Scenario Format
//
//	name: close_then_reopen
//	description: "The latest authorized status update wins"
//	relays: [alpha, beta]            # optional, default [primary]
//	keys:                            # alias -> seed byte of the secret key
//	  owner: 2
//	  author: 1
//	events:
//	  - label: repo
//	    by: owner
//	    kind: repository
//	    name: gitnostr
//	    location: https://example.com/gitnostr.git
//	  - label: bug
//	    by: author
//	    kind: issue
//	    repo: repo
//	    title: "crash on start"
//	    tampered_on: [beta]          # beta serves an edited copy
//	  - label: closed
//	    by: owner
//	    kind: status
//	    issue: bug
//	    status: Closed
//	assertions:
//	  - type: issue_status
//	    issue: bug
//	    status: Closed
//	  - type: excluded
//	    event: bug
//	    reason: TAMPERED_ID
//
// Event kinds are repository, issue, comment, status, patch, profile and
// raw. A raw event is signed exactly as written (raw_kind, tags, content),
// with "$label" tag values replaced by the labelled event's ID; it is how
// scenarios produce structurally malformed events.
//
// Events without an explicit "at" are timestamped by a deterministic clock,
// one second apart, in file order.
//
// # Assertion Types
//
//   - repository_count: number of projected repositories
//   - issue_count: number of issues of a repository
//   - patch_count: number of patches of a repository
//   - issue_status: resolved status of an issue
//   - timeline: exact order of an issue's timeline entries
//   - excluded: an event is excluded with the given reason
//
// Exclusions are audited over everything any relay serves, not only what
// the engine happened to fetch, so an unauthorized status update shows up
// as UNAUTHORIZED even though the engine never asks for it.
package harness
