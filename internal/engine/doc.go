// Package engine is the polling state machine at the heart of ticketwatch.
//
// # Lifecycle
//
//	Idle -> Initializing -> Polling -> Stopped
//
// Start() resolves the configured filter names to remote ids (retrying
// transient failures a bounded number of times), builds the search query,
// then enters the poll loop. Each cycle searches the remote API, diffs the
// results against the ledger of already-notified ids, dispatches one
// (possibly batched) notification for the new ones, records them, and arms
// a timer for the next cycle.
//
// # Failure policy
//
// Configuration errors (nothing to search for, empty resolved query) are
// fatal and never retried. Remote failures during steady polling are logged
// and the loop resumes at the normal interval; a rate-limit answer (429/503)
// stretches the next delay to the server's Retry-After hint, floored at the
// polling interval. Ledger persistence and notification presentation are
// best-effort and never abort a cycle.
//
// # Concurrency
//
// Cycles are single-flight: a tick that lands while a poll is executing is
// skipped outright. Stop() cancels the pending timer and prevents future
// scheduling; it does not abort an in-flight cycle, so worst-case shutdown
// latency is one request timeout.
package engine
