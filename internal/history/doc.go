// Package history persists a ledger of pipeline runs in SQLite.
//
// Each run is inserted when it starts and updated once when it finishes, so
// an interrupted process leaves a row in the running state that `explainer
// runs` can surface. The store uses the pure-Go modernc.org/sqlite driver in
// WAL mode with a busy timeout and retries SQLITE_BUSY with backoff.
package history
