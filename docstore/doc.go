// Package docstore provides the document-store contract behind docsession and
// its Redis and in-memory implementations.
//
// # Design
//
// A session document is a flat [Record]: an opaque encoded payload plus an
// optional expiry timestamp carried as a string. Stores are collection-scoped
// key/value surfaces with exactly three operations (Get, Set, Delete); Set is
// always a full-document replacement, never a partial update. The Redis store
// additionally mirrors the record's expire field into a key TTL so Redis
// itself reaps stale documents out of band.
//
// # Architecture boundaries
//
// This package owns persistence only. It does NOT interpret the payload,
// evaluate expiry on reads, or touch cookies — those responsibilities belong
// to the docsession Storage.
//
// # What this package must NOT do
//
//   - Import docsession or any sibling package (no upward imports).
//   - Retry or mask infrastructure failures.
//   - Decode or validate the Data payload.
package docstore
