// Package docsession persists HTTP session state in a document store, keyed
// by an opaque token carried in a cookie. It is the server-side half of a
// cookie session: the browser holds only a random key, all session data lives
// in the store.
//
// The wire format — one document per session with a string "data" payload and
// an optional UTC "expire" timestamp, cookie named AIOHTTP_SESSION by default
// — is compatible with aiohttp-session document backends, so a Go service can
// share a live session collection with a Python one.
//
// # Architecture boundaries
//
// docsession is the public surface. It exposes [Storage], [Builder],
// [Session], [Config], and the metrics types. Document persistence lives in
// the docstore package behind the [docstore.Store] interface; the net/http
// middleware lives in the middleware package. Neither is imported here beyond
// the store contract.
//
// # Failure policy
//
// Data-shape anomalies on load — missing document, unreadable fields, an
// undecodable payload, an expired record — degrade to a fresh empty session
// and never surface as errors. Infrastructure failures from the store
// propagate unmodified; docsession does not retry.
//
// # What this package must NOT do
//
//   - Sign or encrypt cookies (the key is opaque; transport security is TLS's
//     job, integrity is the store's).
//   - Coordinate concurrent requests on one session: last write wins.
//   - Interpret the session mapping's contents.
package docsession
