// Package middleware wires docsession.Storage into net/http handler chains.
//
// [Sessions] loads the request's session before the handler runs, makes it
// available via [FromContext], and commits it back to the store before the
// first response byte leaves — cookies must be set while headers are still
// open. Unchanged sessions are never written.
//
// # Architecture boundaries
//
// This package translates HTTP handler flow into Storage.Load/Save calls. It
// does NOT touch the document store, evaluate expiry, or interpret session
// contents — all of that is delegated to docsession.Storage.
//
// # What this package must NOT do
//
//   - Set or read cookies directly (Storage owns the cookie contract).
//   - Save a session the handler never changed.
//   - Swallow store errors silently (they go to the error handler).
package middleware
