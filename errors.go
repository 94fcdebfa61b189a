package docsession

import "errors"

var (
	// ErrNilStore is returned by [Builder.Build] when no document store was supplied.
	ErrNilStore = errors.New("document store is nil")
	// ErrNilSession is returned by [Storage.Save] when passed a nil session.
	ErrNilSession = errors.New("session is nil")
)
