package docstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no document exists under the given key.
var ErrNotFound = errors.New("document not found")

// ErrUnavailable wraps infrastructure failures from the underlying store.
var ErrUnavailable = errors.New("document store unavailable")

// ErrNilClient is returned when a store is constructed over a nil client handle.
var ErrNilClient = errors.New("nil store client")

// DefaultCollection is the collection sessions are stored in unless configured
// otherwise. The name matches aiohttp-session's document backends so Go and
// Python services can share one session collection.
const DefaultCollection = "aiohttp_sessions"

// Record is one session document. Data holds the encoded session payload.
// Expire is an RFC 3339 timestamp (zone-less values are implied UTC); empty
// means the document never expires and is exempt from TTL reaping.
type Record struct {
	Data   string
	Expire string
}

// Store is a collection-scoped document store keyed by opaque session keys.
// Implementations must be safe for concurrent use and must surface missing
// documents as [ErrNotFound] rather than empty records.
type Store interface {
	// Get fetches the document stored under key.
	Get(ctx context.Context, key string) (Record, error)

	// Set replaces the document stored under key with rec in full.
	Set(ctx context.Context, key string, rec Record) error

	// Delete removes the document stored under key. Deleting a missing
	// document is not an error.
	Delete(ctx context.Context, key string) error
}

// timeLayouts are tried in order by ParseTime. The zone-less layouts exist
// because some writers serialize naive timestamps; those are UTC on the wire,
// never local time.
var timeLayouts = []struct {
	layout string
	utc    bool
}{
	{time.RFC3339, false},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02 15:04:05", true},
}

// ParseTime parses a record expiry timestamp. It accepts RFC 3339 values with
// an explicit offset, and zone-less values which are interpreted as UTC. The
// second return is false when s is not a timestamp in any accepted layout.
func ParseTime(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		var (
			t   time.Time
			err error
		)
		if l.utc {
			t, err = time.ParseInLocation(l.layout, s, time.UTC)
		} else {
			t, err = time.Parse(l.layout, s)
		}
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTime serializes t for a Record's Expire field, normalized to UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
