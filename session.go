package docsession

import "time"

// Session is the in-memory, request-scoped session value. It is created
// fresh by every [Storage.Load] and handed back to [Storage.Save] once the
// request is done; it is not shared across requests and needs no locking.
//
// A Session with an empty identity has never been persisted. Mutations mark
// the session changed so middleware can decide whether a save is needed.
type Session struct {
	identity string
	isNew    bool
	created  time.Time
	maxAge   time.Duration
	mapping  map[string]any
	changed  bool
}

func newSession(identity string, isNew bool, created time.Time, maxAge time.Duration, mapping map[string]any) *Session {
	if mapping == nil {
		mapping = make(map[string]any)
	}
	return &Session{
		identity: identity,
		isNew:    isNew,
		created:  created,
		maxAge:   maxAge,
		mapping:  mapping,
	}
}

// Identity returns the session key, or "" for a session that has never been
// persisted.
func (s *Session) Identity() string {
	return s.identity
}

// IsNew reports whether this session was created fresh by Load rather than
// restored from the store.
func (s *Session) IsNew() bool {
	return s.isNew
}

// Created returns the session's creation timestamp (UTC).
func (s *Session) Created() time.Time {
	return s.created
}

// MaxAge returns the session's maximum age. Zero means the session never
// expires and its document is never TTL-reaped.
func (s *Session) MaxAge() time.Duration {
	return s.maxAge
}

// SetMaxAge overrides the session's maximum age for the next save.
func (s *Session) SetMaxAge(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.maxAge = d
	s.changed = true
}

// Empty reports whether the session holds no values.
func (s *Session) Empty() bool {
	return len(s.mapping) == 0
}

// Changed reports whether the session was mutated since Load.
func (s *Session) Changed() bool {
	return s.changed
}

// Len returns the number of stored values.
func (s *Session) Len() int {
	return len(s.mapping)
}

// Keys returns the stored keys in unspecified order.
func (s *Session) Keys() []string {
	keys := make([]string, 0, len(s.mapping))
	for k := range s.mapping {
		keys = append(keys, k)
	}
	return keys
}

// Get returns the value stored under key, and whether it was present.
func (s *Session) Get(key string) (any, bool) {
	v, ok := s.mapping[key]
	return v, ok
}

// GetString returns the value under key if it is a string, else "".
func (s *Session) GetString(key string) string {
	v, _ := s.mapping[key].(string)
	return v
}

// GetInt returns the value under key coerced to int. JSON round-trips store
// numbers as float64; both are accepted.
func (s *Session) GetInt(key string) (int, bool) {
	switch v := s.mapping[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Set stores value under key and marks the session changed.
func (s *Session) Set(key string, value any) {
	s.mapping[key] = value
	s.changed = true
}

// Delete removes key from the session and marks it changed.
func (s *Session) Delete(key string) {
	if _, ok := s.mapping[key]; !ok {
		return
	}
	delete(s.mapping, key)
	s.changed = true
}

// Invalidate empties the session and marks it changed. Saving an invalidated
// session deletes its document and clears the cookie.
func (s *Session) Invalidate() {
	s.mapping = make(map[string]any)
	s.changed = true
}
