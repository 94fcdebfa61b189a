package docsession

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hlynes/docsession/docstore"
)

// Storage is the session storage adapter. Load reconstructs a [Session] from
// the request's cookie and the document store; Save writes, deletes, or skips
// the document and sets or clears the cookie accordingly.
//
// A Storage is immutable after [Builder.Build] and safe for concurrent use.
// It holds no per-request state: two concurrent requests on the same session
// key race read-modify-write with last-write-wins semantics.
type Storage struct {
	store      docstore.Store
	cookie     CookieConfig
	maxAge     time.Duration
	keyFactory KeyFactory
	encode     EncodeFunc
	decode     DecodeFunc
	metrics    *Metrics
	log        zerolog.Logger
}

// sessionPayload is the document data field's wire shape, shared with
// aiohttp-session: the creation timestamp rides inside the encoded payload,
// next to the user mapping.
type sessionPayload struct {
	Created int64          `json:"created"`
	Session map[string]any `json:"session"`
}

// Load reconstructs the request's session from the store.
//
// It returns a fresh, empty, new session when the request carries no session
// cookie, the referenced document does not exist, the document has expired
// (the document is then deleted best-effort), or the payload cannot be
// decoded. Load never fails on any of those; only store infrastructure errors
// are returned, unmodified.
//
//	Performance: 1 store read, plus 1 delete on the expired path.
func (s *Storage) Load(r *http.Request) (*Session, error) {
	ctx := r.Context()

	key, ok := s.loadCookie(r)
	if !ok {
		s.metrics.Inc(MetricLoadFresh)
		return s.fresh(), nil
	}

	rec, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			s.metrics.Inc(MetricLoadMiss)
			return s.fresh(), nil
		}
		return nil, err
	}

	if IsExpired(rec, time.Now()) {
		s.metrics.Inc(MetricLoadExpired)
		s.log.Debug().Str("key", key).Msg("session expired, starting fresh")
		// Best-effort: if this delete fails the store's TTL reaper still
		// removes the document eventually.
		if derr := s.store.Delete(ctx, key); derr != nil {
			s.log.Warn().Err(derr).Str("key", key).Msg("expired session delete failed")
		}
		return s.fresh(), nil
	}

	raw := rec.Data
	if raw == "" {
		raw = "{}"
	}
	decoded, err := s.decode(raw)
	if err != nil {
		s.metrics.Inc(MetricLoadRejected)
		s.log.Debug().Str("key", key).Err(err).Msg("undecodable session payload, starting fresh")
		return s.fresh(), nil
	}

	created, mapping, ok := splitPayload(decoded)
	if !ok {
		s.metrics.Inc(MetricLoadRejected)
		s.log.Debug().Str("key", key).Msg("ill-typed session payload, starting fresh")
		return s.fresh(), nil
	}

	s.metrics.Inc(MetricLoadHit)
	return newSession(key, false, created, s.maxAge, mapping), nil
}

// Save persists the session and maintains the response cookie.
//
// The branch taken depends on the session's identity and emptiness:
//
//   - no identity, empty: nothing happens — no document, no cookie.
//   - no identity, non-empty: a key is generated, the cookie set, the
//     document written.
//   - identity, empty: the cookie is cleared and the document deleted.
//   - identity, non-empty: the cookie is refreshed and the document
//     overwritten in full.
//
// The document's expire field is written only when the session has a finite
// max-age; store errors propagate unmodified.
//
//	Performance: at most 1 store write or 1 store delete.
func (s *Storage) Save(w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess == nil {
		return ErrNilSession
	}
	ctx := r.Context()

	key := sess.Identity()
	if key == "" {
		if sess.Empty() {
			s.metrics.Inc(MetricSaveSkipped)
			return nil
		}
		key = s.keyFactory()
		s.writeCookie(w, key, sess.MaxAge())
	} else {
		if sess.Empty() {
			s.clearCookie(w)
			if err := s.store.Delete(ctx, key); err != nil {
				return err
			}
			s.metrics.Inc(MetricSaveDeleted)
			return nil
		}
		s.writeCookie(w, key, sess.MaxAge())
	}

	data, err := s.encode(sessionPayload{
		Created: sess.Created().Unix(),
		Session: sess.mapping,
	})
	if err != nil {
		return err
	}

	rec := docstore.Record{Data: data}
	if maxAge := sess.MaxAge(); maxAge > 0 {
		rec.Expire = docstore.FormatTime(time.Now().Add(maxAge))
	}

	if err := s.store.Set(ctx, key, rec); err != nil {
		return err
	}
	s.metrics.Inc(MetricSaveWritten)
	return nil
}

// IsExpired reports whether rec's expire field holds a timestamp strictly in
// the past relative to now. Records without an expire field, or whose value
// does not parse as a timestamp, are never expired by this check; the store's
// own TTL mechanism remains the backstop for those.
func IsExpired(rec docstore.Record, now time.Time) bool {
	if rec.Expire == "" {
		return false
	}
	expire, ok := docstore.ParseTime(rec.Expire)
	if !ok {
		return false
	}
	return expire.Before(now)
}

// MetricsSnapshot returns a point-in-time copy of the outcome counters.
// Counters are zero-valued maps when metrics are disabled.
func (s *Storage) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// CookieName returns the configured session cookie name.
func (s *Storage) CookieName() string {
	return s.cookie.Name
}

// MaxAge returns the configured default session lifetime.
func (s *Storage) MaxAge() time.Duration {
	return s.maxAge
}

func (s *Storage) fresh() *Session {
	return newSession("", true, time.Now().UTC(), s.maxAge, nil)
}

func (s *Storage) loadCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.cookie.Name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (s *Storage) writeCookie(w http.ResponseWriter, value string, maxAge time.Duration) {
	c := &http.Cookie{
		Name:     s.cookie.Name,
		Value:    value,
		Domain:   s.cookie.Domain,
		Path:     s.cookie.Path,
		Secure:   s.cookie.Secure,
		HttpOnly: s.cookie.HTTPOnly,
		SameSite: s.cookie.SameSite,
	}
	if maxAge > 0 {
		c.MaxAge = int(maxAge / time.Second)
	}
	http.SetCookie(w, c)
}

func (s *Storage) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.Name,
		Value:    "",
		Domain:   s.cookie.Domain,
		Path:     s.cookie.Path,
		MaxAge:   -1,
		Secure:   s.cookie.Secure,
		HttpOnly: s.cookie.HTTPOnly,
		SameSite: s.cookie.SameSite,
	})
}

// splitPayload pulls the creation timestamp and user mapping out of a decoded
// payload. A payload that is not a map, or whose created/session entries have
// the wrong types, is rejected wholesale (ok == false) — the caller treats it
// the same as an undecodable record.
func splitPayload(decoded any) (created time.Time, mapping map[string]any, ok bool) {
	m, isMap := decoded.(map[string]any)
	if !isMap {
		return time.Time{}, nil, false
	}

	created = time.Now().UTC()
	if raw, present := m["created"]; present {
		sec, isNum := numericSeconds(raw)
		if !isNum {
			return time.Time{}, nil, false
		}
		created = time.Unix(sec, 0).UTC()
	}

	mapping = make(map[string]any)
	if raw, present := m["session"]; present {
		inner, isMap := raw.(map[string]any)
		if !isMap {
			return time.Time{}, nil, false
		}
		mapping = inner
	}

	return created, mapping, true
}

func numericSeconds(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
