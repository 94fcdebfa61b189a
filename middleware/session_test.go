package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlynes/docsession"
	"github.com/hlynes/docsession/docstore"
)

func newTestStorage(t *testing.T, store docstore.Store) *docsession.Storage {
	t.Helper()
	storage, err := docsession.New().WithStore(store).Build()
	require.NoError(t, err)
	return storage
}

// brokenStore fails every operation the way an unreachable backend would.
type brokenStore struct {
	getErr error
	setErr error
}

func (s *brokenStore) Get(context.Context, string) (docstore.Record, error) {
	return docstore.Record{}, s.getErr
}

func (s *brokenStore) Set(context.Context, string, docstore.Record) error { return s.setErr }

func (s *brokenStore) Delete(context.Context, string) error { return nil }

func TestSessionsInjectsSessionIntoContext(t *testing.T) {
	storage := newTestStorage(t, docstore.NewMemoryStore())

	var seen *docsession.Session
	handler := Sessions(storage)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := FromContext(r.Context())
		require.True(t, ok)
		seen = sess
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, seen)
	assert.True(t, seen.IsNew())
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSessionsSetsCookieBeforeBody(t *testing.T) {
	storage := newTestStorage(t, docstore.NewMemoryStore())

	handler := Sessions(storage)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := FromContext(r.Context())
		sess.Set("user", "maya")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, "ok")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, docsession.DefaultCookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestSessionsCommitsBodylessHandlers(t *testing.T) {
	storage := newTestStorage(t, docstore.NewMemoryStore())

	handler := Sessions(storage)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		sess, _ := FromContext(r.Context())
		sess.Set("touched", true)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Len(t, rec.Result().Cookies(), 1)
}

func TestSessionsSkipsUnchangedSessions(t *testing.T) {
	storage := newTestStorage(t, docstore.NewMemoryStore())

	handler := Sessions(storage)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := FromContext(r.Context())
		_, _ = sess.Get("anything")
		fmt.Fprint(w, "ok")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Empty(t, rec.Result().Cookies())
	snap := storage.MetricsSnapshot()
	assert.Zero(t, snap.Counters[docsession.MetricSaveWritten])
}

func TestSessionsRoundTripAcrossRequests(t *testing.T) {
	storage := newTestStorage(t, docstore.NewMemoryStore())

	handler := Sessions(storage)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := FromContext(r.Context())
		if r.URL.Path == "/login" {
			sess.Set("user", "maya")
		}
		user, _ := sess.Get("user")
		fmt.Fprintf(w, "%v", user)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/login", nil))
	cookies := first.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(cookies[0])
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)

	assert.Equal(t, "maya", second.Body.String())
	assert.Empty(t, second.Result().Cookies(), "read-only request must not rewrite the cookie")
}

func TestSessionsNilStorageFails(t *testing.T) {
	handler := Sessions(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run without storage")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSessionsLoadFailureUsesErrorHandler(t *testing.T) {
	store := &brokenStore{getErr: fmt.Errorf("%w: dial tcp: refused", docstore.ErrUnavailable)}
	storage := newTestStorage(t, store)

	var handled error
	mw := SessionsWithErrorHandler(storage, func(w http.ResponseWriter, _ *http.Request, err error) {
		handled = err
		w.WriteHeader(http.StatusBadGateway)
	})
	handler := mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run when the load fails")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: docsession.DefaultCookieName, Value: "deadbeef"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.ErrorIs(t, handled, docstore.ErrUnavailable)
}

func TestSessionsCommitFailureSuppressesHandlerBody(t *testing.T) {
	store := &brokenStore{
		getErr: docstore.ErrNotFound,
		setErr: fmt.Errorf("%w: write timeout", docstore.ErrUnavailable),
	}
	storage := newTestStorage(t, store)

	var handled error
	mw := SessionsWithErrorHandler(storage, func(w http.ResponseWriter, _ *http.Request, err error) {
		handled = err
		http.Error(w, "session backend down", http.StatusServiceUnavailable)
	})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := FromContext(r.Context())
		sess.Set("user", "maya")
		fmt.Fprint(w, "welcome")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "welcome")
	assert.ErrorIs(t, handled, docstore.ErrUnavailable)
}

func TestFromContextWithoutMiddleware(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}
