package middleware

import (
	"context"
	"net/http"

	"github.com/hlynes/docsession"
)

type sessionContextKey struct{}

// FromContext returns the session injected by [Sessions], if any.
func FromContext(ctx context.Context) (*docsession.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*docsession.Session)
	return sess, ok
}

// ErrorHandler handles storage failures raised while loading or committing a
// session. It runs before any response byte has been written.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Sessions returns middleware that loads the request's session from storage
// and commits it back when the handler mutated it. The commit happens on the
// first Write/WriteHeader of the response, while cookie headers can still be
// set; handlers that write nothing are committed after they return.
func Sessions(storage *docsession.Storage) func(http.Handler) http.Handler {
	return SessionsWithErrorHandler(storage, nil)
}

// SessionsWithErrorHandler is [Sessions] with a custom failure handler.
// A nil onError falls back to a plain 500.
func SessionsWithErrorHandler(storage *docsession.Storage, onError ErrorHandler) func(http.Handler) http.Handler {
	if onError == nil {
		onError = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if storage == nil {
				onError(w, r, docsession.ErrNilStore)
				return
			}

			sess, err := storage.Load(r)
			if err != nil {
				onError(w, r, err)
				return
			}

			r = r.WithContext(context.WithValue(r.Context(), sessionContextKey{}, sess))

			sw := &sessionWriter{
				ResponseWriter: w,
				req:            r,
				sess:           sess,
				storage:        storage,
				onError:        onError,
			}
			next.ServeHTTP(sw, r)

			// Bodyless, headerless handlers still need their session saved.
			if err := sw.commit(); err != nil && !sw.failed {
				sw.failed = true
				onError(w, r, err)
			}
		})
	}
}

// sessionWriter defers the session commit until the response is about to
// start, so Save can still add Set-Cookie headers.
type sessionWriter struct {
	http.ResponseWriter
	req     *http.Request
	sess    *docsession.Session
	storage *docsession.Storage
	onError ErrorHandler

	committed bool
	failed    bool
}

func (w *sessionWriter) commit() error {
	if w.committed {
		return nil
	}
	w.committed = true

	if !w.sess.Changed() {
		return nil
	}
	return w.storage.Save(w.ResponseWriter, w.req, w.sess)
}

func (w *sessionWriter) WriteHeader(statusCode int) {
	if err := w.commit(); err != nil {
		w.failed = true
		w.onError(w.ResponseWriter, w.req, err)
		return
	}
	if w.failed {
		return
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	if err := w.commit(); err != nil {
		w.failed = true
		w.onError(w.ResponseWriter, w.req, err)
	}
	if w.failed {
		// The error handler already produced the response.
		return len(b), nil
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap supports http.ResponseController pass-through.
func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
