package docsession

import (
	"testing"
	"time"
)

func TestSessionMutationTracking(t *testing.T) {
	sess := newSession("k", false, time.Now(), 0, map[string]any{"a": 1})
	if sess.Changed() {
		t.Fatal("freshly loaded session must not be changed")
	}

	sess.Set("b", 2)
	if !sess.Changed() {
		t.Fatal("Set must mark the session changed")
	}

	sess = newSession("k", false, time.Now(), 0, map[string]any{"a": 1})
	sess.Delete("missing")
	if sess.Changed() {
		t.Fatal("deleting an absent key must not mark the session changed")
	}
	sess.Delete("a")
	if !sess.Changed() {
		t.Fatal("Delete of a present key must mark the session changed")
	}
}

func TestSessionInvalidate(t *testing.T) {
	sess := newSession("k", false, time.Now(), 0, map[string]any{"a": 1, "b": 2})

	sess.Invalidate()
	if !sess.Empty() || !sess.Changed() {
		t.Fatalf("expected empty changed session, got len=%d changed=%v", sess.Len(), sess.Changed())
	}
	if sess.Identity() != "k" {
		t.Fatal("invalidate must keep the identity so save can delete the document")
	}
}

func TestSessionAccessors(t *testing.T) {
	created := time.Unix(1000, 0).UTC()
	sess := newSession("k", false, created, time.Hour, map[string]any{
		"name":   "alice",
		"visits": float64(3), // JSON numbers decode as float64
	})

	if sess.GetString("name") != "alice" {
		t.Fatalf("name = %q", sess.GetString("name"))
	}
	if n, ok := sess.GetInt("visits"); !ok || n != 3 {
		t.Fatalf("visits = %d ok=%v", n, ok)
	}
	if _, ok := sess.Get("absent"); ok {
		t.Fatal("absent key reported present")
	}
	if sess.Created() != created || sess.MaxAge() != time.Hour {
		t.Fatalf("created=%v maxAge=%v", sess.Created(), sess.MaxAge())
	}
	if got := sess.Len(); got != 2 {
		t.Fatalf("len = %d, want 2", got)
	}
	if keys := sess.Keys(); len(keys) != 2 {
		t.Fatalf("keys = %v", keys)
	}
}

func TestSessionSetMaxAge(t *testing.T) {
	sess := newSession("", true, time.Now(), time.Hour, nil)

	sess.SetMaxAge(-time.Minute)
	if sess.MaxAge() != 0 {
		t.Fatalf("negative max-age should clamp to 0, got %v", sess.MaxAge())
	}
	if !sess.Changed() {
		t.Fatal("SetMaxAge must mark the session changed")
	}
}
