package docsession

import (
	"errors"
	"testing"
	"time"

	"github.com/hlynes/docsession/docstore"
)

func TestBuildRejectsNilStore(t *testing.T) {
	_, err := New().Build()
	if !errors.Is(err, ErrNilStore) {
		t.Fatalf("expected ErrNilStore, got %v", err)
	}
}

func TestBuilderIsSingleUse(t *testing.T) {
	b := New().WithStore(docstore.NewMemoryStore())
	if _, err := b.Build(); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("expected second build to fail")
	}
}

func TestBuildFillsConfigDefaults(t *testing.T) {
	storage, err := New().
		WithStore(docstore.NewMemoryStore()).
		WithConfig(Config{MaxAge: -time.Minute}).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if storage.CookieName() != DefaultCookieName {
		t.Fatalf("cookie name = %q, want %q", storage.CookieName(), DefaultCookieName)
	}
	if storage.MaxAge() != 0 {
		t.Fatalf("negative max-age should normalize to 0, got %v", storage.MaxAge())
	}
	if storage.keyFactory == nil || storage.encode == nil || storage.decode == nil {
		t.Fatal("expected defaulted key factory and codec")
	}
	if storage.cookie.Path != "/" {
		t.Fatalf("path = %q, want /", storage.cookie.Path)
	}
}

func TestDefaultKeyFactoryShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		key := DefaultKeyFactory()
		if len(key) != 32 {
			t.Fatalf("key length = %d, want 32 hex chars", len(key))
		}
		for _, c := range key {
			if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
				t.Fatalf("key %q contains non-hex character %q", key, c)
			}
		}
		if seen[key] {
			t.Fatalf("duplicate key %q", key)
		}
		seen[key] = true
	}
}
