package testsupport

import (
	"context"
	"testing"

	"cadenza/internal/catalog"
	"cadenza/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedItem inserts a pending concert record for tests.
func SeedItem(t testing.TB, store *catalog.Store, record catalog.NewItem) *catalog.Item {
	t.Helper()

	item, _, err := store.Add(context.Background(), record)
	if err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	return item
}
