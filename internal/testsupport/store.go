package testsupport

import (
	"testing"

	"kiln/internal/config"
	"kiln/internal/history"
)

// MustOpenStore opens a history.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
