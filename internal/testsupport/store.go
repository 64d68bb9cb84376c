package testsupport

import (
	"context"
	"testing"

	"stampatlas/internal/config"
	"stampatlas/internal/runstore"
)

// MustOpenHistory opens the run history database for cfg and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *runstore.Store {
	t.Helper()

	store, err := runstore.Open(context.Background(), cfg.HistoryPath())
	if err != nil {
		t.Fatalf("runstore.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
