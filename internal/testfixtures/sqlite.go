package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/hyperapi/internal/logging"
	"github.com/example/hyperapi/internal/persistence/sqlite"
)

// NewStore opens a temporary on-disk SQLite cache for integration-style
// persistence tests. The schema is created at open and the store is closed
// automatically through the test cleanup hook.
func NewStore(tb testing.TB) *sqlite.Store {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "hyperapi.db")
	store, err := sqlite.Open(context.Background(),
		"file:"+path+"?_pragma=foreign_keys(1)", logging.Discard())
	if err != nil {
		tb.Fatalf("failed to open store: %v", err)
	}

	tb.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
