package testutil

import (
	"testing"

	"salesetl/internal/store"
)

// OpenMemoryStore opens an in-memory SQLite store for integration
// tests and closes it when the test ends.
func OpenMemoryStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.Open(store.DialectSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close memory store: %v", err)
		}
	})
	return st
}
