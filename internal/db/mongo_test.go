package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newTestStore connects to a local MongoDB and hands back a store backed by
// a throwaway database. Skips the test when no server is reachable.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := Connect(ctx, uri, "driver_safety_test")
	if err != nil {
		t.Skipf("failed to connect to mongo: %v, skipping integration test", err)
	}
	t.Cleanup(func() {
		ctx := context.Background()
		store.db.Drop(ctx)
		store.Close(ctx)
	})

	require.NoError(t, store.db.Drop(context.Background()))
	require.NoError(t, store.EnsureIndexes(context.Background()))
	return store
}
