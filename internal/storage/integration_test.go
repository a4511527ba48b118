//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/safar/go-storefront/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestPostgresKVIntegration(t *testing.T) {
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	runKVContract(t, NewPostgresKV(db))
}

func TestRedisKVIntegration(t *testing.T) {
	url, cleanup := testutil.SetupTestRedis(t)
	defer cleanup()

	client, err := NewRedisClient(context.Background(), url)
	require.NoError(t, err, "connect to redis")
	defer client.Close()

	runKVContract(t, NewRedisKV(client, "storefront:", 0))
}
