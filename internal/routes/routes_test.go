package routes

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/saeid-a/HealthQuestBack/internal/config"
	"github.com/saeid-a/HealthQuestBack/internal/models"
	"github.com/saeid-a/HealthQuestBack/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoresSelectsBackend(t *testing.T) {
	ctx := context.Background()

	users, snapshots, closeStores, err := newStores(ctx, &config.Config{StoreBackend: config.StoreBackendPostgres}, nil)
	require.NoError(t, err)
	assert.IsType(t, &repository.UserRepository{}, users)
	assert.IsType(t, &repository.SnapshotRepository{}, snapshots)
	closeStores()

	users, snapshots, closeStores, err = newStores(ctx, &config.Config{
		StoreBackend:       config.StoreBackendSupabase,
		SupabaseURL:        "https://example.supabase.co",
		SupabaseTable:      "profiles",
		SupabaseServiceKey: "key",
	}, nil)
	require.NoError(t, err)
	assert.IsType(t, &repository.UserRepository{}, users)
	assert.IsType(t, &repository.SupabaseSnapshotRepository{}, snapshots)
	closeStores()

	_, _, _, err = newStores(ctx, &config.Config{StoreBackend: "redis"}, nil)
	assert.Error(t, err)
}

func TestNewStoresSQLiteKeepsAccountsWithoutPostgres(t *testing.T) {
	ctx := context.Background()

	users, snapshots, closeStores, err := newStores(ctx, &config.Config{
		StoreBackend: config.StoreBackendSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "healthquest.db"),
	}, nil)
	require.NoError(t, err)
	defer closeStores()
	assert.IsType(t, &repository.SQLiteUserRepository{}, users)
	assert.IsType(t, &repository.SQLiteSnapshotRepository{}, snapshots)

	user := &models.User{ID: "u-1", Email: "ana@example.com", PasswordHash: "hash"}
	require.NoError(t, users.CreateUser(ctx, user))
	found, err := users.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", found.ID)

	_, err = snapshots.Fetch(ctx, "u-1")
	assert.ErrorIs(t, err, repository.ErrSnapshotNotFound)
}
