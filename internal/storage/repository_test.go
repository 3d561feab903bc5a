package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
	"expensetracker/internal/storage/storagetest"
)

func setupTestRepository(t *testing.T, now func() time.Time) *storage.SQLRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "data", "expenses.db")

	repo, err := storage.NewSQLiteRepository(context.Background(), dbPath, storage.WithClock(now))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepositoryContract(t *testing.T) {
	storagetest.RunContract(t, func(t *testing.T, now func() time.Time) storage.Store {
		return setupTestRepository(t, now)
	})
}

func TestSQLiteRepositoryPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "expenses.db")

	repo, err := storage.NewSQLiteRepository(ctx, dbPath)
	require.NoError(t, err)
	created, err := repo.Create(ctx, core.ExpenseInput{Title: "Car", Amount: core.NewMoney(27000), DueDate: core.NewDate(2017, 11, 25)})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	reopened, err := storage.NewSQLiteRepository(ctx, dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Car", got.Title)
	assert.Equal(t, "11/25/2017", got.DueDate.String())
}

func TestResetSchemaEmptiesTable(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "expenses.db")

	repo, err := storage.NewSQLiteRepository(ctx, dbPath)
	require.NoError(t, err)
	_, err = storage.Seed(ctx, repo, storage.SampleExpenses())
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	d, err := storage.ParseDatabaseURL("sqlite://" + dbPath)
	require.NoError(t, err)
	require.NoError(t, storage.ResetSchema(d))

	repo, err = storage.NewSQLiteRepository(ctx, dbPath)
	require.NoError(t, err)
	defer repo.Close()

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestClosedRepositoryReportsStorageError(t *testing.T) {
	repo := setupTestRepository(t, time.Now)
	require.NoError(t, repo.Close())

	_, err := repo.ListAll(context.Background())
	assert.ErrorIs(t, err, core.ErrStorage)

	_, _, err = repo.Get(context.Background(), 1)
	assert.ErrorIs(t, err, core.ErrStorage)
}
