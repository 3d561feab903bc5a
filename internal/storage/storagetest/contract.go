// Package storagetest holds the behavioural checks every storage.Store
// implementation must pass.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

// Factory builds an empty store whose creation clock is now.
type Factory func(t *testing.T, now func() time.Time) storage.Store

// Clock is the fixed time the contract injects into every store.
var Clock = time.Date(2017, 10, 30, 12, 0, 0, 0, time.UTC)

// RunContract exercises newStore against the Store contract.
func RunContract(t *testing.T, newStore Factory) {
	t.Helper()
	fixed := func() time.Time { return Clock }

	t.Run("create assigns id and creation date", func(t *testing.T) {
		s := newStore(t, fixed)
		ctx := context.Background()

		a, err := s.Create(ctx, rent())
		require.NoError(t, err)
		b, err := s.Create(ctx, core.ExpenseInput{Title: "Food", Amount: core.NewMoney(60000), DueDate: core.NewDate(2017, 11, 2)})
		require.NoError(t, err)

		assert.NotZero(t, a.ID)
		assert.NotEqual(t, a.ID, b.ID)
		assert.True(t, a.CreationDate.Equal(Clock), "creation date %v", a.CreationDate)
	})

	t.Run("round trip", func(t *testing.T) {
		s := newStore(t, fixed)
		ctx := context.Background()

		created, err := s.Create(ctx, rent())
		require.NoError(t, err)

		got, ok, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Rent", got.Title)
		assert.Equal(t, "500.00", got.Amount.String())
		assert.Equal(t, "11/01/2017", got.DueDate.String())
		assert.True(t, got.CreationDate.Equal(Clock))
	})

	t.Run("create rejects missing fields", func(t *testing.T) {
		s := newStore(t, fixed)
		ctx := context.Background()

		bad := []core.ExpenseInput{
			{Amount: core.NewMoney(100), DueDate: core.NewDate(2017, 11, 1)},
			{Title: "Rent", DueDate: core.NewDate(2017, 11, 1)},
			{Title: "Rent", Amount: core.NewMoney(100)},
		}
		for _, in := range bad {
			_, err := s.Create(ctx, in)
			assert.ErrorIs(t, err, core.ErrValidation)
		}

		all, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("get absent is not an error", func(t *testing.T) {
		s := newStore(t, fixed)
		_, ok, err := s.Get(context.Background(), 999)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("update overwrites mutable fields only", func(t *testing.T) {
		s := newStore(t, fixed)
		ctx := context.Background()

		created, err := s.Create(ctx, rent())
		require.NoError(t, err)

		updated, err := s.Update(ctx, created.ID, core.ExpenseInput{
			Title:   "Rent (November)",
			Amount:  core.NewMoney(52550),
			DueDate: core.NewDate(2017, 11, 3),
		})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.True(t, updated.CreationDate.Equal(created.CreationDate))

		got, ok, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Rent (November)", got.Title)
		assert.Equal(t, int64(52550), got.Amount.Cents)
		assert.Equal(t, "11/03/2017", got.DueDate.String())
		assert.True(t, got.CreationDate.Equal(Clock))
	})

	t.Run("update unknown id never inserts", func(t *testing.T) {
		s := newStore(t, fixed)
		ctx := context.Background()

		_, err := s.Update(ctx, 42, rent())
		assert.ErrorIs(t, err, core.ErrNotFound)

		all, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("update with invalid input leaves record", func(t *testing.T) {
		s := newStore(t, fixed)
		ctx := context.Background()

		created, err := s.Create(ctx, rent())
		require.NoError(t, err)

		_, err = s.Update(ctx, created.ID, core.ExpenseInput{Title: "only a title"})
		assert.ErrorIs(t, err, core.ErrValidation)

		got, _, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Rent", got.Title)
	})

	t.Run("delete then get is absent", func(t *testing.T) {
		s := newStore(t, fixed)
		ctx := context.Background()

		created, err := s.Create(ctx, rent())
		require.NoError(t, err)
		require.NoError(t, s.Delete(ctx, created.ID))

		_, ok, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		assert.ErrorIs(t, s.Delete(ctx, created.ID), core.ErrNotFound)
	})

	t.Run("list all returns every record", func(t *testing.T) {
		s := newStore(t, fixed)
		ctx := context.Background()

		seeded, err := storage.Seed(ctx, s, storage.SampleExpenses())
		require.NoError(t, err)

		all, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, len(seeded))

		titles := make([]string, 0, len(all))
		for _, e := range all {
			titles = append(titles, e.Title)
		}
		assert.ElementsMatch(t, []string{"Rent", "Phone Bill", "Food", "Car", "Internet"}, titles)
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t, fixed)
		assert.NoError(t, s.Ping(context.Background()))
	})
}

func rent() core.ExpenseInput {
	return core.ExpenseInput{Title: "Rent", Amount: core.NewMoney(50000), DueDate: core.NewDate(2017, 11, 1)}
}
