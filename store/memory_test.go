package store_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashflow-engine/budget"
	"github.com/warp/cashflow-engine/generic"
	"github.com/warp/cashflow-engine/store"
)

func TestMemory_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	reg := store.NewMemory()

	rec, err := reg.Create(ctx, "household", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, generic.BudgetName("household"), rec.Name)
	assert.Equal(t, "100", rec.Budget.OpeningBalance().String())

	got, err := reg.Get(ctx, "household")
	require.NoError(t, err)
	assert.Same(t, rec.Budget, got.Budget)

	require.NoError(t, reg.Delete(ctx, "household"))
	_, err = reg.Get(ctx, "household")
	assert.ErrorIs(t, err, generic.ErrBudgetNotFound)
	assert.True(t, generic.IsNotFound(reg.Delete(ctx, "household")))
}

func TestMemory_DuplicateName(t *testing.T) {
	ctx := context.Background()
	reg := store.NewMemory()

	_, err := reg.Create(ctx, "household", decimal.Zero)
	require.NoError(t, err)

	_, err = reg.Create(ctx, "household", decimal.Zero)
	assert.ErrorIs(t, err, generic.ErrDuplicateBudget)
	assert.True(t, generic.IsConflict(err))
}

func TestMemory_ListSortedByName(t *testing.T) {
	ctx := context.Background()
	reg := store.NewMemory()
	for _, name := range []generic.BudgetName{"travel", "household", "savings"} {
		_, err := reg.Create(ctx, name, decimal.Zero)
		require.NoError(t, err)
	}

	recs, err := reg.List(ctx)
	require.NoError(t, err)

	var names []generic.BudgetName
	for _, r := range recs {
		names = append(names, r.Name)
	}
	assert.Equal(t, []generic.BudgetName{"household", "savings", "travel"}, names)
}

func TestMemory_DefaultsApplyToNewBudgets(t *testing.T) {
	ctx := context.Background()
	reg := store.NewMemory(budget.WithDefaultStep(generic.IntervalMonth))

	rec, err := reg.Create(ctx, "household", decimal.Zero)
	require.NoError(t, err)

	effects, err := rec.Budget.Breakdown("", generic.MustParseTimePoint("2023-01-01"), generic.MustParseTimePoint("2023-04-01"))
	require.NoError(t, err)
	assert.Len(t, effects, 3)
}
