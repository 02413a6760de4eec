/*
Package store keeps named budgets for the HTTP surface.

PURPOSE:
  The API addresses budgets by name. Memory maps names to live
  *budget.Budget values. Nothing is written to disk: a restart starts empty.

CONCURRENCY:
  The registry map is guarded by a sync.RWMutex. Each Budget guards its own
  events, so handlers can register events and run breakdowns on the same
  budget concurrently without holding the registry lock.

EXAMPLE:
  reg := store.NewMemory()
  rec, err := reg.Create(ctx, "household", decimal.NewFromInt(1200))
  if errors.Is(err, generic.ErrDuplicateBudget) {
      // name taken
  }
  rec.Budget.AddEvent(event)

SEE ALSO:
  - budget/budget.go: the stored value
  - api/handlers.go: the only caller in production
*/
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/cashflow-engine/budget"
	"github.com/warp/cashflow-engine/generic"
)

// Record is a named budget and when it was created.
type Record struct {
	Name      generic.BudgetName
	Budget    *budget.Budget
	CreatedAt time.Time
}

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	budgets map[generic.BudgetName]Record

	// Options applied to every budget this store creates.
	defaults []budget.Option
}

func NewMemory(defaults ...budget.Option) *Memory {
	return &Memory{
		budgets:  make(map[generic.BudgetName]Record),
		defaults: defaults,
	}
}

// Create registers an empty budget under name.
func (m *Memory) Create(_ context.Context, name generic.BudgetName, opening decimal.Decimal) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.budgets[name]; ok {
		return Record{}, fmt.Errorf("%w: %s", generic.ErrDuplicateBudget, name)
	}

	opts := append(append([]budget.Option{}, m.defaults...), budget.WithOpeningBalance(opening))
	rec := Record{
		Name:      name,
		Budget:    budget.New(opts...),
		CreatedAt: time.Now().UTC(),
	}
	m.budgets[name] = rec
	return rec, nil
}

func (m *Memory) Get(_ context.Context, name generic.BudgetName) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.budgets[name]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", generic.ErrBudgetNotFound, name)
	}
	return rec, nil
}

// List returns all budgets ordered by name.
func (m *Memory) List(_ context.Context) ([]Record, error) {
	m.mu.RLock()
	result := make([]Record, 0, len(m.budgets))
	for _, rec := range m.budgets {
		result = append(result, rec)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) Delete(_ context.Context, name generic.BudgetName) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.budgets[name]; !ok {
		return fmt.Errorf("%w: %s", generic.ErrBudgetNotFound, name)
	}
	delete(m.budgets, name)
	return nil
}
