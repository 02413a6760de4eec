/*
Package generic provides the domain-agnostic building blocks of the cashflow
engine.

PURPOSE:
  Everything the projection engine needs that is not about money flows
  itself: a calendar date type with the relational predicates the engine
  compares with, the closed set of step intervals, a comparator-driven
  binary heap, identifiers and their source, and the shared error types.

KEY CONCEPTS:
  - TimePoint: a UTC calendar date; all comparisons go through its methods
  - Interval: "1 day", "1 week", "1 month" (anything else means "1 day")
  - Heap[T]: priority queue with an injected three-way comparator
  - EventID / IDSource: opaque identifiers, UUID-backed by default

DESIGN PRINCIPLES:
  1. Precision: amounts are decimal.Decimal, never float64
  2. Soft failure: unknown intervals normalize, empty pops report !ok
  3. Explicit errors: invalid ranges are the only hard failure

SEE ALSO:
  - budget/budget.go: the engine built on these types
  - errors.go: sentinel and structured errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNTS
// =============================================================================

// NewAmountFromInt returns a whole-unit amount.
func NewAmountFromInt(value int) decimal.Decimal {
	return decimal.NewFromInt(int64(value))
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EventID string

type BudgetName string
