package budget

import (
	"github.com/shopspring/decimal"
	"github.com/warp/cashflow-engine/generic"
)

// =============================================================================
// EVENT - A one-off or recurring income/expense
// =============================================================================

// Kind tags an event as money in or money out.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Event is immutable once built. Repeat derives a new Event rather than
// advancing this one, since a queue or an Effect may still refer to it.
type Event struct {
	ID        generic.EventID
	Kind      Kind
	Amount    decimal.Decimal
	StartDate generic.TimePoint

	// RepeatInterval is kept as given. Empty means the event happens once;
	// an unsupported value repeats daily.
	RepeatInterval string

	ids generic.IDSource
}

// EventOption customizes event construction.
type EventOption func(*Event)

// WithIDSource makes the event and all of its successors draw ids from src.
func WithIDSource(src generic.IDSource) EventOption {
	return func(e *Event) { e.ids = src }
}

// WithID pins the event's identifier, e.g. one supplied by a client so that
// resubmitting the same definition stays idempotent. Successors still get
// fresh identifiers.
func WithID(id generic.EventID) EventOption {
	return func(e *Event) { e.ID = id }
}

// NewEvent builds an event and assigns its identifier.
func NewEvent(kind Kind, amount decimal.Decimal, start generic.TimePoint, repeat string, opts ...EventOption) Event {
	e := Event{
		Kind:           kind,
		Amount:         amount,
		StartDate:      start,
		RepeatInterval: repeat,
		ids:            generic.DefaultIDSource,
	}
	for _, opt := range opts {
		opt(&e)
	}
	if e.ID == "" {
		e.ID = e.ids.NewID()
	}
	return e
}

func NewIncome(amount decimal.Decimal, start generic.TimePoint, repeat string, opts ...EventOption) Event {
	return NewEvent(KindIncome, amount, start, repeat, opts...)
}

func NewExpense(amount decimal.Decimal, start generic.TimePoint, repeat string, opts ...EventOption) Event {
	return NewEvent(KindExpense, amount, start, repeat, opts...)
}

// SignedAmount is +|amount| for income and -|amount| for expense.
func (e Event) SignedAmount() decimal.Decimal {
	if e.Kind == KindExpense {
		return e.Amount.Abs().Neg()
	}
	return e.Amount.Abs()
}

// IsRecurring reports whether the event has successors at all.
func (e Event) IsRecurring() bool { return e.RepeatInterval != "" }

// Repeat returns the next occurrence with a fresh identity, or false for a
// one-off event.
func (e Event) Repeat() (Event, bool) {
	if !e.IsRecurring() {
		return Event{}, false
	}
	ids := e.ids
	if ids == nil {
		ids = generic.DefaultIDSource
	}
	next := generic.ResolveInterval(e.RepeatInterval).AddTo(e.StartDate)
	return NewEvent(e.Kind, e.Amount, next, e.RepeatInterval, WithIDSource(ids)), true
}

// earliestFirst orders events by ascending start date. Ties are unordered.
func earliestFirst(a, b Event) int {
	switch {
	case a.StartDate.Before(b.StartDate):
		return 1
	case b.StartDate.Before(a.StartDate):
		return -1
	default:
		return 0
	}
}
