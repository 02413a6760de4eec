package budget

import (
	"github.com/shopspring/decimal"
	"github.com/warp/cashflow-engine/generic"
)

// Effect is one bucket of a breakdown: what changed inside it, the balance
// at its end, and which event occurrences did it.
type Effect struct {
	Date        generic.TimePoint
	Change      decimal.Decimal
	TotalAmount decimal.Decimal
	References  []generic.EventID
}

func newEffect(date generic.TimePoint, total decimal.Decimal) *Effect {
	return &Effect{
		Date:        date,
		Change:      decimal.Zero,
		TotalAmount: total,
		References:  []generic.EventID{},
	}
}

// Apply adds delta to both the bucket's change and its running total.
func (e *Effect) Apply(delta decimal.Decimal) {
	e.Change = e.Change.Add(delta)
	e.TotalAmount = e.TotalAmount.Add(delta)
}

// Link records that an occurrence contributed to this bucket.
func (e *Effect) Link(id generic.EventID) {
	e.References = append(e.References, id)
}

// Continue opens the next bucket at date, carrying the total forward.
func (e *Effect) Continue(date generic.TimePoint) *Effect {
	return newEffect(date, e.TotalAmount)
}
