/*
Package factory provides JSON to Go event conversion.

PURPOSE:
  Converts JSON event definitions into budget.Event values. This is how
  events arrive over the API and how fixtures are written in tests.

JSON SCHEMA:
  {
    "id": "salary",             // optional; generated when absent
    "type": "income",           // income | expense
    "amount": 2500,             // number or string, non-negative
    "start_date": "2023-10-01", // YYYY-MM-DD
    "repeat": "1 month"         // optional; "1 day" | "1 week" | "1 month"
  }

VALIDATION:
  Only what the projection needs: a known type, a parseable non-negative
  amount and a parseable date. The repeat value is stored as given; an
  unsupported one repeats daily.

USAGE:
  f := factory.NewEventFactory()
  event, err := f.ParseEvent(`{"type":"expense","amount":50,"start_date":"2023-10-19"}`)

  events, err := f.ParseEvents(jsonArray)

SEE ALSO:
  - budget/event.go: Event type definition
  - api/handlers.go: uses the factory for POST /events
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/cashflow-engine/budget"
	"github.com/warp/cashflow-engine/generic"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// EventJSON is the JSON representation of an event.
type EventJSON struct {
	ID        string          `json:"id,omitempty"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	StartDate string          `json:"start_date"`
	Repeat    string          `json:"repeat,omitempty"`
}

// =============================================================================
// EVENT FACTORY
// =============================================================================

// EventFactory converts JSON events to budget events.
type EventFactory struct {
	IDs generic.IDSource
}

// NewEventFactory creates a factory drawing ids from the default source.
func NewEventFactory() *EventFactory {
	return &EventFactory{IDs: generic.DefaultIDSource}
}

// ParseEvent parses a single JSON object.
func (f *EventFactory) ParseEvent(jsonStr string) (budget.Event, error) {
	var ej EventJSON
	if err := json.Unmarshal([]byte(jsonStr), &ej); err != nil {
		return budget.Event{}, fmt.Errorf("failed to parse event JSON: %w", err)
	}
	return f.FromJSON(ej)
}

// ParseEvents parses a JSON array of events. Nothing is returned unless
// every element is valid.
func (f *EventFactory) ParseEvents(jsonStr string) ([]budget.Event, error) {
	var ejs []EventJSON
	if err := json.Unmarshal([]byte(jsonStr), &ejs); err != nil {
		return nil, fmt.Errorf("failed to parse events JSON: %w", err)
	}
	return f.FromJSONList(ejs)
}

// FromJSONList converts every definition or none.
func (f *EventFactory) FromJSONList(ejs []EventJSON) ([]budget.Event, error) {
	events := make([]budget.Event, 0, len(ejs))
	for i, ej := range ejs {
		e, err := f.FromJSON(ej)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, e)
	}
	return events, nil
}

// FromJSON converts EventJSON to a budget.Event.
func (f *EventFactory) FromJSON(ej EventJSON) (budget.Event, error) {
	kind, err := parseKind(ej.Type)
	if err != nil {
		return budget.Event{}, err
	}

	if ej.Amount.IsNegative() {
		return budget.Event{}, &generic.EventDefinitionError{Field: "amount", Reason: "must not be negative"}
	}

	start, err := generic.ParseTimePoint(ej.StartDate)
	if err != nil {
		return budget.Event{}, &generic.EventDefinitionError{Field: "start_date", Reason: err.Error()}
	}

	ids := f.IDs
	if ids == nil {
		ids = generic.DefaultIDSource
	}
	opts := []budget.EventOption{budget.WithIDSource(ids)}
	if ej.ID != "" {
		opts = append(opts, budget.WithID(generic.EventID(ej.ID)))
	}

	return budget.NewEvent(kind, ej.Amount, start, ej.Repeat, opts...), nil
}

// ToJSON converts an event back to its definition.
func (f *EventFactory) ToJSON(e budget.Event) EventJSON {
	return EventJSON{
		ID:        string(e.ID),
		Type:      string(e.Kind),
		Amount:    e.Amount,
		StartDate: e.StartDate.String(),
		Repeat:    e.RepeatInterval,
	}
}

func parseKind(s string) (budget.Kind, error) {
	switch budget.Kind(s) {
	case budget.KindIncome, budget.KindExpense:
		return budget.Kind(s), nil
	case "":
		return "", &generic.EventDefinitionError{Field: "type", Reason: "required"}
	default:
		return "", &generic.EventDefinitionError{Field: "type", Reason: fmt.Sprintf("unknown type %q", s)}
	}
}

// =============================================================================
// DEFINITION HELPERS
// =============================================================================

// IncomeJSON returns a definition for an income.
func IncomeJSON(amount float64, startDate, repeat string) EventJSON {
	return EventJSON{Type: string(budget.KindIncome), Amount: decimal.NewFromFloat(amount), StartDate: startDate, Repeat: repeat}
}

// ExpenseJSON returns a definition for an expense.
func ExpenseJSON(amount float64, startDate, repeat string) EventJSON {
	return EventJSON{Type: string(budget.KindExpense), Amount: decimal.NewFromFloat(amount), StartDate: startDate, Repeat: repeat}
}
