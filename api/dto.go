/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupled from the
  budget package's types. Amounts leave the API as JSON numbers.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the event factory, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/event.go: EventJSON, the request body for events
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/cashflow-engine/budget"
	"github.com/warp/cashflow-engine/factory"
	"github.com/warp/cashflow-engine/store"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// CreateBudgetRequest is the request to create a budget.
type CreateBudgetRequest struct {
	Name           string          `json:"name"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// BudgetDTO represents a budget in API responses.
type BudgetDTO struct {
	Name           string              `json:"name"`
	OpeningBalance float64             `json:"opening_balance"`
	EventCount     int                 `json:"event_count"`
	CreatedAt      string              `json:"created_at,omitempty"`
	Events         []factory.EventJSON `json:"events,omitempty"`
}

// AddEventsResponse lists the identifiers of submitted events and which of
// them were already registered.
type AddEventsResponse struct {
	IDs        []string `json:"ids"`
	Duplicates []string `json:"duplicates,omitempty"`
}

// EffectDTO is one bucket of a breakdown.
type EffectDTO struct {
	Date        string   `json:"date"`
	Change      float64  `json:"change"`
	TotalAmount float64  `json:"total_amount"`
	References  []string `json:"references"`
}

// BreakdownDTO is the response to a breakdown request.
type BreakdownDTO struct {
	Budget  string      `json:"budget"`
	Step    string      `json:"step"`
	Start   string      `json:"start"`
	End     string      `json:"end"`
	Effects []EffectDTO `json:"effects"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEffectDTO(e budget.Effect) EffectDTO {
	change, _ := e.Change.Float64()
	total, _ := e.TotalAmount.Float64()
	refs := make([]string, len(e.References))
	for i, id := range e.References {
		refs[i] = string(id)
	}
	return EffectDTO{
		Date:        e.Date.String(),
		Change:      change,
		TotalAmount: total,
		References:  refs,
	}
}

func toEffectDTOs(effects []budget.Effect) []EffectDTO {
	dtos := make([]EffectDTO, len(effects))
	for i, e := range effects {
		dtos[i] = toEffectDTO(e)
	}
	return dtos
}

func toBudgetDTO(rec store.Record) BudgetDTO {
	opening, _ := rec.Budget.OpeningBalance().Float64()
	return BudgetDTO{
		Name:           string(rec.Name),
		OpeningBalance: opening,
		EventCount:     rec.Budget.Len(),
		CreatedAt:      rec.CreatedAt.Format(time.RFC3339),
	}
}
