package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	PromoCreated        = "promo.created"
	PromoRedeemed       = "promo.redeemed"
	PromoDeleted        = "promo.deleted"
	ExpenseSubmitted    = "expense.submitted"
	ExpenseAdvanced     = "expense.advanced"
	ExpenseDeleted      = "expense.deleted"
	SalesPersonCreated  = "salesperson.created"
	SalesPersonDeleted  = "salesperson.deleted"
	CustomerCreated     = "customer.created"
	CustomerDeleted     = "customer.deleted"
	CustomerPromoLinked = "customer.promo_linked"
)

// RecordEventTypes lists every event that describes a row mutation.
var RecordEventTypes = []string{
	PromoCreated, PromoRedeemed, PromoDeleted,
	ExpenseSubmitted, ExpenseAdvanced, ExpenseDeleted,
	SalesPersonCreated, SalesPersonDeleted,
	CustomerCreated, CustomerDeleted, CustomerPromoLinked,
}

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Change holds the before and after value of one field.
type Change struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// RecordEvent describes a committed mutation of a single row.
type RecordEvent struct {
	BaseEvent
	Table       string            `json:"table"`
	RecordID    string            `json:"record_id"`
	Action      Action            `json:"action"`
	PerformedBy string            `json:"performed_by"`
	Diff        map[string]Change `json:"diff,omitempty"`
}

func (e RecordEvent) Payload() interface{} {
	return e
}

func NewRecordEvent(eventType, table, recordID string, action Action, performedBy string, diff map[string]Change) RecordEvent {
	return RecordEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now().UTC(),
		},
		Table:       table,
		RecordID:    recordID,
		Action:      action,
		PerformedBy: performedBy,
		Diff:        diff,
	}
}
