package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatedEvent is emitted after an order is committed. The notification
// dispatcher consumes it to greet the buyer; delivery is fire-and-forget.
type CreatedEvent struct {
	OrderID       uuid.UUID
	BuyerID       uuid.UUID
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	OccurredAt    time.Time
}

func (CreatedEvent) EventName() string { return "order.created" }

func NewCreatedEvent(o *Order) CreatedEvent {
	return CreatedEvent{
		OrderID:       o.ID,
		BuyerID:       o.BuyerID,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
		OccurredAt:    time.Now().UTC(),
	}
}

// PaymentConfirmedEvent is emitted after a successful pending -> paid
// transition, once all side effects have been attempted.
type PaymentConfirmedEvent struct {
	OrderID    uuid.UUID
	Total      decimal.Decimal
	OccurredAt time.Time
}

func (PaymentConfirmedEvent) EventName() string { return "order.payment_confirmed" }

func NewPaymentConfirmedEvent(o *Order) PaymentConfirmedEvent {
	return PaymentConfirmedEvent{
		OrderID:    o.ID,
		Total:      o.Total,
		OccurredAt: time.Now().UTC(),
	}
}
