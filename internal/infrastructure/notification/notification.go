// Package notification delivers buyer-facing messages for order lifecycle
// events. Delivery is best effort: a failed or dropped message never affects
// the order itself.
package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domorder "github.com/obrador/storefront/internal/domain/order"
	domoutbox "github.com/obrador/storefront/internal/domain/outbox"
	"github.com/obrador/storefront/internal/observability"
)

// Message is one outbound notification, channel-agnostic.
type Message struct {
	BuyerID uuid.UUID
	OrderID uuid.UUID
	Subject string
	Total   decimal.Decimal
}

// Dispatcher sends a message over a concrete channel (mail, SMS, webhook).
type Dispatcher interface {
	Dispatch(ctx context.Context, m Message) error
}

// LogDispatcher writes notifications to the log instead of sending them.
// It is the default channel for local runs and tests.
type LogDispatcher struct {
	log observability.Logger
}

func NewLogDispatcher(obs observability.Observability) *LogDispatcher {
	return &LogDispatcher{log: obs.Logger().With(observability.F("component", "notification_dispatcher"))}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, m Message) error {
	observability.LoggerFrom(ctx, d.log).Info("notification_dispatched",
		observability.F("buyer_id", m.BuyerID),
		observability.F("order_id", m.OrderID),
		observability.F("subject", m.Subject),
		observability.F("total", m.Total),
	)
	return nil
}

// Worker subscribes to order events and turns them into messages.
type Worker struct {
	subscriber domoutbox.Subscriber
	dispatcher Dispatcher

	log  observability.Logger
	sent observability.Counter
}

func NewWorker(subscriber domoutbox.Subscriber, dispatcher Dispatcher, obs observability.Observability) *Worker {
	return &Worker{
		subscriber: subscriber,
		dispatcher: dispatcher,
		log:        obs.Logger().With(observability.F("component", "notification_worker")),
		sent: obs.Metrics().Counter("notifications_sent_total",
			"Notifications handed to the dispatcher.", "subject", "outcome"),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.dispatcher == nil {
		return
	}
	w.subscriber.Subscribe(domorder.CreatedEvent{}.EventName(), w.handleOrderCreated)
	w.subscriber.Subscribe(domorder.PaymentConfirmedEvent{}.EventName(), w.handlePaymentConfirmed)
}

func (w *Worker) handleOrderCreated(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domorder.CreatedEvent)
	if !ok {
		return nil
	}

	// Offline methods (cash, transfer) are the ones that need payment
	// instructions up front; card orders are confirmed by the gateway flow.
	if !evt.PaymentMethod.Offline() {
		return nil
	}

	return w.dispatch(ctx, "payment_instructions", Message{
		BuyerID: evt.BuyerID,
		OrderID: evt.OrderID,
		Subject: "payment_instructions",
		Total:   evt.Total,
	})
}

func (w *Worker) handlePaymentConfirmed(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domorder.PaymentConfirmedEvent)
	if !ok {
		return nil
	}

	return w.dispatch(ctx, "payment_received", Message{
		OrderID: evt.OrderID,
		Subject: "payment_received",
		Total:   evt.Total,
	})
}

func (w *Worker) dispatch(ctx context.Context, subject string, m Message) error {
	if err := w.dispatcher.Dispatch(ctx, m); err != nil {
		w.sent.Add(1, observability.L("subject", subject), observability.L("outcome", "error"))
		observability.LoggerFrom(ctx, w.log).Warn("notification_dispatch_failed",
			observability.F("order_id", m.OrderID),
			observability.F("error", err),
		)
		return err
	}
	w.sent.Add(1, observability.L("subject", subject), observability.L("outcome", "ok"))
	return nil
}
