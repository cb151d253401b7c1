package notification

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domorder "github.com/obrador/storefront/internal/domain/order"
	domoutbox "github.com/obrador/storefront/internal/domain/outbox"
	"github.com/obrador/storefront/internal/observability"
)

type captureDispatcher struct {
	mu       sync.Mutex
	messages []Message
}

func (d *captureDispatcher) Dispatch(_ context.Context, m Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, m)
	return nil
}

// syncSubscriber invokes handlers inline, no bus goroutine involved.
type syncSubscriber struct {
	handlers map[string][]domoutbox.Handler
}

func newSyncSubscriber() *syncSubscriber {
	return &syncSubscriber{handlers: map[string][]domoutbox.Handler{}}
}

func (s *syncSubscriber) Subscribe(name string, h domoutbox.Handler) {
	s.handlers[name] = append(s.handlers[name], h)
}

func (s *syncSubscriber) emit(t *testing.T, e domoutbox.Event) {
	t.Helper()
	for _, h := range s.handlers[e.EventName()] {
		require.NoError(t, h(context.Background(), e))
	}
}

func TestWorkerNotifiesOfflineOrders(t *testing.T) {
	sub := newSyncSubscriber()
	dispatcher := &captureDispatcher{}
	NewWorker(sub, dispatcher, observability.Nop()).Start()

	orderID := uuid.New()
	sub.emit(t, domorder.CreatedEvent{
		OrderID:       orderID,
		BuyerID:       uuid.New(),
		Total:         decimal.RequireFromString("25.45"),
		PaymentMethod: domorder.MethodTransfer,
	})

	require.Len(t, dispatcher.messages, 1)
	assert.Equal(t, "payment_instructions", dispatcher.messages[0].Subject)
	assert.Equal(t, orderID, dispatcher.messages[0].OrderID)
}

func TestWorkerSkipsCardOrders(t *testing.T) {
	sub := newSyncSubscriber()
	dispatcher := &captureDispatcher{}
	NewWorker(sub, dispatcher, observability.Nop()).Start()

	sub.emit(t, domorder.CreatedEvent{
		OrderID:       uuid.New(),
		PaymentMethod: domorder.MethodCard,
	})

	assert.Empty(t, dispatcher.messages)
}

func TestWorkerNotifiesPaymentConfirmed(t *testing.T) {
	sub := newSyncSubscriber()
	dispatcher := &captureDispatcher{}
	NewWorker(sub, dispatcher, observability.Nop()).Start()

	sub.emit(t, domorder.PaymentConfirmedEvent{
		OrderID: uuid.New(),
		Total:   decimal.RequireFromString("22.90"),
	})

	require.Len(t, dispatcher.messages, 1)
	assert.Equal(t, "payment_received", dispatcher.messages[0].Subject)
}
