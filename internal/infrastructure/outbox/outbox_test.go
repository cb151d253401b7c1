package outbox

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domain "github.com/obrador/storefront/internal/domain/outbox"
	"github.com/obrador/storefront/internal/observability"
)

type testEvent struct{ name string }

func (e testEvent) EventName() string { return e.name }

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus(observability.Nop())
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})

	bus.Subscribe("order.created", func(_ context.Context, e domain.Event) error {
		mu.Lock()
		got = append(got, e.EventName())
		mu.Unlock()
		close(done)
		return nil
	})

	assert.NoError(t, bus.Publish(context.Background(), testEvent{name: "order.created"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"order.created"}, got)
}

func TestBusSurvivesHandlerPanic(t *testing.T) {
	bus := NewBus(observability.Nop())
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	delivered := make(chan struct{})
	bus.Subscribe("boom", func(context.Context, domain.Event) error {
		panic("handler exploded")
	})
	bus.Subscribe("after", func(context.Context, domain.Event) error {
		close(delivered)
		return nil
	})

	assert.NoError(t, bus.Publish(context.Background(), testEvent{name: "boom"}))
	assert.NoError(t, bus.Publish(context.Background(), testEvent{name: "after"}))

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("bus stopped dispatching after a panic")
	}
}

func TestBusIgnoresNilEvent(t *testing.T) {
	bus := NewBus(observability.Nop())
	assert.NoError(t, bus.Publish(context.Background(), nil))
}

// Shutdown races publishers in practice: a handler or request goroutine may
// still be publishing while the bus is being stopped. Neither the late sends
// nor a second Stop may panic.
func TestBusPublishDuringAndAfterStop(t *testing.T) {
	bus := NewBus(observability.Nop())
	bus.Start(context.Background())

	const publishers = 8
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 100; j++ {
				_ = bus.Publish(context.Background(), testEvent{name: "order.created"})
			}
		}()
	}

	close(start)
	bus.Stop(context.Background())
	wg.Wait()

	assert.NoError(t, bus.Publish(context.Background(), testEvent{name: "order.created"}))
	bus.Stop(context.Background())
}
