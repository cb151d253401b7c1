package outbox

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	domain "github.com/obrador/storefront/internal/domain/outbox"
	"github.com/obrador/storefront/internal/observability"
)

const (
	queueSize      = 1024
	fanoutCap      = 8
	handlerTimeout = 30 * time.Second
)

// Bus is an in-process event bus: buffered queue, one dispatch loop, bounded
// per-event fanout. Events are not persisted; a restart drops anything still
// queued, which is acceptable because every subscriber performs best-effort
// work (notifications) that the order workflow does not depend on.
type Bus struct {
	mu        sync.RWMutex
	handlers  map[string][]domain.Handler
	queue     chan domain.Event
	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	log       observability.Logger
	published observability.Counter
	dropped   observability.Counter
}

func NewBus(obs observability.Observability) *Bus {
	return &Bus{
		handlers:  make(map[string][]domain.Handler),
		queue:     make(chan domain.Event, queueSize),
		log:       obs.Logger().With(observability.F("component", "outbox")),
		published: obs.Metrics().Counter("outbox_events_published_total", "Events accepted onto the outbox queue.", "event"),
		dropped:   obs.Metrics().Counter("outbox_events_dropped_total", "Events discarded with no subscriber.", "event"),
	}
}

func (b *Bus) Subscribe(eventName string, h domain.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		loop, cancel := context.WithCancel(ctx)
		b.cancel = cancel
		go b.run(loop)
		b.log.Info("event_bus_started")
	})
}

// Stop halts dispatch through the loop context. The queue channel is left
// open on purpose: closing it would let a concurrent Publish panic on a
// closed channel, while a send after Stop just parks in the buffer and is
// dropped with the process.
func (b *Bus) Stop(ctx context.Context) {
	_ = ctx
	b.stopOnce.Do(func() {
		if b.cancel != nil {
			b.cancel()
		}
		b.log.Info("event_bus_stopped")
	})
}

func (b *Bus) Publish(ctx context.Context, e domain.Event) error {
	if e == nil {
		return nil
	}
	select {
	case b.queue <- e:
		b.published.Add(1, observability.L("event", e.EventName()))
		return nil
	case <-ctx.Done():
		observability.LoggerFrom(ctx, b.log).Warn("event_enqueue_aborted",
			observability.F("event", e.EventName()),
			observability.F("error", ctx.Err()),
		)
		return ctx.Err()
	}
}

func (b *Bus) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-b.queue:
			b.fanout(ctx, e)
		}
	}
}

func (b *Bus) fanout(ctx context.Context, e domain.Event) {
	name := e.EventName()

	b.mu.RLock()
	handlers := append([]domain.Handler(nil), b.handlers[name]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.dropped.Add(1, observability.L("event", name))
		return
	}

	// Handlers must finish even if the publisher's request context is gone.
	ctx = context.WithoutCancel(ctx)
	logger := b.log.With(observability.F("event", name))

	sem := make(chan struct{}, fanoutCap)
	var wg sync.WaitGroup

	for _, h := range handlers {
		sem <- struct{}{}
		wg.Add(1)
		go func(h domain.Handler) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event_handler_panic",
						observability.F("panic", r),
						observability.F("stack", string(debug.Stack())),
					)
				}
				<-sem
				wg.Done()
			}()

			hctx, cancel := context.WithTimeout(ctx, handlerTimeout)
			hctx = observability.ContextWithLogger(hctx, logger)
			defer cancel()

			if err := h(hctx, e); err != nil {
				logger.Warn("event_handler_error", observability.F("error", err))
			}
		}(h)
	}

	wg.Wait()
}
