package outbox

import "context"

// Event is a named domain event carried through the outbox.
type Event interface {
	EventName() string
}

// Handler consumes one published event. Errors are logged by the bus and
// never propagate back to the publisher.
type Handler func(ctx context.Context, e Event) error

// Publisher enqueues events for asynchronous delivery, outside the primary
// transaction. Publish failures must never roll back the calling workflow.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers by event name.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}
