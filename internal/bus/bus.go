// Package bus implements the external Subscriber-bus collaborator: fan-out
// publication of (tupleID, value) events to registered subscribers. The
// core does not assume delivery ordering between subscribers, only that a
// subscriber registered before Publish begins observes the event.
package bus

import (
	"context"
	"sync"
)

// Subscriber receives published (tupleID, value) events.
type Subscriber interface {
	Notify(ctx context.Context, tupleID int64, value float64)
}

// SubscriberFunc adapts a plain function to a Subscriber.
type SubscriberFunc func(ctx context.Context, tupleID int64, value float64)

// Notify implements Subscriber.
func (f SubscriberFunc) Notify(ctx context.Context, tupleID int64, value float64) {
	f(ctx, tupleID, value)
}

// Bus publishes (tupleID, value) events to its subscribers. Publish only
// carries float64 values: this is the contract, not a temporary limitation.
type Bus interface {
	Subscribe(s Subscriber) (unsubscribe func())
	Publish(ctx context.Context, tupleID int64, value float64) error
}

// InProcess is a mutex-protected, synchronous fan-out Bus: Publish calls
// every currently-registered subscriber directly, in registration order.
type InProcess struct {
	mu          sync.RWMutex
	subscribers []Subscriber
}

// NewInProcess constructs an empty in-process Bus.
func NewInProcess() *InProcess {
	return &InProcess{}
}

// registration gives each Subscribe call a distinct, comparable identity,
// even for non-comparable Subscriber types such as SubscriberFunc.
type registration struct{ Subscriber }

// Subscribe registers s and returns a function that removes it.
func (b *InProcess) Subscribe(s Subscriber) (unsubscribe func()) {
	reg := &registration{Subscriber: s}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, reg)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, sub := range b.subscribers {
			if sub == Subscriber(reg) {
				b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Publish notifies every subscriber registered at the time Publish begins.
func (b *InProcess) Publish(ctx context.Context, tupleID int64, value float64) error {
	b.mu.RLock()
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, s := range subs {
		s.Notify(ctx, tupleID, value)
	}
	return nil
}

var _ Bus = (*InProcess)(nil)
