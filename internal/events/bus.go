package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Reactor reacts to payment events. Errors are logged by the bus and go no further.
// The bus identifies a reactor by its Name, so names must be unique per bus.
type Reactor interface {
	Name() string
	OnPaymentEvent(ctx context.Context, event PaymentEvent) error
}

// PaymentBus is an in-process one-to-many notifier.
type PaymentBus struct {
	mu       sync.RWMutex
	reactors []Reactor
}

// NewPaymentBus creates a bus with no reactors.
func NewPaymentBus() *PaymentBus {
	return &PaymentBus{}
}

// Register adds r. Registering a name that is already present is a no-op.
func (b *PaymentBus) Register(r Reactor) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.indexOf(r.Name()) >= 0 {
		log.Debug().Str("reactor", r.Name()).Msg("reactor already registered")
		return
	}
	b.reactors = append(b.reactors, r)
}

// Unregister removes the reactor registered under r's name. Removing a
// reactor that is not registered is a no-op.
func (b *PaymentBus) Unregister(r Reactor) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i := b.indexOf(r.Name()); i >= 0 {
		b.reactors = append(b.reactors[:i:i], b.reactors[i+1:]...)
	}
}

func (b *PaymentBus) indexOf(name string) int {
	for i, existing := range b.reactors {
		if existing.Name() == name {
			return i
		}
	}
	return -1
}

// Len returns the number of registered reactors.
func (b *PaymentBus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.reactors)
}

// Notify runs every registered reactor in its own goroutine and waits for all
// of them. A reactor error or panic is logged and never reaches the caller or
// the other reactors. There is no retry.
func (b *PaymentBus) Notify(ctx context.Context, event PaymentEvent) {
	b.mu.RLock()
	reactors := make([]Reactor, len(b.reactors))
	copy(reactors, b.reactors)
	b.mu.RUnlock()

	if len(reactors) == 0 {
		log.Debug().Str("event", string(event.Type)).Msg("no reactors registered")
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(reactors))
	for _, r := range reactors {
		go func(r Reactor) {
			defer wg.Done()
			if err := runReactor(ctx, r, event); err != nil {
				log.Error().
					Err(err).
					Str("reactor", r.Name()).
					Str("event", string(event.Type)).
					Str("order_id", event.Payload.OrderID).
					Msg("reactor failed")
			}
		}(r)
	}
	wg.Wait()
}

func runReactor(ctx context.Context, r Reactor, event PaymentEvent) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return r.OnPaymentEvent(ctx, event)
}
