// Package events provides a small typed in-process event bus for daemon
// orchestration. It is intentionally not durable: control-flow signals only.
package events

import (
	"context"
	"reflect"
	"sync"

	pwerrors "git.home.luguber.info/inful/pointwatch/internal/errors"
)

// Bus routes published events to typed subscribers.
//
// Publish blocks until every matching subscriber has accepted the event or
// the context is canceled; Close closes all subscription channels.
type Bus struct {
	mu     sync.RWMutex
	subs   map[reflect.Type]map[uint64]func(ctx context.Context, evt any) error
	closes map[uint64]func()
	nextID uint64
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs:   make(map[reflect.Type]map[uint64]func(ctx context.Context, evt any) error),
		closes: make(map[uint64]func()),
	}
}

// Subscribe registers a subscription for events of concrete type T and
// returns the receive channel plus an unsubscribe func.
func Subscribe[T any](b *Bus, buffer int) (<-chan T, func()) {
	eventType := reflect.TypeFor[T]()
	ch := make(chan T, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch, func() {}
	}

	b.nextID++
	id := b.nextID

	var closeOnce sync.Once
	closeCh := func() { closeOnce.Do(func() { close(ch) }) }

	if b.subs[eventType] == nil {
		b.subs[eventType] = make(map[uint64]func(ctx context.Context, evt any) error)
	}
	b.subs[eventType][id] = func(ctx context.Context, evt any) error {
		v, ok := evt.(T)
		if !ok {
			return pwerrors.InternalError("event type mismatch").
				WithContext("expected", eventType.String())
		}
		select {
		case ch <- v:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	b.closes[id] = closeCh

	var unsubOnce sync.Once
	unsubscribe := func() {
		unsubOnce.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if typeSubs, ok := b.subs[eventType]; ok {
				delete(typeSubs, id)
				if len(typeSubs) == 0 {
					delete(b.subs, eventType)
				}
			}
			delete(b.closes, id)
			closeCh()
		})
	}
	return ch, unsubscribe
}

// Publish delivers an event to all subscribers of its concrete type.
func (b *Bus) Publish(ctx context.Context, evt any) error {
	if evt == nil {
		return pwerrors.ValidationError("event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return pwerrors.DaemonError("event bus is closed")
	}
	var targets []func(ctx context.Context, evt any) error
	for _, send := range b.subs[reflect.TypeOf(evt)] {
		targets = append(targets, send)
	}
	b.mu.RUnlock()

	for _, send := range targets {
		if err := send(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the bus and all subscription channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, closeCh := range b.closes {
		closeCh()
	}
	b.subs = make(map[reflect.Type]map[uint64]func(ctx context.Context, evt any) error)
	b.closes = make(map[uint64]func())
}
