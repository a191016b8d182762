package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted between two calls to
// Pump are delivered by the second one, so handlers never observe an event
// emitted during their own dispatch round.
type Bus struct {
	mu       sync.Mutex // protects back buffer and handler registration
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	order    []reflect.Type
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]any),
	}
}

// Emit queues an event into the back buffer. Safe to call from any goroutine.
func Emit[T any](b *Bus, event T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.mu.Lock()
	b.back[t] = append(b.back[t], event)
	b.order = append(b.order, t)
	b.mu.Unlock()
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], fn)
}

// Pump swaps buffers and delivers the queued events in emission order.
// It returns the number of events delivered.
func (b *Bus) Pump() int {
	b.mu.Lock()
	b.front, b.back = b.back, b.front
	order := b.order
	b.order = nil
	handlers := make(map[reflect.Type][]any, len(b.handlers))
	for t, hs := range b.handlers {
		handlers[t] = hs
	}
	b.mu.Unlock()

	cursor := make(map[reflect.Type]int, len(b.front))
	for _, t := range order {
		ev := b.front[t][cursor[t]]
		cursor[t]++
		for _, h := range handlers[t] {
			callHandler(h, ev)
		}
	}
	for k := range b.front {
		b.front[k] = b.front[k][:0]
	}
	return len(order)
}

// Pending reports how many events are waiting for the next Pump.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}

func callHandler(handler any, event any) {
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
}
