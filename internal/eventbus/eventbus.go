package eventbus

import (
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	"catalogadmin/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventResourceChanged = domain.EventResourceChanged
	EventLoginSucceeded  = domain.EventLoginSucceeded
	EventLoggedOut       = domain.EventLoggedOut
	EventError           = domain.EventError
	EventConfigSaved     = domain.EventConfigSaved
)

// Re-export domain event types
type ResourceChangedEvent = domain.ResourceChangedEvent
type LoginSucceededEvent = domain.LoginSucceededEvent
type LoggedOutEvent = domain.LoggedOutEvent
type ErrorEvent = domain.ErrorEvent
type ConfigSavedEvent = domain.ConfigSavedEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	Close()
}

type subscription struct {
	id      int
	handler EventHandler
}

// bus is the concrete implementation of EventBus
type bus struct {
	mu        sync.RWMutex
	handlers  map[EventType][]subscription
	nextID    int
	eventChan chan DomainEvent
	wg        sync.WaitGroup
	quit      chan struct{}
	closeOnce sync.Once
	lggr      *zap.SugaredLogger
}

// New creates a new event bus
func New(lggr *zap.SugaredLogger) EventBus {
	if lggr == nil {
		lggr = zap.NewNop().Sugar()
	}
	b := &bus{
		handlers:  make(map[EventType][]subscription),
		eventChan: make(chan DomainEvent, 256),
		quit:      make(chan struct{}),
		lggr:      lggr.Named("eventbus"),
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish queues an event for all subscribers. It never blocks; when the
// queue is full the event is dropped.
func (b *bus) Publish(event DomainEvent) {
	b.lggr.Debugw("publishing event", "type", event.Type())

	select {
	case <-b.quit:
		b.lggr.Debugw("bus closed, dropping event", "type", event.Type())
	case b.eventChan <- event:
	default:
		b.lggr.Warnw("event bus channel full, dropping event", "type", event.Type())
	}
}

// Subscribe subscribes to events of a specific type.
// Returns an unsubscribe function; calling it more than once is harmless.
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close stops dispatching and waits for the dispatcher to exit. Events
// still queued are discarded.
func (b *bus) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
	})
	b.wg.Wait()
}

// dispatch handles event distribution to subscribers
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			// Copy so handlers run without holding the lock
			b.mu.RLock()
			subs := make([]subscription, len(b.handlers[event.Type()]))
			copy(subs, b.handlers[event.Type()])
			b.mu.RUnlock()

			for _, s := range subs {
				// Handlers run concurrently so a slow one cannot stall the bus
				go func(h EventHandler, event DomainEvent) {
					defer func() {
						if r := recover(); r != nil {
							b.lggr.Errorw("event handler panic", "type", event.Type(), "panic", r, "stack", string(debug.Stack()))
						}
					}()
					h(event)
				}(s.handler, event)
			}

		case <-b.quit:
			for {
				select {
				case <-b.eventChan:
				default:
					return
				}
			}
		}
	}
}
