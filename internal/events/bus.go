// Package events is a small in-process publish/subscribe bus used to
// decouple query execution from history recording.
package events

import (
	"errors"
	"sync"

	eventbus "github.com/asaskevich/EventBus"

	"github.com/user/llmbench/pkg/logger"
)

const (
	TopicResultCompleted     = "result.completed"
	TopicComparisonCompleted = "comparison.completed"
	TopicAgentAnswered       = "agent.answered"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("event bus is closed")

// Bus publishes events to topic subscribers.
type Bus interface {
	Publish(topic string, data any) error
	Subscribe(topic string, handler any) error
	SubscribeAsync(topic string, handler any) error
	Unsubscribe(topic string, handler any) error
	WaitAsync()
	Close() error
}

type bus struct {
	bus    eventbus.Bus
	log    *logger.Logger
	mu     sync.RWMutex
	closed bool
}

// New creates an event bus.
func New(log *logger.Logger) Bus {
	if log == nil {
		log = logger.NewNop()
	}
	return &bus{
		bus: eventbus.New(),
		log: log.WithComponent("events"),
	}
}

func (b *bus) Publish(topic string, data any) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}
	b.log.Debugw("publishing event", "topic", topic)
	b.bus.Publish(topic, data)
	return nil
}

func (b *bus) Subscribe(topic string, handler any) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}
	b.log.Debugw("subscribing", "topic", topic)
	return b.bus.Subscribe(topic, handler)
}

// SubscribeAsync registers a handler that runs on its own goroutine.
// Handlers for the same topic are serialized.
func (b *bus) SubscribeAsync(topic string, handler any) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}
	b.log.Debugw("subscribing async", "topic", topic)
	return b.bus.SubscribeAsync(topic, handler, true)
}

func (b *bus) Unsubscribe(topic string, handler any) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}
	return b.bus.Unsubscribe(topic, handler)
}

// WaitAsync blocks until all async handlers have finished.
func (b *bus) WaitAsync() {
	b.bus.WaitAsync()
}

// Close drains async handlers. Later calls are no-ops.
func (b *bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.bus.WaitAsync()
	b.log.Debugw("event bus closed")
	return nil
}
