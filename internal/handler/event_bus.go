// internal/handler/event_bus.go
package handler

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"dmx-service/internal/dmx"
	"dmx-service/internal/utils"
)

// EventWriterState is published on every DMX writer state transition
const EventWriterState = "writer.state"

// EventBus manages event distribution
type EventBus struct {
	subscribers map[string][]chan Event
	events      chan Event
	mutex       sync.RWMutex
	logger      *zap.Logger
	closeOnce   sync.Once
	closed      chan struct{}
}

// Event represents a system event
type Event struct {
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEventBus creates a new event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string][]chan Event),
		events:      make(chan Event, 1000),
		logger:      logger.With(zap.String("component", "event-bus")),
		closed:      make(chan struct{}),
	}
}

// Start distributes published events until Stop is called
func (eb *EventBus) Start() {
	for {
		select {
		case event := <-eb.events:
			eb.distributeEvent(event)
		case <-eb.closed:
			eb.closeSubscribers()
			return
		}
	}
}

// Stop stops distribution and closes every subscriber channel
func (eb *EventBus) Stop() {
	eb.closeOnce.Do(func() { close(eb.closed) })
}

// Publish publishes an event
func (eb *EventBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case eb.events <- event:
	default:
		eb.logger.Warn("Event bus full, dropping event",
			zap.String("event_type", event.Type),
		)
	}
}

// Subscribe subscribes to events of a specific type
func (eb *EventBus) Subscribe(eventType string) <-chan Event {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subscriber := make(chan Event, 100)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
	return subscriber
}

// Unsubscribe removes and closes a subscription
func (eb *EventBus) Unsubscribe(eventType string, subscription <-chan Event) {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subscribers := eb.subscribers[eventType]
	for i, subscriber := range subscribers {
		if subscriber == subscription {
			eb.subscribers[eventType] = append(subscribers[:i], subscribers[i+1:]...)
			close(subscriber)
			return
		}
	}
}

// distributeEvent distributes an event to subscribers
func (eb *EventBus) distributeEvent(event Event) {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()

	for _, subscriber := range eb.subscribers[event.Type] {
		select {
		case subscriber <- event:
		default:
			eb.logger.Debug("Subscriber is slow, skipping event",
				zap.String("event_type", event.Type),
			)
		}
	}
}

func (eb *EventBus) closeSubscribers() {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	for eventType, subscribers := range eb.subscribers {
		for _, subscriber := range subscribers {
			close(subscriber)
		}
		delete(eb.subscribers, eventType)
	}
}

// WriterStateListener publishes writer state changes on the bus and logs them
func WriterStateListener(bus *EventBus, logger *utils.ServiceLogger) dmx.StateListener {
	return func(status dmx.Status) {
		port := status.OpenedPort
		if port == "" {
			port = status.DesiredPort
		}
		logger.LogWriterState(status.State.String(), port, status.Faults, status.LastError)

		bus.Publish(Event{
			Type:      EventWriterState,
			Source:    "dmx-writer",
			Data:      status,
			Timestamp: status.UpdatedAt,
		})
	}
}
