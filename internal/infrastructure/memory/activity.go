package memory

import (
	"context"
	"sync"

	"ebridge-portal/internal/domain/entity/activity"
)

// EventLog collects activity events in memory. It serves as both publisher and activity
// repository when no broker is configured.
type EventLog struct {
	mu     sync.Mutex
	events []activity.Event
}

func NewEventLog() *EventLog {
	return &EventLog{}
}

func (l *EventLog) Publish(_ context.Context, event activity.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

func (l *EventLog) AddEvents(_ context.Context, events []activity.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, events...)
	return nil
}

func (l *EventLog) Events() []activity.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]activity.Event, len(l.events))
	copy(out, l.events)
	return out
}

func (l *EventLog) Close() {}
