package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventComplete EventType = "complete"
	EventUpdate   EventType = "update"
	EventStep     EventType = "step"
	EventCycle    EventType = "cycle"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// CompletionEvent reports one reconciliation of a document.
type CompletionEvent struct {
	EventBase
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// UpdateEvent reports an edge update applied to the state.
type UpdateEvent struct {
	EventBase
	Edge    Path           `json:"edge"`
	Kind    string         `json:"kind"`
	Time    float64        `json:"time"`
	Update  map[string]any `json:"update,omitempty"`
	IsError bool           `json:"is_error,omitempty"`
}

// CycleEvent reports that the simulation clock advanced.
type CycleEvent struct {
	EventBase
	Time float64 `json:"time"`
}

// LifecycleHooks defines callbacks for builder and runtime observability.
// Nil hooks are skipped.
type LifecycleHooks struct {
	OnComplete func(context.Context, *CompletionEvent)
	OnUpdate   func(context.Context, *UpdateEvent)
	OnCycle    func(context.Context, *CycleEvent)
}

// NewEventBase stamps an event of the given type.
func NewEventBase(t EventType) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t}
}
