// Package shared contains common domain types and events
// that are used across all domain packages.
package shared

import (
	"context"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents a completed mutation of the
// gradebook; all of them invalidate the published widget snapshot.
const (
	// Subject events
	EventSubjectCreated EventType = "gradebook.subject_created"
	EventSubjectUpdated EventType = "gradebook.subject_updated"
	EventSubjectDeleted EventType = "gradebook.subject_deleted"

	// Grade events
	EventGradeRecorded EventType = "gradebook.grade_recorded"
	EventGradeDeleted  EventType = "gradebook.grade_deleted"

	// Final grade events
	EventFinalGradeSet     EventType = "gradebook.final_grade_set"
	EventFinalGradeRemoved EventType = "gradebook.final_grade_removed"

	// Settings events
	EventGradingSystemChanged EventType = "settings.grading_system_changed"
	EventPeriodSelected       EventType = "settings.period_selected"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

// EventHandler processes a single domain event.
type EventHandler func(ctx context.Context, event Event) error

// EventBus dispatches domain events to subscribed handlers.
type EventBus interface {
	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error

	// Publish dispatches an event to all matching handlers.
	Publish(ctx context.Context, event Event) error
}
