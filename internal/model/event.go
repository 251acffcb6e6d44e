package model

import (
	"slices"
	"time"
)

// EventType identifies a domain event.
type EventType string

const (
	EventTypeUserCreated EventType = "user.created"
)

// ValidEventTypes contains all valid event types.
var ValidEventTypes = []EventType{EventTypeUserCreated}

// IsValidEventType checks if an event type is valid.
func IsValidEventType(et EventType) bool {
	return slices.Contains(ValidEventTypes, et)
}

// UserEvent is the payload appended to the user event stream.
type UserEvent struct {
	EventID    string    `json:"event_id"`
	EventType  EventType `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	User       EventUser `json:"user"`
}

// EventUser is the user snapshot carried by a UserEvent.
type EventUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
