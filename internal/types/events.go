package types

import "time"

// EventType represents the type of real-time event
type EventType string

const (
	EventRSVPCreated EventType = "rsvp.created"
)

// Event represents a real-time event that can be sent over WebSocket
type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// RSVPCreatedEvent is pushed to an invitation owner when a guest responds
type RSVPCreatedEvent struct {
	InvitationID string `json:"invitation_id"`
	GuestName    string `json:"guest_name"`
	Attending    bool   `json:"attending"`
	GuestCount   int    `json:"guest_count"`
	RespondedAt  string `json:"responded_at"`
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
