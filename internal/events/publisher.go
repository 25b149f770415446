package events

import (
	"github.com/fihircio/raikan-service/internal/types"
)

// Publisher interface for publishing events
type Publisher interface {
	PublishRSVPCreated(ownerID string, rsvp *types.RSVP) error
}

// EventPublisher implements the Publisher interface
type EventPublisher struct {
	hub WebSocketHub
}

// WebSocketHub interface for the WebSocket hub
type WebSocketHub interface {
	BroadcastToUser(userID string, event *types.Event)
	IsUserConnected(userID string) bool
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(hub WebSocketHub) *EventPublisher {
	return &EventPublisher{
		hub: hub,
	}
}

// PublishRSVPCreated notifies the invitation owner that a guest responded.
func (p *EventPublisher) PublishRSVPCreated(ownerID string, rsvp *types.RSVP) error {
	// Only send if the owner's dashboard is connected
	if !p.hub.IsUserConnected(ownerID) {
		return nil
	}

	eventData := &types.RSVPCreatedEvent{
		InvitationID: rsvp.InvitationID,
		GuestName:    rsvp.GuestName,
		Attending:    rsvp.Attending,
		GuestCount:   rsvp.GuestCount,
		RespondedAt:  rsvp.CreatedAt,
	}

	event := types.NewEvent(types.EventRSVPCreated, eventData)
	p.hub.BroadcastToUser(ownerID, event)
	return nil
}
