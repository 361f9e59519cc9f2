package events

import (
	"time"

	"github.com/climatecare/repairdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated       EventType = "request_created"
	EventRequestUpdated       EventType = "request_updated"
	EventRequestStatusChanged EventType = "request_status_changed"
	EventRequestDeleted       EventType = "request_deleted"
	EventCommentAdded         EventType = "comment_added"
)

// Actor identifies who triggered an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	ClientID      string  `json:"client_id"`
	SpecialistID  *string `json:"specialist_id,omitempty"`
	StatusName    string  `json:"status_name"`
	EquipmentType string  `json:"equipment_type,omitempty"`
}

// RequestUpdatedPayload payload.
type RequestUpdatedPayload struct {
	StatusName   string  `json:"status_name"`
	SpecialistID *string `json:"specialist_id,omitempty"`
}

// RequestStatusChangedPayload payload.
type RequestStatusChangedPayload struct {
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	IsFinal   bool   `json:"is_final"`
}

// RequestDeletedPayload payload.
type RequestDeletedPayload struct {
	ClientID string `json:"client_id"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID      string `json:"comment_id"`
	SpecialistID   string `json:"specialist_id"`
	MessagePreview string `json:"message_preview"`
}
