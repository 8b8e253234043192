package events

import (
	"time"

	"github.com/spec-kit/travel-community/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventVerificationRequested  EventType = "verification_requested"
	EventVerificationApproved   EventType = "verification_approved"
	EventVerificationRejected   EventType = "verification_rejected"
	EventVerificationLinkIssued EventType = "verification_link_issued"
	EventUserVerified           EventType = "user_verified"
	EventUserBlocked            EventType = "user_blocked"
	EventUserUnblocked          EventType = "user_unblocked"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type domain.ActorType `json:"type"`
	ID   *string          `json:"id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	RequestID string      `json:"request_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// VerificationRequestedPayload payload.
type VerificationRequestedPayload struct {
	Type domain.VerificationType `json:"verification_type"`
}

// VerificationResolvedPayload payload for approvals and rejections.
type VerificationResolvedPayload struct {
	Type      domain.VerificationType   `json:"verification_type"`
	OldStatus domain.VerificationStatus `json:"old_status"`
	NewStatus domain.VerificationStatus `json:"new_status"`
}

// VerificationLinkIssuedPayload payload.
type VerificationLinkIssuedPayload struct {
	Type  domain.VerificationType `json:"verification_type"`
	Link  string                  `json:"link"`
	Email string                  `json:"email,omitempty"`
}

// UserVerifiedPayload payload.
type UserVerifiedPayload struct {
	Source string `json:"source"`
}
