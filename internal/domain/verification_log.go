package domain

import "time"

// VerificationLogStatus is the outcome recorded for a provider notification.
type VerificationLogStatus string

const (
	VerificationLogCompleted VerificationLogStatus = "completed"
	VerificationLogFailed    VerificationLogStatus = "failed"
	VerificationLogExpired   VerificationLogStatus = "expired"
)

// VerificationLog records what the identity provider reported for a user.
type VerificationLog struct {
	ID               string
	UserID           string
	VerificationType string
	Status           VerificationLogStatus
	Reason           *string
	CreatedAt        time.Time
}
