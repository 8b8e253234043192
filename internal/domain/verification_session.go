package domain

import (
	"fmt"
	"strings"
	"time"
)

// SessionType is the verification depth requested from the identity provider.
type SessionType string

const (
	SessionTypeBasic SessionType = "basic"
	SessionTypeID    SessionType = "id"
	SessionTypeFace  SessionType = "face"
)

// ParseSessionType validates a provider session type.
func ParseSessionType(raw string) (SessionType, error) {
	t := SessionType(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case SessionTypeBasic, SessionTypeID, SessionTypeFace:
		return t, nil
	}
	return "", fmt.Errorf("unknown session type %q", raw)
}

// SessionStatusInitiated is the status of a freshly created provider session.
const SessionStatusInitiated = "initiated"

// VerificationSession tracks a hosted verification flow started with the provider.
type VerificationSession struct {
	ID              string
	UserID          string
	Type            SessionType
	SessionID       string
	VerificationURL string
	Status          string
	CreatedAt       time.Time
}
