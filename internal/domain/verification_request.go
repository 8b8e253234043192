package domain

import (
	"fmt"
	"strings"
	"time"
)

// VerificationType is the closed set of request kinds.
type VerificationType string

const (
	VerificationTypeID    VerificationType = "id"
	VerificationTypeFace  VerificationType = "face"
	VerificationTypeCheck VerificationType = "check"
)

// ApprovalEffect is what approving a request does to the requester's identity.
type ApprovalEffect int

const (
	// EffectVerifyDirectly marks the user verified as soon as the request is approved.
	EffectVerifyDirectly ApprovalEffect = iota + 1
	// EffectAwaitLink leaves the user unverified; an issued link and the
	// provider callback complete verification.
	EffectAwaitLink
)

var approvalEffects = map[VerificationType]ApprovalEffect{
	VerificationTypeID:    EffectAwaitLink,
	VerificationTypeFace:  EffectAwaitLink,
	VerificationTypeCheck: EffectVerifyDirectly,
}

// VerificationTypes lists the valid kinds in display order.
func VerificationTypes() []VerificationType {
	return []VerificationType{VerificationTypeID, VerificationTypeFace, VerificationTypeCheck}
}

// ParseVerificationType validates raw input against the closed set.
func ParseVerificationType(raw string) (VerificationType, error) {
	t := VerificationType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown verification type %q", raw)
	}
	return t, nil
}

// Valid reports membership in the closed set.
func (t VerificationType) Valid() bool {
	_, ok := approvalEffects[t]
	return ok
}

// Effect returns the approval side effect of the type. Unknown types have no effect.
func (t VerificationType) Effect() ApprovalEffect {
	return approvalEffects[t]
}

// CarriesLink reports whether requests of this type may hold a verification link.
func (t VerificationType) CarriesLink() bool {
	return t.Effect() == EffectAwaitLink
}

// VerificationStatus enumerates request lifecycle states.
type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusApproved VerificationStatus = "approved"
	VerificationStatusRejected VerificationStatus = "rejected"
)

var allowedTransitions = map[VerificationStatus][]VerificationStatus{
	VerificationStatusPending:  {VerificationStatusApproved, VerificationStatusRejected},
	VerificationStatusApproved: {},
	VerificationStatusRejected: {},
}

// Valid reports whether s is a known lifecycle state.
func (s VerificationStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransitionTo reports whether a request in s may move to next.
func (s VerificationStatus) CanTransitionTo(next VerificationStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status can no longer change.
func (s VerificationStatus) Terminal() bool {
	return s.Valid() && len(allowedTransitions[s]) == 0
}

// VerificationRequest is a user's request to be verified.
type VerificationRequest struct {
	ID               string
	UserID           string
	Type             VerificationType
	Status           VerificationStatus
	AdditionalInfo   map[string]any
	VerificationLink *string
	CreatedAt        time.Time
	ProcessedAt      *time.Time
}

// VerificationRequestView is a request joined with its requester for display.
type VerificationRequestView struct {
	VerificationRequest
	UserName  string
	UserEmail string
}

// MatchesSearch reports a case-insensitive substring match on the requester's name or email.
func (v VerificationRequestView) MatchesSearch(term string) bool {
	return User{Name: v.UserName, Email: v.UserEmail}.MatchesSearch(term)
}

// VerificationRequestFields is a partial update of a request. Nil fields are left untouched.
type VerificationRequestFields struct {
	Status           *VerificationStatus
	ProcessedAt      *time.Time
	VerificationLink *string
}

// Apply copies the set fields onto r.
func (f VerificationRequestFields) Apply(r *VerificationRequest) {
	if f.Status != nil {
		r.Status = *f.Status
	}
	if f.ProcessedAt != nil {
		at := *f.ProcessedAt
		r.ProcessedAt = &at
	}
	if f.VerificationLink != nil {
		link := *f.VerificationLink
		r.VerificationLink = &link
	}
}
