package domain

import (
	"strings"
	"time"
)

// User is the identity record of a community member.
type User struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	Verified         bool
	IsBlocked        bool
	IsAdmin          bool
	VerificationLink *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// UserFields is a partial update of a User. Nil fields are left untouched.
type UserFields struct {
	Verified         *bool
	IsBlocked        *bool
	VerificationLink *string
}

// IsEmpty reports whether the update changes nothing.
func (f UserFields) IsEmpty() bool {
	return f.Verified == nil && f.IsBlocked == nil && f.VerificationLink == nil
}

// Apply copies the set fields onto u.
func (f UserFields) Apply(u *User) {
	if f.Verified != nil {
		u.Verified = *f.Verified
	}
	if f.IsBlocked != nil {
		u.IsBlocked = *f.IsBlocked
	}
	if f.VerificationLink != nil {
		link := *f.VerificationLink
		u.VerificationLink = &link
	}
}

// MatchesSearch reports a case-insensitive substring match on name or email.
// An empty term matches every user.
func (u User) MatchesSearch(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(u.Name), term) ||
		strings.Contains(strings.ToLower(u.Email), term)
}
