package domain

import (
	"fmt"
	"strings"
	"time"
)

// ForumType is one of the community boards.
type ForumType string

const (
	ForumEvents      ForumType = "events"
	ForumScams       ForumType = "scams"
	ForumSuggestions ForumType = "suggestions"
)

// ParseForumType validates a forum name.
func ParseForumType(raw string) (ForumType, error) {
	f := ForumType(strings.ToLower(strings.TrimSpace(raw)))
	switch f {
	case ForumEvents, ForumScams, ForumSuggestions:
		return f, nil
	}
	return "", fmt.Errorf("unknown forum %q", raw)
}

// Post is a forum entry. Optional fields depend on the forum.
type Post struct {
	ID            string
	UserID        string
	Forum         ForumType
	Title         string
	Content       string
	City          string
	EventDate     *time.Time
	EventLocation *string
	ScamType      *string
	ScamLocation  *string
	PlaceName     *string
	PlaceAddress  *string
	Author        string
	CreatedAt     time.Time
}

// CommentTarget is what a comment is attached to.
type CommentTarget string

const (
	CommentOnPost        CommentTarget = "post"
	CommentOnStayRequest CommentTarget = "stay_request"
)

// Comment belongs to exactly one post or stay request.
type Comment struct {
	ID            string
	UserID        string
	PostID        *string
	StayRequestID *string
	Content       string
	Author        string
	CreatedAt     time.Time
}

// StayRequest asks the community for accommodation in a city.
type StayRequest struct {
	ID          string
	UserID      string
	City        string
	StartDate   time.Time
	EndDate     time.Time
	Budget      string
	Description string
	Author      string
	CreatedAt   time.Time
}
