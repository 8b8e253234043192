package dto

import (
	"time"

	"github.com/spec-kit/travel-community/internal/domain"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// CreatePostRequest payload. Which optional fields apply depends on the forum.
type CreatePostRequest struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Content       string  `json:"content" validate:"required,max=10000"`
	City          string  `json:"city" validate:"required,max=120"`
	EventDate     *string `json:"event_date" validate:"omitempty,datetime=2006-01-02"`
	EventLocation *string `json:"event_location" validate:"omitempty,max=255"`
	ScamType      *string `json:"scam_type" validate:"omitempty,max=120"`
	ScamLocation  *string `json:"scam_location" validate:"omitempty,max=255"`
	PlaceName     *string `json:"place_name" validate:"omitempty,max=255"`
	PlaceAddress  *string `json:"place_address" validate:"omitempty,max=255"`
}

// PostResponse is a forum post with its author.
type PostResponse struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	ForumType     domain.ForumType `json:"forum_type"`
	Title         string           `json:"title"`
	Content       string           `json:"content"`
	City          string           `json:"city"`
	EventDate     *string          `json:"event_date,omitempty"`
	EventLocation *string          `json:"event_location,omitempty"`
	ScamType      *string          `json:"scam_type,omitempty"`
	ScamLocation  *string          `json:"scam_location,omitempty"`
	PlaceName     *string          `json:"place_name,omitempty"`
	PlaceAddress  *string          `json:"place_address,omitempty"`
	Author        string           `json:"author"`
	CreatedAt     time.Time        `json:"created_at"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// CommentResponse is a comment with its author.
type CommentResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	PostID        *string   `json:"post_id,omitempty"`
	StayRequestID *string   `json:"stay_request_id,omitempty"`
	Content       string    `json:"content"`
	Author        string    `json:"author"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateStayRequestRequest payload.
type CreateStayRequestRequest struct {
	City        string `json:"city" validate:"required,max=120"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Budget      string `json:"budget" validate:"max=120"`
	Description string `json:"description" validate:"max=5000"`
}

// StayRequestResponse is a stay request with its author.
type StayRequestResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	City        string    `json:"city"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Budget      string    `json:"budget"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewPostResponse maps a domain post.
func NewPostResponse(post *domain.Post) PostResponse {
	resp := PostResponse{
		ID:            post.ID,
		UserID:        post.UserID,
		ForumType:     post.Forum,
		Title:         post.Title,
		Content:       post.Content,
		City:          post.City,
		EventLocation: post.EventLocation,
		ScamType:      post.ScamType,
		ScamLocation:  post.ScamLocation,
		PlaceName:     post.PlaceName,
		PlaceAddress:  post.PlaceAddress,
		Author:        post.Author,
		CreatedAt:     post.CreatedAt,
	}
	if post.EventDate != nil {
		date := post.EventDate.Format(DateLayout)
		resp.EventDate = &date
	}
	return resp
}

// NewPostList maps posts.
func NewPostList(posts []domain.Post) []PostResponse {
	items := make([]PostResponse, 0, len(posts))
	for i := range posts {
		items = append(items, NewPostResponse(&posts[i]))
	}
	return items
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:            comment.ID,
		UserID:        comment.UserID,
		PostID:        comment.PostID,
		StayRequestID: comment.StayRequestID,
		Content:       comment.Content,
		Author:        comment.Author,
		CreatedAt:     comment.CreatedAt,
	}
}

// NewCommentList maps comments.
func NewCommentList(comments []domain.Comment) []CommentResponse {
	items := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, NewCommentResponse(&comments[i]))
	}
	return items
}

// NewStayRequestResponse maps a domain stay request.
func NewStayRequestResponse(stay *domain.StayRequest) StayRequestResponse {
	return StayRequestResponse{
		ID:          stay.ID,
		UserID:      stay.UserID,
		City:        stay.City,
		StartDate:   stay.StartDate.Format(DateLayout),
		EndDate:     stay.EndDate.Format(DateLayout),
		Budget:      stay.Budget,
		Description: stay.Description,
		Author:      stay.Author,
		CreatedAt:   stay.CreatedAt,
	}
}

// NewStayRequestList maps stay requests.
func NewStayRequestList(stays []domain.StayRequest) []StayRequestResponse {
	items := make([]StayRequestResponse, 0, len(stays))
	for i := range stays {
		items = append(items, NewStayRequestResponse(&stays[i]))
	}
	return items
}
