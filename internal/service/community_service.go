package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/travel-community/internal/domain"
	"github.com/spec-kit/travel-community/internal/repository"
	apperrors "github.com/spec-kit/travel-community/pkg/util/errorutil"
)

// PostInput carries the fields of a new forum post.
type PostInput struct {
	Title         string
	Content       string
	City          string
	EventDate     *time.Time
	EventLocation *string
	ScamType      *string
	ScamLocation  *string
	PlaceName     *string
	PlaceAddress  *string
}

// StayRequestInput carries the fields of a new stay request.
type StayRequestInput struct {
	City        string
	StartDate   time.Time
	EndDate     time.Time
	Budget      string
	Description string
}

// CommunityService manages forum posts, comments and stay requests.
type CommunityService struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	stays    repository.StayRequestRepository
	logger   *zap.Logger
}

// CommunityDependencies bundles collaborators for the community service.
type CommunityDependencies struct {
	UserRepo        repository.UserRepository
	PostRepo        repository.PostRepository
	CommentRepo     repository.CommentRepository
	StayRequestRepo repository.StayRequestRepository
	Logger          *zap.Logger
}

// NewCommunityService constructs the service.
func NewCommunityService(deps CommunityDependencies) *CommunityService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommunityService{
		users:    deps.UserRepo,
		posts:    deps.PostRepo,
		comments: deps.CommentRepo,
		stays:    deps.StayRequestRepo,
		logger:   logger,
	}
}

// ListPosts returns a forum's posts, optionally narrowed to a city.
func (s *CommunityService) ListPosts(ctx context.Context, rawForum, city string) ([]domain.Post, error) {
	forum, err := parseForum(rawForum)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByForum(ctx, forum, strings.TrimSpace(city))
	if err != nil {
		return nil, storeError("list posts", err)
	}
	return posts, nil
}

// GetPost loads one post.
func (s *CommunityService) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("post", "load post", err)
	}
	return post, nil
}

// CreatePost publishes a post in a forum.
func (s *CommunityService) CreatePost(ctx context.Context, userID, rawForum string, input PostInput) (*domain.Post, error) {
	forum, err := parseForum(rawForum)
	if err != nil {
		return nil, err
	}
	author, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	city := strings.TrimSpace(input.City)
	if title == "" || content == "" || city == "" {
		return nil, apperrors.NewValidationError("title, content and city are required", nil)
	}

	post := &domain.Post{
		UserID:        author.ID,
		Forum:         forum,
		Title:         title,
		Content:       content,
		City:          city,
		EventDate:     input.EventDate,
		EventLocation: trimmed(input.EventLocation),
		ScamType:      trimmed(input.ScamType),
		ScamLocation:  trimmed(input.ScamLocation),
		PlaceName:     trimmed(input.PlaceName),
		PlaceAddress:  trimmed(input.PlaceAddress),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error("insert post", zap.String("user_id", author.ID), zap.Error(err))
		return nil, storeError("insert post", err)
	}
	post.Author = author.Name
	return post, nil
}

// ListComments returns comments on a post or stay request, oldest first.
func (s *CommunityService) ListComments(ctx context.Context, target domain.CommentTarget, targetID string) ([]domain.Comment, error) {
	if err := s.ensureTarget(ctx, target, targetID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTarget(ctx, target, targetID)
	if err != nil {
		return nil, storeError("list comments", err)
	}
	return comments, nil
}

// AddComment attaches a comment to an existing post or stay request.
func (s *CommunityService) AddComment(ctx context.Context, userID string, target domain.CommentTarget, targetID, content string) (*domain.Comment, error) {
	author, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content is required", nil)
	}
	if err := s.ensureTarget(ctx, target, targetID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{UserID: author.ID, Content: content}
	if target == domain.CommentOnPost {
		comment.PostID = &targetID
	} else {
		comment.StayRequestID = &targetID
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		s.logger.Error("insert comment", zap.String("user_id", author.ID), zap.Error(err))
		return nil, storeError("insert comment", err)
	}
	comment.Author = author.Name
	return comment, nil
}

// ListStayRequests returns stay requests, optionally narrowed to a city.
func (s *CommunityService) ListStayRequests(ctx context.Context, city string) ([]domain.StayRequest, error) {
	stays, err := s.stays.List(ctx, strings.TrimSpace(city))
	if err != nil {
		return nil, storeError("list stay requests", err)
	}
	return stays, nil
}

// GetStayRequest loads one stay request.
func (s *CommunityService) GetStayRequest(ctx context.Context, id string) (*domain.StayRequest, error) {
	stay, err := s.stays.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("stay request", "load stay request", err)
	}
	return stay, nil
}

// CreateStayRequest asks the community for accommodation.
func (s *CommunityService) CreateStayRequest(ctx context.Context, userID string, input StayRequestInput) (*domain.StayRequest, error) {
	author, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	city := strings.TrimSpace(input.City)
	if city == "" || input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, apperrors.NewValidationError("city, start_date and end_date are required", nil)
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, apperrors.NewValidationError("end_date must not precede start_date", nil)
	}

	stay := &domain.StayRequest{
		UserID:      author.ID,
		City:        city,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Budget:      strings.TrimSpace(input.Budget),
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.stays.Create(ctx, stay); err != nil {
		s.logger.Error("insert stay request", zap.String("user_id", author.ID), zap.Error(err))
		return nil, storeError("insert stay request", err)
	}
	stay.Author = author.Name
	return stay, nil
}

func (s *CommunityService) activeUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError("user", "load user", err)
	}
	if user.IsBlocked {
		return nil, apperrors.NewForbidden("blocked users cannot post")
	}
	return user, nil
}

func (s *CommunityService) ensureTarget(ctx context.Context, target domain.CommentTarget, targetID string) error {
	switch target {
	case domain.CommentOnPost:
		_, err := s.GetPost(ctx, targetID)
		return err
	case domain.CommentOnStayRequest:
		_, err := s.GetStayRequest(ctx, targetID)
		return err
	default:
		return apperrors.NewValidationError("unknown comment target", map[string]any{"target": target})
	}
}

func parseForum(raw string) (domain.ForumType, error) {
	forum, err := domain.ParseForumType(raw)
	if err != nil {
		return "", apperrors.NewValidationError("unknown forum", map[string]any{"forum_type": raw})
	}
	return forum, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
