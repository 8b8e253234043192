package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/travel-community/internal/domain"
	"github.com/spec-kit/travel-community/internal/repository"
)

// PostStore is an in-memory repository.PostRepository.
type PostStore struct {
	mu    sync.RWMutex
	users *UserStore
	posts []domain.Post
}

var _ repository.PostRepository = (*PostStore)(nil)

// NewPostStore resolves author names through users.
func NewPostStore(users *UserStore) *PostStore {
	return &PostStore{users: users}
}

func (s *PostStore) Create(_ context.Context, post *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post.ID = uuid.NewString()
	post.CreatedAt = time.Now().UTC()
	s.posts = append(s.posts, *post)
	return nil
}

func (s *PostStore) GetByID(_ context.Context, id string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, post := range s.posts {
		if post.ID == id {
			post.Author, _ = s.users.name(post.UserID)
			return &post, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *PostStore) ListByForum(_ context.Context, forum domain.ForumType, city string) ([]domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	city = strings.TrimSpace(city)
	result := []domain.Post{}
	for i := len(s.posts) - 1; i >= 0; i-- {
		post := s.posts[i]
		if post.Forum != forum || (city != "" && post.City != city) {
			continue
		}
		post.Author, _ = s.users.name(post.UserID)
		result = append(result, post)
	}
	return result, nil
}

// CommentStore is an in-memory repository.CommentRepository.
type CommentStore struct {
	mu       sync.RWMutex
	users    *UserStore
	comments []domain.Comment
}

var _ repository.CommentRepository = (*CommentStore)(nil)

// NewCommentStore resolves author names through users.
func NewCommentStore(users *UserStore) *CommentStore {
	return &CommentStore{users: users}
}

func (s *CommentStore) Create(_ context.Context, comment *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now().UTC()
	s.comments = append(s.comments, *comment)
	return nil
}

func (s *CommentStore) ListByTarget(_ context.Context, target domain.CommentTarget, targetID string) ([]domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.Comment{}
	for _, comment := range s.comments {
		var ref *string
		switch target {
		case domain.CommentOnPost:
			ref = comment.PostID
		case domain.CommentOnStayRequest:
			ref = comment.StayRequestID
		default:
			return nil, fmt.Errorf("unknown comment target %q", target)
		}
		if ref == nil || *ref != targetID {
			continue
		}
		comment.Author, _ = s.users.name(comment.UserID)
		result = append(result, comment)
	}
	return result, nil
}

// StayRequestStore is an in-memory repository.StayRequestRepository.
type StayRequestStore struct {
	mu       sync.RWMutex
	users    *UserStore
	requests []domain.StayRequest
}

var _ repository.StayRequestRepository = (*StayRequestStore)(nil)

// NewStayRequestStore resolves author names through users.
func NewStayRequestStore(users *UserStore) *StayRequestStore {
	return &StayRequestStore{users: users}
}

func (s *StayRequestStore) Create(_ context.Context, req *domain.StayRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req.ID = uuid.NewString()
	req.CreatedAt = time.Now().UTC()
	s.requests = append(s.requests, *req)
	return nil
}

func (s *StayRequestStore) GetByID(_ context.Context, id string) (*domain.StayRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, req := range s.requests {
		if req.ID == id {
			req.Author, _ = s.users.name(req.UserID)
			return &req, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *StayRequestStore) List(_ context.Context, city string) ([]domain.StayRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	city = strings.TrimSpace(city)
	result := []domain.StayRequest{}
	for i := len(s.requests) - 1; i >= 0; i-- {
		req := s.requests[i]
		if city != "" && req.City != city {
			continue
		}
		req.Author, _ = s.users.name(req.UserID)
		result = append(result, req)
	}
	return result, nil
}
