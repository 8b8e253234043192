package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/travel-community/internal/domain"
	"github.com/spec-kit/travel-community/internal/repository"
)

// VerificationRequestStore is an in-memory repository.VerificationRequestRepository.
type VerificationRequestStore struct {
	mu       sync.RWMutex
	users    *UserStore
	requests map[string]*domain.VerificationRequest
	seq      map[string]int64
	next     int64
}

var _ repository.VerificationRequestRepository = (*VerificationRequestStore)(nil)

// NewVerificationRequestStore joins listings against users.
func NewVerificationRequestStore(users *UserStore) *VerificationRequestStore {
	return &VerificationRequestStore{
		users:    users,
		requests: make(map[string]*domain.VerificationRequest),
		seq:      make(map[string]int64),
	}
}

func (s *VerificationRequestStore) Create(_ context.Context, req *domain.VerificationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Status == domain.VerificationStatusPending && s.hasPendingLocked(req.UserID, req.Type, "") {
		return fmt.Errorf("%w: verification_requests_one_pending", repository.ErrUniqueViolation)
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.CreatedAt = time.Now().UTC()
	if req.AdditionalInfo == nil {
		req.AdditionalInfo = map[string]any{}
	}

	s.requests[req.ID] = copyRequest(req)
	s.next++
	s.seq[req.ID] = s.next
	return nil
}

func (s *VerificationRequestStore) GetByID(_ context.Context, id string) (*domain.VerificationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyRequest(req), nil
}

func (s *VerificationRequestStore) UpdateFields(_ context.Context, id string, fields domain.VerificationRequestFields, expected ...domain.VerificationStatus) (*domain.VerificationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok || !statusIn(req.Status, expected) {
		return nil, repository.ErrNotFound
	}
	if fields.Status != nil && *fields.Status == domain.VerificationStatusPending &&
		req.Status != domain.VerificationStatusPending && s.hasPendingLocked(req.UserID, req.Type, req.ID) {
		return nil, fmt.Errorf("%w: verification_requests_one_pending", repository.ErrUniqueViolation)
	}
	fields.Apply(req)
	return copyRequest(req), nil
}

func (s *VerificationRequestStore) ListByUser(_ context.Context, userID string) ([]domain.VerificationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.VerificationRequest{}
	for _, req := range s.requests {
		if req.UserID == userID {
			result = append(result, *copyRequest(req))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return newerFirst(result[i].CreatedAt, s.seq[result[i].ID], result[j].CreatedAt, s.seq[result[j].ID])
	})
	return result, nil
}

func (s *VerificationRequestStore) ListWithUsers(_ context.Context, filter repository.VerificationRequestFilter) ([]domain.VerificationRequestView, error) {
	s.mu.RLock()
	matched := []*domain.VerificationRequest{}
	for _, req := range s.requests {
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && req.Type != *filter.Type {
			continue
		}
		matched = append(matched, copyRequest(req))
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return newerFirst(matched[i].CreatedAt, s.seq[matched[i].ID], matched[j].CreatedAt, s.seq[matched[j].ID])
	})
	s.mu.RUnlock()

	result := make([]domain.VerificationRequestView, 0, len(matched))
	for _, req := range matched {
		view := domain.VerificationRequestView{VerificationRequest: *req}
		if s.users != nil {
			view.UserName, view.UserEmail = s.users.name(req.UserID)
		}
		result = append(result, view)
	}
	return result, nil
}

func (s *VerificationRequestStore) hasPendingLocked(userID string, t domain.VerificationType, except string) bool {
	for id, existing := range s.requests {
		if id == except {
			continue
		}
		if existing.UserID == userID && existing.Type == t && existing.Status == domain.VerificationStatusPending {
			return true
		}
	}
	return false
}

func statusIn(status domain.VerificationStatus, expected []domain.VerificationStatus) bool {
	if len(expected) == 0 {
		return true
	}
	for _, candidate := range expected {
		if candidate == status {
			return true
		}
	}
	return false
}

func copyRequest(req *domain.VerificationRequest) *domain.VerificationRequest {
	cp := *req
	if req.AdditionalInfo != nil {
		cp.AdditionalInfo = make(map[string]any, len(req.AdditionalInfo))
		for k, v := range req.AdditionalInfo {
			cp.AdditionalInfo[k] = v
		}
	}
	if req.VerificationLink != nil {
		link := *req.VerificationLink
		cp.VerificationLink = &link
	}
	if req.ProcessedAt != nil {
		at := *req.ProcessedAt
		cp.ProcessedAt = &at
	}
	return &cp
}

// VerificationLogStore is an in-memory repository.VerificationLogRepository.
type VerificationLogStore struct {
	mu      sync.RWMutex
	entries []domain.VerificationLog
}

var _ repository.VerificationLogRepository = (*VerificationLogStore)(nil)

// NewVerificationLogStore returns an empty store.
func NewVerificationLogStore() *VerificationLogStore {
	return &VerificationLogStore{}
}

func (s *VerificationLogStore) Create(_ context.Context, entry *domain.VerificationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *VerificationLogStore) ListByUser(_ context.Context, userID string) ([]domain.VerificationLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.VerificationLog{}
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].UserID == userID {
			result = append(result, s.entries[i])
		}
	}
	return result, nil
}

// VerificationSessionStore is an in-memory repository.VerificationSessionRepository.
type VerificationSessionStore struct {
	mu       sync.RWMutex
	sessions []domain.VerificationSession
}

var _ repository.VerificationSessionRepository = (*VerificationSessionStore)(nil)

// NewVerificationSessionStore returns an empty store.
func NewVerificationSessionStore() *VerificationSessionStore {
	return &VerificationSessionStore{}
}

func (s *VerificationSessionStore) Create(_ context.Context, session *domain.VerificationSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.ID = uuid.NewString()
	session.CreatedAt = time.Now().UTC()
	s.sessions = append(s.sessions, *session)
	return nil
}

func (s *VerificationSessionStore) ListByUser(_ context.Context, userID string) ([]domain.VerificationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.VerificationSession{}
	for i := len(s.sessions) - 1; i >= 0; i-- {
		if s.sessions[i].UserID == userID {
			result = append(result, s.sessions[i])
		}
	}
	return result, nil
}
