// Package memory holds in-process repository implementations used by tests
// and by the service when no database is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/travel-community/internal/domain"
	"github.com/spec-kit/travel-community/internal/repository"
)

// UserStore is an in-memory repository.UserRepository.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	seq   map[string]int64
	next  int64
}

var _ repository.UserRepository = (*UserStore)(nil)

// NewUserStore returns an empty store.
func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[string]*domain.User),
		seq:   make(map[string]int64),
	}
}

func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("%w: users_email_key", repository.ErrUniqueViolation)
		}
	}
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := copyUser(user)
	s.users[user.ID] = stored
	s.next++
	s.seq[user.ID] = s.next
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(user), nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return copyUser(user), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *UserStore) UpdateFields(_ context.Context, id string, fields domain.UserFields) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !fields.IsEmpty() {
		fields.Apply(user)
		user.UpdatedAt = time.Now().UTC()
	}
	return copyUser(user), nil
}

func (s *UserStore) List(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.User, 0, len(s.users))
	for _, user := range s.users {
		result = append(result, *copyUser(user))
	}
	sort.SliceStable(result, func(i, j int) bool {
		return newerFirst(result[i].CreatedAt, s.seq[result[i].ID], result[j].CreatedAt, s.seq[result[j].ID])
	})
	return result, nil
}

// SetAdmin flips the admin flag. Admin rights are granted out of band, so the
// repository interface has no equivalent.
func (s *UserStore) SetAdmin(id string, admin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.IsAdmin = admin
	return nil
}

func (s *UserStore) name(id string) (string, string) {
	if s == nil {
		return "", ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if user, ok := s.users[id]; ok {
		return user.Name, user.Email
	}
	return "", ""
}

func copyUser(user *domain.User) *domain.User {
	cp := *user
	if user.VerificationLink != nil {
		link := *user.VerificationLink
		cp.VerificationLink = &link
	}
	return &cp
}

// newerFirst orders by creation time descending, breaking ties by insertion order.
func newerFirst(a time.Time, aSeq int64, b time.Time, bSeq int64) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aSeq > bSeq
}
