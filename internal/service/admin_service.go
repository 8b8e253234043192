package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/travel-community/internal/domain"
	"github.com/spec-kit/travel-community/internal/events"
	"github.com/spec-kit/travel-community/internal/repository"
	apperrors "github.com/spec-kit/travel-community/pkg/util/errorutil"
)

// RequestListFilter narrows the admin request listing. Empty fields match everything.
type RequestListFilter struct {
	Status string
	Type   string
	Search string
}

// AdminService backs the admin review surface.
type AdminService struct {
	users        repository.UserRepository
	requests     repository.VerificationRequestRepository
	verification *VerificationService
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// AdminDependencies bundles collaborators for the admin service.
type AdminDependencies struct {
	UserRepo     repository.UserRepository
	RequestRepo  repository.VerificationRequestRepository
	Verification *VerificationService
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewAdminService constructs the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		users:        deps.UserRepo,
		requests:     deps.RequestRepo,
		verification: deps.Verification,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
	}
}

// ListRequests returns requests joined with their owners, newest first.
func (s *AdminService) ListRequests(ctx context.Context, filter RequestListFilter) ([]domain.VerificationRequestView, error) {
	var repoFilter repository.VerificationRequestFilter
	if raw := strings.TrimSpace(filter.Status); raw != "" {
		status := domain.VerificationStatus(strings.ToLower(raw))
		if !status.Valid() {
			return nil, apperrors.NewValidationError("invalid status filter", map[string]any{"status": raw})
		}
		repoFilter.Status = &status
	}
	if raw := strings.TrimSpace(filter.Type); raw != "" {
		t, err := domain.ParseVerificationType(raw)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid type filter", map[string]any{"verification_type": raw})
		}
		repoFilter.Type = &t
	}

	views, err := s.requests.ListWithUsers(ctx, repoFilter)
	if err != nil {
		return nil, storeError("list verification requests", err)
	}
	term := strings.TrimSpace(filter.Search)
	result := make([]domain.VerificationRequestView, 0, len(views))
	for _, view := range views {
		if term == "" || view.MatchesSearch(term) {
			result = append(result, view)
		}
	}
	return result, nil
}

// ListUsers returns users whose name or email contains search, case-insensitively.
func (s *AdminService) ListUsers(ctx context.Context, search string) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storeError("list users", err)
	}
	term := strings.TrimSpace(search)
	result := make([]domain.User, 0, len(users))
	for _, user := range users {
		if term == "" || user.MatchesSearch(term) {
			result = append(result, user)
		}
	}
	return result, nil
}

// Block marks the user blocked. Blocking a blocked user changes nothing.
func (s *AdminService) Block(ctx context.Context, userID, adminID string) (*domain.User, error) {
	return s.setBlocked(ctx, userID, adminID, true)
}

// Unblock clears the blocked flag. Unblocking an unblocked user changes nothing.
func (s *AdminService) Unblock(ctx context.Context, userID, adminID string) (*domain.User, error) {
	return s.setBlocked(ctx, userID, adminID, false)
}

// VerifyUser sets the verified flag directly, outside any request.
func (s *AdminService) VerifyUser(ctx context.Context, userID, adminID string) (*domain.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewValidationError("user id required", nil)
	}
	return s.verification.MarkVerified(ctx, userID, adminActor(adminID), "admin")
}

func (s *AdminService) setBlocked(ctx context.Context, userID, adminID string, blocked bool) (*domain.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewValidationError("user id required", nil)
	}
	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError("user", "load user", err)
	}
	if current.IsBlocked == blocked {
		return current, nil
	}

	user, err := s.users.UpdateFields(ctx, userID, domain.UserFields{IsBlocked: boolPtr(blocked)})
	if err != nil {
		s.logger.Error("update user blocked flag", zap.String("user_id", userID), zap.Error(err))
		return nil, lookupError("user", "update user", err)
	}

	eventType := events.EventUserUnblocked
	if blocked {
		eventType = events.EventUserBlocked
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:   eventType,
		UserID: user.ID,
		Actor:  adminActor(adminID),
	})
	return user, nil
}
