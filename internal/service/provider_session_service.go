package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/travel-community/internal/domain"
	"github.com/spec-kit/travel-community/internal/idprovider"
	"github.com/spec-kit/travel-community/internal/repository"
	apperrors "github.com/spec-kit/travel-community/pkg/util/errorutil"
)

// ProviderSessionService starts hosted verification flows with the identity provider.
type ProviderSessionService struct {
	users    repository.UserRepository
	sessions repository.VerificationSessionRepository
	provider idprovider.SessionCreator
	logger   *zap.Logger
}

// ProviderSessionDependencies bundles collaborators for the session service.
type ProviderSessionDependencies struct {
	UserRepo    repository.UserRepository
	SessionRepo repository.VerificationSessionRepository
	Provider    idprovider.SessionCreator
	Logger      *zap.Logger
}

// NewProviderSessionService constructs the service.
func NewProviderSessionService(deps ProviderSessionDependencies) *ProviderSessionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProviderSessionService{
		users:    deps.UserRepo,
		sessions: deps.SessionRepo,
		provider: deps.Provider,
		logger:   logger,
	}
}

// StartSession creates a provider session and records it as initiated.
func (s *ProviderSessionService) StartSession(ctx context.Context, userID, rawType string) (*domain.VerificationSession, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError("user", "load user", err)
	}
	if user.IsBlocked {
		return nil, apperrors.NewForbidden("blocked users cannot start verification")
	}
	sessionType, err := domain.ParseSessionType(rawType)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid verification type", map[string]any{"verification_type": rawType})
	}

	created, err := s.provider.CreateSession(ctx, user.ID, sessionType)
	if err != nil {
		if errors.Is(err, idprovider.ErrNotConfigured) {
			s.logger.Error("provider session requested without credentials")
			return nil, apperrors.NewInternalError(err)
		}
		s.logger.Warn("provider session failed", zap.String("user_id", user.ID), zap.Error(err))
		return nil, apperrors.NewUpstreamFailure("identity provider", err)
	}

	session := &domain.VerificationSession{
		UserID:          user.ID,
		Type:            sessionType,
		SessionID:       created.ID,
		VerificationURL: created.URL,
		Status:          domain.SessionStatusInitiated,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		s.logger.Error("insert verification session", zap.String("user_id", user.ID), zap.Error(err))
		return nil, storeError("insert verification session", err)
	}
	return session, nil
}

// ListSessions returns the user's provider sessions, newest first.
func (s *ProviderSessionService) ListSessions(ctx context.Context, userID string) ([]domain.VerificationSession, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewValidationError("user id required", nil)
	}
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError("list verification sessions", err)
	}
	if sessions == nil {
		sessions = []domain.VerificationSession{}
	}
	return sessions, nil
}
