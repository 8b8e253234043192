package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/travel-community/internal/domain"
	"github.com/spec-kit/travel-community/internal/idprovider"
	"github.com/spec-kit/travel-community/internal/observability"
	"github.com/spec-kit/travel-community/internal/repository"
	apperrors "github.com/spec-kit/travel-community/pkg/util/errorutil"
)

// Provider notification event names.
const (
	ProviderEventComplete = "verification.complete"
	ProviderEventFailed   = "verification.failed"
	ProviderEventExpired  = "verification.expired"
)

// Webhook outcomes recorded in metrics.
const (
	webhookProcessed    = "processed"
	webhookIgnored      = "ignored"
	webhookDuplicate    = "duplicate"
	webhookUnauthorized = "unauthorized"
	webhookInvalid      = "invalid"
	webhookError        = "error"
)

// ProviderNotification is the body the identity provider posts.
type ProviderNotification struct {
	ID               string  `json:"id"`
	Event            string  `json:"event"`
	UserID           string  `json:"user_id"`
	VerificationType string  `json:"verification_type"`
	Verified         bool    `json:"verified"`
	Reason           *string `json:"reason"`
}

// WebhookResult tells the caller how a delivery was handled.
type WebhookResult struct {
	Event     string
	Duplicate bool
	Ignored   bool
}

// WebhookService applies provider notifications.
type WebhookService struct {
	secret       string
	guard        idprovider.ReplayGuard
	logs         repository.VerificationLogRepository
	verification *VerificationService
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// WebhookDependencies bundles collaborators for the webhook service.
type WebhookDependencies struct {
	Secret       string
	ReplayGuard  idprovider.ReplayGuard
	LogRepo      repository.VerificationLogRepository
	Verification *VerificationService
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// NewWebhookService constructs the service.
func NewWebhookService(deps WebhookDependencies) *WebhookService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookService{
		secret:       deps.Secret,
		guard:        deps.ReplayGuard,
		logs:         deps.LogRepo,
		verification: deps.Verification,
		metrics:      deps.Metrics,
		logger:       logger,
	}
}

// HandleDelivery authenticates and applies one notification. The user is taken
// from the signed body only. A processing error releases the delivery id so the
// provider's retry is not mistaken for a duplicate.
func (s *WebhookService) HandleDelivery(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if !idprovider.VerifySignature(s.secret, body, signature) {
		s.metrics.RecordWebhook("", webhookUnauthorized)
		return nil, apperrors.NewUnauthorized("invalid signature")
	}

	var note ProviderNotification
	if err := json.Unmarshal(body, &note); err != nil {
		s.metrics.RecordWebhook("", webhookInvalid)
		return nil, apperrors.NewValidationError("malformed notification body", nil)
	}
	result := &WebhookResult{Event: note.Event}

	if note.ID != "" && s.guard != nil {
		first, err := s.guard.FirstDelivery(ctx, note.ID)
		if err != nil {
			s.logger.Warn("replay guard unavailable", zap.String("delivery_id", note.ID), zap.Error(err))
		} else if !first {
			s.metrics.RecordWebhook(note.Event, webhookDuplicate)
			result.Duplicate = true
			return result, nil
		}
	}

	ignored, err := s.apply(ctx, note)
	if err != nil {
		if note.ID != "" && s.guard != nil {
			if releaseErr := s.guard.Release(ctx, note.ID); releaseErr != nil {
				s.logger.Warn("release delivery id", zap.String("delivery_id", note.ID), zap.Error(releaseErr))
			}
		}
		s.metrics.RecordWebhook(note.Event, webhookError)
		return nil, err
	}

	result.Ignored = ignored
	if ignored {
		s.metrics.RecordWebhook(note.Event, webhookIgnored)
	} else {
		s.metrics.RecordWebhook(note.Event, webhookProcessed)
	}
	return result, nil
}

func (s *WebhookService) apply(ctx context.Context, note ProviderNotification) (bool, error) {
	switch note.Event {
	case ProviderEventComplete, ProviderEventFailed, ProviderEventExpired:
	default:
		s.logger.Info("unhandled provider event", zap.String("event", note.Event))
		return true, nil
	}
	if strings.TrimSpace(note.UserID) == "" {
		s.logger.Warn("provider notification without user", zap.String("event", note.Event))
		return true, nil
	}

	switch note.Event {
	case ProviderEventComplete:
		if strings.TrimSpace(note.VerificationType) == "" {
			s.logger.Warn("provider completion without verification type", zap.String("user_id", note.UserID))
			return true, nil
		}
		if !note.Verified {
			s.record(ctx, note, domain.VerificationLogFailed)
			return false, nil
		}
		if _, err := s.verification.MarkVerified(ctx, note.UserID, providerActor(), "provider"); err != nil {
			if apperrors.HasCode(err, apperrors.CodeNotFound) {
				s.logger.Warn("provider notification for unknown user", zap.String("user_id", note.UserID))
				return true, nil
			}
			s.logger.Error("apply provider verification", zap.String("user_id", note.UserID), zap.Error(err))
			return false, err
		}
		s.record(ctx, note, domain.VerificationLogCompleted)
	case ProviderEventFailed:
		s.record(ctx, note, domain.VerificationLogFailed)
	case ProviderEventExpired:
		s.record(ctx, note, domain.VerificationLogExpired)
	}
	return false, nil
}

// record appends an audit row. Failures are logged and do not fail the delivery.
func (s *WebhookService) record(ctx context.Context, note ProviderNotification, status domain.VerificationLogStatus) {
	entry := &domain.VerificationLog{
		UserID:           note.UserID,
		VerificationType: note.VerificationType,
		Status:           status,
		Reason:           note.Reason,
	}
	if err := s.logs.Create(ctx, entry); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("write verification log",
			zap.String("user_id", note.UserID),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}
