package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/travel-community/internal/domain"
	"github.com/spec-kit/travel-community/internal/events"
	"github.com/spec-kit/travel-community/internal/observability"
	"github.com/spec-kit/travel-community/internal/repository"
	apperrors "github.com/spec-kit/travel-community/pkg/util/errorutil"
)

// VerificationService owns the verification request lifecycle.
type VerificationService struct {
	users      repository.UserRepository
	requests   repository.VerificationRequestRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// VerificationDependencies bundles collaborators for the verification service.
type VerificationDependencies struct {
	UserRepo    repository.UserRepository
	RequestRepo repository.VerificationRequestRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Clock       func() time.Time
}

// NewVerificationService constructs the service.
func NewVerificationService(deps VerificationDependencies) *VerificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &VerificationService{
		users:      deps.UserRepo,
		requests:   deps.RequestRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        clock,
	}
}

// ApproveInput identifies the request to approve. UserID and Type are optional
// cross-checks against the stored record.
type ApproveInput struct {
	RequestID string
	UserID    string
	Type      string
	AdminID   string
}

// ApprovalResult is the state after approval. User is set when the identity was updated.
type ApprovalResult struct {
	Request  *domain.VerificationRequest
	User     *domain.User
	Outcomes []apperrors.WriteOutcome
}

// LinkResult is the state after issuing a verification link.
type LinkResult struct {
	Request  *domain.VerificationRequest
	User     *domain.User
	Outcomes []apperrors.WriteOutcome
}

// StatusView summarizes a user's verification state.
type StatusView struct {
	Verified         bool
	VerificationLink *string
	PendingTypes     []domain.VerificationType
}

// SubmitRequest files a pending verification request for userID.
func (s *VerificationService) SubmitRequest(ctx context.Context, userID, rawType string, info map[string]any) (*domain.VerificationRequest, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewValidationError("user id required", nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError("user", "load user", err)
	}
	if user.IsBlocked {
		return nil, apperrors.NewForbidden("blocked users cannot request verification")
	}
	verificationType, err := domain.ParseVerificationType(rawType)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid verification type", map[string]any{
			"verification_type": rawType,
			"allowed":           domain.VerificationTypes(),
		})
	}

	req := &domain.VerificationRequest{
		UserID:         user.ID,
		Type:           verificationType,
		Status:         domain.VerificationStatusPending,
		AdditionalInfo: info,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, apperrors.NewConflict("a pending request of this type already exists", map[string]any{
				"verification_type": verificationType,
			})
		}
		s.logger.Error("insert verification request", zap.String("user_id", user.ID), zap.Error(err))
		return nil, apperrors.NewStoreFailure("insert verification request", err)
	}

	s.metrics.RecordTransition(string(req.Type), string(req.Status))
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventVerificationRequested,
		UserID:    user.ID,
		RequestID: req.ID,
		Actor:     userActor(user.ID),
		Payload:   events.VerificationRequestedPayload{Type: req.Type},
	})
	return req, nil
}

// ListRequests returns the user's requests, newest first.
func (s *VerificationService) ListRequests(ctx context.Context, userID string) ([]domain.VerificationRequest, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewValidationError("user id required", nil)
	}
	requests, err := s.requests.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError("list verification requests", err)
	}
	if requests == nil {
		requests = []domain.VerificationRequest{}
	}
	return requests, nil
}

// Status reports whether the user is verified and which request types are pending.
func (s *VerificationService) Status(ctx context.Context, userID string) (*StatusView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError("user", "load user", err)
	}
	requests, err := s.ListRequests(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &StatusView{
		Verified:         user.Verified,
		VerificationLink: user.VerificationLink,
		PendingTypes:     []domain.VerificationType{},
	}
	for _, req := range requests {
		if req.Status == domain.VerificationStatusPending {
			view.PendingTypes = append(view.PendingTypes, req.Type)
		}
	}
	return view, nil
}

// Approve moves a pending request to approved and applies the type's identity effect.
// Approving an approved request re-applies the effect; approving a rejected one is a no-op.
// When the identity write fails after the request was approved, the result is returned
// together with a PARTIAL_FAILURE error.
func (s *VerificationService) Approve(ctx context.Context, input ApproveInput) (*ApprovalResult, error) {
	req, err := s.loadRequest(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}
	if err := crossCheck(req, input.UserID, input.Type); err != nil {
		return nil, err
	}

	transitioned := false
	if req.Status == domain.VerificationStatusPending {
		req, transitioned, err = s.transition(ctx, req, domain.VerificationRequestFields{
			Status: statusPtr(domain.VerificationStatusApproved),
		})
		if err != nil {
			return nil, err
		}
	}

	result := &ApprovalResult{Request: req}
	if req.Status != domain.VerificationStatusApproved {
		// rejected first, possibly by a concurrent caller
		return result, nil
	}
	result.Outcomes = append(result.Outcomes, outcome(storeRequests, nil))

	if transitioned {
		s.metrics.RecordTransition(string(req.Type), string(req.Status))
		publishEvent(ctx, s.dispatcher, events.Event{
			Type:      events.EventVerificationApproved,
			UserID:    req.UserID,
			RequestID: req.ID,
			Actor:     adminActor(input.AdminID),
			Payload: events.VerificationResolvedPayload{
				Type:      req.Type,
				OldStatus: domain.VerificationStatusPending,
				NewStatus: req.Status,
			},
		})
	}

	switch req.Type.Effect() {
	case domain.EffectVerifyDirectly:
		user, err := s.markVerified(ctx, req.UserID, adminActor(input.AdminID), "admin_check")
		result.Outcomes = append(result.Outcomes, outcome(storeUsers, err))
		if err != nil {
			s.metrics.RecordPartialFailure("approve")
			s.logger.Warn("request approved but identity not updated",
				zap.String("request_id", req.ID),
				zap.String("user_id", req.UserID),
				zap.Error(err))
			return result, apperrors.NewPartialFailure("request approved but user verification failed", result.Outcomes)
		}
		result.User = user
	case domain.EffectAwaitLink:
		// verification completes through an issued link and the provider callback
	}
	return result, nil
}

// Reject moves a pending request to rejected. Requests already resolved are returned unchanged.
func (s *VerificationService) Reject(ctx context.Context, requestID, adminID string) (*domain.VerificationRequest, error) {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status.Terminal() {
		return req, nil
	}

	req, transitioned, err := s.transition(ctx, req, domain.VerificationRequestFields{
		Status: statusPtr(domain.VerificationStatusRejected),
	})
	if err != nil {
		return nil, err
	}
	if transitioned {
		s.metrics.RecordTransition(string(req.Type), string(req.Status))
		publishEvent(ctx, s.dispatcher, events.Event{
			Type:      events.EventVerificationRejected,
			UserID:    req.UserID,
			RequestID: req.ID,
			Actor:     adminActor(adminID),
			Payload: events.VerificationResolvedPayload{
				Type:      req.Type,
				OldStatus: domain.VerificationStatusPending,
				NewStatus: req.Status,
			},
		})
	}
	return req, nil
}

// IssueVerificationLink records link on the user and approves the link-based request.
// It never marks the user verified. Both writes are attempted; a single failure yields
// PARTIAL_FAILURE and two yield STORE_FAILURE, each carrying per-store outcomes.
func (s *VerificationService) IssueVerificationLink(ctx context.Context, requestID, userID, link, adminID string) (*LinkResult, error) {
	link = strings.TrimSpace(link)
	userID = strings.TrimSpace(userID)
	if link == "" || userID == "" {
		return nil, apperrors.NewValidationError("user id and link required", nil)
	}
	if !validLink(link) {
		return nil, apperrors.NewValidationError("link must be an absolute http(s) url", map[string]any{"link": link})
	}

	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, apperrors.NewValidationError("request does not belong to user", nil)
	}
	if !req.Type.CarriesLink() {
		return nil, apperrors.NewValidationError("verification type does not use links", map[string]any{
			"verification_type": req.Type,
		})
	}
	if req.Status == domain.VerificationStatusRejected {
		return nil, apperrors.NewConflict("request already rejected", nil)
	}
	wasPending := req.Status == domain.VerificationStatusPending

	result := &LinkResult{Request: req}

	user, userErr := s.users.UpdateFields(ctx, userID, domain.UserFields{VerificationLink: &link})
	result.Outcomes = append(result.Outcomes, outcome(storeUsers, userErr))
	if userErr == nil {
		result.User = user
	}

	fields := domain.VerificationRequestFields{
		Status:           statusPtr(domain.VerificationStatusApproved),
		VerificationLink: &link,
	}
	if wasPending {
		now := s.now().UTC()
		fields.ProcessedAt = &now
	}
	updated, reqErr := s.requests.UpdateFields(ctx, req.ID, fields,
		domain.VerificationStatusPending, domain.VerificationStatusApproved)
	if errors.Is(reqErr, repository.ErrNotFound) {
		reqErr = errors.New("request was rejected concurrently")
	}
	result.Outcomes = append(result.Outcomes, outcome(storeRequests, reqErr))
	if reqErr == nil {
		result.Request = updated
	}

	switch {
	case userErr != nil && reqErr != nil:
		s.logger.Error("verification link not stored",
			zap.String("request_id", req.ID),
			zap.NamedError("user_error", userErr),
			zap.NamedError("request_error", reqErr))
		return nil, apperrors.NewStoreFailureWithOutcomes("issue verification link", result.Outcomes)
	case userErr != nil || reqErr != nil:
		s.metrics.RecordPartialFailure("issue_link")
		s.logger.Warn("verification link partially stored",
			zap.String("request_id", req.ID),
			zap.Any("outcomes", result.Outcomes))
		return result, apperrors.NewPartialFailure("verification link partially stored", result.Outcomes)
	}

	if wasPending {
		s.metrics.RecordTransition(string(updated.Type), string(updated.Status))
	}
	email := ""
	if result.User != nil {
		email = result.User.Email
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventVerificationLinkIssued,
		UserID:    userID,
		RequestID: req.ID,
		Actor:     adminActor(adminID),
		Payload: events.VerificationLinkIssuedPayload{
			Type:  req.Type,
			Link:  link,
			Email: email,
		},
	})
	return result, nil
}

// MarkVerified sets the user's verified flag and publishes user_verified when it flips.
// Check approvals, admin verification and provider callbacks all go through it.
func (s *VerificationService) MarkVerified(ctx context.Context, userID string, actor events.Actor, source string) (*domain.User, error) {
	return s.markVerified(ctx, userID, actor, source)
}

func (s *VerificationService) markVerified(ctx context.Context, userID string, actor events.Actor, source string) (*domain.User, error) {
	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError("user", "load user", err)
	}
	if current.Verified {
		return current, nil
	}
	user, err := s.users.UpdateFields(ctx, userID, domain.UserFields{Verified: boolPtr(true)})
	if err != nil {
		return nil, lookupError("user", "update user verification", err)
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventUserVerified,
		UserID:  user.ID,
		Actor:   actor,
		Payload: events.UserVerifiedPayload{Source: source},
	})
	return user, nil
}

func (s *VerificationService) loadRequest(ctx context.Context, requestID string) (*domain.VerificationRequest, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, apperrors.NewValidationError("request id required", nil)
	}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, lookupError("verification request", "load verification request", err)
	}
	return req, nil
}

// transition applies fields to a pending request. When another caller resolved
// the request first the stored state is re-read and returned with transitioned=false.
// A uniqueness violation counts as already resolved: if the re-read record is still
// pending, the requested fields are applied to it so callers continue with the
// resolved state.
func (s *VerificationService) transition(ctx context.Context, req *domain.VerificationRequest, fields domain.VerificationRequestFields) (*domain.VerificationRequest, bool, error) {
	if fields.Status != nil && !req.Status.CanTransitionTo(*fields.Status) {
		return req, false, nil
	}
	now := s.now().UTC()
	fields.ProcessedAt = &now

	updated, err := s.requests.UpdateFields(ctx, req.ID, fields, domain.VerificationStatusPending)
	switch {
	case err == nil:
		return updated, true, nil
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrUniqueViolation):
		s.logger.Info("verification request already resolved",
			zap.String("request_id", req.ID),
			zap.Error(err))
		current, readErr := s.loadRequest(ctx, req.ID)
		if readErr != nil {
			return nil, false, readErr
		}
		if errors.Is(err, repository.ErrUniqueViolation) && current.Status == domain.VerificationStatusPending {
			fields.Apply(current)
		}
		return current, false, nil
	default:
		s.logger.Error("update verification request", zap.String("request_id", req.ID), zap.Error(err))
		return nil, false, apperrors.NewStoreFailure("update verification request", err)
	}
}

func crossCheck(req *domain.VerificationRequest, userID, rawType string) error {
	if userID = strings.TrimSpace(userID); userID != "" && userID != req.UserID {
		return apperrors.NewValidationError("user id does not match request", nil)
	}
	if strings.TrimSpace(rawType) == "" {
		return nil
	}
	t, err := domain.ParseVerificationType(rawType)
	if err != nil {
		return apperrors.NewValidationError("invalid verification type", map[string]any{"verification_type": rawType})
	}
	if t != req.Type {
		return apperrors.NewValidationError("verification type does not match request", nil)
	}
	return nil
}

func validLink(link string) bool {
	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}
