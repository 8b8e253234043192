package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/travel-community/internal/domain"
	"github.com/spec-kit/travel-community/internal/events"
	"github.com/spec-kit/travel-community/internal/repository"
	apperrors "github.com/spec-kit/travel-community/pkg/util/errorutil"
)

// Store names reported in write outcomes.
const (
	storeUsers    = "users"
	storeRequests = "verification_requests"
)

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}

func userActor(userID string) events.Actor {
	return events.Actor{Type: domain.ActorTypeUser, ID: &userID}
}

func adminActor(adminID string) events.Actor {
	if adminID == "" {
		return events.Actor{Type: domain.ActorTypeAdmin}
	}
	return events.Actor{Type: domain.ActorTypeAdmin, ID: &adminID}
}

func providerActor() events.Actor {
	return events.Actor{Type: domain.ActorTypeProvider}
}

// lookupError maps a failed point read to NotFound or StoreFailure.
func lookupError(resource, op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, nil)
	}
	return storeError(op, err)
}

// storeError wraps backend errors, leaving domain errors untouched.
func storeError(op string, err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.NewStoreFailure(op, err)
}

func outcome(store string, err error) apperrors.WriteOutcome {
	if err != nil {
		return apperrors.WriteOutcome{Store: store, OK: false, Error: err.Error()}
	}
	return apperrors.WriteOutcome{Store: store, OK: true}
}

func boolPtr(v bool) *bool {
	return &v
}

func statusPtr(s domain.VerificationStatus) *domain.VerificationStatus {
	return &s
}
