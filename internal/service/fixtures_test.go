package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/travel-community/internal/domain"
	"github.com/spec-kit/travel-community/internal/events"
	"github.com/spec-kit/travel-community/internal/repository"
	"github.com/spec-kit/travel-community/internal/repository/memory"
)

var errBackendDown = errors.New("backend down")

// flakyUsers fails UpdateFields while failUpdates is set.
type flakyUsers struct {
	repository.UserRepository
	mu          sync.Mutex
	failUpdates bool
}

func (f *flakyUsers) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failUpdates = v
}

func (f *flakyUsers) UpdateFields(ctx context.Context, id string, fields domain.UserFields) (*domain.User, error) {
	f.mu.Lock()
	failing := f.failUpdates
	f.mu.Unlock()
	if failing {
		return nil, errBackendDown
	}
	return f.UserRepository.UpdateFields(ctx, id, fields)
}

// flakyRequests fails UpdateFields while failUpdates is set, or with updateErr when given.
type flakyRequests struct {
	repository.VerificationRequestRepository
	failUpdates bool
	updateErr   error
}

func (f *flakyRequests) UpdateFields(ctx context.Context, id string, fields domain.VerificationRequestFields, expected ...domain.VerificationStatus) (*domain.VerificationRequest, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.failUpdates {
		return nil, errBackendDown
	}
	return f.VerificationRequestRepository.UpdateFields(ctx, id, fields, expected...)
}

// eventRecorder collects every published event of the given types.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func recordEvents(dispatcher events.Dispatcher, types ...events.EventType) *eventRecorder {
	rec := &eventRecorder{}
	for _, t := range types {
		dispatcher.Subscribe(t, func(_ context.Context, e events.Event) error {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.events = append(rec.events, e)
			return nil
		})
	}
	return rec
}

func (r *eventRecorder) count(t events.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func (r *eventRecorder) last(t events.EventType) (events.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return events.Event{}, false
}

func createUser(t *testing.T, users *memory.UserStore, name, email string) *domain.User {
	t.Helper()
	user := &domain.User{Name: name, Email: email, PasswordHash: "x"}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func blockUser(t *testing.T, users repository.UserRepository, id string) {
	t.Helper()
	blocked := true
	_, err := users.UpdateFields(context.Background(), id, domain.UserFields{IsBlocked: &blocked})
	require.NoError(t, err)
}
