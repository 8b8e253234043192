package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/travel-community/internal/domain"
	"github.com/spec-kit/travel-community/internal/events"
	"github.com/spec-kit/travel-community/internal/idprovider"
	"github.com/spec-kit/travel-community/internal/observability"
	"github.com/spec-kit/travel-community/internal/repository/memory"
	"github.com/spec-kit/travel-community/internal/service"
	apperrors "github.com/spec-kit/travel-community/pkg/util/errorutil"
)

const webhookSecret = "whsec-test"

type WebhookServiceSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.UserStore
	users    *flakyUsers
	logs     *memory.VerificationLogStore
	recorder *eventRecorder
	svc      *service.WebhookService
}

func TestWebhookServiceSuite(t *testing.T) {
	suite.Run(t, new(WebhookServiceSuite))
}

func (s *WebhookServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewUserStore()
	s.users = &flakyUsers{UserRepository: s.store}
	s.logs = memory.NewVerificationLogStore()
	dispatcher := events.NewInMemoryDispatcher()
	s.recorder = recordEvents(dispatcher, events.EventUserVerified)
	verification := service.NewVerificationService(service.VerificationDependencies{
		UserRepo:    s.users,
		RequestRepo: memory.NewVerificationRequestStore(s.store),
		Dispatcher:  dispatcher,
	})
	s.svc = service.NewWebhookService(service.WebhookDependencies{
		Secret:       webhookSecret,
		ReplayGuard:  idprovider.NewMemoryReplayGuard(time.Hour),
		LogRepo:      s.logs,
		Verification: verification,
		Metrics:      observability.NewMetrics(),
	})
}

func (s *WebhookServiceSuite) deliver(note service.ProviderNotification) (*service.WebhookResult, error) {
	body, err := json.Marshal(note)
	s.Require().NoError(err)
	return s.svc.HandleDelivery(s.ctx, body, idprovider.Sign(webhookSecret, body))
}

func (s *WebhookServiceSuite) logsFor(userID string) []domain.VerificationLog {
	entries, err := s.logs.ListByUser(s.ctx, userID)
	s.Require().NoError(err)
	return entries
}

func (s *WebhookServiceSuite) TestCompleteVerifiedMarksUser() {
	u := createUser(s.T(), s.store, "Ana", "ana@example.com")

	result, err := s.deliver(service.ProviderNotification{ID: "evt-1", Event: service.ProviderEventComplete, UserID: u.ID, VerificationType: "id", Verified: true})

	s.Require().NoError(err)
	s.False(result.Duplicate)
	after, err := s.store.GetByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.True(after.Verified)
	entries := s.logsFor(u.ID)
	s.Require().Len(entries, 1)
	s.Equal(domain.VerificationLogCompleted, entries[0].Status)
	evt, ok := s.recorder.last(events.EventUserVerified)
	s.Require().True(ok)
	s.Equal(domain.ActorTypeProvider, evt.Actor.Type)
}

func (s *WebhookServiceSuite) TestCompleteNotVerifiedDoesNotDowngrade() {
	u := createUser(s.T(), s.store, "Ana", "ana@example.com")
	verified := true
	_, err := s.store.UpdateFields(s.ctx, u.ID, domain.UserFields{Verified: &verified})
	s.Require().NoError(err)

	_, err = s.deliver(service.ProviderNotification{Event: service.ProviderEventComplete, UserID: u.ID, VerificationType: "face", Verified: false})

	s.Require().NoError(err)
	after, err := s.store.GetByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.True(after.Verified)
	entries := s.logsFor(u.ID)
	s.Require().Len(entries, 1)
	s.Equal(domain.VerificationLogFailed, entries[0].Status)
}

func (s *WebhookServiceSuite) TestFailedAndExpiredAreLogged() {
	u := createUser(s.T(), s.store, "Ana", "ana@example.com")
	reason := "document unreadable"

	_, err := s.deliver(service.ProviderNotification{Event: service.ProviderEventFailed, UserID: u.ID, VerificationType: "id", Reason: &reason})
	s.Require().NoError(err)
	_, err = s.deliver(service.ProviderNotification{Event: service.ProviderEventExpired, UserID: u.ID, VerificationType: "id"})
	s.Require().NoError(err)

	entries := s.logsFor(u.ID)
	s.Require().Len(entries, 2)
	s.Equal(domain.VerificationLogExpired, entries[0].Status)
	s.Equal(domain.VerificationLogFailed, entries[1].Status)
	s.Require().NotNil(entries[1].Reason)
	s.Equal(reason, *entries[1].Reason)
	after, err := s.store.GetByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.False(after.Verified)
}

func (s *WebhookServiceSuite) TestUnknownEventIsAcknowledged() {
	result, err := s.deliver(service.ProviderNotification{Event: "verification.started", UserID: "u"})

	s.Require().NoError(err)
	s.True(result.Ignored)
}

func (s *WebhookServiceSuite) TestBadSignatureIsUnauthorized() {
	u := createUser(s.T(), s.store, "Ana", "ana@example.com")
	body := []byte(`{"event":"verification.complete","user_id":"` + u.ID + `","verified":true}`)

	_, err := s.svc.HandleDelivery(s.ctx, body, idprovider.Sign("other-secret", body))
	s.True(apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, err = s.svc.HandleDelivery(s.ctx, body, "")
	s.True(apperrors.HasCode(err, apperrors.CodeUnauthorized))

	after, getErr := s.store.GetByID(s.ctx, u.ID)
	s.Require().NoError(getErr)
	s.False(after.Verified)
}

func (s *WebhookServiceSuite) TestMalformedBody() {
	body := []byte(`{not json`)

	_, err := s.svc.HandleDelivery(s.ctx, body, idprovider.Sign(webhookSecret, body))

	s.True(apperrors.HasCode(err, apperrors.CodeValidation))
}

func (s *WebhookServiceSuite) TestDuplicateDeliveryIsAcknowledgedOnce() {
	u := createUser(s.T(), s.store, "Ana", "ana@example.com")
	note := service.ProviderNotification{ID: "evt-7", Event: service.ProviderEventFailed, UserID: u.ID}

	_, err := s.deliver(note)
	s.Require().NoError(err)
	result, err := s.deliver(note)

	s.Require().NoError(err)
	s.True(result.Duplicate)
	s.Len(s.logsFor(u.ID), 1)
}

func (s *WebhookServiceSuite) TestFailedDeliveryCanBeRetried() {
	u := createUser(s.T(), s.store, "Ana", "ana@example.com")
	note := service.ProviderNotification{ID: "evt-9", Event: service.ProviderEventComplete, UserID: u.ID, VerificationType: "id", Verified: true}
	s.users.setFailing(true)

	_, err := s.deliver(note)
	s.True(apperrors.HasCode(err, apperrors.CodeStoreFailure))

	s.users.setFailing(false)
	result, err := s.deliver(note)

	s.Require().NoError(err)
	s.False(result.Duplicate)
	after, err := s.store.GetByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.True(after.Verified)
}

func (s *WebhookServiceSuite) TestCompleteWithoutTypeIsIgnored() {
	u := createUser(s.T(), s.store, "Ana", "ana@example.com")

	result, err := s.deliver(service.ProviderNotification{Event: service.ProviderEventComplete, UserID: u.ID, Verified: true})

	s.Require().NoError(err)
	s.True(result.Ignored)
	after, err := s.store.GetByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.False(after.Verified)
	s.Empty(s.logsFor(u.ID))
	s.Equal(0, s.recorder.count(events.EventUserVerified))
}

func (s *WebhookServiceSuite) TestUnknownUserIsIgnored() {
	result, err := s.deliver(service.ProviderNotification{Event: service.ProviderEventComplete, UserID: "ghost", VerificationType: "face", Verified: true})

	s.Require().NoError(err)
	s.True(result.Ignored)
}
