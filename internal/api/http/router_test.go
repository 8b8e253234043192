package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/spec-kit/travel-community/internal/api/dto"
	httptransport "github.com/spec-kit/travel-community/internal/api/http"
	"github.com/spec-kit/travel-community/internal/api/http/handlers"
	"github.com/spec-kit/travel-community/internal/auth"
	"github.com/spec-kit/travel-community/internal/config"
	"github.com/spec-kit/travel-community/internal/domain"
	"github.com/spec-kit/travel-community/internal/events"
	"github.com/spec-kit/travel-community/internal/idprovider"
	"github.com/spec-kit/travel-community/internal/observability"
	"github.com/spec-kit/travel-community/internal/repository/memory"
	"github.com/spec-kit/travel-community/internal/service"
)

const testWebhookSecret = "whsec-router"

type stubSessions struct{}

func (stubSessions) CreateSession(_ context.Context, userID string, _ domain.SessionType) (*idprovider.Session, error) {
	return &idprovider.Session{ID: "sess-1", URL: "https://verify.example/" + userID}, nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate"`
}

type RouterSuite struct {
	suite.Suite
	app        *fiber.App
	users      *memory.UserStore
	tokens     *auth.TokenManager
	userID     string
	userToken  string
	adminToken string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := zap.NewNop()
	cfg := config.Config{
		App:  config.AppConfig{Name: "travel-community", Version: "test"},
		Auth: config.AuthConfig{JWTSecret: "router-secret", AccessTokenTTLMinutes: 10, BcryptCost: 4},
	}
	s.users = memory.NewUserStore()
	requests := memory.NewVerificationRequestStore(s.users)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: s.users})
	s.tokens = authService.TokenManager()
	verification := service.NewVerificationService(service.VerificationDependencies{
		UserRepo: s.users, RequestRepo: requests, Dispatcher: dispatcher, Metrics: metrics,
	})
	admin := service.NewAdminService(service.AdminDependencies{
		UserRepo: s.users, RequestRepo: requests, Verification: verification, Dispatcher: dispatcher,
	})
	sessions := service.NewProviderSessionService(service.ProviderSessionDependencies{
		UserRepo: s.users, SessionRepo: memory.NewVerificationSessionStore(), Provider: stubSessions{},
	})
	webhooks := service.NewWebhookService(service.WebhookDependencies{
		Secret:       testWebhookSecret,
		ReplayGuard:  idprovider.NewMemoryReplayGuard(time.Hour),
		LogRepo:      memory.NewVerificationLogStore(),
		Verification: verification,
		Metrics:      metrics,
	})
	community := service.NewCommunityService(service.CommunityDependencies{
		UserRepo:        s.users,
		PostRepo:        memory.NewPostStore(s.users),
		CommentRepo:     memory.NewCommentStore(s.users),
		StayRequestRepo: memory.NewStayRequestStore(s.users),
	})
	validate := dto.NewValidator()

	s.app = fiber.New(fiber.Config{ErrorHandler: httptransport.NewErrorHandler(logger)})
	httptransport.RegisterMiddlewares(s.app, logger, metrics, time.Second)
	httptransport.RegisterRoutes(s.app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("travel-community", "test", nil),
		Users:          handlers.NewUsersHandler(authService, validate),
		Verification:   handlers.NewVerificationHandler(verification, sessions, validate),
		Admin:          handlers.NewAdminHandler(admin, verification, validate),
		Webhooks:       handlers.NewWebhookHandler(webhooks),
		Community:      handlers.NewCommunityHandler(community, validate),
		AuthMiddleware: auth.NewAuthMiddleware(s.tokens, s.users, auth.NewFlagPolicy(s.users)),
		SubmitLimiter:  httptransport.NewRateLimiter(60, 3, time.Minute),
		Metrics:        metrics,
	})

	s.userID, s.userToken = s.register("Ana", "ana@example.com")
	adminID, adminToken := s.register("Root", "root@example.com")
	s.Require().NoError(s.users.SetAdmin(adminID, true))
	s.adminToken = adminToken
}

func (s *RouterSuite) register(name, email string) (string, string) {
	resp, body := s.do(http.MethodPost, "/auth/register", "", map[string]any{
		"name": name, "email": email, "password": "long-enough-pass",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var data struct {
		User dto.UserResponse `json:"user"`
		Auth dto.AuthResponse `json:"auth"`
	}
	s.Require().NoError(json.Unmarshal(body.Data, &data))
	return data.User.ID, data.Auth.Token
}

func (s *RouterSuite) do(method, path, token string, payload any) (*http.Response, envelope) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	return s.send(httptest.NewRequest(method, path, reader), token, payload != nil)
}

func (s *RouterSuite) send(req *http.Request, token string, isJSON bool) (*http.Response, envelope) {
	if isJSON {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	var env envelope
	if len(raw) > 0 && raw[0] == '{' {
		s.Require().NoError(json.Unmarshal(raw, &env))
	}
	return resp, env
}

func (s *RouterSuite) submit(token, verificationType string) dto.VerificationRequestResponse {
	resp, body := s.do(http.MethodPost, "/verification-requests", token, map[string]any{
		"verification_type": verificationType,
		"additional_info":   map[string]any{"phone": "+351000"},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var created dto.VerificationRequestResponse
	s.Require().NoError(json.Unmarshal(body.Data, &created))
	return created
}

func (s *RouterSuite) TestHealthAndMetrics() {
	resp, _ := s.do(http.MethodGet, "/health/live", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/health/ready", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/metrics", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *RouterSuite) TestProtectedRoutesRequireToken() {
	resp, body := s.do(http.MethodGet, "/verification-requests", "", nil)

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Require().NotNil(body.Error)
	s.Equal("UNAUTHORIZED", body.Error.Code)
}

func (s *RouterSuite) TestMeReportsAdminFlag() {
	resp, body := s.do(http.MethodGet, "/me", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var me dto.UserResponse
	s.Require().NoError(json.Unmarshal(body.Data, &me))
	s.True(me.IsAdmin)

	resp, body = s.do(http.MethodGet, "/me", s.userToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().NoError(json.Unmarshal(body.Data, &me))
	s.False(me.IsAdmin)
	s.False(me.Verified)
}

func (s *RouterSuite) TestSubmitApproveCheckFlow() {
	created := s.submit(s.userToken, "check")
	s.Equal(domain.VerificationStatusPending, created.Status)
	s.Nil(created.ProcessedAt)

	resp, body := s.do(http.MethodPost, "/verification-requests", s.userToken, map[string]any{"verification_type": "check"})
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal("CONFLICT", body.Error.Code)

	resp, _ = s.do(http.MethodPost, "/admin/verification-requests/"+created.ID+"/approve", s.userToken, nil)
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp, body = s.do(http.MethodPost, "/admin/verification-requests/"+created.ID+"/approve", s.adminToken,
		map[string]any{"user_id": s.userID, "verification_type": "check"})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var approval dto.ApprovalResponse
	s.Require().NoError(json.Unmarshal(body.Data, &approval))
	s.Equal(domain.VerificationStatusApproved, approval.Request.Status)
	s.Require().NotNil(approval.User)
	s.True(approval.User.Verified)

	resp, body = s.do(http.MethodGet, "/verification/status", s.userToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var status dto.VerificationStatusResponse
	s.Require().NoError(json.Unmarshal(body.Data, &status))
	s.True(status.Verified)
	s.Empty(status.PendingTypes)
}

func (s *RouterSuite) TestIssueLinkFlow() {
	created := s.submit(s.userToken, "id")
	link := "https://verify.example/abc"

	resp, body := s.do(http.MethodPost, "/admin/verification-requests/"+created.ID+"/link", s.adminToken,
		map[string]any{"user_id": s.userID, "link": link})

	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var result dto.LinkResponse
	s.Require().NoError(json.Unmarshal(body.Data, &result))
	s.Equal(domain.VerificationStatusApproved, result.Request.Status)
	s.Require().NotNil(result.User)
	s.False(result.User.Verified)
	s.Equal(link, *result.User.VerificationLink)

	resp, body = s.do(http.MethodPost, "/admin/verification-requests/"+created.ID+"/link", s.adminToken,
		map[string]any{"user_id": s.userID, "link": "not a url"})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("VALIDATION_FAILED", body.Error.Code)
	s.Equal("url", body.Error.Details["link"])
}

func (s *RouterSuite) TestRejectAndAdminListing() {
	created := s.submit(s.userToken, "face")

	resp, _ := s.do(http.MethodPost, "/admin/verification-requests/"+created.ID+"/reject", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp, body := s.do(http.MethodGet, "/admin/verification-requests?status=rejected&search=ANA", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var rows []dto.AdminVerificationRequestResponse
	s.Require().NoError(json.Unmarshal(body.Data, &rows))
	s.Require().Len(rows, 1)
	s.Equal("ana@example.com", rows[0].UserEmail)
	s.NotNil(rows[0].ProcessedAt)

	s.submit(s.userToken, "face")
}

func (s *RouterSuite) TestBlockedUserCannotSubmit() {
	resp, _ := s.do(http.MethodPost, "/admin/users/"+s.userID+"/block", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp, body := s.do(http.MethodPost, "/verification-requests", s.userToken, map[string]any{"verification_type": "bogus"})

	s.Equal(http.StatusForbidden, resp.StatusCode)
	s.Equal("FORBIDDEN", body.Error.Code)

	resp, _ = s.do(http.MethodPost, "/admin/users/"+s.userID+"/unblock", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.submit(s.userToken, "check")
}

func (s *RouterSuite) TestSubmitIsRateLimited() {
	s.submit(s.userToken, "id")
	s.submit(s.userToken, "face")
	s.submit(s.userToken, "check")

	resp, body := s.do(http.MethodPost, "/verification-requests", s.userToken, map[string]any{"verification_type": "id"})

	s.Equal(http.StatusTooManyRequests, resp.StatusCode)
	s.Equal("RATE_LIMITED", body.Error.Code)
}

func (s *RouterSuite) TestProviderWebhook() {
	raw := []byte(`{"id":"evt-1","event":"verification.complete","user_id":"` + s.userID + `","verification_type":"id","verified":true}`)
	signed := func(sig string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/provider", bytes.NewReader(raw))
		req.Header.Set(idprovider.SignatureHeader, sig)
		return req
	}

	resp, body := s.send(signed("deadbeef"), "", true)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Require().NotNil(body.Error)

	resp, body = s.send(signed(idprovider.Sign(testWebhookSecret, raw)), "", true)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.True(body.Received)
	s.False(body.Duplicate)

	resp, body = s.send(signed(idprovider.Sign(testWebhookSecret, raw)), "", true)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.True(body.Duplicate)

	user, err := s.users.GetByID(context.Background(), s.userID)
	s.Require().NoError(err)
	s.True(user.Verified)
}

func (s *RouterSuite) TestCommunityRoutes() {
	resp, body := s.do(http.MethodPost, "/forums/events/posts", s.userToken, map[string]any{
		"title": "Fado night", "content": "Alfama, 9pm", "city": "Lisbon", "event_date": "2026-11-02",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var post dto.PostResponse
	s.Require().NoError(json.Unmarshal(body.Data, &post))
	s.Equal("Ana", post.Author)
	s.Equal("2026-11-02", *post.EventDate)

	resp, _ = s.do(http.MethodPost, "/posts/"+post.ID+"/comments", s.adminToken, map[string]any{"content": "see you there"})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	resp, body = s.do(http.MethodGet, "/posts/"+post.ID+"/comments", s.userToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var comments []dto.CommentResponse
	s.Require().NoError(json.Unmarshal(body.Data, &comments))
	s.Require().Len(comments, 1)
	s.Equal("Root", comments[0].Author)

	resp, body = s.do(http.MethodPost, "/stay-requests", s.userToken, map[string]any{
		"city": "Porto", "start_date": "2026-12-10", "end_date": "2026-12-01",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("VALIDATION_FAILED", body.Error.Code)

	resp, _ = s.do(http.MethodGet, "/forums/gossip/posts", s.userToken, nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}
