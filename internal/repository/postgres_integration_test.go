//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"

	"github.com/spec-kit/travel-community/internal/domain"
	"github.com/spec-kit/travel-community/internal/persistence"
	"github.com/spec-kit/travel-community/internal/repository"
	"github.com/spec-kit/travel-community/migrations"
)

type PostgresSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool

	users    repository.UserRepository
	requests repository.VerificationRequestRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	stays    repository.StayRequestRepository
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("community"),
		tcpostgres.WithUsername("community"),
		tcpostgres.WithPassword("community"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.pool, err = pgxpool.New(ctx, dsn)
	s.Require().NoError(err)
	s.Require().NoError(persistence.RunMigrations(ctx, s.pool, migrations.FS, zap.NewNop()))

	s.users = repository.NewUserRepository(s.pool)
	s.requests = repository.NewVerificationRequestRepository(s.pool)
	s.posts = repository.NewPostRepository(s.pool)
	s.comments = repository.NewCommentRepository(s.pool)
	s.stays = repository.NewStayRequestRepository(s.pool)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(),
		`TRUNCATE comments, posts, stay_requests, verification_sessions, verification_logs, verification_requests, users CASCADE`)
	s.Require().NoError(err)
}

func (s *PostgresSuite) newUser(name, email string) *domain.User {
	user := &domain.User{Name: name, Email: email, PasswordHash: "hash"}
	s.Require().NoError(s.users.Create(context.Background(), user))
	return user
}

func (s *PostgresSuite) TestUserEmailUnique() {
	s.newUser("Ana", "ana@example.com")

	err := s.users.Create(context.Background(), &domain.User{Name: "Ana", Email: "ANA@example.com", PasswordHash: "x"})

	s.ErrorIs(err, repository.ErrUniqueViolation)
}

func (s *PostgresSuite) TestUserUpdateFields() {
	ctx := context.Background()
	user := s.newUser("Ana", "ana@example.com")
	verified := true
	link := "https://verify.example/abc"

	updated, err := s.users.UpdateFields(ctx, user.ID, domain.UserFields{Verified: &verified, VerificationLink: &link})

	s.Require().NoError(err)
	s.True(updated.Verified)
	s.Require().NotNil(updated.VerificationLink)
	s.Equal(link, *updated.VerificationLink)
	s.False(updated.IsBlocked)
}

func (s *PostgresSuite) TestUserGetByMalformedIDIsNotFound() {
	_, err := s.users.GetByID(context.Background(), "not-a-uuid")

	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *PostgresSuite) TestPendingRequestUniquePerType() {
	ctx := context.Background()
	user := s.newUser("Ana", "ana@example.com")

	first := &domain.VerificationRequest{UserID: user.ID, Type: domain.VerificationTypeID, Status: domain.VerificationStatusPending}
	s.Require().NoError(s.requests.Create(ctx, first))

	dup := &domain.VerificationRequest{UserID: user.ID, Type: domain.VerificationTypeID, Status: domain.VerificationStatusPending}
	s.ErrorIs(s.requests.Create(ctx, dup), repository.ErrUniqueViolation)

	approved := domain.VerificationStatusApproved
	now := time.Now()
	_, err := s.requests.UpdateFields(ctx, first.ID, domain.VerificationRequestFields{Status: &approved, ProcessedAt: &now}, domain.VerificationStatusPending)
	s.Require().NoError(err)

	again := &domain.VerificationRequest{UserID: user.ID, Type: domain.VerificationTypeID, Status: domain.VerificationStatusPending}
	s.NoError(s.requests.Create(ctx, again))
}

func (s *PostgresSuite) TestConditionalTransition() {
	ctx := context.Background()
	user := s.newUser("Ana", "ana@example.com")
	req := &domain.VerificationRequest{
		UserID:         user.ID,
		Type:           domain.VerificationTypeCheck,
		Status:         domain.VerificationStatusPending,
		AdditionalInfo: map[string]any{"note": "passport"},
	}
	s.Require().NoError(s.requests.Create(ctx, req))

	rejected := domain.VerificationStatusRejected
	now := time.Now()
	updated, err := s.requests.UpdateFields(ctx, req.ID, domain.VerificationRequestFields{Status: &rejected, ProcessedAt: &now}, domain.VerificationStatusPending)
	s.Require().NoError(err)
	s.Equal(domain.VerificationStatusRejected, updated.Status)
	s.NotNil(updated.ProcessedAt)
	s.Equal("passport", updated.AdditionalInfo["note"])

	approved := domain.VerificationStatusApproved
	_, err = s.requests.UpdateFields(ctx, req.ID, domain.VerificationRequestFields{Status: &approved, ProcessedAt: &now}, domain.VerificationStatusPending)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *PostgresSuite) TestListWithUsersNewestFirst() {
	ctx := context.Background()
	ana := s.newUser("Ana", "ana@example.com")
	bo := s.newUser("Bo", "bo@example.com")
	s.Require().NoError(s.requests.Create(ctx, &domain.VerificationRequest{UserID: ana.ID, Type: domain.VerificationTypeID, Status: domain.VerificationStatusPending}))
	s.Require().NoError(s.requests.Create(ctx, &domain.VerificationRequest{UserID: bo.ID, Type: domain.VerificationTypeFace, Status: domain.VerificationStatusPending}))

	views, err := s.requests.ListWithUsers(ctx, repository.VerificationRequestFilter{})

	s.Require().NoError(err)
	s.Require().Len(views, 2)
	s.Equal("Bo", views[0].UserName)
	s.Equal("ana@example.com", views[1].UserEmail)
}

func (s *PostgresSuite) TestCommunityRoundTrip() {
	ctx := context.Background()
	user := s.newUser("Ana", "ana@example.com")

	post := &domain.Post{UserID: user.ID, Forum: domain.ForumScams, Title: "Fake taxi", Content: "Avoid", City: "Lisbon"}
	s.Require().NoError(s.posts.Create(ctx, post))

	posts, err := s.posts.ListByForum(ctx, domain.ForumScams, "Lisbon")
	s.Require().NoError(err)
	s.Require().Len(posts, 1)
	s.Equal("Ana", posts[0].Author)

	comment := &domain.Comment{UserID: user.ID, PostID: &post.ID, Content: "thanks"}
	s.Require().NoError(s.comments.Create(ctx, comment))
	comments, err := s.comments.ListByTarget(ctx, domain.CommentOnPost, post.ID)
	s.Require().NoError(err)
	s.Require().Len(comments, 1)
	s.Equal("Ana", comments[0].Author)

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	stay := &domain.StayRequest{UserID: user.ID, City: "Porto", StartDate: start, EndDate: start.AddDate(0, 0, 3), Description: "couch"}
	s.Require().NoError(s.stays.Create(ctx, stay))
	got, err := s.stays.GetByID(ctx, stay.ID)
	s.Require().NoError(err)
	require.Equal(s.T(), "Porto", got.City)
}
