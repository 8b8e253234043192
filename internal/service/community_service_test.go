package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/travel-community/internal/domain"
	"github.com/spec-kit/travel-community/internal/repository/memory"
	"github.com/spec-kit/travel-community/internal/service"
	apperrors "github.com/spec-kit/travel-community/pkg/util/errorutil"
)

type CommunityServiceSuite struct {
	suite.Suite
	ctx    context.Context
	users  *memory.UserStore
	author *domain.User
	svc    *service.CommunityService
}

func TestCommunityServiceSuite(t *testing.T) {
	suite.Run(t, new(CommunityServiceSuite))
}

func (s *CommunityServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = memory.NewUserStore()
	s.author = createUser(s.T(), s.users, "Ana", "ana@example.com")
	s.svc = service.NewCommunityService(service.CommunityDependencies{
		UserRepo:        s.users,
		PostRepo:        memory.NewPostStore(s.users),
		CommentRepo:     memory.NewCommentStore(s.users),
		StayRequestRepo: memory.NewStayRequestStore(s.users),
	})
}

func (s *CommunityServiceSuite) post(forum, city string) *domain.Post {
	post, err := s.svc.CreatePost(s.ctx, s.author.ID, forum, service.PostInput{Title: "Night market", Content: "Fridays", City: city})
	s.Require().NoError(err)
	return post
}

func (s *CommunityServiceSuite) TestCreateAndListPosts() {
	first := s.post("events", "Lisbon")
	s.post("events", "Porto")
	latest := s.post("events", "Lisbon")
	s.post("scams", "Lisbon")

	s.Equal("Ana", first.Author)

	posts, err := s.svc.ListPosts(s.ctx, "events", "Lisbon")
	s.Require().NoError(err)
	s.Require().Len(posts, 2)
	s.Equal(latest.ID, posts[0].ID)
	s.Equal(first.ID, posts[1].ID)
	s.Equal("Ana", posts[0].Author)

	loaded, err := s.svc.GetPost(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal("Lisbon", loaded.City)
}

func (s *CommunityServiceSuite) TestPostValidation() {
	_, err := s.svc.CreatePost(s.ctx, s.author.ID, "gossip", service.PostInput{Title: "t", Content: "c", City: "x"})
	s.True(apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = s.svc.CreatePost(s.ctx, s.author.ID, "events", service.PostInput{Title: " ", Content: "c", City: "x"})
	s.True(apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = s.svc.GetPost(s.ctx, "missing")
	s.True(apperrors.HasCode(err, apperrors.CodeNotFound))
}

func (s *CommunityServiceSuite) TestBlockedUsersCannotContribute() {
	post := s.post("suggestions", "Rome")
	blockUser(s.T(), s.users, s.author.ID)

	_, err := s.svc.CreatePost(s.ctx, s.author.ID, "events", service.PostInput{Title: "t", Content: "c", City: "x"})
	s.True(apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = s.svc.AddComment(s.ctx, s.author.ID, domain.CommentOnPost, post.ID, "hello")
	s.True(apperrors.HasCode(err, apperrors.CodeForbidden))

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.svc.CreateStayRequest(s.ctx, s.author.ID, service.StayRequestInput{City: "Rome", StartDate: start, EndDate: start})
	s.True(apperrors.HasCode(err, apperrors.CodeForbidden))
}

func (s *CommunityServiceSuite) TestCommentsOnPostsAndStayRequests() {
	post := s.post("events", "Lisbon")
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	stay, err := s.svc.CreateStayRequest(s.ctx, s.author.ID, service.StayRequestInput{City: "Lisbon", StartDate: start, EndDate: start.AddDate(0, 0, 3), Budget: "50/night"})
	s.Require().NoError(err)

	_, err = s.svc.AddComment(s.ctx, s.author.ID, domain.CommentOnPost, post.ID, "first")
	s.Require().NoError(err)
	_, err = s.svc.AddComment(s.ctx, s.author.ID, domain.CommentOnPost, post.ID, "second")
	s.Require().NoError(err)
	_, err = s.svc.AddComment(s.ctx, s.author.ID, domain.CommentOnStayRequest, stay.ID, "I have a room")
	s.Require().NoError(err)

	onPost, err := s.svc.ListComments(s.ctx, domain.CommentOnPost, post.ID)
	s.Require().NoError(err)
	s.Require().Len(onPost, 2)
	s.Equal("first", onPost[0].Content)
	s.Equal("Ana", onPost[0].Author)

	onStay, err := s.svc.ListComments(s.ctx, domain.CommentOnStayRequest, stay.ID)
	s.Require().NoError(err)
	s.Len(onStay, 1)

	_, err = s.svc.AddComment(s.ctx, s.author.ID, domain.CommentOnPost, "missing", "hello")
	s.True(apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = s.svc.AddComment(s.ctx, s.author.ID, domain.CommentOnPost, post.ID, "   ")
	s.True(apperrors.HasCode(err, apperrors.CodeValidation))
}

func (s *CommunityServiceSuite) TestStayRequestDates() {
	start := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	_, err := s.svc.CreateStayRequest(s.ctx, s.author.ID, service.StayRequestInput{City: "Oslo", StartDate: start, EndDate: start.AddDate(0, 0, -1)})
	s.True(apperrors.HasCode(err, apperrors.CodeValidation))

	same, err := s.svc.CreateStayRequest(s.ctx, s.author.ID, service.StayRequestInput{City: "Oslo", StartDate: start, EndDate: start})
	s.Require().NoError(err)
	s.Equal("Ana", same.Author)

	listed, err := s.svc.ListStayRequests(s.ctx, "Oslo")
	s.Require().NoError(err)
	s.Len(listed, 1)
	empty, err := s.svc.ListStayRequests(s.ctx, "Bergen")
	s.Require().NoError(err)
	s.Empty(empty)
}
