package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/travel-community/internal/api/dto"
	"github.com/spec-kit/travel-community/internal/domain"
	"github.com/spec-kit/travel-community/internal/service"
	apperrors "github.com/spec-kit/travel-community/pkg/util/errorutil"
)

// CommunityHandler exposes forums, comments and stay requests.
type CommunityHandler struct {
	community *service.CommunityService
	validate  *dto.Validator
}

// NewCommunityHandler constructs handler.
func NewCommunityHandler(community *service.CommunityService, validate *dto.Validator) *CommunityHandler {
	return &CommunityHandler{community: community, validate: validate}
}

// ListPosts GET /forums/:type/posts?city=.
func (h *CommunityHandler) ListPosts(c *fiber.Ctx) error {
	posts, err := h.community.ListPosts(c.UserContext(), c.Params("type"), c.Query("city"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPostList(posts)})
}

// CreatePost POST /forums/:type/posts.
func (h *CommunityHandler) CreatePost(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	input := service.PostInput{
		Title:         req.Title,
		Content:       req.Content,
		City:          req.City,
		EventLocation: req.EventLocation,
		ScamType:      req.ScamType,
		ScamLocation:  req.ScamLocation,
		PlaceName:     req.PlaceName,
		PlaceAddress:  req.PlaceAddress,
	}
	if req.EventDate != nil {
		date, err := time.Parse(dto.DateLayout, *req.EventDate)
		if err != nil {
			return apperrors.NewValidationError("invalid event_date", nil)
		}
		input.EventDate = &date
	}

	post, err := h.community.CreatePost(c.UserContext(), principal.User.ID, c.Params("type"), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPostResponse(post)})
}

// GetPost GET /posts/:id.
func (h *CommunityHandler) GetPost(c *fiber.Ctx) error {
	post, err := h.community.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPostResponse(post)})
}

// ListPostComments GET /posts/:id/comments.
func (h *CommunityHandler) ListPostComments(c *fiber.Ctx) error {
	return h.listComments(c, domain.CommentOnPost)
}

// AddPostComment POST /posts/:id/comments.
func (h *CommunityHandler) AddPostComment(c *fiber.Ctx) error {
	return h.addComment(c, domain.CommentOnPost)
}

// ListStayComments GET /stay-requests/:id/comments.
func (h *CommunityHandler) ListStayComments(c *fiber.Ctx) error {
	return h.listComments(c, domain.CommentOnStayRequest)
}

// AddStayComment POST /stay-requests/:id/comments.
func (h *CommunityHandler) AddStayComment(c *fiber.Ctx) error {
	return h.addComment(c, domain.CommentOnStayRequest)
}

// ListStayRequests GET /stay-requests?city=.
func (h *CommunityHandler) ListStayRequests(c *fiber.Ctx) error {
	stays, err := h.community.ListStayRequests(c.UserContext(), c.Query("city"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStayRequestList(stays)})
}

// GetStayRequest GET /stay-requests/:id.
func (h *CommunityHandler) GetStayRequest(c *fiber.Ctx) error {
	stay, err := h.community.GetStayRequest(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStayRequestResponse(stay)})
}

// CreateStayRequest POST /stay-requests.
func (h *CommunityHandler) CreateStayRequest(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateStayRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}
	start, startErr := time.Parse(dto.DateLayout, req.StartDate)
	end, endErr := time.Parse(dto.DateLayout, req.EndDate)
	if startErr != nil || endErr != nil {
		return apperrors.NewValidationError("invalid dates", nil)
	}

	stay, err := h.community.CreateStayRequest(c.UserContext(), principal.User.ID, service.StayRequestInput{
		City:        req.City,
		StartDate:   start,
		EndDate:     end,
		Budget:      req.Budget,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewStayRequestResponse(stay)})
}

func (h *CommunityHandler) listComments(c *fiber.Ctx, target domain.CommentTarget) error {
	comments, err := h.community.ListComments(c.UserContext(), target, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCommentList(comments)})
}

func (h *CommunityHandler) addComment(c *fiber.Ctx, target domain.CommentTarget) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}
	comment, err := h.community.AddComment(c.UserContext(), principal.User.ID, target, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}
