package dto

import (
	"time"

	"github.com/spec-kit/travel-community/internal/domain"
	"github.com/spec-kit/travel-community/internal/service"
)

// SubmitVerificationRequest payload. The type is checked by the service so a
// blocked user is refused before the type is looked at.
type SubmitVerificationRequest struct {
	VerificationType string         `json:"verification_type"`
	AdditionalInfo   map[string]any `json:"additional_info"`
}

// VerificationRequestResponse is a request as shown to its owner.
type VerificationRequestResponse struct {
	ID               string                    `json:"id"`
	UserID           string                    `json:"user_id"`
	VerificationType domain.VerificationType   `json:"verification_type"`
	Status           domain.VerificationStatus `json:"status"`
	AdditionalInfo   map[string]any            `json:"additional_info"`
	VerificationLink *string                   `json:"verification_link"`
	CreatedAt        time.Time                 `json:"created_at"`
	ProcessedAt      *time.Time                `json:"processed_at"`
}

// AdminVerificationRequestResponse adds the requester to a request.
type AdminVerificationRequestResponse struct {
	VerificationRequestResponse
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// VerificationStatusResponse summarizes a user's verification state.
type VerificationStatusResponse struct {
	Verified         bool                      `json:"verified"`
	VerificationLink *string                   `json:"verification_link"`
	PendingTypes     []domain.VerificationType `json:"pending_types"`
}

// StartSessionRequest payload.
type StartSessionRequest struct {
	VerificationType string `json:"verification_type" validate:"required"`
}

// SessionResponse describes a provider session.
type SessionResponse struct {
	ID               string             `json:"id"`
	SessionID        string             `json:"session_id"`
	VerificationType domain.SessionType `json:"verification_type"`
	VerificationURL  string             `json:"verification_url"`
	Status           string             `json:"status"`
	CreatedAt        time.Time          `json:"created_at"`
}

// ApproveRequest carries optional cross-checks against the stored request.
type ApproveRequest struct {
	UserID           string `json:"user_id"`
	VerificationType string `json:"verification_type"`
}

// IssueLinkRequest payload.
type IssueLinkRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Link   string `json:"link" validate:"required,url"`
}

// ApprovalResponse is the state after approval.
type ApprovalResponse struct {
	Request VerificationRequestResponse `json:"request"`
	User    *UserResponse               `json:"user,omitempty"`
}

// NewVerificationRequestResponse maps a domain request.
func NewVerificationRequestResponse(req *domain.VerificationRequest) VerificationRequestResponse {
	info := req.AdditionalInfo
	if info == nil {
		info = map[string]any{}
	}
	return VerificationRequestResponse{
		ID:               req.ID,
		UserID:           req.UserID,
		VerificationType: req.Type,
		Status:           req.Status,
		AdditionalInfo:   info,
		VerificationLink: req.VerificationLink,
		CreatedAt:        req.CreatedAt,
		ProcessedAt:      req.ProcessedAt,
	}
}

// NewVerificationRequestList maps a user's requests.
func NewVerificationRequestList(requests []domain.VerificationRequest) []VerificationRequestResponse {
	items := make([]VerificationRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, NewVerificationRequestResponse(&requests[i]))
	}
	return items
}

// NewAdminVerificationRequestList maps joined request rows.
func NewAdminVerificationRequestList(views []domain.VerificationRequestView) []AdminVerificationRequestResponse {
	items := make([]AdminVerificationRequestResponse, 0, len(views))
	for i := range views {
		items = append(items, AdminVerificationRequestResponse{
			VerificationRequestResponse: NewVerificationRequestResponse(&views[i].VerificationRequest),
			UserName:                    views[i].UserName,
			UserEmail:                   views[i].UserEmail,
		})
	}
	return items
}

// NewStatusResponse maps a status view.
func NewStatusResponse(view *service.StatusView) VerificationStatusResponse {
	return VerificationStatusResponse{
		Verified:         view.Verified,
		VerificationLink: view.VerificationLink,
		PendingTypes:     view.PendingTypes,
	}
}

// NewSessionResponse maps a provider session.
func NewSessionResponse(session *domain.VerificationSession) SessionResponse {
	return SessionResponse{
		ID:               session.ID,
		SessionID:        session.SessionID,
		VerificationType: session.Type,
		VerificationURL:  session.VerificationURL,
		Status:           session.Status,
		CreatedAt:        session.CreatedAt,
	}
}

// NewApprovalResponse maps an approval result.
func NewApprovalResponse(result *service.ApprovalResult) ApprovalResponse {
	resp := ApprovalResponse{Request: NewVerificationRequestResponse(result.Request)}
	if result.User != nil {
		user := NewUserResponse(result.User, result.User.IsAdmin)
		resp.User = &user
	}
	return resp
}

// LinkResponse is the state after issuing a link.
type LinkResponse struct {
	Request VerificationRequestResponse `json:"request"`
	User    *UserResponse               `json:"user,omitempty"`
}

// NewLinkResponse maps a link result.
func NewLinkResponse(result *service.LinkResult) LinkResponse {
	resp := LinkResponse{Request: NewVerificationRequestResponse(result.Request)}
	if result.User != nil {
		user := NewUserResponse(result.User, result.User.IsAdmin)
		resp.User = &user
	}
	return resp
}
