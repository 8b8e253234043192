package dto

import (
	"time"

	"github.com/spec-kit/travel-community/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Verified         bool      `json:"verified"`
	IsBlocked        bool      `json:"is_blocked"`
	IsAdmin          bool      `json:"is_admin"`
	VerificationLink *string   `json:"verification_link"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewUserResponse maps a domain user. isAdmin comes from the admin policy, not the stored flag.
func NewUserResponse(user *domain.User, isAdmin bool) UserResponse {
	return UserResponse{
		ID:               user.ID,
		Name:             user.Name,
		Email:            user.Email,
		Verified:         user.Verified,
		IsBlocked:        user.IsBlocked,
		IsAdmin:          isAdmin,
		VerificationLink: user.VerificationLink,
		CreatedAt:        user.CreatedAt,
	}
}

// NewUserList maps users for admin listings.
func NewUserList(users []domain.User) []UserResponse {
	items := make([]UserResponse, 0, len(users))
	for i := range users {
		items = append(items, NewUserResponse(&users[i], users[i].IsAdmin))
	}
	return items
}
