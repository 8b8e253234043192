package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spec-kit/travel-community/internal/config"
	"github.com/spec-kit/travel-community/internal/repository"
)

// AdminPolicy decides whether a user holds admin rights.
type AdminPolicy interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// EmailAllowList grants admin to users whose email is on a fixed list.
type EmailAllowList struct {
	users  repository.UserRepository
	emails map[string]struct{}
}

// NewEmailAllowList matches emails case-insensitively.
func NewEmailAllowList(users repository.UserRepository, emails []string) *EmailAllowList {
	set := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
			set[email] = struct{}{}
		}
	}
	return &EmailAllowList{users: users, emails: set}
}

func (p *EmailAllowList) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if len(p.emails) == 0 {
		return false, nil
	}
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	_, ok := p.emails[strings.ToLower(user.Email)]
	return ok, nil
}

// FlagPolicy grants admin to users whose stored is_admin flag is set.
type FlagPolicy struct {
	users repository.UserRepository
}

// NewFlagPolicy builds the policy.
func NewFlagPolicy(users repository.UserRepository) *FlagPolicy {
	return &FlagPolicy{users: users}
}

func (p *FlagPolicy) IsAdmin(ctx context.Context, userID string) (bool, error) {
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin, nil
}

// AnyOf grants admin when at least one policy does.
type AnyOf []AdminPolicy

func (p AnyOf) IsAdmin(ctx context.Context, userID string) (bool, error) {
	for _, policy := range p {
		ok, err := policy.IsAdmin(ctx, userID)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// NewAdminPolicy builds the policy named in cfg.
func NewAdminPolicy(cfg config.AdminConfig, users repository.UserRepository) (AdminPolicy, error) {
	switch cfg.Policy {
	case config.AdminPolicyAllowList:
		return NewEmailAllowList(users, cfg.Emails), nil
	case config.AdminPolicyFlag:
		return NewFlagPolicy(users), nil
	case config.AdminPolicyAny, "":
		return AnyOf{NewEmailAllowList(users, cfg.Emails), NewFlagPolicy(users)}, nil
	}
	return nil, fmt.Errorf("unknown admin policy %q", cfg.Policy)
}
