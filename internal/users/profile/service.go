// Copyright (c) 2026 Dust & Gold. All rights reserved.

package profile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustandgold/api/internal/platform/apperr"
	"github.com/dustandgold/api/internal/platform/validate"
	"github.com/dustandgold/api/internal/users/auth"
	"github.com/dustandgold/api/pkg/username"
)

// # Service Layer

// Service orchestrates profile reads and updates on top of the account
// store. Username changes run through the same handle policy as
// registration: normalize first, then length, charset, reserved-word, and
// uniqueness checks.
type Service struct {
	users    auth.UserRepository
	sessions auth.SessionRepository
	logger   *slog.Logger
}

// NewService constructs a profile [Service].
func NewService(users auth.UserRepository, sessions auth.SessionRepository, logger *slog.Logger) *Service {
	return &Service{users: users, sessions: sessions, logger: logger}
}

// # Own Profile

// GetProfile retrieves the full private profile of a user.
func (service *Service) GetProfile(ctx context.Context, userID string) (*auth.User, error) {
	return service.users.FindByID(ctx, userID)
}

// UpdateProfileInput defines the mutable subset of profile fields. Nil
// pointers leave the stored value untouched.
type UpdateProfileInput struct {
	Username    *string
	DisplayName *string
	AvatarURL   *string
}

/*
UpdateProfile applies a partial set of changes to the caller's profile.

A username change is validated against the full handle policy and checked
for collisions; the normalized form is stored. The uniqueness pre-check
here is advisory; the database UNIQUE constraint settles the race and
surfaces as the same Conflict error.
*/
func (service *Service) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {

	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Username change runs the full handle policy
	if input.Username != nil {
		handle := username.Normalize(*input.Username)

		validator := &validate.Validator{}
		validator.Required(auth.FieldUsername, handle).
			MinLen(auth.FieldUsername, handle, username.MinLen).
			MaxLen(auth.FieldUsername, handle, username.MaxLen).
			Username(auth.FieldUsername, handle).
			Custom(auth.FieldUsername, username.IsReserved(handle), "Username is reserved")
		if err := validator.Err(); err != nil {
			return nil, err
		}

		if handle != user.Username {
			if existing, err := service.users.FindByUsername(ctx, handle); err == nil && existing.ID != userID {
				return nil, apperr.Conflict("Username is already taken")
			}
			user.Username = handle
		}
	}

	// Delta application for the remaining fields
	if input.DisplayName != nil {
		validator := &validate.Validator{}
		validator.Required(auth.FieldDisplayName, *input.DisplayName).
			MaxLen(auth.FieldDisplayName, *input.DisplayName, 100)
		if err := validator.Err(); err != nil {
			return nil, err
		}
		user.DisplayName = *input.DisplayName
	}
	if input.AvatarURL != nil {
		if *input.AvatarURL == "" {
			user.AvatarURL = nil
		} else {
			validator := &validate.Validator{}
			validator.URL(auth.FieldAvatarURL, *input.AvatarURL)
			if err := validator.Err(); err != nil {
				return nil, err
			}
			user.AvatarURL = input.AvatarURL
		}
	}

	if err := service.users.Update(ctx, user); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "user_profile_updated", slog.String("user_id", userID))
	return user, nil
}

/*
DeleteAccount performs an idempotent soft-deletion of the caller's account.

All active sessions are revoked immediately to force a global sign-out.
Submitted items survive; the account's votes stop counting and its
identity leaves upvoter lists.
*/
func (service *Service) DeleteAccount(ctx context.Context, userID string) error {
	if err := service.users.SoftDelete(ctx, userID); err != nil {
		return fmt.Errorf("profile_service_delete_failed: %w", err)
	}

	// Global session revocation for the deleted account
	_ = service.sessions.RevokeAllForUser(ctx, userID)

	service.logger.WarnContext(ctx, "user_account_deleted", slog.String("user_id", userID))
	return nil
}

// # Public Discovery

// GetPublicByUsername returns the public identity behind a handle. The
// catalog's ?username= listing filter resolves through this as well.
func (service *Service) GetPublicByUsername(ctx context.Context, handle string) (*PublicProfile, error) {
	user, err := service.users.FindByUsername(ctx, username.Normalize(handle))
	if err != nil {
		return nil, err
	}
	return &PublicProfile{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
	}, nil
}
