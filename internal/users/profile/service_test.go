// Copyright (c) 2026 Dust & Gold. All rights reserved.

package profile_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustandgold/api/internal/platform/apperr"
	"github.com/dustandgold/api/internal/users/auth"
	"github.com/dustandgold/api/internal/users/profile"
	"github.com/dustandgold/api/pkg/pointer"
)

// fakeUserRepository stores accounts keyed by id; soft-deleted accounts
// vanish from all lookups like the real store.
type fakeUserRepository struct {
	users   map[string]*auth.User
	deleted map[string]bool
}

func newFakeUserRepository(users ...*auth.User) *fakeUserRepository {
	repo := &fakeUserRepository{users: map[string]*auth.User{}, deleted: map[string]bool{}}
	for _, user := range users {
		copied := *user
		repo.users[user.ID] = &copied
	}
	return repo
}

func (r *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := r.users[id]
	if !ok || r.deleted[id] {
		return nil, apperr.NotFound("User")
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for id, user := range r.users {
		if user.Email == email && !r.deleted[id] {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepository) FindByUsername(_ context.Context, handle string) (*auth.User, error) {
	for id, user := range r.users {
		if user.Username == handle && !r.deleted[id] {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepository) Update(_ context.Context, user *auth.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepository) SoftDelete(_ context.Context, id string) error {
	r.deleted[id] = true
	return nil
}

// fakeSessionRepository records revocations only; profile flows never read
// sessions back.
type fakeSessionRepository struct {
	revokedUsers []string
}

func (r *fakeSessionRepository) Create(_ context.Context, _ *auth.Session) error { return nil }

func (r *fakeSessionRepository) FindByTokenHash(_ context.Context, _ string) (*auth.Session, error) {
	return nil, apperr.NotFound("Session")
}

func (r *fakeSessionRepository) Revoke(_ context.Context, _ string) error { return nil }

func (r *fakeSessionRepository) RevokeAllForUser(_ context.Context, userID string) error {
	r.revokedUsers = append(r.revokedUsers, userID)
	return nil
}

func newService(users *fakeUserRepository, sessions *fakeSessionRepository) *profile.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return profile.NewService(users, sessions, logger)
}

/*
TestService_UpdateProfile_Username verifies the handle policy on username
changes: normalization to the stored form, length bounds, reserved words,
and collision rejection.
*/
func TestService_UpdateProfile_Username(t *testing.T) {
	tests := []struct {
		name       string
		username   string
		wantStored string
		wantCode   string
	}{
		{
			name:       "normalizes before storing",
			username:   "  Collector_99 ",
			wantStored: "collector_99",
		},
		{
			name:     "too short",
			username: "ab",
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "longer than twenty characters",
			username: "this_handle_is_way_too_long",
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "illegal characters",
			username: "bad handle!",
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "reserved word",
			username: "upvotes",
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "vote vocabulary inside the handle",
			username: "art_votes",
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "reserved word survives normalization",
			username: "  ADMIN ",
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "taken by another account",
			username: "other_user",
			wantCode: "CONFLICT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newFakeUserRepository(
				&auth.User{ID: "user-1", Username: "original", Email: "one@example.com", DisplayName: "One"},
				&auth.User{ID: "user-2", Username: "other_user", Email: "two@example.com", DisplayName: "Two"},
			)
			service := newService(users, &fakeSessionRepository{})

			updated, err := service.UpdateProfile(context.Background(), "user-1", profile.UpdateProfileInput{
				Username: pointer.To(tt.username),
			})

			if tt.wantCode != "" {
				require.Error(t, err)
				appError := apperr.As(err)
				require.NotNil(t, appError)
				assert.Equal(t, tt.wantCode, appError.Code)

				persisted, err := users.FindByID(context.Background(), "user-1")
				require.NoError(t, err)
				assert.Equal(t, "original", persisted.Username)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStored, updated.Username)
		})
	}
}

/*
TestService_UpdateProfile_ClaimsFirstHandle verifies post-signup handle
claiming: an account registered without a username takes one through a
profile update, and the handle then resolves publicly.
*/
func TestService_UpdateProfile_ClaimsFirstHandle(t *testing.T) {
	users := newFakeUserRepository(
		&auth.User{ID: "user-1", Email: "one@example.com", DisplayName: "One"},
	)
	service := newService(users, &fakeSessionRepository{})
	ctx := context.Background()

	updated, err := service.UpdateProfile(ctx, "user-1", profile.UpdateProfileInput{
		Username: pointer.To("  Collector_99 "),
	})
	require.NoError(t, err)
	assert.Equal(t, "collector_99", updated.Username)

	public, err := service.GetPublicByUsername(ctx, "collector_99")
	require.NoError(t, err)
	assert.Equal(t, "user-1", public.ID)
}

/*
TestService_UpdateProfile_UsernameUnchanged verifies that re-submitting
the current handle is a no-op rather than a self-collision.
*/
func TestService_UpdateProfile_UsernameUnchanged(t *testing.T) {
	users := newFakeUserRepository(
		&auth.User{ID: "user-1", Username: "collector_99", Email: "one@example.com", DisplayName: "One"},
	)
	service := newService(users, &fakeSessionRepository{})

	updated, err := service.UpdateProfile(context.Background(), "user-1", profile.UpdateProfileInput{
		Username: pointer.To("Collector_99"),
	})
	require.NoError(t, err)
	assert.Equal(t, "collector_99", updated.Username)
}

/*
TestService_UpdateProfile_Fields verifies the partial-update semantics of
display name and avatar, including clearing the avatar with an empty string.
*/
func TestService_UpdateProfile_Fields(t *testing.T) {
	users := newFakeUserRepository(
		&auth.User{
			ID:          "user-1",
			Username:    "collector_99",
			Email:       "one@example.com",
			DisplayName: "One",
			AvatarURL:   pointer.To("https://img.example/old.png"),
		},
	)
	service := newService(users, &fakeSessionRepository{})
	ctx := context.Background()

	// Display name changes alone leave the avatar intact.
	updated, err := service.UpdateProfile(ctx, "user-1", profile.UpdateProfileInput{
		DisplayName: pointer.To("The Collector"),
	})
	require.NoError(t, err)
	assert.Equal(t, "The Collector", updated.DisplayName)
	require.NotNil(t, updated.AvatarURL)

	// Empty avatar string clears it.
	updated, err = service.UpdateProfile(ctx, "user-1", profile.UpdateProfileInput{
		AvatarURL: pointer.To(""),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.AvatarURL)

	// Malformed avatar URL is rejected.
	_, err = service.UpdateProfile(ctx, "user-1", profile.UpdateProfileInput{
		AvatarURL: pointer.To("not a url"),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestService_DeleteAccount verifies that soft deletion hides the account
from lookups and revokes every session the user holds.
*/
func TestService_DeleteAccount(t *testing.T) {
	users := newFakeUserRepository(
		&auth.User{ID: "user-1", Username: "collector_99", Email: "one@example.com", DisplayName: "One"},
	)
	sessions := &fakeSessionRepository{}
	service := newService(users, sessions)
	ctx := context.Background()

	require.NoError(t, service.DeleteAccount(ctx, "user-1"))

	_, err := service.GetProfile(ctx, "user-1")
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, []string{"user-1"}, sessions.revokedUsers)
}

/*
TestService_PublicDiscovery verifies handle-based public lookups,
including the normalization applied before matching.
*/
func TestService_PublicDiscovery(t *testing.T) {
	users := newFakeUserRepository(
		&auth.User{
			ID:          "user-1",
			Username:    "collector_99",
			Email:       "one@example.com",
			DisplayName: "The Collector",
		},
	)
	service := newService(users, &fakeSessionRepository{})
	ctx := context.Background()

	// Lookups normalize the handle before matching.
	public, err := service.GetPublicByUsername(ctx, "  Collector_99 ")
	require.NoError(t, err)
	assert.Equal(t, "user-1", public.ID)
	assert.Equal(t, "collector_99", public.Username)
	assert.Equal(t, "The Collector", public.DisplayName)

	_, err = service.GetPublicByUsername(ctx, "nobody_here")
	assert.True(t, apperr.IsNotFound(err))
}
