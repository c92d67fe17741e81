// Copyright (c) 2026 Dust & Gold. All rights reserved.

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustandgold/api/internal/platform/apperr"
	"github.com/dustandgold/api/internal/platform/sec"
	"github.com/dustandgold/api/internal/users/auth"
)

// fakeUserRepository stores accounts in memory with map lookups matching
// the store contract.
type fakeUserRepository struct {
	users map[string]*auth.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[string]*auth.User{}}
}

func (r *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepository) FindByUsername(_ context.Context, handle string) (*auth.User, error) {
	for _, user := range r.users {
		if user.Username == handle {
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
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepository) SoftDelete(_ context.Context, id string) error {
	delete(r.users, id)
	return nil
}

// fakeSessionRepository honors the live-session contract: revoked sessions
// never come back from FindByTokenHash.
type fakeSessionRepository struct {
	sessions map[string]*auth.Session // keyed by token hash
	revoked  map[string]bool          // keyed by session id
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{
		sessions: map[string]*auth.Session{},
		revoked:  map[string]bool{},
	}
}

func (r *fakeSessionRepository) Create(_ context.Context, session *auth.Session) error {
	copied := *session
	r.sessions[session.TokenHash] = &copied
	return nil
}

func (r *fakeSessionRepository) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	session, ok := r.sessions[tokenHash]
	if !ok || r.revoked[session.ID] || time.Now().After(session.ExpiresAt) {
		return nil, apperr.NotFound("Session")
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepository) Revoke(_ context.Context, sessionID string) error {
	r.revoked[sessionID] = true
	return nil
}

func (r *fakeSessionRepository) RevokeAllForUser(_ context.Context, userID string) error {
	for _, session := range r.sessions {
		if session.UserID == userID {
			r.revoked[session.ID] = true
		}
	}
	return nil
}

// fakeTokenProvider returns a deterministic token instead of a signed JWT.
type fakeTokenProvider struct{}

func (p *fakeTokenProvider) GenerateAccessToken(userID, _ string, _ time.Duration) (string, error) {
	return "access-" + userID, nil
}

func newService(users *fakeUserRepository, sessions *fakeSessionRepository) *auth.Service {
	return auth.NewService(users, sessions, &fakeTokenProvider{})
}

/*
TestService_Register verifies happy-path enrollment: the handle is stored
in normalized form, the display name defaults to the handle, and the
password is stored hashed.
*/
func TestService_Register(t *testing.T) {
	users := newFakeUserRepository()
	service := newService(users, newFakeSessionRepository())

	user, err := service.Register(context.Background(), auth.RegisterInput{
		Username: "  Collector_99 ",
		Email:    "collector@example.com",
		Password: "sup3r-secret",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "collector_99", user.Username)
	assert.Equal(t, "collector_99", user.DisplayName)
	assert.NotEqual(t, "sup3r-secret", user.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("sup3r-secret", user.PasswordHash))
}

/*
TestService_Register_WithoutUsername verifies that a handle is optional at
signup: the account is created with no username, the display name falls
back to the email local part, and a second handle-less signup does not
collide with the first.
*/
func TestService_Register_WithoutUsername(t *testing.T) {
	users := newFakeUserRepository()
	service := newService(users, newFakeSessionRepository())
	ctx := context.Background()

	user, err := service.Register(ctx, auth.RegisterInput{
		Email:    "collector@example.com",
		Password: "sup3r-secret",
	})
	require.NoError(t, err)
	assert.Empty(t, user.Username)
	assert.Equal(t, "collector", user.DisplayName)

	// Unclaimed handles are not an identity; two of them never conflict.
	second, err := service.Register(ctx, auth.RegisterInput{
		Email:    "archivist@example.com",
		Password: "sup3r-secret",
	})
	require.NoError(t, err)
	assert.Empty(t, second.Username)
}

/*
TestService_Register_Rejections verifies the registration rejection
matrix: policy violations as validation errors, collisions as conflicts.
*/
func TestService_Register_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		input    auth.RegisterInput
		wantCode string
	}{
		{
			name:     "username too short",
			input:    auth.RegisterInput{Username: "ab", Email: "a@example.com", Password: "sup3r-secret"},
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "reserved username",
			input:    auth.RegisterInput{Username: "admin", Email: "a@example.com", Password: "sup3r-secret"},
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "malformed email",
			input:    auth.RegisterInput{Username: "collector_99", Email: "not-an-email", Password: "sup3r-secret"},
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "password too short",
			input:    auth.RegisterInput{Username: "collector_99", Email: "a@example.com", Password: "short"},
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "email already registered",
			input:    auth.RegisterInput{Username: "collector_99", Email: "taken@example.com", Password: "sup3r-secret"},
			wantCode: "CONFLICT",
		},
		{
			name:     "username already taken after normalization",
			input:    auth.RegisterInput{Username: "  Existing_User ", Email: "fresh@example.com", Password: "sup3r-secret"},
			wantCode: "CONFLICT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newFakeUserRepository()
			service := newService(users, newFakeSessionRepository())

			_, err := service.Register(context.Background(), auth.RegisterInput{
				Username: "existing_user",
				Email:    "taken@example.com",
				Password: "sup3r-secret",
			})
			require.NoError(t, err)

			_, err = service.Register(context.Background(), tt.input)
			require.Error(t, err)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, tt.wantCode, appError.Code)
		})
	}
}

/*
TestService_Login verifies flexible login by email or handle, and that
bad credentials always produce the same generic unauthorized message.
*/
func TestService_Login(t *testing.T) {
	users := newFakeUserRepository()
	sessions := newFakeSessionRepository()
	service := newService(users, sessions)
	ctx := context.Background()

	registered, err := service.Register(ctx, auth.RegisterInput{
		Username: "collector_99",
		Email:    "collector@example.com",
		Password: "sup3r-secret",
	})
	require.NoError(t, err)

	// Login by email.
	byEmail, err := service.Login(ctx, auth.LoginInput{Login: "collector@example.com", Password: "sup3r-secret"})
	require.NoError(t, err)
	assert.Equal(t, "access-"+registered.ID, byEmail.AccessToken)
	assert.NotEmpty(t, byEmail.RefreshToken)

	// Login by handle, pre-normalization form.
	byHandle, err := service.Login(ctx, auth.LoginInput{Login: "Collector_99", Password: "sup3r-secret"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, byHandle.User.ID)

	// Wrong password and unknown account produce the same message.
	_, badPassword := service.Login(ctx, auth.LoginInput{Login: "collector@example.com", Password: "wrong-pass"})
	_, unknownUser := service.Login(ctx, auth.LoginInput{Login: "nobody@example.com", Password: "sup3r-secret"})
	require.Error(t, badPassword)
	require.Error(t, unknownUser)
	assert.Equal(t, badPassword.Error(), unknownUser.Error())
	assert.Equal(t, "UNAUTHORIZED", apperr.As(badPassword).Code)
}

/*
TestService_RefreshSession verifies rotation: a refresh mints a new token
pair and the spent token can never be replayed.
*/
func TestService_RefreshSession(t *testing.T) {
	users := newFakeUserRepository()
	sessions := newFakeSessionRepository()
	service := newService(users, sessions)
	ctx := context.Background()

	_, err := service.Register(ctx, auth.RegisterInput{
		Username: "collector_99",
		Email:    "collector@example.com",
		Password: "sup3r-secret",
	})
	require.NoError(t, err)

	login, err := service.Login(ctx, auth.LoginInput{Login: "collector@example.com", Password: "sup3r-secret"})
	require.NoError(t, err)

	refreshed, err := service.RefreshSession(ctx, login.RefreshToken, "test-agent", "127.0.0.1")
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// Replaying the spent token fails.
	_, err = service.RefreshSession(ctx, login.RefreshToken, "test-agent", "127.0.0.1")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	// The rotated token still works.
	_, err = service.RefreshSession(ctx, refreshed.RefreshToken, "test-agent", "127.0.0.1")
	require.NoError(t, err)
}

/*
TestService_Logout verifies revocation and idempotency: a logged-out
token cannot refresh, and logging out twice is not an error.
*/
func TestService_Logout(t *testing.T) {
	users := newFakeUserRepository()
	sessions := newFakeSessionRepository()
	service := newService(users, sessions)
	ctx := context.Background()

	_, err := service.Register(ctx, auth.RegisterInput{
		Username: "collector_99",
		Email:    "collector@example.com",
		Password: "sup3r-secret",
	})
	require.NoError(t, err)

	login, err := service.Login(ctx, auth.LoginInput{Login: "collector@example.com", Password: "sup3r-secret"})
	require.NoError(t, err)

	require.NoError(t, service.Logout(ctx, login.RefreshToken))

	_, err = service.RefreshSession(ctx, login.RefreshToken, "test-agent", "127.0.0.1")
	require.Error(t, err)

	// Second logout with the same dead token is a no-op.
	require.NoError(t, service.Logout(ctx, login.RefreshToken))
	require.NoError(t, service.Logout(ctx, "never-issued-token"))
}
