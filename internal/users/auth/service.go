// Copyright (c) 2026 Dust & Gold. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustandgold/api/internal/platform/apperr"
	"github.com/dustandgold/api/internal/platform/sec"
	"github.com/dustandgold/api/internal/platform/validate"
	"github.com/dustandgold/api/pkg/username"
	"github.com/dustandgold/api/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for generating access tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	GenerateAccessToken(userID, name string, timeToLive time.Duration) (string, error)
}

// Service implements user authentication use cases: registration, login,
// refresh-token rotation, and logout.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionRepository
	tokenProvider     TokenProvider
}

// NewService constructs a new auth [Service] with its dependencies.
func NewService(userRepo UserRepository, sessionRepo SessionRepository, tokenProv TokenProvider) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		tokenProvider:     tokenProv,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member. Username
// is optional at signup; a handle can be claimed later via the profile.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

/*
Register validates, hashes, and persists a brand new user account.

A username may be supplied up front or left empty and claimed later
through the profile. When present it is normalized (NFKC fold +
lowercase) before any rule runs; the normalized form is what gets
validated, checked for uniqueness, and stored. Uniqueness is enforced
twice: a friendly pre-check here, and the database UNIQUE constraint for
the race the pre-check cannot see.
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {

	// Canonical handle form precedes every rule
	handle := username.Normalize(input.Username)

	validator := &validate.Validator{}
	if handle != "" {
		validator.MinLen(FieldUsername, handle, username.MinLen).
			MaxLen(FieldUsername, handle, username.MaxLen).
			Username(FieldUsername, handle).
			Custom(FieldUsername, username.IsReserved(handle), "Username is reserved")
	}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password).MinLen(FieldPassword, input.Password, 8)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Verify email uniqueness. Client-safe Conflict on collision.
	if _, err := service.userRepository.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify username uniqueness. Client-safe Conflict on collision.
	if handle != "" {
		if _, err := service.userRepository.FindByUsername(ctx, handle); err == nil {
			return nil, apperr.Conflict("Username is already taken")
		}
	}

	// Never store plain-text passwords.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	displayName := input.DisplayName
	if displayName == "" {
		displayName = handle
	}
	if displayName == "" {
		// Handle-less signup falls back to the email local part.
		displayName, _, _ = strings.Cut(input.Email, "@")
	}

	// Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuidv7.New(),
		Username:     handle,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		DisplayName:  displayName,
	}

	if err := service.userRepository.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login     string // Username or Email
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates user credentials and issues security tokens.

Verifies identity, performs constant-time password comparison, and
initializes a new tracked session with a rotated refresh token.
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginSession, error) {

	// Flexible login: look up by email first, then normalized username
	user, err := service.userRepository.FindByEmail(ctx, input.Login)
	if err != nil {
		user, err = service.userRepository.FindByUsername(ctx, username.Normalize(input.Login))
	}

	// Generic message to prevent account enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	return service.issueSession(ctx, user, input.UserAgent, input.IPAddress)
}

/*
Logout permanently revokes the session behind a refresh token.

Unknown or already-dead tokens are treated as success; logout is
idempotent.
*/
func (service *Service) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := sec.HashToken(refreshToken)

	session, err := service.sessionRepository.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil
	}
	if err := service.sessionRepository.Revoke(ctx, session.ID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// # Session Management

/*
RefreshSession implements refresh token rotation.

Verifies the existing refresh token, revokes it to block replay, and
issues a fresh token pair.
*/
func (service *Service) RefreshSession(ctx context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {

	tokenHash := sec.HashToken(refreshToken)
	session, err := service.sessionRepository.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Rotation: the old session dies before the new one is born
	if err := service.sessionRepository.Revoke(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	user, err := service.userRepository.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("User not found or suspended")
	}

	return service.issueSession(ctx, user, userAgent, ipAddress)
}

// issueSession mints an access/refresh token pair and persists the
// tracking session.
func (service *Service) issueSession(ctx context.Context, user *User, userAgent, ipAddress string) (*LoginSession, error) {

	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	expiresAt := time.Now().Add(RefreshTokenTTL)
	session := &Session{
		ID:        uuidv7.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
	}
	if err := service.sessionRepository.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}
