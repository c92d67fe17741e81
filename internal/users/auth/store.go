// Copyright (c) 2026 Dust & Gold. All rights reserved.

package auth

import "context"

// # User Data Access

// UserRepository defines the data access contract for user accounts.
// Usernames are stored normalized; lookups expect the normalized form.
type UserRepository interface {
	// FindByID returns the account with the given id.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the account with the given email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsername returns the account with the given normalized username.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Create persists a brand-new user account.
	Create(ctx context.Context, user *User) error

	// Update persists changes to mutable profile fields (username,
	// display name, avatar).
	Update(ctx context.Context, user *User) error

	// SoftDelete marks the account as deleted without removing the row.
	SoftDelete(ctx context.Context, id string) error
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh-token
// sessions.
type SessionRepository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *Session) error

	// FindByTokenHash returns the live session matching a token hash.
	// Expired and revoked sessions are never returned.
	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// Revoke invalidates a session by id.
	Revoke(ctx context.Context, sessionID string) error

	// RevokeAllForUser invalidates every session the user holds.
	RevokeAllForUser(ctx context.Context, userID string) error
}
