// Copyright (c) 2026 Dust & Gold. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dustandgold/api/internal/platform/apperr"
	"github.com/dustandgold/api/internal/platform/database/schema"
	"github.com/dustandgold/api/internal/platform/dberr"
)

// # PostgreSQL Repositories

// userRepository implements [UserRepository] using pgx.
type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository constructs a PostgreSQL backed user store.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

// sessionRepository implements [SessionRepository] using pgx.
type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository constructs a PostgreSQL backed session store.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

// # User Repository Implementation

// username is NULL until the member claims a handle; the domain type uses
// "" for that state, so reads coalesce and writes NULLIF the empty string.
var userColumns = fmt.Sprintf(`%s, COALESCE(%s, ''), %s, %s, %s, %s, %s, %s`,
	schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Email,
	schema.UserAccount.Password, schema.UserAccount.DisplayName, schema.UserAccount.AvatarURL,
	schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
)

func (repository *userRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		userColumns, schema.UserAccount.Table, schema.UserAccount.ID, schema.UserAccount.DeletedAt)
	return repository.findOne(ctx, query, id)
}

func (repository *userRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		userColumns, schema.UserAccount.Table, schema.UserAccount.Email, schema.UserAccount.DeletedAt)
	return repository.findOne(ctx, query, email)
}

func (repository *userRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		userColumns, schema.UserAccount.Table, schema.UserAccount.Username, schema.UserAccount.DeletedAt)
	return repository.findOne(ctx, query, username)
}

// findOne executes a single-row account lookup.
func (repository *userRepository) findOne(ctx context.Context, query string, arg any) (*User, error) {
	user := &User{}
	err := repository.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.DisplayName, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user")
		}
		return nil, fmt.Errorf("postgres: failed to find user: %w", err)
	}
	return user, nil
}

/*
Create persists a new account row.

The UNIQUE constraints on username and email surface as apperr.Conflict
via dberr, covering the race where two registrations claim the same
identity between the service-level check and the insert.
*/
func (repository *userRepository) Create(ctx context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Email,
		schema.UserAccount.Password, schema.UserAccount.DisplayName, schema.UserAccount.AvatarURL,
	)
	_, err := repository.pool.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.DisplayName, user.AvatarURL,
	)
	if err != nil {
		return dberr.Wrap(err, "create_user")
	}
	return nil
}

// Update rewrites the mutable profile fields. The username UNIQUE
// constraint again surfaces as apperr.Conflict on collision.
func (repository *userRepository) Update(ctx context.Context, user *User) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = NULLIF($1, ''), %s = $2, %s = $3, %s = NOW()
		WHERE %s = $4 AND %s IS NULL`,
		schema.UserAccount.Table,
		schema.UserAccount.Username, schema.UserAccount.DisplayName,
		schema.UserAccount.AvatarURL, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt,
	)
	result, err := repository.pool.Exec(ctx, query,
		user.Username, user.DisplayName, user.AvatarURL, user.ID,
	)
	if err != nil {
		return dberr.Wrap(err, "update_user")
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

// SoftDelete hides an account without physical row removal.
func (repository *userRepository) SoftDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.UserAccount.Table, schema.UserAccount.DeletedAt,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt)

	result, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_user")
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

// # Session Repository Implementation

func (repository *sessionRepository) Create(ctx context.Context, session *Session) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		schema.UserSession.Table,
		schema.UserSession.ID, schema.UserSession.UserID, schema.UserSession.TokenHash,
		schema.UserSession.UserAgent, schema.UserSession.IPAddress,
		schema.UserSession.ExpiresAt, schema.UserSession.IsRevoked,
	)
	_, err := repository.pool.Exec(ctx, query,
		session.ID, session.UserID, session.TokenHash, session.UserAgent,
		session.IPAddress, session.ExpiresAt, session.IsRevoked,
	)
	if err != nil {
		return dberr.Wrap(err, "create_session")
	}
	return nil
}

// FindByTokenHash returns the matching session only while it is still
// live: unrevoked and unexpired.
func (repository *sessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = false AND %s > NOW()`,
		schema.UserSession.ID, schema.UserSession.UserID, schema.UserSession.TokenHash,
		schema.UserSession.UserAgent, schema.UserSession.IPAddress,
		schema.UserSession.ExpiresAt, schema.UserSession.IsRevoked, schema.UserSession.CreatedAt,
		schema.UserSession.Table,
		schema.UserSession.TokenHash, schema.UserSession.IsRevoked, schema.UserSession.ExpiresAt,
	)
	session := &Session{}
	err := repository.pool.QueryRow(ctx, query, tokenHash).Scan(
		&session.ID, &session.UserID, &session.TokenHash, &session.UserAgent,
		&session.IPAddress, &session.ExpiresAt, &session.IsRevoked, &session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("session")
		}
		return nil, fmt.Errorf("postgres: failed to find session: %w", err)
	}
	return session, nil
}

func (repository *sessionRepository) Revoke(ctx context.Context, sessionID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = true WHERE %s = $1`,
		schema.UserSession.Table, schema.UserSession.IsRevoked, schema.UserSession.ID)

	_, err := repository.pool.Exec(ctx, query, sessionID)
	if err != nil {
		return dberr.Wrap(err, "revoke_session")
	}
	return nil
}

func (repository *sessionRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = true WHERE %s = $1`,
		schema.UserSession.Table, schema.UserSession.IsRevoked, schema.UserSession.UserID)

	_, err := repository.pool.Exec(ctx, query, userID)
	if err != nil {
		return dberr.Wrap(err, "revoke_user_sessions")
	}
	return nil
}
