// Copyright (c) 2026 Dust & Gold. All rights reserved.

/*
Package vote implements the idempotent upvote toggle.

Correctness rests on exactly one mechanism: the UNIQUE constraint on
(itemid, userid) in catalog.itemvote. The toggle runs delete-first inside
a transaction, the insert path uses ON CONFLICT DO NOTHING, and the
returned count is always recomputed with COUNT(*) over the surviving
rows from live accounts. There is no stored counter to drift, and
concurrent toggles of the same pair settle into one of the two legal
states rather than erroring.
*/
package vote

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dustandgold/api/internal/platform/database/schema"
)

// voteRepository implements [Repository] using pgx.
type voteRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed vote store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &voteRepository{pool: pool}
}

/*
Toggle flips a user's vote on an item.

The transaction tries the removal first: if a row was deleted the user had
a vote and now does not. Otherwise it inserts, with ON CONFLICT DO NOTHING
absorbing the race where a concurrent toggle of the same pair lands
between the delete and the insert. The final count comes from COUNT(*) so
the response can never disagree with the rows that back it.
*/
func (repository *voteRepository) Toggle(ctx context.Context, itemID, userID string) (*ToggleResult, error) {

	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to begin vote transaction: %w", err)
	}
	defer transaction.Rollback(ctx)

	// Removal attempt decides the direction of the toggle
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.CatalogItemVote.Table, schema.CatalogItemVote.ItemID, schema.CatalogItemVote.UserID)

	deleted, err := transaction.Exec(ctx, deleteQuery, itemID, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to remove vote: %w", err)
	}

	result := &ToggleResult{ItemID: itemID}
	if deleted.RowsAffected() == 0 {
		insertQuery := fmt.Sprintf(`
			INSERT INTO %s (%s, %s) VALUES ($1, $2)
			ON CONFLICT (%s, %s) DO NOTHING`,
			schema.CatalogItemVote.Table, schema.CatalogItemVote.ItemID, schema.CatalogItemVote.UserID,
			schema.CatalogItemVote.ItemID, schema.CatalogItemVote.UserID)

		if _, err := transaction.Exec(ctx, insertQuery, itemID, userID); err != nil {
			return nil, fmt.Errorf("postgres: failed to add vote: %w", err)
		}
		result.Voted = true
	}

	// Recompute from surviving rows; never trust a running counter
	if err := transaction.QueryRow(ctx, liveCountQuery(), itemID).Scan(&result.Votes); err != nil {
		return nil, fmt.Errorf("postgres: failed to count votes: %w", err)
	}

	if err := transaction.Commit(ctx); err != nil {
		return nil, fmt.Errorf("postgres: failed to commit vote transaction: %w", err)
	}
	return result, nil
}

// liveCountQuery counts an item's votes from live accounts. The join
// matches the catalog read projection, so a soft-deleted voter drops out
// of toggle responses and listings at the same moment.
func liveCountQuery() string {
	return fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s v
		JOIN %s u ON u.%s = v.%s AND u.%s IS NULL
		WHERE v.%s = $1`,
		schema.CatalogItemVote.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.CatalogItemVote.UserID,
		schema.UserAccount.DeletedAt,
		schema.CatalogItemVote.ItemID)
}

// CountForItem returns the item's current vote cardinality among live
// accounts.
func (repository *voteRepository) CountForItem(ctx context.Context, itemID string) (int, error) {
	var count int
	if err := repository.pool.QueryRow(ctx, liveCountQuery(), itemID).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: failed to count votes: %w", err)
	}
	return count, nil
}

// HasVoted reports whether the (item, user) vote row exists.
func (repository *voteRepository) HasVoted(ctx context.Context, itemID, userID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		schema.CatalogItemVote.Table, schema.CatalogItemVote.ItemID, schema.CatalogItemVote.UserID)

	var voted bool
	if err := repository.pool.QueryRow(ctx, query, itemID, userID).Scan(&voted); err != nil {
		return false, fmt.Errorf("postgres: failed to check vote: %w", err)
	}
	return voted, nil
}
