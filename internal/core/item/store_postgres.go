// Copyright (c) 2026 Dust & Gold. All rights reserved.

/*
Package item implements the user-facing media catalog.

The PostgreSQL repository keeps vote data fully derived: each read
assembles the vote count and the upvoter identity list from the vote
junction table in the same round-trip, using a window function for totals
and JSON aggregation for the nested upvoters. No denormalized counter
column exists anywhere, so the count can never drift from the rows that
justify it.
*/
package item

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dustandgold/api/internal/platform/apperr"
	"github.com/dustandgold/api/internal/platform/database/schema"
	"github.com/dustandgold/api/internal/platform/dberr"
)

// itemRepository implements [Repository] using pgx.
type itemRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed item store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &itemRepository{pool: pool}
}

// itemColumns is the shared projection for hydrated item reads. The two
// sub-queries derive vote state from the vote junction table on every read.
// Both join the account table so votes cast by soft-deleted accounts drop
// out of the count and the upvoter list together.
var itemColumns = fmt.Sprintf(`
	i.%s, i.%s, i.%s, i.%s, i.%s, i.%s,
	i.%s, i.%s, i.%s, i.%s, i.%s,
	i.%s, i.%s,
	(SELECT COUNT(*)
		FROM %s v
		JOIN %s vu ON vu.%s = v.%s AND vu.%s IS NULL
		WHERE v.%s = i.%s) AS votecount,
	COALESCE((
		SELECT json_agg(json_build_object(
			'user_id', u.%s,
			'username', u.%s,
			'display_name', u.%s,
			'avatar_url', u.%s
		) ORDER BY v.%s)
		FROM %s v
		JOIN %s u ON u.%s = v.%s
		WHERE v.%s = i.%s AND u.%s IS NULL
	), '[]') AS upvoters
`,
	schema.CatalogItem.ID, schema.CatalogItem.Type, schema.CatalogItem.Name,
	schema.CatalogItem.Description, schema.CatalogItem.URL, schema.CatalogItem.ImageURL,
	schema.CatalogItem.Artist, schema.CatalogItem.Tags, schema.CatalogItem.PublishedOn,
	schema.CatalogItem.ProviderID, schema.CatalogItem.SubmittedBy,
	schema.CatalogItem.CreatedAt, schema.CatalogItem.UpdatedAt,
	schema.CatalogItemVote.Table,
	schema.UserAccount.Table, schema.UserAccount.ID, schema.CatalogItemVote.UserID, schema.UserAccount.DeletedAt,
	schema.CatalogItemVote.ItemID, schema.CatalogItem.ID,
	schema.UserAccount.ID,
	schema.UserAccount.Username,
	schema.UserAccount.DisplayName,
	schema.UserAccount.AvatarURL,
	schema.CatalogItemVote.CreatedAt,
	schema.CatalogItemVote.Table,
	schema.UserAccount.Table, schema.UserAccount.ID, schema.CatalogItemVote.UserID,
	schema.CatalogItemVote.ItemID, schema.CatalogItem.ID, schema.UserAccount.DeletedAt,
)

/*
List returns a filtered, paginated slice of items and the total count.

The query uses COUNT(*) OVER() to retrieve the total matching count without
a second round-trip, and JSON aggregation to hydrate each item's upvoter
list in the same query.
*/
func (repository *itemRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*Item, int, error) {

	// Query build initialization
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s i
		WHERE 1=1`, itemColumns, schema.CatalogItem.Table))

	// Media type filtering
	if filter.Type != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND i.%s = $%d", schema.CatalogItem.Type, argID))
		args = append(args, filter.Type)
		argID++
	}

	// Tag filtering via array containment
	if len(filter.Tags) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND i.%s @> $%d", schema.CatalogItem.Tags, argID))
		args = append(args, filter.Tags)
		argID++
	}

	// Owner filtering
	if filter.SubmittedBy != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND i.%s = $%d", schema.CatalogItem.SubmittedBy, argID))
		args = append(args, filter.SubmittedBy)
		argID++
	}

	// Voter filtering ("items this user upvoted")
	if filter.VotedBy != "" {
		queryBuilder.WriteString(fmt.Sprintf(
			" AND EXISTS (SELECT 1 FROM %s vv WHERE vv.%s = i.%s AND vv.%s = $%d)",
			schema.CatalogItemVote.Table, schema.CatalogItemVote.ItemID,
			schema.CatalogItem.ID, schema.CatalogItemVote.UserID, argID))
		args = append(args, filter.VotedBy)
		argID++
	}

	// Newest first, with id as a stable tiebreaker
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY i.%s DESC, i.%s DESC",
		schema.CatalogItem.CreatedAt, schema.CatalogItem.ID))

	// Pagination injection
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	// Query execution
	rows, err := repository.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	var totalCount int

	for rows.Next() {
		entry, total, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		totalCount = total
		items = append(items, entry)
	}

	return items, totalCount, nil
}

/*
FindByID retrieves a single hydrated item by primary key.

Returns apperr.NotFound when no row matches.
*/
func (repository *itemRepository) FindByID(ctx context.Context, id string) (*Item, error) {

	query := fmt.Sprintf(`SELECT %s, 1 AS total_count
		FROM %s i
		WHERE i.%s = $1`,
		itemColumns, schema.CatalogItem.Table, schema.CatalogItem.ID)

	rows, err := repository.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to find item by id: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("postgres: failed to find item by id: %w", err)
		}
		return nil, apperr.NotFound("item")
	}

	entry, _, err := scanItem(rows)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Exists reports whether an item row is present without hydrating it.
func (repository *itemRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.CatalogItem.Table, schema.CatalogItem.ID)

	var exists bool
	if err := repository.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to check item existence: %w", err)
	}
	return exists, nil
}

/*
Create persists a new item row.

Vote state is derived, so insertion touches only catalog.item; a fresh item
has zero votes by construction.
*/
func (repository *itemRepository) Create(ctx context.Context, item *Item) error {

	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s,
			%s, %s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		schema.CatalogItem.Table,
		schema.CatalogItem.ID, schema.CatalogItem.Type, schema.CatalogItem.Name,
		schema.CatalogItem.Description, schema.CatalogItem.URL, schema.CatalogItem.ImageURL,
		schema.CatalogItem.Artist, schema.CatalogItem.Tags, schema.CatalogItem.PublishedOn,
		schema.CatalogItem.ProviderID, schema.CatalogItem.SubmittedBy,
	)

	_, err := repository.pool.Exec(ctx, query,
		item.ID, item.Type, item.Name, item.Description, item.URL, item.ImageURL,
		item.Artist, item.Tags, item.PublishedOn, item.ProviderID, item.SubmittedBy,
	)
	if err != nil {
		return dberr.Wrap(err, "create_item")
	}
	return nil
}

/*
Update rewrites the mutable fields of an item.

Type, provider id, owner, and creation timestamp are immutable and never
appear in the SET clause.
*/
func (repository *itemRepository) Update(ctx context.Context, item *Item) error {

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = $4,
			%s = $5, %s = $6, %s = $7, %s = NOW()
		WHERE %s = $8`,
		schema.CatalogItem.Table,
		schema.CatalogItem.Name, schema.CatalogItem.Description,
		schema.CatalogItem.URL, schema.CatalogItem.ImageURL,
		schema.CatalogItem.Artist, schema.CatalogItem.Tags,
		schema.CatalogItem.PublishedOn, schema.CatalogItem.UpdatedAt,
		schema.CatalogItem.ID,
	)

	result, err := repository.pool.Exec(ctx, query,
		item.Name, item.Description, item.URL, item.ImageURL,
		item.Artist, item.Tags, item.PublishedOn, item.ID,
	)
	if err != nil {
		return dberr.Wrap(err, "update_item")
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("item")
	}
	return nil
}

// Delete removes an item. Its vote rows go with it via ON DELETE CASCADE.
func (repository *itemRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.CatalogItem.Table, schema.CatalogItem.ID)

	result, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_item")
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("item")
	}
	return nil
}

// scanItem maps one projected row (itemColumns + total_count) onto the
// domain entity, deserializing the aggregated upvoter JSON.
func scanItem(rows pgx.Rows) (*Item, int, error) {
	entry := &Item{}
	var upvotersJSON []byte
	var totalCount int

	err := rows.Scan(
		&entry.ID, &entry.Type, &entry.Name, &entry.Description, &entry.URL, &entry.ImageURL,
		&entry.Artist, &entry.Tags, &entry.PublishedOn, &entry.ProviderID, &entry.SubmittedBy,
		&entry.CreatedAt, &entry.UpdatedAt,
		&entry.VoteCount, &upvotersJSON, &totalCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, apperr.NotFound("item")
		}
		return nil, 0, fmt.Errorf("postgres: failed to scan item: %w", err)
	}

	if err := json.Unmarshal(upvotersJSON, &entry.Upvoters); err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to unmarshal upvoters: %w", err)
	}

	// Array columns come back nil when empty; the API contract is [].
	if entry.Artist == nil {
		entry.Artist = []string{}
	}
	if entry.Tags == nil {
		entry.Tags = []string{}
	}
	if entry.Upvoters == nil {
		entry.Upvoters = []Upvoter{}
	}
	return entry, totalCount, nil
}
