// Copyright (c) 2026 Dust & Gold. All rights reserved.

package vote_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustandgold/api/internal/core/vote"
	"github.com/dustandgold/api/internal/platform/migration"
	"github.com/dustandgold/api/pkg/uuidv7"
)

// testDatabaseEnv names the DSN variable that opts these tests into running
// against a real PostgreSQL instance.
const testDatabaseEnv = "TEST_DATABASE_URL"

// newTestPool connects to the test database and ensures the schema is
// migrated. Tests are skipped when no database is configured.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(testDatabaseEnv)
	if dsn == "" {
		t.Skipf("set %s to run database tests", testDatabaseEnv)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, migration.RunUp(dsn, "../../../data/migrations", logger))

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

// createAccount inserts a minimal live account row and schedules its removal.
func createAccount(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()

	id := uuidv7.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users.account (id, email, passwordhash, displayname)
		VALUES ($1, $2, 'not-a-real-hash', 'Test Account')`,
		id, fmt.Sprintf("%s@example.com", id))
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users.account WHERE id = $1`, id)
	})
	return id
}

// createCatalogItem inserts a bare item row owned by the given account.
// Deleting the item cascades over its vote rows.
func createCatalogItem(t *testing.T, pool *pgxpool.Pool, ownerID string) string {
	t.Helper()

	id := uuidv7.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO catalog.item (id, type, name, submittedby)
		VALUES ($1, 'music', 'Test Item', $2)`,
		id, ownerID)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM catalog.item WHERE id = $1`, id)
	})
	return id
}

/*
TestRepository_Toggle_RoundTrip verifies the toggle against a real junction
table: a cast lands one row, a retraction removes it, and the reported
count always matches the rows behind it.
*/
func TestRepository_Toggle_RoundTrip(t *testing.T) {
	pool := newTestPool(t)
	repository := vote.NewRepository(pool)
	ctx := context.Background()

	userID := createAccount(t, pool)
	itemID := createCatalogItem(t, pool, userID)

	cast, err := repository.Toggle(ctx, itemID, userID)
	require.NoError(t, err)
	assert.True(t, cast.Voted)
	assert.Equal(t, 1, cast.Votes)

	retract, err := repository.Toggle(ctx, itemID, userID)
	require.NoError(t, err)
	assert.False(t, retract.Voted)
	assert.Equal(t, 0, retract.Votes)

	voted, err := repository.HasVoted(ctx, itemID, userID)
	require.NoError(t, err)
	assert.False(t, voted)
}

/*
TestRepository_Toggle_ConcurrentDuplicates verifies that simultaneous
duplicate toggles for one (item, user) pair never corrupt the junction
table: the UNIQUE constraint and the ON CONFLICT insert path guarantee at
most one row exists afterwards, every reported count stays within the
single-voter bound, and the final count agrees with HasVoted.
*/
func TestRepository_Toggle_ConcurrentDuplicates(t *testing.T) {
	pool := newTestPool(t)
	repository := vote.NewRepository(pool)
	ctx := context.Background()

	userID := createAccount(t, pool)
	itemID := createCatalogItem(t, pool, userID)

	const callers = 8
	results := make([]*vote.ToggleResult, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			results[slot], errs[slot] = repository.Toggle(ctx, itemID, userID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.LessOrEqual(t, results[i].Votes, 1)
		assert.GreaterOrEqual(t, results[i].Votes, 0)
	}

	var rowCount int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM catalog.itemvote WHERE itemid = $1`, itemID).Scan(&rowCount))
	assert.LessOrEqual(t, rowCount, 1)

	count, err := repository.CountForItem(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, rowCount, count)

	voted, err := repository.HasVoted(ctx, itemID, userID)
	require.NoError(t, err)
	assert.Equal(t, rowCount == 1, voted)
}

/*
TestRepository_CountForItem_ExcludesDeletedAccounts verifies that a vote
cast by a since-deleted account stops counting while the row itself
survives for a potential account restore.
*/
func TestRepository_CountForItem_ExcludesDeletedAccounts(t *testing.T) {
	pool := newTestPool(t)
	repository := vote.NewRepository(pool)
	ctx := context.Background()

	ownerID := createAccount(t, pool)
	voterID := createAccount(t, pool)
	itemID := createCatalogItem(t, pool, ownerID)

	_, err := repository.Toggle(ctx, itemID, ownerID)
	require.NoError(t, err)
	_, err = repository.Toggle(ctx, itemID, voterID)
	require.NoError(t, err)

	count, err := repository.CountForItem(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = pool.Exec(ctx, `UPDATE users.account SET deletedat = NOW() WHERE id = $1`, voterID)
	require.NoError(t, err)

	count, err = repository.CountForItem(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
