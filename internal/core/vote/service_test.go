// Copyright (c) 2026 Dust & Gold. All rights reserved.

package vote_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustandgold/api/internal/core/vote"
	"github.com/dustandgold/api/internal/platform/apperr"
)

// voteKey identifies one (item, user) vote row in the fake store.
type voteKey struct {
	itemID string
	userID string
}

// fakeVoteRepository mirrors the persistence contract in memory: one row
// per (item, user) pair, counts derived from surviving rows.
type fakeVoteRepository struct {
	rows map[voteKey]struct{}
}

func newFakeVoteRepository() *fakeVoteRepository {
	return &fakeVoteRepository{rows: map[voteKey]struct{}{}}
}

func (r *fakeVoteRepository) Toggle(ctx context.Context, itemID, userID string) (*vote.ToggleResult, error) {
	key := voteKey{itemID: itemID, userID: userID}
	result := &vote.ToggleResult{ItemID: itemID}
	if _, ok := r.rows[key]; ok {
		delete(r.rows, key)
	} else {
		r.rows[key] = struct{}{}
		result.Voted = true
	}
	count, _ := r.CountForItem(ctx, itemID)
	result.Votes = count
	return result, nil
}

func (r *fakeVoteRepository) CountForItem(_ context.Context, itemID string) (int, error) {
	count := 0
	for key := range r.rows {
		if key.itemID == itemID {
			count++
		}
	}
	return count, nil
}

func (r *fakeVoteRepository) HasVoted(_ context.Context, itemID, userID string) (bool, error) {
	_, ok := r.rows[voteKey{itemID: itemID, userID: userID}]
	return ok, nil
}

// fakeItemChecker knows a fixed set of live item ids.
type fakeItemChecker struct {
	known map[string]bool
}

func (c *fakeItemChecker) Exists(_ context.Context, id string) (bool, error) {
	return c.known[id], nil
}

/*
TestService_Toggle_UnknownItem verifies that voting on a missing item
fails with a not-found error and records nothing.
*/
func TestService_Toggle_UnknownItem(t *testing.T) {
	repo := newFakeVoteRepository()
	service := vote.NewService(repo, &fakeItemChecker{known: map[string]bool{}})

	_, err := service.Toggle(context.Background(), "ghost-item", "user-1")
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "NOT_FOUND", appError.Code)
	assert.Empty(t, repo.rows)
}

/*
TestService_Toggle verifies the toggle cycle: first toggle casts the vote,
second toggle retracts it and restores the original count exactly.
*/
func TestService_Toggle(t *testing.T) {
	repo := newFakeVoteRepository()
	service := vote.NewService(repo, &fakeItemChecker{known: map[string]bool{"item-1": true}})
	ctx := context.Background()

	first, err := service.Toggle(ctx, "item-1", "user-1")
	require.NoError(t, err)
	assert.True(t, first.Voted)
	assert.Equal(t, 1, first.Votes)

	second, err := service.Toggle(ctx, "item-1", "user-1")
	require.NoError(t, err)
	assert.False(t, second.Voted)
	assert.Equal(t, 0, second.Votes)

	voted, err := repo.HasVoted(ctx, "item-1", "user-1")
	require.NoError(t, err)
	assert.False(t, voted)
}

/*
TestService_Toggle_CountTracksVoters verifies that the returned count
always equals the number of distinct users currently voting on the item.
*/
func TestService_Toggle_CountTracksVoters(t *testing.T) {
	repo := newFakeVoteRepository()
	service := vote.NewService(repo, &fakeItemChecker{known: map[string]bool{"item-1": true}})
	ctx := context.Background()

	for i, userID := range []string{"user-1", "user-2", "user-3"} {
		result, err := service.Toggle(ctx, "item-1", userID)
		require.NoError(t, err)
		assert.True(t, result.Voted)
		assert.Equal(t, i+1, result.Votes)
	}

	// One retraction drops the count without touching the other voters.
	result, err := service.Toggle(ctx, "item-1", "user-2")
	require.NoError(t, err)
	assert.False(t, result.Voted)
	assert.Equal(t, 2, result.Votes)

	count, err := repo.CountForItem(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
