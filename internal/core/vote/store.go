// Copyright (c) 2026 Dust & Gold. All rights reserved.

package vote

import "context"

// Repository is the persistence contract for votes.
type Repository interface {
	// Toggle flips the caller's vote on an item inside a single
	// transaction and returns the resulting state plus the item's vote
	// count recomputed from the surviving rows.
	Toggle(ctx context.Context, itemID, userID string) (*ToggleResult, error)

	// CountForItem returns the number of vote rows an item currently has.
	CountForItem(ctx context.Context, itemID string) (int, error)

	// HasVoted reports whether a user currently has a vote on an item.
	HasVoted(ctx context.Context, itemID, userID string) (bool, error)
}
