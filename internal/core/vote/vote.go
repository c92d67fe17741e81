// Copyright (c) 2026 Dust & Gold. All rights reserved.

package vote

import "time"

// Vote is one user's endorsement of one catalog item. The (ItemID, UserID)
// pair is unique; a user either has a vote on an item or does not.
type Vote struct {
	ItemID    string    `json:"item_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ToggleResult reports the caller's vote state and the item's total after a
// toggle. Votes always equals the number of vote rows the item has at the
// end of the toggle transaction.
type ToggleResult struct {
	ItemID string `json:"item_id"`
	Voted  bool   `json:"voted"`
	Votes  int    `json:"votes"`
}
