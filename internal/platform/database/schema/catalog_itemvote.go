// Copyright (c) 2026 Dust & Gold. All rights reserved.

package schema

// CatalogItemVoteTable represents the 'catalog.itemvote' table
//
// The (ItemID, UserID) pair carries a UNIQUE constraint; it is the sole
// correctness mechanism of the vote subsystem.
type CatalogItemVoteTable struct {
	Table     string
	ItemID    string
	UserID    string
	CreatedAt string
}

// CatalogItemVote is the schema definition for catalog.itemvote
var CatalogItemVote = CatalogItemVoteTable{
	Table:     "catalog.itemvote",
	ItemID:    "itemid",
	UserID:    "userid",
	CreatedAt: "createdat",
}
