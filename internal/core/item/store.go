// Copyright (c) 2026 Dust & Gold. All rights reserved.

package item

import "context"

// Filter narrows a catalog listing.
type Filter struct {
	// Type restricts to one media type when non-empty.
	Type string

	// Tags restricts to items carrying every listed tag when non-empty.
	Tags []string

	// SubmittedBy restricts to items owned by a user id when non-empty.
	SubmittedBy string

	// VotedBy restricts to items the given user has upvoted when non-empty.
	VotedBy string
}

// Repository is the persistence contract for catalog items. Every read
// returns items hydrated with their derived vote count and upvoter list.
type Repository interface {
	// List returns a filtered, paginated page of items plus the total count.
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Item, int, error)

	// FindByID returns a single hydrated item, or apperr.NotFound.
	FindByID(ctx context.Context, id string) (*Item, error)

	// Exists reports whether an item row exists.
	Exists(ctx context.Context, id string) (bool, error)

	// Create persists a new item.
	Create(ctx context.Context, item *Item) error

	// Update persists the mutable fields of an existing item, or returns
	// apperr.NotFound.
	Update(ctx context.Context, item *Item) error

	// Delete removes an item and, via cascade, its votes. Returns
	// apperr.NotFound when no row matches.
	Delete(ctx context.Context, id string) error
}
