// Copyright (c) 2026 Dust & Gold. All rights reserved.

package vote

import (
	"context"

	"github.com/dustandgold/api/internal/platform/apperr"
)

// ItemChecker answers whether a catalog item exists. Satisfied by the item
// repository; declared here so the vote layer does not depend on the item
// package.
type ItemChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Service orchestrates vote toggles.
type Service struct {
	repo  Repository
	items ItemChecker
}

// NewService constructs a vote [Service].
func NewService(repo Repository, items ItemChecker) *Service {
	return &Service{repo: repo, items: items}
}

/*
Toggle flips the caller's vote on an item.

Toggling twice restores the original state exactly. The returned count is
recomputed inside the toggle transaction, so it always equals the number
of users currently voting for the item.
*/
func (service *Service) Toggle(ctx context.Context, itemID, userID string) (*ToggleResult, error) {

	// Votes must reference a live item
	exists, err := service.items.Exists(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("item")
	}

	return service.repo.Toggle(ctx, itemID, userID)
}
