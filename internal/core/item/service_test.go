// Copyright (c) 2026 Dust & Gold. All rights reserved.

package item_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustandgold/api/internal/core/item"
	"github.com/dustandgold/api/internal/platform/apperr"
	"github.com/dustandgold/api/pkg/pointer"
)

// fakeItemRepository keeps items in an insertion-ordered slice so list
// results are deterministic.
type fakeItemRepository struct {
	items []*item.Item
}

func (r *fakeItemRepository) List(_ context.Context, filter item.Filter, limit, offset int) ([]*item.Item, int, error) {
	matched := make([]*item.Item, 0, len(r.items))
	for _, it := range r.items {
		if filter.Type != "" && it.Type != filter.Type {
			continue
		}
		if filter.SubmittedBy != "" && it.SubmittedBy != filter.SubmittedBy {
			continue
		}
		matched = append(matched, it)
	}
	total := len(matched)
	if offset >= len(matched) {
		return []*item.Item{}, total, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (r *fakeItemRepository) FindByID(_ context.Context, id string) (*item.Item, error) {
	for _, it := range r.items {
		if it.ID == id {
			copied := *it
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Item")
}

func (r *fakeItemRepository) Exists(_ context.Context, id string) (bool, error) {
	for _, it := range r.items {
		if it.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeItemRepository) Create(_ context.Context, it *item.Item) error {
	copied := *it
	r.items = append(r.items, &copied)
	return nil
}

func (r *fakeItemRepository) Update(_ context.Context, updated *item.Item) error {
	for i, it := range r.items {
		if it.ID == updated.ID {
			copied := *updated
			r.items[i] = &copied
			return nil
		}
	}
	return apperr.NotFound("Item")
}

func (r *fakeItemRepository) Delete(_ context.Context, id string) error {
	for i, it := range r.items {
		if it.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Item")
}

/*
TestService_CreateItem verifies that a valid submission gets a generated
id, the caller as owner, and empty slices in place of nil collections.
*/
func TestService_CreateItem(t *testing.T) {
	repo := &fakeItemRepository{}
	service := item.NewService(repo)

	created, err := service.CreateItem(context.Background(), "user-1", &item.Item{
		Name: "OK Computer",
		Type: item.TypeMusic,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "user-1", created.SubmittedBy)
	assert.Equal(t, []string{}, created.Artist)
	assert.Equal(t, []string{}, created.Tags)
}

/*
TestService_CreateItem_Validation verifies the rejection matrix for
submissions: missing name, unknown type, malformed URLs, oversized
collections.
*/
func TestService_CreateItem_Validation(t *testing.T) {
	tooManyTags := make([]string, 11)
	for i := range tooManyTags {
		tooManyTags[i] = "tag"
	}

	tests := []struct {
		name  string
		input *item.Item
	}{
		{
			name:  "missing name",
			input: &item.Item{Type: item.TypeBook},
		},
		{
			name:  "unknown type",
			input: &item.Item{Name: "Dune", Type: "podcast"},
		},
		{
			name:  "malformed url",
			input: &item.Item{Name: "Dune", Type: item.TypeBook, URL: pointer.To("not a url")},
		},
		{
			name:  "too many tags",
			input: &item.Item{Name: "Dune", Type: item.TypeBook, Tags: tooManyTags},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeItemRepository{}
			service := item.NewService(repo)

			_, err := service.CreateItem(context.Background(), "user-1", tt.input)
			require.Error(t, err)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
			assert.Empty(t, repo.items)
		})
	}
}

/*
TestService_UpdateItem verifies owner-scoped mutation: descriptive fields
change, while the media type and owner survive whatever the caller sends.
*/
func TestService_UpdateItem(t *testing.T) {
	repo := &fakeItemRepository{}
	service := item.NewService(repo)
	ctx := context.Background()

	created, err := service.CreateItem(ctx, "user-1", &item.Item{
		Name: "OK Computer",
		Type: item.TypeMusic,
	})
	require.NoError(t, err)

	updated, err := service.UpdateItem(ctx, "user-1", &item.Item{
		ID:          created.ID,
		Name:        "OK Computer OKNOTOK",
		Type:        item.TypeMovie, // immutable, must be ignored
		Description: pointer.To("Reissue"),
		Tags:        []string{"rock"},
	})
	require.NoError(t, err)

	assert.Equal(t, "OK Computer OKNOTOK", updated.Name)
	assert.Equal(t, item.TypeMusic, updated.Type)
	assert.Equal(t, "user-1", updated.SubmittedBy)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Reissue", *updated.Description)
	assert.Equal(t, []string{"rock"}, updated.Tags)
}

/*
TestService_UpdateItem_NotOwner verifies that a caller who did not submit
the item is rejected and the row is untouched.
*/
func TestService_UpdateItem_NotOwner(t *testing.T) {
	repo := &fakeItemRepository{}
	service := item.NewService(repo)
	ctx := context.Background()

	created, err := service.CreateItem(ctx, "user-1", &item.Item{
		Name: "OK Computer",
		Type: item.TypeMusic,
	})
	require.NoError(t, err)

	_, err = service.UpdateItem(ctx, "user-2", &item.Item{
		ID:   created.ID,
		Name: "Defaced",
	})
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "FORBIDDEN", appError.Code)

	persisted, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "OK Computer", persisted.Name)
}

/*
TestService_DeleteItem verifies that deletion is owner-scoped and removes
the row for the owner.
*/
func TestService_DeleteItem(t *testing.T) {
	repo := &fakeItemRepository{}
	service := item.NewService(repo)
	ctx := context.Background()

	created, err := service.CreateItem(ctx, "user-1", &item.Item{
		Name: "OK Computer",
		Type: item.TypeMusic,
	})
	require.NoError(t, err)

	err = service.DeleteItem(ctx, "user-2", created.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	require.NoError(t, service.DeleteItem(ctx, "user-1", created.ID))

	_, err = repo.FindByID(ctx, created.ID)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestService_ListItems_TypeFilter verifies that an unknown type filter is
rejected and a valid one narrows the result set.
*/
func TestService_ListItems_TypeFilter(t *testing.T) {
	repo := &fakeItemRepository{}
	service := item.NewService(repo)
	ctx := context.Background()

	_, err := service.CreateItem(ctx, "user-1", &item.Item{Name: "Dune", Type: item.TypeBook})
	require.NoError(t, err)
	_, err = service.CreateItem(ctx, "user-1", &item.Item{Name: "Heat", Type: item.TypeMovie})
	require.NoError(t, err)

	_, _, err = service.ListItems(ctx, item.Filter{Type: "podcast"}, 20, 0)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	items, total, err := service.ListItems(ctx, item.Filter{Type: item.TypeBook}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Dune", items[0].Name)
}
