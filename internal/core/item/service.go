// Copyright (c) 2026 Dust & Gold. All rights reserved.

package item

import (
	"context"

	"github.com/dustandgold/api/internal/platform/apperr"
	"github.com/dustandgold/api/internal/platform/validate"
	"github.com/dustandgold/api/pkg/uuidv7"
)

// JSON field identifiers used in validation errors.
const (
	FieldName        = "name"
	FieldType        = "type"
	FieldDescription = "description"
	FieldURL         = "url"
	FieldImageURL    = "image_url"
	FieldArtist      = "artist"
	FieldTags        = "tags"
)

// Content limits for user-submitted fields.
const (
	maxNameLen        = 200
	maxDescriptionLen = 5000
	maxArtists        = 10
	maxTags           = 10
)

// # Service Layer

// Service orchestrates the business logic of the media catalog: listing,
// submission, owner-scoped mutation, and deletion.
type Service struct {
	repo Repository
}

// NewService constructs a new [Service] with its repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// # Lookups

/*
ListItems retrieves a paginated, filtered page of catalog items.

Every returned item is hydrated with its derived vote count and upvoter
identities.
*/
func (service *Service) ListItems(ctx context.Context, filter Filter, limit, offset int) ([]*Item, int, error) {
	if filter.Type != "" {
		validator := &validate.Validator{}
		validator.OneOf(FieldType, filter.Type, Types()...)
		if err := validator.Err(); err != nil {
			return nil, 0, err
		}
	}
	return service.repo.List(ctx, filter, limit, offset)
}

// GetItem fetches a single hydrated item by id.
func (service *Service) GetItem(ctx context.Context, id string) (*Item, error) {
	return service.repo.FindByID(ctx, id)
}

// # Management

/*
CreateItem validates and persists a new submission.

The authenticated caller becomes the immutable owner; the media type is
fixed at creation. A fresh item starts with zero votes by construction
since vote state is derived, not stored.
*/
func (service *Service) CreateItem(ctx context.Context, ownerID string, item *Item) (*Item, error) {

	// Business attribute validation
	validator := &validate.Validator{}
	validator.Required(FieldName, item.Name).MaxLen(FieldName, item.Name, maxNameLen)
	validator.Required(FieldType, item.Type).OneOf(FieldType, item.Type, Types()...)
	validator.MaxItems(FieldArtist, len(item.Artist), maxArtists)
	validator.MaxItems(FieldTags, len(item.Tags), maxTags)
	if item.Description != nil {
		validator.MaxLen(FieldDescription, *item.Description, maxDescriptionLen)
	}
	if item.URL != nil {
		validator.URL(FieldURL, *item.URL)
	}
	if item.ImageURL != nil {
		validator.URL(FieldImageURL, *item.ImageURL)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Identity assignment
	item.ID = uuidv7.New()
	item.SubmittedBy = ownerID

	if item.Artist == nil {
		item.Artist = []string{}
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}

	if err := service.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return service.repo.FindByID(ctx, item.ID)
}

/*
UpdateItem applies owner-scoped modifications to an existing item.

Only descriptive fields may change. The media type, provider id, owner,
and vote state are immutable; inbound values for them are ignored. A
caller who does not own the item receives apperr.Forbidden.
*/
func (service *Service) UpdateItem(ctx context.Context, callerID string, updated *Item) (*Item, error) {

	// Ownership gate
	existing, err := service.repo.FindByID(ctx, updated.ID)
	if err != nil {
		return nil, err
	}
	if existing.SubmittedBy != callerID {
		return nil, apperr.Forbidden("Only the submitter can modify this item")
	}

	// Business attribute validation
	validator := &validate.Validator{}
	validator.Required(FieldName, updated.Name).MaxLen(FieldName, updated.Name, maxNameLen)
	validator.MaxItems(FieldArtist, len(updated.Artist), maxArtists)
	validator.MaxItems(FieldTags, len(updated.Tags), maxTags)
	if updated.Description != nil {
		validator.MaxLen(FieldDescription, *updated.Description, maxDescriptionLen)
	}
	if updated.URL != nil {
		validator.URL(FieldURL, *updated.URL)
	}
	if updated.ImageURL != nil {
		validator.URL(FieldImageURL, *updated.ImageURL)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Mutable field application onto the persisted row
	existing.Name = updated.Name
	existing.Description = updated.Description
	existing.URL = updated.URL
	existing.ImageURL = updated.ImageURL
	existing.PublishedOn = updated.PublishedOn
	existing.Artist = updated.Artist
	existing.Tags = updated.Tags
	if existing.Artist == nil {
		existing.Artist = []string{}
	}
	if existing.Tags == nil {
		existing.Tags = []string{}
	}

	if err := service.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return service.repo.FindByID(ctx, existing.ID)
}

/*
DeleteItem removes an item and all of its votes.

Deletion is owner-scoped like updates; vote rows disappear with the item
via the foreign key cascade.
*/
func (service *Service) DeleteItem(ctx context.Context, callerID, id string) error {
	existing, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.SubmittedBy != callerID {
		return apperr.Forbidden("Only the submitter can delete this item")
	}
	return service.repo.Delete(ctx, id)
}
