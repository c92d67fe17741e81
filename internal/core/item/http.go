// Copyright (c) 2026 Dust & Gold. All rights reserved.

/*
Package item provides the HTTP interface for the media catalog.

It exposes endpoints for browsing the shared catalog, submitting new
entries, owner-scoped editing, and vote toggling.

# Routing Strategy

  - Public: Browsing and single-item reads are open to all visitors.
  - Authenticated: Submission, mutation, and voting require a valid
    access token; edits and deletes are additionally owner-scoped in the
    service layer.

The handler translates between the web/JSON layer and the internal domain
[Service].
*/
package item

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dustandgold/api/internal/core/vote"
	"github.com/dustandgold/api/internal/platform/middleware"
	"github.com/dustandgold/api/internal/users/profile"
	requestutil "github.com/dustandgold/api/internal/platform/request"
	"github.com/dustandgold/api/internal/platform/respond"
	"github.com/dustandgold/api/pkg/convert"
	"github.com/dustandgold/api/pkg/pagination"
	"github.com/dustandgold/api/pkg/query"
)

// UserDirectory resolves public usernames for the ?username= listing
// filter. Satisfied by the profile service.
type UserDirectory interface {
	GetPublicByUsername(ctx context.Context, username string) (*profile.PublicProfile, error)
}

// # Handler Implementation

// Handler implements the HTTP layer for the catalog.
type Handler struct {
	service *Service
	votes   *vote.Service
	users   UserDirectory
}

// NewHandler constructs an item [Handler].
func NewHandler(service *Service, votes *vote.Service, users UserDirectory) *Handler {
	return &Handler{service: service, votes: votes, users: users}
}

// Routes returns a [chi.Router] with the catalog endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Browsing
	router.Get("/", handler.listItems)
	router.Get("/{id}", handler.getItem)

	// ## Authenticated Interactions
	router.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth)

		authed.Post("/", handler.createItem)
		authed.Put("/{id}", handler.updateItem)
		authed.Delete("/{id}", handler.deleteItem)

		authed.Post("/{id}/vote", handler.toggleVote)
	})

	return router
}

// # Browsing Endpoints

/*
GET /api/v1/items.

Request:
  - type: string (music, book, movie, misc)
  - tags: string (comma-separated; items carrying all listed tags)
  - username: string (only items submitted by this user)
  - voted_by: string ("me": only items the caller has upvoted)
  - mine: bool (only the caller's submissions; requires auth)
  - limit, page: pagination

Response:
  - 200: []Item: Paginated catalog page with derived vote state. When
    filtering by username, the envelope also carries that user's public
    profile.
  - 404: ErrNotFound: Username filter names an unknown user
*/
func (handler *Handler) listItems(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Type: queryParams.Get("type"),
		Tags: query.StringSlice(queryParams.Get("tags")),
	}

	// Username filter resolution; the listing response carries the
	// resolved public profile alongside the page
	var submitter *profile.PublicProfile
	if username := queryParams.Get("username"); username != "" {
		resolved, err := handler.users.GetPublicByUsername(request.Context(), username)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		submitter = resolved
		filter.SubmittedBy = resolved.ID
	}

	// Caller-scoped filters
	if convert.ToBool(queryParams.Get("mine")) {
		userID, err := requestutil.RequiredUserID(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		filter.SubmittedBy = userID
	}
	if queryParams.Get("voted_by") == "me" {
		userID, err := requestutil.RequiredUserID(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		filter.VotedBy = userID
	}

	items, total, err := handler.service.ListItems(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if items == nil {
		items = []*Item{}
	}

	meta := pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total)
	if submitter != nil {
		respond.PaginatedWithUser(writer, items, submitter, meta)
		return
	}
	respond.Paginated(writer, items, meta)
}

/*
GET /api/v1/items/{id}.

Response:
  - 200: Item: Success
  - 404: ErrNotFound: Item does not exist
*/
func (handler *Handler) getItem(writer http.ResponseWriter, request *http.Request) {
	entry, err := handler.service.GetItem(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entry)
}

// # Request Payloads

// itemRequest is the inbound JSON schema for item creation and updates.
type itemRequest struct {
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	URL         *string    `json:"url"`
	ImageURL    *string    `json:"image_url"`
	Artist      []string   `json:"artist"`
	Tags        []string   `json:"tags"`
	PublishedOn *time.Time `json:"published_on"`
	ProviderID  *string    `json:"provider_id"`
}

// # Mutation Endpoints

/*
POST /api/v1/items.

Description: Submits a new entry to the shared catalog. The caller
becomes the immutable owner.

Response:
  - 201: Item: Created entry, hydrated
  - 400: ErrValidation: Payload constraint violations
  - 401: ErrUnauthorized: Missing or invalid token
*/
func (handler *Handler) createItem(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload itemRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.CreateItem(request.Context(), userID, &Item{
		Type:        payload.Type,
		Name:        payload.Name,
		Description: payload.Description,
		URL:         payload.URL,
		ImageURL:    payload.ImageURL,
		Artist:      payload.Artist,
		Tags:        payload.Tags,
		PublishedOn: payload.PublishedOn,
		ProviderID:  payload.ProviderID,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, created)
}

/*
PUT /api/v1/items/{id}.

Description: Replaces the descriptive fields of an owned item. The media
type, provider id, owner, and vote state never change here.

Response:
  - 200: Item: Updated entry
  - 403: ErrForbidden: Caller does not own the item
  - 404: ErrNotFound: Item does not exist
*/
func (handler *Handler) updateItem(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload itemRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.UpdateItem(request.Context(), userID, &Item{
		ID:          requestutil.ID(request, "id"),
		Name:        payload.Name,
		Description: payload.Description,
		URL:         payload.URL,
		ImageURL:    payload.ImageURL,
		Artist:      payload.Artist,
		Tags:        payload.Tags,
		PublishedOn: payload.PublishedOn,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

/*
DELETE /api/v1/items/{id}.

Response:
  - 204: No content
  - 403: ErrForbidden: Caller does not own the item
  - 404: ErrNotFound: Item does not exist
*/
func (handler *Handler) deleteItem(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteItem(request.Context(), userID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Voting

/*
POST /api/v1/items/{id}/vote.

Description: Toggles the caller's upvote. Voting twice returns the item to
its prior state; the returned count always equals the number of users
currently voting for the item.

Response:
  - 200: ToggleResult: {item_id, voted, votes}
  - 401: ErrUnauthorized: Missing or invalid token
  - 404: ErrNotFound: Item does not exist
*/
func (handler *Handler) toggleVote(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.votes.Toggle(request.Context(), requestutil.ID(request, "id"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}
