// Copyright (c) 2026 Dust & Gold. All rights reserved.

package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dustandgold/api/internal/platform/middleware"
	requestutil "github.com/dustandgold/api/internal/platform/request"
	"github.com/dustandgold/api/internal/platform/respond"
	"github.com/dustandgold/api/internal/platform/validate"
)

// Handler implements the HTTP layer for profile management.
type Handler struct {
	profileService *Service
}

// NewHandler constructs a profile [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{profileService: service}
}

// Routes returns a [chi.Router] with the profile endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public discovery
	router.Get("/{username}", handler.getPublicProfile)

	// Own profile management
	router.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth)
		authed.Get("/", handler.getProfile)
		authed.Put("/", handler.updateProfile)
		authed.Delete("/", handler.deleteAccount)
	})

	return router
}

// # Own Profile Endpoints

/*
GET /api/v1/profile.

Description: Retrieves the full private profile of the authenticated user.

Response:
  - 200: User: Fully hydrated private profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.profileService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

// updateProfileRequest defines the expected JSON payload for profile
// updates. Absent fields are untouched.
type updateProfileRequest struct {
	Username    *string `json:"username"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

/*
PUT /api/v1/profile.

Description: Applies partial updates to the authenticated user's profile.
Username changes are normalized and checked against length, charset,
reserved-word, and uniqueness rules.

Response:
  - 200: User: The updated profile
  - 400: ErrValidation: Handle policy violation
  - 409: ErrConflict: Username already taken
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.profileService.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		Username:    input.Username,
		DisplayName: input.DisplayName,
		AvatarURL:   input.AvatarURL,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

/*
DELETE /api/v1/profile.

Description: Soft-deletes the caller's account and revokes every session.

Response:
  - 204: No Content
*/
func (handler *Handler) deleteAccount(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.profileService.DeleteAccount(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Public Profile Endpoints

/*
GET /api/v1/profile/{username}.

Description: Retrieves the public identity behind a handle.

Response:
  - 200: PublicProfile
  - 404: ErrNotFound: Unknown handle
*/
func (handler *Handler) getPublicProfile(writer http.ResponseWriter, request *http.Request) {
	profile, err := handler.profileService.GetPublicByUsername(request.Context(), requestutil.ID(request, "username"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}
