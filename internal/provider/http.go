// Copyright (c) 2026 Dust & Gold. All rights reserved.

package provider

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dustandgold/api/internal/platform/respond"
)

// Handler serves the provider lookup endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs the provider HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the provider endpoints.
func (h *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", h.lookup)
	return router
}

// lookup handles GET /provider-search. With ?id= it performs a detail
// lookup; otherwise ?query= performs a search. ?type= selects the adapter.
func (h *Handler) lookup(writer http.ResponseWriter, request *http.Request) {
	mediaType := request.URL.Query().Get("type")
	externalID := request.URL.Query().Get("id")
	query := request.URL.Query().Get("query")

	if externalID != "" {
		result, err := h.service.Detail(request.Context(), mediaType, externalID)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, result)
		return
	}

	result, err := h.service.Search(request.Context(), mediaType, query)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}
