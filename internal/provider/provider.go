// Copyright (c) 2026 Dust & Gold. All rights reserved.

/*
Package provider implements the third-party metadata adapter layer.

It presents one uniform interface — search by query, detail by external id —
over four unrelated upstream APIs (OMDB for movies, OpenLibrary for books,
Last.fm for music tracks, YouTube oEmbed for videos), normalizing each
provider's response shape into a single [StandardizedResponse] record before
any downstream code sees it.

# Architecture

  - Clients: one small HTTP client per upstream, each decoding into its own
    typed response structs and normalizing at the boundary.
  - Resilience: every client is wrapped in a circuit breaker; a tripped
    breaker surfaces as an upstream error, never a hang.
  - Cache: normalized results are cached in Redis with short TTLs so
    search-as-you-type does not hammer rate-limited upstreams.

# Failure Semantics

Upstream non-success responses and "no results" sentinels surface as a single
client-visible error carrying the upstream's own message. Missing optional
fields normalize to nil/empty — never an error. There are no retries.
*/
package provider

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dustandgold/api/pkg/slice"
)

// Media types accepted by the adapter layer.
const (
	TypeMovie = "movie"
	TypeBook  = "book"
	TypeMusic = "music"

	// TypeVideo supports detail lookups only (YouTube has no keyless search API).
	TypeVideo = "video"
)

// StandardizedResponse is the single normalized record shape produced by
// every adapter. It is transient — returned to clients to pre-fill
// submission forms, never persisted.
type StandardizedResponse struct {
	Name        string     `json:"name"`
	Artist      []string   `json:"artist"`
	PublishedOn *time.Time `json:"published_on"`
	Description *string    `json:"description"`
	ImageURL    *string    `json:"image_url"`
	URL         *string    `json:"url"`
	Tags        []string   `json:"tags"`
	ProviderID  string     `json:"provider_id"`
	Type        string     `json:"type"`

	// RawData carries the provider's original payload for debugging and
	// access to fields the normalization drops.
	RawData json.RawMessage `json:"raw_data"`
}

// SearchResult is a normalized page of search matches.
type SearchResult struct {
	Results      []StandardizedResponse `json:"results"`
	TotalResults int                    `json:"totalResults"`
}

// Client is the uniform contract every provider adapter satisfies.
//
// Search and Detail must honor context cancellation: a superseded
// search-as-you-type request is cancelled by the HTTP layer and the adapter
// must abandon the upstream call with it.
type Client interface {
	// Search queries the upstream by free-text query and returns a
	// normalized page of results.
	Search(ctx context.Context, query string) (*SearchResult, error)

	// Detail fetches a single record by the provider's external id.
	Detail(ctx context.Context, externalID string) (*StandardizedResponse, error)
}

// IsValidType reports whether t names a known provider type.
func IsValidType(t string) bool {
	switch t {
	case TypeMovie, TypeBook, TypeMusic, TypeVideo:
		return true
	}
	return false
}

// maxProviderTags caps tag lists from upstreams that serve dozens of
// subjects per record.
const maxProviderTags = 5

func capTags(tags []string) []string {
	return slice.Truncate(emptyIfNil(tags), maxProviderTags)
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
