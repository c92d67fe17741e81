// Copyright (c) 2026 Dust & Gold. All rights reserved.

package provider

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustandgold/api/internal/platform/apperr"
)

// defaultUpstreamTimeout bounds a single upstream HTTP call. It is shorter
// than the global request timeout so one slow provider cannot consume the
// whole request budget.
const defaultUpstreamTimeout = 10 * time.Second

// Service dispatches provider lookups to the adapter for the requested
// media type, consulting the cache first.
type Service struct {
	clients map[string]Client
	cache   *Cache
	logger  *slog.Logger
}

// NewService wires every adapter behind its circuit breaker. The cache may
// be nil.
func NewService(cfg ClientConfig, cache *Cache, logger *slog.Logger) *Service {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultUpstreamTimeout}
	}

	return &Service{
		clients: map[string]Client{
			TypeMovie: withBreaker("OMDB",
				NewOMDBClient(httpClient, baseOr(cfg.OMDBBaseURL, DefaultOMDBBaseURL), cfg.OMDBAPIKey), logger),
			TypeBook: withBreaker("OpenLibrary",
				NewOpenLibraryClient(httpClient, baseOr(cfg.OpenLibraryBaseURL, DefaultOpenLibraryBaseURL), logger), logger),
			TypeMusic: withBreaker("Last.fm",
				NewLastFMClient(httpClient, baseOr(cfg.LastFMBaseURL, DefaultLastFMBaseURL), cfg.LastFMAPIKey), logger),
			TypeVideo: withBreaker("YouTube",
				NewYouTubeClient(httpClient, baseOr(cfg.YouTubeBaseURL, DefaultYouTubeBaseURL)), logger),
		},
		cache:  cache,
		logger: logger,
	}
}

// ClientConfig carries adapter credentials and optional endpoint overrides.
// Zero-value base URLs resolve to the production endpoints.
type ClientConfig struct {
	HTTPClient *http.Client

	OMDBAPIKey   string
	LastFMAPIKey string

	OMDBBaseURL        string
	OpenLibraryBaseURL string
	LastFMBaseURL      string
	YouTubeBaseURL     string
}

func baseOr(base, fallback string) string {
	if base == "" {
		return fallback
	}
	return base
}

// Search runs a free-text provider search for the given media type.
func (s *Service) Search(ctx context.Context, mediaType, query string) (*SearchResult, error) {
	client, err := s.clientFor(mediaType)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.ValidationError("Search query is required")
	}

	if cached, ok := s.cache.GetSearch(ctx, mediaType, query); ok {
		return cached, nil
	}

	result, err := client.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	s.cache.SetSearch(ctx, mediaType, query, result)
	return result, nil
}

// Detail resolves a single record by external id for the given media type.
func (s *Service) Detail(ctx context.Context, mediaType, externalID string) (*StandardizedResponse, error) {
	client, err := s.clientFor(mediaType)
	if err != nil {
		return nil, err
	}

	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperr.ValidationError("Provider id is required")
	}

	if cached, ok := s.cache.GetDetail(ctx, mediaType, externalID); ok {
		return cached, nil
	}

	result, err := client.Detail(ctx, externalID)
	if err != nil {
		return nil, err
	}

	s.cache.SetDetail(ctx, mediaType, externalID, result)
	return result, nil
}

func (s *Service) clientFor(mediaType string) (Client, error) {
	client, ok := s.clients[mediaType]
	if !ok {
		return nil, apperr.ValidationError("Unknown provider type; expected one of movie, book, music, video")
	}
	return client, nil
}
