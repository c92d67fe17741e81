// Copyright (c) 2026 Dust & Gold. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dustandgold/api/internal/platform/apperr"
)

// DefaultYouTubeBaseURL is the production YouTube oEmbed endpoint host.
const DefaultYouTubeBaseURL = "https://www.youtube.com"

// YouTubeClient adapts YouTube's keyless oEmbed endpoint for video detail
// lookups. oEmbed exposes title, channel, and thumbnail only; there is no
// search capability without an API key, so Search always rejects.
type YouTubeClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewYouTubeClient constructs a YouTube oEmbed adapter.
func NewYouTubeClient(httpClient *http.Client, baseURL string) *YouTubeClient {
	return &YouTubeClient{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

type youtubeOEmbed struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	AuthorURL    string `json:"author_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Search is not available for videos.
func (c *YouTubeClient) Search(ctx context.Context, query string) (*SearchResult, error) {
	return nil, apperr.ValidationError("Search is not supported for videos; provide a video id")
}

// Detail resolves a YouTube video id via oEmbed. Videos normalize to the
// catch-all "misc" media type with the channel as the artist.
func (c *YouTubeClient) Detail(ctx context.Context, externalID string) (*StandardizedResponse, error) {
	videoID := strings.TrimSpace(externalID)
	if videoID == "" {
		return nil, apperr.ValidationError("Video id is required")
	}
	watchURL := DefaultYouTubeBaseURL + "/watch?v=" + url.QueryEscape(videoID)

	params := url.Values{}
	params.Set("url", watchURL)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/oembed?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("youtube: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
		return nil, apperr.Upstream("YouTube: video not found", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("youtube: read response: %w", err)
	}

	var embed youtubeOEmbed
	if err := json.Unmarshal(body, &embed); err != nil {
		return nil, fmt.Errorf("youtube: decode oembed response: %w", err)
	}

	entry := &StandardizedResponse{
		Name:       embed.Title,
		Artist:     []string{},
		URL:        &watchURL,
		Tags:       []string{},
		ProviderID: videoID,
		Type:       "misc",
		RawData:    body,
	}
	if embed.AuthorName != "" {
		entry.Artist = []string{embed.AuthorName}
	}
	if embed.ThumbnailURL != "" {
		entry.ImageURL = &embed.ThumbnailURL
	}
	return entry, nil
}
