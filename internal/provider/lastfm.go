// Copyright (c) 2026 Dust & Gold. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dustandgold/api/internal/platform/apperr"
)

// DefaultLastFMBaseURL is the production Last.fm endpoint.
const DefaultLastFMBaseURL = "https://ws.audioscrobbler.com"

// trackIDSeparator joins artist and track into the composite external id
// used for music detail lookups ("Radiohead:Karma Police"). Last.fm has no
// stable single-field track identifier.
const trackIDSeparator = ":"

// LastFMClient adapts the Last.fm track API.
type LastFMClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewLastFMClient constructs a Last.fm adapter.
func NewLastFMClient(httpClient *http.Client, baseURL, apiKey string) *LastFMClient {
	return &LastFMClient{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// SplitTrackID decomposes a composite music id into artist and track. The
// id must contain exactly one separator with non-empty text on both sides.
func SplitTrackID(externalID string) (artist, track string, err error) {
	parts := strings.SplitN(externalID, trackIDSeparator, 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", apperr.ValidationError("Music id must be in the form \"artist:track\"")
	}
	return parts[0], parts[1], nil
}

// # Wire Types

type lastfmError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

type lastfmSearchEnvelope struct {
	Results struct {
		TotalResults string `json:"opensearch:totalResults"`
		TrackMatches struct {
			Track lastfmTrackList `json:"track"`
		} `json:"trackmatches"`
	} `json:"results"`
}

type lastfmSearchTrack struct {
	Name   string        `json:"name"`
	Artist string        `json:"artist"`
	URL    string        `json:"url"`
	Image  []lastfmImage `json:"image"`
}

// lastfmTrackList tolerates Last.fm serving a single match as a bare object
// instead of a one-element array.
type lastfmTrackList []json.RawMessage

func (l *lastfmTrackList) UnmarshalJSON(data []byte) error {
	var many []json.RawMessage
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one json.RawMessage
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = lastfmTrackList{one}
	return nil
}

type lastfmImage struct {
	Size string `json:"size"`
	URL  string `json:"#text"`
}

type lastfmDetailEnvelope struct {
	Track *lastfmTrackInfo `json:"track"`
}

type lastfmTrackInfo struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Artist struct {
		Name string `json:"name"`
	} `json:"artist"`
	Album struct {
		Title string        `json:"title"`
		Image []lastfmImage `json:"image"`
	} `json:"album"`
	TopTags struct {
		Tag lastfmTagList `json:"tag"`
	} `json:"toptags"`
	Wiki struct {
		Published string `json:"published"`
		Content   string `json:"content"`
	} `json:"wiki"`
}

type lastfmTag struct {
	Name string `json:"name"`
}

// lastfmTagList tolerates a single tag served as a bare object.
type lastfmTagList []lastfmTag

func (l *lastfmTagList) UnmarshalJSON(data []byte) error {
	var many []lastfmTag
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one lastfmTag
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = lastfmTagList{one}
	return nil
}

// # Operations

// Search queries Last.fm track search. Search matches carry no album art
// tags or wiki content; those arrive only on detail lookups.
func (c *LastFMClient) Search(ctx context.Context, query string) (*SearchResult, error) {
	params := url.Values{}
	params.Set("method", "track.search")
	params.Set("track", query)
	params.Set("limit", "10")

	raw, err := c.getRaw(ctx, params)
	if err != nil {
		return nil, err
	}

	var envelope lastfmSearchEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("lastfm: decode search response: %w", err)
	}

	// Last.fm signals "no results" with an empty match list in a 200 body;
	// surface it as an upstream error rather than an empty page.
	if len(envelope.Results.TrackMatches.Track) == 0 {
		return nil, apperr.Upstream("No tracks found", nil)
	}

	results := make([]StandardizedResponse, 0, len(envelope.Results.TrackMatches.Track))
	for _, rawTrack := range envelope.Results.TrackMatches.Track {
		var track lastfmSearchTrack
		if err := json.Unmarshal(rawTrack, &track); err != nil {
			continue
		}

		entry := StandardizedResponse{
			Name:       track.Name,
			Artist:     []string{},
			ImageURL:   lastfmImageURL(track.Image),
			Tags:       []string{},
			ProviderID: track.Artist + trackIDSeparator + track.Name,
			Type:       TypeMusic,
			RawData:    rawTrack,
		}
		if track.Artist != "" {
			entry.Artist = []string{track.Artist}
		}
		if track.URL != "" {
			entry.URL = &track.URL
		}
		results = append(results, entry)
	}

	total, _ := strconv.Atoi(envelope.Results.TotalResults)
	return &SearchResult{Results: results, TotalResults: total}, nil
}

// Detail fetches full track info by composite "artist:track" id.
func (c *LastFMClient) Detail(ctx context.Context, externalID string) (*StandardizedResponse, error) {
	artist, track, err := SplitTrackID(externalID)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("method", "track.getInfo")
	params.Set("artist", artist)
	params.Set("track", track)

	raw, err := c.getRaw(ctx, params)
	if err != nil {
		return nil, err
	}

	var envelope lastfmDetailEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("lastfm: decode detail response: %w", err)
	}
	if envelope.Track == nil {
		return nil, apperr.Upstream("Last.fm: track not found", nil)
	}
	info := envelope.Track

	tags := make([]string, 0, len(info.TopTags.Tag))
	for _, tag := range info.TopTags.Tag {
		if tag.Name != "" {
			tags = append(tags, tag.Name)
		}
	}

	entry := &StandardizedResponse{
		Name:       info.Name,
		Artist:     []string{},
		ImageURL:   lastfmImageURL(info.Album.Image),
		Tags:       capTags(tags),
		ProviderID: info.Artist.Name + trackIDSeparator + info.Name,
		Type:       TypeMusic,
		RawData:    raw,
	}
	if info.Artist.Name != "" {
		entry.Artist = []string{info.Artist.Name}
	}
	if info.URL != "" {
		entry.URL = &info.URL
	}
	if info.Wiki.Content != "" {
		entry.Description = &info.Wiki.Content
	}
	if t := lastfmDate(info.Wiki.Published); t != nil {
		entry.PublishedOn = t
	}
	return entry, nil
}

// # Transport

func (c *LastFMClient) getRaw(ctx context.Context, params url.Values) (json.RawMessage, error) {
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")
	endpoint := c.baseURL + "/2.0/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("lastfm: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lastfm: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("lastfm: read response: %w", err)
	}

	// Last.fm reports application errors in a 200 body as well as via
	// 4xx statuses; check the payload either way.
	var upstream lastfmError
	if err := json.Unmarshal(body, &upstream); err == nil && upstream.Error != 0 {
		return nil, apperr.Upstream("Last.fm: "+upstream.Message, nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lastfm: unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

// # Normalization

// lastfmImageURL picks the largest usable image from a Last.fm image set.
func lastfmImageURL(images []lastfmImage) *string {
	for _, size := range []string{"extralarge", "large", "medium"} {
		for _, img := range images {
			if img.Size == size && img.URL != "" {
				u := img.URL
				return &u
			}
		}
	}
	return nil
}

// lastfmDate parses the wiki publication timestamp ("07 Mar 2011, 14:33").
func lastfmDate(published string) *time.Time {
	if published == "" {
		return nil
	}
	if t, err := time.Parse("02 Jan 2006, 15:04", published); err == nil {
		return &t
	}
	return nil
}
