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

// DefaultOMDBBaseURL is the production OMDB endpoint.
const DefaultOMDBBaseURL = "https://www.omdbapi.com"

// omdbNA is OMDB's sentinel for an absent field. It must never leak into a
// normalized record.
const omdbNA = "N/A"

// OMDBClient adapts the OMDB movie database API.
type OMDBClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewOMDBClient constructs an OMDB adapter. The base URL is injectable for
// tests; pass [DefaultOMDBBaseURL] in production wiring.
func NewOMDBClient(httpClient *http.Client, baseURL, apiKey string) *OMDBClient {
	return &OMDBClient{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// # Wire Types

type omdbSearchEnvelope struct {
	Search       []json.RawMessage `json:"Search"`
	TotalResults string            `json:"totalResults"`
	Response     string            `json:"Response"`
	Error        string            `json:"Error"`
}

type omdbSearchEntry struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Poster string `json:"Poster"`
}

type omdbDetail struct {
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Released string `json:"Released"`
	Genre    string `json:"Genre"`
	Director string `json:"Director"`
	Plot     string `json:"Plot"`
	Poster   string `json:"Poster"`
	ImdbID   string `json:"imdbID"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// # Operations

// Search looks up movies by title. OMDB search entries carry no director or
// genre information, so normalized search results always have an empty
// artist list and no tags.
func (c *OMDBClient) Search(ctx context.Context, query string) (*SearchResult, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("s", query)
	params.Set("type", "movie")

	var envelope omdbSearchEnvelope
	if err := c.get(ctx, params, &envelope); err != nil {
		return nil, err
	}
	if envelope.Response != "True" {
		return nil, apperr.Upstream(omdbMessage(envelope.Error), nil)
	}

	results := make([]StandardizedResponse, 0, len(envelope.Search))
	for _, raw := range envelope.Search {
		var entry omdbSearchEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		results = append(results, StandardizedResponse{
			Name:        entry.Title,
			Artist:      []string{},
			PublishedOn: omdbDate("", entry.Year),
			ImageURL:    omdbField(entry.Poster),
			URL:         omdbURL(entry.ImdbID),
			Tags:        []string{},
			ProviderID:  entry.ImdbID,
			Type:        TypeMovie,
			RawData:     raw,
		})
	}

	total, _ := strconv.Atoi(envelope.TotalResults)
	return &SearchResult{Results: results, TotalResults: total}, nil
}

// Detail fetches a movie by IMDb id. Directors become the artist list and
// genres become tags.
func (c *OMDBClient) Detail(ctx context.Context, externalID string) (*StandardizedResponse, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("i", externalID)
	params.Set("plot", "full")

	raw, err := c.getRaw(ctx, params)
	if err != nil {
		return nil, err
	}

	var detail omdbDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, fmt.Errorf("omdb: decode detail response: %w", err)
	}
	if detail.Response != "True" {
		return nil, apperr.Upstream(omdbMessage(detail.Error), nil)
	}

	return &StandardizedResponse{
		Name:        detail.Title,
		Artist:      omdbList(detail.Director),
		PublishedOn: omdbDate(detail.Released, detail.Year),
		Description: omdbField(detail.Plot),
		ImageURL:    omdbField(detail.Poster),
		URL:         omdbURL(detail.ImdbID),
		Tags:        omdbList(detail.Genre),
		ProviderID:  detail.ImdbID,
		Type:        TypeMovie,
		RawData:     raw,
	}, nil
}

// # Transport

func (c *OMDBClient) get(ctx context.Context, params url.Values, out any) error {
	raw, err := c.getRaw(ctx, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("omdb: decode response: %w", err)
	}
	return nil
}

func (c *OMDBClient) getRaw(ctx context.Context, params url.Values) (json.RawMessage, error) {
	endpoint := c.baseURL + "/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("omdb: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("omdb: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("omdb: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb: unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

// # Normalization

// omdbField maps OMDB's "N/A" sentinel and empty strings to nil.
func omdbField(v string) *string {
	if v == "" || v == omdbNA {
		return nil
	}
	return &v
}

// omdbList splits a comma-separated OMDB field ("Drama, Crime") into a
// slice, treating "N/A" as empty.
func omdbList(v string) []string {
	if v == "" || v == omdbNA {
		return []string{}
	}
	parts := strings.Split(v, ", ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// omdbDate parses the release date, falling back to January 1st of the
// title's year when only a year is known. Series years like "2008–2013"
// contribute their first four digits.
func omdbDate(released, year string) *time.Time {
	if released != "" && released != omdbNA {
		if t, err := time.Parse("02 Jan 2006", released); err == nil {
			return &t
		}
	}
	if len(year) >= 4 {
		if y, err := strconv.Atoi(year[:4]); err == nil {
			t := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
			return &t
		}
	}
	return nil
}

func omdbURL(imdbID string) *string {
	if imdbID == "" {
		return nil
	}
	u := "https://www.imdb.com/title/" + imdbID + "/"
	return &u
}

func omdbMessage(upstream string) string {
	if upstream == "" {
		return "OMDB returned an unsuccessful response"
	}
	return "OMDB: " + upstream
}
