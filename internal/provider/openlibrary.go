// Copyright (c) 2026 Dust & Gold. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustandgold/api/internal/platform/apperr"
)

// DefaultOpenLibraryBaseURL is the production OpenLibrary endpoint.
const DefaultOpenLibraryBaseURL = "https://openlibrary.org"

// openLibraryCoverURL builds a medium-size cover image URL from a numeric
// cover id. Covers live on a separate host from the API itself.
func openLibraryCoverURL(coverID int) *string {
	u := fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-M.jpg", coverID)
	return &u
}

// OpenLibraryClient adapts the OpenLibrary books API.
type OpenLibraryClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewOpenLibraryClient constructs an OpenLibrary adapter. OpenLibrary
// requires no API key.
func NewOpenLibraryClient(httpClient *http.Client, baseURL string, logger *slog.Logger) *OpenLibraryClient {
	return &OpenLibraryClient{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		logger:     logger,
	}
}

// # Wire Types

type openLibrarySearchEnvelope struct {
	NumFound int               `json:"numFound"`
	Docs     []json.RawMessage `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	CoverID          int      `json:"cover_i"`
	Subject          []string `json:"subject"`
}

type openLibraryWork struct {
	Key              string              `json:"key"`
	Title            string              `json:"title"`
	Description      openLibraryText     `json:"description"`
	Covers           []int               `json:"covers"`
	Subjects         []string            `json:"subjects"`
	Authors          []openLibraryAuthorRef `json:"authors"`
	FirstPublishDate string              `json:"first_publish_date"`
	PublishDate      string              `json:"publish_date"`
	Created          openLibraryTyped    `json:"created"`
	LastModified     openLibraryTyped    `json:"last_modified"`
}

type openLibraryAuthorRef struct {
	Author struct {
		Key string `json:"key"`
	} `json:"author"`
}

type openLibraryAuthor struct {
	Name string `json:"name"`
}

type openLibraryTyped struct {
	Value string `json:"value"`
}

// openLibraryText decodes a field that OpenLibrary serves either as a bare
// string or as a {"type": ..., "value": ...} object, depending on the
// record's age.
type openLibraryText struct {
	Value string
}

func (t *openLibraryText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Value = s
		return nil
	}
	var obj openLibraryTyped
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	t.Value = obj.Value
	return nil
}

// # Operations

// Search queries OpenLibrary's free-text search. Search docs already embed
// author names, so no enrichment round-trips are needed here.
func (c *OpenLibraryClient) Search(ctx context.Context, query string) (*SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "10")

	raw, err := c.getRaw(ctx, "/search.json?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var envelope openLibrarySearchEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("openlibrary: decode search response: %w", err)
	}

	// An empty doc set is OpenLibrary's "no results" answer; surface it as
	// an upstream error rather than an empty page.
	if len(envelope.Docs) == 0 {
		return nil, apperr.Upstream("No books found", nil)
	}

	results := make([]StandardizedResponse, 0, len(envelope.Docs))
	for _, rawDoc := range envelope.Docs {
		var doc openLibrarySearchDoc
		if err := json.Unmarshal(rawDoc, &doc); err != nil {
			continue
		}

		workID := strings.TrimPrefix(doc.Key, "/works/")
		entry := StandardizedResponse{
			Name:        doc.Title,
			Artist:      emptyIfNil(doc.AuthorName),
			URL:         c.workURL(workID),
			Tags:        capTags(doc.Subject),
			ProviderID:  workID,
			Type:        TypeBook,
			RawData:     rawDoc,
		}
		if doc.FirstPublishYear > 0 {
			t := time.Date(doc.FirstPublishYear, time.January, 1, 0, 0, 0, 0, time.UTC)
			entry.PublishedOn = &t
		}
		if doc.CoverID > 0 {
			entry.ImageURL = openLibraryCoverURL(doc.CoverID)
		}
		results = append(results, entry)
	}

	return &SearchResult{Results: results, TotalResults: envelope.NumFound}, nil
}

// Detail fetches a work by its OpenLibrary id (e.g. "OL27448W"). Works
// reference authors by key only, so each author is resolved with a separate
// lookup; a failed author lookup degrades to a shorter artist list rather
// than failing the whole request.
func (c *OpenLibraryClient) Detail(ctx context.Context, externalID string) (*StandardizedResponse, error) {
	workID := strings.TrimPrefix(externalID, "/works/")

	raw, err := c.getRaw(ctx, "/works/"+url.PathEscape(workID)+".json")
	if err != nil {
		return nil, err
	}

	var work openLibraryWork
	if err := json.Unmarshal(raw, &work); err != nil {
		return nil, fmt.Errorf("openlibrary: decode work response: %w", err)
	}
	if work.Title == "" {
		return nil, apperr.Upstream("OpenLibrary: work not found", nil)
	}

	entry := &StandardizedResponse{
		Name:        work.Title,
		Artist:      c.resolveAuthors(ctx, work.Authors),
		PublishedOn: openLibraryDate(work),
		URL:         c.workURL(workID),
		Tags:        capTags(work.Subjects),
		ProviderID:  workID,
		Type:        TypeBook,
		RawData:     raw,
	}
	if work.Description.Value != "" {
		entry.Description = &work.Description.Value
	}
	if len(work.Covers) > 0 && work.Covers[0] > 0 {
		entry.ImageURL = openLibraryCoverURL(work.Covers[0])
	}
	return entry, nil
}

// resolveAuthors fetches author names for a work's author references.
// Lookups are fault tolerant: OpenLibrary data has dangling author keys and
// a 404 on one must not sink the detail response.
func (c *OpenLibraryClient) resolveAuthors(ctx context.Context, refs []openLibraryAuthorRef) []string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		key := strings.TrimPrefix(ref.Author.Key, "/authors/")
		if key == "" {
			continue
		}

		raw, err := c.getRaw(ctx, "/authors/"+url.PathEscape(key)+".json")
		if err != nil {
			c.logger.DebugContext(ctx, "openlibrary author lookup failed",
				slog.String("author_key", key),
				slog.Any("error", err))
			continue
		}

		var author openLibraryAuthor
		if err := json.Unmarshal(raw, &author); err != nil || author.Name == "" {
			continue
		}
		names = append(names, author.Name)
	}
	return names
}

// # Transport

func (c *OpenLibraryClient) getRaw(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("openlibrary: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openlibrary: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperr.Upstream("OpenLibrary: record not found", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openlibrary: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openlibrary: read response: %w", err)
	}
	return body, nil
}

// # Normalization

func (c *OpenLibraryClient) workURL(workID string) *string {
	u := c.baseURL + "/works/" + workID
	return &u
}

// openLibraryDate picks the most specific date a work record offers, in
// fixed priority order: first publish date, publish date, record creation,
// last modification.
func openLibraryDate(work openLibraryWork) *time.Time {
	for _, candidate := range []string{
		work.FirstPublishDate,
		work.PublishDate,
		work.Created.Value,
		work.LastModified.Value,
	} {
		if t := parseFlexibleDate(candidate); t != nil {
			return t
		}
	}
	return nil
}

// parseFlexibleDate tries the date layouts OpenLibrary is known to serve.
func parseFlexibleDate(v string) *time.Time {
	if v == "" {
		return nil
	}
	layouts := []string{
		"2006-01-02T15:04:05.999999",
		time.RFC3339,
		"2006-01-02",
		"January 2, 2006",
		"Jan 2, 2006",
		"January 2006",
		"2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}
