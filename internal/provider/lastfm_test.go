// Copyright (c) 2026 Dust & Gold. All rights reserved.

package provider_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustandgold/api/internal/platform/apperr"
	"github.com/dustandgold/api/internal/provider"
)

/*
TestSplitTrackID verifies the composite music id contract: exactly one
separator with non-empty text on both sides, and only the first separator
splits so track names containing colons survive.
*/
func TestSplitTrackID(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		wantArtist string
		wantTrack  string
		wantErr    bool
	}{
		{
			name:       "valid id",
			id:         "Radiohead:Karma Police",
			wantArtist: "Radiohead",
			wantTrack:  "Karma Police",
		},
		{
			name:       "track containing a colon",
			id:         "Sufjan Stevens:Chicago: Reprise",
			wantArtist: "Sufjan Stevens",
			wantTrack:  "Chicago: Reprise",
		},
		{
			name:    "no separator",
			id:      "noseparator",
			wantErr: true,
		},
		{
			name:    "missing artist",
			id:      ":Karma Police",
			wantErr: true,
		},
		{
			name:    "missing track",
			id:      "Radiohead:",
			wantErr: true,
		},
		{
			name:    "blank track",
			id:      "Radiohead:   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artist, track, err := provider.SplitTrackID(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				appError := apperr.As(err)
				require.NotNil(t, appError)
				assert.Equal(t, http.StatusBadRequest, appError.HTTPStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantArtist, artist)
			assert.Equal(t, tt.wantTrack, track)
		})
	}
}

/*
TestLastFMClient_Search verifies search normalization: the composite
provider id joins artist and track, and single-match responses served as a
bare object instead of an array still decode.
*/
func TestLastFMClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "track.search", request.URL.Query().Get("method"))
		assert.Equal(t, "karma police", request.URL.Query().Get("track"))
		assert.Equal(t, "test-key", request.URL.Query().Get("api_key"))
		assert.Equal(t, "json", request.URL.Query().Get("format"))

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{
			"results": {
				"opensearch:totalResults": "1",
				"trackmatches": {
					"track": {
						"name": "Karma Police",
						"artist": "Radiohead",
						"url": "https://www.last.fm/music/Radiohead/_/Karma+Police",
						"image": [
							{"size": "small", "#text": "https://img.example/s.png"},
							{"size": "extralarge", "#text": "https://img.example/xl.png"}
						]
					}
				}
			}
		}`))
	}))
	defer server.Close()

	client := provider.NewLastFMClient(server.Client(), server.URL, "test-key")
	result, err := client.Search(context.Background(), "karma police")
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalResults)
	require.Len(t, result.Results, 1)

	entry := result.Results[0]
	assert.Equal(t, "Karma Police", entry.Name)
	assert.Equal(t, []string{"Radiohead"}, entry.Artist)
	assert.Equal(t, "Radiohead:Karma Police", entry.ProviderID)
	assert.Equal(t, provider.TypeMusic, entry.Type)
	require.NotNil(t, entry.ImageURL)
	assert.Equal(t, "https://img.example/xl.png", *entry.ImageURL)
}

/*
TestLastFMClient_Detail verifies detail normalization: image size
preference falls through extralarge to large, top tags are capped at five,
and the wiki publication timestamp parses.
*/
func TestLastFMClient_Detail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "track.getInfo", request.URL.Query().Get("method"))
		assert.Equal(t, "Radiohead", request.URL.Query().Get("artist"))
		assert.Equal(t, "Karma Police", request.URL.Query().Get("track"))

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{
			"track": {
				"name": "Karma Police",
				"url": "https://www.last.fm/music/Radiohead/_/Karma+Police",
				"artist": {"name": "Radiohead"},
				"album": {
					"title": "OK Computer",
					"image": [
						{"size": "extralarge", "#text": ""},
						{"size": "large", "#text": "https://img.example/l.png"}
					]
				},
				"toptags": {
					"tag": [
						{"name": "alternative"},
						{"name": "rock"},
						{"name": "britpop"},
						{"name": "90s"},
						{"name": "indie"},
						{"name": "electronic"},
						{"name": "favourite"}
					]
				},
				"wiki": {
					"published": "07 Mar 2011, 14:33",
					"content": "Karma Police is a song by Radiohead."
				}
			}
		}`))
	}))
	defer server.Close()

	client := provider.NewLastFMClient(server.Client(), server.URL, "test-key")
	detail, err := client.Detail(context.Background(), "Radiohead:Karma Police")
	require.NoError(t, err)

	assert.Equal(t, "Karma Police", detail.Name)
	assert.Equal(t, []string{"Radiohead"}, detail.Artist)
	assert.Equal(t, "Radiohead:Karma Police", detail.ProviderID)

	// Empty extralarge url falls through to large.
	require.NotNil(t, detail.ImageURL)
	assert.Equal(t, "https://img.example/l.png", *detail.ImageURL)

	assert.Equal(t, []string{"alternative", "rock", "britpop", "90s", "indie"}, detail.Tags)

	require.NotNil(t, detail.Description)
	assert.Contains(t, *detail.Description, "Karma Police")

	require.NotNil(t, detail.PublishedOn)
	assert.Equal(t, 2011, detail.PublishedOn.Year())
}

/*
TestLastFMClient_InBandError verifies that Last.fm application errors
reported in a 200 body surface as upstream failures.
*/
func TestLastFMClient_InBandError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"error": 10, "message": "Invalid API key"}`))
	}))
	defer server.Close()

	client := provider.NewLastFMClient(server.Client(), server.URL, "bad-key")
	_, err := client.Search(context.Background(), "anything")
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusBadGateway, appError.HTTPStatus)
	assert.Contains(t, appError.Message, "Invalid API key")
}

/*
TestLastFMClient_Search_NoResults verifies that an empty trackmatches list
in a 200 body surfaces as an upstream error with a human-readable message
instead of an empty result page.
*/
func TestLastFMClient_Search_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{
			"results": {
				"opensearch:totalResults": "0",
				"trackmatches": {"track": []}
			}
		}`))
	}))
	defer server.Close()

	client := provider.NewLastFMClient(server.Client(), server.URL, "test-key")
	result, err := client.Search(context.Background(), "zzzz-no-such-track")
	require.Error(t, err)
	assert.Nil(t, result)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusBadGateway, appError.HTTPStatus)
	assert.Equal(t, "No tracks found", appError.Message)
}
