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
TestYouTubeClient_Detail verifies that an oEmbed response normalizes to the
catch-all misc type with the channel name as artist.
*/
func TestYouTubeClient_Detail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/oembed", request.URL.Path)
		assert.Equal(t, "json", request.URL.Query().Get("format"))
		assert.Contains(t, request.URL.Query().Get("url"), "watch?v=dQw4w9WgXcQ")

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{
			"title": "Never Gonna Give You Up",
			"author_name": "Rick Astley",
			"author_url": "https://www.youtube.com/@RickAstleyYT",
			"thumbnail_url": "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg"
		}`))
	}))
	defer server.Close()

	client := provider.NewYouTubeClient(server.Client(), server.URL)
	detail, err := client.Detail(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "Never Gonna Give You Up", detail.Name)
	assert.Equal(t, []string{"Rick Astley"}, detail.Artist)
	assert.Equal(t, "dQw4w9WgXcQ", detail.ProviderID)
	assert.Equal(t, "misc", detail.Type)
	require.NotNil(t, detail.URL)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", *detail.URL)
	require.NotNil(t, detail.ImageURL)
	assert.Equal(t, "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg", *detail.ImageURL)
}

/*
TestYouTubeClient_Search verifies that video search rejects with a
validation error, since oEmbed has no search capability.
*/
func TestYouTubeClient_Search(t *testing.T) {
	client := provider.NewYouTubeClient(http.DefaultClient, provider.DefaultYouTubeBaseURL)
	_, err := client.Search(context.Background(), "anything")
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusBadRequest, appError.HTTPStatus)
}

/*
TestYouTubeClient_Detail_NotFound verifies that an oEmbed 404 maps to an
upstream error rather than a transport failure.
*/
func TestYouTubeClient_Detail_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.NotFound(writer, request)
	}))
	defer server.Close()

	client := provider.NewYouTubeClient(server.Client(), server.URL)
	_, err := client.Detail(context.Background(), "missing")
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusBadGateway, appError.HTTPStatus)
}
