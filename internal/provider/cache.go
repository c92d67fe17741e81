// Copyright (c) 2026 Dust & Gold. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dustandgold/api/internal/platform/constants"
)

// Cache stores normalized provider responses in Redis. Every method is
// best-effort: a cache failure is logged and the caller proceeds straight
// to the upstream, so a dead Redis degrades latency, not availability.
//
// A nil *Cache is valid and caches nothing, which keeps the provider
// service usable in wiring that runs without Redis.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewCache constructs a provider response cache.
func NewCache(client *redis.Client, logger *slog.Logger) *Cache {
	return &Cache{client: client, logger: logger}
}

// GetSearch returns a cached search page, if present.
func (c *Cache) GetSearch(ctx context.Context, mediaType, query string) (*SearchResult, bool) {
	if c == nil {
		return nil, false
	}
	var result SearchResult
	if !c.get(ctx, searchKey(mediaType, query), &result) {
		return nil, false
	}
	return &result, true
}

// SetSearch caches a search page for the search TTL.
func (c *Cache) SetSearch(ctx context.Context, mediaType, query string, result *SearchResult) {
	if c == nil {
		return
	}
	c.set(ctx, searchKey(mediaType, query), result, constants.ProviderSearchCacheTTL)
}

// GetDetail returns a cached detail record, if present.
func (c *Cache) GetDetail(ctx context.Context, mediaType, externalID string) (*StandardizedResponse, bool) {
	if c == nil {
		return nil, false
	}
	var result StandardizedResponse
	if !c.get(ctx, detailKey(mediaType, externalID), &result) {
		return nil, false
	}
	return &result, true
}

// SetDetail caches a detail record for the detail TTL.
func (c *Cache) SetDetail(ctx context.Context, mediaType, externalID string, result *StandardizedResponse) {
	if c == nil {
		return
	}
	c.set(ctx, detailKey(mediaType, externalID), result, constants.ProviderDetailCacheTTL)
}

func (c *Cache) get(ctx context.Context, key string, out any) bool {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.DebugContext(ctx, "provider cache read failed",
				slog.String("key", key), slog.Any("error", err))
		}
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		c.logger.DebugContext(ctx, "provider cache entry corrupt",
			slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		c.logger.DebugContext(ctx, "provider cache write failed",
			slog.String("key", key), slog.Any("error", err))
	}
}

func searchKey(mediaType, query string) string {
	return constants.RedisPrefixProviderSearch + mediaType + ":" + strings.ToLower(strings.TrimSpace(query))
}

func detailKey(mediaType, externalID string) string {
	return constants.RedisPrefixProviderDetail + mediaType + ":" + externalID
}
