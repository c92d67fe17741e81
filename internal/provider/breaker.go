// Copyright (c) 2026 Dust & Gold. All rights reserved.

package provider

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/dustandgold/api/internal/platform/apperr"
)

// resilientClient wraps an adapter in a circuit breaker so a degraded
// upstream fails fast instead of tying up request handlers for the full
// HTTP timeout on every call.
//
// Classified application errors (no results, validation failures, upstream
// error payloads) count as successful interactions: the upstream answered,
// it just said no. Only transport-level failures trip the breaker.
type resilientClient struct {
	name  string
	inner Client
	cb    *gobreaker.CircuitBreaker[any]
}

// withBreaker wraps client in a named circuit breaker.
func withBreaker(name string, client Client, logger *slog.Logger) Client {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || apperr.IsAppError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("provider circuit breaker state change",
				slog.String("provider", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}
	return &resilientClient{
		name:  name,
		inner: client,
		cb:    gobreaker.NewCircuitBreaker[any](settings),
	}
}

func (r *resilientClient) Search(ctx context.Context, query string) (*SearchResult, error) {
	res, err := r.cb.Execute(func() (any, error) {
		return r.inner.Search(ctx, query)
	})
	if err != nil {
		return nil, r.classify(err)
	}
	return res.(*SearchResult), nil
}

func (r *resilientClient) Detail(ctx context.Context, externalID string) (*StandardizedResponse, error) {
	res, err := r.cb.Execute(func() (any, error) {
		return r.inner.Detail(ctx, externalID)
	})
	if err != nil {
		return nil, r.classify(err)
	}
	return res.(*StandardizedResponse), nil
}

// classify maps breaker and transport errors onto the application error
// taxonomy. Already-classified errors pass through untouched.
func (r *resilientClient) classify(err error) error {
	if apperr.IsAppError(err) {
		return err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperr.Upstream(r.name+" is temporarily unavailable", err)
	}
	return apperr.Upstream("Failed to reach "+r.name, err)
}
