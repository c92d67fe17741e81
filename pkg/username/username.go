// Copyright (c) 2026 Dust & Gold. All rights reserved.

// Package username normalizes user-chosen handles to a canonical form.
//
// # Usage
//
// Usernames appear in public profile URLs (e.g. /collector_99), so two
// visually-identical handles must not map to two different accounts.
// Normalization is applied before validation, uniqueness checks, and storage.
package username

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize converts a raw handle into its canonical stored form.
//
// # Transformation Pipeline
//
// 1. Trims surrounding whitespace.
// 2. Applies Unicode NFKC normalization (folds compatibility variants such
// as fullwidth letters into their canonical code points).
// 3. Lowercases the result.
//
// The returned string is what gets validated, compared for uniqueness,
// and persisted.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	folded := norm.NFKC.String(trimmed)
	return strings.ToLower(folded)
}

// Length bounds for stored handles, applied after normalization.
const (
	MinLen = 3
	MaxLen = 20
)

// reserved lists handles that collide with application routes or voting
// vocabulary. A profile URL like /items or /upvotes must never resolve to
// a user page.
var reserved = map[string]struct{}{
	"add":          {},
	"admin":        {},
	"api":          {},
	"auth":         {},
	"dashboard":    {},
	"delete":       {},
	"downvote":     {},
	"downvoted":    {},
	"downvotes":    {},
	"edit":         {},
	"favicon.ico":  {},
	"health":       {},
	"item":         {},
	"items":        {},
	"lastfm":       {},
	"login":        {},
	"logout":       {},
	"me":           {},
	"omdb":         {},
	"profile":      {},
	"ready":        {},
	"register":     {},
	"robots.txt":   {},
	"search":       {},
	"signup":       {},
	"update":       {},
	"upvote":       {},
	"upvoted":      {},
	"upvotes":      {},
	"users":        {},
	"vote":         {},
	"votes":        {},
}

// IsReserved reports whether the normalized handle collides with a
// reserved word. Callers must normalize first.
//
// Beyond the exact blocklist, any handle containing voting vocabulary
// ("art_votes", "my_upvotes") is reserved: those read as application
// surfaces, not personal identities.
func IsReserved(handle string) bool {
	if _, found := reserved[handle]; found {
		return true
	}
	return strings.Contains(handle, "vote")
}
