// Copyright (c) 2026 Dust & Gold. All rights reserved.

package item

import "time"

// Media types a catalog item may carry. The type is fixed at submission
// and never changes afterwards.
const (
	TypeMusic = "music"
	TypeBook  = "book"
	TypeMovie = "movie"
	TypeMisc  = "misc"
)

// Types lists every accepted media type.
func Types() []string {
	return []string{TypeMusic, TypeBook, TypeMovie, TypeMisc}
}

// Item is a user-submitted catalog entry. VoteCount and Upvoters are
// derived from the vote table at read time; they are never stored on the
// row itself.
type Item struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	URL         *string    `json:"url"`
	ImageURL    *string    `json:"image_url"`
	Artist      []string   `json:"artist"`
	Tags        []string   `json:"tags"`
	PublishedOn *time.Time `json:"published_on"`
	ProviderID  *string    `json:"provider_id"`
	SubmittedBy string     `json:"submitted_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	VoteCount int       `json:"votes"`
	Upvoters  []Upvoter `json:"upvoted_by"`
}

// Upvoter is the public identity of a user who upvoted an item.
type Upvoter struct {
	UserID      string  `json:"user_id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}
