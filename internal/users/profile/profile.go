// Copyright (c) 2026 Dust & Gold. All rights reserved.

/*
Package profile implements user profile management.

It covers the authenticated user's own profile (read and update, including
username changes under the handle policy) and the public identity other
users see on upvoter lists and submission pages.
*/
package profile

// PublicProfile is the subset of an account other users may see. Email and
// any credential material never appear here.
type PublicProfile struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}
