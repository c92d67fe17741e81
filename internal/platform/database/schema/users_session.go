// Copyright (c) 2026 Dust & Gold. All rights reserved.

package schema

// UserSessionTable represents the 'users.session' table
type UserSessionTable struct {
	Table     string
	ID        string
	UserID    string
	TokenHash string
	UserAgent string
	IPAddress string
	ExpiresAt string
	IsRevoked string
	CreatedAt string
}

// UserSession is the schema definition for users.session
var UserSession = UserSessionTable{
	Table:     "users.session",
	ID:        "id",
	UserID:    "userid",
	TokenHash: "tokenhash",
	UserAgent: "useragent",
	IPAddress: "ipaddress",
	ExpiresAt: "expiresat",
	IsRevoked: "isrevoked",
	CreatedAt: "createdat",
}
