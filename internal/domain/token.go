package domain

import "time"

// TokenKind differentiates the two issued token types.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "ACCESS"
	TokenKindRefresh TokenKind = "REFRESH"
)

// Identity is the claims payload carried by both token kinds.
type Identity struct {
	UserID int64
	Name   string
	Role   Role
}

// TokenPair bundles the credentials issued at login, registration and
// profile/password changes.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
