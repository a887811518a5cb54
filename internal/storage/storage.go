// Package storage persists per-user Reddit OAuth tokens. Research results
// are deliberately not persisted; the discovery cache is in-memory only.
package storage

import (
	"context"
	"time"
)

// TokenData holds one user's Reddit OAuth credential.
type TokenData struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scope        string    `json:"scope"`
}

// Expired reports whether the access token has passed its expiry.
func (t *TokenData) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}

// TokenStore is the persistence interface for user tokens. Identities are
// keyed by (teamID, userID) so one workspace's users never see another's
// credentials.
type TokenStore interface {
	// SaveToken stores or replaces the token for an identity.
	SaveToken(ctx context.Context, teamID, userID string, token *TokenData) error

	// GetToken returns the stored token, or (nil, nil) when none exists.
	GetToken(ctx context.Context, teamID, userID string) (*TokenData, error)

	// DeleteToken removes the token for an identity. Deleting a missing
	// token is not an error.
	DeleteToken(ctx context.Context, teamID, userID string) error

	// Close releases the underlying resources.
	Close() error
}
