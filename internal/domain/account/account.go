// Package account manages OAuth-linked external identities and their tokens.
package account

import (
	"context"
	"time"
)

// Provider names the external services an account can be linked to.
const (
	ProviderGoogle   = "google"
	ProviderLinkedIn = "linkedin"
)

// refreshWindow is how close to expiry a token is still considered usable.
const refreshWindow = 60 * time.Second

// ConnectedAccount is one OAuth-linked external identity for a user. Google
// allows multiple accounts per user; social platforms allow one.
type ConnectedAccount struct {
	ID                uint
	UserID            string
	Provider          string
	ProviderUserID    string
	ProviderUserEmail *string
	AccessToken       string
	RefreshToken      *string
	ExpiresAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NeedsRefresh reports whether the stored access token expires within the
// refresh window of now (or already has).
func (a *ConnectedAccount) NeedsRefresh(now time.Time) bool {
	if a.ExpiresAt == nil {
		return false
	}
	return a.ExpiresAt.Before(now.Add(refreshWindow))
}

// Expired reports whether the token is past its expiry at now.
func (a *ConnectedAccount) Expired(now time.Time) bool {
	if a.ExpiresAt == nil {
		return false
	}
	return a.ExpiresAt.Before(now)
}

// TokenSet carries tokens returned by a provider's token endpoint. The
// refresh token is only present when the provider chose to issue one.
type TokenSet struct {
	AccessToken  string
	RefreshToken *string
	ExpiresAt    time.Time
}

// Repository defines storage operations for connected accounts.
type Repository interface {
	ListByUserAndProvider(ctx context.Context, userID, provider string) ([]*ConnectedAccount, error)
	ListByUser(ctx context.Context, userID string) ([]*ConnectedAccount, error)

	// FindSingle returns the account for a single-account provider, or nil.
	FindSingle(ctx context.Context, userID, provider string) (*ConnectedAccount, error)

	// UpsertMultiAccount inserts or refreshes tokens keyed by
	// (user_id, provider, provider_user_id).
	UpsertMultiAccount(ctx context.Context, a *ConnectedAccount) (*ConnectedAccount, error)

	// UpsertSingleAccount inserts or refreshes tokens keyed by
	// (user_id, provider).
	UpsertSingleAccount(ctx context.Context, a *ConnectedAccount) (*ConnectedAccount, error)

	// UpdateTokens persists a refreshed token set for an existing account.
	UpdateTokens(ctx context.Context, id uint, tokens TokenSet) error

	// Delete removes an account owned by the given user.
	Delete(ctx context.Context, id uint, userID string) error
}
