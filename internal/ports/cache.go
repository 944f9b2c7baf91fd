package ports

import (
	"context"
	"time"

	"github.com/juniorscv/auth-service/internal/domain"
)

// AuthState is the data carried across the OAuth provider round trip, keyed
// by a server-generated state nonce. RedirectURI is the already validated
// client return destination; the callback never trusts a raw query value.
type AuthState struct {
	Provider    domain.Provider `json:"provider"`
	RedirectURI string          `json:"redirect_uri"`
	CreatedAt   time.Time       `json:"created_at"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// AuthStateStore manages temporary OAuth authorization state.
// Get on an unknown or expired state returns nil without error.
type AuthStateStore interface {
	Put(ctx context.Context, state string, value AuthState, ttl time.Duration) error
	Get(ctx context.Context, state string) (*AuthState, error)
	Delete(ctx context.Context, state string) error
}
