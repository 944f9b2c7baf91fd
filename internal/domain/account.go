package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider enumerates the social login providers the service accepts.
// A closed set keeps provider dispatch a plain switch instead of a registry.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
	ProviderLinkedIn Provider = "linkedin"
)

// ParseProvider normalizes and validates a provider name from the wire.
func ParseProvider(raw string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(raw))) {
	case ProviderGoogle:
		return ProviderGoogle, nil
	case ProviderFacebook:
		return ProviderFacebook, nil
	case ProviderLinkedIn:
		return ProviderLinkedIn, nil
	default:
		return "", ErrUnsupportedProvider
	}
}

// Providers lists every supported provider in a stable order.
func Providers() []Provider {
	return []Provider{ProviderGoogle, ProviderFacebook, ProviderLinkedIn}
}

// SocialLinks holds per-provider external identifiers.
// Empty string means the provider is not linked; each non-empty value is
// globally unique across accounts.
type SocialLinks struct {
	GoogleID   string
	FacebookID string
	LinkedInID string
}

// ID returns the external identifier linked for the given provider.
func (l SocialLinks) ID(p Provider) string {
	switch p {
	case ProviderGoogle:
		return l.GoogleID
	case ProviderFacebook:
		return l.FacebookID
	case ProviderLinkedIn:
		return l.LinkedInID
	default:
		return ""
	}
}

// Any reports whether at least one social identity is linked.
func (l SocialLinks) Any() bool {
	return l.GoogleID != "" || l.FacebookID != "" || l.LinkedInID != ""
}

// Account is the persisted identity record unifying local credentials and
// linked social identities. Phone and PasswordHash are optional, and Email
// can be empty too when a social provider withholds it; every account still
// carries at least one authentication factor.
type Account struct {
	AccountID    uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PasswordHash string
	Social       SocialLinks
	PhotoURL     string

	// RefreshToken is the single active refresh token for the account.
	// Rotating or logging out replaces/clears it; an exchanged token must
	// never authenticate again.
	RefreshToken string

	ResetPIN          string
	ResetPINExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasAuthFactor reports whether the account can still authenticate by some
// means (local password or a linked social identity).
func (a Account) HasAuthFactor() bool {
	return a.PasswordHash != "" || a.Social.Any()
}

// SocialProfile is a verified external-provider profile, produced after the
// provider has authenticated the end user. Email may be empty when the
// provider scope was not granted.
type SocialProfile struct {
	Provider   Provider
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
	PhotoURL   string
}
