package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/juniorscv/auth-service/internal/domain"
)

// CreateAccountParams captures the fields set at account creation.
// Optional fields stay empty; the repository writes them as NULL so the
// sparse unique indexes never see a colliding placeholder.
type CreateAccountParams struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PasswordHash string
	Social       domain.SocialLinks
	PhotoURL     string
	CreatedAtUTC time.Time
}

// AccountRepository defines persistence operations for accounts.
//
// Every mutation is a single-row write; the unique indexes on email, phone
// and the provider ID columns are the authoritative guard against duplicate
// races, and the repository translates the storage layer's duplicate-key
// error into a field-attributed domain.DuplicateError.
type AccountRepository interface {
	Create(ctx context.Context, params CreateAccountParams) (domain.Account, error)
	GetByID(ctx context.Context, accountID uuid.UUID) (domain.Account, error)
	// GetByIdentifier resolves a login identifier as email or phone in a
	// single lookup.
	GetByIdentifier(ctx context.Context, identifier string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	GetByProviderID(ctx context.Context, provider domain.Provider, externalID string) (domain.Account, error)
	// AttachProviderID links a provider identity to an existing account
	// (the merge-by-email step of social resolution).
	AttachProviderID(ctx context.Context, accountID uuid.UUID, provider domain.Provider, externalID string, now time.Time) error

	// UpdatePassword sets a new hash and clears the active refresh token in
	// the same write, forcing re-login everywhere.
	UpdatePassword(ctx context.Context, accountID uuid.UUID, passwordHash string, now time.Time) error

	// SetRefreshToken unconditionally replaces the active refresh token
	// (login and social callback paths; a new login displaces any other
	// active session by design).
	SetRefreshToken(ctx context.Context, accountID uuid.UUID, token string, now time.Time) error
	// SwapRefreshToken replaces the active refresh token only when the
	// stored value still equals oldToken. The compare-and-swap makes
	// rotation one-shot: of two concurrent rotations exactly one wins and
	// the loser gets domain.ErrTokenInvalid.
	SwapRefreshToken(ctx context.Context, accountID uuid.UUID, oldToken, newToken string, now time.Time) error
	// ClearRefreshTokenByValue revokes the session owning the given token.
	// Unknown tokens are a no-op (logout is idempotent).
	ClearRefreshTokenByValue(ctx context.Context, token string, now time.Time) error

	SetResetPIN(ctx context.Context, accountID uuid.UUID, pin string, expiresAt, now time.Time) error
	ClearResetPIN(ctx context.Context, accountID uuid.UUID, now time.Time) error
	// ConsumeResetPIN redeems an unexpired PIN in one guarded write: it sets
	// the new password hash, clears the PIN fields and the refresh token, or
	// fails domain.ErrPINInvalidOrExpired without mutating anything.
	ConsumeResetPIN(ctx context.Context, pin, passwordHash string, now time.Time) error

	Delete(ctx context.Context, accountID uuid.UUID) error
}
