package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/juniorscv/auth-service/internal/domain"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenPair is an access/refresh token couple for one account.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenCodec issues and verifies the two bearer token kinds. Access tokens
// verify statelessly; refresh tokens additionally require the caller to
// check equality against the account's stored active token.
type TokenCodec interface {
	IssuePair(accountID uuid.UUID) (TokenPair, error)
	// VerifyAccess returns domain.ErrTokenExpired past expiry and
	// domain.ErrTokenInvalid for bad signature or malformed input.
	VerifyAccess(token string) (uuid.UUID, error)
	VerifyRefresh(token string) (uuid.UUID, error)
}

// ProviderExchanger completes the OAuth exchange with a social provider and
// returns the verified profile. The provider has already authenticated the
// end user by the time Exchange runs.
type ProviderExchanger interface {
	AuthorizeURL(ctx context.Context, provider domain.Provider, state string) (string, error)
	Exchange(ctx context.Context, provider domain.Provider, code string) (domain.SocialProfile, error)
}
