package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/juniorscv/auth-service/internal/domain"
	"github.com/juniorscv/auth-service/internal/ports"
)

// HSTokenCodec signs HS256 access and refresh tokens with distinct secrets,
// so a refresh token can never pass as an access token or vice versa. Keys
// are held at adapter level so the application layer stays crypto-library
// agnostic.
type HSTokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	nowFn         func() time.Time
}

func NewHSTokenCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*HSTokenCodec, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("access and refresh secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &HSTokenCodec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		nowFn:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (c *HSTokenCodec) IssuePair(accountID uuid.UUID) (ports.TokenPair, error) {
	access, err := c.sign(accountID, c.accessSecret, c.accessTTL)
	if err != nil {
		return ports.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := c.sign(accountID, c.refreshSecret, c.refreshTTL)
	if err != nil {
		return ports.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (c *HSTokenCodec) VerifyAccess(token string) (uuid.UUID, error) {
	return c.verify(token, c.accessSecret)
}

func (c *HSTokenCodec) VerifyRefresh(token string) (uuid.UUID, error) {
	return c.verify(token, c.refreshSecret)
}

func (c *HSTokenCodec) sign(accountID uuid.UUID, secret []byte, ttl time.Duration) (string, error) {
	now := c.nowFn()
	// The jti makes every issuance distinct even within the same second;
	// rotation depends on the new refresh token never equalling the old one.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   accountID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString(secret)
}

func (c *HSTokenCodec) verify(raw string, secret []byte) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.nowFn))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, domain.ErrTokenExpired
		}
		return uuid.Nil, domain.ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, domain.ErrTokenInvalid
	}
	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, domain.ErrTokenInvalid
	}
	return accountID, nil
}
