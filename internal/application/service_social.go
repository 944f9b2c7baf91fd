package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/juniorscv/auth-service/internal/domain"
	"github.com/juniorscv/auth-service/internal/ports"
)

// SocialAuthorizeURL starts a provider login. The client's return
// destination travels in a server-generated state nonce with a bounded TTL,
// never in a query value the callback would have to trust.
func (s *Service) SocialAuthorizeURL(ctx context.Context, providerRaw, redirectURI string) (string, error) {
	provider, err := domain.ParseProvider(providerRaw)
	if err != nil {
		return "", err
	}

	destination, err := s.resolveRedirectURI(redirectURI)
	if err != nil {
		return "", err
	}

	state := uuid.NewString()
	now := s.nowFn()
	if err := s.authState.Put(ctx, state, ports.AuthState{
		Provider:    provider,
		RedirectURI: destination,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.cfg.AuthStateTTL),
	}, s.cfg.AuthStateTTL); err != nil {
		return "", err
	}

	return s.exchanger.AuthorizeURL(ctx, provider, state)
}

// SocialCallback completes a provider login: it validates the round-trip
// state, exchanges the code, resolves the profile to an account, issues a
// token pair, and returns the deep-link redirect carrying the session.
func (s *Service) SocialCallback(ctx context.Context, providerRaw, state, code string) (string, error) {
	provider, err := domain.ParseProvider(providerRaw)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(state) == "" || strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("%w: code and state are required", domain.ErrInvalidInput)
	}

	authState, err := s.authState.Get(ctx, state)
	if err != nil {
		return "", err
	}
	if authState == nil || authState.Provider != provider || authState.ExpiresAt.Before(s.nowFn()) {
		return "", domain.ErrTokenInvalid
	}

	profile, err := s.exchanger.Exchange(ctx, provider, code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	if profile.ExternalID == "" {
		return "", domain.ErrTokenInvalid
	}

	account, isNew, err := s.resolveSocialProfile(ctx, profile)
	if err != nil {
		return "", err
	}

	pair, err := s.tokens.IssuePair(account.AccountID)
	if err != nil {
		return "", fmt.Errorf("issue token pair: %w", err)
	}
	if err := s.accounts.SetRefreshToken(ctx, account.AccountID, pair.RefreshToken, s.nowFn()); err != nil {
		return "", err
	}

	// One-shot state: a replayed callback finds nothing and fails above.
	_ = s.authState.Delete(ctx, state)

	if isNew && account.Email != "" {
		email, firstName := account.Email, account.FirstName
		s.sendAsync("social_welcome_mail", email, func(ctx context.Context) error {
			return s.mailer.SendSocialWelcome(ctx, email, firstName, provider)
		})
	}

	return buildSessionRedirect(authState.RedirectURI, pair, toUserProfile(account)), nil
}

// SocialFailureRedirect is where the callback sends the browser when the
// provider exchange or account resolution fails.
func (s *Service) SocialFailureRedirect() string {
	return s.cfg.DeepLinkBaseURL + "login?error=auth_failed"
}

// resolveSocialProfile maps a verified provider profile onto exactly one
// account: by provider ID first, then by e-mail (attaching the provider to
// the existing account), and only then by creating a password-less account.
// A profile without an e-mail skips the merge step entirely.
func (s *Service) resolveSocialProfile(ctx context.Context, profile domain.SocialProfile) (domain.Account, bool, error) {
	// Two concurrent callbacks for the same identity race on the unique
	// indexes; the loser retries the lookup chain once and lands on the
	// winner's account.
	for attempt := 0; attempt < 2; attempt++ {
		account, err := s.accounts.GetByProviderID(ctx, profile.Provider, profile.ExternalID)
		if err == nil {
			return account, false, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.Account{}, false, err
		}

		if profile.Email != "" {
			account, err = s.accounts.GetByEmail(ctx, profile.Email)
			if err == nil {
				linkErr := s.accounts.AttachProviderID(ctx, account.AccountID, profile.Provider, profile.ExternalID, s.nowFn())
				if linkErr == nil {
					account.Social = withProviderID(account.Social, profile.Provider, profile.ExternalID)
					return account, false, nil
				}
				if errors.Is(linkErr, domain.ErrDuplicate) {
					continue
				}
				return domain.Account{}, false, linkErr
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return domain.Account{}, false, err
			}
		}

		created, err := s.accounts.Create(ctx, ports.CreateAccountParams{
			FirstName:    profile.FirstName,
			LastName:     profile.LastName,
			Email:        profile.Email,
			PhotoURL:     profile.PhotoURL,
			Social:       withProviderID(domain.SocialLinks{}, profile.Provider, profile.ExternalID),
			CreatedAtUTC: s.nowFn(),
		})
		if err == nil {
			return created, true, nil
		}
		if errors.Is(err, domain.ErrDuplicate) {
			continue
		}
		return domain.Account{}, false, err
	}
	return domain.Account{}, false, domain.ErrTokenInvalid
}

func (s *Service) resolveRedirectURI(redirectURI string) (string, error) {
	destination := strings.TrimSpace(redirectURI)
	if destination == "" {
		return s.cfg.DeepLinkBaseURL + "auth/callback", nil
	}
	for _, allowed := range s.cfg.AllowedRedirectURIs {
		if strings.HasPrefix(destination, allowed) {
			return destination, nil
		}
	}
	return "", fmt.Errorf("%w: redirect_uri is not allowed", domain.ErrInvalidInput)
}

func withProviderID(links domain.SocialLinks, provider domain.Provider, externalID string) domain.SocialLinks {
	switch provider {
	case domain.ProviderGoogle:
		links.GoogleID = externalID
	case domain.ProviderFacebook:
		links.FacebookID = externalID
	case domain.ProviderLinkedIn:
		links.LinkedInID = externalID
	}
	return links
}

// buildSessionRedirect appends the token pair and the URL-encoded profile as
// query parameters on the deep link. The tokens ride in the URL on purpose
// (no intermediate page for the mobile client); request logging must stay
// path-only because of it.
func buildSessionRedirect(redirectURI string, pair ports.TokenPair, user UserProfile) string {
	userJSON, err := json.Marshal(user)
	if err != nil {
		userJSON = []byte("{}")
	}
	q := url.Values{}
	q.Set("token", pair.AccessToken)
	q.Set("refreshToken", pair.RefreshToken)
	q.Set("user", string(userJSON))

	separator := "?"
	if strings.Contains(redirectURI, "?") {
		separator = "&"
	}
	return redirectURI + separator + q.Encode()
}
