package security

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/juniorscv/auth-service/internal/domain"
)

// OAuthProviderConfig carries the per-provider client credentials and the
// callback URL registered with the provider.
type OAuthProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type providerEndpoints struct {
	authorizeURL string
	tokenURL     string
	userinfoURL  string
	scopes       string
}

// The provider set is closed, so endpoints live in a table instead of a
// discovery round trip. LinkedIn and Google speak OpenID userinfo; Facebook
// has its own Graph shape, handled in decodeProfile.
var endpointsByProvider = map[domain.Provider]providerEndpoints{
	domain.ProviderGoogle: {
		authorizeURL: "https://accounts.google.com/o/oauth2/v2/auth",
		tokenURL:     "https://oauth2.googleapis.com/token",
		userinfoURL:  "https://www.googleapis.com/oauth2/v3/userinfo",
		scopes:       "openid email profile",
	},
	domain.ProviderFacebook: {
		authorizeURL: "https://www.facebook.com/v18.0/dialog/oauth",
		tokenURL:     "https://graph.facebook.com/v18.0/oauth/access_token",
		userinfoURL:  "https://graph.facebook.com/me?fields=id,email,first_name,last_name,picture.type(large)",
		scopes:       "email public_profile",
	},
	domain.ProviderLinkedIn: {
		authorizeURL: "https://www.linkedin.com/oauth/v2/authorization",
		tokenURL:     "https://www.linkedin.com/oauth/v2/accessToken",
		userinfoURL:  "https://api.linkedin.com/v2/userinfo",
		scopes:       "openid profile email",
	},
}

// OAuthExchanger implements ports.ProviderExchanger against the three
// supported providers' authorization-code endpoints.
type OAuthExchanger struct {
	httpClient *http.Client
	providers  map[domain.Provider]OAuthProviderConfig
}

func NewOAuthExchanger(httpClient *http.Client, providers map[domain.Provider]OAuthProviderConfig) *OAuthExchanger {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 8 * time.Second}
	}
	return &OAuthExchanger{httpClient: httpClient, providers: providers}
}

func (e *OAuthExchanger) AuthorizeURL(_ context.Context, provider domain.Provider, state string) (string, error) {
	cfg, endpoints, err := e.providerConfig(provider)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("client_id", cfg.ClientID)
	q.Set("redirect_uri", cfg.RedirectURL)
	q.Set("response_type", "code")
	q.Set("scope", endpoints.scopes)
	q.Set("state", state)
	return endpoints.authorizeURL + "?" + q.Encode(), nil
}

func (e *OAuthExchanger) Exchange(ctx context.Context, provider domain.Provider, code string) (domain.SocialProfile, error) {
	cfg, endpoints, err := e.providerConfig(provider)
	if err != nil {
		return domain.SocialProfile{}, err
	}

	accessToken, err := e.exchangeCode(ctx, cfg, endpoints, code)
	if err != nil {
		return domain.SocialProfile{}, err
	}
	return e.fetchProfile(ctx, provider, endpoints, accessToken)
}

func (e *OAuthExchanger) providerConfig(provider domain.Provider) (OAuthProviderConfig, providerEndpoints, error) {
	endpoints, ok := endpointsByProvider[provider]
	if !ok {
		return OAuthProviderConfig{}, providerEndpoints{}, domain.ErrUnsupportedProvider
	}
	cfg, ok := e.providers[provider]
	if !ok || strings.TrimSpace(cfg.ClientID) == "" {
		return OAuthProviderConfig{}, providerEndpoints{}, fmt.Errorf("provider %s is not configured (missing client_id)", provider)
	}
	if strings.TrimSpace(cfg.RedirectURL) == "" {
		return OAuthProviderConfig{}, providerEndpoints{}, fmt.Errorf("provider %s is not configured (missing redirect_url)", provider)
	}
	return cfg, endpoints, nil
}

func (e *OAuthExchanger) exchangeCode(ctx context.Context, cfg OAuthProviderConfig, endpoints providerEndpoints, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", cfg.ClientID)
	form.Set("client_secret", cfg.ClientSecret)
	form.Set("redirect_uri", cfg.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoints.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("oauth token exchange failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if strings.TrimSpace(tokenResp.AccessToken) == "" {
		return "", fmt.Errorf("access_token missing in token response")
	}
	return tokenResp.AccessToken, nil
}

func (e *OAuthExchanger) fetchProfile(ctx context.Context, provider domain.Provider, endpoints providerEndpoints, accessToken string) (domain.SocialProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoints.userinfoURL, nil)
	if err != nil {
		return domain.SocialProfile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return domain.SocialProfile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.SocialProfile{}, fmt.Errorf("oauth userinfo fetch failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return domain.SocialProfile{}, err
	}
	return decodeProfile(provider, raw)
}

func decodeProfile(provider domain.Provider, raw []byte) (domain.SocialProfile, error) {
	switch provider {
	case domain.ProviderFacebook:
		var doc struct {
			ID        string `json:"id"`
			Email     string `json:"email"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Picture   struct {
				Data struct {
					URL string `json:"url"`
				} `json:"data"`
			} `json:"picture"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return domain.SocialProfile{}, fmt.Errorf("decode facebook profile: %w", err)
		}
		if doc.ID == "" {
			return domain.SocialProfile{}, fmt.Errorf("facebook profile missing id")
		}
		return domain.SocialProfile{
			Provider:   provider,
			ExternalID: doc.ID,
			Email:      strings.ToLower(strings.TrimSpace(doc.Email)),
			FirstName:  strings.TrimSpace(doc.FirstName),
			LastName:   strings.TrimSpace(doc.LastName),
			PhotoURL:   doc.Picture.Data.URL,
		}, nil
	default:
		// Google and LinkedIn both serve the OpenID userinfo shape.
		var doc struct {
			Sub        string `json:"sub"`
			Email      string `json:"email"`
			GivenName  string `json:"given_name"`
			FamilyName string `json:"family_name"`
			Picture    string `json:"picture"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return domain.SocialProfile{}, fmt.Errorf("decode %s profile: %w", provider, err)
		}
		if doc.Sub == "" {
			return domain.SocialProfile{}, fmt.Errorf("%s profile missing sub", provider)
		}
		return domain.SocialProfile{
			Provider:   provider,
			ExternalID: doc.Sub,
			Email:      strings.ToLower(strings.TrimSpace(doc.Email)),
			FirstName:  strings.TrimSpace(doc.GivenName),
			LastName:   strings.TrimSpace(doc.FamilyName),
			PhotoURL:   doc.Picture,
		}, nil
	}
}
