package application

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/juniorscv/auth-service/internal/domain"
)

func startSocialLogin(t *testing.T, f *fixture, provider, redirectURI string) string {
	t.Helper()
	authorizeURL, err := f.service.SocialAuthorizeURL(context.Background(), provider, redirectURI)
	if err != nil {
		t.Fatalf("social authorize failed: %v", err)
	}
	state := extractState(authorizeURL)
	if state == "" {
		t.Fatalf("authorize url carries no state: %s", authorizeURL)
	}
	return state
}

func parseSessionRedirect(t *testing.T, target string) (base string, q url.Values) {
	t.Helper()
	u, err := url.Parse(target)
	if err != nil {
		t.Fatalf("redirect is not a url: %v", err)
	}
	return u.Scheme + "://" + u.Host + u.Path, u.Query()
}

func TestSocialCallbackCreatesPasswordlessAccount(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	state := startSocialLogin(t, f, "google", "")
	f.exchanger.addCode("code-1", domain.SocialProfile{
		Provider:   domain.ProviderGoogle,
		ExternalID: "g-123",
		Email:      "ada@example.com",
		FirstName:  "Ada",
		LastName:   "Lovelace",
		PhotoURL:   "https://img.example/ada.png",
	})

	target, err := f.service.SocialCallback(ctx, "google", state, "code-1")
	if err != nil {
		t.Fatalf("social callback failed: %v", err)
	}

	_, q := parseSessionRedirect(t, target)
	if q.Get("token") == "" || q.Get("refreshToken") == "" {
		t.Fatalf("redirect missing token pair: %s", target)
	}
	if !strings.Contains(q.Get("user"), "ada@example.com") {
		t.Fatalf("redirect user payload missing email: %s", q.Get("user"))
	}

	account, err := f.accounts.GetByProviderID(ctx, domain.ProviderGoogle, "g-123")
	if err != nil {
		t.Fatalf("created account not found by provider id: %v", err)
	}
	if account.PasswordHash != "" {
		t.Fatalf("social signup must not carry a password hash")
	}
	if account.Phone != "" {
		t.Fatalf("social signup must not invent a phone")
	}
	if !account.HasAuthFactor() {
		t.Fatalf("social account should authenticate via its provider link")
	}
}

func TestSocialCallbackMergesByEmail(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	registerTestUser(t, f, "ada@example.com", "+15550001111")

	state := startSocialLogin(t, f, "linkedin", "")
	f.exchanger.addCode("code-2", domain.SocialProfile{
		Provider:   domain.ProviderLinkedIn,
		ExternalID: "li-9",
		Email:      "ada@example.com",
		FirstName:  "Ada",
	})

	if _, err := f.service.SocialCallback(ctx, "linkedin", state, "code-2"); err != nil {
		t.Fatalf("social callback failed: %v", err)
	}

	merged, err := f.accounts.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("merged account lookup failed: %v", err)
	}
	if merged.Social.LinkedInID != "li-9" {
		t.Fatalf("expected provider id attached to existing account, got %+v", merged.Social)
	}
	if merged.PasswordHash == "" {
		t.Fatalf("merge must not discard the local password")
	}
}

func TestSocialCallbackExistingProviderLinkWins(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	profile := domain.SocialProfile{
		Provider:   domain.ProviderFacebook,
		ExternalID: "fb-7",
		Email:      "ada@example.com",
		FirstName:  "Ada",
	}
	state := startSocialLogin(t, f, "facebook", "")
	f.exchanger.addCode("code-3", profile)
	if _, err := f.service.SocialCallback(ctx, "facebook", state, "code-3"); err != nil {
		t.Fatalf("first callback failed: %v", err)
	}

	// Same identity, now presenting a changed email: the provider link, not
	// the email, identifies the account.
	profile.Email = "ada.new@example.com"
	state = startSocialLogin(t, f, "facebook", "")
	f.exchanger.addCode("code-4", profile)
	if _, err := f.service.SocialCallback(ctx, "facebook", state, "code-4"); err != nil {
		t.Fatalf("second callback failed: %v", err)
	}

	if _, err := f.accounts.GetByEmail(ctx, "ada.new@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second login must not create a second account")
	}
}

func TestSocialCallbackNoEmailSkipsMerge(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	registerTestUser(t, f, "ada@example.com", "+15550001111")

	state := startSocialLogin(t, f, "facebook", "")
	f.exchanger.addCode("code-5", domain.SocialProfile{
		Provider:   domain.ProviderFacebook,
		ExternalID: "fb-noemail",
		FirstName:  "Ada",
	})
	if _, err := f.service.SocialCallback(ctx, "facebook", state, "code-5"); err != nil {
		t.Fatalf("callback failed: %v", err)
	}

	existing, err := f.accounts.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("account lookup failed: %v", err)
	}
	if existing.Social.FacebookID != "" {
		t.Fatalf("profile without email must not merge into an email-matched account")
	}
	if _, err := f.accounts.GetByProviderID(ctx, domain.ProviderFacebook, "fb-noemail"); err != nil {
		t.Fatalf("expected standalone account for email-less profile: %v", err)
	}
}

func TestSocialCallbackEmaillessSignupsDoNotCollide(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	// Two unrelated users whose providers both withheld the email. Their
	// accounts have no email at all and must not conflict with each other.
	state := startSocialLogin(t, f, "facebook", "")
	f.exchanger.addCode("code-9", domain.SocialProfile{
		Provider:   domain.ProviderFacebook,
		ExternalID: "fb-anon-1",
		FirstName:  "Ada",
	})
	if _, err := f.service.SocialCallback(ctx, "facebook", state, "code-9"); err != nil {
		t.Fatalf("first email-less callback failed: %v", err)
	}

	state = startSocialLogin(t, f, "facebook", "")
	f.exchanger.addCode("code-10", domain.SocialProfile{
		Provider:   domain.ProviderFacebook,
		ExternalID: "fb-anon-2",
		FirstName:  "Grace",
	})
	if _, err := f.service.SocialCallback(ctx, "facebook", state, "code-10"); err != nil {
		t.Fatalf("second email-less callback failed: %v", err)
	}

	for _, id := range []string{"fb-anon-1", "fb-anon-2"} {
		account, err := f.accounts.GetByProviderID(ctx, domain.ProviderFacebook, id)
		if err != nil {
			t.Fatalf("account %s not found: %v", id, err)
		}
		if account.Email != "" {
			t.Fatalf("email-less signup must not invent an email, got %q", account.Email)
		}
	}
}

func TestSocialCallbackStateIsOneShot(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	state := startSocialLogin(t, f, "google", "")
	f.exchanger.addCode("code-6", domain.SocialProfile{
		Provider:   domain.ProviderGoogle,
		ExternalID: "g-replay",
		Email:      "replay@example.com",
	})
	if _, err := f.service.SocialCallback(ctx, "google", state, "code-6"); err != nil {
		t.Fatalf("callback failed: %v", err)
	}
	if _, err := f.service.SocialCallback(ctx, "google", state, "code-6"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected replayed state to fail, got %v", err)
	}
}

func TestSocialCallbackRejectsProviderMismatch(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	state := startSocialLogin(t, f, "google", "")
	f.exchanger.addCode("code-7", domain.SocialProfile{
		Provider:   domain.ProviderFacebook,
		ExternalID: "fb-x",
	})
	if _, err := f.service.SocialCallback(ctx, "facebook", state, "code-7"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected provider mismatch rejection, got %v", err)
	}
}

func TestSocialAuthorizeRedirectPolicy(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if _, err := f.service.SocialAuthorizeURL(ctx, "google", "https://evil.example/phish"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected unlisted redirect rejection, got %v", err)
	}
	if _, err := f.service.SocialAuthorizeURL(ctx, "twitter", ""); !errors.Is(err, domain.ErrUnsupportedProvider) {
		t.Fatalf("expected unsupported provider, got %v", err)
	}

	state := startSocialLogin(t, f, "google", "https://app.example.com/after-login")
	f.exchanger.addCode("code-8", domain.SocialProfile{
		Provider:   domain.ProviderGoogle,
		ExternalID: "g-dest",
		Email:      "dest@example.com",
	})
	target, err := f.service.SocialCallback(ctx, "google", state, "code-8")
	if err != nil {
		t.Fatalf("callback failed: %v", err)
	}
	base, _ := parseSessionRedirect(t, target)
	if base != "https://app.example.com/after-login" {
		t.Fatalf("expected allow-listed destination, got %s", base)
	}
}

func TestSocialFailureRedirect(t *testing.T) {
	t.Parallel()

	f := newFixture()
	if got := f.service.SocialFailureRedirect(); got != "juniorscv://login?error=auth_failed" {
		t.Fatalf("unexpected failure redirect: %s", got)
	}
}
