package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juniorscv/auth-service/internal/domain"
	"github.com/juniorscv/auth-service/internal/ports"
)

type fixture struct {
	service   *Service
	accounts  *fakeAccounts
	tokens    *fakeCodec
	mailer    *fakeMailer
	authState *fakeStateStore
	exchanger *fakeExchanger
}

func newFixture() *fixture {
	accounts := &fakeAccounts{byID: make(map[uuid.UUID]domain.Account)}
	tokens := &fakeCodec{access: make(map[string]uuid.UUID), refresh: make(map[string]uuid.UUID)}
	mailer := &fakeMailer{resetPINs: make(map[string]string)}
	authState := &fakeStateStore{states: make(map[string]ports.AuthState)}
	exchanger := &fakeExchanger{profiles: make(map[string]domain.SocialProfile)}

	svc := NewService(Dependencies{
		Config: Config{
			ResetPINTTL:         time.Hour,
			AuthStateTTL:        10 * time.Minute,
			DeepLinkBaseURL:     "juniorscv://",
			AllowedRedirectURIs: []string{"juniorscv://", "https://app.example.com/"},
		},
		Accounts:  accounts,
		Tokens:    tokens,
		Hasher:    fakeHasher{},
		Mailer:    mailer,
		AuthState: authState,
		Exchanger: exchanger,
		Logger:    slog.Default(),
	})

	return &fixture{
		service:   svc,
		accounts:  accounts,
		tokens:    tokens,
		mailer:    mailer,
		authState: authState,
		exchanger: exchanger,
	}
}

// setNow pins the service clock so expiry behavior is deterministic.
func (f *fixture) setNow(now time.Time) {
	f.service.nowFn = func() time.Time { return now }
}

type fakeAccounts struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.Account
}

func (f *fakeAccounts) Create(_ context.Context, params ports.CreateAccountParams) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if params.Email != "" && a.Email == params.Email {
			return domain.Account{}, domain.NewDuplicateError("email")
		}
		if params.Phone != "" && a.Phone == params.Phone {
			return domain.Account{}, domain.NewDuplicateError("phone")
		}
		for _, p := range domain.Providers() {
			if id := params.Social.ID(p); id != "" && a.Social.ID(p) == id {
				return domain.Account{}, domain.NewDuplicateError(string(p))
			}
		}
	}
	account := domain.Account{
		AccountID:    uuid.New(),
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        params.Email,
		Phone:        params.Phone,
		PasswordHash: params.PasswordHash,
		Social:       params.Social,
		PhotoURL:     params.PhotoURL,
		CreatedAt:    params.CreatedAtUTC,
		UpdatedAt:    params.CreatedAtUTC,
	}
	f.byID[account.AccountID] = account
	return account, nil
}

func (f *fakeAccounts) GetByID(_ context.Context, accountID uuid.UUID) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[accountID]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccounts) GetByIdentifier(_ context.Context, identifier string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Email == identifier || (a.Phone != "" && a.Phone == identifier) {
			return a, nil
		}
	}
	return domain.Account{}, domain.ErrNotFound
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return domain.Account{}, domain.ErrNotFound
}

func (f *fakeAccounts) GetByProviderID(_ context.Context, provider domain.Provider, externalID string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Social.ID(provider) == externalID {
			return a, nil
		}
	}
	return domain.Account{}, domain.ErrNotFound
}

func (f *fakeAccounts) AttachProviderID(_ context.Context, accountID uuid.UUID, provider domain.Provider, externalID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, a := range f.byID {
		if id != accountID && a.Social.ID(provider) == externalID {
			return domain.NewDuplicateError(string(provider))
		}
	}
	a, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	switch provider {
	case domain.ProviderGoogle:
		a.Social.GoogleID = externalID
	case domain.ProviderFacebook:
		a.Social.FacebookID = externalID
	case domain.ProviderLinkedIn:
		a.Social.LinkedInID = externalID
	}
	a.UpdatedAt = now
	f.byID[accountID] = a
	return nil
}

func (f *fakeAccounts) UpdatePassword(_ context.Context, accountID uuid.UUID, passwordHash string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.RefreshToken = ""
	a.UpdatedAt = now
	f.byID[accountID] = a
	return nil
}

func (f *fakeAccounts) SetRefreshToken(_ context.Context, accountID uuid.UUID, token string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	a.RefreshToken = token
	a.UpdatedAt = now
	f.byID[accountID] = a
	return nil
}

func (f *fakeAccounts) SwapRefreshToken(_ context.Context, accountID uuid.UUID, oldToken, newToken string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[accountID]
	if !ok || a.RefreshToken != oldToken {
		return domain.ErrTokenInvalid
	}
	a.RefreshToken = newToken
	a.UpdatedAt = now
	f.byID[accountID] = a
	return nil
}

func (f *fakeAccounts) ClearRefreshTokenByValue(_ context.Context, token string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, a := range f.byID {
		if a.RefreshToken == token {
			a.RefreshToken = ""
			a.UpdatedAt = now
			f.byID[id] = a
		}
	}
	return nil
}

func (f *fakeAccounts) SetResetPIN(_ context.Context, accountID uuid.UUID, pin string, expiresAt, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	a.ResetPIN = pin
	exp := expiresAt
	a.ResetPINExpiresAt = &exp
	a.UpdatedAt = now
	f.byID[accountID] = a
	return nil
}

func (f *fakeAccounts) ClearResetPIN(_ context.Context, accountID uuid.UUID, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	a.ResetPIN = ""
	a.ResetPINExpiresAt = nil
	a.UpdatedAt = now
	f.byID[accountID] = a
	return nil
}

func (f *fakeAccounts) ConsumeResetPIN(_ context.Context, pin, passwordHash string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, a := range f.byID {
		if a.ResetPIN == pin && a.ResetPINExpiresAt != nil && a.ResetPINExpiresAt.After(now) {
			a.PasswordHash = passwordHash
			a.ResetPIN = ""
			a.ResetPINExpiresAt = nil
			a.RefreshToken = ""
			a.UpdatedAt = now
			f.byID[id] = a
			return nil
		}
	}
	return domain.ErrPINInvalidOrExpired
}

func (f *fakeAccounts) Delete(_ context.Context, accountID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[accountID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, accountID)
	return nil
}

type fakeCodec struct {
	mu      sync.Mutex
	seq     int
	access  map[string]uuid.UUID
	refresh map[string]uuid.UUID
	expired map[string]bool
}

func (c *fakeCodec) IssuePair(accountID uuid.UUID) (ports.TokenPair, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	pair := ports.TokenPair{
		AccessToken:  fmt.Sprintf("access.%s.%d", accountID, c.seq),
		RefreshToken: fmt.Sprintf("refresh.%s.%d", accountID, c.seq),
	}
	c.access[pair.AccessToken] = accountID
	c.refresh[pair.RefreshToken] = accountID
	return pair, nil
}

func (c *fakeCodec) VerifyAccess(token string) (uuid.UUID, error) {
	return c.verify(token, c.access)
}

func (c *fakeCodec) VerifyRefresh(token string) (uuid.UUID, error) {
	return c.verify(token, c.refresh)
}

func (c *fakeCodec) verify(token string, known map[string]uuid.UUID) (uuid.UUID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expired[token] {
		return uuid.Nil, domain.ErrTokenExpired
	}
	id, ok := known[token]
	if !ok {
		return uuid.Nil, domain.ErrTokenInvalid
	}
	return id, nil
}

func (c *fakeCodec) markExpired(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expired == nil {
		c.expired = make(map[string]bool)
	}
	c.expired[token] = true
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("hash mismatch")
	}
	return nil
}

type fakeMailer struct {
	mu        sync.Mutex
	welcomes  []string
	resetPINs map[string]string
	failReset error
}

func (m *fakeMailer) SendWelcome(_ context.Context, email, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomes = append(m.welcomes, email)
	return nil
}

func (m *fakeMailer) SendSocialWelcome(_ context.Context, email, _ string, _ domain.Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomes = append(m.welcomes, email)
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, email, pin, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReset != nil {
		return m.failReset
	}
	m.resetPINs[email] = pin
	return nil
}

func (m *fakeMailer) lastResetPIN(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resetPINs[email]
}

type fakeStateStore struct {
	mu     sync.Mutex
	states map[string]ports.AuthState
}

func (s *fakeStateStore) Put(_ context.Context, state string, value ports.AuthState, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = value
	return nil
}

func (s *fakeStateStore) Get(_ context.Context, state string) (*ports.AuthState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.states[state]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (s *fakeStateStore) Delete(_ context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, state)
	return nil
}

type fakeExchanger struct {
	mu       sync.Mutex
	profiles map[string]domain.SocialProfile
}

func (e *fakeExchanger) AuthorizeURL(_ context.Context, provider domain.Provider, state string) (string, error) {
	return fmt.Sprintf("https://%s.example/authorize?state=%s", provider, state), nil
}

func (e *fakeExchanger) Exchange(_ context.Context, provider domain.Provider, code string) (domain.SocialProfile, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	profile, ok := e.profiles[code]
	if !ok || profile.Provider != provider {
		return domain.SocialProfile{}, fmt.Errorf("unknown authorization code")
	}
	return profile, nil
}

func (e *fakeExchanger) addCode(code string, profile domain.SocialProfile) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profiles[code] = profile
}

// extractState pulls the state value back out of a fake authorize URL.
func extractState(authorizeURL string) string {
	idx := strings.Index(authorizeURL, "state=")
	if idx < 0 {
		return ""
	}
	return authorizeURL[idx+len("state="):]
}
