package application

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/juniorscv/auth-service/internal/domain"
	"github.com/juniorscv/auth-service/internal/ports"
)

// Service orchestrates the identity and session use-cases. All collaborators
// are injected so tests can substitute fakes without process-wide state.
type Service struct {
	cfg       Config
	accounts  ports.AccountRepository
	tokens    ports.TokenCodec
	hasher    ports.PasswordHasher
	mailer    ports.Mailer
	authState ports.AuthStateStore
	exchanger ports.ProviderExchanger
	logger    *slog.Logger
	nowFn     func() time.Time
}

type Dependencies struct {
	Config    Config
	Accounts  ports.AccountRepository
	Tokens    ports.TokenCodec
	Hasher    ports.PasswordHasher
	Mailer    ports.Mailer
	AuthState ports.AuthStateStore
	Exchanger ports.ProviderExchanger
	Logger    *slog.Logger
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ResetPINTTL <= 0 {
		cfg.ResetPINTTL = time.Hour
	}
	if cfg.AuthStateTTL <= 0 {
		cfg.AuthStateTTL = 10 * time.Minute
	}
	if cfg.DeepLinkBaseURL == "" {
		cfg.DeepLinkBaseURL = "juniorscv://"
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:       cfg,
		accounts:  deps.Accounts,
		tokens:    deps.Tokens,
		hasher:    deps.Hasher,
		mailer:    deps.Mailer,
		authState: deps.AuthState,
		exchanger: deps.Exchanger,
		logger:    logger.With("module", "application"),
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}

func toUserProfile(a domain.Account) UserProfile {
	return UserProfile{
		ID:           a.AccountID,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Phone:        a.Phone,
		Email:        a.Email,
		ProfilePhoto: a.PhotoURL,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	return trimmed, nil
}

// randomPIN draws a fixed-width numeric PIN in [1000, 9999] from crypto/rand.
func randomPIN() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		// crypto/rand failing means the process has no entropy source at all.
		panic(fmt.Sprintf("read random pin: %v", err))
	}
	return fmt.Sprintf("%04d", n.Int64()+1000)
}
