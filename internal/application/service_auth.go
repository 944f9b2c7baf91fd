package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/juniorscv/auth-service/internal/domain"
	"github.com/juniorscv/auth-service/internal/ports"
)

func (s *Service) Register(ctx context.Context, req RegisterRequest) error {
	if req.FirstName == "" || req.LastName == "" || req.Phone == "" || req.Email == "" || req.Password == "" {
		return fmt.Errorf("%w: all fields are required", domain.ErrInvalidInput)
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return err
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	// The unique indexes arbitrate duplicate races; the repository turns a
	// duplicate-key error into a field-attributed DuplicateError, so no
	// existence pre-check is needed here.
	account, err := s.accounts.Create(ctx, ports.CreateAccountParams{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
		CreatedAtUTC: s.nowFn(),
	})
	if err != nil {
		return err
	}

	s.sendAsync("welcome_mail", account.Email, func(ctx context.Context) error {
		return s.mailer.SendWelcome(ctx, account.Email, account.FirstName)
	})
	return nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	if req.Identifier == "" || req.Password == "" {
		return LoginResponse{}, fmt.Errorf("%w: identifier and password are required", domain.ErrInvalidInput)
	}

	account, err := s.accounts.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return LoginResponse{}, domain.ErrIdentifierNotFound
		}
		return LoginResponse{}, err
	}

	// Social-only accounts have no hash; the compare below fails the same
	// way for them, keeping the response generic.
	if err := s.hasher.Compare(account.PasswordHash, req.Password); err != nil {
		return LoginResponse{}, domain.ErrInvalidPassword
	}

	pair, err := s.tokens.IssuePair(account.AccountID)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("issue token pair: %w", err)
	}
	now := s.nowFn()
	if err := s.accounts.SetRefreshToken(ctx, account.AccountID, pair.RefreshToken, now); err != nil {
		return LoginResponse{}, err
	}

	// A successful password login supersedes any outstanding reset PIN.
	if account.ResetPIN != "" {
		if err := s.accounts.ClearResetPIN(ctx, account.AccountID, now); err != nil {
			s.logger.WarnContext(ctx, "clear stale reset pin failed",
				"operation", "login",
				"outcome", "partial",
				"error", err.Error(),
			)
		}
	}

	return LoginResponse{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         toUserProfile(account),
	}, nil
}

// RotateRefresh exchanges a refresh token for a new pair. The presented
// token must both verify cryptographically and equal the account's stored
// active token; the swap is a compare-and-swap so a rotated-out token can
// never win a second exchange.
func (s *Service) RotateRefresh(ctx context.Context, refreshToken string) (RefreshResponse, error) {
	if refreshToken == "" {
		return RefreshResponse{}, fmt.Errorf("%w: refresh token is required", domain.ErrInvalidInput)
	}
	accountID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return RefreshResponse{}, err
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return RefreshResponse{}, domain.ErrTokenInvalid
		}
		return RefreshResponse{}, err
	}
	if account.RefreshToken == "" || account.RefreshToken != refreshToken {
		return RefreshResponse{}, domain.ErrTokenInvalid
	}

	pair, err := s.tokens.IssuePair(account.AccountID)
	if err != nil {
		return RefreshResponse{}, fmt.Errorf("issue token pair: %w", err)
	}
	if err := s.accounts.SwapRefreshToken(ctx, account.AccountID, refreshToken, pair.RefreshToken, s.nowFn()); err != nil {
		return RefreshResponse{}, err
	}

	return RefreshResponse{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Logout clears the session owning the presented refresh token. It succeeds
// regardless of whether the token was known, matching the idempotent
// contract of the endpoint.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.accounts.ClearRefreshTokenByValue(ctx, refreshToken, s.nowFn())
}

func (s *Service) ChangePassword(ctx context.Context, accountID uuid.UUID, req ChangePasswordRequest) error {
	if req.OldPassword == "" || req.NewPassword == "" {
		return fmt.Errorf("%w: old and new passwords are required", domain.ErrInvalidInput)
	}
	if err := domain.ValidatePassword(req.NewPassword); err != nil {
		return err
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(account.PasswordHash, req.OldPassword); err != nil {
		return domain.ErrInvalidPassword
	}

	passwordHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	// UpdatePassword clears the active refresh token in the same write;
	// a password change forces re-login everywhere.
	return s.accounts.UpdatePassword(ctx, accountID, passwordHash, s.nowFn())
}

// VerifyAccess validates a bearer access token and confirms the embedded
// account still exists, so tokens held for deleted accounts stop working.
func (s *Service) VerifyAccess(ctx context.Context, token string) (uuid.UUID, error) {
	accountID, err := s.tokens.VerifyAccess(token)
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return uuid.Nil, domain.ErrAccountGone
		}
		return uuid.Nil, err
	}
	return accountID, nil
}

func (s *Service) GetProfile(ctx context.Context, accountID uuid.UUID) (UserProfile, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return UserProfile{}, err
	}
	return toUserProfile(account), nil
}

// DeleteAccount removes the account record. Dependent records in other
// subsystems cascade through their own foreign keys.
func (s *Service) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	return s.accounts.Delete(ctx, accountID)
}

// sendAsync runs a best-effort notification off the request path. The
// request context may be cancelled as soon as the response is written, so
// the send gets a detached context with its own deadline.
func (s *Service) sendAsync(operation, email string, send func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			s.logger.WarnContext(ctx, "notification delivery failed",
				"operation", operation,
				"outcome", "failure",
				"email", email,
				"error", err.Error(),
			)
		}
	}()
}
