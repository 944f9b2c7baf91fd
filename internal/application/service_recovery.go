package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/juniorscv/auth-service/internal/domain"
)

// ForgotPassword issues a short numeric reset PIN and mails it. Delivery is
// awaited deliberately: a PIN the user never received must not stay
// redeemable, so a definitive mail failure rolls the issuance back.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	account, err := s.accounts.GetByEmail(ctx, normalized)
	if err != nil {
		return err
	}

	pin := randomPIN()
	now := s.nowFn()
	if err := s.accounts.SetResetPIN(ctx, account.AccountID, pin, now.Add(s.cfg.ResetPINTTL), now); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, account.Email, pin, account.FirstName); err != nil {
		s.logger.WarnContext(ctx, "password reset mail failed, revoking pin",
			"operation", "forgot_password",
			"outcome", "failure",
			"error", err.Error(),
		)
		if clearErr := s.accounts.ClearResetPIN(ctx, account.AccountID, s.nowFn()); clearErr != nil {
			return fmt.Errorf("clear undelivered pin: %w", clearErr)
		}
		return fmt.Errorf("%w: %v", domain.ErrMailDelivery, err)
	}
	return nil
}

// ResetPassword redeems a PIN for a new password. Wrong and expired PINs are
// indistinguishable to the caller, and a redeemed PIN never works twice.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if req.Token == "" || req.NewPassword == "" {
		return fmt.Errorf("%w: token and new password are required", domain.ErrInvalidInput)
	}
	if err := domain.ValidatePassword(req.NewPassword); err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.accounts.ConsumeResetPIN(ctx, req.Token, passwordHash, s.nowFn()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrPINInvalidOrExpired
		}
		return err
	}
	return nil
}
