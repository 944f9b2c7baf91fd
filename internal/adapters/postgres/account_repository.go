package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/juniorscv/auth-service/internal/domain"
	"github.com/juniorscv/auth-service/internal/ports"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository returns a Postgres-backed ports.AccountRepository.
// The connection must have been opened with TranslateError enabled.
func NewAccountRepository(db *gorm.DB) ports.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, params ports.CreateAccountParams) (domain.Account, error) {
	rec := accountModel{
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        nullableString(params.Email),
		Phone:        nullableString(params.Phone),
		PasswordHash: nullableString(params.PasswordHash),
		GoogleID:     nullableString(params.Social.GoogleID),
		FacebookID:   nullableString(params.Social.FacebookID),
		LinkedInID:   nullableString(params.Social.LinkedInID),
		PhotoURL:     nullableString(params.PhotoURL),
		CreatedAt:    params.CreatedAtUTC,
		UpdatedAt:    params.CreatedAtUTC,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Account{}, r.attributeDuplicate(ctx, params)
		}
		return domain.Account{}, err
	}
	return toDomainAccount(rec), nil
}

// attributeDuplicate names the field behind a duplicate-key error. The
// driver's translated error carries no constraint name, so re-probe the
// candidate columns in the order clients care about.
func (r *accountRepository) attributeDuplicate(ctx context.Context, params ports.CreateAccountParams) error {
	if params.Email != "" && r.exists(ctx, "email = ?", params.Email) {
		return domain.NewDuplicateError("email")
	}
	if params.Phone != "" && r.exists(ctx, "phone = ?", params.Phone) {
		return domain.NewDuplicateError("phone")
	}
	for _, p := range domain.Providers() {
		if id := params.Social.ID(p); id != "" && r.exists(ctx, providerColumn(p)+" = ?", id) {
			return domain.NewDuplicateError(string(p))
		}
	}
	// Lost the race and the winner vanished before the probe; attribute
	// to the primary identifier.
	return domain.NewDuplicateError("email")
}

func (r *accountRepository) exists(ctx context.Context, query string, arg any) bool {
	var count int64
	if err := r.db.WithContext(ctx).Model(&accountModel{}).Where(query, arg).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

func (r *accountRepository) GetByID(ctx context.Context, accountID uuid.UUID) (domain.Account, error) {
	var rec accountModel
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrNotFound
		}
		return domain.Account{}, err
	}
	return toDomainAccount(rec), nil
}

func (r *accountRepository) GetByIdentifier(ctx context.Context, identifier string) (domain.Account, error) {
	var rec accountModel
	err := r.db.WithContext(ctx).
		Where("email = ? OR phone = ?", identifier, identifier).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrNotFound
		}
		return domain.Account{}, err
	}
	return toDomainAccount(rec), nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	var rec accountModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrNotFound
		}
		return domain.Account{}, err
	}
	return toDomainAccount(rec), nil
}

func (r *accountRepository) GetByProviderID(ctx context.Context, provider domain.Provider, externalID string) (domain.Account, error) {
	var rec accountModel
	if err := r.db.WithContext(ctx).Where(providerColumn(provider)+" = ?", externalID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrNotFound
		}
		return domain.Account{}, err
	}
	return toDomainAccount(rec), nil
}

func (r *accountRepository) AttachProviderID(ctx context.Context, accountID uuid.UUID, provider domain.Provider, externalID string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{
			providerColumn(provider): externalID,
			"updated_at":             now,
		})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return domain.NewDuplicateError(string(provider))
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) UpdatePassword(ctx context.Context, accountID uuid.UUID, passwordHash string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{
			"password_hash": passwordHash,
			"refresh_token": nil,
			"updated_at":    now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) SetRefreshToken(ctx context.Context, accountID uuid.UUID, token string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{
			"refresh_token": token,
			"updated_at":    now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) SwapRefreshToken(ctx context.Context, accountID uuid.UUID, oldToken, newToken string, now time.Time) error {
	// Compare-and-swap on the stored value: of two concurrent rotations
	// exactly one matches the old token and wins.
	res := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("account_id = ? AND refresh_token = ?", accountID, oldToken).
		Updates(map[string]any{
			"refresh_token": newToken,
			"updated_at":    now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTokenInvalid
	}
	return nil
}

func (r *accountRepository) ClearRefreshTokenByValue(ctx context.Context, token string, now time.Time) error {
	// Zero rows affected means the token was already revoked or never
	// issued; logout stays idempotent either way.
	return r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("refresh_token = ?", token).
		Updates(map[string]any{
			"refresh_token": nil,
			"updated_at":    now,
		}).Error
}

func (r *accountRepository) SetResetPIN(ctx context.Context, accountID uuid.UUID, pin string, expiresAt, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{
			"reset_pin":            pin,
			"reset_pin_expires_at": expiresAt,
			"updated_at":           now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) ClearResetPIN(ctx context.Context, accountID uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{
			"reset_pin":            nil,
			"reset_pin_expires_at": nil,
			"updated_at":           now,
		}).Error
}

func (r *accountRepository) ConsumeResetPIN(ctx context.Context, pin, passwordHash string, now time.Time) error {
	// A four-digit PIN can collide across accounts, so resolve exactly one
	// row first and key the guarded write on it. The second WHERE on the PIN
	// makes redemption one-shot under concurrency.
	var rec accountModel
	err := r.db.WithContext(ctx).
		Where("reset_pin = ? AND reset_pin_expires_at > ?", pin, now).
		Order("reset_pin_expires_at ASC").
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrPINInvalidOrExpired
		}
		return err
	}

	res := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("account_id = ? AND reset_pin = ?", rec.AccountID, pin).
		Updates(map[string]any{
			"password_hash":        passwordHash,
			"reset_pin":            nil,
			"reset_pin_expires_at": nil,
			"refresh_token":        nil,
			"updated_at":           now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPINInvalidOrExpired
	}
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, accountID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&accountModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
