package postgres

import (
	"errors"
	"strings"

	"github.com/juniorscv/auth-service/internal/domain"
	"gorm.io/gorm"
)

func toDomainAccount(row accountModel) domain.Account {
	return domain.Account{
		AccountID:    row.AccountID,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Email:        derefString(row.Email),
		Phone:        derefString(row.Phone),
		PasswordHash: derefString(row.PasswordHash),
		Social: domain.SocialLinks{
			GoogleID:   derefString(row.GoogleID),
			FacebookID: derefString(row.FacebookID),
			LinkedInID: derefString(row.LinkedInID),
		},
		PhotoURL:          derefString(row.PhotoURL),
		RefreshToken:      derefString(row.RefreshToken),
		ResetPIN:          derefString(row.ResetPIN),
		ResetPINExpiresAt: row.ResetPINExpiresAt,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

// nullableString maps an empty optional field to NULL so the sparse unique
// indexes never collide on placeholder values.
func nullableString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// providerColumn maps a provider to its external-ID column. Providers are a
// closed set, so an unknown value is a programming error.
func providerColumn(p domain.Provider) string {
	switch p {
	case domain.ProviderGoogle:
		return "google_id"
	case domain.ProviderFacebook:
		return "facebook_id"
	case domain.ProviderLinkedIn:
		return "linkedin_id"
	default:
		panic("postgres: unknown provider " + string(p))
	}
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
