package postgres

import (
	"time"

	"github.com/google/uuid"
)

type accountModel struct {
	AccountID    uuid.UUID `gorm:"column:account_id;type:uuid;default:gen_random_uuid();primaryKey"`
	FirstName    string    `gorm:"column:first_name"`
	LastName     string    `gorm:"column:last_name"`
	Email        *string   `gorm:"column:email"`
	Phone        *string   `gorm:"column:phone"`
	PasswordHash *string   `gorm:"column:password_hash"`
	GoogleID     *string   `gorm:"column:google_id"`
	FacebookID   *string   `gorm:"column:facebook_id"`
	LinkedInID   *string   `gorm:"column:linkedin_id"`
	PhotoURL     *string   `gorm:"column:photo_url"`

	RefreshToken      *string    `gorm:"column:refresh_token"`
	ResetPIN          *string    `gorm:"column:reset_pin"`
	ResetPINExpiresAt *time.Time `gorm:"column:reset_pin_expires_at"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (accountModel) TableName() string { return "accounts" }
