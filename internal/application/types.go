package application

import (
	"time"

	"github.com/google/uuid"
)

// Config carries the timing and redirect policy knobs the service needs.
type Config struct {
	ResetPINTTL time.Duration
	// AuthStateTTL bounds the OAuth provider round trip.
	AuthStateTTL time.Duration
	// DeepLinkBaseURL is the mobile deep-link base, e.g. "juniorscv://".
	DeepLinkBaseURL string
	// AllowedRedirectURIs are the prefixes a client-supplied social-login
	// return destination must match. An unlisted destination is rejected,
	// never followed.
	AllowedRedirectURIs []string
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// UserProfile is the minimal account view returned to clients. Secrets
// (password hash, refresh token, reset PIN) never appear here.
type UserProfile struct {
	ID           uuid.UUID `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email"`
	ProfilePhoto string    `json:"profilePhoto"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type LoginResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	User         UserProfile `json:"user"`
}

type RefreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}
