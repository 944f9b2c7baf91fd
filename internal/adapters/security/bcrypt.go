package security

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher hashes account passwords with bcrypt at a fixed cost.
// Reset-PIN redemption and local login both funnel through it.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher builds a hasher; a non-positive cost falls back to the
// library default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
