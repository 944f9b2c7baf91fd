package ports

import (
	"context"

	"github.com/juniorscv/auth-service/internal/domain"
)

// Mailer is the outbound notification port. Welcome mail is best-effort and
// never affects the primary operation; password-reset mail is the one case
// where a definitive delivery failure must surface to the caller so the PIN
// can be rolled back.
type Mailer interface {
	SendWelcome(ctx context.Context, email, firstName string) error
	SendSocialWelcome(ctx context.Context, email, firstName string, provider domain.Provider) error
	SendPasswordReset(ctx context.Context, email, pin, firstName string) error
}
