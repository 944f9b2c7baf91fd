package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/juniorscv/auth-service/internal/domain"
)

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

// writeMappedError is the single translation point from domain errors to
// the wire. Unexpected errors surface as a bare 500 with detail withheld.
func writeMappedError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		field := domain.DuplicateField(err)
		logOperationError(ctx, operation, http.StatusBadRequest, "duplicate "+field, err)
		writeDuplicateError(w, "An account with this "+field+" already exists", field)
	case errors.Is(err, domain.ErrIdentifierNotFound):
		logOperationError(ctx, operation, http.StatusBadRequest, "identifier not found", err)
		writeFieldError(w, http.StatusBadRequest, "Invalid credentials", "identifier")
	case errors.Is(err, domain.ErrInvalidPassword):
		logOperationError(ctx, operation, http.StatusBadRequest, "incorrect password", err)
		writeFieldError(w, http.StatusBadRequest, "Invalid credentials", "password")
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedProvider):
		logOperationError(ctx, operation, http.StatusBadRequest, err.Error(), err)
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrPINInvalidOrExpired):
		logOperationError(ctx, operation, http.StatusBadRequest, "invalid or expired reset token", err)
		writeError(w, http.StatusBadRequest, "Invalid or expired reset token")
	case errors.Is(err, domain.ErrTokenExpired):
		logOperationError(ctx, operation, http.StatusUnauthorized, "token expired", err)
		writeExpired(w)
	case errors.Is(err, domain.ErrAccountGone):
		logOperationError(ctx, operation, http.StatusUnauthorized, "account no longer exists", err)
		writeError(w, http.StatusUnauthorized, "Account no longer exists")
	case errors.Is(err, domain.ErrTokenInvalid):
		logOperationError(ctx, operation, http.StatusUnauthorized, "invalid token", err)
		writeError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
	case errors.Is(err, domain.ErrNotFound):
		logOperationError(ctx, operation, http.StatusNotFound, "not found", err)
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrMailDelivery):
		logOperationError(ctx, operation, http.StatusInternalServerError, "mail delivery failed", err)
		writeError(w, http.StatusInternalServerError, "Error sending email")
	default:
		logOperationError(ctx, operation, http.StatusInternalServerError, "server error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

func writeBadBody(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	logOperationError(ctx, operation, http.StatusBadRequest, "malformed request body", err)
	writeError(w, http.StatusBadRequest, "Malformed request body")
}
