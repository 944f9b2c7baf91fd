package http

import (
	"net/http"

	"github.com/juniorscv/auth-service/internal/application"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req application.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadBody(r.Context(), w, "register", err)
		return
	}
	if err := h.service.Register(r.Context(), req); err != nil {
		writeMappedError(r.Context(), w, "register", err)
		return
	}
	writeMessage(w, http.StatusCreated, "User registered successfully")
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadBody(r.Context(), w, "login", err)
		return
	}
	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Login successful",
		"token":        resp.Token,
		"refreshToken": resp.RefreshToken,
		"user":         resp.User,
	})
}

func (h *Handler) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeBadBody(r.Context(), w, "refresh_token", err)
		return
	}
	if req.RefreshToken == "" {
		logOperationError(r.Context(), "refresh_token", http.StatusUnauthorized, "missing refresh token", nil)
		writeError(w, http.StatusUnauthorized, "Refresh token required")
		return
	}
	resp, err := h.service.RotateRefresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeMappedError(r.Context(), w, "refresh_token", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	// A missing or unparseable body still logs the caller out; revocation
	// is best-effort by presented token.
	_ = decodeBody(r, &req)
	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		writeMappedError(r.Context(), w, "logout", err)
		return
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	profile, err := h.service.GetProfile(r.Context(), accountID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	var req application.ChangePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadBody(r.Context(), w, "change_password", err)
		return
	}
	if err := h.service.ChangePassword(r.Context(), accountID, req); err != nil {
		writeMappedError(r.Context(), w, "change_password", err)
		return
	}
	writeMessage(w, http.StatusOK, "Password changed successfully")
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if err := h.service.DeleteAccount(r.Context(), accountID); err != nil {
		writeMappedError(r.Context(), w, "delete_account", err)
		return
	}
	writeMessage(w, http.StatusOK, "Account deleted successfully")
}
