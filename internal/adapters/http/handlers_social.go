package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/juniorscv/auth-service/internal/domain"
)

func (h *Handler) socialAuthorize(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	redirectURI := r.URL.Query().Get("redirect_uri")

	authorizeURL, err := h.service.SocialAuthorizeURL(r.Context(), provider, redirectURI)
	if err != nil {
		writeMappedError(r.Context(), w, "social_authorize", err)
		return
	}
	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

// socialCallback always answers with a redirect: the browser is mid-flow and
// a JSON error would strand it, so failures land on the app's login screen.
func (h *Handler) socialCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	q := r.URL.Query()

	if q.Get("error") != "" {
		logOperationError(r.Context(), "social_callback", http.StatusFound, "provider returned error", errors.New(q.Get("error")))
		http.Redirect(w, r, h.service.SocialFailureRedirect(), http.StatusFound)
		return
	}

	target, err := h.service.SocialCallback(r.Context(), provider, q.Get("state"), q.Get("code"))
	if err != nil {
		// Unknown provider is a malformed request, not a failed login.
		if errors.Is(err, domain.ErrUnsupportedProvider) {
			writeMappedError(r.Context(), w, "social_callback", err)
			return
		}
		logOperationError(r.Context(), "social_callback", http.StatusFound, "social login failed", err)
		http.Redirect(w, r, h.service.SocialFailureRedirect(), http.StatusFound)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
