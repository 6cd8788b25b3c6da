package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/frahmantamala/mastersight/internal/transport"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto CredentialsDTO) (*Session, error)
	ForgotPassword(ctx context.Context, dto ForgotPasswordDTO) error
	ValidateResetToken(ctx context.Context, token string) (string, error)
	ResetPassword(ctx context.Context, dto ResetPasswordDTO) error
	LoginWithGoogle(ctx context.Context, profile GoogleProfile) (*Session, error)
}

// GoogleAPI is nil when Google login is not configured.
type GoogleAPI interface {
	Begin(w http.ResponseWriter) (string, error)
	Complete(ctx context.Context, w http.ResponseWriter, r *http.Request) (*GoogleProfile, error)
}

type Handler struct {
	*transport.BaseHandler
	Service     ServiceAPI
	Sessions    *SessionResolver
	Google      GoogleAPI
	FrontendURL string
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, sessions *SessionResolver, google GoogleAPI, frontendURL string) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		Sessions:    sessions,
		Google:      google,
		FrontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (h *Handler) Credentials(w http.ResponseWriter, r *http.Request) {
	var dto CredentialsDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	session, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.Sessions.SetCookie(w, session.Token, session.ExpiresAt)
	h.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearCookie(w)
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "logged-out"})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var dto ForgotPasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.ForgotPassword(r.Context(), dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	email, err := h.Service.ValidateResetToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ValidateTokenResponse{Email: email})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var dto ResetPasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.ResetPassword(r.Context(), dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.Sessions.ClearCookie(w)
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "password-updated"})
}

func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil {
		h.HandleServiceError(w, r, ErrOAuthNotConfigured)
		return
	}

	url, err := h.Google.Begin(w)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil {
		h.HandleServiceError(w, r, ErrOAuthNotConfigured)
		return
	}

	profile, err := h.Google.Complete(r.Context(), w, r)
	if err != nil {
		h.Logger.Warn("google callback rejected", "error", err)
		h.HandleServiceError(w, r, err)
		return
	}

	session, err := h.Service.LoginWithGoogle(r.Context(), *profile)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.Sessions.SetCookie(w, session.Token, session.ExpiresAt)
	http.Redirect(w, r, h.FrontendURL+"/dashboard", http.StatusFound)
}
