package auth

import (
	"net/http"
	"time"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/pkg/logger"
)

const DefaultCookieName = "mastersight-access"

// SessionResolver reads the session cookie. It never touches the database.
type SessionResolver struct {
	tokens     TokenGenerator
	cookieName string
	secure     bool
}

func NewSessionResolver(tokens TokenGenerator, cookieName string, secure bool) *SessionResolver {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &SessionResolver{tokens: tokens, cookieName: cookieName, secure: secure}
}

// Resolve returns the identity carried by the request's session cookie.
// Missing, malformed, forged and expired tokens all yield ok=false.
func (s *SessionResolver) Resolve(r *http.Request) (id internal.Identity, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			id, ok = internal.Identity{}, false
		}
	}()

	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return internal.Identity{}, false
	}

	claims, err := s.tokens.Validate(cookie.Value)
	if err != nil {
		return internal.Identity{}, false
	}
	return claims.Identity(), true
}

// RequireSession answers 401 before the wrapped handler runs when there is no
// valid session.
func (s *SessionResolver) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.Resolve(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
			return
		}

		ctx := internal.ContextWithIdentity(r.Context(), id)
		ctx = logger.With(ctx, "identity_id", id.ID, "identity_admin", id.Admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *SessionResolver) SetCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
		Expires:  expiresAt,
	})
}

func (s *SessionResolver) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
