package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/frahmantamala/mastersight/internal"
)

const (
	stateCookieName       = "mastersight-oauth-state"
	stateMaxAge           = 10 * time.Minute
	defaultGoogleUserInfo = "https://www.googleapis.com/oauth2/v2/userinfo"
)

var (
	ErrOAuthNotConfigured = internal.NewValidationError("google login is not configured", internal.ErrCodeOAuthNotConfigured)
	ErrInvalidState       = internal.NewUnauthorizedError("oauth state mismatch", internal.ErrCodeInvalidState)
)

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	StateHashKey string
	SecureCookie bool

	// Endpoint and UserInfoURL default to Google's; tests point them at httptest servers.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// GoogleProvider runs the authorization code flow. The state value is kept in
// a signed cookie so no server-side store is needed.
type GoogleProvider struct {
	oauth       *oauth2.Config
	cookies     *securecookie.SecureCookie
	userInfoURL string
	secure      bool
}

func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = defaultGoogleUserInfo
	}

	sc := securecookie.New([]byte(cfg.StateHashKey), nil)
	sc.MaxAge(int(stateMaxAge.Seconds()))

	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
		},
		cookies:     sc,
		userInfoURL: cfg.UserInfoURL,
		secure:      cfg.SecureCookie,
	}
}

// Begin stores a fresh state in a signed cookie and returns the consent URL.
func (p *GoogleProvider) Begin(w http.ResponseWriter) (string, error) {
	state, err := randomToken(16)
	if err != nil {
		return "", err
	}

	encoded, err := p.cookies.Encode(stateCookieName, state)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(stateMaxAge.Seconds()),
	})

	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Complete checks the state, exchanges the code and fetches the profile.
func (p *GoogleProvider) Complete(ctx context.Context, w http.ResponseWriter, r *http.Request) (*GoogleProfile, error) {
	expected, err := p.readState(r)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   p.secure,
		MaxAge:   -1,
	})
	if err != nil {
		return nil, ErrInvalidState.WithCause(err)
	}

	got := r.URL.Query().Get("state")
	if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
		return nil, ErrInvalidState
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		return nil, internal.ErrInvalidToken
	}

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, internal.ErrInvalidToken.WithCause(err)
	}
	if token.AccessToken == "" {
		return nil, internal.ErrInvalidToken
	}

	return p.fetchProfile(ctx, token)
}

func (p *GoogleProvider) readState(r *http.Request) (string, error) {
	c, err := r.Cookie(stateCookieName)
	if err != nil {
		return "", err
	}
	var state string
	if err := p.cookies.Decode(stateCookieName, c.Value, &state); err != nil {
		return "", err
	}
	return state, nil
}

func (p *GoogleProvider) fetchProfile(ctx context.Context, token *oauth2.Token) (*GoogleProfile, error) {
	client := p.oauth.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, internal.NewInternalError("failed to build userinfo request", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, internal.ErrInvalidToken.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, internal.ErrInvalidToken.WithCause(fmt.Errorf("userinfo returned status %d", resp.StatusCode))
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, internal.ErrInvalidToken.WithCause(err)
	}
	if profile.Email == "" {
		return nil, internal.ErrInvalidToken
	}
	// Accounts are linked by email, so an unverified address could claim
	// someone else's account.
	if !profile.VerifiedEmail {
		return nil, internal.ErrInvalidToken.WithCause(fmt.Errorf("google email %s is not verified", profile.Email))
	}
	return &profile, nil
}
