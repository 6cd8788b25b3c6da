package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/frahmantamala/mastersight/internal/auth"
	"github.com/frahmantamala/mastersight/internal/auth/postgres"
	userDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/user"
	"github.com/frahmantamala/mastersight/internal/metrics"
	"github.com/frahmantamala/mastersight/internal/testutil"
	"github.com/frahmantamala/mastersight/internal/transport"
	"github.com/frahmantamala/mastersight/pkg/logger"
)

var _ = Describe("Handler", func() {
	var (
		db       *gorm.DB
		handler  *auth.Handler
		sessions *auth.SessionResolver
		google   *httptest.Server
		userInfo string
	)

	BeforeEach(func() {
		var err error
		db, err = testutil.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())

		userInfo = `{"email":"oauth@acme.com","name":"Olga","verified_email":true}`
		google = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/token":
				Expect(r.ParseForm()).To(Succeed())
				if r.Form.Get("code") != "good-code" {
					w.WriteHeader(http.StatusBadRequest)
					_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
					return
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"access_token":"at-123","token_type":"Bearer","expires_in":3600}`))
			case "/userinfo":
				Expect(r.Header.Get("Authorization")).To(Equal("Bearer at-123"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(userInfo))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))

		tokens := auth.NewJWTTokenGenerator("a-test-secret-of-decent-length", time.Hour)
		sessions = auth.NewSessionResolver(tokens, "", false)
		svc := auth.NewService(
			postgres.NewUserRepository(db),
			postgres.NewResetRepository(db),
			tokens,
			&recordingPublisher{},
			metrics.Nop{},
			auth.ServiceConfig{BCryptCost: bcrypt.MinCost},
			logger.Discard(),
		)
		provider := auth.NewGoogleProvider(auth.GoogleConfig{
			ClientID:     "client",
			ClientSecret: "secret",
			RedirectURL:  "http://api.test/auth/google/callback",
			StateHashKey: "0123456789abcdef0123456789abcdef",
			Endpoint:     oauth2.Endpoint{AuthURL: google.URL + "/auth", TokenURL: google.URL + "/token"},
			UserInfoURL:  google.URL + "/userinfo",
		})
		handler = auth.NewHandler(transport.NewBaseHandler(logger.Discard()), svc, sessions, provider, "http://app.test/")

		Expect(db.Create(&userDatamodel.User{Email: "ana@acme.com", Name: "Ana", PasswordHash: hashOf("Old-pass1!")}).Error).To(Succeed())
	})

	AfterEach(func() {
		google.Close()
		testutil.Close(db)
	})

	post := func(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
		return rec
	}

	Describe("Credentials", func() {
		It("sets the session cookie", func() {
			rec := post(handler.Credentials, `{"email":"ana@acme.com","password":"Old-pass1!","type":"users"}`)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"success":true}`))

			cookies := rec.Result().Cookies()
			Expect(cookies).To(HaveLen(1))
			Expect(cookies[0].Name).To(Equal(auth.DefaultCookieName))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(cookies[0])
			_, ok := sessions.Resolve(req)
			Expect(ok).To(BeTrue())
		})

		It("answers 401 invalid-credentials", func() {
			rec := post(handler.Credentials, `{"email":"ana@acme.com","password":"nope"}`)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"invalid-credentials"}`))
			Expect(rec.Result().Cookies()).To(BeEmpty())
		})

		It("answers 400 invalid-body for malformed json", func() {
			rec := post(handler.Credentials, `{"email":`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"invalid-body"}`))
		})
	})

	It("logs out by clearing the cookie", func() {
		rec := post(handler.Logout, "")
		Expect(rec.Body.String()).To(MatchJSON(`{"message":"logged-out"}`))
		Expect(rec.Result().Cookies()[0].MaxAge).To(BeNumerically("<", 0))
	})

	It("answers 404 for a forgotten password on an unknown email", func() {
		rec := post(handler.ForgotPassword, `{"email":"ghost@acme.com"}`)
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).To(MatchJSON(`{"error":"user-not-found"}`))
	})

	It("answers 404 token-not-found when validating an unknown token", func() {
		rec := httptest.NewRecorder()
		handler.ValidateToken(rec, httptest.NewRequest(http.MethodGet, "/?token=nope", nil))
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).To(MatchJSON(`{"error":"token-not-found"}`))
	})

	Describe("Google", func() {
		begin := func() (*http.Cookie, string) {
			rec := httptest.NewRecorder()
			handler.GoogleLogin(rec, httptest.NewRequest(http.MethodGet, "/auth/google", nil))
			Expect(rec.Code).To(Equal(http.StatusTemporaryRedirect))

			loc, err := url.Parse(rec.Header().Get("Location"))
			Expect(err).NotTo(HaveOccurred())
			Expect(loc.Path).To(Equal("/auth"))
			state := loc.Query().Get("state")
			Expect(state).NotTo(BeEmpty())

			cookies := rec.Result().Cookies()
			Expect(cookies).To(HaveLen(1))
			return cookies[0], state
		}

		It("creates the user, sets the session and redirects to the dashboard", func() {
			stateCookie, state := begin()

			req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=good-code&state="+state, nil)
			req.AddCookie(stateCookie)
			rec := httptest.NewRecorder()
			handler.GoogleCallback(rec, req)

			Expect(rec.Code).To(Equal(http.StatusFound))
			Expect(rec.Header().Get("Location")).To(Equal("http://app.test/dashboard"))

			var u userDatamodel.User
			Expect(db.Where("email = ?", "oauth@acme.com").First(&u).Error).To(Succeed())
			Expect(u.Name).To(Equal("Olga"))

			var session *http.Cookie
			for _, c := range rec.Result().Cookies() {
				if c.Name == auth.DefaultCookieName {
					session = c
				}
			}
			Expect(session).NotTo(BeNil())
		})

		It("rejects a forged state", func() {
			stateCookie, _ := begin()

			req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=good-code&state=forged", nil)
			req.AddCookie(stateCookie)
			rec := httptest.NewRecorder()
			handler.GoogleCallback(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"invalid-state"}`))
		})

		It("answers invalid-token when the code exchange fails", func() {
			stateCookie, state := begin()

			req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=bad&state="+state, nil)
			req.AddCookie(stateCookie)
			rec := httptest.NewRecorder()
			handler.GoogleCallback(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			var body map[string]string
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["error"]).To(Equal("invalid-token"))
		})

		It("refuses an unverified google email instead of linking the existing account", func() {
			userInfo = `{"email":"ana@acme.com","name":"Not Ana","verified_email":false}`
			stateCookie, state := begin()

			req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=good-code&state="+state, nil)
			req.AddCookie(stateCookie)
			rec := httptest.NewRecorder()
			handler.GoogleCallback(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"invalid-token"}`))
			for _, c := range rec.Result().Cookies() {
				Expect(c.Name).NotTo(Equal(auth.DefaultCookieName))
			}
		})

		It("answers oauth-not-configured without a provider", func() {
			handler.Google = nil
			rec := httptest.NewRecorder()
			handler.GoogleLogin(rec, httptest.NewRequest(http.MethodGet, "/auth/google", nil).WithContext(context.Background()))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
