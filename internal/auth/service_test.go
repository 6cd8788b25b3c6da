package auth_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/auth"
	"github.com/frahmantamala/mastersight/internal/auth/postgres"
	resetDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/passwordreset"
	userDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/user"
	"github.com/frahmantamala/mastersight/internal/core/events"
	"github.com/frahmantamala/mastersight/internal/metrics"
	"github.com/frahmantamala/mastersight/internal/testutil"
	"github.com/frahmantamala/mastersight/pkg/logger"
)

func hashOf(password string) *string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	Expect(err).NotTo(HaveOccurred())
	s := string(h)
	return &s
}

var _ = Describe("Service", func() {
	var (
		db        *gorm.DB
		svc       *auth.Service
		publisher *recordingPublisher
		tokens    *auth.JWTTokenGenerator
		ctx       context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = testutil.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())

		publisher = &recordingPublisher{}
		tokens = auth.NewJWTTokenGenerator("a-test-secret-of-decent-length", time.Hour)
		svc = auth.NewService(
			postgres.NewUserRepository(db),
			postgres.NewResetRepository(db),
			tokens,
			publisher,
			metrics.Nop{},
			auth.ServiceConfig{BCryptCost: bcrypt.MinCost, ResetTTL: time.Hour},
			logger.Discard(),
		)
		ctx = context.Background()

		Expect(db.Create(&userDatamodel.User{ID: 1, Email: "ana@acme.com", Name: "Ana", PasswordHash: hashOf("Old-pass1!")}).Error).To(Succeed())
		Expect(db.Create(&userDatamodel.User{ID: 2, Email: "google@acme.com", Name: "Gabi"}).Error).To(Succeed())
		Expect(db.Create(&userDatamodel.Admin{ID: 1, Email: "root@acme.com", Name: "Root", PasswordHash: *hashOf("Admin-pass1!")}).Error).To(Succeed())
	})

	AfterEach(func() {
		testutil.Close(db)
	})

	Describe("Authenticate", func() {
		It("issues a user session", func() {
			session, err := svc.Authenticate(ctx, auth.CredentialsDTO{Email: "Ana@acme.com ", Password: "Old-pass1!"})
			Expect(err).NotTo(HaveOccurred())
			Expect(session.Identity).To(Equal(internal.Identity{ID: 1}))

			claims, err := tokens.Validate(session.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Admin).To(BeFalse())
		})

		It("issues an admin session from the admins table", func() {
			session, err := svc.Authenticate(ctx, auth.CredentialsDTO{Email: "root@acme.com", Password: "Admin-pass1!", Type: "admins"})
			Expect(err).NotTo(HaveOccurred())
			Expect(session.Identity).To(Equal(internal.Identity{ID: 1, Admin: true}))
		})

		It("answers user-not-exists for unknown emails", func() {
			_, err := svc.Authenticate(ctx, auth.CredentialsDTO{Email: "nobody@acme.com", Password: "x"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUserNotExists))
			Expect(appErr.StatusCode).To(Equal(401))
		})

		It("answers user-not-exists for accounts without a password", func() {
			_, err := svc.Authenticate(ctx, auth.CredentialsDTO{Email: "google@acme.com", Password: "x"})
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Code).To(Equal(internal.ErrCodeUserNotExists))
		})

		It("rejects a wrong password", func() {
			_, err := svc.Authenticate(ctx, auth.CredentialsDTO{Email: "ana@acme.com", Password: "wrong"})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("rejects an unknown account type", func() {
			_, err := svc.Authenticate(ctx, auth.CredentialsDTO{Email: "ana@acme.com", Password: "Old-pass1!", Type: "owners"})
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidType))
		})
	})

	Describe("password reset", func() {
		It("answers 404 for an unknown email", func() {
			err := svc.ForgotPassword(ctx, auth.ForgotPasswordDTO{Email: "nobody@acme.com"})
			Expect(err).To(MatchError(internal.ErrUserNotFound))
			Expect(publisher.Last()).To(BeNil())
		})

		It("stores a token and publishes the reset event", func() {
			Expect(svc.ForgotPassword(ctx, auth.ForgotPasswordDTO{Email: "ana@acme.com"})).To(Succeed())

			ev, ok := publisher.Last().(*events.PasswordResetRequestedEvent)
			Expect(ok).To(BeTrue())
			Expect(ev.Email).To(Equal("ana@acme.com"))
			Expect(ev.Token).To(HaveLen(64))
			Expect(ev.ExpiresAt).To(BeTemporally("~", time.Now().Add(time.Hour), 5*time.Second))

			email, err := svc.ValidateResetToken(ctx, ev.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(email).To(Equal("ana@acme.com"))
		})

		It("answers token-not-found for unknown tokens", func() {
			_, err := svc.ValidateResetToken(ctx, "deadbeef")
			Expect(err).To(MatchError(internal.ErrTokenNotFound))
		})

		It("answers token-expired for an expired token", func() {
			Expect(db.Create(&resetDatamodel.PasswordReset{
				Token:     "expired",
				Email:     "ana@acme.com",
				ExpiresAt: time.Now().Add(-time.Minute),
			}).Error).To(Succeed())

			_, err := svc.ValidateResetToken(ctx, "expired")
			Expect(err).To(MatchError(internal.ErrTokenExpired))

			err = svc.ResetPassword(ctx, auth.ResetPasswordDTO{Token: "expired", Password: "New-pass1!"})
			Expect(err).To(MatchError(internal.ErrTokenExpired))
		})

		It("updates the password so the old one stops working", func() {
			Expect(svc.ForgotPassword(ctx, auth.ForgotPasswordDTO{Email: "ana@acme.com"})).To(Succeed())
			token := publisher.Last().(*events.PasswordResetRequestedEvent).Token

			Expect(svc.ResetPassword(ctx, auth.ResetPasswordDTO{Token: token, Password: "New-pass1!"})).To(Succeed())

			_, err := svc.Authenticate(ctx, auth.CredentialsDTO{Email: "ana@acme.com", Password: "Old-pass1!"})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))

			_, err = svc.Authenticate(ctx, auth.CredentialsDTO{Email: "ana@acme.com", Password: "New-pass1!"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("does not accept a token twice", func() {
			Expect(svc.ForgotPassword(ctx, auth.ForgotPasswordDTO{Email: "ana@acme.com"})).To(Succeed())
			token := publisher.Last().(*events.PasswordResetRequestedEvent).Token

			Expect(svc.ResetPassword(ctx, auth.ResetPasswordDTO{Token: token, Password: "New-pass1!"})).To(Succeed())
			err := svc.ResetPassword(ctx, auth.ResetPasswordDTO{Token: token, Password: "Other-pass1!"})
			Expect(err).To(MatchError(internal.ErrTokenExpired))
		})

		It("rejects weak passwords and keeps the token usable", func() {
			Expect(svc.ForgotPassword(ctx, auth.ForgotPasswordDTO{Email: "ana@acme.com"})).To(Succeed())
			token := publisher.Last().(*events.PasswordResetRequestedEvent).Token

			err := svc.ResetPassword(ctx, auth.ResetPasswordDTO{Token: token, Password: "short"})
			Expect(err).To(MatchError(internal.ErrWeakPassword))

			_, err = svc.ValidateResetToken(ctx, token)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("LoginWithGoogle", func() {
		It("reuses an existing account", func() {
			session, err := svc.LoginWithGoogle(ctx, auth.GoogleProfile{Email: "GOOGLE@acme.com", Name: "Gabi"})
			Expect(err).NotTo(HaveOccurred())
			Expect(session.Identity.ID).To(Equal(int64(2)))
		})

		It("creates a passwordless account without cpf", func() {
			session, err := svc.LoginWithGoogle(ctx, auth.GoogleProfile{Email: "new@acme.com", Name: "Nova", Picture: "https://img"})
			Expect(err).NotTo(HaveOccurred())

			var u userDatamodel.User
			Expect(db.First(&u, session.Identity.ID).Error).To(Succeed())
			Expect(u.Email).To(Equal("new@acme.com"))
			Expect(u.PasswordHash).To(BeNil())
			Expect(u.CPF).To(BeNil())
			Expect(u.Image).To(Equal("https://img"))
		})
	})
})
