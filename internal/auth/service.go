package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/core/common/validation"
	resetDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/passwordreset"
	userDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/user"
	"github.com/frahmantamala/mastersight/internal/core/events"
	"github.com/frahmantamala/mastersight/internal/metrics"
)

// Login failures answer 401 here, unlike the team flow where the same code is a 400.
var errUserNotExists = internal.NewUnauthorizedError("no account for this email", internal.ErrCodeUserNotExists)

const (
	outcomeSuccess         = "success"
	outcomeUnknownUser     = "unknown_user"
	outcomeInvalidPassword = "invalid_password"
	outcomeError           = "error"
)

type ServiceConfig struct {
	BCryptCost int
	ResetTTL   time.Duration
}

// Service is the main auth service with dependencies
type Service struct {
	users      UserRepository
	resets     ResetRepository
	tokens     TokenGenerator
	publisher  events.Publisher
	metrics    metrics.Recorder
	logger     *slog.Logger
	bcryptCost int
	resetTTL   time.Duration
	now        func() time.Time
}

func NewService(
	users UserRepository,
	resets ResetRepository,
	tokens TokenGenerator,
	publisher events.Publisher,
	recorder metrics.Recorder,
	cfg ServiceConfig,
	logger *slog.Logger,
) *Service {
	if cfg.BCryptCost == 0 {
		cfg.BCryptCost = bcrypt.DefaultCost
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Service{
		users:      users,
		resets:     resets,
		tokens:     tokens,
		publisher:  publisher,
		metrics:    recorder,
		logger:     logger,
		bcryptCost: cfg.BCryptCost,
		resetTTL:   cfg.ResetTTL,
		now:        time.Now,
	}
}

// Authenticate checks credentials against the users or admins table and
// issues a session.
func (s *Service) Authenticate(ctx context.Context, dto CredentialsDTO) (*Session, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}

	email := normalizeEmail(dto.Email)
	admin := dto.Type == AccountTypeAdmins

	var (
		id   int64
		hash string
	)
	if admin {
		a, err := s.users.FindAdminByEmail(ctx, email)
		if err != nil {
			s.metrics.RecordAuthAttempt("credentials", outcomeError)
			return nil, internal.NewInternalError("failed to load admin", err)
		}
		if a != nil {
			id, hash = a.ID, a.PasswordHash
		}
	} else {
		u, err := s.users.FindUserByEmail(ctx, email)
		if err != nil {
			s.metrics.RecordAuthAttempt("credentials", outcomeError)
			return nil, internal.NewInternalError("failed to load user", err)
		}
		if u != nil && u.PasswordHash != nil {
			id, hash = u.ID, *u.PasswordHash
		}
	}

	if id == 0 || hash == "" {
		s.metrics.RecordAuthAttempt("credentials", outcomeUnknownUser)
		return nil, errUserNotExists
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(dto.Password)); err != nil {
		s.metrics.RecordAuthAttempt("credentials", outcomeInvalidPassword)
		s.logger.Info("login rejected", "account_id", id, "admin", admin)
		return nil, internal.ErrInvalidCredentials
	}

	session, err := s.IssueSession(internal.Identity{ID: id, Admin: admin})
	if err != nil {
		s.metrics.RecordAuthAttempt("credentials", outcomeError)
		return nil, err
	}
	s.metrics.RecordAuthAttempt("credentials", outcomeSuccess)
	return session, nil
}

// IssueSession signs a token for an identity that has already been verified.
func (s *Service) IssueSession(id internal.Identity) (*Session, error) {
	token, expiresAt, err := s.tokens.Generate(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to sign session token", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, Identity: id}, nil
}

// ForgotPassword stores a single-use reset token and publishes the event the
// mailer turns into a reset link.
func (s *Service) ForgotPassword(ctx context.Context, dto ForgotPasswordDTO) error {
	dto.Email = normalizeEmail(dto.Email)
	if appErr := validation.Struct(dto); appErr != nil {
		return internal.ErrUserNotFound
	}

	u, err := s.users.FindUserByEmail(ctx, dto.Email)
	if err != nil {
		return internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return internal.ErrUserNotFound
	}

	token, err := randomToken(32)
	if err != nil {
		return internal.NewInternalError("failed to generate reset token", err)
	}

	reset := &resetDatamodel.PasswordReset{
		Token:     token,
		Email:     u.Email,
		ExpiresAt: s.now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return internal.NewInternalError("failed to store reset token", err)
	}

	if err := s.publisher.Publish(ctx, events.NewPasswordResetRequestedEvent(u.Email, token, reset.ExpiresAt)); err != nil {
		return internal.NewInternalError("failed to queue reset mail", err)
	}

	s.logger.Info("password reset requested", "user_id", u.ID)
	return nil
}

// ValidateResetToken returns the email a usable token was issued for.
func (s *Service) ValidateResetToken(ctx context.Context, token string) (string, error) {
	reset, err := s.usableReset(ctx, token)
	if err != nil {
		return "", err
	}
	return reset.Email, nil
}

func (s *Service) ResetPassword(ctx context.Context, dto ResetPasswordDTO) error {
	reset, err := s.usableReset(ctx, dto.Token)
	if err != nil {
		return err
	}
	if !validation.IsStrongPassword(dto.Password) {
		return internal.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	ok, err := s.resets.Consume(ctx, reset.ID, reset.Email, string(hash), s.now())
	if err != nil {
		return internal.NewInternalError("failed to update password", err)
	}
	if !ok {
		return internal.ErrTokenExpired
	}

	s.logger.Info("password reset completed", "reset_id", reset.ID)
	return nil
}

func (s *Service) usableReset(ctx context.Context, token string) (*resetDatamodel.PasswordReset, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, internal.ErrTokenNotFound
	}

	reset, err := s.resets.FindByToken(ctx, token)
	if err != nil {
		return nil, internal.NewInternalError("failed to load reset token", err)
	}
	if reset == nil {
		return nil, internal.ErrTokenNotFound
	}
	if reset.UsedAt != nil || !s.now().Before(reset.ExpiresAt) {
		return nil, internal.ErrTokenExpired
	}
	return reset, nil
}

// LoginWithGoogle finds or creates the user behind a Google profile. Accounts
// created this way have no password and no CPF.
func (s *Service) LoginWithGoogle(ctx context.Context, profile GoogleProfile) (*Session, error) {
	email := normalizeEmail(profile.Email)
	if email == "" {
		s.metrics.RecordAuthAttempt("google", outcomeError)
		return nil, internal.ErrInvalidToken
	}

	u, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		s.metrics.RecordAuthAttempt("google", outcomeError)
		return nil, internal.NewInternalError("failed to load user", err)
	}

	if u == nil {
		name := strings.TrimSpace(profile.Name)
		if name == "" {
			name = email
		}
		u = &userDatamodel.User{
			Email: email,
			Name:  name,
			Image: profile.Picture,
		}
		if err := s.users.CreateUser(ctx, u); err != nil {
			s.metrics.RecordAuthAttempt("google", outcomeError)
			return nil, internal.NewInternalError("failed to create user", err)
		}
		s.logger.Info("user created from google login", "user_id", u.ID)
	}

	session, err := s.IssueSession(internal.Identity{ID: u.ID})
	if err != nil {
		s.metrics.RecordAuthAttempt("google", outcomeError)
		return nil, err
	}
	s.metrics.RecordAuthAttempt("google", outcomeSuccess)
	return session, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
