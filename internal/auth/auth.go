package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/mastersight/internal"
	resetDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/passwordreset"
	userDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/user"
)

const (
	AccountTypeUsers  = "users"
	AccountTypeAdmins = "admins"
)

// TokenGenerator signs and verifies session tokens.
type TokenGenerator interface {
	Generate(id internal.Identity) (token string, expiresAt time.Time, err error)
	Validate(tokenString string) (*Claims, error)
}

// Claims is the session token payload.
type Claims struct {
	ID    int64 `json:"id"`
	Admin bool  `json:"admin"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() internal.Identity {
	return internal.Identity{ID: c.ID, Admin: c.Admin}
}

type UserRepository interface {
	FindUserByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	FindAdminByEmail(ctx context.Context, email string) (*userDatamodel.Admin, error)
	CreateUser(ctx context.Context, u *userDatamodel.User) error
}

type ResetRepository interface {
	Create(ctx context.Context, r *resetDatamodel.PasswordReset) error
	FindByToken(ctx context.Context, token string) (*resetDatamodel.PasswordReset, error)
	// Consume marks the reset used and stores the new password hash for its
	// email in one transaction. It reports false when the reset was already used.
	Consume(ctx context.Context, id int64, email, passwordHash string, at time.Time) (bool, error)
}

// Session is what a successful login hands back to the transport layer.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  internal.Identity
}

// GoogleProfile is the subset of the userinfo response we rely on.
type GoogleProfile struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	VerifiedEmail bool   `json:"verified_email"`
}
