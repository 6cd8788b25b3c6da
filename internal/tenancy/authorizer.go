package tenancy

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/mastersight/internal"
	membershipDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/membership"
)

type RepositoryAPI interface {
	FindMembership(ctx context.Context, companyID, userID int64) (*membershipDatamodel.Membership, error)
}

// Authorizer gates tenant-scoped operations. Reads need a membership;
// mutations need a membership holding the specific capability flag.
type Authorizer struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewAuthorizer(repo RepositoryAPI, logger *slog.Logger) *Authorizer {
	return &Authorizer{repo: repo, logger: logger}
}

// IsMember reports whether a membership row exists for the pair.
func (a *Authorizer) IsMember(ctx context.Context, userID, companyID int64) (bool, error) {
	m, err := a.repo.FindMembership(ctx, companyID, userID)
	if err != nil {
		return false, internal.NewInternalError("failed to look up membership", err)
	}
	return m != nil, nil
}

func (a *Authorizer) RequireMember(ctx context.Context, id internal.Identity, companyID int64) (*membershipDatamodel.Membership, error) {
	if id.Admin {
		a.logger.Warn("admin identity denied tenant access", "admin_id", id.ID, "company_id", companyID)
		return nil, internal.ErrForbidden
	}

	m, err := a.repo.FindMembership(ctx, companyID, id.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up membership", err)
	}
	if m == nil {
		a.logger.Warn("access denied: not a member", "user_id", id.ID, "company_id", companyID)
		return nil, internal.ErrForbidden
	}
	return m, nil
}

func (a *Authorizer) Authorize(ctx context.Context, id internal.Identity, companyID int64, perm Permission) (*membershipDatamodel.Membership, error) {
	m, err := a.RequireMember(ctx, id, companyID)
	if err != nil {
		return nil, err
	}
	if !Has(m.Permissions, perm) {
		a.logger.Warn("access denied: missing permission",
			"user_id", id.ID,
			"company_id", companyID,
			"required_permission", perm,
			"user_permissions", m.Permissions)
		return nil, internal.ErrForbidden
	}
	return m, nil
}

// AuthorizerAPI is what resource services depend on.
type AuthorizerAPI interface {
	IsMember(ctx context.Context, userID, companyID int64) (bool, error)
	RequireMember(ctx context.Context, id internal.Identity, companyID int64) (*membershipDatamodel.Membership, error)
	Authorize(ctx context.Context, id internal.Identity, companyID int64, perm Permission) (*membershipDatamodel.Membership, error)
}
