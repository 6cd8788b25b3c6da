package company

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/core/common/sanitize"
	"github.com/frahmantamala/mastersight/internal/core/common/validation"
	companyDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/company"
	departmentDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/department"
	roleDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/role"
	"github.com/frahmantamala/mastersight/internal/department"
	"github.com/frahmantamala/mastersight/internal/role"
	"github.com/frahmantamala/mastersight/internal/tenancy"
)

var ErrInvalidID = internal.NewValidationError("id must be a positive integer", internal.ErrCodeInvalidID)

type RepositoryAPI interface {
	FindByID(ctx context.Context, id int64) (*companyDatamodel.Company, error)
	ListDepartments(ctx context.Context, companyID int64) ([]*departmentDatamodel.Department, error)
	ListRoles(ctx context.Context, companyID int64) ([]*roleDatamodel.Role, error)
	Update(ctx context.Context, id int64, cols map[string]interface{}) (bool, error)
}

type Service struct {
	repo       RepositoryAPI
	authorizer tenancy.AuthorizerAPI
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, authorizer tenancy.AuthorizerAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		authorizer: authorizer,
		logger:     logger,
	}
}

func (s *Service) Get(ctx context.Context, id internal.Identity, companyID int64) (*Details, error) {
	if companyID <= 0 {
		return nil, ErrInvalidID
	}
	if _, err := s.authorizer.RequireMember(ctx, id, companyID); err != nil {
		return nil, err
	}

	c, err := s.find(ctx, companyID)
	if err != nil {
		return nil, err
	}

	depts, err := s.repo.ListDepartments(ctx, companyID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list departments", err)
	}
	roles, err := s.repo.ListRoles(ctx, companyID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list roles", err)
	}

	details := &Details{
		Company:     *c,
		Departments: make([]department.Department, 0, len(depts)),
		Roles:       make([]role.Role, 0, len(roles)),
	}
	for _, d := range depts {
		details.Departments = append(details.Departments, *department.FromDataModel(d))
	}
	for _, r := range roles {
		details.Roles = append(details.Roles, *role.FromDataModel(r))
	}
	return details, nil
}

// Update applies the non-empty fields of dto. Identity fields and appearance
// fields are gated by separate flags; a patch touching both needs both.
func (s *Service) Update(ctx context.Context, id internal.Identity, dto UpdateCompanyDTO) (*Company, error) {
	if dto.ID <= 0 {
		return nil, ErrInvalidID
	}
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}

	patch := Patch{
		Name:    sanitize.Text(dto.Name),
		CNPJ:    sanitize.Text(dto.CNPJ),
		Address: sanitize.Text(dto.Address),
		Domain:  sanitize.Text(dto.Domain),
		Color:   dto.Color,
		Image:   sanitize.Text(dto.Image),
	}
	if err := s.authorize(ctx, id, dto.ID, patch); err != nil {
		return nil, err
	}

	if cols := patch.Apply(); len(cols) > 0 {
		updated, err := s.repo.Update(ctx, dto.ID, cols)
		if err != nil {
			return nil, internal.NewInternalError("failed to update company", err)
		}
		if !updated {
			return nil, internal.ErrCompanyNotFound
		}
		s.logger.Info("company updated", "company_id", dto.ID, "user_id", id.ID)
	}
	return s.find(ctx, dto.ID)
}

func (s *Service) authorize(ctx context.Context, id internal.Identity, companyID int64, p Patch) error {
	if !p.TouchesInfos() && !p.TouchesAppearance() {
		_, err := s.authorizer.RequireMember(ctx, id, companyID)
		return err
	}
	if p.TouchesInfos() {
		if _, err := s.authorizer.Authorize(ctx, id, companyID, tenancy.ChangeCompanyInfos); err != nil {
			return err
		}
	}
	if p.TouchesAppearance() {
		if _, err := s.authorizer.Authorize(ctx, id, companyID, tenancy.ChangeCompanyAppearance); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) find(ctx context.Context, companyID int64) (*Company, error) {
	c, err := s.repo.FindByID(ctx, companyID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load company", err)
	}
	if c == nil {
		return nil, internal.ErrCompanyNotFound
	}
	return FromDataModel(c), nil
}
