package role

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/core/common/money"
	"github.com/frahmantamala/mastersight/internal/core/common/validation"
	roleDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/role"
	"github.com/frahmantamala/mastersight/internal/tenancy"
)

type RepositoryAPI interface {
	ListWithCounts(ctx context.Context, companyID int64) ([]Summary, error)
	DepartmentExists(ctx context.Context, companyID, departmentID int64) (bool, error)
	Create(ctx context.Context, r *roleDatamodel.Role) error
	Update(ctx context.Context, r *roleDatamodel.Role) (bool, error)
	Delete(ctx context.Context, companyID, id int64) (bool, error)
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

func (s *Service) List(ctx context.Context, id internal.Identity, companyID int64) ([]Summary, error) {
	if companyID <= 0 {
		return nil, internal.ErrInvalidCompanyID
	}
	if _, err := s.authorizer.RequireMember(ctx, id, companyID); err != nil {
		return nil, err
	}

	summaries, err := s.repo.ListWithCounts(ctx, companyID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list roles", err)
	}
	if summaries == nil {
		summaries = []Summary{}
	}
	return summaries, nil
}

func (s *Service) Create(ctx context.Context, id internal.Identity, dto CreateRoleDTO) (*Role, error) {
	salary, err := s.validate(ctx, dto.CompanyID, dto.DepartmentID, dto.Name, dto.Salary)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizer.Authorize(ctx, id, dto.CompanyID, tenancy.CreateRoles); err != nil {
		return nil, err
	}

	data := ToDataModel(&Role{
		CompanyID:    dto.CompanyID,
		DepartmentID: dto.DepartmentID,
		Name:         strings.TrimSpace(dto.Name),
		Salary:       salary,
	})
	if err := s.repo.Create(ctx, data); err != nil {
		return nil, internal.NewInternalError("failed to create role", err)
	}

	s.logger.Info("role created", "company_id", data.CompanyID, "role_id", data.ID)
	return FromDataModel(data), nil
}

func (s *Service) Update(ctx context.Context, id internal.Identity, dto UpdateRoleDTO) error {
	salary, err := s.validate(ctx, dto.CompanyID, dto.DepartmentID, dto.Name, dto.Salary)
	if err != nil {
		return err
	}
	if _, err := s.authorizer.Authorize(ctx, id, dto.CompanyID, tenancy.EditRoles); err != nil {
		return err
	}
	if dto.ID <= 0 {
		return internal.ErrRoleNotFound
	}

	ok, err := s.repo.Update(ctx, &roleDatamodel.Role{
		ID:           dto.ID,
		CompanyID:    dto.CompanyID,
		DepartmentID: dto.DepartmentID,
		Name:         strings.TrimSpace(dto.Name),
		Salary:       salary,
	})
	if err != nil {
		return internal.NewInternalError("failed to update role", err)
	}
	if !ok {
		return internal.ErrRoleNotFound
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id internal.Identity, dto DeleteRoleDTO) error {
	if dto.CompanyID <= 0 {
		return internal.ErrInvalidCompanyID
	}
	if _, err := s.authorizer.Authorize(ctx, id, dto.CompanyID, tenancy.DeleteRoles); err != nil {
		return err
	}
	if dto.ID <= 0 {
		return internal.ErrRoleNotFound
	}

	ok, err := s.repo.Delete(ctx, dto.CompanyID, dto.ID)
	if err != nil {
		return internal.NewInternalError("failed to delete role", err)
	}
	if !ok {
		return internal.ErrRoleNotFound
	}

	s.logger.Info("role deleted", "company_id", dto.CompanyID, "role_id", dto.ID)
	return nil
}

// validate checks the fields in the order clients expect their errors. The
// department lookup is scoped to the company so ids of other tenants are
// rejected the same way as unknown ids.
func (s *Service) validate(ctx context.Context, companyID, departmentID int64, name string, salary money.Input) (float64, error) {
	if companyID <= 0 {
		return 0, internal.ErrInvalidCompanyID
	}
	if departmentID <= 0 {
		return 0, internal.ErrInvalidDepartmentID
	}
	if !validation.MinName(name, minNameLength) {
		return 0, internal.ErrInvalidName
	}
	if salary.Empty() {
		return 0, internal.ErrInvalidSalary
	}
	v, err := salary.Parse()
	if err != nil {
		return 0, internal.ErrInvalidSalary
	}

	exists, err := s.repo.DepartmentExists(ctx, companyID, departmentID)
	if err != nil {
		return 0, internal.NewInternalError("failed to look up department", err)
	}
	if !exists {
		return 0, internal.ErrInvalidDepartmentID
	}
	return v, nil
}
