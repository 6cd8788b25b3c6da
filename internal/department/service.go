package department

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/core/common/money"
	"github.com/frahmantamala/mastersight/internal/core/common/validation"
	departmentDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/department"
	"github.com/frahmantamala/mastersight/internal/tenancy"
)

type RepositoryAPI interface {
	ListWithCounts(ctx context.Context, companyID int64) ([]Summary, error)
	Create(ctx context.Context, d *departmentDatamodel.Department) error
	// Update and Delete report whether a row of that company matched.
	Update(ctx context.Context, d *departmentDatamodel.Department) (bool, error)
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
		return nil, internal.NewInternalError("failed to list departments", err)
	}
	if summaries == nil {
		summaries = []Summary{}
	}
	return summaries, nil
}

func (s *Service) Create(ctx context.Context, id internal.Identity, dto CreateDepartmentDTO) (*Department, error) {
	salary, err := validateFields(dto.CompanyID, dto.Name, dto.Salary)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizer.Authorize(ctx, id, dto.CompanyID, tenancy.CreateDepartments); err != nil {
		return nil, err
	}

	d := &Department{
		CompanyID:   dto.CompanyID,
		Name:        strings.TrimSpace(dto.Name),
		Description: strings.TrimSpace(dto.Description),
		Salary:      salary,
	}
	data := ToDataModel(d)
	if err := s.repo.Create(ctx, data); err != nil {
		return nil, internal.NewInternalError("failed to create department", err)
	}

	s.logger.Info("department created", "company_id", data.CompanyID, "department_id", data.ID)
	return FromDataModel(data), nil
}

func (s *Service) Update(ctx context.Context, id internal.Identity, dto UpdateDepartmentDTO) error {
	salary, err := validateFields(dto.CompanyID, dto.Name, dto.Salary)
	if err != nil {
		return err
	}
	if _, err := s.authorizer.Authorize(ctx, id, dto.CompanyID, tenancy.EditDepartments); err != nil {
		return err
	}
	if dto.ID <= 0 {
		return internal.ErrDepartmentNotFound
	}

	ok, err := s.repo.Update(ctx, &departmentDatamodel.Department{
		ID:          dto.ID,
		CompanyID:   dto.CompanyID,
		Name:        strings.TrimSpace(dto.Name),
		Description: strings.TrimSpace(dto.Description),
		Salary:      salary,
	})
	if err != nil {
		return internal.NewInternalError("failed to update department", err)
	}
	if !ok {
		return internal.ErrDepartmentNotFound
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id internal.Identity, dto DeleteDepartmentDTO) error {
	if dto.CompanyID <= 0 {
		return internal.ErrInvalidCompanyID
	}
	if _, err := s.authorizer.Authorize(ctx, id, dto.CompanyID, tenancy.DeleteDepartments); err != nil {
		return err
	}
	if dto.ID <= 0 {
		return internal.ErrDepartmentNotFound
	}

	ok, err := s.repo.Delete(ctx, dto.CompanyID, dto.ID)
	if err != nil {
		return internal.NewInternalError("failed to delete department", err)
	}
	if !ok {
		return internal.ErrDepartmentNotFound
	}

	s.logger.Info("department deleted", "company_id", dto.CompanyID, "department_id", dto.ID)
	return nil
}

func validateFields(companyID int64, name string, salary money.Input) (float64, error) {
	if companyID <= 0 {
		return 0, internal.ErrInvalidCompanyID
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
	return v, nil
}
