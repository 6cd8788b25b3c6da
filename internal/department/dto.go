package department

import "github.com/frahmantamala/mastersight/internal/core/common/money"

type CreateDepartmentDTO struct {
	CompanyID   int64       `json:"companyId"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Salary      money.Input `json:"salary"`
}

type UpdateDepartmentDTO struct {
	ID          int64       `json:"id"`
	CompanyID   int64       `json:"companyId"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Salary      money.Input `json:"salary"`
}

type DeleteDepartmentDTO struct {
	ID        int64 `json:"id"`
	CompanyID int64 `json:"companyId"`
}

type DepartmentsResponse struct {
	Departments []Summary `json:"departments"`
}

type DepartmentResponse struct {
	Department *Department `json:"department"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
