package role

import "github.com/frahmantamala/mastersight/internal/core/common/money"

type CreateRoleDTO struct {
	CompanyID    int64       `json:"companyId"`
	DepartmentID int64       `json:"departmentId"`
	Name         string      `json:"name"`
	Salary       money.Input `json:"salary"`
}

type UpdateRoleDTO struct {
	ID           int64       `json:"id"`
	CompanyID    int64       `json:"companyId"`
	DepartmentID int64       `json:"departmentId"`
	Name         string      `json:"name"`
	Salary       money.Input `json:"salary"`
}

type DeleteRoleDTO struct {
	ID        int64 `json:"id"`
	CompanyID int64 `json:"companyId"`
}

type RolesResponse struct {
	Roles []Summary `json:"roles"`
}

type RoleResponse struct {
	Role *Role `json:"role"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
