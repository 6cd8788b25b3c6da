package user

type CreateUserDTO struct {
	Email    string `json:"email" validate:"required,email" errcode:"invalid-email"`
	Password string `json:"password" validate:"strongpassword" errcode:"weak-password"`
	Name     string `json:"name" validate:"trimmedmin=3" errcode:"invalid-name"`
	CPF      string `json:"cpf" validate:"required" errcode:"invalid-cpf"`
}

// UpdateUserDTO is a partial update; empty fields keep their stored value.
type UpdateUserDTO struct {
	Name        string `json:"name"`
	CPF         string `json:"cpf"`
	Birthday    string `json:"birthday"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

type UpdatePasswordDTO struct {
	Password string `json:"password" validate:"strongpassword" errcode:"weak-password"`
}

type CompanyRefDTO struct {
	CompanyID int64 `json:"companyId"`
}

type UserResponse struct {
	User *User `json:"user"`
}

type CompaniesResponse struct {
	Companies []CompanyAccess `json:"companies"`
}

type InvitesResponse struct {
	Invites []Invite `json:"invites"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type UploadResponse struct {
	Hash string `json:"hash"`
}
