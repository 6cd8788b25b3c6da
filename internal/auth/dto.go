package auth

// CredentialsDTO is the login body. Type selects the users or admins table.
type CredentialsDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Type     string `json:"type" validate:"omitempty,oneof=users admins" errcode:"invalid-type"`
}

type ForgotPasswordDTO struct {
	Email string `json:"email" validate:"required,email" errcode:"user-not-found"`
}

type ResetPasswordDTO struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type ValidateTokenResponse struct {
	Email string `json:"email"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
