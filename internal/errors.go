package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeRateLimited  ErrorType = "RATE_LIMITED"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

// ErrorCode is the machine-readable code returned to clients as {"error": code}.
// The frontend maps these codes to localized messages.
type ErrorCode string

const (
	ErrCodeUnauthorized        ErrorCode = "unauthorized"
	ErrCodeForbidden           ErrorCode = "forbidden"
	ErrCodeInternal            ErrorCode = "internal-server-error"
	ErrCodeInvalidBody         ErrorCode = "invalid-body"
	ErrCodeTooManyRequests     ErrorCode = "too-many-requests"
	ErrCodeInvalidID           ErrorCode = "invalid-id"
	ErrCodeInvalidCompanyID    ErrorCode = "invalid-company-id"
	ErrCodeInvalidCompany      ErrorCode = "invalid-company"
	ErrCodeInvalidName         ErrorCode = "invalid-name"
	ErrCodeInvalidSalary       ErrorCode = "invalid-salary"
	ErrCodeInvalidDepartmentID ErrorCode = "invalid-department-id"
	ErrCodeInvalidRoleID       ErrorCode = "invalid-role-id"
	ErrCodeInvalidEmail        ErrorCode = "invalid-email"
	ErrCodeInvalidUserID       ErrorCode = "invalid-user-id"
	ErrCodeInvalidMemberID     ErrorCode = "invalid-member-id"
	ErrCodeInvalidPermissions  ErrorCode = "invalid-permissions"
	ErrCodeInvalidTitle        ErrorCode = "invalid-title"
	ErrCodeInvalidScore        ErrorCode = "invalid-score"
	ErrCodeInvalidContent      ErrorCode = "invalid-content"
	ErrCodeInvalidFeedbackID   ErrorCode = "invalid-feedback-id"
	ErrCodeInvalidCPF          ErrorCode = "invalid-cpf"
	ErrCodeInvalidBirthday     ErrorCode = "invalid-birthday"
	ErrCodeInvalidType         ErrorCode = "invalid-type"

	ErrCodeInvalidCompetenceIndex ErrorCode = "invalid-competence-index"
	ErrCodeCompetenceOutOfBounds  ErrorCode = "competence-index-out-of-bounds"
	ErrCodeCompetenceNotFound     ErrorCode = "competence-not-found"
	ErrCodeCompetenceConflict     ErrorCode = "competence-conflict"

	ErrCodeUserNotFound       ErrorCode = "user-not-found"
	ErrCodeCompanyNotFound    ErrorCode = "company-not-found"
	ErrCodeDepartmentNotFound ErrorCode = "department-not-found"
	ErrCodeRoleNotFound       ErrorCode = "role-not-found"
	ErrCodeMemberNotFound     ErrorCode = "member-not-found"
	ErrCodeFeedbackNotFound   ErrorCode = "feedback-not-found"
	ErrCodeInviteNotFound     ErrorCode = "invite-not-found"

	ErrCodeUserNotExists        ErrorCode = "user-not-exists"
	ErrCodeUserAlreadyInCompany ErrorCode = "user-already-in-company"
	ErrCodeUserNotInCompany     ErrorCode = "user-not-in-company"
	ErrCodeInvalidCredentials   ErrorCode = "invalid-credentials"
	ErrCodeInvalidToken         ErrorCode = "invalid-token"
	ErrCodeInvalidState         ErrorCode = "invalid-state"
	ErrCodeTokenNotFound        ErrorCode = "token-not-found"
	ErrCodeTokenExpired         ErrorCode = "token-expired"
	ErrCodeWeakPassword         ErrorCode = "weak-password"
	ErrCodeEmailAlreadyExists   ErrorCode = "email-already-registered"
	ErrCodeCPFAlreadyExists     ErrorCode = "cpf-already-registered"
	ErrCodeOAuthNotConfigured   ErrorCode = "oauth-not-configured"
	ErrCodeNoFile               ErrorCode = "no-file"
	ErrCodeInvalidFormat        ErrorCode = "invalid-format"
	ErrCodeFileTooLarge         ErrorCode = "file-too-large"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on code so that sentinel errors compare equal to copies built with WithCause.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Type == t.Type
}

// WithCause returns a copy carrying cause; sentinels are shared and must not be mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func newAppError(t ErrorType, status int, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       t,
		Code:       code,
		Message:    message,
		StatusCode: status,
	}
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, code)
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, code)
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, message, code)
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeForbidden, http.StatusForbidden, message, code)
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message, code)
}

func NewRateLimitedError(message string) *AppError {
	return newAppError(ErrorTypeRateLimited, http.StatusTooManyRequests, message, ErrCodeTooManyRequests)
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrUnauthorized = NewUnauthorizedError("authentication required", ErrCodeUnauthorized)
	ErrForbidden    = NewForbiddenError("not allowed in this company", ErrCodeForbidden)
	ErrInvalidBody  = NewValidationError("request body could not be decoded", ErrCodeInvalidBody)

	ErrInvalidCompanyID    = NewValidationError("company id must be a positive integer", ErrCodeInvalidCompanyID)
	ErrInvalidName         = NewValidationError("name is too short", ErrCodeInvalidName)
	ErrInvalidSalary       = NewValidationError("salary is not a valid amount", ErrCodeInvalidSalary)
	ErrInvalidDepartmentID = NewValidationError("department does not belong to company", ErrCodeInvalidDepartmentID)
	ErrInvalidRoleID       = NewValidationError("role does not belong to company", ErrCodeInvalidRoleID)
	ErrInvalidEmail        = NewValidationError("email is not valid", ErrCodeInvalidEmail)
	ErrInvalidUserID       = NewValidationError("user id must be a positive integer", ErrCodeInvalidUserID)
	ErrInvalidMemberID     = NewValidationError("member id must be a positive integer", ErrCodeInvalidMemberID)
	ErrInvalidPermissions  = NewValidationError("unknown permission flag", ErrCodeInvalidPermissions)
	ErrWeakPassword        = NewValidationError("password does not meet strength requirements", ErrCodeWeakPassword)

	ErrUserNotFound       = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrCompanyNotFound    = NewNotFoundError("company not found", ErrCodeCompanyNotFound)
	ErrDepartmentNotFound = NewNotFoundError("department not found", ErrCodeDepartmentNotFound)
	ErrRoleNotFound       = NewNotFoundError("role not found", ErrCodeRoleNotFound)
	ErrMemberNotFound     = NewNotFoundError("member not found", ErrCodeMemberNotFound)
	ErrFeedbackNotFound   = NewNotFoundError("feedback not found", ErrCodeFeedbackNotFound)

	ErrInvalidCredentials = NewUnauthorizedError("invalid email or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenNotFound      = NewNotFoundError("reset token not found", ErrCodeTokenNotFound)
	ErrTokenExpired       = NewValidationError("reset token has expired", ErrCodeTokenExpired)
)

// IsAppError unwraps err looking for an *AppError.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error ErrorCode `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e.Code}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(Response{Error: e.Code})
}
