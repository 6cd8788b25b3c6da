package user

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/auth"
	"github.com/frahmantamala/mastersight/internal/core/common/sanitize"
	"github.com/frahmantamala/mastersight/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/user"
)

var (
	ErrEmailAlreadyExists = internal.NewValidationError("email already registered", internal.ErrCodeEmailAlreadyExists)
	ErrCPFAlreadyExists   = internal.NewValidationError("cpf already registered", internal.ErrCodeCPFAlreadyExists)
	ErrInvalidCPF         = internal.NewValidationError("cpf must have eleven digits", internal.ErrCodeInvalidCPF)
	ErrInvalidBirthday    = internal.NewValidationError("birthday is not a date", internal.ErrCodeInvalidBirthday)
	ErrInvalidCompany     = internal.NewValidationError("company id is required", internal.ErrCodeInvalidCompany)
	ErrUserNotInCompany   = internal.NewNotFoundError("user is not in company", internal.ErrCodeUserNotInCompany)
	ErrInviteNotFound     = internal.NewNotFoundError("invite not found", internal.ErrCodeInviteNotFound)
)

type RepositoryAPI interface {
	FindUser(ctx context.Context, id int64) (*userDatamodel.User, error)
	FindAdmin(ctx context.Context, id int64) (*userDatamodel.Admin, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	// CPFTaken ignores the row of exceptID.
	CPFTaken(ctx context.Context, cpf string, exceptID int64) (bool, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, id int64, cols map[string]interface{}) (bool, error)

	ListCompanies(ctx context.Context, userID int64) ([]CompanyAccess, error)
	TouchLastAccess(ctx context.Context, userID, companyID int64, at time.Time) (bool, error)
	ListInvites(ctx context.Context, userID int64) ([]Invite, error)
	AcceptInvite(ctx context.Context, userID, companyID int64) (bool, error)
	DeclineInvite(ctx context.Context, userID, companyID int64) (bool, error)
}

// SessionIssuer signs the session of a freshly registered user.
type SessionIssuer interface {
	IssueSession(id internal.Identity) (*auth.Session, error)
}

type Service struct {
	repo       RepositoryAPI
	sessions   SessionIssuer
	bcryptCost int
	now        func() time.Time
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, sessions SessionIssuer, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		sessions:   sessions,
		bcryptCost: bcryptCost,
		now:        time.Now,
		logger:     logger,
	}
}

// Me returns the caller's profile from the admins or the users table.
func (s *Service) Me(ctx context.Context, id internal.Identity) (*User, error) {
	if id.Admin {
		a, err := s.repo.FindAdmin(ctx, id.ID)
		if err != nil {
			return nil, internal.NewInternalError("failed to load admin", err)
		}
		if a == nil {
			return nil, internal.ErrUserNotFound
		}
		return FromAdmin(a), nil
	}
	return s.findUser(ctx, id.ID)
}

func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*User, *auth.Session, error) {
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, nil, appErr
	}
	cpf, ok := NormalizeCPF(dto.CPF)
	if !ok {
		return nil, nil, ErrInvalidCPF
	}

	taken, err := s.repo.EmailTaken(ctx, dto.Email)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to check email", err)
	}
	if taken {
		return nil, nil, ErrEmailAlreadyExists
	}
	taken, err = s.repo.CPFTaken(ctx, cpf, 0)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to check cpf", err)
	}
	if taken {
		return nil, nil, ErrCPFAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to hash password", err)
	}
	hashed := string(hash)
	row := &userDatamodel.User{
		Email:        dto.Email,
		Name:         sanitize.Text(dto.Name),
		CPF:          &cpf,
		PasswordHash: &hashed,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, nil, internal.NewInternalError("failed to create user", err)
	}

	session, err := s.sessions.IssueSession(internal.Identity{ID: row.ID})
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("user registered", "user_id", row.ID)
	return FromDataModel(row), session, nil
}

func (s *Service) Update(ctx context.Context, id internal.Identity, dto UpdateUserDTO) (*User, error) {
	if id.Admin {
		return nil, internal.ErrForbidden
	}

	cols := make(map[string]interface{})
	if name := sanitize.Text(dto.Name); name != "" {
		if !validation.MinName(name, minNameLength) {
			return nil, internal.ErrInvalidName
		}
		cols["name"] = name
	}
	if strings.TrimSpace(dto.CPF) != "" {
		cpf, ok := NormalizeCPF(dto.CPF)
		if !ok {
			return nil, ErrInvalidCPF
		}
		taken, err := s.repo.CPFTaken(ctx, cpf, id.ID)
		if err != nil {
			return nil, internal.NewInternalError("failed to check cpf", err)
		}
		if taken {
			return nil, ErrCPFAlreadyExists
		}
		cols["cpf"] = cpf
	}
	if strings.TrimSpace(dto.Birthday) != "" {
		b, ok := ParseBirthday(dto.Birthday)
		if !ok || b.After(s.now()) {
			return nil, ErrInvalidBirthday
		}
		cols["birthday"] = b
	}
	if image := sanitize.Text(dto.Image); image != "" {
		cols["image"] = image
	}
	if description := sanitize.Text(dto.Description); description != "" {
		cols["description"] = description
	}

	if len(cols) > 0 {
		updated, err := s.repo.Update(ctx, id.ID, cols)
		if err != nil {
			return nil, internal.NewInternalError("failed to update user", err)
		}
		if !updated {
			return nil, internal.ErrUserNotFound
		}
	}
	return s.findUser(ctx, id.ID)
}

func (s *Service) UpdatePassword(ctx context.Context, id internal.Identity, dto UpdatePasswordDTO) error {
	if id.Admin {
		return internal.ErrForbidden
	}
	if appErr := validation.Struct(dto); appErr != nil {
		return appErr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}
	updated, err := s.repo.Update(ctx, id.ID, map[string]interface{}{"password_hash": string(hash)})
	if err != nil {
		return internal.NewInternalError("failed to update password", err)
	}
	if !updated {
		return internal.ErrUserNotFound
	}
	s.logger.Info("password changed", "user_id", id.ID)
	return nil
}

func (s *Service) Companies(ctx context.Context, id internal.Identity) ([]CompanyAccess, error) {
	if id.Admin {
		return []CompanyAccess{}, nil
	}
	companies, err := s.repo.ListCompanies(ctx, id.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list companies", err)
	}
	return companies, nil
}

func (s *Service) TouchLastAccess(ctx context.Context, id internal.Identity, dto CompanyRefDTO) error {
	if dto.CompanyID <= 0 {
		return ErrInvalidCompany
	}
	if id.Admin {
		return ErrUserNotInCompany
	}
	ok, err := s.repo.TouchLastAccess(ctx, id.ID, dto.CompanyID, s.now())
	if err != nil {
		return internal.NewInternalError("failed to record last access", err)
	}
	if !ok {
		return ErrUserNotInCompany
	}
	return nil
}

func (s *Service) Invites(ctx context.Context, id internal.Identity) ([]Invite, error) {
	if id.Admin {
		return []Invite{}, nil
	}
	invites, err := s.repo.ListInvites(ctx, id.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list invites", err)
	}
	return invites, nil
}

func (s *Service) AcceptInvite(ctx context.Context, id internal.Identity, dto CompanyRefDTO) error {
	return s.answerInvite(ctx, id, dto, true)
}

func (s *Service) DeclineInvite(ctx context.Context, id internal.Identity, dto CompanyRefDTO) error {
	return s.answerInvite(ctx, id, dto, false)
}

func (s *Service) answerInvite(ctx context.Context, id internal.Identity, dto CompanyRefDTO, accept bool) error {
	if dto.CompanyID <= 0 {
		return ErrInvalidCompany
	}
	if id.Admin {
		return ErrInviteNotFound
	}

	answer := s.repo.DeclineInvite
	if accept {
		answer = s.repo.AcceptInvite
	}
	ok, err := answer(ctx, id.ID, dto.CompanyID)
	if err != nil {
		return internal.NewInternalError("failed to answer invite", err)
	}
	if !ok {
		return ErrInviteNotFound
	}
	s.logger.Info("invite answered", "user_id", id.ID, "company_id", dto.CompanyID, "accepted", accept)
	return nil
}

func (s *Service) findUser(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.FindUser(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(u), nil
}
