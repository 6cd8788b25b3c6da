package team

import (
	"context"
	"crypto/rand"
	"log/slog"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/core/common/validation"
	companyDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/company"
	membershipDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/membership"
	userDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/user"
	"github.com/frahmantamala/mastersight/internal/core/events"
	"github.com/frahmantamala/mastersight/internal/tenancy"
)

var (
	ErrUserNotExists        = internal.NewValidationError("no account for this email", internal.ErrCodeUserNotExists)
	ErrUserAlreadyInCompany = internal.NewValidationError("user already belongs to the company", internal.ErrCodeUserAlreadyInCompany)
)

const (
	tempPasswordLength   = 8
	tempPasswordAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	defaultInviterName   = "Um usuário"
)

type RepositoryAPI interface {
	ListMembers(ctx context.Context, companyID int64) ([]Member, error)
	FindCompany(ctx context.Context, id int64) (*companyDatamodel.Company, error)
	FindUserByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	FindUserByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	MembershipExists(ctx context.Context, companyID, userID int64) (bool, error)
	DepartmentExists(ctx context.Context, companyID, departmentID int64) (bool, error)
	RoleExists(ctx context.Context, companyID, roleID int64) (bool, error)
	// CreateUserWithMembership inserts both rows in one transaction and sets
	// m.UserID to the new user's id.
	CreateUserWithMembership(ctx context.Context, u *userDatamodel.User, m *membershipDatamodel.Membership) error
	CreateMembership(ctx context.Context, m *membershipDatamodel.Membership) error
	UpdateMember(ctx context.Context, companyID, memberID int64, upd MemberUpdate) (bool, error)
	// RemoveMember deletes the membership and the member's tasks and feedbacks
	// in that company, all or nothing.
	RemoveMember(ctx context.Context, companyID, memberID int64) (bool, error)
}

type Service struct {
	repo       RepositoryAPI
	authorizer tenancy.AuthorizerAPI
	publisher  events.Publisher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, authorizer tenancy.AuthorizerAPI, publisher events.Publisher, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		authorizer: authorizer,
		publisher:  publisher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) List(ctx context.Context, id internal.Identity, companyID int64) ([]Member, error) {
	if companyID <= 0 {
		return nil, internal.ErrInvalidCompanyID
	}
	if _, err := s.authorizer.RequireMember(ctx, id, companyID); err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, companyID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list team", err)
	}
	if members == nil {
		members = []Member{}
	}
	return members, nil
}

// Add puts a person on the team. Unknown emails on the company's domain get
// an account with a temporary password; known users receive an invitation.
func (s *Service) Add(ctx context.Context, id internal.Identity, dto AddMemberDTO) (string, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))
	name := strings.TrimSpace(dto.Name)

	switch {
	case dto.CompanyID <= 0:
		return "", internal.ErrInvalidCompanyID
	case !validation.IsEmail(email):
		return "", internal.ErrInvalidEmail
	case !validation.MinName(name, minNameLength):
		return "", internal.ErrInvalidName
	case dto.DepartmentID <= 0:
		return "", internal.ErrInvalidDepartmentID
	case dto.RoleID <= 0:
		return "", internal.ErrInvalidRoleID
	}

	perms, err := grantFor(dto.Permissions, dto.Preset)
	if err != nil {
		return "", err
	}

	if _, err := s.authorizer.Authorize(ctx, id, dto.CompanyID, tenancy.AddUsers); err != nil {
		return "", err
	}

	company, err := s.repo.FindCompany(ctx, dto.CompanyID)
	if err != nil {
		return "", internal.NewInternalError("failed to load company", err)
	}
	if company == nil {
		return "", internal.ErrCompanyNotFound
	}
	if err := s.checkPlacement(ctx, dto.CompanyID, dto.DepartmentID, dto.RoleID); err != nil {
		return "", err
	}

	existing, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return "", internal.NewInternalError("failed to look up user", err)
	}

	membership := &membershipDatamodel.Membership{
		CompanyID:    dto.CompanyID,
		RoleID:       dto.RoleID,
		DepartmentID: dto.DepartmentID,
		Permissions:  perms,
		Competences:  []membershipDatamodel.Competence{},
	}

	if existing == nil {
		if company.Domain == "" || !strings.Contains(email, strings.ToLower(company.Domain)) {
			return "", ErrUserNotExists
		}
		return s.createAndAdd(ctx, company, email, name, membership)
	}

	already, err := s.repo.MembershipExists(ctx, dto.CompanyID, existing.ID)
	if err != nil {
		return "", internal.NewInternalError("failed to look up membership", err)
	}
	if already {
		return "", ErrUserAlreadyInCompany
	}

	membership.UserID = existing.ID
	membership.Status = membershipDatamodel.StatusInvited
	if err := s.repo.CreateMembership(ctx, membership); err != nil {
		return "", internal.NewInternalError("failed to create membership", err)
	}

	inviter := defaultInviterName
	if u, err := s.repo.FindUserByID(ctx, id.ID); err == nil && u != nil && u.Name != "" {
		inviter = u.Name
	}
	s.publish(ctx, events.NewMemberInvitedEvent(company.ID, company.Name, existing.Email, existing.Name, inviter))

	s.logger.Info("member invited", "company_id", company.ID, "user_id", existing.ID)
	return MessageInvited, nil
}

func (s *Service) createAndAdd(ctx context.Context, company *companyDatamodel.Company, email, name string, m *membershipDatamodel.Membership) (string, error) {
	password, err := temporaryPassword()
	if err != nil {
		return "", internal.NewInternalError("failed to generate password", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", internal.NewInternalError("failed to hash password", err)
	}
	hashed := string(hash)

	u := &userDatamodel.User{Email: email, Name: name, PasswordHash: &hashed}
	m.Status = membershipDatamodel.StatusActive
	if err := s.repo.CreateUserWithMembership(ctx, u, m); err != nil {
		return "", internal.NewInternalError("failed to create user", err)
	}

	s.publish(ctx, events.NewMemberCreatedEvent(company.ID, email, name, password))

	s.logger.Info("member account created", "company_id", company.ID, "user_id", u.ID)
	return MessageCreatedAndAdded, nil
}

func (s *Service) Edit(ctx context.Context, id internal.Identity, dto EditMemberDTO) error {
	if dto.CompanyID <= 0 {
		return internal.ErrInvalidCompanyID
	}
	memberID := dto.Member()
	if memberID <= 0 {
		return internal.ErrInvalidMemberID
	}
	salary, err := dto.Salary.Cents()
	if err != nil {
		return internal.ErrInvalidSalary
	}
	var perms []string
	if dto.Permissions != nil {
		if perms, err = tenancy.NormalizeGrant(dto.Permissions); err != nil {
			return err
		}
	}

	if _, err := s.authorizer.Authorize(ctx, id, dto.CompanyID, tenancy.EditUsers); err != nil {
		return err
	}
	if err := s.checkPlacement(ctx, dto.CompanyID, dto.DepartmentID, dto.RoleID); err != nil {
		return err
	}

	ok, err := s.repo.UpdateMember(ctx, dto.CompanyID, memberID, MemberUpdate{
		DepartmentID: dto.DepartmentID,
		RoleID:       dto.RoleID,
		Salary:       salary,
		Permissions:  perms,
	})
	if err != nil {
		return internal.NewInternalError("failed to update member", err)
	}
	if !ok {
		return internal.ErrMemberNotFound
	}
	return nil
}

func (s *Service) Remove(ctx context.Context, id internal.Identity, dto RemoveMemberDTO) error {
	if dto.CompanyID <= 0 {
		return internal.ErrInvalidCompanyID
	}
	memberID := dto.Member()
	if memberID <= 0 {
		return internal.ErrInvalidMemberID
	}

	if _, err := s.authorizer.Authorize(ctx, id, dto.CompanyID, tenancy.RemoveUsers); err != nil {
		return err
	}

	ok, err := s.repo.RemoveMember(ctx, dto.CompanyID, memberID)
	if err != nil {
		return internal.NewInternalError("failed to remove member", err)
	}
	if !ok {
		return internal.ErrMemberNotFound
	}

	s.logger.Info("member removed", "company_id", dto.CompanyID, "member_id", memberID)
	return nil
}

// checkPlacement verifies non-zero department and role ids belong to the company.
func (s *Service) checkPlacement(ctx context.Context, companyID, departmentID, roleID int64) error {
	if departmentID > 0 {
		ok, err := s.repo.DepartmentExists(ctx, companyID, departmentID)
		if err != nil {
			return internal.NewInternalError("failed to look up department", err)
		}
		if !ok {
			return internal.ErrInvalidDepartmentID
		}
	}
	if roleID > 0 {
		ok, err := s.repo.RoleExists(ctx, companyID, roleID)
		if err != nil {
			return internal.NewInternalError("failed to look up role", err)
		}
		if !ok {
			return internal.ErrInvalidRoleID
		}
	}
	return nil
}

// publish hands the event to the bus. The membership is already committed, so
// a failure here is logged rather than reported.
func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Error("failed to publish team event", "event_type", e.EventType(), "error", err)
	}
}

func grantFor(flags []string, preset string) ([]string, error) {
	if len(flags) == 0 && preset != "" {
		p, ok := tenancy.PresetFlags(preset)
		if !ok {
			return nil, internal.ErrInvalidPermissions
		}
		return p, nil
	}
	return tenancy.NormalizeGrant(flags)
}

func temporaryPassword() (string, error) {
	b := make([]byte, tempPasswordLength)
	max := big.NewInt(int64(len(tempPasswordAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(b), nil
}
