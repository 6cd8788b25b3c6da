package competence

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/core/common/sanitize"
	"github.com/frahmantamala/mastersight/internal/tenancy"
)

var (
	ErrInvalidTitle           = internal.NewValidationError("title is required", internal.ErrCodeInvalidTitle)
	ErrInvalidCompetenceIndex = internal.NewValidationError("competence id or index is required", internal.ErrCodeInvalidCompetenceIndex)
	ErrOutOfBounds            = internal.NewValidationError("competence index out of bounds", internal.ErrCodeCompetenceOutOfBounds)
	ErrNotFound               = internal.NewNotFoundError("competence not found", internal.ErrCodeCompetenceNotFound)
	ErrConflict               = internal.NewConflictError("competences changed concurrently", internal.ErrCodeCompetenceConflict)
)

type RepositoryAPI interface {
	// Load returns nil when the membership does not exist in the company.
	Load(ctx context.Context, companyID, memberID int64) (*Set, error)
	// Save writes items only if the stored version still equals expected,
	// bumping it by one. It reports false when another write got there first.
	Save(ctx context.Context, companyID, memberID, expected int64, items []Competence) (bool, error)
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

func (s *Service) Add(ctx context.Context, id internal.Identity, dto AddCompetenceDTO) (*Competence, error) {
	if err := checkRef(dto.MemberRef); err != nil {
		return nil, err
	}
	title := sanitize.Text(dto.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	set, err := s.load(ctx, id, dto.MemberRef)
	if err != nil {
		return nil, err
	}

	c := NewCompetence(title, sanitize.Text(dto.Description), sanitize.List(dto.Documents))
	if err := s.save(ctx, dto.CompanyID, set, set.Append(c)); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) Update(ctx context.Context, id internal.Identity, dto UpdateCompetenceDTO) error {
	if err := checkRef(dto.MemberRef); err != nil {
		return err
	}
	if err := checkLocator(dto.CompetenceID, dto.CompetenceIndex); err != nil {
		return err
	}
	title := sanitize.Text(dto.Title)
	if title == "" {
		return ErrInvalidTitle
	}

	set, err := s.load(ctx, id, dto.MemberRef)
	if err != nil {
		return err
	}
	i, err := locate(set, dto.CompetenceID, dto.CompetenceIndex)
	if err != nil {
		return err
	}

	updated := Competence{
		Title:       title,
		Description: sanitize.Text(dto.Description),
		Documents:   sanitize.List(dto.Documents),
	}
	return s.save(ctx, dto.CompanyID, set, set.Replace(i, updated))
}

func (s *Service) Delete(ctx context.Context, id internal.Identity, dto DeleteCompetenceDTO) error {
	if err := checkRef(dto.MemberRef); err != nil {
		return err
	}
	if err := checkLocator(dto.CompetenceID, dto.CompetenceIndex); err != nil {
		return err
	}

	set, err := s.load(ctx, id, dto.MemberRef)
	if err != nil {
		return err
	}
	i, err := locate(set, dto.CompetenceID, dto.CompetenceIndex)
	if err != nil {
		return err
	}
	return s.save(ctx, dto.CompanyID, set, set.Remove(i))
}

// load authorizes the caller and reads the member's competences. A version
// sent by the client must match the stored one.
func (s *Service) load(ctx context.Context, id internal.Identity, ref MemberRef) (*Set, error) {
	if _, err := s.authorizer.Authorize(ctx, id, ref.CompanyID, tenancy.EditUsers); err != nil {
		return nil, err
	}

	set, err := s.repo.Load(ctx, ref.CompanyID, ref.Member())
	if err != nil {
		return nil, internal.NewInternalError("failed to load competences", err)
	}
	if set == nil {
		return nil, internal.ErrMemberNotFound
	}
	if ref.Version != nil && *ref.Version != set.Version {
		return nil, ErrConflict
	}
	set.Items = withIDs(set.Items)
	return set, nil
}

func (s *Service) save(ctx context.Context, companyID int64, set *Set, items []Competence) error {
	ok, err := s.repo.Save(ctx, companyID, set.MemberID, set.Version, items)
	if err != nil {
		return internal.NewInternalError("failed to save competences", err)
	}
	if !ok {
		s.logger.Warn("competence write lost a race", "company_id", companyID, "member_id", set.MemberID, "version", set.Version)
		return ErrConflict
	}
	return nil
}

func checkRef(ref MemberRef) error {
	if ref.CompanyID <= 0 {
		return internal.ErrInvalidCompanyID
	}
	if ref.Member() <= 0 {
		return internal.ErrInvalidMemberID
	}
	return nil
}

func checkLocator(id string, index *int) error {
	if strings.TrimSpace(id) == "" && index == nil {
		return ErrInvalidCompetenceIndex
	}
	return nil
}

func locate(set *Set, id string, index *int) (int, error) {
	i, found, inBounds := set.Locate(strings.TrimSpace(id), index)
	if !found {
		return 0, ErrNotFound
	}
	if !inBounds {
		return 0, ErrOutOfBounds
	}
	return i, nil
}
