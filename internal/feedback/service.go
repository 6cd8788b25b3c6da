package feedback

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/core/common/sanitize"
	feedbackDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/feedback"
	"github.com/frahmantamala/mastersight/internal/tenancy"
)

var (
	ErrInvalidScore      = internal.NewValidationError("score must be between 0 and 10", internal.ErrCodeInvalidScore)
	ErrInvalidContent    = internal.NewValidationError("content is required", internal.ErrCodeInvalidContent)
	ErrInvalidFeedbackID = internal.NewValidationError("feedback id must be a positive integer", internal.ErrCodeInvalidFeedbackID)
)

type RepositoryAPI interface {
	// List returns the company's feedbacks, newest first. userID 0 means every user.
	List(ctx context.Context, companyID, userID int64) ([]*feedbackDatamodel.Feedback, error)
	Create(ctx context.Context, f *feedbackDatamodel.Feedback) error
	FindByID(ctx context.Context, id int64) (*feedbackDatamodel.Feedback, error)
	Delete(ctx context.Context, id int64) (bool, error)
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

func (s *Service) List(ctx context.Context, id internal.Identity, companyID, userID int64) ([]Feedback, error) {
	if companyID <= 0 {
		return nil, internal.ErrInvalidCompanyID
	}
	if _, err := s.authorizer.RequireMember(ctx, id, companyID); err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx, companyID, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list feedbacks", err)
	}
	out := make([]Feedback, 0, len(rows))
	for _, row := range rows {
		out = append(out, *FromDataModel(row))
	}
	return out, nil
}

// Add records feedback written by the caller. The target must belong to the
// same company.
func (s *Service) Add(ctx context.Context, id internal.Identity, dto AddFeedbackDTO) (*Feedback, error) {
	if dto.CompanyID <= 0 {
		return nil, internal.ErrInvalidCompanyID
	}
	if dto.UserID <= 0 {
		return nil, internal.ErrInvalidUserID
	}
	if !dto.Score.Set || !dto.Score.Valid || dto.Score.Value < MinScore || dto.Score.Value > MaxScore {
		return nil, ErrInvalidScore
	}
	content := sanitize.Text(dto.Content)
	if content == "" {
		return nil, ErrInvalidContent
	}

	if _, err := s.authorizer.RequireMember(ctx, id, dto.CompanyID); err != nil {
		return nil, err
	}
	member, err := s.authorizer.IsMember(ctx, dto.UserID, dto.CompanyID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, internal.ErrInvalidUserID
	}

	f := &Feedback{
		CompanyID: dto.CompanyID,
		UserID:    dto.UserID,
		CreatorID: id.ID,
		Score:     dto.Score.Value,
		Content:   content,
	}
	row := f.ToDataModel()
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create feedback", err)
	}

	s.logger.Info("feedback added", "company_id", row.CompanyID, "user_id", row.UserID, "creator_id", row.CreatorID)
	return FromDataModel(row), nil
}

// Delete removes a feedback. Its creator may always delete it; anyone else
// needs editUsers in the feedback's company.
func (s *Service) Delete(ctx context.Context, id internal.Identity, dto DeleteFeedbackDTO) error {
	if dto.FeedbackID <= 0 {
		return ErrInvalidFeedbackID
	}

	row, err := s.repo.FindByID(ctx, dto.FeedbackID)
	if err != nil {
		return internal.NewInternalError("failed to load feedback", err)
	}
	if row == nil {
		return internal.ErrFeedbackNotFound
	}

	if id.Admin || row.CreatorID != id.ID {
		if _, err := s.authorizer.Authorize(ctx, id, row.CompanyID, tenancy.EditUsers); err != nil {
			return err
		}
	} else if _, err := s.authorizer.RequireMember(ctx, id, row.CompanyID); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, row.ID)
	if err != nil {
		return internal.NewInternalError("failed to delete feedback", err)
	}
	if !deleted {
		return internal.ErrFeedbackNotFound
	}
	return nil
}
