package comment

import (
	"context"
	"errors"

	commenterrors "go-research/internal/comment/errors"
	reporterrors "go-research/internal/report/errors"
	"go-research/internal/shared/cache"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReportGuard verifies that the report exists under the company before
// any comment is touched. The report service implements it.
type ReportGuard interface {
	EnsureOwned(ctx context.Context, companyID, reportID uuid.UUID) error
}

//go:generate mockgen -source=comment_service.go -destination=mock/comment_service_mock.go -package=mock
type Service interface {
	// Each mutation returns the report's full comment list, oldest
	// first, so the caller never renders a stale thread.
	Create(ctx context.Context, companyID, reportID string, req CreateCommentRequest) ([]CommentResponse, error)
	Update(ctx context.Context, companyID, reportID, commentID string, req UpdateCommentRequest) ([]CommentResponse, error)
	Delete(ctx context.Context, companyID, reportID, commentID string) ([]CommentResponse, error)
}

type service struct {
	repo    Repository
	reports ReportGuard
	store   cache.Store
	logger  *zap.Logger
}

func NewService(
	repo Repository,
	reports ReportGuard,
	store cache.Store,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("comment.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("comment.service")
	}
	return &service{
		repo:    repo,
		reports: reports,
		store:   store,
		logger:  l,
	}
}

func (s *service) Create(ctx context.Context, companyID, reportID string, req CreateCommentRequest) ([]CommentResponse, error) {
	_, rid, err := s.guard(ctx, companyID, reportID)
	if err != nil {
		return nil, err
	}

	cm := &Comment{
		ID:       uuid.New(),
		ReportID: rid,
		Content:  req.Content,
	}
	if err := s.repo.Create(ctx, cm); err != nil {
		s.logger.Error("create comment failed", zap.String("report_id", reportID), zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, companyID)

	return s.list(ctx, rid)
}

func (s *service) Update(ctx context.Context, companyID, reportID, commentID string, req UpdateCommentRequest) ([]CommentResponse, error) {
	_, rid, err := s.guard(ctx, companyID, reportID)
	if err != nil {
		return nil, err
	}

	mid, err := uuid.Parse(commentID)
	if err != nil {
		return nil, commenterrors.ErrInvalidCommentID
	}

	cm, err := s.repo.FindByID(ctx, rid, mid)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	cm.Content = req.Content
	if err := s.repo.Update(ctx, cm); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.invalidate(ctx, companyID)

	return s.list(ctx, rid)
}

func (s *service) Delete(ctx context.Context, companyID, reportID, commentID string) ([]CommentResponse, error) {
	_, rid, err := s.guard(ctx, companyID, reportID)
	if err != nil {
		return nil, err
	}

	mid, err := uuid.Parse(commentID)
	if err != nil {
		return nil, commenterrors.ErrInvalidCommentID
	}

	if err := s.repo.Delete(ctx, rid, mid); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.invalidate(ctx, companyID)

	return s.list(ctx, rid)
}

func (s *service) guard(ctx context.Context, companyID, reportID string) (uuid.UUID, uuid.UUID, error) {
	cid, err := uuid.Parse(companyID)
	if err != nil {
		return uuid.Nil, uuid.Nil, reporterrors.ErrInvalidCompanyID
	}
	rid, err := uuid.Parse(reportID)
	if err != nil {
		return uuid.Nil, uuid.Nil, reporterrors.ErrInvalidReportID
	}
	if err := s.reports.EnsureOwned(ctx, cid, rid); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return cid, rid, nil
}

func (s *service) list(ctx context.Context, reportID uuid.UUID) ([]CommentResponse, error) {
	comments, err := s.repo.FindByReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	return ToListResponse(comments), nil
}

func (s *service) invalidate(ctx context.Context, companyID string) {
	if s.store == nil {
		return
	}
	if err := s.store.Invalidate(ctx, cache.ReportTag(companyID)); err != nil {
		s.logger.Error("cache invalidation failed", zap.String("company_id", companyID), zap.Error(err))
	}
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return commenterrors.ErrCommentNotFound
	}
	return err
}
