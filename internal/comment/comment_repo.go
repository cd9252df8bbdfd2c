package comment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=comment_repo.go -destination=mock/comment_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, comment *Comment) error
	// FindByReport returns the report's comments oldest first.
	FindByReport(ctx context.Context, reportID uuid.UUID) ([]Comment, error)
	FindByID(ctx context.Context, reportID, commentID uuid.UUID) (*Comment, error)
	Update(ctx context.Context, comment *Comment) error
	Delete(ctx context.Context, reportID, commentID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, comment *Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *repository) FindByReport(ctx context.Context, reportID uuid.UUID) ([]Comment, error) {
	var comments []Comment
	err := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *repository) FindByID(ctx context.Context, reportID, commentID uuid.UUID) (*Comment, error) {
	var comment Comment
	err := r.db.WithContext(ctx).
		First(&comment, "id = ? AND report_id = ?", commentID, reportID).Error
	return &comment, err
}

func (r *repository) Update(ctx context.Context, comment *Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *repository) Delete(ctx context.Context, reportID, commentID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND report_id = ?", commentID, reportID).
		Delete(&Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
