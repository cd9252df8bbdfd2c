package report

import (
	"context"

	"go-research/internal/comment"
	"go-research/internal/shared/ordering"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=report_repo.go -destination=mock/report_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, report *Report) error
	// FindByCompany returns the company's reports with comments eagerly
	// loaded in createdAt-asc order.
	FindByCompany(ctx context.Context, companyID uuid.UUID) ([]Report, error)
	// FindByID is company-scoped; a report looked up under the wrong
	// company behaves as absent.
	FindByID(ctx context.Context, companyID, reportID uuid.UUID) (*Report, error)
	Update(ctx context.Context, report *Report) error
	// Delete removes the report and its comments.
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByCompany removes every report and comment the company owns.
	DeleteByCompany(ctx context.Context, companyID uuid.UUID) error
	NextDisplayOrder(ctx context.Context, companyID uuid.UUID) (int, error)
	UpdateOrders(ctx context.Context, companyID uuid.UUID, updates []ordering.Update) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, report *Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *repository) FindByCompany(ctx context.Context, companyID uuid.UUID) ([]Report, error) {
	var reports []Report
	err := r.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("company_id = ?", companyID).
		Find(&reports).Error
	return reports, err
}

func (r *repository) FindByID(ctx context.Context, companyID, reportID uuid.UUID) (*Report, error) {
	var report Report
	err := r.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&report, "id = ? AND company_id = ?", reportID, companyID).Error
	return &report, err
}

func (r *repository) Update(ctx context.Context, report *Report) error {
	return r.db.WithContext(ctx).Save(report).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("report_id = ?", id).
		Delete(&comment.Comment{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&Report{}, "id = ?", id).Error
}

func (r *repository) DeleteByCompany(ctx context.Context, companyID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Exec("DELETE FROM comments WHERE report_id IN (SELECT id FROM reports WHERE company_id = ?)", companyID).
		Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&Report{}, "company_id = ?", companyID).Error
}

func (r *repository) NextDisplayOrder(ctx context.Context, companyID uuid.UUID) (int, error) {
	var next int
	err := r.db.WithContext(ctx).
		Model(&Report{}).
		Where("company_id = ?", companyID).
		Select("COALESCE(MAX(display_order) + 1, 0)").
		Scan(&next).Error
	return next, err
}

func (r *repository) UpdateOrders(ctx context.Context, companyID uuid.UUID, updates []ordering.Update) error {
	for _, u := range updates {
		res := r.db.WithContext(ctx).
			Model(&Report{}).
			Where("id = ? AND company_id = ?", u.ID, companyID).
			Update("display_order", u.Order)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}
