package company

import (
	"context"

	"go-research/internal/shared/ordering"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=company_repo.go -destination=mock/company_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, company *Company) error
	FindAll(ctx context.Context) ([]Company, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	Update(ctx context.Context, company *Company) error
	Delete(ctx context.Context, id uuid.UUID) error
	// NextDisplayOrder returns one past the largest assigned order.
	NextDisplayOrder(ctx context.Context) (int, error)
	// UpdateOrders applies a batch of order assignments; an unknown ID
	// fails the whole batch.
	UpdateOrders(ctx context.Context, updates []ordering.Update) error
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

func (r *repository) Create(ctx context.Context, company *Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Company, error) {
	var companies []Company
	err := r.db.WithContext(ctx).Find(&companies).Error
	return companies, err
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	var company Company
	err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error
	return &company, err
}

func (r *repository) Update(ctx context.Context, company *Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Company{}, "id = ?", id).Error
}

func (r *repository) NextDisplayOrder(ctx context.Context) (int, error) {
	var next int
	err := r.db.WithContext(ctx).
		Model(&Company{}).
		Select("COALESCE(MAX(display_order) + 1, 0)").
		Scan(&next).Error
	return next, err
}

func (r *repository) UpdateOrders(ctx context.Context, updates []ordering.Update) error {
	for _, u := range updates {
		res := r.db.WithContext(ctx).
			Model(&Company{}).
			Where("id = ?", u.ID).
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
