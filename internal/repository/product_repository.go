package repository

import (
	"context"

	"gorm.io/gorm"

	"marketplace/internal/model"
)

// ProductRepository defines product persistence operations. Reads preload the
// owning user so responses can embed it without a second round trip.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	List(ctx context.Context, ids []uint) ([]model.Product, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Product, error)
	Delete(ctx context.Context, id uint) error
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository builds a GORM-backed repository.
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Preload("User").First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns all products when ids is nil, or only the matching rows when
// a filter is passed; an empty non-nil filter matches nothing.
func (r *productRepository) List(ctx context.Context, ids []uint) ([]model.Product, error) {
	q := r.db.WithContext(ctx).Preload("User")
	if ids != nil {
		q = q.Where("id IN ?", ids)
	}
	var products []model.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) ListByUser(ctx context.Context, userID uint) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
