package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"marketplace/internal/cache"
	apperrors "marketplace/internal/errors"
	"marketplace/internal/model"
	"marketplace/internal/repository"
	"marketplace/internal/validation"
)

const (
	productsCacheKey = "products:all"
	productsCacheTTL = time.Minute
)

// ProductParams carries the attributes of a product write. Nil means the
// field was not supplied, so updates can be partial.
type ProductParams struct {
	Title *string
	Price *validation.Price
}

// ProductService exposes product lifecycle operations. Ownership checks live
// in the handler layer; callers pass an owner id the service trusts.
type ProductService interface {
	CreateProduct(ctx context.Context, ownerID uint, params ProductParams) (*model.Product, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	ListProducts(ctx context.Context, ids []uint) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id uint, params ProductParams) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type productService struct {
	repo  repository.ProductRepository
	cache *cache.Client
}

// NewProductService builds a ProductService.
func NewProductService(repo repository.ProductRepository, cache *cache.Client) ProductService {
	return &productService{repo: repo, cache: cache}
}

func (s *productService) CreateProduct(ctx context.Context, ownerID uint, params ProductParams) (*model.Product, error) {
	candidate := validation.ProductCandidate{UserID: ownerID}
	if params.Title != nil {
		candidate.Title = *params.Title
	}
	if params.Price != nil {
		candidate.Price = *params.Price
	}
	if errs := validation.Product(candidate); !errs.Valid() {
		return nil, apperrors.NewValidationError(errs)
	}

	price, err := candidate.Price.Decimal()
	if err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}

	product := &model.Product{
		Title:  candidate.Title,
		Price:  price,
		UserID: ownerID,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	_ = s.cache.Delete(ctx, productsCacheKey)

	// reload to attach the owner for the response
	return s.GetProduct(ctx, product.ID)
}

func (s *productService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

// ListProducts returns every product when ids is nil, or only the matching
// ones when a filter was supplied. A supplied filter that matches nothing is
// an empty result, never a fallback to the full catalog. Only the unfiltered
// listing is cached.
func (s *productService) ListProducts(ctx context.Context, ids []uint) ([]model.Product, error) {
	if ids != nil {
		if len(ids) == 0 {
			return []model.Product{}, nil
		}
		return s.repo.List(ctx, ids)
	}

	if data, _ := s.cache.Get(ctx, productsCacheKey); data != nil {
		var cached []model.Product
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	products, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(products); err == nil {
		_ = s.cache.Set(ctx, productsCacheKey, payload, productsCacheTTL)
	}
	return products, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uint, params ProductParams) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	candidate := validation.ProductCandidate{
		Title:  product.Title,
		Price:  validation.PriceFrom(product.Price),
		UserID: product.UserID,
	}
	if params.Title != nil {
		candidate.Title = *params.Title
	}
	if params.Price != nil {
		candidate.Price = *params.Price
	}
	if errs := validation.Product(candidate); !errs.Valid() {
		return nil, apperrors.NewValidationError(errs)
	}

	price, err := candidate.Price.Decimal()
	if err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}

	product.Title = candidate.Title
	product.Price = price
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	_ = s.cache.Delete(ctx, productsCacheKey)
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	_ = s.cache.Delete(ctx, productsCacheKey)
	return nil
}
