package catalog

import (
	"context"

	"storefront/internal/domain"
)

type Service struct {
	products productRepo
	reviews  reviewRepo
}

type productRepo interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListActive(ctx context.Context, categorySlug string) ([]domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetVariant(ctx context.Context, id int64) (*domain.ProductVariant, error)
	VariantsByProduct(ctx context.Context, productID int64) ([]domain.ProductVariant, error)
}

type reviewRepo interface {
	Summary(ctx context.Context, productID int64) (domain.ReviewSummary, error)
}

func New(products productRepo, reviews reviewRepo) *Service {
	return &Service{products: products, reviews: reviews}
}

// ProductDetail is a product with its variants and review aggregate.
type ProductDetail struct {
	Product  domain.Product          `json:"product"`
	Variants []domain.ProductVariant `json:"variants,omitempty"`
	Reviews  domain.ReviewSummary    `json:"reviews"`
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.products.ListCategories(ctx)
}

// Products lists active products, optionally restricted to one category.
func (s *Service) Products(ctx context.Context, categorySlug string) ([]domain.Product, error) {
	return s.products.ListActive(ctx, categorySlug)
}

func (s *Service) ProductBySlug(ctx context.Context, slug string) (*ProductDetail, error) {
	p, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	variants, err := s.products.VariantsByProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	summary, err := s.reviews.Summary(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &ProductDetail{Product: *p, Variants: variants, Reviews: summary}, nil
}

func (s *Service) ProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// Variant resolves a variant and checks it belongs to the given product.
func (s *Service) Variant(ctx context.Context, productID, variantID int64) (*domain.ProductVariant, error) {
	v, err := s.products.GetVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if v.ProductID != productID {
		return nil, domain.ErrNotFound
	}
	return v, nil
}
