package product

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListActive(ctx context.Context, categorySlug string) ([]domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetVariant(ctx context.Context, id int64) (*domain.ProductVariant, error)
	VariantsByProduct(ctx context.Context, productID int64) ([]domain.ProductVariant, error)
	ProductsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
	VariantsByIDs(ctx context.Context, ids []int64) (map[int64]domain.ProductVariant, error)
	ReduceStock(ctx context.Context, productID int64, quantity int) error
	ReduceVariantStock(ctx context.Context, variantID int64, quantity int) error
}
