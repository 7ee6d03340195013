package wishlist

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	Add(ctx context.Context, userID string, productID int64) error
	Remove(ctx context.Context, userID string, productID int64) error
	Has(ctx context.Context, userID string, productID int64) (bool, error)
	Count(ctx context.Context, userID string) (int, error)
	List(ctx context.Context, userID string) ([]domain.WishlistItem, error)
	Clear(ctx context.Context, userID string) error
}
