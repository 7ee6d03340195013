package review

import (
	"context"

	"storefront/internal/domain"
)

// Repository persists product reviews. New reviews start unapproved and
// only approved reviews are exposed through listing and summary queries.
type Repository interface {
	Create(ctx context.Context, review *domain.Review) error
	ListApproved(ctx context.Context, productID int64) ([]domain.Review, error)
	Summary(ctx context.Context, productID int64) (domain.ReviewSummary, error)
}
