package wishlist

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
)

// ErrLimitReached is returned when a wishlist is at its configured
// maximum size.
var ErrLimitReached = errors.New("wishlist limit reached")

type Service struct {
	repo     wishlistRepo
	products productRepo
	maxItems int
}

type wishlistRepo interface {
	Add(ctx context.Context, userID string, productID int64) error
	Remove(ctx context.Context, userID string, productID int64) error
	Has(ctx context.Context, userID string, productID int64) (bool, error)
	Count(ctx context.Context, userID string) (int, error)
	List(ctx context.Context, userID string) ([]domain.WishlistItem, error)
	Clear(ctx context.Context, userID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

func New(repo wishlistRepo, products productRepo, maxItems int) *Service {
	return &Service{repo: repo, products: products, maxItems: maxItems}
}

// Add puts an active product on the user's wishlist. Adding a product
// already present is a no-op; the size ceiling applies to new entries only.
func (s *Service) Add(ctx context.Context, userID string, productID int64) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return domain.ErrNotFound
	}

	present, err := s.repo.Has(ctx, userID, productID)
	if err != nil {
		return err
	}
	if present {
		return nil
	}

	if s.maxItems > 0 {
		count, err := s.repo.Count(ctx, userID)
		if err != nil {
			return err
		}
		if count >= s.maxItems {
			return fmt.Errorf("%w (max %d items)", ErrLimitReached, s.maxItems)
		}
	}
	return s.repo.Add(ctx, userID, productID)
}

func (s *Service) Remove(ctx context.Context, userID string, productID int64) error {
	return s.repo.Remove(ctx, userID, productID)
}

func (s *Service) Has(ctx context.Context, userID string, productID int64) (bool, error) {
	return s.repo.Has(ctx, userID, productID)
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.repo.Clear(ctx, userID)
}
