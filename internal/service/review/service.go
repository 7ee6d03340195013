package review

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"
)

type Service struct {
	reviews  reviewRepo
	products productRepo
}

type reviewRepo interface {
	Create(ctx context.Context, review *domain.Review) error
	ListApproved(ctx context.Context, productID int64) ([]domain.Review, error)
	Summary(ctx context.Context, productID int64) (domain.ReviewSummary, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

func New(reviews reviewRepo, products productRepo) *Service {
	return &Service{reviews: reviews, products: products}
}

type CreateInput struct {
	Rating int    `json:"rating"`
	Title  string `json:"title,omitempty"`
	Body   string `json:"body"`
}

// Create stores a review for moderation. It is not visible until approved.
func (s *Service) Create(ctx context.Context, userID string, productID int64, in CreateInput) (*domain.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, fmt.Errorf("%w: review body required", domain.ErrInvalidInput)
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	review := &domain.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    in.Rating,
		Title:     strings.TrimSpace(in.Title),
		Body:      strings.TrimSpace(in.Body),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *Service) ListApproved(ctx context.Context, productID int64) ([]domain.Review, error) {
	return s.reviews.ListApproved(ctx, productID)
}

func (s *Service) Summary(ctx context.Context, productID int64) (domain.ReviewSummary, error) {
	return s.reviews.Summary(ctx, productID)
}
