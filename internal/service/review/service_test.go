package review

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
)

type stubReviewRepo struct {
	created *domain.Review
}

func (s *stubReviewRepo) Create(_ context.Context, review *domain.Review) error {
	review.ID = 1
	s.created = review
	return nil
}

func (s *stubReviewRepo) ListApproved(context.Context, int64) ([]domain.Review, error) {
	return nil, nil
}

func (s *stubReviewRepo) Summary(context.Context, int64) (domain.ReviewSummary, error) {
	return domain.ReviewSummary{}, nil
}

type stubProducts struct {
	err error
}

func (s *stubProducts) GetByID(context.Context, int64) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Product{ID: 7, IsActive: true}, nil
}

func TestCreateStartsUnapproved(t *testing.T) {
	repo := &stubReviewRepo{}
	svc := New(repo, &stubProducts{})

	created, err := svc.Create(context.Background(), "u1", 7, CreateInput{Rating: 4, Body: "  solid build  "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.IsApproved {
		t.Fatal("new review must start unapproved")
	}
	if created.Body != "solid build" {
		t.Fatalf("body = %q, want trimmed", created.Body)
	}
}

func TestCreateRejectsBadRating(t *testing.T) {
	svc := New(&stubReviewRepo{}, &stubProducts{})
	for _, rating := range []int{0, 6, -1} {
		if _, err := svc.Create(context.Background(), "u1", 7, CreateInput{Rating: rating, Body: "x"}); err == nil {
			t.Fatalf("rating %d accepted", rating)
		}
	}
}

func TestCreateRejectsMissingProduct(t *testing.T) {
	svc := New(&stubReviewRepo{}, &stubProducts{err: domain.ErrNotFound})
	if _, err := svc.Create(context.Background(), "u1", 7, CreateInput{Rating: 3, Body: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
