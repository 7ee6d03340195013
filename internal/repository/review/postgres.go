package review

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, review *domain.Review) error {
	const q = `
INSERT INTO reviews (product_id, user_id, rating, title, body, is_approved)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at
`
	return r.pool.QueryRow(ctx, q,
		review.ProductID,
		review.UserID,
		review.Rating,
		review.Title,
		review.Body,
		review.IsApproved,
	).Scan(&review.ID, &review.CreatedAt)
}

func (r *postgresRepo) ListApproved(ctx context.Context, productID int64) ([]domain.Review, error) {
	const q = `
SELECT id, product_id, user_id, rating, title, body, is_approved, created_at
FROM reviews
WHERE product_id = $1 AND is_approved
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Review
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(
			&rev.ID,
			&rev.ProductID,
			&rev.UserID,
			&rev.Rating,
			&rev.Title,
			&rev.Body,
			&rev.IsApproved,
			&rev.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rev)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Summary(ctx context.Context, productID int64) (domain.ReviewSummary, error) {
	const q = `
SELECT COALESCE(AVG(rating), 0), COUNT(*)
FROM reviews
WHERE product_id = $1 AND is_approved
`
	var s domain.ReviewSummary
	if err := r.pool.QueryRow(ctx, q, productID).Scan(&s.AverageRating, &s.ReviewCount); err != nil {
		return domain.ReviewSummary{}, err
	}
	return s, nil
}
