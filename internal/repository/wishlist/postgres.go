package wishlist

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Add(ctx context.Context, userID string, productID int64) error {
	const q = `
INSERT INTO wishlist_items (user_id, product_id)
VALUES ($1, $2)
ON CONFLICT (user_id, product_id) DO NOTHING
`
	_, err := r.pool.Exec(ctx, q, userID, productID)
	return err
}

func (r *postgresRepo) Remove(ctx context.Context, userID string, productID int64) error {
	const q = `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`
	cmd, err := r.pool.Exec(ctx, q, userID, productID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Has(ctx context.Context, userID string, productID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM wishlist_items WHERE user_id = $1 AND product_id = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, userID, productID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresRepo) Count(ctx context.Context, userID string) (int, error) {
	const q = `SELECT COUNT(*) FROM wishlist_items WHERE user_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresRepo) List(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	const q = `
SELECT w.id, w.user_id, w.product_id, w.added_at,
       p.id, COALESCE(p.category_id, 0), p.name, p.slug, p.sku, p.short_description, p.description,
       p.price, p.sale_price, p.manage_stock, p.stock_quantity, p.is_active, p.created_at
FROM wishlist_items w
JOIN products p ON p.id = w.product_id
WHERE w.user_id = $1 AND p.is_active
ORDER BY w.added_at DESC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.WishlistItem
	for rows.Next() {
		var item domain.WishlistItem
		var p domain.Product
		var sale decimal.NullDecimal
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ProductID,
			&item.AddedAt,
			&p.ID,
			&p.CategoryID,
			&p.Name,
			&p.Slug,
			&p.SKU,
			&p.ShortDescription,
			&p.Description,
			&p.Price,
			&sale,
			&p.ManageStock,
			&p.StockQuantity,
			&p.IsActive,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		if sale.Valid {
			p.SalePrice = &sale.Decimal
		}
		item.Product = &p
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Clear(ctx context.Context, userID string) error {
	const q = `DELETE FROM wishlist_items WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, q, userID)
	return err
}
