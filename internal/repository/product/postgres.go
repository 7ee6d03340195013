package product

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

const productColumns = `id, COALESCE(category_id, 0), name, slug, sku, short_description, description,
price, sale_price, manage_stock, stock_quantity, is_active, created_at`

const variantColumns = `id, product_id, name, value, sku, price_adjustment, stock_quantity, is_active`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const q = `SELECT id, name, slug FROM categories ORDER BY name`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *postgresRepo) ListActive(ctx context.Context, categorySlug string) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE is_active ORDER BY created_at DESC`
	args := []interface{}{}
	if categorySlug != "" {
		q = `SELECT ` + productColumns + ` FROM products
WHERE is_active AND category_id = (SELECT id FROM categories WHERE slug = $1)
ORDER BY created_at DESC`
		args = append(args, categorySlug)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list category=%q error=%v", categorySlug, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Printf("product repo: list category=%q count=%d", categorySlug, len(result))
	return result, nil
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE slug = $1 AND is_active`
	return r.getOne(ctx, q, slug)
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.getOne(ctx, q, id)
}

func (r *postgresRepo) getOne(ctx context.Context, q string, arg interface{}) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, q, arg)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) GetVariant(ctx context.Context, id int64) (*domain.ProductVariant, error) {
	const q = `SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1`
	row := r.pool.QueryRow(ctx, q, id)
	v, err := scanVariant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *postgresRepo) VariantsByProduct(ctx context.Context, productID int64) ([]domain.ProductVariant, error) {
	const q = `SELECT ` + variantColumns + ` FROM product_variants
WHERE product_id = $1 AND is_active
ORDER BY name, value`
	rows, err := r.pool.Query(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ProductVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func (r *postgresRepo) ProductsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	if len(ids) == 0 {
		return map[int64]domain.Product{}, nil
	}
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]domain.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	return result, rows.Err()
}

func (r *postgresRepo) VariantsByIDs(ctx context.Context, ids []int64) (map[int64]domain.ProductVariant, error) {
	if len(ids) == 0 {
		return map[int64]domain.ProductVariant{}, nil
	}
	const q = `SELECT ` + variantColumns + ` FROM product_variants WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]domain.ProductVariant, len(ids))
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		result[v.ID] = v
	}
	return result, rows.Err()
}

// ReduceStock decrements a managed product's stock, refusing to go below
// zero. Unmanaged products are never touched.
func (r *postgresRepo) ReduceStock(ctx context.Context, productID int64, quantity int) error {
	const q = `
UPDATE products
SET stock_quantity = stock_quantity - $2
WHERE id = $1 AND manage_stock AND stock_quantity >= $2
`
	cmd, err := r.pool.Exec(ctx, q, productID, quantity)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		r.logger.Printf("product repo: reduce stock product=%d qty=%d refused", productID, quantity)
		return domain.ErrInsufficientStock
	}
	return nil
}

func (r *postgresRepo) ReduceVariantStock(ctx context.Context, variantID int64, quantity int) error {
	const q = `
UPDATE product_variants
SET stock_quantity = stock_quantity - $2
WHERE id = $1 AND stock_quantity >= $2
`
	cmd, err := r.pool.Exec(ctx, q, variantID, quantity)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		r.logger.Printf("product repo: reduce stock variant=%d qty=%d refused", variantID, quantity)
		return domain.ErrInsufficientStock
	}
	return nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	var sale decimal.NullDecimal
	if err := row.Scan(
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
		return domain.Product{}, err
	}
	if sale.Valid {
		p.SalePrice = &sale.Decimal
	}
	return p, nil
}

func scanVariant(row pgx.Row) (domain.ProductVariant, error) {
	var v domain.ProductVariant
	if err := row.Scan(
		&v.ID,
		&v.ProductID,
		&v.Name,
		&v.Value,
		&v.SKU,
		&v.PriceAdjustment,
		&v.StockQuantity,
		&v.IsActive,
	); err != nil {
		return domain.ProductVariant{}, err
	}
	return v, nil
}
