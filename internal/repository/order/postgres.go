package order

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

const orderColumns = `id, COALESCE(user_id, ''), email, phone, shipping_name, shipping_address,
shipping_city, shipping_state, shipping_postal_code, shipping_country, order_number, status,
payment_method, subtotal, tax_amount, shipping_cost, total_amount, notes, created_at`

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

// Create inserts the order and its items in one transaction.
func (r *postgresRepo) Create(ctx context.Context, in domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const insertOrder = `
INSERT INTO orders (user_id, email, phone, shipping_name, shipping_address, shipping_city,
                    shipping_state, shipping_postal_code, shipping_country, order_number,
                    status, payment_method, subtotal, tax_amount, shipping_cost, total_amount, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
RETURNING id, created_at
`
	out := in
	var userID interface{}
	if in.UserID != "" {
		userID = in.UserID
	}
	if err := tx.QueryRow(ctx, insertOrder,
		userID,
		in.Email,
		in.Phone,
		in.ShippingName,
		in.ShippingAddress,
		in.ShippingCity,
		in.ShippingState,
		in.ShippingPostalCode,
		in.ShippingCountry,
		in.OrderNumber,
		in.Status,
		in.PaymentMethod,
		in.Subtotal,
		in.TaxAmount,
		in.ShippingCost,
		in.TotalAmount,
		in.Notes,
	).Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, err
	}

	const insertItem = `
INSERT INTO order_items (order_id, product_id, variant_id, product_name, product_sku,
                         variant_name, variant_value, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id
`
	out.Items = make([]domain.OrderItem, len(in.Items))
	for i, item := range in.Items {
		item.OrderID = out.ID
		if err := tx.QueryRow(ctx, insertItem,
			out.ID,
			item.ProductID,
			item.VariantID,
			item.ProductName,
			item.ProductSKU,
			item.VariantName,
			item.VariantValue,
			item.Quantity,
			item.UnitPrice,
		).Scan(&item.ID); err != nil {
			return nil, err
		}
		out.Items[i] = item
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created order=%s items=%d total=%s", out.OrderNumber, len(out.Items), out.TotalAmount)
	return &out, nil
}

func (r *postgresRepo) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`
	row := r.pool.QueryRow(ctx, q, orderNumber)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	items, err := r.itemsByOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func (r *postgresRepo) itemsByOrder(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	const q = `
SELECT id, order_id, product_id, variant_id, product_name, product_sku,
       COALESCE(variant_name, ''), COALESCE(variant_value, ''), quantity, unit_price
FROM order_items
WHERE order_id = $1
ORDER BY id
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.VariantID,
			&item.ProductName,
			&item.ProductSKU,
			&item.VariantName,
			&item.VariantValue,
			&item.Quantity,
			&item.UnitPrice,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Email,
		&o.Phone,
		&o.ShippingName,
		&o.ShippingAddress,
		&o.ShippingCity,
		&o.ShippingState,
		&o.ShippingPostalCode,
		&o.ShippingCountry,
		&o.OrderNumber,
		&o.Status,
		&o.PaymentMethod,
		&o.Subtotal,
		&o.TaxAmount,
		&o.ShippingCost,
		&o.TotalAmount,
		&o.Notes,
		&o.CreatedAt,
	); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}
