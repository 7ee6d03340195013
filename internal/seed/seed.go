package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	Category         string
	Name             string
	Slug             string
	SKU              string
	ShortDescription string
	Price            string
	SalePrice        string
	ManageStock      bool
	Stock            int
	Variants         []variantSeed
}

type variantSeed struct {
	Name            string
	Value           string
	SKU             string
	PriceAdjustment string
	Stock           int
}

// Apply inserts demo catalog data for manual testing. It is idempotent
// via ON CONFLICT on the natural keys.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	categories := map[string]string{
		"Electronics": "electronics",
		"Clothing":    "clothing",
		"Home":        "home",
	}
	categoryIDs := make(map[string]int64, len(categories))
	for name, slug := range categories {
		id, err := ensureCategory(ctx, pool, name, slug)
		if err != nil {
			return fmt.Errorf("ensure category %s: %w", slug, err)
		}
		categoryIDs[name] = id
	}

	products := []productSeed{
		{
			Category:         "Electronics",
			Name:             "Wireless Bluetooth Headphones",
			Slug:             "wireless-bluetooth-headphones",
			SKU:              "SKU-BT-HP",
			ShortDescription: "Over-ear headphones with noise cancellation",
			Price:            "89.99",
			SalePrice:        "69.99",
			ManageStock:      true,
			Stock:            25,
			Variants: []variantSeed{
				{Name: "Color", Value: "Black", SKU: "SKU-BT-HP-BLK", PriceAdjustment: "0", Stock: 15},
				{Name: "Color", Value: "Gold", SKU: "SKU-BT-HP-GLD", PriceAdjustment: "10.00", Stock: 10},
			},
		},
		{
			Category:         "Clothing",
			Name:             "Organic Cotton T-Shirt",
			Slug:             "organic-cotton-t-shirt",
			SKU:              "SKU-ORG-TS",
			ShortDescription: "Soft organic cotton tee",
			Price:            "29.99",
			ManageStock:      true,
			Stock:            100,
			Variants: []variantSeed{
				{Name: "Size", Value: "S", SKU: "SKU-ORG-TS-S", PriceAdjustment: "0", Stock: 30},
				{Name: "Size", Value: "M", SKU: "SKU-ORG-TS-M", PriceAdjustment: "0", Stock: 40},
				{Name: "Size", Value: "L", SKU: "SKU-ORG-TS-L", PriceAdjustment: "2.00", Stock: 30},
			},
		},
		{
			Category:         "Home",
			Name:             "Ceramic Coffee Mug",
			Slug:             "ceramic-coffee-mug",
			SKU:              "SKU-MUG",
			ShortDescription: "Stoneware mug, dishwasher safe",
			Price:            "12.99",
			ManageStock:      false,
		},
		{
			Category:         "Electronics",
			Name:             "USB-C Charging Cable",
			Slug:             "usb-c-charging-cable",
			SKU:              "SKU-USBC",
			ShortDescription: "Braided 2m cable",
			Price:            "9.99",
			ManageStock:      true,
			Stock:            200,
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, categoryIDs[p.Category], p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Slug, err)
		}
	}

	return nil
}

func ensureCategory(ctx context.Context, pool *pgxpool.Pool, name, slug string) (int64, error) {
	const q = `
INSERT INTO categories (name, slug)
VALUES ($1, $2)
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
RETURNING id
`
	var id int64
	if err := pool.QueryRow(ctx, q, name, slug).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, categoryID int64, p productSeed) error {
	const q = `
INSERT INTO products (category_id, name, slug, sku, short_description, price, sale_price, manage_stock, stock_quantity)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::numeric, $8, $9)
ON CONFLICT (slug) DO UPDATE
SET category_id = EXCLUDED.category_id,
    name = EXCLUDED.name,
    sku = EXCLUDED.sku,
    short_description = EXCLUDED.short_description,
    price = EXCLUDED.price,
    sale_price = EXCLUDED.sale_price,
    manage_stock = EXCLUDED.manage_stock,
    stock_quantity = EXCLUDED.stock_quantity
RETURNING id
`
	var productID int64
	if err := pool.QueryRow(ctx, q, categoryID, p.Name, p.Slug, p.SKU, p.ShortDescription, p.Price, p.SalePrice, p.ManageStock, p.Stock).Scan(&productID); err != nil {
		return err
	}

	for _, v := range p.Variants {
		const vq = `
INSERT INTO product_variants (product_id, name, value, sku, price_adjustment, stock_quantity)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (product_id, name, value) DO UPDATE
SET sku = EXCLUDED.sku,
    price_adjustment = EXCLUDED.price_adjustment,
    stock_quantity = EXCLUDED.stock_quantity
`
		if _, err := pool.Exec(ctx, vq, productID, v.Name, v.Value, v.SKU, v.PriceAdjustment, v.Stock); err != nil {
			return fmt.Errorf("variant %s=%s: %w", v.Name, v.Value, err)
		}
	}
	return nil
}
