package product

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	"storefront/internal/migrate"
)

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE reviews, wishlist_items, order_items, orders, product_variants, products, categories RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func insertProduct(ctx context.Context, t *testing.T, pool *pgxpool.Pool, slug string, price string, manageStock bool, stock int) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO products (name, slug, sku, price, manage_stock, stock_quantity)
		VALUES ($1, $2, $3, $4::numeric, $5, $6)
		RETURNING id
	`, "Product "+slug, slug, "SKU-"+slug, price, manageStock, stock).Scan(&id)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return id
}

func TestPostgres_ListAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	id := insertProduct(ctx, t, pool, "headphones", "89.99", true, 10)
	repo := NewPostgres(pool, nil)

	list, err := repo.ListActive(ctx, "")
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 product, got %d", len(list))
	}

	got, err := repo.GetBySlug(ctx, "headphones")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.ID != id || got.Price.String() != "89.99" {
		t.Fatalf("unexpected product %+v", got)
	}
	if got.SalePrice != nil {
		t.Fatalf("sale price = %v, want nil", got.SalePrice)
	}

	if _, err := repo.GetBySlug(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPostgres_ProductsByIDs(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	a := insertProduct(ctx, t, pool, "a", "10.00", true, 5)
	b := insertProduct(ctx, t, pool, "b", "20.00", true, 5)
	repo := NewPostgres(pool, nil)

	got, err := repo.ProductsByIDs(ctx, []int64{a, b, 9999})
	if err != nil {
		t.Fatalf("ProductsByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}
	if _, ok := got[9999]; ok {
		t.Fatal("unknown id must be absent, not zero-valued")
	}
}

func TestPostgres_ReduceStock(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	id := insertProduct(ctx, t, pool, "limited", "10.00", true, 3)
	repo := NewPostgres(pool, nil)

	if err := repo.ReduceStock(ctx, id, 2); err != nil {
		t.Fatalf("ReduceStock: %v", err)
	}
	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.StockQuantity != 1 {
		t.Fatalf("stock = %d, want 1", got.StockQuantity)
	}

	if err := repo.ReduceStock(ctx, id, 5); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
}

func TestPostgres_ReduceStockUnmanaged(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	id := insertProduct(ctx, t, pool, "unmanaged", "10.00", false, 0)
	repo := NewPostgres(pool, nil)

	// The update only matches managed rows, so callers that reduce an
	// unmanaged product by mistake get the sentinel instead of a silent
	// stock change.
	if err := repo.ReduceStock(ctx, id, 100); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock for unmanaged product", err)
	}
}
